package executor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sqlgate/sqlgate/core/config"
	"github.com/sqlgate/sqlgate/core/gateway/connectors"
	"github.com/sqlgate/sqlgate/core/gateway/permission"
	"github.com/sqlgate/sqlgate/core/infrastructure/logging"
	"github.com/sqlgate/sqlgate/core/infrastructure/metrics"
	gwcontext "github.com/sqlgate/sqlgate/core/shared/context"
	sharederrors "github.com/sqlgate/sqlgate/core/shared/errors"
)

// Resolver resolves profile names against the registry snapshot
type Resolver interface {
	Resolve(name string) (*config.Profile, error)
	List() []*config.Profile
	DefaultName() string
}

// SessionManager supplies and recycles backend sessions
type SessionManager interface {
	Acquire(ctx context.Context, profile *config.Profile, database string) (connectors.Connector, error)
	Discard(profile *config.Profile, database string)
	HealthCheck(ctx context.Context, profile *config.Profile) connectors.Health
}

// QueryRequest is one statement to run against a resolved profile
type QueryRequest struct {
	SQL      string
	Server   string
	Database string
}

// QueryResult is the uniform outcome of a statement that reached the
// backend. Success and Error are mutually exclusive: Error is non-empty
// iff Success is false.
type QueryResult struct {
	Success     bool
	Recordset   []map[string]any
	RowCount    int
	ExecutionMs float64
	Error       string
}

// ServerStatus is one profile's connectivity snapshot for enumeration
type ServerStatus struct {
	Profile   *config.Profile
	Connected bool
	Healthy   bool
}

// Executor routes statements to the right backend session, enforces the
// read-only policy before anything reaches a connection, and shapes
// every backend outcome into a QueryResult.
type Executor struct {
	registry Resolver
	manager  SessionManager
	timeout  time.Duration
}

// New creates a query executor
func New(registry Resolver, manager SessionManager, timeout time.Duration) *Executor {
	return &Executor{
		registry: registry,
		manager:  manager,
		timeout:  timeout,
	}
}

// ExecuteQuery runs one statement through the full pipeline:
// resolve, permission check, acquire, execute.
//
// A non-nil error means the backend was never reached (resolution,
// policy, or connection failure). A QueryResult is returned iff the
// statement was sent to the backend, whether it succeeded or not.
func (e *Executor) ExecuteQuery(ctx context.Context, req QueryRequest) (*QueryResult, error) {
	log := logging.New("executor")
	if reqID := gwcontext.GetRequestID(ctx); reqID != "" {
		log.Debugf("Handling query request %s", reqID)
	}

	profile, err := e.registry.Resolve(req.Server)
	if err != nil {
		return nil, err
	}

	// Policy runs strictly before any connection is touched
	if err := permission.Check(profile, req.SQL); err != nil {
		log.Warnf("Statement blocked on profile '%s': %v", profile.Name, err)
		metrics.ObserveQuery(profile.Name, metrics.OutcomeDenied, 0)
		return nil, err
	}

	conn, err := e.manager.Acquire(ctx, profile, req.Database)
	if err != nil {
		return nil, err
	}

	execCtx := ctx
	var cancel context.CancelFunc
	if e.timeout > 0 {
		execCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	log.Debugf("Executing %s statement on profile '%s'", permission.Classify(req.SQL), profile.Name)

	start := time.Now()
	recordset, execErr := conn.Execute(execCtx, req.SQL)
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0

	if execErr != nil {
		if errors.Is(execErr, context.DeadlineExceeded) || errors.Is(execCtx.Err(), context.DeadlineExceeded) {
			execErr = errors.New("query timed out after " + e.timeout.String())
		}
		log.Warnf("Execution failed on profile '%s' after %.1fms: %v", profile.Name, elapsed, execErr)

		// A session that errored mid-query may be poisoned; probe it
		// before reuse and discard on failure.
		pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
		if pingErr := conn.Ping(pingCtx); pingErr != nil {
			e.manager.Discard(profile, req.Database)
			metrics.ObserveSessionDiscard(profile.Name)
		}
		pingCancel()

		metrics.ObserveQuery(profile.Name, metrics.OutcomeError, elapsed/1000.0)

		return &QueryResult{
			Success:     false,
			Recordset:   []map[string]any{},
			ExecutionMs: elapsed,
			Error:       execErr.Error(),
		}, nil
	}

	if recordset == nil {
		recordset = []map[string]any{}
	}

	log.Debugf("Statement completed on profile '%s': %d row(s) in %.1fms", profile.Name, len(recordset), elapsed)
	metrics.ObserveQuery(profile.Name, metrics.OutcomeSuccess, elapsed/1000.0)

	return &QueryResult{
		Success:     true,
		Recordset:   recordset,
		RowCount:    len(recordset),
		ExecutionMs: elapsed,
	}, nil
}

// ListDatabases enumerates the databases visible on the resolved profile
func (e *Executor) ListDatabases(ctx context.Context, server string) ([]string, error) {
	profile, err := e.registry.Resolve(server)
	if err != nil {
		return nil, err
	}

	conn, err := e.manager.Acquire(ctx, profile, "")
	if err != nil {
		return nil, err
	}

	listCtx := ctx
	var cancel context.CancelFunc
	if e.timeout > 0 {
		listCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	databases, err := conn.Databases(listCtx)
	if err != nil {
		return nil, sharederrors.WrapError(
			sharederrors.ErrCodeExecutionFailed,
			"failed to list databases on profile '"+profile.Name+"'",
			err,
		)
	}
	return databases, nil
}

// ServerStatuses probes every configured profile in parallel. Health
// probes are independent of query traffic; a slow backend delays only
// its own entry.
func (e *Executor) ServerStatuses(ctx context.Context) []ServerStatus {
	profiles := e.registry.List()
	statuses := make([]ServerStatus, len(profiles))

	var wg sync.WaitGroup
	for i, profile := range profiles {
		wg.Add(1)
		go func(i int, profile *config.Profile) {
			defer wg.Done()
			health := e.manager.HealthCheck(ctx, profile)
			statuses[i] = ServerStatus{
				Profile:   profile,
				Connected: health.Connected,
				Healthy:   health.Healthy,
			}
		}(i, profile)
	}
	wg.Wait()

	return statuses
}

// DefaultServerName returns the configured default profile name
func (e *Executor) DefaultServerName() string {
	return e.registry.DefaultName()
}
