package runtime

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sqlgate/sqlgate/core/config"
	"github.com/sqlgate/sqlgate/core/gateway/connectors"
	"github.com/sqlgate/sqlgate/core/gateway/executor"
	"github.com/sqlgate/sqlgate/core/infrastructure/logging"
	transport "github.com/sqlgate/sqlgate/core/infrastructure/transport/http"
	"github.com/sqlgate/sqlgate/core/registry"
)

// Gateway wires the registry, session manager, executor and HTTP
// transport into one runnable unit.
type Gateway struct {
	cfg        *config.Config
	configPath string
	registry   *registry.Registry
	manager    *connectors.Manager
	executor   *executor.Executor
	httpServer *transport.Server
	stopWatch  context.CancelFunc
}

// NewGateway assembles a gateway from loaded configuration. configPath
// may be empty; when set, the profile catalog reloads on file changes.
func NewGateway(cfg *config.Config, configPath string) *Gateway {
	reg := registry.New(cfg)
	manager := connectors.NewManager()
	exec := executor.New(reg, manager, cfg.Server.QueryTimeout.Std())

	return &Gateway{
		cfg:        cfg,
		configPath: configPath,
		registry:   reg,
		manager:    manager,
		executor:   exec,
	}
}

// Executor exposes the query pipeline, mainly for tests
func (g *Gateway) Executor() *executor.Executor {
	return g.executor
}

// Start runs the gateway and blocks until SIGINT/SIGTERM
func (g *Gateway) Start() error {
	if err := g.StartAsync(); err != nil {
		return err
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	return g.Stop()
}

// StartAsync warms up the backends and starts serving without blocking
func (g *Gateway) StartAsync() error {
	log := logging.New("runtime")

	warmCtx, cancelWarm := context.WithCancel(context.Background())
	defer cancelWarm()
	g.manager.WarmUp(warmCtx, g.registry.List())

	g.httpServer = transport.NewServer(g.cfg.Server.Port)
	if err := transport.RegisterRoutes(g.httpServer.Router(), g.executor, g.cfg); err != nil {
		return err
	}

	if g.configPath != "" {
		watchCtx, cancel := context.WithCancel(context.Background())
		g.stopWatch = cancel
		go func() {
			if err := g.registry.Watch(watchCtx, g.configPath); err != nil {
				log.Warnf("Config watcher stopped: %v", err)
			}
		}()
	}

	return g.httpServer.StartAsync()
}

// Stop shuts down the HTTP server, then tears down backend sessions
func (g *Gateway) Stop() error {
	log := logging.New("runtime")

	if g.stopWatch != nil {
		g.stopWatch()
	}

	var firstErr error
	if g.httpServer != nil {
		if err := g.httpServer.Stop(); err != nil {
			firstErr = err
		}
	}

	if err := g.manager.CloseAll(); err != nil {
		log.Errorf("Error closing sessions: %v", err)
		if firstErr == nil {
			firstErr = err
		}
	}

	log.Infof("Gateway stopped")
	return firstErr
}
