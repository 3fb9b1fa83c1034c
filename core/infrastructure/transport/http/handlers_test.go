package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlgate/sqlgate/core/config"
	"github.com/sqlgate/sqlgate/core/gateway/connectors"
	"github.com/sqlgate/sqlgate/core/gateway/executor"
	"github.com/sqlgate/sqlgate/core/infrastructure/transport/http/middleware"
	"github.com/sqlgate/sqlgate/core/registry"
	sharederrors "github.com/sqlgate/sqlgate/core/shared/errors"
)

const testAPIKey = "test-api-key"

type fakeConnector struct {
	rows      []map[string]any
	execErr   error
	databases []string
}

func (f *fakeConnector) Execute(ctx context.Context, statement string) ([]map[string]any, error) {
	if f.execErr != nil {
		return nil, f.execErr
	}
	return f.rows, nil
}

func (f *fakeConnector) Databases(ctx context.Context) ([]string, error) {
	return f.databases, nil
}

func (f *fakeConnector) Ping(ctx context.Context) error { return nil }
func (f *fakeConnector) Close() error                   { return nil }

type fakeManager struct {
	conn       connectors.Connector
	acquireErr error
}

func (m *fakeManager) Acquire(ctx context.Context, profile *config.Profile, database string) (connectors.Connector, error) {
	if m.acquireErr != nil {
		return nil, m.acquireErr
	}
	return m.conn, nil
}

func (m *fakeManager) Discard(profile *config.Profile, database string) {}

func (m *fakeManager) HealthCheck(ctx context.Context, profile *config.Profile) connectors.Health {
	return connectors.Health{Connected: true, Healthy: true}
}

func testConfig(profiles map[string]*config.Profile) *config.Config {
	for name, p := range profiles {
		p.Name = name
	}
	return &config.Config{
		Server:   config.Server{Port: "8001", APIKey: testAPIKey, QueryTimeout: config.Duration(30 * time.Second)},
		Profiles: profiles,
	}
}

func newTestRouter(t *testing.T, cfg *config.Config, manager executor.SessionManager) http.Handler {
	t.Helper()

	reg := registry.New(cfg)
	exec := executor.New(reg, manager, cfg.Server.QueryTimeout.Std())

	srv := NewServer(cfg.Server.Port)
	require.NoError(t, RegisterRoutes(srv.Router(), exec, cfg))
	return srv.Router()
}

func doRequest(t *testing.T, handler http.Handler, method, target string, body any, apiKey string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if apiKey != "" {
		req.Header.Set(middleware.APIKeyHeader, apiKey)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealthEndpointIsOpen(t *testing.T) {
	cfg := testConfig(map[string]*config.Profile{
		"p1": {Driver: config.DriverSQLServer, Host: "db", Port: 1433, User: "u", Default: true},
	})
	router := newTestRouter(t, cfg, &fakeManager{conn: &fakeConnector{}})

	rec := doRequest(t, router, "GET", "/health", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"status": "ok"}, decodeBody(t, rec))
}

func TestAPIKeyAuth(t *testing.T) {
	cfg := testConfig(map[string]*config.Profile{
		"p1": {Driver: config.DriverSQLServer, Host: "db", Port: 1433, User: "u", Default: true},
	})
	router := newTestRouter(t, cfg, &fakeManager{conn: &fakeConnector{}})

	t.Run("missing key", func(t *testing.T) {
		rec := doRequest(t, router, "GET", "/v1/servers", nil, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		body := decodeBody(t, rec)
		assert.Equal(t, false, body["success"])
		assert.NotEmpty(t, body["error"])
	})

	t.Run("wrong key", func(t *testing.T) {
		rec := doRequest(t, router, "GET", "/v1/servers", nil, "wrong-key")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid key", func(t *testing.T) {
		rec := doRequest(t, router, "GET", "/v1/servers", nil, testAPIKey)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestServersEndpoint(t *testing.T) {
	cfg := testConfig(map[string]*config.Profile{
		"primary": {Driver: config.DriverSQLServer, Host: "db1.internal", Port: 1433, User: "u", Default: true},
		"replica": {Driver: config.DriverPostgres, Host: "db2.internal", Port: 5432, User: "u", ReadOnly: true},
	})
	router := newTestRouter(t, cfg, &fakeManager{conn: &fakeConnector{}})

	rec := doRequest(t, router, "GET", "/v1/servers", nil, testAPIKey)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])

	data := body["data"].(map[string]any)
	assert.Equal(t, "primary", data["defaultServer"])

	servers := data["servers"].([]any)
	require.Len(t, servers, 2)

	byName := map[string]map[string]any{}
	for _, s := range servers {
		entry := s.(map[string]any)
		byName[entry["name"].(string)] = entry
	}
	assert.Equal(t, false, byName["primary"]["readOnly"])
	assert.Equal(t, true, byName["replica"]["readOnly"])
	assert.Equal(t, "db1.internal", byName["primary"]["host"])
	assert.Equal(t, float64(5432), byName["replica"]["port"])
	assert.Equal(t, true, byName["primary"]["connected"])
	assert.Equal(t, true, byName["primary"]["healthy"])
}

func TestServersEndpointEmptyCatalog(t *testing.T) {
	cfg := testConfig(map[string]*config.Profile{})
	router := newTestRouter(t, cfg, &fakeManager{conn: &fakeConnector{}})

	rec := doRequest(t, router, "GET", "/v1/servers", nil, testAPIKey)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])

	data := body["data"].(map[string]any)
	servers, ok := data["servers"].([]any)
	require.True(t, ok, "servers must be a JSON array, not null")
	assert.Empty(t, servers)
	assert.Nil(t, data["defaultServer"])
}

func TestDatabasesEndpoint(t *testing.T) {
	cfg := testConfig(map[string]*config.Profile{
		"p1": {Driver: config.DriverSQLServer, Host: "db", Port: 1433, User: "u", Default: true},
	})
	manager := &fakeManager{conn: &fakeConnector{databases: []string{"app", "master", "reporting"}}}
	router := newTestRouter(t, cfg, manager)

	t.Run("default server", func(t *testing.T) {
		rec := doRequest(t, router, "GET", "/v1/databases", nil, testAPIKey)
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeBody(t, rec)
		assert.Equal(t, true, body["success"])
		data := body["data"].(map[string]any)
		assert.Equal(t, []any{"app", "master", "reporting"}, data["databases"])
	})

	t.Run("unknown server", func(t *testing.T) {
		rec := doRequest(t, router, "GET", "/v1/databases?server=nope", nil, testAPIKey)
		assert.Equal(t, http.StatusNotFound, rec.Code)

		body := decodeBody(t, rec)
		assert.Equal(t, false, body["success"])
		assert.Contains(t, body["error"], "nope")
	})
}

func TestQueryEndpoint(t *testing.T) {
	profiles := map[string]*config.Profile{
		"rw": {Driver: config.DriverSQLServer, Host: "db", Port: 1433, User: "u", Default: true},
		"ro": {Driver: config.DriverSQLServer, Host: "db", Port: 1433, User: "u", ReadOnly: true},
	}

	t.Run("successful select", func(t *testing.T) {
		rows := []map[string]any{{"id": float64(1), "payload": `{"a":1}`}}
		router := newTestRouter(t, testConfig(profiles), &fakeManager{conn: &fakeConnector{rows: rows}})

		rec := doRequest(t, router, "POST", "/v1/query",
			map[string]any{"sql": "SELECT id, payload FROM things"}, testAPIKey)
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeBody(t, rec)
		assert.Equal(t, true, body["success"])
		assert.NotNil(t, body["execution_ms"])

		data := body["data"].(map[string]any)
		assert.Equal(t, float64(1), data["rowCount"])

		recordset := data["recordset"].([]any)
		require.Len(t, recordset, 1)
		row := recordset[0].(map[string]any)

		// JSON stored as text comes back as the raw string, untouched
		assert.Equal(t, `{"a":1}`, row["payload"])
	})

	t.Run("write allowed on read-write profile", func(t *testing.T) {
		router := newTestRouter(t, testConfig(profiles), &fakeManager{conn: &fakeConnector{}})

		rec := doRequest(t, router, "POST", "/v1/query",
			map[string]any{"sql": "CREATE TABLE t (id INT)", "server": "rw"}, testAPIKey)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, true, decodeBody(t, rec)["success"])
	})

	t.Run("write denied on read-only profile", func(t *testing.T) {
		router := newTestRouter(t, testConfig(profiles), &fakeManager{conn: &fakeConnector{}})

		rec := doRequest(t, router, "POST", "/v1/query",
			map[string]any{"sql": "CREATE TABLE t (id INT)", "server": "ro"}, testAPIKey)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		body := decodeBody(t, rec)
		assert.Equal(t, false, body["success"])
		assert.Contains(t, body["error"], "READ-ONLY")

		// Never reached a backend, so no timing is reported
		assert.Nil(t, body["execution_ms"])
	})

	t.Run("unknown server", func(t *testing.T) {
		router := newTestRouter(t, testConfig(profiles), &fakeManager{conn: &fakeConnector{}})

		rec := doRequest(t, router, "POST", "/v1/query",
			map[string]any{"sql": "SELECT 1", "server": "ghost"}, testAPIKey)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, decodeBody(t, rec)["error"], "ghost")
	})

	t.Run("missing sql", func(t *testing.T) {
		router := newTestRouter(t, testConfig(profiles), &fakeManager{conn: &fakeConnector{}})

		rec := doRequest(t, router, "POST", "/v1/query",
			map[string]any{"server": "rw"}, testAPIKey)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, false, decodeBody(t, rec)["success"])
	})

	t.Run("malformed body", func(t *testing.T) {
		router := newTestRouter(t, testConfig(profiles), &fakeManager{conn: &fakeConnector{}})

		req := httptest.NewRequest("POST", "/v1/query", bytes.NewReader([]byte("{not json")))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(middleware.APIKeyHeader, testAPIKey)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("backend failure reports in-band", func(t *testing.T) {
		conn := &fakeConnector{execErr: errors.New("Invalid object name 'missing_table'")}
		router := newTestRouter(t, testConfig(profiles), &fakeManager{conn: conn})

		rec := doRequest(t, router, "POST", "/v1/query",
			map[string]any{"sql": "SELECT * FROM missing_table"}, testAPIKey)
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeBody(t, rec)
		assert.Equal(t, false, body["success"])
		assert.Contains(t, body["error"], "Invalid object name")
		assert.NotNil(t, body["execution_ms"])
		assert.Nil(t, body["data"])
	})

	t.Run("connection failure", func(t *testing.T) {
		manager := &fakeManager{acquireErr: sharederrors.WrapError(
			sharederrors.ErrCodeConnectionFailed,
			"failed to connect to server profile 'rw'",
			errors.New("dial tcp: connection refused"),
		)}
		router := newTestRouter(t, testConfig(profiles), manager)

		rec := doRequest(t, router, "POST", "/v1/query",
			map[string]any{"sql": "SELECT 1"}, testAPIKey)
		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Equal(t, false, decodeBody(t, rec)["success"])
	})
}
