package connectors

import (
	"context"
	"fmt"

	"github.com/sqlgate/sqlgate/core/config"
)

// Connector is one live session against a backend database.
// All connectors implementing this interface automatically benefit from
// parallel warm-up and shutdown via the Manager.
type Connector interface {
	// Execute runs a statement against the backend with context support.
	// The context carries the per-query deadline; on expiry the in-flight
	// call is cancelled. Returns the recordset as ordered row maps.
	Execute(ctx context.Context, statement string) ([]map[string]any, error)

	// Databases lists the database names visible on the backend
	Databases(ctx context.Context) ([]string, error)

	// Ping performs a lightweight round-trip with no side effects on
	// application data
	Ping(ctx context.Context) error

	// Close closes the session and releases resources
	Close() error
}

// NewConnector opens a session for the profile against the given
// database. An empty database falls back to the profile's default.
func NewConnector(profile *config.Profile, database string) (Connector, error) {
	if database == "" {
		database = profile.DefaultDatabase
	}

	switch profile.Driver {
	case config.DriverSQLServer:
		return NewSQLServerConnector(profile, database)
	case config.DriverPostgres:
		return NewPostgresConnector(profile, database)
	case config.DriverMySQL:
		return NewMySQLConnector(profile, database)
	default:
		return nil, fmt.Errorf("unsupported driver '%s' for profile '%s'", profile.Driver, profile.Name)
	}
}
