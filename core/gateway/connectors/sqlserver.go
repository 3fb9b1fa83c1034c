package connectors

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	_ "github.com/denisenkom/go-mssqldb"

	"github.com/sqlgate/sqlgate/core/config"
	"github.com/sqlgate/sqlgate/core/infrastructure/logging"
)

// SQLServerConnector implements the Connector interface for SQL Server
type SQLServerConnector struct {
	db *sql.DB
}

func sqlServerDSN(profile *config.Profile, database string) string {
	u := &url.URL{
		Scheme: "sqlserver",
		User:   url.UserPassword(profile.User, profile.Password),
		Host:   net.JoinHostPort(profile.Host, strconv.Itoa(profile.Port)),
	}
	q := url.Values{}
	if database != "" {
		q.Set("database", database)
	}
	q.Set("encrypt", "disable")
	u.RawQuery = q.Encode()
	return u.String()
}

// NewSQLServerConnector opens a SQL Server session for the profile
func NewSQLServerConnector(profile *config.Profile, database string) (*SQLServerConnector, error) {
	log := logging.New("connector:sqlserver")
	log.Debugf("Opening SQL Server connection to %s:%d", profile.Host, profile.Port)

	db, err := sql.Open("sqlserver", sqlServerDSN(profile, database))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlserver connection: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlserver database: %w", err)
	}

	return &SQLServerConnector{db: db}, nil
}

// Execute executes a SQL statement against SQL Server with context support
func (s *SQLServerConnector) Execute(ctx context.Context, statement string) ([]map[string]any, error) {
	rows, err := s.db.QueryContext(ctx, statement)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRows(rows)
}

// Databases lists all databases visible on the server
func (s *SQLServerConnector) Databases(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name FROM sys.databases ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanStringColumn(rows)
}

// Ping verifies the session is alive
func (s *SQLServerConnector) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection
func (s *SQLServerConnector) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
