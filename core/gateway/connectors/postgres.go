package connectors

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	_ "github.com/lib/pq"

	"github.com/sqlgate/sqlgate/core/config"
	"github.com/sqlgate/sqlgate/core/infrastructure/logging"
)

// PostgresConnector implements the Connector interface for PostgreSQL
type PostgresConnector struct {
	db *sql.DB
}

func postgresDSN(profile *config.Profile, database string) string {
	u := &url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(profile.User, profile.Password),
		Host:   net.JoinHostPort(profile.Host, strconv.Itoa(profile.Port)),
		Path:   "/" + database,
	}
	q := url.Values{}
	q.Set("sslmode", "disable")
	u.RawQuery = q.Encode()
	return u.String()
}

// NewPostgresConnector opens a PostgreSQL session for the profile
func NewPostgresConnector(profile *config.Profile, database string) (*PostgresConnector, error) {
	log := logging.New("connector:postgres")
	log.Debugf("Opening PostgreSQL connection to %s:%d", profile.Host, profile.Port)

	db, err := sql.Open("postgres", postgresDSN(profile, database))
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres database: %w", err)
	}

	return &PostgresConnector{db: db}, nil
}

// Execute executes a SQL statement against PostgreSQL with context support
func (p *PostgresConnector) Execute(ctx context.Context, statement string) ([]map[string]any, error) {
	rows, err := p.db.QueryContext(ctx, statement)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRows(rows)
}

// Databases lists the non-template databases on the server
func (p *PostgresConnector) Databases(ctx context.Context) ([]string, error) {
	rows, err := p.db.QueryContext(ctx, "SELECT datname FROM pg_database WHERE datistemplate = false ORDER BY datname")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanStringColumn(rows)
}

// Ping verifies the session is alive
func (p *PostgresConnector) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// Close closes the database connection
func (p *PostgresConnector) Close() error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}
