package connectors

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/sqlgate/sqlgate/core/config"
	"github.com/sqlgate/sqlgate/core/infrastructure/logging"
)

// MySQLConnector implements the Connector interface for MySQL
type MySQLConnector struct {
	db *sql.DB
}

func mysqlDSN(profile *config.Profile, database string) string {
	cfg := mysql.NewConfig()
	cfg.User = profile.User
	cfg.Passwd = profile.Password
	cfg.Net = "tcp"
	cfg.Addr = fmt.Sprintf("%s:%d", profile.Host, profile.Port)
	cfg.DBName = database
	cfg.ParseTime = true
	return cfg.FormatDSN()
}

// NewMySQLConnector opens a MySQL session for the profile
func NewMySQLConnector(profile *config.Profile, database string) (*MySQLConnector, error) {
	log := logging.New("connector:mysql")
	log.Debugf("Opening MySQL connection to %s:%d", profile.Host, profile.Port)

	db, err := sql.Open("mysql", mysqlDSN(profile, database))
	if err != nil {
		return nil, fmt.Errorf("failed to open mysql connection: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping mysql database: %w", err)
	}

	return &MySQLConnector{db: db}, nil
}

// Execute executes a SQL statement against MySQL with context support
func (m *MySQLConnector) Execute(ctx context.Context, statement string) ([]map[string]any, error) {
	rows, err := m.db.QueryContext(ctx, statement)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRows(rows)
}

// Databases lists the databases visible to the session user
func (m *MySQLConnector) Databases(ctx context.Context) ([]string, error) {
	rows, err := m.db.QueryContext(ctx, "SHOW DATABASES")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanStringColumn(rows)
}

// Ping verifies the session is alive
func (m *MySQLConnector) Ping(ctx context.Context) error {
	return m.db.PingContext(ctx)
}

// Close closes the database connection
func (m *MySQLConnector) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
