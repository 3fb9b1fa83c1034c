package connectors

import (
	"net/url"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlgate/sqlgate/core/config"
)

func dsnProfile(driver config.Driver, port int) *config.Profile {
	return &config.Profile{
		Name:     "p1",
		Driver:   driver,
		Host:     "db.internal",
		Port:     port,
		User:     "gateway",
		Password: "s3cret/with=odd&chars",
	}
}

func TestSQLServerDSN(t *testing.T) {
	dsn := sqlServerDSN(dsnProfile(config.DriverSQLServer, 1433), "app_db")

	u, err := url.Parse(dsn)
	require.NoError(t, err)

	assert.Equal(t, "sqlserver", u.Scheme)
	assert.Equal(t, "db.internal:1433", u.Host)
	assert.Equal(t, "gateway", u.User.Username())
	password, _ := u.User.Password()
	assert.Equal(t, "s3cret/with=odd&chars", password)
	assert.Equal(t, "app_db", u.Query().Get("database"))
	assert.Equal(t, "disable", u.Query().Get("encrypt"))
}

func TestSQLServerDSNWithoutDatabase(t *testing.T) {
	dsn := sqlServerDSN(dsnProfile(config.DriverSQLServer, 1433), "")

	u, err := url.Parse(dsn)
	require.NoError(t, err)
	assert.False(t, u.Query().Has("database"))
}

func TestPostgresDSN(t *testing.T) {
	dsn := postgresDSN(dsnProfile(config.DriverPostgres, 5432), "reporting")

	u, err := url.Parse(dsn)
	require.NoError(t, err)

	assert.Equal(t, "postgres", u.Scheme)
	assert.Equal(t, "db.internal:5432", u.Host)
	assert.Equal(t, "/reporting", u.Path)
	assert.Equal(t, "disable", u.Query().Get("sslmode"))
}

func TestMySQLDSN(t *testing.T) {
	dsn := mysqlDSN(dsnProfile(config.DriverMySQL, 3306), "app_db")

	cfg, err := mysql.ParseDSN(dsn)
	require.NoError(t, err)

	assert.Equal(t, "gateway", cfg.User)
	assert.Equal(t, "s3cret/with=odd&chars", cfg.Passwd)
	assert.Equal(t, "db.internal:3306", cfg.Addr)
	assert.Equal(t, "app_db", cfg.DBName)
	assert.True(t, cfg.ParseTime)
}

func TestNewConnectorRejectsUnknownDriver(t *testing.T) {
	p := dsnProfile("oracle", 1521)
	_, err := NewConnector(p, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oracle")
}
