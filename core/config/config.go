package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration unmarshals YAML duration strings like "30s" or "1m".
// A bare integer is taken as seconds.
type Duration time.Duration

// Std returns the value as a time.Duration
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw any
	if err := value.Decode(&raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case string:
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid duration '%s': %w", v, err)
		}
		*d = Duration(parsed)
	case int:
		*d = Duration(time.Duration(v) * time.Second)
	default:
		return fmt.Errorf("invalid duration value '%v'", raw)
	}
	return nil
}

// Driver identifies the SQL dialect of a backend profile
type Driver string

const (
	DriverSQLServer Driver = "sqlserver"
	DriverPostgres  Driver = "postgres"
	DriverMySQL     Driver = "mysql"
)

// ValidDrivers lists the supported profile drivers
func ValidDrivers() []Driver {
	return []Driver{DriverSQLServer, DriverPostgres, DriverMySQL}
}

// Profile describes one named backend connection target.
// Immutable after load; the name is the routing key for every request.
type Profile struct {
	Name            string `yaml:"-"`
	Driver          Driver `yaml:"driver" validate:"required"`
	Host            string `yaml:"host" validate:"required"`
	Port            int    `yaml:"port" validate:"required,gt=0,lte=65535"`
	User            string `yaml:"user" validate:"required"`
	Password        string `yaml:"password"`
	DefaultDatabase string `yaml:"default_database"`
	ReadOnly        bool   `yaml:"read_only"`
	Default         bool   `yaml:"default"`
}

// RateLimit configures the redis-backed request limiter
type RateLimit struct {
	RedisURL string   `yaml:"redis_url"`
	Limit    int      `yaml:"limit"`
	Window   Duration `yaml:"window"`
}

// Enabled reports whether the limiter should be wired in
func (r *RateLimit) Enabled() bool {
	return r != nil && r.RedisURL != "" && r.Limit > 0
}

// Server holds the gateway's own listener settings
type Server struct {
	Port         string     `yaml:"port"`
	APIKey       string     `yaml:"api_key" validate:"required"`
	QueryTimeout Duration   `yaml:"query_timeout"`
	RateLimit    *RateLimit `yaml:"rate_limit"`
}

// Config is the full gateway configuration loaded from YAML
type Config struct {
	Server   Server              `yaml:"server"`
	Profiles map[string]*Profile `yaml:"profiles"`
}

const (
	defaultPort         = "8001"
	defaultQueryTimeout = Duration(30 * time.Second)
)

// Load reads, substitutes and validates a configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}
	return Parse(data)
}

// Parse parses YAML content into a validated Config.
// {{ env.NAME }} placeholders are substituted before unmarshaling.
func Parse(data []byte) (*Config, error) {
	substituted, err := SubstituteEnvVars(string(data))
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(substituted), &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
	}

	// Profile names come from the map keys
	for name, profile := range cfg.Profiles {
		if profile == nil {
			return nil, fmt.Errorf("profile '%s' has no body", name)
		}
		profile.Name = name
	}

	cfg.applyDefaults()

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = defaultPort
	}
	if c.Server.QueryTimeout <= 0 {
		c.Server.QueryTimeout = defaultQueryTimeout
	}
}

// DefaultProfile returns the profile marked default, or nil when the
// catalog is empty.
func (c *Config) DefaultProfile() *Profile {
	for _, p := range c.Profiles {
		if p.Default {
			return p
		}
	}
	return nil
}
