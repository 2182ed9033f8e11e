package database

import (
	"fmt"
	"strings"

	"github.com/franciscosanchezn/gin-pizza-orders/internal/config"
)

// DatabaseConfig describes where customers and orders are stored
type DatabaseConfig struct {
	// Driver is postgres, mysql or sqlite. Case is ignored, postgresql is an
	// alias for postgres and an empty driver means sqlite.
	Driver string

	// Server-backed configuration (PostgreSQL and MySQL)
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string

	// SQLite database file
	Path string

	// Connection pool limits, zero keeps the defaults
	MaxOpenConns int
	MaxIdleConns int
}

// FromConfig picks the storage settings out of the application config
func FromConfig(conf *config.Config) DatabaseConfig {
	return DatabaseConfig{
		Driver:       conf.DBDriver,
		Host:         conf.DBHost,
		Port:         conf.DBPort,
		User:         conf.DBUser,
		Password:     conf.DBPassword,
		Name:         conf.DBName,
		SSLMode:      conf.DBSSLMode,
		Path:         conf.DBPath,
		MaxOpenConns: conf.DBMaxOpenConns,
		MaxIdleConns: conf.DBMaxIdleConns,
	}
}

// driverName folds the configured driver onto postgres, mysql or sqlite.
// Unknown drivers come back lowercased so the caller can reject them.
func (c DatabaseConfig) driverName() string {
	switch driver := strings.ToLower(strings.TrimSpace(c.Driver)); driver {
	case "postgresql":
		return "postgres"
	case "":
		return "sqlite"
	default:
		return driver
	}
}

// poolLimits applies the defaults and never allows more idle than open connections
func (c DatabaseConfig) poolLimits() (maxOpen, maxIdle int) {
	maxOpen, maxIdle = c.MaxOpenConns, c.MaxIdleConns
	if maxOpen <= 0 {
		maxOpen = defaultMaxOpenConns
	}
	if maxIdle <= 0 {
		maxIdle = defaultMaxIdleConns
	}
	return maxOpen, min(maxIdle, maxOpen)
}

// String describes the connection without the password
func (c DatabaseConfig) String() string {
	maxOpen, maxIdle := c.poolLimits()
	if c.driverName() == "sqlite" {
		return fmt.Sprintf("DatabaseConfig{Driver: sqlite, Path: %s, MaxOpenConns: %d, MaxIdleConns: %d}", c.Path, maxOpen, maxIdle)
	}
	return fmt.Sprintf("DatabaseConfig{Driver: %s, Host: %s, Port: %s, User: %s, Password: [REDACTED], Name: %s, SSLMode: %s, MaxOpenConns: %d, MaxIdleConns: %d}",
		c.driverName(), c.Host, c.Port, c.User, c.Name, c.SSLMode, maxOpen, maxIdle)
}

// DSN returns the connection string for the configured driver, or "" when the driver is unknown
func (c DatabaseConfig) DSN() string {
	switch c.driverName() {
	case "postgres":
		return c.postgresDSN()
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
			c.User, c.Password, c.Host, c.Port, c.Name)
	case "sqlite":
		return c.Path
	default:
		return ""
	}
}

// postgresDSN builds a keyword/value DSN. Empty values and values with
// spaces, quotes or backslashes are single quoted.
func (c DatabaseConfig) postgresDSN() string {
	pairs := [][2]string{
		{"host", c.Host},
		{"port", c.Port},
		{"user", c.User},
		{"password", c.Password},
		{"dbname", c.Name},
		{"sslmode", c.SSLMode},
	}
	parts := make([]string, 0, len(pairs))
	for _, kv := range pairs {
		parts = append(parts, kv[0]+"="+quotePostgresValue(kv[1]))
	}
	return strings.Join(parts, " ")
}

func quotePostgresValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	escaped := strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(v)
	return "'" + escaped + "'"
}
