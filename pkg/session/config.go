package session

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
)

// Environment variables read by OpenFromEnv:
//
//	SEQSTORE_DB_TYPE=postgres|sqlite (required)
//	SEQSTORE_DB_NAME=<database name or sqlite file path> (required)
//	SEQSTORE_DB_USER / SEQSTORE_DB_PASSWORD (required for postgres)
//	SEQSTORE_DB_DOMAIN=<host> (default localhost)
//	SEQSTORE_DB_PORT=<port> (default 5432 for postgres)
//	SEQSTORE_DB_METRICS=true|false (default false)

// Config holds the connection parameters for a session. DBType and DBName are
// mandatory; postgres additionally requires User and Password.
type Config struct {
	DBType   string
	DBName   string
	User     string
	Password string
	Domain   string
	Port     int
	// Metrics registers a database/sql stats collector with the default
	// prometheus registry when set.
	Metrics bool
}

// ConfigError reports bad or missing connection parameters. It is fatal and
// surfaced before any statement reaches the backend.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("session config: %s: %s", e.Field, e.Reason)
}

// Backend resolves the configured DBType to a Backend kind.
func (c Config) Backend() (Backend, error) {
	switch c.DBType {
	case "postgres":
		return BackendPostgres, nil
	case "sqlite":
		return BackendSQLite, nil
	case "":
		return 0, &ConfigError{Field: "dbtype", Reason: "required"}
	default:
		return 0, &ConfigError{Field: "dbtype", Reason: fmt.Sprintf("unsupported %q (want postgres or sqlite)", c.DBType)}
	}
}

// Validate checks the mandatory parameters for the configured backend.
func (c Config) Validate() error {
	backend, err := c.Backend()
	if err != nil {
		return err
	}
	if c.DBName == "" {
		return &ConfigError{Field: "dbname", Reason: "required"}
	}
	if backend == BackendPostgres {
		if c.User == "" {
			return &ConfigError{Field: "user", Reason: "required for postgres"}
		}
		if c.Password == "" {
			return &ConfigError{Field: "password", Reason: "required for postgres"}
		}
	}
	return nil
}

// DSN builds the driver connection string for the configured backend.
func (c Config) DSN() (string, error) {
	backend, err := c.Backend()
	if err != nil {
		return "", err
	}
	if backend == BackendSQLite {
		return "file:" + c.DBName, nil
	}
	host := c.Domain
	if host == "" {
		host = "localhost"
	}
	port := c.Port
	if port == 0 {
		port = 5432
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", host, port),
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=disable",
	}
	return u.String(), nil
}

// ConfigFromEnv builds a Config from process environment.
func ConfigFromEnv() (Config, error) {
	cfg := Config{
		DBType:   os.Getenv("SEQSTORE_DB_TYPE"),
		DBName:   os.Getenv("SEQSTORE_DB_NAME"),
		User:     os.Getenv("SEQSTORE_DB_USER"),
		Password: os.Getenv("SEQSTORE_DB_PASSWORD"),
		Domain:   os.Getenv("SEQSTORE_DB_DOMAIN"),
		Metrics:  os.Getenv("SEQSTORE_DB_METRICS") == "true",
	}
	if raw := os.Getenv("SEQSTORE_DB_PORT"); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil {
			return Config{}, &ConfigError{Field: "port", Reason: fmt.Sprintf("invalid %q", raw)}
		}
		cfg.Port = port
	}
	return cfg, cfg.Validate()
}
