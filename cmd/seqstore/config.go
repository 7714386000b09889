package main

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"seqstore/pkg/session"
)

// Config is the YAML configuration of the admin tool.
type Config struct {
	Database struct {
		DBType   string `yaml:"dbtype"`
		DBName   string `yaml:"dbname"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Domain   string `yaml:"domain"`
		Port     int    `yaml:"port"`
		Metrics  bool   `yaml:"metrics"`
	} `yaml:"database"`
	Blob struct {
		Driver string `yaml:"driver"`
		FSRoot string `yaml:"fs_root"`
	} `yaml:"blob"`
}

// LoadConfig reads the YAML config at path and applies environment
// overrides on top.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}
	cfg.applyEnvOverrides()
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	setString := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setString(&c.Database.DBType, "SEQSTORE_DB_TYPE")
	setString(&c.Database.DBName, "SEQSTORE_DB_NAME")
	setString(&c.Database.User, "SEQSTORE_DB_USER")
	setString(&c.Database.Password, "SEQSTORE_DB_PASSWORD")
	setString(&c.Database.Domain, "SEQSTORE_DB_DOMAIN")
	setString(&c.Blob.Driver, "SEQSTORE_BLOB_DRIVER")
	setString(&c.Blob.FSRoot, "SEQSTORE_BLOB_FS_ROOT")
	if v := os.Getenv("SEQSTORE_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Database.Port = port
		}
	}
	if v := os.Getenv("SEQSTORE_DB_METRICS"); v != "" {
		c.Database.Metrics = v == "true"
	}
}

// SessionConfig converts the database section to a session.Config.
func (c Config) SessionConfig() session.Config {
	return session.Config{
		DBType:   c.Database.DBType,
		DBName:   c.Database.DBName,
		User:     c.Database.User,
		Password: c.Database.Password,
		Domain:   c.Database.Domain,
		Port:     c.Database.Port,
		Metrics:  c.Database.Metrics,
	}
}
