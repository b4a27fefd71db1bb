// Package config handles TOML configuration loading and validation.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// configSearchPaths lists paths checked in order when no explicit config is given.
var configSearchPaths = []string{
	"/etc/mlflow-auth-proxy/config.toml",
	"configs/config.toml",
}

// CLI holds command-line arguments parsed by Kong.
type CLI struct {
	Config       string `kong:"short='c',help='Path to TOML config file.',env='CONFIG_PATH'"`
	Host         string `kong:"help='Listen host (overrides config).',env='HOST'"`
	Port         int    `kong:"short='p',help='Listen port (overrides config).',env='PORT'"`
	Username     string `kong:"help='Basic Auth username (overrides config).',env='MLFLOW_AUTH_USERNAME'"`
	Password     string `kong:"help='Basic Auth password (overrides config).',env='MLFLOW_AUTH_PASSWORD'"`
	UpstreamHost string `kong:"help='MLflow tracking server host (overrides config).',env='MLFLOW_HOST'"`
	UpstreamPort int    `kong:"help='MLflow tracking server port (overrides config).',env='MLFLOW_PORT'"`
	LogLevel     string `kong:"help='Log level: debug|info|warn|error (overrides config).',env='LOG_LEVEL'"`
}

// Config is the top-level application configuration.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Auth     AuthConfig     `toml:"auth"`
	Upstream UpstreamConfig `toml:"upstream"`
	Log      LogConfig      `toml:"log"`
	Metrics  MetricsConfig  `toml:"metrics"`

	filePath string // resolved config file path (unexported)
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"` // 0 means "use default" (8080); TOML cannot distinguish 0 from unset
}

// AuthConfig holds the Basic Auth credentials callers must present.
type AuthConfig struct {
	Username string `toml:"username"`
	Password string `toml:"password"`
	Realm    string `toml:"realm"`
}

// UpstreamConfig holds the tracking server connection settings.
type UpstreamConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	TimeoutSeconds  int    `toml:"timeout_seconds"`
	IdleConnections int    `toml:"idle_connections"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// MetricsConfig holds Prometheus metrics settings.
type MetricsConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Load reads the TOML config file (if any) and applies CLI overrides.
// When no explicit path is given (via --config or CONFIG_PATH), it searches
// /etc/mlflow-auth-proxy/config.toml then configs/config.toml. A missing
// config file is not an error: every key has a default, so the proxy can be
// configured entirely through flags and environment variables.
func Load(cli *CLI) (*Config, error) {
	path := cli.Config
	if path == "" {
		path = findConfig()
	}

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
		cfg.filePath = path
	}

	cfg.applyCLI(cli)
	cfg.setDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}

	return &cfg, nil
}

// applyCLI overrides config values with non-zero CLI flags.
func (c *Config) applyCLI(cli *CLI) {
	if cli.Host != "" {
		c.Server.Host = cli.Host
	}
	if cli.Port != 0 {
		c.Server.Port = cli.Port
	}
	if cli.Username != "" {
		c.Auth.Username = cli.Username
	}
	if cli.Password != "" {
		c.Auth.Password = cli.Password
	}
	if cli.UpstreamHost != "" {
		c.Upstream.Host = cli.UpstreamHost
	}
	if cli.UpstreamPort != 0 {
		c.Upstream.Port = cli.UpstreamPort
	}
	if cli.LogLevel != "" {
		c.Log.Level = cli.LogLevel
	}
}

// setDefaults fills zero-valued fields with sensible defaults.
// For integer fields (Port, TimeoutSeconds, etc.), zero means "unset" because
// TOML cannot distinguish between an explicit 0 and an omitted key. Setting
// port=0 in the config file therefore results in the default port (8080).
func (c *Config) setDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Auth.Username == "" {
		c.Auth.Username = "admin"
	}
	if c.Auth.Password == "" {
		c.Auth.Password = "admin"
	}
	if c.Auth.Realm == "" {
		c.Auth.Realm = "MLflow"
	}
	if c.Upstream.Host == "" {
		c.Upstream.Host = "localhost"
	}
	if c.Upstream.Port == 0 {
		c.Upstream.Port = 5000
	}
	if c.Upstream.TimeoutSeconds == 0 {
		c.Upstream.TimeoutSeconds = 300
	}
	if c.Upstream.IdleConnections == 0 {
		c.Upstream.IdleConnections = 100
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
}

func (c *Config) validate() error {
	// Numeric bounds.
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be 1-65535; got %d", c.Server.Port)
	}
	if c.Upstream.Port < 1 || c.Upstream.Port > 65535 {
		return fmt.Errorf("upstream.port must be 1-65535; got %d", c.Upstream.Port)
	}
	if c.Upstream.TimeoutSeconds < 0 {
		return fmt.Errorf("upstream.timeout_seconds must be non-negative; got %d", c.Upstream.TimeoutSeconds)
	}
	if c.Upstream.IdleConnections < 0 {
		return fmt.Errorf("upstream.idle_connections must be non-negative; got %d", c.Upstream.IdleConnections)
	}

	// Auth fields. Defaults guarantee these are non-empty unless the config
	// file supplied whitespace. A colon in the username cannot be represented
	// in a Basic Auth credential (RFC 7617).
	if strings.TrimSpace(c.Auth.Username) == "" {
		return fmt.Errorf("auth.username must not be blank")
	}
	if strings.Contains(c.Auth.Username, ":") {
		return fmt.Errorf("auth.username must not contain ':'; got %q", c.Auth.Username)
	}

	// Log fields.
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return fmt.Errorf("log.level must be one of: debug, info, warn, error; got %q", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
		// valid
	default:
		return fmt.Errorf("log.format must be one of: json, text; got %q", c.Log.Format)
	}

	// Metrics path validation (only when metrics are enabled).
	if c.Metrics.Enabled {
		p := c.Metrics.Path
		if p[0] != '/' {
			return fmt.Errorf("metrics.path must start with '/'; got %q", p)
		}
		if p == "/proxy/status" || strings.HasPrefix(p, "/proxy/status/") {
			return fmt.Errorf("metrics.path %q conflicts with reserved route %q", p, "/proxy/status")
		}
	}

	return nil
}

// findConfig returns the first config path that exists, or empty string.
func findConfig() string {
	return findConfigInPaths(configSearchPaths)
}

// findConfigInPaths returns the first path that exists on disk, or empty string.
func findConfigInPaths(paths []string) string {
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Addr returns the server listen address as host:port.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Origin returns the upstream base URL, e.g. "http://localhost:5000".
// The tracking server is reached over plain HTTP on a fixed host:port.
func (c *UpstreamConfig) Origin() string {
	return fmt.Sprintf("http://%s:%d", c.Host, c.Port)
}

// WarnPermissions logs a warning if the config file is readable by group or
// others; it may contain the Basic Auth password.
func (c *Config) WarnPermissions(logger *slog.Logger) {
	if c.filePath == "" {
		return
	}
	info, err := os.Stat(c.filePath)
	if err != nil {
		return
	}
	if perm := info.Mode().Perm(); perm&0o077 != 0 {
		logger.Warn("config file is readable by group/others; consider chmod 600",
			"path", c.filePath,
			"mode", fmt.Sprintf("%04o", perm),
		)
	}
}

// WarnDefaultCredentials logs a warning when the proxy is running with the
// built-in admin/admin credentials. The password itself is never logged.
func (c *Config) WarnDefaultCredentials(logger *slog.Logger) {
	if c.Auth.Username == "admin" && c.Auth.Password == "admin" {
		logger.Warn("running with default credentials; set MLFLOW_AUTH_USERNAME and MLFLOW_AUTH_PASSWORD")
	}
}
