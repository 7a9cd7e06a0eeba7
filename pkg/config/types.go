// pkg/config/types.go
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration structure for nesslaunch.
type Config struct {
	Log    LogConfig    `description:"Logging configuration" koanf:"log"`
	Nessus NessusConfig `description:"Nessus server connection" koanf:"nessus"`
	Launch LaunchConfig `description:"Scan launch behavior" koanf:"launch"`
}

// LogConfig holds logging related configuration.
type LogConfig struct {
	Level  string `description:"Log level (debug, info, warn, error)" koanf:"level"`
	Format string `description:"Log format: json | text" koanf:"format"`
}

// NessusConfig holds connection and credential settings for the Nessus
// management interface. Host, username and password are mandatory; a batch
// never starts without them.
type NessusConfig struct {
	Host      string `description:"Base URL of the Nessus server" koanf:"host" validate:"required,url"`
	Username  string `description:"Nessus username" koanf:"username" validate:"required"`
	Password  string `description:"Nessus password" koanf:"password" validate:"required"`
	Insecure  bool   `description:"Skip TLS certificate verification" koanf:"insecure"`
	UserAgent string `description:"User-Agent header sent with every request" koanf:"user_agent"`
}

// LaunchConfig holds scan launch and retry settings.
type LaunchConfig struct {
	// ScanIDs is a comma-separated list of default scan ids, used when the
	// launch command receives no arguments.
	ScanIDs          string        `description:"Default scan ids (comma-separated)" koanf:"scan_ids"`
	RetryAttempts    int           `description:"Total launch attempts per scan" koanf:"retry_attempts" validate:"min=1"`
	RetryInitialWait time.Duration `description:"Backoff wait before the first retry" koanf:"retry_initial_wait"`
	RetryMaxWait     time.Duration `description:"Backoff wait cap" koanf:"retry_max_wait"`
}

// ConfigError reports a missing or invalid configuration value. It is
// detected before any network activity takes place.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error: %s %s", e.Field, e.Reason)
}
