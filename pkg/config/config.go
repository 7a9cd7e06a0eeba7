// pkg/config/config.go
package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cast"
	"github.com/spf13/pflag"
)

// Global Koanf instance, initialized once at startup.
var (
	k    *koanf.Koanf
	once sync.Once
)

var validate = validator.New()

// InitGlobalConfig initializes the global Koanf instance.
// This should be called early in the application lifecycle, before Load.
func InitGlobalConfig() {
	once.Do(func() {
		k = koanf.New(".")
	})
}

// Manager handles loading and accessing application configuration.
type Manager struct {
	koanfInstance *koanf.Koanf
	currentConfig Config
	mu            sync.RWMutex
}

// NewManager creates a new Manager backed by the global Koanf instance.
func NewManager() *Manager {
	InitGlobalConfig()
	return &Manager{
		koanfInstance: k,
	}
}

// DefaultConfig returns a new Config struct populated with hardcoded default
// values. These serve as the baseline if no other source overrides them.
func DefaultConfig() Config {
	return Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Nessus: NessusConfig{
			UserAgent: "Mozilla/5.0",
		},
		Launch: DefaultLaunchConfig(),
	}
}

// DefaultLaunchConfig returns the default launch/retry settings: five
// attempts per scan with backoff starting at 500ms and capped at 10s.
func DefaultLaunchConfig() LaunchConfig {
	return LaunchConfig{
		RetryAttempts:    5,
		RetryInitialWait: 500 * time.Millisecond,
		RetryMaxWait:     10 * time.Second,
	}
}

// DefaultConfigAsMap converts the DefaultConfig struct to a flat map for
// Koanf's confmap.Provider, so Koanf knows all keys up front.
func DefaultConfigAsMap() map[string]interface{} {
	def := DefaultConfig()
	return map[string]interface{}{
		"log.level":  def.Log.Level,
		"log.format": def.Log.Format,

		"nessus.host":       def.Nessus.Host,
		"nessus.username":   def.Nessus.Username,
		"nessus.password":   def.Nessus.Password,
		"nessus.insecure":   def.Nessus.Insecure,
		"nessus.user_agent": def.Nessus.UserAgent,

		"launch.scan_ids":           def.Launch.ScanIDs,
		"launch.retry_attempts":     def.Launch.RetryAttempts,
		"launch.retry_initial_wait": def.Launch.RetryInitialWait,
		"launch.retry_max_wait":     def.Launch.RetryMaxWait,
	}
}

// Load loads configuration from all default sources in priority order
// (defaults -> file -> env -> flags) and unmarshals the merged result into
// the manager's current config.
func (m *Manager) Load(flags *pflag.FlagSet, configFilePath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	debug := false
	if flags != nil {
		if f := flags.Lookup("debug"); f != nil && f.Value.String() == "true" {
			debug = true
		}
	}

	for _, src := range DefaultSources(configFilePath, flags, debug) {
		if err := src.Load(m.koanfInstance); err != nil {
			return fmt.Errorf("load config source %s: %w", src.Name(), err)
		}
	}

	var newCfg Config
	if err := m.koanfInstance.UnmarshalWithConf("", &newCfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return fmt.Errorf("unmarshal merged config: %w", err)
	}
	m.currentConfig = newCfg

	return nil
}

// Get returns a copy of the current configuration.
func (m *Manager) Get() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentConfig
}

// Validate checks the Nessus connection settings. Missing or malformed
// values are reported as a *ConfigError naming the offending field.
func (c NessusConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			field := strings.ToLower(verrs[0].Field())
			reason := "is invalid"
			if verrs[0].Tag() == "required" {
				reason = "is required"
			}
			return &ConfigError{Field: "nessus." + field, Reason: reason}
		}
		return &ConfigError{Field: "nessus", Reason: err.Error()}
	}
	return nil
}

// ParseScanIDs parses a comma-separated scan id list. Blank and non-numeric
// entries are skipped rather than reported.
func ParseScanIDs(s string) []uint32 {
	var ids []uint32
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := cast.ToUint32E(part)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

type ctxKey string

const configKey ctxKey = "config.current"

// WithContext stores the loaded configuration on the provided context.
func WithContext(ctx context.Context, cfg Config) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, configKey, cfg)
}

// FromContext extracts the configuration from context.
func FromContext(ctx context.Context) (Config, bool) {
	if ctx == nil {
		return Config{}, false
	}
	cfg, ok := ctx.Value(configKey).(Config)
	return cfg, ok
}
