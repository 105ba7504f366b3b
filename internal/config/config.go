package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rshade/ecopredict/pkg/version"
)

// Output formats understood by the predict command.
const (
	FormatTable  = "table"
	FormatJSON   = "json"
	FormatNDJSON = "ndjson"
	FormatReport = "report"
)

// Alarm usage sources.
const (
	SourceSimulated = "simulated"
	SourceMQTT      = "mqtt"
)

// configFileName is the name of the config file inside the config directory.
const configFileName = "config.yaml"

// Default values.
const (
	defaultPrecision        = 1
	defaultCacheTTLSeconds  = 3600
	defaultCacheMaxSizeMB   = 100
	defaultAlarmThreshold   = 80.0
	defaultAlarmIntervalSec = 5
	defaultAlarmCooldownSec = 30
	defaultServerAddress    = ":8080"
	defaultReadTimeoutSec   = 10
	defaultMQTTTopic        = "ecopredict/usage"
	maxPrecision            = 6
	maxPercent              = 100.0
)

// Config is the ecopredict configuration, loaded from ~/.ecopredict/config.yaml.
type Config struct {
	Version    string           `yaml:"version,omitempty"`
	Output     OutputConfig     `yaml:"output"`
	Logging    LoggingConfig    `yaml:"logging"`
	Prediction PredictionConfig `yaml:"prediction"`
	Cache      CacheConfig      `yaml:"cache"`
	History    HistoryConfig    `yaml:"history"`
	Alarm      AlarmConfig      `yaml:"alarm"`
	Server     ServerConfig     `yaml:"server"`

	// path is where the config was loaded from and where Save writes.
	path string
}

// OutputConfig controls result rendering.
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format"`
	Precision     int    `yaml:"precision"`
	ReportDir     string `yaml:"report_dir,omitempty"`
}

// LoggingConfig controls the zerolog logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file,omitempty"`
}

// PredictionConfig controls the in-process prediction API.
type PredictionConfig struct {
	// LatencyMS is an artificial delay applied before each prediction.
	LatencyMS int `yaml:"latency_ms"`
}

// CacheConfig controls the most-recent-result cache.
type CacheConfig struct {
	Enabled    bool   `yaml:"enabled"`
	TTLSeconds int    `yaml:"ttl_seconds"`
	Directory  string `yaml:"directory,omitempty"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
}

// HistoryConfig controls the local prediction history database.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path,omitempty"`
}

// AlarmConfig controls the high energy usage alarm.
type AlarmConfig struct {
	Enabled         bool       `yaml:"enabled"`
	Threshold       float64    `yaml:"threshold"`
	IntervalSeconds int        `yaml:"interval_seconds"`
	CooldownSeconds int        `yaml:"cooldown_seconds"`
	Source          string     `yaml:"source"`
	MQTT            MQTTConfig `yaml:"mqtt,omitempty"`
}

// MQTTConfig locates the broker publishing household usage readings.
type MQTTConfig struct {
	Broker   string `yaml:"broker,omitempty"`
	Topic    string `yaml:"topic,omitempty"`
	ClientID string `yaml:"client_id,omitempty"`
}

// ServerConfig controls the HTTP endpoint started by `serve`.
type ServerConfig struct {
	Address            string `yaml:"address"`
	ReadTimeoutSeconds int    `yaml:"read_timeout_seconds"`
	WatchConfig        bool   `yaml:"watch_config"`
}

// Defaults returns a Config populated with built-in defaults only.
func Defaults() *Config {
	return &Config{
		Version: version.CurrentConfigSchema,
		Output: OutputConfig{
			DefaultFormat: FormatTable,
			Precision:     defaultPrecision,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTLSeconds: defaultCacheTTLSeconds,
			MaxSizeMB:  defaultCacheMaxSizeMB,
		},
		History: HistoryConfig{Enabled: true},
		Alarm: AlarmConfig{
			Enabled:         true,
			Threshold:       defaultAlarmThreshold,
			IntervalSeconds: defaultAlarmIntervalSec,
			CooldownSeconds: defaultAlarmCooldownSec,
			Source:          SourceSimulated,
			MQTT:            MQTTConfig{Topic: defaultMQTTTopic},
		},
		Server: ServerConfig{
			Address:            defaultServerAddress,
			ReadTimeoutSeconds: defaultReadTimeoutSec,
		},
	}
}

// New returns the effective configuration: defaults, overlaid with the
// config file when one exists, overlaid with environment variables.
// A config file that fails to load is ignored so the CLI stays usable.
func New() *Config {
	cfg := Defaults()

	if dir, err := GetConfigDir(); err == nil {
		path := filepath.Join(dir, configFileName)
		cfg.path = path
		if loaded, loadErr := Load(path); loadErr == nil {
			cfg = loaded
		} else if !errors.Is(loadErr, os.ErrNotExist) {
			_, _ = fmt.Fprintf(os.Stderr, "Warning: ignoring config file %s: %v\n", path, loadErr)
		}
	}

	cfg.applyEnv()
	cfg.fillPaths()
	return cfg
}

// Load reads a config file on top of the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := version.CheckConfigSchema(cfg.Version); err != nil {
		return nil, err
	}
	cfg.path = path
	return cfg, nil
}

// Path returns the file the config was loaded from or will be saved to.
func (c *Config) Path() string {
	return c.path
}

// SetPath changes where Save writes.
func (c *Config) SetPath(path string) {
	c.path = path
}

// Save writes the config as YAML, creating the parent directory.
func (c *Config) Save() error {
	if c.path == "" {
		dir, err := GetConfigDir()
		if err != nil {
			return err
		}
		c.path = filepath.Join(dir, configFileName)
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0o600); err != nil {
		return fmt.Errorf("writing config %s: %w", c.path, err)
	}
	return nil
}

// Validate checks every section and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error

	switch c.Output.DefaultFormat {
	case FormatTable, FormatJSON, FormatNDJSON, FormatReport:
	default:
		errs = append(errs, fmt.Errorf("output.default_format: unsupported format %q", c.Output.DefaultFormat))
	}
	if c.Output.Precision < 0 || c.Output.Precision > maxPrecision {
		errs = append(errs, fmt.Errorf("output.precision must be between 0 and %d", maxPrecision))
	}
	if c.Prediction.LatencyMS < 0 {
		errs = append(errs, errors.New("prediction.latency_ms must be >= 0"))
	}
	if c.Cache.TTLSeconds < 0 {
		errs = append(errs, errors.New("cache.ttl_seconds must be >= 0"))
	}
	if c.Cache.MaxSizeMB < 0 {
		errs = append(errs, errors.New("cache.max_size_mb must be >= 0"))
	}
	if c.Alarm.Threshold < 0 || c.Alarm.Threshold > maxPercent {
		errs = append(errs, errors.New("alarm.threshold must be between 0 and 100"))
	}
	if c.Alarm.IntervalSeconds <= 0 {
		errs = append(errs, errors.New("alarm.interval_seconds must be > 0"))
	}
	if c.Alarm.CooldownSeconds < 0 {
		errs = append(errs, errors.New("alarm.cooldown_seconds must be >= 0"))
	}
	switch c.Alarm.Source {
	case SourceSimulated:
	case SourceMQTT:
		if c.Alarm.MQTT.Broker == "" {
			errs = append(errs, errors.New("alarm.mqtt.broker is required when alarm.source is mqtt"))
		}
	default:
		errs = append(errs, fmt.Errorf("alarm.source: unsupported source %q", c.Alarm.Source))
	}
	if c.Server.Address == "" {
		errs = append(errs, errors.New("server.address cannot be empty"))
	}

	return errors.Join(errs...)
}

// applyEnv overlays ECOPREDICT_* environment variables.
func (c *Config) applyEnv() {
	if v := os.Getenv("ECOPREDICT_OUTPUT_FORMAT"); v != "" {
		c.Output.DefaultFormat = strings.ToLower(v)
	}
	if v := os.Getenv("ECOPREDICT_REPORT_DIR"); v != "" {
		c.Output.ReportDir = v
	}
	if v := os.Getenv("ECOPREDICT_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("ECOPREDICT_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v, ok := envInt("ECOPREDICT_LATENCY_MS"); ok {
		c.Prediction.LatencyMS = v
	}
	if v, ok := envBool("ECOPREDICT_HISTORY_ENABLED"); ok {
		c.History.Enabled = v
	}
	if v := os.Getenv("ECOPREDICT_MQTT_BROKER"); v != "" {
		c.Alarm.MQTT.Broker = v
	}
	if v := os.Getenv("ECOPREDICT_SERVER_ADDRESS"); v != "" {
		c.Server.Address = v
	}
}

// fillPaths derives unset file locations from the config directory.
func (c *Config) fillPaths() {
	dir, err := GetConfigDir()
	if err != nil {
		return
	}
	if c.Cache.Directory == "" {
		c.Cache.Directory = filepath.Join(dir, "cache")
	}
	if c.History.Path == "" {
		c.History.Path = filepath.Join(dir, "history.db")
	}
	if c.Output.ReportDir == "" {
		c.Output.ReportDir = filepath.Join(dir, "reports")
	}
}

func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func envBool(key string) (bool, bool) {
	v := os.Getenv(key)
	if v == "" {
		return false, false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, false
	}
	return b, true
}
