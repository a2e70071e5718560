package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for relief.
type Config struct {
	DataDir   string          `toml:"data_dir"`
	LogDir    string          `toml:"log_dir"`
	Log       LogConfig       `toml:"log"`
	Store     StoreConfig     `toml:"store"`
	Auth      AuthConfig      `toml:"auth"`
	Integrity IntegrityConfig `toml:"integrity"`
}

// LogConfig selects the log level and output format.
type LogConfig struct {
	Level  string `toml:"level"`  // "debug", "info" (default), "warn" or "error"
	Format string `toml:"format"` // "console" (default) or "json"
	File   bool   `toml:"file"`   // also write to <log_dir>/relief.log
}

// StoreConfig represents configuration for the collection backend.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type StoreConfig struct {
	Type    string `toml:"type"`    // "memory", "filesystem", "sqlite", "postgres", "redis" or "s3"
	Timeout string `toml:"timeout"` // per-call timeout for network backends, e.g. "5s"

	// filesystem: one JSON file per key under Dir
	// sqlite: database file at Path
	Dir  string `toml:"dir,omitempty"`
	Path string `toml:"path,omitempty"`

	// postgres
	DSN string `toml:"dsn,omitempty"`

	// redis
	RedisAddr     string `toml:"redis_addr,omitempty"`
	RedisPassword string `toml:"redis_password,omitempty"`
	RedisDB       int    `toml:"redis_db,omitempty"`
	RedisPrefix   string `toml:"redis_prefix,omitempty"`

	// s3
	S3Bucket    string `toml:"s3_bucket,omitempty"`
	S3Prefix    string `toml:"s3_prefix,omitempty"`
	S3Region    string `toml:"s3_region,omitempty"`
	S3Endpoint  string `toml:"s3_endpoint,omitempty"`
	S3PathStyle bool   `toml:"s3_path_style,omitempty"`
	S3AccessKey string `toml:"s3_access_key,omitempty"`
	S3SecretKey string `toml:"s3_secret_key,omitempty"`
}

// DefaultTimeout applies when StoreConfig.Timeout is empty.
const DefaultTimeout = 5 * time.Second

// TimeoutDuration parses Timeout, falling back to DefaultTimeout when empty.
func (s StoreConfig) TimeoutDuration() (time.Duration, error) {
	if s.Timeout == "" {
		return DefaultTimeout, nil
	}
	d, err := time.ParseDuration(s.Timeout)
	if err != nil {
		return 0, fmt.Errorf("parsing store timeout: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("store timeout must be positive, got %s", s.Timeout)
	}
	return d, nil
}

// AuthConfig tunes credential handling.
type AuthConfig struct {
	BcryptCost        int `toml:"bcrypt_cost"`         // 0 selects bcrypt's default
	MinPasswordLength int `toml:"min_password_length"` // 0 selects 6
}

// IntegrityConfig holds referential integrity policies.
type IntegrityConfig struct {
	HouseholdDelete string `toml:"household_delete"` // "restrict" (default) or "cascade"
}

// NewConfig creates a new Config rooted at dataDir with a filesystem store.
func NewConfig(dataDir string) *Config {
	return &Config{
		DataDir: dataDir,
		LogDir:  filepath.Join(dataDir, "log"),
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Store: StoreConfig{
			Type: "filesystem",
			Dir:  filepath.Join(dataDir, "store"),
		},
		Integrity: IntegrityConfig{
			HouseholdDelete: "restrict",
		},
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// The file may carry database and S3 credentials.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
