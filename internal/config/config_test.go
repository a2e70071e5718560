package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestManager_ReadWrite_RoundTrip(t *testing.T) {
	original := &Config{
		DataDir: "/home/user/.local/share/relief",
		LogDir:  "/home/user/.local/share/relief/log",
		Log:     LogConfig{Level: "debug", Format: "json", File: true},
		Store: StoreConfig{
			Type:        "s3",
			Timeout:     "3s",
			S3Bucket:    "relief-data",
			S3Prefix:    "prod/",
			S3Region:    "us-east-1",
			S3Endpoint:  "http://localhost:9000",
			S3PathStyle: true,
		},
		Auth:      AuthConfig{BcryptCost: 12, MinPasswordLength: 8},
		Integrity: IntegrityConfig{HouseholdDelete: "cascade"},
	}

	var buf bytes.Buffer
	m := &Manager{}

	if err := m.Write(&buf, original); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.DataDir != original.DataDir {
		t.Errorf("DataDir = %q, want %q", got.DataDir, original.DataDir)
	}
	if got.LogDir != original.LogDir {
		t.Errorf("LogDir = %q, want %q", got.LogDir, original.LogDir)
	}
	if got.Log != original.Log {
		t.Errorf("Log = %+v, want %+v", got.Log, original.Log)
	}
	if got.Store != original.Store {
		t.Errorf("Store = %+v, want %+v", got.Store, original.Store)
	}
	if got.Auth != original.Auth {
		t.Errorf("Auth = %+v, want %+v", got.Auth, original.Auth)
	}
	if got.Integrity.HouseholdDelete != "cascade" {
		t.Errorf("Integrity.HouseholdDelete = %q, want %q", got.Integrity.HouseholdDelete, "cascade")
	}
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig("/data/relief")

	if cfg.DataDir != "/data/relief" {
		t.Errorf("DataDir = %q, want %q", cfg.DataDir, "/data/relief")
	}
	if cfg.LogDir != "/data/relief/log" {
		t.Errorf("LogDir = %q, want %q", cfg.LogDir, "/data/relief/log")
	}
	if cfg.Store.Type != "filesystem" {
		t.Errorf("Store.Type = %q, want %q", cfg.Store.Type, "filesystem")
	}
	if cfg.Store.Dir != "/data/relief/store" {
		t.Errorf("Store.Dir = %q, want %q", cfg.Store.Dir, "/data/relief/store")
	}
	if cfg.Integrity.HouseholdDelete != "restrict" {
		t.Errorf("Integrity.HouseholdDelete = %q, want %q", cfg.Integrity.HouseholdDelete, "restrict")
	}
}

func TestStoreConfig_TimeoutDuration(t *testing.T) {
	tests := []struct {
		name    string
		timeout string
		want    time.Duration
		wantErr bool
	}{
		{name: "empty uses default", timeout: "", want: DefaultTimeout},
		{name: "explicit", timeout: "250ms", want: 250 * time.Millisecond},
		{name: "garbage", timeout: "soon", wantErr: true},
		{name: "negative", timeout: "-1s", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := StoreConfig{Timeout: tt.timeout}.TimeoutDuration()
			if (err != nil) != tt.wantErr {
				t.Fatalf("TimeoutDuration() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("TimeoutDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInit(t *testing.T) {
	t.Run("creates config file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "relief.toml")
		cfg := NewConfig(dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("config file not created: %v", err)
		}
		if perm := info.Mode().Perm(); perm != 0600 {
			t.Errorf("config file mode = %o, want 600", perm)
		}
	})

	t.Run("fails if file already exists", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "relief.toml")
		cfg := NewConfig(dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("first Init() error = %v", err)
		}

		err := Init(path, cfg)
		if err == nil {
			t.Fatal("second Init() expected error")
		}
	})
}

func TestReadFromFile(t *testing.T) {
	t.Run("reads valid config", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "relief.toml")
		cfg := NewConfig(dir)
		cfg.Store = StoreConfig{Type: "memory"}

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		got, err := ReadFromFile(path)
		if err != nil {
			t.Fatalf("ReadFromFile() error = %v", err)
		}
		if got.Store.Type != "memory" {
			t.Errorf("Store.Type = %q, want %q", got.Store.Type, "memory")
		}
		if got.DataDir != dir {
			t.Errorf("DataDir = %q, want %q", got.DataDir, dir)
		}
	})

	t.Run("returns error for missing file", func(t *testing.T) {
		_, err := ReadFromFile("/nonexistent/path/relief.toml")
		if err == nil {
			t.Fatal("ReadFromFile() expected error for missing file")
		}
	})
}
