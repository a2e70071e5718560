package backend

import (
	"path/filepath"
	"testing"

	"relief-go/internal/config"
)

func TestNewBackendFromConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.StoreConfig
		wantErr bool
	}{
		{
			name: "memory store",
			cfg:  config.StoreConfig{Type: "memory"},
		},
		{
			name: "filesystem store",
			cfg:  config.StoreConfig{Type: "filesystem", Dir: filepath.Join(t.TempDir(), "store")},
		},
		{
			name:    "filesystem store without dir",
			cfg:     config.StoreConfig{Type: "filesystem"},
			wantErr: true,
		},
		{
			name: "sqlite store",
			cfg:  config.StoreConfig{Type: "sqlite", Path: filepath.Join(t.TempDir(), "relief.db")},
		},
		{
			name:    "sqlite store without path",
			cfg:     config.StoreConfig{Type: "sqlite"},
			wantErr: true,
		},
		{
			name:    "postgres store without dsn",
			cfg:     config.StoreConfig{Type: "postgres"},
			wantErr: true,
		},
		{
			name:    "redis store without addr",
			cfg:     config.StoreConfig{Type: "redis"},
			wantErr: true,
		},
		{
			name:    "s3 store without bucket",
			cfg:     config.StoreConfig{Type: "s3"},
			wantErr: true,
		},
		{
			name:    "bad timeout",
			cfg:     config.StoreConfig{Type: "memory", Timeout: "later"},
			wantErr: true,
		},
		{
			name:    "unknown store type",
			cfg:     config.StoreConfig{Type: "floppy"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewBackendFromConfig(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewBackendFromConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if got != nil {
					t.Error("NewBackendFromConfig() should return nil on error")
				}
				return
			}
			if got == nil {
				t.Fatal("NewBackendFromConfig() returned nil")
			}
			got.Close()
		})
	}
}
