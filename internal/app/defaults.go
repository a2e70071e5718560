package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - RELIEF_CONFIG_PATH: config file location (default: ~/.config/relief.toml)
//   - RELIEF_HOME: base directory for relief data (default: ~/.local/share/relief)
func GetDefaults() (map[string]string, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	baseDir, err := getBaseDir()
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"config_path": configPath,
		"base_dir":    baseDir,
		"log_dir":     filepath.Join(baseDir, "log"),
		"store_dir":   filepath.Join(baseDir, "store"),
	}, nil
}

// getConfigPath returns the config file path, checking RELIEF_CONFIG_PATH first,
// then falling back to ~/.config/relief.toml.
func getConfigPath() (string, error) {
	if path := os.Getenv("RELIEF_CONFIG_PATH"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "relief.toml"), nil
}

// getBaseDir returns the data directory, checking RELIEF_HOME first, then
// falling back to the XDG default ~/.local/share/relief.
func getBaseDir() (string, error) {
	if path := os.Getenv("RELIEF_HOME"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "relief"), nil
}
