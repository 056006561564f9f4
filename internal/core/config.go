package core

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Config stores client settings.
type Config struct {
	BackendURL  string `json:"backend_url,omitempty"`
	Token       string `json:"token,omitempty"`
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	DataDir     string `json:"data_dir,omitempty"`
	LogLevel    string `json:"log_level,omitempty"`
}

func configPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "greenroom", "config.json"), nil
}

func ensureConfigDir() (string, error) {
	path, err := configPath()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	return path, nil
}

// ReadConfig reads the config file if present. Returns nil when absent.
func ReadConfig() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}
	return &config, nil
}

// WriteConfig writes the config file, creating the directory if needed.
func WriteConfig(config Config) error {
	path, err := ensureConfigDir()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o600)
}

// DefaultDataDir returns the directory for local state (notification
// records, local-mode conversation files).
func DefaultDataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", "greenroom"), nil
}
