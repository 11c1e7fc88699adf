package config

import (
	"os"
	"path/filepath"
)

// GetGlobalConfigDir returns the global configuration directory (~/.agentwriting).
// It's a variable to allow overriding in tests.
var GetGlobalConfigDir = func() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ConfigName), nil
}

// GlobalConfigFile returns the path of the global config file.
func GlobalConfigFile() (string, error) {
	dir, err := GetGlobalConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// CrashLogDir returns where crash reports are written. Falls back to the
// working directory when the home directory is unknown.
func CrashLogDir() string {
	dir, err := GetGlobalConfigDir()
	if err != nil {
		return ConfigName
	}
	return filepath.Join(dir, "logs")
}
