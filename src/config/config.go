package config

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const appDirName = "chargen"

// GetConfigDir returns the OS-appropriate configuration directory for chargen
func GetConfigDir() (string, error) {
	return filepath.Join(xdg.ConfigHome, appDirName), nil
}

// GetDataDir returns the directory for mutable data (database, socket, pid file)
func GetDataDir() (string, error) {
	return filepath.Join(xdg.DataHome, appDirName), nil
}

// GetCatalogDir returns the directory where user catalog overrides are stored
func GetCatalogDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "catalog"), nil
}

// GetDatabasePath returns the default path of the libsql database
func GetDatabasePath() (string, error) {
	dataDir, err := GetDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "chargen.db"), nil
}

// GetSocketPath returns the path of the daemon's unix socket
func GetSocketPath() (string, error) {
	dataDir, err := GetDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "daemon.sock"), nil
}

// EnsureDirs creates the config, catalog and data directories if they don't exist
func EnsureDirs() error {
	configDir, err := GetConfigDir()
	if err != nil {
		return err
	}

	catalogDir, err := GetCatalogDir()
	if err != nil {
		return err
	}

	dataDir, err := GetDataDir()
	if err != nil {
		return err
	}

	for _, dir := range []string{configDir, catalogDir, dataDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	return nil
}
