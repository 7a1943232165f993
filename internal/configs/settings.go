package configs

import (
	"fmt"
	"os"
	"path/filepath"
)

// ConfigPathEnv overrides the location of the user configuration file.
const ConfigPathEnv = "KEYMAKER_CONFIG"

// Settings holds the filesystem locations KeyMaker uses by default.
type Settings struct {
	// ConfigPath is the user configuration file.
	ConfigPath string

	// DataPath is the root of KeyMaker's data directory.
	DataPath string

	// KeysPath is where generated key pairs are written by default.
	KeysPath string

	// KeyringsPath is where keyrings live unless the config overrides it.
	KeyringsPath string
}

// DefaultSettings resolves the default locations from the environment.
func DefaultSettings() (*Settings, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("error getting home directory: %w", err)
	}

	configPath := os.Getenv(ConfigPathEnv)
	if configPath == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("error getting config directory: %w", err)
		}
		configPath = filepath.Join(configDir, "keymaker", "config.toml")
	}

	dataDir := os.Getenv("XDG_DATA_HOME")

	if dataDir == "" {
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	dataPath := filepath.Join(dataDir, "keymaker")

	return &Settings{
		ConfigPath:   configPath,
		DataPath:     dataPath,
		KeysPath:     filepath.Join(dataPath, "keys"),
		KeyringsPath: filepath.Join(dataPath, "keyrings"),
	}, nil
}
