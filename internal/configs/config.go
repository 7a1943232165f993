package configs

import (
	"fmt"
	"os"

	kerrors "github.com/PolarWolf314/keymaker/internal/errors"
	"github.com/PolarWolf314/keymaker/internal/utils"
)

type UserConfig struct {
	Owner    Owner    `toml:"owner"`
	Security Security `toml:"security"`
	Storage  Storage  `toml:"storage"`
}

// Owner describes the person operating this installation.
type Owner struct {
	Name    string `toml:"name"`
	Email   string `toml:"email"`
	Company string `toml:"company,omitempty"`
}

type Security struct {
	PrivateKey string `toml:"private_key"`
	PublicKey  string `toml:"public_key,omitempty"`
}

type Storage struct {
	KeyringsPath string `toml:"keyrings_path,omitempty"`
}

// LoadUserConfig loads the user configuration from path.
// A missing file yields an empty configuration.
func LoadUserConfig(path string) (*UserConfig, error) {
	config := &UserConfig{}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config, nil
	}

	if err := readTOML(path, config); err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	}

	return config, nil
}

// SaveUserConfig saves the user configuration to path.
func SaveUserConfig(path string, config *UserConfig) error {
	if err := writeTOML(path, config); err != nil {
		return fmt.Errorf("failed to save user config: %w", err)
	}

	return nil
}

// PrivateKeyPath returns the configured private key with ~ expanded.
//
// Returns ErrNotConfigured if no private key has been configured.
func (c *UserConfig) PrivateKeyPath() (string, error) {
	if c.Security.PrivateKey == "" {
		return "", fmt.Errorf("%w: no private key configured (run `keymaker config init`)", kerrors.ErrNotConfigured)
	}
	return utils.ExpandHome(c.Security.PrivateKey)
}

// PublicKeyPath returns the configured public key, defaulting to the
// private key path with a ".pub" suffix.
func (c *UserConfig) PublicKeyPath() (string, error) {
	if c.Security.PublicKey != "" {
		return utils.ExpandHome(c.Security.PublicKey)
	}
	privatePath, err := c.PrivateKeyPath()
	if err != nil {
		return "", err
	}
	return privatePath + ".pub", nil
}

// KeyringsPath returns the configured keyring directory, falling back to
// the default from settings.
func (c *UserConfig) KeyringsPath(settings *Settings) (string, error) {
	if c.Storage.KeyringsPath != "" {
		return utils.ExpandHome(c.Storage.KeyringsPath)
	}
	return settings.KeyringsPath, nil
}
