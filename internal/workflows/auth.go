package workflows

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/PolarWolf314/keymaker/internal/configs"
	kerrors "github.com/PolarWolf314/keymaker/internal/errors"
	logger "github.com/PolarWolf314/keymaker/internal/logging"
	"github.com/PolarWolf314/keymaker/internal/secrets"
	"github.com/PolarWolf314/keymaker/internal/storage"
	"github.com/awnumar/memguard"
)

// AuthOptions configures Authenticate.
type AuthOptions struct {
	// Config is the loaded user configuration.
	Config *configs.UserConfig

	// Settings supplies default paths.
	Settings *configs.Settings

	// Passphrase is called only if the private key is encrypted. The
	// returned slice is wiped after use.
	Passphrase func() ([]byte, error)

	// Verbose enables verbose output.
	Verbose bool

	// Debug enables debug output.
	Debug bool
}

// Authenticate loads the configured private key and returns a Session
// backed by the configured keyring directory.
//
// Returns ErrNotConfigured if no private key is configured and
// ErrWrongPassphrase if the key cannot be decrypted.
func Authenticate(ctx context.Context, opts AuthOptions) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log := logger.Logger{Verbose: opts.Verbose, Debug: opts.Debug}

	keyPath, err := opts.Config.PrivateKeyPath()
	if err != nil {
		return nil, err
	}
	keyringsPath, err := opts.Config.KeyringsPath(opts.Settings)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key at %s: %w", keyPath, err)
	}
	defer memguard.WipeBytes(data)

	identity, err := loadIdentity(data, opts.Passphrase)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", keyPath, err)
	}
	log.Debugf("Authenticated as %s", identity.Fingerprint().Short())

	return NewSession(identity, storage.NewLocalStore(keyringsPath), log)
}

func loadIdentity(data []byte, passphrase func() ([]byte, error)) (*secrets.Identity, error) {
	identity, err := secrets.LoadPrivateIdentity(data, nil)
	if !errors.Is(err, kerrors.ErrPassphraseRequired) {
		return identity, err
	}
	if passphrase == nil {
		return nil, err
	}

	secret, err := passphrase()
	if err != nil {
		return nil, fmt.Errorf("reading passphrase: %w", err)
	}
	defer memguard.WipeBytes(secret)

	if len(secret) == 0 {
		return nil, fmt.Errorf("%w: %w", kerrors.ErrPassphraseRequired, kerrors.ErrWrongPassphrase)
	}
	return secrets.LoadPrivateIdentity(data, secret)
}
