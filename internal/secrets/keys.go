package secrets

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"

	kerrors "github.com/PolarWolf314/keymaker/internal/errors"
	"golang.org/x/crypto/ssh"
)

// ErrPassphraseRequired is returned when an encrypted private key is loaded
// without a passphrase.
var ErrPassphraseRequired = kerrors.ErrPassphraseRequired

// Identity is an RSA key pair, or only its public half.
type Identity struct {
	public  *rsa.PublicKey
	private *rsa.PrivateKey
}

// NewIdentity wraps an RSA private key.
func NewIdentity(key *rsa.PrivateKey) *Identity {
	return &Identity{public: &key.PublicKey, private: key}
}

// NewPublicIdentity wraps an RSA public key.
func NewPublicIdentity(key *rsa.PublicKey) *Identity {
	return &Identity{public: key}
}

// LoadPrivateIdentity parses a PEM or OpenSSH encoded RSA private key.
//
// Returns ErrWrongPassphrase if the key is encrypted and the passphrase is
// missing or incorrect, and ErrInvalidKey for anything that is not an RSA
// private key.
func LoadPrivateIdentity(data, passphrase []byte) (*Identity, error) {
	key, err := parseOpenSSHPrivateKey(data, passphrase)
	if err != nil {
		return nil, err
	}
	return NewIdentity(key), nil
}

// LoadPrivateIdentityFile reads and parses a private key file.
func LoadPrivateIdentityFile(path string, passphrase []byte) (*Identity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key at %s: %w", path, err)
	}
	return LoadPrivateIdentity(data, passphrase)
}

// parseOpenSSHPrivateKey accepts every private key container x/crypto/ssh
// understands (PKCS#1, PKCS#8, OpenSSH, legacy encrypted PEM) and keeps RSA keys.
func parseOpenSSHPrivateKey(data, passphrase []byte) (*rsa.PrivateKey, error) {
	raw, err := ssh.ParseRawPrivateKey(data)

	var missing *ssh.PassphraseMissingError
	if errors.As(err, &missing) {
		if len(passphrase) == 0 {
			return nil, fmt.Errorf("%w: %w", ErrPassphraseRequired, kerrors.ErrWrongPassphrase)
		}

		raw, err = ssh.ParseRawPrivateKeyWithPassphrase(data, passphrase)
		if err != nil {
			// The key is known to be encrypted, so a failure here means the
			// passphrase did not decrypt it.
			return nil, fmt.Errorf("%w: %v", kerrors.ErrWrongPassphrase, err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrInvalidKey, err)
	}

	key, ok := raw.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported key type %T, only RSA keys are supported", kerrors.ErrInvalidKey, raw)
	}
	if err := key.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrInvalidKey, err)
	}

	return key, nil
}

// LoadPublicIdentity parses an RSA public key. PEM encoded PKCS#1 and PKIX
// keys, raw PKCS#1 DER as produced by Export, and OpenSSH authorized_keys
// lines are accepted.
func LoadPublicIdentity(data []byte) (*Identity, error) {
	if block, _ := pem.Decode(data); block != nil {
		switch block.Type {
		case "RSA PUBLIC KEY":
			key, err := x509.ParsePKCS1PublicKey(block.Bytes)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", kerrors.ErrInvalidKey, err)
			}
			return NewPublicIdentity(key), nil

		case "PUBLIC KEY":
			parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", kerrors.ErrInvalidKey, err)
			}
			key, ok := parsed.(*rsa.PublicKey)
			if !ok {
				return nil, fmt.Errorf("%w: not an RSA public key", kerrors.ErrInvalidKey)
			}
			return NewPublicIdentity(key), nil

		default:
			return nil, fmt.Errorf("%w: unexpected PEM block %q", kerrors.ErrInvalidKey, block.Type)
		}
	}

	if key, err := x509.ParsePKCS1PublicKey(data); err == nil {
		return NewPublicIdentity(key), nil
	}

	sshKey, _, _, _, err := ssh.ParseAuthorizedKey(data)
	if err != nil {
		return nil, fmt.Errorf("%w: unrecognized public key format", kerrors.ErrInvalidKey)
	}
	cryptoKey, ok := sshKey.(ssh.CryptoPublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported ssh key type %s", kerrors.ErrInvalidKey, sshKey.Type())
	}
	key, ok := cryptoKey.CryptoPublicKey().(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported ssh key type %s, only RSA keys are supported", kerrors.ErrInvalidKey, sshKey.Type())
	}

	return NewPublicIdentity(key), nil
}

// LoadPublicIdentityFile reads and parses a public key file.
func LoadPublicIdentityFile(path string) (*Identity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read public key at %s: %w", path, err)
	}
	return LoadPublicIdentity(data)
}

// IsPrivate reports whether the identity holds a private key.
func (i *Identity) IsPrivate() bool {
	return i.private != nil
}

// Public returns the public half of the identity.
func (i *Identity) Public() *Identity {
	return NewPublicIdentity(i.public)
}

// PublicKey returns the RSA public key.
func (i *Identity) PublicKey() *rsa.PublicKey {
	return i.public
}

// Size returns the modulus length in bytes.
func (i *Identity) Size() int {
	return i.public.Size()
}

// Export returns the canonical form of the public key, PKCS#1 DER.
func (i *Identity) Export() []byte {
	return x509.MarshalPKCS1PublicKey(i.public)
}

// ExportPEM returns the public key as an "RSA PUBLIC KEY" PEM block.
func (i *Identity) ExportPEM() []byte {
	return pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PUBLIC KEY",
		Bytes: i.Export(),
	})
}

// Fingerprint returns the identity's fingerprint.
func (i *Identity) Fingerprint() Fingerprint {
	return FingerprintOf(i.public)
}

func (i *Identity) privateKey() (*rsa.PrivateKey, error) {
	if i.private == nil {
		return nil, fmt.Errorf("%w: identity %s has no private key", kerrors.ErrInvalidKey, i.Fingerprint())
	}
	return i.private, nil
}
