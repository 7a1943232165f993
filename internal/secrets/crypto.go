package secrets

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"fmt"

	kerrors "github.com/PolarWolf314/keymaker/internal/errors"
	"github.com/awnumar/memguard"
)

// AccessKey is a copy of a keyring's symmetric key wrapped for one recipient.
type AccessKey struct {
	recipient Fingerprint
	data      []byte
}

// NewAccessKey rebuilds an AccessKey from its stored parts.
func NewAccessKey(recipient Fingerprint, data []byte) AccessKey {
	return AccessKey{recipient: recipient, data: bytes.Clone(data)}
}

// Recipient returns the fingerprint of the identity the key is wrapped for.
func (a AccessKey) Recipient() Fingerprint {
	return a.recipient
}

// Data returns a copy of the wrapped key.
func (a AccessKey) Data() []byte {
	return bytes.Clone(a.data)
}

// Equal reports whether both access keys carry the same recipient and bytes.
func (a AccessKey) Equal(other AccessKey) bool {
	return a.recipient == other.recipient && bytes.Equal(a.data, other.data)
}

// CreateSymmetricKey generates a new random symmetric key.
func CreateSymmetricKey() ([]byte, error) {
	symKey := make([]byte, KeyLength) // AES-256
	if _, err := rand.Read(symKey); err != nil {
		return nil, err
	}

	return symKey, nil
}

// EncryptWithPublicKey encrypts data using an RSA public key and PKCS#1 v1.5 padding.
func EncryptWithPublicKey(plaintext []byte, publicKey *rsa.PublicKey) ([]byte, error) {
	return rsa.EncryptPKCS1v15(rand.Reader, publicKey, plaintext)
}

// DecryptWithPrivateKey decrypts data using an RSA private key.
func DecryptWithPrivateKey(ciphertext []byte, privateKey *rsa.PrivateKey) ([]byte, error) {
	return rsa.DecryptPKCS1v15(rand.Reader, privateKey, ciphertext)
}

// WrapKey encrypts symKey for recipient.
//
// Returns ErrKeyTooLarge if symKey is longer than the recipient modulus
// allows under PKCS#1 v1.5.
func WrapKey(symKey []byte, recipient *Identity) (AccessKey, error) {
	if limit := recipient.Size() - pkcs1Overhead; len(symKey) > limit {
		return AccessKey{}, fmt.Errorf("%w: %d bytes exceeds the %d byte limit of a %d bit key",
			kerrors.ErrKeyTooLarge, len(symKey), limit, recipient.Size()*8)
	}

	data, err := EncryptWithPublicKey(symKey, recipient.PublicKey())
	if err != nil {
		return AccessKey{}, fmt.Errorf("failed to wrap symmetric key: %w", err)
	}

	return AccessKey{recipient: recipient.Fingerprint(), data: data}, nil
}

// UnwrapKey decrypts the symmetric key held by accessKey.
//
// The caller must have selected the access key matching the identity's
// fingerprint. Any failure, including a key of the wrong length, is
// reported as ErrAccessDenied.
func UnwrapKey(accessKey AccessKey, identity *Identity) ([]byte, error) {
	privateKey, err := identity.privateKey()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrAccessDenied, err)
	}

	symKey, err := DecryptWithPrivateKey(accessKey.data, privateKey)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to unwrap access key for %s", kerrors.ErrAccessDenied, accessKey.recipient)
	}

	if len(symKey) != KeyLength {
		memguard.WipeBytes(symKey)
		return nil, fmt.Errorf("%w: unwrapped key has length %d", kerrors.ErrAccessDenied, len(symKey))
	}

	return symKey, nil
}
