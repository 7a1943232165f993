package workflows

import (
	"fmt"

	kerrors "github.com/PolarWolf314/keymaker/internal/errors"
	"github.com/PolarWolf314/keymaker/internal/keyring"
	"github.com/PolarWolf314/keymaker/internal/secrets"
	"github.com/awnumar/memguard"
)

// CreateKeyring creates an empty keyring holding a fresh symmetric key
// wrapped for self, and an Encrypter for that key.
//
// The caller owns the returned Encrypter and must Destroy it.
func CreateKeyring(id string, self *secrets.Identity) (*keyring.KeyringNode, *secrets.Encrypter, error) {
	symKey, err := secrets.CreateSymmetricKey()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate symmetric key: %w", err)
	}

	accessKey, err := secrets.WrapKey(symKey, self)
	if err != nil {
		memguard.WipeBytes(symKey)
		return nil, nil, err
	}

	// NewEncrypterFromKey wipes symKey.
	enc, err := secrets.NewEncrypterFromKey(symKey)
	if err != nil {
		return nil, nil, err
	}

	ring := keyring.New(id)
	ring.AddAccessKey(accessKey)

	return ring, enc, nil
}

// OpenKeyring finds self's access key in ring and unwraps it.
//
// Returns ErrAccessDenied if self has no access key or it cannot be unwrapped.
func OpenKeyring(ring *keyring.KeyringNode, self *secrets.Identity) (*secrets.Encrypter, error) {
	accessKey, err := ring.AccessKey(self.Fingerprint())
	if err != nil {
		return nil, err
	}
	return secrets.NewEncrypter(accessKey, self)
}

// ShareKeyring adds an access key for recipient to ring. The symmetric key
// is recovered with selfPrivate; no entry is re-encrypted and every existing
// access key is left untouched.
//
// Returns ErrAlreadyShared if recipient already has access.
func ShareKeyring(ring *keyring.KeyringNode, selfPrivate, recipient *secrets.Identity) (*keyring.KeyringNode, error) {
	if ring.HasAccess(recipient.Fingerprint()) {
		return nil, fmt.Errorf("%w: %s", kerrors.ErrAlreadyShared, recipient.Fingerprint().Short())
	}

	enc, err := OpenKeyring(ring, selfPrivate)
	if err != nil {
		return nil, err
	}
	defer enc.Destroy()

	return shareWith(ring, enc, recipient)
}

func shareWith(ring *keyring.KeyringNode, enc *secrets.Encrypter, recipient *secrets.Identity) (*keyring.KeyringNode, error) {
	if ring.HasAccess(recipient.Fingerprint()) {
		return nil, fmt.Errorf("%w: %s", kerrors.ErrAlreadyShared, recipient.Fingerprint().Short())
	}

	accessKey, err := enc.Wrap(recipient)
	if err != nil {
		return nil, err
	}
	ring.AddAccessKey(accessKey)

	return ring, nil
}

// EncryptEntryForStorage returns a copy of a plaintext entry with every
// property encrypted. Each property gets its own nonce.
func EncryptEntryForStorage(enc *secrets.Encrypter, entry keyring.EntryNode) (keyring.EntryNode, error) {
	encrypted, err := entry.MapProperties(func(name string, property secrets.PropertyNode) (secrets.PropertyNode, error) {
		sealed, err := enc.EncryptProperty(property)
		if err != nil {
			return secrets.PropertyNode{}, fmt.Errorf("property %q: %w", name, err)
		}
		return sealed, nil
	})
	if err != nil {
		return keyring.EntryNode{}, fmt.Errorf("encrypting entry %s: %w", entry.ID(), err)
	}
	return encrypted, nil
}

// DecryptEntryForDisplay returns a plaintext copy of an encrypted entry,
// keyed by plaintext property names. The caller should WipeProperties when
// done with it.
func DecryptEntryForDisplay(enc *secrets.Encrypter, entry keyring.EntryNode) (keyring.EntryNode, error) {
	decrypted, err := entry.MapProperties(func(_ string, property secrets.PropertyNode) (secrets.PropertyNode, error) {
		return enc.DecryptProperty(property)
	})
	if err != nil {
		return keyring.EntryNode{}, fmt.Errorf("decrypting entry %s: %w", entry.ID(), err)
	}
	return decrypted, nil
}

func encryptProperties(enc *secrets.Encrypter, props *keyring.Properties) (keyring.Properties, error) {
	return props.Map(func(_ string, property secrets.PropertyNode) (secrets.PropertyNode, error) {
		return enc.EncryptProperty(property)
	})
}

func decryptProperties(enc *secrets.Encrypter, props *keyring.Properties) (keyring.Properties, error) {
	return props.Map(func(_ string, property secrets.PropertyNode) (secrets.PropertyNode, error) {
		return enc.DecryptProperty(property)
	})
}

// encryptSummary encrypts a change summary into its flat encoding.
func encryptSummary(enc *secrets.Encrypter, summary string) (string, error) {
	node, err := enc.EncryptText(secrets.NewTextNode([]byte(summary)))
	if err != nil {
		return "", fmt.Errorf("encrypting change summary: %w", err)
	}
	return node.Encode(), nil
}

// decryptSummary reverses encryptSummary.
func decryptSummary(enc *secrets.Encrypter, token string) (string, error) {
	node, err := secrets.ParseTextNode(token)
	if err != nil {
		return "", err
	}
	plain, err := enc.DecryptText(node)
	if err != nil {
		return "", err
	}
	defer plain.Wipe()
	return string(plain.Content()), nil
}
