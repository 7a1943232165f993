package secrets

import (
	"crypto/rand"
	"crypto/rsa"
	"sync"
	"testing"
)

var (
	testKeysOnce sync.Once
	testKeys     [2]*rsa.PrivateKey
	testKeysErr  error
)

// testIdentities returns two private identities shared by every test in the
// package. Key generation is slow, so the keys are created once.
func testIdentities(t *testing.T) (*Identity, *Identity) {
	t.Helper()

	testKeysOnce.Do(func() {
		for i := range testKeys {
			testKeys[i], testKeysErr = rsa.GenerateKey(rand.Reader, 2048)
			if testKeysErr != nil {
				return
			}
		}
	})
	if testKeysErr != nil {
		t.Fatalf("Failed to generate RSA keys: %v", testKeysErr)
	}

	return NewIdentity(testKeys[0]), NewIdentity(testKeys[1])
}

// newTestEncrypter returns an Encrypter over a fresh random key that is
// destroyed when the test ends.
func newTestEncrypter(t *testing.T) *Encrypter {
	t.Helper()

	key, err := CreateSymmetricKey()
	if err != nil {
		t.Fatalf("Failed to create symmetric key: %v", err)
	}
	enc, err := NewEncrypterFromKey(key)
	if err != nil {
		t.Fatalf("Failed to create encrypter: %v", err)
	}
	t.Cleanup(enc.Destroy)

	return enc
}
