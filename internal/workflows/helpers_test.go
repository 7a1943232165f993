package workflows

import (
	"context"
	"crypto/rand"
	"errors"
	"crypto/rsa"
	"io"
	"sync"
	"testing"

	logger "github.com/PolarWolf314/keymaker/internal/logging"
	"github.com/PolarWolf314/keymaker/internal/keyring"
	"github.com/PolarWolf314/keymaker/internal/secrets"
	"github.com/PolarWolf314/keymaker/internal/storage"
)

var (
	testKeysOnce sync.Once
	testKeys     [2]*rsa.PrivateKey
	testKeysErr  error
)

// testIdentities returns the identities of two users, A and B, shared by
// every test in the package.
func testIdentities(t *testing.T) (*secrets.Identity, *secrets.Identity) {
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

	return secrets.NewIdentity(testKeys[0]), secrets.NewIdentity(testKeys[1])
}

func quietLogger() logger.Logger {
	return logger.Logger{Out: io.Discard, Err: io.Discard}
}

// newTestSession returns a session for identity over store, closed when
// the test ends.
func newTestSession(t *testing.T, identity *secrets.Identity, store storage.Store) *Session {
	t.Helper()

	session, err := NewSession(identity, store, quietLogger())
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	t.Cleanup(session.Close)

	return session
}

var errDiskFull = errors.New("disk full")

// failingStore is a LocalStore whose Persist fails while failPersist is set.
type failingStore struct {
	*storage.LocalStore
	failPersist bool
}

func (f *failingStore) Persist(ctx context.Context, ring *keyring.KeyringNode) error {
	if f.failPersist {
		return errDiskFull
	}
	return f.LocalStore.Persist(ctx, ring)
}
