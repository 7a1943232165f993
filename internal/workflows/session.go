package workflows

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/keymaker/internal/audit"
	kerrors "github.com/PolarWolf314/keymaker/internal/errors"
	"github.com/PolarWolf314/keymaker/internal/keyring"
	logger "github.com/PolarWolf314/keymaker/internal/logging"
	"github.com/PolarWolf314/keymaker/internal/secrets"
	"github.com/PolarWolf314/keymaker/internal/storage"
	"github.com/google/uuid"
)

// Change summaries recorded in keyring history.
const (
	summaryCreate = "Initial commit"
	summaryShare  = "Shared repository"
	summaryRename = "Renamed repository"
	summaryAdd    = "Added entry"
	summaryUpdate = "Updated entry"
	summaryRemove = "Removed entry"
)

// NameProperty is the keyring property holding the repository display name.
const NameProperty = "name"

// Session holds the authenticated identity and at most one open keyring
// with its Encrypter. It is built by Authenticate or NewSession and passed
// explicitly to each operation.
//
// A Session is not safe for concurrent use. Call Close when done to wipe
// the keyring key.
type Session struct {
	identity *secrets.Identity
	store    storage.Store
	log      logger.Logger

	ring *keyring.KeyringNode
	enc  *secrets.Encrypter
}

// NewSession creates a session for identity backed by store.
//
// Returns ErrInvalidKey if identity has no private key.
func NewSession(identity *secrets.Identity, store storage.Store, log logger.Logger) (*Session, error) {
	if !identity.IsPrivate() {
		return nil, fmt.Errorf("%w: a session requires a private key", kerrors.ErrInvalidKey)
	}
	return &Session{identity: identity, store: store, log: log}, nil
}

// Identity returns the session's identity.
func (s *Session) Identity() *secrets.Identity {
	return s.identity
}

// Fingerprint returns the fingerprint of the session's identity.
func (s *Session) Fingerprint() secrets.Fingerprint {
	return s.identity.Fingerprint()
}

// ID returns the id of the open keyring, or "" if none is open.
func (s *Session) ID() string {
	if s.ring == nil {
		return ""
	}
	return s.ring.ID()
}

// Close wipes the open keyring's key. The session can open another keyring
// afterwards.
func (s *Session) Close() {
	if s.enc != nil {
		s.enc.Destroy()
	}
	s.enc = nil
	s.ring = nil
}

func (s *Session) adopt(ring *keyring.KeyringNode, enc *secrets.Encrypter) {
	s.Close()
	s.ring = ring
	s.enc = enc
}

func (s *Session) requireOpen() error {
	if s.ring == nil || s.enc == nil {
		return kerrors.ErrNoSession
	}
	return nil
}

// CreateRepository creates a keyring named name with a fresh random id,
// shares it with the session's identity only, persists it and opens it.
func (s *Session) CreateRepository(ctx context.Context, name string) (string, error) {
	id := uuid.New().String()

	ring, enc, err := CreateKeyring(id, s.identity)
	if err != nil {
		return "", err
	}

	if err := setRepositoryName(ring, enc, name); err != nil {
		enc.Destroy()
		return "", err
	}

	if err := s.store.Persist(ctx, ring); err != nil {
		enc.Destroy()
		return "", fmt.Errorf("persisting keyring %s: %w", id, err)
	}

	s.adopt(ring, enc)
	s.log.Infof("Created keyring %s", id)

	if err := s.record(ctx, audit.OpCreate, summaryCreate, "", ""); err != nil {
		return id, err
	}

	return id, nil
}

// Open retrieves keyring id and unwraps the session identity's access key.
//
// Returns ErrKeyringNotFound if the keyring does not exist and
// ErrAccessDenied if it has not been shared with this identity.
func (s *Session) Open(ctx context.Context, id string) error {
	ring, err := s.store.Retrieve(ctx, id)
	if err != nil {
		return err
	}

	enc, err := OpenKeyring(ring, s.identity)
	if err != nil {
		return err
	}

	s.adopt(ring, enc)
	s.log.Debugf("Opened keyring %s as %s", id, s.Fingerprint().Short())
	return nil
}

// Name returns the decrypted display name of the open keyring. A keyring
// without a name yields "".
func (s *Session) Name() (string, error) {
	if err := s.requireOpen(); err != nil {
		return "", err
	}
	return repositoryName(s.ring, s.enc)
}

// Rename replaces the open keyring's display name.
func (s *Session) Rename(ctx context.Context, name string) error {
	if err := s.requireOpen(); err != nil {
		return err
	}
	err := s.commit(ctx, func(ring *keyring.KeyringNode) error {
		return setRepositoryName(ring, s.enc, name)
	})
	if err != nil {
		return err
	}
	return s.record(ctx, audit.OpRename, summaryRename, "", "")
}

// Share grants recipient access to the open keyring.
//
// Returns ErrAlreadyShared if recipient already has access.
func (s *Session) Share(ctx context.Context, recipient *secrets.Identity) error {
	if err := s.requireOpen(); err != nil {
		return err
	}

	err := s.commit(ctx, func(ring *keyring.KeyringNode) error {
		_, err := shareWith(ring, s.enc, recipient)
		return err
	})
	if err != nil {
		return err
	}

	s.log.Infof("Shared keyring %s with %s", s.ring.ID(), recipient.Fingerprint().Short())
	return s.record(ctx, audit.OpShare, summaryShare, "", recipient.Fingerprint().String())
}

// Recipients returns the fingerprints of every identity with access to the
// open keyring.
func (s *Session) Recipients() ([]secrets.Fingerprint, error) {
	if err := s.requireOpen(); err != nil {
		return nil, err
	}

	keys := s.ring.AccessKeys()
	recipients := make([]secrets.Fingerprint, 0, len(keys))
	for _, accessKey := range keys {
		recipients = append(recipients, accessKey.Recipient())
	}
	return recipients, nil
}

// Destroy removes the open keyring from storage and closes it.
func (s *Session) Destroy(ctx context.Context) error {
	if err := s.requireOpen(); err != nil {
		return err
	}

	id := s.ring.ID()
	if err := s.store.Destroy(ctx, id); err != nil {
		return err
	}

	s.Close()
	s.log.Infof("Destroyed keyring %s", id)
	return nil
}

// commit applies mutate to a copy of the open keyring and adopts the copy
// only once it is persisted. A failed mutation or write leaves the open
// keyring as it was.
func (s *Session) commit(ctx context.Context, mutate func(ring *keyring.KeyringNode) error) error {
	next := s.ring.Clone()
	if err := mutate(next); err != nil {
		return err
	}
	if err := s.store.Persist(ctx, next); err != nil {
		return fmt.Errorf("persisting keyring %s: %w", next.ID(), err)
	}
	s.ring = next
	return nil
}

// record stores one change with an encrypted summary.
func (s *Session) record(ctx context.Context, op, summary, entryID, target string) error {
	token, err := encryptSummary(s.enc, summary)
	if err != nil {
		return err
	}

	change := audit.Entry{
		Operation: op,
		Recipient: s.Fingerprint().String(),
		Summary:   token,
		EntryID:   entryID,
		Target:    target,
	}
	if err := s.store.RecordChange(ctx, s.ring.ID(), change); err != nil {
		return fmt.Errorf("recording change to %s: %w", s.ring.ID(), err)
	}
	return nil
}

func repositoryName(ring *keyring.KeyringNode, enc *secrets.Encrypter) (string, error) {
	plain, err := decryptProperties(enc, &ring.Properties)
	if err != nil {
		return "", fmt.Errorf("decrypting keyring properties: %w", err)
	}
	defer plain.WipeProperties()

	name, err := plain.Value(NameProperty)
	if err != nil {
		return "", nil
	}
	return name, nil
}

// setRepositoryName re-encrypts the keyring's property bag with name set.
// Encrypted properties are keyed by ciphertext, so the bag is rebuilt as a
// whole rather than updated in place.
func setRepositoryName(ring *keyring.KeyringNode, enc *secrets.Encrypter, name string) error {
	plain, err := decryptProperties(enc, &ring.Properties)
	if err != nil {
		return fmt.Errorf("decrypting keyring properties: %w", err)
	}
	defer plain.WipeProperties()

	plain.SetValue(NameProperty, name)

	sealed, err := encryptProperties(enc, &plain)
	if err != nil {
		return fmt.Errorf("encrypting keyring name: %w", err)
	}
	ring.ReplaceProperties(sealed)
	return nil
}
