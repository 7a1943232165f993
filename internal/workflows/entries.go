package workflows

import (
	"context"
	"fmt"
	"sort"

	"github.com/PolarWolf314/keymaker/internal/audit"
	kerrors "github.com/PolarWolf314/keymaker/internal/errors"
	"github.com/PolarWolf314/keymaker/internal/keyring"
	"github.com/bmatcuk/doublestar/v4"
)

// EntryNameProperty is the property every entry is identified by in listings.
const EntryNameProperty = "name"

// AddEntry encrypts a new entry holding values and stores it in the open
// keyring. Returns the new entry's id.
//
// Returns ErrMissingName if values has no non-empty "name".
func (s *Session) AddEntry(ctx context.Context, values map[string]string) (string, error) {
	if err := s.requireOpen(); err != nil {
		return "", err
	}
	if values[EntryNameProperty] == "" {
		return "", kerrors.ErrMissingName
	}

	plain := keyring.NewEntry()
	for _, name := range sortedKeys(values) {
		plain.SetValue(name, values[name])
	}
	defer plain.WipeProperties()

	err := s.commit(ctx, func(ring *keyring.KeyringNode) error {
		return s.storeEntry(ring, plain)
	})
	if err != nil {
		return "", err
	}

	s.log.Debugf("Added entry %s to keyring %s", plain.ID(), s.ring.ID())
	return plain.ID(), s.record(ctx, audit.OpAdd, summaryAdd, plain.ID(), "")
}

// UpdateEntry sets and removes properties of entry id. Removing the name is
// not allowed.
func (s *Session) UpdateEntry(ctx context.Context, id string, set map[string]string, unset []string) error {
	if err := s.requireOpen(); err != nil {
		return err
	}

	plain, err := s.Entry(id)
	if err != nil {
		return err
	}
	defer plain.WipeProperties()

	for _, name := range sortedKeys(set) {
		plain.SetValue(name, set[name])
	}
	for _, name := range unset {
		plain.RemoveProperty(name)
	}
	if name, err := plain.Value(EntryNameProperty); err != nil || name == "" {
		return kerrors.ErrMissingName
	}

	err = s.commit(ctx, func(ring *keyring.KeyringNode) error {
		return s.storeEntry(ring, plain)
	})
	if err != nil {
		return err
	}

	return s.record(ctx, audit.OpUpdate, summaryUpdate, id, "")
}

// RemoveEntry deletes entry id from the open keyring.
func (s *Session) RemoveEntry(ctx context.Context, id string) error {
	if err := s.requireOpen(); err != nil {
		return err
	}
	err := s.commit(ctx, func(ring *keyring.KeyringNode) error {
		return ring.RemoveEntry(id)
	})
	if err != nil {
		return err
	}
	return s.record(ctx, audit.OpRemove, summaryRemove, id, "")
}

// Entry returns entry id decrypted. The caller should WipeProperties when done.
func (s *Session) Entry(id string) (keyring.EntryNode, error) {
	if err := s.requireOpen(); err != nil {
		return keyring.EntryNode{}, err
	}

	entry, err := s.ring.Entry(id)
	if err != nil {
		return keyring.EntryNode{}, err
	}
	return DecryptEntryForDisplay(s.enc, entry)
}

// EachEntry calls fn with every entry of the open keyring decrypted, in id
// order. Each decrypted entry is wiped after fn returns.
func (s *Session) EachEntry(fn func(entry keyring.EntryNode) error) error {
	if err := s.requireOpen(); err != nil {
		return err
	}

	return s.ring.EachEntry(func(_ string, entry keyring.EntryNode) error {
		plain, err := DecryptEntryForDisplay(s.enc, entry)
		if err != nil {
			return err
		}
		defer plain.WipeProperties()
		return fn(plain)
	})
}

// EntrySummary identifies an entry without exposing its secret fields.
type EntrySummary struct {
	ID   string
	Name string
}

// ListEntries returns the id and name of every entry, sorted by name.
func (s *Session) ListEntries() ([]EntrySummary, error) {
	return s.FindEntries("")
}

// FindEntries returns the entries whose name matches the doublestar
// pattern, sorted by name. An empty pattern matches every entry.
//
// Returns ErrInvalidPattern if pattern is malformed.
func (s *Session) FindEntries(pattern string) ([]EntrySummary, error) {
	if pattern != "" && !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("%w: %q", kerrors.ErrInvalidPattern, pattern)
	}

	var found []EntrySummary
	err := s.EachEntry(func(entry keyring.EntryNode) error {
		name, _ := entry.Value(EntryNameProperty)
		if pattern != "" {
			matched, err := doublestar.Match(pattern, name)
			if err != nil {
				return fmt.Errorf("%w: %v", kerrors.ErrInvalidPattern, err)
			}
			if !matched {
				return nil
			}
		}
		found = append(found, EntrySummary{ID: entry.ID(), Name: name})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(found, func(i, j int) bool {
		return found[i].Name < found[j].Name
	})
	return found, nil
}

// storeEntry encrypts plain and replaces its stored version in ring.
func (s *Session) storeEntry(ring *keyring.KeyringNode, plain keyring.EntryNode) error {
	sealed, err := EncryptEntryForStorage(s.enc, plain)
	if err != nil {
		return err
	}
	ring.SetEntry(sealed)
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
