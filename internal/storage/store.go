// Package storage persists keyrings and their change history.
//
// A Store only ever receives encrypted keyrings and encrypted change
// summaries. Distribution of the persisted directories (for example through
// a version control remote) happens outside this package.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/PolarWolf314/keymaker/internal/audit"
	kerrors "github.com/PolarWolf314/keymaker/internal/errors"
	"github.com/PolarWolf314/keymaker/internal/keyring"
)

// HistoryFile is the name of the change log inside a keyring directory.
const HistoryFile = ".history.jsonl"

// Store is the storage collaborator used by workflows.
type Store interface {
	// Persist writes the keyring, replacing any previous version.
	Persist(ctx context.Context, ring *keyring.KeyringNode) error

	// Retrieve loads the keyring with the given id.
	Retrieve(ctx context.Context, id string) (*keyring.KeyringNode, error)

	// RecordChange appends change to the keyring's history.
	RecordChange(ctx context.Context, id string, change audit.Entry) error

	// History returns the keyring's changes, oldest first.
	History(ctx context.Context, id string) ([]audit.Entry, error)

	// List returns the ids of all stored keyrings, sorted.
	List(ctx context.Context) ([]string, error)

	// Destroy removes the keyring and its history.
	Destroy(ctx context.Context, id string) error
}

// LocalStore keeps each keyring in its own directory under Root.
type LocalStore struct {
	Root string
}

// NewLocalStore returns a LocalStore rooted at root.
func NewLocalStore(root string) *LocalStore {
	return &LocalStore{Root: root}
}

var _ Store = (*LocalStore)(nil)

func (s *LocalStore) dir(id string) (string, error) {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return "", fmt.Errorf("%w: invalid keyring id %q", kerrors.ErrKeyringNotFound, id)
	}
	return filepath.Join(s.Root, id), nil
}

// Path returns the directory holding keyring id.
func (s *LocalStore) Path(id string) (string, error) {
	return s.dir(id)
}

// Exists reports whether keyring id is stored.
func (s *LocalStore) Exists(id string) bool {
	dir, err := s.dir(id)
	if err != nil {
		return false
	}
	_, err = os.Stat(filepath.Join(dir, keyring.ConfigFile))
	return err == nil
}

func (s *LocalStore) Persist(ctx context.Context, ring *keyring.KeyringNode) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir, err := s.dir(ring.ID())
	if err != nil {
		return err
	}
	return ring.Save(dir)
}

func (s *LocalStore) Retrieve(ctx context.Context, id string) (*keyring.KeyringNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dir, err := s.dir(id)
	if err != nil {
		return nil, err
	}
	return keyring.Load(dir)
}

func (s *LocalStore) RecordChange(ctx context.Context, id string, change audit.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir, err := s.dir(id)
	if err != nil {
		return err
	}
	return audit.Append(filepath.Join(dir, HistoryFile), change)
}

func (s *LocalStore) History(ctx context.Context, id string) ([]audit.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !s.Exists(id) {
		return nil, fmt.Errorf("%w: %s", kerrors.ErrKeyringNotFound, id)
	}
	dir, _ := s.dir(id)

	entries, err := audit.ReadEntries(filepath.Join(dir, HistoryFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read history for %s: %w", id, err)
	}
	return entries, nil
}

// List skips hidden directories and directories without a keyring file.
func (s *LocalStore) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	files, err := os.ReadDir(s.Root)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read keyrings at %s: %w", s.Root, err)
	}

	var ids []string
	for _, file := range files {
		if !file.IsDir() || strings.HasPrefix(file.Name(), ".") {
			continue
		}
		if !s.Exists(file.Name()) {
			continue
		}
		ids = append(ids, file.Name())
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *LocalStore) Destroy(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !s.Exists(id) {
		return fmt.Errorf("%w: %s", kerrors.ErrKeyringNotFound, id)
	}
	dir, _ := s.dir(id)

	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove keyring %s: %w", id, err)
	}
	return nil
}
