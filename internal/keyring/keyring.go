package keyring

import (
	"bytes"
	"fmt"
	"sort"

	kerrors "github.com/PolarWolf314/keymaker/internal/errors"
	"github.com/PolarWolf314/keymaker/internal/secrets"
)

// KeyringNode is the aggregate for one repository: the access keys of every
// authorized recipient, the entries, and the keyring's own properties.
//
// A KeyringNode is a plain in-memory value with no locking. Callers compose
// mutations and then Save the whole keyring.
type KeyringNode struct {
	Properties

	id         string
	accessKeys map[secrets.Fingerprint]secrets.AccessKey
	entries    map[string]EntryNode
}

// New creates an empty keyring.
func New(id string) *KeyringNode {
	return &KeyringNode{
		id:         id,
		accessKeys: make(map[secrets.Fingerprint]secrets.AccessKey),
		entries:    make(map[string]EntryNode),
	}
}

// ID returns the keyring id.
func (k *KeyringNode) ID() string {
	return k.id
}

// AddAccessKey stores accessKey, replacing any key for the same recipient.
func (k *KeyringNode) AddAccessKey(accessKey secrets.AccessKey) {
	k.accessKeys[accessKey.Recipient()] = accessKey
}

// AccessKey returns the access key for recipient.
//
// Returns ErrAccessDenied if the recipient has no access key.
func (k *KeyringNode) AccessKey(recipient secrets.Fingerprint) (secrets.AccessKey, error) {
	accessKey, ok := k.accessKeys[recipient]
	if !ok {
		return secrets.AccessKey{}, fmt.Errorf("%w: no access key for %s in keyring %s", kerrors.ErrAccessDenied, recipient, k.id)
	}
	return accessKey, nil
}

// HasAccess reports whether recipient has an access key.
func (k *KeyringNode) HasAccess(recipient secrets.Fingerprint) bool {
	_, ok := k.accessKeys[recipient]
	return ok
}

// AccessKeys returns every access key ordered by recipient.
func (k *KeyringNode) AccessKeys() []secrets.AccessKey {
	keys := make([]secrets.AccessKey, 0, len(k.accessKeys))
	for _, accessKey := range k.accessKeys {
		keys = append(keys, accessKey)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i].Recipient(), keys[j].Recipient()
		return bytes.Compare(a[:], b[:]) < 0
	})
	return keys
}

// SetEntry stores entry under its id, replacing any existing entry.
func (k *KeyringNode) SetEntry(entry EntryNode) {
	k.entries[entry.ID()] = entry
}

// Entry returns the entry with the given id.
//
// Returns ErrEntryNotFound if no such entry exists.
func (k *KeyringNode) Entry(id string) (EntryNode, error) {
	entry, ok := k.entries[id]
	if !ok {
		return EntryNode{}, fmt.Errorf("%w: %s", kerrors.ErrEntryNotFound, id)
	}
	return entry, nil
}

// RemoveEntry deletes the entry with the given id.
//
// Returns ErrEntryNotFound if no such entry exists.
func (k *KeyringNode) RemoveEntry(id string) error {
	if _, ok := k.entries[id]; !ok {
		return fmt.Errorf("%w: %s", kerrors.ErrEntryNotFound, id)
	}
	delete(k.entries, id)
	return nil
}

// EntryCount returns the number of entries.
func (k *KeyringNode) EntryCount() int {
	return len(k.entries)
}

// EachEntry calls fn for every entry in id order and stops at the first error.
func (k *KeyringNode) EachEntry(fn func(id string, entry EntryNode) error) error {
	ids := make([]string, 0, len(k.entries))
	for id := range k.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if err := fn(id, k.entries[id]); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns a deep copy of the keyring.
func (k *KeyringNode) Clone() *KeyringNode {
	out := New(k.id)
	out.Properties = k.cloneProperties()
	for fp, accessKey := range k.accessKeys {
		out.accessKeys[fp] = secrets.NewAccessKey(fp, bytes.Clone(accessKey.Data()))
	}
	for id, entry := range k.entries {
		out.entries[id] = entry.Clone()
	}
	return out
}

// ReplaceProperties swaps the keyring's property bag for props, typically
// the result of Map.
func (k *KeyringNode) ReplaceProperties(props Properties) {
	k.Properties = props
}

// Equal reports structural equality of access keys, entries and properties.
// The id is not compared since it derives from the directory name.
func (k *KeyringNode) Equal(other *KeyringNode) bool {
	if len(k.accessKeys) != len(other.accessKeys) || len(k.entries) != len(other.entries) {
		return false
	}
	for fp, accessKey := range k.accessKeys {
		theirs, ok := other.accessKeys[fp]
		if !ok || !accessKey.Equal(theirs) {
			return false
		}
	}
	for id, entry := range k.entries {
		theirs, ok := other.entries[id]
		if !ok || !entry.Equal(&theirs) {
			return false
		}
	}
	return k.equalProperties(&other.Properties)
}
