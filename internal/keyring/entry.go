package keyring

import (
	"github.com/PolarWolf314/keymaker/internal/secrets"
	"github.com/google/uuid"
)

// EntryNode is one stored credential: an id and its properties.
type EntryNode struct {
	Properties

	id string
}

// NewEntry creates an empty entry with a fresh random id.
func NewEntry() EntryNode {
	return EntryNode{id: uuid.New().String()}
}

// NewEntryWithID creates an empty entry with the given id.
func NewEntryWithID(id string) EntryNode {
	return EntryNode{id: id}
}

// ID returns the entry id.
func (e *EntryNode) ID() string {
	return e.id
}

// MapProperties returns a new entry with the same id whose properties are
// fn applied to each of e's properties. e is not modified.
func (e *EntryNode) MapProperties(fn func(name string, property secrets.PropertyNode) (secrets.PropertyNode, error)) (EntryNode, error) {
	props, err := e.Map(fn)
	if err != nil {
		return EntryNode{}, err
	}
	return EntryNode{Properties: props, id: e.id}, nil
}

// Clone returns a deep copy of the entry.
func (e *EntryNode) Clone() EntryNode {
	return EntryNode{Properties: e.cloneProperties(), id: e.id}
}

// Equal reports whether both entries have the same id and properties.
func (e *EntryNode) Equal(other *EntryNode) bool {
	return e.id == other.id && e.equalProperties(&other.Properties)
}
