package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// TimestampFormat is the layout of Entry.Timestamp.
const TimestampFormat = "2006-01-02T15:04:05.000000Z"

// Operation names recorded by keyring workflows.
const (
	OpCreate = "create"
	OpShare  = "share"
	OpRename = "rename"
	OpAdd    = "add"
	OpUpdate = "update"
	OpRemove = "remove"
)

// Entry represents a single change to a keyring.
type Entry struct {
	Timestamp string `json:"ts"`        // RFC3339 with microseconds.
	Operation string `json:"op"`        // Operation name.
	Recipient string `json:"recipient"` // Fingerprint of the identity that made the change.

	// Summary is an encrypted text node in flat encoding. It is never
	// written in plaintext.
	Summary string `json:"summary"`

	// Optional fields depending on operation.
	EntryID string `json:"entry,omitempty"`  // For add/update/remove.
	Target  string `json:"target,omitempty"` // Fingerprint of the new recipient, for share.
}

// Time parses the entry's timestamp.
func (e Entry) Time() (time.Time, error) {
	t, err := time.Parse(TimestampFormat, e.Timestamp)
	if err != nil {
		// Try alternate format.
		t, err = time.Parse(time.RFC3339, e.Timestamp)
	}
	return t, err
}

// Append writes entry to the JSON Lines file at path, creating it if needed.
// A missing timestamp is set to the current time.
func Append(path string, entry Entry) error {
	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format(TimestampFormat)
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode history entry: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open history at %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write history at %s: %w", path, err)
	}
	return nil
}

// ReadEntries reads all entries from the history file at path.
// Returns an empty slice if the file doesn't exist.
func ReadEntries(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return ParseEntries(data)
}

// ParseEntries parses JSON Lines data into history entries.
// Malformed lines are silently skipped.
func ParseEntries(data []byte) ([]Entry, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var entries []Entry
	start := 0

	for i := 0; i <= len(data); i++ {
		if i == len(data) || data[i] == '\n' {
			line := data[start:i]
			start = i + 1

			if len(line) == 0 {
				continue
			}

			var entry Entry
			if err := json.Unmarshal(line, &entry); err != nil {
				// Skip malformed entries.
				continue
			}
			entries = append(entries, entry)
		}
	}

	return entries, nil
}
