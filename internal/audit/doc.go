// Package audit records the change history of a keyring.
//
// Every mutating keyring operation (create, share, rename, entry add, etc.)
// appends one entry to the keyring's history. The human summary of each
// change is an encrypted text node in flat encoding, so the history file
// can be distributed alongside the keyring without revealing anything
// beyond operation names, timestamps and fingerprints.
//
// # Log Format
//
// The history is stored as JSON Lines (one JSON object per line):
//
//	{"ts":"2024-01-15T10:30:00.123456Z","op":"create","recipient":"...","summary":"<base64>:<base64>"}
//
// # Reading Logs
//
// Use ReadEntries to parse a history file for display. Malformed entries
// are silently skipped to handle partial writes.
package audit
