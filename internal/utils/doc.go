// Package utils provides shared utility functions for KeyMaker.
//
// # Filesystem Utilities
//
//   - ExpandHome: expands a leading ~ in configured paths
//   - FileExists: checks for a regular file
//
// # System Utilities
//
//   - GetUsername: returns the current system username
//   - GenerateKeyName: derives a unique key file name from the hostname
//
// # String Utilities
//
//   - IsValidEmail: validates owner email addresses
//   - ParseAssignments: parses key=value arguments for entry fields
//
// # I/O Utilities
//
//   - ReadStdin: reads all data from standard input
//
// # Terminal Utilities
//
//   - ReadPassphrase: prompts without echo
//   - PassphraseFromEnvOrPrompt: honors KEYMAKER_PASSPHRASE before prompting
package utils
