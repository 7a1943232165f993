// Package logger provides leveled logging for KeyMaker commands and
// workflows.
//
// # Verbosity Levels
//
//   - --verbose: Shows info messages
//   - --debug: Shows info and debug messages
//
// Warnings and errors are always shown on stderr.
//
// # Usage
//
//	log := logger.Logger{Verbose: verbose, Debug: debug}
//	log.Debugf("Opened keyring %s for %s", id, fingerprint.Short())
//
// Secrets never go through the logger. Fingerprints and entry ids may be
// logged at debug level.
package logger
