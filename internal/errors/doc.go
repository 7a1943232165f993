// Package errors provides typed error values for KeyMaker.
//
// Using sentinel errors allows callers to handle specific error conditions
// programmatically with errors.Is() rather than string matching.
//
// # Error Categories
//
// Errors are grouped by category:
//
//   - Key errors: identity loading failures (ErrInvalidKey, ErrWrongPassphrase, ErrKeyTooLarge)
//   - Access errors: the caller cannot reach the symmetric key (ErrAccessDenied)
//   - Cipher errors: padding and block failures (ErrValueTooLarge, ErrInvalidBlockSize, ErrCorruptRecord)
//   - Keyring errors: lookups and storage (ErrEntryNotFound, ErrMalformedStorage)
//
// # Usage
//
// Wrap errors with additional context:
//
//	return fmt.Errorf("unwrapping access key for %s: %w", fp, errors.ErrAccessDenied)
//
// Handle errors in the CLI layer:
//
//	if errors.Is(err, kerrors.ErrAccessDenied) {
//	    // Tell the user to ask a member to share the keyring
//	}
package errors
