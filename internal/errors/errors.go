package errors

import "errors"

// Key errors indicate an identity could not be loaded or used.
var (
	// ErrInvalidKey indicates key material is malformed or is not an RSA key.
	ErrInvalidKey = errors.New("invalid or unsupported key")

	// ErrWrongPassphrase indicates the passphrase for an encrypted private key is wrong.
	ErrWrongPassphrase = errors.New("wrong passphrase for private key")

	// ErrPassphraseRequired indicates an encrypted private key was loaded without a passphrase.
	// Loaders return it joined with ErrWrongPassphrase.
	ErrPassphraseRequired = errors.New("private key is passphrase-protected")

	// ErrKeyTooLarge indicates the symmetric key does not fit the recipient's RSA modulus.
	ErrKeyTooLarge = errors.New("symmetric key too large for recipient key")
)

// Access errors indicate the caller cannot reach the keyring's symmetric key.
var (
	// ErrAccessDenied indicates no access key for the caller exists or it could not be unwrapped.
	ErrAccessDenied = errors.New("access denied")

	// ErrNotConfigured indicates no private key has been configured for the current user.
	ErrNotConfigured = errors.New("keymaker has not been configured")

	// ErrNoSession indicates an operation needs an opened keyring.
	ErrNoSession = errors.New("no keyring is open")

	// ErrAlreadyShared indicates the recipient already holds an access key.
	ErrAlreadyShared = errors.New("recipient already has access")
)

// Cipher errors indicate failures inside the symmetric cipher engine.
var (
	// ErrValueTooLarge indicates a plaintext does not fit the padded node size.
	ErrValueTooLarge = errors.New("value too large")

	// ErrInvalidBlockSize indicates raw cipher input is not block aligned or the nonce has the wrong length.
	ErrInvalidBlockSize = errors.New("invalid cipher block size")

	// ErrEncrypterClosed indicates the encrypter's key has already been destroyed.
	ErrEncrypterClosed = errors.New("encrypter has been destroyed")

	// ErrCorruptRecord indicates a decrypted block carries no padding sentinel,
	// so it was encrypted under another key or has been tampered with.
	ErrCorruptRecord = errors.New("record failed to decrypt")
)

// Keyring errors indicate lookups or storage failures within a keyring.
var (
	// ErrPropertyNotFound indicates the named property does not exist.
	ErrPropertyNotFound = errors.New("property not found")

	// ErrEntryNotFound indicates no entry with the given id exists.
	ErrEntryNotFound = errors.New("entry not found")

	// ErrKeyringNotFound indicates no keyring with the given id exists in storage.
	ErrKeyringNotFound = errors.New("keyring not found")

	// ErrKeyringExists indicates a keyring with the given id already exists in storage.
	ErrKeyringExists = errors.New("keyring already exists")

	// ErrMalformedStorage indicates an on-disk keyring file could not be parsed.
	ErrMalformedStorage = errors.New("malformed keyring storage")

	// ErrMissingName indicates an entry was created without a name.
	ErrMissingName = errors.New("entry name is required")
)

// Input errors indicate invalid user-provided data.
var (
	// ErrInvalidDateFormat indicates the date format is invalid.
	ErrInvalidDateFormat = errors.New("invalid date format")

	// ErrInvalidPattern indicates an entry search pattern is malformed.
	ErrInvalidPattern = errors.New("invalid search pattern")

	// ErrInvalidArchive indicates a keyring archive is corrupt or has an unexpected layout.
	ErrInvalidArchive = errors.New("invalid keyring archive")
)
