package secrets

import (
	"crypto/aes"
	"crypto/sha256"
)

const (
	// KeyLength is the length of a keyring's symmetric key (AES-256).
	KeyLength = 32

	// NonceLength is the length of a record nonce, one AES block.
	NonceLength = aes.BlockSize

	// FingerprintLength is the length of an identity fingerprint.
	FingerprintLength = sha256.Size

	// TextNodeSize is the padded plaintext size of a TextNode.
	TextNodeSize = 1024

	// PropertyNodeSize is the padded plaintext size of each PropertyNode field.
	PropertyNodeSize = 128

	// PaddingSentinel marks the end of a value inside its padded block.
	PaddingSentinel byte = 0x07

	// pkcs1Overhead is the minimum padding PKCS#1 v1.5 encryption adds.
	pkcs1Overhead = 11
)
