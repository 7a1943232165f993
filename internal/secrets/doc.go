// Package secrets provides the cryptographic core of KeyMaker.
//
// This package handles RSA identities, the per-keyring symmetric key and
// the typed encryption of the records stored in a keyring.
//
// # Encryption Architecture
//
// KeyMaker uses a hybrid encryption scheme:
//
//  1. A random 256-bit symmetric key encrypts every record in a keyring
//  2. Each recipient's RSA public key wraps a copy of the symmetric key (an AccessKey)
//  3. A recipient unwraps its AccessKey with its private key to build an Encrypter
//
// Sharing a keyring only adds an AccessKey. No record is re-encrypted.
//
// # Identities
//
// Private keys are loaded from PEM or OpenSSH files, optionally protected by
// a passphrase. Public keys are accepted as PKCS#1 ("RSA PUBLIC KEY"), PKIX
// ("PUBLIC KEY") or OpenSSH authorized_keys lines. The fingerprint of an
// identity is SHA-256 over the big-endian bytes of its modulus followed by
// its public exponent, so a private identity and its public half share one
// fingerprint.
//
// # Records
//
// Records are AES-256-CBC encrypted without block padding. Before encryption
// a value is padded to a fixed size: random filler with the byte 0x07 written
// right after the value. Decryption truncates at the first 0x07.
//
//   - TextNode: one value padded to 1024 bytes, one nonce
//   - PropertyNode: name and content padded to 128 bytes each, sharing one nonce
//
// A value containing 0x07 is truncated at that byte when decrypted, and the
// shared property nonce reveals whether name and content start with the same
// block. Both properties are part of the on-disk format.
//
// # Memory
//
// The unwrapped symmetric key lives in a memguard LockedBuffer owned by the
// Encrypter and is wiped by Destroy. An Encrypter is not safe for concurrent
// use.
package secrets
