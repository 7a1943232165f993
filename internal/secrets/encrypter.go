package secrets

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	kerrors "github.com/PolarWolf314/keymaker/internal/errors"
	"github.com/awnumar/memguard"
)

// Encrypter holds one unwrapped keyring key and encrypts records under it.
//
// An Encrypter is not safe for concurrent use. Call Destroy when done to
// wipe the key.
type Encrypter struct {
	key *memguard.LockedBuffer
}

// NewEncrypter unwraps accessKey with identity and returns an Encrypter for
// the recovered key.
//
// Returns ErrAccessDenied if the access key cannot be unwrapped.
func NewEncrypter(accessKey AccessKey, identity *Identity) (*Encrypter, error) {
	symKey, err := UnwrapKey(accessKey, identity)
	if err != nil {
		return nil, err
	}
	return NewEncrypterFromKey(symKey)
}

// NewEncrypterFromKey moves key into locked memory. The caller's slice is
// wiped, even on error.
func NewEncrypterFromKey(key []byte) (*Encrypter, error) {
	if len(key) != KeyLength {
		memguard.WipeBytes(key)
		return nil, fmt.Errorf("%w: symmetric key must be %d bytes, got %d", kerrors.ErrInvalidKey, KeyLength, len(key))
	}

	buf := memguard.NewBufferFromBytes(key)
	buf.Freeze()

	return &Encrypter{key: buf}, nil
}

// Destroy wipes the key. Further use of the Encrypter returns ErrEncrypterClosed.
func (e *Encrypter) Destroy() {
	if e.key != nil {
		e.key.Destroy()
	}
}

func (e *Encrypter) block() (cipher.Block, error) {
	if e.key == nil || !e.key.IsAlive() {
		return nil, kerrors.ErrEncrypterClosed
	}
	return aes.NewCipher(e.key.Bytes())
}

func checkBlocks(data, iv []byte) error {
	if len(iv) != NonceLength {
		return fmt.Errorf("%w: nonce must be %d bytes, got %d", kerrors.ErrInvalidBlockSize, NonceLength, len(iv))
	}
	if len(data)%aes.BlockSize != 0 {
		return fmt.Errorf("%w: %d bytes is not a multiple of %d", kerrors.ErrInvalidBlockSize, len(data), aes.BlockSize)
	}
	return nil
}

// EncryptRaw encrypts block-aligned plaintext with AES-256-CBC. No padding
// is added, so the ciphertext has the plaintext's length.
func (e *Encrypter) EncryptRaw(plaintext, iv []byte) ([]byte, error) {
	if err := checkBlocks(plaintext, iv); err != nil {
		return nil, err
	}
	block, err := e.block()
	if err != nil {
		return nil, err
	}

	out := make([]byte, len(plaintext))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, plaintext)
	return out, nil
}

// DecryptRaw reverses EncryptRaw.
func (e *Encrypter) DecryptRaw(ciphertext, iv []byte) ([]byte, error) {
	if err := checkBlocks(ciphertext, iv); err != nil {
		return nil, err
	}
	block, err := e.block()
	if err != nil {
		return nil, err
	}

	out := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(out, ciphertext)
	return out, nil
}

func newNonce() ([]byte, error) {
	nonce := make([]byte, NonceLength)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return nonce, nil
}

// sealField pads value to size and encrypts it under nonce.
func (e *Encrypter) sealField(value []byte, size int, nonce []byte) ([]byte, error) {
	padded, err := Pad(value, size)
	if err != nil {
		return nil, err
	}
	defer memguard.WipeBytes(padded)

	return e.EncryptRaw(padded, nonce)
}

// openField decrypts a field and strips its padding.
//
// Returns ErrCorruptRecord if the decrypted block has no sentinel.
func (e *Encrypter) openField(ciphertext, nonce []byte) ([]byte, error) {
	padded, err := e.DecryptRaw(ciphertext, nonce)
	if err != nil {
		return nil, err
	}
	defer memguard.WipeBytes(padded)

	value, ok := Unpad(padded)
	if !ok {
		return nil, fmt.Errorf("%w: no padding sentinel in %d byte block", kerrors.ErrCorruptRecord, len(padded))
	}
	return bytes.Clone(value), nil
}

// EncryptText pads the node's content to TextNodeSize and encrypts it under
// a fresh nonce.
//
// Returns ErrValueTooLarge if the content is TextNodeSize bytes or longer.
func (e *Encrypter) EncryptText(node TextNode) (TextNode, error) {
	nonce, err := newNonce()
	if err != nil {
		return TextNode{}, err
	}

	content, err := e.sealField(node.Content(), TextNodeSize, nonce)
	if err != nil {
		return TextNode{}, fmt.Errorf("encrypting text node: %w", err)
	}

	return NewEncryptedTextNode(content, nonce), nil
}

// DecryptText reverses EncryptText. The returned node keeps the nonce.
func (e *Encrypter) DecryptText(node TextNode) (TextNode, error) {
	content, err := e.openField(node.Content(), node.Nonce())
	if err != nil {
		return TextNode{}, fmt.Errorf("decrypting text node: %w", err)
	}

	return NewEncryptedTextNode(content, bytes.Clone(node.Nonce())), nil
}

// EncryptProperty pads name and content to PropertyNodeSize each and
// encrypts both under one fresh nonce.
//
// Returns ErrValueTooLarge if either field is PropertyNodeSize bytes or longer.
func (e *Encrypter) EncryptProperty(property PropertyNode) (PropertyNode, error) {
	nonce, err := newNonce()
	if err != nil {
		return PropertyNode{}, err
	}

	name, err := e.sealField(property.Name(), PropertyNodeSize, nonce)
	if err != nil {
		return PropertyNode{}, fmt.Errorf("encrypting property name: %w", err)
	}
	content, err := e.sealField(property.Content(), PropertyNodeSize, nonce)
	if err != nil {
		return PropertyNode{}, fmt.Errorf("encrypting property content: %w", err)
	}

	return NewEncryptedProperty(name, content, nonce), nil
}

// DecryptProperty reverses EncryptProperty. The returned node keeps the nonce.
func (e *Encrypter) DecryptProperty(property PropertyNode) (PropertyNode, error) {
	name, err := e.openField(property.Name(), property.Nonce())
	if err != nil {
		return PropertyNode{}, fmt.Errorf("decrypting property name: %w", err)
	}
	content, err := e.openField(property.Content(), property.Nonce())
	if err != nil {
		memguard.WipeBytes(name)
		return PropertyNode{}, fmt.Errorf("decrypting property content: %w", err)
	}

	return NewEncryptedProperty(name, content, bytes.Clone(property.Nonce())), nil
}

// Wrap wraps the Encrypter's key for recipient.
func (e *Encrypter) Wrap(recipient *Identity) (AccessKey, error) {
	if e.key == nil || !e.key.IsAlive() {
		return AccessKey{}, kerrors.ErrEncrypterClosed
	}
	return WrapKey(e.key.Bytes(), recipient)
}
