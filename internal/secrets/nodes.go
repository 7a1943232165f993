package secrets

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"

	kerrors "github.com/PolarWolf314/keymaker/internal/errors"
	"github.com/awnumar/memguard"
)

// TextNode is a free-text record such as a change summary. A node built
// for encryption has no nonce; decrypted nodes keep the nonce they were
// encrypted under.
type TextNode struct {
	content []byte
	nonce   []byte
}

// NewTextNode creates a plaintext text node.
func NewTextNode(content []byte) TextNode {
	return TextNode{content: content}
}

// NewEncryptedTextNode creates a text node from ciphertext and its nonce.
func NewEncryptedTextNode(content, nonce []byte) TextNode {
	return TextNode{content: content, nonce: nonce}
}

// ParseTextNode decodes the flat form "base64(content):base64(nonce)".
// The token is split on its first colon.
func ParseTextNode(token string) (TextNode, error) {
	encContent, encNonce, ok := strings.Cut(token, ":")
	if !ok {
		return TextNode{}, fmt.Errorf("%w: text node has no separator", kerrors.ErrMalformedStorage)
	}

	content, err := base64.StdEncoding.DecodeString(encContent)
	if err != nil {
		return TextNode{}, fmt.Errorf("%w: text node content: %v", kerrors.ErrMalformedStorage, err)
	}
	nonce, err := base64.StdEncoding.DecodeString(encNonce)
	if err != nil {
		return TextNode{}, fmt.Errorf("%w: text node nonce: %v", kerrors.ErrMalformedStorage, err)
	}

	return TextNode{content: content, nonce: nonce}, nil
}

// Encode returns the flat form of the node.
func (t TextNode) Encode() string {
	return base64.StdEncoding.EncodeToString(t.content) + ":" + base64.StdEncoding.EncodeToString(t.nonce)
}

// Content returns the node's content. The slice is shared with the node.
func (t TextNode) Content() []byte { return t.content }

// Nonce returns the node's nonce, empty for plaintext nodes.
func (t TextNode) Nonce() []byte { return t.nonce }

// Wipe zeroes the node's content.
func (t *TextNode) Wipe() {
	memguard.WipeBytes(t.content)
}

// PropertyNode is a named value inside an entry or keyring. When encrypted,
// name and content are two ciphertexts under the same nonce.
type PropertyNode struct {
	name    []byte
	content []byte
	nonce   []byte
}

// NewProperty creates a plaintext property.
func NewProperty(name, content []byte) PropertyNode {
	return PropertyNode{name: name, content: content}
}

// NewEncryptedProperty creates a property from its ciphertext fields.
func NewEncryptedProperty(name, content, nonce []byte) PropertyNode {
	return PropertyNode{name: name, content: content, nonce: nonce}
}

// Name returns the property name. The slice is shared with the node.
func (p PropertyNode) Name() []byte { return p.name }

// Content returns the property content. The slice is shared with the node.
func (p PropertyNode) Content() []byte { return p.content }

// Nonce returns the property nonce, empty for plaintext properties.
func (p PropertyNode) Nonce() []byte { return p.nonce }

// Equal reports whether both properties hold the same bytes.
func (p PropertyNode) Equal(other PropertyNode) bool {
	return bytes.Equal(p.name, other.name) &&
		bytes.Equal(p.content, other.content) &&
		bytes.Equal(p.nonce, other.nonce)
}

// Clone returns a deep copy of the property.
func (p PropertyNode) Clone() PropertyNode {
	return PropertyNode{
		name:    bytes.Clone(p.name),
		content: bytes.Clone(p.content),
		nonce:   bytes.Clone(p.nonce),
	}
}

// Wipe zeroes the property's name and content.
func (p *PropertyNode) Wipe() {
	memguard.WipeBytes(p.name)
	memguard.WipeBytes(p.content)
}
