package secrets

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"testing"

	kerrors "github.com/PolarWolf314/keymaker/internal/errors"
)

func TestWrapUnwrapRoundTrip(t *testing.T) {
	alice, _ := testIdentities(t)

	symKey, err := CreateSymmetricKey()
	if err != nil {
		t.Fatalf("Failed to create symmetric key: %v", err)
	}

	accessKey, err := WrapKey(symKey, alice.Public())
	if err != nil {
		t.Fatalf("WrapKey failed: %v", err)
	}

	if accessKey.Recipient() != alice.Fingerprint() {
		t.Error("access key recipient does not match the wrapping identity")
	}
	if bytes.Contains(accessKey.Data(), symKey) {
		t.Error("wrapped data contains the plaintext key")
	}

	unwrapped, err := UnwrapKey(accessKey, alice)
	if err != nil {
		t.Fatalf("UnwrapKey failed: %v", err)
	}
	if !bytes.Equal(unwrapped, symKey) {
		t.Error("unwrapped key does not match the original")
	}
}

func TestUnwrapWithMismatchedKeyIsAccessDenied(t *testing.T) {
	alice, bob := testIdentities(t)

	symKey, err := CreateSymmetricKey()
	if err != nil {
		t.Fatalf("Failed to create symmetric key: %v", err)
	}
	accessKey, err := WrapKey(symKey, alice)
	if err != nil {
		t.Fatalf("WrapKey failed: %v", err)
	}

	_, err = UnwrapKey(accessKey, bob)
	if !errors.Is(err, kerrors.ErrAccessDenied) {
		t.Errorf("expected ErrAccessDenied, got: %v", err)
	}
}

func TestUnwrapWithPublicIdentityIsAccessDenied(t *testing.T) {
	alice, _ := testIdentities(t)

	symKey, err := CreateSymmetricKey()
	if err != nil {
		t.Fatalf("Failed to create symmetric key: %v", err)
	}
	accessKey, err := WrapKey(symKey, alice)
	if err != nil {
		t.Fatalf("WrapKey failed: %v", err)
	}

	if _, err := UnwrapKey(accessKey, alice.Public()); !errors.Is(err, kerrors.ErrAccessDenied) {
		t.Errorf("expected ErrAccessDenied, got: %v", err)
	}
}

func TestUnwrapWrongLengthIsAccessDenied(t *testing.T) {
	alice, _ := testIdentities(t)

	accessKey, err := WrapKey([]byte("short key"), alice)
	if err != nil {
		t.Fatalf("WrapKey failed: %v", err)
	}

	if _, err := UnwrapKey(accessKey, alice); !errors.Is(err, kerrors.ErrAccessDenied) {
		t.Errorf("expected ErrAccessDenied, got: %v", err)
	}
}

func TestWrapKeyTooLarge(t *testing.T) {
	// 1024 bits leaves 128 - 11 = 117 bytes of payload.
	small, err := rsa.GenerateKey(rand.Reader, 1024)
	if err != nil {
		t.Fatalf("Failed to generate RSA key: %v", err)
	}
	recipient := NewPublicIdentity(&small.PublicKey)

	if _, err := WrapKey(make([]byte, 117), recipient); err != nil {
		t.Errorf("expected 117 bytes to fit, got: %v", err)
	}

	_, err = WrapKey(make([]byte, 118), recipient)
	if !errors.Is(err, kerrors.ErrKeyTooLarge) {
		t.Errorf("expected ErrKeyTooLarge, got: %v", err)
	}
}

func TestAccessKeyEqual(t *testing.T) {
	alice, bob := testIdentities(t)

	a := NewAccessKey(alice.Fingerprint(), []byte{1, 2, 3})
	if !a.Equal(NewAccessKey(alice.Fingerprint(), []byte{1, 2, 3})) {
		t.Error("identical access keys should be equal")
	}
	if a.Equal(NewAccessKey(bob.Fingerprint(), []byte{1, 2, 3})) {
		t.Error("access keys for different recipients should differ")
	}
	if a.Equal(NewAccessKey(alice.Fingerprint(), []byte{1, 2, 4})) {
		t.Error("access keys with different data should differ")
	}
}
