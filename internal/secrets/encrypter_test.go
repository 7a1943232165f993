package secrets

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	kerrors "github.com/PolarWolf314/keymaker/internal/errors"
)

func TestNewEncrypterFromAccessKey(t *testing.T) {
	alice, bob := testIdentities(t)

	symKey, err := CreateSymmetricKey()
	if err != nil {
		t.Fatalf("Failed to create symmetric key: %v", err)
	}
	accessKey, err := WrapKey(symKey, alice)
	if err != nil {
		t.Fatalf("WrapKey failed: %v", err)
	}

	enc, err := NewEncrypter(accessKey, alice)
	if err != nil {
		t.Fatalf("NewEncrypter failed: %v", err)
	}
	defer enc.Destroy()

	if _, err := NewEncrypter(accessKey, bob); !errors.Is(err, kerrors.ErrAccessDenied) {
		t.Errorf("expected ErrAccessDenied for the wrong identity, got: %v", err)
	}
}

func TestNewEncrypterFromKeyWipesSource(t *testing.T) {
	key, err := CreateSymmetricKey()
	if err != nil {
		t.Fatalf("Failed to create symmetric key: %v", err)
	}

	enc, err := NewEncrypterFromKey(key)
	if err != nil {
		t.Fatalf("NewEncrypterFromKey failed: %v", err)
	}
	defer enc.Destroy()

	if !bytes.Equal(key, make([]byte, KeyLength)) {
		t.Error("source key slice was not wiped")
	}

	if _, err := NewEncrypterFromKey(make([]byte, 16)); !errors.Is(err, kerrors.ErrInvalidKey) {
		t.Errorf("expected ErrInvalidKey for a short key, got: %v", err)
	}
}

func TestRawRoundTrip(t *testing.T) {
	enc := newTestEncrypter(t)

	iv := bytes.Repeat([]byte{0x42}, NonceLength)
	plaintext := bytes.Repeat([]byte("0123456789abcdef"), 4)

	ciphertext, err := enc.EncryptRaw(plaintext, iv)
	if err != nil {
		t.Fatalf("EncryptRaw failed: %v", err)
	}
	if len(ciphertext) != len(plaintext) {
		t.Errorf("expected ciphertext of %d bytes, got %d", len(plaintext), len(ciphertext))
	}
	if bytes.Equal(ciphertext, plaintext) {
		t.Error("ciphertext equals plaintext")
	}

	decrypted, err := enc.DecryptRaw(ciphertext, iv)
	if err != nil {
		t.Fatalf("DecryptRaw failed: %v", err)
	}
	if !bytes.Equal(decrypted, plaintext) {
		t.Error("raw round trip did not recover the plaintext")
	}
}

func TestRawRejectsBadSizes(t *testing.T) {
	enc := newTestEncrypter(t)

	testCases := []struct {
		name string
		data []byte
		iv   []byte
	}{
		{"UnalignedData", make([]byte, 17), make([]byte, NonceLength)},
		{"ShortIV", make([]byte, 16), make([]byte, 8)},
		{"MissingIV", make([]byte, 16), nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := enc.EncryptRaw(tc.data, tc.iv); !errors.Is(err, kerrors.ErrInvalidBlockSize) {
				t.Errorf("EncryptRaw: expected ErrInvalidBlockSize, got: %v", err)
			}
			if _, err := enc.DecryptRaw(tc.data, tc.iv); !errors.Is(err, kerrors.ErrInvalidBlockSize) {
				t.Errorf("DecryptRaw: expected ErrInvalidBlockSize, got: %v", err)
			}
		})
	}
}

func TestTextRoundTrip(t *testing.T) {
	enc := newTestEncrypter(t)

	testCases := []struct {
		name    string
		content []byte
	}{
		{"Empty", []byte{}},
		{"Short", []byte("Initial commit")},
		{"Binary", []byte{0x00, 0xff, 0x10, 0x06, 0x08}},
		{"MaximumSize", bytes.Repeat([]byte("x"), TextNodeSize-1)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			encrypted, err := enc.EncryptText(NewTextNode(tc.content))
			if err != nil {
				t.Fatalf("EncryptText failed: %v", err)
			}
			if len(encrypted.Nonce()) != NonceLength {
				t.Errorf("expected a %d byte nonce, got %d", NonceLength, len(encrypted.Nonce()))
			}
			if len(encrypted.Content()) != TextNodeSize {
				t.Errorf("expected %d bytes of ciphertext, got %d", TextNodeSize, len(encrypted.Content()))
			}

			decrypted, err := enc.DecryptText(encrypted)
			if err != nil {
				t.Fatalf("DecryptText failed: %v", err)
			}
			if !bytes.Equal(decrypted.Content(), tc.content) {
				t.Errorf("expected %q, got %q", tc.content, decrypted.Content())
			}
			if !bytes.Equal(decrypted.Nonce(), encrypted.Nonce()) {
				t.Error("decrypted node should keep its nonce")
			}
		})
	}
}

func TestTextTooLarge(t *testing.T) {
	enc := newTestEncrypter(t)

	_, err := enc.EncryptText(NewTextNode(bytes.Repeat([]byte("x"), TextNodeSize)))
	if !errors.Is(err, kerrors.ErrValueTooLarge) {
		t.Errorf("expected ErrValueTooLarge, got: %v", err)
	}
}

func TestTextNoncesDiffer(t *testing.T) {
	enc := newTestEncrypter(t)

	seen := make(map[string]bool)
	for i := 0; i < 32; i++ {
		node, err := enc.EncryptText(NewTextNode([]byte("same content")))
		if err != nil {
			t.Fatalf("EncryptText failed: %v", err)
		}
		nonce := string(node.Nonce())
		if seen[nonce] {
			t.Fatal("nonce repeated across encryptions")
		}
		seen[nonce] = true
	}
}

func TestPropertyRoundTrip(t *testing.T) {
	enc := newTestEncrypter(t)

	testCases := []struct {
		name    string
		key     string
		content string
	}{
		{"Simple", "site", "example.com"},
		{"EmptyContent", "notes", ""},
		{"MaximumSize", strings.Repeat("n", PropertyNodeSize-1), strings.Repeat("c", PropertyNodeSize-1)},
		{"SharedPrefix", "password", "password123"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			encrypted, err := enc.EncryptProperty(NewProperty([]byte(tc.key), []byte(tc.content)))
			if err != nil {
				t.Fatalf("EncryptProperty failed: %v", err)
			}
			if len(encrypted.Name()) != PropertyNodeSize || len(encrypted.Content()) != PropertyNodeSize {
				t.Errorf("expected %d byte fields, got name=%d content=%d",
					PropertyNodeSize, len(encrypted.Name()), len(encrypted.Content()))
			}
			if bytes.Contains(encrypted.Name(), []byte(tc.key)) && tc.key != "" {
				t.Error("encrypted name contains the plaintext")
			}

			decrypted, err := enc.DecryptProperty(encrypted)
			if err != nil {
				t.Fatalf("DecryptProperty failed: %v", err)
			}
			if string(decrypted.Name()) != tc.key {
				t.Errorf("expected name %q, got %q", tc.key, decrypted.Name())
			}
			if string(decrypted.Content()) != tc.content {
				t.Errorf("expected content %q, got %q", tc.content, decrypted.Content())
			}
		})
	}
}

func TestPropertyTooLarge(t *testing.T) {
	enc := newTestEncrypter(t)

	big := bytes.Repeat([]byte("x"), PropertyNodeSize)

	if _, err := enc.EncryptProperty(NewProperty(big, []byte("ok"))); !errors.Is(err, kerrors.ErrValueTooLarge) {
		t.Errorf("expected ErrValueTooLarge for name, got: %v", err)
	}
	if _, err := enc.EncryptProperty(NewProperty([]byte("ok"), big)); !errors.Is(err, kerrors.ErrValueTooLarge) {
		t.Errorf("expected ErrValueTooLarge for content, got: %v", err)
	}
}

func TestPropertySharesNonceAcrossFields(t *testing.T) {
	enc := newTestEncrypter(t)

	// Fields with the same first block encrypt to the same first block
	// because name and content share a nonce.
	prefix := strings.Repeat("p", 16)
	encrypted, err := enc.EncryptProperty(NewProperty([]byte(prefix+"-name"), []byte(prefix+"-content")))
	if err != nil {
		t.Fatalf("EncryptProperty failed: %v", err)
	}

	if !bytes.Equal(encrypted.Name()[:16], encrypted.Content()[:16]) {
		t.Error("expected identical first ciphertext blocks")
	}
}

func TestSentinelTruncatesValue(t *testing.T) {
	enc := newTestEncrypter(t)

	value := []byte{'a', 'b', PaddingSentinel, 'c', 'd'}
	encrypted, err := enc.EncryptText(NewTextNode(value))
	if err != nil {
		t.Fatalf("EncryptText failed: %v", err)
	}
	decrypted, err := enc.DecryptText(encrypted)
	if err != nil {
		t.Fatalf("DecryptText failed: %v", err)
	}

	if string(decrypted.Content()) != "ab" {
		t.Errorf("expected value truncated at sentinel to %q, got %q", "ab", decrypted.Content())
	}
}

func TestDecryptRejectsBlockWithoutSentinel(t *testing.T) {
	enc := newTestEncrypter(t)
	nonce := bytes.Repeat([]byte{0x11}, NonceLength)

	seal := func(size int) []byte {
		t.Helper()
		ciphertext, err := enc.EncryptRaw(make([]byte, size), nonce)
		if err != nil {
			t.Fatalf("EncryptRaw failed: %v", err)
		}
		return ciphertext
	}

	t.Run("Text", func(t *testing.T) {
		node := NewEncryptedTextNode(seal(TextNodeSize), nonce)
		if _, err := enc.DecryptText(node); !errors.Is(err, kerrors.ErrCorruptRecord) {
			t.Errorf("expected ErrCorruptRecord, got: %v", err)
		}
	})

	t.Run("PropertyName", func(t *testing.T) {
		valid, err := enc.EncryptProperty(NewProperty([]byte("password"), []byte("hunter2")))
		if err != nil {
			t.Fatalf("EncryptProperty failed: %v", err)
		}
		node := NewEncryptedProperty(seal(PropertyNodeSize), valid.Content(), nonce)
		if _, err := enc.DecryptProperty(node); !errors.Is(err, kerrors.ErrCorruptRecord) {
			t.Errorf("expected ErrCorruptRecord, got: %v", err)
		}
	})

	t.Run("PropertyContent", func(t *testing.T) {
		name, err := enc.EncryptRaw(append([]byte("password\x07"), make([]byte, PropertyNodeSize-9)...), nonce)
		if err != nil {
			t.Fatalf("EncryptRaw failed: %v", err)
		}
		node := NewEncryptedProperty(name, seal(PropertyNodeSize), nonce)
		if _, err := enc.DecryptProperty(node); !errors.Is(err, kerrors.ErrCorruptRecord) {
			t.Errorf("expected ErrCorruptRecord, got: %v", err)
		}
	})
}

func TestDecryptWithWrongKey(t *testing.T) {
	owner := newTestEncrypter(t)
	stranger := newTestEncrypter(t)

	const trials = 64
	failures := 0
	for i := 0; i < trials; i++ {
		sealed, err := owner.EncryptProperty(NewProperty([]byte("password"), []byte("hunter2")))
		if err != nil {
			t.Fatalf("EncryptProperty failed: %v", err)
		}

		opened, err := stranger.DecryptProperty(sealed)
		if err != nil {
			if !errors.Is(err, kerrors.ErrCorruptRecord) {
				t.Fatalf("expected ErrCorruptRecord, got: %v", err)
			}
			failures++
			continue
		}
		if string(opened.Content()) == "hunter2" {
			t.Fatal("a foreign key recovered the plaintext")
		}
	}

	// A random block lacks the sentinel often enough that every trial
	// passing means sentinel checking is off.
	if failures == 0 {
		t.Errorf("expected some of %d wrong-key decryptions to fail", trials)
	}
}

func TestEncrypterWrap(t *testing.T) {
	alice, bob := testIdentities(t)

	symKey, err := CreateSymmetricKey()
	if err != nil {
		t.Fatalf("Failed to create symmetric key: %v", err)
	}
	original := bytes.Clone(symKey)

	enc, err := NewEncrypterFromKey(symKey)
	if err != nil {
		t.Fatalf("NewEncrypterFromKey failed: %v", err)
	}
	defer enc.Destroy()

	accessKey, err := enc.Wrap(bob.Public())
	if err != nil {
		t.Fatalf("Wrap failed: %v", err)
	}
	if accessKey.Recipient() != bob.Fingerprint() {
		t.Error("wrapped key is for the wrong recipient")
	}

	unwrapped, err := UnwrapKey(accessKey, bob)
	if err != nil {
		t.Fatalf("UnwrapKey failed: %v", err)
	}
	if !bytes.Equal(unwrapped, original) {
		t.Error("wrapped key does not match the encrypter's key")
	}

	if _, err := UnwrapKey(accessKey, alice); !errors.Is(err, kerrors.ErrAccessDenied) {
		t.Errorf("expected ErrAccessDenied for a non-recipient, got: %v", err)
	}
}

func TestDestroyedEncrypter(t *testing.T) {
	alice, _ := testIdentities(t)

	key, err := CreateSymmetricKey()
	if err != nil {
		t.Fatalf("Failed to create symmetric key: %v", err)
	}
	enc, err := NewEncrypterFromKey(key)
	if err != nil {
		t.Fatalf("NewEncrypterFromKey failed: %v", err)
	}
	enc.Destroy()
	enc.Destroy()

	if _, err := enc.EncryptText(NewTextNode([]byte("x"))); !errors.Is(err, kerrors.ErrEncrypterClosed) {
		t.Errorf("expected ErrEncrypterClosed, got: %v", err)
	}
	if _, err := enc.Wrap(alice); !errors.Is(err, kerrors.ErrEncrypterClosed) {
		t.Errorf("expected ErrEncrypterClosed, got: %v", err)
	}
}
