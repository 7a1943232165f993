package secrets

import (
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"math/big"

	kerrors "github.com/PolarWolf314/keymaker/internal/errors"
)

// Fingerprint identifies a recipient by its RSA public key.
type Fingerprint [FingerprintLength]byte

// FingerprintOf computes SHA-256(N || E) over the big-endian unsigned bytes
// of the modulus and public exponent.
func FingerprintOf(key *rsa.PublicKey) Fingerprint {
	h := sha256.New()
	h.Write(key.N.Bytes())
	h.Write(big.NewInt(int64(key.E)).Bytes())

	var fp Fingerprint
	copy(fp[:], h.Sum(nil))
	return fp
}

// ParseFingerprint decodes a base64 fingerprint as produced by String.
func ParseFingerprint(s string) (Fingerprint, error) {
	var fp Fingerprint

	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return fp, fmt.Errorf("%w: fingerprint is not valid base64: %v", kerrors.ErrInvalidKey, err)
	}

	return FingerprintFromBytes(raw)
}

// FingerprintFromBytes copies a raw 32-byte fingerprint.
func FingerprintFromBytes(raw []byte) (Fingerprint, error) {
	var fp Fingerprint
	if len(raw) != FingerprintLength {
		return fp, fmt.Errorf("%w: fingerprint must be %d bytes, got %d", kerrors.ErrInvalidKey, FingerprintLength, len(raw))
	}
	copy(fp[:], raw)
	return fp, nil
}

// Bytes returns a copy of the raw fingerprint.
func (f Fingerprint) Bytes() []byte {
	out := make([]byte, FingerprintLength)
	copy(out, f[:])
	return out
}

// String returns the standard base64 encoding of the fingerprint.
func (f Fingerprint) String() string {
	return base64.StdEncoding.EncodeToString(f[:])
}

// Short returns the first eight hex digits, for display.
func (f Fingerprint) Short() string {
	return fmt.Sprintf("%x", f[:4])
}
