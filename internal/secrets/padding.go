package secrets

import (
	"bytes"
	"crypto/rand"
	"fmt"

	kerrors "github.com/PolarWolf314/keymaker/internal/errors"
)

// Pad places value at the start of a blockSize buffer of random bytes and
// writes PaddingSentinel right after it.
//
// Returns ErrValueTooLarge unless len(value) < blockSize.
func Pad(value []byte, blockSize int) ([]byte, error) {
	if len(value) >= blockSize {
		return nil, fmt.Errorf("%w: %d bytes does not fit a %d byte block", kerrors.ErrValueTooLarge, len(value), blockSize)
	}

	out := make([]byte, blockSize)
	if _, err := rand.Read(out); err != nil {
		return nil, fmt.Errorf("failed to generate padding: %w", err)
	}

	copy(out, value)
	out[len(value)] = PaddingSentinel

	return out, nil
}

// Unpad returns the bytes before the first PaddingSentinel. Pad always
// writes a sentinel, so ok is false for a block that was never padded.
func Unpad(block []byte) (value []byte, ok bool) {
	i := bytes.IndexByte(block, PaddingSentinel)
	if i < 0 {
		return nil, false
	}
	return block[:i], true
}
