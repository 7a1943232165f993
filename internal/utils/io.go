package utils

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// ReadStdin reads piped input of at most limit bytes.
//
// Fails if stdin is a terminal, holds only whitespace or exceeds limit.
func ReadStdin(limit int64) ([]byte, error) {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat stdin: %w", err)
	}
	if stat.Mode()&os.ModeCharDevice != 0 {
		return nil, fmt.Errorf("no data provided on stdin (hint: pipe a public key to this command)")
	}

	data, err := io.ReadAll(io.LimitReader(os.Stdin, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read from stdin: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("stdin holds more than %d bytes", limit)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("stdin is empty")
	}

	return data, nil
}
