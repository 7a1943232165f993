package workflows

import (
	"context"
	"errors"
	"io"

	"github.com/PolarWolf314/keymaker/internal/storage"
)

var errArchiveUnsupported = errors.New("store does not support keyring archives")

// ImportResult contains the outcome of an import operation.
type ImportResult struct {
	storage.ArchiveSummary

	// Access reports whether the imported keyring is shared with the
	// session identity.
	Access bool
}

func (s *Session) archiver() (storage.Archiver, error) {
	archiver, ok := s.store.(storage.Archiver)
	if !ok {
		return nil, errArchiveUnsupported
	}
	return archiver, nil
}

// ExportRepository writes keyring id to w as a tar.gz archive for backup or
// transfer. The archive holds only ciphertext, so exporting does not
// require access to the keyring.
//
// Returns ErrKeyringNotFound if the keyring does not exist.
func (s *Session) ExportRepository(ctx context.Context, id string, w io.Writer) (*storage.ArchiveSummary, error) {
	archiver, err := s.archiver()
	if err != nil {
		return nil, err
	}

	summary, err := archiver.Export(ctx, id, w)
	if err != nil {
		return nil, err
	}

	s.log.Infof("Exported keyring %s (%d files)", id, summary.Files)
	return summary, nil
}

// ImportRepository restores a keyring archive written by ExportRepository.
// The keyring keeps its id and its change history.
//
// Returns ErrInvalidArchive if the archive is not a keyring archive and
// ErrKeyringExists if the keyring is already stored and replace is false.
func (s *Session) ImportRepository(ctx context.Context, r io.Reader, replace bool) (*ImportResult, error) {
	archiver, err := s.archiver()
	if err != nil {
		return nil, err
	}

	summary, err := archiver.Import(ctx, r, storage.ImportOptions{Replace: replace})
	if err != nil {
		return nil, err
	}

	result := &ImportResult{ArchiveSummary: *summary}
	if ring, err := s.store.Retrieve(ctx, summary.ID); err == nil {
		result.Access = ring.HasAccess(s.Fingerprint())
	}

	// The open keyring may have just been replaced on disk.
	if s.ID() == summary.ID {
		s.Close()
	}

	s.log.Infof("Imported keyring %s (%d entries)", summary.ID, summary.Entries)
	return result, nil
}
