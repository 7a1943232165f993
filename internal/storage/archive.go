package storage

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	kerrors "github.com/PolarWolf314/keymaker/internal/errors"
	"github.com/PolarWolf314/keymaker/internal/keyring"
)

// maxArchiveFileSize bounds each extracted file. Keyring files are small,
// so anything larger is treated as a corrupt or hostile archive.
const maxArchiveFileSize = 16 << 20

// Archiver moves whole keyrings in and out of a store as tar.gz archives.
type Archiver interface {
	// Export writes keyring id to w.
	Export(ctx context.Context, id string, w io.Writer) (*ArchiveSummary, error)

	// Import restores a keyring written by Export.
	Import(ctx context.Context, r io.Reader, opts ImportOptions) (*ArchiveSummary, error)
}

var _ Archiver = (*LocalStore)(nil)

// ImportOptions configures Import.
type ImportOptions struct {
	// Replace removes an existing keyring with the same id first. Without
	// it, importing over an existing keyring returns ErrKeyringExists.
	Replace bool
}

// ArchiveSummary describes an exported or imported keyring.
type ArchiveSummary struct {
	// ID is the keyring id, the archive's top-level directory.
	ID string

	// Entries is the number of entry files.
	Entries int

	// HasHistory reports whether the change history was included.
	HasHistory bool

	// Files is the total number of files in the archive.
	Files int
}

// Export writes keyring id as a gzip-compressed tar archive. The archive
// holds exactly what is on disk: wrapped access keys, encrypted properties
// and the encrypted change history. Nothing is decrypted.
//
// Returns ErrKeyringNotFound if the keyring does not exist.
func (s *LocalStore) Export(ctx context.Context, id string, w io.Writer) (*ArchiveSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !s.Exists(id) {
		return nil, fmt.Errorf("%w: %s", kerrors.ErrKeyringNotFound, id)
	}
	dir, _ := s.dir(id)

	files, summary, err := collectKeyringFiles(dir, id)
	if err != nil {
		return nil, err
	}

	gzWriter := gzip.NewWriter(w)
	tarWriter := tar.NewWriter(gzWriter)

	for _, rel := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := addFileToTar(tarWriter, filepath.Join(dir, filepath.FromSlash(rel)), path.Join(id, rel)); err != nil {
			return nil, fmt.Errorf("adding %s to archive: %w", rel, err)
		}
	}

	if err := tarWriter.Close(); err != nil {
		return nil, fmt.Errorf("finishing tar stream: %w", err)
	}
	if err := gzWriter.Close(); err != nil {
		return nil, fmt.Errorf("finishing gzip stream: %w", err)
	}

	return summary, nil
}

// collectKeyringFiles lists the files of the keyring in dir as slash
// separated paths relative to dir.
func collectKeyringFiles(dir, id string) ([]string, *ArchiveSummary, error) {
	summary := &ArchiveSummary{ID: id}
	files := []string{keyring.ConfigFile}

	if _, err := os.Stat(filepath.Join(dir, HistoryFile)); err == nil {
		files = append(files, HistoryFile)
		summary.HasHistory = true
	}

	entryDir := filepath.Join(dir, keyring.EntryDir)
	entries, err := os.ReadDir(entryDir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, nil, fmt.Errorf("failed to read %s: %w", entryDir, err)
	}
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".") || !entry.Type().IsRegular() {
			continue
		}
		files = append(files, path.Join(keyring.EntryDir, entry.Name()))
		summary.Entries++
	}

	summary.Files = len(files)
	return files, summary, nil
}

// addFileToTar adds a single file to the tar archive under name.
func addFileToTar(tw *tar.Writer, filePath, name string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("opening file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("stat file: %w", err)
	}

	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return fmt.Errorf("creating tar header: %w", err)
	}
	header.Name = name
	// Owner names are meaningless on the receiving machine.
	header.Uname, header.Gname = "", ""

	if err := tw.WriteHeader(header); err != nil {
		return fmt.Errorf("writing tar header: %w", err)
	}

	if _, err := io.Copy(tw, file); err != nil {
		return fmt.Errorf("writing file contents: %w", err)
	}

	return nil
}

// Import extracts an archive written by Export. Files are extracted into a
// hidden staging directory and only moved into place once the keyring
// loads, so a bad archive never leaves a partial keyring behind.
//
// Returns ErrInvalidArchive if the archive is corrupt, holds more than one
// keyring, escapes its directory or does not load as a keyring, and
// ErrKeyringExists if the keyring is already stored and opts.Replace is unset.
func (s *LocalStore) Import(ctx context.Context, r io.Reader, opts ImportOptions) (*ArchiveSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(s.Root, 0700); err != nil {
		return nil, fmt.Errorf("failed to create keyrings directory at %s: %w", s.Root, err)
	}
	staging, err := os.MkdirTemp(s.Root, ".import-")
	if err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer os.RemoveAll(staging)

	summary, err := extractArchive(ctx, r, staging)
	if err != nil {
		return nil, err
	}

	stagedDir := filepath.Join(staging, summary.ID)
	if _, err := keyring.Load(stagedDir); err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrInvalidArchive, err)
	}

	target, err := s.dir(summary.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrInvalidArchive, err)
	}
	if s.Exists(summary.ID) {
		if !opts.Replace {
			return nil, fmt.Errorf("%w: %s", kerrors.ErrKeyringExists, summary.ID)
		}
		if err := os.RemoveAll(target); err != nil {
			return nil, fmt.Errorf("removing existing keyring %s: %w", summary.ID, err)
		}
	}

	if err := os.Rename(stagedDir, target); err != nil {
		return nil, fmt.Errorf("moving keyring %s into place: %w", summary.ID, err)
	}
	return summary, nil
}

// extractArchive unpacks a keyring archive into dest and validates its layout.
func extractArchive(ctx context.Context, r io.Reader, dest string) (*ArchiveSummary, error) {
	gzReader, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: not a valid gzip archive", kerrors.ErrInvalidArchive)
	}
	defer gzReader.Close()

	tarReader := tar.NewReader(gzReader)
	summary := &ArchiveSummary{}
	hasConfig := false

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: reading tar header: %v", kerrors.ErrInvalidArchive, err)
		}

		// Skip directories - we'll create them as needed.
		if header.Typeflag == tar.TypeDir {
			continue
		}
		if header.Typeflag != tar.TypeReg {
			return nil, fmt.Errorf("%w: %s is not a regular file", kerrors.ErrInvalidArchive, header.Name)
		}

		id, rel, err := splitArchivePath(header.Name)
		if err != nil {
			return nil, err
		}
		if summary.ID == "" {
			summary.ID = id
		} else if summary.ID != id {
			return nil, fmt.Errorf("%w: archive holds more than one keyring", kerrors.ErrInvalidArchive)
		}

		switch {
		case rel == keyring.ConfigFile:
			hasConfig = true
		case rel == HistoryFile:
			summary.HasHistory = true
		case path.Dir(rel) == keyring.EntryDir:
			summary.Entries++
		default:
			return nil, fmt.Errorf("%w: unexpected file %s", kerrors.ErrInvalidArchive, header.Name)
		}

		// #nosec G305 -- splitArchivePath rejects paths that leave dest.
		targetPath := filepath.Join(dest, id, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(targetPath), 0700); err != nil {
			return nil, fmt.Errorf("creating directory for %s: %w", header.Name, err)
		}
		if err := extractFile(tarReader, targetPath, header.Size); err != nil {
			return nil, fmt.Errorf("extracting %s: %w", header.Name, err)
		}
		summary.Files++
	}

	if !hasConfig {
		return nil, fmt.Errorf("%w: archive missing %s", kerrors.ErrInvalidArchive, keyring.ConfigFile)
	}
	return summary, nil
}

// splitArchivePath splits "<id>/<rel>" and rejects names that could escape
// the extraction directory.
func splitArchivePath(name string) (id, rel string, err error) {
	clean := path.Clean(name)
	if clean != name || path.IsAbs(clean) || strings.Contains(name, `\`) {
		return "", "", fmt.Errorf("%w: invalid file path in archive: %s", kerrors.ErrInvalidArchive, name)
	}

	id, rel, ok := strings.Cut(clean, "/")
	if !ok || id == "" || id == "." || id == ".." || strings.HasPrefix(id, ".") || rel == "" {
		return "", "", fmt.Errorf("%w: invalid file path in archive: %s", kerrors.ErrInvalidArchive, name)
	}
	for _, part := range strings.Split(rel, "/") {
		if part == ".." {
			return "", "", fmt.Errorf("%w: invalid file path in archive (path traversal attempt): %s", kerrors.ErrInvalidArchive, name)
		}
	}
	return id, rel, nil
}

// extractFile writes one archive member to path with owner-only permissions.
func extractFile(r io.Reader, path string, size int64) error {
	if size > maxArchiveFileSize {
		return fmt.Errorf("%w: file of %d bytes exceeds the %d byte limit", kerrors.ErrInvalidArchive, size, maxArchiveFileSize)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0600)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, io.LimitReader(r, maxArchiveFileSize)); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	return nil
}
