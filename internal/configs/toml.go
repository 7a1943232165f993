package configs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// writeTOML encodes data into path with mode 0600. The document is written
// to a temporary file in the same directory and renamed over path, so a
// failed save leaves the previous file intact.
func writeTOML(path string, data any) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := toml.NewEncoder(tmp).Encode(data); err != nil {
		tmp.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), path)
}

// readTOML decodes path into data. Keys with no matching field are an
// error so a misspelled setting is not silently ignored.
func readTOML(path string, data any) error {
	meta, err := toml.DecodeFile(path, data)
	if err != nil {
		return err
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		return fmt.Errorf("%s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	return nil
}
