package keyring

import (
	"bytes"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	kerrors "github.com/PolarWolf314/keymaker/internal/errors"
	"github.com/PolarWolf314/keymaker/internal/secrets"
)

func testFingerprint(t *testing.T, seed byte) secrets.Fingerprint {
	t.Helper()

	fp, err := secrets.FingerprintFromBytes(bytes.Repeat([]byte{seed}, secrets.FingerprintLength))
	if err != nil {
		t.Fatalf("Failed to build fingerprint: %v", err)
	}
	return fp
}

// encryptedLooking returns a property shaped like ciphertext.
func encryptedLooking(name, content string) secrets.PropertyNode {
	return secrets.NewEncryptedProperty([]byte(name), []byte(content), bytes.Repeat([]byte{0x01}, secrets.NonceLength))
}

func newTestKeyring(t *testing.T) *KeyringNode {
	t.Helper()

	k := New("ring")
	k.AddAccessKey(secrets.NewAccessKey(testFingerprint(t, 0xaa), []byte("wrapped-for-a")))
	k.AddAccessKey(secrets.NewAccessKey(testFingerprint(t, 0xbb), []byte("wrapped-for-b")))
	k.SetProperty("ciphertext-name", encryptedLooking("ciphertext-name", "ciphertext-value"))

	for i := 0; i < 3; i++ {
		entry := NewEntry()
		entry.SetProperty("n"+string(rune('0'+i)), encryptedLooking("n"+string(rune('0'+i)), "content"))
		entry.SetProperty("user", encryptedLooking("user", "alice\x00\xff"))
		k.SetEntry(entry)
	}

	return k
}

func TestAccessKeyUpsert(t *testing.T) {
	k := New("ring")
	fp := testFingerprint(t, 0x01)

	if _, err := k.AccessKey(fp); !errors.Is(err, kerrors.ErrAccessDenied) {
		t.Errorf("expected ErrAccessDenied for unknown recipient, got: %v", err)
	}

	k.AddAccessKey(secrets.NewAccessKey(fp, []byte("first")))
	k.AddAccessKey(secrets.NewAccessKey(fp, []byte("second")))

	if len(k.AccessKeys()) != 1 {
		t.Fatalf("expected one access key per recipient, got %d", len(k.AccessKeys()))
	}
	got, err := k.AccessKey(fp)
	if err != nil {
		t.Fatalf("AccessKey failed: %v", err)
	}
	if string(got.Data()) != "second" {
		t.Errorf("expected the second access key to replace the first, got %q", got.Data())
	}
	if !k.HasAccess(fp) {
		t.Error("HasAccess should report the recipient")
	}
}

func TestKeyringCloneIsIndependent(t *testing.T) {
	original := newTestKeyring(t)
	clone := original.Clone()

	if !clone.Equal(original) || clone.ID() != original.ID() {
		t.Fatal("expected clone to equal the original")
	}

	clone.AddAccessKey(secrets.NewAccessKey(testFingerprint(t, 0xcc), []byte("wrapped-for-c")))
	clone.SetEntry(NewEntry())
	clone.RemoveProperty("ciphertext-name")

	if len(original.AccessKeys()) != 2 {
		t.Errorf("expected original to keep 2 access keys, got %d", len(original.AccessKeys()))
	}
	if original.EntryCount() != 3 {
		t.Errorf("expected original to keep 3 entries, got %d", original.EntryCount())
	}
	if original.PropertyCount() != 1 {
		t.Errorf("expected original to keep its property, got %d", original.PropertyCount())
	}
}

func TestEntryLookup(t *testing.T) {
	k := New("ring")

	if _, err := k.Entry("nope"); !errors.Is(err, kerrors.ErrEntryNotFound) {
		t.Errorf("expected ErrEntryNotFound, got: %v", err)
	}

	entry := NewEntry()
	entry.SetValue("name", "site")
	k.SetEntry(entry)

	got, err := k.Entry(entry.ID())
	if err != nil {
		t.Fatalf("Entry failed: %v", err)
	}
	if !got.Equal(&entry) {
		t.Error("stored entry differs from the one set")
	}

	if err := k.RemoveEntry(entry.ID()); err != nil {
		t.Fatalf("RemoveEntry failed: %v", err)
	}
	if err := k.RemoveEntry(entry.ID()); !errors.Is(err, kerrors.ErrEntryNotFound) {
		t.Errorf("expected ErrEntryNotFound on second removal, got: %v", err)
	}
}

func TestEachEntryStopsOnError(t *testing.T) {
	k := newTestKeyring(t)
	boom := errors.New("boom")

	calls := 0
	err := k.EachEntry(func(string, EntryNode) error {
		calls++
		return boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("expected the visitor error, got: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected iteration to stop after one call, got %d", calls)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "ring")
	original := newTestKeyring(t)

	if err := original.Save(dir); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.ID() != "ring" {
		t.Errorf("expected id from directory name, got %q", loaded.ID())
	}
	if !original.Equal(loaded) {
		t.Error("loaded keyring is not equal to the saved one")
	}

	// A second save of the loaded keyring must produce the same files.
	before, err := os.ReadFile(filepath.Join(dir, ConfigFile))
	if err != nil {
		t.Fatalf("Failed to read config: %v", err)
	}
	if err := loaded.Save(dir); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}
	after, err := os.ReadFile(filepath.Join(dir, ConfigFile))
	if err != nil {
		t.Fatalf("Failed to read config: %v", err)
	}
	if !bytes.Equal(before, after) {
		t.Error("saving is not deterministic")
	}
}

func TestSaveWritesExpectedLayout(t *testing.T) {
	dir := t.TempDir()
	k := newTestKeyring(t)

	if err := k.Save(dir); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	config, err := os.ReadFile(filepath.Join(dir, ConfigFile))
	if err != nil {
		t.Fatalf("Failed to read config: %v", err)
	}
	for _, want := range []string{`<keymaker version="1.0">`, "<accessKeys>", `<recipient encoding="base64">`, `<data encoding="base64">`} {
		if !strings.Contains(string(config), want) {
			t.Errorf("config file missing %s:\n%s", want, config)
		}
	}

	files, err := os.ReadDir(filepath.Join(dir, EntryDir))
	if err != nil {
		t.Fatalf("Failed to read entries: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("expected 3 entry files, got %d", len(files))
	}

	entryData, err := os.ReadFile(filepath.Join(dir, EntryDir, files[0].Name()))
	if err != nil {
		t.Fatalf("Failed to read entry: %v", err)
	}
	for _, want := range []string{`<entry version="1.0">`, "<properties>", `<nonce encoding="base64">`, `<name encoding="base64">`, `<content encoding="base64">`} {
		if !strings.Contains(string(entryData), want) {
			t.Errorf("entry file missing %s:\n%s", want, entryData)
		}
	}
}

func TestLoadIgnoresHiddenFilesAndDirectories(t *testing.T) {
	dir := t.TempDir()
	k := newTestKeyring(t)
	if err := k.Save(dir); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	entryDir := filepath.Join(dir, EntryDir)
	if err := os.WriteFile(filepath.Join(entryDir, ".DS_Store"), []byte("junk"), 0600); err != nil {
		t.Fatalf("Failed to write hidden file: %v", err)
	}
	if err := os.Mkdir(filepath.Join(entryDir, "subdir"), 0700); err != nil {
		t.Fatalf("Failed to create subdir: %v", err)
	}

	loaded, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.EntryCount() != 3 {
		t.Errorf("expected 3 entries, got %d", loaded.EntryCount())
	}

	// Saving again must leave non-entry files alone.
	if err := loaded.Save(dir); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(entryDir, ".DS_Store")); err != nil {
		t.Errorf("hidden file was removed: %v", err)
	}
}

func TestSaveRemovesDeletedEntries(t *testing.T) {
	dir := t.TempDir()
	k := newTestKeyring(t)
	if err := k.Save(dir); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	var victim string
	_ = k.EachEntry(func(id string, _ EntryNode) error {
		victim = id
		return nil
	})
	if err := k.RemoveEntry(victim); err != nil {
		t.Fatalf("RemoveEntry failed: %v", err)
	}
	if err := k.Save(dir); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if _, err := loaded.Entry(victim); !errors.Is(err, kerrors.ErrEntryNotFound) {
		t.Errorf("removed entry came back after reload: %v", err)
	}
	if loaded.EntryCount() != 2 {
		t.Errorf("expected 2 entries, got %d", loaded.EntryCount())
	}
}

func TestLoadToleratesWhitespaceInBase64(t *testing.T) {
	dir := t.TempDir()
	recipient := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{0xaa}, secrets.FingerprintLength))
	config := `<?xml version="1.0" encoding="utf-8"?>
<keymaker version="1.0">
    <accessKeys>
        <entry>
            <recipient encoding="base64">
                ` + recipient[:20] + `
                ` + recipient[20:] + `
            </recipient>
            <data encoding="base64">d3Jh
cHBlZA==</data>
        </entry>
    </accessKeys>
</keymaker>
`
	if err := os.WriteFile(filepath.Join(dir, ConfigFile), []byte(config), 0600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	k, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	accessKey, err := k.AccessKey(testFingerprint(t, 0xaa))
	if err != nil {
		t.Fatalf("AccessKey failed: %v", err)
	}
	if string(accessKey.Data()) != "wrapped" {
		t.Errorf("expected data %q, got %q", "wrapped", accessKey.Data())
	}
	if k.EntryCount() != 0 {
		t.Errorf("expected no entries without an entries directory, got %d", k.EntryCount())
	}
}

func TestLoadMissingKeyring(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent"))
	if !errors.Is(err, kerrors.ErrKeyringNotFound) {
		t.Errorf("expected ErrKeyringNotFound, got: %v", err)
	}
}

func TestLoadMalformedStorage(t *testing.T) {
	validEntry := `<entry version="1.0"><properties></properties></entry>`

	testCases := []struct {
		name   string
		config string
		entry  string
	}{
		{"BrokenXML", `<keymaker><accessKeys>`, validEntry},
		{"WrongRoot", `<entry version="1.0"></entry>`, validEntry},
		{"BadBase64", `<keymaker><accessKeys><entry><recipient encoding="base64">***</recipient><data>AA==</data></entry></accessKeys></keymaker>`, validEntry},
		{"ShortRecipient", `<keymaker><accessKeys><entry><recipient encoding="base64">AAAA</recipient><data>AA==</data></entry></accessKeys></keymaker>`, validEntry},
		{"UnknownEncoding", `<keymaker><accessKeys><entry><recipient encoding="hex">00</recipient><data>AA==</data></entry></accessKeys></keymaker>`, validEntry},
		{"BrokenEntry", `<keymaker version="1.0"></keymaker>`, `<entry><properties><property><name>`},
		{"BadEntryBase64", `<keymaker version="1.0"></keymaker>`, `<entry><properties><property><nonce/><name>!!</name><content/></property></properties></entry>`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			if err := os.WriteFile(filepath.Join(dir, ConfigFile), []byte(tc.config), 0600); err != nil {
				t.Fatalf("Failed to write config: %v", err)
			}
			if err := os.MkdirAll(filepath.Join(dir, EntryDir), 0700); err != nil {
				t.Fatalf("Failed to create entries dir: %v", err)
			}
			if err := os.WriteFile(filepath.Join(dir, EntryDir, "0b7e9d1c-5a5f-4a53-9df5-7a4cbd2f4f10"), []byte(tc.entry), 0600); err != nil {
				t.Fatalf("Failed to write entry: %v", err)
			}

			if _, err := Load(dir); !errors.Is(err, kerrors.ErrMalformedStorage) {
				t.Errorf("expected ErrMalformedStorage, got: %v", err)
			}
		})
	}
}

func TestSaveRejectsUnsafeEntryIDs(t *testing.T) {
	k := New("ring")
	k.SetEntry(NewEntryWithID("../escape"))

	if err := k.Save(t.TempDir()); err == nil {
		t.Error("expected Save to reject an entry id containing a path separator")
	}
}

func TestKeyringMapProperties(t *testing.T) {
	k := New("ring")
	k.SetValue("name", "Personal")

	upper, err := k.Map(func(_ string, p secrets.PropertyNode) (secrets.PropertyNode, error) {
		return secrets.NewProperty([]byte(strings.ToUpper(string(p.Name()))), p.Content()), nil
	})
	if err != nil {
		t.Fatalf("Map failed: %v", err)
	}
	if _, err := k.Property("name"); err != nil {
		t.Errorf("original bag was modified: %v", err)
	}

	k.ReplaceProperties(upper)
	if value, err := k.Value("NAME"); err != nil || value != "Personal" {
		t.Errorf("expected re-keyed property, got %q (%v)", value, err)
	}
}
