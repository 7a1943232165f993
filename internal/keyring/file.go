package keyring

import (
	"encoding/base64"
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	kerrors "github.com/PolarWolf314/keymaker/internal/errors"
	"github.com/PolarWolf314/keymaker/internal/secrets"
)

const (
	// ConfigFile is the keyring file holding access keys and keyring properties.
	ConfigFile = "keymaker.xml"

	// EntryDir is the directory holding one file per entry.
	EntryDir = "entries"

	formatVersion  = "1.0"
	base64Encoding = "base64"
)

type encodedValue struct {
	Encoding string `xml:"encoding,attr,omitempty"`
	Value    string `xml:",chardata"`
}

func encodeValue(data []byte) encodedValue {
	return encodedValue{Encoding: base64Encoding, Value: base64.StdEncoding.EncodeToString(data)}
}

func (v encodedValue) decode(field string) ([]byte, error) {
	if v.Encoding != "" && v.Encoding != base64Encoding {
		return nil, fmt.Errorf("%w: %s has unsupported encoding %q", kerrors.ErrMalformedStorage, field, v.Encoding)
	}
	data, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(v.Value), ""))
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not valid base64: %v", kerrors.ErrMalformedStorage, field, err)
	}
	return data, nil
}

type xmlAccessKey struct {
	Recipient encodedValue `xml:"recipient"`
	Data      encodedValue `xml:"data"`
}

type xmlProperty struct {
	Nonce   encodedValue `xml:"nonce"`
	Name    encodedValue `xml:"name"`
	Content encodedValue `xml:"content"`
}

type xmlKeyring struct {
	XMLName    xml.Name       `xml:"keymaker"`
	Version    string         `xml:"version,attr"`
	AccessKeys []xmlAccessKey `xml:"accessKeys>entry"`
	Properties []xmlProperty  `xml:"properties>property"`
}

type xmlEntry struct {
	XMLName    xml.Name      `xml:"entry"`
	Version    string        `xml:"version,attr"`
	Properties []xmlProperty `xml:"properties>property"`
}

func encodeProperties(p *Properties) []xmlProperty {
	var out []xmlProperty
	p.EachProperty(func(_ string, property secrets.PropertyNode) {
		out = append(out, xmlProperty{
			Nonce:   encodeValue(property.Nonce()),
			Name:    encodeValue(property.Name()),
			Content: encodeValue(property.Content()),
		})
	})
	return out
}

func decodeProperties(dst *Properties, src []xmlProperty) error {
	for i, raw := range src {
		nonce, err := raw.Nonce.decode(fmt.Sprintf("property %d nonce", i))
		if err != nil {
			return err
		}
		name, err := raw.Name.decode(fmt.Sprintf("property %d name", i))
		if err != nil {
			return err
		}
		content, err := raw.Content.decode(fmt.Sprintf("property %d content", i))
		if err != nil {
			return err
		}
		dst.SetProperty(string(name), secrets.NewEncryptedProperty(name, content, nonce))
	}
	return nil
}

// Load reads the keyring stored in dir. The keyring id is the directory name.
//
// Returns ErrKeyringNotFound if dir has no keymaker.xml and
// ErrMalformedStorage if any keyring file fails to parse.
func Load(dir string) (*KeyringNode, error) {
	configPath := filepath.Join(dir, ConfigFile)

	data, err := os.ReadFile(configPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", kerrors.ErrKeyringNotFound, dir)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", configPath, err)
	}

	var doc xmlKeyring
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", kerrors.ErrMalformedStorage, configPath, err)
	}

	k := New(filepath.Base(dir))

	for i, raw := range doc.AccessKeys {
		recipient, err := raw.Recipient.decode(fmt.Sprintf("access key %d recipient", i))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", configPath, err)
		}
		fp, err := secrets.FingerprintFromBytes(recipient)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: access key %d: %v", kerrors.ErrMalformedStorage, configPath, i, err)
		}
		wrapped, err := raw.Data.decode(fmt.Sprintf("access key %d data", i))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", configPath, err)
		}
		k.AddAccessKey(secrets.NewAccessKey(fp, wrapped))
	}

	if err := decodeProperties(&k.Properties, doc.Properties); err != nil {
		return nil, fmt.Errorf("%s: %w", configPath, err)
	}

	entryDir := filepath.Join(dir, EntryDir)
	files, err := os.ReadDir(entryDir)
	if errors.Is(err, os.ErrNotExist) {
		return k, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", entryDir, err)
	}

	for _, file := range files {
		if !isEntryFile(file) {
			continue
		}
		entry, err := loadEntry(filepath.Join(entryDir, file.Name()))
		if err != nil {
			return nil, err
		}
		k.SetEntry(entry)
	}

	return k, nil
}

func isEntryFile(file os.DirEntry) bool {
	return !strings.HasPrefix(file.Name(), ".") && file.Type().IsRegular()
}

func loadEntry(path string) (EntryNode, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return EntryNode{}, fmt.Errorf("failed to read entry %s: %w", path, err)
	}

	var doc xmlEntry
	if err := xml.Unmarshal(data, &doc); err != nil {
		return EntryNode{}, fmt.Errorf("%w: %s: %v", kerrors.ErrMalformedStorage, path, err)
	}

	entry := NewEntryWithID(filepath.Base(path))
	if err := decodeProperties(&entry.Properties, doc.Properties); err != nil {
		return EntryNode{}, fmt.Errorf("%s: %w", path, err)
	}

	return entry, nil
}

// Save writes the keyring to dir. Entry files for entries no longer in the
// keyring are removed so a later Load sees the same entries.
func (k *KeyringNode) Save(dir string) error {
	entryDir := filepath.Join(dir, EntryDir)
	if err := os.MkdirAll(entryDir, 0700); err != nil {
		return fmt.Errorf("failed to create keyring directory at %s: %w", entryDir, err)
	}

	doc := xmlKeyring{Version: formatVersion, Properties: encodeProperties(&k.Properties)}
	for _, accessKey := range k.AccessKeys() {
		recipient := accessKey.Recipient()
		doc.AccessKeys = append(doc.AccessKeys, xmlAccessKey{
			Recipient: encodeValue(recipient[:]),
			Data:      encodeValue(accessKey.Data()),
		})
	}
	if err := writeXML(filepath.Join(dir, ConfigFile), doc, "    "); err != nil {
		return err
	}

	err := k.EachEntry(func(id string, entry EntryNode) error {
		if id == "" || strings.ContainsAny(id, `/\`) || strings.HasPrefix(id, ".") {
			return fmt.Errorf("invalid entry id %q", id)
		}
		entryDoc := xmlEntry{Version: formatVersion, Properties: encodeProperties(&entry.Properties)}
		return writeXML(filepath.Join(entryDir, id), entryDoc, "\t")
	})
	if err != nil {
		return err
	}

	return k.pruneEntries(entryDir)
}

func (k *KeyringNode) pruneEntries(entryDir string) error {
	files, err := os.ReadDir(entryDir)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", entryDir, err)
	}
	for _, file := range files {
		if !isEntryFile(file) {
			continue
		}
		if _, ok := k.entries[file.Name()]; ok {
			continue
		}
		if err := os.Remove(filepath.Join(entryDir, file.Name())); err != nil {
			return fmt.Errorf("failed to remove stale entry %s: %w", file.Name(), err)
		}
	}
	return nil
}

func writeXML(path string, doc any, indent string) error {
	data, err := xml.MarshalIndent(doc, "", indent)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}

	out := make([]byte, 0, len(xml.Header)+len(data)+1)
	out = append(out, xml.Header...)
	out = append(out, data...)
	out = append(out, '\n')

	if err := os.WriteFile(path, out, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
