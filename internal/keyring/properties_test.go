package keyring

import (
	"errors"
	"reflect"
	"testing"

	kerrors "github.com/PolarWolf314/keymaker/internal/errors"
	"github.com/PolarWolf314/keymaker/internal/secrets"
)

func TestPropertiesSetGetRemove(t *testing.T) {
	var props Properties

	if _, err := props.Property("missing"); !errors.Is(err, kerrors.ErrPropertyNotFound) {
		t.Errorf("expected ErrPropertyNotFound on empty bag, got: %v", err)
	}

	props.SetValue("username", "alice")
	props.SetValue("password", "hunter2")

	value, err := props.Value("username")
	if err != nil {
		t.Fatalf("Value failed: %v", err)
	}
	if value != "alice" {
		t.Errorf("expected %q, got %q", "alice", value)
	}

	props.SetValue("username", "bob")
	if value, _ := props.Value("username"); value != "bob" {
		t.Errorf("expected SetValue to replace the property, got %q", value)
	}
	if props.PropertyCount() != 2 {
		t.Errorf("expected 2 properties, got %d", props.PropertyCount())
	}

	props.RemoveProperty("username")
	props.RemoveProperty("never-set")
	if _, err := props.Property("username"); !errors.Is(err, kerrors.ErrPropertyNotFound) {
		t.Errorf("expected ErrPropertyNotFound after removal, got: %v", err)
	}
}

func TestPropertiesEachInNameOrder(t *testing.T) {
	var props Properties
	for _, name := range []string{"shell", "host", "name", "password"} {
		props.SetValue(name, name+"-value")
	}

	var visited []string
	props.EachProperty(func(name string, property secrets.PropertyNode) {
		visited = append(visited, name)
		if string(property.Content()) != name+"-value" {
			t.Errorf("property %s has content %q", name, property.Content())
		}
	})

	want := []string{"host", "name", "password", "shell"}
	if !reflect.DeepEqual(visited, want) {
		t.Errorf("expected order %v, got %v", want, visited)
	}
}

func TestEntryMapPropertiesLeavesOriginal(t *testing.T) {
	entry := NewEntry()
	entry.SetValue("site", "example.com")

	upper, err := entry.MapProperties(func(name string, property secrets.PropertyNode) (secrets.PropertyNode, error) {
		return secrets.NewProperty([]byte("mapped-"+name), append([]byte(nil), property.Content()...)), nil
	})
	if err != nil {
		t.Fatalf("MapProperties failed: %v", err)
	}

	if upper.ID() != entry.ID() {
		t.Error("mapped entry should keep the id")
	}
	if _, err := upper.Property("mapped-site"); err != nil {
		t.Errorf("expected mapped property to be keyed by its new name: %v", err)
	}
	if _, err := entry.Property("site"); err != nil {
		t.Errorf("original entry was modified: %v", err)
	}
	if _, err := entry.Property("mapped-site"); err == nil {
		t.Error("original entry gained the mapped property")
	}
}

func TestEntryMapPropertiesStopsOnError(t *testing.T) {
	entry := NewEntry()
	entry.SetValue("a", "1")
	entry.SetValue("b", "2")

	boom := errors.New("boom")
	_, err := entry.MapProperties(func(string, secrets.PropertyNode) (secrets.PropertyNode, error) {
		return secrets.PropertyNode{}, boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("expected the transform error, got: %v", err)
	}
}

func TestNewEntryIDsAreUnique(t *testing.T) {
	a, b := NewEntry(), NewEntry()

	if a.ID() == "" || a.ID() == b.ID() {
		t.Errorf("expected distinct non-empty ids, got %q and %q", a.ID(), b.ID())
	}
}

func TestEntryCloneIsIndependent(t *testing.T) {
	entry := NewEntry()
	entry.SetValue("password", "hunter2")

	clone := entry.Clone()
	if !entry.Equal(&clone) {
		t.Fatal("clone should equal the original")
	}

	clone.WipeProperties()
	if clone.PropertyCount() != 0 {
		t.Error("WipeProperties should empty the bag")
	}
	if value, _ := entry.Value("password"); value != "hunter2" {
		t.Errorf("wiping the clone changed the original to %q", value)
	}
}

func TestFieldLabel(t *testing.T) {
	tests := map[string]string{
		"name":    "Name",
		"tunnel3": "Tunnel #3",
		"vpn0":    "VPN #0",
		"custom":  "custom",
	}
	for name, want := range tests {
		if got := FieldLabel(name); got != want {
			t.Errorf("FieldLabel(%q) = %q, want %q", name, got, want)
		}
	}
	if !IsSecretField("password") || IsSecretField("username") {
		t.Error("only password should be a secret field")
	}
}

func TestSortFieldNames(t *testing.T) {
	names := []string{"zone", "password", "vpn0", "alias", "name", "tunnel1", "host"}
	SortFieldNames(names)

	want := []string{"name", "password", "host", "tunnel1", "vpn0", "alias", "zone"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("SortFieldNames() = %v, want %v", names, want)
	}
}
