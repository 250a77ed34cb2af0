package storage

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := NewRegistry(filepath.Join(t.TempDir(), "reaction_roles.json"))
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return r
}

func TestRegistryBindLookup(t *testing.T) {
	r := newTestRegistry(t)

	if err := r.Bind("1", "10", "✅", "Verified"); err != nil {
		t.Fatalf("Bind: %v", err)
	}

	role, ok := r.Lookup("1", "10", "✅")
	if !ok || role != "Verified" {
		t.Errorf("Lookup = %q, %v; want Verified, true", role, ok)
	}
	if _, ok := r.Lookup("1", "10", "❌"); ok {
		t.Error("Lookup of unbound emoji reported a binding")
	}

	// Rebinding the same triple replaces the role.
	if err := r.Bind("1", "10", "✅", "Member"); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if role, _ := r.Lookup("1", "10", "✅"); role != "Member" {
		t.Errorf("after rebind Lookup = %q; want Member", role)
	}
}

func TestRegistryUnbindRoundTrip(t *testing.T) {
	r := newTestRegistry(t)

	before := r.List("1")

	pairs := [][3]string{
		{"10", "✅", "Verified"},
		{"10", "🎮", "Gamer"},
		{"11", "✅", "Member"},
	}
	for _, p := range pairs {
		if err := r.Bind("1", p[0], p[1], p[2]); err != nil {
			t.Fatalf("Bind%v: %v", p, err)
		}
	}
	for _, p := range pairs {
		if err := r.Unbind("1", p[0], p[1]); err != nil {
			t.Fatalf("Unbind%v: %v", p, err)
		}
	}

	after := r.List("1")
	if !reflect.DeepEqual(before, after) {
		t.Errorf("bind/unbind round trip: before=%v after=%v", before, after)
	}
}

func TestRegistryUnbindNotFound(t *testing.T) {
	r := newTestRegistry(t)

	if err := r.Unbind("1", "10", "✅"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Unbind on empty registry = %v; want ErrNotFound", err)
	}

	if err := r.Bind("1", "10", "✅", "Verified"); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if err := r.Unbind("1", "10", "🎮"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Unbind of wrong emoji = %v; want ErrNotFound", err)
	}
}

func TestRegistryPrunesEmptyParents(t *testing.T) {
	r := newTestRegistry(t)

	if err := r.Bind("1", "10", "✅", "Verified"); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if err := r.Unbind("1", "10", "✅"); err != nil {
		t.Fatalf("Unbind: %v", err)
	}

	snap := r.Snapshot()
	if len(snap) != 0 {
		t.Errorf("expected empty snapshot after pruning, got %v", snap)
	}
}

func TestRegistryPersistsAcrossReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reaction_roles.json")

	r, err := NewRegistry(path)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	if err := r.Bind("1", "10", "✅", "Verified"); err != nil {
		t.Fatalf("Bind: %v", err)
	}

	r2, err := NewRegistry(path)
	if err != nil {
		t.Fatalf("NewRegistry reload: %v", err)
	}
	if role, ok := r2.Lookup("1", "10", "✅"); !ok || role != "Verified" {
		t.Errorf("after reload Lookup = %q, %v; want Verified, true", role, ok)
	}
}

func TestRegistryListIsACopy(t *testing.T) {
	r := newTestRegistry(t)

	if err := r.Bind("1", "10", "✅", "Verified"); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	list := r.List("1")
	list["10"]["✅"] = "Tampered"

	if role, _ := r.Lookup("1", "10", "✅"); role != "Verified" {
		t.Errorf("mutating a List snapshot leaked into the registry: %q", role)
	}
}
