package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newTestTable(t *testing.T) *TrackedTable {
	t.Helper()
	tbl, err := NewTrackedTable(filepath.Join(t.TempDir(), "twitch.json"))
	if err != nil {
		t.Fatalf("NewTrackedTable: %v", err)
	}
	return tbl
}

func TestTrackedAddRemove(t *testing.T) {
	tbl := newTestTable(t)

	if err := tbl.Add(Streamer{Name: "Alice", ChannelID: "100", GuildID: "1"}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	// Names are case-insensitive; the duplicate is rejected.
	if err := tbl.Add(Streamer{Name: "alice", ChannelID: "100"}); !errors.Is(err, ErrExists) {
		t.Errorf("duplicate Add = %v; want ErrExists", err)
	}

	// Same streamer in another channel is a distinct entry.
	if err := tbl.Add(Streamer{Name: "alice", ChannelID: "200", GuildID: "2"}); err != nil {
		t.Fatalf("Add to second channel: %v", err)
	}

	if got := len(tbl.ListChannel("100")); got != 1 {
		t.Errorf("ListChannel(100) len = %d; want 1", got)
	}
	if got := len(tbl.All()); got != 2 {
		t.Errorf("All len = %d; want 2", got)
	}

	if err := tbl.Remove("100", "ALICE"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := tbl.Remove("100", "alice"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Remove = %v; want ErrNotFound", err)
	}
	if got := len(tbl.ListChannel("200")); got != 1 {
		t.Errorf("Remove touched the wrong channel, ListChannel(200) len = %d", got)
	}
}

func TestLoadTrackedMissingFile(t *testing.T) {
	entries, err := LoadTracked(filepath.Join(t.TempDir(), "twitch.json"))
	if err != nil {
		t.Fatalf("LoadTracked: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected empty table, got %v", entries)
	}
}

func TestLoadTrackedCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "twitch.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	entries, err := LoadTracked(path)
	if err != nil {
		t.Fatalf("LoadTracked on corrupt file: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("corrupt file should load as empty, got %v", entries)
	}
}

func TestTrackedPersistsAcrossReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "twitch.json")

	tbl, err := NewTrackedTable(path)
	if err != nil {
		t.Fatalf("NewTrackedTable: %v", err)
	}
	if err := tbl.Add(Streamer{Name: "alice", ChannelID: "100", GuildID: "1"}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	entries, err := LoadTracked(path)
	if err != nil {
		t.Fatalf("LoadTracked: %v", err)
	}
	if len(entries) != 1 || entries[0].Name != "alice" || entries[0].ChannelID != "100" {
		t.Errorf("reloaded entries = %v", entries)
	}
}
