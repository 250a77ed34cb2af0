package storage

import (
	"strings"
	"sync"
)

// Streamer is one tracked Twitch channel. GuildID is optional: records
// added by hand without it are tracked globally.
type Streamer struct {
	Name      string `json:"name"`
	ChannelID string `json:"channel_id"`
	GuildID   string `json:"guild_id,omitempty"`
}

// TrackedTable stores the streamers the presence watcher polls. The
// watcher re-reads the backing file periodically, so direct edits take
// effect without a restart.
type TrackedTable struct {
	path string

	mu      sync.Mutex
	entries []Streamer
}

// NewTrackedTable loads the table from path; missing files mean an empty
// table.
func NewTrackedTable(path string) (*TrackedTable, error) {
	t := &TrackedTable{path: path}
	if err := loadJSON(path, &t.entries); err != nil {
		return nil, err
	}
	return t, nil
}

// LoadTracked reads the tracked-streamer file fresh from disk. Used by the
// watcher's reload tick so it observes admin commands and manual edits.
func LoadTracked(path string) ([]Streamer, error) {
	var entries []Streamer
	if err := loadJSON(path, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Add appends a streamer. Names are stored lower-cased; a duplicate
// (channel, name) pair is rejected with ErrExists.
func (t *TrackedTable) Add(s Streamer) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	s.Name = strings.ToLower(s.Name)
	for _, e := range t.entries {
		if e.ChannelID == s.ChannelID && e.Name == s.Name {
			return ErrExists
		}
	}
	t.entries = append(t.entries, s)

	if err := t.persist(); err != nil {
		t.entries = t.entries[:len(t.entries)-1]
		return err
	}
	return nil
}

// Remove deletes a streamer by name within the given notification channel.
func (t *TrackedTable) Remove(channelID, name string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	name = strings.ToLower(name)
	for i, e := range t.entries {
		if e.ChannelID == channelID && e.Name == name {
			removed := e
			t.entries = append(t.entries[:i], t.entries[i+1:]...)
			if err := t.persist(); err != nil {
				t.entries = append(t.entries, Streamer{})
				copy(t.entries[i+1:], t.entries[i:])
				t.entries[i] = removed
				return err
			}
			return nil
		}
	}
	return ErrNotFound
}

// ListChannel returns the streamers tracked for one notification channel.
func (t *TrackedTable) ListChannel(channelID string) []Streamer {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []Streamer
	for _, e := range t.entries {
		if e.ChannelID == channelID {
			out = append(out, e)
		}
	}
	return out
}

// All returns a copy of every tracked streamer.
func (t *TrackedTable) All() []Streamer {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Streamer, len(t.entries))
	copy(out, t.entries)
	return out
}

func (t *TrackedTable) persist() error {
	return saveJSON(t.path, t.entries)
}
