package storage

import (
	"sync"
)

// Bindings is the persisted shape of the reaction-role table:
// guild ID -> message ID -> emoji -> role reference.
type Bindings map[string]map[string]map[string]string

// Registry stores reaction-role bindings and persists every mutation to
// its backing file before reporting success.
type Registry struct {
	path string

	mu       sync.Mutex
	bindings Bindings
}

// NewRegistry loads the registry from path. A missing or unreadable file
// yields an empty registry.
func NewRegistry(path string) (*Registry, error) {
	r := &Registry{path: path, bindings: Bindings{}}
	if err := loadJSON(path, &r.bindings); err != nil {
		return nil, err
	}
	if r.bindings == nil {
		r.bindings = Bindings{}
	}
	return r, nil
}

// Bind upserts the role reference for (guild, message, emoji) and persists.
// On a persistence failure the in-memory state is rolled back.
func (r *Registry) Bind(guildID, messageID, emoji, role string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, hadPrev := "", false
	guild, ok := r.bindings[guildID]
	if !ok {
		guild = map[string]map[string]string{}
		r.bindings[guildID] = guild
	}
	msg, ok := guild[messageID]
	if !ok {
		msg = map[string]string{}
		guild[messageID] = msg
	} else {
		prev, hadPrev = msg[emoji]
	}
	msg[emoji] = role

	if err := r.persist(); err != nil {
		if hadPrev {
			msg[emoji] = prev
		} else {
			delete(msg, emoji)
			r.prune(guildID, messageID)
		}
		return err
	}
	return nil
}

// Unbind removes the binding for (guild, message, emoji), pruning empty
// message and guild entries. Returns ErrNotFound if no such binding exists.
func (r *Registry) Unbind(guildID, messageID, emoji string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	msg, ok := r.bindings[guildID][messageID]
	if !ok {
		return ErrNotFound
	}
	role, ok := msg[emoji]
	if !ok {
		return ErrNotFound
	}
	delete(msg, emoji)
	r.prune(guildID, messageID)

	if err := r.persist(); err != nil {
		guild, ok := r.bindings[guildID]
		if !ok {
			guild = map[string]map[string]string{}
			r.bindings[guildID] = guild
		}
		if guild[messageID] == nil {
			guild[messageID] = map[string]string{}
		}
		guild[messageID][emoji] = role
		return err
	}
	return nil
}

// Lookup returns the role reference bound to (guild, message, emoji).
func (r *Registry) Lookup(guildID, messageID, emoji string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	role, ok := r.bindings[guildID][messageID][emoji]
	return role, ok
}

// List returns a deep copy of one guild's bindings.
func (r *Registry) List(guildID string) map[string]map[string]string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := map[string]map[string]string{}
	for messageID, emojis := range r.bindings[guildID] {
		m := make(map[string]string, len(emojis))
		for emoji, role := range emojis {
			m[emoji] = role
		}
		out[messageID] = m
	}
	return out
}

// Snapshot returns a deep copy of the whole table.
func (r *Registry) Snapshot() Bindings {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(Bindings, len(r.bindings))
	for guildID, messages := range r.bindings {
		g := make(map[string]map[string]string, len(messages))
		for messageID, emojis := range messages {
			m := make(map[string]string, len(emojis))
			for emoji, role := range emojis {
				m[emoji] = role
			}
			g[messageID] = m
		}
		out[guildID] = g
	}
	return out
}

// prune drops empty message and guild entries. Callers hold the lock.
func (r *Registry) prune(guildID, messageID string) {
	guild, ok := r.bindings[guildID]
	if !ok {
		return
	}
	if msg, ok := guild[messageID]; ok && len(msg) == 0 {
		delete(guild, messageID)
	}
	if len(guild) == 0 {
		delete(r.bindings, guildID)
	}
}

func (r *Registry) persist() error {
	return saveJSON(r.path, r.bindings)
}
