// Package auth implements the guild allow-list and actor permission checks
// applied before any mutating command runs.
package auth

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"
)

// Settings configures a Gate. The backing files are optional; a missing
// file loads as empty.
type Settings struct {
	// AllowAllGuilds bypasses the guild allow-list entirely.
	AllowAllGuilds bool
	// RoleCheckEnabled lets non-administrators run commands when they hold
	// one of the allow-listed role names. With it disabled only
	// administrators pass the actor check.
	RoleCheckEnabled bool
	// GuildListPath is a newline-delimited list of authorized guild IDs.
	// Blank lines and lines starting with # are ignored.
	GuildListPath string
	// RoleListPath is a newline-delimited list of role names granted
	// command access.
	RoleListPath string
}

type snapshot struct {
	guilds map[string]struct{}
	roles  []string
}

// Gate answers authorization questions from an immutable snapshot of its
// backing files. Reload swaps in a fresh snapshot; checks themselves are
// pure and never touch the filesystem.
type Gate struct {
	settings Settings

	mu   sync.RWMutex
	snap *snapshot
}

// New builds a Gate and loads its backing files.
func New(settings Settings) (*Gate, error) {
	g := &Gate{settings: settings}
	if err := g.Reload(); err != nil {
		return nil, err
	}
	return g, nil
}

// Reload re-reads both backing files and atomically replaces the snapshot.
func (g *Gate) Reload() error {
	guilds, err := readList(g.settings.GuildListPath)
	if err != nil {
		return fmt.Errorf("load guild allow-list: %w", err)
	}
	roleNames, err := readList(g.settings.RoleListPath)
	if err != nil {
		return fmt.Errorf("load command role list: %w", err)
	}

	snap := &snapshot{guilds: make(map[string]struct{}, len(guilds))}
	for _, id := range guilds {
		snap.guilds[id] = struct{}{}
	}
	for _, name := range roleNames {
		snap.roles = append(snap.roles, strings.ToLower(name))
	}

	g.mu.Lock()
	g.snap = snap
	g.mu.Unlock()
	return nil
}

// GuildAuthorized reports whether commands may run in the guild.
func (g *Gate) GuildAuthorized(guildID string) bool {
	if g.settings.AllowAllGuilds {
		return true
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.snap.guilds[guildID]
	return ok
}

// ActorAuthorized reports whether the member may run mutating commands.
// Administrators always pass. Otherwise the role check must be enabled and
// the member must hold at least one allow-listed role name; an empty role
// list denies everyone without the admin bit.
func (g *Gate) ActorAuthorized(member *discordgo.Member, guildRoles []*discordgo.Role) bool {
	if member == nil {
		return false
	}
	if member.Permissions&discordgo.PermissionAdministrator != 0 {
		return true
	}
	if !g.settings.RoleCheckEnabled {
		return false
	}

	g.mu.RLock()
	allowed := g.snap.roles
	g.mu.RUnlock()
	if len(allowed) == 0 {
		return false
	}

	names := make(map[string]string, len(guildRoles))
	for _, r := range guildRoles {
		names[r.ID] = strings.ToLower(r.Name)
	}
	for _, roleID := range member.Roles {
		name, ok := names[roleID]
		if !ok {
			continue
		}
		for _, want := range allowed {
			if name == want {
				return true
			}
		}
	}
	return false
}

// readList parses a newline-delimited file, skipping blanks and # comments.
// A missing file or empty path yields an empty list.
func readList(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var out []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out, scanner.Err()
}
