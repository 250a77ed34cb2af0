package auth

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bwmarrin/discordgo"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestGuildAuthorized(t *testing.T) {
	dir := t.TempDir()
	guildList := writeFile(t, dir, "allowed_guilds.txt", "# production servers\n123456789\n\n987654321\n")

	g, err := New(Settings{GuildListPath: guildList})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if !g.GuildAuthorized("123456789") {
		t.Error("listed guild denied")
	}
	if !g.GuildAuthorized("987654321") {
		t.Error("listed guild after blank line denied")
	}
	if g.GuildAuthorized("555") {
		t.Error("unlisted guild authorized")
	}
}

func TestGuildAuthorizedAllowAll(t *testing.T) {
	g, err := New(Settings{AllowAllGuilds: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !g.GuildAuthorized("anything") {
		t.Error("allow-all override did not authorize")
	}
}

func TestGuildAuthorizedMissingFile(t *testing.T) {
	g, err := New(Settings{GuildListPath: filepath.Join(t.TempDir(), "nope.txt")})
	if err != nil {
		t.Fatalf("New with missing file: %v", err)
	}
	if g.GuildAuthorized("123") {
		t.Error("missing allow-list should deny every guild")
	}
}

func TestActorAuthorized(t *testing.T) {
	dir := t.TempDir()
	roleList := writeFile(t, dir, "command_roles.txt", "Moderator\nBot Admin\n")

	guildRoles := []*discordgo.Role{
		{ID: "r1", Name: "moderator"},
		{ID: "r2", Name: "Member"},
	}

	tests := []struct {
		name     string
		settings Settings
		member   *discordgo.Member
		want     bool
	}{
		{
			name:     "administrator always passes",
			settings: Settings{},
			member:   &discordgo.Member{Permissions: discordgo.PermissionAdministrator},
			want:     true,
		},
		{
			name:     "non-admin denied with role check disabled",
			settings: Settings{RoleListPath: roleList},
			member:   &discordgo.Member{Roles: []string{"r1"}},
			want:     false,
		},
		{
			name:     "allow-listed role passes case-insensitively",
			settings: Settings{RoleCheckEnabled: true, RoleListPath: roleList},
			member:   &discordgo.Member{Roles: []string{"r1"}},
			want:     true,
		},
		{
			name:     "unlisted role denied",
			settings: Settings{RoleCheckEnabled: true, RoleListPath: roleList},
			member:   &discordgo.Member{Roles: []string{"r2"}},
			want:     false,
		},
		{
			name:     "empty role list fails closed",
			settings: Settings{RoleCheckEnabled: true},
			member:   &discordgo.Member{Roles: []string{"r1"}},
			want:     false,
		},
		{
			name:     "nil member denied",
			settings: Settings{RoleCheckEnabled: true, RoleListPath: roleList},
			member:   nil,
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := New(tt.settings)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if got := g.ActorAuthorized(tt.member, guildRoles); got != tt.want {
				t.Errorf("ActorAuthorized = %v; want %v", got, tt.want)
			}
		})
	}
}

func TestReloadPicksUpChanges(t *testing.T) {
	dir := t.TempDir()
	guildList := writeFile(t, dir, "allowed_guilds.txt", "111\n")

	g, err := New(Settings{GuildListPath: guildList})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if g.GuildAuthorized("222") {
		t.Fatal("guild 222 authorized before reload")
	}

	writeFile(t, dir, "allowed_guilds.txt", "111\n222\n")
	if err := g.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if !g.GuildAuthorized("222") {
		t.Error("guild 222 still denied after reload")
	}
}
