package bot

import (
	"log/slog"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/darkSectorHT83/Darky-Bot/internal/auth"
	"github.com/darkSectorHT83/Darky-Bot/internal/storage"
	"github.com/darkSectorHT83/Darky-Bot/internal/telemetry"
)

// RoleManager is the slice of discordgo.Session the synchronizer needs to
// resolve and mutate role membership.
type RoleManager interface {
	GuildRoles(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Role, error)
	GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error)
	GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	GuildMemberRoleRemove(guildID, userID, roleID string, options ...discordgo.RequestOption) error
}

// Synchronizer applies reaction add/remove events against the registry:
// a reaction on a bound (message, emoji) grants or revokes the bound role.
type Synchronizer struct {
	registry *storage.Registry
	gate     *auth.Gate
	roles    RoleManager
	selfID   string
}

// NewSynchronizer builds a Synchronizer. selfID is the bot's own user ID;
// its reactions are ignored.
func NewSynchronizer(registry *storage.Registry, gate *auth.Gate, roles RoleManager, selfID string) *Synchronizer {
	return &Synchronizer{registry: registry, gate: gate, roles: roles, selfID: selfID}
}

// HandleAdd processes one reaction-add event to completion.
func (s *Synchronizer) HandleAdd(r *discordgo.MessageReaction) {
	s.handle(r, true)
}

// HandleRemove processes one reaction-remove event to completion.
func (s *Synchronizer) HandleRemove(r *discordgo.MessageReaction) {
	s.handle(r, false)
}

func (s *Synchronizer) handle(r *discordgo.MessageReaction, add bool) {
	if r.UserID == s.selfID {
		return
	}
	if !s.gate.GuildAuthorized(r.GuildID) {
		return
	}

	// Most reactions are unrelated to any binding; a miss is not an error.
	roleRef, ok := s.registry.Lookup(r.GuildID, r.MessageID, r.Emoji.Name)
	if !ok {
		return
	}

	guildRoles, err := s.roles.GuildRoles(r.GuildID)
	if err != nil {
		slog.Warn("Failed to fetch guild roles", "guildID", r.GuildID, "error", err)
		return
	}
	role := resolveRole(guildRoles, roleRef)
	if role == nil {
		// Role renamed or deleted since the binding was created.
		slog.Debug("Bound role no longer resolves", "guildID", r.GuildID, "role", roleRef)
		return
	}

	if _, err := s.roles.GuildMember(r.GuildID, r.UserID); err != nil {
		// Member left between the event and now.
		slog.Debug("Reacting member no longer resolves", "guildID", r.GuildID, "userID", r.UserID, "error", err)
		return
	}

	if add {
		err = s.roles.GuildMemberRoleAdd(r.GuildID, r.UserID, role.ID)
	} else {
		err = s.roles.GuildMemberRoleRemove(r.GuildID, r.UserID, role.ID)
	}
	if err != nil {
		// One failed assignment must not take down the listener.
		slog.Warn("Failed to update member role", "guildID", r.GuildID, "userID", r.UserID, "role", role.Name, "add", add, "error", err)
		return
	}

	if add {
		telemetry.AddCounter(telemetry.ReactionGrants)
	} else {
		telemetry.AddCounter(telemetry.ReactionRevokes)
	}
	slog.Info("Updated member role from reaction", "guildID", r.GuildID, "userID", r.UserID, "role", role.Name, "add", add)
}

// resolveRole matches an opaque role reference against the guild's role
// table: first as a role ID, then as a case-insensitive name.
func resolveRole(guildRoles []*discordgo.Role, ref string) *discordgo.Role {
	for _, role := range guildRoles {
		if role.ID == ref {
			return role
		}
	}
	for _, role := range guildRoles {
		if strings.EqualFold(role.Name, ref) {
			return role
		}
	}
	return nil
}
