// Package bot wires the Discord session, slash commands, and the reaction
// synchronizer together.
package bot

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/bwmarrin/discordgo"

	"github.com/darkSectorHT83/Darky-Bot/internal/auth"
	"github.com/darkSectorHT83/Darky-Bot/internal/config"
	"github.com/darkSectorHT83/Darky-Bot/internal/storage"
)

// Bot represents the Discord bot instance
type Bot struct {
	config   *config.Config
	session  *discordgo.Session
	registry *storage.Registry
	tracked  *storage.TrackedTable
	gate     *auth.Gate
	sync     *Synchronizer
	commands []*discordgo.ApplicationCommand
}

// New creates a new Bot instance
func New(cfg *config.Config) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentsGuildMembers

	registry, err := storage.NewRegistry(filepath.Join(cfg.DataDir, "reaction_roles.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to load reaction registry: %w", err)
	}

	tracked, err := storage.NewTrackedTable(filepath.Join(cfg.DataDir, "twitch.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to load tracked streamers: %w", err)
	}

	gate, err := auth.New(auth.Settings{
		AllowAllGuilds:   cfg.GuildsAllowAll,
		RoleCheckEnabled: cfg.CommandRoleCheck,
		GuildListPath:    filepath.Join(cfg.DataDir, "allowed_guilds.txt"),
		RoleListPath:     filepath.Join(cfg.DataDir, "command_roles.txt"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load authorization config: %w", err)
	}

	b := &Bot{
		config:   cfg,
		session:  session,
		registry: registry,
		tracked:  tracked,
		gate:     gate,
	}

	b.registerHandlers()

	return b, nil
}

// Registry exposes the reaction-role registry (the status server serves a
// dump of it).
func (b *Bot) Registry() *storage.Registry { return b.registry }

// Session exposes the underlying Discord session.
func (b *Bot) Session() *discordgo.Session { return b.session }

// ReloadGate re-reads the authorization backing files so allow-list edits
// take effect without a restart.
func (b *Bot) ReloadGate() error { return b.gate.Reload() }

// Start opens the Discord connection and registers commands
func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}

	slog.Info("Connected to Discord", "user", b.session.State.User.Username)

	// The synchronizer needs the bot's own user ID to skip its reactions,
	// so it is built after the session is ready.
	b.sync = NewSynchronizer(b.registry, b.gate, b.session, b.session.State.User.ID)

	if err := b.registerCommands(); err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}

	return nil
}

// Stop gracefully shuts down the bot
func (b *Bot) Stop() error {
	if b.session != nil {
		return b.session.Close()
	}
	return nil
}

// registerHandlers sets up Discord event handlers
func (b *Bot) registerHandlers() {
	b.session.AddHandler(b.handleInteraction)
	b.session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		slog.Info("Bot is ready", "guilds", len(r.Guilds))
	})
	b.session.AddHandler(func(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
		if b.sync != nil {
			b.sync.HandleAdd(r.MessageReaction)
		}
	})
	b.session.AddHandler(func(s *discordgo.Session, r *discordgo.MessageReactionRemove) {
		if b.sync != nil {
			b.sync.HandleRemove(r.MessageReaction)
		}
	})
}

// handleInteraction processes slash command interactions
func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	data := i.ApplicationCommandData()
	slog.Debug("Received command", "command", data.Name, "guild", i.GuildID)

	// dbactivate bypasses the guild gate so it can explain why a guild is
	// not activated.
	if data.Name == "dbactivate" {
		b.handleActivate(s, i)
		return
	}

	if !b.gate.GuildAuthorized(i.GuildID) {
		respondEphemeral(s, i, "This server is not activated for Darky Bot. Use `/dbactivate` for details.")
		return
	}
	if !b.actorAuthorized(s, i) {
		respondEphemeral(s, i, "You do not have permission to use this command.")
		return
	}

	switch data.Name {
	case "addreaction":
		b.handleAddReaction(s, i)
	case "removereaction":
		b.handleRemoveReaction(s, i)
	case "listreactions":
		b.handleListReactions(s, i)
	case "addtwitch":
		b.handleAddTwitch(s, i)
	case "removetwitch":
		b.handleRemoveTwitch(s, i)
	case "listtwitch":
		b.handleListTwitch(s, i)
	default:
		slog.Warn("Unknown command", "command", data.Name)
	}
}

// actorAuthorized applies the role-or-admin check against the invoking
// member.
func (b *Bot) actorAuthorized(s *discordgo.Session, i *discordgo.InteractionCreate) bool {
	guildRoles, err := s.GuildRoles(i.GuildID)
	if err != nil {
		slog.Warn("Failed to fetch guild roles for permission check", "guildID", i.GuildID, "error", err)
		guildRoles = nil
	}
	return b.gate.ActorAuthorized(i.Member, guildRoles)
}
