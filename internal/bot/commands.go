package bot

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/darkSectorHT83/Darky-Bot/internal/storage"
)

// Slash command definitions
func (b *Bot) getCommandDefinitions() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "addreaction",
			Description: "Bind an emoji on a message to a role",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "message_id",
					Description: "ID of the message to watch",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "emoji",
					Description: "Emoji that grants the role",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionRole,
					Name:        "role",
					Description: "Role to grant",
					Required:    true,
				},
			},
		},
		{
			Name:        "removereaction",
			Description: "Remove an emoji-to-role binding from a message",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "message_id",
					Description: "ID of the watched message",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "emoji",
					Description: "Emoji to unbind",
					Required:    true,
				},
			},
		},
		{
			Name:        "listreactions",
			Description: "List this server's reaction-role bindings",
		},
		{
			Name:        "addtwitch",
			Description: "Track a Twitch streamer and announce when they go live",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "streamer",
					Description: "Twitch login name",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionChannel,
					Name:        "channel",
					Description: "Channel to announce in",
					Required:    true,
					ChannelTypes: []discordgo.ChannelType{
						discordgo.ChannelTypeGuildText,
					},
				},
			},
		},
		{
			Name:        "removetwitch",
			Description: "Stop tracking a Twitch streamer in this channel",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "streamer",
					Description: "Twitch login name",
					Required:    true,
				},
			},
		},
		{
			Name:        "listtwitch",
			Description: "List Twitch streamers tracked in this channel",
		},
		{
			Name:        "dbactivate",
			Description: "Show whether this server is activated for Darky Bot",
		},
	}
}

// registerCommands registers all slash commands with Discord
func (b *Bot) registerCommands() error {
	slog.Info("Registering slash commands")

	commandDefinitions := b.getCommandDefinitions()
	registeredCommands := make([]*discordgo.ApplicationCommand, 0, len(commandDefinitions))

	for _, cmd := range commandDefinitions {
		registered, err := b.session.ApplicationCommandCreate(
			b.session.State.User.ID,
			"", // Empty string = global command
			cmd,
		)
		if err != nil {
			return fmt.Errorf("failed to register command %s: %w", cmd.Name, err)
		}
		registeredCommands = append(registeredCommands, registered)
		slog.Debug("Registered command", "name", cmd.Name)
	}

	b.commands = registeredCommands
	slog.Info("Slash commands registered", "count", len(registeredCommands))
	return nil
}

// handleAddReaction handles the /addreaction command
func (b *Bot) handleAddReaction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := i.ApplicationCommandData().Options
	messageID := options[0].StringValue()
	emoji := options[1].StringValue()
	role := options[2].RoleValue(s, i.GuildID)
	if role == nil {
		respondEphemeral(s, i, "Could not resolve that role.")
		return
	}

	if err := b.registry.Bind(i.GuildID, messageID, emoji, role.ID); err != nil {
		slog.Error("Failed to save reaction binding", "guildID", i.GuildID, "error", err)
		respondEphemeral(s, i, "Failed to save the binding. Please try again.")
		return
	}

	respondEphemeral(s, i, fmt.Sprintf("Reacting with %s on message `%s` now grants **%s**.", emoji, messageID, role.Name))
}

// handleRemoveReaction handles the /removereaction command
func (b *Bot) handleRemoveReaction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := i.ApplicationCommandData().Options
	messageID := options[0].StringValue()
	emoji := options[1].StringValue()

	err := b.registry.Unbind(i.GuildID, messageID, emoji)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		respondEphemeral(s, i, fmt.Sprintf("No binding for %s on message `%s`.", emoji, messageID))
	case err != nil:
		slog.Error("Failed to remove reaction binding", "guildID", i.GuildID, "error", err)
		respondEphemeral(s, i, "Failed to remove the binding. Please try again.")
	default:
		respondEphemeral(s, i, fmt.Sprintf("Removed the %s binding from message `%s`.", emoji, messageID))
	}
}

// handleListReactions handles the /listreactions command
func (b *Bot) handleListReactions(s *discordgo.Session, i *discordgo.InteractionCreate) {
	bindings := b.registry.List(i.GuildID)
	if len(bindings) == 0 {
		respondEphemeral(s, i, "No reaction roles are set up in this server.")
		return
	}

	messageIDs := make([]string, 0, len(bindings))
	for id := range bindings {
		messageIDs = append(messageIDs, id)
	}
	sort.Strings(messageIDs)

	var sb strings.Builder
	sb.WriteString("**Reaction roles:**\n")
	for _, messageID := range messageIDs {
		emojis := bindings[messageID]
		names := make([]string, 0, len(emojis))
		for emoji := range emojis {
			names = append(names, emoji)
		}
		sort.Strings(names)
		for _, emoji := range names {
			sb.WriteString(fmt.Sprintf("- message `%s`: %s → %s\n", messageID, emoji, formatRoleRef(emojis[emoji])))
		}
	}
	respondEphemeral(s, i, sb.String())
}

// handleAddTwitch handles the /addtwitch command
func (b *Bot) handleAddTwitch(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := i.ApplicationCommandData().Options
	streamer := options[0].StringValue()
	channel := options[1].ChannelValue(s)
	if channel == nil {
		respondEphemeral(s, i, "Could not resolve that channel.")
		return
	}

	err := b.tracked.Add(storage.Streamer{
		Name:      streamer,
		ChannelID: channel.ID,
		GuildID:   i.GuildID,
	})
	switch {
	case errors.Is(err, storage.ErrExists):
		respondEphemeral(s, i, fmt.Sprintf("`%s` is already tracked in <#%s>.", streamer, channel.ID))
	case err != nil:
		slog.Error("Failed to save tracked streamer", "streamer", streamer, "error", err)
		respondEphemeral(s, i, "Failed to save the streamer. Please try again.")
	default:
		respondEphemeral(s, i, fmt.Sprintf("Live announcements for `%s` will go to <#%s>.", streamer, channel.ID))
	}
}

// handleRemoveTwitch handles the /removetwitch command
func (b *Bot) handleRemoveTwitch(s *discordgo.Session, i *discordgo.InteractionCreate) {
	streamer := i.ApplicationCommandData().Options[0].StringValue()

	err := b.tracked.Remove(i.ChannelID, streamer)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		respondEphemeral(s, i, fmt.Sprintf("`%s` is not tracked in this channel.", streamer))
	case err != nil:
		slog.Error("Failed to remove tracked streamer", "streamer", streamer, "error", err)
		respondEphemeral(s, i, "Failed to remove the streamer. Please try again.")
	default:
		respondEphemeral(s, i, fmt.Sprintf("Stopped tracking `%s` in this channel.", streamer))
	}
}

// handleListTwitch handles the /listtwitch command
func (b *Bot) handleListTwitch(s *discordgo.Session, i *discordgo.InteractionCreate) {
	streamers := b.tracked.ListChannel(i.ChannelID)
	if len(streamers) == 0 {
		respondEphemeral(s, i, "No streamers are tracked in this channel.")
		return
	}

	var sb strings.Builder
	sb.WriteString("**Tracked streamers:**\n")
	for _, st := range streamers {
		sb.WriteString(fmt.Sprintf("- `%s` (https://twitch.tv/%s)\n", st.Name, st.Name))
	}
	respondEphemeral(s, i, sb.String())
}

// handleActivate handles the /dbactivate command. It is the only command
// that skips the guild gate, so it can report activation status.
func (b *Bot) handleActivate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if b.gate.GuildAuthorized(i.GuildID) {
		respondEphemeral(s, i, "✅ This server is activated for Darky Bot.")
		return
	}
	respondEphemeral(s, i, "❌ This server is not activated. Ask the bot operator to add this server's ID to the allow-list.")
}

// respondEphemeral sends a response only the invoking user can see.
func respondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		slog.Error("Failed to respond to interaction", "error", err)
	}
}

// formatRoleRef renders a stored role reference for display: numeric IDs
// become role mentions, names pass through.
func formatRoleRef(ref string) string {
	for _, r := range ref {
		if r < '0' || r > '9' {
			return ref
		}
	}
	return "<@&" + ref + ">"
}
