// Package notify sends went-live announcements to Discord channels.
package notify

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/darkSectorHT83/Darky-Bot/internal/twitch"
)

const embedColor = 0x6441a5 // Twitch purple

// ChannelSender is the slice of discordgo.Session the dispatcher needs.
type ChannelSender interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Dispatcher formats and sends live notifications.
type Dispatcher struct {
	sender ChannelSender
}

// New builds a Dispatcher on top of a Discord session.
func New(sender ChannelSender) *Dispatcher {
	return &Dispatcher{sender: sender}
}

// Notify posts a went-live message for streamer to channelID. A send
// failure is logged and returned; there is no retry — the next rising edge
// tries again naturally.
func (d *Dispatcher) Notify(channelID, streamer string, s *twitch.Stream) error {
	var err error
	if s != nil && s.Title != "" {
		_, err = d.sender.ChannelMessageSendEmbed(channelID, buildEmbed(streamer, s))
	} else {
		// Minimal fallback when metadata is missing.
		_, err = d.sender.ChannelMessageSend(channelID, fmt.Sprintf("🔴 **%s** is live: https://twitch.tv/%s", streamer, streamer))
	}
	if err != nil {
		slog.Warn("Failed to send live notification", "channelID", channelID, "streamer", streamer, "error", err)
		return err
	}
	return nil
}

func buildEmbed(streamer string, s *twitch.Stream) *discordgo.MessageEmbed {
	url := "https://twitch.tv/" + streamer
	embed := &discordgo.MessageEmbed{
		Title:       s.Title,
		URL:         url,
		Color:       embedColor,
		Description: fmt.Sprintf("🔴 **%s** is live: %s", streamer, url),
	}
	if s.GameName != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Game", Value: s.GameName, Inline: true,
		})
	}
	if s.ViewerCount > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Viewers", Value: fmt.Sprintf("%d", s.ViewerCount), Inline: true,
		})
	}
	if s.ThumbnailURL != "" {
		// Helix returns a templated thumbnail URL.
		thumb := strings.NewReplacer("{width}", "640", "{height}", "360").Replace(s.ThumbnailURL)
		embed.Image = &discordgo.MessageEmbedImage{URL: thumb}
	}
	return embed
}
