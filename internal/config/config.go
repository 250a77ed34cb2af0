package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the bot
type Config struct {
	// Discord
	DiscordToken string

	// Twitch API (either a client secret for app tokens or a static token)
	TwitchClientID     string
	TwitchClientSecret string
	TwitchAccessToken  string

	// Data files
	DataDir string

	// Polling
	PollIntervalSeconds   int
	ReloadIntervalSeconds int

	// Authorization
	GuildsAllowAll   bool
	CommandRoleCheck bool

	// Status HTTP server
	HTTPAddr string

	// Logging
	LogLevel string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		DiscordToken:       os.Getenv("DISCORD_BOT_TOKEN"),
		TwitchClientID:     os.Getenv("TWITCH_CLIENT_ID"),
		TwitchClientSecret: os.Getenv("TWITCH_CLIENT_SECRET"),
		TwitchAccessToken:  os.Getenv("TWITCH_ACCESS_TOKEN"),
		DataDir:            getEnvOrDefault("DATA_DIR", "./data"),
		HTTPAddr:           getEnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           getEnvOrDefault("LOG_LEVEL", "info"),
	}

	var err error
	cfg.PollIntervalSeconds, err = getEnvInt("POLL_INTERVAL_SECONDS", 60)
	if err != nil {
		return nil, err
	}
	cfg.ReloadIntervalSeconds, err = getEnvInt("RELOAD_INTERVAL_SECONDS", 300)
	if err != nil {
		return nil, err
	}
	cfg.GuildsAllowAll, err = getEnvBool("GUILDS_ALLOW_ALL", false)
	if err != nil {
		return nil, err
	}
	cfg.CommandRoleCheck, err = getEnvBool("COMMAND_ROLE_CHECK", false)
	if err != nil {
		return nil, err
	}

	if cfg.DiscordToken == "" {
		return nil, fmt.Errorf("DISCORD_BOT_TOKEN is required")
	}

	return cfg, nil
}

// TwitchConfigured reports whether usable Twitch credentials were provided.
// Without them the presence watcher runs in disabled mode.
func (c *Config) TwitchConfigured() bool {
	return c.TwitchClientID != "" && (c.TwitchClientSecret != "" || c.TwitchAccessToken != "")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}
