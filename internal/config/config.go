// Package config handles loading and validating the sylliba configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration for the sylliba bot.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Discord     DiscordConfig     `mapstructure:"discord"`
	Transports  TransportsConfig  `mapstructure:"transports"`
	Translation TranslationConfig `mapstructure:"translation"`
	Session     SessionConfig     `mapstructure:"session"`
	Attachments AttachmentsConfig `mapstructure:"attachments"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Languages   []LanguageConfig  `mapstructure:"languages"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// ServerConfig holds the health check server settings.
type ServerConfig struct {
	HealthPort int `mapstructure:"health_port"`
}

// DiscordConfig configures the chat-platform connection.
type DiscordConfig struct {
	Token   string `mapstructure:"token"`
	GuildID string `mapstructure:"guild_id"` // empty registers commands globally

	// MessageContent requests the privileged intent needed to read the text
	// of messages that receive a flag reaction.
	MessageContent bool `mapstructure:"message_content"`
}

// TransportsConfig holds the configuration for each inbound surface.
type TransportsConfig struct {
	GRPC GRPCConfig `mapstructure:"grpc"`
	HTTP HTTPConfig `mapstructure:"http"`
}

// GRPCConfig configures the gRPC health transport.
type GRPCConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// HTTPConfig configures the HTTP translation API.
type HTTPConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// TranslationConfig describes the remote translation service.
type TranslationConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	TranslatePath  string        `mapstructure:"translate_path"`
	TranscribePath string        `mapstructure:"transcribe_path"`
	WrapData       bool          `mapstructure:"wrap_data"` // wrap the request body under "data"
	Timeout        time.Duration `mapstructure:"timeout"`
	// Response encodings per task: "plain", "base64" or "auto".
	TextEncoding   string `mapstructure:"text_encoding"`
	SpeechEncoding string `mapstructure:"speech_encoding"`
}

// SessionConfig tunes the interactive selection flow.
type SessionConfig struct {
	SelectionTimeout time.Duration `mapstructure:"selection_timeout"`
	MinConfidence    float64       `mapstructure:"min_confidence"`
}

// AttachmentsConfig controls where downloaded attachments are materialized.
type AttachmentsConfig struct {
	Dir string `mapstructure:"dir"`
}

// DatabaseConfig holds the optional database used as a readiness probe.
type DatabaseConfig struct {
	URL      string `mapstructure:"url"` // empty disables the probe
	MaxConns int32  `mapstructure:"max_conns"`
}

// LanguageConfig is one entry of the supported-language allow-list.
type LanguageConfig struct {
	Name string `mapstructure:"name"` // display name, e.g. "Slovenian"
	Code string `mapstructure:"code"` // ISO-639-1, e.g. "sl"
	Flag string `mapstructure:"flag"` // emoji used for reaction translation
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, text
}

// DefaultLanguages is the allow-list used when the config file does not set one.
func DefaultLanguages() []LanguageConfig {
	return []LanguageConfig{
		{Name: "English", Code: "en", Flag: "🇺🇸"},
		{Name: "Polish", Code: "pl", Flag: "🇵🇱"},
		{Name: "French", Code: "fr", Flag: "🇫🇷"},
		{Name: "German", Code: "de", Flag: "🇩🇪"},
		{Name: "Spanish", Code: "es", Flag: "🇲🇽"},
		{Name: "Romanian", Code: "ro", Flag: "🇷🇴"},
		{Name: "Turkish", Code: "tr", Flag: "🇹🇷"},
		{Name: "Dutch", Code: "nl", Flag: "🇳🇱"},
		{Name: "Swedish", Code: "sv", Flag: "🇸🇪"},
		{Name: "Slovenian", Code: "sl", Flag: "🇸🇮"},
		{Name: "Portuguese", Code: "pt", Flag: "🇵🇹"},
	}
}

// Load reads the configuration from file, environment variables, and defaults.
// If configFile is non-empty it is used directly; otherwise the standard
// search order applies: ./sylliba.yaml, ./configs/sylliba.yaml, /etc/sylliba/sylliba.yaml.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.health_port", 8081)
	v.SetDefault("discord.token", "${DISCORD_TOKEN}")
	v.SetDefault("discord.guild_id", "")
	v.SetDefault("discord.message_content", false)
	v.SetDefault("transports.grpc.enabled", false)
	v.SetDefault("transports.grpc.port", 50051)
	v.SetDefault("transports.http.enabled", false)
	v.SetDefault("transports.http.port", 8080)
	v.SetDefault("translation.base_url", "http://localhost:8000")
	v.SetDefault("translation.translate_path", "/api/translation")
	v.SetDefault("translation.transcribe_path", "/api/translation")
	v.SetDefault("translation.wrap_data", false)
	v.SetDefault("translation.timeout", 120*time.Second)
	v.SetDefault("translation.text_encoding", "plain")
	v.SetDefault("translation.speech_encoding", "base64")
	v.SetDefault("session.selection_timeout", 120*time.Second)
	v.SetDefault("session.min_confidence", 0.5)
	v.SetDefault("attachments.dir", os.TempDir())
	v.SetDefault("database.url", "")
	v.SetDefault("database.max_conns", 16)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("sylliba")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/sylliba")
	}

	// Environment variables: SYLLIBA_DISCORD_TOKEN, SYLLIBA_TRANSLATION_BASE_URL, etc.
	v.SetEnvPrefix("SYLLIBA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (optional; env vars and defaults are sufficient)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		slog.Info("no config file found, using defaults and environment variables")
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if len(cfg.Languages) == 0 {
		cfg.Languages = DefaultLanguages()
	}

	// Resolve env var references in sensitive fields (e.g., "${DISCORD_TOKEN}")
	cfg.Discord.Token = resolveEnvRef(cfg.Discord.Token)
	cfg.Database.URL = resolveEnvRef(cfg.Database.URL)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings that would otherwise fail late at runtime.
func (c *Config) Validate() error {
	if c.Translation.BaseURL == "" {
		return fmt.Errorf("config: translation.base_url is required")
	}
	for _, enc := range []string{c.Translation.TextEncoding, c.Translation.SpeechEncoding} {
		switch enc {
		case "plain", "base64", "auto":
		default:
			return fmt.Errorf("config: unknown response encoding %q", enc)
		}
	}
	if c.Session.SelectionTimeout <= 0 {
		return fmt.Errorf("config: session.selection_timeout must be positive")
	}
	seen := make(map[string]bool, len(c.Languages))
	for _, l := range c.Languages {
		if l.Name == "" || l.Code == "" {
			return fmt.Errorf("config: language entries need a name and a code")
		}
		key := strings.ToLower(l.Name)
		if seen[key] {
			return fmt.Errorf("config: duplicate language %q", l.Name)
		}
		seen[key] = true
	}
	return nil
}

// resolveEnvRef replaces "${VAR_NAME}" patterns with the corresponding env var value.
// An unset variable resolves to the empty string.
func resolveEnvRef(val string) string {
	if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
		return os.Getenv(val[2 : len(val)-1])
	}
	return val
}

// SetupLogging configures the global slog logger based on config.
func SetupLogging(cfg LoggingConfig) {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
