package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/nadzzz/sylliba/internal/config"
	"github.com/nadzzz/sylliba/internal/language"
)

// version is set at build time via ldflags.
var version = "dev"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "sylliba",
	Short: "Discord translation bot",
	Long: `sylliba detects the language of chat messages and forwards them to a
remote translation service.

Commands on Discord:
  /translate_text       translate text into a chosen language
  /audio_to_text        transcribe an uploaded audio file
  /supported_languages  list the supported languages
  Translate             message context menu with a language picker`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to config file (e.g. configs/sylliba.yaml)")
}

// loadConfig loads configuration and installs the configured logger.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		return nil, err
	}
	config.SetupLogging(cfg.Logging)
	return cfg, nil
}

func newIdentifier(cfg *config.Config, opts ...language.IdentifierOption) (*language.Identifier, error) {
	registry, err := language.NewRegistry(cfg.Languages)
	if err != nil {
		return nil, fmt.Errorf("building language registry: %w", err)
	}
	return language.NewIdentifier(registry, cfg.Session.MinConfidence, opts...), nil
}
