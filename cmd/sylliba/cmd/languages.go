package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nadzzz/sylliba/internal/language"
)

var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List the configured languages",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		registry, err := language.NewRegistry(cfg.Languages)
		if err != nil {
			return err
		}
		for _, l := range registry.All() {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %-12s %s\n", l.Flag, l.Name, l.Code)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(languagesCmd)
}
