package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nadzzz/sylliba/internal/language"
)

var detectAll bool

var detectCmd = &cobra.Command{
	Use:   "detect <text>",
	Short: "Detect the language of text",
	Long: `Ranks the supported languages for the given text and prints the best match.

With --all the ranking covers every language the detector knows, which is
how unsupported languages are named back to users.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDetect,
}

func init() {
	detectCmd.Flags().BoolVar(&detectAll, "all", false, "rank every known language, not only supported ones")
	rootCmd.AddCommand(detectCmd)
}

func runDetect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	id, err := newIdentifier(cfg)
	if err != nil {
		return err
	}

	text := strings.Join(args, " ")
	ranking := id.Detect(text)
	if detectAll {
		ranking = id.DetectAll(text)
	}

	out := cmd.OutOrStdout()
	for i, s := range ranking {
		if i == 10 {
			break
		}
		fmt.Fprintf(out, "%-12s %.2f\n", s.Name, s.Confidence)
	}
	fmt.Fprintln(out)

	best, err := id.BestMatch(text)
	var nc *language.NotConfidentError
	switch {
	case err == nil:
		fmt.Fprintf(out, "best match: %s\n", best.Name)
	case errors.As(err, &nc):
		fmt.Fprintf(out, "unsupported, likely %s\n", nc.Likely)
	default:
		return err
	}
	return nil
}
