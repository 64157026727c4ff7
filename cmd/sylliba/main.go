// Sylliba is a Discord bot that detects the language of chat messages and
// translates text or transcribes audio through a remote translation service.
//
// Usage:
//
//	sylliba serve [--config /path/to/sylliba.yaml]
//	sylliba detect "Bonjour le monde"
//	sylliba languages
package main

import (
	"os"

	"github.com/nadzzz/sylliba/cmd/sylliba/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
