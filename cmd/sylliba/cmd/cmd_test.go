package cmd

import (
	"bytes"
	"strings"
	"testing"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	t.Chdir(t.TempDir()) // no stray sylliba.yaml
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("sylliba %v: %v", args, err)
	}
	return out.String()
}

func TestVersion(t *testing.T) {
	if got := run(t, "version"); got != "sylliba dev\n" {
		t.Errorf("version output = %q", got)
	}
}

func TestLanguages(t *testing.T) {
	out := run(t, "languages")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 11 {
		t.Fatalf("got %d languages, want 11:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[0], "English") || !strings.Contains(lines[0], "en") {
		t.Errorf("first line = %q", lines[0])
	}
}

func TestDetect(t *testing.T) {
	out := run(t, "detect", "Bonjour", "le", "monde")
	if !strings.Contains(out, "best match: French") {
		t.Errorf("detect output:\n%s", out)
	}
}
