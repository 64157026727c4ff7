// Package language identifies the source language of short chat messages and
// holds the allow-list of languages the translation service can route.
package language

import (
	"fmt"
	"strings"

	"github.com/pemistahl/lingua-go"

	"github.com/nadzzz/sylliba/internal/config"
)

// MaxOptions is the largest option list a selection UI element can carry.
const MaxOptions = 25

// Language is one supported language.
type Language struct {
	Name string // display name sent to the translation service, e.g. "French"
	Code string // ISO-639-1
	Flag string // emoji flag used for reaction-triggered translation

	detector lingua.Language
}

// Registry is the immutable allow-list of supported languages.
// It is safe for concurrent use.
type Registry struct {
	langs      []Language
	byName     map[string]int
	byFlag     map[string]int
	byDetector map[lingua.Language]int
}

// NewRegistry builds a registry from configuration entries, preserving order.
// Every entry must map to a language the detector knows.
func NewRegistry(entries []config.LanguageConfig) (*Registry, error) {
	if len(entries) < 2 {
		return nil, fmt.Errorf("language registry: need at least 2 languages, got %d", len(entries))
	}

	r := &Registry{
		langs:      make([]Language, 0, len(entries)),
		byName:     make(map[string]int, len(entries)),
		byFlag:     make(map[string]int, len(entries)),
		byDetector: make(map[lingua.Language]int, len(entries)),
	}
	for _, e := range entries {
		det, ok := detectorLanguage(e.Code)
		if !ok {
			return nil, fmt.Errorf("language registry: unknown language code %q for %s", e.Code, e.Name)
		}
		key := strings.ToLower(e.Name)
		if _, dup := r.byName[key]; dup {
			return nil, fmt.Errorf("language registry: duplicate language %q", e.Name)
		}
		if _, dup := r.byDetector[det]; dup {
			return nil, fmt.Errorf("language registry: duplicate language code %q", e.Code)
		}

		idx := len(r.langs)
		r.langs = append(r.langs, Language{Name: e.Name, Code: strings.ToLower(e.Code), Flag: e.Flag, detector: det})
		r.byName[key] = idx
		r.byDetector[det] = idx
		if e.Flag != "" {
			r.byFlag[e.Flag] = idx
		}
	}
	return r, nil
}

// detectorLanguage resolves an ISO-639-1 code to the detector's language.
func detectorLanguage(code string) (lingua.Language, bool) {
	for _, l := range lingua.AllLanguages() {
		if strings.EqualFold(l.IsoCode639_1().String(), code) {
			return l, true
		}
	}
	return lingua.Unknown, false
}

// All returns the supported languages in configuration order.
func (r *Registry) All() []Language {
	out := make([]Language, len(r.langs))
	copy(out, r.langs)
	return out
}

// Len returns the number of supported languages.
func (r *Registry) Len() int { return len(r.langs) }

// Names returns the display names in configuration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.langs))
	for i, l := range r.langs {
		names[i] = l.Name
	}
	return names
}

// Lookup finds a language by display name, case-insensitively.
func (r *Registry) Lookup(name string) (Language, bool) {
	idx, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Language{}, false
	}
	return r.langs[idx], true
}

// ByFlag finds the language associated with an emoji flag.
func (r *Registry) ByFlag(flag string) (Language, bool) {
	idx, ok := r.byFlag[flag]
	if !ok {
		return Language{}, false
	}
	return r.langs[idx], true
}

// Autocomplete returns the names starting with partial (case-insensitive).
func (r *Registry) Autocomplete(partial string) []string {
	p := strings.ToLower(partial)
	var out []string
	for _, l := range r.langs {
		if strings.HasPrefix(strings.ToLower(l.Name), p) {
			out = append(out, l.Name)
		}
	}
	return out
}

// Options returns at most MaxOptions languages for a selection UI.
func (r *Registry) Options() []Language {
	n := min(len(r.langs), MaxOptions)
	out := make([]Language, n)
	copy(out, r.langs[:n])
	return out
}

func (r *Registry) detectorLanguages() []lingua.Language {
	out := make([]lingua.Language, len(r.langs))
	for i, l := range r.langs {
		out[i] = l.detector
	}
	return out
}

func (r *Registry) fromDetector(l lingua.Language) (Language, bool) {
	idx, ok := r.byDetector[l]
	if !ok {
		return Language{}, false
	}
	return r.langs[idx], true
}
