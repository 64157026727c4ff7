package language

import (
	"errors"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/nadzzz/sylliba/internal/config"
)

var (
	sharedOnce sync.Once
	sharedID   *Identifier
)

// testIdentifier builds the detectors once; model loading is the slow part.
func testIdentifier(t *testing.T) *Identifier {
	t.Helper()
	sharedOnce.Do(func() {
		reg, err := NewRegistry(config.DefaultLanguages())
		if err != nil {
			t.Fatalf("NewRegistry() error = %v", err)
		}
		sharedID = NewIdentifier(reg, 0.5)
	})
	if sharedID == nil {
		t.Fatal("identifier not initialised")
	}
	return sharedID
}

func TestNewRegistry(t *testing.T) {
	reg, err := NewRegistry(config.DefaultLanguages())
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	if reg.Len() != 11 {
		t.Errorf("Len() = %d, want 11", reg.Len())
	}

	l, ok := reg.Lookup("slovenian")
	if !ok || l.Code != "sl" {
		t.Errorf("Lookup(slovenian) = %+v, %v", l, ok)
	}

	l, ok = reg.ByFlag("🇫🇷")
	if !ok || l.Name != "French" {
		t.Errorf("ByFlag(fr) = %+v, %v", l, ok)
	}

	if _, ok := reg.ByFlag("🍕"); ok {
		t.Error("ByFlag should not match a non-flag emoji")
	}
}

func TestNewRegistry_Errors(t *testing.T) {
	tests := []struct {
		name    string
		entries []config.LanguageConfig
	}{
		{"too few", []config.LanguageConfig{{Name: "English", Code: "en"}}},
		{"unknown code", []config.LanguageConfig{{Name: "English", Code: "en"}, {Name: "Klingon", Code: "xx"}}},
		{"duplicate code", []config.LanguageConfig{{Name: "English", Code: "en"}, {Name: "British", Code: "EN"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewRegistry(tt.entries); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestRegistry_Autocomplete(t *testing.T) {
	reg, _ := NewRegistry(config.DefaultLanguages())

	got := reg.Autocomplete("s")
	want := []string{"Spanish", "Swedish", "Slovenian"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Autocomplete(s) = %v, want %v", got, want)
	}
	if got := reg.Autocomplete(""); len(got) != 11 {
		t.Errorf("Autocomplete(\"\") returned %d names, want 11", len(got))
	}
}

func TestRegistry_OptionsCapped(t *testing.T) {
	var entries []config.LanguageConfig
	codes := []string{"en", "pl", "fr", "de", "es", "ro", "tr", "nl", "sv", "sl", "pt", "it", "da", "fi",
		"nb", "cs", "sk", "hu", "hr", "bs", "sq", "et", "lv", "lt", "ga", "cy", "is"}
	for _, c := range codes {
		entries = append(entries, config.LanguageConfig{Name: "lang-" + c, Code: c})
	}
	reg, err := NewRegistry(entries)
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	if got := len(reg.Options()); got != MaxOptions {
		t.Errorf("len(Options()) = %d, want %d", got, MaxOptions)
	}
}

func TestDetect_RanksCorrectLanguageFirst(t *testing.T) {
	id := testIdentifier(t)

	tests := []struct {
		text string
		want string
	}{
		{"Bonjour le monde, comment allez-vous aujourd'hui ?", "French"},
		{"Guten Morgen, wie geht es dir heute?", "German"},
		{"Dzień dobry, jak się dzisiaj masz?", "Polish"},
		{"¿Dónde está la biblioteca más cercana?", "Spanish"},
		{"The weather is lovely this afternoon.", "English"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			ranking := id.Detect(tt.text)
			if len(ranking) != 11 {
				t.Fatalf("ranking has %d entries, want 11", len(ranking))
			}
			top := ranking.Top()
			if top.Name != tt.want {
				t.Errorf("top = %s, want %s (ranking %v)", top.Name, tt.want, ranking)
			}
			if top.Confidence <= 0.5 {
				t.Errorf("top confidence = %.2f, want > 0.5", top.Confidence)
			}
			for i := 1; i < len(ranking); i++ {
				if ranking[i].Confidence > ranking[i-1].Confidence {
					t.Fatalf("ranking not descending at %d: %v", i, ranking)
				}
			}
		})
	}
}

func TestDetect_NoSignal(t *testing.T) {
	id := testIdentifier(t)

	ranking := id.Detect("1234 !!!")
	if len(ranking) != 11 {
		t.Fatalf("ranking has %d entries, want 11", len(ranking))
	}
	if ranking.Top().Name == "" {
		t.Error("top entry should still be named")
	}
}

func TestBestMatch_Supported(t *testing.T) {
	id := testIdentifier(t)

	l, err := id.BestMatch("Bonjour le monde")
	if err != nil {
		t.Fatalf("BestMatch() error = %v", err)
	}
	if l.Name != "French" {
		t.Errorf("BestMatch() = %s, want French", l.Name)
	}
}

func TestBestMatch_Unsupported(t *testing.T) {
	id := testIdentifier(t)

	texts := []string{
		"Это предложение написано на русском языке и не поддерживается.",
		"これは日本語で書かれた文章です。",
	}
	for _, text := range texts {
		_, err := id.BestMatch(text)
		var nc *NotConfidentError
		if !errors.As(err, &nc) {
			t.Fatalf("BestMatch(%q) error = %v, want *NotConfidentError", text, err)
		}
		if want := id.DetectAll(text).Top().Name; nc.Likely != want {
			t.Errorf("Likely = %q, want unrestricted top %q", nc.Likely, want)
		}
		if _, ok := id.Registry().Lookup(nc.Likely); ok {
			t.Errorf("Likely = %q should not be a supported language", nc.Likely)
		}
		if !strings.Contains(nc.Error(), nc.Likely) {
			t.Errorf("message %q should name %q", nc.Error(), nc.Likely)
		}
	}
}

func TestDetectAll_Rounded(t *testing.T) {
	id := testIdentifier(t)

	for _, s := range id.DetectAll("Hello there, my friend") {
		scaled := s.Confidence * 100
		if math.Abs(scaled-math.Round(scaled)) > 1e-9 {
			t.Fatalf("confidence %v for %s is not rounded to two decimals", s.Confidence, s.Name)
		}
	}
}

func TestNewIdentifier_PreloadedModels(t *testing.T) {
	if testing.Short() {
		t.Skip("loads every language model")
	}
	reg, err := NewRegistry(config.DefaultLanguages())
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	if testIdentifier(t).Preloaded() {
		t.Error("identifier should load models lazily by default")
	}

	id := NewIdentifier(reg, 0.5, WithPreloadedModels())
	if !id.Preloaded() {
		t.Fatal("Preloaded() = false with WithPreloadedModels")
	}
	if l, err := id.BestMatch("Bonjour le monde"); err != nil || l.Name != "French" {
		t.Errorf("BestMatch() = %v, %v; want French", l.Name, err)
	}
	var nc *NotConfidentError
	if _, err := id.BestMatch("Это предложение написано на русском языке."); !errors.As(err, &nc) {
		t.Errorf("BestMatch(Russian) error = %v, want *NotConfidentError", err)
	}
}
