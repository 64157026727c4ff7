package language

import (
	"fmt"
	"math"
	"sort"

	"github.com/pemistahl/lingua-go"
)

// Score is one entry of a ranking.
type Score struct {
	Name       string
	Confidence float64 // in [0, 1]
}

// Ranking is ordered by descending confidence.
type Ranking []Score

// Top returns the highest ranked entry, or the zero Score for an empty ranking.
func (r Ranking) Top() Score {
	if len(r) == 0 {
		return Score{}
	}
	return r[0]
}

// NotConfidentError is returned by BestMatch when the text's language cannot be
// confirmed as supported. Likely names the best guess across all languages.
type NotConfidentError struct {
	Likely string
}

func (e *NotConfidentError) Error() string {
	return fmt.Sprintf("Unfortunately, I was unable to find the language of this text. "+
		"It looks like you're trying to convert text from %s. This may not be supported currently. "+
		"Use the `/supported_languages` command to see a list.", e.Likely)
}

// Identifier ranks candidate languages for a piece of text.
//
// Two detectors are kept: one restricted to the registry, which is more
// precise on short text, and an unrestricted one used to name languages the
// service cannot route.
type Identifier struct {
	registry      *Registry
	restricted    lingua.LanguageDetector
	unrestricted  lingua.LanguageDetector
	minConfidence float64
	preloaded     bool
}

// Preloaded reports whether the language models were loaded up front.
func (id *Identifier) Preloaded() bool { return id.preloaded }

// IdentifierOption configures an Identifier.
type IdentifierOption func(*identifierOptions)

type identifierOptions struct {
	preload bool
}

// WithPreloadedModels loads every language model while the detectors are
// built instead of on the first detection. Long-running processes should
// use it so the first user request does not pay for model loading.
func WithPreloadedModels() IdentifierOption {
	return func(o *identifierOptions) { o.preload = true }
}

// NewIdentifier builds the detectors for the given registry. minConfidence is
// the unrestricted confidence at or above which an unsupported language
// overrides the restricted pick.
func NewIdentifier(registry *Registry, minConfidence float64, opts ...IdentifierOption) *Identifier {
	var o identifierOptions
	for _, opt := range opts {
		opt(&o)
	}

	restricted := lingua.NewLanguageDetectorBuilder().FromLanguages(registry.detectorLanguages()...)
	unrestricted := lingua.NewLanguageDetectorBuilder().FromAllLanguages()
	if o.preload {
		restricted = restricted.WithPreloadedLanguageModels()
		unrestricted = unrestricted.WithPreloadedLanguageModels()
	}

	return &Identifier{
		registry:      registry,
		restricted:    restricted.Build(),
		unrestricted:  unrestricted.Build(),
		minConfidence: minConfidence,
		preloaded:     o.preload,
	}
}

// Registry returns the allow-list the identifier was built with.
func (id *Identifier) Registry() *Registry { return id.registry }

// Detect ranks every supported language. It always returns one entry per
// supported language, with zero confidence when the text carries no signal.
func (id *Identifier) Detect(text string) Ranking {
	scores := make(map[lingua.Language]float64, id.registry.Len())
	for _, cv := range id.restricted.ComputeLanguageConfidenceValues(text) {
		scores[cv.Language()] = cv.Value()
	}

	ranking := make(Ranking, 0, id.registry.Len())
	for _, l := range id.registry.langs {
		ranking = append(ranking, Score{Name: l.Name, Confidence: scores[l.detector]})
	}
	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].Confidence > ranking[j].Confidence
	})
	return ranking
}

// DetectAll ranks the text against every language the detector knows,
// with confidences rounded to two decimals. Supported languages carry their
// registry display name.
func (id *Identifier) DetectAll(text string) Ranking {
	values := id.unrestricted.ComputeLanguageConfidenceValues(text)
	ranking := make(Ranking, 0, len(values))
	for _, cv := range values {
		name := cv.Language().String()
		if l, ok := id.registry.fromDetector(cv.Language()); ok {
			name = l.Name
		}
		ranking = append(ranking, Score{Name: name, Confidence: math.Round(cv.Value()*100) / 100})
	}
	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].Confidence > ranking[j].Confidence
	})
	return ranking
}

// BestMatch returns the single supported language of text, or a
// *NotConfidentError carrying the unrestricted best guess.
func (id *Identifier) BestMatch(text string) (Language, error) {
	all := id.DetectAll(text)
	top := all.Top()

	if det, ok := id.restricted.DetectLanguageOf(text); ok {
		if l, found := id.registry.fromDetector(det); found && id.confirms(top) {
			return l, nil
		}
	}

	likely := top.Name
	if likely == "" || top.Confidence == 0 {
		likely = "an unknown language"
	}
	return Language{}, &NotConfidentError{Likely: likely}
}

// confirms reports whether the unrestricted top pick is compatible with a
// supported answer: either it is supported itself, or it is too weak to
// override the restricted detector.
func (id *Identifier) confirms(top Score) bool {
	if _, ok := id.registry.Lookup(top.Name); ok {
		return true
	}
	return top.Confidence < id.minConfidence
}
