package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/flowwatch/internal/core/domain"
)

// Analyzer is the external analysis collaborator.
// It is optional: a nil Analyzer degrades full passes to numeric-only output.
type Analyzer interface {
	// Analyze turns an assembled snapshot into a structured recommendation.
	Analyze(ctx context.Context, input domain.AnalysisInput) (*domain.AnalysisResult, error)

	// Model names the model producing results.
	Model() string
}

// Notifier delivers alert digests.
type Notifier interface {
	// Notify sends the digest. A nil error means delivery succeeded.
	Notify(ctx context.Context, digest domain.Digest) error
}

// AlertDeduper suppresses repeats of the same alert condition.
type AlertDeduper interface {
	// Claim records key for window and reports whether it was newly claimed.
	// It returns false if the key was already held within the window.
	Claim(ctx context.Context, key string, window time.Duration) (bool, error)
}

// PolarityScorer scores free text on a lexicon polarity scale.
type PolarityScorer interface {
	// Polarity returns a compound score in [-1, 1].
	// ok is false when the scorer cannot handle the text.
	Polarity(text string) (score float64, ok bool)
}

// Segmenter splits text into words.
type Segmenter interface {
	// Cut returns the words of text in order. Punctuation may be included;
	// callers filter what they need.
	Cut(text string) []string
}

// VocabularyProvider supplies the current keyword vocabulary.
// Providers may reload from disk; callers fetch a fresh copy per run.
type VocabularyProvider interface {
	Vocabulary() domain.Vocabulary
}

// Prompt names understood by a PromptStore.
const (
	// PromptAnalysisSystem is the system message for the analysis model.
	PromptAnalysisSystem = "analysis_system"

	// PromptAnalysisUser frames the snapshot context. It takes one %s: the
	// context as JSON.
	PromptAnalysisUser = "analysis_user"
)

// PromptStore loads user-editable prompt templates.
type PromptStore interface {
	// Load returns the template for name, falling back to a built-in default.
	Load(name string) (string, error)
}
