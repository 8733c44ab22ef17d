// Package vader provides a driven.PolarityScorer using the VADER
// lexicon. VADER is English-only, so text without Latin letters is
// rejected.
package vader

import (
	"unicode"

	"github.com/jonreiter/govader"

	"github.com/custodia-labs/flowwatch/internal/core/ports/driven"
)

// Ensure Scorer implements the interface.
var _ driven.PolarityScorer = (*Scorer)(nil)

// minLatinShare is the fraction of letters that must be Latin.
const minLatinShare = 0.5

// Scorer wraps a govader analyzer.
type Scorer struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

// New loads the lexicon.
func New() *Scorer {
	return &Scorer{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

// Polarity returns the VADER compound score.
func (s *Scorer) Polarity(text string) (float64, bool) {
	if !mostlyLatin(text) {
		return 0, false
	}
	return s.analyzer.PolarityScores(text).Compound, true
}

func mostlyLatin(text string) bool {
	var letters, latin int
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if unicode.Is(unicode.Latin, r) {
			latin++
		}
	}
	return letters > 0 && float64(latin)/float64(letters) >= minLatinShare
}
