// Package gse provides a driven.Segmenter backed by the gse dictionary
// segmenter. The embedded Chinese dictionary is loaded once in New.
package gse

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-ego/gse"

	"github.com/custodia-labs/flowwatch/internal/core/ports/driven"
)

// Ensure Segmenter implements the interface.
var _ driven.Segmenter = (*Segmenter)(nil)

// userWordFreq ranks added vocabulary above most dictionary entries so
// terms like "A股" are not split.
const userWordFreq = 100000

// Segmenter wraps a loaded gse segmenter.
type Segmenter struct {
	seg gse.Segmenter
}

// New loads the embedded dictionary and adds words as extra entries.
func New(words ...string) (*Segmenter, error) {
	seg, err := gse.New()
	if err != nil {
		return nil, fmt.Errorf("loading gse dictionary: %w", err)
	}
	s := &Segmenter{seg: seg}
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		s.seg.AddToken(w, userWordFreq)
	}
	return s, nil
}

// Cut segments text in HMM mode and drops punctuation and spaces.
// Latin pieces keep the casing of the input.
func (s *Segmenter) Cut(text string) []string {
	if text == "" {
		return nil
	}
	pieces := s.seg.Cut(text, true)
	return s.seg.Trim(restoreCase(text, pieces))
}

// restoreCase maps each piece back onto the same runes of text. Pieces
// are returned unchanged when they do not line up.
func restoreCase(text string, pieces []string) []string {
	out := make([]string, 0, len(pieces))
	rest := text
	for _, p := range pieces {
		n := utf8.RuneCountInString(p)
		end := 0
		for i := 0; i < n && end < len(rest); i++ {
			_, size := utf8.DecodeRuneInString(rest[end:])
			end += size
		}
		chunk := rest[:end]
		if !strings.EqualFold(chunk, p) {
			return pieces
		}
		out = append(out, chunk)
		rest = rest[end:]
	}
	return out
}
