package services

import (
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/custodia-labs/flowwatch/internal/core/domain"
	"github.com/custodia-labs/flowwatch/internal/core/ports/driven"
)

// FilterRelevant returns the finance-relevant records, scored and sorted
// by score descending. weightOf maps a source ID to its catalog weight.
func FilterRelevant(records []domain.Record, weightOf func(string) int, vocab domain.Vocabulary) []domain.RelevantRecord {
	var out []domain.RelevantRecord
	for _, r := range records {
		text := r.Text()
		var matched []string
		for _, kw := range vocab.FinanceKeywords {
			if kw != "" && strings.Contains(text, kw) {
				matched = append(matched, kw)
			}
		}
		if len(matched) == 0 {
			continue
		}

		weight := 0
		if weightOf != nil {
			weight = weightOf(r.SourceID)
		}
		out = append(out, domain.RelevantRecord{
			Record:          r,
			MatchedKeywords: matched,
			KeywordCount:    len(matched),
			Score:           RelevanceScore(r.Rank, weight, len(matched)),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

// RelevanceScore is rank bonus + source authority bonus + keyword bonus.
func RelevanceScore(rank, weight, matched int) int {
	rankBonus := (100 - rank) * 2
	if rankBonus < 0 {
		rankBonus = 0
	}
	return rankBonus + weight*10 + matched*5
}

// topicAccumulator collects per-token counts during extraction.
type topicAccumulator struct {
	count     int
	sourceIDs map[string]struct{}
	names     []string
}

// minTopicRunes is the shortest token counted as a topic.
const minTopicRunes = 2

// ExtractHotTopics segments titles into words and returns the topN most
// frequent with heat and contributing sources. A nil segmenter splits on
// whitespace and punctuation only.
func ExtractHotTopics(records []domain.Record, seg driven.Segmenter, stopWords []string, topN int) []domain.HotTopic {
	if len(records) == 0 || topN <= 0 {
		return nil
	}

	stops := make(map[string]struct{}, len(stopWords))
	for _, w := range stopWords {
		stops[strings.ToLower(w)] = struct{}{}
	}

	acc := make(map[string]*topicAccumulator)
	titles := 0
	for _, r := range records {
		title := strings.TrimSpace(r.Title)
		if title == "" {
			continue
		}
		titles++
		seen := make(map[string]struct{})
		for _, tok := range topicTokens(seg, title) {
			if _, stop := stops[strings.ToLower(tok)]; stop {
				continue
			}
			if _, dup := seen[tok]; dup {
				continue
			}
			seen[tok] = struct{}{}

			a, ok := acc[tok]
			if !ok {
				a = &topicAccumulator{sourceIDs: make(map[string]struct{})}
				acc[tok] = a
			}
			a.count++
			key := r.SourceID
			if key == "" {
				key = r.Origin
			}
			if _, ok := a.sourceIDs[key]; !ok {
				a.sourceIDs[key] = struct{}{}
				if len(a.names) < domain.MaxTopicSources {
					a.names = append(a.names, r.Origin)
				}
			}
		}
	}

	topics := make([]domain.HotTopic, 0, len(acc))
	total := float64(titles)
	for tok, a := range acc {
		topics = append(topics, domain.HotTopic{
			Topic:         tok,
			Count:         a.count,
			Heat:          TopicHeat(a.count, total, len(a.sourceIDs)),
			CrossPlatform: len(a.sourceIDs),
			Sources:       a.names,
		})
	}

	sort.Slice(topics, func(i, j int) bool {
		if topics[i].Count != topics[j].Count {
			return topics[i].Count > topics[j].Count
		}
		return topics[i].Topic < topics[j].Topic
	})
	if len(topics) > topN {
		topics = topics[:topN]
	}
	return topics
}

// TopicHeat normalises frequency to 0..100 and adds the cross-source bonus.
func TopicHeat(count int, totalTitles float64, distinctSources int) int {
	if totalTitles <= 0 {
		return 0
	}
	heat := int(math.Round(float64(count) / totalTitles * 1000))
	if heat > 100 {
		heat = 100
	}
	switch {
	case distinctSources >= 5:
		heat += 20
	case distinctSources >= 3:
		heat += 10
	}
	if heat > 100 {
		heat = 100
	}
	return heat
}

// topicTokens segments a title and keeps words of at least minTopicRunes
// that contain a letter or digit.
func topicTokens(seg driven.Segmenter, title string) []string {
	var words []string
	if seg != nil {
		words = seg.Cut(title)
	} else {
		words = splitWords(title)
	}

	var tokens []string
	for _, w := range words {
		w = strings.TrimSpace(w)
		if utf8.RuneCountInString(w) < minTopicRunes || !hasWordRune(w) {
			continue
		}
		tokens = append(tokens, w)
	}
	return tokens
}

// splitWords splits on anything that is not a letter or digit. Mixed
// script runs such as "A股" stay whole.
func splitWords(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func hasWordRune(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
