package domain

import (
	"fmt"
	"strings"
)

// Category groups sources by the kind of audience they reach.
type Category string

// Source categories.
const (
	CategorySocial  Category = "social"
	CategoryNews    Category = "news"
	CategoryFinance Category = "finance"
	CategoryTech    Category = "tech"
)

// Categories lists all categories in display order.
var Categories = []Category{CategorySocial, CategoryNews, CategoryFinance, CategoryTech}

// ParseCategory validates a category name.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("category %q: %w", s, ErrInvalidInput)
}

// Influence is a coarse reach tier for a source.
type Influence string

// Influence tiers.
const (
	InfluenceHigh   Influence = "high"
	InfluenceMedium Influence = "medium"
	InfluenceLow    Influence = "low"
)

// Source is an immutable catalog entry describing a content source.
type Source struct {
	// ID is the identifier used when fetching the source.
	ID string

	// Name is the display name.
	Name string

	// Category tags the source for weighting.
	Category Category

	// Weight reflects market relevance, from 1 to 10.
	Weight int

	// Influence is the reach tier.
	Influence Influence
}

// SourceSelector picks which sources an ingestion run covers.
// The zero value selects all sources.
type SourceSelector struct {
	Category Category
	IDs      []string
}

// SelectAll selects every catalogued source.
var SelectAll = SourceSelector{}

// ParseSourceSelector parses "all", "category:<name>" or a comma separated id list.
func ParseSourceSelector(s string) (SourceSelector, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "all" {
		return SelectAll, nil
	}
	if name, ok := strings.CutPrefix(s, "category:"); ok {
		cat, err := ParseCategory(name)
		if err != nil {
			return SourceSelector{}, err
		}
		return SourceSelector{Category: cat}, nil
	}
	var ids []string
	for _, id := range strings.Split(s, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return SourceSelector{}, fmt.Errorf("source selector %q: %w", s, ErrInvalidInput)
	}
	return SourceSelector{IDs: ids}, nil
}

// String renders the selector in the form ParseSourceSelector accepts.
func (s SourceSelector) String() string {
	switch {
	case s.Category != "":
		return "category:" + string(s.Category)
	case len(s.IDs) > 0:
		return strings.Join(s.IDs, ",")
	default:
		return "all"
	}
}
