package dailynews

import (
	"html"
	"regexp"
	"strings"

	"github.com/russross/blackfriday/v2"
)

var (
	tagPattern    = regexp.MustCompile(`<[^>]*>`)
	tickerPattern = regexp.MustCompile(`\b[036]\d{5}\b`)
)

// plainText renders markdown and strips the resulting markup.
func plainText(markdown string) string {
	if strings.TrimSpace(markdown) == "" {
		return ""
	}
	rendered := blackfriday.Run([]byte(markdown), blackfriday.WithNoExtensions())
	text := html.UnescapeString(tagPattern.ReplaceAllString(string(rendered), " "))
	return strings.Join(strings.Fields(text), " ")
}

// tickers extracts six-digit A-share codes in order of first appearance.
func tickers(text string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, code := range tickerPattern.FindAllString(text, -1) {
		if !seen[code] {
			seen[code] = true
			out = append(out, code)
		}
	}
	return out
}
