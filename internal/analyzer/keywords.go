package analyzer

import (
	"regexp"
	"slices"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/randcrawl/internal/model"
)

// wordRegex matches runs of letters, digits and underscores in any script.
var wordRegex = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// KeywordFrequency returns the topN most frequent lower-cased words of body,
// by descending count. Words with equal counts keep the order in which they
// first appeared.
func KeywordFrequency(body string, topN int) []model.KeywordCount {
	if topN <= 0 {
		return nil
	}

	lower := cases.Lower(language.Und)
	counts := make(map[string]int)
	var order []string
	for _, w := range wordRegex.FindAllString(body, -1) {
		w = lower.String(w)
		if _, ok := counts[w]; !ok {
			order = append(order, w)
		}
		counts[w]++
	}

	keywords := make([]model.KeywordCount, 0, len(order))
	for _, w := range order {
		keywords = append(keywords, model.KeywordCount{Word: w, Count: counts[w]})
	}
	slices.SortStableFunc(keywords, func(a, b model.KeywordCount) int {
		return b.Count - a.Count
	})

	if len(keywords) > topN {
		keywords = keywords[:topN]
	}
	return keywords
}
