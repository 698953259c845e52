
package keywords

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"trend-collector/internal/models"
)

// stop words dropped before counting
var stopwords = map[string]struct{}{
	"있다": {}, "하다": {}, "이다": {}, "되다": {}, "않다": {}, "그": {}, "및": {}, "등": {},
	"를": {}, "을": {}, "이": {}, "가": {}, "의": {}, "에": {}, "로": {}, "으로": {},
}

// IsStopword reports whether tok is dropped by the ranker.
func IsStopword(tok string) bool {
	_, ok := stopwords[tok]
	return ok
}

// Rank tokenizes text and returns the topN tokens by descending frequency.
// Ties keep first-seen order.
func Rank(text string, topN int) []models.KeywordCount {
	return countOrdered(Tokenize(text), topN)
}

// Top is Rank without the counts.
func Top(text string, topN int) []string {
	return tokensOf(Rank(text, topN))
}

// Count ranks an already tokenized list as-is, without cleaning or filtering.
func Count(tokens []string, topN int) []string {
	return tokensOf(countOrdered(tokens, topN))
}

// Tokenize cleans text and splits it into rankable tokens.
func Tokenize(text string) []string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case unicode.IsSpace(r):
			b.WriteRune(r)
		case unicode.IsDigit(r):
			// digit runs are removed outright
		case unicode.IsLetter(r), unicode.IsNumber(r), r == '_':
			b.WriteRune(r)
		}
	}

	fields := strings.Fields(b.String())
	out := fields[:0]
	for _, w := range fields {
		if utf8.RuneCountInString(w) <= 1 {
			continue
		}
		if IsStopword(w) {
			continue
		}
		out = append(out, w)
	}
	return out
}

func countOrdered(tokens []string, topN int) []models.KeywordCount {
	if topN <= 0 {
		return nil
	}
	index := make(map[string]int, len(tokens))
	var list []models.KeywordCount
	for _, t := range tokens {
		if i, ok := index[t]; ok {
			list[i].Count++
			continue
		}
		index[t] = len(list)
		list = append(list, models.KeywordCount{Token: t, Count: 1})
	}

	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Count > list[j].Count
	})
	if topN > len(list) {
		topN = len(list)
	}
	return list[:topN]
}

func tokensOf(list []models.KeywordCount) []string {
	out := make([]string, 0, len(list))
	for _, kc := range list {
		out = append(out, kc.Token)
	}
	return out
}
