package video

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeKeyword trims, collapses inner whitespace and applies NFKC so that
// keywords typed slightly differently still group their feedback together.
func NormalizeKeyword(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Join(strings.Fields(s), " ")
	return norm.NFKC.String(s)
}

// NormalizeKeywords normalizes each keyword, dropping empties and duplicates
// while keeping the first occurrence's position.
func NormalizeKeywords(keywords []string) []string {
	seen := make(map[string]struct{})
	res := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		n := NormalizeKeyword(kw)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		res = append(res, n)
	}
	return res
}
