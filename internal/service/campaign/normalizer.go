package campaign

import (
	"strings"

	"github.com/jinzhu/inflection"
)

// CleanOptions controls keyword normalization.
type CleanOptions struct {
	// ASINs treats entries as catalog identifiers: they are uppercased and
	// never singularized.
	ASINs bool

	// Singularize collapses plural forms so "gardening books" and
	// "gardening book" count as one keyword. Ignored for ASINs and for
	// non-English marketplaces.
	Singularize bool

	Marketplace string
}

var englishMarketplaces = map[string]struct{}{
	"": {}, "US": {}, "CA": {}, "UK": {}, "GB": {}, "AU": {},
}

// CleanKeywords cleans, deduplicates and optionally singularizes raw
// keyword or ASIN strings. Empty and whitespace-only entries are dropped,
// internal whitespace is collapsed, and the result is a set: input order
// and input duplicates are irrelevant.
func CleanKeywords(raw []string, opts CleanOptions) map[string]struct{} {
	out := make(map[string]struct{}, len(raw))
	for _, r := range raw {
		s := strings.Join(strings.Fields(r), " ")
		if s == "" {
			continue
		}
		if opts.ASINs {
			out[strings.ToUpper(s)] = struct{}{}
			continue
		}
		s = strings.ToLower(s)
		if opts.Singularize && isEnglishMarketplace(opts.Marketplace) {
			s = singularizePhrase(s)
		}
		out[s] = struct{}{}
	}
	return out
}

func isEnglishMarketplace(marketplace string) bool {
	_, ok := englishMarketplaces[strings.ToUpper(marketplace)]
	return ok
}

// singularizePhrase singularizes the head noun of a keyword phrase, which
// in English is the last word ("gardening books" -> "gardening book").
func singularizePhrase(s string) string {
	words := strings.Split(s, " ")
	words[len(words)-1] = inflection.Singular(words[len(words)-1])
	return strings.Join(words, " ")
}
