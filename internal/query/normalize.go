package query

import (
	"regexp"
	"sort"
	"strings"
)

var (
	alnumHangulRe = regexp.MustCompile(`([A-Za-z0-9])([\p{Hangul}])`)
	hangulAlnumRe = regexp.MustCompile(`([\p{Hangul}])([A-Za-z0-9])`)
	camelCaseRe   = regexp.MustCompile(`([a-z])([A-Z])`)
	whitespaceRe  = regexp.MustCompile(`\s+`)
)

// Normalize rewrites a raw query into its canonical spaced form and reports
// every compound replacement that fired, in application order. The result is
// idempotent: normalizing an already-normalized string is a no-op.
func (t Tables) Normalize(raw string) (string, []string) {
	if raw == "" {
		return "", nil
	}
	text := strings.TrimSpace(raw)
	var applied []string
	for _, r := range t.Replacements {
		if strings.Contains(text, r.From) {
			text = strings.ReplaceAll(text, r.From, r.To)
			applied = append(applied, r.From+"->"+r.To)
		}
	}
	text = alnumHangulRe.ReplaceAllString(text, "$1 $2")
	text = hangulAlnumRe.ReplaceAllString(text, "$1 $2")
	text = camelCaseRe.ReplaceAllString(text, "$1 $2")
	text = whitespaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text), applied
}

// ExpandSynonyms collects the synonyms of every token of the normalized
// query plus every known phrase contained in it, deduplicated, longest term
// first. The query itself is never returned as its own expansion. An empty
// result is valid output.
func (t Tables) ExpandSynonyms(normalized string) []string {
	if normalized == "" {
		return nil
	}
	lower := strings.ToLower(normalized)
	seen := make(map[string]struct{})
	for _, token := range strings.Fields(lower) {
		for _, syn := range t.Synonyms[token] {
			seen[syn] = struct{}{}
		}
	}
	for phrase, syns := range t.PhraseSynonyms {
		if strings.Contains(lower, phrase) {
			for _, syn := range syns {
				seen[syn] = struct{}{}
			}
		}
	}
	delete(seen, lower)
	delete(seen, "")

	terms := make([]string, 0, len(seen))
	for syn := range seen {
		terms = append(terms, syn)
	}
	// longest first biases display and ranking toward specific terms
	sort.Slice(terms, func(i, j int) bool {
		if len(terms[i]) != len(terms[j]) {
			return len(terms[i]) > len(terms[j])
		}
		return terms[i] < terms[j]
	})
	return terms
}
