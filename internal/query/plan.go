package query

import "strings"

// Plan is the request-scoped, fully derived form of one raw query. It doubles
// as the retrieval metadata returned to callers: the retriever records the
// returned document count and any downgraded error on it.
type Plan struct {
	OriginalQuery       string   `json:"original_query"`
	NormalizedQuery     string   `json:"normalized_query"`
	SearchText          string   `json:"search_text"`
	VectorQueryText     string   `json:"vector_query_text"`
	ExpansionTerms      []string `json:"expansion_terms"`
	AppliedReplacements []string `json:"applied_replacements"`
	ReturnedDocs        int      `json:"returned_docs,omitempty"`
	Warning             string   `json:"warning,omitempty"`
	Error               string   `json:"error,omitempty"`
}

// BuildPlan normalizes and expands a raw query. SearchText is the normalized
// query followed by its expansion terms, first occurrence wins; the raw query
// is the fallback when normalization yields nothing.
func (t Tables) BuildPlan(raw string) Plan {
	normalized, applied := t.Normalize(raw)
	expansions := t.ExpandSynonyms(normalized)

	var terms []string
	if normalized != "" {
		terms = append(terms, normalized)
	}
	terms = append(terms, expansions...)

	seen := make(map[string]struct{}, len(terms))
	var deduped []string
	for _, term := range terms {
		if term == "" {
			continue
		}
		if _, ok := seen[term]; ok {
			continue
		}
		seen[term] = struct{}{}
		deduped = append(deduped, term)
	}

	searchText := strings.Join(deduped, " ")
	if searchText == "" {
		searchText = raw
	}
	vectorText := normalized
	if vectorText == "" {
		vectorText = raw
	}

	return Plan{
		OriginalQuery:       raw,
		NormalizedQuery:     normalized,
		SearchText:          searchText,
		VectorQueryText:     vectorText,
		ExpansionTerms:      expansions,
		AppliedReplacements: applied,
	}
}
