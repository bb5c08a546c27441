package query

// Replacement is one literal compound-word substitution, applied in order.
type Replacement struct {
	From string
	To   string
}

// Tables bundles the static normalization and expansion vocabulary. It is
// loaded once at startup and never mutated afterwards; the pipeline holds it
// by value.
type Tables struct {
	Replacements   []Replacement
	Synonyms       map[string][]string
	PhraseSynonyms map[string][]string
}

// DefaultTables returns the built-in Entra ID App guide vocabulary. Longer
// compound keys come first so they win over their substrings.
func DefaultTables() Tables {
	return Tables{
		Replacements: []Replacement{
			{From: "entraapp신청가이드", To: "entraapp 신청 가이드"},
			{From: "entraapp신청", To: "entraapp 신청"},
			{From: "entraapp가이드", To: "entraapp 가이드"},
			{From: "신청가이드", To: "신청 가이드"},
		},
		Synonyms: map[string][]string{
			"entraapp": {"entra app", "entra id app", "엔트라앱"},
			"entra":    {"엔트라", "entra id"},
			"신청":       {"등록", "신청서", "apply", "application"},
			"가이드":      {"안내", "guide", "매뉴얼", "documentation"},
			"안내":       {"가이드", "도움말"},
			"등록":       {"신청", "가입"},
			"알려줘":      {"설명", "tell me"},
		},
		PhraseSynonyms: map[string][]string{
			"entra app":    {"엔트라 앱"},
			"entra id app": {"entra app"},
			"entraapp 신청":  {"entra app 신청", "엔트라앱 신청"},
		},
	}
}
