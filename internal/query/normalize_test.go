package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_CompoundReplacements(t *testing.T) {
	tables := DefaultTables()

	normalized, applied := tables.Normalize("entraapp신청가이드 알려줘")
	assert.Equal(t, "entraapp 신청 가이드 알려줘", normalized)
	require.Len(t, applied, 1)
	assert.Equal(t, "entraapp신청가이드->entraapp 신청 가이드", applied[0])
}

func TestNormalize_LongestCompoundWins(t *testing.T) {
	tables := DefaultTables()

	// the full compound fires before its shorter suffix can
	normalized, applied := tables.Normalize("신청가이드")
	assert.Equal(t, "신청 가이드", normalized)
	assert.Equal(t, []string{"신청가이드->신청 가이드"}, applied)
}

func TestNormalize_ScriptBoundarySpacing(t *testing.T) {
	tables := DefaultTables()

	cases := []struct {
		in, want string
	}{
		{"entra가이드", "entra 가이드"},
		{"가이드entra", "가이드 entra"},
		{"abc123한글", "abc123 한글"},
		{"한글abc", "한글 abc"},
	}
	for _, tc := range cases {
		normalized, _ := tables.Normalize(tc.in)
		assert.Equal(t, tc.want, normalized, "input %q", tc.in)
	}
}

func TestNormalize_CamelCaseSplit(t *testing.T) {
	tables := DefaultTables()

	normalized, _ := tables.Normalize("entraApp")
	assert.Equal(t, "entra App", normalized)
}

func TestNormalize_WhitespaceCollapse(t *testing.T) {
	tables := DefaultTables()

	normalized, _ := tables.Normalize("  entra   가이드\t알려줘  ")
	assert.Equal(t, "entra 가이드 알려줘", normalized)
}

func TestNormalize_EmptyInput(t *testing.T) {
	tables := DefaultTables()

	normalized, applied := tables.Normalize("")
	assert.Empty(t, normalized)
	assert.Empty(t, applied)

	normalized, applied = tables.Normalize("   ")
	assert.Empty(t, normalized)
	assert.Empty(t, applied)
}

func TestNormalize_Idempotent(t *testing.T) {
	tables := DefaultTables()

	inputs := []string{
		"entraapp신청가이드 알려줘",
		"entra가이드",
		"entraApp 신청",
		"  hello   world  ",
		"안녕하세요",
		"오늘 날씨 어때?",
		"entraapp신청 방법 설명",
	}
	for _, in := range inputs {
		once, _ := tables.Normalize(in)
		twice, _ := tables.Normalize(once)
		assert.Equal(t, once, twice, "normalize not idempotent for %q", in)
	}
}

func TestExpandSynonyms_TokenLookup(t *testing.T) {
	tables := DefaultTables()

	terms := tables.ExpandSynonyms("가이드")
	assert.Equal(t, []string{"documentation", "매뉴얼", "안내", "guide"}, terms)
}

func TestExpandSynonyms_LongestFirst(t *testing.T) {
	tables := DefaultTables()

	terms := tables.ExpandSynonyms("entra 가이드 알려줘")
	require.NotEmpty(t, terms)
	assert.Equal(t, "documentation", terms[0])
	for i := 1; i < len(terms); i++ {
		assert.GreaterOrEqual(t, len(terms[i-1]), len(terms[i]))
	}
}

func TestExpandSynonyms_PhraseLookup(t *testing.T) {
	tables := DefaultTables()

	terms := tables.ExpandSynonyms("entra id app 신청 방법")
	assert.Contains(t, terms, "entra app")
	// phrase "entra app" is also a substring here
	assert.Contains(t, terms, "엔트라 앱")
}

func TestExpandSynonyms_DropsQueryItself(t *testing.T) {
	tables := Tables{
		Synonyms: map[string][]string{"guide": {"guide", "manual"}},
	}
	terms := tables.ExpandSynonyms("Guide")
	assert.Equal(t, []string{"manual"}, terms)
}

func TestExpandSynonyms_NoMatches(t *testing.T) {
	tables := DefaultTables()

	assert.Empty(t, tables.ExpandSynonyms("오늘 날씨 어때?"))
	assert.Empty(t, tables.ExpandSynonyms(""))
}

func TestBuildPlan_SearchTextDedup(t *testing.T) {
	tables := Tables{
		Synonyms: map[string][]string{
			"guide": {"manual", "guide handbook"},
		},
	}
	plan := tables.BuildPlan("guide")
	// normalized query first, then expansions, duplicates removed
	assert.Equal(t, "guide guide handbook manual", plan.SearchText)
	assert.Equal(t, "guide", plan.VectorQueryText)
	assert.Equal(t, "guide", plan.NormalizedQuery)
	assert.Equal(t, "guide", plan.OriginalQuery)
}

func TestBuildPlan_FullQuery(t *testing.T) {
	tables := DefaultTables()

	plan := tables.BuildPlan("entraapp신청 방법")
	assert.Equal(t, "entraapp 신청 방법", plan.NormalizedQuery)
	assert.Equal(t, []string{"entraapp신청->entraapp 신청"}, plan.AppliedReplacements)
	assert.Contains(t, plan.ExpansionTerms, "entra app 신청")
	assert.Contains(t, plan.SearchText, "entraapp 신청 방법")
	assert.Equal(t, "entraapp 신청 방법", plan.VectorQueryText)
	assert.Empty(t, plan.Error)
}

func TestBuildPlan_EmptyQueryFallsBackToRaw(t *testing.T) {
	tables := DefaultTables()

	plan := tables.BuildPlan("   ")
	assert.Empty(t, plan.NormalizedQuery)
	assert.Equal(t, "   ", plan.SearchText)
	assert.Equal(t, "   ", plan.VectorQueryText)
}
