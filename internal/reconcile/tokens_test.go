package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umarmf343/vea-2025-sub005/internal/record"
)

func TestNameTokens_BlankInput(t *testing.T) {
	assert.Empty(t, NameTokens(""))
	assert.Empty(t, NameTokens("   "))
}

func TestNameTokens_Forms(t *testing.T) {
	tokens := NameTokens("Mrs. Jane Doe")

	assert.True(t, tokens.Has("mrs. jane doe"))
	assert.True(t, tokens.Has("mrs jane doe"))
	assert.True(t, tokens.Has("mrsjanedoe"))
	assert.True(t, tokens.Has("jane doe"))
	assert.True(t, tokens.Has("janedoe"))
}

func TestNameTokens_SymmetryAcrossCaseAndPunctuation(t *testing.T) {
	cases := []struct{ a, b string }{
		{"Jane Doe", "jane doe"},
		{"JANE-DOE", "jane doe"},
		{"janedoe", "Jane Doe"},
		{"Mrs. Ada Obi", "ada obi"},
		{"Dr. Sam Okoro", "sam okoro"},
	}

	for _, tc := range cases {
		assert.True(t, NameTokens(tc.a).Intersects(NameTokens(tc.b)),
			"%q should match %q", tc.a, tc.b)
		assert.True(t, NameTokens(tc.b).Intersects(NameTokens(tc.a)),
			"%q should match %q", tc.b, tc.a)
	}
}

func TestNameTokens_DistinctNamesDoNotIntersect(t *testing.T) {
	assert.False(t, NameTokens("Ada Obi").Intersects(NameTokens("Bola Ade")))
	assert.False(t, NameTokens("Mrs. Ada Obi").Intersects(NameTokens("Mr. Tunde Obi")))
}

func TestTokenSet_Intersects(t *testing.T) {
	a := TokenSet{"x": {}, "y": {}}
	b := TokenSet{"y": {}, "z": {}}
	c := TokenSet{"q": {}}

	assert.True(t, a.Intersects(b))
	assert.True(t, b.Intersects(a))
	assert.False(t, a.Intersects(c))
	assert.False(t, TokenSet{}.Intersects(a))
}

func TestKnownTeacherTokens_UnionsAllSources(t *testing.T) {
	cache := NewTokenCache(0)
	subjects := []record.Record{{"id": "s1", "subject": "Maths", "teacher": "Mr. John Bull"}}
	slots := []record.Record{{"id": "t1", "tutor": "ada obi"}}
	lookup := map[string]any{
		"classTeachers":   []any{map[string]any{"id": "T-9", "name": "Grace Eze"}},
		"subjectTeachers": []any{map[string]any{"teacherName": "Sam Okoro"}},
		"message":         "ok",
	}

	known := KnownTeacherTokens(cache, subjects, slots, lookup)

	assert.True(t, known.Has("john bull"))
	assert.True(t, known.Has("ada obi"))
	assert.True(t, known.Has("grace eze"))
	assert.True(t, known.Has("sam okoro"))
	assert.True(t, known.Has("t-9"), "lookup ids should be matchable tokens")
}

func TestKnownTeacherTokens_MalformedLookup(t *testing.T) {
	cache := NewTokenCache(0)
	subjects := []record.Record{{"id": "s1", "teacher": "Ada Obi"}}

	known := KnownTeacherTokens(cache, subjects, nil, "not an object")

	assert.True(t, known.Has("ada obi"))
	assert.False(t, known.Has("not an object"))
}

func TestAssignmentTeacherTokens(t *testing.T) {
	cache := NewTokenCache(0)

	tagged := AssignmentTeacherTokens(cache, record.Record{"id": "a1", "teacherName": "Mrs. Ada Obi"})
	assert.True(t, tagged.Has("ada obi"))

	byID := AssignmentTeacherTokens(cache, record.Record{"id": "a2", "teacherId": 41.0})
	assert.True(t, byID.Has("41"))

	untagged := AssignmentTeacherTokens(cache, record.Record{"id": "a3", "title": "Algebra homework"})
	assert.Empty(t, untagged, "assignment title must not count as a teacher name")
}

func TestTokenCache_ReturnsConsistentSets(t *testing.T) {
	cache := NewTokenCache(0)

	first := cache.Tokens("Mrs. Ada Obi")
	second := cache.Tokens("Mrs. Ada Obi")

	require.Equal(t, first, second)
	assert.True(t, second.Has("ada obi"))
}

func TestTokenCache_SurvivesBoundReset(t *testing.T) {
	cache := NewTokenCache(2)

	cache.Tokens("one")
	cache.Tokens("two")
	third := cache.Tokens("three")

	assert.True(t, third.Has("three"))
	assert.True(t, cache.Tokens("one").Has("one"))
}
