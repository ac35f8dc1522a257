package reconcile

import (
	"strings"
	"unicode"

	"github.com/umarmf343/vea-2025-sub005/internal/record"
)

// TokenSet holds the normalized name variants used for fuzzy teacher
// identity comparison. Two names denote the same teacher when their token
// sets intersect.
type TokenSet map[string]struct{}

// Add inserts a token into the set.
func (s TokenSet) Add(token string) {
	if token != "" {
		s[token] = struct{}{}
	}
}

// AddAll inserts every token of other into the set.
func (s TokenSet) AddAll(other TokenSet) {
	for token := range other {
		s[token] = struct{}{}
	}
}

// Has reports whether the set contains token.
func (s TokenSet) Has(token string) bool {
	_, ok := s[token]
	return ok
}

// Intersects reports whether the two sets share at least one token.
func (s TokenSet) Intersects(other TokenSet) bool {
	small, large := s, other
	if len(large) < len(small) {
		small, large = large, small
	}
	for token := range small {
		if _, ok := large[token]; ok {
			return true
		}
	}
	return false
}

// honorifics that may prefix a teacher name and must not defeat matching.
var honorifics = map[string]struct{}{
	"mr":   {},
	"mrs":  {},
	"ms":   {},
	"miss": {},
	"dr":   {},
	"prof": {},
}

// NameTokens derives the canonical comparison tokens for a name: the
// lowercased raw form, a punctuation-collapsed form and an
// alphanumeric-only form, each additionally emitted with a leading
// honorific stripped. Blank input yields an empty set.
func NameTokens(name string) TokenSet {
	set := TokenSet{}

	trimmed := strings.ToLower(strings.TrimSpace(name))
	if trimmed == "" {
		return set
	}

	collapsed := collapsePunct(trimmed)

	set.Add(trimmed)
	set.Add(collapsed)
	set.Add(stripNonAlnum(trimmed))

	if first, rest, ok := strings.Cut(collapsed, " "); ok {
		if _, isHonorific := honorifics[first]; isHonorific {
			set.Add(rest)
			set.Add(stripNonAlnum(rest))
		}
	}

	return set
}

// KnownTeacherTokens unions the tokens of every teacher name visible to
// the student: subject-record teachers, timetable teachers and the
// explicit class/subject teacher lookup. Lookup entries contribute their
// identifiers as well so assignments keyed by teacher id still match.
func KnownTeacherTokens(tokens *TokenCache, subjects, slots []record.Record, teacherAssignments any) TokenSet {
	known := TokenSet{}

	for _, rec := range subjects {
		known.AddAll(tokens.Tokens(record.SubjectTeacher.First(rec)))
	}
	for _, rec := range slots {
		known.AddAll(tokens.Tokens(record.SlotTeacher.First(rec)))
	}

	obj, ok := record.AsObject(teacherAssignments)
	if !ok {
		return known
	}
	for _, key := range []string{"classTeachers", "subjectTeachers"} {
		for _, rec := range record.Normalize(obj[key]) {
			known.AddAll(tokens.Tokens(record.TeacherName.First(rec)))
			known.AddAll(tokens.Tokens(record.TeacherID.First(rec)))
			known.AddAll(tokens.Tokens(rec.ID()))
		}
	}

	return known
}

// AssignmentTeacherTokens derives the tokens of an assignment's
// teacher-identifying fields. An empty result means the assignment is
// untagged.
func AssignmentTeacherTokens(tokens *TokenCache, rec record.Record) TokenSet {
	set := TokenSet{}
	set.AddAll(tokens.Tokens(record.AssignmentTeacher.First(rec)))
	set.AddAll(tokens.Tokens(record.TeacherID.First(rec)))
	return set
}

// collapsePunct lowers every punctuation run to a single space.
func collapsePunct(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pendingSpace := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
		} else {
			pendingSpace = true
		}
	}
	return b.String()
}

func stripNonAlnum(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
