package reconcile

import (
	"math"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/umarmf343/vea-2025-sub005/internal/models"
	"github.com/umarmf343/vea-2025-sub005/internal/record"
)

// FilterAssignments applies the layered visibility policy and returns the
// visible assignments sorted ascending by due date. Matching is layered:
// assignments without any teacher-identifying tokens are visible to
// everyone, teacher-token intersection is the primary test, and
// normalized class equality is the fallback for cross-listed work whose
// teacher name did not match.
func FilterAssignments(tokens *TokenCache, assignments []record.Record, known TokenSet, studentClass string) []record.Record {
	filtered := make([]record.Record, 0, len(assignments))
	for _, rec := range assignments {
		if assignmentVisible(tokens, rec, known, studentClass) {
			filtered = append(filtered, rec)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return dueSortKey(filtered[i]) < dueSortKey(filtered[j])
	})

	return filtered
}

func assignmentVisible(tokens *TokenCache, rec record.Record, known TokenSet, studentClass string) bool {
	teacherTokens := AssignmentTeacherTokens(tokens, rec)
	if len(teacherTokens) == 0 {
		// untagged assignments are visible to everyone
		return true
	}
	if teacherTokens.Intersects(known) {
		return true
	}

	assignmentClass := classKey(record.ClassName.First(rec))
	return assignmentClass != "" && assignmentClass == classKey(studentClass)
}

// dueSortKey returns the due timestamp in milliseconds; missing or
// unparseable due dates sort last.
func dueSortKey(rec record.Record) int64 {
	if due, ok := record.AssignmentDue.Time(rec); ok {
		return due.UnixMilli()
	}
	return math.MaxInt64
}

// classKey normalizes a class identifier for equality comparison by
// stripping whitespace and case.
func classKey(class string) string {
	var b strings.Builder
	b.Grow(len(class))
	for _, r := range strings.ToLower(class) {
		if !unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// AssignmentViews converts filtered assignment records into their
// presented form, deriving the visible status and the overdue flag. The
// status machine is sent, then submitted, then graded; overdue applies
// only while the work has not been handed in.
func AssignmentViews(records []record.Record, now time.Time) []models.Assignment {
	views := make([]models.Assignment, 0, len(records))
	for _, rec := range records {
		view := models.Assignment{
			ID:      rec.ID(),
			Title:   record.AssignmentTitle.First(rec),
			Subject: record.AssignmentSubject.First(rec),
			Class:   record.ClassName.First(rec),
			Teacher: record.AssignmentTeacher.First(rec),
			Status:  assignmentStatus(rec),
		}
		if score, ok := record.AssignmentScore.Number(rec); ok {
			s := score
			view.Score = &s
		}
		if due, ok := record.AssignmentDue.Time(rec); ok {
			d := due
			view.DueDate = &d
			view.Overdue = view.Status == models.AssignmentStatusSent && endOfDay(due).Before(now)
		}
		views = append(views, view)
	}
	return views
}

// assignmentStatus maps the raw status field onto the lifecycle states;
// anything absent or unrecognized counts as sent.
func assignmentStatus(rec record.Record) models.AssignmentStatus {
	switch strings.ToLower(record.AssignmentStatus.First(rec)) {
	case "submitted", "turned_in", "turnedin":
		return models.AssignmentStatusSubmitted
	case "graded", "marked", "scored":
		return models.AssignmentStatusGraded
	default:
		return models.AssignmentStatusSent
	}
}
