package reconcile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umarmf343/vea-2025-sub005/internal/models"
	"github.com/umarmf343/vea-2025-sub005/internal/record"
)

func calendarRecord(id, title, audience, start, end string) record.Record {
	rec := record.Record{"id": id, "title": title, "startDate": start}
	if audience != "" {
		rec["audience"] = audience
	}
	if end != "" {
		rec["endDate"] = end
	}
	return rec
}

func dueOn(day string, id, title string) models.Assignment {
	due, _ := time.Parse("2006-01-02", day)
	return models.Assignment{ID: id, Title: title, DueDate: &due}
}

func TestUpcomingEvents_AudienceFiltering(t *testing.T) {
	calendar := []record.Record{
		calendarRecord("e1", "PTA meeting", "parents", "2026-09-20", ""),
		calendarRecord("e2", "Resumption", "all", "2026-09-20", ""),
		calendarRecord("e3", "Career talk", "STUDENTS", "2026-09-21", ""),
		calendarRecord("e4", "Unlabelled", "", "2026-09-22", ""),
	}

	events := UpcomingEvents(calendar, nil, fixedNow())

	require.Len(t, events, 2)
	assert.Equal(t, "calendar-e2", events[0].ID)
	assert.Equal(t, "calendar-e3", events[1].ID)
}

func TestUpcomingEvents_ElapsedBoundary(t *testing.T) {
	calendar := []record.Record{
		calendarRecord("past", "Ended yesterday", "all", "2026-09-13", "2026-09-14"),
		calendarRecord("today", "Ends today", "all", "2026-09-14", "2026-09-15"),
		calendarRecord("ongoing", "Spans the week", "all", "2026-09-10", "2026-09-18"),
	}

	events := UpcomingEvents(calendar, nil, fixedNow())

	ids := eventIDs(events)
	assert.NotContains(t, ids, "calendar-past")
	assert.Contains(t, ids, "calendar-today")
	assert.Contains(t, ids, "calendar-ongoing")
}

func TestUpcomingEvents_SingleDayUsesStartAsEnd(t *testing.T) {
	calendar := []record.Record{
		calendarRecord("y", "Yesterday only", "all", "2026-09-14", ""),
		calendarRecord("t", "Today only", "all", "2026-09-15", ""),
	}

	events := UpcomingEvents(calendar, nil, fixedNow())

	require.Len(t, events, 1)
	assert.Equal(t, "calendar-t", events[0].ID)
	assert.Equal(t, "Sep 15, 2026", events[0].Date)
}

func TestUpcomingEvents_RangeLabel(t *testing.T) {
	calendar := []record.Record{
		calendarRecord("r", "Exams", "all", "2026-09-21", "2026-09-25"),
	}

	events := UpcomingEvents(calendar, nil, fixedNow())

	require.Len(t, events, 1)
	assert.Equal(t, "Sep 21, 2026 – Sep 25, 2026", events[0].Date)
}

func TestUpcomingEvents_UnparseableStartSkipped(t *testing.T) {
	calendar := []record.Record{
		calendarRecord("bad", "Sometime", "all", "whenever", ""),
	}

	assert.Empty(t, UpcomingEvents(calendar, nil, fixedNow()))
}

func TestUpcomingEvents_AssignmentDueDates(t *testing.T) {
	assignments := []models.Assignment{
		dueOn("2026-09-14", "a1", "Past essay"),
		dueOn("2026-09-15", "a2", "Due today"),
		dueOn("2026-09-20", "a3", "Next week"),
		{ID: "a4", Title: "No due date"},
	}

	events := UpcomingEvents(nil, assignments, fixedNow())

	require.Len(t, events, 2)
	assert.Equal(t, "assignment-a2", events[0].ID)
	assert.Equal(t, "Assignment: Due today", events[0].Title)
	assert.Equal(t, models.EventSourceAssignment, events[0].Source)
	assert.Equal(t, "assignment-a3", events[1].ID)
}

func TestUpcomingEvents_MergedOrderingAndSources(t *testing.T) {
	calendar := []record.Record{
		calendarRecord("c1", "Mid-term break", "all", "2026-09-18", ""),
		calendarRecord("c2", "Sports day", "students", "2026-09-16", ""),
	}
	assignments := []models.Assignment{
		dueOn("2026-09-17", "a1", "Maths worksheet"),
		dueOn("2026-09-30", "a2", "Term paper"),
	}

	events := UpcomingEvents(calendar, assignments, fixedNow())

	require.Len(t, events, 4)
	for i := 1; i < len(events); i++ {
		assert.LessOrEqual(t, events[i-1].SortKey, events[i].SortKey)
	}
	assert.Equal(t, []string{"calendar-c2", "assignment-a1", "calendar-c1", "assignment-a2"}, eventIDs(events))
}

func TestUpcomingEvents_DeduplicatesByID(t *testing.T) {
	calendar := []record.Record{
		calendarRecord("e1", "First copy", "all", "2026-09-20", ""),
		calendarRecord("e1", "Second copy", "all", "2026-09-22", ""),
	}

	events := UpcomingEvents(calendar, nil, fixedNow())

	require.Len(t, events, 1)
	assert.Equal(t, "First copy", events[0].Title)
}

func eventIDs(events []models.UpcomingEvent) []string {
	ids := make([]string, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.ID)
	}
	return ids
}
