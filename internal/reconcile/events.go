package reconcile

import (
	"sort"
	"strings"
	"time"

	"github.com/umarmf343/vea-2025-sub005/internal/models"
	"github.com/umarmf343/vea-2025-sub005/internal/record"
)

const dateLabelLayout = "Jan 2, 2006"

// UpcomingEvents merges published calendar entries with assignment due
// dates into one forward-looking timeline, ascending by underlying
// timestamp and deduplicated by event id with the first occurrence
// winning. Calendar events sort on their midnight-normalized start,
// assignments on the exact due instant; both are kept only while their
// end boundary has not passed.
func UpcomingEvents(calendar []record.Record, assignments []models.Assignment, now time.Time) []models.UpcomingEvent {
	events := make([]models.UpcomingEvent, 0, len(calendar)+len(assignments))
	today := startOfDay(now)

	for _, rec := range calendar {
		if event, ok := calendarEvent(rec, today); ok {
			events = append(events, event)
		}
	}
	for _, a := range assignments {
		if event, ok := assignmentEvent(a, now); ok {
			events = append(events, event)
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].SortKey < events[j].SortKey
	})

	return dedupeEvents(events)
}

// calendarEvent builds a timeline entry from one published calendar
// record. Events not addressed to students, without a parseable start, or
// whose entire date range has elapsed are skipped.
func calendarEvent(rec record.Record, today time.Time) (models.UpcomingEvent, bool) {
	audience := strings.ToLower(record.EventAudience.First(rec))
	if audience != "all" && audience != "students" {
		return models.UpcomingEvent{}, false
	}

	start, ok := record.EventStart.Time(rec)
	if !ok {
		return models.UpcomingEvent{}, false
	}
	end, hasEnd := record.EventEnd.Time(rec)
	if !hasEnd {
		end = start
	}
	if endOfDay(end).Before(today) {
		return models.UpcomingEvent{}, false
	}

	label := start.Format(dateLabelLayout)
	if hasEnd && !sameDay(start, end) {
		label = label + " – " + end.Format(dateLabelLayout)
	}

	return models.UpcomingEvent{
		ID:          "calendar-" + rec.ID(),
		Title:       record.EventTitle.First(rec),
		Date:        label,
		Description: record.EventDescription.First(rec),
		Source:      models.EventSourceCalendar,
		Location:    record.EventLocation.First(rec),
		Category:    record.EventCategory.First(rec),
		SortKey:     startOfDay(start).UnixMilli(),
	}, true
}

// assignmentEvent builds a timeline entry from one visible assignment.
// Assignments without a due date or already past end-of-day are skipped.
func assignmentEvent(a models.Assignment, now time.Time) (models.UpcomingEvent, bool) {
	if a.DueDate == nil {
		return models.UpcomingEvent{}, false
	}
	due := *a.DueDate
	if endOfDay(due).Before(now) {
		return models.UpcomingEvent{}, false
	}

	return models.UpcomingEvent{
		ID:          "assignment-" + a.ID,
		Title:       "Assignment: " + a.Title,
		Date:        due.Format(dateLabelLayout),
		Description: a.Subject,
		Source:      models.EventSourceAssignment,
		Category:    "assignment",
		SortKey:     due.UnixMilli(),
	}, true
}

func dedupeEvents(events []models.UpcomingEvent) []models.UpcomingEvent {
	seen := make(map[string]struct{}, len(events))
	deduped := make([]models.UpcomingEvent, 0, len(events))
	for _, e := range events {
		if _, dup := seen[e.ID]; dup {
			continue
		}
		seen[e.ID] = struct{}{}
		deduped = append(deduped, e)
	}
	return deduped
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
