package models

import "time"

// StudentProfile is the resolved identity shown at the top of the student
// dashboard. Every field is populated from the remote profile where
// possible and from the caller-supplied fallback otherwise.
type StudentProfile struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	Class           string `json:"class"`
	AdmissionNumber string `json:"admissionNumber"`
}

// SubjectRecord is one academic subject entry for the student.
type SubjectRecord struct {
	ID      string   `json:"id"`
	Subject string   `json:"subject"`
	Teacher string   `json:"teacher,omitempty"`
	Score   *float64 `json:"score,omitempty"`
	Grade   string   `json:"grade,omitempty"`
}

// AttendanceSummary is the reconciled attendance triple. Present and Total
// are non-negative; Percentage is clamped to [0,100].
type AttendanceSummary struct {
	Present    int `json:"present"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// TimetableSlot is one entry of the class timetable.
type TimetableSlot struct {
	ID       string `json:"id"`
	Day      string `json:"day"`
	Time     string `json:"time"`
	Subject  string `json:"subject"`
	Teacher  string `json:"teacher,omitempty"`
	Location string `json:"location,omitempty"`
}

// AssignmentStatus is the visible lifecycle state of an assignment.
type AssignmentStatus string

const (
	AssignmentStatusSent      AssignmentStatus = "sent"
	AssignmentStatusSubmitted AssignmentStatus = "submitted"
	AssignmentStatusGraded    AssignmentStatus = "graded"
)

// Assignment is one filtered assignment as presented to the student.
// Overdue applies only while the assignment is neither submitted nor
// graded.
type Assignment struct {
	ID      string           `json:"id"`
	Title   string           `json:"title"`
	Subject string           `json:"subject,omitempty"`
	Class   string           `json:"class,omitempty"`
	Teacher string           `json:"teacher,omitempty"`
	Status  AssignmentStatus `json:"status"`
	Score   *float64         `json:"score,omitempty"`
	DueDate *time.Time       `json:"dueDate,omitempty"`
	Overdue bool             `json:"overdue"`
}

// LibraryLoan is one library loan record for the student.
type LibraryLoan struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Author     string     `json:"author,omitempty"`
	BorrowedOn *time.Time `json:"borrowedOn,omitempty"`
	DueDate    *time.Time `json:"dueDate,omitempty"`
	Status     string     `json:"status,omitempty"`
}

// EventSource identifies which feed an upcoming event came from.
type EventSource string

const (
	EventSourceCalendar   EventSource = "calendar"
	EventSourceAssignment EventSource = "assignment"
)

// UpcomingEvent is one entry of the merged future-events timeline. ID
// embeds the source so calendar and assignment entries never collide.
type UpcomingEvent struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Date        string      `json:"date"`
	Description string      `json:"description,omitempty"`
	Source      EventSource `json:"source"`
	Location    string      `json:"location,omitempty"`
	Category    string      `json:"category,omitempty"`

	// SortKey is the underlying timestamp used to order the timeline.
	SortKey int64 `json:"-"`
}

// AssignmentInsight aggregates performance over the filtered assignment
// set. AverageScore is nil when no assignment carries a numeric score.
type AssignmentInsight struct {
	Total          int      `json:"total"`
	Submitted      int      `json:"submitted"`
	Graded         int      `json:"graded"`
	Pending        int      `json:"pending"`
	CompletionRate int      `json:"completionRate"`
	AverageScore   *float64 `json:"averageScore"`
}
