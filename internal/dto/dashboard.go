package dto

import (
	"time"

	"github.com/umarmf343/vea-2025-sub005/internal/models"
)

// StudentDashboardResponse aggregates every reconciled dashboard section
// for one student. Degraded lists the upstream sources that failed while
// the rest of the payload was still assembled.
type StudentDashboardResponse struct {
	Profile     models.StudentProfile    `json:"profile"`
	Subjects    []models.SubjectRecord   `json:"subjects"`
	Attendance  models.AttendanceSummary `json:"attendance"`
	Timetable   []models.TimetableSlot   `json:"timetable"`
	Assignments []models.Assignment      `json:"assignments"`
	Insight     models.AssignmentInsight `json:"insight"`
	Library     []models.LibraryLoan     `json:"library"`
	Events      []models.UpcomingEvent   `json:"events"`
	Degraded    []string                 `json:"degraded,omitempty"`
	GeneratedAt time.Time                `json:"generatedAt"`
}
