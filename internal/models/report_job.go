package models

import "time"

// ReportType enumerates supported asynchronous report categories.
type ReportType string

const (
	ReportTypeDashboard   ReportType = "dashboard"
	ReportTypeAssignments ReportType = "assignments"
	ReportTypeEvents      ReportType = "events"
)

// ReportFormat enumerates supported export formats.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

// ReportStatus captures background job lifecycle states.
type ReportStatus string

const (
	ReportStatusQueued     ReportStatus = "QUEUED"
	ReportStatusProcessing ReportStatus = "PROCESSING"
	ReportStatusFinished   ReportStatus = "FINISHED"
	ReportStatusFailed     ReportStatus = "FAILED"
)

// ReportJob tracks one background export request. Job records live in
// Redis with a TTL; the rendered file on disk is the artifact the signed
// download URL points at.
type ReportJob struct {
	ID           string       `json:"id"`
	StudentID    string       `json:"studentId"`
	Type         ReportType   `json:"type"`
	Format       ReportFormat `json:"format"`
	Status       ReportStatus `json:"status"`
	Progress     int          `json:"progress"`
	ResultURL    *string      `json:"resultUrl,omitempty"`
	ErrorMessage *string      `json:"errorMessage,omitempty"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
	FinishedAt   *time.Time   `json:"finishedAt,omitempty"`
}
