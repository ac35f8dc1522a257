package dto

import "github.com/umarmf343/vea-2025-sub005/internal/models"

// CreateReportRequest is the body of POST /students/:studentId/reports.
// Type and format are closed sets; anything else is rejected before a job
// record exists.
type CreateReportRequest struct {
	Type   models.ReportType   `json:"type" validate:"required,oneof=dashboard assignments events"`
	Format models.ReportFormat `json:"format" validate:"required,oneof=csv pdf"`
}

// ReportJobResponse acknowledges an accepted export job.
type ReportJobResponse struct {
	ID       string              `json:"id"`
	Status   models.ReportStatus `json:"status"`
	Progress int                 `json:"progress"`
}

// ReportStatusResponse is the polling payload. ResultURL appears once the
// job finishes; Error once it has failed for good.
type ReportStatusResponse struct {
	ID        string              `json:"id"`
	Status    models.ReportStatus `json:"status"`
	Progress  int                 `json:"progress"`
	ResultURL *string             `json:"resultUrl,omitempty"`
	Error     *string             `json:"error,omitempty"`
}
