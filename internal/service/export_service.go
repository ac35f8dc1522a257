package service

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/umarmf343/vea-2025-sub005/internal/dto"
	"github.com/umarmf343/vea-2025-sub005/internal/models"
	"github.com/umarmf343/vea-2025-sub005/pkg/export"
	"github.com/umarmf343/vea-2025-sub005/pkg/storage"
)

type dashboardProvider interface {
	Student(ctx context.Context, studentID string, fallback models.StudentProfile) (*dto.StudentDashboardResponse, bool, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type datasetRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ReportFormat
	ExpiresAt    time.Time
}

// ExportService turns a report job into a downloadable file: it reconciles
// the student's dashboard fresh, projects it into the dataset the job asks
// for, renders CSV or PDF and stores the result behind a signed URL.
type ExportService struct {
	dashboards dashboardProvider
	storage    fileStorage
	renderers  map[models.ReportFormat]datasetRenderer
	signer     *storage.SignedURLSigner
	logger     *zap.Logger
	cfg        ExportConfig
	now        func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers fall back to
// the stock CSV and PDF exporters.
func NewExportService(dashboards dashboardProvider, store fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, csv, pdf datasetRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		dashboards: dashboards,
		storage:    store,
		renderers: map[models.ReportFormat]datasetRenderer{
			models.ReportFormatCSV: csv,
			models.ReportFormatPDF: pdf,
		},
		signer: signer,
		logger: logger,
		cfg:    cfg,
		now:    time.Now,
	}
}

// Generate produces and stores the export for one job.
func (s *ExportService) Generate(ctx context.Context, job *models.ReportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("export: nil job")
	}
	renderer, ok := s.renderers[job.Format]
	if !ok {
		return nil, fmt.Errorf("export: unsupported format %s", job.Format)
	}
	dashboard, _, err := s.dashboards.Student(ctx, job.StudentID, models.StudentProfile{})
	if err != nil {
		return nil, err
	}

	dataset, err := s.datasetFor(job, dashboard)
	if err != nil {
		return nil, err
	}
	payload, err := renderer.Render(dataset)
	if err != nil {
		return nil, err
	}

	relPath, err := s.storage.Save(s.exportFilename(job), payload)
	if err != nil {
		return nil, err
	}
	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}

	s.logger.Sugar().Infow("export rendered",
		"job_id", job.ID, "type", job.Type, "format", job.Format,
		"bytes", len(payload), "path", relPath)

	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          s.downloadURL(token),
		Format:       job.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup sweeps files older than ttl, defaulting to the configured ResultTTL.
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) downloadURL(token string) string {
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	return prefix + "/export/" + token
}

func (s *ExportService) exportFilename(job *models.ReportJob) string {
	stamp := s.now().UTC().Format("20060102_150405")
	return fmt.Sprintf("%s_%s_%s.%s",
		strings.ToLower(string(job.Type)), safeFilePart(job.StudentID), stamp, job.Format)
}

// safeFilePart reduces user-controlled input to a filename-safe slug.
func safeFilePart(raw string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.ToLower(raw) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	slug := strings.Trim(b.String(), "_")
	if slug == "" {
		return "student"
	}
	if len(slug) > 80 {
		slug = slug[:80]
	}
	return slug
}

func (s *ExportService) datasetFor(job *models.ReportJob, dashboard *dto.StudentDashboardResponse) (export.Dataset, error) {
	owner := dashboard.Profile.Name
	if owner == "" {
		owner = job.StudentID
	}
	var ds export.Dataset
	switch job.Type {
	case models.ReportTypeDashboard:
		ds = summaryDataset(dashboard)
		ds.Title = "Student Dashboard Summary - " + owner
	case models.ReportTypeAssignments:
		ds = assignmentsDataset(dashboard.Assignments)
		ds.Title = "Assignment Report - " + owner
	case models.ReportTypeEvents:
		ds = eventsDataset(dashboard.Events)
		ds.Title = "Upcoming Events - " + owner
	default:
		return export.Dataset{}, fmt.Errorf("export: unsupported report type %s", job.Type)
	}
	ds.GeneratedAt = s.now().UTC()
	return ds, nil
}

// summaryDataset flattens the whole dashboard into section/metric/value rows
// so a single sheet can answer "how is this student doing".
func summaryDataset(dashboard *dto.StudentDashboardResponse) export.Dataset {
	degraded := "none"
	if len(dashboard.Degraded) > 0 {
		degraded = strings.Join(dashboard.Degraded, ", ")
	}
	insight := dashboard.Insight
	attendance := dashboard.Attendance

	var rows []export.Row
	add := func(section, metric, value string) {
		rows = append(rows, export.Row{"Section": section, "Metric": metric, "Value": value})
	}
	add("Profile", "Name", dashboard.Profile.Name)
	add("Profile", "Class", dashboard.Profile.Class)
	add("Profile", "Email", dashboard.Profile.Email)
	add("Profile", "Admission No", dashboard.Profile.AdmissionNumber)
	add("Attendance", "Days Present", strconv.Itoa(attendance.Present))
	add("Attendance", "Days Total", strconv.Itoa(attendance.Total))
	add("Attendance", "Rate (%)", strconv.Itoa(attendance.Percentage))
	add("Assignments", "Total", strconv.Itoa(insight.Total))
	add("Assignments", "Submitted", strconv.Itoa(insight.Submitted))
	add("Assignments", "Graded", strconv.Itoa(insight.Graded))
	add("Assignments", "Pending", strconv.Itoa(insight.Pending))
	add("Assignments", "Completion (%)", strconv.Itoa(insight.CompletionRate))
	add("Assignments", "Average Score", scoreCell(insight.AverageScore))
	add("Subjects", "Recorded", strconv.Itoa(len(dashboard.Subjects)))
	add("Library", "Books On Loan", strconv.Itoa(len(dashboard.Library)))
	add("Events", "Upcoming", strconv.Itoa(len(dashboard.Events)))
	add("Sources", "Degraded", degraded)

	return export.Dataset{Columns: []string{"Section", "Metric", "Value"}, Rows: rows}
}

func assignmentsDataset(assignments []models.Assignment) export.Dataset {
	rows := make([]export.Row, 0, len(assignments))
	for _, a := range assignments {
		rows = append(rows, export.Row{
			"Title":    a.Title,
			"Subject":  a.Subject,
			"Teacher":  a.Teacher,
			"Status":   string(a.Status),
			"Score":    scoreCell(a.Score),
			"Due Date": dateCell(a.DueDate),
			"Overdue":  yesNo(a.Overdue),
		})
	}
	return export.Dataset{
		Columns: []string{"Title", "Subject", "Teacher", "Status", "Score", "Due Date", "Overdue"},
		Rows:    rows,
	}
}

func eventsDataset(events []models.UpcomingEvent) export.Dataset {
	rows := make([]export.Row, 0, len(events))
	for _, event := range events {
		rows = append(rows, export.Row{
			"Title":       event.Title,
			"Date":        event.Date,
			"Source":      string(event.Source),
			"Category":    event.Category,
			"Location":    event.Location,
			"Description": event.Description,
		})
	}
	return export.Dataset{
		Columns: []string{"Title", "Date", "Source", "Category", "Location", "Description"},
		Rows:    rows,
	}
}

func scoreCell(score *float64) string {
	if score == nil {
		return ""
	}
	return strconv.FormatFloat(*score, 'f', -1, 64)
}

func dateCell(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format("2006-01-02")
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
