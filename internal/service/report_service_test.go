package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/umarmf343/vea-2025-sub005/internal/dto"
	"github.com/umarmf343/vea-2025-sub005/internal/models"
	"github.com/umarmf343/vea-2025-sub005/internal/repository"
	appErrors "github.com/umarmf343/vea-2025-sub005/pkg/errors"
	"github.com/umarmf343/vea-2025-sub005/pkg/jobs"
)

// memJobStore keeps report jobs in a map so tests can watch every
// transition the service writes.
type memJobStore struct {
	seq  int
	byID map[string]*models.ReportJob
}

func newMemJobStore() *memJobStore {
	return &memJobStore{byID: map[string]*models.ReportJob{}}
}

func (s *memJobStore) add(job *models.ReportJob) *models.ReportJob {
	s.byID[job.ID] = job
	return job
}

func (s *memJobStore) Create(_ context.Context, job *models.ReportJob) error {
	s.seq++
	if job.ID == "" {
		job.ID = fmt.Sprintf("job-%03d", s.seq)
	}
	s.byID[job.ID] = job
	return nil
}

func (s *memJobStore) GetByID(_ context.Context, id string) (*models.ReportJob, error) {
	rec, ok := s.byID[id]
	if !ok {
		return nil, appErrors.ErrNotFound
	}
	return rec, nil
}

func (s *memJobStore) Update(_ context.Context, id string, params repository.UpdateReportJobParams) error {
	rec, ok := s.byID[id]
	if !ok {
		return appErrors.ErrNotFound
	}
	if params.Status != nil {
		rec.Status = *params.Status
	}
	if params.Progress != nil {
		rec.Progress = *params.Progress
	}
	if params.ResultURL != nil {
		rec.ResultURL = params.ResultURL
	}
	if params.ErrorMessage != nil {
		rec.ErrorMessage = params.ErrorMessage
	}
	if params.FinishedAt != nil {
		rec.FinishedAt = params.FinishedAt
	}
	return nil
}

func (s *memJobStore) ListQueued(_ context.Context, limit int) ([]models.ReportJob, error) {
	due := make([]models.ReportJob, 0, len(s.byID))
	for _, rec := range s.byID {
		if rec.Status != models.ReportStatusQueued {
			continue
		}
		due = append(due, *rec)
		if limit > 0 && len(due) == limit {
			break
		}
	}
	return due, nil
}

// captureDispatcher records enqueued jobs instead of running them.
type captureDispatcher struct {
	sent []jobs.Job
	fail error
}

func (d *captureDispatcher) Enqueue(job jobs.Job) error {
	if d.fail != nil {
		return d.fail
	}
	d.sent = append(d.sent, job)
	return nil
}

type stubGenerator struct {
	result *ExportResult
	fail   error
}

func (g stubGenerator) Generate(context.Context, *models.ReportJob) (*ExportResult, error) {
	return g.result, g.fail
}

type reportStack struct {
	svc      *ReportService
	store    *memJobStore
	dispatch *captureDispatcher
	exports  *ExportService
}

func newReportStack(t *testing.T) reportStack {
	t.Helper()
	store := newMemJobStore()
	dispatch := &captureDispatcher{}
	exports, _ := newExportServiceForTest(t)
	svc := NewReportService(store, dispatch, exports, nil, zap.NewNop(), ReportServiceConfig{
		ResultTTL:       2 * time.Hour,
		CleanupInterval: time.Hour,
		MaxRetries:      3,
	})
	return reportStack{svc: svc, store: store, dispatch: dispatch, exports: exports}
}

func TestReportServiceCreateJobQueuesWork(t *testing.T) {
	st := newReportStack(t)

	resp, err := st.svc.CreateJob(context.Background(), "stu-204", dto.CreateReportRequest{
		Type:   models.ReportTypeDashboard,
		Format: models.ReportFormatPDF,
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.ID)
	assert.Equal(t, models.ReportStatusQueued, resp.Status)
	assert.Equal(t, 0, resp.Progress)

	require.Len(t, st.dispatch.sent, 1)
	assert.Equal(t, resp.ID, st.dispatch.sent[0].ID)
	assert.Equal(t, "dashboard", st.dispatch.sent[0].Type)

	stored := st.store.byID[resp.ID]
	require.NotNil(t, stored)
	assert.Equal(t, "stu-204", stored.StudentID)
	assert.Equal(t, models.ReportFormatPDF, stored.Format)
}

func TestReportServiceCreateJobRejectsBadInput(t *testing.T) {
	st := newReportStack(t)

	cases := []struct {
		name    string
		student string
		req     dto.CreateReportRequest
	}{
		{"missing student", "", dto.CreateReportRequest{Type: models.ReportTypeDashboard, Format: models.ReportFormatCSV}},
		{"unknown type", "stu-204", dto.CreateReportRequest{Type: "grades", Format: models.ReportFormatCSV}},
		{"unknown format", "stu-204", dto.CreateReportRequest{Type: models.ReportTypeEvents, Format: "xlsx"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := st.svc.CreateJob(context.Background(), tc.student, tc.req)
			require.Error(t, err)
			assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
		})
	}
	assert.Empty(t, st.dispatch.sent)
}

func TestReportServiceCreateJobSurfacesDispatchFailure(t *testing.T) {
	st := newReportStack(t)
	st.dispatch.fail = errors.New("queue full")

	_, err := st.svc.CreateJob(context.Background(), "stu-204", dto.CreateReportRequest{
		Type:   models.ReportTypeDashboard,
		Format: models.ReportFormatCSV,
	})
	require.Error(t, err)

	require.Len(t, st.store.byID, 1)
	for _, rec := range st.store.byID {
		assert.Equal(t, models.ReportStatusFailed, rec.Status)
		require.NotNil(t, rec.ErrorMessage)
	}
}

func TestReportServiceGetStatus(t *testing.T) {
	st := newReportStack(t)
	st.store.add(&models.ReportJob{
		ID:        "job-wip",
		StudentID: "stu-204",
		Type:      models.ReportTypeAssignments,
		Format:    models.ReportFormatCSV,
		Status:    models.ReportStatusProcessing,
		Progress:  10,
	})

	resp, err := st.svc.GetStatus(context.Background(), "job-wip")
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusProcessing, resp.Status)
	assert.Equal(t, 10, resp.Progress)

	_, err = st.svc.GetStatus(context.Background(), "job-gone")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestReportServiceDownloadRoundTrip(t *testing.T) {
	st := newReportStack(t)
	job := st.store.add(&models.ReportJob{
		ID:        "job-done",
		StudentID: "stu-204",
		Type:      models.ReportTypeDashboard,
		Format:    models.ReportFormatCSV,
		Status:    models.ReportStatusFinished,
		Progress:  100,
	})

	result, err := st.exports.Generate(context.Background(), job)
	require.NoError(t, err)
	job.ResultURL = &result.URL
	finished := time.Now()
	job.FinishedAt = &finished

	download, err := st.svc.ResolveDownload(context.Background(), result.Token)
	require.NoError(t, err)
	defer download.File.Close()
	assert.Equal(t, filepath.Base(result.RelativePath), download.Filename)
	assert.Equal(t, models.ReportFormatCSV, download.Format)
	assert.False(t, download.ExpiresAt.IsZero())
}

func TestReportServiceDownloadRefusedUntilFinished(t *testing.T) {
	st := newReportStack(t)
	job := st.store.add(&models.ReportJob{
		ID:        "job-wip",
		StudentID: "stu-204",
		Type:      models.ReportTypeDashboard,
		Format:    models.ReportFormatCSV,
		Status:    models.ReportStatusProcessing,
	})

	result, err := st.exports.Generate(context.Background(), job)
	require.NoError(t, err)
	job.ResultURL = &result.URL

	_, err = st.svc.ResolveDownload(context.Background(), result.Token)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestReportServiceRecoverPendingJobs(t *testing.T) {
	st := newReportStack(t)
	st.store.add(&models.ReportJob{ID: "job-stuck", Type: models.ReportTypeEvents, Status: models.ReportStatusQueued})
	st.store.add(&models.ReportJob{ID: "job-done", Type: models.ReportTypeEvents, Status: models.ReportStatusFinished})

	st.svc.RecoverPendingJobs(context.Background())

	require.Len(t, st.dispatch.sent, 1)
	assert.Equal(t, "job-stuck", st.dispatch.sent[0].ID)
}

func seedWorkerStore(t *testing.T) *memJobStore {
	t.Helper()
	store := newMemJobStore()
	store.add(&models.ReportJob{
		ID:        "job-w1",
		StudentID: "stu-204",
		Type:      models.ReportTypeDashboard,
		Format:    models.ReportFormatCSV,
		Status:    models.ReportStatusQueued,
	})
	return store
}

func TestReportWorkerFinishesJob(t *testing.T) {
	store := seedWorkerStore(t)
	gen := stubGenerator{result: &ExportResult{URL: "/api/v1/export/tok-w1"}}
	worker := NewReportWorker(store, gen, 3, zap.NewNop())

	require.NoError(t, worker.Handle(context.Background(), jobs.Job{ID: "job-w1"}))

	rec := store.byID["job-w1"]
	assert.Equal(t, models.ReportStatusFinished, rec.Status)
	assert.Equal(t, 100, rec.Progress)
	require.NotNil(t, rec.ResultURL)
	assert.Equal(t, "/api/v1/export/tok-w1", *rec.ResultURL)
}

func TestReportWorkerRequeuesOnFailure(t *testing.T) {
	store := seedWorkerStore(t)
	gen := stubGenerator{fail: errors.New("exporter offline")}
	worker := NewReportWorker(store, gen, 2, zap.NewNop())

	err := worker.Handle(context.Background(), jobs.Job{ID: "job-w1"})
	require.Error(t, err)

	rec := store.byID["job-w1"]
	assert.Equal(t, models.ReportStatusQueued, rec.Status)
	require.NotNil(t, rec.ErrorMessage)
	assert.Contains(t, *rec.ErrorMessage, "exporter offline")
}

func TestReportWorkerGivesUpAfterRetryBudget(t *testing.T) {
	store := seedWorkerStore(t)
	gen := stubGenerator{fail: errors.New("exporter offline")}
	worker := NewReportWorker(store, gen, 2, zap.NewNop())

	err := worker.Handle(context.Background(), jobs.Job{ID: "job-w1", Attempt: 2})
	require.Error(t, err)

	rec := store.byID["job-w1"]
	assert.Equal(t, models.ReportStatusFailed, rec.Status)
	require.NotNil(t, rec.FinishedAt)
}
