package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/umarmf343/vea-2025-sub005/internal/dto"
	"github.com/umarmf343/vea-2025-sub005/internal/models"
	"github.com/umarmf343/vea-2025-sub005/internal/repository"
	appErrors "github.com/umarmf343/vea-2025-sub005/pkg/errors"
	"github.com/umarmf343/vea-2025-sub005/pkg/jobs"
)

// Job progress checkpoints surfaced to polling clients.
const (
	progressQueued  = 0
	progressClaimed = 10
	progressDone    = 100
)

const recoverBatch = 50

type reportJobStore interface {
	Create(ctx context.Context, job *models.ReportJob) error
	GetByID(ctx context.Context, id string) (*models.ReportJob, error)
	Update(ctx context.Context, id string, params repository.UpdateReportJobParams) error
	ListQueued(ctx context.Context, limit int) ([]models.ReportJob, error)
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

type exportGenerator interface {
	Generate(ctx context.Context, job *models.ReportJob) (*ExportResult, error)
}

// ReportService owns the report job lifecycle: accepting requests, handing
// them to the queue, answering status polls and resolving signed downloads.
type ReportService struct {
	store     reportJobStore
	queue     jobDispatcher
	exporter  *ExportService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ReportServiceConfig
}

// ReportServiceConfig governs recovery and cleanup cadence.
type ReportServiceConfig struct {
	ResultTTL       time.Duration
	CleanupInterval time.Duration
	MaxRetries      int
}

func (c ReportServiceConfig) withDefaults() ReportServiceConfig {
	if c.ResultTTL <= 0 {
		c.ResultTTL = 24 * time.Hour
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	return c
}

// ReportDownload is a resolved, ready-to-stream export file.
type ReportDownload struct {
	File      *os.File
	Filename  string
	Format    models.ReportFormat
	ExpiresAt time.Time
}

// NewReportService constructs the report service.
func NewReportService(store reportJobStore, queue jobDispatcher, exporter *ExportService, validate *validator.Validate, logger *zap.Logger, cfg ReportServiceConfig) *ReportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		store:     store,
		queue:     queue,
		exporter:  exporter,
		validator: validate,
		logger:    logger,
		cfg:       cfg.withDefaults(),
	}
}

// claimTicket is the queue entry for a job. It carries identity only; the
// job record in the store stays the source of truth.
func claimTicket(job *models.ReportJob) jobs.Job {
	return jobs.Job{ID: job.ID, Type: string(job.Type)}
}

func ptr[T any](v T) *T { return &v }

func claimPatch() repository.UpdateReportJobParams {
	return repository.UpdateReportJobParams{
		Status:   ptr(models.ReportStatusProcessing),
		Progress: ptr(progressClaimed),
	}
}

func requeuePatch(cause string) repository.UpdateReportJobParams {
	return repository.UpdateReportJobParams{
		Status:       ptr(models.ReportStatusQueued),
		Progress:     ptr(progressQueued),
		ErrorMessage: &cause,
	}
}

func failPatch(cause string) repository.UpdateReportJobParams {
	return repository.UpdateReportJobParams{
		Status:       ptr(models.ReportStatusFailed),
		Progress:     ptr(progressDone),
		ErrorMessage: &cause,
		FinishedAt:   ptr(time.Now().UTC()),
	}
}

func donePatch(url string) repository.UpdateReportJobParams {
	return repository.UpdateReportJobParams{
		Status:       ptr(models.ReportStatusFinished),
		Progress:     ptr(progressDone),
		ResultURL:    &url,
		ErrorMessage: ptr(""),
		FinishedAt:   ptr(time.Now().UTC()),
	}
}

// CreateJob validates the request, persists the job record and queues it.
// A job that cannot be queued is immediately marked failed so the client
// never polls a record nothing will ever pick up.
func (s *ReportService) CreateJob(ctx context.Context, studentID string, req dto.CreateReportRequest) (*dto.ReportJobResponse, error) {
	if studentID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "studentId is required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid report request")
	}

	job := &models.ReportJob{
		StudentID: studentID,
		Type:      req.Type,
		Format:    req.Format,
		Status:    models.ReportStatusQueued,
		Progress:  progressQueued,
	}
	if err := s.store.Create(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not persist report job")
	}
	if err := s.queue.Enqueue(claimTicket(job)); err != nil {
		if updateErr := s.store.Update(ctx, job.ID, failPatch("failed to enqueue job")); updateErr != nil {
			s.logger.Sugar().Warnw("could not mark unqueued job failed", "job_id", job.ID, "error", updateErr)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not queue report job")
	}

	s.logger.Sugar().Infow("report job queued",
		"job_id", job.ID, "student_id", studentID, "type", job.Type, "format", job.Format)
	return &dto.ReportJobResponse{
		ID:       job.ID,
		Status:   job.Status,
		Progress: job.Progress,
	}, nil
}

// GetStatus answers a status poll.
func (s *ReportService) GetStatus(ctx context.Context, id string) (*dto.ReportStatusResponse, error) {
	job, err := s.loadJob(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := &dto.ReportStatusResponse{
		ID:        job.ID,
		Status:    job.Status,
		Progress:  job.Progress,
		ResultURL: job.ResultURL,
	}
	if msg := job.ErrorMessage; msg != nil && *msg != "" {
		resp.Error = msg
	}
	return resp, nil
}

// ResolveDownload turns a signed token back into an open file. The token
// must verify, still belong to the job it names, and the job must actually
// be finished.
func (s *ReportService) ResolveDownload(ctx context.Context, token string) (*ReportDownload, error) {
	jobID, relPath, expiresAt, err := s.exporter.ParseToken(token, false)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "download token is invalid or expired")
	}
	job, err := s.loadJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	owned := job.ResultURL != nil && strings.HasSuffix(*job.ResultURL, token)
	if !owned {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "token does not match this report")
	}
	if job.Status != models.ReportStatusFinished {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "report is not ready")
	}
	file, err := s.exporter.Open(relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not open export file")
	}
	return &ReportDownload{
		File:      file,
		Filename:  filepath.Base(relPath),
		Format:    job.Format,
		ExpiresAt: expiresAt,
	}, nil
}

func (s *ReportService) loadJob(ctx context.Context, id string) (*models.ReportJob, error) {
	job, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, appErrors.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "report job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not load report job")
	}
	return job, nil
}

// RecoverPendingJobs requeues jobs left in the queued state by an earlier
// process. The in-memory queue forgets its buffer on restart; the store
// does not.
func (s *ReportService) RecoverPendingJobs(ctx context.Context) {
	pending, err := s.store.ListQueued(ctx, recoverBatch)
	if err != nil {
		s.logger.Sugar().Warnw("failed to list queued report jobs", "error", err)
		return
	}
	recovered := 0
	for _, job := range pending {
		if err := s.queue.Enqueue(claimTicket(&job)); err != nil {
			s.logger.Sugar().Warnw("could not requeue job left from last run", "job_id", job.ID, "error", err)
			continue
		}
		recovered++
	}
	if recovered > 0 {
		s.logger.Sugar().Infow("recovered pending report jobs", "count", recovered)
	}
}

// StartCleanup runs a periodic sweep of rendered files past their TTL. Job
// records age out of the store on their own; only the filesystem needs help.
func (s *ReportService) StartCleanup(ctx context.Context) {
	if s.cfg.CleanupInterval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(s.cfg.CleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				removed, err := s.exporter.Cleanup(s.cfg.ResultTTL)
				if err != nil {
					s.logger.Sugar().Warnw("export cleanup failed", "error", err)
					continue
				}
				if len(removed) > 0 {
					s.logger.Sugar().Infow("expired exports removed", "count", len(removed))
				}
			}
		}
	}()
}

// ReportWorker is the queue handler that walks one job through
// claim, render and finish.
type ReportWorker struct {
	store       reportJobStore
	exporter    exportGenerator
	logger      *zap.Logger
	retryBudget int
}

// NewReportWorker constructs a worker.
func NewReportWorker(store reportJobStore, exporter exportGenerator, maxRetries int, logger *zap.Logger) *ReportWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &ReportWorker{
		store:       store,
		exporter:    exporter,
		logger:      logger,
		retryBudget: maxRetries,
	}
}

// Handle processes one queue entry. The returned error drives the queue's
// retry schedule; the job record is updated here either way.
func (w *ReportWorker) Handle(ctx context.Context, queued jobs.Job) error {
	job, err := w.store.GetByID(ctx, queued.ID)
	if err != nil {
		return err
	}
	if err := w.store.Update(ctx, job.ID, claimPatch()); err != nil {
		return err
	}

	result, err := w.exporter.Generate(ctx, job)
	if err != nil {
		w.recordFailure(ctx, job.ID, queued.Attempt, err)
		return err
	}

	if err := w.store.Update(ctx, job.ID, donePatch(result.URL)); err != nil {
		w.logger.Sugar().Warnw("failed to mark report finished", "job_id", job.ID, "error", err)
		return err
	}
	w.logger.Sugar().Infow("report job finished", "job_id", job.ID, "url", result.URL)
	return nil
}

// recordFailure writes the render error onto the job: back to queued while
// attempts remain, terminally failed once the budget is spent.
func (w *ReportWorker) recordFailure(ctx context.Context, jobID string, attempt int, cause error) {
	patch := requeuePatch(cause.Error())
	if attempt >= w.retryBudget {
		patch = failPatch(cause.Error())
	}
	if err := w.store.Update(ctx, jobID, patch); err != nil {
		w.logger.Sugar().Warnw("failed to record job failure", "job_id", jobID, "error", err)
	}
}
