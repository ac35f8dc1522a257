package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/umarmf343/vea-2025-sub005/internal/models"
	appErrors "github.com/umarmf343/vea-2025-sub005/pkg/errors"
)

const reportJobKeyPrefix = "report:job:"

// ReportJobRepository persists report job metadata in Redis. Records carry
// a TTL so finished and failed jobs age out without a dedicated sweeper;
// only the rendered files on disk need periodic cleanup.
type ReportJobRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewReportJobRepository constructs the repository.
func NewReportJobRepository(client *redis.Client, ttl time.Duration) *ReportJobRepository {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &ReportJobRepository{client: client, ttl: ttl}
}

func reportJobKey(id string) string {
	return reportJobKeyPrefix + id
}

// Create stores a new job record with generated defaults.
func (r *ReportJobRepository) Create(ctx context.Context, job *models.ReportJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.Status == "" {
		job.Status = models.ReportStatusQueued
	}
	now := time.Now().UTC()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	job.UpdatedAt = now
	return r.save(ctx, job, r.ttl)
}

// GetByID returns a job record by its identifier.
func (r *ReportJobRepository) GetByID(ctx context.Context, id string) (*models.ReportJob, error) {
	key := reportJobKey(id)
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, appErrors.ErrNotFound
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}

	var job models.ReportJob
	if err := json.Unmarshal(raw, &job); err != nil {
		return nil, fmt.Errorf("unmarshal report job %s: %w", id, err)
	}
	return &job, nil
}

// UpdateReportJobParams defines the mutable fields.
type UpdateReportJobParams struct {
	Status       *models.ReportStatus
	Progress     *int
	ResultURL    *string
	ErrorMessage *string
	FinishedAt   *time.Time
}

// Update applies the provided changes to a stored job. The record keeps
// its remaining TTL so an update never extends a job's lifetime.
func (r *ReportJobRepository) Update(ctx context.Context, id string, params UpdateReportJobParams) error {
	job, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if params.Status != nil {
		job.Status = *params.Status
	}
	if params.Progress != nil {
		job.Progress = *params.Progress
	}
	if params.ResultURL != nil {
		job.ResultURL = params.ResultURL
	}
	if params.ErrorMessage != nil {
		if *params.ErrorMessage == "" {
			job.ErrorMessage = nil
		} else {
			job.ErrorMessage = params.ErrorMessage
		}
	}
	if params.FinishedAt != nil {
		job.FinishedAt = params.FinishedAt
	}
	job.UpdatedAt = time.Now().UTC()

	return r.save(ctx, job, redis.KeepTTL)
}

// ListQueued scans for jobs still in the queued state, oldest first
// (used for cold start recovery).
func (r *ReportJobRepository) ListQueued(ctx context.Context, limit int) ([]models.ReportJob, error) {
	if limit <= 0 {
		limit = 20
	}

	pattern := reportJobKeyPrefix + "*"
	jobs := make([]models.ReportJob, 0)
	iter := r.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		raw, err := r.client.Get(ctx, key).Bytes()
		if err != nil {
			if err == redis.Nil {
				continue
			}
			return nil, fmt.Errorf("redis get %s: %w", key, err)
		}
		var job models.ReportJob
		if err := json.Unmarshal(raw, &job); err != nil {
			return nil, fmt.Errorf("unmarshal report job %s: %w", key, err)
		}
		if job.Status != models.ReportStatusQueued {
			continue
		}
		jobs = append(jobs, job)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan pattern %s: %w", pattern, err)
	}

	sort.Slice(jobs, func(i, j int) bool { return jobs[i].CreatedAt.Before(jobs[j].CreatedAt) })
	if len(jobs) > limit {
		jobs = jobs[:limit]
	}
	return jobs, nil
}

func (r *ReportJobRepository) save(ctx context.Context, job *models.ReportJob, ttl time.Duration) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal report job %s: %w", job.ID, err)
	}
	key := reportJobKey(job.ID)
	if err := r.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
