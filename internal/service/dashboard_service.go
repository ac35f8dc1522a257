package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/umarmf343/vea-2025-sub005/internal/dto"
	"github.com/umarmf343/vea-2025-sub005/internal/models"
	"github.com/umarmf343/vea-2025-sub005/internal/portal"
	"github.com/umarmf343/vea-2025-sub005/internal/reconcile"
	"github.com/umarmf343/vea-2025-sub005/internal/record"
	appErrors "github.com/umarmf343/vea-2025-sub005/pkg/errors"
)

type portalFetcher interface {
	Profile(ctx context.Context, studentID string) (any, error)
	AcademicRecords(ctx context.Context, studentID string) (any, error)
	Attendance(ctx context.Context, studentID string) (any, error)
	Timetable(ctx context.Context, className string) (any, error)
	Assignments(ctx context.Context, studentID string) (any, error)
	LibraryLoans(ctx context.Context, studentID string) (any, error)
	TeacherAssignments(ctx context.Context, studentID, className string) (any, error)
	PublishedCalendar(ctx context.Context) (any, error)
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL time.Duration
}

// DashboardService composes the reconciled student dashboard from the
// portal's upstream feeds.
type DashboardService struct {
	portal   portalFetcher
	cache    *CacheService
	metrics  *MetricsService
	logger   *zap.Logger
	validate *validator.Validate
	tokens   *reconcile.TokenCache
	insights *reconcile.InsightMemo
	now      func() time.Time
	cfg      DashboardServiceConfig
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Portal   portalFetcher
	Cache    *CacheService
	Metrics  *MetricsService
	Logger   *zap.Logger
	Validate *validator.Validate
	Config   DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	cfg := params.Config
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	validate := params.Validate
	if validate == nil {
		validate = validator.New()
	}
	return &DashboardService{
		portal:   params.Portal,
		cache:    params.Cache,
		metrics:  params.Metrics,
		logger:   logger,
		validate: validate,
		tokens:   reconcile.NewTokenCache(0),
		insights: reconcile.NewInsightMemo(),
		now:      time.Now,
		cfg:      cfg,
	}
}

// sourceSlot holds one upstream fetch outcome. A slot with a non-nil
// error degrades its dashboard section instead of failing the request.
type sourceSlot struct {
	raw any
	err error
}

// Student returns the reconciled dashboard for one student and indicates
// cache utilisation. The fallback profile fills whatever the portal
// profile source cannot provide.
func (s *DashboardService) Student(ctx context.Context, studentID string, fallback models.StudentProfile) (*dto.StudentDashboardResponse, bool, error) {
	if studentID == "" {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "studentId is required")
	}
	if err := s.validate.Var(fallback.Email, "omitempty,email"); err != nil {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "fallback email is not a valid email address")
	}
	if fallback.ID == "" {
		fallback.ID = studentID
	}

	cacheKey := fmt.Sprintf("dash:student:%s", studentID)
	if cached, hit := s.tryCache(ctx, cacheKey); hit {
		return cached, true, nil
	}

	response := s.compose(ctx, studentID, fallback)
	// Degraded payloads are never cached, so a recovered upstream shows
	// up on the next request rather than after TTL expiry.
	if len(response.Degraded) == 0 {
		s.persistCache(ctx, cacheKey, response)
	}
	return response, false, nil
}

// InvalidateStudent drops the cached dashboard for one student.
func (s *DashboardService) InvalidateStudent(ctx context.Context, studentID string) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Invalidate(ctx, fmt.Sprintf("dash:student:%s", studentID))
}

func (s *DashboardService) compose(ctx context.Context, studentID string, fallback models.StudentProfile) *dto.StudentDashboardResponse {
	profileSlot := s.fetch(ctx, portal.SourceProfile, func(ctx context.Context) (any, error) {
		return s.portal.Profile(ctx, studentID)
	})
	profile := reconcile.ResolveProfile(profileSlot.raw, fallback)

	var academic, attendance, timetable, assignments, library, teacherDirectory, calendar sourceSlot

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		academic = s.fetch(gctx, portal.SourceAcademicRecords, func(ctx context.Context) (any, error) {
			return s.portal.AcademicRecords(ctx, studentID)
		})
		return nil
	})
	g.Go(func() error {
		attendance = s.fetch(gctx, portal.SourceAttendance, func(ctx context.Context) (any, error) {
			return s.portal.Attendance(ctx, studentID)
		})
		return nil
	})
	g.Go(func() error {
		timetable = s.fetch(gctx, portal.SourceTimetable, func(ctx context.Context) (any, error) {
			return s.portal.Timetable(ctx, profile.Class)
		})
		return nil
	})
	g.Go(func() error {
		assignments = s.fetch(gctx, portal.SourceAssignments, func(ctx context.Context) (any, error) {
			return s.portal.Assignments(ctx, studentID)
		})
		return nil
	})
	g.Go(func() error {
		library = s.fetch(gctx, portal.SourceLibraryLoans, func(ctx context.Context) (any, error) {
			return s.portal.LibraryLoans(ctx, studentID)
		})
		return nil
	})
	g.Go(func() error {
		teacherDirectory = s.fetch(gctx, portal.SourceTeacherAssignments, func(ctx context.Context) (any, error) {
			return s.portal.TeacherAssignments(ctx, studentID, profile.Class)
		})
		return nil
	})
	g.Go(func() error {
		calendar = s.fetch(gctx, portal.SourceCalendar, func(ctx context.Context) (any, error) {
			return s.portal.PublishedCalendar(ctx)
		})
		return nil
	})
	_ = g.Wait()

	reconcileStart := time.Now()
	now := s.now()

	subjectRecords := record.Normalize(academic.raw)
	slotRecords := record.Normalize(timetable.raw)
	assignmentRecords := record.Normalize(assignments.raw)

	known := reconcile.KnownTeacherTokens(s.tokens, subjectRecords, slotRecords, teacherDirectory.raw)
	visible := reconcile.FilterAssignments(s.tokens, assignmentRecords, known, profile.Class)
	assignmentViews := reconcile.AssignmentViews(visible, now)

	degraded := make([]string, 0)
	for _, probe := range []struct {
		source string
		slot   sourceSlot
	}{
		{portal.SourceProfile, profileSlot},
		{portal.SourceAcademicRecords, academic},
		{portal.SourceAttendance, attendance},
		{portal.SourceTimetable, timetable},
		{portal.SourceAssignments, assignments},
		{portal.SourceLibraryLoans, library},
		{portal.SourceTeacherAssignments, teacherDirectory},
		{portal.SourceCalendar, calendar},
	} {
		if probe.slot.err != nil {
			degraded = append(degraded, probe.source)
		}
	}

	response := &dto.StudentDashboardResponse{
		Profile:     profile,
		Subjects:    reconcile.SubjectViews(subjectRecords),
		Attendance:  reconcile.ReconcileAttendance(attendance.raw, models.AttendanceSummary{}),
		Timetable:   reconcile.TimetableViews(slotRecords),
		Assignments: assignmentViews,
		Insight:     s.insights.Insight(assignmentViews),
		Library:     reconcile.LoanViews(record.Normalize(library.raw)),
		Events:      reconcile.UpcomingEvents(record.Normalize(calendar.raw), assignmentViews, now),
		Degraded:    degraded,
		GeneratedAt: now.UTC(),
	}
	if s.metrics != nil {
		s.metrics.ObserveReconcile(time.Since(reconcileStart))
	}
	return response
}

func (s *DashboardService) fetch(ctx context.Context, source string, call func(context.Context) (any, error)) sourceSlot {
	start := time.Now()
	raw, err := call(ctx)
	if s.metrics != nil {
		s.metrics.ObservePortalFetch(source, err, time.Since(start))
	}
	if err != nil {
		s.logger.Warn("portal fetch failed", zap.String("source", source), zap.Error(err))
	}
	return sourceSlot{raw: raw, err: err}
}

func (s *DashboardService) tryCache(ctx context.Context, key string) (*dto.StudentDashboardResponse, bool) {
	if s.cache == nil {
		return nil, false
	}
	var cached dto.StudentDashboardResponse
	if s.cache.Get(ctx, key, &cached) {
		return &cached, true
	}
	return nil, false
}

func (s *DashboardService) persistCache(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("dashboard cache write failed", zap.String("key", key), zap.Error(err))
	}
}
