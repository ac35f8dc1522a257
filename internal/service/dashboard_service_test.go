package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/umarmf343/vea-2025-sub005/internal/models"
	appErrors "github.com/umarmf343/vea-2025-sub005/pkg/errors"
)

type fakePortal struct {
	profile            any
	academic           any
	attendance         any
	timetable          any
	assignments        any
	library            any
	teacherAssignments any
	calendar           any

	profileErr            error
	academicErr           error
	attendanceErr         error
	timetableErr          error
	assignmentsErr        error
	libraryErr            error
	teacherAssignmentsErr error
	calendarErr           error

	profileCalls   int
	timetableClass string
	taClass        string
}

func (f *fakePortal) Profile(context.Context, string) (any, error) {
	f.profileCalls++
	return f.profile, f.profileErr
}

func (f *fakePortal) AcademicRecords(context.Context, string) (any, error) {
	return f.academic, f.academicErr
}

func (f *fakePortal) Attendance(context.Context, string) (any, error) {
	return f.attendance, f.attendanceErr
}

func (f *fakePortal) Timetable(_ context.Context, class string) (any, error) {
	f.timetableClass = class
	return f.timetable, f.timetableErr
}

func (f *fakePortal) Assignments(context.Context, string) (any, error) {
	return f.assignments, f.assignmentsErr
}

func (f *fakePortal) LibraryLoans(context.Context, string) (any, error) {
	return f.library, f.libraryErr
}

func (f *fakePortal) TeacherAssignments(_ context.Context, _ string, class string) (any, error) {
	f.taClass = class
	return f.teacherAssignments, f.teacherAssignmentsErr
}

func (f *fakePortal) PublishedCalendar(context.Context) (any, error) {
	return f.calendar, f.calendarErr
}

type stubCacheRepo struct {
	store map[string][]byte
}

func (s *stubCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	if s.store == nil {
		return appErrors.ErrCacheMiss
	}
	payload, ok := s.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (s *stubCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if s.store == nil {
		s.store = make(map[string][]byte)
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.store[key] = payload
	return nil
}

func (s *stubCacheRepo) DeleteByPattern(_ context.Context, _ string) error {
	return nil
}

func healthyPortal() *fakePortal {
	return &fakePortal{
		profile: map[string]any{
			"id": "stu-1", "name": "Ada Obi", "email": "ada@vea.ng",
			"class": "JSS2B", "admissionNumber": "VEA/2024/041",
		},
		academic: []any{
			map[string]any{"id": "sub-1", "subject": "Mathematics", "teacher": "Mrs. Ngozi Bello", "score": 88, "grade": "A"},
			map[string]any{"id": "sub-2", "subject": "English", "teacher": "Mr. Tunde Ajayi", "score": 74, "grade": "B"},
		},
		attendance: map[string]any{"present": 18, "total": 20},
		timetable: []any{
			map[string]any{"id": "slot-1", "day": "Monday", "time": "08:00", "subject": "Mathematics", "teacher": "Mrs. Ngozi Bello", "room": "B2"},
		},
		assignments: []any{
			map[string]any{"id": "asg-1", "title": "Fractions worksheet", "subject": "Mathematics", "teacherName": "Ngozi Bello", "status": "graded", "score": 90, "dueDate": "2026-09-10"},
			map[string]any{"id": "asg-2", "title": "Reading log", "subject": "English", "dueDate": "2026-09-20"},
			map[string]any{"id": "asg-3", "title": "Chess club signup", "teacherName": "Coach Emeka", "class": "JSS3A", "dueDate": "2026-09-18"},
		},
		library: []any{
			map[string]any{"id": "loan-1", "title": "Things Fall Apart", "author": "Chinua Achebe", "status": "borrowed"},
		},
		teacherAssignments: map[string]any{
			"classTeachers": []any{
				map[string]any{"id": "tch-9", "name": "Mrs. Ada Eze"},
			},
		},
		calendar: []any{
			map[string]any{"id": "evt-1", "title": "Mid-term break", "startDate": "2026-09-21", "endDate": "2026-09-25", "audience": "all"},
			map[string]any{"id": "evt-2", "title": "Staff meeting", "startDate": "2026-09-22", "audience": "staff"},
		},
	}
}

func newStudentDashboardService(portal *fakePortal, cache *CacheService, now time.Time) *DashboardService {
	svc := NewDashboardService(DashboardServiceParams{
		Portal: portal,
		Cache:  cache,
		Logger: zap.NewNop(),
	})
	svc.now = func() time.Time { return now }
	return svc
}

func TestDashboardServiceStudent_ComposesAndCaches(t *testing.T) {
	cacheRepo := &stubCacheRepo{}
	cacheSvc := NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), true)

	now := time.Date(2026, 9, 15, 10, 0, 0, 0, time.UTC)
	portal := healthyPortal()
	svc := newStudentDashboardService(portal, cacheSvc, now)

	ctx := context.Background()
	result, cacheHit, err := svc.Student(ctx, "stu-1", models.StudentProfile{})
	require.NoError(t, err)
	assert.False(t, cacheHit)

	assert.Equal(t, "stu-1", result.Profile.ID)
	assert.Equal(t, "Ada Obi", result.Profile.Name)
	assert.Equal(t, "JSS2B", result.Profile.Class)

	require.Len(t, result.Subjects, 2)
	assert.Equal(t, "Mathematics", result.Subjects[0].Subject)
	require.NotNil(t, result.Subjects[0].Score)
	assert.Equal(t, 88.0, *result.Subjects[0].Score)

	assert.Equal(t, models.AttendanceSummary{Present: 18, Total: 20, Percentage: 90}, result.Attendance)

	require.Len(t, result.Timetable, 1)
	assert.Equal(t, "B2", result.Timetable[0].Location)

	// asg-1 matches a known teacher, asg-2 is untagged; asg-3 is tagged
	// with an unknown teacher and a different class.
	require.Len(t, result.Assignments, 2)
	assert.Equal(t, "asg-1", result.Assignments[0].ID)
	assert.Equal(t, models.AssignmentStatusGraded, result.Assignments[0].Status)
	assert.Equal(t, "asg-2", result.Assignments[1].ID)

	assert.Equal(t, 2, result.Insight.Total)
	assert.Equal(t, 1, result.Insight.Graded)

	require.Len(t, result.Library, 1)
	assert.Equal(t, "Things Fall Apart", result.Library[0].Title)

	// evt-2 targets staff; the reading log due date becomes an event.
	ids := make([]string, 0, len(result.Events))
	for _, event := range result.Events {
		ids = append(ids, event.ID)
	}
	assert.Equal(t, []string{"assignment-asg-2", "calendar-evt-1"}, ids)

	assert.Empty(t, result.Degraded)
	assert.Equal(t, "JSS2B", portal.timetableClass)
	assert.Equal(t, "JSS2B", portal.taClass)

	resultCached, cacheHit2, err := svc.Student(ctx, "stu-1", models.StudentProfile{})
	require.NoError(t, err)
	assert.True(t, cacheHit2)
	assert.Equal(t, 1, portal.profileCalls)
	assert.Equal(t, result.Profile, resultCached.Profile)
	assert.Equal(t, result.Insight, resultCached.Insight)
}

func TestDashboardServiceStudent_DegradedSourcesNotCached(t *testing.T) {
	cacheRepo := &stubCacheRepo{}
	cacheSvc := NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), true)

	now := time.Date(2026, 9, 15, 10, 0, 0, 0, time.UTC)
	portal := healthyPortal()
	portal.attendanceErr = errors.New("upstream 502")
	portal.calendarErr = errors.New("timeout")
	svc := newStudentDashboardService(portal, cacheSvc, now)

	ctx := context.Background()
	result, cacheHit, err := svc.Student(ctx, "stu-1", models.StudentProfile{})
	require.NoError(t, err)
	assert.False(t, cacheHit)

	assert.Equal(t, []string{"attendance", "calendar"}, result.Degraded)
	assert.Equal(t, models.AttendanceSummary{}, result.Attendance)
	// assignment due dates still feed the timeline without the calendar
	require.Len(t, result.Events, 1)
	assert.Equal(t, "assignment-asg-2", result.Events[0].ID)
	// surviving sections are unaffected
	require.Len(t, result.Assignments, 2)

	_, cacheHit2, err := svc.Student(ctx, "stu-1", models.StudentProfile{})
	require.NoError(t, err)
	assert.False(t, cacheHit2)
	assert.Equal(t, 2, portal.profileCalls)
}

func TestDashboardServiceStudent_ProfileFallback(t *testing.T) {
	now := time.Date(2026, 9, 15, 10, 0, 0, 0, time.UTC)
	portal := healthyPortal()
	portal.profileErr = errors.New("connection refused")
	svc := newStudentDashboardService(portal, nil, now)

	fallback := models.StudentProfile{Name: "Ada Obi", Class: "JSS2B"}
	result, _, err := svc.Student(context.Background(), "stu-1", fallback)
	require.NoError(t, err)

	assert.Contains(t, result.Degraded, "profile")
	assert.Equal(t, "stu-1", result.Profile.ID)
	assert.Equal(t, "Ada Obi", result.Profile.Name)
	assert.Equal(t, "JSS2B", result.Profile.Class)
	assert.Equal(t, "", result.Profile.Email)
	// the fallback class still drives the class-scoped fetches
	assert.Equal(t, "JSS2B", portal.timetableClass)
}

func TestDashboardServiceStudent_Validation(t *testing.T) {
	svc := NewDashboardService(DashboardServiceParams{Portal: &fakePortal{}})

	_, _, err := svc.Student(context.Background(), "", models.StudentProfile{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, _, err = svc.Student(context.Background(), "stu-1", models.StudentProfile{Email: "not-an-email"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestDashboardServiceStudent_AllSourcesDown(t *testing.T) {
	now := time.Date(2026, 9, 15, 10, 0, 0, 0, time.UTC)
	boom := errors.New("portal down")
	portal := &fakePortal{
		profileErr: boom, academicErr: boom, attendanceErr: boom,
		timetableErr: boom, assignmentsErr: boom, libraryErr: boom,
		teacherAssignmentsErr: boom, calendarErr: boom,
	}
	svc := newStudentDashboardService(portal, nil, now)

	result, _, err := svc.Student(context.Background(), "stu-9", models.StudentProfile{Name: "Bola"})
	require.NoError(t, err)
	assert.Len(t, result.Degraded, 8)
	assert.Equal(t, "stu-9", result.Profile.ID)
	assert.Equal(t, "Bola", result.Profile.Name)
	assert.Empty(t, result.Subjects)
	assert.Empty(t, result.Assignments)
	assert.Empty(t, result.Events)
	assert.Equal(t, 0, result.Insight.Total)
}
