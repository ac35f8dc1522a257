package portal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/umarmf343/vea-2025-sub005/pkg/config"
	appErrors "github.com/umarmf343/vea-2025-sub005/pkg/errors"
)

// Source names identify the dashboard's upstream feeds in degraded-source
// lists and metric labels.
const (
	SourceProfile            = "profile"
	SourceAcademicRecords    = "academic"
	SourceAttendance         = "attendance"
	SourceTimetable          = "timetable"
	SourceAssignments        = "assignments"
	SourceLibraryLoans       = "library"
	SourceTeacherAssignments = "teacherAssignments"
	SourceCalendar           = "calendar"
)

// Client fetches the raw dashboard sources from the legacy portal REST
// API. Responses are decoded JSON but otherwise opaque; shape
// reconciliation happens downstream. The client performs no retries.
type Client struct {
	baseURL      string
	serviceToken string
	httpClient   *http.Client
}

// NewClient builds a portal client from configuration.
func NewClient(cfg config.PortalConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		serviceToken: cfg.ServiceToken,
		httpClient:   &http.Client{Timeout: timeout},
	}
}

// Profile fetches the student's user record.
func (c *Client) Profile(ctx context.Context, studentID string) (any, error) {
	return c.get(ctx, SourceProfile, "/api/users/"+url.PathEscape(studentID), nil)
}

// AcademicRecords fetches the student's subject entries.
func (c *Client) AcademicRecords(ctx context.Context, studentID string) (any, error) {
	return c.get(ctx, SourceAcademicRecords, "/api/academics/student/"+url.PathEscape(studentID), nil)
}

// Attendance fetches the student's attendance payload.
func (c *Client) Attendance(ctx context.Context, studentID string) (any, error) {
	return c.get(ctx, SourceAttendance, "/api/attendance/student/"+url.PathEscape(studentID), nil)
}

// Timetable fetches the timetable for a class.
func (c *Client) Timetable(ctx context.Context, className string) (any, error) {
	return c.get(ctx, SourceTimetable, "/api/timetable", url.Values{"class": {className}})
}

// Assignments fetches the student's assignment list.
func (c *Client) Assignments(ctx context.Context, studentID string) (any, error) {
	return c.get(ctx, SourceAssignments, "/api/assignments/student/"+url.PathEscape(studentID), nil)
}

// LibraryLoans fetches the student's library loans.
func (c *Client) LibraryLoans(ctx context.Context, studentID string) (any, error) {
	return c.get(ctx, SourceLibraryLoans, "/api/library/loans/student/"+url.PathEscape(studentID), nil)
}

// TeacherAssignments fetches the class/subject teacher lookup for the
// student.
func (c *Client) TeacherAssignments(ctx context.Context, studentID, className string) (any, error) {
	return c.get(ctx, SourceTeacherAssignments, "/api/teacher-assignments", url.Values{
		"studentId": {studentID},
		"class":     {className},
	})
}

// PublishedCalendar fetches the published school calendar.
func (c *Client) PublishedCalendar(ctx context.Context) (any, error) {
	return c.get(ctx, SourceCalendar, "/api/calendar/published", nil)
}

func (c *Client) get(ctx context.Context, source, path string, query url.Values) (any, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", source, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.serviceToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.serviceToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, fmt.Sprintf("fetch %s", source))
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, appErrors.Wrap(fmt.Errorf("received status %d", resp.StatusCode), appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, fmt.Sprintf("fetch %s", source))
	}

	var decoded any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, fmt.Sprintf("decode %s response", source))
	}

	return unwrapEnvelope(decoded), nil
}

// unwrapEnvelope strips a {"data": ...} wrapper when the portal used one.
// Objects carrying keys beyond the wrapper's data/message/meta noise are
// real payloads and pass through untouched.
func unwrapEnvelope(decoded any) any {
	obj, ok := decoded.(map[string]any)
	if !ok {
		return decoded
	}
	data, has := obj["data"]
	if !has {
		return decoded
	}
	for key := range obj {
		switch key {
		case "data", "message", "meta", "success", "status":
		default:
			return decoded
		}
	}
	return data
}
