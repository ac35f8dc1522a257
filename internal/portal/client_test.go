package portal

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umarmf343/vea-2025-sub005/pkg/config"
	appErrors "github.com/umarmf343/vea-2025-sub005/pkg/errors"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.PortalConfig{BaseURL: srv.URL, Timeout: time.Second})
}

func TestClient_ProfilePathAndDecode(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/users/41", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": 41, "name": "Ada Obi"}`))
	}))

	raw, err := client.Profile(context.Background(), "41")

	require.NoError(t, err)
	obj, ok := raw.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Ada Obi", obj["name"])
}

func TestClient_UnwrapsDataEnvelope(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": [{"id": "a1"}], "message": "ok"}`))
	}))

	raw, err := client.Assignments(context.Background(), "41")

	require.NoError(t, err)
	items, ok := raw.([]any)
	require.True(t, ok)
	require.Len(t, items, 1)
}

func TestClient_KeepsPayloadsWithoutEnvelope(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"classTeachers": [], "subjectTeachers": [], "message": "ok"}`))
	}))

	raw, err := client.TeacherAssignments(context.Background(), "41", "JSS2B")

	require.NoError(t, err)
	obj, ok := raw.(map[string]any)
	require.True(t, ok)
	assert.Contains(t, obj, "classTeachers")
}

func TestClient_KeepsObjectsWithRealDataKey(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": "raw value", "present": 18, "total": 20}`))
	}))

	raw, err := client.Attendance(context.Background(), "41")

	require.NoError(t, err)
	obj, ok := raw.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 18.0, obj["present"])
}

func TestClient_QueryParameters(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/timetable":
			assert.Equal(t, "JSS 2B", r.URL.Query().Get("class"))
		case "/api/teacher-assignments":
			assert.Equal(t, "41", r.URL.Query().Get("studentId"))
			assert.Equal(t, "JSS 2B", r.URL.Query().Get("class"))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`[]`))
	}))

	_, err := client.Timetable(context.Background(), "JSS 2B")
	require.NoError(t, err)
	_, err = client.TeacherAssignments(context.Background(), "41", "JSS 2B")
	require.NoError(t, err)
}

func TestClient_UpstreamErrorStatus(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	_, err := client.PublishedCalendar(context.Background())

	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrUpstream.Code, appErr.Code)
}

func TestClient_MalformedBody(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"unterminated`))
	}))

	_, err := client.LibraryLoans(context.Background(), "41")

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUpstream.Code, appErrors.FromError(err).Code)
}

func TestClient_ServiceTokenHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer svc-token", r.Header.Get("Authorization"))
		w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)
	client := NewClient(config.PortalConfig{BaseURL: srv.URL + "/", ServiceToken: "svc-token"})

	_, err := client.Profile(context.Background(), "41")

	require.NoError(t, err)
}
