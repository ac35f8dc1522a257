package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/umarmf343/vea-2025-sub005/internal/dto"
	"github.com/umarmf343/vea-2025-sub005/internal/middleware"
	"github.com/umarmf343/vea-2025-sub005/internal/models"
	appErrors "github.com/umarmf343/vea-2025-sub005/pkg/errors"
	"github.com/umarmf343/vea-2025-sub005/pkg/response"
)

type dashboardService interface {
	Student(ctx context.Context, studentID string, fallback models.StudentProfile) (*dto.StudentDashboardResponse, bool, error)
}

// DashboardHandler wires the dashboard service to HTTP endpoints.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Student godoc
// @Summary Reconciled student dashboard
// @Description Composes profile, subjects, attendance, timetable, assignments, library loans and upcoming events for one student. Query params carry the caller's fallback profile, used when the portal profile endpoint is unavailable.
// @Tags Dashboard
// @Produce json
// @Param studentId path string true "Student ID"
// @Param name query string false "Fallback display name"
// @Param email query string false "Fallback email"
// @Param class query string false "Fallback class name"
// @Param admissionNo query string false "Fallback admission number"
// @Success 200 {object} response.Envelope
// @Router /students/{studentId}/dashboard [get]
func (h *DashboardHandler) Student(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	studentID := strings.TrimSpace(c.Param("studentId"))
	if studentID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "studentId is required"))
		return
	}
	fallback := models.StudentProfile{
		ID:              studentID,
		Name:            strings.TrimSpace(c.Query("name")),
		Email:           strings.TrimSpace(c.Query("email")),
		Class:           strings.TrimSpace(c.Query("class")),
		AdmissionNumber: strings.TrimSpace(c.Query("admissionNo")),
	}
	start := time.Now()
	dashboard, cacheHit, err := h.service.Student(c.Request.Context(), studentID, fallback)
	if err != nil {
		response.Error(c, err)
		return
	}
	elapsed := time.Since(start).Milliseconds()

	middleware.SetCacheHit(c, cacheHit)
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = map[string]any{}
	}
	meta["processing_time_ms"] = elapsed
	response.JSON(c, http.StatusOK, dashboard, meta)
}
