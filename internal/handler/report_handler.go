package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/umarmf343/vea-2025-sub005/internal/dto"
	"github.com/umarmf343/vea-2025-sub005/internal/models"
	"github.com/umarmf343/vea-2025-sub005/internal/service"
	appErrors "github.com/umarmf343/vea-2025-sub005/pkg/errors"
	"github.com/umarmf343/vea-2025-sub005/pkg/response"
)

type reportService interface {
	CreateJob(ctx context.Context, studentID string, req dto.CreateReportRequest) (*dto.ReportJobResponse, error)
	GetStatus(ctx context.Context, id string) (*dto.ReportStatusResponse, error)
	ResolveDownload(ctx context.Context, token string) (*service.ReportDownload, error)
}

// ReportHandler exposes the asynchronous report export endpoints.
type ReportHandler struct {
	service reportService
	logger  *zap.Logger
}

// NewReportHandler constructs the handler.
func NewReportHandler(service reportService, logger *zap.Logger) *ReportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportHandler{service: service, logger: logger}
}

// GenerateReport godoc
// @Summary Queue a report export
// @Description Accepts a report type and format, creates a job and returns immediately. Poll the status endpoint for progress and the signed download URL.
// @Tags Reports
// @Accept json
// @Produce json
// @Param studentId path string true "Student ID"
// @Param payload body dto.CreateReportRequest true "Report type and format"
// @Success 202 {object} response.Envelope
// @Router /students/{studentId}/reports [post]
func (h *ReportHandler) GenerateReport(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	var req dto.CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request payload"))
		return
	}
	job, err := h.service.CreateJob(c.Request.Context(), strings.TrimSpace(c.Param("studentId")), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, job)
}

// ReportStatus godoc
// @Summary Report job status
// @Tags Reports
// @Produce json
// @Param jobId path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Router /reports/{jobId} [get]
func (h *ReportHandler) ReportStatus(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	status, err := h.service.GetStatus(c.Request.Context(), c.Param("jobId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status)
}

// DownloadReport godoc
// @Summary Download a finished report
// @Description Streams the export file for a valid, unexpired signed token.
// @Tags Reports
// @Produce octet-stream
// @Param token path string true "Signed download token"
// @Success 200 {file} file
// @Router /export/{token} [get]
func (h *ReportHandler) DownloadReport(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	download, err := h.service.ResolveDownload(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer download.File.Close()

	info, err := download.File.Stat()
	if err != nil {
		h.logger.Error("failed to stat export file", zap.String("filename", download.Filename), zap.Error(err))
		response.Error(c, appErrors.ErrInternal)
		return
	}
	contentType := "text/csv"
	if download.Format == models.ReportFormatPDF {
		contentType = "application/pdf"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", download.Filename))
	c.DataFromReader(http.StatusOK, info.Size(), contentType, download.File, nil)
}
