package handler

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"restaurant-booking/internal/dto"
	"restaurant-booking/internal/service"
	"restaurant-booking/pkg/response"
)

var exportContentTypes = map[string]string{
	service.FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	service.FormatICS:  "text/calendar; charset=utf-8",
}

// ReportHandler 日报模块 HTTP 处理器
type ReportHandler struct {
	reportSvc service.ReportService
}

// NewReportHandler 创建 ReportHandler
func NewReportHandler(reportSvc service.ReportService) *ReportHandler {
	return &ReportHandler{reportSvc: reportSvc}
}

// DailyReport 获取指定日期的预订日报
// GET /api/v1/reservations/daily-report?report_date=2025-03-03
func (h *ReportHandler) DailyReport(c *gin.Context) {
	var req dto.DailyReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		handleBindError(c, err)
		return
	}

	report, err := h.reportSvc.DailyReport(c.Request.Context(), req.ReportDate)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, report)
}

// ExportDailyReport 导出预订日报
// GET /api/v1/reservations/daily-report/export?report_date=2025-03-03&format=xlsx
func (h *ReportHandler) ExportDailyReport(c *gin.Context) {
	var req dto.ExportReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		handleBindError(c, err)
		return
	}
	format := req.Format
	if format == "" {
		format = service.FormatXLSX
	}

	buf, filename, err := h.reportSvc.ExportDailyReport(c.Request.Context(), req.ReportDate, format)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	// 设置下载响应头
	contentType := exportContentTypes[format]
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}
