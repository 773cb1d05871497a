package handler

import (
	"github.com/gin-gonic/gin"

	"restaurant-booking/internal/dto"
	"restaurant-booking/internal/service"
	"restaurant-booking/pkg/response"
)

// OperatingHourHandler 营业时间模块 HTTP 处理器
type OperatingHourHandler struct {
	hourSvc service.OperatingHourService
}

// NewOperatingHourHandler 创建 OperatingHourHandler
func NewOperatingHourHandler(hourSvc service.OperatingHourService) *OperatingHourHandler {
	return &OperatingHourHandler{hourSvc: hourSvc}
}

// ListOperatingHours 获取一周营业时间
// GET /api/v1/operating-hours
func (h *OperatingHourHandler) ListOperatingHours(c *gin.Context) {
	hours, err := h.hourSvc.List(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OKList(c, hours, len(hours))
}

// GetOperatingHour 获取某一天的营业时间
// GET /api/v1/operating-hours/:day
func (h *OperatingHourHandler) GetOperatingHour(c *gin.Context) {
	day, ok := MustGetDay(c)
	if !ok {
		return
	}

	hour, err := h.hourSvc.GetByDay(c.Request.Context(), day)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, hour)
}

// CreateOperatingHour 设置某一天的营业时间
// POST /api/v1/operating-hours
func (h *OperatingHourHandler) CreateOperatingHour(c *gin.Context) {
	var req dto.CreateOperatingHourRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, err)
		return
	}

	hour, err := h.hourSvc.Create(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Created(c, hour)
}

// UpdateOperatingHour 部分更新营业时间
// PATCH /api/v1/operating-hours/:day
func (h *OperatingHourHandler) UpdateOperatingHour(c *gin.Context) {
	day, ok := MustGetDay(c)
	if !ok {
		return
	}

	var req dto.UpdateOperatingHourRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, err)
		return
	}

	hour, err := h.hourSvc.Update(c.Request.Context(), day, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, hour)
}

// DeleteOperatingHour 删除某一天的营业时间
// DELETE /api/v1/operating-hours/:day
func (h *OperatingHourHandler) DeleteOperatingHour(c *gin.Context) {
	day, ok := MustGetDay(c)
	if !ok {
		return
	}

	if err := h.hourSvc.Delete(c.Request.Context(), day); err != nil {
		handleServiceError(c, err)
		return
	}

	response.Deleted(c)
}
