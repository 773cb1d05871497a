package handler

import (
	"github.com/gin-gonic/gin"

	"restaurant-booking/internal/dto"
	"restaurant-booking/internal/service"
	"restaurant-booking/pkg/response"
)

// ReservationHandler 预订模块 HTTP 处理器
type ReservationHandler struct {
	reservationSvc service.ReservationService
}

// NewReservationHandler 创建 ReservationHandler
func NewReservationHandler(reservationSvc service.ReservationService) *ReservationHandler {
	return &ReservationHandler{reservationSvc: reservationSvc}
}

// ListReservations 获取预订列表
// GET /api/v1/reservations?date=2025-03-03&status=Confirmed&customer_id=1
func (h *ReservationHandler) ListReservations(c *gin.Context) {
	var req dto.ReservationListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		handleBindError(c, err)
		return
	}

	list, err := h.reservationSvc.List(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OKList(c, list, len(list))
}

// GetReservation 获取预订详情
// GET /api/v1/reservations/:id
func (h *ReservationHandler) GetReservation(c *gin.Context) {
	id, ok := MustGetID(c, "id")
	if !ok {
		return
	}

	res, err := h.reservationSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, res)
}

// CreateReservation 创建预订
// POST /api/v1/reservations
func (h *ReservationHandler) CreateReservation(c *gin.Context) {
	var req dto.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, err)
		return
	}

	res, err := h.reservationSvc.Create(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Created(c, res)
}

// UpdateReservation 部分更新预订
// PATCH /api/v1/reservations/:id
func (h *ReservationHandler) UpdateReservation(c *gin.Context) {
	id, ok := MustGetID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, err)
		return
	}

	res, err := h.reservationSvc.Update(c.Request.Context(), id, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, res)
}

// UpdateReservationStatus 变更预订状态，status 可放在 JSON 体或查询参数中
// PATCH /api/v1/reservations/:id/status
func (h *ReservationHandler) UpdateReservationStatus(c *gin.Context) {
	id, ok := MustGetID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateReservationStatusRequest
	var err error
	if c.Request.ContentLength > 0 {
		err = c.ShouldBindJSON(&req)
	} else {
		err = c.ShouldBindQuery(&req)
	}
	if err != nil {
		handleBindError(c, err)
		return
	}

	res, err := h.reservationSvc.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, res)
}

// MergeTables 为预订追加可合并的餐桌
// POST /api/v1/reservations/:id/merge-tables
func (h *ReservationHandler) MergeTables(c *gin.Context) {
	id, ok := MustGetID(c, "id")
	if !ok {
		return
	}

	var req dto.MergeTablesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, err)
		return
	}

	res, err := h.reservationSvc.MergeTables(c.Request.Context(), id, req.TableIDs)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, res)
}

// DemergeTables 释放预订的全部餐桌
// POST /api/v1/reservations/:id/demerge-tables
func (h *ReservationHandler) DemergeTables(c *gin.Context) {
	id, ok := MustGetID(c, "id")
	if !ok {
		return
	}

	res, err := h.reservationSvc.DemergeTables(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, res)
}

// DeleteReservation 删除预订（管理操作：释放餐桌后删除记录）
// DELETE /api/v1/reservations/:id
func (h *ReservationHandler) DeleteReservation(c *gin.Context) {
	id, ok := MustGetID(c, "id")
	if !ok {
		return
	}

	if err := h.reservationSvc.Delete(c.Request.Context(), id); err != nil {
		handleServiceError(c, err)
		return
	}

	response.Deleted(c)
}
