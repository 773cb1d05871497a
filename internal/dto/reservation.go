package dto

// ── 预订模块 DTO ──

// CreateReservationRequest 创建预订请求
type CreateReservationRequest struct {
	CustomerID          uint    `json:"customer_id"          binding:"required"`
	PartySize           int     `json:"party_size"           binding:"required,gt=0"`
	ReservationDate     string  `json:"reservation_date"     binding:"required,civildate"` // "2025-03-03"
	ReservationTime     string  `json:"reservation_time"     binding:"required,clocktime"` // "19:00"
	DurationHours       *int    `json:"duration_hours"       binding:"omitempty,gt=0"`     // 缺省取配置值
	TableIDs            []uint  `json:"table_ids"            binding:"omitempty,dive,gt=0"`
	Status              string  `json:"status"               binding:"omitempty,reservation_status"`
	RequestedPreference *string `json:"requested_preference" binding:"omitempty,preference"`
	Notes               string  `json:"notes"                binding:"max=255"`
	IsWalkIn            bool    `json:"is_walk_in"`
}

// UpdateReservationRequest 部分更新预订请求；table_ids 非 nil 时整体替换餐桌
type UpdateReservationRequest struct {
	PartySize           *int    `json:"party_size"           binding:"omitempty,gt=0"`
	ReservationDate     *string `json:"reservation_date"     binding:"omitempty,civildate"`
	ReservationTime     *string `json:"reservation_time"     binding:"omitempty,clocktime"`
	DurationHours       *int    `json:"duration_hours"       binding:"omitempty,gt=0"`
	Status              *string `json:"status"               binding:"omitempty,reservation_status"`
	RequestedPreference *string `json:"requested_preference" binding:"omitempty,preference"`
	Notes               *string `json:"notes"                binding:"omitempty,max=255"`
	IsWalkIn            *bool   `json:"is_walk_in"`
	TableIDs            *[]uint `json:"table_ids"            binding:"omitempty,dive,gt=0"`
}

// UpdateReservationStatusRequest 状态变更请求
type UpdateReservationStatusRequest struct {
	Status string `json:"status" form:"status" binding:"required,reservation_status"`
}

// MergeTablesRequest 合并餐桌请求
type MergeTablesRequest struct {
	TableIDs []uint `json:"table_ids" binding:"required,min=1,dive,gt=0"`
}

// ReservationListRequest 预订列表查询参数
type ReservationListRequest struct {
	Date       string `form:"date"        binding:"omitempty,civildate"`
	Status     string `form:"status"      binding:"omitempty,reservation_status"`
	CustomerID uint   `form:"customer_id"`
}

// ReservationResponse 预订信息响应
type ReservationResponse struct {
	ID                  uint            `json:"id"`
	CustomerID          uint            `json:"customer_id"`
	Customer            *CustomerBrief  `json:"customer,omitempty"`
	PartySize           int             `json:"party_size"`
	ReservationDate     string          `json:"reservation_date"`
	ReservationTime     string          `json:"reservation_time"`
	EndTime             string          `json:"end_time"`
	DurationHours       int             `json:"duration_hours"`
	Status              string          `json:"status"`
	RequestedPreference *string         `json:"requested_preference"`
	Notes               string          `json:"notes"`
	IsWalkIn            bool            `json:"is_walk_in"`
	AssignedCapacity    int             `json:"assigned_capacity"`
	BookingTimestamp    string          `json:"booking_timestamp"`
	Tables              []TableResponse `json:"tables"`
	CreatedAt           string          `json:"created_at"`
	UpdatedAt           string          `json:"updated_at"`
}
