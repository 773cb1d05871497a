package dto

// ── 营业时间模块 DTO ──

// CreateOperatingHourRequest 创建营业时间请求
type CreateOperatingHourRequest struct {
	DayOfWeek   string `json:"day_of_week"  binding:"required,weekday"`
	OpeningTime string `json:"opening_time" binding:"required,clocktime"` // "10:00"
	ClosingTime string `json:"closing_time" binding:"required,clocktime"` // "22:00"
}

// UpdateOperatingHourRequest 部分更新营业时间请求
type UpdateOperatingHourRequest struct {
	OpeningTime *string `json:"opening_time" binding:"omitempty,clocktime"`
	ClosingTime *string `json:"closing_time" binding:"omitempty,clocktime"`
}

// OperatingHourResponse 营业时间响应
type OperatingHourResponse struct {
	ID          uint   `json:"id"`
	DayOfWeek   string `json:"day_of_week"`
	OpeningTime string `json:"opening_time"`
	ClosingTime string `json:"closing_time"`
}
