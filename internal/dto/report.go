package dto

// ── 日报模块 DTO ──

// DailyReportRequest 日报查询参数
type DailyReportRequest struct {
	ReportDate string `form:"report_date" binding:"required,civildate"`
}

// ExportReportRequest 日报导出参数
type ExportReportRequest struct {
	ReportDate string `form:"report_date" binding:"required,civildate"`
	Format     string `form:"format"      binding:"omitempty,oneof=xlsx ics"`
}

// DailyReportItem 日报中的单条预订
type DailyReportItem struct {
	ReservationID       uint    `json:"reservation_id"`
	CustomerName        string  `json:"customer_name"`
	PhoneNumber         string  `json:"phone_number"`
	PartySize           int     `json:"party_size"`
	ReservationTime     string  `json:"reservation_time"` // HH:MM
	DurationHours       int     `json:"duration_hours"`
	Tables              []int   `json:"tables"`           // 餐桌号
	Status              string  `json:"status"`
	RequestedPreference *string `json:"requested_preference"`
	Notes               string  `json:"notes"`
}

// DailyReportResponse 日报响应
type DailyReportResponse struct {
	Date              string            `json:"date"`
	TotalReservations int               `json:"total_reservations"`
	Items             []DailyReportItem `json:"data"`
}
