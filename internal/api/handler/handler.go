package handler

import "restaurant-booking/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Customer      *CustomerHandler
	Table         *TableHandler
	OperatingHour *OperatingHourHandler
	Reservation   *ReservationHandler
	Report        *ReportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Customer:      NewCustomerHandler(svc.Customer),
		Table:         NewTableHandler(svc.Table),
		OperatingHour: NewOperatingHourHandler(svc.OperatingHour),
		Reservation:   NewReservationHandler(svc.Reservation),
		Report:        NewReportHandler(svc.Report),
	}
}
