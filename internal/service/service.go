package service

import (
	"go.uber.org/zap"

	"restaurant-booking/config"
	"restaurant-booking/internal/event"
	"restaurant-booking/internal/repository"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Customer      CustomerService
	Table         TableService
	OperatingHour OperatingHourService
	Reservation   ReservationService
	Report        ReportService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	publisher event.Publisher,
	logger *zap.Logger,
) *Service {
	return &Service{
		Customer:      NewCustomerService(repo, logger),
		Table:         NewTableService(repo, logger),
		OperatingHour: NewOperatingHourService(repo, logger),
		Reservation:   NewReservationService(cfg.Scheduling, repo, publisher, logger),
		Report:        NewReportService(cfg.Scheduling, repo, logger),
	}
}
