package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"restaurant-booking/config"
	"restaurant-booking/internal/dto"
	"restaurant-booking/internal/model"
	"restaurant-booking/internal/repository"
	pkgerrors "restaurant-booking/pkg/errors"
)

// ── 日报模块业务错误 ──

var (
	ErrReportFormat      = pkgerrors.Validation(15001, "不支持的导出格式")
	ErrReportInvalidDate = pkgerrors.Validation(15003, "无效的日报日期")
)

// 导出格式
const (
	FormatXLSX = "xlsx"
	FormatICS  = "ics"
)

// ReportService 日报业务接口
type ReportService interface {
	// DailyReport 指定日期的全部预订（不区分状态），按时间排序
	DailyReport(ctx context.Context, date string) (*dto.DailyReportResponse, error)
	// ExportDailyReport 导出日报，返回文件内容与建议文件名
	ExportDailyReport(ctx context.Context, date, format string) (*bytes.Buffer, string, error)
}

type reportService struct {
	cfg    config.SchedulingConfig
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewReportService 创建 ReportService 实例
func NewReportService(cfg config.SchedulingConfig, repo *repository.Repository, logger *zap.Logger) ReportService {
	return &reportService{cfg: cfg, repo: repo, logger: logger, now: time.Now}
}

// ────────────────────── DailyReport ──────────────────────

func (s *reportService) DailyReport(ctx context.Context, date string) (*dto.DailyReportResponse, error) {
	day, list, err := s.load(ctx, date)
	if err != nil {
		return nil, err
	}
	return buildDailyReport(day, list), nil
}

// ────────────────────── ExportDailyReport ──────────────────────

func (s *reportService) ExportDailyReport(ctx context.Context, date, format string) (*bytes.Buffer, string, error) {
	if format == "" {
		format = FormatXLSX
	}
	if format != FormatXLSX && format != FormatICS {
		return nil, "", pkgerrors.Detail(ErrReportFormat, "%q", format)
	}

	day, list, err := s.load(ctx, date)
	if err != nil {
		return nil, "", err
	}

	var buf *bytes.Buffer
	switch format {
	case FormatICS:
		buf, err = s.exportICS(day, list)
	default:
		buf, err = s.exportXLSX(buildDailyReport(day, list))
	}
	if err != nil {
		s.logger.Error("生成日报文件失败", zap.String("date", day.String()), zap.String("format", format), zap.Error(err))
		return nil, "", fmt.Errorf("生成日报文件失败: %w", err)
	}

	return buf, fmt.Sprintf("daily_report_%s.%s", day, format), nil
}

// ── 内部辅助方法 ──

func (s *reportService) load(ctx context.Context, date string) (model.Date, []model.Reservation, error) {
	day, err := model.ParseDate(date)
	if err != nil {
		return model.Date{}, nil, pkgerrors.Detail(ErrReportInvalidDate, "%q", date)
	}

	list, err := s.repo.Reservation.List(ctx, repository.ReservationFilter{Date: &day})
	if err != nil {
		s.logger.Error("查询日报预订失败", zap.String("date", day.String()), zap.Error(err))
		return model.Date{}, nil, err
	}
	return day, list, nil
}

func buildDailyReport(day model.Date, list []model.Reservation) *dto.DailyReportResponse {
	items := make([]dto.DailyReportItem, 0, len(list))
	for i := range list {
		r := &list[i]
		item := dto.DailyReportItem{
			ReservationID:   r.ID,
			PartySize:       r.PartySize,
			ReservationTime: fmt.Sprintf("%02d:%02d", r.ReservationTime.Hour(), r.ReservationTime.Minute()),
			DurationHours:   r.DurationHours,
			Tables:          make([]int, 0, len(r.Tables)),
			Status:          string(r.Status),
			Notes:           r.Notes,
		}
		if r.Customer != nil {
			item.CustomerName = r.Customer.FullName()
			item.PhoneNumber = r.Customer.PhoneNumber
		}
		if r.RequestedPreference != nil {
			p := string(*r.RequestedPreference)
			item.RequestedPreference = &p
		}
		for _, rt := range r.Tables {
			if rt.Table != nil {
				item.Tables = append(item.Tables, rt.Table.TableNumber)
			}
		}
		items = append(items, item)
	}

	return &dto.DailyReportResponse{
		Date:              day.String(),
		TotalReservations: len(items),
		Items:             items,
	}
}
