package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"restaurant-booking/internal/dto"
	"restaurant-booking/internal/model"
	"restaurant-booking/internal/repository"
	pkgerrors "restaurant-booking/pkg/errors"
)

// ── 营业时间模块业务错误 ──

var (
	ErrOperatingHourNotFound = pkgerrors.NotFound(13001, "该星期未设置营业时间")
	ErrOperatingHourExists   = pkgerrors.Conflict(13002, "该星期已设置营业时间")
	ErrInvalidWeekday        = pkgerrors.Validation(13003, "无效的星期名")
	ErrInvalidHoursRange     = pkgerrors.Validation(13004, "开门时间不能晚于打烊时间")
	ErrInvalidClockTime      = pkgerrors.Validation(13005, "无效的时间格式")
)

// OperatingHourService 营业时间业务接口，以英文星期名定位记录
type OperatingHourService interface {
	Create(ctx context.Context, req *dto.CreateOperatingHourRequest) (*dto.OperatingHourResponse, error)
	GetByDay(ctx context.Context, day string) (*dto.OperatingHourResponse, error)
	List(ctx context.Context) ([]dto.OperatingHourResponse, error)
	Update(ctx context.Context, day string, req *dto.UpdateOperatingHourRequest) (*dto.OperatingHourResponse, error)
	Delete(ctx context.Context, day string) error
}

type operatingHourService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewOperatingHourService 创建 OperatingHourService 实例
func NewOperatingHourService(repo *repository.Repository, logger *zap.Logger) OperatingHourService {
	return &operatingHourService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *operatingHourService) Create(ctx context.Context, req *dto.CreateOperatingHourRequest) (*dto.OperatingHourResponse, error) {
	day, err := normalizeDay(req.DayOfWeek)
	if err != nil {
		return nil, err
	}
	opening, err := parseClock(req.OpeningTime)
	if err != nil {
		return nil, err
	}
	closing, err := parseClock(req.ClosingTime)
	if err != nil {
		return nil, err
	}
	if opening > closing {
		return nil, pkgerrors.Detail(ErrInvalidHoursRange, "%s %s-%s", day, opening, closing)
	}

	_, err = s.repo.OperatingHour.GetByDay(ctx, day)
	switch {
	case err == nil:
		return nil, pkgerrors.Detail(ErrOperatingHourExists, "%s", day)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		s.logger.Error("查询营业时间失败", zap.String("day", day), zap.Error(err))
		return nil, err
	}

	hour := &model.OperatingHour{DayOfWeek: day, OpeningTime: opening, ClosingTime: closing}
	if err := s.repo.OperatingHour.Create(ctx, hour); err != nil {
		s.logger.Error("创建营业时间失败", zap.String("day", day), zap.Error(err))
		return nil, err
	}

	return toOperatingHourResponse(hour), nil
}

// ────────────────────── GetByDay ──────────────────────

func (s *operatingHourService) GetByDay(ctx context.Context, day string) (*dto.OperatingHourResponse, error) {
	hour, err := s.getHour(ctx, day)
	if err != nil {
		return nil, err
	}
	return toOperatingHourResponse(hour), nil
}

// ────────────────────── List ──────────────────────

func (s *operatingHourService) List(ctx context.Context) ([]dto.OperatingHourResponse, error) {
	hours, err := s.repo.OperatingHour.List(ctx)
	if err != nil {
		s.logger.Error("列出营业时间失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.OperatingHourResponse, 0, len(hours))
	for i := range hours {
		result = append(result, *toOperatingHourResponse(&hours[i]))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *operatingHourService) Update(ctx context.Context, day string, req *dto.UpdateOperatingHourRequest) (*dto.OperatingHourResponse, error) {
	hour, err := s.getHour(ctx, day)
	if err != nil {
		return nil, err
	}

	if req.OpeningTime != nil {
		if hour.OpeningTime, err = parseClock(*req.OpeningTime); err != nil {
			return nil, err
		}
	}
	if req.ClosingTime != nil {
		if hour.ClosingTime, err = parseClock(*req.ClosingTime); err != nil {
			return nil, err
		}
	}
	if hour.OpeningTime > hour.ClosingTime {
		return nil, pkgerrors.Detail(ErrInvalidHoursRange, "%s %s-%s", hour.DayOfWeek, hour.OpeningTime, hour.ClosingTime)
	}

	if err := s.repo.OperatingHour.Update(ctx, hour); err != nil {
		s.logger.Error("更新营业时间失败", zap.String("day", hour.DayOfWeek), zap.Error(err))
		return nil, err
	}

	return toOperatingHourResponse(hour), nil
}

// ────────────────────── Delete ──────────────────────

func (s *operatingHourService) Delete(ctx context.Context, day string) error {
	name, err := normalizeDay(day)
	if err != nil {
		return err
	}

	if err := s.repo.OperatingHour.DeleteByDay(ctx, name); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Detail(ErrOperatingHourNotFound, "%s", name)
		}
		s.logger.Error("删除营业时间失败", zap.String("day", name), zap.Error(err))
		return err
	}
	return nil
}

// ── 内部辅助方法 ──

func (s *operatingHourService) getHour(ctx context.Context, day string) (*model.OperatingHour, error) {
	name, err := normalizeDay(day)
	if err != nil {
		return nil, err
	}

	hour, err := s.repo.OperatingHour.GetByDay(ctx, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Detail(ErrOperatingHourNotFound, "%s", name)
		}
		s.logger.Error("查询营业时间失败", zap.String("day", name), zap.Error(err))
		return nil, err
	}
	return hour, nil
}

func normalizeDay(day string) (string, error) {
	name, ok := model.NormalizeWeekday(day)
	if !ok {
		return "", pkgerrors.Detail(ErrInvalidWeekday, "%q", day)
	}
	return name, nil
}

func parseClock(s string) (model.TimeOfDay, error) {
	t, err := model.ParseTimeOfDay(s)
	if err != nil {
		return 0, pkgerrors.Detail(ErrInvalidClockTime, "%q", s)
	}
	return t, nil
}

func toOperatingHourResponse(h *model.OperatingHour) *dto.OperatingHourResponse {
	return &dto.OperatingHourResponse{
		ID:          h.ID,
		DayOfWeek:   h.DayOfWeek,
		OpeningTime: h.OpeningTime.String(),
		ClosingTime: h.ClosingTime.String(),
	}
}
