package repository

import (
	"context"

	"gorm.io/gorm"

	"restaurant-booking/internal/model"
)

// OperatingHourRepository 营业时间数据访问接口
type OperatingHourRepository interface {
	Create(ctx context.Context, hour *model.OperatingHour) error
	GetByDay(ctx context.Context, day string) (*model.OperatingHour, error)
	List(ctx context.Context) ([]model.OperatingHour, error)
	Update(ctx context.Context, hour *model.OperatingHour) error
	DeleteByDay(ctx context.Context, day string) error
}

type operatingHourRepo struct {
	db *gorm.DB
}

// NewOperatingHourRepo 创建 OperatingHourRepository 实例
func NewOperatingHourRepo(db *gorm.DB) OperatingHourRepository {
	return &operatingHourRepo{db: db}
}

func (r *operatingHourRepo) Create(ctx context.Context, hour *model.OperatingHour) error {
	return r.db.WithContext(ctx).Create(hour).Error
}

func (r *operatingHourRepo) GetByDay(ctx context.Context, day string) (*model.OperatingHour, error) {
	var hour model.OperatingHour
	err := r.db.WithContext(ctx).
		Where("day_of_week = ?", day).
		First(&hour).Error
	if err != nil {
		return nil, err
	}
	return &hour, nil
}

func (r *operatingHourRepo) List(ctx context.Context) ([]model.OperatingHour, error) {
	var hours []model.OperatingHour
	err := r.db.WithContext(ctx).Order("id ASC").Find(&hours).Error
	return hours, err
}

func (r *operatingHourRepo) Update(ctx context.Context, hour *model.OperatingHour) error {
	return r.db.WithContext(ctx).Save(hour).Error
}

func (r *operatingHourRepo) DeleteByDay(ctx context.Context, day string) error {
	result := r.db.WithContext(ctx).
		Where("day_of_week = ?", day).
		Delete(&model.OperatingHour{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
