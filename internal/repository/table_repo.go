package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"restaurant-booking/internal/model"
)

// TableRepository 餐桌数据访问接口
type TableRepository interface {
	Create(ctx context.Context, table *model.Table) error
	GetByID(ctx context.Context, id uint) (*model.Table, error)
	GetByNumber(ctx context.Context, number int) (*model.Table, error)
	// GetByIDsForUpdate 按 id 升序加行锁读取，固定加锁顺序以避免死锁；不存在的 id 不返回
	GetByIDsForUpdate(ctx context.Context, ids []uint) ([]model.Table, error)
	List(ctx context.Context, status *model.TableStatus) ([]model.Table, error)
	Update(ctx context.Context, table *model.Table) error
	UpdateStatus(ctx context.Context, ids []uint, status model.TableStatus) error
	Delete(ctx context.Context, id uint) error
}

type tableRepo struct {
	db *gorm.DB
}

// NewTableRepo 创建 TableRepository 实例
func NewTableRepo(db *gorm.DB) TableRepository {
	return &tableRepo{db: db}
}

func (r *tableRepo) Create(ctx context.Context, table *model.Table) error {
	return r.db.WithContext(ctx).Create(table).Error
}

func (r *tableRepo) GetByID(ctx context.Context, id uint) (*model.Table, error) {
	var table model.Table
	if err := r.db.WithContext(ctx).First(&table, id).Error; err != nil {
		return nil, err
	}
	return &table, nil
}

func (r *tableRepo) GetByNumber(ctx context.Context, number int) (*model.Table, error) {
	var table model.Table
	err := r.db.WithContext(ctx).
		Where("table_number = ?", number).
		First(&table).Error
	if err != nil {
		return nil, err
	}
	return &table, nil
}

func (r *tableRepo) GetByIDsForUpdate(ctx context.Context, ids []uint) ([]model.Table, error) {
	var tables []model.Table
	if len(ids) == 0 {
		return tables, nil
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&tables).Error
	return tables, err
}

func (r *tableRepo) List(ctx context.Context, status *model.TableStatus) ([]model.Table, error) {
	var tables []model.Table
	db := r.db.WithContext(ctx)
	if status != nil {
		db = db.Where("status = ?", *status)
	}
	err := db.Order("table_number ASC").Find(&tables).Error
	return tables, err
}

func (r *tableRepo) Update(ctx context.Context, table *model.Table) error {
	return r.db.WithContext(ctx).Save(table).Error
}

func (r *tableRepo) UpdateStatus(ctx context.Context, ids []uint, status model.TableStatus) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&model.Table{}).
		Where("id IN ?", ids).
		Update("status", status).Error
}

// Delete 删除餐桌及其预订关联
func (r *tableRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("table_id = ?", id).Delete(&model.ReservationTable{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Table{}, id).Error
	})
}
