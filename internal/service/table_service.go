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

// ── 餐桌模块业务错误 ──

var (
	ErrTableNotFound       = pkgerrors.NotFound(12001, "餐桌不存在")
	ErrTableNumberExists   = pkgerrors.Conflict(12002, "餐桌号已存在")
	ErrTableStatusReserved = pkgerrors.Validation(12003, "Reserved 状态只能由预订流程设置")
	ErrTableInUse          = pkgerrors.Conflict(12004, "餐桌仍被进行中的预订占用，无法删除")
)

// TableService 餐桌业务接口
type TableService interface {
	Create(ctx context.Context, req *dto.CreateTableRequest) (*dto.TableResponse, error)
	GetByID(ctx context.Context, id uint) (*dto.TableResponse, error)
	List(ctx context.Context, req *dto.TableListRequest) ([]dto.TableResponse, error)
	Update(ctx context.Context, id uint, req *dto.UpdateTableRequest) (*dto.TableResponse, error)
	Delete(ctx context.Context, id uint) error
}

type tableService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewTableService 创建 TableService 实例
func NewTableService(repo *repository.Repository, logger *zap.Logger) TableService {
	return &tableService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *tableService) Create(ctx context.Context, req *dto.CreateTableRequest) (*dto.TableResponse, error) {
	status := model.TableAvailable
	if req.Status != "" {
		status = model.TableStatus(req.Status)
	}
	if status == model.TableReserved {
		return nil, ErrTableStatusReserved
	}

	_, err := s.repo.Table.GetByNumber(ctx, req.TableNumber)
	switch {
	case err == nil:
		return nil, pkgerrors.Detail(ErrTableNumberExists, "table %d", req.TableNumber)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		s.logger.Error("按餐桌号查询失败", zap.Int("table_number", req.TableNumber), zap.Error(err))
		return nil, err
	}

	table := &model.Table{
		TableNumber:  req.TableNumber,
		Capacity:     req.Capacity,
		Location:     model.TableLocation(req.Location),
		IsCombinable: req.IsCombinable,
		Status:       status,
	}
	if err := s.repo.Table.Create(ctx, table); err != nil {
		s.logger.Error("创建餐桌失败", zap.Error(err))
		return nil, err
	}

	return toTableResponse(table), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *tableService) GetByID(ctx context.Context, id uint) (*dto.TableResponse, error) {
	table, err := s.getTable(ctx, id)
	if err != nil {
		return nil, err
	}
	return toTableResponse(table), nil
}

// ────────────────────── List ──────────────────────

func (s *tableService) List(ctx context.Context, req *dto.TableListRequest) ([]dto.TableResponse, error) {
	var status *model.TableStatus
	if req.Status != "" {
		st := model.TableStatus(req.Status)
		status = &st
	}

	tables, err := s.repo.Table.List(ctx, status)
	if err != nil {
		s.logger.Error("列出餐桌失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.TableResponse, 0, len(tables))
	for i := range tables {
		result = append(result, *toTableResponse(&tables[i]))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

// Update 在事务内加行锁读取再写回，避免与预订流程并发覆盖状态
func (s *tableService) Update(ctx context.Context, id uint, req *dto.UpdateTableRequest) (*dto.TableResponse, error) {
	var table model.Table
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		locked, err := tx.Table.GetByIDsForUpdate(ctx, []uint{id})
		if err != nil {
			return err
		}
		if len(locked) == 0 {
			return pkgerrors.Detail(ErrTableNotFound, "table id %d", id)
		}
		table = locked[0]

		if req.Capacity != nil {
			table.Capacity = *req.Capacity
		}
		if req.Location != nil {
			table.Location = model.TableLocation(*req.Location)
		}
		if req.IsCombinable != nil {
			table.IsCombinable = *req.IsCombinable
		}
		if req.Status != nil {
			status := model.TableStatus(*req.Status)
			// 已处于 Reserved 时重复提交视为未修改
			if status == model.TableReserved && table.Status != model.TableReserved {
				return ErrTableStatusReserved
			}
			table.Status = status
		}

		return tx.Table.Update(ctx, &table)
	})
	if err != nil {
		if _, ok := pkgerrors.As(err); !ok {
			s.logger.Error("更新餐桌失败", zap.Uint("id", id), zap.Error(err))
		}
		return nil, err
	}

	return toTableResponse(&table), nil
}

// ────────────────────── Delete ──────────────────────

func (s *tableService) Delete(ctx context.Context, id uint) error {
	table, err := s.getTable(ctx, id)
	if err != nil {
		return err
	}

	holding, err := s.repo.Reservation.CountHoldingByTable(ctx, id, 0)
	if err != nil {
		s.logger.Error("统计餐桌占用失败", zap.Uint("id", id), zap.Error(err))
		return err
	}
	if holding > 0 {
		return pkgerrors.Detail(ErrTableInUse, "table %d", table.TableNumber)
	}

	if err := s.repo.Table.Delete(ctx, id); err != nil {
		s.logger.Error("删除餐桌失败", zap.Uint("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ── 内部辅助方法 ──

func (s *tableService) getTable(ctx context.Context, id uint) (*model.Table, error) {
	table, err := s.repo.Table.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Detail(ErrTableNotFound, "table id %d", id)
		}
		s.logger.Error("查询餐桌失败", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}
	return table, nil
}

func toTableResponse(t *model.Table) *dto.TableResponse {
	return &dto.TableResponse{
		ID:           t.ID,
		TableNumber:  t.TableNumber,
		Capacity:     t.Capacity,
		Location:     string(t.Location),
		IsCombinable: t.IsCombinable,
		Status:       string(t.Status),
		CreatedAt:    formatTimestamp(t.CreatedAt),
		UpdatedAt:    formatTimestamp(t.UpdatedAt),
	}
}
