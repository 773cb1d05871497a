package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"restaurant-booking/internal/dto"
	"restaurant-booking/internal/model"
	"restaurant-booking/internal/repository"
	pkgerrors "restaurant-booking/pkg/errors"
)

// ── 顾客模块业务错误 ──

var (
	ErrCustomerNotFound        = pkgerrors.NotFound(11001, "顾客不存在")
	ErrCustomerPhoneExists     = pkgerrors.Conflict(11002, "手机号已被其他顾客使用")
	ErrCustomerEmailExists     = pkgerrors.Conflict(11003, "邮箱已被其他顾客使用")
	ErrCustomerHasReservations = pkgerrors.Conflict(11004, "顾客存在预订记录，无法删除")
	ErrCustomerInvalid         = pkgerrors.Validation(11005, "顾客姓名与手机号不能为空")
)

// CustomerService 顾客业务接口
type CustomerService interface {
	Create(ctx context.Context, req *dto.CustomerRequest) (*dto.CustomerResponse, error)
	GetByID(ctx context.Context, id uint) (*dto.CustomerResponse, error)
	List(ctx context.Context) ([]dto.CustomerResponse, error)
	// Update 全量更新，visit_count 不受客户端控制
	Update(ctx context.Context, id uint, req *dto.CustomerRequest) (*dto.CustomerResponse, error)
	Delete(ctx context.Context, id uint) error
}

type customerService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewCustomerService 创建 CustomerService 实例
func NewCustomerService(repo *repository.Repository, logger *zap.Logger) CustomerService {
	return &customerService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *customerService) Create(ctx context.Context, req *dto.CustomerRequest) (*dto.CustomerResponse, error) {
	customer := &model.Customer{}
	if err := applyCustomerRequest(customer, req); err != nil {
		return nil, err
	}

	if err := s.checkUnique(ctx, customer); err != nil {
		return nil, err
	}

	if err := s.repo.Customer.Create(ctx, customer); err != nil {
		s.logger.Error("创建顾客失败", zap.Error(err))
		return nil, err
	}

	return toCustomerResponse(customer), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *customerService) GetByID(ctx context.Context, id uint) (*dto.CustomerResponse, error) {
	customer, err := s.getCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	return toCustomerResponse(customer), nil
}

// ────────────────────── List ──────────────────────

func (s *customerService) List(ctx context.Context) ([]dto.CustomerResponse, error) {
	customers, err := s.repo.Customer.List(ctx)
	if err != nil {
		s.logger.Error("列出顾客失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.CustomerResponse, 0, len(customers))
	for i := range customers {
		result = append(result, *toCustomerResponse(&customers[i]))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *customerService) Update(ctx context.Context, id uint, req *dto.CustomerRequest) (*dto.CustomerResponse, error) {
	customer, err := s.getCustomer(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := applyCustomerRequest(customer, req); err != nil {
		return nil, err
	}

	if err := s.checkUnique(ctx, customer); err != nil {
		return nil, err
	}

	if err := s.repo.Customer.Update(ctx, customer); err != nil {
		s.logger.Error("更新顾客失败", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}

	return toCustomerResponse(customer), nil
}

// ────────────────────── Delete ──────────────────────

func (s *customerService) Delete(ctx context.Context, id uint) error {
	if _, err := s.getCustomer(ctx, id); err != nil {
		return err
	}

	count, err := s.repo.Reservation.CountByCustomer(ctx, id)
	if err != nil {
		s.logger.Error("统计顾客预订失败", zap.Uint("id", id), zap.Error(err))
		return err
	}
	if count > 0 {
		return pkgerrors.Detail(ErrCustomerHasReservations, "customer %d has %d reservation(s)", id, count)
	}

	if err := s.repo.Customer.Delete(ctx, id); err != nil {
		s.logger.Error("删除顾客失败", zap.Uint("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ── 内部辅助方法 ──

func (s *customerService) getCustomer(ctx context.Context, id uint) (*model.Customer, error) {
	customer, err := s.repo.Customer.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Detail(ErrCustomerNotFound, "customer %d", id)
		}
		s.logger.Error("查询顾客失败", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}
	return customer, nil
}

// checkUnique 手机号、邮箱不得被其他顾客占用
func (s *customerService) checkUnique(ctx context.Context, customer *model.Customer) error {
	existing, err := s.repo.Customer.GetByPhone(ctx, customer.PhoneNumber)
	switch {
	case err == nil && existing.ID != customer.ID:
		return pkgerrors.Detail(ErrCustomerPhoneExists, "phone %s", customer.PhoneNumber)
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		s.logger.Error("按手机号查询顾客失败", zap.Error(err))
		return err
	}

	if customer.Email == nil {
		return nil
	}
	existing, err = s.repo.Customer.GetByEmail(ctx, *customer.Email)
	switch {
	case err == nil && existing.ID != customer.ID:
		return pkgerrors.Detail(ErrCustomerEmailExists, "email %s", *customer.Email)
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		s.logger.Error("按邮箱查询顾客失败", zap.Error(err))
		return err
	}
	return nil
}

func applyCustomerRequest(customer *model.Customer, req *dto.CustomerRequest) error {
	firstName := strings.TrimSpace(req.FirstName)
	lastName := strings.TrimSpace(req.LastName)
	phone := strings.TrimSpace(req.PhoneNumber)
	if firstName == "" || lastName == "" || phone == "" {
		return ErrCustomerInvalid
	}

	customer.FirstName = firstName
	customer.LastName = lastName
	customer.PhoneNumber = phone
	customer.Email = nil
	if req.Email != nil {
		if email := strings.ToLower(strings.TrimSpace(*req.Email)); email != "" {
			customer.Email = &email
		}
	}
	customer.Preferences = req.Preferences
	customer.DietaryRequirements = req.DietaryRequirements
	customer.SpecialNotes = req.SpecialNotes
	return nil
}

func toCustomerResponse(c *model.Customer) *dto.CustomerResponse {
	return &dto.CustomerResponse{
		ID:                  c.ID,
		FirstName:           c.FirstName,
		LastName:            c.LastName,
		PhoneNumber:         c.PhoneNumber,
		Email:               c.Email,
		Preferences:         c.Preferences,
		DietaryRequirements: c.DietaryRequirements,
		VisitCount:          c.VisitCount,
		SpecialNotes:        c.SpecialNotes,
		CreatedAt:           formatTimestamp(c.CreatedAt),
		UpdatedAt:           formatTimestamp(c.UpdatedAt),
	}
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
