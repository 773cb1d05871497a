package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"restaurant-booking/config"
	"restaurant-booking/internal/dto"
	"restaurant-booking/internal/event"
	"restaurant-booking/internal/model"
	"restaurant-booking/internal/repository"
	pkgerrors "restaurant-booking/pkg/errors"
)

// ReservationService 预订调度业务接口
type ReservationService interface {
	Create(ctx context.Context, req *dto.CreateReservationRequest) (*dto.ReservationResponse, error)
	GetByID(ctx context.Context, id uint) (*dto.ReservationResponse, error)
	List(ctx context.Context, req *dto.ReservationListRequest) ([]dto.ReservationResponse, error)
	// Update 部分更新；status 字段同样经过状态机
	Update(ctx context.Context, id uint, req *dto.UpdateReservationRequest) (*dto.ReservationResponse, error)
	UpdateStatus(ctx context.Context, id uint, status string) (*dto.ReservationResponse, error)
	// MergeTables 追加可合并餐桌，全部通过才生效
	MergeTables(ctx context.Context, id uint, tableIDs []uint) (*dto.ReservationResponse, error)
	// DemergeTables 释放并解除全部餐桌，可重复调用
	DemergeTables(ctx context.Context, id uint) (*dto.ReservationResponse, error)
	Delete(ctx context.Context, id uint) error
}

type reservationService struct {
	cfg       config.SchedulingConfig
	repo      *repository.Repository
	publisher event.Publisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewReservationService 创建 ReservationService 实例
func NewReservationService(
	cfg config.SchedulingConfig,
	repo *repository.Repository,
	publisher event.Publisher,
	logger *zap.Logger,
) ReservationService {
	if publisher == nil {
		publisher = event.NopPublisher{}
	}
	return &reservationService{
		cfg:       cfg,
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *reservationService) scheduler(tx *repository.Repository) *scheduler {
	return &scheduler{tx: tx, cfg: s.cfg, logger: s.logger}
}

// ────────────────────── Create ──────────────────────

func (s *reservationService) Create(ctx context.Context, req *dto.CreateReservationRequest) (*dto.ReservationResponse, error) {
	if req.PartySize <= 0 {
		return nil, ErrInvalidPartySize
	}
	date, err := model.ParseDate(req.ReservationDate)
	if err != nil {
		return nil, pkgerrors.Detail(ErrInvalidReservation, "reservation_date %q", req.ReservationDate)
	}
	start, err := model.ParseTimeOfDay(req.ReservationTime)
	if err != nil {
		return nil, pkgerrors.Detail(ErrInvalidReservation, "reservation_time %q", req.ReservationTime)
	}
	duration := s.cfg.DefaultDurationHours
	if req.DurationHours != nil {
		if *req.DurationHours <= 0 {
			return nil, pkgerrors.Detail(ErrInvalidReservation, "duration_hours must be positive")
		}
		duration = *req.DurationHours
	}
	status := model.ReservationConfirmed
	if req.Status != "" {
		status = model.ReservationStatus(req.Status)
		if !status.Valid() || status.Terminal() {
			return nil, pkgerrors.Detail(ErrInvalidInitialStatus, "%s", req.Status)
		}
	}
	preference, err := parsePreference(req.RequestedPreference)
	if err != nil {
		return nil, err
	}

	sl := slot{date: date, start: start, duration: duration}
	tableIDs := uniqueIDs(req.TableIDs)

	var created *model.Reservation
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		sch := s.scheduler(tx)

		// 先锁顾客再锁餐桌，所有写路径保持同一加锁顺序
		if _, err := tx.Customer.GetByIDForUpdate(ctx, req.CustomerID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.Detail(ErrCustomerNotFound, "customer %d", req.CustomerID)
			}
			return err
		}

		if err := sch.checkHours(ctx, sl); err != nil {
			return err
		}
		if err := sch.checkCustomer(ctx, req.CustomerID, sl, 0); err != nil {
			return err
		}
		tables, err := sch.lockTables(ctx, tableIDs)
		if err != nil {
			return err
		}
		if err := sch.checkTables(ctx, tables, sl, 0, nil); err != nil {
			return err
		}

		res := &model.Reservation{
			CustomerID:          req.CustomerID,
			PartySize:           req.PartySize,
			ReservationDate:     date,
			ReservationTime:     start,
			DurationHours:       duration,
			Status:              status,
			RequestedPreference: preference,
			Notes:               req.Notes,
			IsWalkIn:            req.IsWalkIn,
			AssignedCapacity:    capacityOf(tables),
			BookingTimestamp:    s.now().UTC(),
		}
		if err := tx.Reservation.Create(ctx, res); err != nil {
			return err
		}
		if err := tx.Reservation.AddTables(ctx, res.ID, tableIDs); err != nil {
			return err
		}
		if err := sch.occupy(ctx, tables, status); err != nil {
			return err
		}

		created, err = tx.Reservation.GetByID(ctx, res.ID)
		return err
	})
	if err != nil {
		s.logFailure("创建预订失败", 0, err)
		return nil, err
	}

	s.logger.Info("预订已创建",
		zap.Uint("reservation_id", created.ID),
		zap.Uint("customer_id", created.CustomerID),
		zap.String("date", created.ReservationDate.String()),
		zap.String("time", created.ReservationTime.String()),
		zap.Uints("table_ids", created.TableIDs()),
	)
	s.publish(ctx, event.TypeReservationCreated, created, "")
	return toReservationResponse(created), nil
}

// ────────────────────── GetByID / List ──────────────────────

func (s *reservationService) GetByID(ctx context.Context, id uint) (*dto.ReservationResponse, error) {
	res, err := s.repo.Reservation.GetByID(ctx, id)
	if err != nil {
		return nil, s.notFound(err, id)
	}
	return toReservationResponse(res), nil
}

func (s *reservationService) List(ctx context.Context, req *dto.ReservationListRequest) ([]dto.ReservationResponse, error) {
	filter := repository.ReservationFilter{CustomerID: req.CustomerID}
	if req.Date != "" {
		date, err := model.ParseDate(req.Date)
		if err != nil {
			return nil, pkgerrors.Detail(ErrInvalidReservation, "date %q", req.Date)
		}
		filter.Date = &date
	}
	if req.Status != "" {
		status := model.ReservationStatus(req.Status)
		if !status.Valid() {
			return nil, pkgerrors.Detail(ErrInvalidReservation, "status %q", req.Status)
		}
		filter.Status = &status
	}

	list, err := s.repo.Reservation.List(ctx, filter)
	if err != nil {
		s.logger.Error("列出预订失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.ReservationResponse, 0, len(list))
	for i := range list {
		result = append(result, *toReservationResponse(&list[i]))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *reservationService) Update(ctx context.Context, id uint, req *dto.UpdateReservationRequest) (*dto.ReservationResponse, error) {
	var (
		updated  *model.Reservation
		previous model.ReservationStatus
	)
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		sch := s.scheduler(tx)

		res, err := tx.Reservation.GetByIDForUpdate(ctx, id)
		if err != nil {
			return s.notFound(err, id)
		}
		previous = res.Status

		sl := slotOf(res)
		scheduleChanged := false
		if req.ReservationDate != nil {
			date, err := model.ParseDate(*req.ReservationDate)
			if err != nil {
				return pkgerrors.Detail(ErrInvalidReservation, "reservation_date %q", *req.ReservationDate)
			}
			scheduleChanged = scheduleChanged || date != sl.date
			sl.date = date
		}
		if req.ReservationTime != nil {
			start, err := model.ParseTimeOfDay(*req.ReservationTime)
			if err != nil {
				return pkgerrors.Detail(ErrInvalidReservation, "reservation_time %q", *req.ReservationTime)
			}
			scheduleChanged = scheduleChanged || start != sl.start
			sl.start = start
		}
		if req.DurationHours != nil {
			if *req.DurationHours <= 0 {
				return pkgerrors.Detail(ErrInvalidReservation, "duration_hours must be positive")
			}
			scheduleChanged = scheduleChanged || *req.DurationHours != sl.duration
			sl.duration = *req.DurationHours
		}
		if req.PartySize != nil {
			if *req.PartySize <= 0 {
				return ErrInvalidPartySize
			}
			res.PartySize = *req.PartySize
		}
		if req.RequestedPreference != nil {
			if res.RequestedPreference, err = parsePreference(req.RequestedPreference); err != nil {
				return err
			}
		}
		if req.Notes != nil {
			res.Notes = *req.Notes
		}
		if req.IsWalkIn != nil {
			res.IsWalkIn = *req.IsWalkIn
		}

		tablesChanged := req.TableIDs != nil
		if (scheduleChanged || tablesChanged) && res.Status.Terminal() {
			return pkgerrors.Detail(ErrReservationNotActive, "reservation %d is %s", res.ID, res.Status)
		}

		if scheduleChanged || tablesChanged {
			currentIDs := res.TableIDs()
			newIDs := currentIDs
			if tablesChanged {
				newIDs = uniqueIDs(*req.TableIDs)
			}

			if _, err := tx.Customer.GetByIDForUpdate(ctx, res.CustomerID); err != nil {
				return err
			}
			if scheduleChanged {
				if err := sch.checkHours(ctx, sl); err != nil {
					return err
				}
				if err := sch.checkCustomer(ctx, res.CustomerID, sl, res.ID); err != nil {
					return err
				}
			}

			all, err := sch.lockTables(ctx, uniqueIDs(append(append([]uint{}, currentIDs...), newIDs...)))
			if err != nil {
				return err
			}
			current, next := idSet(currentIDs), idSet(newIDs)
			var nextTables, removed, added []model.Table
			for _, t := range all {
				switch {
				case next[t.ID]:
					nextTables = append(nextTables, t)
					if !current[t.ID] {
						added = append(added, t)
					}
				case current[t.ID]:
					removed = append(removed, t)
				}
			}

			if err := sch.checkTables(ctx, nextTables, sl, res.ID, current); err != nil {
				return err
			}

			if tablesChanged {
				if err := tx.Reservation.RemoveTables(ctx, res.ID, tableIDsOf(removed)); err != nil {
					return err
				}
				if err := sch.release(ctx, res.ID, removed); err != nil {
					return err
				}
				if err := tx.Reservation.AddTables(ctx, res.ID, tableIDsOf(added)); err != nil {
					return err
				}
				if err := sch.occupy(ctx, added, res.Status); err != nil {
					return err
				}
				res.Tables = linksOf(res.ID, newIDs)
			}
			res.AssignedCapacity = capacityOf(nextTables)
		}

		res.ReservationDate = sl.date
		res.ReservationTime = sl.start
		res.DurationHours = sl.duration
		if err := tx.Reservation.Update(ctx, res); err != nil {
			return err
		}

		if req.Status != nil {
			if _, err := s.transition(ctx, sch, res, model.ReservationStatus(*req.Status)); err != nil {
				return err
			}
		}

		updated, err = tx.Reservation.GetByID(ctx, res.ID)
		return err
	})
	if err != nil {
		s.logFailure("更新预订失败", id, err)
		return nil, err
	}

	s.publish(ctx, event.TypeReservationUpdated, updated, "")
	if updated.Status != previous {
		s.publish(ctx, event.TypeReservationStatusChanged, updated, previous)
	}
	return toReservationResponse(updated), nil
}

// ────────────────────── UpdateStatus ──────────────────────

func (s *reservationService) UpdateStatus(ctx context.Context, id uint, status string) (*dto.ReservationResponse, error) {
	to := model.ReservationStatus(status)
	if !to.Valid() {
		return nil, pkgerrors.Detail(ErrInvalidReservation, "status %q", status)
	}

	var (
		updated  *model.Reservation
		previous model.ReservationStatus
		changed  bool
	)
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		res, err := tx.Reservation.GetByIDForUpdate(ctx, id)
		if err != nil {
			return s.notFound(err, id)
		}
		previous = res.Status

		if changed, err = s.transition(ctx, s.scheduler(tx), res, to); err != nil {
			return err
		}

		updated, err = tx.Reservation.GetByID(ctx, id)
		return err
	})
	if err != nil {
		s.logFailure("变更预订状态失败", id, err)
		return nil, err
	}

	if changed {
		s.logger.Info("预订状态已变更",
			zap.Uint("reservation_id", id),
			zap.String("from", string(previous)),
			zap.String("to", string(to)),
		)
		s.publish(ctx, event.TypeReservationStatusChanged, updated, previous)
	}
	return toReservationResponse(updated), nil
}

// transition 执行状态迁移及其对餐桌、到店次数的副作用；同状态且非终态时不做任何修改
func (s *reservationService) transition(ctx context.Context, sch *scheduler, res *model.Reservation, to model.ReservationStatus) (bool, error) {
	from := res.Status
	if from == to {
		if from.Terminal() {
			return false, pkgerrors.Detail(ErrInvalidTransition, "%s is final", from)
		}
		return false, nil
	}
	if !canTransition(from, to) {
		return false, pkgerrors.Detail(ErrInvalidTransition, "%s -> %s", from, to)
	}

	// Pending 不参与冲突检测，转入 Confirmed/Seated 前需重新校验
	recheck := !from.Blocking() && to.Blocking()
	if recheck {
		if _, err := sch.tx.Customer.GetByIDForUpdate(ctx, res.CustomerID); err != nil {
			return false, err
		}
	}
	tableIDs := res.TableIDs()
	tables, err := sch.lockTables(ctx, tableIDs)
	if err != nil {
		return false, err
	}
	if recheck {
		sl := slotOf(res)
		if err := sch.checkCustomer(ctx, res.CustomerID, sl, res.ID); err != nil {
			return false, err
		}
		if err := sch.checkTables(ctx, tables, sl, res.ID, idSet(tableIDs)); err != nil {
			return false, err
		}
	}

	switch to {
	case model.ReservationCompleted, model.ReservationCancelled:
		if err := sch.release(ctx, res.ID, tables); err != nil {
			return false, err
		}
		if to == model.ReservationCompleted {
			if err := sch.tx.Customer.IncrementVisitCount(ctx, res.CustomerID); err != nil {
				return false, err
			}
		}
	default:
		if err := sch.occupy(ctx, tables, to); err != nil {
			return false, err
		}
	}

	res.Status = to
	if err := sch.tx.Reservation.Update(ctx, res); err != nil {
		return false, err
	}
	return true, nil
}

// ────────────────────── Merge / Demerge ──────────────────────

func (s *reservationService) MergeTables(ctx context.Context, id uint, tableIDs []uint) (*dto.ReservationResponse, error) {
	var updated *model.Reservation
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		sch := s.scheduler(tx)

		res, err := tx.Reservation.GetByIDForUpdate(ctx, id)
		if err != nil {
			return s.notFound(err, id)
		}
		if res.Status.Terminal() {
			return pkgerrors.Detail(ErrReservationNotActive, "reservation %d is %s", res.ID, res.Status)
		}

		current := idSet(res.TableIDs())
		var requested []uint
		for _, tid := range uniqueIDs(tableIDs) {
			if !current[tid] {
				requested = append(requested, tid)
			}
		}

		all, err := sch.lockTables(ctx, uniqueIDs(append(res.TableIDs(), requested...)))
		if err != nil {
			return err
		}

		var attached, added []model.Table
		for _, t := range all {
			if current[t.ID] {
				attached = append(attached, t)
				continue
			}
			if !t.IsCombinable || t.Status != model.TableAvailable {
				return pkgerrors.Detail(ErrNotCombinable, "table %d (combinable=%t, status=%s)", t.TableNumber, t.IsCombinable, t.Status)
			}
			added = append(added, t)
		}

		if len(added) > 0 {
			if err := tx.Reservation.AddTables(ctx, res.ID, tableIDsOf(added)); err != nil {
				return err
			}
			if err := sch.occupy(ctx, added, res.Status); err != nil {
				return err
			}
		}

		res.AssignedCapacity = capacityOf(attached) + capacityOf(added)
		if err := tx.Reservation.Update(ctx, res); err != nil {
			return err
		}

		updated, err = tx.Reservation.GetByID(ctx, id)
		return err
	})
	if err != nil {
		s.logFailure("合并餐桌失败", id, err)
		return nil, err
	}

	s.publish(ctx, event.TypeReservationTablesMerged, updated, "")
	return toReservationResponse(updated), nil
}

func (s *reservationService) DemergeTables(ctx context.Context, id uint) (*dto.ReservationResponse, error) {
	var updated *model.Reservation
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		sch := s.scheduler(tx)

		res, err := tx.Reservation.GetByIDForUpdate(ctx, id)
		if err != nil {
			return s.notFound(err, id)
		}

		tables, err := sch.lockTables(ctx, res.TableIDs())
		if err != nil {
			return err
		}
		if err := sch.release(ctx, res.ID, tables); err != nil {
			return err
		}
		if err := tx.Reservation.RemoveAllTables(ctx, res.ID); err != nil {
			return err
		}

		res.Tables = nil
		res.AssignedCapacity = 0
		if err := tx.Reservation.Update(ctx, res); err != nil {
			return err
		}

		updated, err = tx.Reservation.GetByID(ctx, id)
		return err
	})
	if err != nil {
		s.logFailure("解除餐桌失败", id, err)
		return nil, err
	}

	s.publish(ctx, event.TypeReservationTablesFreed, updated, "")
	return toReservationResponse(updated), nil
}

// ────────────────────── Delete ──────────────────────

func (s *reservationService) Delete(ctx context.Context, id uint) error {
	var deleted *model.Reservation
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		sch := s.scheduler(tx)

		res, err := tx.Reservation.GetByIDForUpdate(ctx, id)
		if err != nil {
			return s.notFound(err, id)
		}

		if !res.Status.Terminal() {
			tables, err := sch.lockTables(ctx, res.TableIDs())
			if err != nil {
				return err
			}
			if err := sch.release(ctx, res.ID, tables); err != nil {
				return err
			}
		}

		deleted = res
		return tx.Reservation.Delete(ctx, id)
	})
	if err != nil {
		s.logFailure("删除预订失败", id, err)
		return err
	}

	s.publish(ctx, event.TypeReservationDeleted, deleted, "")
	return nil
}

// ── 内部辅助方法 ──

func (s *reservationService) notFound(err error, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Detail(ErrReservationNotFound, "reservation %d", id)
	}
	return err
}

// logFailure 业务拒绝只记 Info，其它错误记 Error
func (s *reservationService) logFailure(msg string, id uint, err error) {
	if e, ok := pkgerrors.As(err); ok {
		s.logger.Info(msg, zap.Uint("reservation_id", id), zap.Int("code", e.Code), zap.String("reason", err.Error()))
		return
	}
	s.logger.Error(msg, zap.Uint("reservation_id", id), zap.Error(err))
}

// publish 事务提交后发布事件，失败只记录日志
func (s *reservationService) publish(ctx context.Context, typ string, r *model.Reservation, previous model.ReservationStatus) {
	evt := event.Event{
		Type:           typ,
		ReservationID:  r.ID,
		CustomerID:     r.CustomerID,
		Status:         string(r.Status),
		PreviousStatus: string(previous),
		Date:           r.ReservationDate.String(),
		Time:           r.ReservationTime.String(),
		TableIDs:       r.TableIDs(),
		OccurredAt:     s.now().UTC(),
	}
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("发布预订事件失败",
			zap.String("type", typ),
			zap.Uint("reservation_id", r.ID),
			zap.Error(err),
		)
	}
}

func parsePreference(p *string) (*model.Preference, error) {
	if p == nil || *p == "" {
		return nil, nil
	}
	pref := model.Preference(*p)
	if !pref.Valid() {
		return nil, pkgerrors.Detail(ErrInvalidReservation, "requested_preference %q", *p)
	}
	return &pref, nil
}

func tableIDsOf(tables []model.Table) []uint {
	ids := make([]uint, 0, len(tables))
	for _, t := range tables {
		ids = append(ids, t.ID)
	}
	return ids
}

func linksOf(reservationID uint, tableIDs []uint) []model.ReservationTable {
	links := make([]model.ReservationTable, 0, len(tableIDs))
	for _, id := range tableIDs {
		links = append(links, model.ReservationTable{ReservationID: reservationID, TableID: id})
	}
	return links
}

func toReservationResponse(r *model.Reservation) *dto.ReservationResponse {
	resp := &dto.ReservationResponse{
		ID:               r.ID,
		CustomerID:       r.CustomerID,
		PartySize:        r.PartySize,
		ReservationDate:  r.ReservationDate.String(),
		ReservationTime:  r.ReservationTime.String(),
		EndTime:          r.End().String(),
		DurationHours:    r.DurationHours,
		Status:           string(r.Status),
		Notes:            r.Notes,
		IsWalkIn:         r.IsWalkIn,
		AssignedCapacity: r.AssignedCapacity,
		BookingTimestamp: formatTimestamp(r.BookingTimestamp),
		Tables:           make([]dto.TableResponse, 0, len(r.Tables)),
		CreatedAt:        formatTimestamp(r.CreatedAt),
		UpdatedAt:        formatTimestamp(r.UpdatedAt),
	}
	if r.RequestedPreference != nil {
		p := string(*r.RequestedPreference)
		resp.RequestedPreference = &p
	}
	if r.Customer != nil {
		resp.Customer = &dto.CustomerBrief{
			ID:          r.Customer.ID,
			Name:        r.Customer.FullName(),
			PhoneNumber: r.Customer.PhoneNumber,
		}
	}
	for _, rt := range r.Tables {
		if rt.Table != nil {
			resp.Tables = append(resp.Tables, *toTableResponse(rt.Table))
		}
	}
	return resp
}
