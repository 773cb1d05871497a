package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"restaurant-booking/internal/dto"
	"restaurant-booking/internal/model"
	"restaurant-booking/internal/repository"
)

// ── 测试辅助 ──

func setupTestTableService() (TableService, *mockTableRepo, *mockReservationRepo) {
	repo, _, tables, _, reservations := newMockRepository()
	return NewTableService(repo, zap.NewNop()), tables, reservations
}

func seedMockTable(tables *mockTableRepo, id uint, number int, status model.TableStatus) {
	tables.tables[id] = &model.Table{
		ID: id, TableNumber: number, Capacity: 4, Location: model.LocationWindow, IsCombinable: true, Status: status,
	}
	if tables.nextID <= id {
		tables.nextID = id + 1
	}
}

// ── Create 测试 ──

func TestTableService_Create_DefaultsAvailable(t *testing.T) {
	svc, _, _ := setupTestTableService()

	result, err := svc.Create(context.Background(), &dto.CreateTableRequest{
		TableNumber: 7, Capacity: 4, Location: "Window",
	})
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if result.Status != string(model.TableAvailable) {
		t.Errorf("期望默认状态 Available，实际=%s", result.Status)
	}
}

func TestTableService_Create_DuplicateNumber(t *testing.T) {
	svc, tables, _ := setupTestTableService()
	seedMockTable(tables, 1, 7, model.TableAvailable)

	_, err := svc.Create(context.Background(), &dto.CreateTableRequest{TableNumber: 7, Capacity: 2, Location: "Center"})
	if !errors.Is(err, ErrTableNumberExists) {
		t.Errorf("期望 ErrTableNumberExists，实际: %v", err)
	}
}

func TestTableService_Create_ReservedRejected(t *testing.T) {
	svc, _, _ := setupTestTableService()

	_, err := svc.Create(context.Background(), &dto.CreateTableRequest{
		TableNumber: 8, Capacity: 2, Location: "Center", Status: "Reserved",
	})
	if !errors.Is(err, ErrTableStatusReserved) {
		t.Errorf("期望 ErrTableStatusReserved，实际: %v", err)
	}
}

// ── Update 测试 ──

func TestTableService_Update_Partial(t *testing.T) {
	svc, tables, _ := setupTestTableService()
	seedMockTable(tables, 1, 7, model.TableAvailable)

	capacity := 6
	status := "Maintenance"
	result, err := svc.Update(context.Background(), 1, &dto.UpdateTableRequest{Capacity: &capacity, Status: &status})
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if result.Capacity != 6 || result.Status != "Maintenance" {
		t.Errorf("部分更新未生效: %+v", result)
	}
	if result.Location != "Window" || !result.IsCombinable {
		t.Errorf("未提交字段不应改变: %+v", result)
	}
}

func TestTableService_Update_CannotSetReserved(t *testing.T) {
	svc, tables, _ := setupTestTableService()
	seedMockTable(tables, 1, 7, model.TableAvailable)

	status := "Reserved"
	_, err := svc.Update(context.Background(), 1, &dto.UpdateTableRequest{Status: &status})
	if !errors.Is(err, ErrTableStatusReserved) {
		t.Errorf("期望 ErrTableStatusReserved，实际: %v", err)
	}
}

func TestTableService_Update_LocksRow(t *testing.T) {
	svc, tables, _ := setupTestTableService()
	seedMockTable(tables, 3, 7, model.TableAvailable)

	status := "Special Event"
	if _, err := svc.Update(context.Background(), 3, &dto.UpdateTableRequest{Status: &status}); err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if len(tables.locked) != 1 || tables.locked[0] != 3 {
		t.Errorf("Update 应加锁读取餐桌 3，实际 locked=%v", tables.locked)
	}
}

func TestTableService_Update_NotFound(t *testing.T) {
	svc, _, _ := setupTestTableService()

	capacity := 2
	_, err := svc.Update(context.Background(), 9, &dto.UpdateTableRequest{Capacity: &capacity})
	if !errors.Is(err, ErrTableNotFound) {
		t.Errorf("期望 ErrTableNotFound，实际: %v", err)
	}
}

func TestTableService_Update_RejectedLeavesRowUnchanged(t *testing.T) {
	repo := repository.NewRepository(newTestDB(t))
	svc := NewTableService(repo, zap.NewNop())
	ctx := context.Background()

	tbl := &model.Table{TableNumber: 5, Capacity: 4, Location: model.LocationOutdoor, Status: model.TableAvailable}
	if err := repo.Table.Create(ctx, tbl); err != nil {
		t.Fatalf("创建餐桌失败: %v", err)
	}

	capacity := 8
	status := "Reserved"
	_, err := svc.Update(ctx, tbl.ID, &dto.UpdateTableRequest{Capacity: &capacity, Status: &status})
	if !errors.Is(err, ErrTableStatusReserved) {
		t.Fatalf("期望 ErrTableStatusReserved，实际: %v", err)
	}

	stored, err := repo.Table.GetByID(ctx, tbl.ID)
	if err != nil {
		t.Fatalf("查询餐桌失败: %v", err)
	}
	if stored.Capacity != 4 || stored.Status != model.TableAvailable {
		t.Errorf("被拒绝的更新不应落库: %+v", stored)
	}

	status = "Maintenance"
	result, err := svc.Update(ctx, tbl.ID, &dto.UpdateTableRequest{Capacity: &capacity, Status: &status})
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	stored, _ = repo.Table.GetByID(ctx, tbl.ID)
	if result.Capacity != 8 || stored.Capacity != 8 || stored.Status != model.TableMaintenance {
		t.Errorf("更新未落库: result=%+v stored=%+v", result, stored)
	}
}

// ── Delete / List 测试 ──

func TestTableService_Delete_HeldByActiveReservation(t *testing.T) {
	svc, tables, reservations := setupTestTableService()
	seedMockTable(tables, 1, 7, model.TableReserved)
	reservations.holding[1] = 1

	err := svc.Delete(context.Background(), 1)
	if !errors.Is(err, ErrTableInUse) {
		t.Errorf("期望 ErrTableInUse，实际: %v", err)
	}
}

func TestTableService_Delete_NotFound(t *testing.T) {
	svc, _, _ := setupTestTableService()

	if err := svc.Delete(context.Background(), 9); !errors.Is(err, ErrTableNotFound) {
		t.Errorf("期望 ErrTableNotFound，实际: %v", err)
	}
}

func TestTableService_List_FilterByStatus(t *testing.T) {
	svc, tables, _ := setupTestTableService()
	seedMockTable(tables, 1, 1, model.TableAvailable)
	seedMockTable(tables, 2, 2, model.TableMaintenance)
	seedMockTable(tables, 3, 3, model.TableAvailable)

	list, err := svc.List(context.Background(), &dto.TableListRequest{Status: "Available"})
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("期望 2 张 Available 餐桌，实际=%d", len(list))
	}
}
