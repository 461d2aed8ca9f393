package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"shift-sync/backend/internal/dto"
	"shift-sync/backend/internal/model"
	"shift-sync/backend/internal/repository"
)

// ── 测试辅助 ──

func setupTestEmployeeService() (EmployeeService, *mockEmployeeRepo, *mockShiftRepo) {
	employeeRepo := newMockEmployeeRepo()
	shiftRepo := newMockShiftRepo()
	repo := &repository.Repository{
		User:     newMockUserRepo(),
		Employee: employeeRepo,
		Shift:    shiftRepo,
		Issue:    newMockIssueRepo(),
	}
	svc := NewEmployeeService(repo, zap.NewNop())
	return svc, employeeRepo, shiftRepo
}

// ── Create 测试 ──

func TestEmployeeService_Create_Success(t *testing.T) {
	svc, _, _ := setupTestEmployeeService()

	result, err := svc.Create(context.Background(), &dto.CreateEmployeeRequest{
		Name:         "张三",
		EmployeeCode: "EMP001",
		Department:   "运营部",
	}, "admin-001")
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if result.Name != "张三" || result.EmployeeCode != "EMP001" {
		t.Errorf("期望张三/EMP001，实际=%s/%s", result.Name, result.EmployeeCode)
	}
}

func TestEmployeeService_Create_DuplicateCode(t *testing.T) {
	svc, _, _ := setupTestEmployeeService()

	req := &dto.CreateEmployeeRequest{Name: "张三", EmployeeCode: "EMP001", Department: "运营部"}
	if _, err := svc.Create(context.Background(), req, "admin-001"); err != nil {
		t.Fatalf("首次创建应成功: %v", err)
	}

	// 编号匹配不区分大小写
	dup := &dto.CreateEmployeeRequest{Name: "李四", EmployeeCode: "emp001", Department: "客服部"}
	if _, err := svc.Create(context.Background(), dup, "admin-001"); !errors.Is(err, ErrEmployeeCodeExists) {
		t.Errorf("期望 ErrEmployeeCodeExists，实际: %v", err)
	}
}

// ── Update 测试 ──

func TestEmployeeService_Update_Success(t *testing.T) {
	svc, empRepo, _ := setupTestEmployeeService()
	empRepo.employees["emp-001"] = &model.Employee{
		EmployeeID: "emp-001", Name: "张三", EmployeeCode: "EMP001", Department: "运营部",
	}

	newDept := "客服部"
	result, err := svc.Update(context.Background(), "emp-001", &dto.UpdateEmployeeRequest{
		Department: &newDept,
	}, "admin-001")
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if result.Department != "客服部" {
		t.Errorf("期望部门=客服部，实际=%s", result.Department)
	}
}

func TestEmployeeService_Update_CodeTakenByOther(t *testing.T) {
	svc, empRepo, _ := setupTestEmployeeService()
	empRepo.employees["emp-001"] = &model.Employee{EmployeeID: "emp-001", Name: "张三", EmployeeCode: "EMP001"}
	empRepo.employees["emp-002"] = &model.Employee{EmployeeID: "emp-002", Name: "李四", EmployeeCode: "EMP002"}

	taken := "EMP002"
	_, err := svc.Update(context.Background(), "emp-001", &dto.UpdateEmployeeRequest{
		EmployeeCode: &taken,
	}, "admin-001")
	if !errors.Is(err, ErrEmployeeCodeExists) {
		t.Errorf("期望 ErrEmployeeCodeExists，实际: %v", err)
	}
}

func TestEmployeeService_Update_NotFound(t *testing.T) {
	svc, _, _ := setupTestEmployeeService()

	newName := "李四"
	_, err := svc.Update(context.Background(), "nonexistent", &dto.UpdateEmployeeRequest{
		Name: &newName,
	}, "admin-001")
	if !errors.Is(err, ErrEmployeeNotFound) {
		t.Errorf("期望 ErrEmployeeNotFound，实际: %v", err)
	}
}

// ── Delete 测试 ──

func TestEmployeeService_Delete_Success(t *testing.T) {
	svc, empRepo, _ := setupTestEmployeeService()
	empRepo.employees["emp-001"] = &model.Employee{EmployeeID: "emp-001", Name: "张三", EmployeeCode: "EMP001"}

	if err := svc.Delete(context.Background(), "emp-001"); err != nil {
		t.Fatalf("Delete 应成功: %v", err)
	}
	if len(empRepo.employees) != 0 {
		t.Error("期望员工已删除")
	}
}

func TestEmployeeService_Delete_BlockedByShifts(t *testing.T) {
	svc, empRepo, shiftRepo := setupTestEmployeeService()
	empRepo.employees["emp-001"] = &model.Employee{EmployeeID: "emp-001", Name: "张三", EmployeeCode: "EMP001"}
	shiftRepo.shifts["shift-001"] = &model.Shift{
		ShiftID:    "shift-001",
		EmployeeID: "emp-001",
		Date:       time.Now().UTC().Truncate(24 * time.Hour),
		StartTime:  "09:00",
		EndTime:    "13:00",
	}

	// 名下有班次时删除应被拒绝，员工保持不变
	if err := svc.Delete(context.Background(), "emp-001"); !errors.Is(err, ErrEmployeeHasShifts) {
		t.Errorf("期望 ErrEmployeeHasShifts，实际: %v", err)
	}
	if _, ok := empRepo.employees["emp-001"]; !ok {
		t.Error("删除被拒绝时员工应保留")
	}
}

func TestEmployeeService_Delete_NotFound(t *testing.T) {
	svc, _, _ := setupTestEmployeeService()

	if err := svc.Delete(context.Background(), "nonexistent"); !errors.Is(err, ErrEmployeeNotFound) {
		t.Errorf("期望 ErrEmployeeNotFound，实际: %v", err)
	}
}

// ── List 测试 ──

func TestEmployeeService_List_SortedByName(t *testing.T) {
	svc, empRepo, _ := setupTestEmployeeService()
	empRepo.employees["emp-001"] = &model.Employee{EmployeeID: "emp-001", Name: "王五", EmployeeCode: "EMP003"}
	empRepo.employees["emp-002"] = &model.Employee{EmployeeID: "emp-002", Name: "张三", EmployeeCode: "EMP001"}

	result, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("期望2个员工，实际=%d", len(result))
	}
	if result[0].Name > result[1].Name {
		t.Errorf("期望按姓名升序，实际=%s, %s", result[0].Name, result[1].Name)
	}
}
