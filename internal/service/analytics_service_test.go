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

func setupTestAnalyticsService() (AnalyticsService, *mockShiftRepo, *mockEmployeeRepo) {
	shiftRepo := newMockShiftRepo()
	employeeRepo := newMockEmployeeRepo()
	repo := &repository.Repository{
		User:     newMockUserRepo(),
		Employee: employeeRepo,
		Shift:    shiftRepo,
		Issue:    newMockIssueRepo(),
	}
	svc := NewAnalyticsService(repo, zap.NewNop())
	return svc, shiftRepo, employeeRepo
}

func seedAnalyticsShift(shiftRepo *mockShiftRepo, id, empID, dept, start, end string, daysAgo int) {
	emp := &model.Employee{EmployeeID: empID, Name: empID, EmployeeCode: empID, Department: dept}
	shiftRepo.shifts[id] = &model.Shift{
		ShiftID:    id,
		EmployeeID: empID,
		Date:       time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, -daysAgo),
		StartTime:  start,
		EndTime:    end,
		Employee:   emp,
	}
}

// ── Dashboard 测试 ──

func TestAnalyticsService_Dashboard_Totals(t *testing.T) {
	svc, shiftRepo, empRepo := setupTestAnalyticsService()
	empRepo.employees["emp-001"] = &model.Employee{EmployeeID: "emp-001", Name: "张三", EmployeeCode: "EMP001"}
	empRepo.employees["emp-002"] = &model.Employee{EmployeeID: "emp-002", Name: "李四", EmployeeCode: "EMP002"}
	seedAnalyticsShift(shiftRepo, "shift-001", "emp-001", "运营部", "09:00", "13:00", 1) // 4h
	seedAnalyticsShift(shiftRepo, "shift-002", "emp-001", "运营部", "14:00", "18:30", 1) // 4.5h
	seedAnalyticsShift(shiftRepo, "shift-003", "emp-002", "客服部", "08:00", "16:00", 2) // 8h

	resp, err := svc.Dashboard(context.Background(), &dto.AnalyticsRequest{})
	if err != nil {
		t.Fatalf("Dashboard 应成功: %v", err)
	}
	if resp.TotalHours != 16.5 {
		t.Errorf("期望总工时=16.5，实际=%v", resp.TotalHours)
	}
	if resp.TotalShifts != 3 {
		t.Errorf("期望班次数=3，实际=%d", resp.TotalShifts)
	}
	if resp.TotalEmployees != 2 {
		t.Errorf("期望员工数=2，实际=%d", resp.TotalEmployees)
	}
	if resp.AvgHoursPerShift != 5.5 {
		t.Errorf("期望单班均时=5.5，实际=%v", resp.AvgHoursPerShift)
	}
	if resp.AvgHoursPerEmployee != 8.25 {
		t.Errorf("期望人均工时=8.25，实际=%v", resp.AvgHoursPerEmployee)
	}
}

func TestAnalyticsService_Dashboard_DailyTrendsSorted(t *testing.T) {
	svc, shiftRepo, _ := setupTestAnalyticsService()
	seedAnalyticsShift(shiftRepo, "shift-001", "emp-001", "运营部", "09:00", "13:00", 1)
	seedAnalyticsShift(shiftRepo, "shift-002", "emp-001", "运营部", "14:00", "18:00", 3)
	seedAnalyticsShift(shiftRepo, "shift-003", "emp-001", "运营部", "08:00", "12:00", 3)

	resp, err := svc.Dashboard(context.Background(), &dto.AnalyticsRequest{})
	if err != nil {
		t.Fatalf("Dashboard 应成功: %v", err)
	}
	if len(resp.DailyTrends) != 2 {
		t.Fatalf("期望2个趋势点，实际=%d", len(resp.DailyTrends))
	}
	if resp.DailyTrends[0].Date >= resp.DailyTrends[1].Date {
		t.Errorf("期望按日期升序，实际=%s, %s", resp.DailyTrends[0].Date, resp.DailyTrends[1].Date)
	}
	// 三天前的两个班次合并到同一趋势点
	if resp.DailyTrends[0].Hours != 8 {
		t.Errorf("期望同日工时合并=8，实际=%v", resp.DailyTrends[0].Hours)
	}
}

func TestAnalyticsService_Dashboard_DepartmentRanking(t *testing.T) {
	svc, shiftRepo, _ := setupTestAnalyticsService()
	seedAnalyticsShift(shiftRepo, "shift-001", "emp-001", "运营部", "09:00", "13:00", 1) // 4h
	seedAnalyticsShift(shiftRepo, "shift-002", "emp-002", "客服部", "08:00", "18:00", 1) // 10h
	seedAnalyticsShift(shiftRepo, "shift-003", "emp-003", "客服部", "09:00", "13:00", 2) // 4h

	resp, err := svc.Dashboard(context.Background(), &dto.AnalyticsRequest{})
	if err != nil {
		t.Fatalf("Dashboard 应成功: %v", err)
	}
	if len(resp.DepartmentPerformance) != 2 {
		t.Fatalf("期望2个部门，实际=%d", len(resp.DepartmentPerformance))
	}
	top := resp.DepartmentPerformance[0]
	if top.Department != "客服部" || top.TotalHours != 14 || top.EmployeeCount != 2 {
		t.Errorf("期望客服部/14h/2人居首，实际=%+v", top)
	}
}

func TestAnalyticsService_Dashboard_ExplicitRangeExcludesOutside(t *testing.T) {
	svc, shiftRepo, _ := setupTestAnalyticsService()
	seedAnalyticsShift(shiftRepo, "shift-001", "emp-001", "运营部", "09:00", "13:00", 1)
	seedAnalyticsShift(shiftRepo, "shift-002", "emp-001", "运营部", "09:00", "13:00", 10)

	day := time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, -1).Format("2006-01-02")
	resp, err := svc.Dashboard(context.Background(), &dto.AnalyticsRequest{
		StartDate: day,
		EndDate:   day,
	})
	if err != nil {
		t.Fatalf("Dashboard 应成功: %v", err)
	}
	if resp.TotalShifts != 1 || resp.TotalHours != 4 {
		t.Errorf("期望范围内仅1个班次/4h，实际=%d/%v", resp.TotalShifts, resp.TotalHours)
	}
}

func TestAnalyticsService_Dashboard_InvalidDate(t *testing.T) {
	svc, _, _ := setupTestAnalyticsService()

	_, err := svc.Dashboard(context.Background(), &dto.AnalyticsRequest{StartDate: "2026/01/01"})
	var vErr *ShiftValidationError
	if !errors.As(err, &vErr) {
		t.Errorf("期望 ShiftValidationError，实际: %v", err)
	}
}
