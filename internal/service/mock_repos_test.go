package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"shift-sync/backend/internal/model"
	"shift-sync/backend/internal/repository"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		user.UserID = fmt.Sprintf("user-%d", len(m.users)+1)
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmployeeID(_ context.Context, employeeID string) (*model.User, error) {
	for _, u := range m.users {
		if u.EmployeeID != nil && *u.EmployeeID == employeeID {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.users[user.UserID] = user
	return nil
}

// ── Mock EmployeeRepository ──

type mockEmployeeRepo struct {
	employees map[string]*model.Employee
	idCounter int
}

func newMockEmployeeRepo() *mockEmployeeRepo {
	return &mockEmployeeRepo{employees: make(map[string]*model.Employee)}
}

func (m *mockEmployeeRepo) Create(_ context.Context, employee *model.Employee) error {
	if employee.EmployeeID == "" {
		m.idCounter++
		employee.EmployeeID = fmt.Sprintf("emp-%d", m.idCounter)
	}
	employee.CreatedAt = time.Now()
	employee.UpdatedAt = time.Now()
	m.employees[employee.EmployeeID] = employee
	return nil
}

func (m *mockEmployeeRepo) GetByID(_ context.Context, id string) (*model.Employee, error) {
	if e, ok := m.employees[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEmployeeRepo) GetByCode(_ context.Context, code string) (*model.Employee, error) {
	for _, e := range m.employees {
		if strings.EqualFold(e.EmployeeCode, code) {
			return e, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEmployeeRepo) List(_ context.Context) ([]model.Employee, error) {
	result := make([]model.Employee, 0, len(m.employees))
	for _, e := range m.employees {
		result = append(result, *e)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockEmployeeRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.employees)), nil
}

func (m *mockEmployeeRepo) Update(_ context.Context, employee *model.Employee) error {
	if _, ok := m.employees[employee.EmployeeID]; !ok {
		return gorm.ErrRecordNotFound
	}
	employee.Version++
	m.employees[employee.EmployeeID] = employee
	return nil
}

func (m *mockEmployeeRepo) Delete(_ context.Context, id string) error {
	delete(m.employees, id)
	return nil
}

// ── Mock ShiftRepository ──

// mockShiftRepo 的 WithEmployeeDayLock 用 (员工, 日期) 粒度互斥锁模拟
// pg_advisory_xact_lock 的串行化语义，并发测试依赖这一点
type mockShiftRepo struct {
	mu        sync.Mutex
	shifts    map[string]*model.Shift
	idCounter int

	lockMu   sync.Mutex
	dayLocks map[string]*sync.Mutex
}

func newMockShiftRepo() *mockShiftRepo {
	return &mockShiftRepo{
		shifts:   make(map[string]*model.Shift),
		dayLocks: make(map[string]*sync.Mutex),
	}
}

func (m *mockShiftRepo) Create(_ context.Context, shift *model.Shift) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if shift.ShiftID == "" {
		m.idCounter++
		shift.ShiftID = fmt.Sprintf("shift-%d", m.idCounter)
	}
	shift.CreatedAt = time.Now()
	shift.UpdatedAt = time.Now()
	m.shifts[shift.ShiftID] = shift
	return nil
}

// GetByID 返回副本，模拟 GORM First 的快照语义：
// 调用方对返回值的修改在 Update 之前不落库
func (m *mockShiftRepo) GetByID(_ context.Context, id string) (*model.Shift, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.shifts[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockShiftRepo) List(_ context.Context, filter repository.ShiftFilter) ([]model.Shift, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Shift
	for _, s := range m.shifts {
		if filter.EmployeeID != "" && s.EmployeeID != filter.EmployeeID {
			continue
		}
		if filter.Date != nil && !s.Date.Equal(*filter.Date) {
			continue
		}
		if filter.StartDate != nil && s.Date.Before(*filter.StartDate) {
			continue
		}
		if filter.EndDate != nil && s.Date.After(*filter.EndDate) {
			continue
		}
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].StartTime < result[j].StartTime
	})
	return result, nil
}

func (m *mockShiftRepo) ListByEmployeeAndDate(_ context.Context, employeeID string, date time.Time) ([]model.Shift, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Shift
	for _, s := range m.shifts {
		if s.EmployeeID == employeeID && s.Date.Equal(date) {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartTime < result[j].StartTime })
	return result, nil
}

func (m *mockShiftRepo) Update(_ context.Context, shift *model.Shift) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.shifts[shift.ShiftID]; !ok {
		return gorm.ErrRecordNotFound
	}
	shift.Version++
	shift.UpdatedAt = time.Now()
	m.shifts[shift.ShiftID] = shift
	return nil
}

func (m *mockShiftRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.shifts, id)
	return nil
}

func (m *mockShiftRepo) CountByEmployee(_ context.Context, employeeID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, s := range m.shifts {
		if s.EmployeeID == employeeID {
			count++
		}
	}
	return count, nil
}

func (m *mockShiftRepo) WithEmployeeDayLock(_ context.Context, employeeID string, date time.Time, fn func(locked repository.ShiftRepository) error) error {
	key := employeeID + "|" + date.Format("2006-01-02")

	m.lockMu.Lock()
	lock, ok := m.dayLocks[key]
	if !ok {
		lock = &sync.Mutex{}
		m.dayLocks[key] = lock
	}
	m.lockMu.Unlock()

	lock.Lock()
	defer lock.Unlock()
	return fn(m)
}

// ── Mock IssueRepository ──

type mockIssueRepo struct {
	issues    []*model.Issue
	idCounter int
}

func newMockIssueRepo() *mockIssueRepo {
	return &mockIssueRepo{}
}

func (m *mockIssueRepo) Create(_ context.Context, issue *model.Issue) error {
	if issue.IssueID == "" {
		m.idCounter++
		issue.IssueID = fmt.Sprintf("issue-%d", m.idCounter)
	}
	issue.CreatedAt = time.Now()
	issue.UpdatedAt = time.Now()
	m.issues = append(m.issues, issue)
	return nil
}

func (m *mockIssueRepo) GetByID(_ context.Context, id string) (*model.Issue, error) {
	for _, i := range m.issues {
		if i.IssueID == id {
			cp := *i
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockIssueRepo) List(_ context.Context, filter repository.IssueFilter, offset, limit int) ([]model.Issue, int64, error) {
	var filtered []model.Issue
	for _, i := range m.issues {
		if filter.Status != "" {
			if i.Status != filter.Status {
				continue
			}
		} else if !filter.ShowSolved {
			if i.Status == model.IssueStatusResolved || i.Status == model.IssueStatusClosed {
				continue
			}
		}
		if filter.Priority != "" && i.Priority != filter.Priority {
			continue
		}
		if filter.Search != "" &&
			!strings.Contains(strings.ToLower(i.Title), strings.ToLower(filter.Search)) &&
			!strings.Contains(strings.ToLower(i.Description), strings.ToLower(filter.Search)) {
			continue
		}
		if filter.CreatedBy != "" && i.CreatedBy != filter.CreatedBy {
			continue
		}
		filtered = append(filtered, *i)
	}
	total := int64(len(filtered))
	if offset >= len(filtered) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[offset:end], total, nil
}

func (m *mockIssueRepo) Update(_ context.Context, issue *model.Issue) error {
	for idx, i := range m.issues {
		if i.IssueID == issue.IssueID {
			issue.Version++
			issue.UpdatedAt = time.Now()
			m.issues[idx] = issue
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockIssueRepo) Delete(_ context.Context, id string) error {
	for idx, i := range m.issues {
		if i.IssueID == id {
			m.issues = append(m.issues[:idx], m.issues[idx+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockIssueRepo) CountUnread(_ context.Context) (int64, error) {
	var count int64
	for _, i := range m.issues {
		if !i.IsRead {
			count++
		}
	}
	return count, nil
}
