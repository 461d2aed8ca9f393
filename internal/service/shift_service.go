package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"shift-sync/backend/config"
	"shift-sync/backend/internal/dto"
	"shift-sync/backend/internal/model"
	"shift-sync/backend/internal/repository"
	"shift-sync/backend/pkg/timeutil"
)

// ── 班次模块业务错误 ──

var (
	ErrShiftNotFound  = errors.New("班次不存在")
	ErrShiftForbidden = errors.New("无权操作该班次")
)

// ShiftValidationError 业务规则校验失败，携带全部失败原因
// 校验一次性跑完所有规则，不在第一条失败处中断
type ShiftValidationError struct {
	Errors []string
}

func (e *ShiftValidationError) Error() string {
	return strings.Join(e.Errors, "；")
}

// ShiftService 班次业务接口
type ShiftService interface {
	Create(ctx context.Context, req *dto.CreateShiftRequest, callerID, callerRole string) (*dto.ShiftResponse, error)
	GetByID(ctx context.Context, id string) (*dto.ShiftResponse, error)
	List(ctx context.Context, req *dto.ShiftListRequest) ([]dto.ShiftResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateShiftRequest, callerID, callerRole string) (*dto.ShiftResponse, error)
	Delete(ctx context.Context, id, callerRole string, callerEmployeeID *string) error
	// Validate 只跑校验不落库，供排班界面即时反馈
	Validate(ctx context.Context, req *dto.CreateShiftRequest, callerRole string) (*dto.ShiftValidationResult, error)
	WorkingHours(ctx context.Context, req *dto.WorkingHoursRequest) ([]dto.WorkingHoursResponse, error)
}

type shiftService struct {
	cfg    *config.Config
	repo   *repository.Repository
	logger *zap.Logger
}

// NewShiftService 创建 ShiftService 实例
func NewShiftService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) ShiftService {
	return &shiftService{cfg: cfg, repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *shiftService) Create(ctx context.Context, req *dto.CreateShiftRequest, callerID, callerRole string) (*dto.ShiftResponse, error) {
	date, formatErrs := s.parseShiftFields(req.Date, req.StartTime, req.EndTime)
	if len(formatErrs) > 0 {
		return nil, &ShiftValidationError{Errors: formatErrs}
	}

	if _, err := s.repo.Employee.GetByID(ctx, req.EmployeeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		s.logger.Error("查询员工失败", zap.String("id", req.EmployeeID), zap.Error(err))
		return nil, err
	}

	shift := &model.Shift{
		EmployeeID: req.EmployeeID,
		Date:       date,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
	}
	shift.CreatedBy = &callerID
	shift.UpdatedBy = &callerID

	// 校验与写入在 (员工, 日期) 锁内串行执行，并发创建只有一方能通过重叠检查
	err := s.repo.Shift.WithEmployeeDayLock(ctx, req.EmployeeID, date, func(locked repository.ShiftRepository) error {
		ruleErrs, err := s.validateShiftRules(ctx, locked, req.EmployeeID, date, req.StartTime, req.EndTime, "", callerRole)
		if err != nil {
			return err
		}
		if len(ruleErrs) > 0 {
			return &ShiftValidationError{Errors: ruleErrs}
		}
		return locked.Create(ctx, shift)
	})
	if err != nil {
		var vErr *ShiftValidationError
		if !errors.As(err, &vErr) {
			s.logger.Error("创建班次失败", zap.Error(err))
		}
		return nil, err
	}

	created, err := s.repo.Shift.GetByID(ctx, shift.ShiftID)
	if err != nil {
		return nil, err
	}

	return s.toShiftResponse(created), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *shiftService) GetByID(ctx context.Context, id string) (*dto.ShiftResponse, error) {
	shift, err := s.repo.Shift.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftNotFound
		}
		s.logger.Error("查询班次失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return s.toShiftResponse(shift), nil
}

// ────────────────────── List ──────────────────────

func (s *shiftService) List(ctx context.Context, req *dto.ShiftListRequest) ([]dto.ShiftResponse, error) {
	filter := repository.ShiftFilter{EmployeeID: req.EmployeeID}

	if req.Date != "" {
		d, err := parseDate(req.Date)
		if err != nil {
			return nil, &ShiftValidationError{Errors: []string{errInvalidDate(req.Date)}}
		}
		filter.Date = &d
	}
	if req.StartDate != "" {
		d, err := parseDate(req.StartDate)
		if err != nil {
			return nil, &ShiftValidationError{Errors: []string{errInvalidDate(req.StartDate)}}
		}
		filter.StartDate = &d
	}
	if req.EndDate != "" {
		d, err := parseDate(req.EndDate)
		if err != nil {
			return nil, &ShiftValidationError{Errors: []string{errInvalidDate(req.EndDate)}}
		}
		filter.EndDate = &d
	}

	shifts, err := s.repo.Shift.List(ctx, filter)
	if err != nil {
		s.logger.Error("列出班次失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.ShiftResponse, 0, len(shifts))
	for i := range shifts {
		result = append(result, *s.toShiftResponse(&shifts[i]))
	}

	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *shiftService) Update(ctx context.Context, id string, req *dto.UpdateShiftRequest, callerID, callerRole string) (*dto.ShiftResponse, error) {
	shift, err := s.repo.Shift.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftNotFound
		}
		s.logger.Error("查询班次失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	employeeID := shift.EmployeeID
	date := shift.Date
	startTime := shift.StartTime
	endTime := shift.EndTime

	if req.EmployeeID != nil {
		employeeID = *req.EmployeeID
	}
	if req.StartTime != nil {
		startTime = *req.StartTime
	}
	if req.EndTime != nil {
		endTime = *req.EndTime
	}

	var formatErrs []string
	if req.Date != nil {
		d, err := parseDate(*req.Date)
		if err != nil {
			formatErrs = append(formatErrs, errInvalidDate(*req.Date))
		} else {
			date = d
		}
	}
	if req.StartTime != nil && !timeutil.IsValidTime(startTime) {
		formatErrs = append(formatErrs, errInvalidTime(startTime))
	}
	if req.EndTime != nil && !timeutil.IsValidTime(endTime) {
		formatErrs = append(formatErrs, errInvalidTime(endTime))
	}
	if len(formatErrs) > 0 {
		return nil, &ShiftValidationError{Errors: formatErrs}
	}

	if employeeID != shift.EmployeeID {
		if _, err := s.repo.Employee.GetByID(ctx, employeeID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrEmployeeNotFound
			}
			return nil, err
		}
	}

	shift.EmployeeID = employeeID
	shift.Date = date
	shift.StartTime = startTime
	shift.EndTime = endTime
	shift.UpdatedBy = &callerID

	// 重叠检查排除自身，否则原地修改永远撞上旧记录
	err = s.repo.Shift.WithEmployeeDayLock(ctx, employeeID, date, func(locked repository.ShiftRepository) error {
		ruleErrs, err := s.validateShiftRules(ctx, locked, employeeID, date, startTime, endTime, id, callerRole)
		if err != nil {
			return err
		}
		if len(ruleErrs) > 0 {
			return &ShiftValidationError{Errors: ruleErrs}
		}
		return locked.Update(ctx, shift)
	})
	if err != nil {
		var vErr *ShiftValidationError
		if !errors.As(err, &vErr) {
			s.logger.Error("更新班次失败", zap.String("id", id), zap.Error(err))
		}
		return nil, err
	}

	updated, err := s.repo.Shift.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return s.toShiftResponse(updated), nil
}

// ────────────────────── Delete ──────────────────────

func (s *shiftService) Delete(ctx context.Context, id, callerRole string, callerEmployeeID *string) error {
	shift, err := s.repo.Shift.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrShiftNotFound
		}
		s.logger.Error("查询班次失败", zap.String("id", id), zap.Error(err))
		return err
	}

	// 非管理员只能删除自己名下的班次
	if callerRole != model.RoleAdmin {
		if callerEmployeeID == nil || *callerEmployeeID != shift.EmployeeID {
			return ErrShiftForbidden
		}
	}

	if err := s.repo.Shift.Delete(ctx, id); err != nil {
		s.logger.Error("删除班次失败", zap.String("id", id), zap.Error(err))
		return err
	}

	return nil
}

// ────────────────────── Validate ──────────────────────

func (s *shiftService) Validate(ctx context.Context, req *dto.CreateShiftRequest, callerRole string) (*dto.ShiftValidationResult, error) {
	date, formatErrs := s.parseShiftFields(req.Date, req.StartTime, req.EndTime)
	if len(formatErrs) > 0 {
		return &dto.ShiftValidationResult{IsValid: false, Errors: formatErrs}, nil
	}

	ruleErrs, err := s.validateShiftRules(ctx, s.repo.Shift, req.EmployeeID, date, req.StartTime, req.EndTime, "", callerRole)
	if err != nil {
		s.logger.Error("校验班次失败", zap.Error(err))
		return nil, err
	}

	return &dto.ShiftValidationResult{
		IsValid: len(ruleErrs) == 0,
		Errors:  ruleErrs,
	}, nil
}

// ────────────────────── WorkingHours ──────────────────────

func (s *shiftService) WorkingHours(ctx context.Context, req *dto.WorkingHoursRequest) ([]dto.WorkingHoursResponse, error) {
	filter := repository.ShiftFilter{EmployeeID: req.EmployeeID}
	if req.StartDate != "" {
		d, err := parseDate(req.StartDate)
		if err != nil {
			return nil, &ShiftValidationError{Errors: []string{errInvalidDate(req.StartDate)}}
		}
		filter.StartDate = &d
	}
	if req.EndDate != "" {
		d, err := parseDate(req.EndDate)
		if err != nil {
			return nil, &ShiftValidationError{Errors: []string{errInvalidDate(req.EndDate)}}
		}
		filter.EndDate = &d
	}

	employees, err := s.repo.Employee.List(ctx)
	if err != nil {
		s.logger.Error("列出员工失败", zap.Error(err))
		return nil, err
	}

	shifts, err := s.repo.Shift.List(ctx, filter)
	if err != nil {
		s.logger.Error("列出班次失败", zap.Error(err))
		return nil, err
	}

	byEmployee := make(map[string]*dto.WorkingHoursResponse, len(employees))
	result := make([]dto.WorkingHoursResponse, 0, len(employees))
	for i := range employees {
		e := &employees[i]
		if req.EmployeeID != "" && e.EmployeeID != req.EmployeeID {
			continue
		}
		result = append(result, dto.WorkingHoursResponse{
			EmployeeID:   e.EmployeeID,
			Name:         e.Name,
			EmployeeCode: e.EmployeeCode,
			Shifts:       []dto.WorkingHoursShift{},
		})
		byEmployee[e.EmployeeID] = &result[len(result)-1]
	}

	for i := range shifts {
		sh := &shifts[i]
		entry, ok := byEmployee[sh.EmployeeID]
		if !ok {
			continue
		}
		duration := timeutil.DurationHours(sh.StartTime, sh.EndTime)
		entry.TotalHours += duration
		entry.ShiftCount++
		entry.Shifts = append(entry.Shifts, dto.WorkingHoursShift{
			Date:      sh.Date.Format("2006-01-02"),
			StartTime: sh.StartTime,
			EndTime:   sh.EndTime,
			Duration:  duration,
		})
	}

	return result, nil
}

// ── 业务规则校验 ──

// validateShiftRules 跑全部业务规则并累积失败原因。
// excludeShiftID 非空时重叠检查跳过该班次（更新场景排除自身）。
func (s *shiftService) validateShiftRules(ctx context.Context, shiftRepo repository.ShiftRepository, employeeID string, date time.Time, startTime, endTime, excludeShiftID, callerRole string) ([]string, error) {
	var errs []string

	// 管理员不得为已过去的日期排班（UTC 日历日比较）
	if callerRole == model.RoleAdmin {
		today := time.Now().UTC().Truncate(24 * time.Hour)
		if date.Before(today) {
			errs = append(errs, "管理员不能为过去的日期创建班次")
		}
	}

	// 最短时长检查，end <= start 时长为非正数同样在此失败
	minHours := s.cfg.Shift.MinDurationHours
	if timeutil.DurationHours(startTime, endTime) < minHours {
		errs = append(errs, fmt.Sprintf("班次时长不得少于%g小时", minHours))
	}

	// 重叠检查：区间半开 [start, end)，首尾相接不算重叠，命中第一条即停
	existing, err := shiftRepo.ListByEmployeeAndDate(ctx, employeeID, date)
	if err != nil {
		return nil, err
	}
	for i := range existing {
		other := &existing[i]
		if excludeShiftID != "" && other.ShiftID == excludeShiftID {
			continue
		}
		// 仅同一 UTC 日历日的班次参与重叠比较
		if !other.Date.Equal(date) {
			continue
		}
		if timeutil.Overlaps(startTime, endTime, other.StartTime, other.EndTime) {
			errs = append(errs, fmt.Sprintf("该班次与已有班次（%s - %s）时间重叠", other.StartTime, other.EndTime))
			break
		}
	}

	return errs, nil
}

// parseShiftFields 校验日期与起止时刻的格式，返回解析后的日期与格式错误集合
func (s *shiftService) parseShiftFields(dateStr, startTime, endTime string) (time.Time, []string) {
	var errs []string

	date, err := parseDate(dateStr)
	if err != nil {
		errs = append(errs, errInvalidDate(dateStr))
	}
	if !timeutil.IsValidTime(startTime) {
		errs = append(errs, errInvalidTime(startTime))
	}
	if !timeutil.IsValidTime(endTime) {
		errs = append(errs, errInvalidTime(endTime))
	}

	return date, errs
}

// ── 内部辅助方法 ──

// parseDate 解析 "YYYY-MM-DD" 为 UTC 日历日
func parseDate(s string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", s, time.UTC)
}

func errInvalidDate(v string) string {
	return fmt.Sprintf("日期格式无效: %s，应为 YYYY-MM-DD", v)
}

func errInvalidTime(v string) string {
	return fmt.Sprintf("时间格式无效: %s，应为 HH:mm", v)
}

func (s *shiftService) toShiftResponse(shift *model.Shift) *dto.ShiftResponse {
	resp := &dto.ShiftResponse{
		ID:        shift.ShiftID,
		Date:      shift.Date.Format("2006-01-02"),
		StartTime: shift.StartTime,
		EndTime:   shift.EndTime,
		Duration:  timeutil.DurationHours(shift.StartTime, shift.EndTime),
		CreatedAt: shift.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt: shift.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}

	if shift.Employee != nil {
		resp.Employee = &dto.EmployeeBrief{
			ID:           shift.Employee.EmployeeID,
			Name:         shift.Employee.Name,
			EmployeeCode: shift.Employee.EmployeeCode,
			Department:   shift.Employee.Department,
		}
	}

	return resp
}
