package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"shift-sync/backend/internal/dto"
	"shift-sync/backend/internal/model"
	"shift-sync/backend/internal/repository"
	"shift-sync/backend/pkg/timeutil"
)

// ── 问题反馈模块业务错误 ──

var (
	ErrIssueNotFound        = errors.New("问题不存在")
	ErrIssueForbidden       = errors.New("无权查看该问题")
	ErrInvalidIssueStatus   = errors.New("问题状态无效")
	ErrInvalidIssuePriority = errors.New("问题优先级无效")
)

// IssueService 问题反馈业务接口
// 非管理员只能查看自己提交的问题，GetByID / List 据此收窄
type IssueService interface {
	Create(ctx context.Context, req *dto.CreateIssueRequest, callerID string) (*dto.IssueResponse, error)
	GetByID(ctx context.Context, id, callerID, callerRole string) (*dto.IssueResponse, error)
	List(ctx context.Context, req *dto.IssueListRequest, callerID, callerRole string) ([]dto.IssueResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateIssueRequest, callerID string) (*dto.IssueResponse, error)
	MarkRead(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	UnreadCount(ctx context.Context) (int64, error)
}

type issueService struct {
	repo     *repository.Repository
	shiftSvc ShiftService
	logger   *zap.Logger
}

// NewIssueService 创建 IssueService 实例
func NewIssueService(repo *repository.Repository, shiftSvc ShiftService, logger *zap.Logger) IssueService {
	return &issueService{repo: repo, shiftSvc: shiftSvc, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *issueService) Create(ctx context.Context, req *dto.CreateIssueRequest, callerID string) (*dto.IssueResponse, error) {
	priority := req.Priority
	if priority == "" {
		priority = model.IssuePriorityMedium
	}
	if !model.IsValidIssuePriority(priority) {
		return nil, ErrInvalidIssuePriority
	}

	issue := &model.Issue{
		Title:       req.Title,
		Description: req.Description,
		Status:      model.IssueStatusOpen,
		Priority:    priority,
		CreatedBy:   callerID,
		ShiftID:     req.ShiftID,
	}

	// 班次快照在创建时固化，此后班次被改动或删除都不影响问题的可读性。
	// 关联了班次时以库内数据为准，客户端快照仅作兜底。
	if req.ShiftID != nil {
		snapshot, err := s.snapshotShift(ctx, *req.ShiftID)
		if err != nil {
			return nil, err
		}
		issue.ShiftData = snapshot
	} else if req.ShiftData != nil {
		issue.ShiftData = &model.ShiftSnapshot{
			Date:         req.ShiftData.Date,
			EmployeeName: req.ShiftData.EmployeeName,
			EmployeeCode: req.ShiftData.EmployeeCode,
			Department:   req.ShiftData.Department,
			StartTime:    req.ShiftData.StartTime,
			EndTime:      req.ShiftData.EndTime,
		}
	}

	if err := s.repo.Issue.Create(ctx, issue); err != nil {
		s.logger.Error("创建问题失败", zap.Error(err))
		return nil, err
	}

	created, err := s.repo.Issue.GetByID(ctx, issue.IssueID)
	if err != nil {
		return nil, err
	}

	return s.toIssueResponse(created), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *issueService) GetByID(ctx context.Context, id, callerID, callerRole string) (*dto.IssueResponse, error) {
	issue, err := s.repo.Issue.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIssueNotFound
		}
		s.logger.Error("查询问题失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if callerRole != model.RoleAdmin && issue.CreatedBy != callerID {
		return nil, ErrIssueForbidden
	}

	return s.toIssueResponse(issue), nil
}

// ────────────────────── List ──────────────────────

func (s *issueService) List(ctx context.Context, req *dto.IssueListRequest, callerID, callerRole string) ([]dto.IssueResponse, int64, error) {
	if req.Status != "" && !model.IsValidIssueStatus(req.Status) {
		return nil, 0, ErrInvalidIssueStatus
	}
	if req.Priority != "" && !model.IsValidIssuePriority(req.Priority) {
		return nil, 0, ErrInvalidIssuePriority
	}

	filter := repository.IssueFilter{
		Status:     req.Status,
		Priority:   req.Priority,
		Search:     req.Search,
		ShowSolved: req.ShowSolved,
	}
	if callerRole != model.RoleAdmin {
		filter.CreatedBy = callerID
	}

	issues, total, err := s.repo.Issue.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出问题失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.IssueResponse, 0, len(issues))
	for i := range issues {
		result = append(result, *s.toIssueResponse(&issues[i]))
	}

	return result, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *issueService) Update(ctx context.Context, id string, req *dto.UpdateIssueRequest, callerID string) (*dto.IssueResponse, error) {
	issue, err := s.repo.Issue.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIssueNotFound
		}
		s.logger.Error("查询问题失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if req.AdminResponse != nil {
		issue.AdminResponse = *req.AdminResponse
	}
	if req.AdminNotes != nil {
		issue.AdminNotes = *req.AdminNotes
	}

	// 修正数据齐全且问题关联了班次时，走完整的班次更新链路：
	// 重校验（时长、重叠、并发锁）通过后才接受修正
	if req.CorrectedShiftData != nil && req.CorrectedShiftData.StartTime != "" && req.CorrectedShiftData.EndTime != "" {
		corrected := req.CorrectedShiftData

		// 格式先行校验，未关联班次的修正同样不接受非法时刻
		var formatErrs []string
		if corrected.Date != "" {
			if _, err := parseDate(corrected.Date); err != nil {
				formatErrs = append(formatErrs, errInvalidDate(corrected.Date))
			}
		}
		if !timeutil.IsValidTime(corrected.StartTime) {
			formatErrs = append(formatErrs, errInvalidTime(corrected.StartTime))
		}
		if !timeutil.IsValidTime(corrected.EndTime) {
			formatErrs = append(formatErrs, errInvalidTime(corrected.EndTime))
		}
		if len(formatErrs) > 0 {
			return nil, &ShiftValidationError{Errors: formatErrs}
		}

		if issue.ShiftID != nil {
			updateReq := &dto.UpdateShiftRequest{
				StartTime: &corrected.StartTime,
				EndTime:   &corrected.EndTime,
			}
			if corrected.Date != "" {
				updateReq.Date = &corrected.Date
			}
			if _, err := s.shiftSvc.Update(ctx, *issue.ShiftID, updateReq, callerID, model.RoleAdmin); err != nil {
				return nil, err
			}
		}
		issue.CorrectedShiftData = &model.CorrectedShift{
			Date:      corrected.Date,
			StartTime: corrected.StartTime,
			EndTime:   corrected.EndTime,
			Duration:  timeutil.DurationHours(corrected.StartTime, corrected.EndTime),
		}
	}

	if req.Status != nil {
		if !model.IsValidIssueStatus(*req.Status) {
			return nil, ErrInvalidIssueStatus
		}
		issue.Status = *req.Status
		if *req.Status == model.IssueStatusResolved || *req.Status == model.IssueStatusClosed {
			now := time.Now().UTC()
			issue.ResolvedBy = &callerID
			issue.ResolvedAt = &now
		} else {
			issue.ResolvedBy = nil
			issue.ResolvedAt = nil
		}
	}

	// 管理员处理过即视为已读
	issue.IsRead = true

	if err := s.repo.Issue.Update(ctx, issue); err != nil {
		s.logger.Error("更新问题失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return s.toIssueResponse(issue), nil
}

// ────────────────────── MarkRead ──────────────────────

func (s *issueService) MarkRead(ctx context.Context, id string) error {
	issue, err := s.repo.Issue.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrIssueNotFound
		}
		s.logger.Error("查询问题失败", zap.String("id", id), zap.Error(err))
		return err
	}

	if issue.IsRead {
		return nil
	}

	issue.IsRead = true
	if err := s.repo.Issue.Update(ctx, issue); err != nil {
		s.logger.Error("标记问题已读失败", zap.String("id", id), zap.Error(err))
		return err
	}

	return nil
}

// ────────────────────── Delete ──────────────────────

func (s *issueService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.Issue.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrIssueNotFound
		}
		s.logger.Error("查询问题失败", zap.String("id", id), zap.Error(err))
		return err
	}

	if err := s.repo.Issue.Delete(ctx, id); err != nil {
		s.logger.Error("删除问题失败", zap.String("id", id), zap.Error(err))
		return err
	}

	return nil
}

// ────────────────────── UnreadCount ──────────────────────

func (s *issueService) UnreadCount(ctx context.Context) (int64, error) {
	count, err := s.repo.Issue.CountUnread(ctx)
	if err != nil {
		s.logger.Error("统计未读问题失败", zap.Error(err))
		return 0, err
	}
	return count, nil
}

// ── 内部辅助方法 ──

// snapshotShift 按班次当前状态构建快照
func (s *issueService) snapshotShift(ctx context.Context, shiftID string) (*model.ShiftSnapshot, error) {
	shift, err := s.repo.Shift.GetByID(ctx, shiftID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftNotFound
		}
		s.logger.Error("查询班次失败", zap.String("id", shiftID), zap.Error(err))
		return nil, err
	}

	snapshot := &model.ShiftSnapshot{
		Date:      shift.Date.Format("2006-01-02"),
		StartTime: shift.StartTime,
		EndTime:   shift.EndTime,
	}
	if shift.Employee != nil {
		snapshot.EmployeeName = shift.Employee.Name
		snapshot.EmployeeCode = shift.Employee.EmployeeCode
		snapshot.Department = shift.Employee.Department
	}

	return snapshot, nil
}

func (s *issueService) toIssueResponse(issue *model.Issue) *dto.IssueResponse {
	resp := &dto.IssueResponse{
		ID:            issue.IssueID,
		Title:         issue.Title,
		Description:   issue.Description,
		Status:        issue.Status,
		Priority:      issue.Priority,
		IsRead:        issue.IsRead,
		ShiftID:       issue.ShiftID,
		AdminResponse: issue.AdminResponse,
		AdminNotes:    issue.AdminNotes,
		CreatedAt:     issue.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:     issue.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}

	if issue.ShiftData != nil {
		resp.ShiftData = &dto.IssueShiftData{
			Date:         issue.ShiftData.Date,
			EmployeeName: issue.ShiftData.EmployeeName,
			EmployeeCode: issue.ShiftData.EmployeeCode,
			Department:   issue.ShiftData.Department,
			StartTime:    issue.ShiftData.StartTime,
			EndTime:      issue.ShiftData.EndTime,
		}
	}
	if issue.CorrectedShiftData != nil {
		resp.CorrectedShiftData = &dto.CorrectedShiftInput{
			Date:      issue.CorrectedShiftData.Date,
			StartTime: issue.CorrectedShiftData.StartTime,
			EndTime:   issue.CorrectedShiftData.EndTime,
		}
	}
	if issue.Creator != nil {
		resp.CreatedBy = &dto.IssueCreator{
			ID:    issue.Creator.UserID,
			Email: issue.Creator.Email,
			Role:  issue.Creator.Role,
		}
	}
	if issue.ResolvedAt != nil {
		resolved := issue.ResolvedAt.Format("2006-01-02T15:04:05Z")
		resp.ResolvedAt = &resolved
	}

	return resp
}
