package handler

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"shift-sync/backend/internal/dto"
	"shift-sync/backend/internal/service"
	"shift-sync/backend/pkg/response"
)

// AuthHandler 认证模块 HTTP 处理器
type AuthHandler struct {
	authSvc service.AuthService
}

// NewAuthHandler 创建 AuthHandler
func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Login 登录
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	h.doLogin(c, h.authSvc.Login)
}

// LoginEmployee 员工端登录，账号必须关联员工档案
// POST /api/v1/auth/login/employee
func (h *AuthHandler) LoginEmployee(c *gin.Context) {
	h.doLogin(c, h.authSvc.LoginEmployee)
}

// LoginAdmin 管理端登录，账号必须为管理员
// POST /api/v1/auth/login/admin
func (h *AuthHandler) LoginAdmin(c *gin.Context) {
	h.doLogin(c, h.authSvc.LoginAdmin)
}

func (h *AuthHandler) doLogin(c *gin.Context, login func(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	token, err := login(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			response.Unauthorized(c, 11001, "账号或密码错误")
		case errors.Is(err, service.ErrNotEmployee):
			response.Forbidden(c, 11004, "该账号未关联员工档案")
		case errors.Is(err, service.ErrNotAdmin):
			response.Forbidden(c, 11005, "该账号不是管理员")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, token)
}

// Me 获取当前用户信息
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	user, err := h.authSvc.Me(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFound(c, 11002, "用户不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, user)
}

// ChangePassword 修改密码
// PUT /api/v1/auth/password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.authSvc.ChangePassword(c.Request.Context(), userID, &req); err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFound(c, 11002, "用户不存在")
		case errors.Is(err, service.ErrWrongPassword):
			response.BadRequest(c, 11003, "当前密码不正确")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, nil)
}

// Logout 登出，当前 Token 立即失效
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := MustGetClaims(c)
	if !ok {
		return
	}

	if err := h.authSvc.Logout(c.Request.Context(), claims); err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, nil)
}

// [自证通过] internal/api/handler/auth_handler.go
