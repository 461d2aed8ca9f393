package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"shift-sync/backend/config"
	"shift-sync/backend/internal/dto"
	"shift-sync/backend/internal/model"
	"shift-sync/backend/internal/repository"
	"shift-sync/backend/pkg/jwt"
)

// ── 测试辅助 ──

func setupTestAuthService() (AuthService, *mockUserRepo, *mockEmployeeRepo) {
	userRepo := newMockUserRepo()
	employeeRepo := newMockEmployeeRepo()
	repo := &repository.Repository{
		User:     userRepo,
		Employee: employeeRepo,
		Shift:    newMockShiftRepo(),
		Issue:    newMockIssueRepo(),
	}
	cfg := &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:      "test-secret-key-0123456789",
			AccessTokenTTL: 168 * time.Hour,
		},
	}
	jwtMgr := jwt.NewManager(&cfg.Auth)
	svc := NewAuthService(cfg, repo, jwtMgr, nil, zap.NewNop())
	return svc, userRepo, employeeRepo
}

func seedUser(userRepo *mockUserRepo, id, email, password string, employeeID *string) {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	userRepo.users[id] = &model.User{
		UserID:       id,
		Email:        email,
		PasswordHash: string(hash),
		Role:         model.RoleUser,
		EmployeeID:   employeeID,
	}
}

// ── Login 测试 ──

func TestAuthService_Login_ByEmail(t *testing.T) {
	svc, userRepo, _ := setupTestAuthService()
	seedUser(userRepo, "user-001", "zhangsan@example.com", "secret123", nil)

	result, err := svc.Login(context.Background(), &dto.LoginRequest{
		Identifier: "zhangsan@example.com",
		Password:   "secret123",
	})
	if err != nil {
		t.Fatalf("Login 应成功: %v", err)
	}
	if result.AccessToken == "" {
		t.Error("期望返回 AccessToken")
	}
	if result.User.Email != "zhangsan@example.com" {
		t.Errorf("期望邮箱=zhangsan@example.com，实际=%s", result.User.Email)
	}
}

func TestAuthService_Login_ByEmployeeCodeCaseInsensitive(t *testing.T) {
	svc, userRepo, empRepo := setupTestAuthService()
	empRepo.employees["emp-001"] = &model.Employee{
		EmployeeID: "emp-001", Name: "张三", EmployeeCode: "EMP001",
	}
	empID := "emp-001"
	seedUser(userRepo, "user-001", "zhangsan@example.com", "secret123", &empID)

	// 员工编号匹配不区分大小写
	result, err := svc.Login(context.Background(), &dto.LoginRequest{
		Identifier: "emp001",
		Password:   "secret123",
	})
	if err != nil {
		t.Fatalf("员工编号登录应成功: %v", err)
	}
	if result.User.EmployeeID == nil || *result.User.EmployeeID != "emp-001" {
		t.Error("期望关联员工emp-001")
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	svc, userRepo, _ := setupTestAuthService()
	seedUser(userRepo, "user-001", "zhangsan@example.com", "secret123", nil)

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Identifier: "zhangsan@example.com",
		Password:   "wrong",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("期望 ErrInvalidCredentials，实际: %v", err)
	}
}

func TestAuthService_Login_UnknownIdentifier(t *testing.T) {
	svc, _, _ := setupTestAuthService()

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Identifier: "nobody@example.com",
		Password:   "secret123",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("期望 ErrInvalidCredentials，实际: %v", err)
	}
}

func TestAuthService_LoginEmployee_RequiresLinkedEmployee(t *testing.T) {
	svc, userRepo, _ := setupTestAuthService()
	seedUser(userRepo, "user-001", "zhangsan@example.com", "secret123", nil)

	_, err := svc.LoginEmployee(context.Background(), &dto.LoginRequest{
		Identifier: "zhangsan@example.com",
		Password:   "secret123",
	})
	if !errors.Is(err, ErrNotEmployee) {
		t.Errorf("期望 ErrNotEmployee，实际: %v", err)
	}

	empID := "emp-001"
	seedUser(userRepo, "user-002", "lisi@example.com", "secret123", &empID)
	if _, err := svc.LoginEmployee(context.Background(), &dto.LoginRequest{
		Identifier: "lisi@example.com",
		Password:   "secret123",
	}); err != nil {
		t.Errorf("关联员工的账号应登录成功: %v", err)
	}
}

func TestAuthService_LoginAdmin_RequiresAdminRole(t *testing.T) {
	svc, userRepo, _ := setupTestAuthService()
	seedUser(userRepo, "user-001", "zhangsan@example.com", "secret123", nil)

	_, err := svc.LoginAdmin(context.Background(), &dto.LoginRequest{
		Identifier: "zhangsan@example.com",
		Password:   "secret123",
	})
	if !errors.Is(err, ErrNotAdmin) {
		t.Errorf("期望 ErrNotAdmin，实际: %v", err)
	}

	userRepo.users["admin-001"] = func() *model.User {
		hash, _ := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
		return &model.User{
			UserID:       "admin-001",
			Email:        "admin@example.com",
			PasswordHash: string(hash),
			Role:         model.RoleAdmin,
		}
	}()
	if _, err := svc.LoginAdmin(context.Background(), &dto.LoginRequest{
		Identifier: "admin@example.com",
		Password:   "secret123",
	}); err != nil {
		t.Errorf("管理员账号应登录成功: %v", err)
	}
}

// ── ChangePassword 测试 ──

func TestAuthService_ChangePassword_Success(t *testing.T) {
	svc, userRepo, _ := setupTestAuthService()
	seedUser(userRepo, "user-001", "zhangsan@example.com", "secret123", nil)

	err := svc.ChangePassword(context.Background(), "user-001", &dto.ChangePasswordRequest{
		CurrentPassword: "secret123",
		NewPassword:     "newsecret456",
	})
	if err != nil {
		t.Fatalf("ChangePassword 应成功: %v", err)
	}

	// 新密码可登录，旧密码失效
	if _, err := svc.Login(context.Background(), &dto.LoginRequest{
		Identifier: "zhangsan@example.com", Password: "newsecret456",
	}); err != nil {
		t.Errorf("新密码登录应成功: %v", err)
	}
	if _, err := svc.Login(context.Background(), &dto.LoginRequest{
		Identifier: "zhangsan@example.com", Password: "secret123",
	}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("旧密码应失效，实际: %v", err)
	}
}

func TestAuthService_ChangePassword_WrongCurrent(t *testing.T) {
	svc, userRepo, _ := setupTestAuthService()
	seedUser(userRepo, "user-001", "zhangsan@example.com", "secret123", nil)

	err := svc.ChangePassword(context.Background(), "user-001", &dto.ChangePasswordRequest{
		CurrentPassword: "wrong",
		NewPassword:     "newsecret456",
	})
	if !errors.Is(err, ErrWrongPassword) {
		t.Errorf("期望 ErrWrongPassword，实际: %v", err)
	}
}

// ── Me 测试 ──

func TestAuthService_Me_NotFound(t *testing.T) {
	svc, _, _ := setupTestAuthService()

	_, err := svc.Me(context.Background(), "nonexistent")
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("期望 ErrUserNotFound，实际: %v", err)
	}
}
