package jwt

import (
	"testing"
	"time"

	"shift-sync/backend/config"
)

func newTestManager() *Manager {
	return NewManager(&config.AuthConfig{
		JWTSecret:      "test-secret-key-for-unit-testing-2026",
		AccessTokenTTL: 7 * 24 * time.Hour,
	})
}

func TestGenerateAndParseAccessToken(t *testing.T) {
	m := newTestManager()

	token, err := m.GenerateAccessToken("user-1", "admin", "")
	if err != nil {
		t.Fatalf("GenerateAccessToken 失败: %v", err)
	}

	claims, err := m.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken 失败: %v", err)
	}

	if claims.UserID != "user-1" {
		t.Errorf("期望 UserID=user-1，实际=%s", claims.UserID)
	}
	if claims.Role != "admin" {
		t.Errorf("期望 Role=admin，实际=%s", claims.Role)
	}
	if claims.EmployeeID != "" {
		t.Errorf("管理员 EmployeeID 应为空，实际=%s", claims.EmployeeID)
	}
	if claims.Issuer != "shift-sync" {
		t.Errorf("期望 Issuer=shift-sync，实际=%s", claims.Issuer)
	}
	if claims.ID == "" {
		t.Error("JTI 不应为空")
	}
}

func TestGenerateAccessToken_EmployeeClaim(t *testing.T) {
	m := newTestManager()

	token, err := m.GenerateAccessToken("user-2", "user", "emp-1")
	if err != nil {
		t.Fatalf("GenerateAccessToken 失败: %v", err)
	}

	claims, err := m.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken 失败: %v", err)
	}
	if claims.EmployeeID != "emp-1" {
		t.Errorf("期望 EmployeeID=emp-1，实际=%s", claims.EmployeeID)
	}

	// 检查过期时间约为 7 天
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl < 6*24*time.Hour || ttl > 8*24*time.Hour {
		t.Errorf("AccessToken TTL 期望约7天，实际=%v", ttl)
	}
}

func TestParseToken_InvalidToken(t *testing.T) {
	m := newTestManager()

	_, err := m.ParseToken("invalid.token.string")
	if err == nil {
		t.Error("期望解析无效 token 返回错误")
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	m1 := newTestManager()
	m2 := NewManager(&config.AuthConfig{
		JWTSecret:      "different-secret-key",
		AccessTokenTTL: time.Hour,
	})

	token, _ := m1.GenerateAccessToken("user-1", "admin", "")
	_, err := m2.ParseToken(token)
	if err == nil {
		t.Error("不同密钥签名的 token 不应通过验证")
	}
}

func TestParseToken_ExpiredToken(t *testing.T) {
	// 创建一个 TTL 极短的 manager 来测试过期
	m := NewManager(&config.AuthConfig{
		JWTSecret:      "test-secret",
		AccessTokenTTL: 1 * time.Millisecond,
	})

	token, _ := m.GenerateAccessToken("user-1", "admin", "")
	time.Sleep(10 * time.Millisecond)

	_, err := m.ParseToken(token)
	if err == nil {
		t.Error("过期 token 不应通过验证")
	}
	if err != ErrTokenExpired {
		t.Errorf("期望 ErrTokenExpired，实际: %v", err)
	}
}
