package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// 问题状态（闭集，入口校验，不信任存储层字符串）
const (
	IssueStatusOpen       = "open"
	IssueStatusInProgress = "in-progress"
	IssueStatusResolved   = "resolved"
	IssueStatusClosed     = "closed"
)

// 问题优先级
const (
	IssuePriorityLow    = "low"
	IssuePriorityMedium = "medium"
	IssuePriorityHigh   = "high"
	IssuePriorityUrgent = "urgent"
)

// IsValidIssueStatus 校验状态取值
func IsValidIssueStatus(s string) bool {
	switch s {
	case IssueStatusOpen, IssueStatusInProgress, IssueStatusResolved, IssueStatusClosed:
		return true
	}
	return false
}

// IsValidIssuePriority 校验优先级取值
func IsValidIssuePriority(p string) bool {
	switch p {
	case IssuePriorityLow, IssuePriorityMedium, IssuePriorityHigh, IssuePriorityUrgent:
		return true
	}
	return false
}

// ShiftSnapshot 班次冗余快照 — 创建问题时固化，班次被修改或删除后问题仍可读
// 对应 PostgreSQL JSONB 列，实现 GORM Scanner/Valuer 接口
type ShiftSnapshot struct {
	Date         string `json:"date"` // "2006-01-02"
	EmployeeName string `json:"employee_name"`
	EmployeeCode string `json:"employee_code"`
	Department   string `json:"department"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
}

// Scan 将 JSONB 文本解析为 ShiftSnapshot
func (s *ShiftSnapshot) Scan(src interface{}) error {
	if src == nil {
		return nil
	}
	var b []byte
	switch v := src.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("ShiftSnapshot.Scan: unsupported type %T", src)
	}
	return json.Unmarshal(b, s)
}

// Value 将 ShiftSnapshot 序列化为 JSONB 文本
func (s ShiftSnapshot) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// CorrectedShift 管理员修正后的班次数据 — JSONB 列
type CorrectedShift struct {
	Date      string  `json:"date,omitempty"`
	StartTime string  `json:"start_time"`
	EndTime   string  `json:"end_time"`
	Duration  float64 `json:"duration,omitempty"`
}

// Scan 将 JSONB 文本解析为 CorrectedShift
func (c *CorrectedShift) Scan(src interface{}) error {
	if src == nil {
		return nil
	}
	var b []byte
	switch v := src.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("CorrectedShift.Scan: unsupported type %T", src)
	}
	return json.Unmarshal(b, c)
}

// Value 将 CorrectedShift 序列化为 JSONB 文本
func (c CorrectedShift) Value() (driver.Value, error) {
	return json.Marshal(c)
}

// Issue 班次问题反馈表 — 对应 issues
// created_by 同时承担业务归属与审计，故不嵌入 BaseModel
type Issue struct {
	IssueID            string          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"issue_id"`
	Title              string          `gorm:"type:varchar(200);not null"                     json:"title"`
	Description        string          `gorm:"type:varchar(2000);not null"                    json:"description"`
	Status             string          `gorm:"type:varchar(20);not null;default:'open'"       json:"status"`
	Priority           string          `gorm:"type:varchar(20);not null;default:'medium'"     json:"priority"`
	CreatedBy          string          `gorm:"type:uuid;not null"                             json:"created_by"`
	IsRead             bool            `gorm:"not null;default:false"                         json:"is_read"`
	ShiftID            *string         `gorm:"type:uuid"                                      json:"shift_id,omitempty"`
	ShiftData          *ShiftSnapshot  `gorm:"type:jsonb"                                     json:"shift_data,omitempty"`
	AdminResponse      string          `gorm:"type:varchar(1000);not null;default:''"         json:"admin_response"`
	AdminNotes         string          `gorm:"type:varchar(1000);not null;default:''"         json:"admin_notes"`
	CorrectedShiftData *CorrectedShift `gorm:"type:jsonb"                                     json:"corrected_shift_data,omitempty"`
	ResolvedBy         *string         `gorm:"type:uuid"                                      json:"resolved_by,omitempty"`
	ResolvedAt         *time.Time      `json:"resolved_at,omitempty"`
	CreatedAt          time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
	UpdatedAt          time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"updated_at"`
	Version            int             `gorm:"not null;default:1"                             json:"version"`

	// 关联
	Creator *User  `gorm:"foreignKey:CreatedBy;references:UserID" json:"creator,omitempty"`
	Shift   *Shift `gorm:"foreignKey:ShiftID;references:ShiftID"  json:"shift,omitempty"`
}

// TableName 指定表名
func (Issue) TableName() string { return "issues" }
