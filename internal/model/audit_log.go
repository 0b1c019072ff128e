package model

import (
	"errors"
	"time"

	"gorm.io/datatypes"
)

// AuditLogModel 授权审计日志,记录每次权限判定
type AuditLogModel struct {
	ID           string    `gorm:"primaryKey;type:varchar(64)"`
	UserID       string    `gorm:"type:varchar(64);not null;index"`
	Action       string    `gorm:"type:varchar(64);not null;index"` // reader/editor/approver/viewer
	ResourceType string    `gorm:"type:varchar(32);not null"`       // wbs/forecasts/budgets
	ResourceID   string    `gorm:"type:varchar(64);index"`
	Allowed      bool      `gorm:"not null;index"`
	Reason       string    `gorm:"type:varchar(255)"`
	RequestID    string    `gorm:"type:varchar(64);index"`
	IP           string    `gorm:"type:varchar(45)"` // IPv4 或 IPv6
	UserAgent    string    `gorm:"type:text"`
	CreatedAt    time.Time `gorm:"not null;index"`
	Details      datatypes.JSON
}

// TableName 指定表名
func (AuditLogModel) TableName() string {
	return "audit_logs"
}

// Validate 验证审计日志模型
func (alm *AuditLogModel) Validate() error {
	if alm.ID == "" {
		return errors.New("audit log ID is required")
	}
	if alm.UserID == "" {
		return errors.New("user ID is required")
	}
	if alm.Action == "" {
		return errors.New("action is required")
	}
	if alm.ResourceType == "" {
		return errors.New("resource type is required")
	}
	return nil
}
