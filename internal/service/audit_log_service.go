package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/auth"
	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/model"
	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// AuditLogService 授权审计日志服务
type AuditLogService interface {
	RecordDecision(ctx context.Context, d auth.Decision) error
	Denied(ctx context.Context, limit int) ([]*model.AuditLogModel, error)
	ByUser(ctx context.Context, userID string) ([]*model.AuditLogModel, error)
	ByResource(ctx context.Context, resourceType string, resourceID string) ([]*model.AuditLogModel, error)
}

// auditLogService 审计日志服务实现
type auditLogService struct {
	auditRepo repository.AuditLogRepository
	logger    logrus.FieldLogger
	now       func() time.Time
}

// NewAuditLogService 创建审计日志服务
func NewAuditLogService(auditRepo repository.AuditLogRepository, logger logrus.FieldLogger) AuditLogService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &auditLogService{
		auditRepo: auditRepo,
		logger:    logger.WithField("component", "audit_log"),
		now:       time.Now,
	}
}

// RecordDecision 记录一次权限判定,拒绝的请求以 warn 级别记录日志
func (s *auditLogService) RecordDecision(ctx context.Context, d auth.Decision) error {
	details, err := json.Marshal(map[string]string{
		"method": d.Method,
		"path":   d.Path,
		"object": d.ObjectType + ":" + d.ObjectID,
	})
	if err != nil {
		return err
	}

	entry := &model.AuditLogModel{
		ID:           uuid.NewString(),
		UserID:       d.UserID,
		Action:       d.Relation,
		ResourceType: d.ObjectID,
		ResourceID:   d.ResourceID,
		Allowed:      d.Allowed,
		Reason:       d.Reason,
		RequestID:    d.RequestID,
		IP:           d.IP,
		UserAgent:    d.UserAgent,
		Details:      details,
		CreatedAt:    s.now(),
	}
	if err := entry.Validate(); err != nil {
		return err
	}

	log := s.logger.WithFields(logrus.Fields{
		"user_id":       d.UserID,
		"relation":      d.Relation,
		"resource_type": d.ObjectID,
		"resource_id":   d.ResourceID,
		"request_id":    d.RequestID,
	})
	if !d.Allowed {
		log.WithField("reason", d.Reason).Warn("permission denied")
	}

	if err := s.auditRepo.Save(entry); err != nil {
		log.WithError(err).Error("failed to persist audit log")
		return err
	}
	return nil
}

// Denied 最近被拒绝的授权请求
func (s *auditLogService) Denied(ctx context.Context, limit int) ([]*model.AuditLogModel, error) {
	return s.auditRepo.FindDenied(limit)
}

// ByUser 用户的授权审计记录
func (s *auditLogService) ByUser(ctx context.Context, userID string) ([]*model.AuditLogModel, error) {
	return s.auditRepo.FindByUserID(userID)
}

// ByResource 某条记录上的授权审计记录,resourceType 为记录类型名
func (s *auditLogService) ByResource(ctx context.Context, resourceType string, resourceID string) ([]*model.AuditLogModel, error) {
	return s.auditRepo.FindByResource(resourceType, resourceID)
}
