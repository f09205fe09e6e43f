package service

import (
	"context"

	"vows-and-wishes/internal/domain/entity"
	"vows-and-wishes/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Actor identifies who triggered an audited action
type Actor struct {
	UserID *uuid.UUID
	Email  string
}

type AuditService interface {
	// Record writes an entry inside tx so it commits or rolls back with the change it describes
	Record(ctx context.Context, tx *gorm.DB, actor Actor, action string, metadata entity.JSON) error
	LogCreate(ctx context.Context, tx *gorm.DB, actor Actor, action string, entityName string, entityID string, newValue interface{}) error
	LogUpdate(ctx context.Context, tx *gorm.DB, actor Actor, action string, entityName string, entityID string, oldValue, newValue interface{}) error
}

type auditService struct {
	log       *logrus.Logger
	auditRepo repository.AuditLogRepository
}

func NewAuditService(log *logrus.Logger, auditRepo repository.AuditLogRepository) AuditService {
	return &auditService{
		log:       log,
		auditRepo: auditRepo,
	}
}

func (s *auditService) Record(ctx context.Context, tx *gorm.DB, actor Actor, action string, metadata entity.JSON) error {
	auditLog := &entity.AuditLog{
		UserID:   actor.UserID,
		Actor:    actor.Email,
		Action:   action,
		Metadata: metadata,
	}

	if err := s.auditRepo.Create(tx.WithContext(ctx), auditLog); err != nil {
		s.log.Warnf("Failed to create audit log: %+v", err)
		return err
	}

	return nil
}

// LogCreate logs a create action
func (s *auditService) LogCreate(ctx context.Context, tx *gorm.DB, actor Actor, action string, entityName string, entityID string, newValue interface{}) error {
	return s.Record(ctx, tx, actor, action, entity.JSON{
		"entity":    entityName,
		"entity_id": entityID,
		"new_value": newValue,
	})
}

// LogUpdate logs an update action with old and new values
func (s *auditService) LogUpdate(ctx context.Context, tx *gorm.DB, actor Actor, action string, entityName string, entityID string, oldValue, newValue interface{}) error {
	return s.Record(ctx, tx, actor, action, entity.JSON{
		"entity":    entityName,
		"entity_id": entityID,
		"old_value": oldValue,
		"new_value": newValue,
	})
}
