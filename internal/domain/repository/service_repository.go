package repository

import (
	"vows-and-wishes/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ServiceRepository interface {
	FindAll(db *gorm.DB, filter entity.ServiceFilter) ([]entity.Service, error)
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Service, error)
	Count(db *gorm.DB) (int64, error)
	CreateBatch(db *gorm.DB, services []entity.Service) error
}
