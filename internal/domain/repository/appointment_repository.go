package repository

import (
	"vows-and-wishes/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AppointmentRepository interface {
	Create(db *gorm.DB, appointment *entity.Appointment) error
	FindByService(db *gorm.DB, serviceID uuid.UUID) ([]entity.Appointment, error)
	FindByServiceAndDate(db *gorm.DB, serviceID uuid.UUID, date string) ([]entity.Appointment, error)
}
