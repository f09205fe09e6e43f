package repository

import (
	"vows-and-wishes/internal/domain/entity"
	domainRepo "vows-and-wishes/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type appointmentRepository struct{}

func NewAppointmentRepository() domainRepo.AppointmentRepository {
	return &appointmentRepository{}
}

func (r *appointmentRepository) Create(db *gorm.DB, appointment *entity.Appointment) error {
	return db.Create(appointment).Error
}

func (r *appointmentRepository) FindByService(db *gorm.DB, serviceID uuid.UUID) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := db.Where("service_id = ? AND status = ?", serviceID, entity.AppointmentStatusBooked).
		Order("date ASC, time ASC").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) FindByServiceAndDate(db *gorm.DB, serviceID uuid.UUID, date string) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := db.Where("service_id = ? AND date = ? AND status = ?", serviceID, date, entity.AppointmentStatusBooked).
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}
