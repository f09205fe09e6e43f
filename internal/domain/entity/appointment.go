package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DateLayout is the canonical calendar day format used on the wire and in storage
const DateLayout = "2006-01-02"

// AllDay marks an appointment that reserves the whole date
const AllDay = "all-day"

// TimeSlots are the bookable start times of a day, in order
var TimeSlots = []string{"10:00", "12:00", "14:00", "16:00", "18:00"}

// IsTimeSlot reports whether t is one of the fixed bookable slots
func IsTimeSlot(t string) bool {
	for _, s := range TimeSlots {
		if s == t {
			return true
		}
	}
	return false
}

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	AppointmentStatusBooked AppointmentStatus = "booked"
)

// GuestEmail is recorded when a booking is made without an authenticated user
const GuestEmail = "guest@example.com"

// Appointment reserves a date, or a slot on a date, for a service.
// A row with Time == AllDay blocks every slot of that date.
type Appointment struct {
	ID        uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	ServiceID uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_appointments_slot,priority:1" json:"service_id"`
	Date      string            `gorm:"type:varchar(10);not null;uniqueIndex:idx_appointments_slot,priority:2" json:"date"`
	Time      string            `gorm:"type:varchar(10);not null;uniqueIndex:idx_appointments_slot,priority:3" json:"time"`
	UserEmail string            `gorm:"type:varchar(255);not null;index" json:"user_email"`
	Status    AppointmentStatus `gorm:"type:varchar(20);not null;default:'booked'" json:"status"`
	CreatedAt time.Time         `gorm:"autoCreateTime" json:"created_at"`
}

func (Appointment) TableName() string {
	return "appointments"
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// IsAllDay checks if the appointment reserves the whole date
func (a *Appointment) IsAllDay() bool {
	return a.Time == AllDay
}

// ConflictsWith reports whether booking time t on the same date would collide with a
func (a *Appointment) ConflictsWith(t string) bool {
	return t == AllDay || a.IsAllDay() || a.Time == t
}
