package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

// BookRequest reserves a slot, or the whole date when Time is empty
type BookRequest struct {
	ServiceID string `json:"service_id" validate:"required,uuid"`
	Date      string `json:"date" validate:"required,isodate"`
	Time      string `json:"time" validate:"omitempty,timeslot"`
	Email     string `json:"email" validate:"omitempty,email"`
}

// BookAppointmentRequest is the whole-day body accepted by /book-appointment
type BookAppointmentRequest struct {
	Email           string `json:"email" validate:"omitempty,email"`
	ServiceID       string `json:"service_id" validate:"required,uuid"`
	AppointmentDate string `json:"appointment_date" validate:"required,isodate"`
}

// Response DTOs

type AppointmentResponse struct {
	ID        uuid.UUID `json:"id"`
	ServiceID uuid.UUID `json:"service_id"`
	Date      string    `json:"date"`
	Time      string    `json:"time,omitempty"`
	AllDay    bool      `json:"all_day"`
	UserEmail string    `json:"user_email"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type BookedSlot struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

type AvailabilityResponse struct {
	ServiceID   string       `json:"service_id"`
	BookedDates []string     `json:"booked_dates"`
	BookedSlots []BookedSlot `json:"booked_slots"`
}

type BookedDatesResponse struct {
	ServiceID   string   `json:"service_id"`
	BookedDates []string `json:"booked_dates"`
}
