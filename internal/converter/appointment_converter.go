package converter

import (
	"sort"

	"vows-and-wishes/internal/delivery/dto"
	"vows-and-wishes/internal/domain/entity"
)

// AppointmentToResponse converts an Appointment entity to AppointmentResponse DTO
func AppointmentToResponse(appointment *entity.Appointment) *dto.AppointmentResponse {
	if appointment == nil {
		return nil
	}

	response := &dto.AppointmentResponse{
		ID:        appointment.ID,
		ServiceID: appointment.ServiceID,
		Date:      appointment.Date,
		AllDay:    appointment.IsAllDay(),
		UserEmail: appointment.UserEmail,
		Status:    string(appointment.Status),
		CreatedAt: appointment.CreatedAt,
	}
	if !appointment.IsAllDay() {
		response.Time = appointment.Time
	}

	return response
}

// BookedDates returns the distinct dates that carry any appointment, ascending
func BookedDates(appointments []entity.Appointment) []string {
	seen := make(map[string]bool)
	dates := make([]string, 0, len(appointments))
	for _, a := range appointments {
		if !seen[a.Date] {
			seen[a.Date] = true
			dates = append(dates, a.Date)
		}
	}
	sort.Strings(dates)
	return dates
}

// BookedSlots lists every reserved (date, time) pair; all-day appointments
// expand to each fixed slot of their date.
func BookedSlots(appointments []entity.Appointment) []dto.BookedSlot {
	seen := make(map[dto.BookedSlot]bool)
	slots := make([]dto.BookedSlot, 0, len(appointments))
	add := func(s dto.BookedSlot) {
		if !seen[s] {
			seen[s] = true
			slots = append(slots, s)
		}
	}

	for _, a := range appointments {
		if a.IsAllDay() {
			for _, t := range entity.TimeSlots {
				add(dto.BookedSlot{Date: a.Date, Time: t})
			}
			continue
		}
		add(dto.BookedSlot{Date: a.Date, Time: a.Time})
	}

	sort.Slice(slots, func(i, j int) bool {
		if slots[i].Date != slots[j].Date {
			return slots[i].Date < slots[j].Date
		}
		return slots[i].Time < slots[j].Time
	})
	return slots
}
