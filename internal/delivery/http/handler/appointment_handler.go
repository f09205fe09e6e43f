package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"vows-and-wishes/internal/delivery/dto"
	"vows-and-wishes/internal/delivery/http/middleware"
	"vows-and-wishes/internal/service"
	"vows-and-wishes/internal/usecase"
	"vows-and-wishes/pkg/response"
	"vows-and-wishes/pkg/validator"

	"github.com/gorilla/mux"
)

const bookedMessage = "Appointment booked successfully!"

type AppointmentHandler struct {
	appointmentUsecase usecase.AppointmentUsecase
	validator          *validator.CustomValidator
}

func NewAppointmentHandler(appointmentUsecase usecase.AppointmentUsecase, validator *validator.CustomValidator) *AppointmentHandler {
	return &AppointmentHandler{
		appointmentUsecase: appointmentUsecase,
		validator:          validator,
	}
}

// Book reserves a slot, or a whole day when no time is given
// @Router /appointments/book [post]
func (h *AppointmentHandler) Book(w http.ResponseWriter, r *http.Request) {
	var req dto.BookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	h.book(w, r, &req)
}

// BookAppointment is the whole-day form of Book
// @Router /book-appointment [post]
func (h *AppointmentHandler) BookAppointment(w http.ResponseWriter, r *http.Request) {
	var req dto.BookAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if req.ServiceID == "" || req.AppointmentDate == "" {
		response.BadRequest(w, "Missing required fields")
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	h.book(w, r, &dto.BookRequest{
		ServiceID: req.ServiceID,
		Date:      req.AppointmentDate,
		Email:     req.Email,
	})
}

func (h *AppointmentHandler) book(w http.ResponseWriter, r *http.Request, req *dto.BookRequest) {
	var actor service.Actor
	if userID, ok := middleware.GetUserIDFromContext(r.Context()); ok {
		actor.UserID = &userID
		actor.Email, _ = middleware.GetUserEmailFromContext(r.Context())
	}

	appointment, err := h.appointmentUsecase.Book(r.Context(), req, actor)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrDateAlreadyBooked):
			response.Conflict(w, "This date is already booked for the selected service")
		case errors.Is(err, usecase.ErrSlotUnavailable):
			response.Conflict(w, "This slot is already booked for the selected service")
		case errors.Is(err, usecase.ErrBookingInProgress):
			response.Conflict(w, "Another booking for this date is in progress, please try again")
		case errors.Is(err, usecase.ErrDateInPast):
			response.BadRequest(w, "Cannot book a past date")
		case errors.Is(err, usecase.ErrInvalidDate):
			response.BadRequest(w, "Invalid date format, use YYYY-MM-DD")
		case errors.Is(err, usecase.ErrInvalidTimeSlot):
			response.BadRequest(w, "Invalid time slot")
		case errors.Is(err, usecase.ErrInvalidServiceID), errors.Is(err, usecase.ErrServiceNotFound):
			response.NotFound(w, "Service not found")
		default:
			response.InternalServerError(w, "Failed to book appointment")
		}
		return
	}

	response.Message(w, http.StatusOK, bookedMessage, response.MessageBody{"appointment": appointment})
}

// Availability returns booked dates and slots of a service
// @Router /appointments/availability/{service_id} [get]
func (h *AppointmentHandler) Availability(w http.ResponseWriter, r *http.Request) {
	availability, ok := h.availability(w, r)
	if !ok {
		return
	}

	response.JSON(w, http.StatusOK, availability)
}

// BookedDates returns only the booked dates of a service
// @Router /booked-dates/{service_id} [get]
func (h *AppointmentHandler) BookedDates(w http.ResponseWriter, r *http.Request) {
	availability, ok := h.availability(w, r)
	if !ok {
		return
	}

	response.JSON(w, http.StatusOK, dto.BookedDatesResponse{
		ServiceID:   availability.ServiceID,
		BookedDates: availability.BookedDates,
	})
}

func (h *AppointmentHandler) availability(w http.ResponseWriter, r *http.Request) (*dto.AvailabilityResponse, bool) {
	availability, err := h.appointmentUsecase.Availability(r.Context(), mux.Vars(r)["service_id"])
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidServiceID):
			response.NotFound(w, "Service not found")
		default:
			response.InternalServerError(w, "Failed to load availability")
		}
		return nil, false
	}
	return availability, true
}
