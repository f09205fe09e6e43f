package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"vows-and-wishes/internal/converter"
	"vows-and-wishes/internal/delivery/dto"
	"vows-and-wishes/internal/domain/entity"
	"vows-and-wishes/internal/domain/repository"
	"vows-and-wishes/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrDateAlreadyBooked = errors.New("date already booked for service")
	ErrSlotUnavailable   = errors.New("slot already booked for service")
	ErrBookingInProgress = errors.New("another booking for this date is in progress")
	ErrDateInPast        = errors.New("cannot book a past date")
	ErrInvalidDate       = errors.New("invalid date format, use YYYY-MM-DD")
	ErrInvalidTimeSlot   = errors.New("invalid time slot")
)

// bookingLockTTL bounds how long a crashed request can block a (service, date)
const bookingLockTTL = 10 * time.Second

type AppointmentUsecase interface {
	// Book reserves req.Time on req.Date, or the whole date when req.Time is empty.
	// An authenticated actor's email takes precedence over req.Email.
	Book(ctx context.Context, req *dto.BookRequest, actor service.Actor) (*dto.AppointmentResponse, error)
	Availability(ctx context.Context, serviceID string) (*dto.AvailabilityResponse, error)
}

type appointmentUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	appointmentRepo repository.AppointmentRepository
	serviceRepo     repository.ServiceRepository
	locker          repository.SlotLocker
	auditService    service.AuditService
	now             func() time.Time
}

func NewAppointmentUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	appointmentRepo repository.AppointmentRepository,
	serviceRepo repository.ServiceRepository,
	locker repository.SlotLocker,
	auditService service.AuditService,
) AppointmentUsecase {
	return &appointmentUsecase{
		db:              db,
		log:             log,
		appointmentRepo: appointmentRepo,
		serviceRepo:     serviceRepo,
		locker:          locker,
		auditService:    auditService,
		now:             time.Now,
	}
}

// Book flow:
// 1. Validate service, date and slot
// 2. Take the Redis lock for (service, date)
// 3. In one transaction: check conflicts, insert, audit
// 4. The unique index on (service_id, date, time) catches anything the lock missed
func (u *appointmentUsecase) Book(ctx context.Context, req *dto.BookRequest, actor service.Actor) (*dto.AppointmentResponse, error) {
	serviceID, err := uuid.Parse(req.ServiceID)
	if err != nil {
		return nil, ErrInvalidServiceID
	}

	date, err := time.Parse(entity.DateLayout, req.Date)
	if err != nil {
		return nil, ErrInvalidDate
	}
	// Yesterday in UTC is still accepted so clients ahead of UTC are not rejected for "today".
	earliest := u.now().UTC().AddDate(0, 0, -1).Format(entity.DateLayout)
	if date.Format(entity.DateLayout) < earliest {
		return nil, ErrDateInPast
	}

	slot := strings.TrimSpace(req.Time)
	if slot == "" {
		slot = entity.AllDay
	} else if !entity.IsTimeSlot(slot) {
		return nil, ErrInvalidTimeSlot
	}

	svc, err := u.serviceRepo.FindByID(u.db.WithContext(ctx), serviceID)
	if err != nil {
		u.log.Warnf("Failed to find service %s: %+v", serviceID, err)
		return nil, err
	}
	if svc == nil {
		return nil, ErrServiceNotFound
	}

	release, err := u.locker.Acquire(ctx, fmt.Sprintf("%s:%s", serviceID, req.Date), bookingLockTTL)
	switch {
	case errors.Is(err, repository.ErrLockHeld):
		return nil, ErrBookingInProgress
	case err != nil:
		// Without Redis the unique index still rejects duplicate slots.
		u.log.Warnf("Failed to acquire booking lock, continuing without it: %+v", err)
	default:
		defer func() {
			releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := release(releaseCtx); err != nil {
				u.log.Warnf("Failed to release booking lock: %+v", err)
			}
		}()
	}

	appointment := &entity.Appointment{
		ServiceID: serviceID,
		Date:      req.Date,
		Time:      slot,
		UserEmail: bookingEmail(actor, req.Email),
		Status:    entity.AppointmentStatusBooked,
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	existing, err := u.appointmentRepo.FindByServiceAndDate(tx, serviceID, req.Date)
	if err != nil {
		u.log.Warnf("Failed to check existing appointments: %+v", err)
		return nil, err
	}
	for i := range existing {
		if existing[i].ConflictsWith(slot) {
			return nil, conflictError(slot)
		}
	}

	if err := u.appointmentRepo.Create(tx, appointment); err != nil {
		if isDuplicateKeyError(err, "idx_appointments_slot") {
			return nil, conflictError(slot)
		}
		u.log.Warnf("Failed to create appointment: %+v", err)
		return nil, err
	}

	resp := converter.AppointmentToResponse(appointment)
	auditActor := service.Actor{UserID: actor.UserID, Email: appointment.UserEmail}
	if err := u.auditService.LogCreate(ctx, tx, auditActor, entity.AuditActionBookingCreate, "appointment", appointment.ID.String(), resp); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	u.log.Infof("Appointment booked: id=%s, service=%s, date=%s, time=%s", appointment.ID, serviceID, appointment.Date, appointment.Time)
	return resp, nil
}

// Availability reports every booked date and slot of a service.
// An unknown service simply has nothing booked.
func (u *appointmentUsecase) Availability(ctx context.Context, serviceID string) (*dto.AvailabilityResponse, error) {
	id, err := uuid.Parse(serviceID)
	if err != nil {
		return nil, ErrInvalidServiceID
	}

	appointments, err := u.appointmentRepo.FindByService(u.db.WithContext(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find appointments for service %s: %+v", id, err)
		return nil, err
	}

	return &dto.AvailabilityResponse{
		ServiceID:   serviceID,
		BookedDates: converter.BookedDates(appointments),
		BookedSlots: converter.BookedSlots(appointments),
	}, nil
}

func bookingEmail(actor service.Actor, requested string) string {
	if actor.Email != "" {
		return actor.Email
	}
	if email := normalizeEmail(requested); email != "" {
		return email
	}
	return entity.GuestEmail
}

func conflictError(slot string) error {
	if slot == entity.AllDay {
		return ErrDateAlreadyBooked
	}
	return ErrSlotUnavailable
}
