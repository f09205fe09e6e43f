package appointment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"vows-and-wishes/internal/client/availability"
	"vows-and-wishes/internal/client/notify"
	"vows-and-wishes/internal/domain/entity"
	"vows-and-wishes/pkg/apiclient"

	"github.com/sirupsen/logrus"
)

const (
	MsgDateBooked     = "This date is already booked!"
	MsgSlotBooked     = "This slot is already booked!"
	MsgSelectDate     = "Please select a date"
	MsgSelectDateTime = "Please select both date and time."
	MsgFutureDate     = "Please select a future date"
	MsgInvalidDate    = "Please select a valid date"
	MsgInvalidSlot    = "Please select a valid time slot"
	MsgBookingFailed  = "Booking failed"
	MsgRefreshFailed  = "Booking saved, but availability failed to refresh. Reload to update."
	MsgLoadFailed     = "Failed to load availability"
	MsgUnchecked      = "Availability could not be checked, this date may already be taken."

	DefaultRefreshDelay = time.Second
	refreshTimeout      = 10 * time.Second
)

var (
	// ErrInvalidState is returned for an action the current state does not allow
	ErrInvalidState = errors.New("action not allowed in current state")
	// ErrSlotModeOnly is returned when a time is picked in whole-day mode
	ErrSlotModeOnly = errors.New("time selection requires slot mode")
)

// ValidationError carries the user-facing reason a selection was refused
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

type State int

const (
	StateClosed State = iota
	StateDetailsOpen
	StatePickingDate
	StateConfirming
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateDetailsOpen:
		return "details-open"
	case StatePickingDate:
		return "picking-date"
	case StateConfirming:
		return "confirming"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Mode selects between whole-day and time-slot booking
type Mode string

const (
	ModeDay  Mode = "day"
	ModeSlot Mode = "slot"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeDay, "":
		return ModeDay, nil
	case ModeSlot:
		return ModeSlot, nil
	default:
		return "", fmt.Errorf("unknown booking mode %q", s)
	}
}

// BookingAPI submits reservations
type BookingAPI interface {
	Book(ctx context.Context, token string, req apiclient.BookRequest) (*apiclient.BookingResult, error)
}

// Identity is the signed-in user, if any
type Identity interface {
	Token() string
	User() (apiclient.User, bool)
}

type Stopper interface {
	Stop() bool
}

type AfterFunc func(d time.Duration, f func()) Stopper

type Option func(*Flow)

func WithClock(now func() time.Time) Option {
	return func(f *Flow) {
		f.now = now
	}
}

func WithAfterFunc(after AfterFunc) Option {
	return func(f *Flow) {
		f.after = after
	}
}

func WithRefreshDelay(d time.Duration) Option {
	return func(f *Flow) {
		if d > 0 {
			f.refreshDelay = d
		}
	}
}

// WithOnRefresh is called with the booked set after each accepted post-booking refresh
func WithOnRefresh(fn func(availability.BookedSet)) Option {
	return func(f *Flow) {
		f.onRefresh = fn
	}
}

// Flow drives one service's details view through picking and confirming
// a booking. Every open or close bumps the generation so responses that
// belong to an earlier view are dropped.
type Flow struct {
	mode         Mode
	api          BookingAPI
	lookup       *availability.Lookup
	identity     Identity
	notifier     notify.Notifier
	log          *logrus.Logger
	now          func() time.Time
	after        AfterFunc
	refreshDelay time.Duration
	onRefresh    func(availability.BookedSet)

	mu           sync.Mutex
	state        State
	service      *apiclient.Service
	date         string
	slot         string
	booked       availability.BookedSet
	loaded       bool
	generation   uint64
	refreshTimer Stopper
}

func NewFlow(
	mode Mode,
	api BookingAPI,
	lookup *availability.Lookup,
	identity Identity,
	notifier notify.Notifier,
	log *logrus.Logger,
	opts ...Option,
) *Flow {
	f := &Flow{
		mode:         mode,
		api:          api,
		lookup:       lookup,
		identity:     identity,
		notifier:     notifier,
		log:          log,
		now:          time.Now,
		refreshDelay: DefaultRefreshDelay,
		after: func(d time.Duration, fn func()) Stopper {
			return time.AfterFunc(d, fn)
		},
		booked: availability.NewBookedSet(nil),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// OpenDetails shows svc and loads its booked set. A failed load keeps the
// view open and marks availability as unchecked until a reload succeeds.
func (f *Flow) OpenDetails(ctx context.Context, svc apiclient.Service) error {
	f.mu.Lock()
	f.resetLocked()
	f.state = StateDetailsOpen
	f.service = &svc
	f.mu.Unlock()

	f.lookup.Reset()
	return f.ReloadAvailability(ctx)
}

// ReloadAvailability fetches the booked set of the service in view
func (f *Flow) ReloadAvailability(ctx context.Context) error {
	f.mu.Lock()
	if f.service == nil {
		f.mu.Unlock()
		return ErrInvalidState
	}
	gen := f.generation
	serviceID := f.service.ID
	f.mu.Unlock()

	set, err := f.lookup.Fetch(ctx, serviceID)

	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.generation {
		return err
	}
	if err != nil {
		f.notifier.Error(MsgLoadFailed)
		return err
	}
	f.booked = set
	f.loaded = true
	return nil
}

// AvailabilityLoaded reports whether the booked set in view came from the backend
func (f *Flow) AvailabilityLoaded() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loaded
}

// StartBooking opens the date picker
func (f *Flow) StartBooking() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch f.state {
	case StateDetailsOpen:
		f.state = StatePickingDate
		return nil
	case StatePickingDate:
		return nil
	default:
		return ErrInvalidState
	}
}

// CancelBooking closes the date picker and keeps the details open
func (f *Flow) CancelBooking() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StatePickingDate {
		return ErrInvalidState
	}
	f.state = StateDetailsOpen
	f.date = ""
	f.slot = ""
	return nil
}

// MinDate is the earliest selectable date, today in local time
func (f *Flow) MinDate() string {
	return f.now().Format(entity.DateLayout)
}

func (f *Flow) SelectDate(date string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StatePickingDate {
		return ErrInvalidState
	}

	date = strings.TrimSpace(date)
	if _, err := time.Parse(entity.DateLayout, date); err != nil {
		return f.rejectLocked(MsgInvalidDate)
	}
	if date < f.MinDate() {
		return f.rejectLocked(MsgFutureDate)
	}

	switch f.mode {
	case ModeSlot:
		if f.booked.FullyBooked(date) {
			return f.rejectLocked(MsgDateBooked)
		}
		if f.slot != "" && f.booked.SlotBooked(date, f.slot) {
			f.slot = ""
		}
	default:
		if f.booked.DateBooked(date) {
			return f.rejectLocked(MsgDateBooked)
		}
	}

	if !f.loaded {
		f.notifier.Warning(MsgUnchecked)
	}
	f.date = date
	return nil
}

func (f *Flow) SelectTime(slot string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StatePickingDate {
		return ErrInvalidState
	}
	if f.mode != ModeSlot {
		return ErrSlotModeOnly
	}

	slot = strings.TrimSpace(slot)
	if !entity.IsTimeSlot(slot) {
		return f.rejectLocked(MsgInvalidSlot)
	}
	if f.date != "" && f.booked.SlotBooked(f.date, slot) {
		return f.rejectLocked(MsgSlotBooked)
	}

	f.slot = slot
	return nil
}

// Confirm submits the selection. Selections that are incomplete or already
// booked are refused without a request.
func (f *Flow) Confirm(ctx context.Context) (*apiclient.Appointment, error) {
	f.mu.Lock()
	if f.state != StatePickingDate {
		f.mu.Unlock()
		return nil, ErrInvalidState
	}
	if f.date == "" {
		err := f.rejectLocked(MsgSelectDate)
		f.mu.Unlock()
		return nil, err
	}
	if f.mode == ModeSlot && f.slot == "" {
		err := f.rejectLocked(MsgSelectDateTime)
		f.mu.Unlock()
		return nil, err
	}
	if f.mode == ModeSlot && f.booked.SlotBooked(f.date, f.slot) {
		err := f.rejectLocked(MsgSlotBooked)
		f.mu.Unlock()
		return nil, err
	}
	if f.mode == ModeDay && f.booked.DateBooked(f.date) {
		err := f.rejectLocked(MsgDateBooked)
		f.mu.Unlock()
		return nil, err
	}

	f.state = StateConfirming
	gen := f.generation
	serviceID := f.service.ID
	date := f.date
	req := apiclient.BookRequest{
		ServiceID: serviceID,
		Date:      date,
		Time:      f.slot,
		Email:     entity.GuestEmail,
	}
	token := ""
	if f.identity != nil {
		token = f.identity.Token()
		if user, ok := f.identity.User(); ok && user.Email != "" {
			req.Email = user.Email
		}
	}
	f.mu.Unlock()

	result, err := f.api.Book(ctx, token, req)

	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.generation {
		f.log.Debugf("Ignoring booking response for closed view of %s", serviceID)
		if err != nil {
			return nil, err
		}
		return result.Appointment, nil
	}

	if err != nil {
		f.log.Warnf("Booking failed for %s on %s: %v", serviceID, date, err)
		f.state = StatePickingDate
		f.notifier.Error(apiclient.DetailOr(err, MsgBookingFailed))
		return nil, err
	}

	f.notifier.Success(fmt.Sprintf("Booking Confirmed on %s!", date))
	f.resetFieldsLocked()
	f.state = StateClosed
	f.scheduleRefreshLocked(gen, serviceID)
	return result.Appointment, nil
}

// CloseDetails returns to Closed from any state and drops pending work
func (f *Flow) CloseDetails() {
	f.mu.Lock()
	f.resetLocked()
	f.mu.Unlock()
	f.lookup.Reset()
}

func (f *Flow) scheduleRefreshLocked(gen uint64, serviceID string) {
	f.refreshTimer = f.after(f.refreshDelay, func() {
		f.mu.Lock()
		stale := gen != f.generation
		f.mu.Unlock()
		if stale {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()
		set, err := f.lookup.Fetch(ctx, serviceID)

		f.mu.Lock()
		if gen != f.generation {
			f.mu.Unlock()
			return
		}
		f.refreshTimer = nil
		if err != nil {
			f.mu.Unlock()
			f.notifier.Warning(MsgRefreshFailed)
			return
		}
		f.booked = set
		f.loaded = true
		onRefresh := f.onRefresh
		f.mu.Unlock()

		if onRefresh != nil {
			onRefresh(set)
		}
	})
}

func (f *Flow) rejectLocked(msg string) error {
	f.notifier.Error(msg)
	return &ValidationError{Message: msg}
}

// resetLocked bumps the generation and clears everything tied to the view
func (f *Flow) resetLocked() {
	f.generation++
	if f.refreshTimer != nil {
		f.refreshTimer.Stop()
		f.refreshTimer = nil
	}
	f.resetFieldsLocked()
	f.booked = availability.NewBookedSet(nil)
	f.loaded = false
	f.state = StateClosed
}

func (f *Flow) resetFieldsLocked() {
	f.service = nil
	f.date = ""
	f.slot = ""
}

func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Flow) Mode() Mode {
	return f.mode
}

// Service returns the service in view
func (f *Flow) Service() (apiclient.Service, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.service == nil {
		return apiclient.Service{}, false
	}
	return *f.service, true
}

// Selection returns the picked date and time, empty when not picked
func (f *Flow) Selection() (date, slot string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.date, f.slot
}

func (f *Flow) Booked() availability.BookedSet {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.booked
}
