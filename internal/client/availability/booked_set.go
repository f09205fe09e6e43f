package availability

import (
	"sort"

	"vows-and-wishes/internal/domain/entity"
	"vows-and-wishes/pkg/apiclient"
)

// BookedSet answers membership questions over a service's booked dates and slots
type BookedSet struct {
	dates map[string]bool
	slots map[string]map[string]bool
}

func NewBookedSet(a *apiclient.Availability) BookedSet {
	set := BookedSet{
		dates: make(map[string]bool),
		slots: make(map[string]map[string]bool),
	}
	if a == nil {
		return set
	}
	for _, d := range a.BookedDates {
		set.dates[d] = true
	}
	for _, s := range a.BookedSlots {
		set.dates[s.Date] = true
		if set.slots[s.Date] == nil {
			set.slots[s.Date] = make(map[string]bool)
		}
		set.slots[s.Date][s.Time] = true
	}
	return set
}

// DateBooked reports whether anything is booked on date
func (b BookedSet) DateBooked(date string) bool {
	return b.dates[date]
}

// SlotBooked reports whether time on date is taken. A date reported only as
// booked, with no slot detail, counts as booked for every slot.
func (b BookedSet) SlotBooked(date, time string) bool {
	if slots, ok := b.slots[date]; ok {
		return slots[time]
	}
	return b.dates[date]
}

// FullyBooked reports whether no slot of date is left
func (b BookedSet) FullyBooked(date string) bool {
	for _, t := range entity.TimeSlots {
		if !b.SlotBooked(date, t) {
			return false
		}
	}
	return true
}

// OpenSlots lists the free slots of date in order
func (b BookedSet) OpenSlots(date string) []string {
	open := make([]string, 0, len(entity.TimeSlots))
	for _, t := range entity.TimeSlots {
		if !b.SlotBooked(date, t) {
			open = append(open, t)
		}
	}
	return open
}

// Dates returns the booked dates in ascending order
func (b BookedSet) Dates() []string {
	dates := make([]string, 0, len(b.dates))
	for d := range b.dates {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

func (b BookedSet) Len() int {
	return len(b.dates)
}
