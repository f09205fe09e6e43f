package availability

import (
	"context"
	"strings"
	"sync"

	"vows-and-wishes/pkg/apiclient"

	"github.com/sirupsen/logrus"
)

// API fetches the booked set of a service
type API interface {
	Availability(ctx context.Context, serviceID string) (*apiclient.Availability, error)
}

// Lookup holds the booked set of the service being viewed
type Lookup struct {
	api API
	log *logrus.Logger

	mu        sync.Mutex
	serviceID string
	set       BookedSet
}

func NewLookup(api API, log *logrus.Logger) *Lookup {
	return &Lookup{
		api: api,
		log: log,
		set: NewBookedSet(nil),
	}
}

// Fetch loads the booked set of serviceID. On failure the previously held
// set is kept and returned alongside the error.
func (l *Lookup) Fetch(ctx context.Context, serviceID string) (BookedSet, error) {
	if strings.TrimSpace(serviceID) == "" {
		return l.Current(), apiclient.ErrEmptyServiceID
	}

	result, err := l.api.Availability(ctx, serviceID)
	if err != nil {
		l.log.Warnf("Failed to fetch availability for %s: %v", serviceID, err)
		return l.Current(), err
	}

	set := NewBookedSet(result)
	l.mu.Lock()
	l.serviceID = serviceID
	l.set = set
	l.mu.Unlock()
	return set, nil
}

func (l *Lookup) Current() BookedSet {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.set
}

// ServiceID returns the service the held set belongs to
func (l *Lookup) ServiceID() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.serviceID
}

// Reset forgets the held set
func (l *Lookup) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.serviceID = ""
	l.set = NewBookedSet(nil)
}
