package catalog

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"vows-and-wishes/internal/client/notify"
	"vows-and-wishes/pkg/apiclient"

	"github.com/sirupsen/logrus"
)

const (
	DefaultDebounce   = 500 * time.Millisecond
	LoadFailedMessage = "Failed to load services"
)

// API lists catalog services
type API interface {
	ListServices(ctx context.Context, filter apiclient.ServiceFilter) ([]apiclient.Service, error)
}

// Stopper cancels a scheduled callback
type Stopper interface {
	Stop() bool
}

// AfterFunc schedules f after d; time.AfterFunc satisfies it through a small adapter
type AfterFunc func(d time.Duration, f func()) Stopper

type Option func(*Controller)

func WithDebounce(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.debounce = d
		}
	}
}

func WithAfterFunc(after AfterFunc) Option {
	return func(c *Controller) {
		c.after = after
	}
}

// WithOnUpdate is called with the new collection after every accepted query
func WithOnUpdate(fn func([]apiclient.Service)) Option {
	return func(c *Controller) {
		c.onUpdate = fn
	}
}

// Controller debounces filter edits into catalog queries. Only the most
// recently issued query may update the collection.
type Controller struct {
	api      API
	notifier notify.Notifier
	log      *logrus.Logger
	debounce time.Duration
	after    AfterFunc
	onUpdate func([]apiclient.Service)

	mu       sync.Mutex
	filter   apiclient.ServiceFilter
	timer    Stopper
	seq      uint64
	cancel   context.CancelFunc
	services []apiclient.Service
	closed   bool
}

func NewController(api API, notifier notify.Notifier, log *logrus.Logger, opts ...Option) *Controller {
	c := &Controller{
		api:      api,
		notifier: notifier,
		log:      log,
		debounce: DefaultDebounce,
		after: func(d time.Duration, f func()) Stopper {
			return time.AfterFunc(d, f)
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) SetSearch(text string) {
	c.update(func(f *apiclient.ServiceFilter) { f.Search = normalize(text) })
}

func (c *Controller) SetCategory(category string) {
	c.update(func(f *apiclient.ServiceFilter) { f.Category = normalize(category) })
}

func (c *Controller) SetLocation(location string) {
	c.update(func(f *apiclient.ServiceFilter) { f.Location = normalize(location) })
}

// Filter returns the filter the next query will use
func (c *Controller) Filter() apiclient.ServiceFilter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

// Services returns a copy of the displayed collection
func (c *Controller) Services() []apiclient.Service {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]apiclient.Service, len(c.services))
	copy(out, c.services)
	return out
}

// update applies the edit and re-arms the quiet-period timer
func (c *Controller) update(edit func(*apiclient.ServiceFilter)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	edit(&c.filter)
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = c.after(c.debounce, func() {
		_ = c.Refresh(context.Background())
	})
}

// Refresh queries right away with the current filter. A failure leaves the
// collection untouched; a superseded query returns context.Canceled.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return context.Canceled
	}
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if c.cancel != nil {
		c.cancel()
	}
	c.seq++
	seq := c.seq
	filter := c.filter
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.mu.Unlock()

	defer cancel()
	services, err := c.api.ListServices(ctx, filter)

	c.mu.Lock()
	if seq != c.seq || c.closed {
		c.mu.Unlock()
		return context.Canceled
	}
	c.cancel = nil
	if err != nil {
		c.mu.Unlock()
		if errors.Is(err, context.Canceled) {
			return err
		}
		c.log.Warnf("Failed to load services: %v", err)
		c.notifier.Error(LoadFailedMessage)
		return err
	}
	c.services = services
	onUpdate := c.onUpdate
	c.mu.Unlock()

	if onUpdate != nil {
		onUpdate(services)
	}
	return nil
}

// Close stops the pending timer and cancels any in-flight query
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// normalize maps the "everything" placeholders to no filter
func normalize(value string) string {
	value = strings.TrimSpace(value)
	switch strings.ToLower(value) {
	case "all", "all categories", "all locations":
		return ""
	}
	return value
}
