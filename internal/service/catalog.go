package service

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/Shivanand-hulikatti/eventmaster/internal/inventory"
	"github.com/Shivanand-hulikatti/eventmaster/internal/model"
	"github.com/Shivanand-hulikatti/eventmaster/internal/session"
)

// CatalogSource is what the catalog re-fetches from.
type CatalogSource interface {
	EventLister
	RegistrationLister
}

// Catalog is the per-session view state: the normalized event list and the
// caller's registrations. Both are transient copies replaced wholesale on
// every refresh; nothing is merged locally.
type Catalog struct {
	source   CatalogSource
	sess     *session.Session
	notifier Notifier
	logger   *slog.Logger

	mu            sync.RWMutex
	events        []model.Event
	registrations []model.Registration
	inFlight      int
}

// NewCatalog constructs a Catalog for one signed-in session.
func NewCatalog(source CatalogSource, sess *session.Session, notifier Notifier, logger *slog.Logger) *Catalog {
	if notifier == nil {
		notifier = discardNotifier{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Catalog{
		source:   source,
		sess:     sess,
		notifier: notifier,
		logger:   logger,
	}
}

// Session returns the session every call from this catalog carries.
func (c *Catalog) Session() *session.Session {
	return c.sess
}

// RefreshEvents re-fetches and normalizes the event list.
func (c *Catalog) RefreshEvents(ctx context.Context) error {
	done := c.begin()
	defer done()

	raw, err := c.source.ListEvents(ctx, c.sess)
	if err != nil {
		return c.fail("Failed to load events", err)
	}

	events, coercions := inventory.NormalizeAll(raw)
	for _, co := range coercions {
		c.logger.Warn("coerced ticket inventory field",
			"event", co.EventID,
			"ticket_type", co.TicketTypeID,
			"field", co.Field,
			"raw", co.Raw,
			"reason", co.Reason,
		)
	}

	c.mu.Lock()
	c.events = events
	c.mu.Unlock()
	c.logger.Debug("events refreshed", "count", len(events))
	return nil
}

// RefreshRegistrations re-fetches the caller's registrations.
func (c *Catalog) RefreshRegistrations(ctx context.Context) error {
	done := c.begin()
	defer done()

	regs, err := c.source.MyRegistrations(ctx, c.sess)
	if err != nil {
		return c.fail("Failed to load your registrations", err)
	}

	c.mu.Lock()
	c.registrations = regs
	c.mu.Unlock()
	c.logger.Debug("registrations refreshed", "count", len(regs))
	return nil
}

// Refresh re-fetches both lists. Both are attempted; the first error wins.
func (c *Catalog) Refresh(ctx context.Context) error {
	errRegs := c.RefreshRegistrations(ctx)
	errEvents := c.RefreshEvents(ctx)
	if errRegs != nil {
		return errRegs
	}
	return errEvents
}

// Events returns a copy of the current event list.
func (c *Catalog) Events() []model.Event {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.events)
}

// Event looks up one event of the current list.
func (c *Catalog) Event(id string) (model.Event, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, e := range c.events {
		if e.ID == id {
			return e, true
		}
	}
	return model.Event{}, false
}

// Registrations returns a copy of the caller's registrations.
func (c *Catalog) Registrations() []model.Registration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.registrations)
}

// Busy reports whether a fetch is in flight.
func (c *Catalog) Busy() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.inFlight > 0
}

func (c *Catalog) begin() func() {
	c.mu.Lock()
	c.inFlight++
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		c.inFlight--
		c.mu.Unlock()
	}
}

func (c *Catalog) fail(prefix string, err error) error {
	return report(c.notifier, c.logger, c.sess, prefix, err)
}
