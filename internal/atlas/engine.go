package atlas

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"ntrip-atlas/internal/backoff"
	"ntrip-atlas/internal/catalog"
	"ntrip-atlas/internal/creds"
	"ntrip-atlas/internal/platform"
	"ntrip-atlas/internal/policy"
	"ntrip-atlas/internal/selection"
	"ntrip-atlas/internal/spatial"
)

// DefaultTimeout bounds each per-candidate sourcetable stream.
const DefaultTimeout = 10 * time.Second

// Engine owns all discovery state. It is not safe for concurrent use;
// callers serialize, typically by owning the engine from one goroutine.
type Engine struct {
	plat     platform.Platform
	log      zerolog.Logger
	services []catalog.Service
	index    *spatial.Index

	failures  *backoff.Store
	creds     *creds.Store
	blacklist *policy.Blacklist
	priority  selection.PaymentPriority

	timeout time.Duration
}

// Option configures an Engine at construction.
type Option func(*Engine)

// WithLogger routes engine diagnostics through log.
func WithLogger(log zerolog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithPaymentPriority sets the initial candidate ordering mode.
func WithPaymentPriority(p selection.PaymentPriority) Option {
	return func(e *Engine) { e.priority = p }
}

// WithTimeout overrides the per-candidate stream timeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) { e.timeout = d }
}

// WithServices substitutes the compiled-in catalog. Intended for tests and
// for hosts that carry their own service database.
func WithServices(services []catalog.Service) Option {
	return func(e *Engine) { e.services = services }
}

// New builds an engine over the platform: spatial index from the catalog,
// failure history reloaded from the platform when present.
func New(plat platform.Platform, opts ...Option) (*Engine, error) {
	e := &Engine{
		plat:     plat,
		log:      zerolog.Nop(),
		services: catalog.Services(),
		timeout:  DefaultTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}

	idx, err := spatial.Build(e.services, spatial.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("atlas: building index: %w", err)
	}
	e.index = idx
	e.failures = backoff.NewStore(plat.NowSeconds)
	e.creds = creds.NewStore()
	e.blacklist = policy.NewBlacklist(plat.NowSeconds)

	if blob, err := plat.LoadFailures(); err == nil {
		if err := e.failures.Load(blob); err != nil {
			// Corrupt history is not worth failing startup over.
			e.log.Warn().Err(err).Msg("discarding persisted failure history")
			_ = plat.ClearFailures()
		}
	} else if !errors.Is(err, platform.ErrNotStored) {
		e.log.Warn().Err(err).Msg("failure history unavailable")
	}

	e.log.Debug().Int("services", len(e.services)).
		Str("database", catalog.DatabaseVersion).Msg("engine ready")
	return e, nil
}

// SetPaymentPriority changes candidate ordering for subsequent lookups.
func (e *Engine) SetPaymentPriority(p selection.PaymentPriority) {
	e.priority = p
}

// SetCredentials stores a username/password for a service and persists it
// through the platform.
func (e *Engine) SetCredentials(serviceID, username, password string) error {
	if _, ok := e.serviceByID(serviceID); !ok {
		return fmt.Errorf("%w: service %q", ErrNotFound, serviceID)
	}
	if err := e.creds.Set(serviceID, creds.Credentials{Username: username, Password: password}); err != nil {
		return err
	}
	if err := e.plat.StoreCredential(serviceID+".username", username); err != nil {
		return err
	}
	return e.plat.StoreCredential(serviceID+".password", password)
}

// resolveCredentials finds the username/password to present for a service:
// the in-memory store, then platform storage, then the community default
// for rtk2go casters. ok is false when the service needs credentials we do
// not have.
func (e *Engine) resolveCredentials(s catalog.Service) (creds.Credentials, bool) {
	if c, err := e.creds.Get(s.ID); err == nil {
		return c, true
	}
	if u, err := e.plat.LoadCredential(s.ID + ".username"); err == nil {
		p, _ := e.plat.LoadCredential(s.ID + ".password")
		c := creds.Credentials{Username: u, Password: p}
		_ = e.creds.Set(s.ID, c)
		return c, true
	}
	if strings.Contains(s.Hostname, "rtk2go") {
		return creds.RTK2goDefaults, true
	}
	return creds.Credentials{}, s.Auth() == catalog.AuthNone
}

func (e *Engine) serviceByID(id string) (int, bool) {
	for i, s := range e.services {
		if s.ID == id {
			return i, true
		}
	}
	return 0, false
}

// RecordFailure notes a failed connection attempt against a service and
// persists the updated history.
func (e *Engine) RecordFailure(serviceID string) error {
	i, ok := e.serviceByID(serviceID)
	if !ok {
		return fmt.Errorf("%w: service %q", ErrNotFound, serviceID)
	}
	e.recordFailure(i)
	return nil
}

// RecordSuccess clears failure state for a service.
func (e *Engine) RecordSuccess(serviceID string) error {
	i, ok := e.serviceByID(serviceID)
	if !ok {
		return fmt.Errorf("%w: service %q", ErrNotFound, serviceID)
	}
	e.recordSuccess(i)
	return nil
}

func (e *Engine) recordFailure(index int) {
	rec := e.failures.Fail(uint8(index))
	e.log.Debug().Str("service", e.services[index].ID).
		Uint8("count", rec.Count).Uint8("level", rec.Level).Msg("failure recorded")
	e.persistFailures()
}

func (e *Engine) recordSuccess(index int) {
	e.failures.Succeed(uint8(index))
	e.persistFailures()
}

// persistFailures is best-effort; a host without storage still gets
// in-memory backoff.
func (e *Engine) persistFailures() {
	if err := e.plat.StoreFailures(e.failures.Encode()); err != nil {
		e.log.Warn().Err(err).Msg("failure history not persisted")
	}
}

// ServiceBlocked reports whether a service is inside its backoff window.
func (e *Engine) ServiceBlocked(serviceID string) bool {
	i, ok := e.serviceByID(serviceID)
	if !ok {
		return false
	}
	return e.failures.Blocked(uint8(i))
}

// ServiceRetryHours returns how many whole hours remain before a blocked
// service becomes eligible again, zero when it is not blocked.
func (e *Engine) ServiceRetryHours(serviceID string) uint32 {
	i, ok := e.serviceByID(serviceID)
	if !ok {
		return 0
	}
	rec, tracked := e.failures.Lookup(uint8(i))
	if !tracked {
		return 0
	}
	now := uint32(e.plat.NowSeconds() / 3600)
	if rec.RetryHours <= now {
		return 0
	}
	return rec.RetryHours - now
}

// ClearFailureHistory forgets all failure state, in memory and persisted.
func (e *Engine) ClearFailureHistory() error {
	e.failures = backoff.NewStore(e.plat.NowSeconds)
	return e.plat.ClearFailures()
}

// BlacklistPosition blocks a service in the 1-degree cell around the
// position. Soft state: it does not survive the engine.
func (e *Engine) BlacklistPosition(serviceID string, lat, lon float64, reason policy.BlacklistReason) error {
	if _, ok := e.serviceByID(serviceID); !ok {
		return fmt.Errorf("%w: service %q", ErrNotFound, serviceID)
	}
	e.blacklist.Add(serviceID, lat, lon, reason)
	return nil
}

// ClearBlacklist removes blacklist state for one service, or for all
// services when serviceID is empty.
func (e *Engine) ClearBlacklist(serviceID string) {
	e.blacklist.Clear(serviceID)
}

// BlacklistEntries lists the blocked cells for a service, oldest first.
func (e *Engine) BlacklistEntries(serviceID string) []policy.BlacklistEntry {
	return e.blacklist.Entries(serviceID)
}

// ServiceInfo returns the expanded record for a catalog service.
func (e *Engine) ServiceInfo(serviceID string) (catalog.Full, error) {
	i, ok := e.serviceByID(serviceID)
	if !ok {
		return catalog.Full{}, fmt.Errorf("%w: service %q", ErrNotFound, serviceID)
	}
	return catalog.Expand(e.services[i]), nil
}
