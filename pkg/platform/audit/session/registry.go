// Package session resolves the actor session a change record belongs to and
// records explicit session boundaries.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	id "dossier/pkg/domain"
	audit "dossier/pkg/platform/audit"
	"dossier/pkg/platform/sentinel"
)

// ErrNoActor is returned when a session is requested without an actor.
var ErrNoActor = errors.New("session requires an actor")

// Cache remembers the latest session per actor. Get returns
// sentinel.ErrNotFound on a miss. Implementations may be lossy; the store
// stays authoritative.
type Cache interface {
	Get(ctx context.Context, actorID id.ActorID) (*audit.ActorSession, error)
	Set(ctx context.Context, session *audit.ActorSession) error
}

// Metrics observes session creation.
type Metrics interface {
	IncSessionsSynthesized()
	IncSessionsOpened(label string)
}

// Boundary is the client context captured when a session starts or ends.
type Boundary struct {
	Origin string
	Client string
	Device string
}

// Registry hands out sessions for change attribution.
type Registry struct {
	store          audit.SessionStore
	cache          Cache
	metrics        Metrics
	logger         *slog.Logger
	clock          *audit.Clock
	loopbackOrigin string
}

// Option configures the Registry.
type Option func(*Registry)

// WithCache puts a latest-session cache in front of the store.
func WithCache(cache Cache) Option {
	return func(r *Registry) {
		r.cache = cache
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m Metrics) Option {
	return func(r *Registry) {
		r.metrics = m
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithClock shares a timestamp source with the change writer so sessions
// and records order consistently.
func WithClock(clock *audit.Clock) Option {
	return func(r *Registry) {
		if clock != nil {
			r.clock = clock
		}
	}
}

// WithLoopbackOrigin overrides the origin stamped on synthesized sessions.
func WithLoopbackOrigin(origin string) Option {
	return func(r *Registry) {
		if origin != "" {
			r.loopbackOrigin = origin
		}
	}
}

// New creates a registry over the given store.
func New(store audit.SessionStore, opts ...Option) *Registry {
	r := &Registry{
		store:          store,
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		clock:          audit.NewClock(),
		loopbackOrigin: audit.DefaultLoopbackOrigin,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the actor's most recent session, synthesizing one labeled
// for the action when the actor has none. Sessions are never mutated.
func (r *Registry) Resolve(ctx context.Context, actorID id.ActorID, action audit.Action) (*audit.ActorSession, error) {
	if actorID.IsNil() {
		return nil, ErrNoActor
	}

	if latest, err := r.latest(ctx, actorID); err == nil {
		return latest, nil
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, err
	}

	session := &audit.ActorSession{
		ID:               id.SessionID(uuid.New()),
		ActorID:          actorID,
		Label:            audit.AutomaticLabel(action),
		Origin:           r.loopbackOrigin,
		ClientDescriptor: audit.InternalClient,
	}
	if err := r.insert(ctx, session); err != nil {
		return nil, fmt.Errorf("synthesize session: %w", err)
	}
	if r.metrics != nil {
		r.metrics.IncSessionsSynthesized()
	}
	r.logger.InfoContext(ctx, "audit session synthesized",
		"actor_id", actorID.String(),
		"session_id", session.ID.String(),
		"action", string(action),
	)
	return session, nil
}

// Open records a session-start boundary. It always creates a new session.
func (r *Registry) Open(ctx context.Context, actorID id.ActorID, b Boundary) (*audit.ActorSession, error) {
	return r.boundary(ctx, actorID, audit.LabelSessionStart, b)
}

// Close records a session-end boundary as its own session row.
func (r *Registry) Close(ctx context.Context, actorID id.ActorID, b Boundary) (*audit.ActorSession, error) {
	return r.boundary(ctx, actorID, audit.LabelSessionEnd, b)
}

func (r *Registry) boundary(ctx context.Context, actorID id.ActorID, label string, b Boundary) (*audit.ActorSession, error) {
	if actorID.IsNil() {
		return nil, ErrNoActor
	}
	session := &audit.ActorSession{
		ID:               id.SessionID(uuid.New()),
		ActorID:          actorID,
		Label:            label,
		Origin:           b.Origin,
		ClientDescriptor: b.Client,
		Device:           b.Device,
	}
	if err := r.insert(ctx, session); err != nil {
		return nil, fmt.Errorf("record %s: %w", label, err)
	}
	if r.metrics != nil {
		r.metrics.IncSessionsOpened(label)
	}
	return session, nil
}

func (r *Registry) insert(ctx context.Context, session *audit.ActorSession) error {
	session.Timestamp = r.clock.Now()
	switch session.Label {
	case audit.LabelSessionStart:
		ts := session.Timestamp
		session.SessionStart = &ts
	case audit.LabelSessionEnd:
		ts := session.Timestamp
		session.SessionEnd = &ts
	}
	if err := r.store.InsertSession(ctx, session); err != nil {
		return err
	}
	if r.cache != nil {
		if err := r.cache.Set(ctx, session); err != nil {
			r.logger.WarnContext(ctx, "audit session cache write failed",
				"actor_id", session.ActorID.String(),
				"error", err,
			)
		}
	}
	return nil
}

func (r *Registry) latest(ctx context.Context, actorID id.ActorID) (*audit.ActorSession, error) {
	if r.cache != nil {
		cached, err := r.cache.Get(ctx, actorID)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, sentinel.ErrNotFound) {
			r.logger.WarnContext(ctx, "audit session cache read failed",
				"actor_id", actorID.String(),
				"error", err,
			)
		}
	}

	latest, err := r.store.LatestSession(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if r.cache != nil {
		if err := r.cache.Set(ctx, latest); err != nil {
			r.logger.WarnContext(ctx, "audit session cache write failed",
				"actor_id", actorID.String(),
				"error", err,
			)
		}
	}
	return latest, nil
}
