package httptransport

//go:generate mockgen -source=handlers_sessions.go -destination=mocks/sessions-mocks.go -package=mocks SessionRegistry

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	id "dossier/pkg/domain"
	dErrors "dossier/pkg/domain-errors"
	auditcore "dossier/pkg/platform/audit"
	"dossier/pkg/platform/audit/session"
	"dossier/pkg/platform/httputil"
	"dossier/pkg/requestcontext"
)

// SessionRegistry records interactive session boundaries.
type SessionRegistry interface {
	Open(ctx context.Context, actorID id.ActorID, b session.Boundary) (*auditcore.ActorSession, error)
	Close(ctx context.Context, actorID id.ActorID, b session.Boundary) (*auditcore.ActorSession, error)
}

// SessionHandler serves sign-in and sign-out boundaries for the
// authenticated actor.
type SessionHandler struct {
	sessions SessionRegistry
	logger   *slog.Logger
}

func NewSessionHandler(sessions SessionRegistry, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{sessions: sessions, logger: logger}
}

func (h *SessionHandler) Register(r chi.Router) {
	r.Post("/sessions/start", h.handleStart)
	r.Post("/sessions/end", h.handleEnd)
}

func (h *SessionHandler) handleStart(w http.ResponseWriter, r *http.Request) {
	h.boundary(w, r, "open session", h.sessions.Open)
}

func (h *SessionHandler) handleEnd(w http.ResponseWriter, r *http.Request) {
	h.boundary(w, r, "close session", h.sessions.Close)
}

type boundaryFunc func(ctx context.Context, actorID id.ActorID, b session.Boundary) (*auditcore.ActorSession, error)

func (h *SessionHandler) boundary(w http.ResponseWriter, r *http.Request, op string, fn boundaryFunc) {
	ctx := r.Context()
	sess, err := fn(ctx, requestcontext.ActorID(ctx), boundaryFromContext(ctx))
	if err != nil {
		if errors.Is(err, session.ErrNoActor) {
			err = dErrors.Wrap(err, dErrors.CodeUnauthorized, "actor required")
		} else {
			err = dErrors.Wrap(err, dErrors.CodeInternal, "failed to record session boundary")
		}
		logFailure(ctx, h.logger, op, err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, sess)
}

func boundaryFromContext(ctx context.Context) session.Boundary {
	return session.Boundary{
		Origin: requestcontext.ClientIP(ctx),
		Client: requestcontext.UserAgent(ctx),
		Device: requestcontext.Device(ctx),
	}
}
