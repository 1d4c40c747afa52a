package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"dossier/internal/records"
	"dossier/internal/records/service"
	id "dossier/pkg/domain"
	dErrors "dossier/pkg/domain-errors"
	"dossier/pkg/platform/httputil"
	"dossier/pkg/requestcontext"
)

const defaultTokenTTL = 12 * time.Hour

// ActorRegistry creates actors.
type ActorRegistry interface {
	CreateActor(ctx context.Context, creator id.ActorID, in service.CreateActorInput) (*records.Actor, error)
}

// TokenIssuer mints bearer tokens for a newly registered actor.
type TokenIssuer interface {
	GenerateAccessToken(actorID id.ActorID, username string, expiresIn time.Duration) (string, error)
}

type ActorHandler struct {
	actors   ActorRegistry
	tokens   TokenIssuer
	tokenTTL time.Duration
	logger   *slog.Logger
}

func NewActorHandler(actors ActorRegistry, tokens TokenIssuer, logger *slog.Logger) *ActorHandler {
	return &ActorHandler{actors: actors, tokens: tokens, tokenTTL: defaultTokenTTL, logger: logger}
}

type createActorResponse struct {
	Actor       *records.Actor `json:"actor"`
	AccessToken string         `json:"access_token"`
	ExpiresIn   int            `json:"expires_in"`
}

func (h *ActorHandler) Register(r chi.Router) {
	r.Post("/actors", h.handleCreateActor)
}

func (h *ActorHandler) handleCreateActor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var in service.CreateActorInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		httputil.WriteError(w, err)
		return
	}
	actor, err := h.actors.CreateActor(ctx, requestcontext.ActorID(ctx), in)
	if err != nil {
		logFailure(ctx, h.logger, "create actor", err)
		httputil.WriteError(w, err)
		return
	}
	token, err := h.tokens.GenerateAccessToken(actor.ID, actor.Username, h.tokenTTL)
	if err != nil {
		err = dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
		logFailure(ctx, h.logger, "create actor", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, createActorResponse{
		Actor:       actor,
		AccessToken: token,
		ExpiresIn:   int(h.tokenTTL.Seconds()),
	})
}
