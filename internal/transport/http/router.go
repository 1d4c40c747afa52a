// Package httptransport exposes the record workflows, session boundaries and
// the audit query surface over HTTP.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"dossier/pkg/platform/httputil"
	"dossier/pkg/platform/middleware/admin"
	authmw "dossier/pkg/platform/middleware/auth"
	"dossier/pkg/platform/middleware/metadata"
	request "dossier/pkg/platform/middleware/request"
	"dossier/pkg/platform/middleware/requesttime"
)

// RouterConfig carries the cross-cutting pieces of the router.
type RouterConfig struct {
	Logger       *slog.Logger
	JWTValidator authmw.JWTValidator
	// AdminToken additionally guards actor registration and the audit
	// routes when set.
	AdminToken string
	// Metrics serves /metrics when non-nil.
	Metrics http.Handler
	// Ready lists the dependencies /ready pings, by name.
	Ready map[string]func(context.Context) error
}

// Handlers groups the route handlers.
type Handlers struct {
	Actors   *ActorHandler
	Sessions *SessionHandler
	Records  *RecordsHandler
	Audit    *AuditHandler
}

func NewRouter(cfg RouterConfig, h Handlers) http.Handler {
	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(request.Recovery(cfg.Logger))
	r.Use(request.Logger(cfg.Logger))
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/ready", readiness(cfg.Ready, cfg.Logger))
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}

	r.Group(func(r chi.Router) {
		if cfg.AdminToken != "" {
			r.Use(admin.RequireAdminToken(cfg.AdminToken, cfg.Logger))
		}
		h.Actors.Register(r)
	})

	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireActor(cfg.JWTValidator, cfg.Logger))
		h.Sessions.Register(r)
		h.Records.Register(r)

		r.Group(func(r chi.Router) {
			if cfg.AdminToken != "" {
				r.Use(admin.RequireAdminToken(cfg.AdminToken, cfg.Logger))
			}
			h.Audit.Register(r)
		})
	})

	return r
}

func readiness(checks map[string]func(context.Context) error, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		report := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(r.Context()); err != nil {
				if log != nil {
					log.WarnContext(r.Context(), "readiness check failed", "dependency", name, "error", err)
				}
				report[name] = "unavailable"
				status = http.StatusServiceUnavailable
				continue
			}
			report[name] = "ok"
		}
		httputil.WriteJSON(w, status, report)
	}
}
