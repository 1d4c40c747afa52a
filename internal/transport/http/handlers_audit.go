package httptransport

//go:generate mockgen -source=handlers_audit.go -destination=mocks/audit-mocks.go -package=mocks AuditService

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	auditquery "dossier/internal/audit"
	"dossier/internal/timeline"
	id "dossier/pkg/domain"
	dErrors "dossier/pkg/domain-errors"
	auditcore "dossier/pkg/platform/audit"
	"dossier/pkg/platform/httputil"
	request "dossier/pkg/platform/middleware/request"
)

// AuditService is the read side of the change audit.
type AuditService interface {
	ListSessions(ctx context.Context, q auditquery.SessionQuery) ([]*auditcore.ActorSession, error)
	GetSession(ctx context.Context, sessionID id.SessionID) (*auditquery.SessionDetail, error)
	ListChanges(ctx context.Context, sessionID id.SessionID, q auditquery.ChangeQuery) ([]*auditcore.ChangeRecord, error)
	ListTimeline(ctx context.Context, caseFileID id.CaseFileID, limit int) ([]*timeline.Event, error)
}

// AuditHandler serves session, change record and timeline listings.
type AuditHandler struct {
	audit  AuditService
	logger *slog.Logger
}

func NewAuditHandler(audit AuditService, logger *slog.Logger) *AuditHandler {
	return &AuditHandler{audit: audit, logger: logger}
}

func (h *AuditHandler) Register(r chi.Router) {
	r.Get("/audit/sessions", h.handleListSessions)
	r.Get("/audit/sessions/{sessionID}", h.handleGetSession)
	r.Get("/audit/sessions/{sessionID}/changes", h.handleListChanges)
	r.Get("/case-files/{caseFileID}/timeline", h.handleListTimeline)
}

func (h *AuditHandler) handleListSessions(w http.ResponseWriter, r *http.Request) {
	date, err := queryDate(r, "date")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	q := r.URL.Query()
	sessions, err := h.audit.ListSessions(r.Context(), auditquery.SessionQuery{
		ActorName: q.Get("actor"),
		Label:     q.Get("label"),
		Date:      date,
	})
	if err != nil {
		h.fail(w, r, "list sessions", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
}

func (h *AuditHandler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := pathID(r, "sessionID", id.ParseSessionID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	detail, err := h.audit.GetSession(r.Context(), sessionID)
	if err != nil {
		h.fail(w, r, "get session", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, detail)
}

func (h *AuditHandler) handleListChanges(w http.ResponseWriter, r *http.Request) {
	sessionID, err := pathID(r, "sessionID", id.ParseSessionID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	from, err := queryInstant(r, "from")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	to, err := queryInstant(r, "to")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	q := r.URL.Query()
	var newestFirst bool
	switch q.Get("order") {
	case "", "asc":
	case "desc":
		newestFirst = true
	default:
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "order must be asc or desc"))
		return
	}

	changes, err := h.audit.ListChanges(r.Context(), sessionID, auditquery.ChangeQuery{
		Action:      auditcore.Action(q.Get("action")),
		EntityType:  q.Get("entity_type"),
		From:        from,
		To:          to,
		NewestFirst: newestFirst,
	})
	if err != nil {
		h.fail(w, r, "list changes", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"changes": changes})
}

func (h *AuditHandler) handleListTimeline(w http.ResponseWriter, r *http.Request) {
	caseFileID, err := pathID(r, "caseFileID", id.ParseCaseFileID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	events, err := h.audit.ListTimeline(r.Context(), caseFileID, limit)
	if err != nil {
		h.fail(w, r, "list timeline", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"events": events})
}

func (h *AuditHandler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	logFailure(r.Context(), h.logger, op, err)
	httputil.WriteError(w, err)
}

// logFailure logs internal failures at error level and client errors at
// debug level.
func logFailure(ctx context.Context, logger *slog.Logger, op string, err error) {
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		logger.ErrorContext(ctx, op+" failed",
			"error", err,
			"request_id", request.GetRequestID(ctx),
		)
		return
	}
	logger.DebugContext(ctx, op+" rejected",
		"error", err,
		"request_id", request.GetRequestID(ctx),
	)
}
