package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"dossier/internal/records"
	"dossier/internal/records/service"
	id "dossier/pkg/domain"
	"dossier/pkg/platform/httputil"
	"dossier/pkg/requestcontext"
)

// RecordsService runs the record workflows on behalf of an actor.
type RecordsService interface {
	CreateCaseFile(ctx context.Context, actorID id.ActorID, in service.CreateCaseFileInput) (*records.CaseFile, error)
	GetCaseFile(ctx context.Context, caseFileID id.CaseFileID) (*records.CaseFile, error)
	UpdateCaseFile(ctx context.Context, actorID id.ActorID, caseFileID id.CaseFileID, in service.UpdateCaseFileInput) (*records.CaseFile, error)
	DeleteCaseFile(ctx context.Context, actorID id.ActorID, caseFileID id.CaseFileID) error
	CreateFolder(ctx context.Context, actorID id.ActorID, caseFileID id.CaseFileID, in service.CreateFolderInput) (*records.Folder, error)
	RegisterDocument(ctx context.Context, actorID id.ActorID, folderID id.FolderID, in service.RegisterDocumentInput) (*records.Document, error)
	GetDocument(ctx context.Context, documentID id.DocumentID) (*records.Document, error)
	UpdateDocument(ctx context.Context, actorID id.ActorID, documentID id.DocumentID, in service.UpdateDocumentInput) (*records.Document, error)
	DeleteDocument(ctx context.Context, actorID id.ActorID, documentID id.DocumentID) error
	AddVersion(ctx context.Context, actorID id.ActorID, documentID id.DocumentID, in service.AddVersionInput) (*records.Version, error)
	ListVersions(ctx context.Context, documentID id.DocumentID) ([]*records.Version, error)
}

// RecordsHandler serves case file, folder, document and version workflows.
// Every route expects an authenticated actor on the context.
type RecordsHandler struct {
	records RecordsService
	logger  *slog.Logger
}

func NewRecordsHandler(records RecordsService, logger *slog.Logger) *RecordsHandler {
	return &RecordsHandler{records: records, logger: logger}
}

func (h *RecordsHandler) Register(r chi.Router) {
	r.Post("/case-files", h.handleCreateCaseFile)
	r.Get("/case-files/{caseFileID}", h.handleGetCaseFile)
	r.Patch("/case-files/{caseFileID}", h.handleUpdateCaseFile)
	r.Delete("/case-files/{caseFileID}", h.handleDeleteCaseFile)
	r.Post("/case-files/{caseFileID}/folders", h.handleCreateFolder)
	r.Post("/folders/{folderID}/documents", h.handleRegisterDocument)
	r.Get("/documents/{documentID}", h.handleGetDocument)
	r.Patch("/documents/{documentID}", h.handleUpdateDocument)
	r.Delete("/documents/{documentID}", h.handleDeleteDocument)
	r.Post("/documents/{documentID}/versions", h.handleAddVersion)
	r.Get("/documents/{documentID}/versions", h.handleListVersions)
}

func (h *RecordsHandler) handleCreateCaseFile(w http.ResponseWriter, r *http.Request) {
	var in service.CreateCaseFileInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		httputil.WriteError(w, err)
		return
	}
	ctx := r.Context()
	cf, err := h.records.CreateCaseFile(ctx, requestcontext.ActorID(ctx), in)
	h.respond(w, r, "create case file", http.StatusCreated, cf, err)
}

func (h *RecordsHandler) handleGetCaseFile(w http.ResponseWriter, r *http.Request) {
	caseFileID, err := pathID(r, "caseFileID", id.ParseCaseFileID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	cf, err := h.records.GetCaseFile(r.Context(), caseFileID)
	h.respond(w, r, "get case file", http.StatusOK, cf, err)
}

func (h *RecordsHandler) handleUpdateCaseFile(w http.ResponseWriter, r *http.Request) {
	caseFileID, err := pathID(r, "caseFileID", id.ParseCaseFileID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var in service.UpdateCaseFileInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		httputil.WriteError(w, err)
		return
	}
	ctx := r.Context()
	cf, err := h.records.UpdateCaseFile(ctx, requestcontext.ActorID(ctx), caseFileID, in)
	h.respond(w, r, "update case file", http.StatusOK, cf, err)
}

func (h *RecordsHandler) handleDeleteCaseFile(w http.ResponseWriter, r *http.Request) {
	caseFileID, err := pathID(r, "caseFileID", id.ParseCaseFileID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	ctx := r.Context()
	err = h.records.DeleteCaseFile(ctx, requestcontext.ActorID(ctx), caseFileID)
	h.respond(w, r, "delete case file", http.StatusNoContent, nil, err)
}

func (h *RecordsHandler) handleCreateFolder(w http.ResponseWriter, r *http.Request) {
	caseFileID, err := pathID(r, "caseFileID", id.ParseCaseFileID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var in service.CreateFolderInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		httputil.WriteError(w, err)
		return
	}
	ctx := r.Context()
	folder, err := h.records.CreateFolder(ctx, requestcontext.ActorID(ctx), caseFileID, in)
	h.respond(w, r, "create folder", http.StatusCreated, folder, err)
}

func (h *RecordsHandler) handleRegisterDocument(w http.ResponseWriter, r *http.Request) {
	folderID, err := pathID(r, "folderID", id.ParseFolderID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var in service.RegisterDocumentInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		httputil.WriteError(w, err)
		return
	}
	ctx := r.Context()
	doc, err := h.records.RegisterDocument(ctx, requestcontext.ActorID(ctx), folderID, in)
	h.respond(w, r, "register document", http.StatusCreated, doc, err)
}

func (h *RecordsHandler) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	documentID, err := pathID(r, "documentID", id.ParseDocumentID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	doc, err := h.records.GetDocument(r.Context(), documentID)
	h.respond(w, r, "get document", http.StatusOK, doc, err)
}

func (h *RecordsHandler) handleUpdateDocument(w http.ResponseWriter, r *http.Request) {
	documentID, err := pathID(r, "documentID", id.ParseDocumentID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var in service.UpdateDocumentInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		httputil.WriteError(w, err)
		return
	}
	ctx := r.Context()
	doc, err := h.records.UpdateDocument(ctx, requestcontext.ActorID(ctx), documentID, in)
	h.respond(w, r, "update document", http.StatusOK, doc, err)
}

func (h *RecordsHandler) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	documentID, err := pathID(r, "documentID", id.ParseDocumentID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	ctx := r.Context()
	err = h.records.DeleteDocument(ctx, requestcontext.ActorID(ctx), documentID)
	h.respond(w, r, "delete document", http.StatusNoContent, nil, err)
}

func (h *RecordsHandler) handleAddVersion(w http.ResponseWriter, r *http.Request) {
	documentID, err := pathID(r, "documentID", id.ParseDocumentID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var in service.AddVersionInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		httputil.WriteError(w, err)
		return
	}
	ctx := r.Context()
	version, err := h.records.AddVersion(ctx, requestcontext.ActorID(ctx), documentID, in)
	h.respond(w, r, "add version", http.StatusCreated, version, err)
}

func (h *RecordsHandler) handleListVersions(w http.ResponseWriter, r *http.Request) {
	documentID, err := pathID(r, "documentID", id.ParseDocumentID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	versions, err := h.records.ListVersions(r.Context(), documentID)
	if err != nil {
		logFailure(r.Context(), h.logger, "list versions", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"versions": versions})
}

func (h *RecordsHandler) respond(w http.ResponseWriter, r *http.Request, op string, status int, body any, err error) {
	if err != nil {
		logFailure(r.Context(), h.logger, op, err)
		httputil.WriteError(w, err)
		return
	}
	if status == http.StatusNoContent {
		w.WriteHeader(status)
		return
	}
	httputil.WriteJSON(w, status, body)
}
