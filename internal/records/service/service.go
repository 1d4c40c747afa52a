// Package service runs the record workflows: actors, case files and the
// folder, document and version milestones that feed a case file's timeline.
//
// Every mutation goes through the record store, which reports it to the
// change observer after commit. Milestones are appended to the timeline
// explicitly once the mutation has succeeded.
package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Timeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"dossier/internal/records"
	"dossier/internal/records/store"
	"dossier/internal/timeline"
	id "dossier/pkg/domain"
	pkgerrors "dossier/pkg/domain-errors"
	"dossier/pkg/email"
	audit "dossier/pkg/platform/audit"
	"dossier/pkg/platform/sentinel"
	"dossier/pkg/requestcontext"
)

// Timeline appends case file milestones.
type Timeline interface {
	Append(ctx context.Context, caseFileID id.CaseFileID, actorID id.ActorID, kind timeline.Kind, description string) audit.Outcome
}

type Service struct {
	store    *store.Store
	timeline Timeline
	logger   *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func New(st *store.Store, tl Timeline, opts ...Option) *Service {
	s := &Service{
		store:    st,
		timeline: tl,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type CreateActorInput struct {
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// CreateActor registers an actor. With no creating actor the record is
// attributed to itself.
func (s *Service) CreateActor(ctx context.Context, creator id.ActorID, in CreateActorInput) (*records.Actor, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username is required")
	}
	existing, err := store.ListBy[records.Actor](ctx, s.store, "username", username)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "failed to look up actor")
	}
	if len(existing) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "username already taken")
	}

	address := strings.TrimSpace(in.Email)
	if address != "" && !email.Valid(address) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is malformed")
	}
	fullName := strings.TrimSpace(in.FullName)
	if fullName == "" {
		fullName = email.DisplayName(address)
	}

	now := requestcontext.Now(ctx)
	actor := &records.Actor{
		ID:        id.ActorID(uuid.New()),
		Username:  username,
		FullName:  fullName,
		Email:     address,
		CreatedAt: now,
		UpdatedAt: now,
	}
	by := creator
	if by.IsNil() {
		by = actor.ID
	}
	actor.CreatedBy = &by
	if err := s.store.Create(ctx, *actor); err != nil {
		return nil, translate(err, "actor")
	}
	return actor, nil
}

func (s *Service) GetActor(ctx context.Context, actorID id.ActorID) (*records.Actor, error) {
	actor, err := store.Get[records.Actor](ctx, s.store, uuid.UUID(actorID))
	if err != nil {
		return nil, translate(err, "actor")
	}
	return actor, nil
}

// SearchActors returns the ids of actors whose username or full name contains
// term, ignoring case.
func (s *Service) SearchActors(ctx context.Context, term string) ([]id.ActorID, error) {
	seen := make(map[id.ActorID]struct{})
	var out []id.ActorID
	for _, field := range []string{"username", "full_name"} {
		found, err := store.Search[records.Actor](ctx, s.store, field, term)
		if err != nil {
			return nil, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "failed to search actors")
		}
		for _, actor := range found {
			if _, dup := seen[actor.ID]; dup {
				continue
			}
			seen[actor.ID] = struct{}{}
			out = append(out, actor.ID)
		}
	}
	if out == nil {
		out = []id.ActorID{}
	}
	return out, nil
}

type CreateCaseFileInput struct {
	Number      string `json:"number"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (s *Service) CreateCaseFile(ctx context.Context, actorID id.ActorID, in CreateCaseFileInput) (*records.CaseFile, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	now := requestcontext.Now(ctx)
	cf := &records.CaseFile{
		ID:          id.CaseFileID(uuid.New()),
		Number:      strings.TrimSpace(in.Number),
		Title:       title,
		Description: in.Description,
		Status:      records.CaseFileOpen,
		CreatedBy:   &actorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Create(ctx, *cf); err != nil {
		return nil, translate(err, "case file")
	}
	return cf, nil
}

func (s *Service) GetCaseFile(ctx context.Context, caseFileID id.CaseFileID) (*records.CaseFile, error) {
	cf, err := store.Get[records.CaseFile](ctx, s.store, uuid.UUID(caseFileID))
	if err != nil {
		return nil, translate(err, "case file")
	}
	return cf, nil
}

// UpdateCaseFileInput carries optional changes; nil fields are left alone.
type UpdateCaseFileInput struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

func (s *Service) UpdateCaseFile(ctx context.Context, actorID id.ActorID, caseFileID id.CaseFileID, in UpdateCaseFileInput) (*records.CaseFile, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	cf, err := s.GetCaseFile(ctx, caseFileID)
	if err != nil {
		return nil, err
	}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "title must not be empty")
		}
		cf.Title = title
	}
	if in.Description != nil {
		cf.Description = *in.Description
	}
	if in.Status != nil {
		switch *in.Status {
		case records.CaseFileOpen, records.CaseFileClosed:
			cf.Status = *in.Status
		default:
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "status must be open or closed")
		}
	}
	cf.ModifiedBy = &actorID
	cf.UpdatedAt = requestcontext.Now(ctx)
	if err := s.store.Update(ctx, *cf); err != nil {
		return nil, translate(err, "case file")
	}
	return cf, nil
}

// DeleteCaseFile removes a case file together with its folders, documents
// and versions. Each removal is observed individually once the whole
// deletion commits.
func (s *Service) DeleteCaseFile(ctx context.Context, actorID id.ActorID, caseFileID id.CaseFileID) error {
	if err := requireActor(actorID); err != nil {
		return err
	}
	err := s.store.RunInTx(ctx, func(ctx context.Context) error {
		cf, err := store.Get[records.CaseFile](ctx, s.store, uuid.UUID(caseFileID))
		if err != nil {
			return err
		}
		documents, err := store.ListBy[records.Document](ctx, s.store, "case_file_id", caseFileID.String())
		if err != nil {
			return err
		}
		for _, doc := range documents {
			if err := s.removeDocument(ctx, actorID, doc); err != nil {
				return err
			}
		}
		folders, err := store.ListBy[records.Folder](ctx, s.store, "case_file_id", caseFileID.String())
		if err != nil {
			return err
		}
		for _, folder := range folders {
			folder.ModifiedBy = &actorID
			if err := s.store.Delete(ctx, *folder); err != nil {
				return err
			}
		}
		cf.ModifiedBy = &actorID
		return s.store.Delete(ctx, *cf)
	})
	if err != nil {
		return translate(err, "case file")
	}
	return nil
}

type CreateFolderInput struct {
	Name     string       `json:"name"`
	ParentID *id.FolderID `json:"parent_id"`
}

// CreateFolder files a folder under a case file, optionally nested in a
// parent folder of the same case file.
func (s *Service) CreateFolder(ctx context.Context, actorID id.ActorID, caseFileID id.CaseFileID, in CreateFolderInput) (*records.Folder, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if _, err := s.GetCaseFile(ctx, caseFileID); err != nil {
		return nil, err
	}
	if in.ParentID != nil {
		parent, err := store.Get[records.Folder](ctx, s.store, uuid.UUID(*in.ParentID))
		if err != nil {
			return nil, translate(err, "parent folder")
		}
		if parent.CaseFileID != caseFileID {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "parent folder belongs to another case file")
		}
	}

	folder := &records.Folder{
		ID:         id.FolderID(uuid.New()),
		CaseFileID: caseFileID,
		ParentID:   in.ParentID,
		Name:       name,
		CreatedBy:  &actorID,
		CreatedAt:  requestcontext.Now(ctx),
	}
	if err := s.store.Create(ctx, *folder); err != nil {
		return nil, translate(err, "folder")
	}
	s.milestone(ctx, caseFileID, actorID, timeline.KindFolder, fmt.Sprintf("Folder '%s' created.", folder.Name))
	return folder, nil
}

type RegisterDocumentInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Service) RegisterDocument(ctx context.Context, actorID id.ActorID, folderID id.FolderID, in RegisterDocumentInput) (*records.Document, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	folder, err := store.Get[records.Folder](ctx, s.store, uuid.UUID(folderID))
	if err != nil {
		return nil, translate(err, "folder")
	}

	now := requestcontext.Now(ctx)
	doc := &records.Document{
		ID:          id.DocumentID(uuid.New()),
		CaseFileID:  folder.CaseFileID,
		FolderID:    folder.ID,
		Name:        name,
		Description: in.Description,
		CreatedBy:   &actorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Create(ctx, *doc); err != nil {
		return nil, translate(err, "document")
	}
	s.milestone(ctx, doc.CaseFileID, actorID, timeline.KindDocument, fmt.Sprintf("Document '%s' registered.", doc.Name))
	return doc, nil
}

func (s *Service) GetDocument(ctx context.Context, documentID id.DocumentID) (*records.Document, error) {
	doc, err := store.Get[records.Document](ctx, s.store, uuid.UUID(documentID))
	if err != nil {
		return nil, translate(err, "document")
	}
	return doc, nil
}

type UpdateDocumentInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func (s *Service) UpdateDocument(ctx context.Context, actorID id.ActorID, documentID id.DocumentID, in UpdateDocumentInput) (*records.Document, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	doc, err := s.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name must not be empty")
		}
		doc.Name = name
	}
	if in.Description != nil {
		doc.Description = *in.Description
	}
	doc.ModifiedBy = &actorID
	doc.UpdatedAt = requestcontext.Now(ctx)
	if err := s.store.Update(ctx, *doc); err != nil {
		return nil, translate(err, "document")
	}
	return doc, nil
}

// DeleteDocument removes a document and its versions.
func (s *Service) DeleteDocument(ctx context.Context, actorID id.ActorID, documentID id.DocumentID) error {
	if err := requireActor(actorID); err != nil {
		return err
	}
	err := s.store.RunInTx(ctx, func(ctx context.Context) error {
		doc, err := store.Get[records.Document](ctx, s.store, uuid.UUID(documentID))
		if err != nil {
			return err
		}
		return s.removeDocument(ctx, actorID, doc)
	})
	if err != nil {
		return translate(err, "document")
	}
	return nil
}

type AddVersionInput struct {
	FileName string `json:"file_name"`
	Checksum string `json:"checksum"`
	Notes    string `json:"notes"`
}

// AddVersion files the next version of a document. Numbers start at 1 and
// follow the highest existing number.
func (s *Service) AddVersion(ctx context.Context, actorID id.ActorID, documentID id.DocumentID, in AddVersionInput) (*records.Version, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	fileName := strings.TrimSpace(in.FileName)
	if fileName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file_name is required")
	}

	var (
		doc     *records.Document
		version *records.Version
	)
	err := s.store.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		doc, err = store.Get[records.Document](ctx, s.store, uuid.UUID(documentID))
		if err != nil {
			return err
		}
		existing, err := store.ListBy[records.Version](ctx, s.store, "document_id", documentID.String())
		if err != nil {
			return err
		}
		next := 1
		for _, v := range existing {
			if v.Number >= next {
				next = v.Number + 1
			}
		}
		version = &records.Version{
			ID:         id.VersionID(uuid.New()),
			DocumentID: documentID,
			Number:     next,
			FileName:   fileName,
			Checksum:   in.Checksum,
			Notes:      in.Notes,
			CreatedBy:  &actorID,
			CreatedAt:  requestcontext.Now(ctx),
		}
		return s.store.Create(ctx, *version)
	})
	if err != nil {
		return nil, translate(err, "document")
	}
	s.milestone(ctx, doc.CaseFileID, actorID, timeline.KindVersion,
		fmt.Sprintf("Version %d of document '%s' created.", version.Number, doc.Name))
	return version, nil
}

// ListVersions returns a document's versions in filing order.
func (s *Service) ListVersions(ctx context.Context, documentID id.DocumentID) ([]*records.Version, error) {
	if _, err := s.GetDocument(ctx, documentID); err != nil {
		return nil, err
	}
	versions, err := store.ListBy[records.Version](ctx, s.store, "document_id", documentID.String())
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "failed to list versions")
	}
	return versions, nil
}

func (s *Service) removeDocument(ctx context.Context, actorID id.ActorID, doc *records.Document) error {
	versions, err := store.ListBy[records.Version](ctx, s.store, "document_id", doc.ID.String())
	if err != nil {
		return err
	}
	for _, v := range versions {
		v.ModifiedBy = &actorID
		if err := s.store.Delete(ctx, *v); err != nil {
			return err
		}
	}
	doc.ModifiedBy = &actorID
	return s.store.Delete(ctx, *doc)
}

// milestone appends to the timeline. The mutation has already committed, so
// a failed append only gets logged.
func (s *Service) milestone(ctx context.Context, caseFileID id.CaseFileID, actorID id.ActorID, kind timeline.Kind, description string) {
	if s.timeline == nil {
		return
	}
	out := s.timeline.Append(ctx, caseFileID, actorID, kind, description)
	if out.Status == audit.OutcomeFailed {
		s.logger.WarnContext(ctx, "timeline milestone not recorded",
			"case_file_id", caseFileID.String(),
			"kind", string(kind),
			"reason", out.Reason,
		)
	}
}

func requireActor(actorID id.ActorID) error {
	if actorID.IsNil() {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "actor required")
	}
	return nil
}

func translate(err error, what string) error {
	var de *pkgerrors.Error
	switch {
	case errors.As(err, &de):
		return err
	case errors.Is(err, sentinel.ErrNotFound):
		return pkgerrors.Wrap(err, pkgerrors.CodeNotFound, what+" not found")
	case errors.Is(err, sentinel.ErrConflict):
		return pkgerrors.Wrap(err, pkgerrors.CodeConflict, what+" already exists")
	default:
		return pkgerrors.Wrap(err, pkgerrors.CodeInternal, "failed to persist "+what)
	}
}
