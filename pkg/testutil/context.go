package testutil

import (
	"net/http"

	id "dossier/pkg/domain"
	"dossier/pkg/requestcontext"
)

// WithActorID adds an actor to the request context, as the auth middleware
// would for an authenticated request. Invalid IDs are silently ignored.
func WithActorID(req *http.Request, actorID string) *http.Request {
	parsed, err := id.ParseActorID(actorID)
	if err != nil {
		return req
	}
	return req.WithContext(requestcontext.WithActorID(req.Context(), parsed))
}

// WithClient adds client metadata to the request context.
func WithClient(req *http.Request, ip, userAgent, device string) *http.Request {
	return req.WithContext(requestcontext.WithClientMetadata(req.Context(), ip, userAgent, device))
}
