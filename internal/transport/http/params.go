package httptransport

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	dErrors "dossier/pkg/domain-errors"
)

const dateLayout = "2006-01-02"

// pathID parses a chi URL parameter with the given id parser.
func pathID[T any](r *http.Request, name string, parse func(string) (T, error)) (T, error) {
	v, err := parse(chi.URLParam(r, name))
	if err != nil {
		var zero T
		return zero, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid "+name)
	}
	return v, nil
}

// queryDate parses a YYYY-MM-DD query value as a UTC day.
func queryDate(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(dateLayout, raw, time.UTC)
	if err != nil {
		return time.Time{}, dErrors.New(dErrors.CodeBadRequest, name+" must be YYYY-MM-DD")
	}
	return t, nil
}

// queryInstant accepts RFC 3339 or a bare date (midnight UTC).
func queryInstant(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(dateLayout, raw, time.UTC); err == nil {
		return t, nil
	}
	return time.Time{}, dErrors.New(dErrors.CodeBadRequest, name+" must be RFC 3339 or YYYY-MM-DD")
}

func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeBadRequest, name+" must be an integer")
	}
	return n, nil
}
