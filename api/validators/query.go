package validators

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	pkgerrors "github.com/kabisoft/kabipos-backend/pkg/errors"
)

// QueryString returns the trimmed query value, capped at maxLen bytes.
func QueryString(r *http.Request, key string, maxLen int) string {
	return SanitizeString(r.URL.Query().Get(key), maxLen)
}

// RequiredQuery reports a validation error listing every missing key.
func RequiredQuery(r *http.Request, keys ...string) error {
	missing := map[string]string{}
	for _, key := range keys {
		if QueryString(r, key, 0) == "" {
			missing[key] = "is required"
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "missing query parameters").WithDetails(missing)
}

// PathString returns the trimmed chi URL parameter.
func PathString(r *http.Request, name string, maxLen int) string {
	return SanitizeString(chi.URLParam(r, name), maxLen)
}

// PathUUID parses the chi URL parameter as a UUID. A malformed id cannot
// name any row, so it is reported as notFoundMessage.
func PathUUID(r *http.Request, name, notFoundMessage string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeNotFound, notFoundMessage)
	}
	return id, nil
}
