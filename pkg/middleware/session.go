package middleware

import (
	"errors"
	"net/http"

	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/logger"
)

// SessionHeader selects the shopper session a request operates on.
const SessionHeader = "X-Session-ID"

// SessionValidator reports whether a session id is acceptable.
type SessionValidator func(id string) error

// Session reads the X-Session-ID header, validates it and stores it in the
// request context. An absent header selects the default session and is
// passed through unchanged.
func Session(validate SessionValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(SessionHeader)
			if id == "" {
				next.ServeHTTP(w, r)
				return
			}

			if err := validate(id); err != nil {
				msg := err.Error()
				var appErr *apperrors.AppError
				if errors.As(err, &appErr) {
					msg = appErr.Message
				}
				httputil.WriteErrorCode(w, r, http.StatusBadRequest, "INVALID_SESSION", msg)
				return
			}

			w.Header().Set(SessionHeader, id)
			next.ServeHTTP(w, r.WithContext(logger.WithSessionID(r.Context(), id)))
		})
	}
}
