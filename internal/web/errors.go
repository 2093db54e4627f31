package web

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/minitienda/minitienda/internal/auth"
	"github.com/minitienda/minitienda/internal/errorz"
	"github.com/minitienda/minitienda/internal/inventory"
)

// statusFor maps an error to the HTTP status code that is returned to the client.
func statusFor(err error) int {
	var invalidInput errorz.InvalidInput
	switch {
	case errors.As(err, &invalidInput), errors.Is(err, auth.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrAccountInactive), errors.Is(err, errForbidden):
		return http.StatusForbidden
	case errors.Is(err, errorz.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, inventory.ErrInUse), errors.Is(err, auth.ErrDuplicateAccount):
		return http.StatusConflict
	case errors.Is(err, auth.ErrAccountLocked):
		return http.StatusTooManyRequests
	case errors.Is(err, auth.ErrRepositoryUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// setRetryAfter sets the Retry-After header if err is a lock.
func setRetryAfter(w http.ResponseWriter, err error, now time.Time) {
	var lErr *auth.LockedError
	if !errors.As(err, &lErr) {
		return
	}

	secs := math.Ceil(lErr.Until.Sub(now).Seconds())
	if secs < 1 {
		secs = 1
	}

	w.Header().Set("Retry-After", strconv.Itoa(int(secs)))
}

func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)

	if status >= http.StatusInternalServerError {
		s.logger(r.Context()).Error("internal server error", "url", r.URL.String(), "status", status, "error", err)
	}

	setRetryAfter(w, err, s.deps.AuthService.NowFunc())
	http.Error(w, http.StatusText(status), status)
}
