package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/minitienda/minitienda/internal/auth"
	"github.com/minitienda/minitienda/internal/errorz"
)

func (s *Server) loginHandler() http.Handler {
	h := mapBoth(s, func(ctx context.Context, c auth.Credentials) (auth.Identity, error) {
		sess, err := sessionFromCtx(ctx)
		if err != nil {
			return auth.Identity{}, err
		}

		return s.deps.AuthService.Authenticate(ctx, sess, c)
	})

	h.response(func(r result[auth.Credentials, auth.Identity]) error {
		s.logger(r.r.Context()).Info("login", "email", auth.NormalizeIdentifier(r.in.Email), "outcome", "success")
		s.metrics.loginAttempt("success")

		// We clear the CSRF token to provide defense in depth against fixation attacks.
		// If an attacker somehow gains access to the CSRF token before the user logged in, it will
		// be worthless after the user logs in.
		//
		// A new CSRF token will be generated on the next GET request after the redirect.
		http.SetCookie(r.w, &http.Cookie{
			Name:   csrfTokenCookieName,
			Path:   "/",
			MaxAge: -1,
		})

		r.sess.Renew()
		r.sess.SetIdentity(r.out)
		return redirect[auth.Credentials, auth.Identity]("/dashboard", "")(r)
	})

	h.failure(func(r result[auth.Credentials, auth.Identity], err error) {
		// Request decoding errors are also invalid input.
		var invalidInput errorz.InvalidInput
		if errors.As(err, &invalidInput) {
			err = fmt.Errorf("%w: %w", auth.ErrInvalidInput, err)
		}

		kind := auth.FailureKind(err)
		s.metrics.loginAttempt(kind)
		if kind == "unexpected" {
			r.s.handleError(r.w, r.r, err)
			return
		}

		logger := s.logger(r.r.Context())
		email := auth.NormalizeIdentifier(r.in.Email)
		if kind == "repository_unavailable" {
			logger.Error("login", "email", email, "outcome", kind, "error", err)
		} else {
			logger.Info("login", "email", email, "outcome", kind)
		}

		form := &formState{
			values:  r.r.Form,
			message: s.loginMessage(r.sess, email, err),
		}
		form.values.Del("Password")

		setRetryAfter(r.w, err, s.deps.AuthService.NowFunc())

		// writeView saves the session, which holds the attempt records.
		wErr := s.writeView(r.w, r.r, statusFor(err), "login", nil, form)
		if wErr != nil {
			s.handleError(r.w, r.r, wErr)
		}
	})

	return h
}

// loginMessage returns the message shown to the user after a failed login.
func (s *Server) loginMessage(sess auth.SessionContext, email string, err error) string {
	now := s.deps.AuthService.NowFunc()

	var lErr *auth.LockedError
	switch {
	case errors.Is(err, auth.ErrInvalidInput):
		return "Enter your email and password."
	case errors.As(err, &lErr):
		return lockedMessage(lErr.Until.Sub(now).Minutes())
	case errors.Is(err, auth.ErrAccountInactive):
		return "This account is not active. Contact an administrator."
	case errors.Is(err, auth.ErrInvalidCredentials):
		status := s.deps.AuthService.Throttle().Status(sess, email)
		if status.Locked(now) {
			return lockedMessage(status.LockedUntil.Sub(now).Minutes())
		}
		return fmt.Sprintf("Invalid email or password. %d attempts left.", status.Remaining)
	default:
		return "Logging in is not possible right now, try again later."
	}
}

func lockedMessage(minutes float64) string {
	m := int(minutes + 0.999)
	if m <= 1 {
		return "Too many failed attempts. Try again in 1 minute."
	}
	return fmt.Sprintf("Too many failed attempts. Try again in %d minutes.", m)
}
