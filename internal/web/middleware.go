package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/csrf"
	"github.com/minitienda/minitienda/internal/auth"
	"github.com/minitienda/minitienda/internal/errorz"
	"github.com/minitienda/minitienda/internal/web/sessions"
)

const requestIDHeader = "X-Request-ID"

var errForbidden = errors.New("forbidden")

type ctxKey string

const (
	sessionCtxKey ctxKey = "_session"
	loggerCtxKey  ctxKey = "_logger"
)

// requestID is a middleware that tags every request with an ID. The ID is
// taken from the X-Request-ID header if it holds a UUID, otherwise a new one is
// generated. The ID is written back in the response and added to the request logger.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(r.Header.Get(requestIDHeader))
		if err != nil {
			id = uuid.New()
		}

		w.Header().Set(requestIDHeader, id.String())

		logger := s.deps.Logger.With("request_id", id.String())
		ctx := context.WithValue(r.Context(), loggerCtxKey, logger)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// session is a middleware that loads the session and injects it in the context.
func (s *Server) session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.deps.SessionStore.Get(r)
		if err != nil {
			s.handleError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), sessionCtxKey, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionFromCtx(ctx context.Context) (*sessions.Session, error) {
	sess, ok := ctx.Value(sessionCtxKey).(*sessions.Session)
	if !ok {
		return nil, fmt.Errorf("could not get session from context")
	}

	return sess, nil
}

// identityFromCtx returns the identity of the logged in account.
func identityFromCtx(ctx context.Context) (auth.Identity, bool) {
	sess, err := sessionFromCtx(ctx)
	if err != nil {
		return auth.Identity{}, false
	}

	return sess.Identity()
}

func (s *Server) logger(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(loggerCtxKey).(*slog.Logger)
	if !ok {
		return s.deps.Logger
	}
	return logger
}

func (s *Server) public(pattern string, handler http.Handler) {
	s.mux.Handle(pattern, handler)
}

// publicOnly registers a handler for visitors that are not logged in.
// Logged in accounts are sent to the dashboard.
func (s *Server) publicOnly(pattern string, handler http.Handler) {
	s.mux.Handle(pattern, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := identityFromCtx(r.Context())
		if ok {
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
			return
		}

		handler.ServeHTTP(w, r)
	}))
}

// loggedIn registers a handler for logged in accounts.
func (s *Server) loggedIn(pattern string, handler http.Handler) {
	s.mux.Handle(pattern, s.requireIdentity(func(auth.Identity) error {
		return nil
	}, handler))
}

// adminOnly registers a handler for logged in administrators.
func (s *Server) adminOnly(pattern string, handler http.Handler) {
	s.mux.Handle(pattern, s.requireIdentity(func(id auth.Identity) error {
		if id.Role != auth.RoleAdmin {
			return errForbidden
		}
		return nil
	}, handler))
}

// requireIdentity checks that the session identifies an account that is still active.
// Visitors without a valid identity are sent to the login page.
func (s *Server) requireIdentity(allow func(auth.Identity) error, handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := sessionFromCtx(r.Context())
		if err != nil {
			s.handleError(w, r, err)
			return
		}

		sessID, ok := sess.Identity()
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		// The account may have been changed since the login.
		id, err := s.deps.AuthService.Identify(r.Context(), sessID.ID)
		if errors.Is(err, errorz.ErrNotFound) || errors.Is(err, auth.ErrAccountInactive) {
			sess.Renew()
			sess.ClearIdentity()
			sess.AddFlash("Your session has ended, please log in again.")
			err = s.deps.SessionStore.Save(r, w, sess)
			if err != nil {
				s.handleError(w, r, err)
				return
			}

			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		if err != nil {
			s.handleError(w, r, err)
			return
		}

		if id != sessID {
			sess.SetIdentity(id)
		}

		err = allow(id)
		if err != nil {
			s.handleError(w, r, err)
			return
		}

		handler.ServeHTTP(w, r)
	})
}

func (s *Server) csrfFailure(w http.ResponseWriter, r *http.Request) {
	s.logger(r.Context()).Warn("csrf check failed", "url", r.URL.String(), "reason", csrf.FailureReason(r))
	http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
}
