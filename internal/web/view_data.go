package web

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"net/http"
	"net/url"

	"github.com/gorilla/csrf"
	"github.com/minitienda/minitienda/internal"
	"github.com/minitienda/minitienda/internal/auth"
	"github.com/minitienda/minitienda/internal/errorz"
)

type viewData struct {
	Version    string
	CSRFField  template.HTML
	IsLoggedIn bool
	IsAdmin    bool
	Identity   auth.Identity
	Flashes    []any
	Form       url.Values
	Errors     map[string]string
	Message    string
	Data       any
}

// formState is the state of a submitted form that is shown again.
type formState struct {
	values  url.Values
	errors  map[string]string
	message string
}

// writeView renders the named view. The view is rendered in full before
// anything is written, so rendering errors can still be reported.
func (s *Server) writeView(w http.ResponseWriter, r *http.Request, status int, name string, data any, form *formState) error {
	sess, err := sessionFromCtx(r.Context())
	if err != nil {
		return err
	}

	id, loggedIn := sess.Identity()

	vd := viewData{
		Version:    internal.Version(),
		CSRFField:  csrf.TemplateField(r),
		IsLoggedIn: loggedIn,
		IsAdmin:    loggedIn && id.Role == auth.RoleAdmin,
		Identity:   id,
		Flashes:    sess.ConsumeFlashes(),
		Data:       data,
	}

	if form != nil {
		vd.Form = form.values
		vd.Errors = form.errors
		vd.Message = form.message
	}

	buf := &bytes.Buffer{}
	err = s.deps.ViewRenderer.Render(buf, name, vd)
	if err != nil {
		return err
	}

	err = s.deps.SessionStore.Save(r, w, sess)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err = buf.WriteTo(w)
	if err != nil {
		// The status has been written, there is nothing left to tell the client.
		s.logger(r.Context()).Error("failed to write view", "view", name, "error", err)
	}
	return nil
}

// formFailure returns a failure func that shows the named view again with the
// submitted values and the field errors when the input was invalid.
// Other errors go to the error handler.
func formFailure[IN, OUT, PAGE any](name string, page func(ctx context.Context) (PAGE, error)) func(result[IN, OUT], error) {
	return func(r result[IN, OUT], err error) {
		var invalidInput errorz.InvalidInput
		if !errors.As(err, &invalidInput) {
			r.s.handleError(r.w, r.r, err)
			return
		}

		data, pErr := page(r.r.Context())
		if pErr != nil {
			r.s.handleError(r.w, r.r, pErr)
			return
		}

		form := &formState{
			values: r.r.Form,
			errors: invalidInput.Fields(),
		}

		// The password is never shown again.
		form.values.Del("Password")

		wErr := r.s.writeView(r.w, r.r, http.StatusBadRequest, name, data, form)
		if wErr != nil {
			r.s.handleError(r.w, r.r, wErr)
		}
	}
}

// flashFailure returns a failure func that adds a flash message and redirects
// to path when err matches target. Other errors go to the error handler.
func flashFailure[IN, OUT any](target error, path, flash string) func(result[IN, OUT], error) {
	return func(r result[IN, OUT], err error) {
		if !errors.Is(err, target) {
			r.s.handleError(r.w, r.r, err)
			return
		}

		rErr := redirect[IN, OUT](path, flash)(r)
		if rErr != nil {
			r.s.handleError(r.w, r.r, rErr)
		}
	}
}
