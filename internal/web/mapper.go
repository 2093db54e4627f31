package web

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/schema"
	"github.com/minitienda/minitienda/internal/errorz"
	"github.com/minitienda/minitienda/internal/web/sessions"
)

// mapper is a generic HTTP handler that maps requests to target
// function calls and writes the output to the response.
type mapper[IN, OUT any] struct {
	s      *Server
	req    func(*http.Request) (IN, error)
	target func(context.Context, IN) (OUT, error)
	res    func(result[IN, OUT]) error
	fail   func(result[IN, OUT], error)
}

// result is the result of a request.
// it contains all relevant data because we can't know
// in advance what we will need to construct a response.
type result[IN, OUT any] struct {
	s    *Server
	r    *http.Request
	w    http.ResponseWriter
	sess *sessions.Session
	in   IN
	out  OUT
}

// mapBoth creates a HTTP Handler that:
// 1. Maps the request to a value of input type IN.
// 2. Calls the target func with that value.
// 3. Writes the output of type OUT to the response.
//
// Errors are written using the server error handler.
func mapBoth[IN, OUT any](s *Server, targetFunc func(context.Context, IN) (OUT, error)) *mapper[IN, OUT] {
	return &mapper[IN, OUT]{
		s: s,
		req: func(r *http.Request) (IN, error) {
			return defaultRequest[IN](s, r)
		},
		target: targetFunc,
		res:    defaultResponse[IN, OUT],
		fail:   defaultFailure[IN, OUT],
	}
}

// mapRequest creates a HTTP Handler that:
// 1. Maps the request to a value of type IN.
// 2. Calls the target func with that value.
//
// A response should be configured with the response method.
func mapRequest[IN any](s *Server, targetFunc func(context.Context, IN) error) *mapper[IN, struct{}] {
	return mapBoth(s, func(ctx context.Context, in IN) (struct{}, error) {
		return struct{}{}, targetFunc(ctx, in)
	})
}

// mapResponse creates a HTTP Handler that:
// 1. Calls the target func.
// 2. Maps the returned value of type OUT to the response.
func mapResponse[OUT any](s *Server, targetFunc func(context.Context) (OUT, error)) *mapper[struct{}, OUT] {
	m := mapBoth(s, func(ctx context.Context, _ struct{}) (OUT, error) {
		return targetFunc(ctx)
	})
	m.req = func(r *http.Request) (struct{}, error) {
		return struct{}{}, nil
	}
	return m
}

// request overwrites the function that maps the request to the input type.
func (e *mapper[IN, OUT]) request(fn func(r *http.Request) (IN, error)) *mapper[IN, OUT] {
	e.req = fn
	return e
}

// response overwrites the function that writes the output to the response.
func (e *mapper[IN, OUT]) response(fn func(result[IN, OUT]) error) *mapper[IN, OUT] {
	e.res = fn
	return e
}

// failure overwrites the function that writes errors of the request mapping
// or target func to the response.
func (e *mapper[IN, OUT]) failure(fn func(result[IN, OUT], error)) *mapper[IN, OUT] {
	e.fail = fn
	return e
}

func (e *mapper[IN, OUT]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFromCtx(r.Context())
	if err != nil {
		e.s.handleError(w, r, err)
		return
	}

	res := result[IN, OUT]{
		s:    e.s,
		r:    r,
		w:    w,
		sess: sess,
	}

	res.in, err = e.req(r)
	if err != nil {
		e.fail(res, err)
		return
	}

	res.out, err = e.target(r.Context(), res.in)
	if err != nil {
		e.fail(res, err)
		return
	}

	err = e.res(res)
	if err != nil {
		e.s.handleError(w, r, err)
		return
	}
}

// defaultRequest is the default way to map a request to a struct.
func defaultRequest[IN any](s *Server, r *http.Request) (IN, error) {
	var in IN
	err := r.ParseForm()
	if err != nil {
		return in, errorz.InvalidInput{errorz.Keyed{Key: "form", Err: err}}
	}

	// Remove the CSRF token from the form, it won't need to be mapped
	// to any target types and the decoder will fail on it.
	r.Form.Del(csrfTokenField)

	err = s.decoder.Decode(&in, r.Form)
	return in, decodeError(err)
}

// withPathID decodes the form like defaultRequest and then sets the
// numeric {id} path value using setID.
func withPathID[IN any](s *Server, setID func(in *IN, id int)) func(*http.Request) (IN, error) {
	return func(r *http.Request) (IN, error) {
		id, err := pathID(r)
		if err != nil {
			var zero IN
			return zero, err
		}

		in, err := defaultRequest[IN](s, r)
		if err != nil {
			return in, err
		}

		setID(&in, id)
		return in, nil
	}
}

// pathIDRequest maps the numeric {id} path value as the input.
func pathIDRequest(r *http.Request) (int, error) {
	return pathID(r)
}

func pathID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		return 0, errorz.ErrNotFound
	}
	return id, nil
}

func decodeError(err error) error {
	if err == nil {
		return nil
	}

	var multiErr schema.MultiError
	if errors.As(err, &multiErr) {
		var invalidInput errorz.InvalidInput
		for key, e := range multiErr {
			var cErr schema.ConversionError
			if errors.As(e, &cErr) && cErr.Err != nil {
				e = cErr.Err
			}

			invalidInput = append(invalidInput, errorz.Keyed{
				Key: key,
				Err: e,
			})
		}

		return invalidInput
	}

	return err
}

// defaultResponse renders nothing but a status 204.
func defaultResponse[IN, OUT any](r result[IN, OUT]) error {
	r.w.WriteHeader(http.StatusNoContent)
	return nil
}

func defaultFailure[IN, OUT any](r result[IN, OUT], err error) {
	r.s.handleError(r.w, r.r, err)
}

// render returns a response func that renders the output in the named view.
func render[IN, OUT any](name string) func(result[IN, OUT]) error {
	return func(r result[IN, OUT]) error {
		return r.s.writeView(r.w, r.r, http.StatusOK, name, r.out, nil)
	}
}

// redirect returns a response func that adds a flash message to the
// session and redirects to path.
func redirect[IN, OUT any](path, flash string) func(result[IN, OUT]) error {
	return func(r result[IN, OUT]) error {
		if flash != "" {
			r.sess.AddFlash(flash)
		}

		err := r.s.deps.SessionStore.Save(r.r, r.w, r.sess)
		if err != nil {
			return err
		}

		http.Redirect(r.w, r.r, path, http.StatusSeeOther)
		return nil
	}
}
