package sessions

import (
	"errors"
	"io/fs"
	"net/http"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
)

const CookieName = "mt-session"

// Options configures the session cookie.
type Options struct {
	// Secure sets the secure flag on the cookie.
	Secure bool
	// MaxAge is the lifetime of the cookie in seconds.
	MaxAge int
}

type Store struct {
	store sessions.Store
}

func NewStore(store sessions.Store) *Store {
	return &Store{store: store}
}

// NewCookieStore returns a Store that keeps the session in an encrypted cookie.
// keyPairs are passed to gorilla/sessions: authentication key and encryption key
// alternating, newest pair first.
func NewCookieStore(opts Options, keyPairs ...[]byte) *Store {
	cs := sessions.NewCookieStore(keyPairs...)
	cs.Options = cookieOptions(opts)
	cs.MaxAge(opts.MaxAge)
	return NewStore(cs)
}

// NewFilesystemStore returns a Store that keeps session values in files in dir,
// the cookie only holds the session ID.
func NewFilesystemStore(dir string, opts Options, keyPairs ...[]byte) *Store {
	fs := sessions.NewFilesystemStore(dir, keyPairs...)
	fs.Options = cookieOptions(opts)
	fs.MaxAge(opts.MaxAge)
	// Values are not limited by the cookie size.
	fs.MaxLength(0)
	return NewStore(fs)
}

func cookieOptions(opts Options) *sessions.Options {
	return &sessions.Options{
		Path:     "/",
		MaxAge:   opts.MaxAge,
		Secure:   opts.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// Get returns the session of the request. A cookie that can't be decoded, for example
// because it was signed with a key that has been rotated out, results in a new session.
// So does a cookie that refers to a removed session file.
func (s *Store) Get(r *http.Request) (*Session, error) {
	base, err := s.store.Get(r, CookieName)
	if err != nil {
		var cErr securecookie.Error
		decodeErr := errors.As(err, &cErr) && cErr.IsDecode()
		if base == nil || !(decodeErr || errors.Is(err, fs.ErrNotExist)) {
			return nil, err
		}

		base.ID = ""

		base.IsNew = true
		base.Values = make(map[any]any)
	}

	return &Session{base: base}, nil
}

func (s *Store) Save(r *http.Request, w http.ResponseWriter, sess *Session) error {
	if sess.renew {
		err := s.renew(r, w, sess)
		if err != nil {
			return err
		}
	}

	err := s.store.Save(r, w, sess.base)
	if err != nil {
		return err
	}

	sess.needsSave = false
	return nil
}

// renew deletes the stored session and resets the ID, the following save issues a new one.
func (s *Store) renew(r *http.Request, w http.ResponseWriter, sess *Session) error {
	if !sess.base.IsNew {
		old := *sess.base
		opts := *old.Options
		opts.MaxAge = -1
		old.Options = &opts
		old.Values = make(map[any]any)

		err := s.store.Save(r, w, &old)
		if err != nil {
			return err
		}
	}

	sess.base.ID = ""
	sess.base.IsNew = true
	sess.renew = false
	return nil
}
