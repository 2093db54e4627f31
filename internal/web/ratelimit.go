package web

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

const (
	defaultLoginInterval = 6 * time.Second
	defaultLoginBurst    = 10
	maxTrackedClients    = 10_000
)

// loginLimiter limits login attempts per client IP with a token bucket.
// The throttle in the session counts failures per email, but a client can
// reset it by dropping its cookies. The limiter holds regardless of cookies.
//
// Only the most recently seen clients are tracked. A client that is evicted
// starts with a full bucket.
type loginLimiter struct {
	limit    rate.Limit
	burst    int
	ipHeader string
	clients  *lru.Cache[string, *rate.Limiter]

	// nowFunc is used to get the current time.
	nowFunc func() time.Time
}

func newLoginLimiter(interval time.Duration, burst int, ipHeader string) *loginLimiter {
	if interval <= 0 {
		interval = defaultLoginInterval
	}
	if burst <= 0 {
		burst = defaultLoginBurst
	}

	// New only fails for a non-positive size.
	clients, err := lru.New[string, *rate.Limiter](maxTrackedClients)
	if err != nil {
		panic(err)
	}

	return &loginLimiter{
		limit:    rate.Every(interval),
		burst:    burst,
		ipHeader: ipHeader,
		clients:  clients,
		nowFunc:  time.Now,
	}
}

// allow takes a token for the client of r. If there is none, it returns false
// and how long the client has to wait for the next one.
func (l *loginLimiter) allow(r *http.Request) (bool, time.Duration) {
	ip := l.clientIP(r)

	lim, ok := l.clients.Get(ip)
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		// Two requests can race to add a limiter, the first one wins.
		if prev, found, _ := l.clients.PeekOrAdd(ip, lim); found {
			lim = prev
		}
	}

	now := l.nowFunc()
	res := lim.ReserveN(now, 1)
	delay := res.DelayFrom(now)
	if delay > 0 {
		res.CancelAt(now)
		return false, delay
	}

	return true, 0
}

// clientIP returns the IP of the client. The configured header is only used
// when the server runs behind a proxy that sets it.
func (l *loginLimiter) clientIP(r *http.Request) string {
	if l.ipHeader != "" {
		if v := r.Header.Get(l.ipHeader); v != "" {
			// X-Forwarded-For lists the original client first.
			first, _, _ := strings.Cut(v, ",")
			return strings.TrimSpace(first)
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// limitLogins refuses login attempts from clients that exceed the login rate.
func (s *Server) limitLogins(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, delay := s.limiter.allow(r)
		if ok {
			next.ServeHTTP(w, r)
			return
		}

		s.logger(r.Context()).Warn("login rate limited", "ip", s.limiter.clientIP(r))
		s.metrics.loginAttempt("rate_limited")

		secs := int(math.Ceil(delay.Seconds()))
		w.Header().Set("Retry-After", strconv.Itoa(secs))

		form := &formState{
			message: "Too many login attempts from your network. Try again in " + strconv.Itoa(secs) + " seconds.",
		}

		err := s.writeView(w, r, http.StatusTooManyRequests, "login", nil, form)
		if err != nil {
			s.handleError(w, r, err)
		}
	})
}
