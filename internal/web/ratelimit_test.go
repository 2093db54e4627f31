package web

import (
	"net/http/httptest"
	"strconv"
	"testing"
	"time"
)

func Test_loginLimiter(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	newLimiter := func(ipHeader string) *loginLimiter {
		l := newLoginLimiter(10*time.Second, 3, ipHeader)
		l.nowFunc = func() time.Time {
			return now
		}
		return l
	}

	t.Run("ok, burst then refused", func(t *testing.T) {
		l := newLimiter("")
		r := httptest.NewRequest("POST", "/login", nil)
		r.RemoteAddr = "192.0.2.1:5000"

		for i := 0; i < 3; i++ {
			if ok, _ := l.allow(r); !ok {
				t.Fatalf("attempt %d refused", i+1)
			}
		}

		ok, delay := l.allow(r)
		if ok {
			t.Fatalf("expected attempt to be refused")
		}
		if delay != 10*time.Second {
			t.Errorf("got delay %v, want %v", delay, 10*time.Second)
		}
	})

	t.Run("ok, refused attempts don't use tokens", func(t *testing.T) {
		l := newLimiter("")
		r := httptest.NewRequest("POST", "/login", nil)
		r.RemoteAddr = "192.0.2.1:5000"

		for i := 0; i < 10; i++ {
			l.allow(r)
		}

		now = now.Add(10 * time.Second)
		if ok, _ := l.allow(r); !ok {
			t.Fatalf("expected attempt to be allowed after waiting")
		}
	})

	t.Run("ok, clients are limited separately", func(t *testing.T) {
		l := newLimiter("")
		r1 := httptest.NewRequest("POST", "/login", nil)
		r1.RemoteAddr = "192.0.2.1:5000"
		r2 := httptest.NewRequest("POST", "/login", nil)
		r2.RemoteAddr = "192.0.2.2:5000"

		for i := 0; i < 3; i++ {
			l.allow(r1)
		}

		if ok, _ := l.allow(r2); !ok {
			t.Fatalf("expected other client to be allowed")
		}
	})

	t.Run("ok, ports of the same client share a bucket", func(t *testing.T) {
		l := newLimiter("")
		for i := 0; i < 3; i++ {
			r := httptest.NewRequest("POST", "/login", nil)
			r.RemoteAddr = "192.0.2.1:" + strconv.Itoa(5000+i)
			l.allow(r)
		}

		r := httptest.NewRequest("POST", "/login", nil)
		r.RemoteAddr = "192.0.2.1:9999"
		if ok, _ := l.allow(r); ok {
			t.Fatalf("expected attempt to be refused")
		}
	})

	t.Run("ok, client ip from proxy header", func(t *testing.T) {
		l := newLimiter("X-Forwarded-For")

		r := httptest.NewRequest("POST", "/login", nil)
		r.RemoteAddr = "10.0.0.1:5000"
		r.Header.Set("X-Forwarded-For", "198.51.100.7, 10.0.0.1")

		if got, want := l.clientIP(r), "198.51.100.7"; got != want {
			t.Errorf("got %q, want %q", got, want)
		}

		r.Header.Del("X-Forwarded-For")
		if got, want := l.clientIP(r), "10.0.0.1"; got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("ok, proxy header ignored when not configured", func(t *testing.T) {
		l := newLimiter("")

		r := httptest.NewRequest("POST", "/login", nil)
		r.RemoteAddr = "10.0.0.1:5000"
		r.Header.Set("X-Forwarded-For", "198.51.100.7")

		if got, want := l.clientIP(r), "10.0.0.1"; got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("ok, defaults", func(t *testing.T) {
		l := newLoginLimiter(0, 0, "")

		if l.burst != defaultLoginBurst {
			t.Errorf("got burst %d, want %d", l.burst, defaultLoginBurst)
		}
	})
}
