package web_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/minitienda/minitienda/assets"
	"github.com/minitienda/minitienda/internal/auth"
	authdb "github.com/minitienda/minitienda/internal/auth/db"
	"github.com/minitienda/minitienda/internal/db/testdb"
	"github.com/minitienda/minitienda/internal/email"
	"github.com/minitienda/minitienda/internal/inventory"
	inventorydb "github.com/minitienda/minitienda/internal/inventory/db"
	"github.com/minitienda/minitienda/internal/krypto"
	"github.com/minitienda/minitienda/internal/web"
	"github.com/minitienda/minitienda/internal/web/sessions"
	"github.com/minitienda/minitienda/internal/web/view"
)

const (
	adminEmail = "admin@shop.test"
	staffEmail = "staff@shop.test"
	password   = "CorrectPass1"
)

func Test_Login(t *testing.T) {
	t.Run("ok, login and see dashboard", func(t *testing.T) {
		st := newServerTest(t)
		c := st.client()

		res, _ := c.login(adminEmail, password)
		assertRedirect(t, res, "/dashboard")

		res, body := c.get("/dashboard")
		assertStatus(t, res, http.StatusOK)
		assertContains(t, body, `id="dashboard"`, adminEmail)
	})

	t.Run("ok, email ignores case", func(t *testing.T) {
		st := newServerTest(t)
		c := st.client()

		res, _ := c.login(" ADMIN@shop.test ", password)
		assertRedirect(t, res, "/dashboard")
	})

	t.Run("fail, wrong password shows attempts left", func(t *testing.T) {
		st := newServerTest(t)
		c := st.client()

		res, body := c.login(adminEmail, "wrong")
		assertStatus(t, res, http.StatusUnauthorized)
		assertContains(t, body, "Invalid email or password. 4 attempts left.")

		if strings.Contains(body, "wrong") {
			t.Errorf("body contains the submitted password")
		}
	})

	t.Run("fail, unknown email looks like a wrong password", func(t *testing.T) {
		st := newServerTest(t)

		unknownRes, unknownBody := st.client().login("nobody@shop.test", "wrong")
		wrongRes, wrongBody := st.client().login(adminEmail, "wrong")

		if unknownRes.StatusCode != wrongRes.StatusCode {
			t.Errorf("got status %d and %d", unknownRes.StatusCode, wrongRes.StatusCode)
		}

		if extractMessage(unknownBody) != extractMessage(wrongBody) {
			t.Errorf("got messages %q and %q", extractMessage(unknownBody), extractMessage(wrongBody))
		}
	})

	t.Run("fail, locked after too many failures", func(t *testing.T) {
		st := newServerTest(t)
		c := st.client()

		for i := 0; i < auth.DefaultMaxFailedAttempts; i++ {
			res, _ := c.login(staffEmail, "wrong")
			assertStatus(t, res, http.StatusUnauthorized)
		}

		res, body := c.login(staffEmail, password)
		assertStatus(t, res, http.StatusTooManyRequests)
		assertContains(t, body, "Too many failed attempts. Try again in 15 minutes.")

		if got := res.Header.Get("Retry-After"); got != "900" {
			t.Errorf("got Retry-After %q, want %q", got, "900")
		}

		// Other identifiers are not affected.
		res, _ = c.login(adminEmail, password)
		assertRedirect(t, res, "/dashboard")
	})

	t.Run("ok, lock expires", func(t *testing.T) {
		st := newServerTest(t)
		c := st.client()

		for i := 0; i < auth.DefaultMaxFailedAttempts; i++ {
			_, _ = c.login(staffEmail, "wrong")
		}

		st.now = st.now.Add(auth.DefaultLockoutDuration)

		res, _ := c.login(staffEmail, password)
		assertRedirect(t, res, "/dashboard")
	})

	t.Run("ok, new session starts without failures", func(t *testing.T) {
		st := newServerTest(t)

		c := st.client()
		for i := 0; i < auth.DefaultMaxFailedAttempts; i++ {
			_, _ = c.login(staffEmail, "wrong")
		}

		res, _ := st.client().login(staffEmail, password)
		assertRedirect(t, res, "/dashboard")
	})

	t.Run("ok, many mistyped emails don't break the session", func(t *testing.T) {
		st := newServerTest(t, func(deps *testDeps) {
			deps.config.LoginBurst = 100
		})
		c := st.client()

		for i := 0; i < 20; i++ {
			res, _ := c.login(fmt.Sprintf("typo%d@shop.test", i), "wrong-password")
			assertStatus(t, res, http.StatusUnauthorized)
		}

		res, _ := c.login(adminEmail, password)
		assertRedirect(t, res, "/dashboard")

		res, body := c.get("/dashboard")
		assertStatus(t, res, http.StatusOK)
		assertContains(t, body, adminEmail)
	})

	t.Run("fail, inactive account", func(t *testing.T) {
		st := newServerTest(t)
		st.setState(staffEmail, auth.StateInactive)

		res, body := st.client().login(staffEmail, password)
		assertStatus(t, res, http.StatusForbidden)
		assertContains(t, body, "This account is not active.")
	})

	t.Run("fail, empty input", func(t *testing.T) {
		st := newServerTest(t)

		res, body := st.client().login("", "")
		assertStatus(t, res, http.StatusBadRequest)
		assertContains(t, body, "Enter your email and password.")
	})

	t.Run("fail, repository unavailable", func(t *testing.T) {
		st := newServerTest(t, func(deps *testDeps) {
			deps.authStore = &failingStore{Store: deps.authStore}
		})

		res, body := st.client().login(adminEmail, password)
		assertStatus(t, res, http.StatusServiceUnavailable)
		assertContains(t, body, "try again later")
		assertContains(t, st.logs.String(), "outcome=repository_unavailable")
	})

	t.Run("fail, too many attempts from one client", func(t *testing.T) {
		st := newServerTest(t, func(deps *testDeps) {
			deps.config.LoginInterval = time.Hour
			deps.config.LoginBurst = 2
		})

		// New sessions don't help, the limit is per client IP.
		for i := 0; i < 2; i++ {
			res, _ := st.client().login(staffEmail, "wrong-password")
			assertStatus(t, res, http.StatusUnauthorized)
		}

		res, body := st.client().login(staffEmail, password)
		assertStatus(t, res, http.StatusTooManyRequests)
		assertContains(t, body, "Too many login attempts from your network.")
		if got := res.Header.Get("Retry-After"); got != "3600" {
			t.Errorf("got Retry-After %q, want %q", got, "3600")
		}
		assertContains(t, st.logs.String(), "login rate limited")
	})

	t.Run("fail, no csrf token", func(t *testing.T) {
		st := newServerTest(t)
		c := st.client()

		res, _ := c.postNoToken("/login", url.Values{
			"Email":    {adminEmail},
			"Password": {password},
		})
		assertStatus(t, res, http.StatusForbidden)
	})
}

func Test_Logout(t *testing.T) {
	st := newServerTest(t)
	c := st.client()

	res, _ := c.login(adminEmail, password)
	assertRedirect(t, res, "/dashboard")

	res, _ = c.post("/logout", url.Values{})
	assertRedirect(t, res, "/login")

	res, _ = c.get("/dashboard")
	assertRedirect(t, res, "/login")
}

func Test_SessionRenewal(t *testing.T) {
	for name, mod := range map[string]func(deps *testDeps){
		"cookie store":     nil,
		"filesystem store": func(deps *testDeps) { deps.sessionDir = t.TempDir() },
	} {
		t.Run(name, func(t *testing.T) {
			var mods []func(deps *testDeps)
			if mod != nil {
				mods = append(mods, mod)
			}
			st := newServerTest(t, mods...)

			t.Run("ok, login issues a new session", func(t *testing.T) {
				attacker := st.client()
				res, _ := attacker.get("/login")
				assertStatus(t, res, http.StatusOK)

				planted := attacker.sessionCookie()
				victim := st.client()
				victim.setSessionCookie(planted)

				res, _ = victim.login(adminEmail, password)
				assertRedirect(t, res, "/dashboard")

				if victim.sessionCookie() == planted {
					t.Fatalf("session cookie was not renewed on login")
				}

				res, _ = attacker.get("/users")
				assertRedirect(t, res, "/login")
			})

			t.Run("ok, logout issues a new session", func(t *testing.T) {
				c := st.client()
				res, _ := c.login(adminEmail, password)
				assertRedirect(t, res, "/dashboard")

				loggedIn := c.sessionCookie()

				res, _ = c.post("/logout", url.Values{})
				assertRedirect(t, res, "/login")

				if c.sessionCookie() == loggedIn {
					t.Fatalf("session cookie was not renewed on logout")
				}
			})
		})
	}

	t.Run("fail, filesystem session is gone after logout", func(t *testing.T) {
		st := newServerTest(t, func(deps *testDeps) {
			deps.sessionDir = t.TempDir()
		})

		c := st.client()
		res, _ := c.login(adminEmail, password)
		assertRedirect(t, res, "/dashboard")

		stolen := st.client()
		stolen.setSessionCookie(c.sessionCookie())

		res, _ = stolen.get("/dashboard")
		assertStatus(t, res, http.StatusOK)

		res, _ = c.post("/logout", url.Values{})
		assertRedirect(t, res, "/login")

		res, _ = stolen.get("/dashboard")
		assertRedirect(t, res, "/login")
	})
}

func Test_LoggedInOnly(t *testing.T) {
	st := newServerTest(t)

	paths := []string{"/dashboard", "/categories", "/providers", "/products", "/users"}
	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			res, _ := st.client().get(path)
			assertRedirect(t, res, "/login")
		})
	}

	t.Run("logged in users don't see the login page", func(t *testing.T) {
		c := st.client()
		_, _ = c.login(staffEmail, password)

		res, _ := c.get("/login")
		assertRedirect(t, res, "/dashboard")
	})

	t.Run("session ends when account is deactivated", func(t *testing.T) {
		c := st.client()
		_, _ = c.login(staffEmail, password)

		st.setState(staffEmail, auth.StateBlocked)
		defer st.setState(staffEmail, auth.StateActive)

		res, _ := c.get("/dashboard")
		assertRedirect(t, res, "/login")
	})
}

func Test_RequestID(t *testing.T) {
	st := newServerTest(t)
	c := st.client()

	t.Run("ok, generated", func(t *testing.T) {
		res, _ := c.get("/login")

		_, err := uuid.Parse(res.Header.Get("X-Request-ID"))
		if err != nil {
			t.Errorf("expected a uuid request id, got %q", res.Header.Get("X-Request-ID"))
		}
	})

	t.Run("ok, taken from request", func(t *testing.T) {
		id := uuid.NewString()
		res, _ := c.do(mustRequest(t, http.MethodGet, st.srv.URL+"/login", nil, func(r *http.Request) {
			r.Header.Set("X-Request-ID", id)
		}))

		if got := res.Header.Get("X-Request-ID"); got != id {
			t.Errorf("got request id %q, want %q", got, id)
		}
	})
}

func Test_Inventory(t *testing.T) {
	st := newServerTest(t)
	c := st.client()
	_, _ = c.login(staffEmail, password)

	t.Run("ok, create category", func(t *testing.T) {
		res, _ := c.post("/categories", url.Values{"name": {"Bebidas"}, "description": {"Frías"}})
		assertRedirect(t, res, "/categories")

		res, body := c.get("/categories")
		assertStatus(t, res, http.StatusOK)
		assertContains(t, body, "Bebidas", "Category saved.")
	})

	t.Run("fail, category without name", func(t *testing.T) {
		res, body := c.post("/categories", url.Values{"name": {" "}, "description": {"Sin nombre"}})
		assertStatus(t, res, http.StatusBadRequest)
		assertContains(t, body, "name is required", `value="Sin nombre"`)
	})

	t.Run("ok, create provider", func(t *testing.T) {
		res, _ := c.post("/providers", url.Values{"name": {"Distribuidora Sur"}, "email": {"ventas@sur.test"}})
		assertRedirect(t, res, "/providers")
	})

	t.Run("ok, create product", func(t *testing.T) {
		res, _ := c.post("/products", url.Values{
			"name":        {"Agua"},
			"category_id": {"1"},
			"provider_id": {"1"},
			"price":       {"1.50"},
			"stock":       {"3"},
		})
		assertRedirect(t, res, "/products")

		res, body := c.get("/products")
		assertStatus(t, res, http.StatusOK)
		assertContains(t, body, "Agua", "1.50", "Distribuidora Sur")

		// Low stock shows up on the dashboard.
		_, body = c.get("/dashboard")
		assertContains(t, body, "Low stock", "Agua")
	})

	t.Run("fail, product with invalid price", func(t *testing.T) {
		res, body := c.post("/products", url.Values{
			"name":        {"Jugo"},
			"category_id": {"1"},
			"provider_id": {"1"},
			"price":       {"1.999"},
			"stock":       {"3"},
		})
		assertStatus(t, res, http.StatusBadRequest)
		assertContains(t, body, inventory.ErrInvalidPrice.Error())
	})

	t.Run("fail, delete category in use", func(t *testing.T) {
		res, _ := c.post("/categories/1/delete", url.Values{})
		assertRedirect(t, res, "/categories")

		_, body := c.get("/categories")
		assertContains(t, body, "The category is still used by products.")
	})

	t.Run("ok, delete product then category", func(t *testing.T) {
		res, _ := c.post("/products/1/delete", url.Values{})
		assertRedirect(t, res, "/products")

		res, _ = c.post("/categories/1/delete", url.Values{})
		assertRedirect(t, res, "/categories")

		_, body := c.get("/categories")
		assertContains(t, body, "Category deleted.")
	})

	t.Run("fail, delete unknown product", func(t *testing.T) {
		res, _ := c.post("/products/99/delete", url.Values{})
		assertStatus(t, res, http.StatusNotFound)
	})
}

func Test_Users(t *testing.T) {
	t.Run("fail, staff can't manage users", func(t *testing.T) {
		st := newServerTest(t)
		c := st.client()
		_, _ = c.login(staffEmail, password)

		res, _ := c.get("/users")
		assertStatus(t, res, http.StatusForbidden)
	})

	t.Run("ok, admin manages users", func(t *testing.T) {
		st := newServerTest(t)
		c := st.client()
		_, _ = c.login(adminEmail, password)

		res, body := c.get("/users")
		assertStatus(t, res, http.StatusOK)
		assertContains(t, body, staffEmail)

		res, _ = c.post("/users", url.Values{"Email": {"new@shop.test"}, "Password": {"NewPass1234"}, "Role": {"staff"}})
		assertRedirect(t, res, "/users")

		res, body = c.post("/users", url.Values{"Email": {"NEW@shop.test"}, "Password": {"NewPass1234"}, "Role": {"staff"}})
		assertStatus(t, res, http.StatusBadRequest)
		assertContains(t, body, auth.ErrDuplicateAccount.Error())

		res, _ = c.post("/users/3/password", url.Values{"Password": {"OtherPass1234"}})
		assertRedirect(t, res, "/users")

		res, _ = st.client().login("new@shop.test", "OtherPass1234")
		assertRedirect(t, res, "/dashboard")

		res, _ = c.post("/users/3/state", url.Values{"State": {"blocked"}})
		assertRedirect(t, res, "/users")

		res, _ = st.client().login("new@shop.test", "OtherPass1234")
		assertStatus(t, res, http.StatusForbidden)

		res, _ = c.post("/users/3/delete", url.Values{})
		assertRedirect(t, res, "/users")

		res, _ = c.post("/users/3/delete", url.Values{})
		assertStatus(t, res, http.StatusNotFound)
	})

	t.Run("fail, admin can't lock themselves out", func(t *testing.T) {
		st := newServerTest(t)
		c := st.client()
		_, _ = c.login(adminEmail, password)

		res, _ := c.post("/users/1/state", url.Values{"State": {"inactive"}})
		assertStatus(t, res, http.StatusBadRequest)

		res, _ = c.post("/users/1/delete", url.Values{})
		assertStatus(t, res, http.StatusBadRequest)
	})

	t.Run("fail, weak password", func(t *testing.T) {
		st := newServerTest(t)
		c := st.client()
		_, _ = c.login(adminEmail, password)

		res, body := c.post("/users", url.Values{"Email": {"new@shop.test"}, "Password": {"short"}, "Role": {"staff"}})
		assertStatus(t, res, http.StatusBadRequest)
		assertContains(t, body, auth.ErrWeakPassword.Error())
	})
}

type testDeps struct {
	authStore auth.Store
	config    web.ServerConfig
	// sessionDir switches to a filesystem session store.
	sessionDir string
}

type serverTest struct {
	t    *testing.T
	srv  *httptest.Server
	auth *auth.Service
	logs *safeBuffer
	now  time.Time
}

func newServerTest(t *testing.T, mods ...func(deps *testDeps)) *serverTest {
	t.Helper()

	testDB := testdb.RunWhile(t, true)

	key := must(krypto.ParseKey("2b671594b775f371eab4050b4d58326682df6b1a6cc2e886717b1a26b4d6c45d"))
	hashKey := must(krypto.ParseKey("90303dfed7994260ea4817a5ca8a392915cd401115b2f97495dadfcbcd14adbf"))
	blockKey := must(krypto.ParseKey("a1ee5e1b5ab4ad2a8b0d7c0c3f3d5e8a9b7c6d5e4f3a2b1c0d9e8f7a6b5c4d3e"))

	deps := &testDeps{
		authStore: authdb.New(testDB, testDB),
		config: web.ServerConfig{
			CSRFKey:      key,
			SecureCookie: false,
		},
	}
	for _, mod := range mods {
		mod(deps)
	}

	st := &serverTest{
		t:    t,
		logs: &safeBuffer{},
		now:  time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}

	authSvc, err := auth.NewService(deps.authStore, auth.ServiceConfig{
		Throttle:       auth.DefaultThrottleConfig(),
		HashIterations: auth.MinIterations,
	})
	if err != nil {
		t.Fatalf("failed to create auth service: %v", err)
	}
	authSvc.NowFunc = func() time.Time {
		return st.now
	}
	st.auth = authSvc

	// Accounts are created directly in the database, the failing store would refuse them.
	seedSvc, err := auth.NewService(authdb.New(testDB, testDB), auth.ServiceConfig{HashIterations: auth.MinIterations})
	if err != nil {
		t.Fatalf("failed to create auth service: %v", err)
	}
	for _, a := range []struct {
		email string
		role  auth.Role
	}{
		{adminEmail, auth.RoleAdmin},
		{staffEmail, auth.RoleStaff},
	} {
		_, err := seedSvc.CreateAccount(context.Background(), auth.NewAccount{
			Email:    must(email.ParseAddress(a.email)),
			Password: must(auth.ParsePassword(password)),
			Role:     a.role,
		})
		if err != nil {
			t.Fatalf("failed to create account: %v", err)
		}
	}

	sessOpts := sessions.Options{MaxAge: 3600}
	sessStore := sessions.NewCookieStore(sessOpts, hashKey.SecretValue(), blockKey.SecretValue())
	if deps.sessionDir != "" {
		sessStore = sessions.NewFilesystemStore(deps.sessionDir, sessOpts, hashKey.SecretValue(), blockKey.SecretValue())
	}

	renderer, err := view.NewMemRenderer(assets.TemplateFS)
	if err != nil {
		t.Fatalf("failed to parse views: %v", err)
	}

	server := web.NewServer(&web.ServerDeps{
		Logger:       slog.New(slog.NewTextHandler(st.logs, nil)),
		ViewRenderer: renderer,
		AuthService:  authSvc,
		Inventory:    inventory.NewService(inventorydb.New(testDB, testDB)),
		SessionStore: sessStore,
		DistFS:       http.FS(assets.DistFS),
	}, deps.config)

	st.srv = httptest.NewServer(server)
	t.Cleanup(st.srv.Close)

	return st
}

func (st *serverTest) setState(addr string, state auth.AccountState) {
	st.t.Helper()

	accounts, err := st.auth.ListAccounts(context.Background())
	if err != nil {
		st.t.Fatalf("failed to list accounts: %v", err)
	}

	for _, a := range accounts {
		if a.Email == addr {
			err := st.auth.SetState(context.Background(), auth.StateChange{ID: a.ID, State: state})
			if err != nil {
				st.t.Fatalf("failed to set state: %v", err)
			}
			return
		}
	}

	st.t.Fatalf("no account %s", addr)
}

// client returns a client with its own cookie jar, so every client has its own session.
func (st *serverTest) client() *client {
	jar, err := cookiejar.New(nil)
	if err != nil {
		st.t.Fatalf("failed to create cookie jar: %v", err)
	}

	return &client{
		t:    st.t,
		base: st.srv.URL,
		http: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

type client struct {
	t    *testing.T
	base string
	http *http.Client
}

func (c *client) do(req *http.Request) (*http.Response, string) {
	c.t.Helper()

	res, err := c.http.Do(req)
	if err != nil {
		c.t.Fatalf("request failed: %v", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		c.t.Fatalf("failed to read body: %v", err)
	}

	return res, string(body)
}

// sessionCookie returns the value of the session cookie in the jar.
func (c *client) sessionCookie() string {
	c.t.Helper()

	for _, cookie := range c.http.Jar.Cookies(must(url.Parse(c.base))) {
		if cookie.Name == sessions.CookieName {
			return cookie.Value
		}
	}

	c.t.Fatalf("no session cookie in jar")
	return ""
}

func (c *client) setSessionCookie(value string) {
	c.http.Jar.SetCookies(must(url.Parse(c.base)), []*http.Cookie{
		{Name: sessions.CookieName, Value: value, Path: "/"},
	})
}

func (c *client) get(path string) (*http.Response, string) {
	c.t.Helper()
	return c.do(mustRequest(c.t, http.MethodGet, c.base+path, nil, nil))
}

var csrfRe = regexp.MustCompile(`name="csrf_token" value="([^"]+)"`)

// token fetches a page with a form and returns its CSRF token.
func (c *client) token() string {
	c.t.Helper()

	res, body := c.get("/login")
	if res.StatusCode == http.StatusSeeOther {
		_, body = c.get("/dashboard")
	}

	m := csrfRe.FindStringSubmatch(body)
	if m == nil {
		c.t.Fatalf("no csrf token in body:\n%s", body)
	}

	return m[1]
}

func (c *client) post(path string, form url.Values) (*http.Response, string) {
	c.t.Helper()

	form.Set("csrf_token", c.token())
	return c.postNoToken(path, form)
}

func (c *client) postNoToken(path string, form url.Values) (*http.Response, string) {
	c.t.Helper()

	return c.do(mustRequest(c.t, http.MethodPost, c.base+path, strings.NewReader(form.Encode()), func(r *http.Request) {
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}))
}

func (c *client) login(addr, pwd string) (*http.Response, string) {
	c.t.Helper()

	return c.post("/login", url.Values{
		"Email":    {addr},
		"Password": {pwd},
	})
}

func mustRequest(t *testing.T, method, target string, body io.Reader, mf func(r *http.Request)) *http.Request {
	t.Helper()

	req, err := http.NewRequest(method, target, body)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}

	if mf != nil {
		mf(req)
	}

	return req
}

var messageRe = regexp.MustCompile(`id="message">([^<]*)<`)

func extractMessage(body string) string {
	m := messageRe.FindStringSubmatch(body)
	if m == nil {
		return ""
	}
	return m[1]
}

func assertStatus(t *testing.T, res *http.Response, want int) {
	t.Helper()

	if res.StatusCode != want {
		t.Fatalf("got status %d, want %d", res.StatusCode, want)
	}
}

func assertRedirect(t *testing.T, res *http.Response, location string) {
	t.Helper()

	assertStatus(t, res, http.StatusSeeOther)

	if got := res.Header.Get("Location"); got != location {
		t.Fatalf("got redirect to %q, want %q", got, location)
	}
}

func assertContains(t *testing.T, body string, want ...string) {
	t.Helper()

	for _, w := range want {
		if !strings.Contains(body, w) {
			t.Errorf("body does not contain %q:\n%s", w, body)
		}
	}
}

// failingStore fails every lookup.
type failingStore struct {
	auth.Store
}

var errStoreDown = errors.New("store down")

func (f *failingStore) FindAccountByEmail(context.Context, string) (auth.Account, error) {
	return auth.Account{}, errStoreDown
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
