package web

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/csrf"
	"github.com/gorilla/schema"
	"github.com/minitienda/minitienda/internal/auth"
	"github.com/minitienda/minitienda/internal/inventory"
	"github.com/minitienda/minitienda/internal/krypto"
	"github.com/minitienda/minitienda/internal/web/sessions"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	csrfTokenCookieName = "mt-csrf"
	csrfTokenField      = "csrf_token"
)

// ViewRenderer renders named views with the given data.
type ViewRenderer interface {
	Render(w io.Writer, name string, data any) error
}

// ServerDeps are the dependencies for the server.
type ServerDeps struct {
	Logger       *slog.Logger
	ViewRenderer ViewRenderer
	AuthService  *auth.Service
	Inventory    *inventory.Service
	SessionStore *sessions.Store
	DistFS       http.FileSystem
	// Metrics registers the server metrics, they are not exported when nil.
	Metrics prometheus.Registerer
}

// ServerConfig is the configuration for the server.
type ServerConfig struct {
	CSRFKey      krypto.Key
	SecureCookie bool
	// LoginInterval and LoginBurst configure the login rate per client IP:
	// a burst of attempts, then one attempt per interval.
	LoginInterval time.Duration
	LoginBurst    int
	// ClientIPHeader is the header a trusted proxy puts the client IP in.
	// When empty, the remote address of the connection is used.
	ClientIPHeader string
}

type Server struct {
	deps    *ServerDeps
	mux     *http.ServeMux
	decoder *schema.Decoder
	limiter *loginLimiter
	metrics *metrics
	handler http.Handler
}

func NewServer(deps *ServerDeps, cfg ServerConfig) *Server {
	s := &Server{
		deps:    deps,
		mux:     http.NewServeMux(),
		decoder: schema.NewDecoder(),
		limiter: newLoginLimiter(cfg.LoginInterval, cfg.LoginBurst, cfg.ClientIPHeader),
		metrics: newMetrics(deps.Metrics),
	}

	// Most non-static endpoints below are created using the map functions.
	// These functions return handlers that automatically map between HTTP requests, target functions and HTTP responses.
	// The request mapping and response writing is customizable.

	s.public("GET /{$}", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
	}))

	// Login and logout.
	s.publicOnly("GET /login", s.staticHandler("login"))
	s.publicOnly("POST /login", s.limitLogins(s.loginHandler()))
	{
		const route = "POST /logout"
		h := mapResponse(s, func(ctx context.Context) (struct{}, error) {
			return struct{}{}, nil
		})
		h.response(func(r result[struct{}, struct{}]) error {
			r.sess.Renew()
			r.sess.ClearIdentity()
			return redirect[struct{}, struct{}]("/login", "You have been logged out.")(r)
		})

		s.loggedIn(route, h)
	}

	s.loggedIn("GET /dashboard", mapResponse(s, s.dashboardPage).response(render[struct{}, dashboardPage]("dashboard")))

	s.inventoryRoutes()
	s.userRoutes()

	if deps.DistFS != nil {
		s.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(deps.DistFS)))
	}

	// Wrap the mux with global middlewares.
	csrfMW := csrf.Protect(
		cfg.CSRFKey.SecretValue(),
		csrf.CookieName(csrfTokenCookieName),
		csrf.FieldName(csrfTokenField),
		csrf.Secure(cfg.SecureCookie),
		csrf.Path("/"),
		csrf.ErrorHandler(http.HandlerFunc(s.csrfFailure)),
	)

	middlewares := []func(http.Handler) http.Handler{
		s.metrics.instrument,
		s.requestID,
		csrfMW,
		s.session,
	}
	s.handler = s.mux
	for i := len(middlewares) - 1; i >= 0; i-- {
		s.handler = middlewares[i](s.handler)
	}

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) staticHandler(name string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := s.writeView(w, r, http.StatusOK, name, nil, nil)
		if err != nil {
			s.handleError(w, r, err)
			return
		}
	})
}

type dashboardPage struct {
	Categories int
	Providers  int
	Products   int
	LowStock   []inventory.ProductView
}

// lowStockLimit is the stock below which products are listed on the dashboard.
const lowStockLimit = 5

func (s *Server) dashboardPage(ctx context.Context) (dashboardPage, error) {
	categories, err := s.deps.Inventory.ListCategories(ctx)
	if err != nil {
		return dashboardPage{}, err
	}

	providers, err := s.deps.Inventory.ListProviders(ctx)
	if err != nil {
		return dashboardPage{}, err
	}

	products, err := s.deps.Inventory.ListProducts(ctx, nil)
	if err != nil {
		return dashboardPage{}, err
	}

	page := dashboardPage{
		Categories: len(categories),
		Providers:  len(providers),
		Products:   len(products),
	}

	for _, p := range products {
		if p.Stock < lowStockLimit {
			page.LowStock = append(page.LowStock, p)
		}
	}

	return page, nil
}
