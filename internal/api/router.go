package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/userbase/backend/internal/auth"
	apperrors "github.com/userbase/backend/internal/errors"
	"github.com/userbase/backend/internal/health"
	"github.com/userbase/backend/internal/logger"
	"github.com/userbase/backend/internal/metrics"
	"github.com/userbase/backend/internal/user"
)

// Router owns the route table and the middleware chain. The auth gate wraps
// the whole mux: routes under a configured public prefix pass through, all
// others require a valid bearer access token.
type Router struct {
	mux            *http.ServeMux
	handler        http.Handler
	authHandlers   *auth.Handlers
	userHandlers   *user.Handlers
	healthChecker  *health.Checker
	collector      *metrics.Collector
	gatherer       prometheus.Gatherer
	publicPrefixes []string
}

func NewRouter(
	authService *auth.Service,
	userService *user.Service,
	healthChecker *health.Checker,
	collector *metrics.Collector,
	gatherer prometheus.Gatherer,
	publicPrefixes []string,
) *Router {
	r := &Router{
		mux:            http.NewServeMux(),
		authHandlers:   auth.NewHandlers(authService),
		userHandlers:   user.NewHandlers(userService),
		healthChecker:  healthChecker,
		collector:      collector,
		gatherer:       gatherer,
		publicPrefixes: publicPrefixes,
	}
	r.setupRoutes()
	r.handler = r.chain(authService)
	return r
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.handler.ServeHTTP(w, req)
}

func (r *Router) setupRoutes() {
	r.mux.HandleFunc("GET /health", r.healthChecker.Handler())
	if r.gatherer != nil {
		r.mux.Handle("GET /metrics", metrics.Handler(r.gatherer))
	}

	// Authentication
	r.mux.HandleFunc("POST /auth/sign-up", r.authHandlers.SignUp)
	r.mux.HandleFunc("POST /auth/sign-in", r.authHandlers.SignIn)
	r.mux.HandleFunc("POST /auth/refresh-token/{userId}", r.authHandlers.RefreshToken)
	r.mux.HandleFunc("POST /auth/logout/{userId}", r.authHandlers.Logout)

	// User profile
	r.mux.HandleFunc("GET /user/profile/{id}", r.userHandlers.GetProfile)
	r.mux.HandleFunc("POST /user/updateProfile", r.userHandlers.UpdateProfile)
	r.mux.HandleFunc("GET /user", r.userHandlers.ListUsers)
	r.mux.HandleFunc("DELETE /user/{userId}", r.userHandlers.DeleteUser)
	r.mux.HandleFunc("GET /user/email/{email}", r.userHandlers.GetByEmail)
}

// chain assembles the middleware stack, outermost first: panic recovery,
// request id, logging, metrics, then the auth gate in front of the mux.
func (r *Router) chain(authService *auth.Service) http.Handler {
	var h http.Handler = r.mux
	h = auth.Gate(authService.Codec(), r.publicPrefixes)(h)
	if r.collector != nil {
		h = r.collector.Middleware(h)
	}
	h = logger.LoggingMiddleware(h)
	h = apperrors.RequestIDMiddleware(h)
	h = logger.RecoveryMiddleware(h)
	return h
}
