package routes

import (
	"net/http"
	"time"

	"geniustrading/controllers"
	"geniustrading/controllers/admins"
	"geniustrading/controllers/auth"
	"geniustrading/controllers/users"
	"geniustrading/metrics"
	"geniustrading/middleware"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

// Deps carries the constructed handlers the router mounts.
type Deps struct {
	Authenticator  *middleware.Authenticator
	Auth           *auth.Handler
	Users          *users.Handler
	Admins         *admins.Handler
	Info           *controllers.InfoController
	CORSOrigins    []string
	TrustedProxies []string
}

func optionsHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func InitRouter(d Deps) *mux.Router {
	r := mux.NewRouter()

	r.Handle("/health", http.HandlerFunc(controllers.HealthHandler)).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	origins := d.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5000", "http://localhost:3000", "http://127.0.0.1:5000"}
	}
	r.Use(handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Requested-With", "X-Request-ID"}),
		handlers.AllowCredentials(),
	))

	api := r.PathPrefix("/api").Subrouter()
	// preflight requests need a matching route for the CORS middleware to run
	api.PathPrefix("/").HandlerFunc(optionsHandler).Methods(http.MethodOptions)

	// 60 attempts per IP per 5 minutes on the credential endpoints
	loginLimiter := middleware.NewIPRateLimiter(60, 5*time.Minute, d.TrustedProxies)
	api.Handle("/register", loginLimiter.Middleware(http.HandlerFunc(d.Auth.Register))).Methods(http.MethodPost)
	api.Handle("/login", loginLimiter.Middleware(http.HandlerFunc(d.Auth.Login))).Methods(http.MethodPost)
	api.Handle("/logout", http.HandlerFunc(d.Auth.Logout)).Methods(http.MethodPost)

	api.Handle("/plans", http.HandlerFunc(controllers.PlanListHandler)).Methods(http.MethodGet)
	api.Handle("/plans/quote", http.HandlerFunc(controllers.PlanQuoteHandler)).Methods(http.MethodPost)
	api.Handle("/deposit-addresses", http.HandlerFunc(d.Info.DepositAddresses)).Methods(http.MethodGet)
	api.Handle("/deposit-addresses/{method}", http.HandlerFunc(d.Info.DepositAddress)).Methods(http.MethodGet)
	api.Handle("/testimonials", http.HandlerFunc(d.Info.Testimonials)).Methods(http.MethodGet)

	UsersRoutes(api, d)
	SetAdminRoutes(api, d)

	return r
}
