package routes

import (
	"net/http"
	"time"

	"geniustrading/middleware"

	"github.com/gorilla/mux"
)

// UsersRoutes mounts the endpoints a logged-in user calls for their own data.
func UsersRoutes(api *mux.Router, d Deps) {
	// 120 reads and 60 writes per user per minute
	userLimiter := middleware.NewUserRateLimiter(120, 60, time.Minute)
	authed := func(h http.HandlerFunc) http.Handler {
		return d.Authenticator.RequireAuth(userLimiter.Middleware(h))
	}

	api.Handle("/user", authed(d.Users.Profile)).Methods(http.MethodGet)

	api.Handle("/investments", authed(d.Users.CreateInvestment)).Methods(http.MethodPost)
	api.Handle("/investments", authed(d.Users.ListInvestments)).Methods(http.MethodGet)

	api.Handle("/transactions", authed(d.Users.CreateTransaction)).Methods(http.MethodPost)
	api.Handle("/transactions", authed(d.Users.ListTransactions)).Methods(http.MethodGet)

	api.Handle("/kyc", authed(d.Users.SubmitKyc)).Methods(http.MethodPost)
	api.Handle("/kyc", authed(d.Users.GetKyc)).Methods(http.MethodGet)
	api.Handle("/kyc/document", authed(d.Users.UploadKycDocument)).Methods(http.MethodPost)
}
