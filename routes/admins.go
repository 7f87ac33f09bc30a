package routes

import (
	"net/http"

	"github.com/gorilla/mux"
)

func SetAdminRoutes(api *mux.Router, d Deps) {
	adminRouter := api.PathPrefix("/admin").Subrouter()
	adminRouter.Use(d.Authenticator.RequireAdmin)

	adminRouter.Handle("/users", http.HandlerFunc(d.Admins.GetUsers)).Methods(http.MethodGet)
	adminRouter.Handle("/users/{id:[0-9]+}/role", http.HandlerFunc(d.Admins.UpdateUserRole)).Methods(http.MethodPut)
	adminRouter.Handle("/users/{id:[0-9]+}/kyc", http.HandlerFunc(d.Admins.UpdateUserKyc)).Methods(http.MethodPut)
	adminRouter.Handle("/users/{id:[0-9]+}/balance", http.HandlerFunc(d.Admins.UpdateUserBalance)).Methods(http.MethodPut)
	adminRouter.Handle("/create-admin", http.HandlerFunc(d.Admins.CreateAdmin)).Methods(http.MethodPost)

	adminRouter.Handle("/transactions", http.HandlerFunc(d.Admins.GetTransactions)).Methods(http.MethodGet)
	adminRouter.Handle("/transactions/{id:[0-9]+}", http.HandlerFunc(d.Admins.ReviewTransaction)).Methods(http.MethodPut)

	adminRouter.Handle("/kyc", http.HandlerFunc(d.Admins.GetKyc)).Methods(http.MethodGet)
	adminRouter.Handle("/kyc/{id:[0-9]+}", http.HandlerFunc(d.Admins.ReviewKyc)).Methods(http.MethodPut)

	adminRouter.Handle("/investments", http.HandlerFunc(d.Admins.GetInvestments)).Methods(http.MethodGet)

	adminRouter.Handle("/deposit-addresses", http.HandlerFunc(d.Admins.CreateDepositAddress)).Methods(http.MethodPost)
	adminRouter.Handle("/deposit-addresses/{id:[0-9]+}", http.HandlerFunc(d.Admins.UpdateDepositAddress)).Methods(http.MethodPut)

	adminRouter.Handle("/testimonials", http.HandlerFunc(d.Admins.CreateTestimonial)).Methods(http.MethodPost)
}
