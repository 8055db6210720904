package handler

import (
	"net/http"

	"github.com/segyhp/emi-ledger/pkg/response"

	"github.com/gorilla/mux"
)

// Handlers groups everything NewRouter mounts. Idempotency may be nil.
type Handlers struct {
	Applications *ApplicationHandler
	Payments     *PaymentHandler
	Reports      *ReportHandler
	Catalog      *CatalogHandler
	Health       *HealthHandler
	Idempotency  mux.MiddlewareFunc
}

func NewRouter(h Handlers) *mux.Router {
	router := mux.NewRouter()
	router.Use(response.RequestIDMiddleware, response.LoggingMiddleware, response.RecoverMiddleware, response.CORSMiddleware)
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "route not found")
	})

	// Health check
	router.HandleFunc("/health", h.Health.Health).Methods(http.MethodGet)
	router.HandleFunc("/health/ready", h.Health.Ready).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()

	// writes are replayed on a repeated Idempotency-Key
	write := func(fn http.HandlerFunc) http.Handler {
		if h.Idempotency == nil {
			return fn
		}
		return h.Idempotency(fn)
	}
	api.Handle("/submit-loan-application", write(h.Applications.SubmitLoanApplication)).Methods(http.MethodPost, http.MethodOptions)
	api.Handle("/loan-status/{id}", write(h.Applications.UpdateLoanStatus)).Methods(http.MethodPut, http.MethodOptions)
	api.Handle("/payments", write(h.Payments.ApplyPayment)).Methods(http.MethodPost, http.MethodOptions)
	api.Handle("/process-payment", write(h.Payments.ProcessPayment)).Methods(http.MethodPost, http.MethodOptions)
	api.Handle("/signup", write(h.Catalog.Signup)).Methods(http.MethodPost, http.MethodOptions)
	api.Handle("/vehicles", write(h.Catalog.CreateVehicle)).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/vehicles/{id}", h.Catalog.UpdateVehicle).Methods(http.MethodPut, http.MethodOptions)
	api.HandleFunc("/vehicles/{id}", h.Catalog.DeleteVehicle).Methods(http.MethodDelete)

	api.HandleFunc("/active-loans", h.Applications.ActiveLoans).Methods(http.MethodGet)
	api.HandleFunc("/active-loans/{userId}", h.Applications.ActiveLoans).Methods(http.MethodGet)
	api.HandleFunc("/loan-requests", h.Applications.LoanRequests).Methods(http.MethodGet)
	api.HandleFunc("/applications/{id}", h.Applications.GetApplication).Methods(http.MethodGet)
	api.HandleFunc("/applications/{id}/schedule", h.Applications.Schedule).Methods(http.MethodGet)
	api.HandleFunc("/applications/{id}/payments", h.Payments.ListPayments).Methods(http.MethodGet)
	api.HandleFunc("/emi-calculator", h.Applications.Calculator).Methods(http.MethodGet)
	api.HandleFunc("/payments/{id}", h.Payments.GetPayment).Methods(http.MethodGet)

	api.HandleFunc("/emi-applications/{userId}", h.Reports.EMIApplications).Methods(http.MethodGet)
	api.HandleFunc("/emi-details/{userId}", h.Reports.EMIDetails).Methods(http.MethodGet)
	api.HandleFunc("/loan-details", h.Reports.LoanDetails).Methods(http.MethodGet)
	api.HandleFunc("/loan-payments", h.Reports.LoanPayments).Methods(http.MethodGet)
	api.HandleFunc("/approved-emi-applications", h.Reports.ApprovedApplications).Methods(http.MethodGet)
	api.HandleFunc("/overdue-loans", h.Reports.OverdueLoans).Methods(http.MethodGet)
	api.HandleFunc("/admin-stats", h.Reports.AdminStats).Methods(http.MethodGet)
	api.HandleFunc("/vehicles", h.Reports.Vehicles).Methods(http.MethodGet)
	api.HandleFunc("/vehicle/{id}", h.Reports.Vehicle).Methods(http.MethodGet)
	api.HandleFunc("/user/{id}", h.Reports.User).Methods(http.MethodGet)
	api.HandleFunc("/users", h.Catalog.Users).Methods(http.MethodGet)

	return router
}
