package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/segyhp/emi-ledger/internal/domain"
	customError "github.com/segyhp/emi-ledger/pkg/errors"
	"github.com/segyhp/emi-ledger/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

// ApplicationLedger is the loan application side of the service layer.
type ApplicationLedger interface {
	Submit(ctx context.Context, request *domain.SubmitApplicationRequest) (*domain.LoanApplication, error)
	SetStatus(ctx context.Context, applicationID int64, status domain.ApplicationStatus) (*domain.LoanApplication, error)
	Get(ctx context.Context, applicationID int64) (*domain.LoanApplication, error)
	ListApplications(ctx context.Context, filter domain.ApplicationFilter) ([]*domain.LoanApplication, error)
	ListActiveLoans(ctx context.Context, userID *int64) ([]*domain.LoanDetailView, error)
	ApplicationSchedule(ctx context.Context, applicationID int64) (*domain.ScheduleResponse, error)
	Quote(request *domain.CalculatorRequest) (*domain.ScheduleResponse, error)
}

// PaymentLedger records installments and gateway payments.
type PaymentLedger interface {
	ApplyPayment(ctx context.Context, request *domain.ApplyPaymentRequest) (*domain.PaymentReceipt, error)
	SimulateGatewayPayment(ctx context.Context, request *domain.GatewayPaymentRequest) (*domain.Payment, error)
	GetPayment(ctx context.Context, paymentID int64) (*domain.Payment, error)
	ListPayments(ctx context.Context, applicationID int64) ([]*domain.Payment, error)
}

// ReportFacade serves the read-only views.
type ReportFacade interface {
	EMIApplications(ctx context.Context, userID int64) ([]*domain.EMIApplicationView, error)
	EMIDetails(ctx context.Context, userID int64) ([]*domain.EMIDetailView, error)
	LoanDetails(ctx context.Context) ([]*domain.LoanDetailView, error)
	PaymentHistory(ctx context.Context, userID int64) ([]*domain.PaymentHistoryView, error)
	ApprovedApplications(ctx context.Context) ([]*domain.ApprovedApplicationView, error)
	OverdueLoans(ctx context.Context, asOf time.Time) ([]*domain.OverdueLoanView, error)
	DashboardStats(ctx context.Context) (*domain.DashboardStats, error)
	GetVehicle(ctx context.Context, vehicleID int64) (*domain.Vehicle, error)
	ListVehicles(ctx context.Context) ([]*domain.Vehicle, error)
	GetUser(ctx context.Context, userID int64) (*domain.User, error)
}

// CatalogAdmin maintains applicants and vehicles.
type CatalogAdmin interface {
	RegisterUser(ctx context.Context, request *domain.RegisterUserRequest) (*domain.User, error)
	ListUsers(ctx context.Context) ([]*domain.User, error)
	CreateVehicle(ctx context.Context, request *domain.VehicleRequest) (*domain.Vehicle, error)
	UpdateVehicle(ctx context.Context, vehicleID int64, request *domain.VehicleRequest) (*domain.Vehicle, error)
	DeleteVehicle(ctx context.Context, vehicleID int64) error
}

// writeError answers with the status and public message of err.
// Internal failures are logged with their cause.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := customError.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", response.RequestID(r.Context()),
			"error", err,
		)
	}
	response.Error(w, status, customError.PublicMessage(err), customError.Code(err))
}

// decodeAndValidate reads a JSON body into dst and validates it.
// It writes the 400 response itself and reports false on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v *validator.Validate, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.BadRequest(w, "Invalid request body")
		return false
	}
	return validate(w, v, dst)
}

func validate(w http.ResponseWriter, v *validator.Validate, dst any) bool {
	if err := v.Struct(dst); err != nil {
		response.ValidationError(w, "Validation failed", ToFieldErrors(err))
		return false
	}
	return true
}

// pathID parses a positive integer path variable.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(w, "Invalid "+name)
		return 0, false
	}
	return id, true
}

// queryID parses an optional positive integer query parameter.
func queryID(w http.ResponseWriter, r *http.Request, name string) (*int64, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(w, "Invalid "+name)
		return nil, false
	}
	return &id, true
}

func muxVar(r *http.Request, name string) (string, bool) {
	v, ok := mux.Vars(r)[name]
	return v, ok
}
