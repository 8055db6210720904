package handler

import (
	"net/http"
	"time"

	"github.com/segyhp/emi-ledger/pkg/response"
)

type ReportHandler struct {
	service ReportFacade
	now     func() time.Time
}

func NewReportHandler(service ReportFacade) *ReportHandler {
	return &ReportHandler{
		service: service,
		now:     time.Now,
	}
}

// EMIApplications handles GET /api/emi-applications/{userId}
func (h *ReportHandler) EMIApplications(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}

	views, err := h.service.EMIApplications(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Success(w, views)
}

// EMIDetails handles GET /api/emi-details/{userId}
func (h *ReportHandler) EMIDetails(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}

	views, err := h.service.EMIDetails(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Success(w, views)
}

// LoanDetails handles GET /api/loan-details
func (h *ReportHandler) LoanDetails(w http.ResponseWriter, r *http.Request) {
	views, err := h.service.LoanDetails(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Success(w, views)
}

// LoanPayments handles GET /api/loan-payments?userId=
func (h *ReportHandler) LoanPayments(w http.ResponseWriter, r *http.Request) {
	userID, ok := queryID(w, r, "userId")
	if !ok {
		return
	}
	if userID == nil {
		response.BadRequest(w, "userId is required")
		return
	}

	views, err := h.service.PaymentHistory(r.Context(), *userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Success(w, views)
}

// ApprovedApplications handles GET /api/approved-emi-applications
func (h *ReportHandler) ApprovedApplications(w http.ResponseWriter, r *http.Request) {
	views, err := h.service.ApprovedApplications(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Success(w, views)
}

// OverdueLoans handles GET /api/overdue-loans?asOf=<RFC3339>
func (h *ReportHandler) OverdueLoans(w http.ResponseWriter, r *http.Request) {
	asOf := h.now()
	if raw := r.URL.Query().Get("asOf"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.BadRequest(w, "asOf must be an RFC3339 timestamp")
			return
		}
		asOf = t
	}

	views, err := h.service.OverdueLoans(r.Context(), asOf.UTC())
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Success(w, views)
}

// AdminStats handles GET /api/admin-stats
func (h *ReportHandler) AdminStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.DashboardStats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Success(w, stats)
}

// Vehicles handles GET /api/vehicles
func (h *ReportHandler) Vehicles(w http.ResponseWriter, r *http.Request) {
	vehicles, err := h.service.ListVehicles(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Success(w, vehicles)
}

// Vehicle handles GET /api/vehicle/{id}
func (h *ReportHandler) Vehicle(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	vehicle, err := h.service.GetVehicle(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Success(w, vehicle)
}

// User handles GET /api/user/{id}
func (h *ReportHandler) User(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	user, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Success(w, user)
}
