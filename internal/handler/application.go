package handler

import (
	"net/http"
	"strconv"

	"github.com/segyhp/emi-ledger/internal/domain"
	"github.com/segyhp/emi-ledger/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

type ApplicationHandler struct {
	service   ApplicationLedger
	validator *validator.Validate
}

func NewApplicationHandler(service ApplicationLedger) *ApplicationHandler {
	return &ApplicationHandler{
		service:   service,
		validator: NewValidator(),
	}
}

// SubmitLoanApplication handles POST /api/submit-loan-application
func (h *ApplicationHandler) SubmitLoanApplication(w http.ResponseWriter, r *http.Request) {
	var request domain.SubmitApplicationRequest
	if !decodeAndValidate(w, r, h.validator, &request) {
		return
	}

	app, err := h.service.Submit(r.Context(), &request)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, domain.SubmitApplicationResponse{
		Success:       true,
		ApplicationID: app.ID,
		EMIAmount:     app.EMIAmount,
	})
}

// UpdateLoanStatus handles PUT /api/loan-status/{id}
func (h *ApplicationHandler) UpdateLoanStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var request domain.UpdateStatusRequest
	if !decodeAndValidate(w, r, h.validator, &request) {
		return
	}

	app, err := h.service.SetStatus(r.Context(), id, request.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, domain.UpdateStatusResponse{
		Success:     true,
		Message:     "Loan status updated successfully",
		Application: app,
	})
}

// ActiveLoans handles GET /api/active-loans and /api/active-loans/{userId}
func (h *ApplicationHandler) ActiveLoans(w http.ResponseWriter, r *http.Request) {
	var userID *int64
	if _, scoped := muxVar(r, "userId"); scoped {
		id, ok := pathID(w, r, "userId")
		if !ok {
			return
		}
		userID = &id
	}

	loans, err := h.service.ListActiveLoans(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Success(w, loans)
}

// LoanRequests handles GET /api/loan-requests?userId=&status=&emiStatus=
func (h *ApplicationHandler) LoanRequests(w http.ResponseWriter, r *http.Request) {
	userID, ok := queryID(w, r, "userId")
	if !ok {
		return
	}
	filter := domain.ApplicationFilter{UserID: userID}

	if raw := r.URL.Query().Get("status"); raw != "" {
		status := domain.ApplicationStatus(raw)
		switch status {
		case domain.ApplicationStatusPending, domain.ApplicationStatusApproved, domain.ApplicationStatusRejected:
			filter.ApplicationStatus = &status
		default:
			response.BadRequest(w, "Invalid status")
			return
		}
	}
	if raw := r.URL.Query().Get("emiStatus"); raw != "" {
		status := domain.EMIStatus(raw)
		switch status {
		case domain.EMIStatusOngoing, domain.EMIStatusCompleted:
			filter.EMIStatus = &status
		default:
			response.BadRequest(w, "Invalid emiStatus")
			return
		}
	}

	apps, err := h.service.ListApplications(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Success(w, apps)
}

// GetApplication handles GET /api/applications/{id}
func (h *ApplicationHandler) GetApplication(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	app, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Success(w, app)
}

// Schedule handles GET /api/applications/{id}/schedule
func (h *ApplicationHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	schedule, err := h.service.ApplicationSchedule(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Success(w, schedule)
}

// Calculator handles GET /api/emi-calculator?loan_amount=&interest_rate=&tenure=
func (h *ApplicationHandler) Calculator(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var request domain.CalculatorRequest
	var err error
	if request.LoanAmount, err = decimal.NewFromString(q.Get("loan_amount")); err != nil {
		response.ValidationError(w, "Validation failed", []response.FieldError{{Field: "loan_amount", Message: "must be a number"}})
		return
	}
	if request.InterestRate, err = decimal.NewFromString(q.Get("interest_rate")); err != nil {
		response.ValidationError(w, "Validation failed", []response.FieldError{{Field: "interest_rate", Message: "must be a number"}})
		return
	}
	if request.Tenure, err = strconv.Atoi(q.Get("tenure")); err != nil {
		response.ValidationError(w, "Validation failed", []response.FieldError{{Field: "tenure", Message: "must be a whole number of months"}})
		return
	}
	if !validate(w, h.validator, &request) {
		return
	}

	quote, err := h.service.Quote(&request)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Success(w, quote)
}
