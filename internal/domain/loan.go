package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ApplicationStatus string

const (
	ApplicationStatusPending  ApplicationStatus = "Pending"
	ApplicationStatusApproved ApplicationStatus = "Approved"
	ApplicationStatusRejected ApplicationStatus = "Rejected"
)

// IsDecision reports whether s is a status an administrator may set.
func (s ApplicationStatus) IsDecision() bool {
	return s == ApplicationStatusApproved || s == ApplicationStatusRejected
}

type EMIStatus string

const (
	EMIStatusOngoing   EMIStatus = "Ongoing"
	EMIStatusCompleted EMIStatus = "Completed"
)

// LoanApplication represents an emi_applications row
type LoanApplication struct {
	ID                int64             `json:"id" db:"id"`
	UserID            int64             `json:"user_id" db:"user_id"`
	VehicleID         int64             `json:"vehicle_id" db:"vehicle_id"`
	LoanAmount        decimal.Decimal   `json:"loan_amount" db:"loan_amount"`
	EMIAmount         decimal.Decimal   `json:"emi_amount" db:"emi_amount"`
	Tenure            int               `json:"tenure" db:"tenure"`
	InterestRate      decimal.Decimal   `json:"interest_rate" db:"interest_rate"`
	ApplicationStatus ApplicationStatus `json:"application_status" db:"application_status"`
	EMIStatus         EMIStatus         `json:"emi_status" db:"emi_status"`
	RemainingAmount   decimal.Decimal   `json:"remaining_amount" db:"remaining_amount"`
	Version           int64             `json:"-" db:"version"`
	CreatedAt         time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at" db:"updated_at"`
}

// MaxMoney is the largest amount the money columns hold.
var MaxMoney = decimal.RequireFromString("9999999999.99")

// IsPayable reports whether the ledger accepts installments for the application.
func (a *LoanApplication) IsPayable() bool {
	return a.ApplicationStatus == ApplicationStatusApproved && a.EMIStatus == EMIStatusOngoing
}

// ApplicationFilter narrows ListApplications; nil fields are not applied.
type ApplicationFilter struct {
	UserID            *int64
	ApplicationStatus *ApplicationStatus
	EMIStatus         *EMIStatus
}

// DTOs for requests and responses

type SubmitApplicationRequest struct {
	UserID       int64           `json:"user_id" validate:"required,gt=0"`
	VehicleID    int64           `json:"vehicle_id" validate:"required,gt=0"`
	LoanAmount   decimal.Decimal `json:"loan_amount" validate:"decimal_gt=0,decimal_lte=9999999999.99,money"`
	Tenure       int             `json:"tenure" validate:"required,gt=0,lte=600"`
	InterestRate decimal.Decimal `json:"interest_rate" validate:"decimal_gte=0,decimal_lte=100,money"`
}

type SubmitApplicationResponse struct {
	Success       bool            `json:"success"`
	ApplicationID int64           `json:"applicationId"`
	EMIAmount     decimal.Decimal `json:"emi_amount"`
}

type UpdateStatusRequest struct {
	Status ApplicationStatus `json:"status" validate:"required,oneof=Approved Rejected"`
}

type UpdateStatusResponse struct {
	Success     bool             `json:"success"`
	Message     string           `json:"message"`
	Application *LoanApplication `json:"application"`
}
