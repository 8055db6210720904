package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Read projections served by the reporting facade. They are never written back.

// EMIApplicationView is an approved application with its repayment position.
type EMIApplicationView struct {
	ID                int64             `json:"id" db:"id"`
	LoanAmount        decimal.Decimal   `json:"loan_amount" db:"loan_amount"`
	EMIAmount         decimal.Decimal   `json:"emi_amount" db:"emi_amount"`
	Tenure            int               `json:"tenure" db:"tenure"`
	InterestRate      decimal.Decimal   `json:"interest_rate" db:"interest_rate"`
	ApplicationStatus ApplicationStatus `json:"application_status" db:"application_status"`
	EMIStatus         EMIStatus         `json:"emi_status" db:"emi_status"`
	RemainingAmount   decimal.Decimal   `json:"remaining_amount" db:"remaining_amount"`
	NextPaymentDue    *time.Time        `json:"next_payment_due" db:"next_payment_due"`
	PaidPercent       decimal.Decimal   `json:"paid_percent" db:"-"`
}

// EMIDetailView pairs an approved application with the financed vehicle.
type EMIDetailView struct {
	ApplicationID     int64             `json:"application_id" db:"application_id"`
	LoanAmount        decimal.Decimal   `json:"loan_amount" db:"loan_amount"`
	EMIAmount         decimal.Decimal   `json:"emi_amount" db:"emi_amount"`
	Tenure            int               `json:"tenure" db:"tenure"`
	InterestRate      decimal.Decimal   `json:"interest_rate" db:"interest_rate"`
	ApplicationStatus ApplicationStatus `json:"application_status" db:"application_status"`
	EMIStatus         EMIStatus         `json:"emi_status" db:"emi_status"`
	ModelName         string            `json:"model_name" db:"model_name"`
	Brand             string            `json:"brand" db:"brand"`
}

// LoanDetailView joins an application with its applicant and vehicle.
type LoanDetailView struct {
	ID                int64             `json:"id" db:"id"`
	UserID            int64             `json:"user_id" db:"user_id"`
	LoanAmount        decimal.Decimal   `json:"loan_amount" db:"loan_amount"`
	EMIAmount         decimal.Decimal   `json:"emi_amount" db:"emi_amount"`
	Tenure            int               `json:"tenure" db:"tenure"`
	InterestRate      decimal.Decimal   `json:"interest_rate" db:"interest_rate"`
	ApplicationStatus ApplicationStatus `json:"application_status" db:"application_status"`
	EMIStatus         EMIStatus         `json:"emi_status" db:"emi_status"`
	RemainingAmount   decimal.Decimal   `json:"remaining_amount" db:"remaining_amount"`
	Name              string            `json:"name" db:"name"`
	Email             string            `json:"email" db:"email"`
	MobileNumber      string            `json:"mobileNumber" db:"mobile_number"`
	PanNumber         string            `json:"panNumber" db:"pan_number"`
	Address           string            `json:"address" db:"address"`
	ServiceType       string            `json:"serviceType" db:"service_type"`
	MonthlyIncome     decimal.Decimal   `json:"monthlyIncome" db:"monthly_income"`
	VehicleID         int64             `json:"vehicle_id" db:"vehicle_id"`
	ModelName         string            `json:"model_name" db:"model_name"`
	Brand             string            `json:"brand" db:"brand"`
	Price             decimal.Decimal   `json:"price" db:"price"`
}

// PaymentHistoryView is a payment with the loan and vehicle it repaid.
type PaymentHistoryView struct {
	PaymentID     int64           `json:"payment_id" db:"payment_id"`
	ApplicationID int64           `json:"emi_application_id" db:"emi_application_id"`
	UserID        int64           `json:"user_id" db:"user_id"`
	Amount        decimal.Decimal `json:"amount" db:"amount"`
	PaymentMode   string          `json:"payment_mode" db:"payment_mode"`
	PaymentDate   time.Time       `json:"payment_date" db:"payment_date"`
	NextPayment   *time.Time      `json:"next_payment" db:"next_payment"`
	Status        PaymentStatus   `json:"status" db:"status"`
	Channel       PaymentChannel  `json:"channel" db:"channel"`
	LoanAmount    decimal.Decimal `json:"loan_amount" db:"loan_amount"`
	EMIAmount     decimal.Decimal `json:"emi_amount" db:"emi_amount"`
	Tenure        int             `json:"tenure" db:"tenure"`
	EMIStatus     EMIStatus       `json:"emi_status" db:"emi_status"`
	ModelName     string          `json:"model_name" db:"model_name"`
	Brand         string          `json:"brand" db:"brand"`
}

// ApprovedApplicationRow is one application/payment pair as read from the store.
// A nil PaymentID means the application has no payments yet.
type ApprovedApplicationRow struct {
	ApplicationID   int64               `db:"application_id"`
	LoanAmount      decimal.Decimal     `db:"loan_amount"`
	EMIAmount       decimal.Decimal     `db:"emi_amount"`
	Tenure          int                 `db:"tenure"`
	InterestRate    decimal.Decimal     `db:"interest_rate"`
	EMIStatus       EMIStatus           `db:"emi_status"`
	RemainingAmount decimal.Decimal     `db:"remaining_amount"`
	CreatedAt       time.Time           `db:"created_at"`
	UserID          int64               `db:"user_id"`
	UserName        string              `db:"user_name"`
	UserEmail       string              `db:"user_email"`
	UserMobile      string              `db:"user_mobile"`
	PaymentID       *int64              `db:"payment_id"`
	PaymentAmount   decimal.NullDecimal `db:"payment_amount"`
	PaymentDate     *time.Time          `db:"payment_date"`
	NextPayment     *time.Time          `db:"next_payment"`
	PaymentStatus   *PaymentStatus      `db:"payment_status"`
}

// ApprovedApplicationView groups the payments of one approved application.
type ApprovedApplicationView struct {
	ApplicationID   int64            `json:"application_id"`
	LoanAmount      decimal.Decimal  `json:"loan_amount"`
	EMIAmount       decimal.Decimal  `json:"emi_amount"`
	Tenure          int              `json:"tenure"`
	InterestRate    decimal.Decimal  `json:"interest_rate"`
	EMIStatus       EMIStatus        `json:"emi_status"`
	RemainingAmount decimal.Decimal  `json:"remaining_amount"`
	CreatedAt       time.Time        `json:"created_at"`
	User            ApplicantSummary `json:"user"`
	Payments        []PaymentSummary `json:"payments"`
}

type ApplicantSummary struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Mobile string `json:"mobile"`
}

type PaymentSummary struct {
	PaymentID   int64           `json:"payment_id"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate time.Time       `json:"payment_date"`
	NextPayment *time.Time      `json:"next_payment,omitempty"`
	Status      PaymentStatus   `json:"status"`
}

// DueLoanRow is an approved, ongoing application with its last scheduled due date.
type DueLoanRow struct {
	ApplicationID   int64           `db:"application_id"`
	UserID          int64           `db:"user_id"`
	UserName        string          `db:"user_name"`
	UserEmail       string          `db:"user_email"`
	EMIAmount       decimal.Decimal `db:"emi_amount"`
	RemainingAmount decimal.Decimal `db:"remaining_amount"`
	CreatedAt       time.Time       `db:"created_at"`
	NextPaymentDue  *time.Time      `db:"next_payment_due"`
}

// OverdueLoanView is a loan whose next installment date has passed.
type OverdueLoanView struct {
	ApplicationID   int64           `json:"application_id"`
	UserID          int64           `json:"user_id"`
	UserName        string          `json:"user_name"`
	UserEmail       string          `json:"user_email"`
	EMIAmount       decimal.Decimal `json:"emi_amount"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	DueDate         time.Time       `json:"due_date"`
	DaysOverdue     int             `json:"days_overdue"`
}

// DashboardStats are the counters shown on the administrator home page.
type DashboardStats struct {
	RegisteredUsers      int `json:"totalRegisteredUsers" db:"registered_users"`
	PendingApplications  int `json:"pendingLoanApps" db:"pending_applications"`
	ApprovedApplications int `json:"approvedLoanApps" db:"approved_applications"`
	RejectedApplications int `json:"rejectedLoanApps" db:"rejected_applications"`
	CompletedLoans       int `json:"disbursedLoanApps" db:"completed_loans"`
}
