package domain

import (
	"github.com/shopspring/decimal"
)

// ScheduleEntry is one month of an amortization projection.
type ScheduleEntry struct {
	Month            int             `json:"month"`
	Installment      decimal.Decimal `json:"installment"`
	Interest         decimal.Decimal `json:"interest"`
	Principal        decimal.Decimal `json:"principal"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
}

// ScheduleSummary totals a projection.
type ScheduleSummary struct {
	Installment   decimal.Decimal `json:"installment"`
	TotalInterest decimal.Decimal `json:"total_interest"`
	TotalPayment  decimal.Decimal `json:"total_payment"`
}

type ScheduleResponse struct {
	ApplicationID int64           `json:"application_id,omitempty"`
	Summary       ScheduleSummary `json:"summary"`
	Schedule      []ScheduleEntry `json:"schedule"`
}

type CalculatorRequest struct {
	LoanAmount   decimal.Decimal `json:"loan_amount" validate:"decimal_gt=0,decimal_lte=9999999999.99,money"`
	InterestRate decimal.Decimal `json:"interest_rate" validate:"decimal_gte=0,decimal_lte=100,money"`
	Tenure       int             `json:"tenure" validate:"required,gt=0,lte=600"`
}
