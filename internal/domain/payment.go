package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "Pending"
	PaymentStatusSuccess PaymentStatus = "Success"
)

// PaymentChannel tells which of the two payment paths produced a row.
// Only ledger rows move remaining_amount.
type PaymentChannel string

const (
	PaymentChannelLedger  PaymentChannel = "ledger"
	PaymentChannelGateway PaymentChannel = "gateway"
)

const DefaultPaymentMode = "Manual"

// Payment represents a payments row
type Payment struct {
	ID            int64           `json:"payment_id" db:"payment_id"`
	ApplicationID int64           `json:"emi_application_id" db:"emi_application_id"`
	UserID        int64           `json:"user_id" db:"user_id"`
	Amount        decimal.Decimal `json:"amount" db:"amount"`
	PaymentMode   string          `json:"payment_mode" db:"payment_mode"`
	PaymentDate   time.Time       `json:"payment_date" db:"payment_date"`
	NextPayment   *time.Time      `json:"next_payment,omitempty" db:"next_payment"`
	Status        PaymentStatus   `json:"status" db:"status"`
	Channel       PaymentChannel  `json:"channel" db:"channel"`
	Reference     string          `json:"reference,omitempty" db:"reference"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

type ApplyPaymentRequest struct {
	ApplicationID int64           `json:"emi_application_id" validate:"required,gt=0"`
	UserID        int64           `json:"user_id" validate:"required,gt=0"`
	Amount        decimal.Decimal `json:"amount" validate:"decimal_gt=0,decimal_lte=9999999999.99,money"`
	PaymentMode   string          `json:"payment_mode" validate:"omitempty,max=50"`
}

// PaymentReceipt is what the ledger accepted for one installment.
type PaymentReceipt struct {
	PaymentID       int64           `json:"payment_id"`
	ApplicationID   int64           `json:"emi_application_id"`
	RequestedAmount decimal.Decimal `json:"requested_amount"`
	AcceptedAmount  decimal.Decimal `json:"amount"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	EMIStatus       EMIStatus       `json:"emi_status"`
	NextPayment     time.Time       `json:"next_payment"`
}

type ApplyPaymentResponse struct {
	Message string `json:"message"`
	*PaymentReceipt
}

type GatewayPaymentRequest struct {
	ApplicationID int64           `json:"emi_application_id" validate:"required,gt=0"`
	UserID        int64           `json:"user_id" validate:"required,gt=0"`
	Amount        decimal.Decimal `json:"payment_amount" validate:"decimal_gt=0,decimal_lte=9999999999.99,money"`
	PaymentMode   string          `json:"payment_mode" validate:"required,max=50"`
}

type GatewayPaymentResponse struct {
	Message   string        `json:"message"`
	PaymentID int64         `json:"payment_id"`
	Status    PaymentStatus `json:"status"`
	Reference string        `json:"reference"`
}
