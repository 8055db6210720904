package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// User is the applicant identity and KYC profile. Rows are written by signup.
type User struct {
	ID               int64           `json:"id" db:"id"`
	Name             string          `json:"name" db:"name"`
	Email            string          `json:"email" db:"email"`
	MobileNumber     string          `json:"mobileNumber" db:"mobile_number"`
	PanNumber        string          `json:"panNumber" db:"pan_number"`
	DOB              *time.Time      `json:"dob,omitempty" db:"dob"`
	Address          string          `json:"address" db:"address"`
	ServiceType      string          `json:"serviceType" db:"service_type"`
	MonthlyIncome    decimal.Decimal `json:"monthlyIncome" db:"monthly_income"`
	AddressProofFile string          `json:"addressProofFile,omitempty" db:"address_proof_file"`
	PanFile          string          `json:"panFile,omitempty" db:"pan_file"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
}

// Vehicle is a catalog entry maintained by administrators.
type Vehicle struct {
	ID        int64           `json:"vehicle_id" db:"vehicle_id"`
	ModelName string          `json:"model_name" db:"model_name"`
	Brand     string          `json:"brand" db:"brand"`
	MFD       *time.Time      `json:"mfd,omitempty" db:"mfd"`
	Price     decimal.Decimal `json:"price" db:"price"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

// RegisterUserRequest is the signup form without credentials or document uploads.
type RegisterUserRequest struct {
	Name          string          `json:"name" validate:"required,max=100"`
	Email         string          `json:"email" validate:"required,email,max=255"`
	MobileNumber  string          `json:"mobileNumber" validate:"required,e164|numeric,min=7,max=20"`
	PanNumber     string          `json:"panNumber" validate:"required,max=20"`
	DOB           *Date           `json:"dob,omitempty"`
	Address       string          `json:"address" validate:"required"`
	ServiceType   string          `json:"serviceType" validate:"required,max=50"`
	MonthlyIncome decimal.Decimal `json:"monthlyIncome" validate:"decimal_gte=0,decimal_lte=9999999999.99,money"`
}

type RegisterUserResponse struct {
	Message string `json:"message"`
	User    *User  `json:"user"`
}

// VehicleRequest creates or replaces a catalog entry.
type VehicleRequest struct {
	ModelName string          `json:"model_name" validate:"required,max=100"`
	Brand     string          `json:"brand" validate:"max=100"`
	MFD       *Date           `json:"mfd,omitempty"`
	Price     decimal.Decimal `json:"price" validate:"decimal_gte=0,decimal_lte=9999999999.99,money"`
}

type VehicleResponse struct {
	Message string   `json:"message"`
	Vehicle *Vehicle `json:"vehicle,omitempty"`
}

// Date is a calendar day carried as YYYY-MM-DD in JSON.
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return fmt.Errorf("date must be YYYY-MM-DD: %w", err)
	}
	d.Time = t
	return nil
}

// TimePtr returns the day as a *time.Time, nil when unset.
func (d *Date) TimePtr() *time.Time {
	if d == nil || d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}
