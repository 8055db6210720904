package utils

import (
	"time"

	"github.com/shopspring/decimal"
)

// CalculateNextDueDate returns the due date recorded with the k-th installment
// (k is 1-based and includes the payment being recorded).
// Formula: paidAt + cycleDays*k days
func CalculateNextDueDate(paidAt time.Time, installmentNumber, cycleDays int) time.Time {
	return paidAt.AddDate(0, 0, cycleDays*installmentNumber)
}

// IsDateOverdue checks if a due date is before the reference time
func IsDateOverdue(dueDate, asOf time.Time) bool {
	return asOf.After(dueDate)
}

// DaysOverdue returns whole days elapsed since dueDate, or 0 when not overdue.
func DaysOverdue(dueDate, asOf time.Time) int {
	if !IsDateOverdue(dueDate, asOf) {
		return 0
	}
	return int(asOf.Sub(dueDate).Hours() / 24)
}

// PaidPercent returns the share of the principal already repaid, clamped to [0, 100].
func PaidPercent(loanAmount, remaining decimal.Decimal) decimal.Decimal {
	if !loanAmount.IsPositive() {
		return decimal.Zero
	}
	hundred := decimal.NewFromInt(100)
	pct := loanAmount.Sub(remaining).Div(loanAmount).Mul(hundred).Round(2)
	if pct.IsNegative() {
		return decimal.Zero
	}
	if pct.GreaterThan(hundred) {
		return hundred
	}
	return pct
}

// HasAtMostPlaces reports whether d has no more than places fraction digits.
func HasAtMostPlaces(d decimal.Decimal, places int32) bool {
	return d.Equal(d.Round(places))
}

// DecimalFromString converts string to decimal.Decimal
func DecimalFromString(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}
