// Package amortization computes fixed monthly installments and the
// month-by-month projection of a reducing-balance loan.
package amortization

import (
	"errors"
	"iter"

	"github.com/segyhp/emi-ledger/internal/domain"

	"github.com/shopspring/decimal"
)

// ErrInvalidTerms is returned when principal, rate or term is out of range.
var ErrInvalidTerms = errors.New("amortization: principal must be positive, rate non-negative and term at least one month")

// ratePlaces is the scale kept for the monthly rate.
const ratePlaces = 28

var percentMonthsPerYear = decimal.NewFromInt(1200)

// MonthlyRate converts an annual percent rate into the per-month fraction.
func MonthlyRate(annualRatePercent decimal.Decimal) decimal.Decimal {
	return annualRatePercent.DivRound(percentMonthsPerYear, ratePlaces)
}

func validate(principal, annualRatePercent decimal.Decimal, termMonths int) error {
	if !principal.IsPositive() || annualRatePercent.IsNegative() || termMonths < 1 {
		return ErrInvalidTerms
	}
	return nil
}

// ComputeInstallment returns the equated monthly installment
//
//	P * r * (1+r)^n / ((1+r)^n - 1),  r = rate/100/12
//
// rounded half away from zero to 2 decimal places. A zero rate splits the
// principal evenly.
func ComputeInstallment(principal, annualRatePercent decimal.Decimal, termMonths int) (decimal.Decimal, error) {
	if err := validate(principal, annualRatePercent, termMonths); err != nil {
		return decimal.Zero, err
	}

	if annualRatePercent.IsZero() {
		return principal.Div(decimal.NewFromInt(int64(termMonths))).Round(2), nil
	}

	r := MonthlyRate(annualRatePercent)
	factor := decimal.NewFromInt(1).Add(r).Pow(decimal.NewFromInt(int64(termMonths)))
	installment := principal.Mul(r).Mul(factor).Div(factor.Sub(decimal.NewFromInt(1)))

	return installment.Round(2), nil
}

// Schedule returns a lazy month-by-month projection. The sequence can be
// ranged over any number of times and yields the same entries each time.
// Interest is rounded to cents and the final month absorbs the rounding
// residue so the closing balance is exactly zero.
func Schedule(principal, annualRatePercent decimal.Decimal, termMonths int) (iter.Seq[domain.ScheduleEntry], error) {
	installment, err := ComputeInstallment(principal, annualRatePercent, termMonths)
	if err != nil {
		return nil, err
	}
	r := MonthlyRate(annualRatePercent)

	return func(yield func(domain.ScheduleEntry) bool) {
		balance := principal
		for month := 1; month <= termMonths; month++ {
			interest := balance.Mul(r).Round(2)
			payment := installment
			principalPart := payment.Sub(interest)

			if month == termMonths || principalPart.GreaterThan(balance) {
				principalPart = balance
				payment = principalPart.Add(interest)
			}

			balance = balance.Sub(principalPart)
			if balance.IsNegative() {
				balance = decimal.Zero
			}

			entry := domain.ScheduleEntry{
				Month:            month,
				Installment:      payment,
				Interest:         interest,
				Principal:        principalPart,
				RemainingBalance: balance,
			}
			if !yield(entry) || balance.IsZero() {
				return
			}
		}
	}, nil
}

// BuildSchedule collects Schedule into a slice.
func BuildSchedule(principal, annualRatePercent decimal.Decimal, termMonths int) ([]domain.ScheduleEntry, error) {
	seq, err := Schedule(principal, annualRatePercent, termMonths)
	if err != nil {
		return nil, err
	}

	entries := make([]domain.ScheduleEntry, 0, termMonths)
	for entry := range seq {
		entries = append(entries, entry)
	}
	return entries, nil
}

// Summarize totals a schedule. The installment reported is the one of the
// first month, later months only differ in the final adjustment.
func Summarize(entries []domain.ScheduleEntry) domain.ScheduleSummary {
	summary := domain.ScheduleSummary{
		Installment:   decimal.Zero,
		TotalInterest: decimal.Zero,
		TotalPayment:  decimal.Zero,
	}
	if len(entries) == 0 {
		return summary
	}

	summary.Installment = entries[0].Installment
	for _, e := range entries {
		summary.TotalInterest = summary.TotalInterest.Add(e.Interest)
		summary.TotalPayment = summary.TotalPayment.Add(e.Installment)
	}
	return summary
}
