package repository

import (
	"context"
	"strings"

	"github.com/segyhp/emi-ledger/internal/domain"

	"github.com/jmoiron/sqlx"
)

// latestLedgerPayment joins the newest ledger payment of application a as lp.
const latestLedgerPayment = `
	LEFT JOIN payments lp ON lp.payment_id = (
		SELECT MAX(p2.payment_id) FROM payments p2
		WHERE p2.emi_application_id = a.id AND p2.channel = 'ledger'
	)`

type reportRepository struct {
	db sqlx.ExtContext
}

func NewReportRepository(db sqlx.ExtContext) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) EMIApplications(ctx context.Context, userID int64) ([]*domain.EMIApplicationView, error) {
	query := `
		SELECT a.id, a.loan_amount, a.emi_amount, a.tenure, a.interest_rate, a.application_status,
			a.emi_status, a.remaining_amount, lp.next_payment AS next_payment_due
		FROM emi_applications a` + latestLedgerPayment + `
		WHERE a.user_id = ? AND a.application_status = 'Approved'
		ORDER BY a.id
	`

	views := []*domain.EMIApplicationView{}
	if err := sqlx.SelectContext(ctx, r.db, &views, r.db.Rebind(query), userID); err != nil {
		return nil, err
	}
	return views, nil
}

func (r *reportRepository) EMIDetails(ctx context.Context, userID int64) ([]*domain.EMIDetailView, error) {
	query := `
		SELECT a.id AS application_id, a.loan_amount, a.emi_amount, a.tenure, a.interest_rate,
			a.application_status, a.emi_status, v.model_name, v.brand
		FROM emi_applications a
		JOIN vehicle v ON v.vehicle_id = a.vehicle_id
		WHERE a.user_id = ? AND a.application_status = 'Approved'
		ORDER BY a.id
	`

	views := []*domain.EMIDetailView{}
	if err := sqlx.SelectContext(ctx, r.db, &views, r.db.Rebind(query), userID); err != nil {
		return nil, err
	}
	return views, nil
}

func (r *reportRepository) LoanDetails(ctx context.Context, userID *int64, ongoingOnly bool) ([]*domain.LoanDetailView, error) {
	var (
		where []string
		args  []any
	)
	if ongoingOnly {
		where = append(where, "a.emi_status = 'Ongoing'")
	}
	if userID != nil {
		where = append(where, "a.user_id = ?")
		args = append(args, *userID)
	}

	query := `
		SELECT a.id, a.user_id, a.loan_amount, a.emi_amount, a.tenure, a.interest_rate,
			a.application_status, a.emi_status, a.remaining_amount,
			u.name, u.email, u.mobile_number, u.pan_number, u.address, u.service_type, u.monthly_income,
			v.vehicle_id, v.model_name, v.brand, v.price
		FROM emi_applications a
		JOIN users u ON u.id = a.user_id
		JOIN vehicle v ON v.vehicle_id = a.vehicle_id`
	if len(where) > 0 {
		query += "\n\t\tWHERE " + strings.Join(where, " AND ")
	}
	query += "\n\t\tORDER BY a.id"

	views := []*domain.LoanDetailView{}
	if err := sqlx.SelectContext(ctx, r.db, &views, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	return views, nil
}

func (r *reportRepository) PaymentHistory(ctx context.Context, userID int64) ([]*domain.PaymentHistoryView, error) {
	query := `
		SELECT p.payment_id, p.emi_application_id, p.user_id, p.amount, p.payment_mode, p.payment_date,
			p.next_payment, p.status, p.channel,
			a.loan_amount, a.emi_amount, a.tenure, a.emi_status, v.model_name, v.brand
		FROM payments p
		JOIN emi_applications a ON a.id = p.emi_application_id
		JOIN vehicle v ON v.vehicle_id = a.vehicle_id
		WHERE p.user_id = ?
		ORDER BY p.payment_id
	`

	views := []*domain.PaymentHistoryView{}
	if err := sqlx.SelectContext(ctx, r.db, &views, r.db.Rebind(query), userID); err != nil {
		return nil, err
	}
	return views, nil
}

func (r *reportRepository) ApprovedApplicationRows(ctx context.Context) ([]*domain.ApprovedApplicationRow, error) {
	query := `
		SELECT a.id AS application_id, a.loan_amount, a.emi_amount, a.tenure, a.interest_rate,
			a.emi_status, a.remaining_amount, a.created_at,
			u.id AS user_id, u.name AS user_name, u.email AS user_email, u.mobile_number AS user_mobile,
			p.payment_id, p.amount AS payment_amount, p.payment_date, p.next_payment, p.status AS payment_status
		FROM emi_applications a
		JOIN users u ON u.id = a.user_id
		LEFT JOIN payments p ON p.emi_application_id = a.id
		WHERE a.application_status = 'Approved'
		ORDER BY a.id, p.payment_id
	`

	rows := []*domain.ApprovedApplicationRow{}
	if err := sqlx.SelectContext(ctx, r.db, &rows, query); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *reportRepository) DueLoans(ctx context.Context) ([]*domain.DueLoanRow, error) {
	query := `
		SELECT a.id AS application_id, a.user_id, u.name AS user_name, u.email AS user_email,
			a.emi_amount, a.remaining_amount, a.created_at, lp.next_payment AS next_payment_due
		FROM emi_applications a
		JOIN users u ON u.id = a.user_id` + latestLedgerPayment + `
		WHERE a.application_status = 'Approved' AND a.emi_status = 'Ongoing'
		ORDER BY a.id
	`

	rows := []*domain.DueLoanRow{}
	if err := sqlx.SelectContext(ctx, r.db, &rows, query); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *reportRepository) DashboardStats(ctx context.Context) (*domain.DashboardStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM users) AS registered_users,
			(SELECT COUNT(*) FROM emi_applications WHERE application_status = 'Pending') AS pending_applications,
			(SELECT COUNT(*) FROM emi_applications WHERE application_status = 'Approved') AS approved_applications,
			(SELECT COUNT(*) FROM emi_applications WHERE application_status = 'Rejected') AS rejected_applications,
			(SELECT COUNT(*) FROM emi_applications WHERE emi_status = 'Completed') AS completed_loans
	`

	var stats domain.DashboardStats
	if err := sqlx.GetContext(ctx, r.db, &stats, query); err != nil {
		return nil, err
	}
	return &stats, nil
}
