package repository

import (
	"context"
	"time"

	"github.com/segyhp/emi-ledger/internal/domain"

	"github.com/jmoiron/sqlx"
)

const paymentColumns = `payment_id, emi_application_id, user_id, amount, payment_mode, payment_date,
	next_payment, status, channel, reference, created_at, updated_at`

type paymentRepository struct {
	db sqlx.ExtContext
}

func NewPaymentRepository(db sqlx.ExtContext) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (emi_application_id, user_id, amount, payment_mode, payment_date,
			next_payment, status, channel, reference, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING payment_id
	`

	return sqlx.GetContext(ctx, r.db, &payment.ID, r.db.Rebind(query),
		payment.ApplicationID,
		payment.UserID,
		payment.Amount,
		payment.PaymentMode,
		payment.PaymentDate,
		payment.NextPayment,
		payment.Status,
		payment.Channel,
		payment.Reference,
		payment.CreatedAt,
		payment.UpdatedAt,
	)
}

func (r *paymentRepository) GetByID(ctx context.Context, id int64) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE payment_id = ?`

	var payment domain.Payment
	if err := sqlx.GetContext(ctx, r.db, &payment, r.db.Rebind(query), id); err != nil {
		return nil, err
	}

	return &payment, nil
}

func (r *paymentRepository) ListByApplication(ctx context.Context, applicationID int64) ([]*domain.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE emi_application_id = ?
		ORDER BY payment_id
	`

	payments := []*domain.Payment{}
	if err := sqlx.SelectContext(ctx, r.db, &payments, r.db.Rebind(query), applicationID); err != nil {
		return nil, err
	}

	return payments, nil
}

func (r *paymentRepository) CountByChannel(ctx context.Context, applicationID int64, channel domain.PaymentChannel) (int, error) {
	query := `SELECT COUNT(*) FROM payments WHERE emi_application_id = ? AND channel = ?`

	var count int
	if err := sqlx.GetContext(ctx, r.db, &count, r.db.Rebind(query), applicationID, channel); err != nil {
		return 0, err
	}

	return count, nil
}

func (r *paymentRepository) MarkGatewaySettled(ctx context.Context, id int64, at time.Time) (bool, error) {
	query := `
		UPDATE payments
		SET status = ?, updated_at = ?
		WHERE payment_id = ? AND channel = ? AND status = ?
	`

	res, err := r.db.ExecContext(ctx, r.db.Rebind(query),
		domain.PaymentStatusSuccess,
		at,
		id,
		domain.PaymentChannelGateway,
		domain.PaymentStatusPending,
	)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *paymentRepository) ListPendingGateway(ctx context.Context, cutoff time.Time) ([]*domain.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE channel = ? AND status = ? AND created_at <= ?
		ORDER BY payment_id
	`

	payments := []*domain.Payment{}
	err := sqlx.SelectContext(ctx, r.db, &payments, r.db.Rebind(query),
		domain.PaymentChannelGateway,
		domain.PaymentStatusPending,
		cutoff,
	)
	if err != nil {
		return nil, err
	}

	return payments, nil
}
