package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/segyhp/emi-ledger/internal/domain"

	"github.com/jmoiron/sqlx"
)

const applicationColumns = `id, user_id, vehicle_id, loan_amount, emi_amount, tenure, interest_rate,
	application_status, emi_status, remaining_amount, version, created_at, updated_at`

type applicationRepository struct {
	db sqlx.ExtContext
}

// NewApplicationRepository works on either a *sqlx.DB or a *sqlx.Tx.
func NewApplicationRepository(db sqlx.ExtContext) ApplicationRepository {
	return &applicationRepository{db: db}
}

func (r *applicationRepository) Create(ctx context.Context, app *domain.LoanApplication) error {
	query := `
		INSERT INTO emi_applications (user_id, vehicle_id, loan_amount, emi_amount, tenure, interest_rate,
			application_status, emi_status, remaining_amount, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`

	return sqlx.GetContext(ctx, r.db, &app.ID, r.db.Rebind(query),
		app.UserID,
		app.VehicleID,
		app.LoanAmount,
		app.EMIAmount,
		app.Tenure,
		app.InterestRate,
		app.ApplicationStatus,
		app.EMIStatus,
		app.RemainingAmount,
		app.Version,
		app.CreatedAt,
		app.UpdatedAt,
	)
}

func (r *applicationRepository) GetByID(ctx context.Context, id int64) (*domain.LoanApplication, error) {
	query := `SELECT ` + applicationColumns + ` FROM emi_applications WHERE id = ?`

	var app domain.LoanApplication
	if err := sqlx.GetContext(ctx, r.db, &app, r.db.Rebind(query), id); err != nil {
		return nil, err
	}

	return &app, nil
}

func (r *applicationRepository) GetForUpdate(ctx context.Context, id int64) (*domain.LoanApplication, error) {
	query := forUpdate(r.db, `SELECT `+applicationColumns+` FROM emi_applications WHERE id = ?`)

	var app domain.LoanApplication
	if err := sqlx.GetContext(ctx, r.db, &app, r.db.Rebind(query), id); err != nil {
		return nil, err
	}

	return &app, nil
}

func (r *applicationRepository) List(ctx context.Context, filter domain.ApplicationFilter) ([]*domain.LoanApplication, error) {
	var (
		where []string
		args  []any
	)
	if filter.UserID != nil {
		where = append(where, "user_id = ?")
		args = append(args, *filter.UserID)
	}
	if filter.ApplicationStatus != nil {
		where = append(where, "application_status = ?")
		args = append(args, *filter.ApplicationStatus)
	}
	if filter.EMIStatus != nil {
		where = append(where, "emi_status = ?")
		args = append(args, *filter.EMIStatus)
	}

	query := `SELECT ` + applicationColumns + ` FROM emi_applications`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id"

	apps := []*domain.LoanApplication{}
	if err := sqlx.SelectContext(ctx, r.db, &apps, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}

	return apps, nil
}

func (r *applicationRepository) UpdateStatus(ctx context.Context, app *domain.LoanApplication) error {
	query := `
		UPDATE emi_applications
		SET application_status = ?, version = version + 1, updated_at = ?
		WHERE id = ?
	`

	res, err := r.db.ExecContext(ctx, r.db.Rebind(query), app.ApplicationStatus, app.UpdatedAt, app.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return sql.ErrNoRows
	}

	app.Version++
	return nil
}

func (r *applicationRepository) UpdateBalance(ctx context.Context, app *domain.LoanApplication) error {
	query := `
		UPDATE emi_applications
		SET remaining_amount = ?, emi_status = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?
	`

	res, err := r.db.ExecContext(ctx, r.db.Rebind(query),
		app.RemainingAmount,
		app.EMIStatus,
		app.UpdatedAt,
		app.ID,
		app.Version,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrVersionConflict
	}

	app.Version++
	return nil
}
