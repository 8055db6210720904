package repository

import (
	"context"

	"github.com/segyhp/emi-ledger/internal/domain"

	"github.com/jmoiron/sqlx"
)

type SQLUnitOfWork struct {
	db *sqlx.DB
}

func NewUnitOfWork(db *sqlx.DB) *SQLUnitOfWork {
	return &SQLUnitOfWork{db: db}
}

func newRepos(q sqlx.ExtContext) Repos {
	return Repos{
		Applications: NewApplicationRepository(q),
		Payments:     NewPaymentRepository(q),
		Users:        NewUserRepository(q),
		Vehicles:     NewVehicleRepository(q),
	}
}

func (u *SQLUnitOfWork) Repos() Repos {
	return newRepos(u.db)
}

func (u *SQLUnitOfWork) WithinTx(ctx context.Context, fn func(r Repos) error) error {
	tx, err := u.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(newRepos(tx)); err != nil {
		return err
	}

	return tx.Commit()
}

func (u *SQLUnitOfWork) WithinApplicationTx(ctx context.Context, applicationID int64, fn func(r Repos, app *domain.LoanApplication) error) error {
	return u.WithinTx(ctx, func(r Repos) error {
		// lock the application row up-front so concurrent writers queue behind us
		app, err := r.Applications.GetForUpdate(ctx, applicationID)
		if err != nil {
			return err
		}
		return fn(r, app)
	})
}
