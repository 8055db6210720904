package repository

import (
	"context"
	"errors"
	"time"

	"github.com/segyhp/emi-ledger/internal/domain"
)

// ErrVersionConflict is returned when an application row changed between read and write.
var ErrVersionConflict = errors.New("repository: application version conflict")

// ApplicationRepository defines data operations on emi_applications.
// Lookups return sql.ErrNoRows when the row does not exist.
type ApplicationRepository interface {
	// Create inserts the application and fills in its ID
	Create(ctx context.Context, app *domain.LoanApplication) error

	GetByID(ctx context.Context, id int64) (*domain.LoanApplication, error)

	// GetForUpdate reads the application and, where the driver supports it, locks the row
	GetForUpdate(ctx context.Context, id int64) (*domain.LoanApplication, error)

	List(ctx context.Context, filter domain.ApplicationFilter) ([]*domain.LoanApplication, error)

	// UpdateStatus overwrites application_status
	UpdateStatus(ctx context.Context, app *domain.LoanApplication) error

	// UpdateBalance writes remaining_amount and emi_status if the row still has
	// app.Version, and returns ErrVersionConflict otherwise
	UpdateBalance(ctx context.Context, app *domain.LoanApplication) error
}

// PaymentRepository defines data operations on payments.
type PaymentRepository interface {
	// Create inserts the payment and fills in its ID
	Create(ctx context.Context, payment *domain.Payment) error

	GetByID(ctx context.Context, id int64) (*domain.Payment, error)

	ListByApplication(ctx context.Context, applicationID int64) ([]*domain.Payment, error)

	// CountByChannel counts the payments recorded for an application on one channel
	CountByChannel(ctx context.Context, applicationID int64, channel domain.PaymentChannel) (int, error)

	// MarkGatewaySettled flips a pending gateway payment to Success.
	// It reports false when the payment was not pending.
	MarkGatewaySettled(ctx context.Context, id int64, at time.Time) (bool, error)

	// ListPendingGateway returns gateway payments still pending that were created at or before cutoff
	ListPendingGateway(ctx context.Context, cutoff time.Time) ([]*domain.Payment, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
}

type VehicleRepository interface {
	Create(ctx context.Context, vehicle *domain.Vehicle) error
	GetByID(ctx context.Context, id int64) (*domain.Vehicle, error)
	List(ctx context.Context) ([]*domain.Vehicle, error)

	// Update overwrites the catalog fields and returns sql.ErrNoRows for an unknown id
	Update(ctx context.Context, vehicle *domain.Vehicle) error

	// Delete returns sql.ErrNoRows for an unknown id
	Delete(ctx context.Context, id int64) error

	// HasApplications reports whether any loan application references the vehicle
	HasApplications(ctx context.Context, id int64) (bool, error)
}

// ReportRepository serves the read-only projections.
type ReportRepository interface {
	EMIApplications(ctx context.Context, userID int64) ([]*domain.EMIApplicationView, error)
	EMIDetails(ctx context.Context, userID int64) ([]*domain.EMIDetailView, error)

	// LoanDetails joins applications with users and vehicles. ongoingOnly keeps
	// emi_status=Ongoing rows, userID scopes to one applicant when non-nil.
	LoanDetails(ctx context.Context, userID *int64, ongoingOnly bool) ([]*domain.LoanDetailView, error)

	PaymentHistory(ctx context.Context, userID int64) ([]*domain.PaymentHistoryView, error)
	ApprovedApplicationRows(ctx context.Context) ([]*domain.ApprovedApplicationRow, error)
	DueLoans(ctx context.Context) ([]*domain.DueLoanRow, error)
	DashboardStats(ctx context.Context) (*domain.DashboardStats, error)
}

// Repos is the set of repositories bound to one connection or transaction.
type Repos struct {
	Applications ApplicationRepository
	Payments     PaymentRepository
	Users        UserRepository
	Vehicles     VehicleRepository
}

type UnitOfWork interface {
	// Repos returns repositories outside any transaction
	Repos() Repos

	// WithinTx runs fn in a transaction, committed only when fn returns nil
	WithinTx(ctx context.Context, fn func(r Repos) error) error

	// WithinApplicationTx locks the application row first, then passes it in
	WithinApplicationTx(ctx context.Context, applicationID int64, fn func(r Repos, app *domain.LoanApplication) error) error
}
