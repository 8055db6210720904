package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/segyhp/emi-ledger/internal/amortization"
	"github.com/segyhp/emi-ledger/internal/cache"
	"github.com/segyhp/emi-ledger/internal/config"
	"github.com/segyhp/emi-ledger/internal/domain"
	"github.com/segyhp/emi-ledger/internal/repository"
	customError "github.com/segyhp/emi-ledger/pkg/errors"

	"github.com/shopspring/decimal"
)

// ApplicationService is the loan application ledger: submission, administrator
// decisions and application reads.
type ApplicationService struct {
	uow     repository.UnitOfWork
	reports repository.ReportRepository
	cache   cache.Store
	config  *config.Config
	now     func() time.Time
}

func NewApplicationService(
	uow repository.UnitOfWork,
	reports repository.ReportRepository,
	store cache.Store,
	config *config.Config,
) *ApplicationService {
	return &ApplicationService{
		uow:     uow,
		reports: reports,
		cache:   store,
		config:  config,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Submit records a new Pending application with its installment fixed at creation.
func (s *ApplicationService) Submit(ctx context.Context, request *domain.SubmitApplicationRequest) (*domain.LoanApplication, error) {
	emi, err := amortization.ComputeInstallment(request.LoanAmount, request.InterestRate, request.Tenure)
	if err != nil {
		return nil, customError.WrapValidation("loan_amount must be positive, interest_rate non-negative and tenure at least 1 month")
	}
	if request.LoanAmount.GreaterThan(domain.MaxMoney) || emi.GreaterThan(domain.MaxMoney) {
		return nil, customError.WrapValidation("loan_amount and its installment must not exceed " + domain.MaxMoney.String())
	}

	now := s.now()
	app := &domain.LoanApplication{
		UserID:            request.UserID,
		VehicleID:         request.VehicleID,
		LoanAmount:        request.LoanAmount,
		EMIAmount:         emi,
		Tenure:            request.Tenure,
		InterestRate:      request.InterestRate,
		ApplicationStatus: domain.ApplicationStatusPending,
		EMIStatus:         domain.EMIStatusOngoing,
		RemainingAmount:   request.LoanAmount,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	err = s.uow.WithinTx(ctx, func(r repository.Repos) error {
		if _, err := r.Users.GetByID(ctx, request.UserID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return customError.WrapUserNotFound(request.UserID)
			}
			return err
		}

		if _, err := r.Vehicles.GetByID(ctx, request.VehicleID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return customError.WrapVehicleNotFound(request.VehicleID)
			}
			return err
		}

		return r.Applications.Create(ctx, app)
	})
	if err != nil {
		return nil, businessOrDatabase(err)
	}

	invalidateUser(ctx, s.cache, app.UserID)
	slog.InfoContext(ctx, "loan application submitted",
		"application_id", app.ID,
		"user_id", app.UserID,
		"loan_amount", app.LoanAmount.String(),
		"emi_amount", app.EMIAmount.String(),
	)

	return app, nil
}

// SetStatus applies an administrator decision.
//
// By default any decision overwrites the current one, including a previous
// rejection. With strict transitions only a Pending application can be decided.
// Re-applying the current status is a no-op in both modes.
func (s *ApplicationService) SetStatus(ctx context.Context, applicationID int64, status domain.ApplicationStatus) (*domain.LoanApplication, error) {
	if !status.IsDecision() {
		return nil, customError.WrapValidation("status must be Approved or Rejected")
	}

	var updated *domain.LoanApplication
	err := s.uow.WithinApplicationTx(ctx, applicationID, func(r repository.Repos, app *domain.LoanApplication) error {
		updated = app
		if app.ApplicationStatus == status {
			return nil
		}

		if s.config.Business.StrictStatusTransitions && app.ApplicationStatus != domain.ApplicationStatusPending {
			return customError.WrapInvalidStatusTransition(string(app.ApplicationStatus), string(status))
		}

		previous := app.ApplicationStatus
		app.ApplicationStatus = status
		app.UpdatedAt = s.now()
		if err := r.Applications.UpdateStatus(ctx, app); err != nil {
			return err
		}

		slog.InfoContext(ctx, "application status changed",
			"application_id", app.ID,
			"from", previous,
			"to", status,
		)
		return nil
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapApplicationNotFound(applicationID)
		}
		return nil, businessOrDatabase(err)
	}

	invalidateUser(ctx, s.cache, updated.UserID)
	return updated, nil
}

func (s *ApplicationService) Get(ctx context.Context, applicationID int64) (*domain.LoanApplication, error) {
	app, err := s.uow.Repos().Applications.GetByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapApplicationNotFound(applicationID)
		}
		return nil, customError.WrapDatabaseError(err)
	}
	return app, nil
}

func (s *ApplicationService) ListApplications(ctx context.Context, filter domain.ApplicationFilter) ([]*domain.LoanApplication, error) {
	apps, err := s.uow.Repos().Applications.List(ctx, filter)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return apps, nil
}

// ListActiveLoans returns Ongoing applications joined with applicant and vehicle,
// for one user or for everyone when userID is nil.
func (s *ApplicationService) ListActiveLoans(ctx context.Context, userID *int64) ([]*domain.LoanDetailView, error) {
	loans, err := cachedView(ctx, s.cache, s.config.Business.ReportCacheTTL, activeLoansKey(userID), activeLoansScopes(userID),
		func() ([]*domain.LoanDetailView, error) {
			return s.reports.LoanDetails(ctx, userID, true)
		})
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return loans, nil
}

// ApplicationSchedule projects the repayment schedule of a stored application.
func (s *ApplicationService) ApplicationSchedule(ctx context.Context, applicationID int64) (*domain.ScheduleResponse, error) {
	app, err := s.Get(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	resp, err := quote(app.LoanAmount, app.InterestRate, app.Tenure)
	if err != nil {
		return nil, err
	}
	resp.ApplicationID = app.ID
	return resp, nil
}

// Quote is the EMI calculator: installment, schedule and totals for prospective terms.
func (s *ApplicationService) Quote(request *domain.CalculatorRequest) (*domain.ScheduleResponse, error) {
	return quote(request.LoanAmount, request.InterestRate, request.Tenure)
}

func quote(principal, rate decimal.Decimal, tenure int) (*domain.ScheduleResponse, error) {
	entries, err := amortization.BuildSchedule(principal, rate, tenure)
	if err != nil {
		return nil, customError.WrapValidation("loan_amount must be positive, interest_rate non-negative and tenure at least 1 month")
	}
	return &domain.ScheduleResponse{
		Summary:  amortization.Summarize(entries),
		Schedule: entries,
	}, nil
}

// businessOrDatabase passes business errors through and wraps anything else as a database failure.
func businessOrDatabase(err error) error {
	var be *customError.BusinessError
	if errors.As(err, &be) {
		return err
	}
	return customError.WrapDatabaseError(err)
}
