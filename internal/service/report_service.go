package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/segyhp/emi-ledger/internal/cache"
	"github.com/segyhp/emi-ledger/internal/config"
	"github.com/segyhp/emi-ledger/internal/domain"
	"github.com/segyhp/emi-ledger/internal/repository"
	customError "github.com/segyhp/emi-ledger/pkg/errors"
	"github.com/segyhp/emi-ledger/pkg/utils"
)

// ReportService is the read-only query facade over the ledger.
type ReportService struct {
	uow     repository.UnitOfWork
	reports repository.ReportRepository
	cache   cache.Store
	config  *config.Config
}

func NewReportService(
	uow repository.UnitOfWork,
	reports repository.ReportRepository,
	store cache.Store,
	config *config.Config,
) *ReportService {
	return &ReportService{
		uow:     uow,
		reports: reports,
		cache:   store,
		config:  config,
	}
}

// EMIApplications lists a user's approved applications with balance and next due date.
func (s *ReportService) EMIApplications(ctx context.Context, userID int64) ([]*domain.EMIApplicationView, error) {
	views, err := cachedView(ctx, s.cache, s.config.Business.ReportCacheTTL, emiApplicationsKey(userID), userViewScopes(userID),
		func() ([]*domain.EMIApplicationView, error) {
			views, err := s.reports.EMIApplications(ctx, userID)
			if err != nil {
				return nil, err
			}
			for _, v := range views {
				v.PaidPercent = utils.PaidPercent(v.LoanAmount, v.RemainingAmount)
			}
			return views, nil
		})
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return views, nil
}

func (s *ReportService) EMIDetails(ctx context.Context, userID int64) ([]*domain.EMIDetailView, error) {
	views, err := cachedView(ctx, s.cache, s.config.Business.ReportCacheTTL, emiDetailsKey(userID), userViewScopes(userID),
		func() ([]*domain.EMIDetailView, error) {
			return s.reports.EMIDetails(ctx, userID)
		})
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return views, nil
}

func (s *ReportService) LoanDetails(ctx context.Context) ([]*domain.LoanDetailView, error) {
	views, err := s.reports.LoanDetails(ctx, nil, false)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return views, nil
}

func (s *ReportService) PaymentHistory(ctx context.Context, userID int64) ([]*domain.PaymentHistoryView, error) {
	views, err := s.reports.PaymentHistory(ctx, userID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return views, nil
}

// ApprovedApplications groups every approved application with its payments.
func (s *ReportService) ApprovedApplications(ctx context.Context) ([]*domain.ApprovedApplicationView, error) {
	rows, err := s.reports.ApprovedApplicationRows(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	views := []*domain.ApprovedApplicationView{}
	byID := make(map[int64]*domain.ApprovedApplicationView)
	for _, row := range rows {
		view, ok := byID[row.ApplicationID]
		if !ok {
			view = &domain.ApprovedApplicationView{
				ApplicationID:   row.ApplicationID,
				LoanAmount:      row.LoanAmount,
				EMIAmount:       row.EMIAmount,
				Tenure:          row.Tenure,
				InterestRate:    row.InterestRate,
				EMIStatus:       row.EMIStatus,
				RemainingAmount: row.RemainingAmount,
				CreatedAt:       row.CreatedAt,
				User: domain.ApplicantSummary{
					ID:     row.UserID,
					Name:   row.UserName,
					Email:  row.UserEmail,
					Mobile: row.UserMobile,
				},
				Payments: []domain.PaymentSummary{},
			}
			byID[row.ApplicationID] = view
			views = append(views, view)
		}

		if row.PaymentID == nil {
			continue
		}
		payment := domain.PaymentSummary{
			PaymentID:   *row.PaymentID,
			Amount:      row.PaymentAmount.Decimal,
			NextPayment: row.NextPayment,
		}
		if row.PaymentDate != nil {
			payment.PaymentDate = *row.PaymentDate
		}
		if row.PaymentStatus != nil {
			payment.Status = *row.PaymentStatus
		}
		view.Payments = append(view.Payments, payment)
	}

	return views, nil
}

// OverdueLoans lists approved, ongoing loans whose next installment was due before asOf.
// A loan without ledger payments is first due one payment cycle after submission.
func (s *ReportService) OverdueLoans(ctx context.Context, asOf time.Time) ([]*domain.OverdueLoanView, error) {
	rows, err := s.reports.DueLoans(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	overdue := []*domain.OverdueLoanView{}
	for _, row := range rows {
		due := utils.CalculateNextDueDate(row.CreatedAt, 1, s.config.Business.PaymentCycleDays)
		if row.NextPaymentDue != nil {
			due = *row.NextPaymentDue
		}
		if !utils.IsDateOverdue(due, asOf) {
			continue
		}

		overdue = append(overdue, &domain.OverdueLoanView{
			ApplicationID:   row.ApplicationID,
			UserID:          row.UserID,
			UserName:        row.UserName,
			UserEmail:       row.UserEmail,
			EMIAmount:       row.EMIAmount,
			RemainingAmount: row.RemainingAmount,
			DueDate:         due,
			DaysOverdue:     utils.DaysOverdue(due, asOf),
		})
	}

	return overdue, nil
}

func (s *ReportService) DashboardStats(ctx context.Context) (*domain.DashboardStats, error) {
	stats, err := s.reports.DashboardStats(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return stats, nil
}

func (s *ReportService) GetVehicle(ctx context.Context, vehicleID int64) (*domain.Vehicle, error) {
	vehicle, err := s.uow.Repos().Vehicles.GetByID(ctx, vehicleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapVehicleNotFound(vehicleID)
		}
		return nil, customError.WrapDatabaseError(err)
	}
	return vehicle, nil
}

func (s *ReportService) ListVehicles(ctx context.Context) ([]*domain.Vehicle, error) {
	vehicles, err := s.uow.Repos().Vehicles.List(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return vehicles, nil
}

func (s *ReportService) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.uow.Repos().Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapUserNotFound(userID)
		}
		return nil, customError.WrapDatabaseError(err)
	}
	return user, nil
}
