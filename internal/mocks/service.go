package mocks

import (
	"context"
	"time"

	"github.com/segyhp/emi-ledger/internal/domain"

	"github.com/stretchr/testify/mock"
)

type MockApplicationLedger struct {
	mock.Mock
}

func (m *MockApplicationLedger) Submit(ctx context.Context, request *domain.SubmitApplicationRequest) (*domain.LoanApplication, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoanApplication), args.Error(1)
}

func (m *MockApplicationLedger) SetStatus(ctx context.Context, applicationID int64, status domain.ApplicationStatus) (*domain.LoanApplication, error) {
	args := m.Called(ctx, applicationID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoanApplication), args.Error(1)
}

func (m *MockApplicationLedger) Get(ctx context.Context, applicationID int64) (*domain.LoanApplication, error) {
	args := m.Called(ctx, applicationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoanApplication), args.Error(1)
}

func (m *MockApplicationLedger) ListApplications(ctx context.Context, filter domain.ApplicationFilter) ([]*domain.LoanApplication, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.LoanApplication), args.Error(1)
}

func (m *MockApplicationLedger) ListActiveLoans(ctx context.Context, userID *int64) ([]*domain.LoanDetailView, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.LoanDetailView), args.Error(1)
}

func (m *MockApplicationLedger) ApplicationSchedule(ctx context.Context, applicationID int64) (*domain.ScheduleResponse, error) {
	args := m.Called(ctx, applicationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ScheduleResponse), args.Error(1)
}

func (m *MockApplicationLedger) Quote(request *domain.CalculatorRequest) (*domain.ScheduleResponse, error) {
	args := m.Called(request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ScheduleResponse), args.Error(1)
}

type MockPaymentLedger struct {
	mock.Mock
}

func (m *MockPaymentLedger) ApplyPayment(ctx context.Context, request *domain.ApplyPaymentRequest) (*domain.PaymentReceipt, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentReceipt), args.Error(1)
}

func (m *MockPaymentLedger) SimulateGatewayPayment(ctx context.Context, request *domain.GatewayPaymentRequest) (*domain.Payment, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentLedger) GetPayment(ctx context.Context, paymentID int64) (*domain.Payment, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentLedger) ListPayments(ctx context.Context, applicationID int64) ([]*domain.Payment, error) {
	args := m.Called(ctx, applicationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Payment), args.Error(1)
}

type MockReportFacade struct {
	mock.Mock
}

func (m *MockReportFacade) EMIApplications(ctx context.Context, userID int64) ([]*domain.EMIApplicationView, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.EMIApplicationView), args.Error(1)
}

func (m *MockReportFacade) EMIDetails(ctx context.Context, userID int64) ([]*domain.EMIDetailView, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.EMIDetailView), args.Error(1)
}

func (m *MockReportFacade) LoanDetails(ctx context.Context) ([]*domain.LoanDetailView, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.LoanDetailView), args.Error(1)
}

func (m *MockReportFacade) PaymentHistory(ctx context.Context, userID int64) ([]*domain.PaymentHistoryView, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.PaymentHistoryView), args.Error(1)
}

func (m *MockReportFacade) ApprovedApplications(ctx context.Context) ([]*domain.ApprovedApplicationView, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ApprovedApplicationView), args.Error(1)
}

func (m *MockReportFacade) OverdueLoans(ctx context.Context, asOf time.Time) ([]*domain.OverdueLoanView, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.OverdueLoanView), args.Error(1)
}

func (m *MockReportFacade) DashboardStats(ctx context.Context) (*domain.DashboardStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DashboardStats), args.Error(1)
}

func (m *MockReportFacade) GetVehicle(ctx context.Context, vehicleID int64) (*domain.Vehicle, error) {
	args := m.Called(ctx, vehicleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Vehicle), args.Error(1)
}

func (m *MockReportFacade) ListVehicles(ctx context.Context) ([]*domain.Vehicle, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Vehicle), args.Error(1)
}

func (m *MockReportFacade) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type MockCatalogAdmin struct {
	mock.Mock
}

func (m *MockCatalogAdmin) RegisterUser(ctx context.Context, request *domain.RegisterUserRequest) (*domain.User, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockCatalogAdmin) ListUsers(ctx context.Context) ([]*domain.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.User), args.Error(1)
}

func (m *MockCatalogAdmin) CreateVehicle(ctx context.Context, request *domain.VehicleRequest) (*domain.Vehicle, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Vehicle), args.Error(1)
}

func (m *MockCatalogAdmin) UpdateVehicle(ctx context.Context, vehicleID int64, request *domain.VehicleRequest) (*domain.Vehicle, error) {
	args := m.Called(ctx, vehicleID, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Vehicle), args.Error(1)
}

func (m *MockCatalogAdmin) DeleteVehicle(ctx context.Context, vehicleID int64) error {
	args := m.Called(ctx, vehicleID)
	return args.Error(0)
}
