package mocks

import (
	"context"
	"time"

	"github.com/segyhp/emi-ledger/internal/domain"
	"github.com/segyhp/emi-ledger/internal/repository"

	"github.com/stretchr/testify/mock"
)

var (
	_ repository.ApplicationRepository = (*MockApplicationRepository)(nil)
	_ repository.PaymentRepository     = (*MockPaymentRepository)(nil)
	_ repository.UserRepository        = (*MockUserRepository)(nil)
	_ repository.VehicleRepository     = (*MockVehicleRepository)(nil)
	_ repository.UnitOfWork            = (*MockUnitOfWork)(nil)
)

type MockApplicationRepository struct {
	mock.Mock
}

func (m *MockApplicationRepository) Create(ctx context.Context, app *domain.LoanApplication) error {
	args := m.Called(ctx, app)
	return args.Error(0)
}

func (m *MockApplicationRepository) GetByID(ctx context.Context, id int64) (*domain.LoanApplication, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoanApplication), args.Error(1)
}

func (m *MockApplicationRepository) GetForUpdate(ctx context.Context, id int64) (*domain.LoanApplication, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoanApplication), args.Error(1)
}

func (m *MockApplicationRepository) List(ctx context.Context, filter domain.ApplicationFilter) ([]*domain.LoanApplication, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.LoanApplication), args.Error(1)
}

func (m *MockApplicationRepository) UpdateStatus(ctx context.Context, app *domain.LoanApplication) error {
	args := m.Called(ctx, app)
	return args.Error(0)
}

func (m *MockApplicationRepository) UpdateBalance(ctx context.Context, app *domain.LoanApplication) error {
	args := m.Called(ctx, app)
	return args.Error(0)
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id int64) (*domain.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) ListByApplication(ctx context.Context, applicationID int64) ([]*domain.Payment, error) {
	args := m.Called(ctx, applicationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) CountByChannel(ctx context.Context, applicationID int64, channel domain.PaymentChannel) (int, error) {
	args := m.Called(ctx, applicationID, channel)
	return args.Int(0), args.Error(1)
}

func (m *MockPaymentRepository) MarkGatewaySettled(ctx context.Context, id int64, at time.Time) (bool, error) {
	args := m.Called(ctx, id, at)
	return args.Bool(0), args.Error(1)
}

func (m *MockPaymentRepository) ListPendingGateway(ctx context.Context, cutoff time.Time) ([]*domain.Payment, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Payment), args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context) ([]*domain.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.User), args.Error(1)
}

type MockVehicleRepository struct {
	mock.Mock
}

func (m *MockVehicleRepository) Create(ctx context.Context, vehicle *domain.Vehicle) error {
	args := m.Called(ctx, vehicle)
	return args.Error(0)
}

func (m *MockVehicleRepository) GetByID(ctx context.Context, id int64) (*domain.Vehicle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Vehicle), args.Error(1)
}

func (m *MockVehicleRepository) List(ctx context.Context) ([]*domain.Vehicle, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Vehicle), args.Error(1)
}

func (m *MockVehicleRepository) Update(ctx context.Context, vehicle *domain.Vehicle) error {
	args := m.Called(ctx, vehicle)
	return args.Error(0)
}

func (m *MockVehicleRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockVehicleRepository) HasApplications(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// MockUnitOfWork runs callbacks directly against its mock repositories,
// without a transaction. Expectations are set on the embedded repositories.
type MockUnitOfWork struct {
	Applications *MockApplicationRepository
	Payments     *MockPaymentRepository
	Users        *MockUserRepository
	Vehicles     *MockVehicleRepository
}

func NewMockUnitOfWork() *MockUnitOfWork {
	return &MockUnitOfWork{
		Applications: &MockApplicationRepository{},
		Payments:     &MockPaymentRepository{},
		Users:        &MockUserRepository{},
		Vehicles:     &MockVehicleRepository{},
	}
}

func (u *MockUnitOfWork) Repos() repository.Repos {
	return repository.Repos{
		Applications: u.Applications,
		Payments:     u.Payments,
		Users:        u.Users,
		Vehicles:     u.Vehicles,
	}
}

func (u *MockUnitOfWork) WithinTx(ctx context.Context, fn func(r repository.Repos) error) error {
	return fn(u.Repos())
}

func (u *MockUnitOfWork) WithinApplicationTx(ctx context.Context, applicationID int64, fn func(r repository.Repos, app *domain.LoanApplication) error) error {
	app, err := u.Applications.GetForUpdate(ctx, applicationID)
	if err != nil {
		return err
	}
	return fn(u.Repos(), app)
}

// AssertExpectations checks every repository.
func (u *MockUnitOfWork) AssertExpectations(t mock.TestingT) {
	u.Applications.AssertExpectations(t)
	u.Payments.AssertExpectations(t)
	u.Users.AssertExpectations(t)
	u.Vehicles.AssertExpectations(t)
}
