package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/segyhp/emi-ledger/internal/cache"
	"github.com/segyhp/emi-ledger/internal/config"
	"github.com/segyhp/emi-ledger/internal/domain"
	"github.com/segyhp/emi-ledger/internal/repository"
	customError "github.com/segyhp/emi-ledger/pkg/errors"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var submittedAt = time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)

// testEnv wires the three services against a private in-memory sqlite database.
type testEnv struct {
	db       *sqlx.DB
	cfg      *config.Config
	uow      *repository.SQLUnitOfWork
	apps     *ApplicationService
	payments *PaymentService
	reports  *ReportService
	user     *domain.User
	vehicle  *domain.Vehicle
	clock    *fakeClock
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type envOption func(*config.Config)

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()
	return newTestEnvWithCache(t, cache.Noop{}, opts...)
}

func newTestEnvWithCache(t *testing.T, store cache.Store, opts ...envOption) *testEnv {
	t.Helper()
	ctx := context.Background()

	cfg := config.Default()
	cfg.Business.GatewaySettleDelay = 20 * time.Millisecond
	for _, opt := range opts {
		opt(cfg)
	}

	db, err := repository.Open(ctx, config.DatabaseConfig{Driver: config.DriverSQLite, Name: "file::memory:?_foreign_keys=on"})
	require.NoError(t, err)
	require.NoError(t, repository.Migrate(ctx, db))

	uow := repository.NewUnitOfWork(db)
	reports := repository.NewReportRepository(db)
	clock := &fakeClock{now: submittedAt}

	env := &testEnv{
		db:       db,
		cfg:      cfg,
		uow:      uow,
		apps:     NewApplicationService(uow, reports, store, cfg),
		payments: NewPaymentService(uow, NewKeyedMutex(), store, cfg),
		reports:  NewReportService(uow, reports, store, cfg),
		clock:    clock,
	}
	env.apps.now = clock.Now
	env.payments.now = clock.Now

	// timers must stop before the database goes away
	t.Cleanup(func() {
		env.payments.Close()
		db.Close()
	})

	env.user = env.addUser(t, "asha@example.com")
	env.vehicle = &domain.Vehicle{
		ModelName: "Creta",
		Brand:     "Hyundai",
		Price:     decimal.NewFromInt(1500000),
		CreatedAt: submittedAt,
	}
	require.NoError(t, uow.Repos().Vehicles.Create(ctx, env.vehicle))

	return env
}

func (e *testEnv) addUser(t *testing.T, email string) *domain.User {
	t.Helper()
	user := &domain.User{
		Name:          "Asha Rao",
		Email:         email,
		MonthlyIncome: decimal.NewFromInt(90000),
		CreatedAt:     submittedAt,
	}
	require.NoError(t, e.uow.Repos().Users.Create(context.Background(), user))
	return user
}

func (e *testEnv) submit(t *testing.T, amount string, rate string, tenure int) *domain.LoanApplication {
	t.Helper()
	app, err := e.apps.Submit(context.Background(), &domain.SubmitApplicationRequest{
		UserID:       e.user.ID,
		VehicleID:    e.vehicle.ID,
		LoanAmount:   decimal.RequireFromString(amount),
		Tenure:       tenure,
		InterestRate: decimal.RequireFromString(rate),
	})
	require.NoError(t, err)
	return app
}

// approvedLoan submits and approves an application.
func (e *testEnv) approvedLoan(t *testing.T, amount string) *domain.LoanApplication {
	t.Helper()
	app := e.submit(t, amount, "10", 36)
	approved, err := e.apps.SetStatus(context.Background(), app.ID, domain.ApplicationStatusApproved)
	require.NoError(t, err)
	return approved
}

func (e *testEnv) pay(t *testing.T, app *domain.LoanApplication, amount string) (*domain.PaymentReceipt, error) {
	t.Helper()
	return e.payments.ApplyPayment(context.Background(), &domain.ApplyPaymentRequest{
		ApplicationID: app.ID,
		UserID:        app.UserID,
		Amount:        decimal.RequireFromString(amount),
	})
}

func (e *testEnv) reload(t *testing.T, id int64) *domain.LoanApplication {
	t.Helper()
	app, err := e.uow.Repos().Applications.GetByID(context.Background(), id)
	require.NoError(t, err)
	return app
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, code, customError.Code(err), "error: %v", err)
}
