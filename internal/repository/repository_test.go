package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/segyhp/emi-ledger/internal/config"
	"github.com/segyhp/emi-ledger/internal/domain"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	ctx := context.Background()

	db, err := Open(ctx, config.DatabaseConfig{Driver: config.DriverSQLite, Name: "file::memory:?_foreign_keys=on"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, Migrate(ctx, db))
	// second run must be a no-op
	require.NoError(t, Migrate(ctx, db))
	return db
}

var testNow = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

type fixture struct {
	user    *domain.User
	vehicle *domain.Vehicle
}

func seedCatalog(t *testing.T, db *sqlx.DB, email string) fixture {
	t.Helper()
	ctx := context.Background()

	user := &domain.User{
		Name:          "Asha Rao",
		Email:         email,
		MobileNumber:  "9876543210",
		PanNumber:     "ABCDE1234F",
		Address:       "12 MG Road",
		ServiceType:   "Salaried",
		MonthlyIncome: decimal.NewFromInt(85000),
		CreatedAt:     testNow,
	}
	require.NoError(t, NewUserRepository(db).Create(ctx, user))

	vehicle := &domain.Vehicle{
		ModelName: "Nexon EV",
		Brand:     "Tata",
		Price:     decimal.NewFromInt(1450000),
		CreatedAt: testNow,
	}
	require.NoError(t, NewVehicleRepository(db).Create(ctx, vehicle))

	return fixture{user: user, vehicle: vehicle}
}

func seedApplication(t *testing.T, db *sqlx.DB, f fixture, status domain.ApplicationStatus, amount string) *domain.LoanApplication {
	t.Helper()

	principal := decimal.RequireFromString(amount)
	app := &domain.LoanApplication{
		UserID:            f.user.ID,
		VehicleID:         f.vehicle.ID,
		LoanAmount:        principal,
		EMIAmount:         decimal.RequireFromString("3226.72"),
		Tenure:            36,
		InterestRate:      decimal.NewFromInt(10),
		ApplicationStatus: status,
		EMIStatus:         domain.EMIStatusOngoing,
		RemainingAmount:   principal,
		CreatedAt:         testNow,
		UpdatedAt:         testNow,
	}
	require.NoError(t, NewApplicationRepository(db).Create(context.Background(), app))
	return app
}

func seedPayment(t *testing.T, db *sqlx.DB, app *domain.LoanApplication, channel domain.PaymentChannel, status domain.PaymentStatus, amount string, next *time.Time) *domain.Payment {
	t.Helper()

	p := &domain.Payment{
		ApplicationID: app.ID,
		UserID:        app.UserID,
		Amount:        decimal.RequireFromString(amount),
		PaymentMode:   domain.DefaultPaymentMode,
		PaymentDate:   testNow,
		NextPayment:   next,
		Status:        status,
		Channel:       channel,
		CreatedAt:     testNow,
		UpdatedAt:     testNow,
	}
	require.NoError(t, NewPaymentRepository(db).Create(context.Background(), p))
	return p
}

func TestApplicationRepository_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	f := seedCatalog(t, db, "asha@example.com")
	app := seedApplication(t, db, f, domain.ApplicationStatusPending, "100000.50")

	got, err := NewApplicationRepository(db).GetByID(context.Background(), app.ID)
	require.NoError(t, err)

	assert.Equal(t, app.ID, got.ID)
	assert.Equal(t, "100000.50", got.LoanAmount.StringFixed(2))
	assert.True(t, got.RemainingAmount.Equal(got.LoanAmount))
	assert.Equal(t, domain.ApplicationStatusPending, got.ApplicationStatus)
	assert.Equal(t, domain.EMIStatusOngoing, got.EMIStatus)
	assert.True(t, testNow.Equal(got.CreatedAt))
	assert.Equal(t, int64(0), got.Version)
}

func TestApplicationRepository_GetMissing(t *testing.T) {
	db := newTestDB(t)

	_, err := NewApplicationRepository(db).GetByID(context.Background(), 42)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestApplicationRepository_List(t *testing.T) {
	db := newTestDB(t)
	asha := seedCatalog(t, db, "asha@example.com")
	ravi := seedCatalog(t, db, "ravi@example.com")

	seedApplication(t, db, asha, domain.ApplicationStatusPending, "1000")
	seedApplication(t, db, asha, domain.ApplicationStatusApproved, "2000")
	seedApplication(t, db, ravi, domain.ApplicationStatusApproved, "3000")

	repo := NewApplicationRepository(db)
	ctx := context.Background()
	approved := domain.ApplicationStatusApproved

	all, err := repo.List(ctx, domain.ApplicationFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	mine, err := repo.List(ctx, domain.ApplicationFilter{UserID: &asha.user.ID})
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	mineApproved, err := repo.List(ctx, domain.ApplicationFilter{UserID: &asha.user.ID, ApplicationStatus: &approved})
	require.NoError(t, err)
	require.Len(t, mineApproved, 1)
	assert.Equal(t, "2000", mineApproved[0].LoanAmount.String())
}

func TestApplicationRepository_UpdateStatus(t *testing.T) {
	db := newTestDB(t)
	f := seedCatalog(t, db, "asha@example.com")
	app := seedApplication(t, db, f, domain.ApplicationStatusPending, "1000")
	repo := NewApplicationRepository(db)
	ctx := context.Background()

	app.ApplicationStatus = domain.ApplicationStatusApproved
	app.UpdatedAt = testNow.Add(time.Hour)
	require.NoError(t, repo.UpdateStatus(ctx, app))
	assert.Equal(t, int64(1), app.Version)

	got, err := repo.GetByID(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationStatusApproved, got.ApplicationStatus)
	assert.Equal(t, int64(1), got.Version)

	missing := &domain.LoanApplication{ID: 999, ApplicationStatus: domain.ApplicationStatusRejected}
	assert.ErrorIs(t, repo.UpdateStatus(ctx, missing), sql.ErrNoRows)
}

func TestApplicationRepository_UpdateBalanceVersionCheck(t *testing.T) {
	db := newTestDB(t)
	f := seedCatalog(t, db, "asha@example.com")
	app := seedApplication(t, db, f, domain.ApplicationStatusApproved, "1000")
	repo := NewApplicationRepository(db)
	ctx := context.Background()

	stale := *app

	app.RemainingAmount = decimal.NewFromInt(600)
	require.NoError(t, repo.UpdateBalance(ctx, app))
	assert.Equal(t, int64(1), app.Version)

	stale.RemainingAmount = decimal.NewFromInt(900)
	assert.ErrorIs(t, repo.UpdateBalance(ctx, &stale), ErrVersionConflict)

	got, err := repo.GetByID(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, "600", got.RemainingAmount.String())
}

func TestPaymentRepository(t *testing.T) {
	db := newTestDB(t)
	f := seedCatalog(t, db, "asha@example.com")
	app := seedApplication(t, db, f, domain.ApplicationStatusApproved, "1000")
	repo := NewPaymentRepository(db)
	ctx := context.Background()

	next := testNow.AddDate(0, 0, 30)
	ledger := seedPayment(t, db, app, domain.PaymentChannelLedger, domain.PaymentStatusSuccess, "250.25", &next)
	gateway := seedPayment(t, db, app, domain.PaymentChannelGateway, domain.PaymentStatusPending, "100", nil)

	t.Run("get", func(t *testing.T) {
		got, err := repo.GetByID(ctx, ledger.ID)
		require.NoError(t, err)
		assert.Equal(t, "250.25", got.Amount.String())
		require.NotNil(t, got.NextPayment)
		assert.True(t, next.Equal(*got.NextPayment))

		gw, err := repo.GetByID(ctx, gateway.ID)
		require.NoError(t, err)
		assert.Nil(t, gw.NextPayment)

		_, err = repo.GetByID(ctx, 999)
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})

	t.Run("count by channel", func(t *testing.T) {
		n, err := repo.CountByChannel(ctx, app.ID, domain.PaymentChannelLedger)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("list by application", func(t *testing.T) {
		list, err := repo.ListByApplication(ctx, app.ID)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, ledger.ID, list[0].ID)
	})

	t.Run("pending gateway sweep", func(t *testing.T) {
		pending, err := repo.ListPendingGateway(ctx, testNow.Add(time.Minute))
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, gateway.ID, pending[0].ID)

		none, err := repo.ListPendingGateway(ctx, testNow.Add(-time.Minute))
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("settle gateway once", func(t *testing.T) {
		ok, err := repo.MarkGatewaySettled(ctx, gateway.ID, testNow.Add(2*time.Second))
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = repo.MarkGatewaySettled(ctx, gateway.ID, testNow.Add(3*time.Second))
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = repo.MarkGatewaySettled(ctx, ledger.ID, testNow)
		require.NoError(t, err)
		assert.False(t, ok, "ledger payments are never settled by the gateway")

		got, err := repo.GetByID(ctx, gateway.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentStatusSuccess, got.Status)
	})
}

func TestPaymentRepository_ForeignKeys(t *testing.T) {
	db := newTestDB(t)
	f := seedCatalog(t, db, "asha@example.com")

	err := NewPaymentRepository(db).Create(context.Background(), &domain.Payment{
		ApplicationID: 12345,
		UserID:        f.user.ID,
		Amount:        decimal.NewFromInt(10),
		PaymentMode:   domain.DefaultPaymentMode,
		PaymentDate:   testNow,
		Status:        domain.PaymentStatusSuccess,
		Channel:       domain.PaymentChannelLedger,
		CreatedAt:     testNow,
		UpdatedAt:     testNow,
	})
	assert.Error(t, err)
}

func TestCatalogRepositories(t *testing.T) {
	db := newTestDB(t)
	f := seedCatalog(t, db, "asha@example.com")
	ctx := context.Background()

	user, err := NewUserRepository(db).GetByID(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", user.Email)
	assert.Equal(t, "85000", user.MonthlyIncome.String())

	vehicles, err := NewVehicleRepository(db).List(ctx)
	require.NoError(t, err)
	require.Len(t, vehicles, 1)
	assert.Equal(t, "Nexon EV", vehicles[0].ModelName)

	_, err = NewVehicleRepository(db).GetByID(ctx, 77)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestUnitOfWork_RollsBackOnError(t *testing.T) {
	db := newTestDB(t)
	f := seedCatalog(t, db, "asha@example.com")
	app := seedApplication(t, db, f, domain.ApplicationStatusApproved, "1000")
	uow := NewUnitOfWork(db)
	ctx := context.Background()
	boom := errors.New("boom")

	err := uow.WithinApplicationTx(ctx, app.ID, func(r Repos, locked *domain.LoanApplication) error {
		require.NoError(t, r.Payments.Create(ctx, &domain.Payment{
			ApplicationID: locked.ID,
			UserID:        locked.UserID,
			Amount:        decimal.NewFromInt(400),
			PaymentMode:   domain.DefaultPaymentMode,
			PaymentDate:   testNow,
			Status:        domain.PaymentStatusSuccess,
			Channel:       domain.PaymentChannelLedger,
			CreatedAt:     testNow,
			UpdatedAt:     testNow,
		}))
		locked.RemainingAmount = decimal.NewFromInt(600)
		require.NoError(t, r.Applications.UpdateBalance(ctx, locked))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	payments, err := uow.Repos().Payments.ListByApplication(ctx, app.ID)
	require.NoError(t, err)
	assert.Empty(t, payments)

	got, err := uow.Repos().Applications.GetByID(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, "1000", got.RemainingAmount.String())
}

func TestUnitOfWork_Commit(t *testing.T) {
	db := newTestDB(t)
	f := seedCatalog(t, db, "asha@example.com")
	app := seedApplication(t, db, f, domain.ApplicationStatusApproved, "1000")
	uow := NewUnitOfWork(db)
	ctx := context.Background()

	err := uow.WithinApplicationTx(ctx, app.ID, func(r Repos, locked *domain.LoanApplication) error {
		locked.RemainingAmount = decimal.Zero
		locked.EMIStatus = domain.EMIStatusCompleted
		return r.Applications.UpdateBalance(ctx, locked)
	})
	require.NoError(t, err)

	got, err := uow.Repos().Applications.GetByID(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EMIStatusCompleted, got.EMIStatus)
	assert.True(t, got.RemainingAmount.IsZero())
}

func TestUnitOfWork_MissingApplication(t *testing.T) {
	db := newTestDB(t)
	called := false

	err := NewUnitOfWork(db).WithinApplicationTx(context.Background(), 5, func(Repos, *domain.LoanApplication) error {
		called = true
		return nil
	})

	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.False(t, called)
}

func TestReportRepository(t *testing.T) {
	db := newTestDB(t)
	asha := seedCatalog(t, db, "asha@example.com")
	ravi := seedCatalog(t, db, "ravi@example.com")
	ctx := context.Background()
	reports := NewReportRepository(db)

	approved := seedApplication(t, db, asha, domain.ApplicationStatusApproved, "1000")
	seedApplication(t, db, asha, domain.ApplicationStatusPending, "2000")
	seedApplication(t, db, ravi, domain.ApplicationStatusRejected, "3000")

	first := testNow.AddDate(0, 0, 30)
	second := testNow.AddDate(0, 0, 60)
	seedPayment(t, db, approved, domain.PaymentChannelLedger, domain.PaymentStatusSuccess, "100", &first)
	seedPayment(t, db, approved, domain.PaymentChannelLedger, domain.PaymentStatusSuccess, "100", &second)
	seedPayment(t, db, approved, domain.PaymentChannelGateway, domain.PaymentStatusPending, "50", nil)

	t.Run("emi applications use the latest ledger due date", func(t *testing.T) {
		views, err := reports.EMIApplications(ctx, asha.user.ID)
		require.NoError(t, err)
		require.Len(t, views, 1)
		require.NotNil(t, views[0].NextPaymentDue)
		assert.True(t, second.Equal(*views[0].NextPaymentDue))
	})

	t.Run("emi details", func(t *testing.T) {
		views, err := reports.EMIDetails(ctx, asha.user.ID)
		require.NoError(t, err)
		require.Len(t, views, 1)
		assert.Equal(t, approved.ID, views[0].ApplicationID)
		assert.Equal(t, "Tata", views[0].Brand)
	})

	t.Run("loan details", func(t *testing.T) {
		all, err := reports.LoanDetails(ctx, nil, false)
		require.NoError(t, err)
		assert.Len(t, all, 3)

		mine, err := reports.LoanDetails(ctx, &asha.user.ID, true)
		require.NoError(t, err)
		assert.Len(t, mine, 2)
		assert.Equal(t, "Asha Rao", mine[0].Name)
	})

	t.Run("payment history", func(t *testing.T) {
		views, err := reports.PaymentHistory(ctx, asha.user.ID)
		require.NoError(t, err)
		assert.Len(t, views, 3)
		assert.Equal(t, "Nexon EV", views[0].ModelName)

		none, err := reports.PaymentHistory(ctx, ravi.user.ID)
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("approved rows", func(t *testing.T) {
		rows, err := reports.ApprovedApplicationRows(ctx)
		require.NoError(t, err)
		require.Len(t, rows, 3)
		require.NotNil(t, rows[0].PaymentID)
		assert.True(t, rows[0].PaymentAmount.Valid)
	})

	t.Run("due loans", func(t *testing.T) {
		rows, err := reports.DueLoans(ctx)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		require.NotNil(t, rows[0].NextPaymentDue)
		assert.True(t, second.Equal(*rows[0].NextPaymentDue))
	})

	t.Run("dashboard", func(t *testing.T) {
		stats, err := reports.DashboardStats(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, stats.RegisteredUsers)
		assert.Equal(t, 1, stats.PendingApplications)
		assert.Equal(t, 1, stats.ApprovedApplications)
		assert.Equal(t, 1, stats.RejectedApplications)
		assert.Equal(t, 0, stats.CompletedLoans)
	})
}

func TestUserRepository_EmailAndList(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	asha := seedCatalog(t, db, "asha@example.com")
	seedCatalog(t, db, "ravi@example.com")
	repo := NewUserRepository(db)

	got, err := repo.GetByEmail(ctx, "asha@example.com")
	require.NoError(t, err)
	assert.Equal(t, asha.user.ID, got.ID)

	_, err = repo.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	users, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "asha@example.com", users[0].Email)
	assert.Equal(t, "ravi@example.com", users[1].Email)
}

func TestVehicleRepository_UpdateDelete(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	f := seedCatalog(t, db, "asha@example.com")
	repo := NewVehicleRepository(db)

	mfd := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	v := *f.vehicle
	v.ModelName = "Nexon EV Max"
	v.MFD = &mfd
	v.Price = decimal.RequireFromString("1599999.99")
	require.NoError(t, repo.Update(ctx, &v))

	got, err := repo.GetByID(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, "Nexon EV Max", got.ModelName)
	assert.Equal(t, "1599999.99", got.Price.String())
	require.NotNil(t, got.MFD)
	assert.True(t, mfd.Equal(*got.MFD))

	missing := v
	missing.ID = 9999
	assert.ErrorIs(t, repo.Update(ctx, &missing), sql.ErrNoRows)
	assert.ErrorIs(t, repo.Delete(ctx, 9999), sql.ErrNoRows)

	inUse, err := repo.HasApplications(ctx, v.ID)
	require.NoError(t, err)
	assert.False(t, inUse)

	seedApplication(t, db, f, domain.ApplicationStatusPending, "1000")
	inUse, err = repo.HasApplications(ctx, v.ID)
	require.NoError(t, err)
	assert.True(t, inUse)

	spare := &domain.Vehicle{ModelName: "Punch", Brand: "Tata", Price: decimal.NewFromInt(600000), CreatedAt: testNow}
	require.NoError(t, repo.Create(ctx, spare))
	require.NoError(t, repo.Delete(ctx, spare.ID))
	_, err = repo.GetByID(ctx, spare.ID)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
