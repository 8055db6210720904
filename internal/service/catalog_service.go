package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/segyhp/emi-ledger/internal/cache"
	"github.com/segyhp/emi-ledger/internal/domain"
	"github.com/segyhp/emi-ledger/internal/repository"
	customError "github.com/segyhp/emi-ledger/pkg/errors"
)

// CatalogService maintains the applicants and vehicles that applications reference.
type CatalogService struct {
	uow   repository.UnitOfWork
	cache cache.Store
	now   func() time.Time
}

func NewCatalogService(uow repository.UnitOfWork, store cache.Store) *CatalogService {
	return &CatalogService{
		uow:   uow,
		cache: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// RegisterUser creates an applicant. Emails are unique, compared case-insensitively.
func (s *CatalogService) RegisterUser(ctx context.Context, request *domain.RegisterUserRequest) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(request.Email))
	if email == "" {
		return nil, customError.WrapValidation("email is required")
	}

	user := &domain.User{
		Name:          strings.TrimSpace(request.Name),
		Email:         email,
		MobileNumber:  request.MobileNumber,
		PanNumber:     request.PanNumber,
		DOB:           request.DOB.TimePtr(),
		Address:       request.Address,
		ServiceType:   request.ServiceType,
		MonthlyIncome: request.MonthlyIncome,
		CreatedAt:     s.now(),
	}

	err := s.uow.WithinTx(ctx, func(r repository.Repos) error {
		_, err := r.Users.GetByEmail(ctx, email)
		switch {
		case err == nil:
			return customError.WrapEmailExists(email)
		case !errors.Is(err, sql.ErrNoRows):
			return err
		}
		return r.Users.Create(ctx, user)
	})
	if err != nil {
		return nil, businessOrDatabase(err)
	}

	slog.InfoContext(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

func (s *CatalogService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.uow.Repos().Users.List(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return users, nil
}

func (s *CatalogService) CreateVehicle(ctx context.Context, request *domain.VehicleRequest) (*domain.Vehicle, error) {
	vehicle := &domain.Vehicle{
		ModelName: strings.TrimSpace(request.ModelName),
		Brand:     strings.TrimSpace(request.Brand),
		MFD:       request.MFD.TimePtr(),
		Price:     request.Price,
		CreatedAt: s.now(),
	}
	if vehicle.ModelName == "" {
		return nil, customError.WrapValidation("model_name is required")
	}

	if err := s.uow.Repos().Vehicles.Create(ctx, vehicle); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	slog.InfoContext(ctx, "vehicle added", "vehicle_id", vehicle.ID, "model_name", vehicle.ModelName)
	return vehicle, nil
}

// UpdateVehicle replaces the catalog fields of a vehicle. Cached views that
// show the vehicle are retired.
func (s *CatalogService) UpdateVehicle(ctx context.Context, vehicleID int64, request *domain.VehicleRequest) (*domain.Vehicle, error) {
	if strings.TrimSpace(request.ModelName) == "" {
		return nil, customError.WrapValidation("model_name is required")
	}

	var vehicle *domain.Vehicle
	err := s.uow.WithinTx(ctx, func(r repository.Repos) error {
		current, err := r.Vehicles.GetByID(ctx, vehicleID)
		if err != nil {
			return err
		}
		current.ModelName = strings.TrimSpace(request.ModelName)
		current.Brand = strings.TrimSpace(request.Brand)
		current.MFD = request.MFD.TimePtr()
		current.Price = request.Price
		vehicle = current
		return r.Vehicles.Update(ctx, current)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapVehicleNotFound(vehicleID)
		}
		return nil, customError.WrapDatabaseError(err)
	}

	invalidateCatalog(ctx, s.cache)
	return vehicle, nil
}

// DeleteVehicle removes a vehicle no application refers to.
func (s *CatalogService) DeleteVehicle(ctx context.Context, vehicleID int64) error {
	err := s.uow.WithinTx(ctx, func(r repository.Repos) error {
		inUse, err := r.Vehicles.HasApplications(ctx, vehicleID)
		if err != nil {
			return err
		}
		if inUse {
			return customError.WrapVehicleInUse(vehicleID)
		}
		return r.Vehicles.Delete(ctx, vehicleID)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return customError.WrapVehicleNotFound(vehicleID)
		}
		return businessOrDatabase(err)
	}

	invalidateCatalog(ctx, s.cache)
	slog.InfoContext(ctx, "vehicle deleted", "vehicle_id", vehicleID)
	return nil
}
