package repository

import (
	"context"
	"database/sql"

	"github.com/segyhp/emi-ledger/internal/domain"

	"github.com/jmoiron/sqlx"
)

type userRepository struct {
	db sqlx.ExtContext
}

func NewUserRepository(db sqlx.ExtContext) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (name, email, mobile_number, pan_number, dob, address, service_type,
			monthly_income, address_proof_file, pan_file, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`

	return sqlx.GetContext(ctx, r.db, &user.ID, r.db.Rebind(query),
		user.Name,
		user.Email,
		user.MobileNumber,
		user.PanNumber,
		user.DOB,
		user.Address,
		user.ServiceType,
		user.MonthlyIncome,
		user.AddressProofFile,
		user.PanFile,
		user.CreatedAt,
	)
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `
		SELECT id, name, email, mobile_number, pan_number, dob, address, service_type,
			monthly_income, address_proof_file, pan_file, created_at
		FROM users
		WHERE id = ?
	`

	var user domain.User
	if err := sqlx.GetContext(ctx, r.db, &user, r.db.Rebind(query), id); err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
		SELECT id, name, email, mobile_number, pan_number, dob, address, service_type,
			monthly_income, address_proof_file, pan_file, created_at
		FROM users
		WHERE email = ?
	`

	var user domain.User
	if err := sqlx.GetContext(ctx, r.db, &user, r.db.Rebind(query), email); err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userRepository) List(ctx context.Context) ([]*domain.User, error) {
	query := `
		SELECT id, name, email, mobile_number, pan_number, dob, address, service_type,
			monthly_income, address_proof_file, pan_file, created_at
		FROM users
		ORDER BY id
	`

	users := []*domain.User{}
	if err := sqlx.SelectContext(ctx, r.db, &users, query); err != nil {
		return nil, err
	}

	return users, nil
}

type vehicleRepository struct {
	db sqlx.ExtContext
}

func NewVehicleRepository(db sqlx.ExtContext) VehicleRepository {
	return &vehicleRepository{db: db}
}

func (r *vehicleRepository) Create(ctx context.Context, vehicle *domain.Vehicle) error {
	query := `
		INSERT INTO vehicle (model_name, brand, mfd, price, created_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING vehicle_id
	`

	return sqlx.GetContext(ctx, r.db, &vehicle.ID, r.db.Rebind(query),
		vehicle.ModelName,
		vehicle.Brand,
		vehicle.MFD,
		vehicle.Price,
		vehicle.CreatedAt,
	)
}

func (r *vehicleRepository) GetByID(ctx context.Context, id int64) (*domain.Vehicle, error) {
	query := `SELECT vehicle_id, model_name, brand, mfd, price, created_at FROM vehicle WHERE vehicle_id = ?`

	var vehicle domain.Vehicle
	if err := sqlx.GetContext(ctx, r.db, &vehicle, r.db.Rebind(query), id); err != nil {
		return nil, err
	}

	return &vehicle, nil
}

func (r *vehicleRepository) List(ctx context.Context) ([]*domain.Vehicle, error) {
	query := `SELECT vehicle_id, model_name, brand, mfd, price, created_at FROM vehicle ORDER BY vehicle_id`

	vehicles := []*domain.Vehicle{}
	if err := sqlx.SelectContext(ctx, r.db, &vehicles, query); err != nil {
		return nil, err
	}

	return vehicles, nil
}

func (r *vehicleRepository) Update(ctx context.Context, vehicle *domain.Vehicle) error {
	query := `UPDATE vehicle SET model_name = ?, brand = ?, mfd = ?, price = ? WHERE vehicle_id = ?`

	res, err := r.db.ExecContext(ctx, r.db.Rebind(query),
		vehicle.ModelName,
		vehicle.Brand,
		vehicle.MFD,
		vehicle.Price,
		vehicle.ID,
	)
	if err != nil {
		return err
	}
	return requireOneRow(res)
}

func (r *vehicleRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM vehicle WHERE vehicle_id = ?`), id)
	if err != nil {
		return err
	}
	return requireOneRow(res)
}

func (r *vehicleRepository) HasApplications(ctx context.Context, id int64) (bool, error) {
	query := `SELECT COUNT(*) FROM emi_applications WHERE vehicle_id = ?`

	var n int
	if err := sqlx.GetContext(ctx, r.db, &n, r.db.Rebind(query), id); err != nil {
		return false, err
	}
	return n > 0, nil
}

func requireOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
