package repository

import (
	"context"
	"time"

	"github.com/sysu-ecnc-dev/driver-hours/backend/internal/domain"
)

func (r *Repository) GetDriverByID(id int64) (*domain.Driver, error) {
	query := `
		SELECT username, password_hash, full_name, email, role, license_number, is_active, created_at, version
		FROM drivers WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	driver := &domain.Driver{
		ID: id,
	}

	dst := []any{&driver.Username, &driver.PasswordHash, &driver.FullName, &driver.Email, &driver.Role, &driver.LicenseNumber, &driver.IsActive, &driver.CreatedAt, &driver.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return driver, nil
}

func (r *Repository) GetDriverByUsername(username string) (*domain.Driver, error) {
	query := `
		SELECT id, password_hash, full_name, email, role, license_number, is_active, created_at, version
		FROM drivers WHERE username = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	driver := &domain.Driver{
		Username: username,
	}

	dst := []any{&driver.ID, &driver.PasswordHash, &driver.FullName, &driver.Email, &driver.Role, &driver.LicenseNumber, &driver.IsActive, &driver.CreatedAt, &driver.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, username).Scan(dst...); err != nil {
		return nil, err
	}

	return driver, nil
}

func (r *Repository) UpdateDriver(driver *domain.Driver) error {
	query := `
		UPDATE drivers 
		SET
			password_hash = $1,
			full_name = $2,
			email = $3,
			role = $4,
			license_number = $5,
			is_active = $6,
			version = version + 1
		WHERE id = $7 AND version = $8
		RETURNING username, created_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{driver.PasswordHash, driver.FullName, driver.Email, driver.Role, driver.LicenseNumber, driver.IsActive, driver.ID, driver.Version}
	dst := []any{&driver.Username, &driver.CreatedAt, &driver.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(dst...); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetAllDrivers() ([]*domain.Driver, error) {
	query := `
		SELECT id, username, password_hash, full_name, email, role, license_number, is_active, created_at, version 
		FROM drivers
		ORDER BY id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	drivers := make([]*domain.Driver, 0)
	for rows.Next() {
		driver := &domain.Driver{}
		dst := []any{&driver.ID, &driver.Username, &driver.PasswordHash, &driver.FullName, &driver.Email, &driver.Role, &driver.LicenseNumber, &driver.IsActive, &driver.CreatedAt, &driver.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		drivers = append(drivers, driver)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return drivers, nil
}

func (r *Repository) DeleteDriver(id int64) error {
	query := `
		DELETE FROM drivers WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return nil
}

func (r *Repository) CreateDriver(driver *domain.Driver) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO drivers (username, password_hash, full_name, email, role, license_number)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, is_active, created_at, version
	`

	args := []any{driver.Username, driver.PasswordHash, driver.FullName, driver.Email, driver.Role, driver.LicenseNumber}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&driver.ID, &driver.IsActive, &driver.CreatedAt, &driver.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) CheckEmailIfExists(email string) (bool, error) {
	isExists := false

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT EXISTS (SELECT 1 FROM drivers WHERE email = $1)
	`
	if err := r.dbpool.QueryRowContext(ctx, query, email).Scan(&isExists); err != nil {
		return false, err
	}

	return isExists, nil
}

// GetAllActiveDrivers 只返回仍在职的司机，管理员不参与合规计算
func (r *Repository) GetAllActiveDrivers() ([]*domain.Driver, error) {
	query := `
		SELECT id, username, full_name, email, role, license_number, is_active, created_at, version
		FROM drivers
		WHERE is_active = TRUE AND role = $1
		ORDER BY id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, domain.RoleDriver)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	drivers := make([]*domain.Driver, 0)
	for rows.Next() {
		driver := &domain.Driver{}
		dst := []any{&driver.ID, &driver.Username, &driver.FullName, &driver.Email, &driver.Role, &driver.LicenseNumber, &driver.IsActive, &driver.CreatedAt, &driver.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		drivers = append(drivers, driver)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return drivers, nil
}
