package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/sysu-ecnc-dev/driver-hours/backend/internal/domain"
)

const shiftColumns = `
	s.id,
	s.driver_id,
	to_char(s.date, 'YYYY-MM-DD'),
	to_char(s.start_time, 'HH24:MI'),
	to_char(s.end_time, 'HH24:MI'),
	s.drive_hours,
	s.drive_minutes,
	s.work_hours,
	s.work_minutes,
	s.is_compensated,
	s.start_latitude,
	s.start_longitude,
	s.end_latitude,
	s.end_longitude,
	s.created_at,
	s.version,
	sb.duration_minutes
`

type shiftRow struct {
	shift domain.Shift

	StartLatitude  sql.NullFloat64
	StartLongitude sql.NullFloat64
	EndLatitude    sql.NullFloat64
	EndLongitude   sql.NullFloat64
	BreakMinutes   sql.NullInt32
}

func (row *shiftRow) dst() []any {
	return []any{
		&row.shift.ID,
		&row.shift.DriverID,
		&row.shift.Date,
		&row.shift.StartTime,
		&row.shift.EndTime,
		&row.shift.DriveHours,
		&row.shift.DriveMinutes,
		&row.shift.WorkHours,
		&row.shift.WorkMinutes,
		&row.shift.IsCompensated,
		&row.StartLatitude,
		&row.StartLongitude,
		&row.EndLatitude,
		&row.EndLongitude,
		&row.shift.CreatedAt,
		&row.shift.Version,
		&row.BreakMinutes,
	}
}

func geoPoint(lat, lng sql.NullFloat64) *domain.GeoPoint {
	if !lat.Valid || !lng.Valid {
		return nil
	}
	return &domain.GeoPoint{Latitude: lat.Float64, Longitude: lng.Float64}
}

func geoParams(p *domain.GeoPoint) (any, any) {
	if p == nil {
		return nil, nil
	}
	return p.Latitude, p.Longitude
}

// scanShifts 把 LEFT JOIN 得到的多行合并成班次，每个休息占一行
func scanShifts(rows *sql.Rows) ([]domain.Shift, error) {
	order := make([]uuid.UUID, 0)
	shiftsMap := make(map[uuid.UUID]*domain.Shift)

	for rows.Next() {
		var row shiftRow
		if err := rows.Scan(row.dst()...); err != nil {
			return nil, err
		}

		shift, exists := shiftsMap[row.shift.ID]
		if !exists {
			// 第一次查到这个班次
			shift = &row.shift
			shift.Breaks = make([]domain.Break, 0)
			shift.StartLocation = geoPoint(row.StartLatitude, row.StartLongitude)
			shift.EndLocation = geoPoint(row.EndLatitude, row.EndLongitude)
			shiftsMap[shift.ID] = shift
			order = append(order, shift.ID)
		}

		// 没有休息的班次只有一行，且 duration_minutes 为空
		if !row.BreakMinutes.Valid {
			continue
		}

		shift.Breaks = append(shift.Breaks, domain.Break{DurationMinutes: row.BreakMinutes.Int32})
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	shifts := make([]domain.Shift, 0, len(order))
	for _, id := range order {
		shifts = append(shifts, *shiftsMap[id])
	}

	return shifts, nil
}

func (r *Repository) GetShiftsByDriverID(driverID int64) ([]domain.Shift, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT ` + shiftColumns + `
		FROM shifts s
		LEFT JOIN shift_breaks sb ON s.id = sb.shift_id
		WHERE s.driver_id = $1
		ORDER BY s.date, s.start_time, s.created_at, sb.position
	`

	rows, err := r.dbpool.QueryContext(ctx, query, driverID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanShifts(rows)
}

func (r *Repository) GetShiftByID(id uuid.UUID) (*domain.Shift, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT ` + shiftColumns + `
		FROM shifts s
		LEFT JOIN shift_breaks sb ON s.id = sb.shift_id
		WHERE s.id = $1
		ORDER BY sb.position
	`

	rows, err := r.dbpool.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shifts, err := scanShifts(rows)
	if err != nil {
		return nil, err
	}
	if len(shifts) == 0 {
		return nil, sql.ErrNoRows
	}

	return &shifts[0], nil
}

func insertBreaks(ctx context.Context, tx *sql.Tx, shift *domain.Shift) error {
	for i, b := range shift.Breaks {
		query := `
			INSERT INTO shift_breaks (shift_id, position, duration_minutes)
			VALUES ($1, $2, $3)
		`
		if _, err := tx.ExecContext(ctx, query, shift.ID, i, b.DurationMinutes); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) CreateShift(shift *domain.Shift) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if shift.ID == uuid.Nil {
		shift.ID = uuid.New()
	}

	startLat, startLng := geoParams(shift.StartLocation)
	endLat, endLng := geoParams(shift.EndLocation)

	query := `
		INSERT INTO shifts (
			id,
			driver_id,
			date,
			start_time,
			end_time,
			drive_hours,
			drive_minutes,
			work_hours,
			work_minutes,
			is_compensated,
			start_latitude,
			start_longitude,
			end_latitude,
			end_longitude
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at, version
	`
	params := []any{
		shift.ID,
		shift.DriverID,
		shift.Date,
		shift.StartTime,
		shift.EndTime,
		shift.DriveHours,
		shift.DriveMinutes,
		shift.WorkHours,
		shift.WorkMinutes,
		shift.IsCompensated,
		startLat,
		startLng,
		endLat,
		endLng,
	}
	if err := tx.QueryRowContext(ctx, query, params...).Scan(&shift.CreatedAt, &shift.Version); err != nil {
		return err
	}

	if err := insertBreaks(ctx, tx, shift); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

// UpdateShift 整体替换一个班次，版本号不一致时返回 sql.ErrNoRows
func (r *Repository) UpdateShift(shift *domain.Shift) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	startLat, startLng := geoParams(shift.StartLocation)
	endLat, endLng := geoParams(shift.EndLocation)

	query := `
		UPDATE shifts
		SET
			date = $1,
			start_time = $2,
			end_time = $3,
			drive_hours = $4,
			drive_minutes = $5,
			work_hours = $6,
			work_minutes = $7,
			is_compensated = $8,
			start_latitude = $9,
			start_longitude = $10,
			end_latitude = $11,
			end_longitude = $12,
			version = version + 1
		WHERE id = $13 AND version = $14
		RETURNING version
	`
	params := []any{
		shift.Date,
		shift.StartTime,
		shift.EndTime,
		shift.DriveHours,
		shift.DriveMinutes,
		shift.WorkHours,
		shift.WorkMinutes,
		shift.IsCompensated,
		startLat,
		startLng,
		endLat,
		endLng,
		shift.ID,
		shift.Version,
	}
	if err := tx.QueryRowContext(ctx, query, params...).Scan(&shift.Version); err != nil {
		return err
	}

	// 休息记录直接删除后重新插入
	query = `DELETE FROM shift_breaks WHERE shift_id = $1`
	if _, err := tx.ExecContext(ctx, query, shift.ID); err != nil {
		return err
	}

	if err := insertBreaks(ctx, tx, shift); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) UpdateShiftCompensation(shift *domain.Shift) error {
	query := `
		UPDATE shifts
		SET is_compensated = $1, version = version + 1
		WHERE id = $2 AND version = $3
		RETURNING version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if err := r.dbpool.QueryRowContext(ctx, query, shift.IsCompensated, shift.ID, shift.Version).Scan(&shift.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteShift(id uuid.UUID) error {
	query := `
		DELETE FROM shifts WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}
