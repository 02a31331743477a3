package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/junusg25/kamer-modul-sub006/internal/domain"
	"github.com/junusg25/kamer-modul-sub006/internal/repository"

	"github.com/lib/pq"
)

type machineRepository struct {
	db DBTX
}

func NewMachineRepository(db DBTX) repository.MachineRepository {
	return &machineRepository{db: db}
}

const machineColumns = `id, model_id, serial_number, condition, rental_status, COALESCE(location, ''), COALESCE(notes, ''), rate_day_cents, rate_week_cents, rate_month_cents, created_on, updated_on`

func (r *machineRepository) Create(ctx context.Context, m *domain.Machine) error {
	query := `INSERT INTO machines (model_id, serial_number, condition, rental_status, location, notes, rate_day_cents, rate_week_cents, rate_month_cents, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id`
	now := time.Now()
	err := r.db.QueryRowContext(ctx, query, m.ModelID, m.SerialNumber, m.Condition, m.RentalStatus, m.Location, m.Notes, m.RateDayCents, m.RateWeekCents, m.RateMonthCents, now, now).Scan(&m.ID)
	if err != nil {
		return mapMachineWriteError(err)
	}
	m.CreatedOn = now
	m.UpdatedOn = now
	return nil
}

func (r *machineRepository) GetByID(ctx context.Context, id int32) (*domain.Machine, error) {
	query := `SELECT ` + machineColumns + ` FROM machines WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *machineRepository) GetForUpdate(ctx context.Context, id int32) (*domain.Machine, error) {
	query := `SELECT ` + machineColumns + ` FROM machines WHERE id = $1 FOR UPDATE`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *machineRepository) scanOne(row *sql.Row) (*domain.Machine, error) {
	m := &domain.Machine{}
	err := row.Scan(&m.ID, &m.ModelID, &m.SerialNumber, &m.Condition, &m.RentalStatus, &m.Location, &m.Notes, &m.RateDayCents, &m.RateWeekCents, &m.RateMonthCents, &m.CreatedOn, &m.UpdatedOn)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrMachineNotFound
		}
		return nil, err
	}
	return m, nil
}

func (r *machineRepository) Update(ctx context.Context, m *domain.Machine) error {
	query := `UPDATE machines SET condition=$1, rental_status=$2, location=$3, notes=$4, rate_day_cents=$5, rate_week_cents=$6, rate_month_cents=$7, updated_on=$8 WHERE id=$9`
	res, err := r.db.ExecContext(ctx, query, m.Condition, m.RentalStatus, m.Location, m.Notes, m.RateDayCents, m.RateWeekCents, m.RateMonthCents, time.Now(), m.ID)
	if err != nil {
		return mapMachineWriteError(err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrMachineNotFound
	}
	return nil
}

func (r *machineRepository) Delete(ctx context.Context, id int32) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM machines WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrMachineNotFound
	}
	return nil
}

func (r *machineRepository) List(ctx context.Context, f repository.MachineFilter) ([]domain.Machine, int32, error) {
	query := `SELECT ` + machineColumns + ` FROM machines WHERE 1=1`
	args := []interface{}{}
	argIdx := 1

	if f.Status != "" {
		query += fmt.Sprintf(" AND rental_status = $%d", argIdx)
		args = append(args, f.Status)
		argIdx++
	}
	if f.Condition != "" {
		query += fmt.Sprintf(" AND condition = $%d", argIdx)
		args = append(args, f.Condition)
		argIdx++
	}
	if f.ModelID != 0 {
		query += fmt.Sprintf(" AND model_id = $%d", argIdx)
		args = append(args, f.ModelID)
		argIdx++
	}
	if f.Search != "" {
		query += fmt.Sprintf(" AND (serial_number ILIKE $%d OR location ILIKE $%d OR notes ILIKE $%d)", argIdx, argIdx, argIdx)
		args = append(args, "%"+f.Search+"%")
		argIdx++
	}

	var count int32
	countQuery := "SELECT count(*) FROM (" + query + ") AS sub"
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	page, pageSize := normalizePage(f.Page, f.PageSize)
	query += fmt.Sprintf(" ORDER BY id LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var machines []domain.Machine
	for rows.Next() {
		var m domain.Machine
		if err := rows.Scan(&m.ID, &m.ModelID, &m.SerialNumber, &m.Condition, &m.RentalStatus, &m.Location, &m.Notes, &m.RateDayCents, &m.RateWeekCents, &m.RateMonthCents, &m.CreatedOn, &m.UpdatedOn); err != nil {
			return nil, 0, err
		}
		machines = append(machines, m)
	}
	return machines, count, rows.Err()
}

// mapMachineWriteError translates postgres constraint violations into the
// domain errors the registry contract names.
func mapMachineWriteError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505": // unique_violation on (model_id, serial_number)
			return domain.ErrDuplicateSerial
		case "23503": // foreign_key_violation on model_id
			return domain.ErrUnknownModel
		}
	}
	return err
}

func normalizePage(page, pageSize int32) (int32, int32) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 50
	}
	return page, pageSize
}
