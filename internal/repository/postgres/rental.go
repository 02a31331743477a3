package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/junusg25/kamer-modul-sub006/internal/domain"
	"github.com/junusg25/kamer-modul-sub006/internal/repository"
)

type rentalRepository struct {
	db DBTX
}

func NewRentalRepository(db DBTX) repository.RentalRepository {
	return &rentalRepository{db: db}
}

const rentalColumns = `id, machine_id, customer_id, start_date, planned_return_date, end_date, status, billing_period, rate_cents, total_cents, COALESCE(notes, ''), created_by, created_on, updated_on`

func (r *rentalRepository) Create(ctx context.Context, rt *domain.Rental) error {
	query := `INSERT INTO rentals (machine_id, customer_id, start_date, planned_return_date, end_date, status, billing_period, rate_cents, total_cents, notes, created_by, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13) RETURNING id`
	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		rt.MachineID, rt.CustomerID, rt.StartDate, nullTime(rt.PlannedReturnDate), nullTime(rt.EndDate),
		rt.Status, rt.BillingPeriod, rt.RateCents, rt.TotalCents, rt.Notes, nullInt32(rt.CreatedBy), now, now,
	).Scan(&rt.ID)
	if err != nil {
		return err
	}
	rt.CreatedOn = now
	rt.UpdatedOn = now
	return nil
}

func (r *rentalRepository) GetByID(ctx context.Context, id int32) (*domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE id = $1`
	rt, err := scanRental(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRentalNotFound
		}
		return nil, err
	}
	return rt, nil
}

func (r *rentalRepository) Update(ctx context.Context, rt *domain.Rental) error {
	query := `UPDATE rentals SET start_date=$1, planned_return_date=$2, end_date=$3, status=$4, billing_period=$5, rate_cents=$6, total_cents=$7, notes=$8, updated_on=$9 WHERE id=$10`
	res, err := r.db.ExecContext(ctx, query,
		rt.StartDate, nullTime(rt.PlannedReturnDate), nullTime(rt.EndDate),
		rt.Status, rt.BillingPeriod, rt.RateCents, rt.TotalCents, rt.Notes, time.Now(), rt.ID)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrRentalNotFound
	}
	return nil
}

func (r *rentalRepository) Delete(ctx context.Context, id int32) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM rentals WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrRentalNotFound
	}
	return nil
}

func (r *rentalRepository) List(ctx context.Context, f repository.RentalFilter) ([]domain.Rental, int32, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE 1=1`
	args := []interface{}{}
	argIdx := 1

	if f.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, f.Status)
		argIdx++
	}
	if f.MachineID != 0 {
		query += fmt.Sprintf(" AND machine_id = $%d", argIdx)
		args = append(args, f.MachineID)
		argIdx++
	}
	if f.CustomerID != 0 {
		query += fmt.Sprintf(" AND customer_id = $%d", argIdx)
		args = append(args, f.CustomerID)
		argIdx++
	}
	if f.From != nil {
		query += fmt.Sprintf(" AND start_date >= $%d", argIdx)
		args = append(args, *f.From)
		argIdx++
	}
	if f.To != nil {
		query += fmt.Sprintf(" AND start_date <= $%d", argIdx)
		args = append(args, *f.To)
		argIdx++
	}

	var count int32
	countQuery := "SELECT count(*) FROM (" + query + ") AS sub"
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	page, pageSize := normalizePage(f.Page, f.PageSize)
	query += fmt.Sprintf(" ORDER BY created_on DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	rentals, err := collectRentals(rows)
	if err != nil {
		return nil, 0, err
	}
	return rentals, count, nil
}

func (r *rentalRepository) FindCurrentOccupant(ctx context.Context, machineID int32) (*domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals
	          WHERE machine_id = $1 AND status IN ('active', 'overdue')
	          ORDER BY start_date LIMIT 1`
	rt, err := scanRental(r.db.QueryRowContext(ctx, query, machineID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return rt, nil
}

func (r *rentalRepository) FindEligibleQueueHead(ctx context.Context, machineID int32, asOf time.Time) (*domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals
	          WHERE machine_id = $1 AND status = 'reserved' AND start_date <= $2
	          ORDER BY start_date, id LIMIT 1`
	rt, err := scanRental(r.db.QueryRowContext(ctx, query, machineID, domain.TruncateToDay(asOf)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return rt, nil
}

func (r *rentalRepository) ListOpenByMachine(ctx context.Context, machineID int32) ([]domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals
	          WHERE machine_id = $1 AND status IN ('active', 'overdue', 'reserved')
	          ORDER BY start_date, id`
	rows, err := r.db.QueryContext(ctx, query, machineID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRentals(rows)
}

func (r *rentalRepository) ListReservations(ctx context.Context, machineID int32) ([]domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals
	          WHERE machine_id = $1 AND status = 'reserved'
	          ORDER BY start_date, id`
	rows, err := r.db.QueryContext(ctx, query, machineID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRentals(rows)
}

func (r *rentalRepository) CountByMachine(ctx context.Context, machineID int32) (int32, error) {
	var count int32
	err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM rentals WHERE machine_id = $1`, machineID).Scan(&count)
	return count, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRental(row rowScanner) (*domain.Rental, error) {
	rt := &domain.Rental{}
	var planned, end sql.NullTime
	var createdBy sql.NullInt32
	err := row.Scan(&rt.ID, &rt.MachineID, &rt.CustomerID, &rt.StartDate, &planned, &end,
		&rt.Status, &rt.BillingPeriod, &rt.RateCents, &rt.TotalCents, &rt.Notes, &createdBy,
		&rt.CreatedOn, &rt.UpdatedOn)
	if err != nil {
		return nil, err
	}
	if planned.Valid {
		t := planned.Time
		rt.PlannedReturnDate = &t
	}
	if end.Valid {
		t := end.Time
		rt.EndDate = &t
	}
	if createdBy.Valid {
		v := createdBy.Int32
		rt.CreatedBy = &v
	}
	return rt, nil
}

func collectRentals(rows *sql.Rows) ([]domain.Rental, error) {
	var rentals []domain.Rental
	for rows.Next() {
		rt, err := scanRental(rows)
		if err != nil {
			return nil, err
		}
		rentals = append(rentals, *rt)
	}
	return rentals, rows.Err()
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullInt32(v *int32) sql.NullInt32 {
	if v == nil {
		return sql.NullInt32{}
	}
	return sql.NullInt32{Int32: *v, Valid: true}
}
