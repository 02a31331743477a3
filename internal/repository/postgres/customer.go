package postgres

import (
	"context"

	"github.com/junusg25/kamer-modul-sub006/internal/repository"
)

// customerRepository is the thin slice of the customer store the rental
// lifecycle needs. The customers table is owned elsewhere.
type customerRepository struct {
	db DBTX
}

func NewCustomerRepository(db DBTX) repository.CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) Exists(ctx context.Context, id int32) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM customers WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}
