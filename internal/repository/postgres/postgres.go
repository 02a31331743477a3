package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/junusg25/kamer-modul-sub006/internal/repository"

	_ "github.com/lib/pq"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx, so every repository can run
// standalone or inside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db *sql.DB
	repository.MachineRepository
	repository.RentalRepository
	repository.CustomerRepository
	repository.NotificationRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                     db,
		MachineRepository:      NewMachineRepository(db),
		RentalRepository:       NewRentalRepository(db),
		CustomerRepository:     NewCustomerRepository(db),
		NotificationRepository: NewNotificationRepository(db),
	}
}

// WithinTx runs fn against transaction-bound repositories. Any error rolls
// the whole transaction back; there is no partial state.
func (s *Store) WithinTx(ctx context.Context, fn func(r repository.Repositories) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	repos := repository.Repositories{
		Machines:  NewMachineRepository(tx),
		Rentals:   NewRentalRepository(tx),
		Customers: NewCustomerRepository(tx),
	}

	if err := fn(repos); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			return fmt.Errorf("rollback failed: %v (original: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
