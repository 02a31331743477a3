package repository

import (
	"context"
	"time"

	"github.com/junusg25/kamer-modul-sub006/internal/domain"
)

type MachineFilter struct {
	Status    string
	Condition string
	ModelID   int32
	Search    string
	Page      int32
	PageSize  int32
}

type RentalFilter struct {
	Status     string
	MachineID  int32
	CustomerID int32
	From       *time.Time
	To         *time.Time
	Page       int32
	PageSize   int32
}

type MachineRepository interface {
	Create(ctx context.Context, m *domain.Machine) error
	GetByID(ctx context.Context, id int32) (*domain.Machine, error)
	// GetForUpdate loads the machine row with a row-level lock, serializing
	// concurrent lifecycle operations on the same machine. Only meaningful
	// inside a transaction.
	GetForUpdate(ctx context.Context, id int32) (*domain.Machine, error)
	Update(ctx context.Context, m *domain.Machine) error
	Delete(ctx context.Context, id int32) error
	List(ctx context.Context, f MachineFilter) ([]domain.Machine, int32, error)
}

// RentalRepository is pure persistence; the lifecycle rules live in the
// service layer.
type RentalRepository interface {
	Create(ctx context.Context, rt *domain.Rental) error
	GetByID(ctx context.Context, id int32) (*domain.Rental, error)
	Update(ctx context.Context, rt *domain.Rental) error
	Delete(ctx context.Context, id int32) error
	List(ctx context.Context, f RentalFilter) ([]domain.Rental, int32, error)

	// FindCurrentOccupant returns the rental presently holding the machine
	// (status active or overdue), or nil if the machine is free.
	FindCurrentOccupant(ctx context.Context, machineID int32) (*domain.Rental, error)
	// FindEligibleQueueHead returns the reserved rental with the smallest
	// start date that has already arrived as of asOf, ties broken by
	// smallest id. Nil when no reservation is due.
	FindEligibleQueueHead(ctx context.Context, machineID int32, asOf time.Time) (*domain.Rental, error)
	// ListOpenByMachine returns every non-terminal rental for the machine,
	// ordered by start date.
	ListOpenByMachine(ctx context.Context, machineID int32) ([]domain.Rental, error)
	// ListReservations returns the reservation queue in promotion order.
	ListReservations(ctx context.Context, machineID int32) ([]domain.Rental, error)
	CountByMachine(ctx context.Context, machineID int32) (int32, error)
}

// CustomerRepository covers the slice of the external customer store the
// lifecycle needs: an existence check for referential validation.
type CustomerRepository interface {
	Exists(ctx context.Context, id int32) (bool, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	List(ctx context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, id, userID int32) error
}

// Repositories bundles the stores a single transaction operates on.
type Repositories struct {
	Machines  MachineRepository
	Rentals   RentalRepository
	Customers CustomerRepository
}

// TxRunner executes fn inside one database transaction. The machine row and
// its rentals form one consistency domain; every lifecycle operation runs
// through here and locks the machine row before reading occupancy.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(r Repositories) error) error
}
