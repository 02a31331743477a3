package service

import (
	"context"
	"time"

	"github.com/junusg25/kamer-modul-sub006/internal/domain"
	"github.com/junusg25/kamer-modul-sub006/internal/repository"
)

// MachinePatch carries a partial registry update; nil fields are untouched.
// RentalStatus accepts administrative values only (available, maintenance,
// retired); rented and reserved are written by the rental lifecycle.
type MachinePatch struct {
	Condition      *domain.MachineCondition
	RentalStatus   *domain.MachineStatus
	Location       *string
	Notes          *string
	RateDayCents   *int32
	RateWeekCents  *int32
	RateMonthCents *int32
}

// MachineAvailability is the scheduling view of one machine: who holds it
// now and which reservations are queued behind them.
type MachineAvailability struct {
	Machine         *domain.Machine `json:"machine"`
	CurrentOccupant *domain.Rental  `json:"current_occupant,omitempty"`
	Queue           []domain.Rental `json:"queue"`
}

type MachineService interface {
	Register(ctx context.Context, m *domain.Machine) error
	Get(ctx context.Context, id int32) (*domain.Machine, error)
	Update(ctx context.Context, id int32, patch MachinePatch) (*domain.Machine, error)
	Remove(ctx context.Context, id int32) error
	List(ctx context.Context, f repository.MachineFilter) ([]domain.Machine, int32, error)
	Availability(ctx context.Context, id int32) (*MachineAvailability, error)
}

type CreateRentalInput struct {
	MachineID         int32
	CustomerID        int32
	StartDate         time.Time
	PlannedReturnDate *time.Time
	// RequestReserved forces the rental into the queue even when the
	// machine is free.
	RequestReserved bool
	Notes           string
	CreatedBy       *int32
}

// UpdateRentalInput mutates non-status fields; nil fields are untouched.
type UpdateRentalInput struct {
	StartDate         *time.Time
	PlannedReturnDate *time.Time
	Notes             *string
}

type RentalService interface {
	Create(ctx context.Context, in CreateRentalInput) (*domain.Rental, error)
	Get(ctx context.Context, id int32) (*domain.Rental, error)
	Update(ctx context.Context, id int32, in UpdateRentalInput) (*domain.Rental, error)
	// Release terminates a rental with status returned or cancelled and
	// promotes the next eligible reservation.
	Release(ctx context.Context, id int32, newStatus domain.RentalStatus) (*domain.Rental, error)
	// Delete is the administrative removal; it runs the same queue
	// advancement as a release when the rental was occupying or queued.
	Delete(ctx context.Context, id int32) error
	List(ctx context.Context, f repository.RentalFilter) ([]domain.Rental, int32, error)
	// AdvanceQueue promotes the eligible queue head for a machine if it is
	// free. Idempotent; used by the due-reservation sweep.
	AdvanceQueue(ctx context.Context, machineID int32) error
}

type NotificationService interface {
	List(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, userID, notificationID int32) error
}

// PriceQuote is what the pricing port returns; the controller stores it
// verbatim and never recomputes.
type PriceQuote struct {
	RateCents     int32
	BillingPeriod domain.BillingPeriod
	TotalCents    int32
}

// PricingPort computes the price for a machine over a date window. The
// lifecycle treats it as a black box; a failure aborts rental creation.
type PricingPort interface {
	Quote(ctx context.Context, m *domain.Machine, start time.Time, end *time.Time, customerID int32) (*PriceQuote, error)
}

// Notifier is the fire-and-forget side channel for lifecycle events. It is
// invoked after the transaction commits and must never fail the caller.
type Notifier interface {
	Notify(ctx context.Context, customerID int32, eventKind string, machineID, rentalID int32)
}

// Notification event kinds emitted by the lifecycle.
const (
	EventRentalCreated       = "rental_created"
	EventReservationQueued   = "reservation_queued"
	EventRentalReturned      = "rental_returned"
	EventRentalCancelled     = "rental_cancelled"
	EventRentalRemoved       = "rental_removed"
	EventReservationActivate = "reservation_activated"
)
