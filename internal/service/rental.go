package service

import (
	"context"
	"fmt"
	"time"

	"github.com/junusg25/kamer-modul-sub006/internal/domain"
	"github.com/junusg25/kamer-modul-sub006/internal/repository"
)

// rentalService is the lifecycle controller. Every mutating operation runs
// inside one transaction and locks the machine row before reading occupancy,
// so two concurrent operations on the same machine cannot both observe it
// free. Notifications fire only after the transaction commits.
type rentalService struct {
	tx       repository.TxRunner
	rentals  repository.RentalRepository
	machines repository.MachineRepository
	pricing  PricingPort
	notifier Notifier
}

func NewRentalService(
	tx repository.TxRunner,
	rentals repository.RentalRepository,
	machines repository.MachineRepository,
	pricing PricingPort,
	notifier Notifier,
) RentalService {
	return &rentalService{
		tx:       tx,
		rentals:  rentals,
		machines: machines,
		pricing:  pricing,
		notifier: notifier,
	}
}

type lifecycleEvent struct {
	customerID int32
	kind       string
	machineID  int32
	rentalID   int32
}

func (s *rentalService) Create(ctx context.Context, in CreateRentalInput) (*domain.Rental, error) {
	if in.MachineID == 0 || in.CustomerID == 0 || in.StartDate.IsZero() {
		return nil, fmt.Errorf("machine, customer and start date are required: %w", domain.ErrInvalidInput)
	}
	start := domain.TruncateToDay(in.StartDate)
	var planned *time.Time
	if in.PlannedReturnDate != nil {
		p := domain.TruncateToDay(*in.PlannedReturnDate)
		if p.Before(start) {
			return nil, fmt.Errorf("planned return date precedes start date: %w", domain.ErrInvalidInput)
		}
		planned = &p
	}

	var rt *domain.Rental
	var events []lifecycleEvent

	err := s.tx.WithinTx(ctx, func(r repository.Repositories) error {
		m, err := r.Machines.GetForUpdate(ctx, in.MachineID)
		if err != nil {
			return err
		}
		if m.RentalStatus.Administrative() {
			return fmt.Errorf("machine %d is %s: %w", m.ID, m.RentalStatus, domain.ErrMachineUnavailable)
		}
		exists, err := r.Customers.Exists(ctx, in.CustomerID)
		if err != nil {
			return err
		}
		if !exists {
			return domain.ErrCustomerNotFound
		}

		open, err := r.Rentals.ListOpenByMachine(ctx, in.MachineID)
		if err != nil {
			return err
		}
		occupant := firstOccupant(open)
		if occupant != nil {
			eff := occupant.EffectiveReturnDate()
			if eff == nil || start.Before(domain.TruncateToDay(*eff)) {
				return fmt.Errorf("machine %d held by rental %d: %w", m.ID, occupant.ID, domain.ErrOverlappingRental)
			}
		}
		if err := validateNoOverlap(open, 0, start, planned); err != nil {
			return err
		}

		status := domain.RentalStatusReserved
		today := domain.TruncateToDay(time.Now())
		if !in.RequestReserved && occupant == nil && !start.After(today) {
			status = domain.RentalStatusActive
		}

		quote, err := s.pricing.Quote(ctx, m, start, planned, in.CustomerID)
		if err != nil {
			return fmt.Errorf("pricing: %w", err)
		}

		rt = &domain.Rental{
			MachineID:         in.MachineID,
			CustomerID:        in.CustomerID,
			StartDate:         start,
			PlannedReturnDate: planned,
			Status:            status,
			BillingPeriod:     quote.BillingPeriod,
			RateCents:         quote.RateCents,
			TotalCents:        quote.TotalCents,
			Notes:             in.Notes,
			CreatedBy:         in.CreatedBy,
		}
		if err := r.Rentals.Create(ctx, rt); err != nil {
			return err
		}

		if status == domain.RentalStatusActive {
			if m.RentalStatus != domain.MachineStatusRented {
				m.RentalStatus = domain.MachineStatusRented
				if err := r.Machines.Update(ctx, m); err != nil {
					return err
				}
			}
			events = append(events, lifecycleEvent{in.CustomerID, EventRentalCreated, m.ID, 0})
		} else {
			// A machine already rented stays rented while reservations queue
			// behind it.
			if m.RentalStatus == domain.MachineStatusAvailable {
				m.RentalStatus = domain.MachineStatusReserved
				if err := r.Machines.Update(ctx, m); err != nil {
					return err
				}
			}
			events = append(events, lifecycleEvent{in.CustomerID, EventReservationQueued, m.ID, 0})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for i := range events {
		events[i].rentalID = rt.ID
	}
	s.dispatch(ctx, events)
	return rt, nil
}

func (s *rentalService) Release(ctx context.Context, id int32, newStatus domain.RentalStatus) (*domain.Rental, error) {
	if newStatus != domain.RentalStatusReturned && newStatus != domain.RentalStatusCancelled {
		return nil, fmt.Errorf("release status must be returned or cancelled: %w", domain.ErrInvalidInput)
	}

	var rt, promoted *domain.Rental
	err := s.tx.WithinTx(ctx, func(r repository.Repositories) error {
		cur, err := r.Rentals.GetByID(ctx, id)
		if err != nil {
			return err
		}
		m, err := r.Machines.GetForUpdate(ctx, cur.MachineID)
		if err != nil {
			return err
		}
		// Re-read after taking the lock; a concurrent release may have won.
		cur, err = r.Rentals.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if cur.Status.Terminal() {
			return fmt.Errorf("rental %d is %s: %w", cur.ID, cur.Status, domain.ErrAlreadyTerminal)
		}

		cur.Status = newStatus
		if newStatus == domain.RentalStatusReturned {
			now := time.Now()
			cur.EndDate = &now
		}
		if err := r.Rentals.Update(ctx, cur); err != nil {
			return err
		}

		promoted, err = advanceQueue(ctx, r, m, time.Now())
		if err != nil {
			return err
		}
		rt = cur
		return nil
	})
	if err != nil {
		return nil, err
	}

	events := []lifecycleEvent{{rt.CustomerID, releaseEventKind(newStatus), rt.MachineID, rt.ID}}
	if promoted != nil {
		events = append(events, lifecycleEvent{promoted.CustomerID, EventReservationActivate, promoted.MachineID, promoted.ID})
	}
	s.dispatch(ctx, events)
	return rt, nil
}

func (s *rentalService) Update(ctx context.Context, id int32, in UpdateRentalInput) (*domain.Rental, error) {
	var rt *domain.Rental
	err := s.tx.WithinTx(ctx, func(r repository.Repositories) error {
		cur, err := r.Rentals.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if _, err := r.Machines.GetForUpdate(ctx, cur.MachineID); err != nil {
			return err
		}
		cur, err = r.Rentals.GetByID(ctx, id)
		if err != nil {
			return err
		}

		datesChanged := in.StartDate != nil || in.PlannedReturnDate != nil
		if datesChanged && cur.Status.Terminal() {
			return fmt.Errorf("rental %d is %s: %w", cur.ID, cur.Status, domain.ErrAlreadyTerminal)
		}
		if in.StartDate != nil {
			start := domain.TruncateToDay(*in.StartDate)
			if cur.Status.Occupying() && !start.Equal(domain.TruncateToDay(cur.StartDate)) {
				return fmt.Errorf("start date is immutable once active: %w", domain.ErrInvalidInput)
			}
			cur.StartDate = start
		}
		if in.PlannedReturnDate != nil {
			p := domain.TruncateToDay(*in.PlannedReturnDate)
			cur.PlannedReturnDate = &p
		}
		if in.Notes != nil {
			cur.Notes = *in.Notes
		}
		if cur.PlannedReturnDate != nil && cur.PlannedReturnDate.Before(domain.TruncateToDay(cur.StartDate)) {
			return fmt.Errorf("planned return date precedes start date: %w", domain.ErrInvalidInput)
		}

		if datesChanged {
			open, err := r.Rentals.ListOpenByMachine(ctx, cur.MachineID)
			if err != nil {
				return err
			}
			var end *time.Time
			if eff := cur.EffectiveReturnDate(); eff != nil {
				e := domain.TruncateToDay(*eff)
				end = &e
			}
			if err := validateNoOverlap(open, cur.ID, domain.TruncateToDay(cur.StartDate), end); err != nil {
				return err
			}
		}

		if err := r.Rentals.Update(ctx, cur); err != nil {
			return err
		}
		rt = cur
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rt, nil
}

func (s *rentalService) Delete(ctx context.Context, id int32) error {
	var removed, promoted *domain.Rental
	err := s.tx.WithinTx(ctx, func(r repository.Repositories) error {
		cur, err := r.Rentals.GetByID(ctx, id)
		if err != nil {
			return err
		}
		m, err := r.Machines.GetForUpdate(ctx, cur.MachineID)
		if err != nil {
			return err
		}
		cur, err = r.Rentals.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if err := r.Rentals.Delete(ctx, id); err != nil {
			return err
		}
		// Removing an occupying or queued rental frees capacity exactly
		// like a release does.
		if cur.Status.Occupying() || cur.Status == domain.RentalStatusReserved {
			promoted, err = advanceQueue(ctx, r, m, time.Now())
			if err != nil {
				return err
			}
		}
		removed = cur
		return nil
	})
	if err != nil {
		return err
	}

	events := []lifecycleEvent{{removed.CustomerID, EventRentalRemoved, removed.MachineID, removed.ID}}
	if promoted != nil {
		events = append(events, lifecycleEvent{promoted.CustomerID, EventReservationActivate, promoted.MachineID, promoted.ID})
	}
	s.dispatch(ctx, events)
	return nil
}

func (s *rentalService) AdvanceQueue(ctx context.Context, machineID int32) error {
	var promoted *domain.Rental
	err := s.tx.WithinTx(ctx, func(r repository.Repositories) error {
		m, err := r.Machines.GetForUpdate(ctx, machineID)
		if err != nil {
			return err
		}
		promoted, err = advanceQueue(ctx, r, m, time.Now())
		return err
	})
	if err != nil {
		return err
	}
	if promoted != nil {
		s.dispatch(ctx, []lifecycleEvent{{promoted.CustomerID, EventReservationActivate, promoted.MachineID, promoted.ID}})
	}
	return nil
}

func (s *rentalService) Get(ctx context.Context, id int32) (*domain.Rental, error) {
	return s.rentals.GetByID(ctx, id)
}

func (s *rentalService) List(ctx context.Context, f repository.RentalFilter) ([]domain.Rental, int32, error) {
	return s.rentals.List(ctx, f)
}

// advanceQueue promotes the earliest due reservation when the machine is
// free. Deterministic and idempotent: with no eligible head and the machine
// already available it changes nothing. Administrative statuses are never
// overwritten; a machine in maintenance or retired keeps its queue parked
// until an operator brings it back.
func advanceQueue(ctx context.Context, r repository.Repositories, m *domain.Machine, asOf time.Time) (*domain.Rental, error) {
	if m.RentalStatus.Administrative() {
		return nil, nil
	}

	occupant, err := r.Rentals.FindCurrentOccupant(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	if occupant != nil {
		return nil, nil
	}

	head, err := r.Rentals.FindEligibleQueueHead(ctx, m.ID, asOf)
	if err != nil {
		return nil, err
	}
	if head != nil {
		head.Status = domain.RentalStatusActive
		if err := r.Rentals.Update(ctx, head); err != nil {
			return nil, err
		}
		if m.RentalStatus != domain.MachineStatusRented {
			m.RentalStatus = domain.MachineStatusRented
			if err := r.Machines.Update(ctx, m); err != nil {
				return nil, err
			}
		}
		return head, nil
	}

	if m.RentalStatus != domain.MachineStatusAvailable {
		m.RentalStatus = domain.MachineStatusAvailable
		if err := r.Machines.Update(ctx, m); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

// firstOccupant returns the rental currently holding the machine from an
// open-rentals list, or nil.
func firstOccupant(open []domain.Rental) *domain.Rental {
	for i := range open {
		if open[i].Status.Occupying() {
			return &open[i]
		}
	}
	return nil
}

// validateNoOverlap checks a candidate window against every open rental
// except excludeID. Touching boundaries are allowed: a window may start on
// the day another ends.
func validateNoOverlap(open []domain.Rental, excludeID int32, start time.Time, end *time.Time) error {
	for i := range open {
		o := &open[i]
		if o.ID == excludeID {
			continue
		}
		var oEnd *time.Time
		if eff := o.EffectiveReturnDate(); eff != nil {
			e := domain.TruncateToDay(*eff)
			oEnd = &e
		}
		if domain.Overlaps(start, end, domain.TruncateToDay(o.StartDate), oEnd) {
			return fmt.Errorf("window conflicts with rental %d: %w", o.ID, domain.ErrOverlappingRental)
		}
	}
	return nil
}

func releaseEventKind(status domain.RentalStatus) string {
	if status == domain.RentalStatusReturned {
		return EventRentalReturned
	}
	return EventRentalCancelled
}

func (s *rentalService) dispatch(ctx context.Context, events []lifecycleEvent) {
	for _, e := range events {
		s.notifier.Notify(ctx, e.customerID, e.kind, e.machineID, e.rentalID)
	}
}
