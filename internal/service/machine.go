package service

import (
	"context"
	"fmt"

	"github.com/junusg25/kamer-modul-sub006/internal/domain"
	"github.com/junusg25/kamer-modul-sub006/internal/repository"
)

type machineService struct {
	tx       repository.TxRunner
	machines repository.MachineRepository
	rentals  repository.RentalRepository
}

func NewMachineService(tx repository.TxRunner, machines repository.MachineRepository, rentals repository.RentalRepository) MachineService {
	return &machineService{tx: tx, machines: machines, rentals: rentals}
}

func (s *machineService) Register(ctx context.Context, m *domain.Machine) error {
	if m.ModelID == 0 || m.SerialNumber == "" {
		return fmt.Errorf("model and serial number are required: %w", domain.ErrInvalidInput)
	}
	if m.Condition == "" {
		m.Condition = domain.MachineConditionGood
	}
	if !m.Condition.Valid() {
		return fmt.Errorf("unknown condition %q: %w", m.Condition, domain.ErrInvalidInput)
	}
	m.RentalStatus = domain.MachineStatusAvailable
	return s.machines.Create(ctx, m)
}

func (s *machineService) Get(ctx context.Context, id int32) (*domain.Machine, error) {
	return s.machines.GetByID(ctx, id)
}

// Update applies a partial patch. Lifecycle-managed statuses (rented,
// reserved) are refused outright; administrative overrides (available,
// maintenance, retired) are refused while an active rental holds the
// machine.
func (s *machineService) Update(ctx context.Context, id int32, patch MachinePatch) (*domain.Machine, error) {
	if patch.RentalStatus != nil {
		if !patch.RentalStatus.Valid() {
			return nil, fmt.Errorf("unknown status %q: %w", *patch.RentalStatus, domain.ErrInvalidInput)
		}
		if patch.RentalStatus.LifecycleManaged() {
			return nil, fmt.Errorf("status %q is set by the rental lifecycle: %w", *patch.RentalStatus, domain.ErrInvalidInput)
		}
	}
	if patch.Condition != nil && !patch.Condition.Valid() {
		return nil, fmt.Errorf("unknown condition %q: %w", *patch.Condition, domain.ErrInvalidInput)
	}

	var updated *domain.Machine
	err := s.tx.WithinTx(ctx, func(r repository.Repositories) error {
		m, err := r.Machines.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}

		if patch.RentalStatus != nil && *patch.RentalStatus != m.RentalStatus {
			occupant, err := r.Rentals.FindCurrentOccupant(ctx, id)
			if err != nil {
				return err
			}
			if occupant != nil {
				return fmt.Errorf("rental %d holds machine %d: %w", occupant.ID, id, domain.ErrMachineInUse)
			}
			m.RentalStatus = *patch.RentalStatus
		}
		if patch.Condition != nil {
			m.Condition = *patch.Condition
		}
		if patch.Location != nil {
			m.Location = *patch.Location
		}
		if patch.Notes != nil {
			m.Notes = *patch.Notes
		}
		if patch.RateDayCents != nil {
			m.RateDayCents = *patch.RateDayCents
		}
		if patch.RateWeekCents != nil {
			m.RateWeekCents = *patch.RateWeekCents
		}
		if patch.RateMonthCents != nil {
			m.RateMonthCents = *patch.RateMonthCents
		}

		if err := r.Machines.Update(ctx, m); err != nil {
			return err
		}
		updated = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Remove deletes a machine only when nothing ever referenced it; rental
// history is an audit trail and blocks deletion.
func (s *machineService) Remove(ctx context.Context, id int32) error {
	return s.tx.WithinTx(ctx, func(r repository.Repositories) error {
		if _, err := r.Machines.GetForUpdate(ctx, id); err != nil {
			return err
		}
		count, err := r.Rentals.CountByMachine(ctx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("machine %d has %d rentals: %w", id, count, domain.ErrMachineHasHistory)
		}
		return r.Machines.Delete(ctx, id)
	})
}

func (s *machineService) List(ctx context.Context, f repository.MachineFilter) ([]domain.Machine, int32, error) {
	return s.machines.List(ctx, f)
}

func (s *machineService) Availability(ctx context.Context, id int32) (*MachineAvailability, error) {
	m, err := s.machines.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	occupant, err := s.rentals.FindCurrentOccupant(ctx, id)
	if err != nil {
		return nil, err
	}
	queue, err := s.rentals.ListReservations(ctx, id)
	if err != nil {
		return nil, err
	}
	return &MachineAvailability{Machine: m, CurrentOccupant: occupant, Queue: queue}, nil
}
