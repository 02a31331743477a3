package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/junusg25/kamer-modul-sub006/internal/domain"
	"github.com/junusg25/kamer-modul-sub006/internal/service"
)

func TestMachineService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults condition and forces available", func(t *testing.T) {
		f := newFixture()
		m := &domain.Machine{ModelID: 10, SerialNumber: "SN-001", RentalStatus: domain.MachineStatusRented}
		f.machines.On("Create", ctx, m).Return(nil)

		err := f.machineService().Register(ctx, m)
		assert.NoError(t, err)
		assert.Equal(t, domain.MachineConditionGood, m.Condition)
		assert.Equal(t, domain.MachineStatusAvailable, m.RentalStatus)
	})

	t.Run("model and serial are required", func(t *testing.T) {
		f := newFixture()
		err := f.machineService().Register(ctx, &domain.Machine{ModelID: 10})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		f.machines.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("unknown condition is rejected", func(t *testing.T) {
		f := newFixture()
		err := f.machineService().Register(ctx, &domain.Machine{ModelID: 10, SerialNumber: "SN-001", Condition: "mint"})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("duplicate serial surfaces the storage error", func(t *testing.T) {
		f := newFixture()
		m := &domain.Machine{ModelID: 10, SerialNumber: "SN-001"}
		f.machines.On("Create", ctx, m).Return(domain.ErrDuplicateSerial)

		err := f.machineService().Register(ctx, m)
		assert.ErrorIs(t, err, domain.ErrDuplicateSerial)
	})
}

func TestMachineService_Update(t *testing.T) {
	ctx := context.Background()
	machineID := int32(1)

	t.Run("lifecycle-managed statuses cannot be set directly", func(t *testing.T) {
		f := newFixture()
		rented := domain.MachineStatusRented
		_, err := f.machineService().Update(ctx, machineID, service.MachinePatch{RentalStatus: &rented})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("status change is refused while a rental holds the machine", func(t *testing.T) {
		f := newFixture()
		m := availableMachine(machineID)
		m.RentalStatus = domain.MachineStatusRented
		occupant := &domain.Rental{ID: 5, MachineID: machineID, Status: domain.RentalStatusActive}
		maintenance := domain.MachineStatusMaintenance

		f.machines.On("GetForUpdate", ctx, machineID).Return(m, nil)
		f.rentals.On("FindCurrentOccupant", ctx, machineID).Return(occupant, nil)

		_, err := f.machineService().Update(ctx, machineID, service.MachinePatch{RentalStatus: &maintenance})
		assert.ErrorIs(t, err, domain.ErrMachineInUse)
		f.machines.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("free machine accepts an administrative status", func(t *testing.T) {
		f := newFixture()
		m := availableMachine(machineID)
		maintenance := domain.MachineStatusMaintenance

		f.machines.On("GetForUpdate", ctx, machineID).Return(m, nil)
		f.rentals.On("FindCurrentOccupant", ctx, machineID).Return(nil, nil)
		f.machines.On("Update", ctx, m).Return(nil)

		updated, err := f.machineService().Update(ctx, machineID, service.MachinePatch{RentalStatus: &maintenance})
		assert.NoError(t, err)
		assert.Equal(t, domain.MachineStatusMaintenance, updated.RentalStatus)
	})

	t.Run("patch touches only the provided fields", func(t *testing.T) {
		f := newFixture()
		m := availableMachine(machineID)
		m.Location = "depot A"
		location := "depot B"
		rate := int32(1500)

		f.machines.On("GetForUpdate", ctx, machineID).Return(m, nil)
		f.machines.On("Update", ctx, m).Return(nil)

		updated, err := f.machineService().Update(ctx, machineID, service.MachinePatch{Location: &location, RateDayCents: &rate})
		assert.NoError(t, err)
		assert.Equal(t, "depot B", updated.Location)
		assert.Equal(t, int32(1500), updated.RateDayCents)
		assert.Equal(t, domain.MachineConditionGood, updated.Condition)
	})
}

func TestMachineService_Remove(t *testing.T) {
	ctx := context.Background()
	machineID := int32(1)

	t.Run("rental history blocks deletion", func(t *testing.T) {
		f := newFixture()
		f.machines.On("GetForUpdate", ctx, machineID).Return(availableMachine(machineID), nil)
		f.rentals.On("CountByMachine", ctx, machineID).Return(int32(3), nil)

		err := f.machineService().Remove(ctx, machineID)
		assert.ErrorIs(t, err, domain.ErrMachineHasHistory)
		f.machines.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("unreferenced machine deletes cleanly", func(t *testing.T) {
		f := newFixture()
		f.machines.On("GetForUpdate", ctx, machineID).Return(availableMachine(machineID), nil)
		f.rentals.On("CountByMachine", ctx, machineID).Return(int32(0), nil)
		f.machines.On("Delete", ctx, machineID).Return(nil)

		err := f.machineService().Remove(ctx, machineID)
		assert.NoError(t, err)
	})

	t.Run("missing machine propagates not found", func(t *testing.T) {
		f := newFixture()
		f.machines.On("GetForUpdate", ctx, machineID).Return(nil, domain.ErrMachineNotFound)

		err := f.machineService().Remove(ctx, machineID)
		assert.ErrorIs(t, err, domain.ErrMachineNotFound)
	})
}

func TestMachineService_Availability(t *testing.T) {
	ctx := context.Background()
	machineID := int32(1)

	f := newFixture()
	m := availableMachine(machineID)
	m.RentalStatus = domain.MachineStatusRented
	occupant := &domain.Rental{ID: 5, MachineID: machineID, Status: domain.RentalStatusActive}
	queue := []domain.Rental{
		{ID: 6, MachineID: machineID, Status: domain.RentalStatusReserved},
		{ID: 7, MachineID: machineID, Status: domain.RentalStatusReserved},
	}

	f.machines.On("GetByID", ctx, machineID).Return(m, nil)
	f.rentals.On("FindCurrentOccupant", ctx, machineID).Return(occupant, nil)
	f.rentals.On("ListReservations", ctx, machineID).Return(queue, nil)

	av, err := f.machineService().Availability(ctx, machineID)
	assert.NoError(t, err)
	assert.Equal(t, m, av.Machine)
	assert.Equal(t, occupant, av.CurrentOccupant)
	assert.Len(t, av.Queue, 2)
}
