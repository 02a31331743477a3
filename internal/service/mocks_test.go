package service_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/junusg25/kamer-modul-sub006/internal/domain"
	"github.com/junusg25/kamer-modul-sub006/internal/repository"
	"github.com/junusg25/kamer-modul-sub006/internal/service"
)

type MockMachineRepo struct {
	mock.Mock
}

func (m *MockMachineRepo) Create(ctx context.Context, mc *domain.Machine) error {
	return m.Called(ctx, mc).Error(0)
}

func (m *MockMachineRepo) GetByID(ctx context.Context, id int32) (*domain.Machine, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Machine), args.Error(1)
}

func (m *MockMachineRepo) GetForUpdate(ctx context.Context, id int32) (*domain.Machine, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Machine), args.Error(1)
}

func (m *MockMachineRepo) Update(ctx context.Context, mc *domain.Machine) error {
	return m.Called(ctx, mc).Error(0)
}

func (m *MockMachineRepo) Delete(ctx context.Context, id int32) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockMachineRepo) List(ctx context.Context, f repository.MachineFilter) ([]domain.Machine, int32, error) {
	args := m.Called(ctx, f)
	var machines []domain.Machine
	if args.Get(0) != nil {
		machines = args.Get(0).([]domain.Machine)
	}
	return machines, args.Get(1).(int32), args.Error(2)
}

type MockRentalRepo struct {
	mock.Mock
}

func (m *MockRentalRepo) Create(ctx context.Context, rt *domain.Rental) error {
	return m.Called(ctx, rt).Error(0)
}

func (m *MockRentalRepo) GetByID(ctx context.Context, id int32) (*domain.Rental, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}

func (m *MockRentalRepo) Update(ctx context.Context, rt *domain.Rental) error {
	return m.Called(ctx, rt).Error(0)
}

func (m *MockRentalRepo) Delete(ctx context.Context, id int32) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRentalRepo) List(ctx context.Context, f repository.RentalFilter) ([]domain.Rental, int32, error) {
	args := m.Called(ctx, f)
	var rentals []domain.Rental
	if args.Get(0) != nil {
		rentals = args.Get(0).([]domain.Rental)
	}
	return rentals, args.Get(1).(int32), args.Error(2)
}

func (m *MockRentalRepo) FindCurrentOccupant(ctx context.Context, machineID int32) (*domain.Rental, error) {
	args := m.Called(ctx, machineID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}

func (m *MockRentalRepo) FindEligibleQueueHead(ctx context.Context, machineID int32, asOf time.Time) (*domain.Rental, error) {
	args := m.Called(ctx, machineID, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}

func (m *MockRentalRepo) ListOpenByMachine(ctx context.Context, machineID int32) ([]domain.Rental, error) {
	args := m.Called(ctx, machineID)
	var rentals []domain.Rental
	if args.Get(0) != nil {
		rentals = args.Get(0).([]domain.Rental)
	}
	return rentals, args.Error(1)
}

func (m *MockRentalRepo) ListReservations(ctx context.Context, machineID int32) ([]domain.Rental, error) {
	args := m.Called(ctx, machineID)
	var rentals []domain.Rental
	if args.Get(0) != nil {
		rentals = args.Get(0).([]domain.Rental)
	}
	return rentals, args.Error(1)
}

func (m *MockRentalRepo) CountByMachine(ctx context.Context, machineID int32) (int32, error) {
	args := m.Called(ctx, machineID)
	return args.Get(0).(int32), args.Error(1)
}

type MockCustomerRepo struct {
	mock.Mock
}

func (m *MockCustomerRepo) Exists(ctx context.Context, id int32) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type MockNotificationRepo struct {
	mock.Mock
}

func (m *MockNotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	return m.Called(ctx, n).Error(0)
}

func (m *MockNotificationRepo) List(ctx context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error) {
	args := m.Called(ctx, userID, limit, offset)
	var notifications []domain.Notification
	if args.Get(0) != nil {
		notifications = args.Get(0).([]domain.Notification)
	}
	return notifications, args.Get(1).(int32), args.Error(2)
}

func (m *MockNotificationRepo) MarkAsRead(ctx context.Context, id, userID int32) error {
	return m.Called(ctx, id, userID).Error(0)
}

type MockPricing struct {
	mock.Mock
}

func (m *MockPricing) Quote(ctx context.Context, mc *domain.Machine, start time.Time, end *time.Time, customerID int32) (*service.PriceQuote, error) {
	args := m.Called(ctx, mc, start, end, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PriceQuote), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, customerID int32, eventKind string, machineID, rentalID int32) {
	m.Called(ctx, customerID, eventKind, machineID, rentalID)
}

// stubTx runs the callback against the same mocks the service holds, so a
// test observes every call the transaction would make.
type stubTx struct {
	repos repository.Repositories
}

func (s *stubTx) WithinTx(ctx context.Context, fn func(r repository.Repositories) error) error {
	return fn(s.repos)
}

type fixture struct {
	machines  *MockMachineRepo
	rentals   *MockRentalRepo
	customers *MockCustomerRepo
	pricing   *MockPricing
	notifier  *MockNotifier
	tx        *stubTx
}

func newFixture() *fixture {
	f := &fixture{
		machines:  new(MockMachineRepo),
		rentals:   new(MockRentalRepo),
		customers: new(MockCustomerRepo),
		pricing:   new(MockPricing),
		notifier:  new(MockNotifier),
	}
	f.tx = &stubTx{repos: repository.Repositories{
		Machines:  f.machines,
		Rentals:   f.rentals,
		Customers: f.customers,
	}}
	return f
}

func (f *fixture) rentalService() service.RentalService {
	return service.NewRentalService(f.tx, f.rentals, f.machines, f.pricing, f.notifier)
}

func (f *fixture) machineService() service.MachineService {
	return service.NewMachineService(f.tx, f.machines, f.rentals)
}
