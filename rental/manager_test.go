package rental

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockStore
type MockStore struct {
	mock.Mock
}

func (m *MockStore) LoadCustomers(ctx context.Context) ([]*Customer, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Customer), args.Error(1)
}
func (m *MockStore) SaveCustomers(ctx context.Context, customers []*Customer) error {
	args := m.Called(ctx, customers)
	return args.Error(0)
}
func (m *MockStore) LoadCatalog(ctx context.Context) ([]*ToolCategory, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ToolCategory), args.Error(1)
}
func (m *MockStore) SaveCatalog(ctx context.Context, categories []*ToolCategory) error {
	args := m.Called(ctx, categories)
	return args.Error(0)
}
func (m *MockStore) LoadBookings(ctx context.Context) ([]*Booking, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Booking), args.Error(1)
}
func (m *MockStore) SaveBookings(ctx context.Context, bookings []*Booking) error {
	args := m.Called(ctx, bookings)
	return args.Error(0)
}
func (m *MockStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

func loadedStore(f *fixture, bookings ...*Booking) *MockStore {
	store := new(MockStore)
	store.On("LoadCatalog", mock.Anything).Return(f.catalog.Categories(), nil)
	store.On("LoadCustomers", mock.Anything).Return(f.customers.List(), nil)
	store.On("LoadBookings", mock.Anything).Return(bookings, nil)
	return store
}

func TestRentalManager_LoadFailureStartsEmpty(t *testing.T) {
	f := newFixture()
	store := new(MockStore)
	store.On("LoadCatalog", mock.Anything).Return(nil, errors.New("database is locked"))
	store.On("LoadCustomers", mock.Anything).Return(f.customers.List(), nil)
	store.On("LoadBookings", mock.Anything).Return(nil, errors.New("no such table: bookings"))

	m := NewRentalManager(context.Background(), store, testDeps(script(t)))
	assert.Empty(t, m.CatalogData().Categories())
	assert.Len(t, m.CustomerData().List(), 3)
	assert.Empty(t, m.ListBookings())
	assert.False(t, m.Empty())
	store.AssertExpectations(t)
}

func TestRentalManager_AddBookingPersists(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	store := loadedStore(f)
	store.On("SaveBookings", mock.Anything, mock.AnythingOfType("[]*rental.Booking")).Return(nil).Once()

	p := script(t, "1", "01.06.2025", "03.06.2025", "y", "Bohrhammer", "1", "1", "n", "y")
	m := NewRentalManager(ctx, store, testDeps(p))

	res, err := m.AddBooking(ctx)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCommitted, res.Outcome)
	store.AssertExpectations(t)
	assert.True(t, m.HasBookings(f.adult.ID))
}

func TestRentalManager_SaveFailureKeepsChange(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	store := loadedStore(f)
	store.On("SaveBookings", mock.Anything, mock.Anything).Return(errors.New("disk full"))

	p := script(t, "1", "01.06.2025", "03.06.2025", "y", "Bohrhammer", "1", "1", "n", "y")
	m := NewRentalManager(ctx, store, testDeps(p))

	res, err := m.AddBooking(ctx)
	var saveErr *SaveError
	require.ErrorAs(t, err, &saveErr)
	assert.Equal(t, "bookings", saveErr.Collection)
	assert.Equal(t, OutcomeCommitted, res.Outcome)
	assert.Len(t, m.ListBookings(), 1)
}

func TestRentalManager_UnchangedOutcomesAreNotSaved(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	store := loadedStore(f)

	m := NewRentalManager(ctx, store, testDeps(script(t, "1", "01.06.2025", "03.06.2025", "y", "Bohrhammer", "1", cancel)))
	res, err := m.AddBooking(ctx)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCancelled, res.Outcome)
	store.AssertNotCalled(t, "SaveBookings", mock.Anything, mock.Anything)

	m = NewRentalManager(ctx, store, testDeps(script(t, "Ole", "Nord", "Kai 2", "01.01.1980", "")))
	store.On("SaveCustomers", mock.Anything, mock.Anything).Return(nil).Once()
	out, err := m.AddCustomer(ctx)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCommitted, out)
	store.AssertExpectations(t)
}

func TestRentalManager_EditCategoryRecalculatesBookings(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	b := booking(f.adult.ID, line(june(1), june(3), SlotID{f.bosch.ID, 0}))
	store := loadedStore(f, b)
	store.On("SaveCatalog", mock.Anything, mock.Anything).Return(nil).Once()
	store.On("SaveBookings", mock.Anything, mock.Anything).Return(nil).Once()

	m := NewRentalManager(ctx, store, testDeps(script(t, "Bohrhammer", "", "4000", "", "")))
	assert.Equal(t, Cents(9000), b.TotalCost)

	out, err := m.EditCategory(ctx)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCommitted, out)
	assert.Equal(t, Cents(12000), b.TotalCost)
	store.AssertExpectations(t)
}

func TestRentalManager_DeleteCustomerWithBookings(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	b := booking(f.adult.ID, line(june(1), june(3), SlotID{f.bosch.ID, 0}))
	store := loadedStore(f, b)

	m := NewRentalManager(ctx, store, testDeps(script(t, "1")))
	_, err := m.DeleteCustomer(ctx)
	assert.ErrorIs(t, err, ErrConflict)
	store.AssertNotCalled(t, "SaveCustomers", mock.Anything, mock.Anything)
}

func TestRentalManager_Seed(t *testing.T) {
	ctx := context.Background()
	store := new(MockStore)
	store.On("LoadCatalog", mock.Anything).Return(nil, nil)
	store.On("LoadCustomers", mock.Anything).Return(nil, nil)
	store.On("LoadBookings", mock.Anything).Return(nil, nil)
	store.On("SaveCatalog", mock.Anything, mock.Anything).Return(nil).Once()
	store.On("SaveCustomers", mock.Anything, mock.Anything).Return(nil).Once()

	m := NewRentalManager(ctx, store, testDeps(script(t)))
	require.True(t, m.Empty())

	seeded, err := m.Seed(ctx)
	require.NoError(t, err)
	assert.True(t, seeded)
	assert.Len(t, m.CatalogData().Categories(), 4)
	require.Len(t, m.CustomerData().List(), 2)

	// the young starter customer may not book insured tools
	young := m.CustomerData().List()[1]
	assert.Less(t, young.Age(today), DefaultRules.MinInsuredAge)
	assert.GreaterOrEqual(t, young.Age(today), DefaultRules.MinCustomerAge)

	seeded, err = m.Seed(ctx)
	require.NoError(t, err)
	assert.False(t, seeded)
	store.AssertExpectations(t)
}
