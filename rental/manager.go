package rental

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// RentalManager is a thin façade over the store and the interactive
// services, keeping CLI code simple. Every committed change is written back
// to the store as a whole collection.
type RentalManager struct {
	store     Store
	log       *slog.Logger
	clock     Clock
	catalog   *Catalog
	customers *Customers

	Bookings *BookingManager
	Catalog  *CatalogService
	Clients  *CustomerService
}

// NewRentalManager loads all collections from the store and wires the
// services. A collection that cannot be loaded starts empty.
func NewRentalManager(ctx context.Context, store Store, deps Deps) *RentalManager {
	deps = deps.withDefaults()
	m := &RentalManager{store: store, log: deps.Log, clock: deps.Clock}

	categories, err := store.LoadCatalog(ctx)
	if err != nil {
		m.log.Warn("catalog could not be loaded, starting empty", "error", err)
		categories = nil
	}
	customers, err := store.LoadCustomers(ctx)
	if err != nil {
		m.log.Warn("customers could not be loaded, starting empty", "error", err)
		customers = nil
	}
	bookings, err := store.LoadBookings(ctx)
	if err != nil {
		m.log.Warn("bookings could not be loaded, starting empty", "error", err)
		bookings = nil
	}

	m.catalog = NewCatalog(categories)
	m.customers = NewCustomers(customers)
	m.Bookings = NewBookingManager(m.catalog, m.customers, bookings, deps)
	m.Bookings.Recalculate()
	m.Catalog = NewCatalogService(m.catalog, m.Bookings.ReferencesType, deps)
	m.Clients = NewCustomerService(m.customers, m.Bookings.ReferencesCustomer, deps)
	return m
}

// Close closes the underlying store.
func (m *RentalManager) Close() error { return m.store.Close() }

// CatalogData exposes the loaded catalog.
func (m *RentalManager) CatalogData() *Catalog { return m.catalog }

// CustomerData exposes the loaded customer registry.
func (m *RentalManager) CustomerData() *Customers { return m.customers }

// Empty reports whether there is neither a catalog nor a customer.
func (m *RentalManager) Empty() bool {
	return len(m.catalog.Categories()) == 0 && len(m.customers.List()) == 0
}

// Seed fills an empty catalog and customer registry with the starter data.
// It reports whether anything was written.
func (m *RentalManager) Seed(ctx context.Context) (bool, error) {
	seeded := false
	if len(m.catalog.Categories()) == 0 {
		for _, c := range DefaultCatalog() {
			if err := m.catalog.AddCategory(c); err != nil {
				return seeded, err
			}
		}
		if err := m.saveCatalog(ctx); err != nil {
			return seeded, err
		}
		seeded = true
	}
	if len(m.customers.List()) == 0 {
		for _, c := range DefaultCustomers(m.clock.Now()) {
			if err := m.customers.Add(c); err != nil {
				return seeded, err
			}
		}
		if err := m.saveCustomers(ctx); err != nil {
			return seeded, err
		}
		seeded = true
	}
	if seeded {
		m.log.Info("seeded starter data", "categories", len(m.catalog.Categories()), "customers", len(m.customers.List()))
	}
	return seeded, nil
}

// ------------------ Persistence ------------------

func (m *RentalManager) saveCatalog(ctx context.Context) error {
	if err := m.store.SaveCatalog(ctx, m.catalog.Categories()); err != nil {
		return &SaveError{Collection: "catalog", Err: err}
	}
	return nil
}

func (m *RentalManager) saveCustomers(ctx context.Context) error {
	if err := m.store.SaveCustomers(ctx, m.customers.List()); err != nil {
		return &SaveError{Collection: "customers", Err: err}
	}
	return nil
}

func (m *RentalManager) saveBookings(ctx context.Context) error {
	if err := m.store.SaveBookings(ctx, m.Bookings.Bookings()); err != nil {
		return &SaveError{Collection: "bookings", Err: err}
	}
	return nil
}

// SaveAll writes every collection.
func (m *RentalManager) SaveAll(ctx context.Context) error {
	if err := m.saveCustomers(ctx); err != nil {
		return err
	}
	if err := m.saveCatalog(ctx); err != nil {
		return err
	}
	return m.saveBookings(ctx)
}

func (m *RentalManager) persist(ctx context.Context, o Outcome, err error, save func(context.Context) error) (Outcome, error) {
	if err != nil || !o.Changed() {
		return o, err
	}
	if err := save(ctx); err != nil {
		m.log.Error("save failed, change kept in memory", "error", err)
		return o, err
	}
	return o, nil
}

func (m *RentalManager) persistBooking(ctx context.Context, r BookingResult, err error) (BookingResult, error) {
	_, err = m.persist(ctx, r.Outcome, err, m.saveBookings)
	return r, err
}

// ------------------ Bookings ------------------

func (m *RentalManager) AddBooking(ctx context.Context) (BookingResult, error) {
	r, err := m.Bookings.AddBooking()
	return m.persistBooking(ctx, r, err)
}

func (m *RentalManager) EditBooking(ctx context.Context) (BookingResult, error) {
	r, err := m.Bookings.EditBooking()
	return m.persistBooking(ctx, r, err)
}

func (m *RentalManager) DeleteBooking(ctx context.Context) (BookingResult, error) {
	r, err := m.Bookings.DeleteBooking()
	return m.persistBooking(ctx, r, err)
}

func (m *RentalManager) ListBookings() []BookingView { return m.Bookings.ListBookings() }

// ------------------ Catalog ------------------

func (m *RentalManager) AddCategory(ctx context.Context) (Outcome, error) {
	o, err := m.Catalog.AddCategory()
	return m.persist(ctx, o, err, m.saveCatalog)
}

func (m *RentalManager) EditCategory(ctx context.Context) (Outcome, error) {
	o, err := m.Catalog.EditCategory()
	if err != nil || !o.Changed() {
		return o, err
	}
	// Day rates feed the cached booking totals.
	m.Bookings.Recalculate()
	return m.persist(ctx, o, nil, func(ctx context.Context) error {
		if err := m.saveCatalog(ctx); err != nil {
			return err
		}
		return m.saveBookings(ctx)
	})
}

func (m *RentalManager) DeleteCategory(ctx context.Context) (Outcome, error) {
	o, err := m.Catalog.DeleteCategory()
	return m.persist(ctx, o, err, m.saveCatalog)
}

func (m *RentalManager) AddType(ctx context.Context) (Outcome, error) {
	o, err := m.Catalog.AddType()
	return m.persist(ctx, o, err, m.saveCatalog)
}

func (m *RentalManager) EditType(ctx context.Context) (Outcome, error) {
	o, err := m.Catalog.EditType()
	return m.persist(ctx, o, err, m.saveCatalog)
}

func (m *RentalManager) DeleteType(ctx context.Context) (Outcome, error) {
	o, err := m.Catalog.DeleteType()
	return m.persist(ctx, o, err, m.saveCatalog)
}

// ------------------ Customers ------------------

func (m *RentalManager) AddCustomer(ctx context.Context) (Outcome, error) {
	o, err := m.Clients.AddCustomer()
	return m.persist(ctx, o, err, m.saveCustomers)
}

func (m *RentalManager) EditCustomer(ctx context.Context) (Outcome, error) {
	o, err := m.Clients.EditCustomer()
	return m.persist(ctx, o, err, m.saveCustomers)
}

func (m *RentalManager) DeleteCustomer(ctx context.Context) (Outcome, error) {
	o, err := m.Clients.DeleteCustomer()
	return m.persist(ctx, o, err, m.saveCustomers)
}

// HasBookings reports whether the customer holds any booking.
func (m *RentalManager) HasBookings(customerID uuid.UUID) bool {
	return m.Bookings.ReferencesCustomer(customerID)
}
