package rental

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Customers is the in-memory customer registry.
type Customers struct {
	list []*Customer
}

// NewCustomers wraps loaded customers.
func NewCustomers(list []*Customer) *Customers {
	return &Customers{list: list}
}

// List returns customers in insertion order.
func (r *Customers) List() []*Customer { return r.list }

// Get returns nil when no customer has the id.
func (r *Customers) Get(id uuid.UUID) *Customer {
	for _, c := range r.list {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// Add validates and appends a customer.
func (r *Customers) Add(c *Customer) error {
	normalizeCustomer(c)
	if err := checkCustomer(c); err != nil {
		return err
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.list = append(r.list, c)
	return nil
}

// Update replaces the stored fields of the customer with the same id.
func (r *Customers) Update(c Customer) error {
	existing := r.Get(c.ID)
	if existing == nil {
		return fmt.Errorf("customer %s: %w", c.ID, ErrNotFound)
	}
	normalizeCustomer(&c)
	if err := checkCustomer(&c); err != nil {
		return err
	}
	*existing = c
	return nil
}

// Remove deletes the customer with the id.
func (r *Customers) Remove(id uuid.UUID) error {
	for i, c := range r.list {
		if c.ID == id {
			r.list = append(r.list[:i], r.list[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("customer %s: %w", id, ErrNotFound)
}

func normalizeCustomer(c *Customer) {
	c.FirstName = strings.TrimSpace(c.FirstName)
	c.LastName = strings.TrimSpace(c.LastName)
	c.Address = strings.TrimSpace(c.Address)
	c.BirthDate = DateOf(c.BirthDate)
	c.IBAN = NormalizeIBAN(c.IBAN)
}

func checkCustomer(c *Customer) error {
	if err := validateEntity("customer", c); err != nil {
		return err
	}
	if c.BirthDate.IsZero() {
		return &ValidationError{Entity: "customer", Err: fmt.Errorf("birth date is required")}
	}
	if !ValidIBAN(c.IBAN) {
		return &ValidationError{Entity: "customer", Err: fmt.Errorf("invalid IBAN %q", c.IBAN)}
	}
	return nil
}

// CustomerService runs the interactive customer workflows.
type CustomerService struct {
	customers *Customers
	inUse     func(uuid.UUID) bool
	deps      Deps
}

// NewCustomerService wires the service. inUse reports whether a customer is
// still referenced by a booking; nil means never.
func NewCustomerService(customers *Customers, inUse func(uuid.UUID) bool, deps Deps) *CustomerService {
	if inUse == nil {
		inUse = func(uuid.UUID) bool { return false }
	}
	return &CustomerService{customers: customers, inUse: inUse, deps: deps.withDefaults()}
}

// ListCustomers prints and returns all customers.
func (s *CustomerService) ListCustomers() []*Customer {
	list := s.customers.List()
	if len(list) == 0 {
		s.deps.Prompt.Notify("No customers.")
		return nil
	}
	for i, c := range list {
		s.deps.Prompt.Notify("%d. %s", i+1, RenderCustomer(c))
	}
	return list
}

func (s *CustomerService) birthDateRule(d time.Time) error {
	if s.ageOn(d) < s.deps.Rules.MinCustomerAge {
		return fmt.Errorf("customers must be at least %d years old", s.deps.Rules.MinCustomerAge)
	}
	return nil
}

func (s *CustomerService) ageOn(birth time.Time) int {
	c := Customer{BirthDate: birth}
	return c.Age(s.deps.Clock.Now())
}

// askIBAN accepts a valid IBAN or "cash". A non-empty current value is kept
// on blank input.
func (s *CustomerService) askIBAN(current string) Answer[string] {
	p := s.deps.Prompt
	for {
		shown := current
		if current == "" {
			shown = "cash"
		}
		a := p.Text(fmt.Sprintf("IBAN or 'cash' [%s]: ", shown), shown)
		if a.Cancelled {
			return a
		}
		v := strings.TrimSpace(a.Value)
		if strings.EqualFold(v, "cash") {
			return Got("")
		}
		if v != "" && ValidIBAN(v) {
			return Got(NormalizeIBAN(v))
		}
		p.Notify("Invalid IBAN, please try again.")
	}
}

// AddCustomer asks for a new customer's data and stores it.
func (s *CustomerService) AddCustomer() (Outcome, error) {
	p := s.deps.Prompt
	for i, c := range s.customers.List() {
		p.Notify("%d. %s – %s", i+1, c.FullName(), c.Address)
	}

	var c Customer
	first := p.Text("First name: ", "")
	if first.Cancelled {
		return s.cancelled()
	}
	last := p.Text("Last name: ", "")
	if last.Cancelled {
		return s.cancelled()
	}
	addr := p.Text("Address: ", "")
	if addr.Cancelled {
		return s.cancelled()
	}
	birth := p.Date("Birth date (DD.MM.YYYY): ", time.Time{}, s.birthDateRule)
	if birth.Cancelled {
		return s.cancelled()
	}
	iban := s.askIBAN("")
	if iban.Cancelled {
		return s.cancelled()
	}
	c.FirstName, c.LastName, c.Address, c.BirthDate, c.IBAN = first.Value, last.Value, addr.Value, birth.Value, iban.Value

	if err := s.customers.Add(&c); err != nil {
		return OutcomeDiscarded, err
	}
	s.deps.Log.Info("customer added", "customer_id", c.ID)
	p.Notify("Customer added.")
	return OutcomeCommitted, nil
}

// EditCustomer changes a customer; blank input keeps a field.
func (s *CustomerService) EditCustomer() (Outcome, error) {
	p := s.deps.Prompt
	list := s.customers.List()
	if len(list) == 0 {
		return OutcomeEmpty, fmt.Errorf("no customers: %w", ErrPrecondition)
	}
	s.ListCustomers()
	idx := p.Int("Customer number: ", 1, len(list))
	if idx.Cancelled {
		return s.cancelled()
	}
	next := *list[idx.Value-1]
	p.Notify("Editing customer %s", next.FullName())

	first := p.Text(fmt.Sprintf("First name [%s]: ", next.FirstName), next.FirstName)
	if first.Cancelled {
		return s.cancelled()
	}
	last := p.Text(fmt.Sprintf("Last name [%s]: ", next.LastName), next.LastName)
	if last.Cancelled {
		return s.cancelled()
	}
	addr := p.Text(fmt.Sprintf("Address [%s]: ", next.Address), next.Address)
	if addr.Cancelled {
		return s.cancelled()
	}
	birth := p.Date(fmt.Sprintf("Birth date [%s]: ", FormatDate(next.BirthDate)), next.BirthDate, s.birthDateRule)
	if birth.Cancelled {
		return s.cancelled()
	}
	iban := s.askIBAN(next.IBAN)
	if iban.Cancelled {
		return s.cancelled()
	}
	next.FirstName, next.LastName, next.Address, next.BirthDate, next.IBAN = first.Value, last.Value, addr.Value, birth.Value, iban.Value

	if err := s.customers.Update(next); err != nil {
		return OutcomeDiscarded, err
	}
	s.deps.Log.Info("customer updated", "customer_id", next.ID)
	p.Notify("Customer updated.")
	return OutcomeCommitted, nil
}

// DeleteCustomer removes a customer after confirmation. Customers with
// bookings cannot be removed.
func (s *CustomerService) DeleteCustomer() (Outcome, error) {
	p := s.deps.Prompt
	list := s.customers.List()
	if len(list) == 0 {
		return OutcomeEmpty, fmt.Errorf("no customers: %w", ErrPrecondition)
	}
	s.ListCustomers()
	idx := p.Int("Customer number to delete: ", 1, len(list))
	if idx.Cancelled {
		return s.cancelled()
	}
	c := list[idx.Value-1]
	if s.inUse(c.ID) {
		return OutcomeDiscarded, fmt.Errorf("customer %s still has bookings: %w", c.FullName(), ErrConflict)
	}
	ok := p.Confirm(fmt.Sprintf("Really delete '%s'? (y/n): ", c.FullName()), nil)
	if ok.Cancelled {
		return s.cancelled()
	}
	if !ok.Value {
		p.Notify("Customer was not deleted.")
		return OutcomeDiscarded, nil
	}
	if err := s.customers.Remove(c.ID); err != nil {
		return OutcomeDiscarded, err
	}
	s.deps.Log.Info("customer deleted", "customer_id", c.ID)
	p.Notify("Customer deleted.")
	return OutcomeCommitted, nil
}

func (s *CustomerService) cancelled() (Outcome, error) {
	s.deps.Prompt.Notify("Operation cancelled.")
	return OutcomeCancelled, nil
}
