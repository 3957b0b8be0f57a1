package rental

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Deps are the collaborators shared by the interactive services.
type Deps struct {
	Prompt Prompter
	Clock  Clock
	Pricer Pricer
	Rules  Rules
	Log    *slog.Logger
}

func (d Deps) withDefaults() Deps {
	if d.Clock == nil {
		d.Clock = SystemClock
	}
	if d.Rules == (Rules{}) {
		d.Rules = DefaultRules
	}
	if d.Log == nil {
		d.Log = slog.Default()
	}
	return d
}

// BookingResult is returned by the add, edit and delete flows.
type BookingResult struct {
	Outcome   Outcome
	Booking   *Booking
	Conflicts []Conflict
}

// BookingManager runs the booking workflows against the catalog, the
// customer registry and the committed bookings.
type BookingManager struct {
	catalog   *Catalog
	customers *Customers
	bookings  []*Booking
	deps      Deps
}

// NewBookingManager wires a manager over already loaded state.
func NewBookingManager(cat *Catalog, customers *Customers, bookings []*Booking, deps Deps) *BookingManager {
	return &BookingManager{catalog: cat, customers: customers, bookings: bookings, deps: deps.withDefaults()}
}

// Bookings returns the committed bookings in insertion order.
func (m *BookingManager) Bookings() []*Booking { return m.bookings }

// Engine returns an availability engine over the committed bookings.
func (m *BookingManager) Engine() *Engine { return NewEngine(m.bookings) }

// ReferencesType reports whether any committed booking holds a unit of the type.
func (m *BookingManager) ReferencesType(typeID uuid.UUID) bool {
	for _, b := range m.bookings {
		if b.References(typeID) {
			return true
		}
	}
	return false
}

// ReferencesCustomer reports whether the customer has committed bookings.
func (m *BookingManager) ReferencesCustomer(customerID uuid.UUID) bool {
	for _, b := range m.bookings {
		if b.CustomerID == customerID {
			return true
		}
	}
	return false
}

// Recalculate refreshes the range and cost cache of every booking.
func (m *BookingManager) Recalculate() {
	for _, b := range m.bookings {
		b.Refresh(m.catalog, m.deps.Pricer)
	}
}

func (m *BookingManager) today() time.Time { return DateOf(m.deps.Clock.Now()) }

func (m *BookingManager) notPast(d time.Time) error {
	if d.Before(m.today()) {
		return fmt.Errorf("date must be today or later")
	}
	return nil
}

// AddBooking walks the operator through customer, period and tool selection,
// previews the booking and commits it only on confirmation. A cancellation at
// any prompt drops the whole booking.
func (m *BookingManager) AddBooking() (BookingResult, error) {
	p := m.deps.Prompt
	customers := m.customers.List()
	if len(customers) == 0 || len(m.catalog.Categories()) == 0 {
		return BookingResult{}, fmt.Errorf("at least one customer and one tool category are required: %w", ErrPrecondition)
	}

	for i, c := range customers {
		p.Notify("%d. %s", i+1, RenderCustomer(c))
	}
	idx := p.Int("Customer number: ", 1, len(customers))
	if idx.Cancelled {
		return m.cancelled("add")
	}
	customer := customers[idx.Value-1]

	start, end, ok := m.globalRange()
	if !ok {
		return m.cancelled("add")
	}

	shared := p.Confirm("Use this period for all tools? (y/n): ", nil)
	if shared.Cancelled {
		return m.cancelled("add")
	}

	var (
		lines   []BookingLine
		current *ToolCategory
	)
	for {
		line, st := m.selectLine(customer, &current, start, end, shared.Value || len(lines) == 0, lines)
		switch st {
		case lineCancelled:
			return m.cancelled("add")
		case lineAdded:
			lines = append(lines, line)
		}

		more := p.Confirm("Book another tool? (y/n): ", nil)
		if more.Cancelled {
			return m.cancelled("add")
		}
		if !more.Value {
			break
		}
	}

	if len(lines) == 0 {
		p.Notify("No tools selected, booking discarded.")
		return BookingResult{Outcome: OutcomeEmpty}, nil
	}

	b := &Booking{ID: uuid.New(), CustomerID: customer.ID, Lines: lines}
	b.Refresh(m.catalog, m.deps.Pricer)

	p.Notify("\nBooking preview:\n%s", m.Render(b))
	save := p.Confirm("Save this booking? (y/n): ", nil)
	if save.Cancelled {
		return m.cancelled("add")
	}
	if !save.Value {
		p.Notify("Booking discarded.")
		return BookingResult{Outcome: OutcomeDiscarded, Booking: b}, nil
	}

	m.bookings = append(m.bookings, b)
	m.deps.Log.Info("booking committed", "booking_id", b.ID, "customer_id", b.CustomerID,
		"lines", len(b.Lines), "total_cents", int64(b.TotalCost))
	p.Notify("Booking saved.")
	return BookingResult{Outcome: OutcomeCommitted, Booking: b}, nil
}

func (m *BookingManager) cancelled(op string) (BookingResult, error) {
	m.deps.Log.Debug("booking operation cancelled", "operation", op)
	m.deps.Prompt.Notify("Operation cancelled.")
	return BookingResult{Outcome: OutcomeCancelled}, nil
}

// globalRange asks for the booking period until it is ordered and at least
// one unit in the catalog is free in it.
func (m *BookingManager) globalRange() (time.Time, time.Time, bool) {
	p := m.deps.Prompt
	for {
		start, end, ok := m.askRange("Start date (DD.MM.YYYY): ", "End date (DD.MM.YYYY): ")
		if !ok {
			return time.Time{}, time.Time{}, false
		}
		if end.Before(start) {
			p.Notify("End date must not be before the start date.")
			continue
		}
		if !m.Engine().AnyFree(m.catalog.Types(), start, end) {
			p.Notify("No tools are available in this period, please choose another one.")
			continue
		}
		return start, end, true
	}
}

func (m *BookingManager) askRange(startPrompt, endPrompt string) (time.Time, time.Time, bool) {
	p := m.deps.Prompt
	start := p.Date(startPrompt, time.Time{}, m.notPast)
	if start.Cancelled {
		return time.Time{}, time.Time{}, false
	}
	end := p.Date(endPrompt, time.Time{}, m.notPast)
	if end.Cancelled {
		return time.Time{}, time.Time{}, false
	}
	return DateOf(start.Value), DateOf(end.Value), true
}

type lineStatus int

const (
	lineAdded lineStatus = iota
	lineRejected
	lineCancelled
)

// selectLine runs one category/type/quantity selection. A rejected line has
// already been explained to the operator.
func (m *BookingManager) selectLine(customer *Customer, current **ToolCategory, start, end time.Time, useGlobal bool, pending []BookingLine) (BookingLine, lineStatus) {
	p := m.deps.Prompt

	cat, st := m.selectCategory(*current)
	if st != lineAdded {
		return BookingLine{}, st
	}
	*current = cat

	if cat.InsuranceRequired && customer.Age(m.today()) < m.deps.Rules.MinInsuredAge {
		p.Notify("Customers under %d may not book tools that require insurance.", m.deps.Rules.MinInsuredAge)
		return BookingLine{}, lineRejected
	}

	groups := Groups(cat)
	p.Notify("Tool types:")
	for i, g := range groups {
		p.Notify("%d. %s", i+1, g.Label())
	}
	choice := p.Int("Tool number: ", 1, len(groups))
	if choice.Cancelled {
		return BookingLine{}, lineCancelled
	}
	group := groups[choice.Value-1]

	if !useGlobal {
		var ok bool
		start, end, ok = m.askRange("Start date for this tool: ", "End date for this tool: ")
		if !ok {
			return BookingLine{}, lineCancelled
		}
	}
	if end.Before(start) {
		p.Notify("End date must not be before the start date.")
		return BookingLine{}, lineRejected
	}

	engine := m.Engine()
	free := engine.GroupFreeCount(group.Types, start, end, pending)
	if free <= 0 {
		p.Notify("No free units of %s in this period.", group.Label())
		return BookingLine{}, lineRejected
	}

	for {
		qty := p.Int(fmt.Sprintf("How many units of this type? (max. %d): ", free), 1, free)
		if qty.Cancelled {
			return BookingLine{}, lineCancelled
		}
		units, err := engine.AllocateUnits(group.Types, qty.Value, start, end, pending)
		var short *ShortCountError
		if errors.As(err, &short) {
			p.Notify("Only %d available, please enter a smaller number.", short.Available)
			if short.Available == 0 {
				return BookingLine{}, lineRejected
			}
			free = short.Available
			continue
		}
		if err != nil {
			p.Notify("Cannot allocate units: %v", err)
			return BookingLine{}, lineRejected
		}
		return BookingLine{Units: units, Start: start, End: end}, lineAdded
	}
}

func (m *BookingManager) selectCategory(previous *ToolCategory) (*ToolCategory, lineStatus) {
	p := m.deps.Prompt
	if previous != nil {
		same := p.Confirm("Use the same category as before? (y/n): ", nil)
		if same.Cancelled {
			return nil, lineCancelled
		}
		if same.Value {
			return previous, lineAdded
		}
	}

	p.Notify("Categories:")
	for _, c := range m.catalog.Categories() {
		p.Notify("- %s", RenderCategory(c))
	}
	name := p.Text("Category: ", "")
	if name.Cancelled {
		return nil, lineCancelled
	}
	cat, err := m.catalog.Category(name.Value)
	if err != nil || len(cat.Types) == 0 {
		p.Notify("Category not found or empty.")
		return nil, lineRejected
	}
	return cat, lineAdded
}

// pickBooking lists the bookings and asks for one by number.
func (m *BookingManager) pickBooking(prompt string) (int, bool) {
	p := m.deps.Prompt
	for i, b := range m.bookings {
		p.Notify("%d. %s", i+1, m.Render(b))
	}
	idx := p.Int(prompt, 1, len(m.bookings))
	if idx.Cancelled {
		return 0, false
	}
	return idx.Value - 1, true
}

// EditBooking re-dates an existing booking. Blank input keeps the current
// date. The new period is checked against every unit of every line of the
// booking and re-asked until no other booking holds one of them. A unit held
// by several lines is moved to a free unit of its type.
func (m *BookingManager) EditBooking() (BookingResult, error) {
	p := m.deps.Prompt
	if len(m.bookings) == 0 {
		return BookingResult{}, fmt.Errorf("no bookings: %w", ErrPrecondition)
	}
	i, ok := m.pickBooking("Booking number: ")
	if !ok {
		return m.cancelled("edit")
	}
	b := m.bookings[i]
	p.Notify("Editing booking:\n%s", m.Render(b))

	var (
		seen       []Conflict
		lines      []BookingLine
		start, end time.Time
	)
	engine := m.Engine().Excluding(b.ID)
	for {
		s := p.Date("New start date (DD.MM.YYYY, Enter = keep): ", b.Start, m.notPast)
		if s.Cancelled {
			return m.cancelled("edit")
		}
		e := p.Date("New end date (DD.MM.YYYY, Enter = keep): ", b.End, m.notPast)
		if e.Cancelled {
			return m.cancelled("edit")
		}
		start, end = DateOf(s.Value), DateOf(e.Value)
		if end.Before(start) {
			p.Notify("End date must not be before the start date.")
			continue
		}
		conflicts := engine.Conflicts(b, start, end)
		if len(conflicts) == 0 {
			var err error
			if lines, err = engine.Redate(b, start, end, m.catalog); err == nil {
				break
			}
			m.deps.Log.Debug("re-date short of units", "booking_id", b.ID, "error", err)
			p.Notify("The booking holds the same tool on several lines and no spare unit is free in the new period.")
			p.Notify("Please choose another period.")
			continue
		}
		seen = append(seen, conflicts...)
		p.Notify("The selected tools are already booked in the new period:")
		for _, c := range conflicts {
			p.Notify("-> taken from %s to %s", FormatDate(c.Start), FormatDate(c.End))
		}
		p.Notify("Please choose another period.")
	}

	b.Lines = lines
	b.Start, b.End = start, end
	b.Refresh(m.catalog, m.deps.Pricer)
	m.deps.Log.Info("booking re-dated", "booking_id", b.ID, "start", FormatDate(start), "end", FormatDate(end),
		"total_cents", int64(b.TotalCost))
	p.Notify("Booking updated.")
	return BookingResult{Outcome: OutcomeCommitted, Booking: b, Conflicts: seen}, nil
}

// DeleteBooking removes a booking after showing it and asking for confirmation.
func (m *BookingManager) DeleteBooking() (BookingResult, error) {
	p := m.deps.Prompt
	if len(m.bookings) == 0 {
		return BookingResult{}, fmt.Errorf("no bookings: %w", ErrPrecondition)
	}
	i, ok := m.pickBooking("Booking number to delete: ")
	if !ok {
		return m.cancelled("delete")
	}
	b := m.bookings[i]
	p.Notify("\nSelected booking:\n%s", m.Render(b))
	confirm := p.Confirm("Delete this booking? (y/n): ", nil)
	if confirm.Cancelled {
		return m.cancelled("delete")
	}
	if !confirm.Value {
		p.Notify("Booking was not deleted.")
		return BookingResult{Outcome: OutcomeDiscarded, Booking: b}, nil
	}
	m.bookings = append(m.bookings[:i], m.bookings[i+1:]...)
	m.deps.Log.Info("booking deleted", "booking_id", b.ID)
	p.Notify("Booking deleted.")
	return BookingResult{Outcome: OutcomeCommitted, Booking: b}, nil
}

// ListBookings returns a rendering model of every booking.
func (m *BookingManager) ListBookings() []BookingView {
	views := make([]BookingView, 0, len(m.bookings))
	for _, b := range m.bookings {
		views = append(views, m.View(b))
	}
	return views
}
