package legacy

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"tool2go/rental"
)

// Result is the converted data set plus the problems found on the way.
type Result struct {
	Customers  []*rental.Customer
	Categories []*rental.ToolCategory
	Bookings   []*rental.Booking
	Warnings   []string
}

type toolKey struct {
	manufacturer, model, spec string
}

func keyOf(t xmlTool) toolKey {
	return toolKey{strings.TrimSpace(t.Manufacturer), strings.TrimSpace(t.Model), strings.TrimSpace(t.Spec)}
}

type customerKey struct {
	first, last, birth string
}

type converter struct {
	res Result

	customers map[customerKey]*rental.Customer
	types     map[toolKey]*rental.ToolType
	// slots of legacy tool instances by their id
	slots map[string]rental.SlotID
}

func (c *converter) warn(format string, args ...any) {
	c.res.Warnings = append(c.res.Warnings, fmt.Sprintf(format, args...))
}

// Convert turns a legacy snapshot into the current model. Identical tool
// instances (same manufacturer, model and technical data) of a category
// become one tool type whose capacity is the number of instances. Booked
// tools were stored as copies; they are relinked to unit slots by instance
// id, falling back to matching manufacturer, model and technical data.
func Convert(s *Snapshot, pricer rental.Pricer) *Result {
	c := &converter{
		customers: map[customerKey]*rental.Customer{},
		types:     map[toolKey]*rental.ToolType{},
		slots:     map[string]rental.SlotID{},
	}
	for _, xc := range s.customers {
		c.customer(xc)
	}
	for _, xk := range s.categories {
		c.category(xk)
	}
	cat := rental.NewCatalog(c.res.Categories)
	for i, xb := range s.bookings {
		if b := c.booking(i, xb); b != nil {
			b.Refresh(cat, pricer)
			c.res.Bookings = append(c.res.Bookings, b)
		}
	}
	return &c.res
}

func (c *converter) customer(xc xmlCustomer) *rental.Customer {
	key := customerKey{strings.TrimSpace(xc.FirstName), strings.TrimSpace(xc.LastName), strings.TrimSpace(xc.BirthDate)}
	if existing := c.customers[key]; existing != nil {
		return existing
	}
	birth, err := parseDate(xc.BirthDate)
	if err != nil {
		c.warn("customer %s %s: %v", key.first, key.last, err)
		return nil
	}
	cu := &rental.Customer{
		ID:        uuid.New(),
		FirstName: key.first,
		LastName:  key.last,
		Address:   strings.TrimSpace(xc.Address),
		BirthDate: birth,
		IBAN:      rental.NormalizeIBAN(xc.IBAN),
	}
	if !rental.ValidIBAN(cu.IBAN) {
		c.warn("customer %s: invalid IBAN %q dropped, paying cash", cu.FullName(), cu.IBAN)
		cu.IBAN = ""
	}
	c.customers[key] = cu
	c.res.Customers = append(c.res.Customers, cu)
	return cu
}

func (c *converter) category(xk xmlCategory) {
	day, err := parseAmount(xk.DayRate)
	if err != nil {
		c.warn("category %s: %v", xk.Name, err)
	}
	week, err := parseAmount(xk.WeekRate)
	if err != nil {
		c.warn("category %s: %v", xk.Name, err)
	}
	id, err := uuid.Parse(strings.TrimSpace(xk.ID))
	if err != nil {
		id = uuid.New()
	}
	cat := &rental.ToolCategory{
		ID:                id,
		Name:              strings.TrimSpace(xk.Name),
		DayRate:           day,
		WeekRate:          week,
		InsuranceRequired: xk.Insurance,
	}

	for _, xt := range xk.Tools {
		key := keyOf(xt)
		t := c.types[key]
		if t != nil && t.CategoryID != cat.ID {
			c.warn("%s %s (%s) listed in more than one category, kept in the first", key.manufacturer, key.model, key.spec)
			continue
		}
		if t == nil {
			t = &rental.ToolType{
				ID:           uuid.New(),
				Manufacturer: key.manufacturer,
				Model:        key.model,
				Spec:         key.spec,
				CategoryID:   cat.ID,
			}
			c.types[key] = t
			cat.Types = append(cat.Types, t)
		}
		n := xt.Count
		if n < 1 {
			n = 1
		}
		if id := strings.TrimSpace(xt.ID); id != "" {
			c.slots[id] = rental.SlotID{TypeID: t.ID, Index: t.Capacity}
		}
		t.Capacity += n
	}
	c.res.Categories = append(c.res.Categories, cat)
}

func (c *converter) booking(i int, xb xmlBooking) *rental.Booking {
	cu := c.customer(xb.Customer)
	if cu == nil {
		c.warn("booking %d: customer unreadable, skipped", i+1)
		return nil
	}
	b := &rental.Booking{ID: uuid.New(), CustomerID: cu.ID}
	engine := rental.NewEngine(c.res.Bookings)

	for j, xl := range xb.Lines {
		start, err := parseDate(xl.Start)
		if err != nil {
			c.warn("booking %d line %d: %v", i+1, j+1, err)
			continue
		}
		end, err := parseDate(xl.End)
		if err != nil {
			c.warn("booking %d line %d: %v", i+1, j+1, err)
			continue
		}
		line := rental.BookingLine{Start: start, End: end}
		for _, xt := range xl.Tools {
			slot, err := c.relink(engine, xt, line, b.Lines)
			if err != nil {
				k := keyOf(xt)
				c.warn("booking %d line %d: %s %s (%s) %v, dropped", i+1, j+1, k.manufacturer, k.model, k.spec, err)
				continue
			}
			line.Units = append(line.Units, slot)
		}
		if len(line.Units) > 0 {
			b.Lines = append(b.Lines, line)
		}
	}
	if len(b.Lines) == 0 {
		c.warn("booking %d: no tools left, skipped", i+1)
		return nil
	}
	return b
}

var (
	errNotInCatalog = errors.New("not in catalog")
	errNoFreeUnit   = errors.New("has no free unit left")
)

// relink finds the unit slot a booked tool copy refers to. The slot must be
// free of the bookings converted so far, of the earlier lines and of the
// line itself; otherwise the next free slot of the type is taken.
func (c *converter) relink(engine *rental.Engine, xt xmlTool, line rental.BookingLine, earlier []rental.BookingLine) (rental.SlotID, error) {
	pending := append(append(make([]rental.BookingLine, 0, len(earlier)+1), earlier...), line)
	free := func(slot rental.SlotID) bool {
		return !line.Contains(slot) && engine.CountOccupied(slot, line.Start, line.End, pending) == 0
	}

	if slot, ok := c.slots[strings.TrimSpace(xt.ID)]; ok && free(slot) {
		return slot, nil
	}
	t := c.types[keyOf(xt)]
	if t == nil {
		return rental.SlotID{}, errNotInCatalog
	}
	for _, slot := range t.Slots() {
		if free(slot) {
			return slot, nil
		}
	}
	return rental.SlotID{}, errNoFreeUnit
}

// Save writes the converted collections, replacing what the store holds.
func (r *Result) Save(ctx context.Context, store rental.Store) error {
	if err := store.SaveCustomers(ctx, r.Customers); err != nil {
		return err
	}
	if err := store.SaveCatalog(ctx, r.Categories); err != nil {
		return err
	}
	return store.SaveBookings(ctx, r.Bookings)
}
