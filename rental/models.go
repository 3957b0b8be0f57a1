package rental

import (
	"time"

	"github.com/google/uuid"
)

// Customer is a person allowed to rent tools. An empty IBAN means cash payment.
type Customer struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name" validate:"required"`
	LastName  string    `json:"last_name" validate:"required"`
	Address   string    `json:"address" validate:"required"`
	BirthDate time.Time `json:"birth_date" validate:"required"`
	IBAN      string    `json:"iban,omitempty"`
}

// FullName joins first and last name.
func (c *Customer) FullName() string { return c.FirstName + " " + c.LastName }

// Age returns completed years of life on the given day.
func (c *Customer) Age(today time.Time) int {
	today = DateOf(today)
	born := DateOf(c.BirthDate)
	age := today.Year() - born.Year()
	if born.AddDate(age, 0, 0).After(today) {
		age--
	}
	return age
}

// PaysCash reports whether the customer has no bank account on file.
func (c *Customer) PaysCash() bool { return c.IBAN == "" }

// ToolCategory groups tool types that share a tariff and the insurance rule.
type ToolCategory struct {
	ID                uuid.UUID   `json:"id"`
	Name              string      `json:"name" validate:"required"`
	DayRate           Cents       `json:"day_rate" validate:"gte=0"`
	WeekRate          Cents       `json:"week_rate" validate:"gte=0"`
	InsuranceRequired bool        `json:"insurance_required"`
	Types             []*ToolType `json:"types" validate:"dive"`
}

// ToolType describes Capacity interchangeable physical units of one tool.
type ToolType struct {
	ID           uuid.UUID `json:"id"`
	Manufacturer string    `json:"manufacturer" validate:"required"`
	Model        string    `json:"model" validate:"required"`
	Spec         string    `json:"spec"`
	Capacity     int       `json:"capacity" validate:"gte=1"`
	CategoryID   uuid.UUID `json:"category_id"`
}

// Label is the purchasable item name shown to the operator.
func (t *ToolType) Label() string { return t.Manufacturer + " " + t.Model }

// Slots expands the capacity pool into its unit slots in index order.
func (t *ToolType) Slots() []SlotID {
	slots := make([]SlotID, t.Capacity)
	for i := range slots {
		slots[i] = SlotID{TypeID: t.ID, Index: i}
	}
	return slots
}

// SlotID identifies one physical unit inside a tool type's capacity pool.
type SlotID struct {
	TypeID uuid.UUID `json:"type_id"`
	Index  int       `json:"index"`
}

// BookingLine reserves a set of unit slots over its own inclusive date range.
type BookingLine struct {
	Units []SlotID  `json:"units"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether the line holds the slot.
func (l BookingLine) Contains(slot SlotID) bool {
	for _, u := range l.Units {
		if u == slot {
			return true
		}
	}
	return false
}

// Booking is one customer's reservation aggregate. Start and End always span
// the contained lines; TotalCost is a cache refreshed by Refresh.
type Booking struct {
	ID         uuid.UUID     `json:"id"`
	CustomerID uuid.UUID     `json:"customer_id"`
	Start      time.Time     `json:"start"`
	End        time.Time     `json:"end"`
	Lines      []BookingLine `json:"lines"`
	TotalCost  Cents         `json:"total_cost"`
}

// Refresh re-derives the overall range from the lines and recomputes the cost.
func (b *Booking) Refresh(cat *Catalog, p Pricer) {
	if len(b.Lines) > 0 {
		b.Start, b.End = b.Lines[0].Start, b.Lines[0].End
		for _, l := range b.Lines[1:] {
			if l.Start.Before(b.Start) {
				b.Start = l.Start
			}
			if l.End.After(b.End) {
				b.End = l.End
			}
		}
	}
	b.TotalCost = p.BookingCost(b, cat)
}

// References reports whether any line of the booking holds a unit of the type.
func (b *Booking) References(typeID uuid.UUID) bool {
	for _, l := range b.Lines {
		for _, u := range l.Units {
			if u.TypeID == typeID {
				return true
			}
		}
	}
	return false
}
