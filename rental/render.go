package rental

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LineView is the display model of one booking line.
type LineView struct {
	Quantity     int
	Manufacturer string
	Model        string
	Spec         string
	Category     string
	Start, End   time.Time
	Cost         Cents
}

func (l LineView) String() string {
	return fmt.Sprintf("-> %dx %s %s (%s) – period: %s to %s – category: %s – cost: %s",
		l.Quantity, l.Manufacturer, l.Model, l.Spec, FormatDate(l.Start), FormatDate(l.End), l.Category, l.Cost)
}

// BookingView is the display model of a booking, lines ordered by start date.
type BookingView struct {
	ID         uuid.UUID
	Customer   string
	Start, End time.Time
	Lines      []LineView
	Total      Cents
}

func (v BookingView) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s booked:\n", v.Customer)
	fmt.Fprintf(&sb, "  period: %s to %s\n", FormatDate(v.Start), FormatDate(v.End))
	sb.WriteString("  tools:\n")
	for _, l := range v.Lines {
		fmt.Fprintf(&sb, "  %s\n", l)
	}
	fmt.Fprintf(&sb, "  total: %s", v.Total)
	return sb.String()
}

// View builds the display model of a booking. Costs are recomputed, not read
// from the booking's cache.
func (m *BookingManager) View(b *Booking) BookingView {
	v := BookingView{ID: b.ID, Customer: "unknown customer", Start: b.Start, End: b.End}
	if c := m.customers.Get(b.CustomerID); c != nil {
		v.Customer = c.FullName()
	}

	lines := append([]BookingLine(nil), b.Lines...)
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].Start.Before(lines[j].Start) })
	for _, l := range lines {
		lv := LineView{Quantity: len(l.Units), Start: l.Start, End: l.End, Category: "unknown",
			Cost: m.deps.Pricer.LineCost(l, m.catalog)}
		if len(l.Units) > 0 {
			t, cat := m.catalog.Type(l.Units[0].TypeID)
			if t != nil {
				lv.Manufacturer, lv.Model, lv.Spec = t.Manufacturer, t.Model, t.Spec
			}
			if cat != nil {
				lv.Category = cat.Name
			}
		}
		v.Lines = append(v.Lines, lv)
		v.Total += lv.Cost
	}
	return v
}

// Render formats a booking for the console.
func (m *BookingManager) Render(b *Booking) string { return m.View(b).String() }

// RenderCustomer formats a customer on one line.
func RenderCustomer(c *Customer) string {
	iban := c.IBAN
	if c.PaysCash() {
		iban = "cash"
	}
	return fmt.Sprintf("%s, %s, born %s, IBAN: %s", c.FullName(), c.Address, FormatDate(c.BirthDate), iban)
}

// RenderCategory formats a category with its tariff on one line.
func RenderCategory(c *ToolCategory) string {
	insured := "no"
	if c.InsuranceRequired {
		insured = "yes"
	}
	return fmt.Sprintf("%s | %s / day | %s / week | insurance required: %s", c.Name, c.DayRate, c.WeekRate, insured)
}

// RenderType formats a tool type on one line.
func RenderType(t *ToolType) string {
	return fmt.Sprintf("%s %s | %s | %d units", t.Manufacturer, t.Model, t.Spec, t.Capacity)
}
