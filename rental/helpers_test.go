package rental

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

// cancel is the scripted input that aborts a prompt.
const cancel = "<cancel>"

// scriptPrompter replays a fixed list of inputs. Invalid input for a rule is
// reported and the next input is taken, the way the console re-asks.
type scriptPrompter struct {
	t       *testing.T
	inputs  []string
	prompts []string
	notes   []string
}

func script(t *testing.T, inputs ...string) *scriptPrompter {
	return &scriptPrompter{t: t, inputs: inputs}
}

func (p *scriptPrompter) next(prompt string) (string, bool) {
	p.t.Helper()
	p.prompts = append(p.prompts, prompt)
	if len(p.inputs) == 0 {
		p.t.Fatalf("script exhausted at prompt %q", prompt)
	}
	s := p.inputs[0]
	p.inputs = p.inputs[1:]
	return s, s != cancel
}

func (p *scriptPrompter) Int(prompt string, min, max int) Answer[int] {
	p.t.Helper()
	for {
		s, ok := p.next(prompt)
		if !ok {
			return Cancel[int]()
		}
		n, err := strconv.Atoi(s)
		if err != nil || n < min || n > max {
			p.Notify("out of range %d..%d: %q", min, max, s)
			continue
		}
		return Got(n)
	}
}

func (p *scriptPrompter) Text(prompt string, current string) Answer[string] {
	s, ok := p.next(prompt)
	if !ok {
		return Cancel[string]()
	}
	if s == "" {
		return Got(current)
	}
	return Got(s)
}

func (p *scriptPrompter) Date(prompt string, current time.Time, rule DateRule) Answer[time.Time] {
	p.t.Helper()
	for {
		s, ok := p.next(prompt)
		if !ok {
			return Cancel[time.Time]()
		}
		if s == "" && !current.IsZero() {
			return Got(current)
		}
		d, err := time.Parse(DateLayout, s)
		if err != nil {
			p.t.Fatalf("bad date in script: %q", s)
		}
		if rule != nil {
			if err := rule(d); err != nil {
				p.Notify("%v", err)
				continue
			}
		}
		return Got(d)
	}
}

func (p *scriptPrompter) Money(prompt string, current *Cents) Answer[Cents] {
	p.t.Helper()
	s, ok := p.next(prompt)
	if !ok {
		return Cancel[Cents]()
	}
	if s == "" && current != nil {
		return Got(*current)
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		p.t.Fatalf("bad cents in script: %q", s)
	}
	return Got(Cents(n))
}

func (p *scriptPrompter) Confirm(prompt string, current *bool) Answer[bool] {
	p.t.Helper()
	s, ok := p.next(prompt)
	if !ok {
		return Cancel[bool]()
	}
	switch s {
	case "y":
		return Got(true)
	case "n":
		return Got(false)
	case "":
		if current != nil {
			return Got(*current)
		}
	}
	p.t.Fatalf("bad confirm in script: %q", s)
	return Answer[bool]{}
}

func (p *scriptPrompter) Notify(format string, args ...any) {
	p.notes = append(p.notes, fmt.Sprintf(format, args...))
}

// said reports whether any notification contains s.
func (p *scriptPrompter) said(s string) bool {
	for _, n := range p.notes {
		if strings.Contains(n, s) {
			return true
		}
	}
	return false
}

func (p *scriptPrompter) done() bool { return len(p.inputs) == 0 }

type fixedClock time.Time

func (c fixedClock) Now() time.Time { return time.Time(c) }

// today in all flow tests.
var today = Day(2025, time.May, 20)

func testDeps(p Prompter) Deps {
	return Deps{
		Prompt: p,
		Clock:  fixedClock(today.Add(10 * time.Hour)),
		Rules:  DefaultRules,
		Log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

type fixture struct {
	catalog   *Catalog
	customers *Customers

	drills    *ToolCategory // Bohrhammer, 30 €/day, no insurance
	excavator *ToolCategory // Bagger, 90 €/day, insured
	bosch     *ToolType     // capacity 4
	makita    *ToolType     // capacity 1
	cat       *ToolType     // capacity 1

	adult *Customer
	young *Customer // 20 today
	at21  *Customer // 21 today
}

func newFixture() *fixture {
	f := &fixture{}
	f.bosch = &ToolType{ID: uuid.New(), Manufacturer: "Bosch", Model: "X3", Spec: "500W, SDS-plus", Capacity: 4}
	f.makita = &ToolType{ID: uuid.New(), Manufacturer: "Makita", Model: "BHR202", Spec: "18V", Capacity: 1}
	f.cat = &ToolType{ID: uuid.New(), Manufacturer: "Caterpillar", Model: "301.7D", Spec: "1,7t", Capacity: 1}
	f.drills = &ToolCategory{ID: uuid.New(), Name: "Bohrhammer", DayRate: 3000, WeekRate: 15000, Types: []*ToolType{f.bosch, f.makita}}
	f.excavator = &ToolCategory{ID: uuid.New(), Name: "Bagger", DayRate: 9000, WeekRate: 50000, InsuranceRequired: true, Types: []*ToolType{f.cat}}
	f.catalog = NewCatalog([]*ToolCategory{f.drills, f.excavator})

	f.adult = &Customer{ID: uuid.New(), FirstName: "Erika", LastName: "Muster", Address: "Hauptstr. 1", BirthDate: Day(1990, time.January, 1), IBAN: "DE44500105175407324931"}
	f.young = &Customer{ID: uuid.New(), FirstName: "Jan", LastName: "Jung", Address: "Nebenweg 2", BirthDate: Day(2004, time.May, 21)}
	f.at21 = &Customer{ID: uuid.New(), FirstName: "Tim", LastName: "Grenz", Address: "Eckweg 3", BirthDate: Day(2004, time.May, 20)}
	f.customers = NewCustomers([]*Customer{f.adult, f.young, f.at21})
	return f
}

func (f *fixture) manager(p Prompter, bookings ...*Booking) *BookingManager {
	return NewBookingManager(f.catalog, f.customers, bookings, testDeps(p))
}

func line(start, end time.Time, units ...SlotID) BookingLine {
	return BookingLine{Units: units, Start: start, End: end}
}

func booking(customer uuid.UUID, lines ...BookingLine) *Booking {
	b := &Booking{ID: uuid.New(), CustomerID: customer, Lines: lines}
	b.Refresh(NewCatalog(nil), Pricer{})
	return b
}

func june(d int) time.Time { return Day(2025, time.June, d) }
