package rental

const daysPerWeek = 7

// Pricer computes rental costs from category tariffs.
//
// By default every unit is charged the day rate for each inclusive day, even
// for spans of a week or longer. With ApplyWeekRate set, full weeks are charged
// at the week rate and the remaining days at the day rate.
type Pricer struct {
	ApplyWeekRate bool
}

// LineCost sums, over the units of the line, the owning category's tariff
// for the line's inclusive day count. Units whose type or category is gone
// cost nothing.
func (p Pricer) LineCost(line BookingLine, cat *Catalog) Cents {
	days := DaysInclusive(line.Start, line.End)
	var total Cents
	for _, u := range line.Units {
		_, category := cat.Type(u.TypeID)
		if category == nil {
			continue
		}
		total += p.unitCost(category, days)
	}
	return total
}

func (p Pricer) unitCost(c *ToolCategory, days int) Cents {
	if !p.ApplyWeekRate {
		return c.DayRate * Cents(days)
	}
	weeks, rest := days/daysPerWeek, days%daysPerWeek
	return c.WeekRate*Cents(weeks) + c.DayRate*Cents(rest)
}

// BookingCost sums LineCost over all lines of the booking.
func (p Pricer) BookingCost(b *Booking, cat *Catalog) Cents {
	var total Cents
	for _, l := range b.Lines {
		total += p.LineCost(l, cat)
	}
	return total
}
