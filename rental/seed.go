package rental

import (
	"time"

	"github.com/google/uuid"
)

type seedType struct {
	manufacturer, model, spec string
	capacity                  int
}

func seedCategory(name string, day, week Cents, insured bool, types ...seedType) *ToolCategory {
	c := &ToolCategory{ID: uuid.New(), Name: name, DayRate: day, WeekRate: week, InsuranceRequired: insured}
	for _, t := range types {
		c.Types = append(c.Types, &ToolType{
			ID:           uuid.New(),
			Manufacturer: t.manufacturer,
			Model:        t.model,
			Spec:         t.spec,
			Capacity:     t.capacity,
			CategoryID:   c.ID,
		})
	}
	return c
}

// DefaultCatalog is the starter catalog written to an empty database.
func DefaultCatalog() []*ToolCategory {
	return []*ToolCategory{
		seedCategory("Bagger", 9000, 50000, true,
			seedType{"Caterpillar", "301.7D", "1,7t, Diesel, Tieflöffel", 2},
			seedType{"Caterpillar", "301.7D", "1,8t, Diesel, Tieflöffel", 1},
			seedType{"Hitachi", "ZX10U", "1,1t, Diesel, Tieflöffel", 1},
		),
		seedCategory("Bohrhammer", 3000, 15000, false,
			seedType{"Bosch", "X3", "500W, SDS-plus", 2},
			seedType{"Bosch", "X3", "600W, SDS-plus", 1},
			seedType{"Makita", "BHR202", "18V, Akku", 1},
		),
		seedCategory("Rüttelplatte", 4000, 20000, true,
			seedType{"Wacker Neuson", "VP1550", "90kg, Benzin", 2},
			seedType{"Bomag", "BVP 18/45", "108kg, Benzin", 1},
			seedType{"Bomag", "BVP 18/45", "110kg, Benzin", 1},
		),
		seedCategory("Winkelschleifer", 2500, 12000, false,
			seedType{"Bosch", "GWS 7-125", "720W, 125mm", 2},
			seedType{"Einhell", "TE-AG 125", "850W, Softstart", 1},
			seedType{"Makita", "GA5030", "720W, 125mm", 1},
		),
	}
}

// DefaultCustomers returns one adult customer paying by bank transfer and
// one customer too young for insured tools, paying cash.
func DefaultCustomers(today time.Time) []*Customer {
	today = DateOf(today)
	return []*Customer{
		{
			ID:        uuid.New(),
			FirstName: "Erwachsener",
			LastName:  "Kunde",
			Address:   "Altstraße 10, 12345 Berlin",
			BirthDate: Day(1990, time.January, 1),
			IBAN:      "DE44500105175407324931",
		},
		{
			ID:        uuid.New(),
			FirstName: "Junger",
			LastName:  "Kunde",
			Address:   "Jungstraße 20, 54321 Köln",
			BirthDate: today.AddDate(-19, 0, 0),
		},
	}
}
