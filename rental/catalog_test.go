package rental

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_Lookups(t *testing.T) {
	f := newFixture()

	c, err := f.catalog.Category("  bohrHAMMER ")
	require.NoError(t, err)
	assert.Same(t, f.drills, c)

	_, err = f.catalog.Category("Kran")
	assert.ErrorIs(t, err, ErrNotFound)

	typ, owner := f.catalog.Type(f.cat.ID)
	assert.Same(t, f.cat, typ)
	assert.Same(t, f.excavator, owner)
	assert.Equal(t, f.excavator.ID, f.cat.CategoryID)

	typ, owner = f.catalog.Type(uuid.New())
	assert.Nil(t, typ)
	assert.Nil(t, owner)

	assert.Len(t, f.catalog.Types(), 3)
}

func TestCatalog_AddCategory(t *testing.T) {
	f := newFixture()

	err := f.catalog.AddCategory(&ToolCategory{Name: "bagger", DayRate: 1})
	assert.ErrorIs(t, err, ErrConflict)

	err = f.catalog.AddCategory(&ToolCategory{Name: "  "})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	err = f.catalog.AddCategory(&ToolCategory{Name: "Leiter", DayRate: -1})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)

	grinder := &ToolCategory{Name: " Winkelschleifer ", DayRate: 2500, WeekRate: 12000}
	require.NoError(t, f.catalog.AddCategory(grinder))
	assert.NotEqual(t, uuid.Nil, grinder.ID)
	assert.Equal(t, "Winkelschleifer", grinder.Name)
	assert.Len(t, f.catalog.Categories(), 3)
}

func TestCatalog_UpdateAndRemoveCategory(t *testing.T) {
	f := newFixture()

	err := f.catalog.UpdateCategory(f.drills.ID, "Bagger", 1, 1, false)
	assert.ErrorIs(t, err, ErrConflict)

	require.NoError(t, f.catalog.UpdateCategory(f.drills.ID, "Bohrer", 3500, 16000, true))
	assert.Equal(t, "Bohrer", f.drills.Name)
	assert.Equal(t, Cents(3500), f.drills.DayRate)
	assert.True(t, f.drills.InsuranceRequired)

	assert.ErrorIs(t, f.catalog.UpdateCategory(uuid.New(), "x", 0, 0, false), ErrNotFound)

	require.NoError(t, f.catalog.RemoveCategory(f.excavator.ID))
	assert.Len(t, f.catalog.Categories(), 1)
	assert.ErrorIs(t, f.catalog.RemoveCategory(f.excavator.ID), ErrNotFound)
}

func TestCatalog_TypesBelongToOneCategory(t *testing.T) {
	f := newFixture()

	err := f.catalog.AddType(f.excavator.ID, &ToolType{Manufacturer: "bosch", Model: "x3", Capacity: 1})
	assert.ErrorIs(t, err, ErrConflict)

	// same item again in its own category is another pool of the same group
	extra := &ToolType{Manufacturer: "Bosch", Model: "X3", Spec: "600W, SDS-plus", Capacity: 1}
	require.NoError(t, f.catalog.AddType(f.drills.ID, extra))
	assert.Equal(t, f.drills.ID, extra.CategoryID)

	err = f.catalog.AddType(f.drills.ID, &ToolType{Manufacturer: "Hilti", Model: "TE 30", Capacity: 0})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	err = f.catalog.UpdateType(f.makita.ID, "Caterpillar", "301.7D", "")
	assert.ErrorIs(t, err, ErrConflict)

	require.NoError(t, f.catalog.UpdateType(f.makita.ID, "Makita", "HR2470", "780W"))
	assert.Equal(t, "HR2470", f.makita.Model)

	require.NoError(t, f.catalog.RemoveType(f.makita.ID))
	assert.ErrorIs(t, f.catalog.RemoveType(f.makita.ID), ErrNotFound)
}

func TestGroups(t *testing.T) {
	f := newFixture()
	extra := &ToolType{Manufacturer: "Bosch", Model: "X3", Spec: "600W", Capacity: 2}
	require.NoError(t, f.catalog.AddType(f.drills.ID, extra))

	groups := Groups(f.drills)
	require.Len(t, groups, 2)
	assert.Equal(t, "Bosch X3", groups[0].Label())
	assert.Equal(t, []*ToolType{f.bosch, extra}, groups[0].Types)
	assert.Equal(t, 6, groups[0].Capacity())
	assert.Equal(t, "Makita BHR202", groups[1].Label())
}

func TestGroups_IgnoresCase(t *testing.T) {
	f := newFixture()
	lower := &ToolType{Manufacturer: "bosch", Model: "x3", Spec: "700W", Capacity: 1}
	require.NoError(t, f.catalog.AddType(f.drills.ID, lower))

	groups := Groups(f.drills)
	require.Len(t, groups, 2)
	assert.Equal(t, "Bosch X3", groups[0].Label())
	assert.Equal(t, []*ToolType{f.bosch, lower}, groups[0].Types)
	assert.Equal(t, 5, groups[0].Capacity())

	// the merged item is offered as one choice with the pooled free units
	e := NewEngine(nil)
	assert.Equal(t, 5, e.GroupFreeCount(groups[0].Types, june(1), june(3), nil))
}

func TestByManufacturer(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.catalog.AddType(f.drills.ID, &ToolType{Manufacturer: "bosch", Model: "GBH 2-26", Capacity: 1}))

	var labels []string
	for _, e := range ByManufacturer(f.catalog.Entries()) {
		labels = append(labels, e.Type.Label())
	}
	assert.Equal(t, []string{"bosch GBH 2-26", "Bosch X3", "Caterpillar 301.7D", "Makita BHR202"}, labels)
}
