package rental

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddCategoryFlow(t *testing.T) {
	f := newFixture()
	p := script(t,
		"bagger", // taken
		"",       // empty
		"Leiter", "1500", "7000", "n",
		"y", "Hymer", "6007", "3 m", "2",
	)
	s := NewCatalogService(f.catalog, nil, testDeps(p))

	out, err := s.AddCategory()
	require.NoError(t, err)
	assert.Equal(t, OutcomeCommitted, out)
	assert.True(t, p.said("already exists"))
	assert.True(t, p.said("must not be empty"))

	c, err := f.catalog.Category("leiter")
	require.NoError(t, err)
	assert.Equal(t, Cents(1500), c.DayRate)
	assert.Equal(t, Cents(7000), c.WeekRate)
	assert.False(t, c.InsuranceRequired)
	require.Len(t, c.Types, 1)
	assert.Equal(t, "Hymer 6007", c.Types[0].Label())
	assert.Equal(t, 2, c.Types[0].Capacity)
}

func TestEditCategoryFlow(t *testing.T) {
	f := newFixture()
	p := script(t,
		"Kran", "bohrhammer",
		"Bagger", // name taken by another category
		"",       // keep
		"3500", "", "",
	)
	s := NewCatalogService(f.catalog, nil, testDeps(p))

	out, err := s.EditCategory()
	require.NoError(t, err)
	assert.Equal(t, OutcomeCommitted, out)
	assert.True(t, p.said("Category not found"))
	assert.Equal(t, "Bohrhammer", f.drills.Name)
	assert.Equal(t, Cents(3500), f.drills.DayRate)
	assert.Equal(t, Cents(15000), f.drills.WeekRate)
	assert.False(t, f.drills.InsuranceRequired)
}

func TestDeleteCategoryFlow(t *testing.T) {
	f := newFixture()
	booked := func(id uuid.UUID) bool { return id == f.cat.ID }

	s := NewCatalogService(f.catalog, booked, testDeps(script(t, "Bagger")))
	_, err := s.DeleteCategory()
	assert.ErrorIs(t, err, ErrConflict)

	p := script(t, "Bohrhammer", "y")
	s = NewCatalogService(f.catalog, booked, testDeps(p))
	out, err := s.DeleteCategory()
	require.NoError(t, err)
	assert.Equal(t, OutcomeCommitted, out)
	assert.True(t, p.said("contains 2 tool type(s)"))
	assert.Equal(t, []*ToolCategory{f.excavator}, f.catalog.Categories())

	empty := NewCatalogService(NewCatalog(nil), nil, testDeps(script(t)))
	_, err = empty.DeleteCategory()
	assert.ErrorIs(t, err, ErrPrecondition)
}

func TestAddTypeFlow(t *testing.T) {
	f := newFixture()

	s := NewCatalogService(f.catalog, nil, testDeps(script(t, "Bagger", "bosch", "X3")))
	_, err := s.AddType()
	assert.ErrorIs(t, err, ErrConflict)

	s = NewCatalogService(f.catalog, nil, testDeps(script(t, "Bagger", "Kubota", "KX019", "1,9t", "0", "3")))
	out, err := s.AddType()
	require.NoError(t, err)
	assert.Equal(t, OutcomeCommitted, out)
	require.Len(t, f.excavator.Types, 2)
	assert.Equal(t, 3, f.excavator.Types[1].Capacity)
}

func TestEditTypeFlow(t *testing.T) {
	f := newFixture()
	s := NewCatalogService(f.catalog, nil, testDeps(script(t, "Bohrhammer", "2", "", "HR2470", "")))

	out, err := s.EditType()
	require.NoError(t, err)
	assert.Equal(t, OutcomeCommitted, out)
	assert.Equal(t, "Makita", f.makita.Manufacturer)
	assert.Equal(t, "HR2470", f.makita.Model)
	assert.Equal(t, "18V", f.makita.Spec)
}

func TestDeleteTypeFlow(t *testing.T) {
	f := newFixture()
	booked := func(id uuid.UUID) bool { return id == f.bosch.ID }

	s := NewCatalogService(f.catalog, booked, testDeps(script(t, "1")))
	_, err := s.DeleteType()
	assert.ErrorIs(t, err, ErrConflict)

	s = NewCatalogService(f.catalog, booked, testDeps(script(t, "2", "y")))
	out, err := s.DeleteType()
	require.NoError(t, err)
	assert.Equal(t, OutcomeCommitted, out)
	assert.Equal(t, []*ToolType{f.bosch}, f.drills.Types)
}

func TestListTypesFlow(t *testing.T) {
	f := newFixture()
	p := script(t)
	s := NewCatalogService(f.catalog, nil, testDeps(p))

	entries := s.ListTypes()
	require.Len(t, entries, 3)
	assert.Same(t, f.bosch, entries[0].Type)
	assert.True(t, p.said("Manufacturer: Caterpillar"))
	assert.Len(t, s.ListCategories(), 2)
}
