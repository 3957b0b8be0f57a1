package rental

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomers_Add(t *testing.T) {
	r := NewCustomers(nil)

	err := r.Add(&Customer{FirstName: "A", LastName: "B", Address: "C", BirthDate: Day(1990, time.May, 1), IBAN: "DE00"})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	err = r.Add(&Customer{FirstName: "A", LastName: " ", Address: "C", BirthDate: Day(1990, time.May, 1)})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	err = r.Add(&Customer{FirstName: "A", LastName: "B", Address: "C"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "customer", verr.Entity)
	assert.Empty(t, r.List())

	c := &Customer{FirstName: " Anna ", LastName: "Berg", Address: "Weg 1", BirthDate: Day(1990, time.May, 1), IBAN: "de44 5001 0517 5407 3249 31"}
	require.NoError(t, r.Add(c))
	assert.NotEqual(t, uuid.Nil, c.ID)
	assert.Equal(t, "Anna", c.FirstName)
	assert.Equal(t, "DE44500105175407324931", c.IBAN)
	assert.Same(t, c, r.Get(c.ID))
}

func TestCustomers_UpdateAndRemove(t *testing.T) {
	f := newFixture()

	next := *f.adult
	next.Address = "Neue Str. 9"
	require.NoError(t, f.customers.Update(next))
	assert.Equal(t, "Neue Str. 9", f.adult.Address)

	next.IBAN = "DE45500105175407324931"
	assert.ErrorIs(t, f.customers.Update(next), ErrInvalidArgument)
	assert.Equal(t, "DE44500105175407324931", f.adult.IBAN)

	assert.ErrorIs(t, f.customers.Update(Customer{ID: uuid.New()}), ErrNotFound)

	require.NoError(t, f.customers.Remove(f.young.ID))
	assert.Nil(t, f.customers.Get(f.young.ID))
	assert.ErrorIs(t, f.customers.Remove(f.young.ID), ErrNotFound)
}

func TestAddCustomer(t *testing.T) {
	f := newFixture()
	p := script(t,
		" Max ", "Neumann", "Ringstr. 5",
		"01.01.2010", // too young
		"15.03.1985",
		"DE00123", // invalid
		"de44 5001 0517 5407 3249 31",
	)
	s := NewCustomerService(f.customers, nil, testDeps(p))

	out, err := s.AddCustomer()
	require.NoError(t, err)
	assert.Equal(t, OutcomeCommitted, out)
	assert.True(t, p.said("at least 18"))
	assert.True(t, p.said("Invalid IBAN"))

	list := f.customers.List()
	require.Len(t, list, 4)
	c := list[3]
	assert.Equal(t, "Max", c.FirstName)
	assert.Equal(t, Day(1985, time.March, 15), c.BirthDate)
	assert.Equal(t, "DE44500105175407324931", c.IBAN)
}

func TestAddCustomer_CashAndCancel(t *testing.T) {
	f := newFixture()
	s := NewCustomerService(f.customers, nil, testDeps(script(t, "Lia", "Bar", "Platz 1", "01.01.2000", "")))
	out, err := s.AddCustomer()
	require.NoError(t, err)
	assert.Equal(t, OutcomeCommitted, out)
	assert.True(t, f.customers.List()[3].PaysCash())

	s = NewCustomerService(f.customers, nil, testDeps(script(t, "Ole", cancel)))
	out, err = s.AddCustomer()
	require.NoError(t, err)
	assert.Equal(t, OutcomeCancelled, out)
	assert.Len(t, f.customers.List(), 4)
}

func TestEditCustomer(t *testing.T) {
	f := newFixture()
	p := script(t, "1", "", "Musterfrau", "", "", "cash")
	s := NewCustomerService(f.customers, nil, testDeps(p))

	out, err := s.EditCustomer()
	require.NoError(t, err)
	assert.Equal(t, OutcomeCommitted, out)
	assert.Equal(t, "Erika", f.adult.FirstName)
	assert.Equal(t, "Musterfrau", f.adult.LastName)
	assert.Equal(t, "Hauptstr. 1", f.adult.Address)
	assert.Equal(t, Day(1990, time.January, 1), f.adult.BirthDate)
	assert.True(t, f.adult.PaysCash())

	// blank keeps the stored IBAN
	p = script(t, "2", "", "", "", "", "DE44500105175407324931")
	s = NewCustomerService(f.customers, nil, testDeps(p))
	_, err = s.EditCustomer()
	require.NoError(t, err)
	p = script(t, "2", "", "", "", "", "")
	s = NewCustomerService(f.customers, nil, testDeps(p))
	_, err = s.EditCustomer()
	require.NoError(t, err)
	assert.Equal(t, "DE44500105175407324931", f.young.IBAN)
}

func TestDeleteCustomer(t *testing.T) {
	f := newFixture()
	booked := func(id uuid.UUID) bool { return id == f.adult.ID }

	s := NewCustomerService(f.customers, booked, testDeps(script(t, "1")))
	out, err := s.DeleteCustomer()
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, OutcomeDiscarded, out)

	s = NewCustomerService(f.customers, booked, testDeps(script(t, "2", "n")))
	out, err = s.DeleteCustomer()
	require.NoError(t, err)
	assert.Equal(t, OutcomeDiscarded, out)
	assert.Len(t, f.customers.List(), 3)

	s = NewCustomerService(f.customers, booked, testDeps(script(t, "2", "y")))
	out, err = s.DeleteCustomer()
	require.NoError(t, err)
	assert.Equal(t, OutcomeCommitted, out)
	assert.Nil(t, f.customers.Get(f.young.ID))

	empty := NewCustomerService(NewCustomers(nil), nil, testDeps(script(t)))
	_, err = empty.DeleteCustomer()
	assert.ErrorIs(t, err, ErrPrecondition)
}
