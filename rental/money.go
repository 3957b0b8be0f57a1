package rental

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Cents is an amount of euro cents.
type Cents int64

var eur = message.NewPrinter(language.German)

// Euros returns the amount as a decimal number of euros.
func (c Cents) Euros() float64 { return float64(c) / 100 }

// Format renders the amount the way the rental desk prints prices, e.g. "1.234,50 €".
func (c Cents) Format() string {
	return eur.Sprintf("%.2f €", c.Euros())
}

func (c Cents) String() string { return c.Format() }
