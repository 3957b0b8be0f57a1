// Package legacy reads the XML files of the previous desktop version of the
// rental desk and converts them into the current model.
package legacy

import (
	"encoding/xml"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"tool2go/rental"
)

// File names written by the previous version.
const (
	CustomersFile  = "kunden.xml"
	CategoriesFile = "kategorien.xml"
	BookingsFile   = "buchungen.xml"
)

type xmlCustomer struct {
	FirstName string `xml:"Vorname"`
	LastName  string `xml:"Nachname"`
	Address   string `xml:"Adresse"`
	BirthDate string `xml:"Geburtsdatum"`
	IBAN      string `xml:"Iban"`
}

type xmlTool struct {
	ID           string `xml:"Id"`
	Manufacturer string `xml:"Hersteller"`
	Model        string `xml:"Modell"`
	Spec         string `xml:"TechnischeDaten"`
	Count        int    `xml:"Anzahl"`
	CategoryID   string `xml:"KategorieId"`
}

type xmlCategory struct {
	ID        string    `xml:"Id"`
	Name      string    `xml:"Name"`
	DayRate   string    `xml:"LeihgebuehrProTag"`
	WeekRate  string    `xml:"LeihgebuehrProWoche"`
	Insurance bool      `xml:"Versicherungspflicht"`
	Tools     []xmlTool `xml:"Werkzeuge>Werkzeug"`
}

type xmlLine struct {
	Tools []xmlTool `xml:"Werkzeuge>Werkzeug"`
	Start string    `xml:"Startdatum"`
	End   string    `xml:"Enddatum"`
}

type xmlBooking struct {
	Customer xmlCustomer `xml:"Kunde"`
	Start    string      `xml:"Startdatum"`
	End      string      `xml:"Enddatum"`
	Lines    []xmlLine   `xml:"Positionen>BuchungPos"`
}

type customerFile struct {
	Customers []xmlCustomer `xml:"Kunde"`
}

type categoryFile struct {
	Categories []xmlCategory `xml:"Werkzeugkategorie"`
}

type bookingFile struct {
	Bookings []xmlBooking `xml:"Buchung"`
}

// Snapshot is the raw content of the three legacy files.
type Snapshot struct {
	customers  []xmlCustomer
	categories []xmlCategory
	bookings   []xmlBooking
}

// ReadDir decodes the legacy files in dir. Missing files count as empty.
func ReadDir(dir string) (*Snapshot, error) {
	var (
		s   Snapshot
		cf  customerFile
		kf  categoryFile
		bf  bookingFile
		err error
	)
	if err = decodeFile(filepath.Join(dir, CustomersFile), &cf); err != nil {
		return nil, err
	}
	if err = decodeFile(filepath.Join(dir, CategoriesFile), &kf); err != nil {
		return nil, err
	}
	if err = decodeFile(filepath.Join(dir, BookingsFile), &bf); err != nil {
		return nil, err
	}
	s.customers, s.categories, s.bookings = cf.Customers, kf.Categories, bf.Bookings
	return &s, nil
}

func decodeFile(path string, v any) error {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()
	return errors.Wrapf(decode(f, v), "decode %s", path)
}

func decode(r io.Reader, v any) error {
	return xml.NewDecoder(r).Decode(v)
}

// parseDate reads the xs:dateTime values written by the previous version,
// keeping only the calendar day.
func parseDate(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if len(v) < len("2006-01-02") {
		return time.Time{}, errors.Errorf("invalid date %q", v)
	}
	t, err := time.Parse("2006-01-02", v[:10])
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "invalid date %q", v)
	}
	return rental.DateOf(t), nil
}

// parseAmount reads an invariant-culture decimal euro amount.
func parseAmount(v string) (rental.Cents, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid amount %q", v)
	}
	return rental.Cents(math.Round(f * 100)), nil
}
