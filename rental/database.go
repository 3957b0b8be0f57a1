package rental

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"tool2go/logger"
)

// Store loads and saves whole entity collections.
type Store interface {
	LoadCustomers(ctx context.Context) ([]*Customer, error)
	SaveCustomers(ctx context.Context, customers []*Customer) error
	LoadCatalog(ctx context.Context) ([]*ToolCategory, error)
	SaveCatalog(ctx context.Context, categories []*ToolCategory) error
	LoadBookings(ctx context.Context) ([]*Booking, error)
	SaveBookings(ctx context.Context, bookings []*Booking) error
	Close() error
}

// SQLiteStore keeps the collections in a SQLite database. Every save rewrites
// the collection's tables in one transaction.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLite opens (or creates) the SQLite database at dbPath and applies
// schema migrations.
func OpenSQLite(dbPath string) (*SQLiteStore, error) {
	// Ensure directory exists so first-run succeeds.
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, "create db dir")
		}
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=1", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}

	if err := applyMigrations(db); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// NewSQLiteStore wraps an already migrated connection.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Close closes the DB.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ---------------------------------------------------------------------------
// Schema migration
// ---------------------------------------------------------------------------

const schemaVersion = 1

const dbDate = "2006-01-02"

func applyMigrations(db *sql.DB) error {
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return errors.Wrap(err, "enable WAL")
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);`); err != nil {
		return errors.Wrap(err, "create meta")
	}

	var current int
	_ = db.QueryRow(`SELECT value FROM meta WHERE key='schema_version';`).Scan(&current)
	if current >= schemaVersion {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS customers (
            id TEXT PRIMARY KEY,
            position INTEGER NOT NULL,
            first_name TEXT NOT NULL,
            last_name TEXT NOT NULL,
            address TEXT NOT NULL,
            birth_date TEXT NOT NULL,
            iban TEXT NOT NULL DEFAULT ''
        );`,
		`CREATE TABLE IF NOT EXISTS categories (
            id TEXT PRIMARY KEY,
            position INTEGER NOT NULL,
            name TEXT NOT NULL UNIQUE COLLATE NOCASE,
            day_rate INTEGER NOT NULL,
            week_rate INTEGER NOT NULL,
            insurance_required BOOLEAN NOT NULL DEFAULT 0
        );`,
		`CREATE TABLE IF NOT EXISTS tool_types (
            id TEXT PRIMARY KEY,
            category_id TEXT NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
            position INTEGER NOT NULL,
            manufacturer TEXT NOT NULL,
            model TEXT NOT NULL,
            spec TEXT NOT NULL DEFAULT '',
            capacity INTEGER NOT NULL CHECK (capacity >= 1)
        );`,
		`CREATE TABLE IF NOT EXISTS bookings (
            id TEXT PRIMARY KEY,
            position INTEGER NOT NULL,
            customer_id TEXT NOT NULL,
            start_date TEXT NOT NULL,
            end_date TEXT NOT NULL,
            total_cost INTEGER NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS booking_lines (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            booking_id TEXT NOT NULL REFERENCES bookings(id) ON DELETE CASCADE,
            position INTEGER NOT NULL,
            start_date TEXT NOT NULL,
            end_date TEXT NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS line_units (
            line_id INTEGER NOT NULL REFERENCES booking_lines(id) ON DELETE CASCADE,
            type_id TEXT NOT NULL,
            slot INTEGER NOT NULL,
            PRIMARY KEY (line_id, type_id, slot)
        );`,
		`CREATE INDEX IF NOT EXISTS idx_line_units_type ON line_units(type_id);`,
		`INSERT INTO meta(key,value) VALUES('schema_version',?)
            ON CONFLICT(key) DO UPDATE SET value=excluded.value;`,
	}

	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt, schemaVersion); err != nil {
			return errors.Wrap(err, "apply migration")
		}
	}

	return tx.Commit()
}

// runInTx runs fn in a transaction and commits when it returns nil.
func (s *SQLiteStore) runInTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return errors.Wrap(tx.Commit(), "commit")
}

func parseDBDate(v string) (time.Time, error) {
	t, err := time.Parse(dbDate, v)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "parse date %q", v)
	}
	return t, nil
}

// ---------------------------------------------------------------------------
// Customers
// ---------------------------------------------------------------------------

// LoadCustomers returns all customers in their saved order.
func (s *SQLiteStore) LoadCustomers(ctx context.Context) ([]*Customer, error) {
	logger.DatabaseCall("SELECT", "customers")
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,first_name,last_name,address,birth_date,iban FROM customers ORDER BY position`)
	if err != nil {
		logger.DatabaseResult("SELECT", 0, err, "table", "customers")
		return nil, errors.Wrap(err, "query customers")
	}
	defer rows.Close()

	var customers []*Customer
	for rows.Next() {
		var (
			c     Customer
			birth string
		)
		if err := rows.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Address, &birth, &c.IBAN); err != nil {
			return nil, errors.Wrap(err, "scan customer")
		}
		if c.BirthDate, err = parseDBDate(birth); err != nil {
			return nil, err
		}
		customers = append(customers, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate customers")
	}
	logger.DatabaseResult("SELECT", int64(len(customers)), nil, "table", "customers")
	return customers, nil
}

// SaveCustomers replaces the stored customers.
func (s *SQLiteStore) SaveCustomers(ctx context.Context, customers []*Customer) error {
	logger.DatabaseCall("REPLACE", "customers", "count", len(customers))
	err := s.runInTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM customers`); err != nil {
			return errors.Wrap(err, "clear customers")
		}
		for i, c := range customers {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO customers(id,position,first_name,last_name,address,birth_date,iban) VALUES(?,?,?,?,?,?,?)`,
				c.ID.String(), i, c.FirstName, c.LastName, c.Address, c.BirthDate.Format(dbDate), c.IBAN); err != nil {
				return errors.Wrapf(err, "insert customer %s", c.ID)
			}
		}
		return nil
	})
	logger.DatabaseResult("REPLACE", int64(len(customers)), err, "table", "customers")
	return err
}

// ---------------------------------------------------------------------------
// Catalog
// ---------------------------------------------------------------------------

// LoadCatalog returns all categories with their tool types.
func (s *SQLiteStore) LoadCatalog(ctx context.Context) ([]*ToolCategory, error) {
	logger.DatabaseCall("SELECT", "categories")
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,name,day_rate,week_rate,insurance_required FROM categories ORDER BY position`)
	if err != nil {
		return nil, errors.Wrap(err, "query categories")
	}
	defer rows.Close()

	var (
		categories []*ToolCategory
		byID       = map[uuid.UUID]*ToolCategory{}
	)
	for rows.Next() {
		var c ToolCategory
		if err := rows.Scan(&c.ID, &c.Name, &c.DayRate, &c.WeekRate, &c.InsuranceRequired); err != nil {
			return nil, errors.Wrap(err, "scan category")
		}
		categories = append(categories, &c)
		byID[c.ID] = &c
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate categories")
	}

	typeRows, err := s.db.QueryContext(ctx,
		`SELECT id,category_id,manufacturer,model,spec,capacity FROM tool_types ORDER BY category_id, position`)
	if err != nil {
		return nil, errors.Wrap(err, "query tool types")
	}
	defer typeRows.Close()

	for typeRows.Next() {
		var t ToolType
		if err := typeRows.Scan(&t.ID, &t.CategoryID, &t.Manufacturer, &t.Model, &t.Spec, &t.Capacity); err != nil {
			return nil, errors.Wrap(err, "scan tool type")
		}
		if cat := byID[t.CategoryID]; cat != nil {
			cat.Types = append(cat.Types, &t)
		}
	}
	if err := typeRows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate tool types")
	}
	logger.DatabaseResult("SELECT", int64(len(categories)), nil, "table", "categories")
	return categories, nil
}

// SaveCatalog replaces the stored categories and tool types.
func (s *SQLiteStore) SaveCatalog(ctx context.Context, categories []*ToolCategory) error {
	logger.DatabaseCall("REPLACE", "categories", "count", len(categories))
	err := s.runInTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM tool_types`); err != nil {
			return errors.Wrap(err, "clear tool types")
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM categories`); err != nil {
			return errors.Wrap(err, "clear categories")
		}
		for i, c := range categories {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO categories(id,position,name,day_rate,week_rate,insurance_required) VALUES(?,?,?,?,?,?)`,
				c.ID.String(), i, c.Name, int64(c.DayRate), int64(c.WeekRate), c.InsuranceRequired); err != nil {
				return errors.Wrapf(err, "insert category %q", c.Name)
			}
			for j, t := range c.Types {
				if _, err := tx.ExecContext(ctx,
					`INSERT INTO tool_types(id,category_id,position,manufacturer,model,spec,capacity) VALUES(?,?,?,?,?,?,?)`,
					t.ID.String(), c.ID.String(), j, t.Manufacturer, t.Model, t.Spec, t.Capacity); err != nil {
					return errors.Wrapf(err, "insert tool type %s", t.Label())
				}
			}
		}
		return nil
	})
	logger.DatabaseResult("REPLACE", int64(len(categories)), err, "table", "categories")
	return err
}

// ---------------------------------------------------------------------------
// Bookings
// ---------------------------------------------------------------------------

// LoadBookings returns all bookings with their lines and unit slots.
func (s *SQLiteStore) LoadBookings(ctx context.Context) ([]*Booking, error) {
	logger.DatabaseCall("SELECT", "bookings")
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,customer_id,start_date,end_date,total_cost FROM bookings ORDER BY position`)
	if err != nil {
		return nil, errors.Wrap(err, "query bookings")
	}
	defer rows.Close()

	var (
		bookings []*Booking
		byID     = map[uuid.UUID]*Booking{}
	)
	for rows.Next() {
		var (
			b          Booking
			start, end string
		)
		if err := rows.Scan(&b.ID, &b.CustomerID, &start, &end, &b.TotalCost); err != nil {
			return nil, errors.Wrap(err, "scan booking")
		}
		if b.Start, err = parseDBDate(start); err != nil {
			return nil, err
		}
		if b.End, err = parseDBDate(end); err != nil {
			return nil, err
		}
		bookings = append(bookings, &b)
		byID[b.ID] = &b
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate bookings")
	}

	lineRows, err := s.db.QueryContext(ctx, `
        SELECT l.id, l.booking_id, l.start_date, l.end_date, COALESCE(u.type_id,''), COALESCE(u.slot,-1)
        FROM booking_lines l
        LEFT JOIN line_units u ON u.line_id = l.id
        ORDER BY l.booking_id, l.position, u.type_id, u.slot`)
	if err != nil {
		return nil, errors.Wrap(err, "query booking lines")
	}
	defer lineRows.Close()

	type lineKey struct {
		booking uuid.UUID
		id      int64
	}
	index := map[lineKey]int{}
	for lineRows.Next() {
		var (
			lineID     int64
			bookingID  uuid.UUID
			start, end string
			typeID     string
			slot       int
		)
		if err := lineRows.Scan(&lineID, &bookingID, &start, &end, &typeID, &slot); err != nil {
			return nil, errors.Wrap(err, "scan booking line")
		}
		b := byID[bookingID]
		if b == nil {
			continue
		}
		key := lineKey{bookingID, lineID}
		i, ok := index[key]
		if !ok {
			var l BookingLine
			if l.Start, err = parseDBDate(start); err != nil {
				return nil, err
			}
			if l.End, err = parseDBDate(end); err != nil {
				return nil, err
			}
			b.Lines = append(b.Lines, l)
			i = len(b.Lines) - 1
			index[key] = i
		}
		if slot < 0 {
			continue
		}
		tid, err := uuid.Parse(typeID)
		if err != nil {
			return nil, errors.Wrapf(err, "parse type id %q", typeID)
		}
		b.Lines[i].Units = append(b.Lines[i].Units, SlotID{TypeID: tid, Index: slot})
	}
	if err := lineRows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate booking lines")
	}
	logger.DatabaseResult("SELECT", int64(len(bookings)), nil, "table", "bookings")
	return bookings, nil
}

// SaveBookings replaces the stored bookings, lines and unit slots.
func (s *SQLiteStore) SaveBookings(ctx context.Context, bookings []*Booking) error {
	logger.DatabaseCall("REPLACE", "bookings", "count", len(bookings))
	err := s.runInTx(ctx, func(tx *sql.Tx) error {
		for _, stmt := range []string{`DELETE FROM line_units`, `DELETE FROM booking_lines`, `DELETE FROM bookings`} {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return errors.Wrap(err, "clear bookings")
			}
		}
		for i, b := range bookings {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO bookings(id,position,customer_id,start_date,end_date,total_cost) VALUES(?,?,?,?,?,?)`,
				b.ID.String(), i, b.CustomerID.String(), b.Start.Format(dbDate), b.End.Format(dbDate), int64(b.TotalCost)); err != nil {
				return errors.Wrapf(err, "insert booking %s", b.ID)
			}
			for j, l := range b.Lines {
				res, err := tx.ExecContext(ctx,
					`INSERT INTO booking_lines(booking_id,position,start_date,end_date) VALUES(?,?,?,?)`,
					b.ID.String(), j, l.Start.Format(dbDate), l.End.Format(dbDate))
				if err != nil {
					return errors.Wrapf(err, "insert line %d of booking %s", j, b.ID)
				}
				lineID, err := res.LastInsertId()
				if err != nil {
					return errors.Wrap(err, "line id")
				}
				for _, u := range l.Units {
					if _, err := tx.ExecContext(ctx,
						`INSERT INTO line_units(line_id,type_id,slot) VALUES(?,?,?)`,
						lineID, u.TypeID.String(), u.Index); err != nil {
						return errors.Wrapf(err, "insert unit of booking %s", b.ID)
					}
				}
			}
		}
		return nil
	})
	logger.DatabaseResult("REPLACE", int64(len(bookings)), err, "table", "bookings")
	return err
}
