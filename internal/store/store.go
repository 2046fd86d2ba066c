// Package store persists contacts in a relational database through sqlx. The connection pool is
// created by the caller and handed in, so that tests can substitute a mock database.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"gitlab.com/dirk.krummacker/contact-form/internal/model"
)

// Driver names handed to sqlx. They select the placeholder syntax of the queries.
const (
	PostgresDriverName = "pgx"
	MySQLDriverName    = "mysql"
)

const (
	// insertReturning creates a contact and reads the stored row back in one round trip.
	insertReturning = `
		INSERT INTO contacts (name, email)
		VALUES (?, ?)
		RETURNING id, name, email, created_at`

	// insert creates a contact on databases without RETURNING support.
	insert = `
		INSERT INTO contacts (name, email)
		VALUES (?, ?)`

	// selectWhereId reads a single contact.
	selectWhereId = `
		SELECT id, name, email, created_at FROM contacts WHERE id = ?`
)

// Store is the contacts table on one database.
type Store struct {
	db        *sqlx.DB
	returning bool
}

// New wraps the database handle with sqlx. The driver name selects the placeholder syntax and
// whether inserts can return the stored row directly. The database argument can be a real
// database for production use or a mock database within unit tests.
func New(sqlDB *sql.DB, driverName string) *Store {
	return &Store{
		db:        sqlx.NewDb(sqlDB, driverName),
		returning: driverName != MySQLDriverName,
	}
}

// InsertContact stores a new contact and returns it as it was saved, including the id and the
// creation time assigned by the database.
func (s *Store) InsertContact(ctx context.Context, name string, email string) (model.Contact, error) {
	var contact model.Contact
	if s.returning {
		row := s.db.QueryRowxContext(ctx, s.db.Rebind(insertReturning), name, email)
		if err := row.StructScan(&contact); err != nil {
			return model.Contact{}, fmt.Errorf("insert contact: %w", err)
		}
		return contact, nil
	}

	result, err := s.db.ExecContext(ctx, s.db.Rebind(insert), name, email)
	if err != nil {
		return model.Contact{}, fmt.Errorf("insert contact: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return model.Contact{}, fmt.Errorf("read inserted id: %w", err)
	}
	if err := s.db.GetContext(ctx, &contact, s.db.Rebind(selectWhereId), id); err != nil {
		return model.Contact{}, fmt.Errorf("select contact %d: %w", id, err)
	}
	return contact, nil
}

// Ping verifies that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// DB returns the underlying database handle.
func (s *Store) DB() *sql.DB {
	return s.db.DB
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}
