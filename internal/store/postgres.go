package store

import (
	"database/sql"
	"errors"
	"log"
)

// Predefined errors for store operations
var (
	ErrInvalidArgument  = errors.New("store: invalid argument")
	ErrProductNotFound  = errors.New("store: product not found")
	ErrProductNameTaken = errors.New("store: product name already exists")
	ErrUserNotFound     = errors.New("store: user not found")
	ErrUserEmailTaken   = errors.New("store: user email already exists")
	ErrOrderNotFound    = errors.New("store: order not found")
	ErrFileNotFound     = errors.New("store: file not found")
	ErrUpdateFailed     = errors.New("store: update failed, 0 rows affected")
)

// PostgresStore implements the ProductStorer, UserStorer, OrderStorer and
// FileStorer interfaces using PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgresStore instance.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Close() error {
	if s.db != nil {
		log.Println("INFO: Closing database connection pool...")
		err := s.db.Close()
		if err != nil {
			log.Printf("ERROR: Failed to close database connection pool: %v", err)
			return err
		}
		log.Println("INFO: Database connection pool closed successfully.")
		return nil
	}
	return nil
}
