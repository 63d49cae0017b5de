package repository

import (
	"database/sql"
	"fmt"
)

// GenreRepository defines the interface for genre data operations.
type GenreRepository interface {
	// EnsureGenreWithTx resolves a genre name to its id inside the caller's
	// transaction, inserting the row if it does not exist yet.
	EnsureGenreWithTx(tx *sql.Tx, name string) (int64, error)
}

// mysqlGenreRepository implements GenreRepository for MySQL.
type mysqlGenreRepository struct {
	db *sql.DB
}

// NewMySQLGenreRepository creates a new mysqlGenreRepository.
func NewMySQLGenreRepository(db *sql.DB) GenreRepository {
	return &mysqlGenreRepository{db: db}
}

// EnsureGenreWithTx mirrors EnsureArtistWithTx: lookup first, insert on miss.
func (r *mysqlGenreRepository) EnsureGenreWithTx(tx *sql.Tx, name string) (int64, error) {
	var id int64
	err := tx.QueryRow("SELECT genre_id FROM Genre WHERE name = ?", name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("failed to look up genre %q: %w", name, err)
	}

	res, err := tx.Exec("INSERT INTO Genre (name) VALUES (?)", name)
	if err != nil {
		return 0, fmt.Errorf("failed to insert genre %q: %w", name, err)
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for genre %q: %w", name, err)
	}
	return id, nil
}
