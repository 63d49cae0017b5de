package repository

import (
	"database/sql"
	"fmt"
)

// ArtistRepository defines the interface for artist data operations.
type ArtistRepository interface {
	// EnsureArtistWithTx resolves an artist name to its id inside the
	// caller's transaction, inserting the row if it does not exist yet.
	EnsureArtistWithTx(tx *sql.Tx, name string) (int64, error)
}

// mysqlArtistRepository implements ArtistRepository for MySQL.
type mysqlArtistRepository struct {
	db *sql.DB
}

// NewMySQLArtistRepository creates a new mysqlArtistRepository.
func NewMySQLArtistRepository(db *sql.DB) ArtistRepository {
	return &mysqlArtistRepository{db: db}
}

// EnsureArtistWithTx is idempotent: resolving the same name twice yields the
// same id and creates no duplicate row. The insert is only visible if the
// enclosing transaction commits.
func (r *mysqlArtistRepository) EnsureArtistWithTx(tx *sql.Tx, name string) (int64, error) {
	var id int64
	err := tx.QueryRow("SELECT artist_id FROM Artist WHERE name = ?", name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("failed to look up artist %q: %w", name, err)
	}

	res, err := tx.Exec("INSERT INTO Artist (name) VALUES (?)", name)
	if err != nil {
		return 0, fmt.Errorf("failed to insert artist %q: %w", name, err)
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for artist %q: %w", name, err)
	}
	return id, nil
}
