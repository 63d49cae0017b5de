package repository

import (
	"database/sql"
	"fmt"
)

// AlbumRepository defines the interface for album data operations.
type AlbumRepository interface {
	// FindIDByNameAndArtistWithTx returns the id of the artist's album with
	// the given title, or 0 when the artist has no album of that title.
	FindIDByNameAndArtistWithTx(tx *sql.Tx, name string, artistID int64) (int64, error)
	// CreateAlbumWithTx inserts a new album row.
	CreateAlbumWithTx(tx *sql.Tx, name string, artistID int64, releaseDate string, genreID int64) (int64, error)
}

// mysqlAlbumRepository implements AlbumRepository for MySQL.
type mysqlAlbumRepository struct {
	db *sql.DB
}

// NewMySQLAlbumRepository creates a new mysqlAlbumRepository.
func NewMySQLAlbumRepository(db *sql.DB) AlbumRepository {
	return &mysqlAlbumRepository{db: db}
}

func (r *mysqlAlbumRepository) FindIDByNameAndArtistWithTx(tx *sql.Tx, name string, artistID int64) (int64, error) {
	var id int64
	err := tx.QueryRow("SELECT album_id FROM Album WHERE name = ? AND artist_id = ?", name, artistID).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, nil // artist has no album of this title
	}
	if err != nil {
		return 0, fmt.Errorf("failed to look up album (%q, artist %d): %w", name, artistID, err)
	}
	return id, nil
}

func (r *mysqlAlbumRepository) CreateAlbumWithTx(tx *sql.Tx, name string, artistID int64, releaseDate string, genreID int64) (int64, error) {
	res, err := tx.Exec(
		"INSERT INTO Album (name, artist_id, release_date, genre_id) VALUES (?, ?, ?, ?)",
		name, artistID, releaseDate, genreID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert album %q: %w", name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for album %q: %w", name, err)
	}
	return id, nil
}
