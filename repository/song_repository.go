package repository

import (
	"database/sql"
	"fmt"
)

// SongRepository defines the interface for song data operations.
type SongRepository interface {
	// CreateSingleWithTx inserts a standalone song (no album, release date set).
	CreateSingleWithTx(tx *sql.Tx, title string, artistID int64, releaseDate string) (int64, error)
	// CreateAlbumSongWithTx inserts a song under an album (no single release date).
	CreateAlbumSongWithTx(tx *sql.Tx, title string, artistID, albumID int64) (int64, error)
	// AddGenreWithTx links a song to a genre.
	AddGenreWithTx(tx *sql.Tx, songID, genreID int64) error
	// FindIDByArtistAndTitleWithTx resolves a song by its (artist name, title)
	// pair. Returns 0 when no such song exists.
	FindIDByArtistAndTitleWithTx(tx *sql.Tx, artistName, title string) (int64, error)
}

// mysqlSongRepository implements SongRepository for MySQL.
type mysqlSongRepository struct {
	db *sql.DB
}

// NewMySQLSongRepository creates a new mysqlSongRepository.
func NewMySQLSongRepository(db *sql.DB) SongRepository {
	return &mysqlSongRepository{db: db}
}

func (r *mysqlSongRepository) CreateSingleWithTx(tx *sql.Tx, title string, artistID int64, releaseDate string) (int64, error) {
	res, err := tx.Exec(
		"INSERT INTO Song (title, artist_id, album_id, single_release_date) VALUES (?, ?, NULL, ?)",
		title, artistID, releaseDate)
	if err != nil {
		return 0, fmt.Errorf("failed to insert single %q: %w", title, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for single %q: %w", title, err)
	}
	return id, nil
}

func (r *mysqlSongRepository) CreateAlbumSongWithTx(tx *sql.Tx, title string, artistID, albumID int64) (int64, error) {
	res, err := tx.Exec(
		"INSERT INTO Song (title, artist_id, album_id, single_release_date) VALUES (?, ?, ?, NULL)",
		title, artistID, albumID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert album song %q: %w", title, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for album song %q: %w", title, err)
	}
	return id, nil
}

func (r *mysqlSongRepository) AddGenreWithTx(tx *sql.Tx, songID, genreID int64) error {
	if _, err := tx.Exec("INSERT INTO SongGenre (song_id, genre_id) VALUES (?, ?)", songID, genreID); err != nil {
		return fmt.Errorf("failed to link song %d to genre %d: %w", songID, genreID, err)
	}
	return nil
}

func (r *mysqlSongRepository) FindIDByArtistAndTitleWithTx(tx *sql.Tx, artistName, title string) (int64, error) {
	var id int64
	err := tx.QueryRow(`
		SELECT S.song_id
		FROM Song S
		JOIN Artist A ON S.artist_id = A.artist_id
		WHERE A.name = ? AND S.title = ?`, artistName, title).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, nil // no such song
	}
	if err != nil {
		return 0, fmt.Errorf("failed to look up song (%q, %q): %w", artistName, title, err)
	}
	return id, nil
}
