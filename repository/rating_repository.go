package repository

import (
	"database/sql"
	"fmt"
)

// RatingRepository defines the interface for rating data operations.
type RatingRepository interface {
	// ExistsWithTx reports whether the user already rated the song.
	ExistsWithTx(tx *sql.Tx, userID, songID int64) (bool, error)
	// CreateRatingWithTx inserts a new rating row.
	CreateRatingWithTx(tx *sql.Tx, userID, songID int64, value int, date string) (int64, error)
}

// mysqlRatingRepository implements RatingRepository for MySQL.
type mysqlRatingRepository struct {
	db *sql.DB
}

// NewMySQLRatingRepository creates a new mysqlRatingRepository.
func NewMySQLRatingRepository(db *sql.DB) RatingRepository {
	return &mysqlRatingRepository{db: db}
}

func (r *mysqlRatingRepository) ExistsWithTx(tx *sql.Tx, userID, songID int64) (bool, error) {
	var one int
	err := tx.QueryRow("SELECT 1 FROM Rating WHERE user_id = ? AND song_id = ?", userID, songID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check rating (user %d, song %d): %w", userID, songID, err)
	}
	return true, nil
}

func (r *mysqlRatingRepository) CreateRatingWithTx(tx *sql.Tx, userID, songID int64, value int, date string) (int64, error) {
	res, err := tx.Exec(
		"INSERT INTO Rating (user_id, song_id, rating_value, rating_date) VALUES (?, ?, ?, ?)",
		userID, songID, value, date)
	if err != nil {
		return 0, fmt.Errorf("failed to insert rating (user %d, song %d): %w", userID, songID, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for rating: %w", err)
	}
	return id, nil
}
