package repository

import (
	"database/sql"
	"fmt"
)

// UserRepository defines the interface for user account data operations.
type UserRepository interface {
	// CreateUserWithTx inserts a new user account. The unique key on
	// username makes a duplicate surface as a store conflict.
	CreateUserWithTx(tx *sql.Tx, username string) (int64, error)
	// FindIDByUsernameWithTx resolves a username to its id. Returns 0 when
	// no such user exists.
	FindIDByUsernameWithTx(tx *sql.Tx, username string) (int64, error)
}

// mysqlUserRepository implements UserRepository for MySQL.
type mysqlUserRepository struct {
	db *sql.DB
}

// NewMySQLUserRepository creates a new mysqlUserRepository.
func NewMySQLUserRepository(db *sql.DB) UserRepository {
	return &mysqlUserRepository{db: db}
}

func (r *mysqlUserRepository) CreateUserWithTx(tx *sql.Tx, username string) (int64, error) {
	res, err := tx.Exec("INSERT INTO UserAccount (username) VALUES (?)", username)
	if err != nil {
		return 0, fmt.Errorf("failed to insert user %q: %w", username, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for user %q: %w", username, err)
	}
	return id, nil
}

func (r *mysqlUserRepository) FindIDByUsernameWithTx(tx *sql.Tx, username string) (int64, error) {
	var id int64
	err := tx.QueryRow("SELECT user_id FROM UserAccount WHERE username = ?", username).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, nil // no such user
	}
	if err != nil {
		return 0, fmt.Errorf("failed to look up user %q: %w", username, err)
	}
	return id, nil
}
