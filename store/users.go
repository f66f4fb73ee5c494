package store

import (
	"time"

	"github.com/google/uuid"
)

// User is an account identified by its email address.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateUser inserts a user for email and returns it.
func (db *DB) CreateUser(email string) (*User, error) {
	u := &User{ID: uuid.NewString(), Email: email}
	if _, err := db.Exec(db.Q(`INSERT INTO users (id, email) VALUES (?, ?)`), u.ID, u.Email); err != nil {
		return nil, err
	}
	return db.GetUser(u.ID)
}

func (db *DB) GetUser(id string) (*User, error) {
	return db.scanUser(db.QueryRow(db.Q(`SELECT id, email, created_at FROM users WHERE id = ?`), id))
}

func (db *DB) GetUserByEmail(email string) (*User, error) {
	return db.scanUser(db.QueryRow(db.Q(`SELECT id, email, created_at FROM users WHERE email = ?`), email))
}

// DeleteUserByEmail removes a user and, by cascade, their notes.
func (db *DB) DeleteUserByEmail(email string) error {
	res, err := db.Exec(db.Q(`DELETE FROM users WHERE email = ?`), email)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (db *DB) scanUser(row rowScanner) (*User, error) {
	u := &User{}
	var createdAt any
	if err := row.Scan(&u.ID, &u.Email, &createdAt); err != nil {
		return nil, notFound(err)
	}
	u.CreatedAt = parseTime(createdAt)
	return u, nil
}
