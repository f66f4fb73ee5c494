package store

import (
	"time"

	"github.com/google/uuid"
)

// Note is a titled text owned by one user.
type Note struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (db *DB) CreateNote(userID, title, body string) (*Note, error) {
	id := uuid.NewString()
	_, err := db.Exec(db.Q(`INSERT INTO notes (id, user_id, title, body) VALUES (?, ?, ?, ?)`),
		id, userID, title, body)
	if err != nil {
		return nil, err
	}
	return db.GetNote(id, userID)
}

// GetNote returns a note only if it belongs to userID.
func (db *DB) GetNote(id, userID string) (*Note, error) {
	row := db.QueryRow(db.Q(`SELECT id, user_id, title, body, created_at, updated_at
		FROM notes WHERE id = ? AND user_id = ?`), id, userID)
	return scanNote(row)
}

// ListNotes returns a user's notes, newest first.
func (db *DB) ListNotes(userID string) ([]Note, error) {
	rows, err := db.Query(db.Q(`SELECT id, user_id, title, body, created_at, updated_at
		FROM notes WHERE user_id = ? ORDER BY created_at DESC, id`), userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var notes []Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, *n)
	}
	return notes, rows.Err()
}

func (db *DB) DeleteNote(id, userID string) error {
	res, err := db.Exec(db.Q(`DELETE FROM notes WHERE id = ? AND user_id = ?`), id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanNote(row rowScanner) (*Note, error) {
	n := &Note{}
	var createdAt, updatedAt any
	if err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.Body, &createdAt, &updatedAt); err != nil {
		return nil, notFound(err)
	}
	n.CreatedAt = parseTime(createdAt)
	n.UpdatedAt = parseTime(updatedAt)
	return n, nil
}
