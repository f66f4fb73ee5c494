package store

import (
	"time"
)

// MagicLink is a pending or consumed single-use login link.
// Only a hash of the secret is stored.
type MagicLink struct {
	ID         string     `json:"id"`
	Email      string     `json:"email"`
	SecretHash string     `json:"-"`
	IssuedAt   time.Time  `json:"issued_at"`
	ExpiresAt  time.Time  `json:"expires_at"`
	UsedAt     *time.Time `json:"used_at,omitempty"`
}

func (db *DB) CreateMagicLink(l *MagicLink) error {
	_, err := db.Exec(db.Q(`INSERT INTO magic_links (id, email, secret_hash, issued_at, expires_at) VALUES (?, ?, ?, ?, ?)`),
		l.ID, l.Email, l.SecretHash, l.IssuedAt.Unix(), l.ExpiresAt.Unix())
	return err
}

func (db *DB) GetMagicLink(id string) (*MagicLink, error) {
	row := db.QueryRow(db.Q(`SELECT id, email, secret_hash, issued_at, expires_at, used_at
		FROM magic_links WHERE id = ?`), id)
	l := &MagicLink{}
	var issuedAt, expiresAt int64
	var usedAt *int64
	if err := row.Scan(&l.ID, &l.Email, &l.SecretHash, &issuedAt, &expiresAt, &usedAt); err != nil {
		return nil, notFound(err)
	}
	l.IssuedAt = time.Unix(issuedAt, 0)
	l.ExpiresAt = time.Unix(expiresAt, 0)
	l.UsedAt = parseUnixPtr(usedAt)
	return l, nil
}

// MarkMagicLinkUsed consumes a link. It returns ErrNotFound when the link
// does not exist or was already consumed, so two racing logins cannot both win.
func (db *DB) MarkMagicLinkUsed(id string, at time.Time) error {
	res, err := db.Exec(db.Q(`UPDATE magic_links SET used_at = ? WHERE id = ? AND used_at IS NULL`), at.Unix(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// CountMagicLinksSince counts links issued for email at or after since.
func (db *DB) CountMagicLinksSince(email string, since time.Time) (int, error) {
	var n int
	err := db.QueryRow(db.Q(`SELECT COUNT(*) FROM magic_links WHERE email = ? AND issued_at >= ?`),
		email, since.Unix()).Scan(&n)
	return n, err
}

// PurgeExpiredMagicLinks deletes links that expired before cutoff.
func (db *DB) PurgeExpiredMagicLinks(cutoff time.Time) (int64, error) {
	res, err := db.Exec(db.Q(`DELETE FROM magic_links WHERE expires_at < ?`), cutoff.Unix())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
