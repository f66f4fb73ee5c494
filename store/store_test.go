package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"bracket/config"
)

// testDB creates a temporary SQLite database for testing.
func testDB(t *testing.T) *DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := Open(&config.DatabaseConfig{
		Driver: "sqlite",
		SQLite: config.SQLiteConfig{Path: dbPath},
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRebind(t *testing.T) {
	got := Rebind(`SELECT * FROM notes WHERE id = ? AND user_id = ?`)
	want := `SELECT * FROM notes WHERE id = $1 AND user_id = $2`
	if got != want {
		t.Errorf("Rebind = %q, want %q", got, want)
	}
}

// --- User tests ---

func TestUserCRUD(t *testing.T) {
	db := testDB(t)

	u, err := db.CreateUser("rachel@example.com")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if u.ID == "" {
		t.Fatal("ID should be assigned")
	}
	if u.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}

	got, err := db.GetUserByEmail("rachel@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("ID = %q, want %q", got.ID, u.ID)
	}

	if _, err := db.CreateUser("rachel@example.com"); err == nil {
		t.Error("duplicate email should fail")
	}

	if err := db.DeleteUserByEmail("rachel@example.com"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := db.GetUser(u.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("get after delete: err = %v, want ErrNotFound", err)
	}
	if err := db.DeleteUserByEmail("rachel@example.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: err = %v, want ErrNotFound", err)
	}
}

// --- Note tests ---

func TestNotesScopedToOwner(t *testing.T) {
	db := testDB(t)
	alice, _ := db.CreateUser("alice@example.com")
	bob, _ := db.CreateUser("bob@example.com")

	n, err := db.CreateNote(alice.ID, "Groceries", "eggs")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if n.Title != "Groceries" || n.Body != "eggs" {
		t.Errorf("note = %+v", n)
	}
	if _, err := db.CreateNote(alice.ID, "Packing", "tarp"); err != nil {
		t.Fatalf("create second: %v", err)
	}

	notes, err := db.ListNotes(alice.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(notes) != 2 {
		t.Fatalf("len = %d, want 2", len(notes))
	}
	if others, _ := db.ListNotes(bob.ID); len(others) != 0 {
		t.Errorf("bob sees %d notes, want 0", len(others))
	}

	if _, err := db.GetNote(n.ID, bob.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("foreign get: err = %v, want ErrNotFound", err)
	}
	if err := db.DeleteNote(n.ID, bob.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("foreign delete: err = %v, want ErrNotFound", err)
	}
	if err := db.DeleteNote(n.ID, alice.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if notes, _ := db.ListNotes(alice.ID); len(notes) != 1 {
		t.Errorf("after delete len = %d, want 1", len(notes))
	}
}

func TestDeleteUserCascadesNotes(t *testing.T) {
	db := testDB(t)
	u, _ := db.CreateUser("carol@example.com")
	n, _ := db.CreateNote(u.ID, "t", "b")

	if err := db.DeleteUserByEmail(u.Email); err != nil {
		t.Fatalf("delete user: %v", err)
	}
	if _, err := db.GetNote(n.ID, u.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("note survived user delete: err = %v", err)
	}
}

// --- Magic link tests ---

func TestMagicLinkSingleUse(t *testing.T) {
	db := testDB(t)
	now := time.Now().Truncate(time.Second)

	l := &MagicLink{ID: "link-1", Email: "dave@example.com", SecretHash: "hash", IssuedAt: now, ExpiresAt: now.Add(15 * time.Minute)}
	if err := db.CreateMagicLink(l); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := db.GetMagicLink("link-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.UsedAt != nil {
		t.Error("UsedAt should be nil before use")
	}
	if !got.ExpiresAt.Equal(l.ExpiresAt) {
		t.Errorf("ExpiresAt = %v, want %v", got.ExpiresAt, l.ExpiresAt)
	}

	if err := db.MarkMagicLinkUsed("link-1", now); err != nil {
		t.Fatalf("mark used: %v", err)
	}
	if err := db.MarkMagicLinkUsed("link-1", now); !errors.Is(err, ErrNotFound) {
		t.Errorf("second use: err = %v, want ErrNotFound", err)
	}
	got, _ = db.GetMagicLink("link-1")
	if got.UsedAt == nil {
		t.Error("UsedAt should be set after use")
	}
}

func TestCountAndPurgeMagicLinks(t *testing.T) {
	db := testDB(t)
	now := time.Now()
	old := now.Add(-2 * time.Hour)

	db.CreateMagicLink(&MagicLink{ID: "old", Email: "e@example.com", SecretHash: "h", IssuedAt: old, ExpiresAt: old.Add(time.Minute)})
	db.CreateMagicLink(&MagicLink{ID: "new", Email: "e@example.com", SecretHash: "h", IssuedAt: now, ExpiresAt: now.Add(time.Minute)})

	n, err := db.CountMagicLinksSince("e@example.com", now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("count = %d, want 1", n)
	}

	purged, err := db.PurgeExpiredMagicLinks(now)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if purged != 1 {
		t.Errorf("purged = %d, want 1", purged)
	}
	if _, err := db.GetMagicLink("old"); !errors.Is(err, ErrNotFound) {
		t.Errorf("old link survived purge: err = %v", err)
	}
}

// --- Contestant tests ---

func TestContestantsSeeded(t *testing.T) {
	db := testDB(t)
	want, err := LoadCast()
	if err != nil {
		t.Fatalf("load cast: %v", err)
	}

	got, err := db.ListContestants()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != len(want) || len(got) == 0 {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Name != want[i].Name {
			t.Errorf("[%d] Name = %q, want %q", i, got[i].Name, want[i].Name)
		}
	}

	// Re-running migrations must not duplicate the roster.
	if err := db.migrate(); err != nil {
		t.Fatalf("migrate again: %v", err)
	}
	again, _ := db.ListContestants()
	if len(again) != len(want) {
		t.Errorf("after re-migrate len = %d, want %d", len(again), len(want))
	}
}

// --- Outbox tests ---

func TestOutboxLifecycle(t *testing.T) {
	db := testDB(t)

	id, err := db.EnqueueOutbox("bracket/mail", []byte(`{"to":"x"}`), "login_email")
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if id == 0 {
		t.Fatal("id should be assigned")
	}

	pending, err := db.ListPendingOutbox(10, 3)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(pending) != 1 || pending[0].MsgType != "login_email" {
		t.Fatalf("pending = %+v", pending)
	}

	for i := 0; i < 3; i++ {
		db.IncrementOutboxRetries(id)
	}
	if pending, _ := db.ListPendingOutbox(10, 3); len(pending) != 0 {
		t.Errorf("exhausted message still pending")
	}
	if pending, _ := db.ListPendingOutbox(10, 5); len(pending) != 1 {
		t.Errorf("message should be pending under a higher retry cap")
	}

	if err := db.AckOutbox(id); err != nil {
		t.Fatalf("ack: %v", err)
	}
	if pending, _ := db.ListPendingOutbox(10, 5); len(pending) != 0 {
		t.Errorf("acked message still pending")
	}
}
