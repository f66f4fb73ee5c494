package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"path/filepath"
	"sync"
	"testing"

	"bracket/config"
	"bracket/magiclink"
	"bracket/messaging"
	"bracket/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type eventLog struct {
	mu     sync.Mutex
	events []Event
}

func (l *eventLog) record(evt Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, evt)
}

func (l *eventLog) types() []EventType {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]EventType, len(l.events))
	for i, e := range l.events {
		out[i] = e.Type
	}
	return out
}

func newTestEngine(t *testing.T) (*Engine, *store.DB, *eventLog, *[]string) {
	t.Helper()
	cfg := config.Defaults()
	cfg.Database.SQLite.Path = filepath.Join(t.TempDir(), "test.db")
	db, err := store.Open(&cfg.Database)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	auth := magiclink.NewLocal(db, magiclink.Options{
		BaseURL:   cfg.Web.BaseURL,
		TTL:       cfg.MagicLink.TTL,
		MailTopic: cfg.Messaging.MailTopic,
		Cost:      bcrypt.MinCost,
	})
	var mu sync.Mutex
	var logs []string
	e := New(Config{
		AppConfig: cfg,
		DB:        db,
		Auth:      auth,
		LogFunc: func(f string, a ...any) {
			mu.Lock()
			defer mu.Unlock()
			logs = append(logs, fmt.Sprintf(f, a...))
		},
	})
	e.Start()
	t.Cleanup(e.Stop)

	el := &eventLog{}
	e.Events.Subscribe(el.record)
	return e, db, el, &logs
}

func lastToken(t *testing.T, db *store.DB) string {
	t.Helper()
	msgs, err := db.ListPendingOutbox(100, 10)
	require.NoError(t, err)
	require.NotEmpty(t, msgs)
	var m messaging.LoginEmail
	require.NoError(t, json.Unmarshal(msgs[len(msgs)-1].Payload, &m))
	u, err := url.Parse(m.Link)
	require.NoError(t, err)
	return u.Query().Get("token")
}

func TestJoinAndLogin(t *testing.T) {
	e, db, el, _ := newTestEngine(t)
	ctx := context.Background()

	created, err := e.Join(ctx, "Ann@Example.com", "")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, []EventType{EventUserJoined, EventLoginLinkSent}, el.types())

	created, err = e.Join(ctx, "ann@example.com", "")
	require.NoError(t, err)
	assert.False(t, created)

	user, err := e.Login(ctx, lastToken(t, db))
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", user.Email)
	assert.Equal(t, EventUserLoggedIn, el.types()[len(el.types())-1])

	_, err = e.Login(ctx, "bogus.token")
	assert.ErrorIs(t, err, magiclink.ErrInvalidToken)
}

func TestJoin_InvalidEmail(t *testing.T) {
	e, _, el, _ := newTestEngine(t)
	_, err := e.Join(context.Background(), "not-an-email", "")
	assert.ErrorIs(t, err, magiclink.ErrInvalidEmail)
	assert.Empty(t, el.types())
}

func TestCreateNote_Validation(t *testing.T) {
	e, db, _, _ := newTestEngine(t)
	u, err := db.CreateUser("ann@example.com")
	require.NoError(t, err)

	_, err = e.CreateNote(u.ID, "", "")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Title is required", verr.Fields["title"])
	assert.Equal(t, "Body is required", verr.Fields["body"])

	_, err = e.CreateNote(u.ID, "Packing", "  ")
	require.ErrorAs(t, err, &verr)
	assert.NotContains(t, verr.Fields, "title")
	assert.Contains(t, verr.Fields, "body")
}

func TestNotesBoardFollowsNotes(t *testing.T) {
	e, db, el, _ := newTestEngine(t)
	ctx := context.Background()
	u, _ := db.CreateUser("ann@example.com")

	b, err := e.Board(ctx, u.ID, ListNotes)
	require.NoError(t, err)
	assert.Empty(t, b.View().Items)

	n, err := e.CreateNote(u.ID, "Packing", "tarp")
	require.NoError(t, err)
	b, err = e.Board(ctx, u.ID, ListNotes)
	require.NoError(t, err)
	require.Len(t, b.View().Items, 1)
	assert.Equal(t, n.ID, b.View().Items[0].ID)

	require.NoError(t, e.DeleteNote(u.ID, n.ID))
	b, _ = e.Board(ctx, u.ID, ListNotes)
	assert.Empty(t, b.View().Items)
	assert.Contains(t, el.types(), EventNoteCreated)
	assert.Contains(t, el.types(), EventNoteDeleted)
}

func TestCastBoardGestureEvents(t *testing.T) {
	e, db, el, logs := newTestEngine(t)
	ctx := context.Background()
	u, _ := db.CreateUser("ann@example.com")

	b, err := e.Board(ctx, u.ID, ListCast)
	require.NoError(t, err)
	v := b.View()
	require.GreaterOrEqual(t, len(v.Items), 3)
	first, third := v.Items[0].ID, v.Items[2].ID

	var drags []DragEvent
	e.Events.SubscribeWhere(func(evt Event) {
		drags = append(drags, evt.Payload.(DragEvent))
	}, func(evt Event) bool { return evt.Payload.(DragEvent).Owner == u.ID },
		EventDragStarted, EventItemMoved, EventDragCommitted, EventDragRolledBack)

	require.NoError(t, b.DragStart(first))
	require.NoError(t, b.HoverOver(third))
	require.True(t, b.Drop())

	require.Len(t, drags, 3)
	assert.Equal(t, DragEvent{Owner: u.ID, List: ListCast, ItemID: first, From: 0, To: -1}, drags[0])
	assert.Equal(t, DragEvent{Owner: u.ID, List: ListCast, ItemID: first, From: 0, To: 2}, drags[2])
	assert.Contains(t, el.types(), EventDragCommitted)
	assert.Contains(t, *logs, fmt.Sprintf("board %s/cast: %s moved from 1st to 3rd", u.ID, first))
}

func TestLogoutRollsBackOpenGesture(t *testing.T) {
	e, db, el, _ := newTestEngine(t)
	ctx := context.Background()
	u, _ := db.CreateUser("ann@example.com")

	b, _ := e.Board(ctx, u.ID, ListCast)
	before := b.View()
	require.NoError(t, b.DragStart(before.Items[0].ID))
	require.NoError(t, b.HoverOver(before.Items[1].ID))

	e.Logout(u.ID)
	types := el.types()
	assert.Equal(t, []EventType{EventDragStarted, EventItemMoved, EventDragRolledBack, EventUserLoggedOut}, types)
	assert.Equal(t, before.Items[0].ID, b.View().Items[0].ID)
}

func TestDeleteAccount(t *testing.T) {
	e, db, _, _ := newTestEngine(t)
	u, _ := db.CreateUser("ann@example.com")
	_, err := e.CreateNote(u.ID, "t", "b")
	require.NoError(t, err)

	require.NoError(t, e.DeleteAccount("ann@example.com"))
	_, err = e.User(u.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	notes, err := e.Notes(u.ID)
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestEventTypeString(t *testing.T) {
	assert.Equal(t, "drag_committed", EventDragCommitted.String())
	assert.Equal(t, "unknown", EventType(999).String())
}
