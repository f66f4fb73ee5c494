package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bracket/board"
	"bracket/config"
	"bracket/magiclink"
	"bracket/reorder"
	"bracket/store"
)

// List names served by the board manager.
const (
	ListCast  = "cast"
	ListNotes = "notes"
)

// ErrNoAccount is returned when a valid link names an email with no user.
var ErrNoAccount = errors.New("no account for this email")

// ValidationError carries per-field messages for a rejected form.
type ValidationError struct {
	Fields map[string]string
}

func (v *ValidationError) Error() string {
	parts := make([]string, 0, len(v.Fields))
	for field, msg := range v.Fields {
		parts = append(parts, field+": "+msg)
	}
	return "invalid input: " + strings.Join(parts, ", ")
}

// LogFunc is the logging callback signature.
type LogFunc func(format string, args ...any)

// Engine holds the application's business operations and the event bus that
// reports them.
type Engine struct {
	cfg     *config.Config
	db      *store.DB
	auth    magiclink.Provider
	logFn   LogFunc
	debugFn LogFunc

	boards *board.Manager

	Events *EventBus
}

// Config holds the parameters needed to create an Engine.
type Config struct {
	AppConfig *config.Config
	DB        *store.DB
	Auth      magiclink.Provider
	LogFunc   LogFunc
	Debug     bool
}

// New creates an Engine. Call Start before serving requests.
func New(c Config) *Engine {
	logFn := c.LogFunc
	if logFn == nil {
		logFn = func(string, ...any) {}
	}
	debugFn := LogFunc(func(string, ...any) {})
	if c.Debug {
		debugFn = logFn
	}
	e := &Engine{
		cfg:     c.AppConfig,
		db:      c.DB,
		auth:    c.Auth,
		logFn:   logFn,
		debugFn: debugFn,
		Events:  NewEventBus(),
	}
	e.boards = board.NewManager(e.emitterFor, board.LogFunc(logFn))
	return e
}

// Start registers the board lists and wires event handlers.
func (e *Engine) Start() {
	e.boards.Register(ListCast, e.loadCast)
	e.boards.Register(ListNotes, e.loadNotes)
	e.wireEventHandlers()
	e.logFn("engine started: lists=%v", e.boards.Lists())
}

// Stop rolls back every open gesture.
func (e *Engine) Stop() {
	e.boards.CloseAll()
	e.logFn("engine stopped")
}

func (e *Engine) DB() *store.DB             { return e.db }
func (e *Engine) AppConfig() *config.Config { return e.cfg }
func (e *Engine) Boards() *board.Manager    { return e.boards }

func (e *Engine) emitterFor(owner string) reorder.EventEmitter {
	return &boardEmitter{bus: e.Events, owner: owner}
}

// Join validates email and sends it a login link, creating the account on
// first use. redirectTo rides along in the link. It reports whether the
// account is new.
func (e *Engine) Join(ctx context.Context, email, redirectTo string) (bool, error) {
	normalized, err := magiclink.NormalizeEmail(email)
	if err != nil {
		return false, err
	}
	created, err := e.auth.LoginOrCreate(ctx, normalized, redirectTo)
	if err != nil {
		return false, err
	}

	user, err := e.db.GetUserByEmail(normalized)
	if errors.Is(err, store.ErrNotFound) {
		user, err = e.db.CreateUser(normalized)
		created = true
	}
	if err != nil {
		return false, fmt.Errorf("ensure user %s: %w", normalized, err)
	}
	if created {
		e.Events.Emit(Event{Type: EventUserJoined, Payload: AccountEvent{UserID: user.ID, Email: user.Email, NewUser: true}})
	}
	e.Events.Emit(Event{Type: EventLoginLinkSent, Payload: AccountEvent{UserID: user.ID, Email: user.Email, NewUser: created}})
	return created, nil
}

// Login redeems a login link token.
func (e *Engine) Login(ctx context.Context, token string) (*store.User, error) {
	email, err := e.auth.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	user, err := e.db.GetUserByEmail(email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNoAccount, email)
	}
	if err != nil {
		return nil, err
	}
	e.Events.Emit(Event{Type: EventUserLoggedIn, Payload: AccountEvent{UserID: user.ID, Email: user.Email}})
	return user, nil
}

// Logout ends a user's session state. Open gestures on their boards are
// rolled back.
func (e *Engine) Logout(userID string) {
	e.boards.Close(userID)
	e.Events.Emit(Event{Type: EventUserLoggedOut, Payload: AccountEvent{UserID: userID}})
}

// User returns the account for a session's user id.
func (e *Engine) User(userID string) (*store.User, error) {
	return e.db.GetUser(userID)
}

// DeleteAccount removes a user with their notes and boards.
func (e *Engine) DeleteAccount(email string) error {
	user, err := e.db.GetUserByEmail(email)
	if err != nil {
		return err
	}
	e.boards.Close(user.ID)
	return e.db.DeleteUserByEmail(email)
}

// CreateNote validates and stores a note.
func (e *Engine) CreateNote(userID, title, body string) (*store.Note, error) {
	fields := map[string]string{}
	if strings.TrimSpace(title) == "" {
		fields["title"] = "Title is required"
	}
	if strings.TrimSpace(body) == "" {
		fields["body"] = "Body is required"
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	n, err := e.db.CreateNote(userID, title, body)
	if err != nil {
		return nil, err
	}
	e.boards.Invalidate(userID, ListNotes)
	e.Events.Emit(Event{Type: EventNoteCreated, Payload: NoteEvent{UserID: userID, NoteID: n.ID, Title: n.Title}})
	return n, nil
}

func (e *Engine) Note(userID, noteID string) (*store.Note, error) {
	return e.db.GetNote(noteID, userID)
}

func (e *Engine) Notes(userID string) ([]store.Note, error) {
	return e.db.ListNotes(userID)
}

func (e *Engine) DeleteNote(userID, noteID string) error {
	if err := e.db.DeleteNote(noteID, userID); err != nil {
		return err
	}
	e.boards.Invalidate(userID, ListNotes)
	e.Events.Emit(Event{Type: EventNoteDeleted, Payload: NoteEvent{UserID: userID, NoteID: noteID}})
	return nil
}

// Board returns the user's board for list.
func (e *Engine) Board(ctx context.Context, userID, list string) (*board.Board, error) {
	return e.boards.Get(ctx, userID, list)
}

func (e *Engine) loadCast(ctx context.Context, _ string) ([]board.Entry, error) {
	cast, err := e.db.ListContestants()
	if err != nil {
		return nil, err
	}
	entries := make([]board.Entry, len(cast))
	for i, c := range cast {
		entries[i] = board.Entry{ID: c.Name, Payload: c}
	}
	return entries, nil
}

func (e *Engine) loadNotes(ctx context.Context, owner string) ([]board.Entry, error) {
	notes, err := e.db.ListNotes(owner)
	if err != nil {
		return nil, err
	}
	entries := make([]board.Entry, len(notes))
	for i, n := range notes {
		entries[i] = board.Entry{ID: n.ID, Payload: n}
	}
	return entries, nil
}
