package board

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"bracket/reorder"
)

// ErrUnknownList is returned for a list name with no registered loader.
var ErrUnknownList = errors.New("unknown list")

// Loader produces the initial entries of a list for an owner.
type Loader func(ctx context.Context, owner string) ([]Entry, error)

// EmitterFunc returns the event emitter for an owner's boards.
type EmitterFunc func(owner string) reorder.EventEmitter

type boardKey struct {
	owner string
	list  string
}

// Manager builds boards lazily and tears them down with their owner's session.
// Loaders run without the manager lock held.
type Manager struct {
	mu         sync.Mutex
	boards     map[boardKey]*Board
	loaders    map[string]Loader
	epoch      uint64 // bumped whenever boards are dropped
	emitterFor EmitterFunc
	logFn      LogFunc
}

func NewManager(emitterFor EmitterFunc, logFn LogFunc) *Manager {
	if logFn == nil {
		logFn = func(string, ...any) {}
	}
	return &Manager{
		boards:     make(map[boardKey]*Board),
		loaders:    make(map[string]Loader),
		emitterFor: emitterFor,
		logFn:      logFn,
	}
}

// Register installs the loader for a list name.
func (m *Manager) Register(list string, load Loader) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loaders[list] = load
}

// Lists returns the registered list names, sorted.
func (m *Manager) Lists() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.loaders))
	for name := range m.loaders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns the owner's board for list, loading it on first use. A load
// that overlaps an Invalidate or Close is discarded and retried, so a board
// is never built from data older than the last invalidation.
func (m *Manager) Get(ctx context.Context, owner, list string) (*Board, error) {
	key := boardKey{owner, list}
	for {
		m.mu.Lock()
		if b, ok := m.boards[key]; ok {
			m.mu.Unlock()
			return b, nil
		}
		load, ok := m.loaders[list]
		epoch := m.epoch
		m.mu.Unlock()
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownList, list)
		}

		entries, err := load(ctx, owner)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", list, err)
		}

		m.mu.Lock()
		if b, ok := m.boards[key]; ok {
			m.mu.Unlock()
			return b, nil
		}
		if m.epoch != epoch {
			m.mu.Unlock()
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			continue
		}
		var emitter reorder.EventEmitter
		if m.emitterFor != nil {
			emitter = m.emitterFor(owner)
		}
		b, err := New(owner, list, entries, emitter, m.logFn)
		if err == nil {
			m.boards[key] = b
		}
		m.mu.Unlock()
		return b, err
	}
}

// Invalidate drops one board after its source data changed. Any open gesture
// is rolled back; the next Get reloads.
func (m *Manager) Invalidate(owner, list string) {
	m.mu.Lock()
	b, ok := m.boards[boardKey{owner, list}]
	delete(m.boards, boardKey{owner, list})
	m.epoch++
	m.mu.Unlock()
	if ok {
		b.Teardown()
	}
}

// Close tears down every board for owner.
func (m *Manager) Close(owner string) {
	m.mu.Lock()
	var closing []*Board
	for key, b := range m.boards {
		if key.owner == owner {
			closing = append(closing, b)
			delete(m.boards, key)
		}
	}
	m.epoch++
	m.mu.Unlock()
	for _, b := range closing {
		b.Teardown()
	}
}

// CloseAll tears down every board.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	closing := m.boards
	m.boards = make(map[boardKey]*Board)
	m.epoch++
	m.mu.Unlock()
	for _, b := range closing {
		b.Teardown()
	}
}
