package board

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"bracket/reorder"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingEmitter struct {
	mu     sync.Mutex
	owner  string
	events []string
}

func (r *recordingEmitter) add(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, r.owner+":"+s)
}

func (r *recordingEmitter) EmitDragStarted(list, id string, from int) {
	r.add(fmt.Sprintf("started:%s:%s:%d", list, id, from))
}
func (r *recordingEmitter) EmitItemMoved(list, id string, from, to int) {
	r.add(fmt.Sprintf("moved:%s:%s:%d->%d", list, id, from, to))
}
func (r *recordingEmitter) EmitDragCommitted(list, id string, from, to int) {
	r.add(fmt.Sprintf("committed:%s:%s:%d->%d", list, id, from, to))
}
func (r *recordingEmitter) EmitDragRolledBack(list, id string, from int) {
	r.add(fmt.Sprintf("rolled_back:%s:%s:%d", list, id, from))
}

func entries(ids ...string) []Entry {
	out := make([]Entry, len(ids))
	for i, id := range ids {
		out[i] = Entry{ID: id, Payload: "payload-" + id}
	}
	return out
}

func viewIDs(v View) []string {
	ids := make([]string, len(v.Items))
	for i, it := range v.Items {
		ids[i] = it.ID
	}
	return ids
}

func newTestBoard(t *testing.T, ids ...string) (*Board, *recordingEmitter, *[]string) {
	t.Helper()
	em := &recordingEmitter{owner: "u1"}
	var logs []string
	b, err := New("u1", "cast", entries(ids...), em, func(f string, a ...any) {
		logs = append(logs, fmt.Sprintf(f, a...))
	})
	require.NoError(t, err)
	return b, em, &logs
}

func intp(i int) *int { return &i }

func TestBoard_GestureAndView(t *testing.T) {
	b, _, _ := newTestBoard(t, "A", "B", "C", "D")

	require.NoError(t, b.DragStart("A"))
	require.NoError(t, b.HoverOver("C"))

	v := b.View()
	assert.Equal(t, "cast", v.List)
	assert.Equal(t, "A", v.Dragging)
	assert.Equal(t, []string{"B", "C", "A", "D"}, viewIDs(v))
	assert.Equal(t, "3rd", v.Items[2].Label)
	assert.Equal(t, reorder.TierBronze, v.Items[2].Tier)
	assert.Equal(t, "payload-A", v.Items[2].Payload)

	assert.True(t, b.Drop())
	v = b.View()
	assert.Empty(t, v.Dragging)
	assert.Equal(t, []string{"B", "C", "A", "D"}, viewIDs(v))
	assert.False(t, b.Drop(), "second drop is a no-op")
}

func TestBoard_CancelRestores(t *testing.T) {
	b, _, _ := newTestBoard(t, "A", "B", "C", "D")
	require.NoError(t, b.DragStart("D"))
	require.NoError(t, b.HoverOver("A"))
	assert.True(t, b.Cancel())
	assert.Equal(t, []string{"A", "B", "C", "D"}, viewIDs(b.View()))
	assert.False(t, b.Cancel())
}

func TestBoard_DragStartWhileActiveRollsBackStale(t *testing.T) {
	b, em, logs := newTestBoard(t, "A", "B", "C")

	require.NoError(t, b.DragStart("A"))
	require.NoError(t, b.HoverOver("C"))
	require.NoError(t, b.DragStart("B"))

	assert.Equal(t, []string{"A", "B", "C"}, viewIDs(b.View()), "stale gesture rolled back")
	assert.Equal(t, "B", b.View().Dragging)
	require.Len(t, *logs, 1)
	assert.Contains(t, (*logs)[0], "still active")
	assert.Contains(t, em.events, "u1:rolled_back:cast:A:0")
}

func TestBoard_DragEnd(t *testing.T) {
	b, em, _ := newTestBoard(t, "A", "B", "C", "D", "E")

	changed, err := b.DragEnd(intp(0), nil)
	require.NoError(t, err)
	assert.False(t, changed, "dropped outside the list")

	changed, err = b.DragEnd(intp(2), intp(2))
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Empty(t, em.events)

	changed, err = b.DragEnd(intp(0), intp(3))
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []string{"B", "C", "D", "A", "E"}, viewIDs(b.View()))

	changed, err = b.DragEnd(intp(4), intp(0))
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []string{"E", "B", "C", "D", "A"}, viewIDs(b.View()))

	changed, err = b.DragEnd(intp(1), intp(99))
	require.NoError(t, err)
	assert.True(t, changed, "destination past the end clamps to the last slot")
	assert.Equal(t, []string{"E", "C", "D", "A", "B"}, viewIDs(b.View()))

	_, err = b.DragEnd(intp(9), intp(0))
	assert.True(t, errors.Is(err, reorder.ErrNotFound))
}

func TestBoard_IndexOfAndNotFound(t *testing.T) {
	b, _, _ := newTestBoard(t, "A", "B")
	idx, err := b.IndexOf("B")
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	assert.ErrorIs(t, b.DragStart("Z"), reorder.ErrNotFound)
	require.NoError(t, b.DragStart("A"))
	assert.ErrorIs(t, b.HoverOver("Z"), reorder.ErrNotFound)
	assert.Equal(t, []string{"A", "B"}, viewIDs(b.View()))
}

func TestNew_DuplicateIDs(t *testing.T) {
	_, err := New("u1", "cast", entries("A", "A"), nil, nil)
	assert.ErrorIs(t, err, reorder.ErrDuplicateID)
}

func TestBoard_ConcurrentEvents(t *testing.T) {
	b, _, _ := newTestBoard(t, "A", "B", "C", "D", "E", "F")
	ids := []string{"A", "B", "C", "D", "E", "F"}

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				b.DragStart(ids[(g+i)%len(ids)])
				b.HoverOver(ids[(g*3+i)%len(ids)])
				if i%2 == 0 {
					b.Drop()
				} else {
					b.Cancel()
				}
			}
		}(g)
	}
	wg.Wait()

	got := viewIDs(b.View())
	assert.ElementsMatch(t, ids, got, "order stays a permutation")
}

// --- Manager ---

func newTestManager(t *testing.T) (*Manager, map[string]*recordingEmitter, *int) {
	t.Helper()
	emitters := map[string]*recordingEmitter{}
	var mu sync.Mutex
	m := NewManager(func(owner string) reorder.EventEmitter {
		mu.Lock()
		defer mu.Unlock()
		em := &recordingEmitter{owner: owner}
		emitters[owner] = em
		return em
	}, nil)
	loads := 0
	m.Register("cast", func(ctx context.Context, owner string) ([]Entry, error) {
		loads++
		return entries("A", "B", "C"), nil
	})
	m.Register("broken", func(ctx context.Context, owner string) ([]Entry, error) {
		return nil, errors.New("db down")
	})
	return m, emitters, &loads
}

func TestManager_BoardsPerOwner(t *testing.T) {
	m, emitters, loads := newTestManager(t)
	ctx := context.Background()

	a, err := m.Get(ctx, "alice", "cast")
	require.NoError(t, err)
	again, err := m.Get(ctx, "alice", "cast")
	require.NoError(t, err)
	assert.Same(t, a, again)
	assert.Equal(t, 1, *loads)

	bob, err := m.Get(ctx, "bob", "cast")
	require.NoError(t, err)
	assert.NotSame(t, a, bob)

	require.NoError(t, a.DragStart("A"))
	require.NoError(t, a.HoverOver("C"))
	assert.Equal(t, []string{"A", "B", "C"}, viewIDs(bob.View()), "owners do not share order")
	assert.Len(t, emitters["alice"].events, 2)
	assert.Empty(t, emitters["bob"].events)
}

func TestManager_UnknownAndFailingLists(t *testing.T) {
	m, _, _ := newTestManager(t)
	_, err := m.Get(context.Background(), "alice", "nope")
	assert.ErrorIs(t, err, ErrUnknownList)

	_, err = m.Get(context.Background(), "alice", "broken")
	assert.ErrorContains(t, err, "db down")

	assert.Equal(t, []string{"broken", "cast"}, m.Lists())
}

func TestManager_CloseCancelsOpenGestures(t *testing.T) {
	m, emitters, loads := newTestManager(t)
	ctx := context.Background()

	a, _ := m.Get(ctx, "alice", "cast")
	bob, _ := m.Get(ctx, "bob", "cast")
	require.NoError(t, a.DragStart("A"))
	require.NoError(t, a.HoverOver("B"))
	require.NoError(t, bob.DragStart("C"))

	m.Close("alice")
	assert.Equal(t, []string{"A", "B", "C"}, viewIDs(a.View()))
	assert.Contains(t, emitters["alice"].events, "alice:rolled_back:cast:A:0")
	_, dragging := bob.eng.Dragging()
	assert.True(t, dragging, "other owners are untouched")

	fresh, _ := m.Get(ctx, "alice", "cast")
	assert.NotSame(t, a, fresh)
	assert.Equal(t, 3, *loads)

	m.CloseAll()
	_, dragging = bob.eng.Dragging()
	assert.False(t, dragging)
}

func TestManager_Invalidate(t *testing.T) {
	m, _, loads := newTestManager(t)
	ctx := context.Background()
	a, _ := m.Get(ctx, "alice", "cast")
	require.NoError(t, a.DragStart("B"))

	m.Invalidate("alice", "cast")
	_, dragging := a.eng.Dragging()
	assert.False(t, dragging)

	_, err := m.Get(ctx, "alice", "cast")
	require.NoError(t, err)
	assert.Equal(t, 2, *loads)
}

func TestManager_LoadsRunInParallel(t *testing.T) {
	m := NewManager(nil, nil)
	var started sync.WaitGroup
	started.Add(2)
	release := make(chan struct{})
	m.Register("slow", func(ctx context.Context, owner string) ([]Entry, error) {
		started.Done()
		<-release
		return entries("A", "B"), nil
	})

	errs := make(chan error, 2)
	for _, owner := range []string{"alice", "bob"} {
		go func(owner string) {
			_, err := m.Get(context.Background(), owner, "slow")
			errs <- err
		}(owner)
	}

	// Both loaders must be running at once; a held lock would stall the second.
	inFlight := make(chan struct{})
	go func() { started.Wait(); close(inFlight) }()
	select {
	case <-inFlight:
	case <-time.After(2 * time.Second):
		close(release)
		t.Fatal("second load never started while the first was in flight")
	}
	close(release)
	for i := 0; i < 2; i++ {
		require.NoError(t, <-errs)
	}
}

func TestManager_InvalidateDuringLoadReloads(t *testing.T) {
	m := NewManager(nil, nil)
	var mu sync.Mutex
	loads := 0
	entered := make(chan struct{})
	release := make(chan struct{})
	m.Register("notes", func(ctx context.Context, owner string) ([]Entry, error) {
		mu.Lock()
		loads++
		n := loads
		mu.Unlock()
		if n == 1 {
			close(entered)
			<-release
			return entries("old"), nil
		}
		return entries("new"), nil
	})

	got := make(chan *Board, 1)
	go func() {
		b, err := m.Get(context.Background(), "alice", "notes")
		assert.NoError(t, err)
		got <- b
	}()
	<-entered
	m.Invalidate("alice", "notes")
	close(release)

	b := <-got
	require.NotNil(t, b)
	assert.Equal(t, []string{"new"}, viewIDs(b.View()))
	again, err := m.Get(context.Background(), "alice", "notes")
	require.NoError(t, err)
	assert.Same(t, b, again)
}

func TestBoard_CancelAfterReplaceIsAbandoned(t *testing.T) {
	var logs []string
	b, err := New("alice", "cast", entries("A", "B", "C"), nil, func(f string, a ...any) {
		logs = append(logs, fmt.Sprintf(f, a...))
	})
	require.NoError(t, err)
	require.NoError(t, b.DragStart("A"))
	require.NoError(t, b.eng.Collection().Replace(entries("C", "B", "A")))

	assert.True(t, b.Cancel())
	assert.Equal(t, []string{"C", "B", "A"}, viewIDs(b.View()))
	assert.Contains(t, logs, "board alice/cast: gesture abandoned, list was replaced mid-drag")
}
