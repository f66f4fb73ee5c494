package reorder

import "fmt"

// Collection is the canonical render order of a list of items.
// It stores item handles, so reordering never copies or recreates items.
type Collection[T any] struct {
	items []*Item[T]
	gen   uint64 // bumped by Replace
}

// Snapshot is an opaque copy of a collection's order.
type Snapshot[T any] struct {
	items []*Item[T]
	gen   uint64
}

// NewCollection builds a collection from an externally supplied ordered list.
func NewCollection[T any](items []Item[T]) (*Collection[T], error) {
	c := &Collection[T]{}
	if err := c.Replace(items); err != nil {
		return nil, err
	}
	return c, nil
}

// Replace swaps in a new set of items. This is the only way the set of ids changes.
func (c *Collection[T]) Replace(items []Item[T]) error {
	if err := checkIDs(items); err != nil {
		return err
	}
	handles := make([]*Item[T], 0, len(items))
	for i := range items {
		it := items[i]
		handles = append(handles, &it)
	}
	c.items = handles
	c.gen++
	return nil
}

// checkIDs reports the first repeated id in items.
func checkIDs[T any](items []Item[T]) error {
	seen := make(map[string]struct{}, len(items))
	for i := range items {
		if _, dup := seen[items[i].ID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateID, items[i].ID)
		}
		seen[items[i].ID] = struct{}{}
	}
	return nil
}

// Len returns the number of items.
func (c *Collection[T]) Len() int { return len(c.items) }

// At returns the item handle at index i.
func (c *Collection[T]) At(i int) (*Item[T], bool) {
	if i < 0 || i >= len(c.items) {
		return nil, false
	}
	return c.items[i], true
}

// IndexOf returns the current index of id.
func (c *Collection[T]) IndexOf(id string) (int, error) {
	for i, it := range c.items {
		if it.ID == id {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// MoveTo removes id from its position and reinserts it at dest,
// clamped to [0, Len()-1]. Other items shift to stay contiguous.
func (c *Collection[T]) MoveTo(id string, dest int) error {
	from, err := c.IndexOf(id)
	if err != nil {
		return err
	}
	if dest < 0 {
		dest = 0
	}
	if dest > len(c.items)-1 {
		dest = len(c.items) - 1
	}
	if from == dest {
		return nil
	}
	moved := c.items[from]
	if from < dest {
		copy(c.items[from:dest], c.items[from+1:dest+1])
	} else {
		copy(c.items[dest+1:from+1], c.items[dest:from])
	}
	c.items[dest] = moved
	return nil
}

// Snapshot captures the current order.
func (c *Collection[T]) Snapshot() Snapshot[T] {
	cp := make([]*Item[T], len(c.items))
	copy(cp, c.items)
	return Snapshot[T]{items: cp, gen: c.gen}
}

// Restore puts the collection back into a captured order. The snapshot must
// contain exactly the live handles; otherwise nothing changes.
func (c *Collection[T]) Restore(s Snapshot[T]) error {
	if s.gen != c.gen || len(s.items) != len(c.items) {
		return ErrSnapshotMismatch
	}
	live := make(map[*Item[T]]struct{}, len(c.items))
	for _, it := range c.items {
		live[it] = struct{}{}
	}
	for _, it := range s.items {
		if _, ok := live[it]; !ok {
			return ErrSnapshotMismatch
		}
		delete(live, it)
	}
	copy(c.items, s.items)
	return nil
}

// Items returns the item handles in render order. The slice is a copy;
// the handles are shared.
func (c *Collection[T]) Items() []*Item[T] {
	cp := make([]*Item[T], len(c.items))
	copy(cp, c.items)
	return cp
}

// IDs returns the ids in render order.
func (c *Collection[T]) IDs() []string {
	ids := make([]string, len(c.items))
	for i, it := range c.items {
		ids[i] = it.ID
	}
	return ids
}
