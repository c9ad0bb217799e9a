// Package menu holds the menu state container: a single source of truth for
// brand, categories, items and theme, mutated through synchronous operations
// and observed through subscriptions.
package menu

import (
	"maps"
	"slices"
	"strconv"
	"sync"

	"github.com/starford/menushare/internal/models"
)

// Store is a constructible, observable menu state container.
//
// Mutations never fail: unknown ids and out-of-range moves are no-ops.
// Each mutation that changes state notifies subscribers after it commits,
// and notifications are delivered in the order the mutations were applied.
type Store struct {
	mu    sync.Mutex
	state models.State
	newID IDGenerator

	// dispatchMu is taken before mu is released so listeners observe
	// changes in commit order.
	dispatchMu sync.Mutex
	listeners  map[uint64]Listener
	nextSub    uint64
}

// Option configures a Store.
type Option func(*Store)

// WithIDGenerator replaces the default UUID id generator.
func WithIDGenerator(gen IDGenerator) Option {
	return func(s *Store) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// WithState seeds the store with st instead of the default empty menu.
func WithState(st models.State) Option {
	return func(s *Store) {
		s.state = normalize(st)
	}
}

// NewStore creates a store holding the default empty, editable menu.
func NewStore(opts ...Option) *Store {
	s := &Store{
		state:     models.DefaultState(),
		newID:     NewUUID,
		listeners: make(map[uint64]Listener),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers fn to be called after every state change. Listeners
// run synchronously on the mutating goroutine and must not mutate the store.
// The returned function removes the subscription.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// State returns a copy of the current state.
func (s *Store) State() models.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Snapshot returns the shareable part of the current state.
func (s *Store) Snapshot() models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Snapshot()
}

// ViewMode reports whether the store was hydrated from a shared link.
func (s *Store) ViewMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.ViewMode
}

// SetBrandInfo merges p into the brand.
func (s *Store) SetBrandInfo(p models.BrandPatch) {
	s.mutate(func(st *models.State) (Change, bool) {
		st.BrandInfo = p.Apply(st.BrandInfo)
		return Change{Kind: BrandUpdated}, true
	})
}

// SetTheme merges p into the theme.
func (s *Store) SetTheme(p models.ThemePatch) {
	s.mutate(func(st *models.State) (Change, bool) {
		st.Theme = p.Apply(st.Theme)
		return Change{Kind: ThemeUpdated}, true
	})
}

// SetViewMode sets the read-only flag.
func (s *Store) SetViewMode(on bool) {
	s.mutate(func(st *models.State) (Change, bool) {
		if st.ViewMode == on {
			return Change{}, false
		}
		st.ViewMode = on
		return Change{Kind: ViewModeChanged}, true
	})
}

// Replace swaps the whole state, bypassing incremental mutation. It is the
// hydration and bulk-import path.
func (s *Store) Replace(st models.State) {
	st = normalize(st)
	s.mutate(func(cur *models.State) (Change, bool) {
		*cur = st
		return Change{Kind: StateReplaced}, true
	})
}

// AddCategory appends a category and returns its id.
func (s *Store) AddCategory(name string) string {
	var id string
	s.mutate(func(st *models.State) (Change, bool) {
		id = s.freshID(func(c string) bool {
			return indexOf(st.Categories, c, categoryID) >= 0
		})
		st.Categories = append(st.Categories, models.Category{ID: id, Name: name})
		return Change{Kind: CategoryAdded, ID: id}, true
	})
	return id
}

// UpdateCategory merges p into the category with the given id.
func (s *Store) UpdateCategory(id string, p models.CategoryPatch) {
	s.mutate(func(st *models.State) (Change, bool) {
		i := indexOf(st.Categories, id, categoryID)
		if i < 0 {
			return Change{}, false
		}
		st.Categories[i] = p.Apply(st.Categories[i])
		return Change{Kind: CategoryUpdated, ID: id}, true
	})
}

// RemoveCategory deletes the category and every item that belongs to it.
func (s *Store) RemoveCategory(id string) {
	s.mutate(func(st *models.State) (Change, bool) {
		i := indexOf(st.Categories, id, categoryID)
		if i < 0 {
			return Change{}, false
		}
		st.Categories = slices.Delete(st.Categories, i, i+1)
		st.Items = slices.DeleteFunc(st.Items, func(it models.Item) bool {
			return it.CategoryID == id
		})
		return Change{Kind: CategoryRemoved, ID: id}, true
	})
}

// ReorderCategory swaps the category with its neighbour in direction dir.
func (s *Store) ReorderCategory(id string, dir models.Direction) {
	s.mutate(func(st *models.State) (Change, bool) {
		i := indexOf(st.Categories, id, categoryID)
		j, ok := neighbour(i, len(st.Categories), dir)
		if !ok {
			return Change{}, false
		}
		st.Categories[i], st.Categories[j] = st.Categories[j], st.Categories[i]
		return Change{Kind: CategoryMoved, ID: id}, true
	})
}

// AddItem appends an item to the flat item sequence and returns its id.
// categoryID is not checked against existing categories.
func (s *Store) AddItem(categoryID string, f models.ItemFields) string {
	if f.ImageType == "" {
		f.ImageType = models.ImageKindURL
	}
	var id string
	s.mutate(func(st *models.State) (Change, bool) {
		id = s.freshID(func(c string) bool {
			return indexOf(st.Items, c, itemID) >= 0
		})
		st.Items = append(st.Items, models.Item{
			ID:          id,
			CategoryID:  categoryID,
			Name:        f.Name,
			Price:       f.Price,
			Description: f.Description,
			Image:       f.Image,
			ImageType:   f.ImageType,
		})
		return Change{Kind: ItemAdded, ID: id}, true
	})
	return id
}

// UpdateItem merges p into the item with the given id.
func (s *Store) UpdateItem(id string, p models.ItemPatch) {
	s.mutate(func(st *models.State) (Change, bool) {
		i := indexOf(st.Items, id, itemID)
		if i < 0 {
			return Change{}, false
		}
		st.Items[i] = p.Apply(st.Items[i])
		return Change{Kind: ItemUpdated, ID: id}, true
	})
}

// RemoveItem deletes the item with the given id.
func (s *Store) RemoveItem(id string) {
	s.mutate(func(st *models.State) (Change, bool) {
		i := indexOf(st.Items, id, itemID)
		if i < 0 {
			return Change{}, false
		}
		st.Items = slices.Delete(st.Items, i, i+1)
		return Change{Kind: ItemRemoved, ID: id}, true
	})
}

// ReorderItem swaps the item with its neighbour among the items of the same
// category. Positions in the flat sequence are exchanged; items of other
// categories keep their positions.
func (s *Store) ReorderItem(id string, dir models.Direction) {
	s.mutate(func(st *models.State) (Change, bool) {
		abs := indexOf(st.Items, id, itemID)
		if abs < 0 {
			return Change{}, false
		}
		siblings := positionsIn(st.Items, st.Items[abs].CategoryID)
		k := slices.Index(siblings, abs)
		n, ok := neighbour(k, len(siblings), dir)
		if !ok {
			return Change{}, false
		}
		other := siblings[n]
		st.Items[abs], st.Items[other] = st.Items[other], st.Items[abs]
		return Change{Kind: ItemMoved, ID: id}, true
	})
}

// mutate applies fn under the state lock and, when fn reports a change,
// notifies listeners after the lock is released.
func (s *Store) mutate(fn func(st *models.State) (Change, bool)) {
	s.mu.Lock()
	ch, changed := fn(&s.state)
	if !changed {
		s.mu.Unlock()
		return
	}
	listeners := make([]Listener, 0, len(s.listeners))
	for _, k := range slices.Sorted(maps.Keys(s.listeners)) {
		listeners = append(listeners, s.listeners[k])
	}
	s.dispatchMu.Lock()
	s.mu.Unlock()
	defer s.dispatchMu.Unlock()

	for _, l := range listeners {
		l(ch)
	}
}

// freshID draws ids until one is not taken. A generator that repeats itself
// still yields unique ids thanks to the numeric suffix.
func (s *Store) freshID(taken func(string) bool) string {
	id := s.newID()
	for n := 2; taken(id); n++ {
		id = s.newID()
		if taken(id) {
			id = id + "-" + strconv.Itoa(n)
		}
	}
	return id
}

// neighbour returns the index next to i in direction dir, if it is inside
// a sequence of length n.
func neighbour(i, n int, dir models.Direction) (int, bool) {
	if i < 0 {
		return 0, false
	}
	switch dir {
	case models.DirectionUp:
		if i > 0 {
			return i - 1, true
		}
	case models.DirectionDown:
		if i < n-1 {
			return i + 1, true
		}
	}
	return 0, false
}

// normalize detaches st from the caller's slices; Clone never yields nil ones.
func normalize(st models.State) models.State {
	return st.Clone()
}
