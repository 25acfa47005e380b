package cart

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kayalabs/studiocart-backend/pkg/logger"
	"github.com/kayalabs/studiocart-backend/pkg/types"
)

// Mirror is the per-device local store a session cart stays synchronized
// with. Implementations treat missing or malformed data as an empty cart.
type Mirror interface {
	Load(ctx context.Context, deviceID string) (types.CartSnapshot, error)
	Save(ctx context.Context, deviceID string, snapshot types.CartSnapshot) error
	Clear(ctx context.Context, deviceID string) error
}

// Change describes the cart state after a mutation. Subscribers receive a
// defensive copy and can render from it directly.
type Change struct {
	Snapshot    types.CartSnapshot
	Count       int
	Total       decimal.Decimal
	BecameEmpty bool
}

// Store owns the ordered line-item sequence for one device session. Every
// mutation writes the mirror before returning, so the mirror and the derived
// counter never lag the in-memory state. Mutations bump a monotonic version
// used to order remote snapshot pushes.
type Store struct {
	mu          sync.Mutex
	deviceID    string
	items       []types.LineItem
	version     int64
	nextID      int64
	mirror      Mirror
	logg        *logger.Logger
	now         func() time.Time
	subscribers map[int]func(Change)
	nextSubID   int
}

// NewStore builds a session store seeded from the device mirror. The item ID
// counter starts above both the wall clock and any re-hydrated IDs, so new
// items never collide with persisted ones.
func NewStore(ctx context.Context, deviceID string, mirror Mirror, logg *logger.Logger) (*Store, error) {
	if deviceID == "" {
		return nil, errMissingDevice
	}
	if mirror == nil {
		return nil, errMissingMirror
	}

	snapshot, err := mirror.Load(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	nextID := time.Now().UnixMilli()
	for _, item := range snapshot {
		if item.ID >= nextID {
			nextID = item.ID + 1
		}
	}

	return &Store{
		deviceID:    deviceID,
		items:       snapshot.Clone(),
		version:     time.Now().UnixMilli(),
		nextID:      nextID,
		mirror:      mirror,
		logg:        logg,
		now:         time.Now,
		subscribers: make(map[int]func(Change)),
	}, nil
}

// bumpVersionLocked advances the snapshot version past both the previous
// version and the wall clock. Remote writes made outside any session (admin
// end-session, profile clear) stamp the document with the wall clock, so a
// plain increment could leave a still-live session permanently behind them.
func (s *Store) bumpVersionLocked() {
	next := s.version + 1
	if wall := s.now().UnixMilli(); wall > next {
		next = wall
	}
	s.version = next
}

// DeviceID returns the device session identity the store is bound to.
func (s *Store) DeviceID() string {
	return s.deviceID
}

// Add appends the item to the end of the cart, assigning a fresh ID when the
// item carries none. The mirrored snapshot is written before Add returns; a
// mirror failure leaves the in-memory cart unchanged.
func (s *Store) Add(ctx context.Context, item types.LineItem) (types.LineItem, error) {
	s.mu.Lock()
	if item.ID == 0 {
		item.ID = s.nextID
		s.nextID++
	} else if item.ID >= s.nextID {
		s.nextID = item.ID + 1
	}

	next := append(s.items[:len(s.items):len(s.items)], item)
	if err := s.mirror.Save(ctx, s.deviceID, types.CartSnapshot(next)); err != nil {
		s.mu.Unlock()
		return types.LineItem{}, err
	}
	s.items = next
	s.bumpVersionLocked()
	change := s.changeLocked(false)
	s.mu.Unlock()

	s.notify(change)
	return item, nil
}

// Remove deletes the item with the given ID. An absent ID is a logged no-op,
// never an error. The second result reports whether the cart became empty.
func (s *Store) Remove(ctx context.Context, id int64) (removed bool, becameEmpty bool, err error) {
	s.mu.Lock()
	index := -1
	for i, item := range s.items {
		if item.ID == id {
			index = i
			break
		}
	}
	if index < 0 {
		s.mu.Unlock()
		if s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "item_id", id), "remove requested for item not in cart")
		}
		return false, false, nil
	}

	next := make([]types.LineItem, 0, len(s.items)-1)
	next = append(next, s.items[:index]...)
	next = append(next, s.items[index+1:]...)
	if err := s.mirror.Save(ctx, s.deviceID, types.CartSnapshot(next)); err != nil {
		s.mu.Unlock()
		return false, false, err
	}
	s.items = next
	s.bumpVersionLocked()
	becameEmpty = len(s.items) == 0
	change := s.changeLocked(becameEmpty)
	s.mu.Unlock()

	s.notify(change)
	return true, becameEmpty, nil
}

// Clear empties the cart and the mirror. Used for explicit clears and for
// remote-triggered session termination.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	if err := s.mirror.Clear(ctx, s.deviceID); err != nil {
		s.mu.Unlock()
		return err
	}
	becameEmpty := len(s.items) > 0
	s.items = nil
	s.bumpVersionLocked()
	change := s.changeLocked(becameEmpty)
	s.mu.Unlock()

	s.notify(change)
	return nil
}

// AttachLastImageURL sets the image URL on the most recently added item,
// mirroring the updated snapshot. A no-op on an empty cart.
func (s *Store) AttachLastImageURL(ctx context.Context, url string) (bool, error) {
	s.mu.Lock()
	if len(s.items) == 0 {
		s.mu.Unlock()
		return false, nil
	}

	next := make([]types.LineItem, len(s.items))
	copy(next, s.items)
	next[len(next)-1].ImageURL = url
	if err := s.mirror.Save(ctx, s.deviceID, types.CartSnapshot(next)); err != nil {
		s.mu.Unlock()
		return false, err
	}
	s.items = next
	s.bumpVersionLocked()
	change := s.changeLocked(false)
	s.mu.Unlock()

	s.notify(change)
	return true, nil
}

// Snapshot returns a deep copy of the current cart with its version. The
// version pairs with the snapshot so a remote push can be ordered against
// later pushes.
func (s *Store) Snapshot() (types.CartSnapshot, int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return types.CartSnapshot(s.items).Clone(), s.version
}

// Total sums the member prices, recomputed on every call.
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return types.CartSnapshot(s.items).Total()
}

// Count returns the number of items, driving the counter badge.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Subscribe registers a render notification callback and returns its
// unsubscribe function. Callbacks run synchronously after each mutation,
// outside the store lock.
func (s *Store) Subscribe(fn func(Change)) func() {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

func (s *Store) changeLocked(becameEmpty bool) Change {
	return Change{
		Snapshot:    types.CartSnapshot(s.items).Clone(),
		Count:       len(s.items),
		Total:       types.CartSnapshot(s.items).Total(),
		BecameEmpty: becameEmpty,
	}
}

func (s *Store) notify(change Change) {
	s.mu.Lock()
	fns := make([]func(Change), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(change)
	}
}
