package game

import (
	"sort"
	"sync"
)

// RoomStore holds the live rooms keyed by room ID. Rooms are created on first
// join and dropped when their last player leaves. Lock order is store, then room.
type RoomStore struct {
	mu     sync.Mutex
	rooms  map[string]*Room
	opts   Options
	onDeal DealHook
}

// NewRoomStore returns an empty store. onDeal, if non-nil, is attached to every
// room it creates.
func NewRoomStore(opts Options, onDeal DealHook) *RoomStore {
	return &RoomStore{
		rooms:  make(map[string]*Room),
		opts:   opts.withDefaults(),
		onDeal: onDeal,
	}
}

// GetOrCreate returns the room with this ID, creating an empty one if needed.
func (s *RoomStore) GetOrCreate(id string) *Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.rooms[id]; ok {
		return r
	}
	r := NewRoom(id, s.opts)
	r.onDeal = s.onDeal
	s.rooms[id] = r
	s.opts.Logger.WithField("room", id).Info("room created")
	return r
}

// Get returns the room if it exists.
func (s *RoomStore) Get(id string) (*Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[id]
	return r, ok
}

// RemoveIfEmpty drops the room when nobody is seated. The room is marked closed
// so a join racing with the removal fails with ErrRoomClosed and retries.
func (s *RoomStore) RemoveIfEmpty(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[id]
	if !ok {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.players) > 0 {
		return false
	}
	r.close()
	delete(s.rooms, id)
	s.opts.Logger.WithField("room", id).Info("room removed")
	return true
}

// Remove drops the room regardless of who is seated and cancels its pending deal.
func (s *RoomStore) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[id]
	if !ok {
		return
	}
	r.mu.Lock()
	r.close()
	r.mu.Unlock()
	delete(s.rooms, id)
}

// Count returns the number of live rooms.
func (s *RoomStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rooms)
}

// List returns a summary of every room ordered by room ID.
func (s *RoomStore) List() []Summary {
	s.mu.Lock()
	rooms := make([]*Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		rooms = append(rooms, r)
	}
	s.mu.Unlock()

	out := make([]Summary, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, r.Summary())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RoomID < out[j].RoomID })
	return out
}

// Close stops every room's pending deal. Used on shutdown.
func (s *RoomStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, r := range s.rooms {
		r.mu.Lock()
		r.close()
		r.mu.Unlock()
		delete(s.rooms, id)
	}
}
