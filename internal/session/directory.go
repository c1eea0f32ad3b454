// Package session maps participants to their live transport handle and to the
// room they are seated in.
package session

import "sync"

// Handle is an outbound channel to one connected client.
type Handle interface {
	// ID identifies the connection, not the participant.
	ID() string
	// Send queues msg for delivery and reports whether it was accepted.
	// Implementations must not block.
	Send(msg any) bool
}

// Directory is safe for concurrent use.
type Directory struct {
	mu      sync.RWMutex
	handles map[string]Handle
	rooms   map[string]string
}

func NewDirectory() *Directory {
	return &Directory{
		handles: make(map[string]Handle),
		rooms:   make(map[string]string),
	}
}

// Register binds a participant to a handle, replacing any previous one.
// The replaced handle, if any, is returned.
func (d *Directory) Register(participantID string, h Handle) Handle {
	d.mu.Lock()
	defer d.mu.Unlock()
	prev := d.handles[participantID]
	d.handles[participantID] = h
	return prev
}

// Lookup returns the participant's current handle.
func (d *Directory) Lookup(participantID string) (Handle, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	h, ok := d.handles[participantID]
	return h, ok
}

// Unregister drops the participant's handle and room binding.
func (d *Directory) Unregister(participantID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.handles, participantID)
	delete(d.rooms, participantID)
}

// Release unregisters the participant only if h is still their current
// handle, so a stale connection closing cannot evict a newer one.
func (d *Directory) Release(participantID string, h Handle) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	cur, ok := d.handles[participantID]
	if !ok || cur.ID() != h.ID() {
		return false
	}
	delete(d.handles, participantID)
	delete(d.rooms, participantID)
	return true
}

// Reserve binds the participant to roomID unless they are already bound to a
// room, in which case it returns that room and false. The check and the bind
// happen under one lock, so two concurrent joins cannot both claim a seat.
func (d *Directory) Reserve(participantID, roomID string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if cur, ok := d.rooms[participantID]; ok {
		return cur, false
	}
	d.rooms[participantID] = roomID
	return roomID, true
}

// RoomOf returns the participant's room.
func (d *Directory) RoomOf(participantID string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	id, ok := d.rooms[participantID]
	return id, ok
}

// UnbindRoom drops a reservation whose join did not go through.
func (d *Directory) UnbindRoom(participantID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.rooms, participantID)
}

// Len returns the number of registered handles.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.handles)
}
