package session

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubHandle struct{ id string }

func (s stubHandle) ID() string    { return s.id }
func (s stubHandle) Send(any) bool { return true }

func TestRegisterIsLastWriteWins(t *testing.T) {
	d := NewDirectory()
	first := stubHandle{id: "c1"}
	second := stubHandle{id: "c2"}

	assert.Nil(t, d.Register("alice", first))
	prev := d.Register("alice", second)
	require.NotNil(t, prev)
	assert.Equal(t, "c1", prev.ID())

	h, ok := d.Lookup("alice")
	require.True(t, ok)
	assert.Equal(t, "c2", h.ID())
	assert.Equal(t, 1, d.Len())
}

func TestReleaseIgnoresStaleHandle(t *testing.T) {
	d := NewDirectory()
	old := stubHandle{id: "old"}
	cur := stubHandle{id: "new"}
	d.Register("bob", old)
	_, ok := d.Reserve("bob", "r1")
	require.True(t, ok)
	d.Register("bob", cur)

	assert.False(t, d.Release("bob", old))
	_, ok = d.Lookup("bob")
	assert.True(t, ok)
	room, ok := d.RoomOf("bob")
	assert.True(t, ok)
	assert.Equal(t, "r1", room)

	assert.True(t, d.Release("bob", cur))
	_, ok = d.Lookup("bob")
	assert.False(t, ok)
	_, ok = d.RoomOf("bob")
	assert.False(t, ok)
}

func TestRoomIndex(t *testing.T) {
	d := NewDirectory()
	_, ok := d.RoomOf("carol")
	assert.False(t, ok)

	_, ok = d.Reserve("carol", "r2")
	require.True(t, ok)
	room, ok := d.RoomOf("carol")
	require.True(t, ok)
	assert.Equal(t, "r2", room)

	cur, ok := d.Reserve("carol", "r9")
	assert.False(t, ok)
	assert.Equal(t, "r2", cur)

	d.UnbindRoom("carol")
	_, ok = d.RoomOf("carol")
	assert.False(t, ok)

	d.Register("dave", stubHandle{id: "c"})
	_, ok = d.Reserve("dave", "r3")
	require.True(t, ok)
	d.Unregister("dave")
	_, ok = d.Lookup("dave")
	assert.False(t, ok)
	_, ok = d.RoomOf("dave")
	assert.False(t, ok)
}

func TestConcurrentReserveHasOneWinner(t *testing.T) {
	d := NewDirectory()
	const n = 16

	var wg sync.WaitGroup
	var won atomic.Int32
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			if _, ok := d.Reserve("erin", fmt.Sprintf("r%d", i)); ok {
				won.Add(1)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), won.Load())
}
