package realtime

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistry_RegisterAndLookup(t *testing.T) {
	r := NewRegistry()

	r.Register(1, "conn-a")

	connID, ok := r.Lookup(1)
	assert.True(t, ok)
	assert.Equal(t, "conn-a", connID)

	_, ok = r.Lookup(2)
	assert.False(t, ok)
}

func TestRegistry_RegisterIsIdempotent(t *testing.T) {
	r := NewRegistry()

	r.Register(1, "conn-a")
	r.Register(1, "conn-a")

	connID, ok := r.Lookup(1)
	assert.True(t, ok)
	assert.Equal(t, "conn-a", connID)

	userID, ok := r.UnregisterConnection("conn-a")
	assert.True(t, ok)
	assert.Equal(t, int64(1), userID)
	_, ok = r.Lookup(1)
	assert.False(t, ok)
}

func TestRegistry_UnregisterConnection(t *testing.T) {
	r := NewRegistry()
	r.Register(1, "conn-a")

	userID, ok := r.UnregisterConnection("conn-a")
	assert.True(t, ok)
	assert.Equal(t, int64(1), userID)

	// A second removal for the same connection finds nothing.
	_, ok = r.UnregisterConnection("conn-a")
	assert.False(t, ok)

	_, ok = r.Lookup(1)
	assert.False(t, ok)
}

func TestRegistry_ReplacementSupersedesOldConnection(t *testing.T) {
	r := NewRegistry()
	r.Register(1, "conn-old")
	r.Register(1, "conn-new")

	connID, ok := r.Lookup(1)
	assert.True(t, ok)
	assert.Equal(t, "conn-new", connID)

	// The superseded connection's natural disconnect must not remove the
	// new entry.
	_, ok = r.UnregisterConnection("conn-old")
	assert.False(t, ok)

	connID, ok = r.Lookup(1)
	assert.True(t, ok)
	assert.Equal(t, "conn-new", connID)
}

func TestRegistry_OnlineUsers(t *testing.T) {
	r := NewRegistry()
	r.Register(1, "conn-a")
	r.Register(2, "conn-b")

	users := r.OnlineUsers()
	assert.Len(t, users, 2)
	assert.ElementsMatch(t, []int64{1, 2}, users)

	r.UnregisterConnection("conn-a")
	assert.ElementsMatch(t, []int64{2}, r.OnlineUsers())
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := NewRegistry()

	const goroutines = 8
	const operations = 100

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < operations; j++ {
				userID := int64(n*operations + j)
				connID := fmt.Sprintf("conn-%d-%d", n, j)
				r.Register(userID, connID)
				r.Lookup(userID)
				r.UnregisterConnection(connID)
			}
		}(i)
	}
	wg.Wait()

	assert.Empty(t, r.OnlineUsers())
}
