package client

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecord(id string) Record {
	return Record{
		ID:        id,
		Type:      "room_status_update",
		Action:    "updated",
		Severity:  "info",
		Channel:   "admin",
		Timestamp: time.Now(),
	}
}

func TestStoreInsertIdempotent(t *testing.T) {
	store := NewStore(10)

	require.True(t, store.Insert(testRecord("n1")))
	require.True(t, store.Insert(testRecord("n2")))
	require.False(t, store.Insert(testRecord("n1")), "duplicate id must be rejected")

	all := store.Query(FilterAll)
	require.Len(t, all, 2)
	// n1 keeps its original position at the back
	assert.Equal(t, "n2", all[0].ID)
	assert.Equal(t, "n1", all[1].ID)
}

func TestStoreBoundedEviction(t *testing.T) {
	const bound = 5
	store := NewStore(bound)

	for i := 0; i < bound+3; i++ {
		require.True(t, store.Insert(testRecord(fmt.Sprintf("n%d", i))))
	}

	all := store.Query(FilterAll)
	require.Len(t, all, bound)
	// newest first; the 3 oldest (n0..n2) are gone
	assert.Equal(t, "n7", all[0].ID)
	assert.Equal(t, "n3", all[bound-1].ID)
	assert.Equal(t, bound, store.UnreadCount())

	// evicted ids can be inserted again
	assert.True(t, store.Insert(testRecord("n0")))
}

func TestStoreUnreadInvariant(t *testing.T) {
	store := NewStore(10)

	check := func() {
		assert.Equal(t, len(store.Query(FilterUnread)), store.UnreadCount())
	}

	store.Insert(testRecord("n1"))
	check()
	store.Insert(testRecord("n2"))
	check()
	store.MarkRead("n1")
	check()
	store.Insert(testRecord("n3"))
	check()
	store.MarkAllRead()
	check()
	store.Insert(testRecord("n4"))
	check()
	store.Clear()
	check()
	assert.Equal(t, 0, store.UnreadCount())
}

func TestStoreFilterPartition(t *testing.T) {
	store := NewStore(10)
	for i := 0; i < 6; i++ {
		store.Insert(testRecord(fmt.Sprintf("n%d", i)))
	}
	store.MarkRead("n1")
	store.MarkRead("n4")

	all := store.Query(FilterAll)
	unread := store.Query(FilterUnread)
	read := store.Query(FilterRead)

	require.Len(t, all, 6)
	assert.Len(t, unread, 4)
	assert.Len(t, read, 2)

	seen := make(map[string]bool)
	for _, rec := range append(unread, read...) {
		assert.False(t, seen[rec.ID], "record %s in both views", rec.ID)
		seen[rec.ID] = true
	}
	assert.Len(t, seen, len(all))
}

func TestStoreMarkReadIdempotent(t *testing.T) {
	store := NewStore(10)
	store.Insert(testRecord("n1"))

	require.True(t, store.MarkRead("n1"))
	assert.Equal(t, 0, store.UnreadCount())

	// second call is a no-op, unread count never goes negative
	assert.False(t, store.MarkRead("n1"))
	assert.Equal(t, 0, store.UnreadCount())

	// unknown id is a no-op too
	assert.False(t, store.MarkRead("missing"))
}

func TestStoreMarkAllReadMonotonic(t *testing.T) {
	store := NewStore(10)
	store.Insert(testRecord("n1"))
	store.Insert(testRecord("n2"))

	assert.Equal(t, 2, store.MarkAllRead())
	assert.Equal(t, 0, store.UnreadCount())

	assert.False(t, store.MarkRead("n1"))
	assert.Equal(t, 0, store.UnreadCount())

	assert.Equal(t, 0, store.MarkAllRead())
}

func TestStoreClear(t *testing.T) {
	store := NewStore(10)
	store.Insert(testRecord("n1"))
	store.Insert(testRecord("n2"))

	store.Clear()
	assert.Equal(t, 0, store.Len())
	assert.Equal(t, 0, store.UnreadCount())
	assert.Empty(t, store.Query(FilterAll))
}

func TestStoreQueryReturnsCopies(t *testing.T) {
	store := NewStore(10)
	store.Insert(testRecord("n1"))

	view := store.Query(FilterAll)
	view[0].Read = true

	assert.Equal(t, 1, store.UnreadCount(), "mutating a query result must not touch the store")
}
