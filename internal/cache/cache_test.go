package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newTestStore() *Store {
	return NewStore(0, zap.NewNop())
}

func TestStore_GetSet(t *testing.T) {
	s := newTestStore()

	_, ok := s.Get("deals:list")
	assert.False(t, ok)

	s.Set("deals:list", []string{"a", "b"}, TagDeals)

	v, ok := s.Get("deals:list")
	assert.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, v)
}

func TestStore_InvalidateTags_RemovesTaggedEntries(t *testing.T) {
	s := newTestStore()
	s.Set("deals:list", 1, TagDeals, TagDealsKanban)
	s.Set("deals:board", 2, TagDealsKanban)
	s.Set("customers:list", 3, TagCustomers)

	s.InvalidateTags(TagDealsKanban)

	_, ok := s.Get("deals:list")
	assert.False(t, ok)
	_, ok = s.Get("deals:board")
	assert.False(t, ok)
	_, ok = s.Get("customers:list")
	assert.True(t, ok, "entries with unrelated tags survive")
}

func TestStore_InvalidateTags_Idempotent(t *testing.T) {
	s := newTestStore()
	s.Set("deals:list", 1, TagDeals)

	s.InvalidateTags(TagDeals)
	s.InvalidateTags(TagDeals)
	s.InvalidateTags("never-used")

	assert.Equal(t, 0, s.Len())
}

func TestStore_InvalidateTags_OrderIndependent(t *testing.T) {
	seed := func() *Store {
		s := newTestStore()
		s.Set("a", 1, TagDeals)
		s.Set("b", 2, TagTransactions)
		s.Set("c", 3, TagDeals, TagTransactions)
		return s
	}

	s1 := seed()
	s1.InvalidateTags(TagDeals)
	s1.InvalidateTags(TagTransactions)

	s2 := seed()
	s2.InvalidateTags(TagTransactions)
	s2.InvalidateTags(TagDeals)

	assert.Equal(t, s1.Len(), s2.Len())
	assert.Equal(t, 0, s1.Len())
}

func TestStore_SetOverwriteRetags(t *testing.T) {
	s := newTestStore()
	s.Set("k", 1, TagDeals)
	s.Set("k", 2, TagQuotes)

	s.InvalidateTags(TagDeals)
	v, ok := s.Get("k")
	assert.True(t, ok, "old tag no longer attached after overwrite")
	assert.Equal(t, 2, v)

	s.InvalidateTags(TagQuotes)
	_, ok = s.Get("k")
	assert.False(t, ok)
}

func TestStore_TTLExpiry(t *testing.T) {
	s := NewStore(10*time.Millisecond, zap.NewNop())
	s.Set("k", 1, TagDeals)

	time.Sleep(25 * time.Millisecond)

	_, ok := s.Get("k")
	assert.False(t, ok)
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := newTestStore()
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			s.Set("k", 1, TagDeals)
		}()
		go func() {
			defer wg.Done()
			s.Get("k")
		}()
		go func() {
			defer wg.Done()
			s.InvalidateTags(TagDeals)
		}()
	}
	wg.Wait()
}

func TestTagsForTable(t *testing.T) {
	assert.ElementsMatch(t, []string{TagDeals, TagDealsKanban, TagSalesAnalytics}, TagsForTable("deals"))
	assert.ElementsMatch(t, []string{TagTransactions, TagFinancialSummary}, TagsForTable("transactions"))
	assert.Empty(t, TagsForTable("audit_log"))
}
