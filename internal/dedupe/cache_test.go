package dedupe_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DeafMist/civic-radar/backend/internal/dedupe"
)

func TestSetSeenDuplicate(t *testing.T) {
	set := dedupe.NewSet(10)
	require.False(t, set.IsSeen("alpha"))
	require.True(t, set.Add("alpha"))
	require.True(t, set.IsSeen("alpha"))
	require.False(t, set.Add("alpha"))
	require.Equal(t, 1, set.Len())
}

func TestSetRejectsEmptyKey(t *testing.T) {
	set := dedupe.NewSet(0)
	require.False(t, set.Add(""))
	require.False(t, set.IsSeen(""))
	require.Zero(t, set.Len())
}

func TestSetKeepsInsertionOrder(t *testing.T) {
	set := dedupe.NewSet(3)
	set.Add("c")
	set.Add("a")
	set.Add("c")
	set.Add("b")
	require.Equal(t, []string{"c", "a", "b"}, set.Keys())
}

func TestSetConcurrentAdd(t *testing.T) {
	set := dedupe.NewSet(0)
	var wg sync.WaitGroup
	added := make(chan bool, 50)
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			added <- set.Add("shared")
		}()
	}
	wg.Wait()
	close(added)

	wins := 0
	for ok := range added {
		if ok {
			wins++
		}
	}
	require.Equal(t, 1, wins)
}

func TestUnique(t *testing.T) {
	type item struct{ id, label string }
	items := []item{{"1", "first"}, {"2", "second"}, {"1", "again"}, {"", "anonymous"}}

	got := dedupe.Unique(items, func(i item) string { return i.id })
	require.Equal(t, []item{{"1", "first"}, {"2", "second"}}, got)
}
