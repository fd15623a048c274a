package frontier

import (
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLog() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log.WithField("test", true)
}

func TestSeed(t *testing.T) {
	f := New(testLog())

	assert.True(t, f.Seed("https://example.com/"))
	assert.False(t, f.Seed("https://example.com/"), "second seed of the same URL must be rejected")
	assert.Equal(t, 1, f.Remaining())
	assert.Equal(t, 1, f.Discovered())
}

func TestOffer_DedupAndOrder(t *testing.T) {
	f := New(testLog())

	accepted := f.Offer([]string{"https://example.com/a", "https://example.com/b", "https://example.com/a"}, 1)
	assert.Equal(t, 2, accepted)

	// Already queued URLs are rejected on a later offer too.
	accepted = f.Offer([]string{"https://example.com/b", "https://example.com/c"}, 2)
	assert.Equal(t, 1, accepted)

	// FIFO: first discovered, first taken.
	var order []string
	for {
		task, ok := f.Take()
		if !ok {
			break
		}
		order = append(order, task.URL)
	}
	assert.Equal(t, []string{"https://example.com/a", "https://example.com/b", "https://example.com/c"}, order)
}

func TestOffer_SkipsEmptyAndVisited(t *testing.T) {
	f := New(testLog())

	require.Equal(t, 1, f.Offer([]string{"https://example.com/a"}, 0))
	task, ok := f.Take()
	require.True(t, ok)
	require.Equal(t, "https://example.com/a", task.URL)

	// Visited URLs are never re-queued.
	assert.Equal(t, 0, f.Offer([]string{"https://example.com/a", ""}, 1))
	assert.Equal(t, 0, f.Remaining())
}

func TestTake_NeverReturnsSameURLTwice(t *testing.T) {
	f := New(testLog())
	for i := 0; i < 50; i++ {
		f.Offer([]string{fmt.Sprintf("https://example.com/p%d", i)}, 0)
	}

	seen := make(map[string]int)
	var mu sync.Mutex
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				task, ok := f.Take()
				if !ok {
					return
				}
				mu.Lock()
				seen[task.URL]++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, 50)
	for u, n := range seen {
		assert.Equal(t, 1, n, "URL %s taken more than once", u)
	}
}

func TestDiscovered_CountsAcceptedOnly(t *testing.T) {
	f := New(testLog())

	f.Offer([]string{"https://example.com/a", "https://example.com/b"}, 0)
	f.Offer([]string{"https://example.com/a"}, 1) // Duplicate, not counted
	f.Take()
	f.Offer([]string{"https://example.com/c"}, 1)

	assert.Equal(t, 3, f.Discovered(), "discovered counts unique accepted URLs, taken or not")
}

func TestOffer_DepthAssignedToTask(t *testing.T) {
	f := New(testLog())
	f.Offer([]string{"https://example.com/deep"}, 4)

	task, ok := f.Take()
	require.True(t, ok)
	assert.Equal(t, 4, task.Depth)
}
