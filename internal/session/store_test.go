package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/brandscope/internal/model"
)

func TestGuard_BeginEnd(t *testing.T) {
	g := NewGuard()

	assert.True(t, g.Begin("s1", model.CategoryWebsite))
	assert.True(t, g.Running("s1", model.CategoryWebsite))

	// Second begin for the same session+category is refused; no queue.
	assert.False(t, g.Begin("s1", model.CategoryWebsite))

	g.End("s1", model.CategoryWebsite)
	assert.False(t, g.Running("s1", model.CategoryWebsite))
	assert.True(t, g.Begin("s1", model.CategoryWebsite))
}

func TestGuard_IndependentKeys(t *testing.T) {
	g := NewGuard()

	assert.True(t, g.Begin("s1", model.CategoryWebsite))
	assert.True(t, g.Begin("s1", model.CategorySocial))
	assert.True(t, g.Begin("s2", model.CategoryWebsite))

	assert.False(t, g.Begin("s1", model.CategoryWebsite))
	assert.False(t, g.Begin("s2", model.CategoryWebsite))
}

func TestGuard_ConcurrentBeginAdmitsOne(t *testing.T) {
	g := NewGuard()

	const n = 32
	var wg sync.WaitGroup
	admitted := make(chan struct{}, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if g.Begin("s1", model.CategoryWebsite) {
				admitted <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(admitted)

	count := 0
	for range admitted {
		count++
	}
	assert.Equal(t, 1, count)
}
