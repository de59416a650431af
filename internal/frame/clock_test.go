package frame

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClock_NewClock(t *testing.T) {
	c := NewClock()
	assert.Equal(t, 0, c.Current())
}

func TestClock_NewClockAt(t *testing.T) {
	c := NewClockAt(42)
	assert.Equal(t, 42, c.Current())

	assert.Equal(t, 0, NewClockAt(-3).Current(), "negative frames clamp to 0")
}

func TestClock_Local(t *testing.T) {
	c := NewClockAt(30)

	assert.Equal(t, 30, c.Local(0))
	assert.Equal(t, 0, c.Local(30))
	assert.Equal(t, -10, c.Local(40), "before the clip starts")
}

func TestClock_ConcurrentReaders(t *testing.T) {
	c := NewClock()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				assert.GreaterOrEqual(t, c.Current(), 0)
			}
		}()
	}
	for f := 0; f < 1000; f++ {
		c.Set(f)
	}
	wg.Wait()

	assert.Equal(t, 999, c.Current())
}
