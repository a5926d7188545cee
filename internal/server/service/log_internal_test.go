package service

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLockTableEviction(t *testing.T) {
	table := &lockTable{locks: make(map[string]*lockEntry)}

	unlock := table.lock("a")
	assert.Len(t, table.locks, 1)
	unlock()
	assert.Empty(t, table.locks)

	// Contended entries survive until the last holder releases.
	var wg sync.WaitGroup
	counter := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			unlock := table.lock("a")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, 16, counter)
	assert.Empty(t, table.locks)
}
