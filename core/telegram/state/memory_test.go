package state

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type draft struct {
	step  string
	stack []string
}

func (d draft) Clone() draft {
	d.stack = append([]string(nil), d.stack...)
	return d
}

func TestMemoryManagerReturnsCopies(t *testing.T) {
	m := NewMemoryManager[draft]()

	_, ok := m.Load(1)
	assert.False(t, ok)

	in := draft{step: "mode", stack: []string{"idle"}}
	m.Store(1, in)
	in.stack[0] = "mutated"

	got, ok := m.Load(1)
	require.True(t, ok)
	assert.Equal(t, []string{"idle"}, got.stack)

	got.stack = append(got.stack, "profile")
	again, _ := m.Load(1)
	assert.Len(t, again.stack, 1)
}

func TestMemoryManagerClear(t *testing.T) {
	m := NewMemoryManager[draft]()
	m.Store(1, draft{step: "x"})
	m.Store(2, draft{step: "y"})
	require.True(t, m.Has(1))
	assert.Equal(t, 2, m.Len())

	m.Clear(1)
	assert.False(t, m.Has(1))
	assert.True(t, m.Has(2))
}

func TestMemoryManagerConcurrentSameUser(t *testing.T) {
	m := NewMemoryManager[draft]()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, _ := m.Load(7)
			s.stack = append(s.stack, "step")
			m.Store(7, s)
		}(i)
	}
	wg.Wait()

	got, ok := m.Load(7)
	require.True(t, ok)
	assert.NotEmpty(t, got.stack)
	assert.LessOrEqual(t, len(got.stack), 50)
}
