package queue

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryQueueOrderAndCapacity(t *testing.T) {
	q := NewInMemoryQueue(2)

	require.NoError(t, q.Enqueue("a"))
	require.NoError(t, q.Enqueue("b"))

	err := q.Enqueue("c")
	var full *ErrQueueFull
	require.ErrorAs(t, err, &full)
	assert.Equal(t, 2, full.Capacity)
	assert.Equal(t, 2, q.Size())

	item, err := q.Dequeue()
	require.NoError(t, err)
	assert.Equal(t, "a", item)

	items, err := q.ReadAllMessages()
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"b"}, items)

	_, err = q.Dequeue()
	var empty *ErrQueueEmpty
	assert.ErrorAs(t, err, &empty)
}

func TestInMemoryQueueClear(t *testing.T) {
	q := NewInMemoryQueue(10)
	for i := 0; i < 5; i++ {
		require.NoError(t, q.Enqueue(i))
	}

	require.NoError(t, q.ClearQueue())
	assert.Equal(t, 0, q.Size())

	items, err := q.ReadAllMessages()
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestInMemoryQueueConcurrentProducers(t *testing.T) {
	q := NewInMemoryQueue(1000)
	var wg sync.WaitGroup
	for p := 0; p < 10; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				if err := q.Enqueue(i); err != nil {
					t.Errorf("enqueue: %v", err)
				}
			}
		}()
	}
	wg.Wait()

	items, err := q.ReadAllMessages()
	require.NoError(t, err)
	assert.Len(t, items, 1000)
}
