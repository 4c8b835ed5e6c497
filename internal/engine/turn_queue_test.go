package engine

import (
	"container/heap"
	"testing"

	"lizard-state/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTurnQueue(t *testing.T) {
	pq := make(TurnQueue, 0)
	heap.Init(&pq)

	item1 := &TurnItem{Value: 1, Round: 10}
	item2 := &TurnItem{Value: 2, Round: 5}
	item3 := &TurnItem{Value: 3, Round: 20}

	heap.Push(&pq, item1)
	heap.Push(&pq, item2)
	heap.Push(&pq, item3)
	require.Equal(t, 3, pq.Len())

	first := heap.Pop(&pq).(*TurnItem)
	assert.Equal(t, domain.EntityID(2), first.Value)

	// Current queue: 1(10), 3(20). Moving 1 to 30 puts 3 on top.
	pq.Update(item1, 30)

	second := heap.Pop(&pq).(*TurnItem)
	assert.Equal(t, domain.EntityID(3), second.Value)

	third := heap.Pop(&pq).(*TurnItem)
	assert.Equal(t, domain.EntityID(1), third.Value)
}

func TestTurnQueue_TieBreaksByID(t *testing.T) {
	pq := make(TurnQueue, 0)
	heap.Push(&pq, &TurnItem{Value: 4, Round: 1})
	heap.Push(&pq, &TurnItem{Value: 0, Round: 1})
	heap.Push(&pq, &TurnItem{Value: 2, Round: 1})

	var order []domain.EntityID
	for pq.Len() > 0 {
		order = append(order, heap.Pop(&pq).(*TurnItem).Value)
	}
	assert.Equal(t, []domain.EntityID{0, 2, 4}, order)
}
