package engine

import (
	"container/heap"

	"lizard-state/internal/domain"
)

// TurnItem обертка для элемента очереди приоритетов
type TurnItem struct {
	Value domain.EntityID
	Round uint32 // Приоритет. Чем меньше, тем раньше ход.
	Index int    // Индекс в куче (нужен для update)
}

// TurnQueue реализует heap.Interface. При равных раундах раньше ходит меньший id.
type TurnQueue []*TurnItem

func (pq TurnQueue) Len() int { return len(pq) }

func (pq TurnQueue) Less(i, j int) bool {
	if pq[i].Round != pq[j].Round {
		return pq[i].Round < pq[j].Round
	}
	return pq[i].Value < pq[j].Value
}

func (pq TurnQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].Index = i
	pq[j].Index = j
}

func (pq *TurnQueue) Push(x any) {
	n := len(*pq)
	item := x.(*TurnItem)
	item.Index = n
	*pq = append(*pq, item)
}

func (pq *TurnQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil  // избегаем утечки памяти
	item.Index = -1 // для безопасности
	*pq = old[0 : n-1]
	return item
}

// Update изменяет приоритет элемента в очереди
func (pq *TurnQueue) Update(item *TurnItem, round uint32) {
	item.Round = round
	heap.Fix(pq, item.Index)
}

// NewTurnQueue строит очередь из всех сущностей, которым положен ход.
func NewTurnQueue(f *domain.Floor) *TurnQueue {
	pq := make(TurnQueue, 0, f.EntityCount())
	for _, e := range f.Entities() {
		if round, ok := e.NextRound(); ok {
			pq = append(pq, &TurnItem{Value: e.ID, Round: round, Index: len(pq)})
		}
	}
	heap.Init(&pq)
	return &pq
}
