package systems

import (
	"container/heap"
	"sort"

	"lizard-state/internal/geometry"
	"lizard-state/pkg/logger"

	"github.com/sirupsen/logrus"
)

// DefaultPathSlack - насколько оценка f может превысить эвристику старт-цель,
// прежде чем поиск сдаётся. Это настройка, а не контракт.
const DefaultPathSlack = 8

// BlockedFunc сообщает, непроходима ли клетка.
type BlockedFunc func(geometry.Position) bool

// HeuristicFunc - допустимая и согласованная оценка расстояния.
type HeuristicFunc func(a, b geometry.Position) int

// PathfindingContext - возобновляемый A* с кэшем расстояний.
//
// Расстояние записывается только когда узел извлечён из очереди (финализирован),
// поэтому каждое значение в кэше точное и не меняется при последующих поисках.
// Кэш симметричен: known[a][b] == known[b][a].
//
// Не потокобезопасен: вызывающий код сериализует доступ.
type PathfindingContext struct {
	blocked   BlockedFunc
	heuristic HeuristicFunc
	slack     int

	known       map[geometry.Position]map[geometry.Position]int
	stepBetween map[positionPair]geometry.Position
}

// positionPair - неупорядоченная пара, нормализованная по (y, x).
type positionPair struct {
	a, b geometry.Position
}

func pairOf(a, b geometry.Position) positionPair {
	if b.Y < a.Y || (b.Y == a.Y && b.X < a.X) {
		a, b = b, a
	}
	return positionPair{a: a, b: b}
}

// NewPathfindingContext создаёт пустой контекст. Nil-эвристика означает
// расстояние Чебышёва.
func NewPathfindingContext(blocked BlockedFunc, heuristic HeuristicFunc) *PathfindingContext {
	if heuristic == nil {
		heuristic = geometry.Distance
	}
	return &PathfindingContext{
		blocked:     blocked,
		heuristic:   heuristic,
		slack:       DefaultPathSlack,
		known:       make(map[geometry.Position]map[geometry.Position]int),
		stepBetween: make(map[positionPair]geometry.Position),
	}
}

// SetSlack меняет запас поиска. Отрицательные значения считаются нулём.
func (c *PathfindingContext) SetSlack(slack int) {
	c.slack = max(slack, 0)
}

// KnownDistance возвращает закэшированное расстояние.
func (c *PathfindingContext) KnownDistance(start, dest geometry.Position) (int, bool) {
	if start == dest {
		return 0, true
	}
	d, ok := c.known[start][dest]
	return d, ok
}

// FindPath возвращает true, если dest достижима из start в пределах запаса.
// Поиск продолжается с уже известных расстояний от start.
func (c *PathfindingContext) FindPath(start, dest geometry.Position) bool {
	if start == dest {
		return true
	}
	if _, ok := c.KnownDistance(start, dest); ok {
		return true
	}
	if c.blocked(dest) {
		return false
	}

	bound := c.heuristic(start, dest) + c.slack

	// 1. Засеваем очередь стартом и всеми уже известными расстояниями от него.
	open := &searchQueue{}
	heap.Init(open)
	heap.Push(open, &searchNode{pos: start, g: 0, f: c.heuristic(start, dest), seeded: true})
	// Порядок обхода map случаен, а от порядка зависят записанные шаги.
	for _, pos := range sortedKeys(c.known[start]) {
		g := c.known[start][pos]
		heap.Push(open, &searchNode{pos: pos, g: g, f: g + c.heuristic(pos, dest), seeded: true})
	}

	for open.Len() > 0 {
		current := heap.Pop(open).(*searchNode)

		// 2. Лучшая оценка вышла за предел - сдаёмся.
		if current.f > bound {
			logger.Log.WithFields(logrus.Fields{
				"component": "pathfinding",
				"start":     start,
				"dest":      dest,
				"bound":     bound,
			}).Debug("Search exceeded slack, giving up.")
			return false
		}

		// 3. Финализация. Посеянные узлы уже записаны.
		if !current.seeded {
			if known, ok := c.KnownDistance(start, current.pos); ok && known <= current.g {
				continue
			}
			c.record(start, current.pos, current.g, current.via)
		}

		if current.pos == dest {
			return true
		}

		// 4. Раскрываем соседей.
		for _, next := range current.pos.Neighbors() {
			if c.blocked(next) {
				continue
			}
			g := current.g + 1
			if known, ok := c.KnownDistance(start, next); ok && known <= g {
				continue
			}
			heap.Push(open, &searchNode{
				pos: next,
				g:   g,
				f:   g + c.heuristic(next, dest),
				via: current.pos,
			})
		}
	}
	return false
}

// GetStep возвращает первую клетку на кратчайшем пути от start к dest.
// Требует, чтобы расстояние уже было в кэше (см. FindPath).
func (c *PathfindingContext) GetStep(start, dest geometry.Position) (geometry.Position, bool) {
	if start == dest {
		return dest, true
	}
	distance, ok := c.KnownDistance(start, dest)
	if !ok {
		return geometry.Position{}, false
	}

	// Каждый переход приближает к start, так что distance+1 итераций достаточно.
	current := dest
	for guard := 0; guard <= distance; guard++ {
		if geometry.Adjacent(start, current) {
			return current, true
		}
		hop, ok := c.stepBetween[pairOf(start, current)]
		if !ok {
			return geometry.Position{}, false
		}
		current = hop
	}
	return geometry.Position{}, false
}

// record записывает точное расстояние в обе стороны. Для пар дальше соседей
// запоминается промежуточная клетка (соседняя с dest на стороне start).
func (c *PathfindingContext) record(start, dest geometry.Position, distance int, via geometry.Position) {
	c.row(start)[dest] = distance
	c.row(dest)[start] = distance
	if distance >= 2 {
		c.stepBetween[pairOf(start, dest)] = via
	}
}

func (c *PathfindingContext) row(pos geometry.Position) map[geometry.Position]int {
	r, ok := c.known[pos]
	if !ok {
		r = make(map[geometry.Position]int)
		c.known[pos] = r
	}
	return r
}

func sortedKeys(row map[geometry.Position]int) []geometry.Position {
	keys := make([]geometry.Position, 0, len(row))
	for pos := range row {
		keys = append(keys, pos)
	}
	sort.Slice(keys, func(i, j int) bool { return lessPos(keys[i], keys[j]) })
	return keys
}

// lessPos - порядок по (y, x).
func lessPos(a, b geometry.Position) bool {
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	return a.X < b.X
}

type searchNode struct {
	pos    geometry.Position
	g, f   int
	via    geometry.Position
	seeded bool
	index  int
}

// searchQueue упорядочена по f по возрастанию, затем по g по убыванию,
// затем по клетке и по via в порядке (y, x). Порядок полный.
type searchQueue []*searchNode

func (pq searchQueue) Len() int { return len(pq) }

func (pq searchQueue) Less(i, j int) bool {
	a, b := pq[i], pq[j]
	switch {
	case a.f != b.f:
		return a.f < b.f
	case a.g != b.g:
		return a.g > b.g
	case a.pos != b.pos:
		return lessPos(a.pos, b.pos)
	case a.seeded != b.seeded:
		return a.seeded
	}
	return lessPos(a.via, b.via)
}

func (pq searchQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *searchQueue) Push(x any) {
	item := x.(*searchNode)
	item.index = len(*pq)
	*pq = append(*pq, item)
}

func (pq *searchQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*pq = old[:n-1]
	return item
}
