package systems

import (
	"sync"

	"lizard-state/internal/geometry"
	"lizard-state/pkg/logger"

	"github.com/sirupsen/logrus"
	"github.com/zyedidia/generic/mapset"
)

// Мультипликаторы для трансформации координат в 8 октантов
var multipliers = [4][8]int{
	{1, 0, 0, -1, -1, 0, 0, 1},
	{0, 1, -1, 0, 0, -1, 1, 0},
	{0, 1, 1, 0, 0, -1, -1, 0},
	{1, 0, 0, 1, -1, 0, 0, -1},
}

// VisibilityTrie - префиксное дерево лучей первого октанта (x >= y >= 0).
// Каждый путь от корня - растеризованный отрезок от наблюдателя до клетки
// в пределах радиуса. Обход останавливается на непрозрачной клетке,
// но сама клетка видна.
type VisibilityTrie struct {
	radius int
	root   *trieNode
}

type trieNode struct {
	offset   geometry.Offset
	children []*trieNode
}

var (
	triesMu sync.Mutex
	tries   = make(map[int]*VisibilityTrie)
)

// VisibilityTrieFor возвращает дерево для радиуса, строя его один раз на процесс.
func VisibilityTrieFor(radius int) *VisibilityTrie {
	triesMu.Lock()
	defer triesMu.Unlock()

	if trie, ok := tries[radius]; ok {
		return trie
	}
	trie := buildVisibilityTrie(radius)
	tries[radius] = trie

	logger.Log.WithFields(logrus.Fields{
		"component": "fov_system",
		"radius":    radius,
	}).Debug("Visibility trie built.")
	return trie
}

func buildVisibilityTrie(radius int) *VisibilityTrie {
	root := &trieNode{}
	for x := 1; x <= radius; x++ {
		for y := 0; y <= x; y++ {
			if x*x+y*y > radius*radius {
				continue
			}
			// Два варианта округления, чтобы симметричные препятствия
			// не давали зубчатых теней.
			root.insert(rasterize(x, y, 0))
			root.insert(rasterize(x, y, 1))
		}
	}
	return &VisibilityTrie{radius: radius, root: root}
}

// rasterize строит отрезок от (0,0) до (x,y) в первом октанте.
// bias 0 округляет половины вверх, bias 1 - вниз.
func rasterize(x, y, bias int) []geometry.Offset {
	path := make([]geometry.Offset, 0, x)
	for i := 1; i <= x; i++ {
		j := (2*y*i + x - bias) / (2 * x)
		path = append(path, geometry.Off(i, j))
	}
	return path
}

func (n *trieNode) insert(path []geometry.Offset) {
	node := n
	for _, offset := range path {
		var next *trieNode
		for _, child := range node.children {
			if child.offset == offset {
				next = child
				break
			}
		}
		if next == nil {
			next = &trieNode{offset: offset}
			node.children = append(node.children, next)
		}
		node = next
	}
}

func (t *VisibilityTrie) Radius() int { return t.radius }

// Visible возвращает множество клеток, видимых из origin.
func (t *VisibilityTrie) Visible(origin geometry.Position, opaque func(geometry.Position) bool) mapset.Set[geometry.Position] {
	visible := mapset.New[geometry.Position]()
	visible.Put(origin)

	for i := 0; i < 8; i++ {
		t.walk(t.root, origin, i, opaque, visible)
	}
	return visible
}

func (t *VisibilityTrie) walk(node *trieNode, origin geometry.Position, octant int, opaque func(geometry.Position) bool, visible mapset.Set[geometry.Position]) {
	xx, xy := multipliers[0][octant], multipliers[1][octant]
	yx, yy := multipliers[2][octant], multipliers[3][octant]

	for _, child := range node.children {
		dx, dy := child.offset.X, child.offset.Y
		pos := geometry.Pos(origin.X+dx*xx+dy*xy, origin.Y+dx*yx+dy*yy)
		visible.Put(pos)
		if !opaque(pos) {
			t.walk(child, origin, octant, opaque, visible)
		}
	}
}

// ComputeVisibleTiles - FOV наблюдателя с заданным радиусом.
func ComputeVisibleTiles(origin geometry.Position, radius int, opaque func(geometry.Position) bool) mapset.Set[geometry.Position] {
	fovLogger := logger.Log.WithFields(logrus.Fields{
		"component":    "fov_system",
		"observer_pos": origin,
	})

	if radius <= 0 {
		fovLogger.Debug("FOV calculation skipped for blind observer (radius <= 0).")
		visible := mapset.New[geometry.Position]()
		visible.Put(origin)
		return visible
	}

	visible := VisibilityTrieFor(radius).Visible(origin, opaque)
	fovLogger.WithField("visible_tiles", visible.Size()).Debug("FOV calculation complete.")
	return visible
}
