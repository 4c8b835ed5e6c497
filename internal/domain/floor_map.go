package domain

import (
	"encoding/json"
	"fmt"
	"sort"

	"lizard-state/internal/geometry"
	"lizard-state/internal/systems"
)

// Tile - класс клетки карты.
type Tile uint8

const (
	TileFloor Tile = iota
	TileWall
	TileStairs
)

func (t Tile) String() string {
	switch t {
	case TileFloor:
		return "floor"
	case TileWall:
		return "wall"
	case TileStairs:
		return "stairs"
	}
	return "unknown"
}

// Walkable - по клетке можно ходить.
func (t Tile) Walkable() bool { return t != TileWall }

// Opaque - клетка закрывает обзор.
func (t Tile) Opaque() bool { return t == TileWall }

// Symbol - ASCII-обозначение клетки в сценариях и у клиента.
func (t Tile) Symbol() string {
	switch t {
	case TileWall:
		return "#"
	case TileStairs:
		return ">"
	}
	return "."
}

// ParseTileSymbol - обратное к Symbol.
func ParseTileSymbol(r rune) (Tile, error) {
	switch r {
	case '.':
		return TileFloor, nil
	case '#':
		return TileWall, nil
	case '>':
		return TileStairs, nil
	}
	return TileFloor, fmt.Errorf("unknown tile symbol %q", r)
}

// FloorMap классифицирует клетки: либо по статической таблице с клеткой
// по умолчанию, либо функцией. Контекст поиска пути строится лениво
// и привязан к проходимости карты.
type FloorMap struct {
	tiles    map[geometry.Position]Tile
	fallback Tile
	classify func(geometry.Position) Tile

	pathSlack  int
	pathfinder *systems.PathfindingContext
}

// NewFloorMap строит карту по таблице. Всё вне таблицы - fallback.
func NewFloorMap(tiles map[geometry.Position]Tile, fallback Tile) *FloorMap {
	own := make(map[geometry.Position]Tile, len(tiles))
	for pos, t := range tiles {
		own[pos] = t
	}
	return &FloorMap{tiles: own, fallback: fallback, pathSlack: systems.DefaultPathSlack}
}

// FloorMapFunc строит карту по функции классификации.
func FloorMapFunc(classify func(geometry.Position) Tile) *FloorMap {
	return &FloorMap{classify: classify, pathSlack: systems.DefaultPathSlack}
}

// OpenFloorMap - бесконечный пол без стен.
func OpenFloorMap() *FloorMap {
	return NewFloorMap(nil, TileFloor)
}

// WithPathSlack задаёт запас A* для этой карты.
func (m *FloorMap) WithPathSlack(slack int) *FloorMap {
	m.pathSlack = slack
	if m.pathfinder != nil {
		m.pathfinder.SetSlack(slack)
	}
	return m
}

func (m *FloorMap) TileAt(pos geometry.Position) Tile {
	if m.classify != nil {
		return m.classify(pos)
	}
	if t, ok := m.tiles[pos]; ok {
		return t
	}
	return m.fallback
}

func (m *FloorMap) IsWalkable(pos geometry.Position) bool {
	return m.TileAt(pos).Walkable()
}

func (m *FloorMap) IsOpaque(pos geometry.Position) bool {
	return m.TileAt(pos).Opaque()
}

// Pathfinder возвращает контекст A* этой карты. Не потокобезопасен.
func (m *FloorMap) Pathfinder() *systems.PathfindingContext {
	if m.pathfinder == nil {
		m.pathfinder = systems.NewPathfindingContext(func(p geometry.Position) bool {
			return !m.IsWalkable(p)
		}, geometry.Distance)
		m.pathfinder.SetSlack(m.pathSlack)
	}
	return m.pathfinder
}

// Tiles - клетки статической таблицы, отсортированные по (y, x).
// Для карты-функции границ нет, результат пуст.
func (m *FloorMap) Tiles() []geometry.Position {
	out := make([]geometry.Position, 0, len(m.tiles))
	for pos := range m.tiles {
		out = append(out, pos)
	}
	sortPositions(out)
	return out
}

type floorMapTile struct {
	Pos  geometry.Position `json:"pos"`
	Tile Tile              `json:"tile"`
}

type floorMapJSON struct {
	Fallback Tile           `json:"fallback"`
	Tiles    []floorMapTile `json:"tiles"`
}

// MarshalJSON сериализует табличную карту. Карты на функции не сериализуются.
func (m *FloorMap) MarshalJSON() ([]byte, error) {
	if m.classify != nil {
		return nil, fmt.Errorf("function-backed floor map is not serializable")
	}
	out := floorMapJSON{Fallback: m.fallback, Tiles: make([]floorMapTile, 0, len(m.tiles))}
	for pos, t := range m.tiles {
		out.Tiles = append(out.Tiles, floorMapTile{Pos: pos, Tile: t})
	}
	sort.Slice(out.Tiles, func(i, j int) bool {
		a, b := out.Tiles[i].Pos, out.Tiles[j].Pos
		return a.Y < b.Y || (a.Y == b.Y && a.X < b.X)
	})
	return json.Marshal(out)
}

func (m *FloorMap) UnmarshalJSON(data []byte) error {
	var in floorMapJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	tiles := make(map[geometry.Position]Tile, len(in.Tiles))
	for _, t := range in.Tiles {
		tiles[t.Pos] = t.Tile
	}
	*m = *NewFloorMap(tiles, in.Fallback)
	return nil
}
