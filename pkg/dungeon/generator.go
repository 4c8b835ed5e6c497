package dungeon

import (
	"math/rand"

	"lizard-state/internal/domain"
	"lizard-state/internal/geometry"
)

// Константы генерации по умолчанию
const (
	MapWidth  = 40
	MapHeight = 25
	MaxRooms  = 8
	MinSize   = 4
	MaxSize   = 10
)

// Config - параметры генератора. Одинаковый Seed даёт одинаковую карту.
type Config struct {
	Seed     int64 `yaml:"seed"`
	Width    int   `yaml:"width"`
	Height   int   `yaml:"height"`
	MaxRooms int   `yaml:"rooms"`
	MinSize  int   `yaml:"min_size"`
	MaxSize  int   `yaml:"max_size"`
}

// withDefaults заполняет нулевые поля значениями по умолчанию.
func (c Config) withDefaults() Config {
	if c.Width <= 0 {
		c.Width = MapWidth
	}
	if c.Height <= 0 {
		c.Height = MapHeight
	}
	if c.MaxRooms <= 0 {
		c.MaxRooms = MaxRooms
	}
	if c.MinSize <= 0 {
		c.MinSize = MinSize
	}
	if c.MaxSize < c.MinSize {
		c.MaxSize = max(MaxSize, c.MinSize)
	}
	return c
}

// Rect - Вспомогательная структура для комнаты
type Rect struct {
	X, Y, W, H int
}

func (r Rect) Center() geometry.Position {
	return geometry.Pos(r.X+r.W/2, r.Y+r.H/2)
}

func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.X+other.W && r.X+r.W >= other.X &&
		r.Y <= other.Y+other.H && r.Y+r.H >= other.Y
}

// Layout - результат генерации.
type Layout struct {
	Map   *domain.FloorMap
	Rooms []Rect
	// Start - центр первой комнаты, Stairs - центр последней.
	Start  geometry.Position
	Stairs geometry.Position
	// Spawns - места для врагов, по одному на каждую комнату кроме первой.
	Spawns []geometry.Position
}

// Generate создает этаж из комнат, соединённых коридорами.
// Всё за пределами комнат и коридоров - стена.
func Generate(cfg Config) Layout {
	cfg = cfg.withDefaults()
	rng := rand.New(rand.NewSource(cfg.Seed))
	randRange := func(lo, hi int) int {
		if hi < lo {
			return lo
		}
		return rng.Intn(hi-lo+1) + lo
	}

	tiles := make(map[geometry.Position]domain.Tile)
	var rooms []Rect

	// 1. Генерируем комнаты
	for i := 0; i < cfg.MaxRooms; i++ {
		w := randRange(cfg.MinSize, cfg.MaxSize)
		h := randRange(cfg.MinSize, cfg.MaxSize)
		if w+2 > cfg.Width || h+2 > cfg.Height {
			continue
		}
		x := randRange(1, cfg.Width-w-1)
		y := randRange(1, cfg.Height-h-1)

		newRoom := Rect{X: x, Y: y, W: w, H: h}
		failed := false
		for _, other := range rooms {
			if newRoom.Intersects(other) {
				failed = true
				break
			}
		}
		if failed {
			continue
		}

		carveRoom(tiles, newRoom)
		if len(rooms) > 0 {
			// Соединяем с предыдущей комнатой
			prev := rooms[len(rooms)-1].Center()
			curr := newRoom.Center()
			if rng.Intn(2) == 0 {
				carveHCorridor(tiles, prev.X, curr.X, prev.Y)
				carveVCorridor(tiles, prev.Y, curr.Y, curr.X)
			} else {
				carveVCorridor(tiles, prev.Y, curr.Y, prev.X)
				carveHCorridor(tiles, prev.X, curr.X, curr.Y)
			}
		}
		rooms = append(rooms, newRoom)
	}

	layout := Layout{Rooms: rooms}
	if len(rooms) == 0 {
		// Ни одна комната не поместилась: одна клетка пола.
		tiles[layout.Start] = domain.TileFloor
		layout.Map = domain.NewFloorMap(tiles, domain.TileWall)
		return layout
	}

	// 2. Старт в первой комнате, лестница в последней
	layout.Start = rooms[0].Center()
	layout.Stairs = rooms[len(rooms)-1].Center()
	tiles[layout.Stairs] = domain.TileStairs

	// 3. Места для врагов: небольшой сдвиг от центра комнаты
	for _, room := range rooms[1:] {
		c := room.Center()
		layout.Spawns = append(layout.Spawns, c.Add(geometry.Off(randRange(-1, 1), randRange(-1, 1))))
	}

	layout.Map = domain.NewFloorMap(tiles, domain.TileWall)
	return layout
}

// --- Вспомогательные функции ---

func carveRoom(tiles map[geometry.Position]domain.Tile, room Rect) {
	for y := room.Y + 1; y < room.Y+room.H; y++ {
		for x := room.X + 1; x < room.X+room.W; x++ {
			tiles[geometry.Pos(x, y)] = domain.TileFloor
		}
	}
}

func carveHCorridor(tiles map[geometry.Position]domain.Tile, x1, x2, y int) {
	for x := min(x1, x2); x <= max(x1, x2); x++ {
		tiles[geometry.Pos(x, y)] = domain.TileFloor
	}
}

func carveVCorridor(tiles map[geometry.Position]domain.Tile, y1, y2, x int) {
	for y := min(y1, y2); y <= max(y1, y2); y++ {
		tiles[geometry.Pos(x, y)] = domain.TileFloor
	}
}
