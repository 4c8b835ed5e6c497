// Package scenario загружает начальный этаж из YAML.
//
// Пример:
//
//	vision_radius: 6
//	downing: true
//	map: |
//	  #######
//	  #..>..#
//	  #######
//	entities:
//	  - template: hero
//	    pos: {x: 1, y: 1}
//	  - template: lizard
//	    pos: {x: 5, y: 1}
//	    round: 2
//
// Вместо map можно задать generate (см. dungeon.Config); тогда сущности
// без pos ставятся автоматически: свои у старта, враги по комнатам.
package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"lizard-state/internal/domain"
	"lizard-state/internal/geometry"
	"lizard-state/pkg/dungeon"
	"lizard-state/pkg/logger"

	// Регистрация действий и стратегий по именам.
	_ "lizard-state/internal/engine/handlers/actions"
	_ "lizard-state/internal/engine/strategy"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

var ErrInvalidScenario = errors.New("invalid scenario")

// Scenario - документ сценария.
type Scenario struct {
	Name         string `yaml:"name"`
	VisionRadius int    `yaml:"vision_radius"`
	Downing      bool   `yaml:"downing"`
	PathSlack    int    `yaml:"path_slack"`

	// Map - ASCII-карта: '#' стена, '.' пол, '>' лестница, пробел - стена.
	// Левый верхний символ - клетка Origin.
	Map    string            `yaml:"map"`
	Origin geometry.Position `yaml:"origin"`
	// Generate - процедурная карта вместо Map.
	Generate *dungeon.Config `yaml:"generate"`

	Entities []EntitySpec `yaml:"entities"`
}

// EntitySpec - описание одной сущности. Незаданные поля берутся из Template.
type EntitySpec struct {
	Template string             `yaml:"template"`
	Payload  string             `yaml:"payload"`
	Pos      *geometry.Position `yaml:"pos"`
	Round    uint32             `yaml:"round"`

	Health    *int `yaml:"health"`
	Energy    *int `yaml:"energy"`
	MaxEnergy *int `yaml:"max_energy"`

	Moveset  []string `yaml:"moveset"`
	Strategy string   `yaml:"strategy"`

	PlayerControlled *bool `yaml:"player_controlled"`
	PlayerFriendly   *bool `yaml:"player_friendly"`
}

// Load читает сценарий из файла. Возвращает и исходный текст: он нужен
// для записи партии.
func Load(path string) (*Scenario, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open scenario %s: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return s, data, nil
}

// Parse разбирает YAML. Неизвестные поля - ошибка.
func Parse(data []byte) (*Scenario, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var s Scenario
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScenario, err)
	}
	if s.Map != "" && s.Generate != nil {
		return nil, fmt.Errorf("%w: map and generate are mutually exclusive", ErrInvalidScenario)
	}
	return &s, nil
}

// Build строит начальный этаж. Возвращаемые события - первичный обзор.
func (s *Scenario) Build() (*domain.Floor, []domain.Event, error) {
	buildLogger := logger.Log.WithFields(logrus.Fields{
		"component": "scenario",
		"scenario":  s.Name,
	})

	// 1. Карта
	var (
		floorMap *domain.FloorMap
		layout   *dungeon.Layout
	)
	switch {
	case s.Generate != nil:
		l := dungeon.Generate(*s.Generate)
		layout = &l
		floorMap = l.Map
	case strings.TrimSpace(s.Map) != "":
		m, err := ParseMap(s.Map, s.Origin)
		if err != nil {
			return nil, nil, err
		}
		floorMap = m
	default:
		floorMap = domain.OpenFloorMap()
	}
	if s.PathSlack > 0 {
		floorMap.WithPathSlack(s.PathSlack)
	}

	floor := domain.NewFloor().SetMap(floorMap)
	if s.Downing {
		floor = floor.WithDowning()
	}

	// 2. Сущности
	places := newPlacer(layout)
	for i, spec := range s.Entities {
		e, err := spec.entity()
		if err != nil {
			return nil, nil, fmt.Errorf("%w: entity %d: %v", ErrInvalidScenario, i, err)
		}
		if spec.Pos != nil {
			e.Pos = *spec.Pos
		} else {
			pos, ok := places.next(floor, e.IsPlayerFriendly)
			if !ok {
				return nil, nil, fmt.Errorf("%w: entity %d has no position", ErrInvalidScenario, i)
			}
			e.Pos = pos
		}
		if !floorMap.IsWalkable(e.Pos) {
			return nil, nil, fmt.Errorf("%w: entity %d stands in a wall at %v", ErrInvalidScenario, i, e.Pos)
		}
		if !floor.IsTileFree(e.Pos) {
			return nil, nil, fmt.Errorf("%w: entity %d shares tile %v", ErrInvalidScenario, i, e.Pos)
		}

		u, id := floor.AddEntity(e)
		floor = u.Floor
		buildLogger.WithFields(logrus.Fields{
			"entity_id": id,
			"payload":   e.Payload,
			"pos":       e.Pos.String(),
		}).Debug("Entity placed")
	}

	// 3. Обзор
	var events []domain.Event
	if s.VisionRadius > 0 {
		floor, events = floor.WithVision(s.VisionRadius).Unpack()
	}
	return floor, events, nil
}

// ParseMap строит карту из ASCII. Всё вне нарисованного - стена.
func ParseMap(text string, origin geometry.Position) (*domain.FloorMap, error) {
	tiles := make(map[geometry.Position]domain.Tile)
	for y, line := range strings.Split(strings.Trim(text, "\n"), "\n") {
		for x, r := range []rune(strings.TrimRight(line, "\r")) {
			if r == ' ' {
				continue
			}
			t, err := domain.ParseTileSymbol(r)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidScenario, y+1, err)
			}
			tiles[origin.Add(geometry.Off(x, y))] = t
		}
	}
	return domain.NewFloorMap(tiles, domain.TileWall), nil
}

func (spec EntitySpec) entity() (domain.Entity, error) {
	var tpl dungeon.EntityTemplate
	if spec.Template != "" {
		var ok bool
		if tpl, ok = dungeon.Templates[spec.Template]; !ok {
			return domain.Entity{}, fmt.Errorf("unknown template %q", spec.Template)
		}
	}

	e := domain.Entity{
		State:              domain.OkState(spec.Round),
		Payload:            coalesce(spec.Payload, tpl.Payload),
		Health:             pick(spec.Health, tpl.Health),
		Energy:             pick(spec.Energy, tpl.Energy),
		MaxEnergy:          pick(spec.MaxEnergy, tpl.MaxEnergy),
		IsPlayerControlled: pick(spec.PlayerControlled, tpl.PlayerControlled),
		IsPlayerFriendly:   pick(spec.PlayerFriendly, tpl.PlayerFriendly),
	}

	moveset := spec.Moveset
	if moveset == nil {
		moveset = tpl.Moveset
	}
	for _, name := range moveset {
		a, err := domain.LookupAction(name)
		if err != nil {
			return domain.Entity{}, err
		}
		e.Moveset = append(e.Moveset, a)
	}

	if name := coalesce(spec.Strategy, tpl.Strategy); name != "" {
		st, err := domain.LookupStrategy(name)
		if err != nil {
			return domain.Entity{}, err
		}
		e.Strategy = st
	}
	return e, nil
}

// placer раздаёт места на сгенерированной карте.
type placer struct {
	layout *dungeon.Layout
	spawn  int
}

func newPlacer(layout *dungeon.Layout) *placer {
	return &placer{layout: layout}
}

// next: свои - свободная клетка у старта, враги - следующая свободная
// точка появления.
func (p *placer) next(f *domain.Floor, friendly bool) (geometry.Position, bool) {
	if p.layout == nil {
		return geometry.Position{}, false
	}
	if !friendly {
		for p.spawn < len(p.layout.Spawns) {
			pos := p.layout.Spawns[p.spawn]
			p.spawn++
			if f.IsTileFree(pos) {
				return pos, true
			}
		}
		// Точки появления кончились - ставим у лестницы.
		return around(f, p.layout.Stairs)
	}
	return around(f, p.layout.Start)
}

func around(f *domain.Floor, center geometry.Position) (geometry.Position, bool) {
	nb := center.Neighbors()
	for _, pos := range append([]geometry.Position{center}, nb[:]...) {
		if f.IsTileFree(pos) {
			return pos, true
		}
	}
	return geometry.Position{}, false
}

func coalesce(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func pick[T any](v *T, fallback T) T {
	if v == nil {
		return fallback
	}
	return *v
}
