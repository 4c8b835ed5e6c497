package engine

import (
	"os"
	"testing"

	"lizard-state/internal/domain"
	"lizard-state/internal/engine/handlers/actions"
	"lizard-state/internal/engine/strategy"
	"lizard-state/internal/geometry"
	"lizard-state/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

func testConfig() Config {
	cfg := NewConfig()
	cfg.MaxNPCTurns = 200
	cfg.ReplayDir = ""
	return cfg
}

func heroAt(x, y int, round uint32) domain.Entity {
	return domain.Entity{
		State:              domain.OkState(round),
		Pos:                geometry.Pos(x, y),
		Health:             5,
		Energy:             1,
		MaxEnergy:          2,
		Moveset:            actions.DefaultMoveset(),
		IsPlayerControlled: true,
		IsPlayerFriendly:   true,
		Payload:            "hero",
	}
}

func idlerAt(x, y int, round uint32) domain.Entity {
	return domain.Entity{
		State:    domain.OkState(round),
		Pos:      geometry.Pos(x, y),
		Health:   3,
		Moveset:  []domain.Action{actions.Wait},
		Strategy: domain.NewStrategy(strategy.NullStrategy{}),
		Payload:  "lizard",
	}
}

// corridor: пол от (0, 0) до (5, 0), лестница в (6, 0), остальное - стены.
func corridor() *domain.FloorMap {
	tiles := map[geometry.Position]domain.Tile{geometry.Pos(6, 0): domain.TileStairs}
	for x := 0; x <= 5; x++ {
		tiles[geometry.Pos(x, 0)] = domain.TileFloor
	}
	return domain.NewFloorMap(tiles, domain.TileWall)
}

func buildFloor(m *domain.FloorMap, entities ...domain.Entity) *domain.Floor {
	f := domain.NewFloor()
	if m != nil {
		f = f.SetMap(m)
	}
	for _, e := range entities {
		u, _ := f.AddEntity(e)
		f = u.Floor
	}
	return f
}

type entitySummary struct {
	Pos    geometry.Position
	Kind   domain.StateKind
	Round  uint32
	Health int
}

func summarize(f *domain.Floor) []entitySummary {
	var out []entitySummary
	for _, e := range f.Entities() {
		round, _ := e.NextRound()
		out = append(out, entitySummary{Pos: e.Pos, Kind: e.State.Kind, Round: round, Health: e.Health})
	}
	return out
}
