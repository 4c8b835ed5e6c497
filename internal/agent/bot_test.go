package agent

import (
	"context"
	"os"
	"testing"
	"time"

	"lizard-state/internal/domain"
	"lizard-state/internal/engine"
	"lizard-state/internal/engine/handlers/actions"
	"lizard-state/internal/engine/strategy"
	"lizard-state/internal/geometry"
	"lizard-state/pkg/api"
	"lizard-state/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

// newService: коридор (0..5, 0), лестница в (6, 0).
func newService(t *testing.T, entities ...domain.Entity) *engine.GameService {
	t.Helper()
	tiles := map[geometry.Position]domain.Tile{geometry.Pos(6, 0): domain.TileStairs}
	for x := 0; x <= 5; x++ {
		tiles[geometry.Pos(x, 0)] = domain.TileFloor
	}
	f := domain.NewFloor().SetMap(domain.NewFloorMap(tiles, domain.TileWall))
	for _, e := range entities {
		u, _ := f.AddEntity(e)
		f = u.Floor
	}

	cfg := engine.NewConfig()
	cfg.MaxNPCTurns = 100
	svc := engine.NewService(engine.NewSession(f, "", cfg), nil)
	require.NoError(t, svc.Start(context.Background()))
	return svc
}

func hero(x int) domain.Entity {
	return domain.Entity{
		State:              domain.OkState(0),
		Pos:                geometry.Pos(x, 0),
		Health:             5,
		MaxEnergy:          2,
		Moveset:            actions.DefaultMoveset(),
		IsPlayerControlled: true,
		IsPlayerFriendly:   true,
		Payload:            "hero",
	}
}

func TestBot_WalksToStairsAndExits(t *testing.T) {
	svc := newService(t, hero(0))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	bot, err := NewBot(svc, "")
	require.NoError(t, err)
	assert.Equal(t, domain.EntityID(0), bot.EntityID)
	go bot.Run(ctx)

	assert.Eventually(t, func() bool {
		return svc.Phase() == engine.PhaseFinished
	}, 3*time.Second, 10*time.Millisecond)

	entities := svc.Entities()
	require.Len(t, entities, 1)
	assert.Equal(t, domain.StateExited, entities[0].State.Kind)
	assert.Equal(t, geometry.Pos(6, 0), entities[0].Pos)
}

func TestBot_AttacksAdjacentHostile(t *testing.T) {
	lizard := domain.Entity{
		State:    domain.OkState(5),
		Pos:      geometry.Pos(1, 0),
		Health:   3,
		Moveset:  []domain.Action{actions.Wait},
		Strategy: domain.NewStrategy(strategy.NullStrategy{}),
		Payload:  "lizard",
	}
	svc := newService(t, hero(0), lizard)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bot, err := NewBot(svc, "#0")
	require.NoError(t, err)
	go bot.Run(ctx)

	assert.Eventually(t, func() bool {
		for _, e := range svc.Entities() {
			if e.Payload == "lizard" && (e.Health < 3 || e.Pos != geometry.Pos(1, 0)) {
				return true
			}
		}
		return false
	}, 3*time.Second, 10*time.Millisecond)
}

func TestNearestHostile(t *testing.T) {
	at := func(id string, x, y int, friendly bool, state string) api.EntityView {
		v := api.EntityView{ID: id, IsPlayerFriendly: friendly, State: state}
		v.Pos.X, v.Pos.Y = x, y
		return v
	}
	me := at("#0", 0, 0, true, "OK")
	entities := []api.EntityView{
		me,
		at("#1", 5, 5, false, "OK"),
		at("#2", 1, 1, false, domain.StateDowned.String()),
		at("#3", 2, -1, false, "HITSTUN"),
		at("#4", 1, 0, true, "OK"),
	}

	foe, ok := nearestHostile(entities, me)
	require.True(t, ok)
	assert.Equal(t, "#3", foe.ID)

	_, ok = nearestHostile(entities[:1], me)
	assert.False(t, ok)
}
