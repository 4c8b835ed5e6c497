package actions

import (
	"os"
	"testing"

	"lizard-state/internal/domain"
	"lizard-state/internal/geometry"
	"lizard-state/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

func hero(x, y int) domain.Entity {
	return domain.Entity{
		State:              domain.OkState(0),
		Pos:                geometry.Pos(x, y),
		Health:             5,
		Energy:             1,
		MaxEnergy:          2,
		Moveset:            DefaultMoveset(),
		IsPlayerControlled: true,
		IsPlayerFriendly:   true,
	}
}

func enemy(x, y int, round uint32) domain.Entity {
	return domain.Entity{
		State:   domain.OkState(round),
		Pos:     geometry.Pos(x, y),
		Health:  3,
		Moveset: []domain.Action{Bump, Step, Wait},
	}
}

func setup(f *domain.Floor, entities ...domain.Entity) *domain.Floor {
	for _, e := range entities {
		u, _ := f.AddEntity(e)
		f = u.Floor
	}
	return f
}

func walls(tiles ...geometry.Position) *domain.FloorMap {
	m := make(map[geometry.Position]domain.Tile, len(tiles))
	for _, p := range tiles {
		m[p] = domain.TileWall
	}
	return domain.NewFloorMap(m, domain.TileFloor)
}

func do(t *testing.T, f *domain.Floor, a domain.Action, subject domain.EntityID, target domain.Target) domain.FloorUpdate {
	t.Helper()
	cmd, err := a.Verify(f, subject, target)
	require.NoError(t, err)
	return cmd.Do()
}

func right() domain.Target { return domain.DirectionTarget(geometry.Off(1, 0)) }

func TestStep(t *testing.T) {
	f := setup(domain.NewFloor(), hero(0, 0))

	u := do(t, f, Step, 0, right())

	assert.Equal(t, []domain.Event{domain.MoveEvent(0, geometry.Pos(1, 0))}, u.Events)
	moved := u.Floor.MustEntity(0)
	assert.Equal(t, geometry.Pos(1, 0), moved.Pos)
	assert.Equal(t, domain.OkState(1), moved.State)

	// Исходный снимок не изменился.
	assert.Equal(t, geometry.Pos(0, 0), f.MustEntity(0).Pos)
}

func TestStep_Rejections(t *testing.T) {
	f := setup(domain.NewFloor().SetMap(walls(geometry.Pos(1, 0))), hero(0, 0), enemy(0, 1, 0))

	tests := []struct {
		name   string
		target domain.Target
		want   error
	}{
		{"wall", right(), domain.ErrInvalidTarget},
		{"occupied", domain.DirectionTarget(geometry.Off(0, 1)), domain.ErrInvalidTarget},
		{"too far", domain.DirectionTarget(geometry.Off(2, 0)), domain.ErrOutOfRange},
		{"zero", domain.DirectionTarget(geometry.Off(0, 0)), domain.ErrOutOfRange},
		{"wrong target", domain.TileTarget(geometry.Pos(1, 1)), domain.ErrDataMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Step.Verify(f, 0, tt.target)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestBump(t *testing.T) {
	f := setup(domain.NewFloor(), hero(0, 0), enemy(1, 0, 5))

	u := do(t, f, Bump, 0, right())

	require.GreaterOrEqual(t, len(u.Events), 2)
	assert.Equal(t, domain.StartAttackEvent(0, geometry.Pos(1, 0)), u.Events[0])
	assert.Equal(t, domain.AttackHitEvent(0, 1, 1), u.Events[1])
	assert.Equal(t, []domain.Event{
		domain.KnockbackEvent(1, geometry.Pos(2, 0)),
		domain.KnockdownEvent(1),
	}, u.Events[2:])

	target := u.Floor.MustEntity(1)
	assert.Equal(t, 2, target.Health)
	assert.Equal(t, geometry.Pos(2, 0), target.Pos)
	assert.Equal(t, domain.KnockdownState(5), target.State)
	assert.Equal(t, domain.OkState(1), u.Floor.MustEntity(0).State)
}

func TestBump_KnockbackStopsAtWall(t *testing.T) {
	f := setup(domain.NewFloor().SetMap(walls(geometry.Pos(2, 0))), hero(0, 0), enemy(1, 0, 0))

	u := do(t, f, Bump, 0, right())

	assert.Empty(t, domain.EventsOfType(u.Events, domain.EventKnockback))
	target := u.Floor.MustEntity(1)
	assert.Equal(t, geometry.Pos(1, 0), target.Pos)
	assert.Equal(t, domain.KnockdownState(KnockdownRounds), target.State)
}

func TestBump_KnockbackIntoEntity(t *testing.T) {
	f := setup(domain.NewFloor(), hero(0, 0), enemy(1, 0, 0), enemy(2, 0, 9))

	u := do(t, f, Bump, 0, right())

	knockdowns := domain.EventsOfType(u.Events, domain.EventKnockdown)
	require.Len(t, knockdowns, 2)
	assert.Equal(t, domain.EntityID(1), knockdowns[0].Subject)
	assert.Equal(t, domain.EntityID(2), knockdowns[1].Subject)

	assert.Equal(t, geometry.Pos(1, 0), u.Floor.MustEntity(1).Pos)
	assert.Equal(t, domain.KnockdownState(9), u.Floor.MustEntity(2).State)
}

func TestBump_CounterHitOnCommitted(t *testing.T) {
	committed := enemy(1, 0, 3)
	committed.State = domain.CommittedState(3, domain.Intent{
		Action: domain.NewAction(SweepAction{Dir: geometry.Off(-1, 0)}),
		Target: domain.NoTarget(),
	})
	f := setup(domain.NewFloor(), hero(0, 0), committed)

	u := do(t, f, Bump, 0, right())

	assert.Equal(t, []domain.Event{
		domain.StartAttackEvent(0, geometry.Pos(1, 0)),
		domain.AttackHitEvent(0, 1, 1),
		domain.KnockdownEvent(1),
	}, u.Events)
	assert.Equal(t, domain.KnockdownState(3), u.Floor.MustEntity(1).State)
}

func TestBump_NobodyThere(t *testing.T) {
	f := setup(domain.NewFloor(), hero(0, 0))
	_, err := Bump.Verify(f, 0, right())
	assert.ErrorIs(t, err, domain.ErrInvalidTarget)
}

func TestBump_DownsTarget(t *testing.T) {
	weak := enemy(1, 0, 0)
	weak.Health = 1
	f := setup(domain.NewFloor().WithDowning(), hero(0, 0), weak)

	u := do(t, f, Bump, 0, right())

	assert.Equal(t, domain.StateDowned, u.Floor.MustEntity(1).State.Kind)
	downed := domain.EventsOfType(u.Events, domain.EventDowned)
	require.Len(t, downed, 1)
	assert.Equal(t, domain.EntityID(1), downed[0].Subject)
	assert.Empty(t, domain.EventsOfType(u.Events, domain.EventMissionFailed))
}

func TestStepMacro(t *testing.T) {
	t.Run("bumps hostile", func(t *testing.T) {
		f := setup(domain.NewFloor(), hero(0, 0), enemy(1, 0, 0))
		u := do(t, f, StepMacro, 0, right())
		assert.Equal(t, domain.EventStartAttack, u.Events[0].Type)
	})

	t.Run("steps into empty tile", func(t *testing.T) {
		f := setup(domain.NewFloor(), hero(0, 0))
		u := do(t, f, StepMacro, 0, right())
		assert.Equal(t, []domain.Event{domain.MoveEvent(0, geometry.Pos(1, 0))}, u.Events)
	})

	t.Run("does nothing against an ally", func(t *testing.T) {
		f := setup(domain.NewFloor(), hero(0, 0), hero(1, 0))
		u := do(t, f, StepMacro, 0, right())
		assert.Empty(t, u.Events)
		assert.Same(t, f, u.Floor)
	})
}

func TestWait(t *testing.T) {
	tired := hero(0, 0)
	tired.Energy = 0
	f := setup(domain.NewFloor(), tired)

	f = do(t, f, Wait, 0, domain.NoTarget()).Floor
	f = do(t, f, Wait, 0, domain.NoTarget()).Floor
	f = do(t, f, Wait, 0, domain.NoTarget()).Floor

	rested := f.MustEntity(0)
	assert.Equal(t, 2, rested.Energy)
	assert.Equal(t, domain.OkState(3), rested.State)
}

func TestGoto(t *testing.T) {
	f := setup(domain.NewFloor(), hero(0, 0))
	dest := geometry.Pos(3, 0)

	u := do(t, f, Goto, 0, domain.TileTarget(dest))
	walker := u.Floor.MustEntity(0)
	assert.Equal(t, 2, geometry.Distance(walker.Pos, dest))
	require.Equal(t, domain.StateConfirmCommand, walker.State.Kind)
	assert.Equal(t, NameGoto, walker.State.Queued.Action.Name())
	assert.Equal(t, dest, walker.State.Queued.Target.Tile)

	for walker.Pos != dest {
		require.Equal(t, domain.StateConfirmCommand, walker.State.Kind)
		cmd, err := walker.State.Queued.Verify(u.Floor, 0)
		require.NoError(t, err)
		u = cmd.Do()
		walker = u.Floor.MustEntity(0)
	}
	assert.Equal(t, domain.OkState(3), walker.State)
}

func TestGoto_Rejections(t *testing.T) {
	f := setup(domain.NewFloor().SetMap(walls(geometry.Pos(4, 4))), hero(0, 0), enemy(1, 1, 0))

	_, err := Goto.Verify(f, 0, domain.TileTarget(geometry.Pos(0, 0)))
	assert.ErrorIs(t, err, domain.ErrInvalidTarget)

	_, err = Goto.Verify(f, 0, domain.TileTarget(geometry.Pos(4, 4)))
	assert.ErrorIs(t, err, domain.ErrInvalidTarget)

	// Кратчайший путь по диагонали упирается во врага.
	_, err = Goto.Verify(f, 0, domain.TileTarget(geometry.Pos(3, 3)))
	assert.ErrorIs(t, err, domain.ErrInvalidTarget)
}

func TestForwardHeavy(t *testing.T) {
	f := setup(domain.NewFloor(), hero(0, 0), enemy(2, 0, 5))

	u := do(t, f, ForwardHeavy, 0, right())
	assert.Equal(t, []domain.Event{domain.MoveEvent(0, geometry.Pos(1, 0))}, u.Events)

	lunger := u.Floor.MustEntity(0)
	assert.Equal(t, 0, lunger.Energy)
	require.Equal(t, domain.StateCommitted, lunger.State.Kind)
	assert.Equal(t, uint32(1), lunger.State.NextRound)

	// Замах выполняется планировщиком.
	u, err := u.Floor.TakeNPCTurn()
	require.NoError(t, err)
	assert.Equal(t, []domain.Event{
		domain.StartAttackEvent(0, geometry.Pos(2, 0)),
		domain.AttackHitEvent(0, 1, 1),
	}, u.Events)
	assert.Equal(t, domain.HitstunState(5, 1), u.Floor.MustEntity(1).State)
	assert.Equal(t, domain.OkState(2), u.Floor.MustEntity(0).State)

	_, err = ForwardHeavy.Verify(u.Floor, 0, right())
	assert.ErrorIs(t, err, domain.ErrNotEnoughEnergy)
}

func TestJab_JuggleUntilLimit(t *testing.T) {
	f := setup(domain.NewFloor(), hero(0, 0), enemy(1, 0, 0))

	u := do(t, f, Jab, 0, right())
	assert.Equal(t, domain.HitstunState(HitstunRounds, 1), u.Floor.MustEntity(1).State)
	assert.Equal(t, domain.StateRestrictedActions, u.Floor.MustEntity(0).State.Kind)

	_, err := Step.Verify(u.Floor, 0, domain.DirectionTarget(geometry.Off(0, 1)))
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	u = do(t, u.Floor, Jab, 0, right())
	assert.Equal(t, domain.JuggleHitEvent(1), u.Events[len(u.Events)-1])
	assert.Equal(t, domain.HitstunState(HitstunRounds+1, 0), u.Floor.MustEntity(1).State)

	id, err := u.Floor.CurrentTurn()
	require.NoError(t, err)
	require.Equal(t, domain.EntityID(0), id)

	u = do(t, u.Floor, Jab, 0, right())
	assert.Equal(t, []domain.Event{
		domain.JuggleLimitEvent(1),
		domain.KnockdownEvent(1),
	}, u.Events[2:])
	assert.Equal(t, domain.StateKnockdown, u.Floor.MustEntity(1).State.Kind)
	assert.Equal(t, 0, u.Floor.MustEntity(1).Health)
}

func TestExit(t *testing.T) {
	stairs := domain.NewFloorMap(map[geometry.Position]domain.Tile{geometry.Pos(1, 1): domain.TileStairs}, domain.TileFloor)
	f := setup(domain.NewFloor().SetMap(stairs), hero(0, 0), hero(1, 1))

	_, err := Exit.Verify(f, 0, domain.NoTarget())
	assert.ErrorIs(t, err, domain.ErrInvalidFloor)

	u := do(t, f, Exit, 1, domain.NoTarget())
	assert.Equal(t, []domain.Event{domain.ExitEvent(1)}, u.Events)
	assert.Equal(t, domain.StateExited, u.Floor.MustEntity(1).State.Kind)
	assert.Equal(t, domain.EndUndetermined, u.Floor.EndState())

	walker := u.Floor.MustEntity(0)
	u = u.Floor.UpdateEntity(walker.WithPos(geometry.Pos(1, 1)))
	u = do(t, u.Floor, Exit, 0, domain.NoTarget())
	assert.Equal(t, domain.EndAllExited, u.Floor.EndState())
}
