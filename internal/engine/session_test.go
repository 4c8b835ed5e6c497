package engine

import (
	"context"
	"testing"

	"lizard-state/internal/domain"
	"lizard-state/internal/engine/handlers/actions"
	"lizard-state/internal/geometry"
	"lizard-state/internal/version"
	"lizard-state/pkg/logger"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func right() domain.Target { return domain.DirectionTarget(geometry.Off(1, 0)) }

func stepRight() domain.Intent { return domain.Intent{Action: actions.Step, Target: right()} }

func TestSession_AdvanceStopsAtPlayerTurn(t *testing.T) {
	ctx := context.Background()
	s := NewSession(buildFloor(corridor(), heroAt(0, 0, 1), idlerAt(4, 0, 0)), "", testConfig())
	assert.Equal(t, PhaseRunning, s.Phase())

	events, err := s.Advance(ctx)
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.Equal(t, PhaseAwaitingInput, s.Phase())

	id, err := s.Floor().CurrentTurn()
	require.NoError(t, err)
	assert.Equal(t, domain.EntityID(0), id)
	assert.Equal(t, domain.OkState(1), s.Floor().MustEntity(1).State)
}

func TestSession_Submit(t *testing.T) {
	ctx := context.Background()
	s := NewSession(buildFloor(corridor(), heroAt(0, 0, 0), idlerAt(4, 0, 0)), "scenario", testConfig())
	_, err := s.Advance(ctx)
	require.NoError(t, err)

	events, err := s.Submit(ctx, 0, stepRight())
	require.NoError(t, err)
	assert.Equal(t, []domain.Event{domain.MoveEvent(0, geometry.Pos(1, 0))}, events)
	assert.Equal(t, PhaseAwaitingInput, s.Phase())

	require.Len(t, s.Replay().Actions, 1)
	assert.Equal(t, "scenario", s.Replay().Scenario)
	assert.Equal(t, domain.ReplayAction{Round: 0, Actor: 0, Intent: stepRight()}, s.Replay().Actions[0])
}

func TestSession_SubmitRejections(t *testing.T) {
	ctx := context.Background()
	s := NewSession(buildFloor(corridor(), heroAt(0, 0, 0), idlerAt(4, 0, 0)), "", testConfig())

	_, err := s.Submit(ctx, 0, stepRight())
	assert.ErrorIs(t, err, domain.ErrInvalidState, "not awaiting input yet")

	_, err = s.Advance(ctx)
	require.NoError(t, err)

	_, err = s.Submit(ctx, 1, domain.Intent{Action: actions.Wait, Target: domain.NoTarget()})
	assert.ErrorIs(t, err, ErrNotYourTurn)

	_, err = s.Submit(ctx, 0, domain.Intent{Action: actions.Step, Target: domain.DirectionTarget(geometry.Off(0, 1))})
	assert.ErrorIs(t, err, domain.ErrInvalidTarget)

	_, err = s.Confirm(ctx, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	assert.Empty(t, s.Replay().Actions)
	assert.Equal(t, PhaseAwaitingInput, s.Phase())
}

func TestSession_GotoAndConfirm(t *testing.T) {
	ctx := context.Background()
	s := NewSession(buildFloor(corridor(), heroAt(0, 0, 0)), "", testConfig())
	_, err := s.Advance(ctx)
	require.NoError(t, err)

	_, err = s.Submit(ctx, 0, domain.Intent{Action: actions.Goto, Target: domain.TileTarget(geometry.Pos(3, 0))})
	require.NoError(t, err)
	assert.Equal(t, domain.StateConfirmCommand, s.Floor().MustEntity(0).State.Kind)

	_, err = s.Confirm(ctx, 0)
	require.NoError(t, err)
	_, err = s.Confirm(ctx, 0)
	require.NoError(t, err)

	hero := s.Floor().MustEntity(0)
	assert.Equal(t, geometry.Pos(3, 0), hero.Pos)
	assert.Equal(t, domain.OkState(3), hero.State)

	require.Len(t, s.Replay().Actions, 3)
	assert.False(t, s.Replay().Actions[0].Confirm)
	assert.True(t, s.Replay().Actions[1].Confirm)
	assert.True(t, s.Replay().Actions[2].Confirm)
}

func TestSession_ExitFinishes(t *testing.T) {
	ctx := context.Background()
	s := NewSession(buildFloor(corridor(), heroAt(6, 0, 0), idlerAt(2, 0, 3)), "", testConfig())
	_, err := s.Advance(ctx)
	require.NoError(t, err)

	events, err := s.Submit(ctx, 0, domain.Intent{Action: actions.Exit, Target: domain.NoTarget()})
	require.NoError(t, err)
	assert.Equal(t, []domain.Event{domain.ExitEvent(0)}, events)
	assert.True(t, s.IsFinished())
	assert.Equal(t, domain.EndAllExited, s.EndState())

	_, err = s.Submit(ctx, 0, stepRight())
	assert.ErrorIs(t, err, ErrFinished)

	events, err = s.Advance(ctx)
	assert.NoError(t, err)
	assert.Empty(t, events)
}

func TestSession_EmptyFloorFinishes(t *testing.T) {
	s := NewSession(domain.NewFloor(), "", testConfig())
	_, err := s.Advance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, PhaseFinished, s.Phase())
}

func TestSession_TurnLimit(t *testing.T) {
	cfg := testConfig()
	cfg.MaxNPCTurns = 5
	s := NewSession(buildFloor(nil, idlerAt(0, 0, 0)), "", cfg)

	_, err := s.Advance(context.Background())
	assert.ErrorIs(t, err, ErrTurnLimit)
	assert.Equal(t, domain.OkState(5), s.Floor().MustEntity(0).State)
}

func TestSession_AutopilotDrivesPlayers(t *testing.T) {
	cfg := testConfig()
	cfg.Autopilot = true
	cfg.MaxNPCTurns = 4
	s := NewSession(buildFloor(nil, heroAt(0, 0, 0)), "", cfg)

	_, err := s.Advance(context.Background())
	assert.ErrorIs(t, err, ErrTurnLimit)
	// Без стратегии игровой персонаж просто пропускает ходы.
	assert.Equal(t, domain.OkState(4), s.Floor().MustEntity(0).State)
	assert.Equal(t, PhaseRunning, s.Phase())
}

func TestSession_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewSession(buildFloor(nil, idlerAt(0, 0, 0)), "", testConfig())

	_, err := s.Advance(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSession_Upcoming(t *testing.T) {
	s := NewSession(buildFloor(nil, heroAt(0, 0, 3), idlerAt(3, 3, 1), idlerAt(5, 5, 3)), "", testConfig())

	assert.Equal(t, []TurnSlot{
		{Entity: 1, Round: 1},
		{Entity: 0, Round: 3},
	}, s.Upcoming(2))
	assert.Len(t, s.Upcoming(10), 3)
	assert.Empty(t, s.Upcoming(0))
}

func TestReplay_ReproducesSession(t *testing.T) {
	ctx := context.Background()
	floor := func() *domain.Floor {
		return buildFloor(corridor(), heroAt(0, 0, 0), idlerAt(3, 0, 2))
	}

	live := NewSession(floor(), "corridor", testConfig())
	_, err := live.Advance(ctx)
	require.NoError(t, err)
	_, err = live.Submit(ctx, 0, domain.Intent{Action: actions.Goto, Target: domain.TileTarget(geometry.Pos(2, 0))})
	require.NoError(t, err)
	_, err = live.Confirm(ctx, 0)
	require.NoError(t, err)
	_, err = live.Submit(ctx, 0, domain.Intent{Action: actions.Bump, Target: right()})
	require.NoError(t, err)

	replayed, _, err := Replay(ctx, floor(), live.Replay(), testConfig())
	require.NoError(t, err)
	assert.Equal(t, summarize(live.Floor()), summarize(replayed.Floor()))
	assert.Equal(t, live.Phase(), replayed.Phase())
	assert.NotEqual(t, live.ID, replayed.ID)
}

func TestReplay_FailsOnDivergence(t *testing.T) {
	ctx := context.Background()
	record := &domain.ReplaySession{Actions: []domain.ReplayAction{
		{Actor: 0, Intent: domain.Intent{Action: actions.Step, Target: domain.DirectionTarget(geometry.Off(0, 1))}},
	}}

	_, _, err := Replay(ctx, buildFloor(corridor(), heroAt(0, 0, 0)), record, testConfig())
	assert.ErrorIs(t, err, domain.ErrInvalidTarget)
	assert.ErrorContains(t, err, "replay action 0")
}

func TestReplay_WarnsOnBuildMismatch(t *testing.T) {
	oldDate := version.BuildDate
	t.Cleanup(func() { version.BuildDate = oldDate })
	version.BuildDate = "2025-12-06"

	live := NewSession(buildFloor(corridor(), heroAt(0, 0, 0)), "corridor", testConfig())
	assert.Equal(t, version.Build(), live.Replay().Build)

	hook := logtest.NewLocal(logger.Log)
	t.Cleanup(func() { logger.Log.ReplaceHooks(make(logrus.LevelHooks)) })

	record := &domain.ReplaySession{Build: version.Build() + 1}
	_, _, err := Replay(context.Background(), buildFloor(corridor(), heroAt(0, 0, 0)), record, testConfig())
	require.NoError(t, err)

	var warned bool
	for _, entry := range hook.AllEntries() {
		if entry.Message == "Replay build mismatch" {
			warned = true
			assert.Equal(t, logrus.WarnLevel, entry.Level)
		}
	}
	assert.True(t, warned)
}
