package systems

import (
	"testing"

	"lizard-state/internal/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openField(geometry.Position) bool { return false }

// wallColumn блокирует x == 3 для y в [-5, 4]; проход снизу, через y == 5.
func wallColumn(p geometry.Position) bool {
	return p.X == 3 && p.Y >= -5 && p.Y <= 4
}

func TestFindPath_SameTile(t *testing.T) {
	ctx := NewPathfindingContext(openField, nil)
	start := geometry.Pos(2, 2)

	assert.True(t, ctx.FindPath(start, start))
	d, ok := ctx.KnownDistance(start, start)
	require.True(t, ok)
	assert.Equal(t, 0, d)
}

func TestFindPath_Diagonal(t *testing.T) {
	ctx := NewPathfindingContext(openField, nil)
	start, dest := geometry.Pos(0, 0), geometry.Pos(5, 5)

	require.True(t, ctx.FindPath(start, dest))

	d, ok := ctx.KnownDistance(start, dest)
	require.True(t, ok)
	assert.Equal(t, 5, d)

	back, ok := ctx.KnownDistance(dest, start)
	require.True(t, ok)
	assert.Equal(t, 5, back)

	step, ok := ctx.GetStep(start, dest)
	require.True(t, ok)
	assert.Equal(t, geometry.Pos(1, 1), step)
}

func TestFindPath_AroundWall(t *testing.T) {
	ctx := NewPathfindingContext(wallColumn, nil)
	start, dest := geometry.Pos(0, 0), geometry.Pos(6, 0)

	require.True(t, ctx.FindPath(start, dest))
	d, _ := ctx.KnownDistance(start, dest)
	// Обход через (3,5): по 5 шагов до прохода и после него.
	assert.Equal(t, 10, d)

	// Пройти весь путь шагами GetStep.
	pos := start
	for i := 0; i < d; i++ {
		next, ok := ctx.GetStep(pos, dest)
		if !ok {
			require.True(t, ctx.FindPath(pos, dest))
			next, ok = ctx.GetStep(pos, dest)
			require.True(t, ok)
		}
		assert.True(t, geometry.Adjacent(pos, next))
		assert.False(t, wallColumn(next))
		pos = next
	}
	assert.Equal(t, dest, pos)
}

func TestFindPath_GivesUpBeyondSlack(t *testing.T) {
	ctx := NewPathfindingContext(wallColumn, nil)
	ctx.SetSlack(1)

	assert.False(t, ctx.FindPath(geometry.Pos(0, 0), geometry.Pos(6, 0)))
	_, ok := ctx.KnownDistance(geometry.Pos(0, 0), geometry.Pos(6, 0))
	assert.False(t, ok)
}

func TestFindPath_BlockedDestination(t *testing.T) {
	ctx := NewPathfindingContext(wallColumn, nil)
	assert.False(t, ctx.FindPath(geometry.Pos(0, 0), geometry.Pos(3, 0)))
}

func TestFindPath_CacheIsIdempotent(t *testing.T) {
	ctx := NewPathfindingContext(wallColumn, nil)
	a, b, c := geometry.Pos(0, 0), geometry.Pos(6, 0), geometry.Pos(1, 7)

	require.True(t, ctx.FindPath(a, b))

	snapshot := make(map[geometry.Position]map[geometry.Position]int)
	for from, row := range ctx.known {
		snapshot[from] = make(map[geometry.Position]int)
		for to, d := range row {
			snapshot[from][to] = d
		}
	}

	require.True(t, ctx.FindPath(a, c))
	require.True(t, ctx.FindPath(b, c))
	require.True(t, ctx.FindPath(a, b))

	for from, row := range snapshot {
		for to, d := range row {
			assert.Equal(t, d, ctx.known[from][to], "distance %v -> %v changed", from, to)
		}
	}
}

func TestFindPath_ResumesFromKnownRow(t *testing.T) {
	ctx := NewPathfindingContext(openField, nil)
	start := geometry.Pos(0, 0)

	require.True(t, ctx.FindPath(start, geometry.Pos(4, 0)))
	require.True(t, ctx.FindPath(start, geometry.Pos(8, 2)))

	d, ok := ctx.KnownDistance(start, geometry.Pos(8, 2))
	require.True(t, ok)
	assert.Equal(t, 8, d)

	step, ok := ctx.GetStep(start, geometry.Pos(8, 2))
	require.True(t, ok)
	assert.True(t, geometry.Adjacent(start, step))
}

func TestGetStep_Unknown(t *testing.T) {
	ctx := NewPathfindingContext(openField, nil)
	_, ok := ctx.GetStep(geometry.Pos(0, 0), geometry.Pos(3, 3))
	assert.False(t, ok)
}

// Одинаковая последовательность запросов всегда даёт один и тот же путь,
// даже когда поиск продолжается с уже известных расстояний.
func TestFindPath_ResumedSearchIsDeterministic(t *testing.T) {
	walk := func() []geometry.Position {
		ctx := NewPathfindingContext(openField, nil)
		start, dest := geometry.Pos(0, 0), geometry.Pos(0, 6)
		require.True(t, ctx.FindPath(start, geometry.Pos(3, 3)))
		require.True(t, ctx.FindPath(start, geometry.Pos(-3, 3)))

		var path []geometry.Position
		for cur := start; cur != dest; {
			require.True(t, ctx.FindPath(cur, dest))
			step, ok := ctx.GetStep(cur, dest)
			require.True(t, ok)
			path = append(path, step)
			cur = step
		}
		return path
	}

	first := walk()
	assert.Len(t, first, 6)
	for i := 0; i < 200; i++ {
		require.Equal(t, first, walk(), "run %d", i)
	}
}
