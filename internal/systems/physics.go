package systems

import (
	"lizard-state/internal/geometry"
	"lizard-state/pkg/logger"

	"github.com/sirupsen/logrus"
)

// HasLineOfSight проверяет прямую видимость между двумя точками.
// Алгоритм Брезенхэма, крайние точки не проверяются.
func HasLineOfSight(opaque func(geometry.Position) bool, p1, p2 geometry.Position) bool {
	losLogger := logger.Log.WithFields(logrus.Fields{
		"component": "physics_system",
		"start_pos": p1,
		"end_pos":   p2,
	})

	if p1 == p2 {
		return true
	}

	for _, pos := range Line(p1, p2) {
		if pos == p1 || pos == p2 {
			continue
		}
		if opaque(pos) {
			losLogger.WithField("blocking_point", pos).Debug("Line of sight blocked.")
			return false
		}
	}
	return true
}

// Line возвращает клетки отрезка от p1 до p2 включительно.
func Line(p1, p2 geometry.Position) []geometry.Position {
	x0, y0 := p1.X, p1.Y
	x1, y1 := p2.X, p2.Y

	dx := x1 - x0
	if dx < 0 {
		dx = -dx
	}
	dy := y1 - y0
	if dy < 0 {
		dy = -dy
	}

	step := p1.DirectionTo(p2)
	err := dx - dy

	points := make([]geometry.Position, 0, max(dx, dy)+1)
	for {
		points = append(points, geometry.Pos(x0, y0))
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := err * 2
		if e2 > -dy {
			err -= dy
			x0 += step.X
		}
		if e2 < dx {
			err += dx
			y0 += step.Y
		}
	}
	return points
}
