package systems

import (
	"testing"

	"lizard-state/internal/geometry"

	"github.com/stretchr/testify/assert"
)

func TestLine(t *testing.T) {
	line := Line(geometry.Pos(0, 0), geometry.Pos(4, 2))

	assert.Equal(t, geometry.Pos(0, 0), line[0])
	assert.Equal(t, geometry.Pos(4, 2), line[len(line)-1])
	assert.Len(t, line, 5)
	for i := 1; i < len(line); i++ {
		assert.True(t, geometry.Adjacent(line[i-1], line[i]))
	}
}

func TestHasLineOfSight(t *testing.T) {
	wall := func(p geometry.Position) bool { return p == geometry.Pos(2, 0) }

	tests := []struct {
		name   string
		p1, p2 geometry.Position
		want   bool
	}{
		{"same point", geometry.Pos(1, 1), geometry.Pos(1, 1), true},
		{"clear", geometry.Pos(0, 1), geometry.Pos(4, 1), true},
		{"blocked", geometry.Pos(0, 0), geometry.Pos(4, 0), false},
		{"endpoint wall ignored", geometry.Pos(0, 0), geometry.Pos(2, 0), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasLineOfSight(wall, tt.p1, tt.p2))
		})
	}
}
