package scenario

import (
	"os"
	"path/filepath"
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

const corridor = `
name: corridor
vision_radius: 4
downing: true
map: |
  #########
  #......>#
  #########
entities:
  - template: hero
    pos: {x: 1, y: 1}
  - template: lizard
    payload: grunt
    pos: {x: 5, y: 1}
    round: 2
    health: 1
`

func TestParseAndBuild(t *testing.T) {
	s, err := Parse([]byte(corridor))
	require.NoError(t, err)
	assert.Equal(t, "corridor", s.Name)

	floor, events, err := s.Build()
	require.NoError(t, err)

	// 1. Карта
	m := floor.Map()
	assert.Equal(t, domain.TileStairs, m.TileAt(geometry.Pos(7, 1)))
	assert.True(t, m.IsWalkable(geometry.Pos(3, 1)))
	assert.False(t, m.IsWalkable(geometry.Pos(0, 1)))
	assert.False(t, m.IsWalkable(geometry.Pos(100, 100)))

	// 2. Сущности из шаблонов с переопределениями
	require.Equal(t, 2, floor.EntityCount())
	hero, ok := floor.Occupant(geometry.Pos(1, 1))
	require.True(t, ok)
	assert.Equal(t, "hero", hero.Payload)
	assert.True(t, hero.IsPlayerControlled)
	assert.True(t, hero.IsPlayerFriendly)
	_, hasGoto := hero.HasMove("goto")
	assert.True(t, hasGoto)

	grunt, ok := floor.Occupant(geometry.Pos(5, 1))
	require.True(t, ok)
	assert.Equal(t, "grunt", grunt.Payload)
	assert.Equal(t, 1, grunt.Health)
	assert.Equal(t, domain.OkState(2), grunt.State)
	assert.False(t, grunt.Strategy.IsZero())

	// 3. Флаги этажа и первичный обзор
	assert.True(t, floor.DowningEnabled())
	require.NotNil(t, floor.Vision())
	require.NotEmpty(t, events)
	assert.Equal(t, domain.EventSeeMap, events[0].Type)
}

func TestBuild_Rejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{
			name: "entity in a wall",
			doc: `
map: "#.#"
entities:
  - template: lizard
    pos: {x: 0, y: 0}
`,
		},
		{
			name: "shared tile",
			doc: `
map: "..."
entities:
  - template: lizard
    pos: {x: 1, y: 0}
  - template: brute
    pos: {x: 1, y: 0}
`,
		},
		{
			name: "unknown template",
			doc: `
entities:
  - template: dragon
    pos: {x: 0, y: 0}
`,
		},
		{
			name: "unknown move",
			doc: `
entities:
  - moveset: [fireball]
    pos: {x: 0, y: 0}
`,
		},
		{
			name: "missing position on a drawn map",
			doc: `
map: "..."
entities:
  - template: hero
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Parse([]byte(tt.doc))
			require.NoError(t, err)
			_, _, err = s.Build()
			assert.ErrorIs(t, err, ErrInvalidScenario)
		})
	}
}

func TestParse_Rejects(t *testing.T) {
	_, err := Parse([]byte("bogus_field: 1\n"))
	assert.ErrorIs(t, err, ErrInvalidScenario)

	_, err = Parse([]byte("map: \".\"\ngenerate: {seed: 1}\n"))
	assert.ErrorIs(t, err, ErrInvalidScenario)

	_, err = ParseMap("..x", geometry.Position{})
	assert.ErrorIs(t, err, ErrInvalidScenario)
}

func TestBuild_Generated(t *testing.T) {
	doc := `
generate:
  seed: 11
entities:
  - template: hero
  - template: companion
  - template: lizard
`
	s, err := Parse([]byte(doc))
	require.NoError(t, err)

	floor, _, err := s.Build()
	require.NoError(t, err)

	// Всех расставили на проходимые и разные клетки.
	seen := make(map[geometry.Position]bool)
	for _, e := range floor.Entities() {
		assert.True(t, floor.Map().IsWalkable(e.Pos), "%s in a wall", e.Payload)
		assert.False(t, seen[e.Pos], "%s shares %v", e.Payload, e.Pos)
		seen[e.Pos] = true
	}
	assert.Len(t, seen, floor.EntityCount())
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "floor.yaml")
	require.NoError(t, os.WriteFile(path, []byte(corridor), 0o644))

	s, raw, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, corridor, string(raw))
	assert.Len(t, s.Entities, 2)

	_, _, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
