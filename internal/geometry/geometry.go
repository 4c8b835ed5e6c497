// Package geometry содержит целочисленные примитивы сетки: позиции, смещения
// и расстояние Чебышёва, при котором диагональный шаг стоит столько же,
// сколько прямой.
package geometry

import "fmt"

// Position - абсолютная клетка на карте.
type Position struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// Offset - относительное смещение между клетками.
type Offset struct {
	X int `json:"dx" yaml:"dx"`
	Y int `json:"dy" yaml:"dy"`
}

// Directions - восемь соседних смещений, начиная с востока по часовой стрелке
// (ось Y направлена вниз).
var Directions = [8]Offset{
	{1, 0}, {1, 1}, {0, 1}, {-1, 1},
	{-1, 0}, {-1, -1}, {0, -1}, {1, -1},
}

func Pos(x, y int) Position { return Position{X: x, Y: y} }

func Off(dx, dy int) Offset { return Offset{X: dx, Y: dy} }

func (p Position) Add(o Offset) Position {
	return Position{X: p.X + o.X, Y: p.Y + o.Y}
}

// Sub возвращает смещение от q до p.
func (p Position) Sub(q Position) Offset {
	return Offset{X: p.X - q.X, Y: p.Y - q.Y}
}

// DirectionTo возвращает единичный шаг (знак по каждой оси) в сторону target.
func (p Position) DirectionTo(target Position) Offset {
	return target.Sub(p).Sign()
}

// Neighbors возвращает восемь соседних клеток в порядке Directions.
func (p Position) Neighbors() [8]Position {
	var out [8]Position
	for i, d := range Directions {
		out[i] = p.Add(d)
	}
	return out
}

func (p Position) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}

func (o Offset) Add(other Offset) Offset {
	return Offset{X: o.X + other.X, Y: o.Y + other.Y}
}

func (o Offset) Neg() Offset {
	return Offset{X: -o.X, Y: -o.Y}
}

func (o Offset) Scale(n int) Offset {
	return Offset{X: o.X * n, Y: o.Y * n}
}

// Length - длина смещения по Чебышёву.
func (o Offset) Length() int {
	return max(abs(o.X), abs(o.Y))
}

// Sign сжимает смещение до единичного шага.
func (o Offset) Sign() Offset {
	return Offset{X: sign(o.X), Y: sign(o.Y)}
}

// RotateLeft и RotateRight поворачивают единичное направление на 45 градусов.
func (o Offset) RotateLeft() Offset {
	return rotate(o, -1)
}

func (o Offset) RotateRight() Offset {
	return rotate(o, 1)
}

func (o Offset) String() string {
	return fmt.Sprintf("<%d, %d>", o.X, o.Y)
}

// Distance - расстояние Чебышёва между двумя клетками.
func Distance(a, b Position) int {
	return a.Sub(b).Length()
}

// Adjacent сообщает, являются ли клетки соседями (и не совпадают).
func Adjacent(a, b Position) bool {
	return Distance(a, b) == 1
}

func rotate(o Offset, steps int) Offset {
	unit := o.Sign()
	for i, d := range Directions {
		if d == unit {
			return Directions[(i+steps+len(Directions))%len(Directions)]
		}
	}
	return o
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
