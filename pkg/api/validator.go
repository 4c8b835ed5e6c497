package api

import "errors"

// Validator - интерфейс, который могут реализовать DTO
type Validator interface {
	Validate() error
}

func (p DirectionPayload) Validate() error {
	if p.Dx == 0 && p.Dy == 0 {
		return errors.New("direction cannot be zero")
	}
	if p.Dx < -1 || p.Dx > 1 || p.Dy < -1 || p.Dy > 1 {
		return errors.New("direction must be a single step")
	}
	return nil
}

func (p PositionPayload) Validate() error {
	const limit = 1 << 20
	if p.X < -limit || p.X > limit || p.Y < -limit || p.Y > limit {
		return errors.New("position out of bounds")
	}
	return nil
}

func (c ClientCommand) Validate() error {
	if c.Action == "" {
		return errors.New("action is required")
	}
	return nil
}
