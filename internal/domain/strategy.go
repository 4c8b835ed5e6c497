package domain

// StrategyImpl выбирает ход NPC. Возвращённое обновление должно сдвинуть
// следующий раунд сущности, иначе планировщик вернёт её снова.
type StrategyImpl interface {
	StrategyName() string
	TakeTurn(f *Floor, subject EntityID) FloorUpdate
}

// Strategy - стёртая стратегия. Нулевое значение пропускает ход.
type Strategy struct {
	impl StrategyImpl
}

func NewStrategy(impl StrategyImpl) Strategy {
	return Strategy{impl: impl}
}

func (s Strategy) IsZero() bool { return s.impl == nil }

func (s Strategy) Name() string {
	if s.impl == nil {
		return ""
	}
	return s.impl.StrategyName()
}

func (s Strategy) TakeTurn(f *Floor, subject EntityID) FloorUpdate {
	if s.impl == nil {
		return Forfeit(f, subject)
	}
	return s.impl.TakeTurn(f, subject)
}

func (s Strategy) MarshalJSON() ([]byte, error) {
	if s.impl == nil {
		return []byte("null"), nil
	}
	return marshalErased(s.Name(), s.impl)
}

func (s *Strategy) UnmarshalJSON(data []byte) error {
	impl, ok, err := unmarshalErased(data, strategyRegistry)
	if err != nil {
		return err
	}
	if !ok {
		*s = Strategy{}
		return nil
	}
	*s = NewStrategy(impl)
	return nil
}
