package handlers

import (
	"encoding/json"
	"fmt"

	"lizard-state/internal/domain"
	"lizard-state/pkg/api"
)

// WithPayload собирает TargetParser из типизированного DTO.
// Берёт на себя Unmarshal и Validate.
func WithPayload[T any](convert func(payload T) domain.Target) TargetParser {
	return func(raw json.RawMessage) (domain.Target, error) {
		var payload T

		// 1. Распаковка JSON
		if len(raw) == 0 {
			return domain.Target{}, fmt.Errorf("payload is required")
		}
		if err := json.Unmarshal(raw, &payload); err != nil {
			return domain.Target{}, fmt.Errorf("invalid payload format: %w", err)
		}

		// 2. Автоматическая валидация
		if v, ok := any(payload).(api.Validator); ok {
			if err := v.Validate(); err != nil {
				return domain.Target{}, fmt.Errorf("validation failed: %w", err)
			}
		}

		// 3. Конвертация в цель
		return convert(payload), nil
	}
}

// WithEmptyPayload - для действий без цели. Входящий JSON игнорируется.
func WithEmptyPayload() TargetParser {
	return func(json.RawMessage) (domain.Target, error) {
		return domain.NoTarget(), nil
	}
}
