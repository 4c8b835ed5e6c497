package utils

import "github.com/oklog/ulid/v2"

// GenerateID создает сортируемый по времени уникальный ID (ULID).
func GenerateID() string {
	return ulid.Make().String()
}
