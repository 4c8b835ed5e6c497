package domain

import (
	"fmt"
	"strconv"
)

// EntityID - индекс сущности в EntitySet. Выдаётся последовательно с нуля.
type EntityID uint32

func (id EntityID) String() string {
	return "#" + strconv.FormatUint(uint64(id), 10)
}

// ParseEntityID принимает "3" или "#3".
func ParseEntityID(s string) (EntityID, error) {
	if len(s) > 0 && s[0] == '#' {
		s = s[1:]
	}
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid entity id %q: %w", s, err)
	}
	return EntityID(v), nil
}
