package storage

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"lizard-state/internal/domain"
	"lizard-state/internal/geometry"
)

func (s *ReplayService) Load(path string) (*domain.ReplaySession, error) {
	return LoadFile(path)
}

// LoadFile читает запись партии без ReplayService.
func LoadFile(path string) (*domain.ReplaySession, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ReadBinary(bufio.NewReader(f))
}

// ReadBinary - обратное к WriteBinary.
func ReadBinary(r io.Reader) (*domain.ReplaySession, error) {
	// 1. Читаем заголовок целиком
	var header ReplayFileHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	// Валидация
	if string(header.Magic[:]) != MagicHeader {
		return nil, fmt.Errorf("invalid magic %q", header.Magic[:])
	}
	if header.Version != CurrentVersion {
		return nil, fmt.Errorf("unsupported version: %d (expected %d)", header.Version, CurrentVersion)
	}
	if header.ScenarioLen > MaxScenarioLen {
		return nil, fmt.Errorf("scenario length %d exceeds %d", header.ScenarioLen, MaxScenarioLen)
	}

	// Счётчикам из заголовка не доверяем: память растёт только по мере чтения.
	scenario, err := io.ReadAll(io.LimitReader(r, int64(header.ScenarioLen)))
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}
	if len(scenario) != int(header.ScenarioLen) {
		return nil, fmt.Errorf("failed to read scenario: %w", io.ErrUnexpectedEOF)
	}

	session := &domain.ReplaySession{
		Scenario:  string(scenario),
		Timestamp: header.Timestamp,
		Build:     header.Build,
		Actions:   make([]domain.ReplayAction, 0, min(header.ActionCount, maxPrealloc)),
	}

	// 2. Читаем Actions
	for i := uint32(0); i < header.ActionCount; i++ {
		var ah ActionHeader
		if err := binary.Read(r, binary.LittleEndian, &ah); err != nil {
			return nil, fmt.Errorf("action %d header: %w", i, err)
		}

		body := make([]byte, ah.ActionLen)
		if _, err := io.ReadFull(r, body); err != nil {
			return nil, fmt.Errorf("action %d body: %w", i, err)
		}
		var action domain.Action
		if err := json.Unmarshal(body, &action); err != nil {
			return nil, fmt.Errorf("action %d: %w", i, err)
		}

		var target domain.Target
		switch domain.TargetKind(ah.TargetKind) {
		case domain.TargetNone:
			target = domain.NoTarget()
		case domain.TargetTile:
			target = domain.TileTarget(geometry.Pos(int(ah.TargetX), int(ah.TargetY)))
		case domain.TargetDirection:
			target = domain.DirectionTarget(geometry.Off(int(ah.TargetX), int(ah.TargetY)))
		default:
			return nil, fmt.Errorf("action %d: unknown target kind %d", i, ah.TargetKind)
		}

		session.Actions = append(session.Actions, domain.ReplayAction{
			Round:   ah.Round,
			Actor:   domain.EntityID(ah.Actor),
			Intent:  domain.Intent{Action: action, Target: target},
			Confirm: ah.Confirm != 0,
		})
	}

	return session, nil
}
