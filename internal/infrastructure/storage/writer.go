package storage

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"lizard-state/internal/domain"
	"lizard-state/pkg/utils"
)

const (
	MagicHeader string = `LZRP` // 4 байта
	// CurrentVersion 2: в заголовке появился номер сборки.
	CurrentVersion uint32 = 2

	// MaxScenarioLen - предел длины сценария при чтении.
	MaxScenarioLen uint32 = 16 << 20

	maxPrealloc uint32 = 1024
	replayExt          = ".lzrp"
)

// ReplayFileHeader - точное представление заголовка файла в памяти.
// binary.Write умеет писать это целиком, так как тут нет слайсов и строк, только массивы и числа.
type ReplayFileHeader struct {
	Magic       [4]byte // 4 байта
	Version     uint32  // 4 байта
	Timestamp   int64   // 8 байт
	Build       uint32  // 4 байта, 0 - сборка неизвестна
	ScenarioLen uint32  // 4 байта
	ActionCount uint32  // 4 байта
}

// ActionHeader - заголовок каждой записи действия.
// За ним идёт JSON стёртого действия длиной ActionLen.
type ActionHeader struct {
	Round      uint32 // 4
	Actor      uint32 // 4
	Confirm    uint8  // 1
	TargetKind uint8  // 1
	ActionLen  uint16 // 2
	TargetX    int32  // 4 (клетка или dx)
	TargetY    int32  // 4 (клетка или dy)
}

type ReplayService struct {
	SaveDir string
}

func NewReplayService(dir string) (*ReplayService, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create replay dir: %w", err)
	}
	return &ReplayService{SaveDir: dir}, nil
}

// Save пишет запись в файл replay_<id>.lzrp и возвращает путь.
// Пустой id заменяется новым ULID.
func (s *ReplayService) Save(id string, session *domain.ReplaySession) (string, error) {
	if id == "" {
		id = utils.GenerateID()
	}
	path := filepath.Join(s.SaveDir, "replay_"+id+replayExt)

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := WriteBinary(w, session); err != nil {
		return "", err
	}
	return path, w.Flush()
}

// WriteBinary сериализует запись партии.
func WriteBinary(w io.Writer, s *domain.ReplaySession) error {
	if uint64(len(s.Scenario)) > uint64(MaxScenarioLen) {
		return fmt.Errorf("scenario too long: %d", len(s.Scenario))
	}

	// 1. Подготавливаем и пишем ГЛОБАЛЬНЫЙ ЗАГОЛОВОК
	header := ReplayFileHeader{
		Version:     CurrentVersion,
		Timestamp:   s.Timestamp,
		Build:       s.Build,
		ScenarioLen: uint32(len(s.Scenario)),
		ActionCount: uint32(len(s.Actions)),
	}
	copy(header.Magic[:], MagicHeader)

	if err := binary.Write(w, binary.LittleEndian, &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if _, err := io.WriteString(w, s.Scenario); err != nil {
		return fmt.Errorf("failed to write scenario: %w", err)
	}

	// 2. Пишем действия
	for i, act := range s.Actions {
		body, err := json.Marshal(act.Intent.Action)
		if err != nil {
			return fmt.Errorf("action %d: %w", i, err)
		}
		if len(body) > math.MaxUint16 {
			return fmt.Errorf("action %d too long: %d", i, len(body))
		}

		actHeader := ActionHeader{
			Round:      act.Round,
			Actor:      uint32(act.Actor),
			TargetKind: uint8(act.Intent.Target.Kind),
			ActionLen:  uint16(len(body)),
		}
		if act.Confirm {
			actHeader.Confirm = 1
		}
		switch act.Intent.Target.Kind {
		case domain.TargetTile:
			actHeader.TargetX = int32(act.Intent.Target.Tile.X)
			actHeader.TargetY = int32(act.Intent.Target.Tile.Y)
		case domain.TargetDirection:
			actHeader.TargetX = int32(act.Intent.Target.Direction.X)
			actHeader.TargetY = int32(act.Intent.Target.Direction.Y)
		}

		if err := binary.Write(w, binary.LittleEndian, &actHeader); err != nil {
			return err
		}
		if _, err := w.Write(body); err != nil {
			return err
		}
	}

	return nil
}
