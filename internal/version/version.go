// Package version - сведения о сборке. Номер сборки пишется в каждую
// запись партии, при воспроизведении чужой записи выдаётся предупреждение.
package version

import (
	"errors"
	"fmt"
	"time"
)

// Задаются линковщиком:
//
//	-ldflags "-X lizard-state/internal/version.BuildDate=2025-12-06"
var (
	BuildDate   string // YYYY-MM-DD, UTC
	BuildCommit string
	BuildBranch string
	BuildCI     string
)

// Номер сборки - число дней от epoch.
var epoch = time.Date(2025, time.December, 4, 0, 0, 0, 0, time.UTC)

var ErrBuildMismatch = errors.New("recorded by another build")

// BuildInfo - ответ /version и команды version.
type BuildInfo struct {
	Build  uint32 `json:"build"`
	Date   string `json:"date,omitempty"`
	Commit string `json:"commit,omitempty"`
	Branch string `json:"branch,omitempty"`
	CI     string `json:"ci,omitempty"`
	Known  bool   `json:"known"`
	Error  string `json:"error,omitempty"`
}

// BuildNumber переводит дату сборки в номер.
func BuildNumber(date string) (uint32, error) {
	if date == "" {
		return 0, errors.New("build date is not set")
	}
	t, err := time.ParseInLocation(time.DateOnly, date, time.UTC)
	if err != nil {
		return 0, fmt.Errorf("bad build date %q: %w", date, err)
	}
	if t.Before(epoch) {
		return 0, fmt.Errorf("build date %s predates %s", date, epoch.Format(time.DateOnly))
	}
	// В UTC сутки всегда 24 часа.
	return uint32(t.Sub(epoch) / (24 * time.Hour)), nil
}

// Build - номер текущей сборки, 0 если дата не задана.
func Build() uint32 {
	n, err := BuildNumber(BuildDate)
	if err != nil {
		return 0
	}
	return n
}

func Current() BuildInfo {
	info := BuildInfo{
		Date:   BuildDate,
		Commit: BuildCommit,
		Branch: BuildBranch,
		CI:     BuildCI,
	}
	n, err := BuildNumber(BuildDate)
	if err != nil {
		info.Error = err.Error()
		return info
	}
	info.Build, info.Known = n, true
	return info
}

// CheckReplay сверяет номер сборки из записи с текущим. Неизвестный номер
// с любой стороны не считается расхождением: сверять не с чем.
func CheckReplay(recorded uint32) error {
	current := Build()
	if recorded == 0 || current == 0 || recorded == current {
		return nil
	}
	return fmt.Errorf("%w: build %d, running %d", ErrBuildMismatch, recorded, current)
}

func String() string {
	info := Current()
	if !info.Known {
		return "lizard-state dev build (" + info.Error + ")"
	}
	s := fmt.Sprintf("lizard-state build %d (%s)", info.Build, info.Date)
	if info.Commit != "" {
		s += " " + info.Commit
		if info.Branch != "" {
			s += "@" + info.Branch
		}
	}
	if info.CI != "" {
		s += " ci:" + info.CI
	}
	return s
}
