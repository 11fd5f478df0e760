package readiness

import (
	"fmt"
	"strings"
)

// Mode selects a readiness strategy.
type Mode uint8

const (
	// ModeAuto classifies the environment at runtime.
	ModeAuto Mode = iota

	// ModeStandard uses a deadline-bounded peek.
	ModeStandard

	// ModeQuiet uses a deadline-bounded peek and suppresses non-timeout errors.
	ModeQuiet

	// ModePoll reads single bytes in a bounded number of attempts.
	ModePoll
)

// String returns the mode name as used in configuration files.
func (m Mode) String() string {
	switch m {
	case ModeAuto:
		return "auto"
	case ModeStandard:
		return "standard"
	case ModeQuiet:
		return "quiet"
	case ModePoll:
		return "poll"
	default:
		return "unknown"
	}
}

// ParseMode parses a mode name (case-insensitive). The empty string is auto.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return ModeAuto, nil
	case "standard":
		return ModeStandard, nil
	case "quiet":
		return ModeQuiet, nil
	case "poll", "polling":
		return ModePoll, nil
	default:
		return ModeAuto, fmt.Errorf("unknown mode %q (must be auto, standard, quiet or poll)", s)
	}
}
