package domain

import (
	"slices"
	"strings"
)

// Bounds and defaults for lobby configuration
const (
	MinLocksPerRound     = 3
	MaxLocksPerRound     = 5
	DefaultLocksPerRound = 4

	MinRoundTimeSeconds     = 360
	MaxRoundTimeSeconds     = 720
	DefaultRoundTimeSeconds = 600

	MinTurnTimeSeconds     = 10
	MaxTurnTimeSeconds     = 300
	DefaultTurnTimeSeconds = 60

	// MixedPack selects locks from the union of every pack
	MixedPack = "mixed"
)

// Settings holds the lobby configuration of a game
type Settings struct {
	Mode                  Mode     `json:"mode"`
	ContentPack           string   `json:"contentPack"`
	ExcludedTags          []string `json:"excludedTags"`
	LocksPerRound         int      `json:"locksPerRound"`
	RoundTimeLimitSeconds int      `json:"roundTimeLimitSeconds"`
	TurnTimeLimitSeconds  int      `json:"turnTimeLimitSeconds"`
}

// DefaultSettings returns the default game settings
func DefaultSettings() Settings {
	return Settings{
		Mode:                  ModeCoop,
		ContentPack:           MixedPack,
		ExcludedTags:          []string{},
		LocksPerRound:         DefaultLocksPerRound,
		RoundTimeLimitSeconds: DefaultRoundTimeSeconds,
		TurnTimeLimitSeconds:  DefaultTurnTimeSeconds,
	}
}

// Normalize fills zero values with defaults and clamps numbers into range
func (s Settings) Normalize() Settings {
	if !s.Mode.Valid() {
		s.Mode = ModeCoop
	}

	s.ContentPack = strings.TrimSpace(s.ContentPack)
	if s.ContentPack == "" {
		s.ContentPack = MixedPack
	}

	tags := make([]string, 0, len(s.ExcludedTags))
	for _, t := range s.ExcludedTags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	slices.Sort(tags)
	s.ExcludedTags = slices.Compact(tags)

	s.LocksPerRound = clampOrDefault(s.LocksPerRound, MinLocksPerRound, MaxLocksPerRound, DefaultLocksPerRound)
	s.RoundTimeLimitSeconds = clampOrDefault(s.RoundTimeLimitSeconds, MinRoundTimeSeconds, MaxRoundTimeSeconds, DefaultRoundTimeSeconds)
	s.TurnTimeLimitSeconds = clampOrDefault(s.TurnTimeLimitSeconds, MinTurnTimeSeconds, MaxTurnTimeSeconds, DefaultTurnTimeSeconds)

	return s
}

func clampOrDefault(v, lo, hi, def int) int {
	switch {
	case v == 0:
		return def
	case v < lo:
		return lo
	case v > hi:
		return hi
	}
	return v
}
