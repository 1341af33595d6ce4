package roster

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Mode selects the constraint and objective variant of a solve.
type Mode int

const (
	ModeNormal Mode = iota
	ModeWildcard
	ModeLimitless
	ModeDrsBoost
)

// AllModes lists every mode in reporting order.
func AllModes() []Mode {
	return []Mode{ModeNormal, ModeWildcard, ModeLimitless, ModeDrsBoost}
}

func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeWildcard:
		return "wildcard"
	case ModeLimitless:
		return "limitless"
	case ModeDrsBoost:
		return "drs"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// SolveName is the human-readable name of a mode.
func (m Mode) SolveName() string {
	switch m {
	case ModeNormal:
		return "Normal"
	case ModeWildcard:
		return "Wildcard"
	case ModeLimitless:
		return "Limitless"
	case ModeDrsBoost:
		return "DRS Boost"
	default:
		return m.String()
	}
}

// ParseMode accepts a mode name or its menu number.
func ParseMode(value string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "normal", "1":
		return ModeNormal, nil
	case "wildcard", "2":
		return ModeWildcard, nil
	case "limitless", "3":
		return ModeLimitless, nil
	case "drs", "drs-boost", "drs_boost", "drsboost", "extra-drs", "4":
		return ModeDrsBoost, nil
	default:
		return ModeNormal, fmt.Errorf("unknown solve mode %q", value)
	}
}

// MarshalJSON encodes the mode by name.
func (m Mode) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON decodes a mode name.
func (m *Mode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseMode(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// boostTiers lists the boost tiers a mode assigns.
func (m Mode) boostTiers() []BoostTier {
	switch m {
	case ModeDrsBoost:
		return []BoostTier{Boost2x, Boost3x}
	case ModeNormal, ModeWildcard, ModeLimitless:
		return []BoostTier{Boost2x}
	default:
		return nil
	}
}

// unimplementedRelaxation names the relaxation a mode is accepted for but does
// not yet apply. Wildcard and Limitless currently solve exactly like Normal.
func (m Mode) unimplementedRelaxation() string {
	switch m {
	case ModeWildcard:
		return "wildcard relaxation is not implemented; solved with the normal formulation"
	case ModeLimitless:
		return "limitless relaxation is not implemented; solved with the normal formulation"
	case ModeNormal, ModeDrsBoost:
		return ""
	default:
		return ""
	}
}
