// internal/scoring/config.go
package scoring

import (
	"fmt"
	"math"
	"time"
)

// Weight sum must land within this tolerance of 1.0.
const WeightSumTolerance = 0.01

// Weights maps each sub-score to its share of the composite. The keys are
// fixed and structured on purpose: weights never travel through scoring
// logic as opaque maps.
type Weights struct {
	Must float64 `json:"must"`
	Nice float64 `json:"nice"`
	Year float64 `json:"year"`
	Role float64 `json:"role"`
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	return w.Must + w.Nice + w.Year + w.Role
}

// RoleDistance maps (expected role, actual role) to a similarity weight
// in [0,1]. A valid table is complete over the role enumeration.
type RoleDistance map[Role]map[Role]float64

// Clone returns a deep copy so published configs can never be mutated
// through a table handed out to a caller.
func (rd RoleDistance) Clone() RoleDistance {
	out := make(RoleDistance, len(rd))
	for expected, row := range rd {
		cp := make(map[Role]float64, len(row))
		for actual, v := range row {
			cp[actual] = v
		}
		out[expected] = cp
	}
	return out
}

// DefaultRoleDistance is the table seeded for version 1 installs.
func DefaultRoleDistance() RoleDistance {
	return RoleDistance{
		RoleIC:      {RoleIC: 1.0, RoleLead: 0.7, RoleManager: 0.3},
		RoleLead:    {RoleIC: 0.7, RoleLead: 1.0, RoleManager: 0.7},
		RoleManager: {RoleIC: 0.3, RoleLead: 0.7, RoleManager: 1.0},
	}
}

// Config is one published scoring configuration version. Instances are
// immutable once published; a new version replaces the active one
// atomically and prior versions stay retrievable for reproducibility.
type Config struct {
	Version        int          `json:"version"`
	Weights        Weights      `json:"weights"`
	MustCapEnabled bool         `json:"mustCapEnabled"`
	MustCapValue   int          `json:"mustCapValue"`
	NiceTopN       int          `json:"niceTopN"`
	RoleDistance   RoleDistance `json:"roleDistance"`
	CreatedAt      time.Time    `json:"createdAt"`
}

// DefaultConfig mirrors the shipped defaults: must-heavy weighting with the
// cap enabled at 20.
func DefaultConfig() Config {
	return Config{
		Weights:        Weights{Must: 0.45, Nice: 0.20, Year: 0.20, Role: 0.15},
		MustCapEnabled: true,
		MustCapValue:   20,
		NiceTopN:       3,
		RoleDistance:   DefaultRoleDistance(),
	}
}

// Clone returns a deep copy of the config.
func (c Config) Clone() Config {
	cp := c
	cp.RoleDistance = c.RoleDistance.Clone()
	return cp
}

// ValidationError reports why a candidate config cannot be published.
// Non-retryable: the caller must correct the config.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid scoring config: %s", e.Reason)
}

// Validate checks every publish-time invariant:
// weights non-negative and summing to 1.0 ±0.01, cap value in [0,100]
// (the backing rule; UI slider bounds are not authoritative), top-N >= 1,
// and a role-distance table complete over the role enumeration with every
// value in [0,1].
func (c Config) Validate() error {
	if c.Weights.Must < 0 || c.Weights.Nice < 0 || c.Weights.Year < 0 || c.Weights.Role < 0 {
		return &ValidationError{Reason: "weights must be non-negative"}
	}
	// Epsilon slack keeps boundary sums like 0.46+0.20+0.20+0.15 inside
	// the tolerance despite float64 accumulation error.
	if sum := c.Weights.Sum(); math.Abs(sum-1.0) > WeightSumTolerance+1e-9 {
		return &ValidationError{Reason: fmt.Sprintf("weights must sum to 1.0 (got %.4f)", sum)}
	}
	if c.MustCapValue < 0 || c.MustCapValue > 100 {
		return &ValidationError{Reason: fmt.Sprintf("must cap value %d outside [0,100]", c.MustCapValue)}
	}
	if c.NiceTopN < 1 {
		return &ValidationError{Reason: fmt.Sprintf("nice top-N must be >= 1 (got %d)", c.NiceTopN)}
	}

	for _, expected := range Roles() {
		row, ok := c.RoleDistance[expected]
		if !ok {
			return &ValidationError{Reason: fmt.Sprintf("role distance table missing row for expected role %q", expected)}
		}
		for _, actual := range Roles() {
			v, ok := row[actual]
			if !ok {
				return &ValidationError{Reason: fmt.Sprintf("role distance table missing pair (%s, %s)", expected, actual)}
			}
			if v < 0 || v > 1 {
				return &ValidationError{Reason: fmt.Sprintf("role distance (%s, %s) = %.3f outside [0,1]", expected, actual, v)}
			}
		}
	}
	return nil
}
