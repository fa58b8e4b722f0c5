// internal/scoring/composite.go
package scoring

import "math"

// Subscores bundles the four [0,1] component values fed to the composite.
type Subscores struct {
	Must float64
	Nice float64
	Year float64
	Role float64
}

// Combine applies the config's weights to the sub-scores, rounds to 0-100,
// and enforces the must-cap ceiling when any must requirement is unmet.
//
// Weighted averaging alone cannot guarantee a candidate missing a hard
// requirement ranks low; the cap enforces must-have semantics on the
// composite regardless of weight tuning. The must sub-score itself still
// reports the true fractional satisfaction.
func Combine(sub Subscores, mustGaps []string, cfg Config) *Score {
	raw := cfg.Weights.Must*sub.Must +
		cfg.Weights.Nice*sub.Nice +
		cfg.Weights.Year*sub.Year +
		cfg.Weights.Role*sub.Role

	total := int(math.Round(raw * 100))

	capped := cfg.MustCapEnabled && len(mustGaps) > 0 && total > cfg.MustCapValue
	if capped {
		total = cfg.MustCapValue
	}

	if total < 0 {
		total = 0
	}
	if total > 100 {
		total = 100
	}

	gaps := mustGaps
	if gaps == nil {
		gaps = []string{}
	}

	return &Score{
		MustScore:     sub.Must,
		NiceScore:     sub.Nice,
		YearScore:     sub.Year,
		RoleScore:     sub.Role,
		MustGaps:      gaps,
		TotalFit0100:  total,
		Capped:        capped,
		ConfigVersion: cfg.Version,
	}
}

// Compute is the sole scoring entry point: it runs the four sub-score
// calculators against the job and candidate, then combines them under the
// given config, tagging the result with the config version used.
//
// The computation is pure and stateless and safe to call from any number
// of goroutines concurrently; the config is read-only.
//
// The only possible error is a ConfigurationIntegrityError from role
// scoring, in which case no partial Score is returned.
func Compute(job JobRequirements, candidate CandidateProfile, cfg Config) (*Score, error) {
	mustScore, mustGaps := MustScore(job.MustRequirements, &candidate)
	niceScore := NiceScore(job.NiceRequirements, &candidate, cfg.NiceTopN)
	yearScore := YearScore(&job, &candidate)

	roleScore, err := RoleScore(job.ExpectedRole, candidate.Roles, cfg.RoleDistance)
	if err != nil {
		return nil, err
	}

	sub := Subscores{
		Must: mustScore,
		Nice: niceScore,
		Year: yearScore,
		Role: roleScore,
	}
	return Combine(sub, mustGaps, cfg), nil
}
