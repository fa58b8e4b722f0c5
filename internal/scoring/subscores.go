// internal/scoring/subscores.go
package scoring

import (
	"fmt"
	"sort"
)

// SatisfactionThreshold is the minimum best-match similarity at which a
// requirement counts as satisfied by a candidate signal. Chosen so that an
// exact skill mention inside a longer requirement clears it while loose
// single-token overlap does not.
const SatisfactionThreshold = 0.6

// MustScore returns the fraction of must requirements satisfied by the
// candidate, plus the unsatisfied requirements in job-declared order.
// A job with no must requirements scores 1.0 with empty gaps: there is
// nothing to fail.
func MustScore(mustRequirements []string, profile *CandidateProfile) (float64, []string) {
	if len(mustRequirements) == 0 {
		return 1.0, []string{}
	}

	signals := profile.signals()
	satisfied := 0
	gaps := []string{}

	for _, req := range mustRequirements {
		if bestSimilarity(req, signals) >= SatisfactionThreshold {
			satisfied++
		} else {
			gaps = append(gaps, req)
		}
	}

	return float64(satisfied) / float64(len(mustRequirements)), gaps
}

// NiceScore averages the top-N best-match similarities across nice
// requirements. Only the strongest matches count, so a candidate is not
// penalized for missing every nice-to-have. An empty nice list scores 1.0
// by deliberate policy: no desired signal means nothing is unsatisfied.
func NiceScore(niceRequirements []string, profile *CandidateProfile, topN int) float64 {
	if len(niceRequirements) == 0 {
		return 1.0
	}
	if topN < 1 {
		topN = 1
	}

	signals := profile.signals()
	sims := make([]float64, 0, len(niceRequirements))
	for _, req := range niceRequirements {
		sims = append(sims, bestSimilarity(req, signals))
	}

	sort.Sort(sort.Reverse(sort.Float64Slice(sims)))
	if topN > len(sims) {
		topN = len(sims)
	}

	sum := 0.0
	for _, s := range sims[:topN] {
		sum += s
	}
	return sum / float64(topN)
}

// YearScore compares the candidate's relevant experience against the job's
// expected floor. The representative figure is the maximum known years
// across skills that match any job requirement at the satisfaction
// threshold. Linear ratio, capped at 1.0: exceeding the expectation earns
// no extra credit, and a nil expectation always scores 1.0.
func YearScore(job *JobRequirements, profile *CandidateProfile) float64 {
	if job.ExpectedYears == nil {
		return 1.0
	}
	expected := *job.ExpectedYears
	if expected <= 0 {
		return 1.0
	}

	requirements := make([]string, 0, len(job.MustRequirements)+len(job.NiceRequirements))
	requirements = append(requirements, job.MustRequirements...)
	requirements = append(requirements, job.NiceRequirements...)

	years := 0.0
	for skill, y := range profile.ExperienceYears {
		if y == nil {
			continue // unknown, contributes nothing
		}
		if bestSimilarity(skill, requirements) >= SatisfactionThreshold && *y > years {
			years = *y
		}
	}

	score := years / expected
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// RoleScore takes the best role-distance weight across the candidate's
// normalized roles. An empty or unrecognizable role set scores 0.0: unknown
// is treated as worst case, not neutral, to avoid false positives.
//
// A missing (expected, actual) pair means an incomplete table reached an
// active config. That is a store defect, surfaced as an error rather than
// silently defaulted.
func RoleScore(expectedRole Role, candidateRoles []string, table RoleDistance) (float64, error) {
	row, ok := table[expectedRole]
	if !ok {
		return 0, &ConfigurationIntegrityError{Expected: expectedRole}
	}

	best := 0.0
	for _, label := range candidateRoles {
		actual, ok := NormalizeRole(label)
		if !ok {
			continue
		}
		weight, ok := row[actual]
		if !ok {
			return 0, &ConfigurationIntegrityError{Expected: expectedRole, Actual: actual}
		}
		if weight > best {
			best = weight
		}
	}
	return best, nil
}

// ConfigurationIntegrityError indicates the store allowed a config with an
// incomplete role-distance table to become active. Fatal defect, never a
// normal runtime condition.
type ConfigurationIntegrityError struct {
	Expected Role
	Actual   Role
}

func (e *ConfigurationIntegrityError) Error() string {
	if e.Actual == "" {
		return fmt.Sprintf("role distance table has no row for expected role %q", e.Expected)
	}
	return fmt.Sprintf("role distance table missing pair (%s, %s)", e.Expected, e.Actual)
}
