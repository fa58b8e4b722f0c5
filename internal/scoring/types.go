// internal/scoring/types.go
package scoring

// Role is the fixed role expectation enumeration.
type Role string

const (
	RoleIC      Role = "IC"
	RoleLead    Role = "Lead"
	RoleManager Role = "Manager"
)

// Roles lists every member of the role enumeration, in canonical order.
// Validation iterates this to check role-distance table completeness.
func Roles() []Role {
	return []Role{RoleIC, RoleLead, RoleManager}
}

// NormalizeRole maps a free-text role label to the enumeration.
// Returns false when the label does not correspond to any known role;
// such labels cannot participate in role scoring.
func NormalizeRole(label string) (Role, bool) {
	switch normalize(label) {
	case "ic", "individual contributor", "engineer", "developer":
		return RoleIC, true
	case "lead", "tech lead", "team lead", "senior":
		return RoleLead, true
	case "manager", "engineering manager", "em", "director":
		return RoleManager, true
	}
	return "", false
}

// JobRequirements holds the extracted requirements of a job posting.
// Immutable once candidates have been scored under it.
type JobRequirements struct {
	MustRequirements []string `json:"mustRequirements"`
	NiceRequirements []string `json:"niceRequirements"`
	ExpectedYears    *float64 `json:"expectedYears,omitempty"`
	ExpectedRole     Role     `json:"expectedRole"`
}

// CandidateProfile is the structured output of the extraction step.
// Produced once per candidate and immutable thereafter.
type CandidateProfile struct {
	Skills          []string            `json:"skills"`
	Roles           []string            `json:"roles"`
	ExperienceYears map[string]*float64 `json:"experienceYears"`
	Highlights      []string            `json:"highlights"`
}

// signals returns every free-text attribute a requirement can match against.
func (p *CandidateProfile) signals() []string {
	out := make([]string, 0, len(p.Skills)+len(p.Highlights))
	out = append(out, p.Skills...)
	out = append(out, p.Highlights...)
	return out
}

// Score is the computed artifact persisted per (candidate, extraction) pair.
type Score struct {
	MustScore    float64  `json:"mustScore"`
	NiceScore    float64  `json:"niceScore"`
	YearScore    float64  `json:"yearScore"`
	RoleScore    float64  `json:"roleScore"`
	MustGaps     []string `json:"mustGaps"`
	TotalFit0100 int      `json:"totalFit0To100"`
	// Capped reports that the must-cap ceiling lowered the weighted
	// total. False when an uncapped total merely equals the cap value.
	Capped        bool `json:"capped"`
	ConfigVersion int  `json:"configVersion"`
}
