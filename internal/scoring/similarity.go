// internal/scoring/similarity.go
package scoring

import "strings"

// Stopwords carry no matching signal and are stripped before comparison.
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "as": {}, "at": {}, "be": {}, "by": {},
	"for": {}, "from": {}, "in": {}, "is": {}, "of": {}, "on": {}, "or": {},
	"the": {}, "to": {}, "with": {}, "years": {}, "year": {}, "experience": {},
	"using": {}, "knowledge": {}, "strong": {}, "plus": {},
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// tokens splits a normalized string into its set of meaningful tokens.
// Punctuation and digits are treated as separators so "Go (5+ yrs)" and
// "go" share vocabulary.
func tokens(s string) map[string]struct{} {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		switch {
		case r >= 'a' && r <= 'z':
			return false
		case r == '+' || r == '#': // keep c++, c#
			return false
		}
		return true
	})

	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if _, stop := stopwords[f]; stop {
			continue
		}
		if !strings.ContainsFunc(f, func(r rune) bool { return r >= 'a' && r <= 'z' }) {
			continue // bare punctuation left over from splitting, e.g. "+"
		}
		set[f] = struct{}{}
	}
	return set
}

// Similarity estimates how well a candidate signal matches a requirement,
// in [0,1]. It is a pure function: lowercase/whitespace-insensitive,
// deterministic, and safe for concurrent use.
//
// Identical strings score 1.0. Otherwise the overlap coefficient over
// meaningful token sets is used: |A∩B| / min(|A|,|B|). A short signal such
// as the skill "go" therefore fully matches a longer requirement that
// contains it, while disjoint vocabulary scores 0. Adding shared tokens to
// either side never lowers the score.
func Similarity(requirement, signal string) float64 {
	if normalize(requirement) == normalize(signal) {
		return 1.0
	}

	a := tokens(requirement)
	b := tokens(signal)
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	small, large := a, b
	if len(b) < len(a) {
		small, large = b, a
	}

	shared := 0
	for t := range small {
		if _, ok := large[t]; ok {
			shared++
		}
	}
	return float64(shared) / float64(len(small))
}

// bestSimilarity returns the highest similarity between a requirement and
// any of the given candidate signals.
func bestSimilarity(requirement string, signals []string) float64 {
	best := 0.0
	for _, sig := range signals {
		if sim := Similarity(requirement, sig); sim > best {
			best = sim
		}
	}
	return best
}
