// Package confidence holds the placeholder scoring rule for ownership links.
// It is arithmetic over a few evidence flags, not a model.
package confidence

// Evidence describes what is known about a single ownership link.
type Evidence struct {
	PrimarySource bool // from an official registry filing
	Recent        bool // data younger than a year
	PercentKnown  bool // the holding percentage is published
	Inferred      bool // link deduced rather than observed
}

const (
	primaryWeight = 40
	recentWeight  = 20
	percentWeight = 20
	inferredMalus = 20
	minScore      = 0
	maxScore      = 100
)

// Score returns a value in [0, 100].
func Score(e Evidence) int {
	s := 0
	if e.PrimarySource {
		s += primaryWeight
	}
	if e.Recent {
		s += recentWeight
	}
	if e.PercentKnown {
		s += percentWeight
	}
	if e.Inferred {
		s -= inferredMalus
	}
	return clamp(s)
}

func clamp(s int) int {
	if s < minScore {
		return minScore
	}
	if s > maxScore {
		return maxScore
	}
	return s
}
