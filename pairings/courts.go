package pairings

// CourtAssignment is one match placed on a court, courts numbered from 1.
type CourtAssignment struct {
	Court   int     `json:"court"`
	Pairing Pairing `json:"match"`
}

// AssignCourts fills up to courts courts by repeatedly taking the most
// balanced match among the players still waiting. Players not placed are
// returned in pool order.
func AssignCourts(pool []Candidate, metric Metric, courts int) ([]CourtAssignment, []string) {
	waiting := append([]Candidate(nil), pool...)
	assignments := make([]CourtAssignment, 0, courts)

	for court := 1; court <= courts; court++ {
		best, ok := Best(waiting, metric)
		if !ok {
			break
		}
		assignments = append(assignments, CourtAssignment{Court: court, Pairing: best})
		waiting = without(waiting, best.TeamA[0], best.TeamA[1], best.TeamB[0], best.TeamB[1])
	}

	rest := make([]string, 0, len(waiting))
	for _, c := range waiting {
		rest = append(rest, c.Name)
	}
	return assignments, rest
}

func without(pool []Candidate, names ...string) []Candidate {
	drop := make(map[string]struct{}, len(names))
	for _, n := range names {
		drop[n] = struct{}{}
	}
	kept := pool[:0]
	for _, c := range pool {
		if _, ok := drop[c.Name]; !ok {
			kept = append(kept, c)
		}
	}
	return kept
}
