package aggregation

import "sort"

// RankedChoice runs an instant runoff over ranked ballots.
//
// Each round counts every ballot's highest choice that is neither ignored nor
// eliminated. Labels above half of all ballots win. Otherwise every label tied
// at the lowest count is eliminated; labels without first-choice votes in the
// round stay in. It returns nil once every label is eliminated.
func RankedChoice(voters [][]string, ignore []string) []string {
	skip := toSet(ignore)
	candidates := make(map[string]struct{})
	for _, voter := range voters {
		for _, vote := range voter {
			if _, ok := skip[vote]; !ok {
				candidates[vote] = struct{}{}
			}
		}
	}

	majority := len(voters) / 2
	eliminated := make(map[string]struct{})

	for len(eliminated) < len(candidates) {
		counts := make(map[string]int)
		for _, voter := range voters {
			for _, vote := range voter {
				if _, ok := skip[vote]; ok {
					continue
				}
				if _, ok := eliminated[vote]; ok {
					continue
				}
				counts[vote]++
				break
			}
		}

		if len(counts) == 0 {
			return nil
		}

		var winners []string
		min := -1
		for label, count := range counts {
			if count > majority {
				winners = append(winners, label)
			}
			if min == -1 || count < min {
				min = count
			}
		}
		if len(winners) > 0 {
			sort.Strings(winners)
			return winners
		}

		for label, count := range counts {
			if count == min {
				eliminated[label] = struct{}{}
			}
		}
	}
	return nil
}

// RankedChoiceRanking repeats RankedChoice, ignoring the given labels and
// earlier winners, until no label wins.
func RankedChoiceRanking(voters [][]string, ignore []string) [][]string {
	return rank(ignore, func(ignore []string) []string { return RankedChoice(voters, ignore) })
}
