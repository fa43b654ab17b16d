package aggregation

import "sort"

// FirstPastThePost returns the labels that received the most votes. Ties
// return every tied label; no votes returns an empty slice.
func FirstPastThePost(votes []string) []string {
	counts := make(map[string]int, len(votes))
	for _, v := range votes {
		counts[v]++
	}
	return leaders(counts)
}

// Approval counts each approved label once per voter, skipping ignored
// labels, and returns the most approved. It returns nil when nothing counts.
func Approval(voters [][]string, ignore []string) []string {
	skip := toSet(ignore)
	counts := make(map[string]int)
	for _, voter := range voters {
		for _, vote := range voter {
			if _, ok := skip[vote]; ok {
				continue
			}
			counts[vote]++
		}
	}

	if len(counts) == 0 {
		return nil
	}
	return leaders(counts)
}

// ApprovalRanking repeats Approval, ignoring the given labels and earlier
// winners, until no label is left.
func ApprovalRanking(voters [][]string, ignore []string) [][]string {
	return rank(ignore, func(ignore []string) []string { return Approval(voters, ignore) })
}

// Borda scores a label at position i of a ballot of length n with n-i points.
func Borda(voters [][]string) map[string]float64 {
	result := make(map[string]float64)
	for _, votes := range voters {
		for i, vote := range votes {
			result[vote] += float64(len(votes) - i)
		}
	}
	return result
}

func leaders(counts map[string]int) []string {
	max := 0
	var winners []string
	for label, count := range counts {
		switch {
		case count > max:
			max = count
			winners = append(winners[:0], label)
		case count == max:
			winners = append(winners, label)
		}
	}

	if winners == nil {
		winners = []string{}
	}
	sort.Strings(winners)
	return winners
}

func rank(seed []string, next func(ignore []string) []string) [][]string {
	ranking := [][]string{}
	ignore := append([]string(nil), seed...)
	for {
		winners := next(ignore)
		if len(winners) == 0 {
			return ranking
		}
		ranking = append(ranking, winners)
		ignore = append(ignore, winners...)
	}
}

func toSet(labels []string) map[string]struct{} {
	set := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		set[l] = struct{}{}
	}
	return set
}
