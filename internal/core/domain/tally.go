package domain

import "github.com/google/uuid"

type OptionCount struct {
	Option     string  `json:"option"`
	Votes      int64   `json:"votes"`
	Percentage float64 `json:"percentage"`
}

// Tally is a point-in-time snapshot of a poll's counts, in option order.
type Tally struct {
	PollID  uuid.UUID     `json:"poll_id"`
	Title   string        `json:"title,omitempty"`
	Results []OptionCount `json:"results"`
	Total   int64         `json:"total"`
	Winners []string      `json:"winners"`
}

// Summarize fills Total, the percentages and Winners from the raw counts.
func (t *Tally) Summarize() {
	t.Total = 0
	var max int64
	for _, r := range t.Results {
		t.Total += r.Votes
		if r.Votes > max {
			max = r.Votes
		}
	}

	t.Winners = []string{}
	for i := range t.Results {
		r := &t.Results[i]
		r.Percentage = 0
		if t.Total > 0 {
			r.Percentage = float64(r.Votes) / float64(t.Total) * 100
			if r.Votes == max {
				t.Winners = append(t.Winners, r.Option)
			}
		}
	}
}

// Counts returns the tally as an option→votes map.
func (t *Tally) Counts() map[string]int64 {
	counts := make(map[string]int64, len(t.Results))
	for _, r := range t.Results {
		counts[r.Option] = r.Votes
	}
	return counts
}
