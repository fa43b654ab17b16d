package aggregation

import "math"

type Options struct {
	// Normalize scales each voter's credits so they sum to one.
	Normalize bool
	// Quadratic replaces each credit with its square root, after Normalize.
	Quadratic bool
}

// Fractional sums every voter's credits per label.
func Fractional(voters []map[string]float64, opts Options) map[string]float64 {
	result := make(map[string]float64)
	for _, voter := range voters {
		for label, credit := range opts.Apply(voter) {
			result[label] += credit
		}
	}
	return result
}

func (o Options) Apply(votes map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(votes))
	for k, v := range votes {
		out[k] = v
	}

	if o.Normalize {
		normalize(out)
	}
	if o.Quadratic {
		for k, v := range out {
			out[k] = math.Sqrt(v)
		}
	}
	return out
}

func normalize(votes map[string]float64) {
	sum := 0.0
	for _, v := range votes {
		sum += v
	}
	if sum == 0 {
		return
	}
	for k, v := range votes {
		votes[k] = v / sum
	}
}
