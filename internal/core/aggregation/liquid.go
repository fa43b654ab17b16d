package aggregation

import (
	"sort"

	"gonum.org/v1/gonum/mat"
)

// LiquidIterations is the number of delegation steps LiquidDemocracy follows.
const LiquidIterations = 10_000

type LiquidResult struct {
	Results   map[string]float64 `json:"results"`
	Influence map[string]float64 `json:"influence"`
}

// LiquidDemocracy resolves delegated votes. Every key of voters is a
// delegate; every target that is not a delegate is a policy. A delegate's
// weight flows to policies directly or through other delegates.
//
// Results holds the weight that reached each policy. Influence holds, per
// delegate, the weight routed through them relative to what came back.
func LiquidDemocracy(voters map[string]map[string]float64, opts Options) LiquidResult {
	delegates, policies := liquidLabels(voters)
	result := LiquidResult{
		Results:   make(map[string]float64, len(policies)),
		Influence: make(map[string]float64, len(delegates)),
	}
	if len(delegates) == 0 {
		return result
	}

	m := liquidMatrix(voters, delegates, policies, opts)
	n, d := len(delegates)+len(policies), len(delegates)

	a := identity(n)
	sum := identity(n)
	next := mat.NewDense(n, n, nil)
	for i := 0; i < LiquidIterations; i++ {
		next.Mul(a, m)
		a, next = next, a
		sum.Add(sum, a)
	}

	for p, policy := range policies {
		row := d + p
		total := 0.0
		for col := 0; col < d; col++ {
			total += a.At(row, col)
		}
		result.Results[policy] = total
	}

	for i, delegate := range delegates {
		total := 0.0
		for col := 0; col < d; col++ {
			total += sum.At(i, col)
		}
		result.Influence[delegate] = total / sum.At(i, i)
	}
	return result
}

// liquidLabels returns the sorted delegates and the sorted policies.
func liquidLabels(voters map[string]map[string]float64) ([]string, []string) {
	delegates := make([]string, 0, len(voters))
	for name := range voters {
		delegates = append(delegates, name)
	}
	sort.Strings(delegates)

	seen := make(map[string]struct{})
	var policies []string
	for _, votes := range voters {
		for target := range votes {
			if _, isDelegate := voters[target]; isDelegate {
				continue
			}
			if _, ok := seen[target]; ok {
				continue
			}
			seen[target] = struct{}{}
			policies = append(policies, target)
		}
	}
	sort.Strings(policies)
	return delegates, policies
}

// liquidMatrix lays delegates out first, then policies. Column j holds what
// node j passes on: a delegate's weights, or a policy keeping its own weight.
func liquidMatrix(voters map[string]map[string]float64, delegates, policies []string, opts Options) *mat.Dense {
	d := len(delegates)
	n := d + len(policies)

	index := make(map[string]int, n)
	for i, name := range delegates {
		index[name] = i
	}
	for i, name := range policies {
		index[name] = d + i
	}

	m := mat.NewDense(n, n, nil)
	for col, delegate := range delegates {
		for target, weight := range opts.Apply(voters[delegate]) {
			m.Set(index[target], col, weight)
		}
	}
	for i := range policies {
		m.Set(d+i, d+i, 1)
	}
	return m
}

func identity(n int) *mat.Dense {
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
	}
	return m
}
