// Package decoder interprets a solver's sample set as a knapsack selection.
package decoder

import (
	"fmt"
	"math"
	"slices"
	"sort"

	"github.com/spboyer/knapsack/internal/models"
)

// DefaultTolerance is how far a reported binary value may drift from 0 or 1.
const DefaultTolerance = 1e-6

// EnergyEpsilon is the largest energy difference still treated as a tie.
const EnergyEpsilon = 1e-9

// TieBreak picks among feasible samples that share the minimum energy.
type TieBreak string

const (
	// TieBreakFirst keeps the first minimum-energy sample in solver order.
	TieBreakFirst TieBreak = "first"

	// TieBreakLexicographic keeps the sample whose ascending list of selected
	// indices is lexicographically smallest, independent of solver order.
	TieBreakLexicographic TieBreak = "lexicographic"
)

// ParseTieBreak validates a tie-break policy name. An empty name means TieBreakFirst.
func ParseTieBreak(s string) (TieBreak, error) {
	switch TieBreak(s) {
	case "", TieBreakFirst:
		return TieBreakFirst, nil
	case TieBreakLexicographic:
		return TieBreakLexicographic, nil
	default:
		return "", fmt.Errorf("%w: unknown tie-break policy %q (want %q or %q)", models.ErrInvalidInput, s, TieBreakFirst, TieBreakLexicographic)
	}
}

// Decoder turns sample sets into selections. The zero value uses
// DefaultTolerance and TieBreakFirst.
type Decoder struct {
	Tolerance float64
	TieBreak  TieBreak
}

// New returns a Decoder with default settings.
func New() *Decoder {
	return &Decoder{Tolerance: DefaultTolerance, TieBreak: TieBreakFirst}
}

// candidate is a feasible sample with its selection already decoded.
type candidate struct {
	sample  models.Sample
	indices []int
}

// Decode picks the minimum-energy feasible sample and maps it back to items.
//
// It fails with models.ErrInvalidInput when costs and weights are not
// aligned, models.ErrNoFeasibleSolution when no sample is feasible, and
// models.ErrDecode when a sample does not match the encoded model.
func (d *Decoder) Decode(set *models.SampleSet, costs, weights []float64, capacity float64) (*models.Selection, error) {
	if len(costs) != len(weights) {
		return nil, fmt.Errorf("%w: %d costs but %d weights", models.ErrInvalidInput, len(costs), len(weights))
	}
	n := len(costs)

	feasible := set.Feasible()
	if len(feasible) == 0 {
		return nil, fmt.Errorf("%w: %d samples returned, none satisfy the capacity constraint", models.ErrNoFeasibleSolution, set.Len())
	}

	best, err := d.pick(feasible, n)
	if err != nil {
		return nil, err
	}

	sel := &models.Selection{
		Indices:  best.indices,
		Weights:  make([]float64, len(best.indices)),
		Costs:    make([]float64, len(best.indices)),
		Energy:   best.sample.Energy,
		Capacity: capacity,
	}
	for i, idx := range best.indices {
		sel.Weights[i] = weights[idx]
		sel.Costs[i] = costs[idx]
		sel.TotalWeight += weights[idx]
		sel.TotalCost += costs[idx]
	}

	if err := d.verify(sel); err != nil {
		return nil, err
	}
	return sel, nil
}

// pick returns the minimum-energy candidate according to the tie-break
// policy. Every feasible sample is decoded first, so a malformed sample fails
// the decode wherever it appears in solver order.
func (d *Decoder) pick(feasible []models.Sample, n int) (*candidate, error) {
	candidates := make([]candidate, len(feasible))
	for i, s := range feasible {
		indices, err := d.selectedIndices(s, n)
		if err != nil {
			return nil, err
		}
		candidates[i] = candidate{sample: s, indices: indices}
	}

	best := &candidates[0]
	for i := 1; i < len(candidates); i++ {
		c := &candidates[i]
		switch {
		case tiedEnergy(c.sample.Energy, best.sample.Energy):
			if d.policy() == TieBreakLexicographic && slices.Compare(c.indices, best.indices) < 0 {
				best = c
			}
		case c.sample.Energy < best.sample.Energy:
			best = c
		}
	}
	return best, nil
}

// selectedIndices returns the ascending indices of variables set to 1.
func (d *Decoder) selectedIndices(s models.Sample, n int) ([]int, error) {
	tol := d.tolerance()
	indices := []int{}
	for label, v := range s.Assignment {
		switch {
		case math.Abs(v-1) <= tol:
			idx, err := models.ParseVariableLabel(label, n)
			if err != nil {
				return nil, err
			}
			indices = append(indices, idx)
		case math.Abs(v) <= tol:
			// unselected
		default:
			return nil, fmt.Errorf("%w: variable %q has non-binary value %v", models.ErrDecode, label, v)
		}
	}
	sort.Ints(indices)
	return indices, nil
}

// verify checks the post-conditions that tie a selection to its sample:
// the weight fits the capacity and the cost equals the negated energy.
func (d *Decoder) verify(sel *models.Selection) error {
	if sel.TotalWeight > sel.Capacity+models.FeasibilityTolerance*math.Max(1, math.Abs(sel.Capacity)) {
		return fmt.Errorf("%w: sample marked feasible selects weight %v over capacity %v", models.ErrDecode, sel.TotalWeight, sel.Capacity)
	}
	if !matchesEnergy(sel.TotalCost, -sel.Energy) {
		return fmt.Errorf("%w: selected cost %v does not match sample energy %v", models.ErrDecode, sel.TotalCost, sel.Energy)
	}
	return nil
}

// tiedEnergy reports whether two energies tie. The epsilon is absolute and
// independent of the binary tolerance.
func tiedEnergy(a, b float64) bool {
	return math.Abs(a-b) <= EnergyEpsilon
}

// matchesEnergy compares a recomputed cost with a reported energy, allowing
// for summation rounding.
func matchesEnergy(cost, energy float64) bool {
	return math.Abs(cost-energy) <= EnergyEpsilon*math.Max(1, math.Max(math.Abs(cost), math.Abs(energy)))
}

func (d *Decoder) tolerance() float64 {
	if d.Tolerance <= 0 {
		return DefaultTolerance
	}
	return d.Tolerance
}

func (d *Decoder) policy() TieBreak {
	if d.TieBreak == "" {
		return TieBreakFirst
	}
	return d.TieBreak
}
