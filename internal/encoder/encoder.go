// Package encoder turns knapsack item data into a constrained optimization
// model that any solver backend can sample.
//
// Every item becomes one binary variable labelled with its index. The
// objective carries -cost per item because solvers minimize, and a single
// "capacity" constraint bounds the total weight.
package encoder

import (
	"fmt"
	"math"

	"github.com/spboyer/knapsack/internal/models"
)

// CapacityLabel is the label of the weight constraint.
const CapacityLabel = "capacity"

// DefaultCapacityRatio is the share of the total weight used when no
// capacity is supplied.
const DefaultCapacityRatio = 0.8

// Encode builds the model for index-aligned costs and weights. It fails with
// models.ErrInvalidInput on mismatched lengths, non-finite numbers, or
// negative weights. Any finite capacity is accepted, including zero or a
// negative bound that leaves only infeasible selections.
func Encode(costs, weights []float64, capacity float64) (*models.Model, error) {
	if len(costs) != len(weights) {
		return nil, fmt.Errorf("%w: %d costs but %d weights", models.ErrInvalidInput, len(costs), len(weights))
	}
	if !isFinite(capacity) {
		return nil, fmt.Errorf("%w: capacity %v is not a finite number", models.ErrInvalidInput, capacity)
	}

	n := len(costs)
	model := &models.Model{
		Variables: make([]models.Variable, 0, n),
		Objective: models.Objective{
			Sense:  models.SenseMinimize,
			Linear: make([]models.LinearTerm, 0, n),
		},
	}
	constraint := models.Constraint{
		Label:    CapacityLabel,
		Linear:   make([]models.LinearTerm, 0, n),
		Relation: models.RelationLessEqual,
		RHS:      capacity,
	}

	for i := 0; i < n; i++ {
		if !isFinite(costs[i]) {
			return nil, fmt.Errorf("%w: item %d: cost %v is not a finite number", models.ErrInvalidInput, i, costs[i])
		}
		if !isFinite(weights[i]) || weights[i] < 0 {
			return nil, fmt.Errorf("%w: item %d: weight %v must be a finite non-negative number", models.ErrInvalidInput, i, weights[i])
		}

		label := models.VariableLabel(i)
		model.Variables = append(model.Variables, models.Variable{Label: label, Type: models.VarTypeBinary})
		model.Objective.Linear = append(model.Objective.Linear, models.LinearTerm{Label: label, Coefficient: -costs[i]})
		// zero weights stay in the constraint so every variable is present in it
		constraint.Linear = append(constraint.Linear, models.LinearTerm{Label: label, Coefficient: weights[i]})
	}

	model.Constraints = []models.Constraint{constraint}
	return model, nil
}

// EncodeProblem encodes a loaded problem, resolving its capacity first.
func EncodeProblem(p *models.Problem) (*models.Model, float64, error) {
	if err := p.Validate(); err != nil {
		return nil, 0, err
	}
	weights := p.Weights()
	capacity, err := ResolveCapacity(weights, p.Capacity)
	if err != nil {
		return nil, 0, err
	}
	model, err := Encode(p.Costs(), weights, capacity)
	if err != nil {
		return nil, 0, err
	}
	return model, capacity, nil
}

// DefaultCapacity returns floor(0.8 * sum(weights)).
func DefaultCapacity(weights []float64) float64 {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	return math.Floor(DefaultCapacityRatio * total)
}

// ResolveCapacity returns the override when set, otherwise the default
// capacity. A negative or non-finite override is rejected.
func ResolveCapacity(weights []float64, override *float64) (float64, error) {
	if override == nil {
		return DefaultCapacity(weights), nil
	}
	c := *override
	if !isFinite(c) {
		return 0, fmt.Errorf("%w: capacity %v is not a finite number", models.ErrInvalidInput, c)
	}
	if c < 0 {
		return 0, fmt.Errorf("%w: capacity %v is negative", models.ErrInvalidInput, c)
	}
	return c, nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
