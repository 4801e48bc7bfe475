package models

import (
	"fmt"
	"math"
)

// Item is one candidate for the knapsack. Index is the 0-based position in
// the input and is the item's identity for the rest of the run.
type Item struct {
	Index  int     `json:"index" yaml:"-"`
	Name   string  `json:"name,omitempty" yaml:"name,omitempty"`
	Cost   float64 `json:"cost" yaml:"cost"`
	Weight float64 `json:"weight" yaml:"weight"`
}

// Problem is a single knapsack instance: items plus an optional capacity.
// A nil Capacity means the default capacity derived from the weights.
type Problem struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Capacity    *float64 `json:"capacity,omitempty" yaml:"capacity,omitempty"`
	Items       []Item   `json:"items" yaml:"items"`
}

// NewProblem builds a problem from index-aligned cost and weight columns.
func NewProblem(name string, costs, weights []float64) (*Problem, error) {
	if len(costs) != len(weights) {
		return nil, invalidInputf("%d costs but %d weights", len(costs), len(weights))
	}
	items := make([]Item, len(costs))
	for i := range costs {
		items[i] = Item{Index: i, Cost: costs[i], Weight: weights[i]}
	}
	return &Problem{Name: name, Items: items}, nil
}

// Costs returns the cost column in index order.
func (p *Problem) Costs() []float64 {
	costs := make([]float64, len(p.Items))
	for i, it := range p.Items {
		costs[i] = it.Cost
	}
	return costs
}

// Weights returns the weight column in index order.
func (p *Problem) Weights() []float64 {
	weights := make([]float64, len(p.Items))
	for i, it := range p.Items {
		weights[i] = it.Weight
	}
	return weights
}

// Reindex sets every item's Index to its position. Loaders call it after
// decoding so the index always matches input order.
func (p *Problem) Reindex() {
	for i := range p.Items {
		p.Items[i].Index = i
	}
}

// Validate checks the item data without encoding it.
func (p *Problem) Validate() error {
	for i, it := range p.Items {
		if !isFinite(it.Cost) {
			return invalidInputf("item %d: cost %v is not a finite number", i, it.Cost)
		}
		if !isFinite(it.Weight) {
			return invalidInputf("item %d: weight %v is not a finite number", i, it.Weight)
		}
		if it.Weight < 0 {
			return invalidInputf("item %d: weight %v is negative", i, it.Weight)
		}
	}
	if p.Capacity != nil {
		if !isFinite(*p.Capacity) {
			return invalidInputf("capacity %v is not a finite number", *p.Capacity)
		}
		if *p.Capacity < 0 {
			return invalidInputf("capacity %v is negative", *p.Capacity)
		}
	}
	return nil
}

func (p *Problem) String() string {
	return fmt.Sprintf("%s (%d items)", p.Name, len(p.Items))
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
