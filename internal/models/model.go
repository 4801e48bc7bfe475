package models

import "math"

// FeasibilityTolerance is the slack allowed when checking a constraint.
const FeasibilityTolerance = 1e-9

// VarType is the domain of a decision variable.
type VarType string

const (
	VarTypeBinary VarType = "BINARY"
)

// Sense is the optimization direction of an objective. Solvers minimize.
type Sense string

const (
	SenseMinimize Sense = "MINIMIZE"
)

// Relation is the comparison operator of a constraint.
type Relation string

const (
	RelationLessEqual    Relation = "<="
	RelationGreaterEqual Relation = ">="
	RelationEqual        Relation = "=="
)

// Variable is a decision variable declared by a model.
type Variable struct {
	Label string  `json:"label" yaml:"label"`
	Type  VarType `json:"type" yaml:"type"`
}

// LinearTerm is coefficient * variable.
type LinearTerm struct {
	Label       string  `json:"label" yaml:"label"`
	Coefficient float64 `json:"coefficient" yaml:"coefficient"`
}

// QuadraticTerm is coefficient * u * v.
type QuadraticTerm struct {
	U           string  `json:"u" yaml:"u"`
	V           string  `json:"v" yaml:"v"`
	Coefficient float64 `json:"coefficient" yaml:"coefficient"`
}

// Objective is the function a solver minimizes. The energy of an assignment
// is the objective evaluated at it.
type Objective struct {
	Sense     Sense           `json:"sense" yaml:"sense"`
	Linear    []LinearTerm    `json:"linear" yaml:"linear"`
	Quadratic []QuadraticTerm `json:"quadratic,omitempty" yaml:"quadratic,omitempty"`
	Offset    float64         `json:"offset,omitempty" yaml:"offset,omitempty"`
}

// Energy evaluates the objective. Variables missing from the assignment count as 0.
func (o *Objective) Energy(assignment map[string]float64) float64 {
	energy := o.Offset
	for _, t := range o.Linear {
		energy += t.Coefficient * assignment[t.Label]
	}
	for _, q := range o.Quadratic {
		energy += q.Coefficient * assignment[q.U] * assignment[q.V]
	}
	return energy
}

// Constraint is a labelled linear inequality or equality.
type Constraint struct {
	Label    string       `json:"label" yaml:"label"`
	Linear   []LinearTerm `json:"linear" yaml:"linear"`
	Relation Relation     `json:"relation" yaml:"relation"`
	RHS      float64      `json:"rhs" yaml:"rhs"`
}

// LHS evaluates the left-hand side of the constraint.
func (c *Constraint) LHS(assignment map[string]float64) float64 {
	lhs := 0.0
	for _, t := range c.Linear {
		lhs += t.Coefficient * assignment[t.Label]
	}
	return lhs
}

// Violation returns how far the assignment is from satisfying the
// constraint, 0 when it is satisfied.
func (c *Constraint) Violation(assignment map[string]float64) float64 {
	lhs := c.LHS(assignment)
	switch c.Relation {
	case RelationLessEqual:
		return math.Max(0, lhs-c.RHS)
	case RelationGreaterEqual:
		return math.Max(0, c.RHS-lhs)
	default:
		return math.Abs(lhs - c.RHS)
	}
}

// Satisfied reports whether the assignment satisfies the constraint.
func (c *Constraint) Satisfied(assignment map[string]float64) bool {
	return c.Violation(assignment) <= FeasibilityTolerance
}

// Model is a constrained optimization model over binary variables, the unit
// of work handed to a solver.
type Model struct {
	Variables   []Variable   `json:"variables" yaml:"variables"`
	Objective   Objective    `json:"objective" yaml:"objective"`
	Constraints []Constraint `json:"constraints" yaml:"constraints"`
}

// NumVariables returns the number of declared variables.
func (m *Model) NumVariables() int {
	return len(m.Variables)
}

// Labels returns the variable labels in declaration order.
func (m *Model) Labels() []string {
	labels := make([]string, len(m.Variables))
	for i, v := range m.Variables {
		labels[i] = v.Label
	}
	return labels
}

// Constraint looks up a constraint by label.
func (m *Model) Constraint(label string) (*Constraint, bool) {
	for i := range m.Constraints {
		if m.Constraints[i].Label == label {
			return &m.Constraints[i], true
		}
	}
	return nil, false
}

// Energy evaluates the objective at the assignment.
func (m *Model) Energy(assignment map[string]float64) float64 {
	return m.Objective.Energy(assignment)
}

// IsFeasible reports whether every constraint holds for the assignment.
func (m *Model) IsFeasible(assignment map[string]float64) bool {
	for i := range m.Constraints {
		if !m.Constraints[i].Satisfied(assignment) {
			return false
		}
	}
	return true
}

// Evaluate builds a Sample for the assignment with its energy and feasibility
// computed against this model.
func (m *Model) Evaluate(assignment map[string]float64) Sample {
	return Sample{
		Assignment:     assignment,
		Energy:         m.Energy(assignment),
		IsFeasible:     m.IsFeasible(assignment),
		NumOccurrences: 1,
	}
}
