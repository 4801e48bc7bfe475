package models

// Sample is one candidate assignment returned by a solver.
type Sample struct {
	// Assignment maps every variable label of the model to 0 or 1. Values
	// are carried as float64 because solvers report them that way.
	Assignment     map[string]float64 `json:"sample"`
	Energy         float64            `json:"energy"`
	IsFeasible     bool               `json:"is_feasible"`
	NumOccurrences int                `json:"num_occurrences,omitempty"`
}

// SampleSet is the solver's result: a collection of samples in no
// particular order, plus solver-specific info (timings, problem id).
type SampleSet struct {
	Samples []Sample       `json:"samples"`
	Info    map[string]any `json:"info,omitempty"`
}

// Len returns the number of samples.
func (s *SampleSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Samples)
}

// Feasible returns the feasible samples in solver order.
func (s *SampleSet) Feasible() []Sample {
	if s == nil {
		return nil
	}
	var feasible []Sample
	for _, sample := range s.Samples {
		if sample.IsFeasible {
			feasible = append(feasible, sample)
		}
	}
	return feasible
}

// Energies returns the energy of every sample, optionally only feasible ones.
func (s *SampleSet) Energies(feasibleOnly bool) []float64 {
	if s == nil {
		return nil
	}
	energies := make([]float64, 0, len(s.Samples))
	for _, sample := range s.Samples {
		if feasibleOnly && !sample.IsFeasible {
			continue
		}
		energies = append(energies, sample.Energy)
	}
	return energies
}
