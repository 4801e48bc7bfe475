package models

// Selection is the decoded solver result: the chosen items in ascending
// index order and their totals.
type Selection struct {
	Indices     []int     `json:"indices"`
	Weights     []float64 `json:"weights"`
	Costs       []float64 `json:"costs"`
	TotalWeight float64   `json:"total_weight"`
	TotalCost   float64   `json:"total_cost"`
	Energy      float64   `json:"energy"`
	Capacity    float64   `json:"capacity"`
}

// Items returns the selected items.
func (s *Selection) Items() []Item {
	items := make([]Item, len(s.Indices))
	for i, idx := range s.Indices {
		items[i] = Item{Index: idx, Cost: s.Costs[i], Weight: s.Weights[i]}
	}
	return items
}

// Utilization returns TotalWeight / Capacity, or 0 for a non-positive capacity.
func (s *Selection) Utilization() float64 {
	if s.Capacity <= 0 {
		return 0
	}
	return s.TotalWeight / s.Capacity
}
