package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProblem(t *testing.T) {
	p, err := NewProblem("demo", []float64{10, 85}, []float64{11, 27})
	require.NoError(t, err)

	require.Len(t, p.Items, 2)
	assert.Equal(t, Item{Index: 1, Cost: 85, Weight: 27}, p.Items[1])
	assert.Equal(t, []float64{10, 85}, p.Costs())
	assert.Equal(t, []float64{11, 27}, p.Weights())
	assert.Equal(t, "demo (2 items)", p.String())
}

func TestNewProblem_LengthMismatch(t *testing.T) {
	_, err := NewProblem("bad", []float64{1, 2}, []float64{1})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestProblem_Validate(t *testing.T) {
	neg := -1.0
	inf := math.Inf(1)

	tests := []struct {
		name    string
		problem Problem
		wantErr string
	}{
		{"ok", Problem{Items: []Item{{Cost: 1, Weight: 0}}}, ""},
		{"nan cost", Problem{Items: []Item{{Cost: math.NaN(), Weight: 1}}}, "cost"},
		{"negative weight", Problem{Items: []Item{{Cost: 1, Weight: -2}}}, "negative"},
		{"negative capacity", Problem{Capacity: &neg}, "capacity -1 is negative"},
		{"infinite capacity", Problem{Capacity: &inf}, "not a finite number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.problem.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestProblem_Reindex(t *testing.T) {
	p := &Problem{Items: []Item{{Index: 9}, {Index: 9}}}
	p.Reindex()
	assert.Equal(t, 0, p.Items[0].Index)
	assert.Equal(t, 1, p.Items[1].Index)
}

func TestSelection_Items(t *testing.T) {
	s := &Selection{
		Indices:     []int{1, 3},
		Weights:     []float64{27, 17},
		Costs:       []float64{85, 50},
		TotalWeight: 44,
		Capacity:    88,
	}
	assert.Equal(t, []Item{{Index: 1, Cost: 85, Weight: 27}, {Index: 3, Cost: 50, Weight: 17}}, s.Items())
	assert.InDelta(t, 0.5, s.Utilization(), 1e-12)
	assert.Zero(t, (&Selection{}).Utilization())
}
