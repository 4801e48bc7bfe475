package main

import (
	"testing"

	"github.com/spboyer/knapsack/internal/models"
	"github.com/spboyer/knapsack/internal/projectconfig"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseParams(t *testing.T) {
	params, err := parseParams([]string{"max_variables=12", "beta_end=2.5", "endpoint=https://solver.example.com/v1", "label=", "debug=true"})
	require.NoError(t, err)

	assert.Equal(t, 12, params["max_variables"])
	assert.Equal(t, 2.5, params["beta_end"])
	assert.Equal(t, "https://solver.example.com/v1", params["endpoint"])
	assert.Equal(t, "", params["label"])
	assert.Equal(t, true, params["debug"])
}

func TestParseParams_Invalid(t *testing.T) {
	for _, in := range []string{"novalue", "=3"} {
		t.Run(in, func(t *testing.T) {
			_, err := parseParams([]string{in})
			require.ErrorIs(t, err, models.ErrInvalidInput)
		})
	}
}

func TestProblemFlags_Options(t *testing.T) {
	cfg := projectconfig.New()
	cfg.Data.CostColumn = "value"

	var flags problemFlags
	cmd := &cobra.Command{Use: "x", RunE: func(*cobra.Command, []string) error { return nil }}
	flags.register(cmd)
	require.NoError(t, cmd.ParseFlags([]string{"--weight-column", "mass", "--capacity", "0", "--start", "2"}))

	opts := flags.options(cmd, cfg)
	assert.Equal(t, "value", opts.CostColumn)
	assert.Equal(t, "mass", opts.WeightColumn)
	require.NotNil(t, opts.Capacity, "an explicit zero capacity is kept")
	assert.Equal(t, 0.0, *opts.Capacity)
	assert.Equal(t, 2, opts.Start)
}

func TestProblemFlags_NoCapacity(t *testing.T) {
	var flags problemFlags
	cmd := &cobra.Command{Use: "x"}
	flags.register(cmd)
	require.NoError(t, cmd.ParseFlags(nil))

	assert.Nil(t, flags.options(cmd, projectconfig.New()).Capacity)
}
