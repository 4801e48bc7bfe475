package main

import (
	"encoding/json"
	"testing"

	"github.com/spboyer/knapsack/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestEncodeCommand_JSON(t *testing.T) {
	setupProject(t)

	out, err := run(newEncodeCommand(), "items.csv", "--capacity", "89")
	require.NoError(t, err)

	var model models.Model
	require.NoError(t, json.Unmarshal([]byte(out), &model))
	assert.Equal(t, []string{"0", "1", "2", "3", "4", "5", "6"}, model.Labels())
	c, ok := model.Constraint("capacity")
	require.True(t, ok)
	assert.Equal(t, 89.0, c.RHS)
	assert.Equal(t, models.RelationLessEqual, c.Relation)
	assert.Equal(t, -85.0, model.Objective.Linear[1].Coefficient)
}

func TestEncodeCommand_YAML(t *testing.T) {
	setupProject(t)

	out, err := run(newEncodeCommand(), "items.csv", "-f", "yaml", "--start", "2", "--end", "3")
	require.NoError(t, err)

	var model models.Model
	require.NoError(t, yaml.Unmarshal([]byte(out), &model))
	assert.Equal(t, 2, model.NumVariables())
	c, ok := model.Constraint("capacity")
	require.True(t, ok)
	// rows 2-3 are tent and chair: floor(0.8 * 40)
	assert.Equal(t, 32.0, c.RHS)
}

func TestEncodeCommand_Errors(t *testing.T) {
	setupProject(t)

	_, err := run(newEncodeCommand(), "items.csv", "-f", "xml")
	require.Error(t, err)

	_, err = run(newEncodeCommand(), "items.txt")
	require.ErrorIs(t, err, models.ErrInvalidInput)
}
