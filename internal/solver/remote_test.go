package solver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/spboyer/knapsack/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoteSolver(t *testing.T) {
	t.Setenv(DefaultTokenEnv, "secret-token")
	model := scenarioModel(t, 89)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "secret-token", r.Header.Get(DefaultTokenHeader))

		var body struct {
			Model     models.Model `json:"model"`
			TimeLimit float64      `json:"time_limit"`
			Label     string       `json:"label"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, 7, body.Model.NumVariables())
		assert.Equal(t, 12.0, body.TimeLimit)
		assert.Equal(t, "camping", body.Label)

		chosen := map[string]float64{"0": 0, "1": 1, "2": 0, "3": 1, "4": 1, "5": 1, "6": 1}
		set := models.SampleSet{
			Samples: []models.Sample{body.Model.Evaluate(chosen)},
			Info:    map[string]any{"problem_id": "abc"},
		}
		w.Header().Set("Content-Type", "application/json")
		assert.NoError(t, json.NewEncoder(w).Encode(set))
	}))
	defer server.Close()

	s, err := Create(EngineRemote, map[string]any{
		"endpoint":   server.URL,
		"time_limit": "12s",
		"label":      "camping",
	})
	require.NoError(t, err)

	set, err := s.Sample(context.Background(), model)
	require.NoError(t, err)
	require.Equal(t, 1, set.Len())
	require.Equal(t, -340.0, set.Samples[0].Energy)
	require.True(t, set.Samples[0].IsFeasible)
	require.Equal(t, "abc", set.Info["problem_id"])
	require.Equal(t, "remote", set.Info["engine"])
}

func TestRemoteSolver_ErrorStatusIsNotRetried(t *testing.T) {
	t.Setenv(DefaultTokenEnv, "secret-token")
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `{"error": "solver unavailable"}`, http.StatusServiceUnavailable)
	}))
	defer server.Close()

	s, err := NewRemoteSolver(RemoteOptions{Endpoint: server.URL})
	require.NoError(t, err)

	_, err = s.Sample(context.Background(), scenarioModel(t, 89))
	require.Error(t, err)
	require.ErrorIs(t, err, models.ErrUpstreamSolver)

	var respErr *azcore.ResponseError
	require.True(t, errors.As(err, &respErr))
	require.Equal(t, http.StatusServiceUnavailable, respErr.StatusCode)
	require.Equal(t, int32(1), calls.Load())
}

func TestRemoteSolver_MissingToken(t *testing.T) {
	t.Setenv("KNAPSACK_TEST_EMPTY_TOKEN", "")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not be sent without a token")
	}))
	defer server.Close()

	s, err := NewRemoteSolver(RemoteOptions{Endpoint: server.URL, TokenEnv: "KNAPSACK_TEST_EMPTY_TOKEN"})
	require.NoError(t, err)

	_, err = s.Sample(context.Background(), scenarioModel(t, 89))
	require.ErrorIs(t, err, models.ErrUpstreamSolver)
	require.ErrorIs(t, err, errMissingToken)
	require.Contains(t, err.Error(), "KNAPSACK_TEST_EMPTY_TOKEN")
}

func TestRemoteSolver_BadResponseBody(t *testing.T) {
	t.Setenv(DefaultTokenEnv, "secret-token")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer server.Close()

	s, err := NewRemoteSolver(RemoteOptions{Endpoint: server.URL})
	require.NoError(t, err)

	_, err = s.Sample(context.Background(), scenarioModel(t, 89))
	require.ErrorIs(t, err, models.ErrUpstreamSolver)
	require.Contains(t, err.Error(), "reading solver response")
}
