//go:build integration_test

package test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/2beens/wellnesscoach/internal/onboarding"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validOnboardingData(email string) onboarding.Data {
	return onboarding.Data{
		Email:                 email,
		Age:                   "31",
		Gender:                "other",
		Height:                "182",
		CurrentWeight:         "84",
		GoalWeight:            "78",
		ExperienceLevel:       "advanced",
		WorkoutDays:           "5",
		PreferredWorkoutTypes: []string{"Boxing", "Running"},
		FitnessGoals:          []string{"Improve Endurance"},
	}
}

func (s *IntegrationTestSuite) postJSON(ctx context.Context, path string, body any) *http.Response {
	t := s.T()
	reqJson, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequestWithContext(ctx, "POST", fmt.Sprintf("%s%s", serverEndpoint, path), bytes.NewBuffer(reqJson))
	require.NoError(t, err)
	req.Header.Set("User-Agent", "test-agent")
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	require.NoError(t, err)
	return resp
}

func (s *IntegrationTestSuite) TestRegister() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	t := s.T()

	runsBefore := s.agent.runCount()
	resp := s.postJSON(ctx, "/onboarding/register", validOnboardingData("runner@example.com"))
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var registerResp onboarding.RegisterResponse
	require.NoError(t, json.Unmarshal(respBytes, &registerResp))
	assert.Regexp(t, `^user_runner_example_com_\d+$`, registerResp.UserID)
	assert.Equal(t, runsBefore+1, s.agent.runCount())
}

func (s *IntegrationTestSuite) TestRegister_InvalidData() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	t := s.T()

	data := validOnboardingData("runner@example.com")
	data.FitnessGoals = nil
	resp := s.postJSON(ctx, "/onboarding/register", data)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func (s *IntegrationTestSuite) TestHealthAndAgent() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	t := s.T()

	req, err := http.NewRequestWithContext(ctx, "GET", fmt.Sprintf("%s/agent/health", serverEndpoint), nil)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "test-agent")

	resp, err := s.httpClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
