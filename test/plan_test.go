//go:build integration_test

package test

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/2beens/wellnesscoach/internal/planner"
	testingpkg "github.com/2beens/wellnesscoach/pkg/testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sseEvent struct {
	name string
	data string
}

func readSSE(t require.TestingT, body io.Reader) []sseEvent {
	var events []sseEvent
	var current sseEvent
	scanner := bufio.NewScanner(body)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			current.name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			current.data = strings.TrimPrefix(line, "data: ")
		case line == "":
			if current.name != "" {
				events = append(events, current)
			}
			current = sseEvent{}
		}
	}
	require.NoError(t, scanner.Err())
	return events
}

func (s *IntegrationTestSuite) TestPlan_StreamAndLatest() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	t := s.T()

	resp := s.postJSON(ctx, "/plan/generate", planner.Request{
		UserID:       "user_stream_1",
		Email:        "stream@example.com",
		Kind:         planner.KindWorkout,
		Requirements: "push pull split",
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	events := readSSE(t, resp.Body)
	require.NotEmpty(t, events)

	var fragments []string
	for _, ev := range events {
		if ev.name == planner.EventFragment {
			var p planner.TextPayload
			require.NoError(t, json.Unmarshal([]byte(ev.data), &p))
			fragments = append(fragments, p.Text)
		}
	}
	assert.Equal(t, []string{"Day 1: push\n", "Day 1: push\nDay 2: pull\n"}, fragments)

	last := events[len(events)-1]
	require.Equal(t, planner.EventDone, last.name)
	var done planner.TextPayload
	require.NoError(t, json.Unmarshal([]byte(last.data), &done))
	assert.Equal(t, "Day 1: push\nDay 2: pull\n", done.Text)

	req, err := http.NewRequestWithContext(ctx, "GET", fmt.Sprintf("%s/plan/latest/user_stream_1", serverEndpoint), nil)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "test-agent")
	latestResp, err := s.httpClient.Do(req)
	require.NoError(t, err)
	defer latestResp.Body.Close()
	require.Equal(t, http.StatusOK, latestResp.StatusCode)

	var plan planner.Plan
	require.NoError(t, json.NewDecoder(latestResp.Body).Decode(&plan))
	assert.Equal(t, "user_stream_1", plan.UserID)
	assert.Equal(t, planner.KindWorkout, plan.Kind)
	assert.Equal(t, done.Text, plan.Text)
}

func (s *IntegrationTestSuite) TestPlan_RateLimited() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	t := s.T()

	statuses := make([]int, 0, planRateLimitPerMin+1)
	for i := 0; i <= planRateLimitPerMin; i++ {
		resp := s.postJSON(ctx, "/plan/generate", planner.Request{
			UserID:       "user_limited_1",
			Kind:         planner.KindNutrition,
			Requirements: "vegan",
		})
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
		statuses = append(statuses, resp.StatusCode)
	}

	for i := 0; i < planRateLimitPerMin; i++ {
		assert.Equal(t, http.StatusOK, statuses[i], "request %d", i)
	}
	assert.Equal(t, http.StatusTooManyRequests, statuses[planRateLimitPerMin])
}

func (s *IntegrationTestSuite) TestRedisCache() {
	t := s.T()
	ctx, rdb := testingpkg.GetRedisClientAndCtx(t)

	cache := planner.NewRedisCache(rdb, time.Minute)
	_, err := cache.Latest(ctx, "user_nobody")
	assert.ErrorIs(t, err, planner.ErrPlanNotFound)

	plan := planner.Plan{
		UserID:    "user_cache_1",
		Kind:      planner.KindProgress,
		Text:      "bench +10kg",
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, cache.StoreLatest(ctx, plan))

	got, err := cache.Latest(ctx, "user_cache_1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, plan.Text, got.Text)
	assert.True(t, plan.CreatedAt.Equal(got.CreatedAt))

	ttl, err := rdb.TTL(ctx, "plan::latest::user_cache_1").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}
