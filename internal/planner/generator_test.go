package planner_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/2beens/wellnesscoach/internal/agent"
	"github.com/2beens/wellnesscoach/internal/planner"
	"github.com/2beens/wellnesscoach/internal/telemetry/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type memoryCache struct {
	mu    sync.Mutex
	plans map[string]planner.Plan
	err   error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{plans: map[string]planner.Plan{}}
}

func (c *memoryCache) StoreLatest(_ context.Context, plan planner.Plan) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.plans[plan.UserID] = plan
	return nil
}

func (c *memoryCache) Latest(_ context.Context, userID string) (*planner.Plan, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	plan, ok := c.plans[userID]
	if !ok {
		return nil, planner.ErrPlanNotFound
	}
	return &plan, nil
}

func streamOf(events ...agent.StreamEvent) <-chan agent.StreamEvent {
	ch := make(chan agent.StreamEvent, len(events))
	for _, ev := range events {
		ch <- ev
	}
	close(ch)
	return ch
}

func fragment(text string) agent.StreamEvent {
	return agent.StreamEvent{Kind: agent.StreamFragment, Text: text}
}

func workoutRequest() planner.Request {
	return planner.Request{
		UserID:       "user_jo_example_com_1700000000000",
		Email:        "jo@example.com",
		Requirements: "3 days a week, no equipment",
	}
}

func TestGenerator_Generate_Done(t *testing.T) {
	ctrl := gomock.NewController(t)
	streamer := NewMockStreamer(ctrl)
	cache := newMemoryCache()
	metricsManager := metrics.NewTestManager()
	req := workoutRequest()

	streamer.EXPECT().
		CreateSession(gomock.Any(), req.UserID, map[string]any{"user_email": req.Email, "plan_kind": "workout"}).
		Return(&agent.Session{ID: "session_1", UserID: req.UserID}, nil)
	streamer.EXPECT().
		StreamMessage(gomock.Any(), req.UserID, "session_1", planner.Prompt(req)).
		Return(streamOf(
			fragment("Day 1: "),
			fragment("Push-ups"),
			fragment("\nDay 2: Rest"),
			agent.StreamEvent{Kind: agent.StreamDone},
		), nil)

	generator := planner.NewGenerator(streamer, cache, metricsManager)

	var partials []string
	final, err := generator.Generate(context.Background(), req, func(text string) {
		partials = append(partials, text)
	})
	require.NoError(t, err)
	assert.Equal(t, "Day 1: Push-ups\nDay 2: Rest", final)
	assert.Equal(t, []string{"Day 1: ", "Day 1: Push-ups", "Day 1: Push-ups\nDay 2: Rest"}, partials)

	stored, err := cache.Latest(context.Background(), req.UserID)
	require.NoError(t, err)
	assert.Equal(t, final, stored.Text)
	assert.Equal(t, planner.KindWorkout, stored.Kind)

	assert.Equal(t, float64(1), testutil.ToFloat64(metricsManager.CounterPlans.WithLabelValues("workout", "done")))
	assert.Equal(t, float64(3), testutil.ToFloat64(metricsManager.CounterPlanFragments))
	assert.Equal(t, float64(0), testutil.ToFloat64(metricsManager.GaugeActivePlans))
}

func TestGenerator_Generate_ErrorBeforeFragments(t *testing.T) {
	ctrl := gomock.NewController(t)
	streamer := NewMockStreamer(ctrl)
	cache := newMemoryCache()
	metricsManager := metrics.NewTestManager()
	req := workoutRequest()
	streamErr := errors.New("HTTP error! status: 500")

	streamer.EXPECT().CreateSession(gomock.Any(), req.UserID, gomock.Any()).
		Return(&agent.Session{ID: "session_1"}, nil)
	streamer.EXPECT().StreamMessage(gomock.Any(), req.UserID, "session_1", gomock.Any()).
		Return(streamOf(agent.StreamEvent{Kind: agent.StreamError, Err: streamErr}), nil)

	generator := planner.NewGenerator(streamer, cache, metricsManager)

	partialCalls := 0
	final, err := generator.Generate(context.Background(), req, func(string) { partialCalls++ })
	require.ErrorIs(t, err, streamErr)
	assert.Empty(t, final)
	assert.Zero(t, partialCalls)

	_, err = cache.Latest(context.Background(), req.UserID)
	assert.ErrorIs(t, err, planner.ErrPlanNotFound)
	assert.Equal(t, float64(1), testutil.ToFloat64(metricsManager.CounterPlans.WithLabelValues("workout", "failed")))
}

func TestGenerator_Generate_ErrorAfterFragments(t *testing.T) {
	ctrl := gomock.NewController(t)
	streamer := NewMockStreamer(ctrl)
	req := workoutRequest()
	req.Kind = planner.KindNutrition

	streamer.EXPECT().CreateSession(gomock.Any(), req.UserID, gomock.Any()).
		Return(&agent.Session{ID: "session_2"}, nil)
	streamer.EXPECT().StreamMessage(gomock.Any(), req.UserID, "session_2", planner.Prompt(req)).
		Return(streamOf(
			fragment("Breakfast: oats"),
			agent.StreamEvent{Kind: agent.StreamError, Err: &agent.RunError{Message: "quota exceeded"}},
		), nil)

	generator := planner.NewGenerator(streamer, nil, nil)
	final, err := generator.Generate(context.Background(), req, nil)
	require.EqualError(t, err, "quota exceeded")
	assert.Empty(t, final)
}

func TestGenerator_Generate_SessionFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	streamer := NewMockStreamer(ctrl)
	req := workoutRequest()

	streamer.EXPECT().CreateSession(gomock.Any(), req.UserID, gomock.Any()).
		Return(nil, &agent.StatusError{Endpoint: "create session", StatusCode: 503})

	generator := planner.NewGenerator(streamer, nil, metrics.NewTestManager())
	_, err := generator.Generate(context.Background(), req, nil)
	var statusErr *agent.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, 503, statusErr.StatusCode)
}

func TestGenerator_Generate_StreamEndsWithoutDone(t *testing.T) {
	ctrl := gomock.NewController(t)
	streamer := NewMockStreamer(ctrl)
	req := workoutRequest()

	streamer.EXPECT().CreateSession(gomock.Any(), req.UserID, gomock.Any()).
		Return(&agent.Session{ID: "session_3"}, nil)
	streamer.EXPECT().StreamMessage(gomock.Any(), req.UserID, "session_3", gomock.Any()).
		Return(streamOf(fragment("Day 1")), nil)

	metricsManager := metrics.NewTestManager()
	generator := planner.NewGenerator(streamer, nil, metricsManager)
	final, err := generator.Generate(context.Background(), req, nil)
	require.ErrorIs(t, err, agent.ErrStreamEnded)
	assert.Empty(t, final)
	assert.Equal(t, float64(1), testutil.ToFloat64(metricsManager.CounterPlans.WithLabelValues("workout", "aborted")))
}

func TestGenerator_Generate_InvalidRequest(t *testing.T) {
	ctrl := gomock.NewController(t)
	streamer := NewMockStreamer(ctrl)

	generator := planner.NewGenerator(streamer, nil, nil)
	_, err := generator.Generate(context.Background(), planner.Request{UserID: "u1", Requirements: "  "}, nil)
	assert.ErrorIs(t, err, planner.ErrEmptyRequest)
}

func TestGenerator_Generate_CacheFailureKeepsPlan(t *testing.T) {
	ctrl := gomock.NewController(t)
	streamer := NewMockStreamer(ctrl)
	req := workoutRequest()
	cache := newMemoryCache()
	cache.err = errors.New("redis down")

	streamer.EXPECT().CreateSession(gomock.Any(), req.UserID, gomock.Any()).
		Return(&agent.Session{ID: "session_4"}, nil)
	streamer.EXPECT().StreamMessage(gomock.Any(), req.UserID, "session_4", gomock.Any()).
		Return(streamOf(fragment("Rest day"), agent.StreamEvent{Kind: agent.StreamDone}), nil)

	generator := planner.NewGenerator(streamer, cache, nil)
	final, err := generator.Generate(context.Background(), req, nil)
	require.NoError(t, err)
	assert.Equal(t, "Rest day", final)
}
