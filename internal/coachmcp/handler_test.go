package coachmcp

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/2beens/wellnesscoach/internal/onboarding"
	"github.com/2beens/wellnesscoach/internal/planner"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// mockGenerator implements planner.PlanGenerator for tests.
type mockGenerator struct {
	text   string
	err    error
	gotReq planner.Request
}

func (m *mockGenerator) Generate(_ context.Context, req planner.Request, _ func(string)) (string, error) {
	m.gotReq = req
	return m.text, m.err
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) != 1 {
		t.Fatalf("expected 1 content, got %d", len(res.Content))
	}
	tc, ok := res.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", res.Content[0])
	}
	return tc.Text
}

func TestHandler_ValidateOnboardingFieldTool(t *testing.T) {
	fn := NewHandler(&mockGenerator{}).ValidateOnboardingFieldTool()

	t.Run("invalid_email", func(t *testing.T) {
		res, _, err := fn(context.Background(), &mcp.CallToolRequest{}, FieldInput{Field: "email", Value: "jo@"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var resp onboarding.ValidateFieldResponse
		if err := json.Unmarshal([]byte(resultText(t, res)), &resp); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if resp.Error != "Please enter a valid email address" {
			t.Fatalf("error = %q", resp.Error)
		}
	})

	t.Run("valid_goal_weight", func(t *testing.T) {
		res, _, _ := fn(context.Background(), &mcp.CallToolRequest{}, FieldInput{Field: "goalWeight", Value: "72"})
		var resp onboarding.ValidateFieldResponse
		if err := json.Unmarshal([]byte(resultText(t, res)), &resp); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if resp.Error != "" || resp.Field != "goalWeight" {
			t.Fatalf("unexpected response %+v", resp)
		}
	})

	t.Run("missing_field", func(t *testing.T) {
		res, _, _ := fn(context.Background(), &mcp.CallToolRequest{}, FieldInput{Value: "x"})
		if !res.IsError {
			t.Fatalf("expected IsError")
		}
	})
}

func TestHandler_ValidateOnboardingStepTool(t *testing.T) {
	fn := NewHandler(&mockGenerator{}).ValidateOnboardingStepTool()

	res, _, _ := fn(context.Background(), &mcp.CallToolRequest{}, StepInput{Step: 3, Data: onboarding.Data{
		PreferredWorkoutTypes: []string{"strength"},
	}})
	var resp onboarding.ValidateStepResponse
	if err := json.Unmarshal([]byte(resultText(t, res)), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Valid {
		t.Fatalf("expected step 3 to be invalid without goals")
	}
	if resp.Errors[onboarding.FieldFitnessGoals] != "Select at least one fitness goal" {
		t.Fatalf("errors = %v", resp.Errors)
	}

	res, _, _ = fn(context.Background(), &mcp.CallToolRequest{}, StepInput{Step: 9})
	if !res.IsError {
		t.Fatalf("expected IsError for step 9")
	}
}

func TestHandler_ComputeBMITool(t *testing.T) {
	fn := NewHandler(&mockGenerator{}).ComputeBMITool()

	res, _, err := fn(context.Background(), &mcp.CallToolRequest{}, BMIInput{Height: "250", Weight: "80"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var bmi onboarding.BMIResult
	if err := json.Unmarshal([]byte(resultText(t, res)), &bmi); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if bmi.Value != 12.8 || bmi.Category != "Underweight" {
		t.Fatalf("bmi = %+v", bmi)
	}

	res, _, _ = fn(context.Background(), &mcp.CallToolRequest{}, BMIInput{Height: "tall", Weight: "80"})
	if !res.IsError {
		t.Fatalf("expected IsError")
	}
}

func TestHandler_GetExerciseVideoTool(t *testing.T) {
	fn := NewHandler(&mockGenerator{}).GetExerciseVideoTool()

	res, _, _ := fn(context.Background(), &mcp.CallToolRequest{}, VideoInput{Exercise: "Push-ups"})
	if res.IsError || !strings.Contains(resultText(t, res), "/videos/files/push-up.mp4") {
		t.Fatalf("unexpected result: %s", resultText(t, res))
	}

	res, _, _ = fn(context.Background(), &mcp.CallToolRequest{}, VideoInput{Exercise: "Squats"})
	if !res.IsError {
		t.Fatalf("expected IsError")
	}
	if got := resultText(t, res); got != "Video not available for Squats" {
		t.Fatalf("text = %q", got)
	}

	res, _, _ = fn(context.Background(), &mcp.CallToolRequest{}, VideoInput{})
	var names []string
	if err := json.Unmarshal([]byte(resultText(t, res)), &names); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(names) != 3 {
		t.Fatalf("names = %v", names)
	}
}

func TestHandler_GenerateWorkoutPlanTool(t *testing.T) {
	t.Run("returns_final_text", func(t *testing.T) {
		gen := &mockGenerator{text: "Day 1: Push-ups\nDay 2: Rest"}
		fn := NewHandler(gen).GenerateWorkoutPlanTool()
		res, _, err := fn(context.Background(), &mcp.CallToolRequest{}, PlanInput{
			UserID:       "user_jo_1",
			Email:        "jo@example.com",
			Requirements: "3 days",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.IsError {
			t.Fatalf("unexpected IsError")
		}
		if got := resultText(t, res); got != gen.text {
			t.Fatalf("text = %q", got)
		}
		if gen.gotReq.Kind != planner.KindWorkout {
			t.Fatalf("kind = %q, want workout", gen.gotReq.Kind)
		}
	})

	t.Run("generator_error", func(t *testing.T) {
		fn := NewHandler(&mockGenerator{err: errors.New("HTTP error! status: 500")}).GenerateWorkoutPlanTool()
		res, _, _ := fn(context.Background(), &mcp.CallToolRequest{}, PlanInput{UserID: "u1", Requirements: "3 days"})
		if !res.IsError {
			t.Fatalf("expected IsError")
		}
		if got := resultText(t, res); got != "Error generating plan: HTTP error! status: 500" {
			t.Fatalf("text = %q", got)
		}
	})

	t.Run("invalid_request", func(t *testing.T) {
		gen := &mockGenerator{}
		fn := NewHandler(gen).GenerateWorkoutPlanTool()
		res, _, _ := fn(context.Background(), &mcp.CallToolRequest{}, PlanInput{UserID: "u1", Requirements: "  "})
		if !res.IsError {
			t.Fatalf("expected IsError")
		}
		res, _, _ = fn(context.Background(), &mcp.CallToolRequest{}, PlanInput{UserID: "u1", Kind: "yoga", Requirements: "x"})
		if !res.IsError {
			t.Fatalf("expected IsError for unknown kind")
		}
		if gen.gotReq.UserID != "" {
			t.Fatalf("generator must not be called")
		}
	})
}

func TestNewServer(t *testing.T) {
	if NewServer(&mockGenerator{}) == nil {
		t.Fatalf("expected a server")
	}
}
