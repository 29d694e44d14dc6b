package coachmcp

import (
	"github.com/2beens/wellnesscoach/internal/planner"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewServer builds an MCP server with the coaching tools: onboarding field and step
// validation, BMI, exercise demo videos and plan generation.
// Used by cmd/coach_mcp over stdio and by the backend at /mcp.
func NewServer(generator planner.PlanGenerator) *mcp.Server {
	h := NewHandler(generator)
	s := mcp.NewServer(&mcp.Implementation{
		Name:    "wellness-coach",
		Version: "1.0.0",
	}, nil)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "validate_onboarding_field",
		Description: "Validates one onboarding answer. Fields: email, age, height, currentWeight, goalWeight. Returns an empty error when the value is valid, otherwise the message shown to the user.",
	}, h.ValidateOnboardingFieldTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "validate_onboarding_step",
		Description: "Validates one step (1-4) of the onboarding questionnaire given all answers so far. Returns valid plus the per field errors.",
	}, h.ValidateOnboardingStepTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "compute_bmi",
		Description: "Computes the body mass index from height (cm) and weight (kg), rounded to one decimal, with its category (Underweight, Normal, Overweight, Obese).",
	}, h.ComputeBMITool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_exercise_video",
		Description: "Returns the demo video path for an exercise (e.g. Push-ups, Pull-ups, Boxing). Without an exercise, lists the exercises that have a video.",
	}, h.GetExerciseVideoTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "generate_workout_plan",
		Description: "Asks the coaching agent for a plan and returns the complete text. kind is workout (default), nutrition or progress. Can take a while.",
	}, h.GenerateWorkoutPlanTool())

	return s
}
