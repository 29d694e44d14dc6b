package coachmcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/2beens/wellnesscoach/internal/onboarding"
	"github.com/2beens/wellnesscoach/internal/planner"
	"github.com/2beens/wellnesscoach/internal/widgets"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	log "github.com/sirupsen/logrus"
)

// Handler parses tool input, calls into the coaching core and formats the MCP result.
type Handler struct {
	generator planner.PlanGenerator
}

func NewHandler(generator planner.PlanGenerator) *Handler {
	return &Handler{
		generator: generator,
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}
}

func jsonResult(v any) *mcp.CallToolResult {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult("Error encoding response: " + err.Error())
	}
	return textResult(string(raw))
}

// FieldInput is the input for validate_onboarding_field.
type FieldInput struct {
	Field string `json:"field" jsonschema:"Field name: email, age, height, currentWeight or goalWeight"`
	Value string `json:"value" jsonschema:"Raw answer as typed by the user"`
}

func (h *Handler) ValidateOnboardingFieldTool() func(context.Context, *mcp.CallToolRequest, FieldInput) (*mcp.CallToolResult, any, error) {
	return func(_ context.Context, _ *mcp.CallToolRequest, in FieldInput) (*mcp.CallToolResult, any, error) {
		if in.Field == "" {
			return errorResult("field is required"), nil, nil
		}
		return jsonResult(onboarding.ValidateFieldResponse{
			Field: in.Field,
			Error: onboarding.ValidateField(in.Field, in.Value),
		}), nil, nil
	}
}

// StepInput is the input for validate_onboarding_step.
type StepInput struct {
	Step int             `json:"step" jsonschema:"Questionnaire step, 1 to 4"`
	Data onboarding.Data `json:"data" jsonschema:"All onboarding answers collected so far"`
}

func (h *Handler) ValidateOnboardingStepTool() func(context.Context, *mcp.CallToolRequest, StepInput) (*mcp.CallToolResult, any, error) {
	return func(_ context.Context, _ *mcp.CallToolRequest, in StepInput) (*mcp.CallToolResult, any, error) {
		if in.Step < 1 || in.Step > onboarding.TotalSteps {
			return errorResult(fmt.Sprintf("step must be between 1 and %d", onboarding.TotalSteps)), nil, nil
		}
		errs := onboarding.StepErrors(in.Step, in.Data)
		return jsonResult(onboarding.ValidateStepResponse{
			Valid:  len(errs) == 0,
			Errors: errs,
		}), nil, nil
	}
}

// BMIInput is the input for compute_bmi.
type BMIInput struct {
	Height string `json:"height" jsonschema:"Height in centimeters"`
	Weight string `json:"weight" jsonschema:"Weight in kilograms"`
}

func (h *Handler) ComputeBMITool() func(context.Context, *mcp.CallToolRequest, BMIInput) (*mcp.CallToolResult, any, error) {
	return func(_ context.Context, _ *mcp.CallToolRequest, in BMIInput) (*mcp.CallToolResult, any, error) {
		result, err := onboarding.BMIFromStrings(in.Height, in.Weight)
		if err != nil {
			return errorResult("Error computing BMI: " + err.Error()), nil, nil
		}
		return jsonResult(result), nil, nil
	}
}

// VideoInput is the input for get_exercise_video.
type VideoInput struct {
	Exercise string `json:"exercise,omitempty" jsonschema:"Exercise name, e.g. Push-ups"`
}

func (h *Handler) GetExerciseVideoTool() func(context.Context, *mcp.CallToolRequest, VideoInput) (*mcp.CallToolResult, any, error) {
	return func(_ context.Context, _ *mcp.CallToolRequest, in VideoInput) (*mcp.CallToolResult, any, error) {
		if in.Exercise == "" {
			return jsonResult(widgets.Exercises()), nil, nil
		}
		src, ok := widgets.VideoSrc(in.Exercise)
		if !ok {
			return errorResult((&widgets.ErrVideoUnavailable{Exercise: in.Exercise}).Error()), nil, nil
		}
		return jsonResult(widgets.VideoResponse{Exercise: in.Exercise, Src: src}), nil, nil
	}
}

// PlanInput is the input for generate_workout_plan.
type PlanInput struct {
	UserID       string `json:"user_id" jsonschema:"Registered user id"`
	Email        string `json:"email,omitempty" jsonschema:"User email, passed to the agent"`
	Kind         string `json:"kind,omitempty" jsonschema:"workout (default), nutrition or progress"`
	Requirements string `json:"requirements" jsonschema:"What the plan should cover, in the user's words"`
}

func (h *Handler) GenerateWorkoutPlanTool() func(context.Context, *mcp.CallToolRequest, PlanInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in PlanInput) (*mcp.CallToolResult, any, error) {
		kind, err := planner.ParseKind(in.Kind)
		if err != nil {
			return errorResult(err.Error()), nil, nil
		}
		req := planner.Request{
			UserID:       strings.TrimSpace(in.UserID),
			Email:        in.Email,
			Kind:         kind,
			Requirements: in.Requirements,
		}
		if err := req.Validate(); err != nil {
			return errorResult("Invalid plan request: " + err.Error()), nil, nil
		}

		text, err := h.generator.Generate(ctx, req, nil)
		if err != nil {
			log.Errorf("mcp: generate %s plan for %s: %s", kind, req.UserID, err)
			return errorResult("Error generating plan: " + err.Error()), nil, nil
		}
		return textResult(text), nil, nil
	}
}
