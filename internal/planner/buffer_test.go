package planner

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuffer(t *testing.T) {
	var b Buffer
	fragments := []string{"Day 1: ", "Push-ups", "\nDay 2: Rest"}

	var running []string
	for _, f := range fragments {
		running = append(running, b.Append(f))
	}
	assert.Equal(t, []string{"Day 1: ", "Day 1: Push-ups", "Day 1: Push-ups\nDay 2: Rest"}, running)
	assert.Equal(t, "", b.Final())

	final := b.Finalize()
	assert.Equal(t, strings.Join(fragments, ""), final)
	assert.Equal(t, final, b.Final())
	assert.Empty(t, b.Live(), "live text is cleared once finalized")

	// a new stream replaces the previous result
	assert.Equal(t, "next", b.Append("next"))
	assert.Empty(t, b.Final())

	b.Discard()
	assert.Empty(t, b.Live())
	assert.Empty(t, b.Final())
}

func TestRequest(t *testing.T) {
	kind, err := ParseKind("")
	assert.NoError(t, err)
	assert.Equal(t, KindWorkout, kind)
	kind, err = ParseKind(" Nutrition ")
	assert.NoError(t, err)
	assert.Equal(t, KindNutrition, kind)
	_, err = ParseKind("yoga")
	assert.ErrorIs(t, err, ErrUnknownKind)

	assert.ErrorIs(t, Request{UserID: "u", Requirements: "  \n"}.Validate(), ErrEmptyRequest)
	assert.Error(t, Request{Requirements: "3 days"}.Validate())
	assert.ErrorIs(t, Request{UserID: "u", Requirements: "x", Kind: "dance"}.Validate(), ErrUnknownKind)
	assert.NoError(t, Request{UserID: "u", Requirements: "x"}.Validate())

	assert.Equal(t,
		"Please create a personalized workout plan based on the following user requirements:\n\n3 days, no equipment\nuser_email: jo@example.com\n",
		Prompt(Request{UserID: "u", Email: "jo@example.com", Requirements: "3 days, no equipment"}),
	)
	assert.Contains(t, Prompt(Request{Kind: KindNutrition, Requirements: "vegan"}), "diet plan")
	assert.Contains(t, Prompt(Request{Kind: KindProgress, Requirements: "bench press"}), "progress report")
}
