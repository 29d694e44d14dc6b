package planner

import (
	"errors"
	"fmt"
	"strings"
)

type Kind string

const (
	KindWorkout   Kind = "workout"
	KindNutrition Kind = "nutrition"
	KindProgress  Kind = "progress"
)

var Kinds = []Kind{KindWorkout, KindNutrition, KindProgress}

var (
	ErrEmptyRequest = errors.New("plan requirements are empty")
	ErrUnknownKind  = errors.New("unknown plan kind")
)

func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case "", KindWorkout:
		return KindWorkout, nil
	case KindNutrition:
		return KindNutrition, nil
	case KindProgress:
		return KindProgress, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownKind, s)
	}
}

type Request struct {
	UserID       string `json:"userId"`
	Email        string `json:"email"`
	Kind         Kind   `json:"kind"`
	Requirements string `json:"requirements"`
}

func (r Request) Validate() error {
	if strings.TrimSpace(r.Requirements) == "" {
		return ErrEmptyRequest
	}
	if r.UserID == "" {
		return errors.New("user id is empty")
	}
	if _, err := ParseKind(string(r.Kind)); err != nil {
		return err
	}
	return nil
}

// Prompt composes the message sent to the coaching agent.
func Prompt(r Request) string {
	kind, _ := ParseKind(string(r.Kind))
	switch kind {
	case KindNutrition:
		return fmt.Sprintf(
			"Please create a personalized diet plan with calorie counts, macros and meal timing based on the following user requirements:\n\n%s\nuser_email: %s\n",
			r.Requirements, r.Email,
		)
	case KindProgress:
		return fmt.Sprintf(
			"Please write a motivating gym progress report for this user, focusing on:\n\n%s\nuser_email: %s\n",
			r.Requirements, r.Email,
		)
	default:
		return fmt.Sprintf(
			"Please create a personalized workout plan based on the following user requirements:\n\n%s\nuser_email: %s\n",
			r.Requirements, r.Email,
		)
	}
}
