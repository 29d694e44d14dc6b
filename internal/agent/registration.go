package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/2beens/wellnesscoach/internal/onboarding"
)

// Registrar registers onboarded users through the agent's registration flow.
type Registrar struct {
	client *Client
}

func NewRegistrar(client *Client) *Registrar {
	return &Registrar{client: client}
}

func (r *Registrar) Register(ctx context.Context, userID string, data onboarding.Data) error {
	session, err := r.client.CreateSession(ctx, userID, map[string]any{
		"user_email": data.Email,
	})
	if err != nil {
		return fmt.Errorf("failed to register user: %w", err)
	}

	events, err := r.client.Run(ctx, userID, session.ID, RegistrationPrompt(data))
	if err != nil {
		return fmt.Errorf("failed to register user: %w", err)
	}
	if err := FirstError(events); err != nil {
		return err
	}
	return nil
}

func RegistrationPrompt(d onboarding.Data) string {
	healthNotes := d.HealthNotes
	if strings.TrimSpace(healthNotes) == "" {
		healthNotes = "none"
	}
	return fmt.Sprintf(
		"Please register this user with email: %s, age: %s, gender: %s, height: %s cm, "+
			"current weight: %s kg, goal weight: %s kg, experience level: %s, workout days per week: %s, "+
			"preferred workout types: %s, fitness goals: %s, health notes: %s",
		d.Email, d.Age, d.Gender, d.Height,
		d.CurrentWeight, d.GoalWeight, d.ExperienceLevel, d.WorkoutDays,
		strings.Join(d.PreferredWorkoutTypes, ", "), strings.Join(d.FitnessGoals, ", "), healthNotes,
	)
}
