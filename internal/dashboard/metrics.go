package dashboard

import (
	"context"
	"strings"
)

type ReadinessLevel string

const (
	ReadinessHigh   ReadinessLevel = "High"
	ReadinessMedium ReadinessLevel = "Medium"
	ReadinessLow    ReadinessLevel = "Low"
)

// Color is the indicator colour name for the readiness level.
func (r ReadinessLevel) Color() string {
	switch ReadinessLevel(strings.TrimSpace(string(r))) {
	case ReadinessHigh:
		return "green"
	case ReadinessMedium:
		return "yellow"
	case ReadinessLow:
		return "red"
	default:
		return "gray"
	}
}

// HealthMetrics is the snapshot shown on the dashboard cards.
type HealthMetrics struct {
	RecoveryScore      int            `json:"recoveryScore"`
	RestingHeartRate   int            `json:"restingHeartRate"`
	HeartRateVariation int            `json:"heartRateVariation"`
	SleepScore         int            `json:"sleepScore"`
	Readiness          ReadinessLevel `json:"readiness"`
	TodaysWorkout      string         `json:"todaysWorkout"`
	CaloriesBurned     int            `json:"caloriesBurned"`
	ActiveMinutes      int            `json:"activeMinutes"`
	ActiveMinutesGoal  int            `json:"activeMinutesGoal"`
}

// ActiveMinutesProgress is active minutes over the goal, capped at 1.
func (m HealthMetrics) ActiveMinutesProgress() float64 {
	if m.ActiveMinutesGoal <= 0 {
		return 0
	}
	p := float64(m.ActiveMinutes) / float64(m.ActiveMinutesGoal)
	if p > 1 {
		return 1
	}
	return p
}

type MetricsSource interface {
	Snapshot(ctx context.Context, userID string) (HealthMetrics, error)
}

// StaticMetrics serves the same snapshot to everyone until a wearable
// integration exists.
type StaticMetrics struct {
	Metrics HealthMetrics
}

func NewStaticMetrics() *StaticMetrics {
	return &StaticMetrics{
		Metrics: HealthMetrics{
			RecoveryScore:      78,
			RestingHeartRate:   62,
			HeartRateVariation: 45,
			SleepScore:         85,
			Readiness:          ReadinessHigh,
			TodaysWorkout:      "Upper Body Strength",
			CaloriesBurned:     2340,
			ActiveMinutes:      87,
			ActiveMinutesGoal:  90,
		},
	}
}

func (s *StaticMetrics) Snapshot(_ context.Context, _ string) (HealthMetrics, error) {
	return s.Metrics, nil
}
