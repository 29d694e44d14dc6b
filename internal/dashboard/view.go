package dashboard

import (
	"errors"
	"fmt"
	"strings"
)

type View int

const (
	ViewDashboard View = iota
	ViewWorkout
	ViewNutrition
	ViewProfile
	ViewSmartwatch
	ViewReport
)

var ErrUnknownView = errors.New("unknown view")

// Views lists the views in menu order.
var Views = []View{
	ViewDashboard,
	ViewWorkout,
	ViewNutrition,
	ViewProfile,
	ViewSmartwatch,
	ViewReport,
}

func (v View) String() string {
	switch v {
	case ViewDashboard:
		return "dashboard"
	case ViewWorkout:
		return "workout"
	case ViewNutrition:
		return "nutrition"
	case ViewProfile:
		return "profile"
	case ViewSmartwatch:
		return "smartwatch"
	case ViewReport:
		return "report"
	default:
		return "unknown"
	}
}

// Title is the heading shown for the view.
func (v View) Title() string {
	switch v {
	case ViewDashboard:
		return "Dashboard"
	case ViewWorkout:
		return "Workout Plan"
	case ViewNutrition:
		return "Nutrition"
	case ViewProfile:
		return "Profile"
	case ViewSmartwatch:
		return "Smartwatch"
	case ViewReport:
		return "Progress Report"
	default:
		return ""
	}
}

func ParseView(s string) (View, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, v := range Views {
		if v.String() == s {
			return v, nil
		}
	}
	return ViewDashboard, fmt.Errorf("%w: %s", ErrUnknownView, s)
}
