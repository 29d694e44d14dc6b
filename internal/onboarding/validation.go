package onboarding

import (
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

var (
	emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	// leading decimal number, the way a lenient float parser reads "72.5kg"
	numberPrefixRegex = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)
)

// ValidatedFields are the fields re-validated on every change.
var ValidatedFields = []string{
	FieldEmail,
	FieldAge,
	FieldHeight,
	FieldCurrentWeight,
	FieldGoalWeight,
}

// parseNumber reads the numeric prefix of s, ok is false when there is none.
func parseNumber(s string) (float64, bool) {
	match := numberPrefixRegex.FindString(strings.TrimLeft(s, " \t\n\r"))
	if match == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(match, 64)
	if err != nil {
		// out of range exponents
		if strings.HasPrefix(match, "-") {
			return math.Inf(-1), true
		}
		return math.Inf(1), true
	}
	return n, true
}

func ValidateEmail(email string) string {
	if email == "" {
		return "Email is required"
	}
	if !emailRegex.MatchString(email) {
		return "Please enter a valid email address"
	}
	return ""
}

func ValidateAge(age string) string {
	if age == "" {
		return "Age is required"
	}
	n, ok := parseNumber(age)
	if !ok || math.IsInf(n, 0) || n != math.Trunc(n) {
		return "Age must be a whole number"
	}
	if n < 1 {
		return "Age must be at least 1"
	}
	if n > 120 {
		return "Age must be 120 or less"
	}
	return ""
}

func ValidateHeight(height string) string {
	if height == "" {
		return "Height is required"
	}
	n, ok := parseNumber(height)
	if !ok {
		return "Height must be a valid number"
	}
	if n <= 0 {
		return "Height must be positive"
	}
	if n < 50 {
		return "Height must be at least 50cm"
	}
	if n > 300 {
		return "Height must be 300cm or less"
	}
	return ""
}

// ValidateWeight validates a weight in kg, label prefixes every message.
func ValidateWeight(weight, label string) string {
	if weight == "" {
		return fmt.Sprintf("%s is required", label)
	}
	n, ok := parseNumber(weight)
	if !ok {
		return fmt.Sprintf("%s must be a valid number", label)
	}
	if n <= 0 {
		return fmt.Sprintf("%s must be greater than 0", label)
	}
	if n < 20 {
		return fmt.Sprintf("%s must be at least 20kg", label)
	}
	if n > 500 {
		return fmt.Sprintf("%s must be 500kg or less", label)
	}
	return ""
}

// ValidateField returns the error message for a field value, or "" when valid.
// Fields without a validator are always valid.
func ValidateField(field, value string) string {
	switch field {
	case FieldEmail:
		return ValidateEmail(value)
	case FieldAge:
		return ValidateAge(value)
	case FieldHeight:
		return ValidateHeight(value)
	case FieldCurrentWeight:
		return ValidateWeight(value, "Current Weight")
	case FieldGoalWeight:
		return ValidateWeight(value, "Goal Weight")
	default:
		return ""
	}
}

func isValidatedField(field string) bool {
	return slices.Contains(ValidatedFields, field)
}

// StepErrors lists what keeps a step from being complete.
// An empty result means the step is valid.
func StepErrors(step int, d Data) ValidationErrors {
	errs := ValidationErrors{}
	switch step {
	case 1:
		for field, value := range map[string]string{
			FieldEmail:         d.Email,
			FieldAge:           d.Age,
			FieldHeight:        d.Height,
			FieldCurrentWeight: d.CurrentWeight,
			FieldGoalWeight:    d.GoalWeight,
		} {
			if msg := ValidateField(field, value); msg != "" {
				errs[field] = msg
			}
		}
		if d.Gender == "" {
			errs[FieldGender] = "Gender is required"
		} else if !hasOption(Genders, d.Gender) {
			errs[FieldGender] = "Please select a valid gender"
		}
	case 2:
		if d.ExperienceLevel == "" {
			errs[FieldExperienceLevel] = "Experience level is required"
		} else if !hasOption(ExperienceLevels, d.ExperienceLevel) {
			errs[FieldExperienceLevel] = "Please select a valid experience level"
		}
		if d.WorkoutDays == "" {
			errs[FieldWorkoutDays] = "Workout days are required"
		} else if !hasOption(WorkoutDays, d.WorkoutDays) {
			errs[FieldWorkoutDays] = "Workout days must be between 1 and 7"
		}
	case 3:
		if len(d.PreferredWorkoutTypes) == 0 {
			errs[FieldPreferredWorkoutTypes] = "Select at least one workout type"
		}
		if len(d.FitnessGoals) == 0 {
			errs[FieldFitnessGoals] = "Select at least one fitness goal"
		}
	case 4:
		// health notes are optional
	default:
		errs["step"] = fmt.Sprintf("unknown step %d", step)
	}
	return errs
}

// AllStepErrors merges the errors of every step.
func AllStepErrors(d Data) ValidationErrors {
	all := ValidationErrors{}
	for step := 1; step <= TotalSteps; step++ {
		for k, v := range StepErrors(step, d) {
			all[k] = v
		}
	}
	return all
}
