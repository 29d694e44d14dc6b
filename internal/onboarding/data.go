package onboarding

import "slices"

// Field names match the JSON keys of Data.
const (
	FieldEmail                 = "email"
	FieldAge                   = "age"
	FieldGender                = "gender"
	FieldHeight                = "height"
	FieldCurrentWeight         = "currentWeight"
	FieldGoalWeight            = "goalWeight"
	FieldExperienceLevel       = "experienceLevel"
	FieldWorkoutDays           = "workoutDays"
	FieldPreferredWorkoutTypes = "preferredWorkoutTypes"
	FieldFitnessGoals          = "fitnessGoals"
	FieldHealthNotes           = "healthNotes"
)

// Data is everything collected by the onboarding questionnaire.
// Numeric answers are kept as typed by the user.
type Data struct {
	Email                 string   `json:"email"`
	Age                   string   `json:"age"`
	Gender                string   `json:"gender"`
	Height                string   `json:"height"`
	CurrentWeight         string   `json:"currentWeight"`
	GoalWeight            string   `json:"goalWeight"`
	ExperienceLevel       string   `json:"experienceLevel"`
	WorkoutDays           string   `json:"workoutDays"`
	PreferredWorkoutTypes []string `json:"preferredWorkoutTypes"`
	FitnessGoals          []string `json:"fitnessGoals"`
	HealthNotes           string   `json:"healthNotes"`
}

// ValidationErrors maps a field name to its current error message.
type ValidationErrors map[string]string

func (ve ValidationErrors) Has(field string) bool {
	return ve[field] != ""
}

type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

var Genders = []Option{
	{Value: "male", Label: "Male"},
	{Value: "female", Label: "Female"},
	{Value: "other", Label: "Other"},
	{Value: "prefer-not-to-say", Label: "Prefer not to say"},
}

var ExperienceLevels = []Option{
	{Value: "beginner", Label: "Beginner"},
	{Value: "intermediate", Label: "Intermediate"},
	{Value: "advanced", Label: "Advanced"},
}

var WorkoutDays = []Option{
	{Value: "1", Label: "1 day"},
	{Value: "2", Label: "2 days"},
	{Value: "3", Label: "3 days"},
	{Value: "4", Label: "4 days"},
	{Value: "5", Label: "5 days"},
	{Value: "6", Label: "6 days"},
	{Value: "7", Label: "7 days"},
}

var WorkoutTypes = []string{
	"Strength Training",
	"Cardio",
	"HIIT",
	"Yoga",
	"Pilates",
	"Swimming",
	"Running",
	"Cycling",
	"Boxing",
	"Dance",
	"Martial Arts",
	"Calisthenics",
}

var FitnessGoals = []string{
	"Build Muscle",
	"Lose Weight",
	"Get Stronger",
	"Improve Endurance",
	"Better Flexibility",
	"Improve Recovery",
}

func hasOption(options []Option, value string) bool {
	return slices.ContainsFunc(options, func(o Option) bool {
		return o.Value == value
	})
}

// toggle adds item when absent and removes it otherwise, keeping insertion order.
func toggle(items []string, item string) []string {
	if i := slices.Index(items, item); i >= 0 {
		return slices.Delete(slices.Clone(items), i, i+1)
	}
	return append(slices.Clone(items), item)
}
