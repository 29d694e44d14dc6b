package onboarding

import (
	"errors"
	"math"
)

var ErrBMIInput = errors.New("height and weight must be positive numbers")

type BMIResult struct {
	Value    float64 `json:"bmi"`
	Category string  `json:"category"`
}

// BMI computes weight / height(m)^2, rounded to one decimal.
func BMI(heightCm, weightKg float64) (float64, error) {
	if heightCm <= 0 || weightKg <= 0 || math.IsInf(heightCm, 0) || math.IsInf(weightKg, 0) {
		return 0, ErrBMIInput
	}
	heightM := heightCm / 100
	bmi := weightKg / (heightM * heightM)
	return math.Round(bmi*10) / 10, nil
}

func BMICategory(bmi float64) string {
	switch {
	case bmi < 18.5:
		return "Underweight"
	case bmi < 25:
		return "Normal"
	case bmi < 30:
		return "Overweight"
	default:
		return "Obese"
	}
}

// BMIFromStrings parses raw questionnaire answers.
func BMIFromStrings(height, weight string) (*BMIResult, error) {
	h, okH := parseNumber(height)
	w, okW := parseNumber(weight)
	if !okH || !okW {
		return nil, ErrBMIInput
	}
	bmi, err := BMI(h, w)
	if err != nil {
		return nil, err
	}
	return &BMIResult{Value: bmi, Category: BMICategory(bmi)}, nil
}

// CurrentBMI is nil until height and current weight are both filled in.
func (d Data) CurrentBMI() *BMIResult {
	if d.Height == "" || d.CurrentWeight == "" {
		return nil
	}
	res, err := BMIFromStrings(d.Height, d.CurrentWeight)
	if err != nil {
		return nil
	}
	return res
}

func (d Data) GoalBMI() *BMIResult {
	if d.Height == "" || d.GoalWeight == "" {
		return nil
	}
	res, err := BMIFromStrings(d.Height, d.GoalWeight)
	if err != nil {
		return nil
	}
	return res
}
