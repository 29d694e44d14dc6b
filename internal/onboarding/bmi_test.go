package onboarding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBMI(t *testing.T) {
	testCases := []struct {
		name         string
		height       float64
		weight       float64
		wantBMI      float64
		wantCategory string
	}{
		{"very tall", 250, 80, 12.8, "Underweight"},
		{"normal", 180, 75, 23.1, "Normal"},
		{"overweight", 175, 85, 27.8, "Overweight"},
		{"obese", 160, 90, 35.2, "Obese"},
		{"boundary normal", 100, 18.5, 18.5, "Normal"},
		{"boundary overweight", 100, 25, 25, "Overweight"},
		{"boundary obese", 100, 30, 30, "Obese"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			bmi, err := BMI(tc.height, tc.weight)
			require.NoError(t, err)
			assert.Equal(t, tc.wantBMI, bmi)
			assert.Equal(t, tc.wantCategory, BMICategory(bmi))
		})
	}

	_, err := BMI(0, 80)
	assert.ErrorIs(t, err, ErrBMIInput)
	_, err = BMI(180, -1)
	assert.ErrorIs(t, err, ErrBMIInput)
}

func TestData_BMI(t *testing.T) {
	d := Data{Height: "250"}
	assert.Nil(t, d.CurrentBMI())
	assert.Nil(t, d.GoalBMI())

	d.CurrentWeight = "80"
	d.GoalWeight = "100"
	require.NotNil(t, d.CurrentBMI())
	assert.Equal(t, &BMIResult{Value: 12.8, Category: "Underweight"}, d.CurrentBMI())
	assert.Equal(t, &BMIResult{Value: 16, Category: "Underweight"}, d.GoalBMI())

	d.Height = "tall"
	assert.Nil(t, d.CurrentBMI())
}
