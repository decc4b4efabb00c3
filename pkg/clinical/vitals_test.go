package clinical

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinidoc-be/internal/entity"
)

func extractVitalsFrom(t *testing.T, text string) entity.Vitals {
	t.Helper()
	res := entity.NewClinicalExtraction()
	extractVitals(text, res)
	return res.Vitals
}

func TestExtractVitalsBloodPressure(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"labeled", "BP: 120/80", "120/80"},
		{"full label", "Blood pressure = 135/85", "135/85"},
		{"unit suffix", "recorded at 118/76 mmHg today", "118/76"},
		{"spaces around slash", "BP: 120 / 80", "120/80"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := extractVitalsFrom(t, tt.text)
			require.NotNil(t, v.BloodPressure)
			assert.Equal(t, tt.want, *v.BloodPressure)
		})
	}
}

func TestExtractVitalsLastMatchWins(t *testing.T) {
	text := "Admission BP: 150/95. Stabilized overnight. Discharge BP: 124/78."
	v := extractVitalsFrom(t, text)
	require.NotNil(t, v.BloodPressure)
	assert.Equal(t, "124/78", *v.BloodPressure)
}

func TestExtractVitalsTemperatureUnits(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantVal  float64
		wantUnit string
	}{
		{"explicit fahrenheit", "Temp: 98.6 F", 98.6, "F"},
		{"explicit celsius", "Temperature: 37.2 C", 37.2, "C"},
		{"inferred fahrenheit", "Temp: 101.4", 101.4, "F"},
		{"inferred celsius", "Temp: 36.8", 36.8, "C"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := extractVitalsFrom(t, tt.text)
			require.NotNil(t, v.Temperature)
			assert.Equal(t, tt.wantVal, v.Temperature.Value)
			assert.Equal(t, tt.wantUnit, v.Temperature.Unit)
		})
	}
}

func TestExtractVitalsFullSet(t *testing.T) {
	text := "HR: 72 bpm, RR: 16, SpO2: 98%, Height: 180 cm, Weight: 82 kg, BMI: 25.3"
	v := extractVitalsFrom(t, text)

	require.NotNil(t, v.HeartRate)
	assert.Equal(t, 72, *v.HeartRate)
	require.NotNil(t, v.RespiratoryRate)
	assert.Equal(t, 16, *v.RespiratoryRate)
	require.NotNil(t, v.OxygenSaturation)
	assert.Equal(t, 98, *v.OxygenSaturation)
	require.NotNil(t, v.Height)
	assert.Equal(t, entity.Measurement{Value: 180, Unit: "cm"}, *v.Height)
	require.NotNil(t, v.Weight)
	assert.Equal(t, entity.Measurement{Value: 82, Unit: "kg"}, *v.Weight)
	require.NotNil(t, v.BMI)
	assert.Equal(t, 25.3, *v.BMI)
}

func TestExtractVitalsAbsentStayNil(t *testing.T) {
	v := extractVitalsFrom(t, "Patient resting comfortably.")
	assert.Nil(t, v.BloodPressure)
	assert.Nil(t, v.HeartRate)
	assert.Nil(t, v.Temperature)
	assert.Nil(t, v.RespiratoryRate)
	assert.Nil(t, v.OxygenSaturation)
	assert.Nil(t, v.Height)
	assert.Nil(t, v.Weight)
	assert.Nil(t, v.BMI)
}
