package clinical

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinidoc-be/internal/entity"
)

const sampleReport = `DISCHARGE SUMMARY

Vital Signs: BP: 142/90, HR: 88 bpm, Temp: 101.2, RR: 20, SpO2: 94%
Height: 175 cm  Weight: 92 kg  BMI: 30.1

Repeat vitals at discharge: Blood Pressure: 128/82, Pulse: 74

Current Medications
Lisinopril 10 mg PO daily
Metformin 500 mg PO BID
Ibuprofen 400 mg PO q6h

Labs:
WBC: 11.2
Hemoglobin: 13.5
Platelets: 250,000
Sodium: 138
Glucose: 152
ALT: 41
Cholesterol: 212
TSH: 2.1

Diagnosis: Essential hypertension (I10)
ICD-10: E11.9 - Type 2 diabetes mellitus

Allergies: Penicillin - rash (severe), Sulfa drugs - hives (moderate)
`

func TestExtractEmptyTextIsValid(t *testing.T) {
	res, err := Extract("")
	require.NoError(t, err)
	require.NotNil(t, res)

	// All panels present even when nothing matched.
	for _, panel := range entity.LabPanels {
		_, ok := res.LabResults[panel]
		assert.True(t, ok, "panel %q missing", panel)
		assert.Empty(t, res.LabResults[panel])
	}
	assert.Empty(t, res.Medications)
	assert.Empty(t, res.Diagnoses)
	assert.Empty(t, res.Allergies)
	assert.Nil(t, res.Vitals.BloodPressure)
}

func TestExtractRejectsBinaryGarbage(t *testing.T) {
	garbage := strings.Repeat("\x00\x01\x02\x7f", 64)
	_, err := Extract(garbage)
	require.ErrorIs(t, err, ErrMalformedInput)
}

func TestExtractTextWithNoClinicalContent(t *testing.T) {
	res, err := Extract("The quick brown fox jumps over the lazy dog.")
	require.NoError(t, err)
	assert.Empty(t, res.Medications)
	assert.Empty(t, res.Diagnoses)
	assert.Nil(t, res.Vitals.HeartRate)
}

func TestExtractIsDeterministic(t *testing.T) {
	first, err := Extract(sampleReport)
	require.NoError(t, err)
	second, err := Extract(sampleReport)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestExtractFullReport(t *testing.T) {
	res, err := Extract(sampleReport)
	require.NoError(t, err)

	// Vitals: the discharge readings restate BP and pulse, so the later
	// values win.
	require.NotNil(t, res.Vitals.BloodPressure)
	assert.Equal(t, "128/82", *res.Vitals.BloodPressure)
	require.NotNil(t, res.Vitals.HeartRate)
	assert.Equal(t, 74, *res.Vitals.HeartRate)
	require.NotNil(t, res.Vitals.Temperature)
	assert.Equal(t, 101.2, res.Vitals.Temperature.Value)
	assert.Equal(t, "F", res.Vitals.Temperature.Unit)

	require.Len(t, res.Medications, 3)
	assert.Equal(t, "Lisinopril", res.Medications[0].Name)
	assert.Equal(t, "q6h", res.Medications[2].Frequency)

	assert.Equal(t, 11.2, res.LabResults[entity.PanelCBC]["wbc"])
	assert.Equal(t, 250000.0, res.LabResults[entity.PanelCBC]["platelets"])

	require.Len(t, res.Diagnoses, 2)
	assert.Equal(t, "I10", res.Diagnoses[0].Code)
	assert.Equal(t, "E11.9", res.Diagnoses[1].Code)

	require.Len(t, res.Allergies, 2)
	assert.Equal(t, "Penicillin", res.Allergies[0].Allergen)
	assert.Equal(t, "severe", res.Allergies[0].Severity)
}
