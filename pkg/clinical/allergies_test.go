package clinical

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinidoc-be/internal/entity"
)

func TestExtractAllergiesEntries(t *testing.T) {
	text := "Allergies: Penicillin - rash (severe), Sulfa drugs - hives (moderate); Latex"
	res := entity.NewClinicalExtraction()
	extractAllergies(text, res)

	require.Len(t, res.Allergies, 3)
	assert.Equal(t, entity.Allergy{Allergen: "Penicillin", Reaction: "rash", Severity: "severe"}, res.Allergies[0])
	assert.Equal(t, entity.Allergy{Allergen: "Sulfa drugs", Reaction: "hives", Severity: "moderate"}, res.Allergies[1])
	assert.Equal(t, entity.Allergy{Allergen: "Latex"}, res.Allergies[2])
}

func TestExtractAllergiesNoKnown(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"nkda shorthand", "Allergies: NKDA"},
		{"spelled out", "No known drug allergies."},
		{"without drug", "Allergies: no known allergies"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := entity.NewClinicalExtraction()
			extractAllergies(tt.text, res)
			require.Len(t, res.Allergies, 1)
			assert.Equal(t, entity.Allergy{Allergen: "None"}, res.Allergies[0])
		})
	}
}

func TestExtractAllergiesNoKnownSuppressesOtherMatches(t *testing.T) {
	// A negative statement anywhere overrides listed allergies; the document
	// is contradictory and the negative claim is authoritative.
	text := `Allergies: Penicillin - rash (severe)
Later addendum: NKDA`

	res := entity.NewClinicalExtraction()
	extractAllergies(text, res)

	require.Len(t, res.Allergies, 1)
	assert.Equal(t, "None", res.Allergies[0].Allergen)
}

func TestExtractAllergiesAbsent(t *testing.T) {
	res := entity.NewClinicalExtraction()
	extractAllergies("Patient tolerated the procedure well.", res)
	assert.Empty(t, res.Allergies)
}
