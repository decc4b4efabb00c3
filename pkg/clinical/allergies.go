package clinical

import (
	"regexp"
	"strings"

	"clinidoc-be/internal/entity"
)

var (
	// "No known allergies" / "NKDA" is authoritative: a report cannot claim
	// no allergies and also list specific ones, so the negative statement
	// suppresses every other allergy match in the document.
	noKnownAllergies = regexp.MustCompile(`(?i)(?:allergies?\s*[:=]?\s*)?\b(?:no\s+known\s+(?:drug\s+)?allergies|nkda)\b`)

	allergyLine  = regexp.MustCompile(`(?i)allerg(?:y|ies)\s*[:=]\s*([^\n]+)`)
	allergyEntry = regexp.MustCompile(`^([A-Za-z][A-Za-z\s/]*?)(?:\s*[-–:]\s*([A-Za-z][A-Za-z\s]*?))?(?:\s*\((mild|moderate|severe)\))?\s*$`)
)

func extractAllergies(text string, res *entity.ClinicalExtraction) {
	if noKnownAllergies.MatchString(text) {
		res.Allergies = []entity.Allergy{{Allergen: "None"}}
		return
	}

	for _, line := range allergyLine.FindAllStringSubmatch(text, -1) {
		for _, raw := range strings.FieldsFunc(line[1], func(r rune) bool { return r == ',' || r == ';' }) {
			entry := strings.TrimSpace(raw)
			if entry == "" {
				continue
			}
			m := allergyEntry.FindStringSubmatch(entry)
			if m == nil {
				continue
			}
			allergy := entity.Allergy{
				Allergen: strings.TrimSpace(m[1]),
				Reaction: strings.TrimSpace(m[2]),
				Severity: strings.ToLower(m[3]),
			}
			if allergy.Allergen == "" {
				continue
			}
			res.Allergies = append(res.Allergies, allergy)
		}
	}
}
