package clinical

import (
	"regexp"
	"sort"
	"strings"

	"clinidoc-be/internal/entity"
)

const codeSystemICD10 = "ICD-10"

// icd10Shape validates the structural form of an ICD-10 code: one letter,
// two digits, optional "." and one or two more digits.
var icd10Shape = regexp.MustCompile(`^[A-Z]\d{2}(?:\.\d{1,2})?$`)

// Three accepted surface forms, all normalized to the same {code, description}
// shape.
var (
	dxLabeled  = regexp.MustCompile(`(?i)diagnosis\s*[:=]\s*([^\n(]+?)\s*\(([A-Za-z]\d{2}(?:\.\d{1,2})?)\)`)
	dxICDFirst = regexp.MustCompile(`(?i)icd-?10\s*[:=]\s*([A-Za-z]\d{2}(?:\.\d{1,2})?)\s*[-–]\s*([^\n]+)`)
	dxNumbered = regexp.MustCompile(`(?m)^\s*\d+\.\s+([^\n]+?)\s+([A-Za-z]\d{2}(?:\.\d{1,2})?)\s*$`)
)

type diagnosisMatch struct {
	offset int
	diag   entity.Diagnosis
}

func extractDiagnoses(text string, res *entity.ClinicalExtraction) {
	var found []diagnosisMatch

	collect := func(re *regexp.Regexp, codeGroup, descGroup int) {
		for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
			m := submatches(text, loc)
			code := strings.ToUpper(strings.TrimSpace(m[codeGroup]))
			desc := strings.TrimSpace(m[descGroup])

			// Near-miss codes are common noise in scanned reports; a failed
			// shape check drops the line silently.
			if !icd10Shape.MatchString(code) || desc == "" {
				continue
			}
			found = append(found, diagnosisMatch{
				offset: loc[0],
				diag: entity.Diagnosis{
					Code:        code,
					Description: desc,
					CodeSystem:  codeSystemICD10,
				},
			})
		}
	}

	collect(dxLabeled, 2, 1)
	collect(dxICDFirst, 1, 2)
	collect(dxNumbered, 2, 1)

	// Surface forms are matched independently; document order is restored by
	// match offset.
	sort.SliceStable(found, func(i, j int) bool { return found[i].offset < found[j].offset })

	for _, f := range found {
		res.Diagnoses = append(res.Diagnoses, f.diag)
	}
}
