// Package clinical extracts structured clinical entities from medical-report
// text using a fixed taxonomy of regular-expression matchers. Extraction is
// deterministic: the result is a pure function of the input text.
package clinical

import (
	"errors"
	"unicode"
	"unicode/utf8"

	"clinidoc-be/internal/entity"
)

// ErrMalformedInput is returned for input that is not text at all (binary
// garbage). Absence of any clinical category is not an error.
var ErrMalformedInput = errors.New("input is not matchable text")

// Matcher is one clinical category of the extraction taxonomy. Every matcher
// runs unconditionally over the full text; matchers never short-circuit each
// other.
type Matcher struct {
	Category string
	Apply    func(text string, res *entity.ClinicalExtraction)
}

func matchers() []Matcher {
	return []Matcher{
		{Category: "vitals", Apply: extractVitals},
		{Category: "medications", Apply: extractMedications},
		{Category: "lab_results", Apply: extractLabs},
		{Category: "diagnoses", Apply: extractDiagnoses},
		{Category: "allergies", Apply: extractAllergies},
	}
}

// Extract runs the full matcher taxonomy over the document text.
func Extract(text string) (*entity.ClinicalExtraction, error) {
	if !isTextual(text) {
		return nil, ErrMalformedInput
	}

	res := entity.NewClinicalExtraction()
	for _, m := range matchers() {
		m.Apply(text, res)
	}
	return res, nil
}

// isTextual rejects byte streams that are clearly not text. Empty input is
// textual; it simply yields an empty result.
func isTextual(text string) bool {
	if text == "" {
		return true
	}
	if !utf8.ValidString(text) {
		return false
	}

	var printable, total int
	for _, r := range text {
		total++
		if unicode.IsPrint(r) || unicode.IsSpace(r) {
			printable++
		}
	}
	// Real reports are overwhelmingly printable; binary payloads are not.
	return float64(printable)/float64(total) >= 0.85
}
