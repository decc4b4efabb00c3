package clinical

import (
	"fmt"
	"regexp"
	"strings"

	"clinidoc-be/internal/entity"
)

// A medication line is name + dose, optionally route and frequency. A name
// without a dose carries too little signal and is rejected outright.
var medicationPattern = regexp.MustCompile(
	`(?m)^\s*([A-Z][a-zA-Z]+(?:\s+[A-Z][a-zA-Z]+)*)\s+` + // capitalized name tokens
		`(\d+(?:\.\d+)?)\s*(mg|mcg|g|mL)\b` + // dose (required)
		`(?:\s+(PO|IV|IM|SC|SQ|SL|PR)\b)?` + // route
		`(?:[\s,]+([A-Za-z0-9][A-Za-z0-9 ]*?))?\s*$`) // frequency phrase

var routes = map[string]bool{
	"PO": true, "IV": true, "IM": true, "SC": true, "SQ": true, "SL": true, "PR": true,
}

var qHoursPattern = regexp.MustCompile(`(?i)^(?:q(\d+)h|every\s+(\d+)\s+hours?)$`)

func extractMedications(text string, res *entity.ClinicalExtraction) {
	for _, m := range medicationPattern.FindAllStringSubmatch(text, -1) {
		name := strings.TrimSpace(m[1])
		dose := m[2] + m[3]
		route := m[4]
		rawFreq := strings.TrimSpace(m[5])
		freq := normalizeFrequency(rawFreq)
		if freq == "" {
			// Trailing free text ("PRN for pain") hides the frequency token.
			if fields := strings.Fields(rawFreq); len(fields) > 1 {
				freq = normalizeFrequency(fields[0])
			}
		}

		// The name group is greedy over capitalized tokens and can swallow a
		// leading section word like "Medications"; single common section
		// headers are not drug names.
		if isSectionHeader(name) {
			continue
		}

		res.Medications = append(res.Medications, entity.Medication{
			Name:      name,
			Dose:      dose,
			Route:     route,
			Frequency: freq,
		})
	}
}

// normalizeFrequency maps free-text phrases onto the fixed vocabulary
// {daily, BID, TID, QID, PRN, qXh}. Unrecognised phrases are dropped.
func normalizeFrequency(raw string) string {
	if raw == "" {
		return ""
	}
	switch strings.ToLower(raw) {
	case "daily", "once daily", "once a day", "qd":
		return "daily"
	case "bid", "twice daily", "twice a day":
		return "BID"
	case "tid", "three times daily", "three times a day":
		return "TID"
	case "qid", "four times daily", "four times a day":
		return "QID"
	case "prn", "as needed":
		return "PRN"
	}
	if m := qHoursPattern.FindStringSubmatch(raw); m != nil {
		hours := m[1]
		if hours == "" {
			hours = m[2]
		}
		return fmt.Sprintf("q%sh", hours)
	}
	return ""
}

func isSectionHeader(name string) bool {
	switch strings.ToLower(name) {
	case "medications", "medication", "current medications", "meds", "prescriptions":
		return true
	}
	return false
}
