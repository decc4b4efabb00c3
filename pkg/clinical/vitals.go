package clinical

import (
	"regexp"
	"strconv"
	"strings"

	"clinidoc-be/internal/entity"
)

// Reports commonly restate admission vitals followed by updated readings
// later in the document, so for every vital the last match in document order
// wins.

var (
	bpPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:blood\s+pressure|b/p|bp)\s*[:=]?\s*(\d{2,3}\s*/\s*\d{2,3})`),
		regexp.MustCompile(`\b(\d{2,3}/\d{2,3})\s*mmHg`),
	}
	heartRatePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:heart\s+rate|pulse|hr)\s*[:=]?\s*(\d{2,3})\s*(?:bpm)?\b`),
	}
	temperaturePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)temp(?:erature)?\s*[:=]?\s*(\d{2,3}(?:\.\d+)?)\s*°?\s*([FC])?\b`),
	}
	respRatePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:respiratory\s+rate|resp\s+rate|rr)\s*[:=]?\s*(\d{1,2})\b`),
	}
	oxygenPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:oxygen\s+saturation|o2\s*sat(?:uration)?|spo2)\s*[:=]?\s*(\d{2,3})\s*%?`),
	}
	heightPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)height\s*[:=]?\s*(\d{1,3}(?:\.\d+)?)\s*(cm|in|m)\b`),
	}
	weightPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)weight\s*[:=]?\s*(\d{1,3}(?:\.\d+)?)\s*(kg|lbs?)\b`),
	}
	bmiPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bbmi\s*[:=]?\s*(\d{1,2}(?:\.\d+)?)\b`),
	}
)

func extractVitals(text string, res *entity.ClinicalExtraction) {
	v := &res.Vitals

	if m := lastMatch(text, bpPatterns); m != nil {
		bp := strings.ReplaceAll(m[1], " ", "")
		v.BloodPressure = &bp
	}
	if m := lastMatch(text, heartRatePatterns); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			v.HeartRate = &n
		}
	}
	if m := lastMatch(text, temperaturePatterns); m != nil {
		if val, err := strconv.ParseFloat(m[1], 64); err == nil {
			unit := strings.ToUpper(m[2])
			if unit == "" {
				// No explicit unit: human body temperatures above 45 can only
				// be Fahrenheit.
				if val > 45 {
					unit = "F"
				} else {
					unit = "C"
				}
			}
			v.Temperature = &entity.Measurement{Value: val, Unit: unit}
		}
	}
	if m := lastMatch(text, respRatePatterns); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			v.RespiratoryRate = &n
		}
	}
	if m := lastMatch(text, oxygenPatterns); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			v.OxygenSaturation = &n
		}
	}
	if m := lastMatch(text, heightPatterns); m != nil {
		if val, err := strconv.ParseFloat(m[1], 64); err == nil {
			v.Height = &entity.Measurement{Value: val, Unit: strings.ToLower(m[2])}
		}
	}
	if m := lastMatch(text, weightPatterns); m != nil {
		if val, err := strconv.ParseFloat(m[1], 64); err == nil {
			v.Weight = &entity.Measurement{Value: val, Unit: strings.ToLower(m[2])}
		}
	}
	if m := lastMatch(text, bmiPatterns); m != nil {
		if val, err := strconv.ParseFloat(m[1], 64); err == nil {
			v.BMI = &val
		}
	}
}

// lastMatch returns the submatches of the match with the greatest start
// offset across all accepted patterns for one vital.
func lastMatch(text string, patterns []*regexp.Regexp) []string {
	bestStart := -1
	var best []string

	for _, re := range patterns {
		locs := re.FindAllStringSubmatchIndex(text, -1)
		for _, loc := range locs {
			if loc[0] > bestStart {
				bestStart = loc[0]
				best = submatches(text, loc)
			}
		}
	}
	return best
}

func submatches(text string, loc []int) []string {
	groups := make([]string, 0, len(loc)/2)
	for i := 0; i < len(loc); i += 2 {
		if loc[i] < 0 {
			groups = append(groups, "")
			continue
		}
		groups = append(groups, text[loc[i]:loc[i+1]])
	}
	return groups
}
