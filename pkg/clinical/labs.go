package clinical

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"clinidoc-be/internal/entity"
)

// labTest is one named test inside a fixed panel. The labels are the surface
// forms accepted in report text; the key is the normalized result key.
type labTest struct {
	panel  string
	key    string
	labels []string
}

var labTests = []labTest{
	{entity.PanelCBC, "wbc", []string{"wbc", "white blood cells?(?: count)?"}},
	{entity.PanelCBC, "rbc", []string{"rbc", "red blood cells?(?: count)?"}},
	{entity.PanelCBC, "hemoglobin", []string{"hemoglobin", "hgb"}},
	{entity.PanelCBC, "hematocrit", []string{"hematocrit", "hct"}},
	{entity.PanelCBC, "platelets", []string{"platelets?", "plt"}},

	{entity.PanelMetabolic, "sodium", []string{"sodium", "na"}},
	{entity.PanelMetabolic, "potassium", []string{"potassium", "k"}},
	{entity.PanelMetabolic, "chloride", []string{"chloride", "cl"}},
	{entity.PanelMetabolic, "co2", []string{"co2", "bicarbonate", "hco3"}},
	{entity.PanelMetabolic, "bun", []string{"bun", "blood urea nitrogen"}},
	{entity.PanelMetabolic, "creatinine", []string{"creatinine"}},
	{entity.PanelMetabolic, "glucose", []string{"glucose"}},
	{entity.PanelMetabolic, "calcium", []string{"calcium"}},

	{entity.PanelLiver, "ast", []string{"ast"}},
	{entity.PanelLiver, "alt", []string{"alt"}},
	{entity.PanelLiver, "alp", []string{"alp", "alkaline phosphatase"}},
	{entity.PanelLiver, "bilirubin", []string{"(?:total )?bilirubin"}},
	{entity.PanelLiver, "albumin", []string{"albumin"}},

	{entity.PanelLipids, "total_cholesterol", []string{"(?:total )?cholesterol"}},
	{entity.PanelLipids, "ldl", []string{"ldl(?: cholesterol)?"}},
	{entity.PanelLipids, "hdl", []string{"hdl(?: cholesterol)?"}},
	{entity.PanelLipids, "triglycerides", []string{"triglycerides?"}},

	{entity.PanelOther, "tsh", []string{"tsh"}},
	{entity.PanelOther, "a1c", []string{"hba1c", "a1c", "hemoglobin a1c"}},
	{entity.PanelOther, "inr", []string{"inr"}},
	{entity.PanelOther, "troponin", []string{"troponin(?: i| t)?"}},
}

// labPatterns is compiled once; extraction runs on every uploaded document.
var labPatterns = compileLabPatterns()

type compiledLabTest struct {
	panel string
	key   string
	re    *regexp.Regexp
}

func compileLabPatterns() []compiledLabTest {
	compiled := make([]compiledLabTest, 0, len(labTests))
	for _, t := range labTests {
		// <label>: <number> — comma thousands groups allowed, trailing unit
		// and reference range ignored.
		pattern := `(?i)\b(?:` + strings.Join(t.labels, "|") + `)\s*[:=]\s*(\d{1,3}(?:,\d{3})*(?:\.\d+)?|\d+(?:\.\d+)?)`
		compiled = append(compiled, compiledLabTest{
			panel: t.panel,
			key:   t.key,
			re:    regexp.MustCompile(pattern),
		})
	}
	return compiled
}

func extractLabs(text string, res *entity.ClinicalExtraction) {
	for _, t := range labPatterns {
		m := t.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		raw := strings.ReplaceAll(m[1], ",", "")
		val, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsInf(val, 0) || math.IsNaN(val) {
			continue
		}
		res.LabResults[t.panel][t.key] = val
	}
}
