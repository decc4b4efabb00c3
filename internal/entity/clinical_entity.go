package entity

// Lab panel names. Every extraction result carries all five keys, even when
// a panel matched nothing.
const (
	PanelCBC       = "cbc"
	PanelMetabolic = "metabolic"
	PanelLiver     = "liver"
	PanelLipids    = "lipids"
	PanelOther     = "other"
)

var LabPanels = []string{PanelCBC, PanelMetabolic, PanelLiver, PanelLipids, PanelOther}

// Measurement keeps the value together with the unit it was reported in.
// Values are never converted between units.
type Measurement struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

type Vitals struct {
	BloodPressure    *string      `json:"blood_pressure"`
	HeartRate        *int         `json:"heart_rate"`
	Temperature      *Measurement `json:"temperature"`
	RespiratoryRate  *int         `json:"respiratory_rate"`
	OxygenSaturation *int         `json:"oxygen_saturation"`
	Height           *Measurement `json:"height"`
	Weight           *Measurement `json:"weight"`
	BMI              *float64     `json:"bmi"`
}

type Medication struct {
	Name      string `json:"name"`
	Dose      string `json:"dose"`
	Route     string `json:"route,omitempty"`
	Frequency string `json:"frequency,omitempty"`
}

type Diagnosis struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	CodeSystem  string `json:"code_system"`
}

type Allergy struct {
	Allergen string `json:"allergen"`
	Reaction string `json:"reaction,omitempty"`
	Severity string `json:"severity,omitempty"`
}

// ClinicalExtraction is a pure function of the document text: extracting the
// same text twice yields an identical result.
type ClinicalExtraction struct {
	Vitals      Vitals                        `json:"vitals"`
	Medications []Medication                  `json:"medications"`
	LabResults  map[string]map[string]float64 `json:"lab_results"`
	Diagnoses   []Diagnosis                   `json:"diagnoses"`
	Allergies   []Allergy                     `json:"allergies"`
}

// NewClinicalExtraction returns an empty result with all five lab panels
// present. Callers rely on the panel keys always existing.
func NewClinicalExtraction() *ClinicalExtraction {
	labs := make(map[string]map[string]float64, len(LabPanels))
	for _, panel := range LabPanels {
		labs[panel] = map[string]float64{}
	}
	return &ClinicalExtraction{
		Medications: []Medication{},
		LabResults:  labs,
		Diagnoses:   []Diagnosis{},
		Allergies:   []Allergy{},
	}
}
