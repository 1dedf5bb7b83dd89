package analysis

import (
	"encoding/json"
	"fmt"
	"strings"
)

// RedFlagStatus enum
type RedFlagStatus string

const (
	StatusNormal    RedFlagStatus = "Normal"
	StatusUrgent    RedFlagStatus = "Urgent"
	StatusEmergency RedFlagStatus = "Emergency"
)

// Disclaimer is the canonical application-owned disclaimer. Whatever the
// model returns in its own disclaimer field is discarded and replaced with
// this text.
const Disclaimer = "This information is provided for educational and informational purposes only and does not constitute medical advice, diagnosis, or treatment. Always seek the advice of a qualified healthcare professional with any questions regarding a medical condition. In case of emergency, contact local emergency services immediately."

// Result is the structured assessment for one submitted symptom description.
type Result struct {
	Summary             string        `json:"summary"`
	Considerations      []string      `json:"considerations"`
	RedFlagStatus       RedFlagStatus `json:"redFlagStatus"`
	RedFlagDetails      string        `json:"redFlagDetails"`
	NextSteps           string        `json:"nextSteps"`
	MedicalEducation    string        `json:"medicalEducation"`
	Disclaimer          string        `json:"disclaimer"`
	IsEmergencyOverride bool          `json:"isEmergencyOverride"`
}

// wire mirrors Result with pointer fields so a missing key is
// distinguishable from a zero value. Extra keys in the payload are ignored.
type wire struct {
	Summary             *string   `json:"summary"`
	Considerations      *[]string `json:"considerations"`
	RedFlagStatus       *string   `json:"redFlagStatus"`
	RedFlagDetails      *string   `json:"redFlagDetails"`
	NextSteps           *string   `json:"nextSteps"`
	MedicalEducation    *string   `json:"medicalEducation"`
	Disclaimer          *string   `json:"disclaimer"`
	IsEmergencyOverride *bool     `json:"isEmergencyOverride"`
}

// Decode parses a model payload into a normalized Result. Any payload that
// is not valid JSON, or that is missing a required field, fails with
// ErrMalformedResponse.
func Decode(payload []byte) (*Result, error) {
	var w wire
	if err := json.Unmarshal(payload, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if w.Summary == nil || w.Considerations == nil || w.RedFlagStatus == nil ||
		w.RedFlagDetails == nil || w.NextSteps == nil || w.MedicalEducation == nil ||
		w.Disclaimer == nil || w.IsEmergencyOverride == nil {
		return nil, fmt.Errorf("%w: required field missing", ErrMalformedResponse)
	}

	r := &Result{
		Summary:             strings.TrimSpace(*w.Summary),
		Considerations:      *w.Considerations,
		RedFlagStatus:       RedFlagStatus(strings.TrimSpace(*w.RedFlagStatus)),
		RedFlagDetails:      strings.TrimSpace(*w.RedFlagDetails),
		NextSteps:           strings.TrimSpace(*w.NextSteps),
		MedicalEducation:    strings.TrimSpace(*w.MedicalEducation),
		Disclaimer:          *w.Disclaimer,
		IsEmergencyOverride: *w.IsEmergencyOverride,
	}
	if err := r.Normalize(); err != nil {
		return nil, err
	}
	return r, nil
}

// Normalize enforces the result contract in place:
//   - disclaimer is always the canonical text, never model output
//   - isEmergencyOverride is true exactly when the status is Emergency
//   - an unknown status or an empty required field is malformed
//   - a non-Normal status with empty details gets a generic detail line
func (r *Result) Normalize() error {
	switch r.RedFlagStatus {
	case StatusNormal, StatusUrgent, StatusEmergency:
	default:
		return fmt.Errorf("%w: unknown redFlagStatus %q", ErrMalformedResponse, r.RedFlagStatus)
	}
	if r.Summary == "" || r.NextSteps == "" || r.MedicalEducation == "" {
		return fmt.Errorf("%w: empty required field", ErrMalformedResponse)
	}
	if r.Considerations == nil {
		r.Considerations = []string{}
	}
	if r.RedFlagStatus != StatusNormal && r.RedFlagDetails == "" {
		r.RedFlagDetails = "The described symptoms were classified as " + strings.ToLower(string(r.RedFlagStatus)) + "."
	}
	r.IsEmergencyOverride = r.RedFlagStatus == StatusEmergency
	r.Disclaimer = Disclaimer
	return nil
}

// Clone returns an independent copy so a stored snapshot never shares
// backing storage with the live result.
func (r *Result) Clone() *Result {
	cp := *r
	cp.Considerations = append([]string(nil), r.Considerations...)
	return &cp
}
