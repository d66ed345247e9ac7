// internal/briefing/briefing.go
//
// Defines the briefing draft that the wizard collects, the three steps that
// partition its fields, and the validation rule attached to each step.

package briefing

import (
	"fmt"
	"strings"
)

// Step identifies one of the wizard screens.
type Step int

const (
	FirstStep Step = 1
	LastStep  Step = 3
)

// Valid reports whether s names a real wizard step.
func (s Step) Valid() bool {
	return s >= FirstStep && s <= LastStep
}

// Field names one draft field using its wire (JSON) key.
type Field string

const (
	FieldCompanyName    Field = "company_name"
	FieldIndustry       Field = "industry"
	FieldTargetAudience Field = "target_audience"
	FieldProblem        Field = "problem"
	FieldSolution       Field = "solution"
	FieldObjectives     Field = "objectives"
	FieldTimeline       Field = "timeline"
	FieldBudget         Field = "budget"
)

// Fields lists every draft field in wizard order.
var Fields = []Field{
	FieldCompanyName,
	FieldIndustry,
	FieldTargetAudience,
	FieldProblem,
	FieldSolution,
	FieldObjectives,
	FieldTimeline,
	FieldBudget,
}

var stepFields = map[Step][]Field{
	1: {FieldCompanyName, FieldIndustry, FieldTargetAudience},
	2: {FieldProblem, FieldSolution},
	3: {FieldObjectives, FieldTimeline, FieldBudget},
}

// FieldsFor returns the fields editable on the given step.
func FieldsFor(step Step) []Field {
	return append([]Field(nil), stepFields[step]...)
}

// StepOf returns the step that owns a field.
func (f Field) StepOf() Step {
	for step, fields := range stepFields {
		for _, candidate := range fields {
			if candidate == f {
				return step
			}
		}
	}
	return 0
}

// ParseField resolves a wire key (or its dashed form) to a Field.
func ParseField(name string) (Field, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
	for _, f := range Fields {
		if string(f) == normalized {
			return f, nil
		}
	}
	return "", fmt.Errorf("briefing: unknown field %q", name)
}

// Draft is the in-progress set of wizard values. The zero value is the
// all-empty draft.
type Draft struct {
	CompanyName    string `json:"company_name"`
	Industry       string `json:"industry"`
	TargetAudience string `json:"target_audience"`
	Problem        string `json:"problem"`
	Solution       string `json:"solution"`
	Objectives     string `json:"objectives"`
	Timeline       string `json:"timeline"`
	Budget         string `json:"budget"`
}

// Get returns the current value of a field.
func (d Draft) Get(f Field) string {
	if ptr := d.slot(f); ptr != nil {
		return *ptr
	}
	return ""
}

// Set writes a field value. Unknown fields are ignored.
func (d *Draft) Set(f Field, value string) {
	if ptr := d.slot(f); ptr != nil {
		*ptr = value
	}
}

func (d *Draft) slot(f Field) *string {
	switch f {
	case FieldCompanyName:
		return &d.CompanyName
	case FieldIndustry:
		return &d.Industry
	case FieldTargetAudience:
		return &d.TargetAudience
	case FieldProblem:
		return &d.Problem
	case FieldSolution:
		return &d.Solution
	case FieldObjectives:
		return &d.Objectives
	case FieldTimeline:
		return &d.Timeline
	case FieldBudget:
		return &d.Budget
	}
	return nil
}

// IsEmpty reports whether every field is empty.
func (d Draft) IsEmpty() bool {
	return d == Draft{}
}

// Validate applies the rule for a step. Steps outside [1,3] never validate.
func (d Draft) Validate(step Step) bool {
	switch step {
	case 1:
		return notBlank(d.CompanyName) && notBlank(d.Industry) && notBlank(d.TargetAudience)
	case 2:
		return notBlank(d.Problem) && notBlank(d.Solution)
	case 3:
		return notBlank(d.Objectives)
	default:
		return false
	}
}

// Missing lists the required fields of a step that are still blank.
func (d Draft) Missing(step Step) []Field {
	var missing []Field
	for _, f := range requiredFields(step) {
		if !notBlank(d.Get(f)) {
			missing = append(missing, f)
		}
	}
	return missing
}

func requiredFields(step Step) []Field {
	switch step {
	case 1:
		return []Field{FieldCompanyName, FieldIndustry, FieldTargetAudience}
	case 2:
		return []Field{FieldProblem, FieldSolution}
	case 3:
		return []Field{FieldObjectives}
	}
	return nil
}

// Required reports whether the field gates its step.
func (f Field) Required() bool {
	for _, candidate := range requiredFields(f.StepOf()) {
		if candidate == f {
			return true
		}
	}
	return false
}

func notBlank(value string) bool {
	return strings.TrimSpace(value) != ""
}
