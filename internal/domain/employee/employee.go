package employee

import "strings"

// Candidate is one prospective employee row awaiting dedup evaluation.
// Empty strings stand for absent values.
type Candidate struct {
	Name      string `json:"name"`
	WorkEmail string `json:"work_email,omitempty"`
	JobTitle  string `json:"job_title,omitempty"`
	WorkPhone string `json:"work_phone,omitempty"`
}

func (c Candidate) Valid() bool {
	return strings.TrimSpace(c.Name) != ""
}

type Batch []Candidate

// NewEmployee holds the fields handed to the record store. Nil pointers are stored as NULL.
type NewEmployee struct {
	Name      string
	WorkEmail *string
	JobTitle  *string
	WorkPhone *string
}

func NewEmployeeFromCandidate(c Candidate) NewEmployee {
	return NewEmployee{
		Name:      strings.TrimSpace(c.Name),
		WorkEmail: optional(NormalizeEmail(c.WorkEmail)),
		JobTitle:  optional(strings.TrimSpace(c.JobTitle)),
		WorkPhone: optional(strings.TrimSpace(c.WorkPhone)),
	}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
