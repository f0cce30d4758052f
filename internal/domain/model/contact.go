package model

import "time"

// SubmissionStatus is the lifecycle state of a contact submission.
type SubmissionStatus string

// StatusNew is the only state assigned today.
const StatusNew SubmissionStatus = "new"

// ContactInput is the contact form payload as posted by the site.
type ContactInput struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Company     string `json:"company,omitempty"`
	ServiceType string `json:"serviceType"`
	Subject     string `json:"subject"`
	Message     string `json:"message"`
	Budget      string `json:"budget,omitempty"`
	Timeline    string `json:"timeline,omitempty"`
	Experience  string `json:"experience,omitempty"`
}

// ContactSubmission is a persisted contact form entry. ID is assigned once,
// before delivery, and is the same in the log and in the delivered mail.
type ContactSubmission struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Email           string           `json:"email"`
	Company         *string          `json:"company"`
	ServiceInterest string           `json:"serviceType"`
	Subject         string           `json:"subject"`
	Message         string           `json:"message"`
	BudgetRange     *string          `json:"budget"`
	Timeline        *string          `json:"timeline"`
	ExperienceLevel *string          `json:"experience"`
	Status          SubmissionStatus `json:"status"`
	CreatedAt       time.Time        `json:"createdAt"`
}

// optional maps "" to nil so absent fields persist as null.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// NewContactSubmission builds a submission from the form input.
func NewContactSubmission(id string, in ContactInput, now time.Time) ContactSubmission {
	return ContactSubmission{
		ID:              id,
		Name:            in.Name,
		Email:           in.Email,
		Company:         optional(in.Company),
		ServiceInterest: in.ServiceType,
		Subject:         in.Subject,
		Message:         in.Message,
		BudgetRange:     optional(in.Budget),
		Timeline:        optional(in.Timeline),
		ExperienceLevel: optional(in.Experience),
		Status:          StatusNew,
		CreatedAt:       now.UTC(),
	}
}

// Value dereferences an optional field.
func Value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
