package notify

import (
	"github.com/CrazyDud/swansa-peacefulplay-website-fixed/internal/domain/chain"
	"github.com/CrazyDud/swansa-peacefulplay-website-fixed/internal/domain/model"
)

// Delivery method names as reported to the site.
const (
	MethodSendGrid = "SendGrid"
	MethodSMTP     = "Gmail SMTP"
	MethodTestMode = "Test Mode"
)

// Warnings attached to degraded outcomes.
const (
	WarningTestMode = "Email sent in TEST MODE. Configure Gmail App Password or SendGrid API Key for production emails."
	WarningFailed   = "Please configure Gmail App Password or SendGrid API Key"
)

// Address is a mailbox with an optional display name.
type Address struct {
	Name  string
	Email string
}

// Envelope is one rendered submission ready for a delivery tier.
type Envelope struct {
	SubmissionID string
	From         Address
	ReplyTo      Address
	To           []string
	Content      Content
}

// Delivery is what a tier reports after accepting an envelope.
type Delivery struct {
	MessageID  string
	PreviewURL string
	// Sandbox marks deliveries that went to a disposable test account.
	Sandbox bool
}

// Tier delivers an envelope. Its Name is the method reported on success.
type Tier = chain.Tier[Envelope, Delivery]

// Result is the user-visible outcome of a submission.
type Result struct {
	Success    bool
	Method     string
	Warning    string
	PreviewURL string
	Error      string
	TestMode   bool
}

// Receipt is returned for every accepted submission, delivered or not.
type Receipt struct {
	Submission model.ContactSubmission
	Persisted  bool
	Recipients []string
	Result     Result
}
