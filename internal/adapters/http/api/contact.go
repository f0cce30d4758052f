package api

import (
	"errors"
	"net/http"

	"github.com/CrazyDud/swansa-peacefulplay-website-fixed/internal/domain/model"
	"github.com/CrazyDud/swansa-peacefulplay-website-fixed/internal/domain/notify"
	"github.com/CrazyDud/swansa-peacefulplay-website-fixed/pkg/logger"
)

// ContactHandler handles contact form submissions.
type ContactHandler struct {
	deps ContactDependencies
	log  logger.Logger
}

// NewContactHandler creates a new contact handler.
func NewContactHandler(deps ContactDependencies, log logger.Logger) *ContactHandler {
	return &ContactHandler{deps: deps, log: log}
}

type contactResponse struct {
	Message      string   `json:"message"`
	SubmissionID string   `json:"submissionId"`
	TestMode     bool     `json:"testMode,omitempty"`
	Method       string   `json:"method,omitempty"`
	PreviewURL   string   `json:"previewUrl,omitempty"`
	Warning      string   `json:"warning,omitempty"`
	Recipients   []string `json:"recipients,omitempty"`
	Error        string   `json:"error,omitempty"`
}

// HandleContact handles POST /api/contact and the GET liveness probe.
func (h *ContactHandler) HandleContact(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_contact"
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, messageResponse{Message: "Contact API endpoint is working"})
		return
	case http.MethodPost:
	default:
		http.NotFound(w, r)
		return
	}

	var in model.ContactInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	receipt, err := h.deps.SubmitContact(r.Context(), in)
	switch {
	case errors.Is(err, notify.ErrMissingFields):
		writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	case err != nil:
		h.log.Error(r.Context(), "contact submission failed", logger.Error(Wrap(op, err)))
		writeError(w, http.StatusInternalServerError, "Failed to submit contact form")
		return
	}

	writeJSON(w, http.StatusOK, contactBody(receipt))
}

func contactBody(rec notify.Receipt) contactResponse {
	res := rec.Result
	switch {
	case res.Success && res.TestMode:
		return contactResponse{
			Message:      "Contact form submitted and email sent via " + res.Method + "!",
			SubmissionID: rec.Submission.ID,
			TestMode:     true,
			Method:       res.Method,
			PreviewURL:   res.PreviewURL,
			Warning:      res.Warning,
		}
	case res.Success:
		return contactResponse{
			Message:      "Contact form submitted and email sent successfully via " + res.Method + "!",
			SubmissionID: rec.Submission.ID,
			Method:       res.Method,
			Recipients:   rec.Recipients,
		}
	}

	errMsg := res.Error
	if errMsg == "" {
		errMsg = "All email delivery methods failed"
	}
	warning := notify.WarningFailed
	if res.TestMode {
		warning = res.Warning
	}
	return contactResponse{
		Message:      "Contact form submitted successfully, but email delivery failed",
		SubmissionID: rec.Submission.ID,
		TestMode:     res.TestMode,
		PreviewURL:   res.PreviewURL,
		Error:        errMsg,
		Warning:      warning,
	}
}
