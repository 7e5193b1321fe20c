package submission

import (
	"errors"

	"carddex/internal/catalog"
	"carddex/internal/grading"
)

// ErrAlreadyInFlight rejects a duplicate submit while one is active. It guards
// against a double-submit race the UI should already prevent; it is not a
// user-facing failure.
var ErrAlreadyInFlight = errors.New("submission already in flight")

// FailureKind classifies a failed submission attempt.
type FailureKind string

const (
	FailureUploadFailed        FailureKind = "upload_failed"
	FailureNoIdentification    FailureKind = "no_identification"
	FailureNoMatch             FailureKind = "no_match"
	FailureInsufficientCredits FailureKind = "insufficient_credits"
	FailureGradingFailed       FailureKind = "grading_failed"
)

// Failure describes why an attempt failed and whether retrying the same input
// can succeed.
type Failure struct {
	Kind      FailureKind
	Retryable bool
	Message   string
	Err       error
}

// Progress records sub-steps completed by earlier attempts. It lives on the
// capture session and is mutated in place, so a retried attempt skips uploads
// that landed and a match that already resolved.
type Progress struct {
	FrontURL string
	BackURL  string
	Matched  *catalog.Card
}

// FrontUploaded reports whether the front image upload already completed.
func (p *Progress) FrontUploaded() bool { return p != nil && p.FrontURL != "" }

// BackUploaded reports whether the back image upload already completed.
func (p *Progress) BackUploaded() bool { return p != nil && p.BackURL != "" }

// Outcome is the result of one submission attempt: either a matched card with
// an optional grade, or a classified failure.
type Outcome struct {
	Card    *catalog.Card
	Grading *grading.Result
	Failure *Failure
}

// Success reports whether the attempt completed fully.
func (o Outcome) Success() bool { return o.Failure == nil }

func failure(kind FailureKind, retryable bool, message string, err error) Outcome {
	return Outcome{Failure: &Failure{
		Kind:      kind,
		Retryable: retryable,
		Message:   message,
		Err:       err,
	}}
}

// UserMessage returns display guidance for a failure. Retryable kinds invite a
// retry; terminal kinds steer the user to the action that can actually help.
func (f *Failure) UserMessage() string {
	if f == nil {
		return ""
	}
	switch f.Kind {
	case FailureUploadFailed:
		return "Image upload failed. Check your connection and try again."
	case FailureNoIdentification:
		return "The card could not be identified from the photos. Try again or search the catalog manually."
	case FailureNoMatch:
		return "No catalog entry matched this card. Use manual catalog search to attach it."
	case FailureInsufficientCredits:
		return "You are out of grading credits. Purchase credits to grade this card."
	case FailureGradingFailed:
		return "The card was matched but grading failed. Try again to grade it."
	default:
		return f.Message
	}
}
