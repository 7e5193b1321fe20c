package capture

import (
	"log/slog"

	"github.com/google/uuid"

	"carddex/internal/catalog"
	"carddex/internal/grading"
	"carddex/internal/logging"
	"carddex/internal/prefs"
	"carddex/internal/services"
	"carddex/internal/submission"
)

// Session is the per-interaction capture state machine. It is owned by a
// single caller and never shared, so no locking happens here; the inFlight
// guard exists to catch a duplicate submit, not concurrent actors.
type Session struct {
	id           string
	user         string
	step         Step
	frontImage   []byte
	backImage    []byte
	progress     *submission.Progress
	matched      *catalog.Card
	grading      *grading.Result
	failure      *submission.Failure
	inFlight     bool
	showTutorial bool
	prefs        prefs.Setter
	logger       *slog.Logger
}

// SessionOption customizes a new session.
type SessionOption func(*Session)

// WithTutorial controls whether Begin routes through the tutorial step.
func WithTutorial(show bool) SessionOption {
	return func(s *Session) { s.showTutorial = show }
}

// WithUser sets the credit/preference account the session acts for.
func WithUser(user string) SessionOption {
	return func(s *Session) { s.user = user }
}

// NewSession creates an idle session. The preference setter may be nil when
// tutorial persistence is not wanted.
func NewSession(preferences prefs.Setter, logger *slog.Logger, opts ...SessionOption) *Session {
	session := &Session{
		id:           uuid.NewString(),
		user:         "local",
		step:         StepIdle,
		showTutorial: true,
		prefs:        preferences,
		logger:       logging.NewComponentLogger(logger, "capture"),
	}
	for _, opt := range opts {
		opt(session)
	}
	session.logger = session.logger.With(logging.String(logging.FieldSessionID, session.id))
	return session
}

// ID returns the session identifier used for logging and storage naming.
func (s *Session) ID() string { return s.id }

// User returns the account the session acts for.
func (s *Session) User() string { return s.user }

// Step returns the current workflow step.
func (s *Session) Step() Step { return s.step }

// FrontImage returns the captured front image, if any.
func (s *Session) FrontImage() []byte { return s.frontImage }

// BackImage returns the captured back image, if any.
func (s *Session) BackImage() []byte { return s.backImage }

// Matched returns the catalog card resolved by a completed submission.
func (s *Session) Matched() *catalog.Card { return s.matched }

// Grading returns the grading result of a completed submission, if requested.
func (s *Session) Grading() *grading.Result { return s.grading }

// Failure returns the classified failure that moved the session to StepError.
func (s *Session) Failure() *submission.Failure { return s.failure }

func (s *Session) invalidTransition(action string) error {
	return services.Wrap(services.ErrValidation, "capture", action,
		"not allowed from step "+s.step.String(), nil)
}

func (s *Session) transition(to Step) {
	s.logger.Debug("session transition",
		logging.String("from", s.step.String()),
		logging.String(logging.FieldStep, to.String()),
	)
	s.step = to
}

// Begin starts a capture, routing through the tutorial when it is enabled.
func (s *Session) Begin() error {
	if s.step != StepIdle {
		return s.invalidTransition("begin")
	}
	if s.showTutorial {
		s.transition(StepTutorial)
	} else {
		s.transition(StepFrontCapture)
	}
	return nil
}

// CompleteTutorial advances past the tutorial. When dontShowAgain is set, the
// preference is persisted fire-and-forget; a store failure is logged by the
// preference layer and never blocks the transition.
func (s *Session) CompleteTutorial(dontShowAgain bool) error {
	if s.step != StepTutorial {
		return s.invalidTransition("complete tutorial")
	}
	if dontShowAgain {
		s.showTutorial = false
		if s.prefs != nil {
			s.prefs.SetAsync(s.user, prefs.KeyTutorialSeen, "true")
		}
	}
	s.transition(StepFrontCapture)
	return nil
}

// AttachFront stores an acquired front image and moves to its preview.
func (s *Session) AttachFront(image []byte) error {
	if s.step != StepFrontCapture {
		return s.invalidTransition("attach front")
	}
	if len(image) == 0 {
		return services.Wrap(services.ErrValidation, "capture", "attach front", "image is empty", nil)
	}
	s.frontImage = image
	s.transition(StepFrontPreview)
	return nil
}

// ConfirmFront accepts the previewed front image.
func (s *Session) ConfirmFront() error {
	if s.step != StepFrontPreview {
		return s.invalidTransition("confirm front")
	}
	s.transition(StepBackCapture)
	return nil
}

// RetakeFront discards the previewed front image.
func (s *Session) RetakeFront() error {
	if s.step != StepFrontPreview {
		return s.invalidTransition("retake front")
	}
	s.frontImage = nil
	s.transition(StepFrontCapture)
	return nil
}

// AttachBack stores an acquired back image and moves to its preview.
func (s *Session) AttachBack(image []byte) error {
	if s.step != StepBackCapture {
		return s.invalidTransition("attach back")
	}
	if len(image) == 0 {
		return services.Wrap(services.ErrValidation, "capture", "attach back", "image is empty", nil)
	}
	s.backImage = image
	s.transition(StepBackPreview)
	return nil
}

// ConfirmBack accepts the previewed back image.
func (s *Session) ConfirmBack() error {
	if s.step != StepBackPreview {
		return s.invalidTransition("confirm back")
	}
	s.transition(StepConfirmation)
	return nil
}

// RetakeBack discards the previewed back image.
func (s *Session) RetakeBack() error {
	if s.step != StepBackPreview {
		return s.invalidTransition("retake back")
	}
	s.backImage = nil
	s.transition(StepBackCapture)
	return nil
}

// StartProcessing claims the single in-flight submission slot and moves the
// session to StepProcessing. A duplicate submit while one is active returns
// submission.ErrAlreadyInFlight and leaves the session untouched.
func (s *Session) StartProcessing() error {
	if s.inFlight {
		return submission.ErrAlreadyInFlight
	}
	if s.step != StepConfirmation {
		return s.invalidTransition("submit")
	}
	s.inFlight = true
	s.transition(StepProcessing)
	return nil
}

// FinishProcessing records the outcome of the attempt started by
// StartProcessing and releases the in-flight slot, moving to StepComplete or
// StepError.
func (s *Session) FinishProcessing(outcome submission.Outcome) error {
	if s.step != StepProcessing {
		return s.invalidTransition("finish processing")
	}
	s.inFlight = false
	if outcome.Success() {
		s.matched = outcome.Card
		s.grading = outcome.Grading
		s.failure = nil
		s.transition(StepComplete)
		return nil
	}
	s.failure = outcome.Failure
	s.transition(StepError)
	return nil
}

// Retry returns an errored session to confirmation when both images survived,
// so the next attempt reuses them. Missing images fall back to a full reset.
func (s *Session) Retry() error {
	if s.step != StepError {
		return s.invalidTransition("retry")
	}
	s.failure = nil
	if len(s.frontImage) > 0 && len(s.backImage) > 0 {
		s.transition(StepConfirmation)
		return nil
	}
	s.reset()
	return nil
}

// Acknowledge closes out a completed capture and resets for the next one.
func (s *Session) Acknowledge() error {
	if s.step != StepComplete {
		return s.invalidTransition("acknowledge")
	}
	s.reset()
	return nil
}

// Close abandons the capture from any intermediate step, discarding all
// in-progress data. Closing an idle or completed session is a no-op error.
func (s *Session) Close() error {
	if s.step == StepIdle || s.step == StepComplete {
		return s.invalidTransition("close")
	}
	s.reset()
	return nil
}

// Progress returns the shared retry progress, creating it on first use. It is
// handed to the coordinator and mutated in place across attempts.
func (s *Session) Progress() *submission.Progress {
	if s.progress == nil {
		s.progress = &submission.Progress{}
	}
	return s.progress
}

func (s *Session) reset() {
	s.frontImage = nil
	s.backImage = nil
	s.progress = nil
	s.matched = nil
	s.grading = nil
	s.failure = nil
	s.inFlight = false
	s.transition(StepIdle)
}
