package capture

import (
	"context"
	"log/slog"

	"carddex/internal/logging"
	"carddex/internal/submission"
)

// Acquirer produces one image, from a camera snapshot or a file pick.
type Acquirer interface {
	Acquire(ctx context.Context) ([]byte, error)
}

// AcquirerFunc adapts a function to the Acquirer interface.
type AcquirerFunc func(ctx context.Context) ([]byte, error)

// Acquire implements Acquirer.
func (f AcquirerFunc) Acquire(ctx context.Context) ([]byte, error) { return f(ctx) }

// Flow drives a session's processing phase through the coordinator. The
// interactive steps stay on the session; Flow only owns the submit round trip
// so callers cannot skip the in-flight guard.
type Flow struct {
	session     *Session
	coordinator *submission.Coordinator
	logger      *slog.Logger
}

// NewFlow binds a session to its coordinator.
func NewFlow(session *Session, coordinator *submission.Coordinator, logger *slog.Logger) *Flow {
	return &Flow{
		session:     session,
		coordinator: coordinator,
		logger:      logging.NewComponentLogger(logger, "capture"),
	}
}

// Session returns the underlying session for step inspection.
func (f *Flow) Session() *Session { return f.session }

// CaptureFront acquires a front image and attaches it to the session.
func (f *Flow) CaptureFront(ctx context.Context, acquirer Acquirer) error {
	image, err := acquirer.Acquire(ctx)
	if err != nil {
		return err
	}
	return f.session.AttachFront(image)
}

// CaptureBack acquires a back image and attaches it to the session.
func (f *Flow) CaptureBack(ctx context.Context, acquirer Acquirer) error {
	image, err := acquirer.Acquire(ctx)
	if err != nil {
		return err
	}
	return f.session.AttachBack(image)
}

// Process runs one submission attempt for the confirmed images and applies
// the outcome to the session. subjectID names the collection entry the match
// and grade attach to.
func (f *Flow) Process(ctx context.Context, subjectID string, gradeRequested bool) (submission.Outcome, error) {
	if err := f.session.StartProcessing(); err != nil {
		return submission.Outcome{}, err
	}

	outcome := f.coordinator.Submit(ctx, &submission.Request{
		SessionID:      f.session.ID(),
		SubjectID:      subjectID,
		User:           f.session.User(),
		Front:          f.session.FrontImage(),
		Back:           f.session.BackImage(),
		GradeRequested: gradeRequested,
		Progress:       f.session.Progress(),
	})

	if err := f.session.FinishProcessing(outcome); err != nil {
		// Session was closed mid-flight; the outcome is dropped on the floor.
		f.logger.Warn("outcome discarded", logging.Error(err))
		return outcome, nil
	}
	return outcome, nil
}
