package submission

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"carddex/internal/catalog"
	"carddex/internal/credits"
	"carddex/internal/grading"
	"carddex/internal/identification/vision"
	"carddex/internal/logging"
	"carddex/internal/services"
	"carddex/internal/storage"
)

// Matcher resolves one recognition candidate to a catalog card.
type Matcher interface {
	Resolve(ctx context.Context, candidate vision.Candidate) (*catalog.Card, error)
}

// Request carries everything one submission attempt needs. Progress is shared
// across attempts for the same session and updated in place.
type Request struct {
	SessionID      string
	SubjectID      string
	User           string
	Front          []byte
	Back           []byte
	GradeRequested bool
	Progress       *Progress
}

// Coordinator sequences upload, identification, matching, and grading for one
// submission attempt.
type Coordinator struct {
	uploads storage.Uploader
	vision  vision.Identifier
	matcher Matcher
	grader  grading.Grader
	ledger  credits.Ledger
	logger  *slog.Logger
}

// NewCoordinator wires a coordinator from its collaborators. The grader and
// ledger may be nil when grading is disabled; Submit then rejects grade
// requests as a configuration failure.
func NewCoordinator(
	uploads storage.Uploader,
	identifier vision.Identifier,
	matcher Matcher,
	grader grading.Grader,
	ledger credits.Ledger,
	logger *slog.Logger,
) *Coordinator {
	return &Coordinator{
		uploads: uploads,
		vision:  identifier,
		matcher: matcher,
		grader:  grader,
		ledger:  ledger,
		logger:  logging.NewComponentLogger(logger, "submission"),
	}
}

// Submit runs one attempt. Steps execute strictly in order: uploads (front and
// back concurrently), then identify and match, then the optional grade. The
// first failed step classifies the outcome; completed steps are memoized in
// req.Progress so the next attempt resumes after them.
func (c *Coordinator) Submit(ctx context.Context, req *Request) Outcome {
	if req == nil || len(req.Front) == 0 {
		return failure(FailureUploadFailed, false, "front image missing", errors.New("request requires a front image"))
	}
	if req.Progress == nil {
		req.Progress = &Progress{}
	}
	logger := c.logger.With(
		logging.String(logging.FieldSessionID, req.SessionID),
		logging.String("subject_id", req.SubjectID),
	)

	if outcome, ok := c.uploadImages(ctx, req, logger); !ok {
		return outcome
	}
	if outcome, ok := c.identifyAndMatch(ctx, req, logger); !ok {
		return outcome
	}
	if req.GradeRequested {
		result, outcome, ok := c.gradeCard(ctx, req, logger)
		if !ok {
			return outcome
		}
		return Outcome{Card: req.Progress.Matched, Grading: result}
	}
	return Outcome{Card: req.Progress.Matched}
}

// uploadImages uploads whichever slots have not landed yet. Front and back are
// independent, so they run concurrently; each success is recorded even when
// the other slot fails.
func (c *Coordinator) uploadImages(ctx context.Context, req *Request, logger *slog.Logger) (Outcome, bool) {
	progress := req.Progress
	group, groupCtx := errgroup.WithContext(ctx)

	var frontURL, backURL string
	if !progress.FrontUploaded() {
		group.Go(func() error {
			url, err := c.uploads.Upload(groupCtx, req.Front, storage.SlotFront, req.SubjectID)
			if err != nil {
				return services.Wrap(services.ErrTransient, "submission", "upload front", "", err)
			}
			frontURL = url
			return nil
		})
	}
	if len(req.Back) > 0 && !progress.BackUploaded() {
		group.Go(func() error {
			url, err := c.uploads.Upload(groupCtx, req.Back, storage.SlotBack, req.SubjectID)
			if err != nil {
				return services.Wrap(services.ErrTransient, "submission", "upload back", "", err)
			}
			backURL = url
			return nil
		})
	}

	err := group.Wait()
	if frontURL != "" {
		progress.FrontURL = frontURL
	}
	if backURL != "" {
		progress.BackURL = backURL
	}
	if err != nil {
		logger.Warn("upload failed",
			logging.Bool("front_uploaded", progress.FrontUploaded()),
			logging.Bool("back_uploaded", progress.BackUploaded()),
			logging.Error(err),
		)
		return failure(FailureUploadFailed, true, "image upload failed", err), false
	}
	return Outcome{}, true
}

// identifyAndMatch runs the vision round trip and catalog resolution. A match
// resolved by a prior attempt short-circuits the whole step.
func (c *Coordinator) identifyAndMatch(ctx context.Context, req *Request, logger *slog.Logger) (Outcome, bool) {
	progress := req.Progress
	if progress.Matched != nil {
		return Outcome{}, true
	}

	candidates, err := c.vision.Identify(ctx, progress.FrontURL, progress.BackURL)
	if err != nil {
		logger.Warn("identification request failed", logging.Error(err))
		return failure(FailureNoIdentification, true, "identification request failed", err), false
	}
	if len(candidates) == 0 {
		logger.Info("vision service returned no candidates")
		return failure(FailureNoIdentification, true, "no identification candidates", nil), false
	}

	card, err := c.matcher.Resolve(ctx, candidates[0])
	if err != nil {
		logger.Warn("catalog resolution failed", logging.Error(err))
		return failure(FailureNoMatch, services.Retryable(err), "catalog lookup failed", err), false
	}
	if card == nil {
		// Retrying cannot help: the identification input has not changed.
		logger.Info("no catalog match", logging.String("candidate_name", strings.TrimSpace(candidates[0].FullName)))
		return failure(FailureNoMatch, false, "no catalog match", nil), false
	}

	progress.Matched = card
	logger.Info("card matched",
		logging.String(logging.FieldCardID, card.ID),
		logging.String("card_name", card.Name),
	)
	return Outcome{}, true
}

// gradeCard checks the credit balance, submits the grade, and deducts exactly
// one credit after a successful response. A failed grading call never
// consumes a credit; a successful one always consumes exactly one.
func (c *Coordinator) gradeCard(ctx context.Context, req *Request, logger *slog.Logger) (*grading.Result, Outcome, bool) {
	if c.grader == nil || c.ledger == nil {
		err := services.Wrap(services.ErrConfiguration, "submission", "grade", "grading is not configured", nil)
		return nil, failure(FailureGradingFailed, false, "grading is not configured", err), false
	}

	user := req.User
	if strings.TrimSpace(user) == "" {
		user = credits.DefaultUser
	}

	balance, err := c.ledger.Balance(ctx, user)
	if err != nil {
		logger.Warn("credit balance check failed", logging.Error(err))
		return nil, failure(FailureGradingFailed, true, "credit balance check failed", err), false
	}
	if balance < 1 {
		return nil, failure(FailureInsufficientCredits, false, "no grading credits remaining", nil), false
	}

	result, err := c.grader.Grade(ctx, req.SubjectID, req.Progress.FrontURL, req.Progress.BackURL)
	if err != nil {
		logger.Warn("grading request failed", logging.Error(err))
		return nil, failure(FailureGradingFailed, true, "grading request failed", err), false
	}

	// Deduct only after the grade came back, so a failed call costs nothing.
	if err := c.ledger.DeductOne(ctx, user); err != nil {
		if errors.Is(err, services.ErrInsufficientCredits) {
			return nil, failure(FailureInsufficientCredits, false, "no grading credits remaining", err), false
		}
		logger.Error("credit deduction failed after successful grade", logging.Error(err))
		return nil, failure(FailureGradingFailed, true, "credit deduction failed", err), false
	}

	logger.Info("card graded", logging.Float64("overall", result.Overall))
	return result, Outcome{}, true
}
