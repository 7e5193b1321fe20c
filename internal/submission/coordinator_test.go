package submission_test

import (
	"context"
	"errors"
	"testing"

	"carddex/internal/catalog"
	"carddex/internal/grading"
	"carddex/internal/identification/vision"
	"carddex/internal/services"
	"carddex/internal/storage"
	"carddex/internal/submission"
)

type mockUploader struct {
	calls    map[storage.Slot]int
	failSlot storage.Slot
}

func newMockUploader() *mockUploader {
	return &mockUploader{calls: map[storage.Slot]int{}}
}

func (m *mockUploader) Upload(_ context.Context, _ []byte, slot storage.Slot, subjectID string) (string, error) {
	m.calls[slot]++
	if slot == m.failSlot {
		return "", errors.New("upload refused")
	}
	return "https://img.test/" + subjectID + "-" + string(slot) + ".jpg", nil
}

type mockIdentifier struct {
	calls      int
	candidates []vision.Candidate
	err        error
}

func (m *mockIdentifier) Identify(_ context.Context, frontURL, _ string) ([]vision.Candidate, error) {
	m.calls++
	if frontURL == "" {
		return nil, errors.New("identify called without front url")
	}
	return m.candidates, m.err
}

type mockMatcher struct {
	calls int
	card  *catalog.Card
	err   error
}

func (m *mockMatcher) Resolve(_ context.Context, _ vision.Candidate) (*catalog.Card, error) {
	m.calls++
	return m.card, m.err
}

type mockGrader struct {
	calls  int
	result *grading.Result
	err    error
}

func (m *mockGrader) Grade(_ context.Context, _, _, _ string) (*grading.Result, error) {
	m.calls++
	return m.result, m.err
}

type mockLedger struct {
	balance    int
	deductions int
}

func (m *mockLedger) Balance(_ context.Context, _ string) (int, error) {
	return m.balance, nil
}

func (m *mockLedger) DeductOne(_ context.Context, _ string) error {
	if m.balance < 1 {
		return services.Wrap(services.ErrInsufficientCredits, "credits", "deduct", "balance is empty", nil)
	}
	m.balance--
	m.deductions++
	return nil
}

var matchedCard = &catalog.Card{ID: "sv07-181", Name: "Pikachu ex", LocalID: "181", SetName: "Stellar Crown"}

func pikachuCandidate() []vision.Candidate {
	return []vision.Candidate{{FullName: "Pikachu ex - Stellar Crown", CardNumber: "181", SetName: "Stellar Crown", Confidence: 0.9}}
}

func newRequest() *submission.Request {
	return &submission.Request{
		SessionID: "session-1",
		SubjectID: "entry-9",
		Front:     []byte("front"),
		Back:      []byte("back"),
		Progress:  &submission.Progress{},
	}
}

func TestSubmitSucceedsWithoutGrading(t *testing.T) {
	uploader := newMockUploader()
	identifier := &mockIdentifier{candidates: pikachuCandidate()}
	matcher := &mockMatcher{card: matchedCard}
	coordinator := submission.NewCoordinator(uploader, identifier, matcher, nil, nil, nil)

	outcome := coordinator.Submit(context.Background(), newRequest())
	if !outcome.Success() {
		t.Fatalf("expected success, got %+v", outcome.Failure)
	}
	if outcome.Card == nil || outcome.Card.ID != matchedCard.ID {
		t.Fatalf("expected matched card, got %+v", outcome.Card)
	}
	if outcome.Grading != nil {
		t.Fatal("expected no grading result")
	}
	if uploader.calls[storage.SlotFront] != 1 || uploader.calls[storage.SlotBack] != 1 {
		t.Fatalf("expected one upload per slot, got %v", uploader.calls)
	}
}

func TestSubmitRecordsPartialUploadOnFailure(t *testing.T) {
	uploader := newMockUploader()
	uploader.failSlot = storage.SlotFront
	identifier := &mockIdentifier{candidates: pikachuCandidate()}
	matcher := &mockMatcher{card: matchedCard}
	coordinator := submission.NewCoordinator(uploader, identifier, matcher, nil, nil, nil)

	req := newRequest()
	outcome := coordinator.Submit(context.Background(), req)
	if outcome.Success() {
		t.Fatal("expected failure")
	}
	if outcome.Failure.Kind != submission.FailureUploadFailed || !outcome.Failure.Retryable {
		t.Fatalf("unexpected failure: %+v", outcome.Failure)
	}
	if req.Progress.FrontUploaded() {
		t.Fatal("front upload should not be recorded")
	}
	if !req.Progress.BackUploaded() {
		t.Fatal("back upload should be recorded for retry")
	}
	if identifier.calls != 0 {
		t.Fatalf("identify must not run after upload failure, ran %d times", identifier.calls)
	}
}

func TestRetrySkipsCompletedUploads(t *testing.T) {
	uploader := newMockUploader()
	identifier := &mockIdentifier{candidates: pikachuCandidate()}
	matcher := &mockMatcher{card: matchedCard}
	coordinator := submission.NewCoordinator(uploader, identifier, matcher, nil, nil, nil)

	req := newRequest()
	req.Progress = &submission.Progress{
		FrontURL: "https://img.test/entry-9-front.jpg",
		BackURL:  "https://img.test/entry-9-back.jpg",
	}

	outcome := coordinator.Submit(context.Background(), req)
	if !outcome.Success() {
		t.Fatalf("expected success, got %+v", outcome.Failure)
	}
	if len(uploader.calls) != 0 {
		t.Fatalf("expected no upload calls on retry, got %v", uploader.calls)
	}
}

func TestZeroCandidatesIsRetryableNoIdentification(t *testing.T) {
	uploader := newMockUploader()
	identifier := &mockIdentifier{}
	matcher := &mockMatcher{card: matchedCard}
	coordinator := submission.NewCoordinator(uploader, identifier, matcher, nil, nil, nil)

	req := newRequest()
	outcome := coordinator.Submit(context.Background(), req)
	if outcome.Success() {
		t.Fatal("expected failure")
	}
	if outcome.Failure.Kind != submission.FailureNoIdentification || !outcome.Failure.Retryable {
		t.Fatalf("unexpected failure: %+v", outcome.Failure)
	}
	if !req.Progress.FrontUploaded() || !req.Progress.BackUploaded() {
		t.Fatal("both uploads should be recorded before identification")
	}
	if matcher.calls != 0 {
		t.Fatal("matcher must not run without candidates")
	}
}

func TestNoMatchIsNotRetryable(t *testing.T) {
	uploader := newMockUploader()
	identifier := &mockIdentifier{candidates: pikachuCandidate()}
	matcher := &mockMatcher{}
	coordinator := submission.NewCoordinator(uploader, identifier, matcher, nil, nil, nil)

	outcome := coordinator.Submit(context.Background(), newRequest())
	if outcome.Success() {
		t.Fatal("expected failure")
	}
	if outcome.Failure.Kind != submission.FailureNoMatch {
		t.Fatalf("unexpected kind: %s", outcome.Failure.Kind)
	}
	if outcome.Failure.Retryable {
		t.Fatal("no-match must not be retryable: the identification input has not changed")
	}
}

func TestInsufficientCreditsSkipsGradeAndCostsNothing(t *testing.T) {
	uploader := newMockUploader()
	identifier := &mockIdentifier{candidates: pikachuCandidate()}
	matcher := &mockMatcher{card: matchedCard}
	grader := &mockGrader{result: &grading.Result{Overall: 9}}
	ledger := &mockLedger{balance: 0}
	coordinator := submission.NewCoordinator(uploader, identifier, matcher, grader, ledger, nil)

	req := newRequest()
	req.GradeRequested = true
	outcome := coordinator.Submit(context.Background(), req)
	if outcome.Success() {
		t.Fatal("expected failure")
	}
	if outcome.Failure.Kind != submission.FailureInsufficientCredits || outcome.Failure.Retryable {
		t.Fatalf("unexpected failure: %+v", outcome.Failure)
	}
	if grader.calls != 0 {
		t.Fatal("grader must not be called without credits")
	}
	if ledger.deductions != 0 {
		t.Fatalf("expected no deductions, got %d", ledger.deductions)
	}
}

func TestFailedGradeNeverConsumesCredit(t *testing.T) {
	uploader := newMockUploader()
	identifier := &mockIdentifier{candidates: pikachuCandidate()}
	matcher := &mockMatcher{card: matchedCard}
	grader := &mockGrader{err: errors.New("grading offline")}
	ledger := &mockLedger{balance: 1}
	coordinator := submission.NewCoordinator(uploader, identifier, matcher, grader, ledger, nil)

	req := newRequest()
	req.GradeRequested = true
	outcome := coordinator.Submit(context.Background(), req)
	if outcome.Success() {
		t.Fatal("expected failure")
	}
	if outcome.Failure.Kind != submission.FailureGradingFailed || !outcome.Failure.Retryable {
		t.Fatalf("unexpected failure: %+v", outcome.Failure)
	}
	if ledger.deductions != 0 {
		t.Fatalf("failed grade consumed %d credits", ledger.deductions)
	}
	if req.Progress.Matched == nil {
		t.Fatal("matched card must survive a grading failure for retry")
	}
}

func TestExactlyOnceDeductionAcrossRetries(t *testing.T) {
	uploader := newMockUploader()
	identifier := &mockIdentifier{candidates: pikachuCandidate()}
	matcher := &mockMatcher{card: matchedCard}
	grader := &mockGrader{err: errors.New("grading offline")}
	ledger := &mockLedger{balance: 1}
	coordinator := submission.NewCoordinator(uploader, identifier, matcher, grader, ledger, nil)

	req := newRequest()
	req.GradeRequested = true

	// Two failed attempts, then the service recovers.
	for i := 0; i < 2; i++ {
		if outcome := coordinator.Submit(context.Background(), req); outcome.Success() {
			t.Fatalf("attempt %d should fail", i+1)
		}
	}
	grader.err = nil
	grader.result = &grading.Result{Overall: 8.5, Centering: 9, Corners: 8, Edges: 8.5, Surface: 8.5}

	outcome := coordinator.Submit(context.Background(), req)
	if !outcome.Success() {
		t.Fatalf("expected success, got %+v", outcome.Failure)
	}
	if outcome.Grading == nil || outcome.Grading.Overall != 8.5 {
		t.Fatalf("unexpected grading result: %+v", outcome.Grading)
	}
	if ledger.deductions != 1 {
		t.Fatalf("expected exactly one deduction, got %d", ledger.deductions)
	}

	// Grading retries must not repeat the earlier pipeline steps.
	if uploader.calls[storage.SlotFront] != 1 || uploader.calls[storage.SlotBack] != 1 {
		t.Fatalf("uploads repeated across retries: %v", uploader.calls)
	}
	if identifier.calls != 1 {
		t.Fatalf("identification repeated across retries: %d calls", identifier.calls)
	}
	if matcher.calls != 1 {
		t.Fatalf("matching repeated across retries: %d calls", matcher.calls)
	}
}

func TestSubmitRequiresFrontImage(t *testing.T) {
	coordinator := submission.NewCoordinator(newMockUploader(), &mockIdentifier{}, &mockMatcher{}, nil, nil, nil)
	outcome := coordinator.Submit(context.Background(), &submission.Request{})
	if outcome.Success() {
		t.Fatal("expected failure for missing front image")
	}
	if outcome.Failure.Retryable {
		t.Fatal("missing front image is not retryable")
	}
}
