package capture

import (
	"errors"
	"testing"

	"carddex/internal/catalog"
	"carddex/internal/grading"
	"carddex/internal/prefs"
	"carddex/internal/submission"
)

type recordingSetter struct {
	keys   []string
	values []string
}

func (r *recordingSetter) SetAsync(_, key, value string) {
	r.keys = append(r.keys, key)
	r.values = append(r.values, value)
}

func advanceToConfirmation(t *testing.T, session *Session) {
	t.Helper()
	steps := []func() error{
		session.Begin,
		func() error { return session.AttachFront([]byte("front")) },
		session.ConfirmFront,
		func() error { return session.AttachBack([]byte("back")) },
		session.ConfirmBack,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("advancing session: %v", err)
		}
	}
	if session.Step() != StepConfirmation {
		t.Fatalf("expected %s, got %s", StepConfirmation, session.Step())
	}
}

func TestBeginRoutesThroughTutorial(t *testing.T) {
	session := NewSession(nil, nil)
	if err := session.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if session.Step() != StepTutorial {
		t.Fatalf("expected %s, got %s", StepTutorial, session.Step())
	}
}

func TestBeginSkipsDisabledTutorial(t *testing.T) {
	session := NewSession(nil, nil, WithTutorial(false))
	if err := session.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if session.Step() != StepFrontCapture {
		t.Fatalf("expected %s, got %s", StepFrontCapture, session.Step())
	}
}

func TestCompleteTutorialPersistsPreference(t *testing.T) {
	setter := &recordingSetter{}
	session := NewSession(setter, nil, WithUser("collector"))
	if err := session.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := session.CompleteTutorial(true); err != nil {
		t.Fatalf("CompleteTutorial: %v", err)
	}
	if session.Step() != StepFrontCapture {
		t.Fatalf("expected %s, got %s", StepFrontCapture, session.Step())
	}
	if len(setter.keys) != 1 || setter.keys[0] != prefs.KeyTutorialSeen || setter.values[0] != "true" {
		t.Fatalf("unexpected preference writes: %v=%v", setter.keys, setter.values)
	}
}

func TestCompleteTutorialWithoutOptOutWritesNothing(t *testing.T) {
	setter := &recordingSetter{}
	session := NewSession(setter, nil)
	if err := session.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := session.CompleteTutorial(false); err != nil {
		t.Fatalf("CompleteTutorial: %v", err)
	}
	if len(setter.keys) != 0 {
		t.Fatalf("unexpected preference writes: %v", setter.keys)
	}
}

func TestRetakeDiscardsImage(t *testing.T) {
	session := NewSession(nil, nil, WithTutorial(false))
	if err := session.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := session.AttachFront([]byte("blurry")); err != nil {
		t.Fatalf("AttachFront: %v", err)
	}
	if err := session.RetakeFront(); err != nil {
		t.Fatalf("RetakeFront: %v", err)
	}
	if session.Step() != StepFrontCapture {
		t.Fatalf("expected %s, got %s", StepFrontCapture, session.Step())
	}
	if session.FrontImage() != nil {
		t.Fatal("retake must discard the image")
	}
}

func TestAttachRejectsEmptyImage(t *testing.T) {
	session := NewSession(nil, nil, WithTutorial(false))
	if err := session.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := session.AttachFront(nil); err == nil {
		t.Fatal("expected error for empty image")
	}
	if session.Step() != StepFrontCapture {
		t.Fatalf("step changed on rejected attach: %s", session.Step())
	}
}

func TestDuplicateSubmitIsRejectedWithoutStateChange(t *testing.T) {
	session := NewSession(nil, nil, WithTutorial(false))
	advanceToConfirmation(t, session)

	if err := session.StartProcessing(); err != nil {
		t.Fatalf("StartProcessing: %v", err)
	}
	err := session.StartProcessing()
	if !errors.Is(err, submission.ErrAlreadyInFlight) {
		t.Fatalf("expected ErrAlreadyInFlight, got %v", err)
	}
	if session.Step() != StepProcessing {
		t.Fatalf("duplicate submit changed step to %s", session.Step())
	}
}

func TestFinishProcessingSuccess(t *testing.T) {
	session := NewSession(nil, nil, WithTutorial(false))
	advanceToConfirmation(t, session)
	if err := session.StartProcessing(); err != nil {
		t.Fatalf("StartProcessing: %v", err)
	}

	card := &catalog.Card{ID: "sv07-181", Name: "Pikachu ex"}
	outcome := submission.Outcome{Card: card, Grading: &grading.Result{Overall: 9}}
	if err := session.FinishProcessing(outcome); err != nil {
		t.Fatalf("FinishProcessing: %v", err)
	}
	if session.Step() != StepComplete {
		t.Fatalf("expected %s, got %s", StepComplete, session.Step())
	}
	if session.Matched() != card || session.Grading() == nil {
		t.Fatal("outcome fields not recorded")
	}

	// Completing releases the guard for the next capture.
	if err := session.Acknowledge(); err != nil {
		t.Fatalf("Acknowledge: %v", err)
	}
	if session.Step() != StepIdle {
		t.Fatalf("expected %s after acknowledge, got %s", StepIdle, session.Step())
	}
	if session.Matched() != nil || session.Grading() != nil || session.FrontImage() != nil {
		t.Fatal("acknowledge must reset the session in full")
	}
}

func TestRetryReturnsToConfirmationWithImages(t *testing.T) {
	session := NewSession(nil, nil, WithTutorial(false))
	advanceToConfirmation(t, session)
	if err := session.StartProcessing(); err != nil {
		t.Fatalf("StartProcessing: %v", err)
	}
	failed := submission.Outcome{Failure: &submission.Failure{Kind: submission.FailureUploadFailed, Retryable: true}}
	if err := session.FinishProcessing(failed); err != nil {
		t.Fatalf("FinishProcessing: %v", err)
	}
	if session.Step() != StepError {
		t.Fatalf("expected %s, got %s", StepError, session.Step())
	}
	if session.Failure() == nil {
		t.Fatal("failure not recorded")
	}

	if err := session.Retry(); err != nil {
		t.Fatalf("Retry: %v", err)
	}
	if session.Step() != StepConfirmation {
		t.Fatalf("expected %s, got %s", StepConfirmation, session.Step())
	}
	if session.FrontImage() == nil || session.BackImage() == nil {
		t.Fatal("retry must keep the captured images")
	}

	// A second attempt is allowed: the guard was released with the failure.
	if err := session.StartProcessing(); err != nil {
		t.Fatalf("StartProcessing after retry: %v", err)
	}
}

func TestRetryWithoutImagesFallsBackToIdle(t *testing.T) {
	session := NewSession(nil, nil, WithTutorial(false))
	advanceToConfirmation(t, session)
	if err := session.StartProcessing(); err != nil {
		t.Fatalf("StartProcessing: %v", err)
	}
	session.frontImage = nil
	failed := submission.Outcome{Failure: &submission.Failure{Kind: submission.FailureUploadFailed, Retryable: true}}
	if err := session.FinishProcessing(failed); err != nil {
		t.Fatalf("FinishProcessing: %v", err)
	}
	if err := session.Retry(); err != nil {
		t.Fatalf("Retry: %v", err)
	}
	if session.Step() != StepIdle {
		t.Fatalf("expected %s, got %s", StepIdle, session.Step())
	}
}

func TestCloseDiscardsInProgressCapture(t *testing.T) {
	session := NewSession(nil, nil, WithTutorial(false))
	advanceToConfirmation(t, session)
	if err := session.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if session.Step() != StepIdle {
		t.Fatalf("expected %s, got %s", StepIdle, session.Step())
	}
	if session.FrontImage() != nil || session.BackImage() != nil {
		t.Fatal("close must discard images")
	}
}

func TestCloseFromIdleIsRejected(t *testing.T) {
	session := NewSession(nil, nil)
	if err := session.Close(); err == nil {
		t.Fatal("expected error closing an idle session")
	}
}

func TestTransitionsRejectWrongStep(t *testing.T) {
	session := NewSession(nil, nil)
	cases := map[string]func() error{
		"complete tutorial": func() error { return session.CompleteTutorial(false) },
		"attach front":      func() error { return session.AttachFront([]byte("x")) },
		"confirm front":     session.ConfirmFront,
		"retake front":      session.RetakeFront,
		"attach back":       func() error { return session.AttachBack([]byte("x")) },
		"confirm back":      session.ConfirmBack,
		"retake back":       session.RetakeBack,
		"submit":            session.StartProcessing,
		"finish":            func() error { return session.FinishProcessing(submission.Outcome{}) },
		"retry":             session.Retry,
		"acknowledge":       session.Acknowledge,
	}
	for name, action := range cases {
		if err := action(); err == nil {
			t.Errorf("%s: expected rejection from idle", name)
		}
		if session.Step() != StepIdle {
			t.Fatalf("%s: step changed to %s", name, session.Step())
		}
	}
}

func TestParseStep(t *testing.T) {
	for _, step := range allSteps {
		parsed, err := ParseStep(step.String())
		if err != nil {
			t.Fatalf("ParseStep(%s): %v", step, err)
		}
		if parsed != step {
			t.Fatalf("ParseStep(%s) = %s", step, parsed)
		}
	}
	if _, err := ParseStep("shiny"); err == nil {
		t.Fatal("expected error for unknown step")
	}
}
