package capture

import "fmt"

// Step identifies where a capture session is in its workflow.
type Step string

const (
	StepIdle         Step = "idle"
	StepTutorial     Step = "tutorial"
	StepFrontCapture Step = "front_capture"
	StepFrontPreview Step = "front_preview"
	StepBackCapture  Step = "back_capture"
	StepBackPreview  Step = "back_preview"
	StepConfirmation Step = "confirmation"
	StepProcessing   Step = "processing"
	StepComplete     Step = "complete"
	StepError        Step = "error"
)

var allSteps = []Step{
	StepIdle,
	StepTutorial,
	StepFrontCapture,
	StepFrontPreview,
	StepBackCapture,
	StepBackPreview,
	StepConfirmation,
	StepProcessing,
	StepComplete,
	StepError,
}

// ParseStep validates a raw string against the closed step set.
func ParseStep(value string) (Step, error) {
	for _, step := range allSteps {
		if string(step) == value {
			return step, nil
		}
	}
	return "", fmt.Errorf("unknown capture step %q", value)
}

// String returns the wire form of the step.
func (s Step) String() string { return string(s) }
