// Package grading provides the HTTP client for the condition-grading service.
// Grading is a metered feature: the submission coordinator consumes one credit
// per successfully graded card, never per attempt.
package grading
