// Package credits tracks the metered grading balance. Deduction is a single
// conditional SQL update, so a concurrent or replayed deduction can never push
// a balance below zero or charge twice for one grade.
package credits
