// Package submission executes the processing phase of a capture session:
// upload both images, identify and match, then optionally grade. One attempt
// produces an Outcome; failed attempts record which sub-steps already
// succeeded so a retry never repeats completed work, and the grading credit is
// consumed exactly once, only after a successful grade response.
package submission
