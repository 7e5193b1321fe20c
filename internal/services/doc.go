// Package services provides shared error classification for collaborator
// calls. Sentinel markers tag failures so the submission coordinator can map
// them onto retryable or terminal outcomes without string matching.
package services
