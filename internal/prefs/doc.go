// Package prefs is a small user preference store. SetAsync supports
// fire-and-forget writes whose failures are logged but never surfaced into a
// workflow transition.
package prefs
