// Package capture owns the interactive card-capture workflow: a per-session
// state machine that walks the user from tutorial through front/back
// photography, confirmation, processing, and a terminal result. Sessions are
// single-owner in-memory state; the processing phase itself is delegated to
// the submission package.
package capture
