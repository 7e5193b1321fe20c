// Package textnorm cleans noisy card-identification strings into bare subject
// names suitable for catalog lookups. The cleanup is a best-effort heuristic,
// not a parser: it strips set codes, trailing card numbers, and known era
// names, and accepts that a subject whose real name contains an era substring
// will be truncated.
package textnorm
