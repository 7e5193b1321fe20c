// Package identification resolves noisy recognition candidates into canonical
// catalog cards.
//
// The resolver runs an ordered, short-circuiting chain of matching strategies
// against the catalog, from highest confidence (marketplace product id) down
// to partial set-name heuristics. The first strategy that yields at least one
// row wins; later strategies never override an earlier match. The resolver is
// deliberately best-effort and can pick a wrong-but-plausible card on
// ambiguous input, such as a reprint sharing name and number across subsets.
package identification
