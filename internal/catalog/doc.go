// Package catalog provides read and sync access to the reference card
// database: sets, cards, prices, and marketplace identifiers. The matcher
// consumes it exclusively through the Querier interface so tests can swap in
// a mock catalog.
package catalog
