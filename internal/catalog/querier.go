package catalog

import "context"

// Querier is the catalog search capability consumed by the matcher.
type Querier interface {
	Search(ctx context.Context, query Query) ([]Card, error)
}
