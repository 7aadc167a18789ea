// Package search finds companies by name, address and drive.
package search

import (
	"context"

	"placement/api/internal/store"
)

const defaultLimit = 50

// Query describes a company search.
type Query struct {
	Text  string
	Limit int
}

func (q Query) limit() int {
	if q.Limit <= 0 {
		return defaultLimit
	}
	return q.Limit
}

// Searcher returns the ids of matching companies, best match first.
type Searcher interface {
	Search(ctx context.Context, q Query) ([]string, error)
}

// CompanyLister is the slice of the store the substring searcher reads.
type CompanyLister interface {
	ListCompanies(ctx context.Context) ([]store.Company, error)
}
