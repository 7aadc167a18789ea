package search

import (
	"context"
	"strings"

	"github.com/samber/lo"

	"placement/api/internal/store"
)

// Substring matches the text case-insensitively against name, address and
// drive. It backs the memory store and covers for PgFTS when it fails.
type Substring struct {
	companies CompanyLister
}

func NewSubstring(companies CompanyLister) *Substring {
	return &Substring{companies: companies}
}

func (s *Substring) Search(ctx context.Context, q Query) ([]string, error) {
	needle := strings.ToLower(strings.TrimSpace(q.Text))
	if needle == "" {
		return []string{}, nil
	}
	companies, err := s.companies.ListCompanies(ctx)
	if err != nil {
		return nil, err
	}
	matches := lo.Filter(companies, func(item store.Company, _ int) bool {
		return lo.SomeBy([]string{item.CompanyName, item.CompanyAddress, item.Drive}, func(field string) bool {
			return strings.Contains(strings.ToLower(field), needle)
		})
	})
	ids := lo.Map(matches, func(item store.Company, _ int) string { return item.ID })
	if len(ids) > q.limit() {
		ids = ids[:q.limit()]
	}
	return ids, nil
}
