package search

import (
	"context"
	"io"
	"log/slog"
)

// Service tries the primary searcher and falls back when it errors.
type Service struct {
	primary  Searcher
	fallback Searcher
	logger   *slog.Logger
}

// NewService builds the facade. primary may be nil when only the fallback
// is available.
func NewService(primary, fallback Searcher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Service{primary: primary, fallback: fallback, logger: logger}
}

func (s *Service) Search(ctx context.Context, q Query) ([]string, error) {
	if s.primary != nil {
		ids, err := s.primary.Search(ctx, q)
		if err == nil {
			return ids, nil
		}
		if s.fallback == nil {
			return nil, err
		}
		s.logger.WarnContext(ctx, "company search failed, using substring fallback", "error", err)
	}
	return s.fallback.Search(ctx, q)
}
