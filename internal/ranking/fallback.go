package ranking

import (
	"context"

	"go.uber.org/zap"

	"github.com/spigell/vendor-matcher/internal/vendors"
)

type fallbackRanker struct {
	primary  Ranker
	fallback Ranker
	logger   *zap.Logger
}

// WithFallback returns a ranker that tries primary and switches to fallback when
// primary is nil, there are no candidates, or primary fails. Primary failures are
// logged and never returned.
func WithFallback(primary, fallback Ranker, logger *zap.Logger) Ranker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &fallbackRanker{primary: primary, fallback: fallback, logger: logger}
}

func (r *fallbackRanker) Rank(ctx context.Context, req Request, candidates []vendors.EnrichedVendor) (*Result, error) {
	if r.primary == nil || len(candidates) == 0 {
		return r.fallback.Rank(ctx, req, candidates)
	}

	result, err := r.primary.Rank(ctx, req, candidates)
	if err == nil {
		return result, nil
	}

	r.logger.Warn("remote ranking failed, using fallback algorithm",
		zap.Int("candidates", len(candidates)),
		zap.Error(err),
	)

	return r.fallback.Rank(ctx, req, candidates)
}
