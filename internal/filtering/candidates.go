package filtering

import (
	"context"

	"go.uber.org/zap"

	"github.com/spigell/vendor-matcher/internal/vendors"
)

// SelectCandidates returns active vendors offering the category, each with its
// most recent ratings. The input roster is not modified. An empty result is not an error.
func SelectCandidates(ctx context.Context, logger *zap.Logger, all *vendors.Vendors, ratings []*vendors.Rating, category string) ([]vendors.EnrichedVendor, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	roster := &vendors.Vendors{}
	if all != nil {
		roster.Items = append(roster.Items, all.Items...)
	}

	pipeline := New([]Filter{
		NewActiveStatus(),
		NewServiceCategory(category),
	}, logger)

	logger.Debug("selecting candidates", zap.Any("filters", pipeline.Describe()))

	selected, err := pipeline.RunFilters(ctx, roster)
	if err != nil {
		return nil, err
	}

	candidates := make([]vendors.EnrichedVendor, 0, selected.Len())
	for _, v := range selected.Items {
		candidates = append(candidates, vendors.Enrich(v, ratings))
	}

	return candidates, nil
}
