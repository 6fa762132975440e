// Package recommend answers project requests with a ranked list of vendors.
package recommend

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/vendor-matcher/internal/filtering"
	"github.com/spigell/vendor-matcher/internal/logger"
	"github.com/spigell/vendor-matcher/internal/ranking"
	"github.com/spigell/vendor-matcher/internal/sheets"
	"github.com/spigell/vendor-matcher/internal/vendors"
)

const (
	DefaultVendorsTable = "Vendors"
	DefaultRatingsTable = "Ratings"

	NoCandidatesMessage = "No active vendors found for the selected service category."
)

// TableReader returns the rows of a named table, possibly from a cache.
type TableReader interface {
	GetTable(ctx context.Context, name string, forceRefresh bool) ([]sheets.Row, error)
	Invalidate(name string)
}

// Response is the outcome of a recommendation request. Success is false only
// when no vendor qualifies; Message then says why.
type Response struct {
	Success         bool                     `json:"success"`
	Recommendations []ranking.Recommendation `json:"recommendations,omitempty"`
	Explanation     string                   `json:"explanation,omitempty"`
	BudgetAnalysis  string                   `json:"budgetAnalysis,omitempty"`
	RiskFactors     string                   `json:"riskFactors,omitempty"`
	Source          string                   `json:"source,omitempty"`
	Message         string                   `json:"message,omitempty"`
}

type Recommender struct {
	tables       TableReader
	ranker       ranking.Ranker
	vendorsTable string
	ratingsTable string
	logger       *zap.Logger
}

type Option func(*Recommender)

// WithTables overrides the vendor and rating table names.
func WithTables(vendorsTable, ratingsTable string) Option {
	return func(r *Recommender) {
		if vendorsTable = strings.TrimSpace(vendorsTable); vendorsTable != "" {
			r.vendorsTable = vendorsTable
		}
		if ratingsTable = strings.TrimSpace(ratingsTable); ratingsTable != "" {
			r.ratingsTable = ratingsTable
		}
	}
}

func New(tables TableReader, ranker ranking.Ranker, logger *zap.Logger, opts ...Option) *Recommender {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &Recommender{
		tables:       tables,
		ranker:       ranker,
		vendorsTable: DefaultVendorsTable,
		ratingsTable: DefaultRatingsTable,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Recommend validates the request, loads vendors and ratings, selects candidates
// and ranks them. Failing to read either table returns a *sheets.DataSourceError.
func (r *Recommender) Recommend(ctx context.Context, req ranking.Request) (*Response, error) {
	req = normalizeRequest(req)
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	log := r.logger.With(logger.ProjectFields(req.ProjectTitle, req.ServiceCategory)...)

	roster, ratings, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	candidates, err := filtering.SelectCandidates(ctx, log, roster, ratings, req.ServiceCategory)
	if err != nil {
		return nil, fmt.Errorf("selecting candidates: %w", err)
	}

	if len(candidates) == 0 {
		log.Info("no candidate vendors", zap.Int("vendors", roster.Len()))
		return &Response{Success: false, Message: NoCandidatesMessage}, nil
	}

	result, err := r.ranker.Rank(ctx, req, candidates)
	if err != nil {
		return nil, fmt.Errorf("ranking vendors: %w", err)
	}

	log.Info("vendors recommended",
		zap.Int("candidates", len(candidates)),
		zap.String("source", result.Source),
	)

	return &Response{
		Success:         true,
		Recommendations: result.Recommendations,
		Explanation:     result.Explanation,
		BudgetAnalysis:  result.BudgetAnalysis,
		RiskFactors:     result.RiskFactors,
		Source:          result.Source,
	}, nil
}

// Vendors returns the whole vendor roster. refresh rereads the roster and drops
// cached ratings so the next recommendation sees current data.
func (r *Recommender) Vendors(ctx context.Context, refresh bool) (*vendors.Vendors, error) {
	rows, err := r.tables.GetTable(ctx, r.vendorsTable, refresh)
	if err != nil {
		return nil, err
	}
	if refresh {
		r.tables.Invalidate(r.ratingsTable)
	}
	roster, err := vendors.DecodeVendors(rows)
	if err != nil {
		return nil, fmt.Errorf("decoding vendors: %w", err)
	}
	return roster, nil
}

func (r *Recommender) load(ctx context.Context) (*vendors.Vendors, []*vendors.Rating, error) {
	var vendorRows, ratingRows []sheets.Row

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := r.tables.GetTable(gctx, r.vendorsTable, false)
		vendorRows = rows
		return err
	})
	g.Go(func() error {
		rows, err := r.tables.GetTable(gctx, r.ratingsTable, false)
		ratingRows = rows
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	roster, err := vendors.DecodeVendors(vendorRows)
	if err != nil {
		return nil, nil, fmt.Errorf("decoding vendors: %w", err)
	}
	ratings, err := vendors.DecodeRatings(ratingRows)
	if err != nil {
		return nil, nil, fmt.Errorf("decoding ratings: %w", err)
	}

	r.logger.Debug("tables loaded",
		zap.Int("vendors", roster.Len()),
		zap.Int("ratings", len(ratings)),
	)

	return roster, ratings, nil
}
