package ranking

import (
	"context"
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/vendor-matcher/internal/utils"
	"github.com/spigell/vendor-matcher/internal/vendors"
)

const (
	serviceMatchWeight = 0.40
	notesMatchWeight   = 0.30
	ratingWeight       = 0.15
	experienceWeight   = 0.15

	strongThreshold = 70
	goodThreshold   = 50

	heuristicExplanation = "Vendors ranked by a weighted algorithm considering service match, keyword relevance in notes, experience, and ratings."
)

const (
	StrengthServiceMatch   = "Strong service match"
	StrengthRelevantSkills = "Relevant skills in notes"
	StrengthGeneralFit     = "General fit"
	ConcernLacksSkills     = "Lacks specific skills"

	VerdictStrong  = "Strong recommendation"
	VerdictGood    = "Good fit"
	VerdictCaution = "Consider with caution"
)

// Breakdown holds the weighted components of a heuristic score, each in 0..100.
type Breakdown struct {
	ServiceMatch   float64
	KeywordOverlap float64
	Rating         float64
	Experience     float64
	Total          float64
}

// Heuristic ranks vendors with a fixed weighted score. It is deterministic and
// never fails.
type Heuristic struct {
	logger *zap.Logger
}

func NewHeuristic(logger *zap.Logger) *Heuristic {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Heuristic{logger: logger}
}

type scoredVendor struct {
	vendor    vendors.EnrichedVendor
	breakdown Breakdown
}

func (h *Heuristic) Rank(_ context.Context, req Request, candidates []vendors.EnrichedVendor) (*Result, error) {
	projectKeywords := ExtractKeywords(req.ProjectDescription)

	scored := make([]scoredVendor, 0, len(candidates))
	for _, candidate := range candidates {
		scored = append(scored, scoredVendor{
			vendor:    candidate,
			breakdown: score(req.ServiceCategory, projectKeywords, candidate.Vendor),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].breakdown.Total > scored[j].breakdown.Total
	})

	recommendations := make([]Recommendation, 0, len(scored))
	for i, item := range scored {
		recommendations = append(recommendations, Recommendation{
			Rank:           i + 1,
			VendorID:       item.vendor.ID,
			VendorName:     item.vendor.Name,
			MatchScore:     clampScore(int(math.Round(item.breakdown.Total))),
			Strengths:      strengths(item.breakdown),
			Concerns:       concerns(item.breakdown, len(projectKeywords)),
			Recommendation: verdict(item.breakdown.Total),
		})
	}

	h.logger.Debug("vendors ranked by heuristic",
		zap.Int("candidates", len(recommendations)),
		zap.Int("project_keywords", len(projectKeywords)),
	)

	return &Result{
		Recommendations: recommendations,
		Explanation:     heuristicExplanation,
		Source:          SourceFallback,
	}, nil
}

func score(category string, projectKeywords []string, v *vendors.Vendor) Breakdown {
	var b Breakdown

	// Only commas separate services here, unlike candidate filtering.
	if offersService(v.ServiceCategories, category) {
		b.ServiceMatch = 100
	}

	if len(projectKeywords) > 0 {
		vendorKeywords := make(map[string]struct{})
		for _, k := range ExtractKeywords(v.Notes) {
			vendorKeywords[k] = struct{}{}
		}
		matched := 0
		for _, k := range projectKeywords {
			if _, ok := vendorKeywords[k]; ok {
				matched++
			}
		}
		b.KeywordOverlap = float64(matched) / float64(len(projectKeywords)) * 100
	}

	if !math.IsNaN(v.AvgOverallRating) && !math.IsInf(v.AvgOverallRating, 0) {
		b.Rating = v.AvgOverallRating * 20
	}
	b.Experience = math.Max(0, math.Min(100, float64(v.TotalProjects)*5))

	b.Total = serviceMatchWeight*b.ServiceMatch +
		notesMatchWeight*b.KeywordOverlap +
		ratingWeight*b.Rating +
		experienceWeight*b.Experience

	return b
}

func offersService(services, category string) bool {
	category = strings.ToLower(category)
	for _, s := range utils.SplitAndTrim(strings.ToLower(services), ",") {
		if s == category {
			return true
		}
	}
	return false
}

func strengths(b Breakdown) []string {
	out := make([]string, 0, 2)
	if b.ServiceMatch > 0 {
		out = append(out, StrengthServiceMatch)
	}
	if b.KeywordOverlap > 50 {
		out = append(out, StrengthRelevantSkills)
	}
	if len(out) == 0 {
		out = append(out, StrengthGeneralFit)
	}
	return out
}

func concerns(b Breakdown, projectKeywords int) []string {
	out := make([]string, 0, 1)
	if b.KeywordOverlap < 20 && projectKeywords > 0 {
		out = append(out, ConcernLacksSkills)
	}
	return out
}

func verdict(total float64) string {
	switch {
	case total >= strongThreshold:
		return VerdictStrong
	case total >= goodThreshold:
		return VerdictGood
	default:
		return VerdictCaution
	}
}

func clampScore(s int) int {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}
