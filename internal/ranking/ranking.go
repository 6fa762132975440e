// Package ranking defines how candidate vendors are ranked for a project and
// provides the deterministic weighted heuristic used when no remote model is available.
package ranking

import (
	"context"

	"github.com/spigell/vendor-matcher/internal/vendors"
)

const (
	SourceRemoteModel = "RemoteModel"
	SourceFallback    = "Fallback Algorithm"
)

// Request describes the project vendors are ranked for.
type Request struct {
	ProjectTitle       string `json:"projectTitle"`
	ServiceCategory    string `json:"serviceCategory"`
	ProjectDescription string `json:"projectDescription"`
}

type Recommendation struct {
	Rank           int      `json:"rank" mapstructure:"rank"`
	VendorID       string   `json:"vendorId" mapstructure:"vendorId"`
	VendorName     string   `json:"vendorName" mapstructure:"vendorName"`
	MatchScore     int      `json:"matchScore" mapstructure:"matchScore"`
	Strengths      []string `json:"strengths" mapstructure:"strengths"`
	Concerns       []string `json:"concerns" mapstructure:"concerns"`
	Recommendation string   `json:"recommendation" mapstructure:"recommendation"`
}

// Result is an ordered ranking: ranks run 1..N and match scores never increase with rank.
type Result struct {
	Recommendations []Recommendation `json:"recommendations"`
	Explanation     string           `json:"explanation"`
	BudgetAnalysis  string           `json:"budgetAnalysis,omitempty"`
	RiskFactors     string           `json:"riskFactors,omitempty"`
	Source          string           `json:"source"`
}

// Ranker ranks candidate vendors for a project.
type Ranker interface {
	Rank(ctx context.Context, req Request, candidates []vendors.EnrichedVendor) (*Result, error)
}
