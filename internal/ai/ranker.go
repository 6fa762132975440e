package ai

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	_ "embed"

	"github.com/goccy/go-json"
	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/spigell/vendor-matcher/internal/logger"
	"github.com/spigell/vendor-matcher/internal/ranking"
	"github.com/spigell/vendor-matcher/internal/utils"
	"github.com/spigell/vendor-matcher/internal/vendors"
)

//go:embed prompt.md
var promptTemplate string

const (
	defaultMaxLogLength = 200
	defaultTimeout      = 30 * time.Second
)

// Options tune a RemoteRanker. Provider and Model only label log entries.
type Options struct {
	Provider     string
	Model        string
	Timeout      time.Duration
	MaxLogLength int
}

// RemoteRanker asks a language model to rank candidates. Every call is a single
// attempt bounded by the configured timeout.
type RemoteRanker struct {
	generator Generator
	logger    *zap.Logger
	timeout   time.Duration
	maxLogLen int
}

func NewRemoteRanker(generator Generator, log *zap.Logger, opts Options) *RemoteRanker {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.MaxLogLength <= 0 {
		opts.MaxLogLength = defaultMaxLogLength
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}

	return &RemoteRanker{
		generator: generator,
		logger:    logger.WithCommonFields(log, opts.Provider, opts.Model),
		timeout:   opts.Timeout,
		maxLogLen: opts.MaxLogLength,
	}
}

func (r *RemoteRanker) Rank(ctx context.Context, req ranking.Request, candidates []vendors.EnrichedVendor) (*ranking.Result, error) {
	if r.generator == nil {
		return nil, fmt.Errorf("%w: generator is not configured", ErrRankingTransport)
	}

	prompt := buildPrompt(req, candidates)
	log := r.logger.With(logger.ProjectFields(req.ProjectTitle, req.ServiceCategory)...)

	log.Debug("ranking model request",
		zap.Int("candidates", len(candidates)),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, r.maxLogLen)),
	)

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	raw, err := r.generator.GenerateContent(callCtx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRankingTransport, err)
	}

	log.Debug("ranking model response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, r.maxLogLen)),
	)

	result, err := parseResponse(raw, candidates)
	if err != nil {
		return nil, err
	}

	log.Info("vendors ranked by model", zap.Int("recommendations", len(result.Recommendations)))

	return result, nil
}

func buildPrompt(req ranking.Request, candidates []vendors.EnrichedVendor) string {
	summaries := make([]string, 0, len(candidates))
	for _, c := range candidates {
		summaries = append(summaries, summarizeVendor(c))
	}

	return strings.NewReplacer(
		"{{PROJECT_TITLE}}", req.ProjectTitle,
		"{{SERVICE_CATEGORY}}", req.ServiceCategory,
		"{{PROJECT_DESCRIPTION}}", req.ProjectDescription,
		"{{VENDOR_SUMMARIES}}", strings.Join(summaries, "\n\n"),
	).Replace(promptTemplate)
}

func summarizeVendor(c vendors.EnrichedVendor) string {
	notes := strings.TrimSpace(c.Notes)
	if notes == "" {
		notes = "No notes provided."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "- Vendor ID: %s\n  Name: %s\n  Services: %s\n  Rating: %s/5 (%d projects)\n  Notes: %s",
		c.ID, c.Name, c.ServiceCategories, formatNumber(c.AvgOverallRating), c.TotalProjects, notes)

	if len(c.RecentRatings) > 0 {
		b.WriteString("\n  Recent Project Feedback:")
		for _, rating := range c.RecentRatings {
			onTime := "No"
			if rating.OnTime {
				onTime = "Yes"
			}
			wentWell := strings.TrimSpace(rating.WhatWentWell)
			if wentWell == "" {
				wentWell = "N/A"
			}
			fmt.Fprintf(&b, "\n    - Success: %s/5, Quality: %s/5, Comm: %s/5. On Time: %s. Strengths: %q",
				formatNumber(rating.ProjectSuccess),
				formatNumber(rating.VendorQuality),
				formatNumber(rating.VendorCommunication),
				onTime,
				wentWell,
			)
		}
	}

	return b.String()
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

type modelPayload struct {
	Recommendations []ranking.Recommendation `mapstructure:"recommendations"`
	Explanation     string                   `mapstructure:"explanation"`
	BudgetAnalysis  string                   `mapstructure:"budgetAnalysis"`
	RiskFactors     string                   `mapstructure:"riskFactors"`
}

// parseResponse decodes the model answer and checks it covers every candidate
// exactly once. Ranks are reassigned in score order and scores are clamped to 0..100.
func parseResponse(raw string, candidates []vendors.EnrichedVendor) (*ranking.Result, error) {
	var data map[string]any
	if err := json.Unmarshal([]byte(extractJSON(raw)), &data); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}

	var payload modelPayload
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &payload,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(data); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}

	names := make(map[string]string, len(candidates))
	for _, c := range candidates {
		names[c.ID] = c.Name
	}

	if len(payload.Recommendations) != len(candidates) {
		return nil, fmt.Errorf("%w: got %d recommendations for %d candidates",
			ErrInvalidResponse, len(payload.Recommendations), len(candidates))
	}

	seen := make(map[string]struct{}, len(candidates))
	recs := payload.Recommendations
	for i := range recs {
		id := strings.TrimSpace(recs[i].VendorID)
		name, known := names[id]
		if !known {
			return nil, fmt.Errorf("%w: unknown vendor %q", ErrInvalidResponse, recs[i].VendorID)
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: vendor %q ranked twice", ErrInvalidResponse, id)
		}
		seen[id] = struct{}{}

		recs[i].VendorID = id
		if strings.TrimSpace(recs[i].VendorName) == "" {
			recs[i].VendorName = name
		}
		recs[i].MatchScore = min(max(recs[i].MatchScore, 0), 100)
		if recs[i].Strengths == nil {
			recs[i].Strengths = []string{}
		}
		if recs[i].Concerns == nil {
			recs[i].Concerns = []string{}
		}
	}

	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].MatchScore != recs[j].MatchScore {
			return recs[i].MatchScore > recs[j].MatchScore
		}
		return recs[i].Rank < recs[j].Rank
	})
	for i := range recs {
		recs[i].Rank = i + 1
	}

	return &ranking.Result{
		Recommendations: recs,
		Explanation:     strings.TrimSpace(payload.Explanation),
		BudgetAnalysis:  strings.TrimSpace(payload.BudgetAnalysis),
		RiskFactors:     strings.TrimSpace(payload.RiskFactors),
		Source:          ranking.SourceRemoteModel,
	}, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}
