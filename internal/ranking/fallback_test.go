package ranking

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/vendor-matcher/internal/vendors"
)

type stubRanker struct {
	result *Result
	err    error
	calls  int
}

func (s *stubRanker) Rank(context.Context, Request, []vendors.EnrichedVendor) (*Result, error) {
	s.calls++
	return s.result, s.err
}

func TestWithFallbackUsesPrimary(t *testing.T) {
	primary := &stubRanker{result: &Result{Source: SourceRemoteModel}}
	fallback := &stubRanker{result: &Result{Source: SourceFallback}}

	result, err := WithFallback(primary, fallback, nil).Rank(context.Background(), Request{}, sampleCandidates())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Source != SourceRemoteModel {
		t.Fatalf("expected remote result, got %q", result.Source)
	}
	if fallback.calls != 0 {
		t.Fatalf("fallback should not be called")
	}
}

func TestWithFallbackOnTransportError(t *testing.T) {
	core, observed := observer.New(zapcore.WarnLevel)
	primary := &stubRanker{err: errors.New("connection refused")}
	candidates := sampleCandidates()

	ranker := WithFallback(primary, NewHeuristic(nil), zap.New(core))
	result, err := ranker.Rank(context.Background(), Request{ServiceCategory: "seo", ProjectDescription: "SEO audit"}, candidates)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Source != SourceFallback {
		t.Fatalf("expected fallback source, got %q", result.Source)
	}
	if len(result.Recommendations) != len(candidates) {
		t.Fatalf("expected %d recommendations, got %d", len(candidates), len(result.Recommendations))
	}
	for i, rec := range result.Recommendations {
		if rec.Rank != i+1 {
			t.Fatalf("unexpected rank %d at %d", rec.Rank, i)
		}
	}

	entries := observed.FilterMessage("remote ranking failed, using fallback algorithm").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(entries))
	}
}

func TestWithFallbackSkipsPrimary(t *testing.T) {
	primary := &stubRanker{result: &Result{Source: SourceRemoteModel}}
	fallback := &stubRanker{result: &Result{Source: SourceFallback}}

	result, err := WithFallback(primary, fallback, nil).Rank(context.Background(), Request{}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Source != SourceFallback || primary.calls != 0 {
		t.Fatalf("expected fallback without calling primary, got %q and %d calls", result.Source, primary.calls)
	}

	result, err = WithFallback(nil, fallback, nil).Rank(context.Background(), Request{}, sampleCandidates())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Source != SourceFallback {
		t.Fatalf("expected fallback source, got %q", result.Source)
	}
}
