package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/vendor-matcher/internal/ai"
	"github.com/spigell/vendor-matcher/internal/ai/gemini"
	"github.com/spigell/vendor-matcher/internal/ai/openai"
	"github.com/spigell/vendor-matcher/internal/ranking"
	"github.com/spigell/vendor-matcher/internal/recommend"
	"github.com/spigell/vendor-matcher/internal/secrets"
	"github.com/spigell/vendor-matcher/internal/sheets"
)

const (
	providerOpenAI = "openai"
	providerGemini = "gemini"
)

var errNoAPIKey = errors.New("no api key configured")

func newRecommender(ctx context.Context, config *Config, logger *zap.Logger) (*recommend.Recommender, error) {
	if config == nil || config.Sheets == nil {
		return nil, errors.New("sheets configuration is required")
	}

	client, err := newSheetsClient(ctx, config.Sheets, logger)
	if err != nil {
		return nil, err
	}

	cache := sheets.NewCache(client, config.Sheets.CacheTTL, logger)
	logger.Debug("sheets cache ready", zap.Duration("ttl", cache.TTL()))
	ranker := newRanker(ctx, config.AI, logger)

	return recommend.New(cache, ranker, logger,
		recommend.WithTables(config.Sheets.VendorsTable, config.Sheets.RatingsTable),
	), nil
}

func newSheetsClient(ctx context.Context, cfg *SheetsConfig, logger *zap.Logger) (*sheets.Client, error) {
	// A key file holds the PEM as is; the inline value is base64 encoded.
	keySource := secrets.Source{Name: "google service account private key", Value: cfg.PrivateKey, Base64: true}
	if strings.TrimSpace(cfg.PrivateKeyFile) != "" {
		keySource = secrets.Source{Name: "google service account private key", File: cfg.PrivateKeyFile}
	}

	key, err := secrets.Load(keySource)
	if err != nil {
		return nil, fmt.Errorf("%w (set sheets.private-key-file or GOOGLE_PRIVATE_KEY_BASE64)", err)
	}

	return sheets.New(ctx, logger, cfg.SpreadsheetID, sheets.Credentials{
		Email:      cfg.ServiceAccountEmail,
		PrivateKey: []byte(key),
	}, cfg.Timeout)
}

// newRanker returns the heuristic alone when the model is disabled or cannot
// be set up, otherwise the model ranker backed by the heuristic.
func newRanker(ctx context.Context, cfg *AIConfig, logger *zap.Logger) ranking.Ranker {
	heuristic := ranking.NewHeuristic(logger)

	if cfg == nil || !cfg.Enabled {
		logger.Info("ranking model disabled, using fallback algorithm")
		return heuristic
	}

	remote, err := newRemoteRanker(ctx, cfg, logger)
	if errors.Is(err, errNoAPIKey) {
		logger.Info("no api key for the ranking model, using fallback algorithm", zap.String("provider", cfg.Provider))
		return heuristic
	}
	if err != nil {
		logger.Warn("ranking model is not available, using fallback algorithm", zap.Error(err))
		return heuristic
	}

	return ranking.WithFallback(remote, heuristic, logger)
}

func newRemoteRanker(ctx context.Context, cfg *AIConfig, logger *zap.Logger) (*ai.RemoteRanker, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider == "" {
		provider = providerOpenAI
	}

	var (
		generator ai.Generator
		model     string
	)

	switch provider {
	case providerOpenAI:
		openaiCfg := cfg.OpenAI
		if openaiCfg == nil {
			openaiCfg = &OpenAIConfig{}
		}
		src := secrets.Source{Name: "openai api key", Value: openaiCfg.APIKey, File: openaiCfg.APIKeyFile}
		if !secrets.Configured(src) {
			return nil, errNoAPIKey
		}
		apiKey, err := secrets.Load(src)
		if err != nil {
			return nil, fmt.Errorf("%w (set ai.openai.api-key-file or OPENAI_API_KEY)", err)
		}
		gen, err := openai.NewGenerator(apiKey, openaiCfg.Model, openaiCfg.BaseURL)
		if err != nil {
			return nil, err
		}
		generator, model = gen, gen.Model()
	case providerGemini:
		geminiCfg := cfg.Gemini
		if geminiCfg == nil {
			geminiCfg = &GeminiConfig{}
		}
		src := secrets.Source{Name: "gemini api key", Value: geminiCfg.APIKey, File: geminiCfg.APIKeyFile}
		if !secrets.Configured(src) {
			return nil, errNoAPIKey
		}
		apiKey, err := secrets.Load(src)
		if err != nil {
			return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY)", err)
		}
		gen, err := gemini.NewGenerator(ctx, apiKey, geminiCfg.Model)
		if err != nil {
			return nil, err
		}
		generator, model = gen, gen.Model()
	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	breaker := ai.BreakerSettings{}
	if cfg.Breaker != nil {
		breaker = ai.BreakerSettings{
			FailureThreshold: cfg.Breaker.FailureThreshold,
			OpenTimeout:      cfg.Breaker.OpenTimeout,
		}
	}

	return ai.NewRemoteRanker(ai.WithBreaker(generator, breaker, logger), logger, ai.Options{
		Provider:     provider,
		Model:        model,
		Timeout:      cfg.Timeout,
		MaxLogLength: cfg.MaxLogLength,
	}), nil
}
