package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"recall/internal/config"
	"recall/internal/domain"
	"recall/internal/embedding/tfidf"
	"recall/internal/logging"
	"recall/internal/memstore"
	"recall/internal/seed"
	"recall/internal/service"
	"recall/internal/summarizer"
	"recall/internal/summarizer/anthropic"
)

// app holds the components assembled for one command invocation.
type app struct {
	cfg   *config.AppConfig
	log   *slog.Logger
	store *memstore.Store
	svc   *service.MemoryService
}

func loadConfig(path string) (*config.AppConfig, error) {
	if path == "" {
		cfg, _, err := config.LoadDefault()
		return cfg, err
	}
	return config.Load(path)
}

func newLogger(cfg config.LoggingConfig, levelOverride string, out io.Writer) *slog.Logger {
	level := cfg.Level
	if levelOverride != "" {
		level = levelOverride
	}
	return logging.New(logging.Options{
		Level:  logging.ParseLevel(level),
		Format: cfg.Format,
		Output: out,
	})
}

func buildApp(cfg *config.AppConfig, logger *slog.Logger, seedPath string) (*app, error) {
	store := memstore.New(memstore.Options{
		MinDocuments:   cfg.Index.MinDocuments,
		RelevanceFloor: cfg.Query.RelevanceFloor,
		DefaultLimit:   cfg.Query.DefaultLimit,
		ExcerptRunes:   cfg.Query.ExcerptChars,
		SummaryField:   cfg.Query.SummaryField,
		TrendWindow:    cfg.Trends.DefaultWindow,
		NewVectorizer:  vectorizerFactory(cfg.Index),
		Logger:         logger,
	})

	if seedPath != "" {
		n, err := seed.LoadFile(seedPath, store)
		if err != nil {
			return nil, fmt.Errorf("load seed: %w", err)
		}
		logger.Info("seed loaded", "path", seedPath, "summaries", n, "users", len(store.Users()))
	}

	sum, err := newSummarizer(cfg.Summarizer)
	if err != nil {
		// Query and trends work without an oracle; remember reports the error.
		logger.Warn("summarizer unavailable", "type", cfg.Summarizer.Type, "error", err)
	}
	svc := service.NewMemoryService(store, service.Options{
		Summarizer:    sum,
		OracleTimeout: time.Duration(cfg.Summarizer.TimeoutSecs) * time.Second,
		TrendWindow:   cfg.Trends.DefaultWindow,
		Logger:        logger,
	})
	return &app{cfg: cfg, log: logger, store: store, svc: svc}, nil
}

func vectorizerFactory(cfg config.IndexConfig) func() domain.Vectorizer {
	var words []string
	if !strings.EqualFold(cfg.Stopwords, "none") {
		words = tfidf.EnglishStopwordList()
	}
	words = append(words, cfg.ExtraStop...)
	return func() domain.Vectorizer {
		return tfidf.NewVectorizer(
			tfidf.WithMaxFeatures(cfg.MaxFeatures),
			tfidf.WithStopwords(words),
		)
	}
}

func newSummarizer(cfg config.SummarizerConfig) (domain.Summarizer, error) {
	switch cfg.Type {
	case "frequency", "":
		return summarizer.NewFrequencySummarizer(cfg.MaxSentences), nil
	case "anthropic":
		if cfg.Anthropic == nil {
			return nil, fmt.Errorf("anthropic summarizer config missing")
		}
		a := cfg.Anthropic
		s, err := anthropic.New(anthropic.Options{
			APIKey:     os.Getenv(a.APIKeyEnv),
			BaseURL:    a.BaseURL,
			Model:      a.Model,
			MaxTokens:  a.MaxTokens,
			Timeout:    time.Duration(a.TimeoutSecs) * time.Second,
			MaxRetries: a.MaxRetries,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown summarizer: %s", cfg.Type)
	}
}
