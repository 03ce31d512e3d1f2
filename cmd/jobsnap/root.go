package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobsnap/internal/adapter"
	"github.com/amishk599/jobsnap/internal/aggregate"
	"github.com/amishk599/jobsnap/internal/cache"
	"github.com/amishk599/jobsnap/internal/config"
	"github.com/amishk599/jobsnap/internal/filter"
	"github.com/amishk599/jobsnap/internal/model"
	"github.com/amishk599/jobsnap/internal/notifier"
	"github.com/amishk599/jobsnap/internal/ratelimit"
	"github.com/amishk599/jobsnap/internal/retry"
	"github.com/amishk599/jobsnap/internal/store"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "jobsnap",
	Short: "Résumé-driven job matching",
	Long:  "JobSnap caches postings from public job APIs and ranks them against the skills in your résumé.",
	// Errors are logged by each command before exiting.
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: JOBSNAP_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig reads .env into the environment, then resolves and parses the config.
func loadConfig() (*config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}
	return config.Load(config.ResolvePath(cfgPath))
}

// mustLoad is the common prologue of every command: logger plus config, exiting on error.
func mustLoad() (*config.Config, *slog.Logger) {
	logger := setupLogger(debug)
	cfg, err := loadConfig()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	return cfg, logger
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

func openStore(cfg *config.Config, logger *slog.Logger) *store.SQLiteStore {
	sqlStore, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		logger.Error("failed to open store", "path", cfg.Database.Path, "error", err)
		os.Exit(1)
	}
	return sqlStore
}

func setupNotifier(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) model.Notifier {
	switch cfg.Notification.Type {
	case "slack":
		logger.Info("using slack notifier")
		return notifier.NewSlackNotifier(cfg.Notification.WebhookURL, httpClient, logger)
	default:
		return notifier.NewLogNotifier(logger)
	}
}

// setupCache returns nil when caching is disabled. A Redis URL that cannot be
// reached degrades to the in-process cache.
func setupCache(ctx context.Context, cfg *config.Config, logger *slog.Logger) cache.Cache {
	if !cfg.Cache.Enabled {
		return nil
	}
	if cfg.Cache.RedisURL == "" {
		logger.Debug("using in-memory response cache", "ttl", cfg.Cache.TTL.String())
		return cache.NewMemory()
	}
	rc, err := cache.NewRedis(ctx, cfg.Cache.RedisURL)
	if err != nil {
		logger.Warn("redis unavailable, falling back to in-memory cache", "error", err)
		return cache.NewMemory()
	}
	logger.Debug("using redis response cache", "ttl", cfg.Cache.TTL.String())
	return rc
}

func createSource(sc config.SourceConfig, httpClient *http.Client, logger *slog.Logger) (model.JobSource, bool) {
	switch sc.Type {
	case config.SourceRemotive:
		return adapter.NewRemotiveAdapter(sc.BaseURL, httpClient), true
	case config.SourceJSearch:
		if sc.APIKey == "" {
			logger.Warn("jsearch api key not set, skipping")
			return nil, false
		}
		return adapter.NewJSearchAdapter(sc.APIKey, httpClient), true
	case config.SourceAdzuna:
		return adapter.NewAdzunaAdapter(sc.AppID, sc.AppKey, sc.Country, httpClient), true
	case config.SourceGreenhouse:
		return adapter.NewGreenhouseAdapter(sc.BoardToken, sc.Name, httpClient), true
	case config.SourceLever:
		return adapter.NewLeverAdapter(sc.BoardToken, sc.Name, httpClient), true
	case config.SourceAshby:
		return adapter.NewAshbyAdapter(sc.BoardToken, sc.Name, httpClient), true
	case config.SourceGem:
		return adapter.NewGemAdapter(sc.BoardToken, sc.Name, httpClient), true
	default:
		logger.Warn("unsupported source type, skipping", "type", sc.Type)
		return nil, false
	}
}

// buildSources wraps each enabled adapter as cache(retry(ratelimit(adapter)))
// so cache hits skip both the limiter and the retry loop.
func buildSources(cfg *config.Config, httpClient *http.Client, responses cache.Cache, logger *slog.Logger) []aggregate.Source {
	limiters := make(map[string]*ratelimit.KeyedLimiter)

	var sources []aggregate.Source
	for _, sc := range cfg.Sources {
		if !sc.Enabled {
			continue
		}
		src, ok := createSource(sc, httpClient, logger)
		if !ok {
			continue
		}

		limiter, ok := limiters[sc.Type]
		if !ok {
			limiter = ratelimit.NewKeyedLimiter(cfg.RateLimit.MinDelayFor(sc.Type))
			limiters[sc.Type] = limiter
		}
		// Boards on the same provider share one limiter slot.
		src = ratelimit.NewRateLimitedSource(src, limiter, sc.Type)
		src = retry.NewRetrySource(src, cfg.Retry.MaxRetries, cfg.Retry.BaseDelay, logger)
		if responses != nil {
			src = cache.NewCachedSource(src, responses, cfg.Cache.TTL, logger)
		}

		sources = append(sources, aggregate.Source{Client: src, ExpandTerms: sc.ExpandTerms, Pages: sc.Pages})
		logger.Debug("registered source", "source", sc.Label(), "expand_terms", sc.ExpandTerms, "pages", sc.Pages)
	}
	return sources
}

func newAggregator(cfg *config.Config, postings model.PostingStore, responses cache.Cache, logger *slog.Logger) *aggregate.Aggregator {
	httpClient := &http.Client{Timeout: 30 * time.Second}
	sources := buildSources(cfg, httpClient, responses, logger)

	var exclude model.PostingFilter
	if len(cfg.Fetch.ExcludeKeywords) > 0 {
		exclude = filter.NewKeywordFilter(nil, cfg.Fetch.ExcludeKeywords)
	}

	return aggregate.New(sources, postings, aggregate.Options{
		Timeout: cfg.Fetch.Timeout,
		TopUp:   cfg.Fetch.TopUp,
		Filter:  exclude,
	}, logger)
}
