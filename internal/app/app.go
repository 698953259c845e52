
// Package app assembles the trend engine from a loaded configuration.
package app

import (
	"context"
	"errors"
	"fmt"

	"trend-collector/internal/collector"
	"trend-collector/internal/config"
	"trend-collector/internal/crawler"
	"trend-collector/internal/notify"
	"trend-collector/internal/service"
	"trend-collector/internal/source"
	"trend-collector/internal/store"
	"trend-collector/pkg/logger"
)

type App struct {
	Config  *config.Config
	Log     *logger.Logger
	Store   *store.Store
	Service *service.Service

	closers []func() error
}

// New builds every component. The caller owns the result and must Close it.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	l, err := logger.NewWithConfig(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return NewWithLogger(ctx, cfg, l)
}

func NewWithLogger(ctx context.Context, cfg *config.Config, l *logger.Logger) (*App, error) {
	a := &App{Config: cfg, Log: l}

	backend, err := a.openBackend(ctx)
	if err != nil {
		return nil, err
	}
	a.Store = store.New(backend, store.NewCache(), l, store.WithFreshness(cfg.Cache.Freshness))

	var notifier notify.Notifier = notify.Nop{}
	if cfg.NATS.URL != "" {
		n, err := notify.ConnectNATS(cfg.NATS.URL, cfg.NATS.Subject)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("nats: %w", err)
		}
		a.closers = append(a.closers, n.Close)
		notifier = n
	}

	col := collector.New(Adapters(cfg.HTTP, l), CollectorConfig(cfg.Collection), l)
	a.Service = service.New(col, a.Store, l, service.WithNotifier(notifier))
	return a, nil
}

func (a *App) openBackend(ctx context.Context) (store.Backend, error) {
	switch a.Config.Storage.Backend {
	case "postgres":
		pg, err := store.OpenPostgres(ctx, a.Config.Storage.DSN)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		a.closers = append(a.closers, pg.Close)
		return pg, nil
	default:
		return store.NewFileBackend(a.Config.Storage.Dir)
	}
}

// Adapters returns every known source. The configured provider list only
// picks the default set; the rest stay reachable through explicit sources.
func Adapters(hc config.HTTPConfig, l *logger.Logger) []source.Adapter {
	html := crawler.NewHTTPClient(hc.Timeout, hc.DialTimeout, hc.SizeCap, clientOptions(hc)...)
	feeds := crawler.NewHTTPClient(hc.Timeout, hc.DialTimeout, hc.SizeCap,
		append(clientOptions(hc), crawler.WithAcceptedTypes(crawler.FeedTypes...))...)

	return []source.Adapter{
		source.NaverNews(html, l),
		source.DaumNews(html, l),
		source.Yonhap(feeds, l),
		source.NaverBlog(html, l),
		source.DaumBlog(html, l),
	}
}

func clientOptions(hc config.HTTPConfig) []crawler.Option {
	opts := []crawler.Option{crawler.WithRateLimit(hc.RPS, hc.Burst)}
	if hc.UserAgent != "" {
		opts = append(opts, crawler.WithUserAgent(hc.UserAgent))
	}
	return opts
}

func CollectorConfig(cc config.CollectionConfig) collector.Config {
	return collector.Config{
		NewsPages:    cc.NewsPages,
		BlogPages:    cc.BlogPages,
		SeedCount:    cc.SeedCount,
		PageDelay:    collector.Range{Min: cc.PageDelay.Min, Max: cc.PageDelay.Max},
		KeywordDelay: collector.Range{Min: cc.KeywordDelay.Min, Max: cc.KeywordDelay.Max},
		Providers:    cc.Sources,
	}
}

// Close stops background collection and releases connections.
func (a *App) Close() error {
	if a.Service != nil {
		a.Service.StopBackgroundCollection()
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}
