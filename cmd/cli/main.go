package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"trend-collector/internal/app"
	"trend-collector/internal/collector"
	"trend-collector/internal/config"
	"trend-collector/internal/ioformats"
	"trend-collector/internal/models"
	"trend-collector/pkg/logger"
)

type flags struct {
	config       string
	categories   string
	keywords     string
	keywordsFile string
	sources      string
	output       string
	save         bool
}

func main() {
	var f flags
	flag.StringVar(&f.config, "config", "", "YAML config file (default $TREND_CONFIG)")
	flag.StringVar(&f.categories, "categories", "", "comma-separated news categories (default all)")
	flag.StringVar(&f.keywords, "keywords", "", "comma-separated blog seed keywords")
	flag.StringVar(&f.keywordsFile, "keywords-file", "", "seed keywords file (csv with 'keyword' column, ndjson or one per line)")
	flag.StringVar(&f.sources, "sources", "", "comma-separated providers, e.g. naver,daum")
	flag.StringVar(&f.output, "output", "", "output NDJSON file (default stdout)")
	flag.BoolVar(&f.save, "save", false, "persist the snapshot to the configured store")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, f); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, f flags) error {
	cfg, err := config.Load(f.config)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	opts := collector.Options{
		Categories: splitList(f.categories),
		Keywords:   splitList(f.keywords),
		Sources:    splitList(f.sources),
	}
	if f.keywordsFile != "" {
		kws, err := ioformats.ReadKeywords(f.keywordsFile)
		if err != nil {
			return fmt.Errorf("read keywords: %w", err)
		}
		opts.Keywords = append(opts.Keywords, kws...)
	}

	// stdout carries the NDJSON
	l, err := logger.NewWithOutput(cfg.Log.Level, cfg.Log.File, os.Stderr)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}

	var snap *models.Snapshot
	if f.save {
		a, err := app.NewWithLogger(ctx, cfg, l)
		if err != nil {
			return fmt.Errorf("startup: %w", err)
		}
		defer a.Close()
		snap, err = a.Service.CollectTrends(ctx, opts)
		if err != nil {
			return err
		}
	} else {
		col := collector.New(app.Adapters(cfg.HTTP, l), app.CollectorConfig(cfg.Collection), l)
		snap, err = col.Collect(ctx, opts)
		if err != nil {
			return err
		}
	}

	var w io.Writer = os.Stdout
	if f.output != "" {
		out, err := os.Create(f.output)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer out.Close()
		w = out
	}
	if err := ioformats.WriteNDJSON(w, ioformats.SnapshotRecords(snap)); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	l.Infof("top keywords: %s", strings.Join(snap.TopKeywords(), ", "))
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
