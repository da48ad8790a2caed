package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/blackcoderx/diffrun/pkg/addon"
	"github.com/blackcoderx/diffrun/pkg/config"
	"github.com/blackcoderx/diffrun/pkg/httpclient"
	"github.com/blackcoderx/diffrun/pkg/model"
	"github.com/blackcoderx/diffrun/pkg/report"
)

// SessionWriter is everything the engine needs from pkg/report's
// FileWriter beyond the per-trial ArtifactWriter: directory prep and the
// latest-symlink swap, both one-shot per run rather than per-trial.
type SessionWriter interface {
	ArtifactWriter
	PrepareSessionDirs(key string) error
	SwapLatest(key string) error
}

// Run dispatches every request against both access points, builds a Trial
// for each, and returns the completed Report. It's the top-level
// equivalent of original_source/jumeaux/executor.py's exec(): provision
// clients, create artifact directories, run the challenge loop with
// bounded concurrency, swap the latest pointer, and assemble the report.
// The Final add-on stage is not applied here; the caller runs it on the
// returned Report.
func Run(ctx context.Context, cfg config.Config, executor *addon.Executor, writer SessionWriter, logger Logger, key string, retryHash *string, requests []model.Request) (model.Report, error) {
	if logger == nil {
		logger = NopLogger{}
	}

	headersOne, err := resolvedHeaders(ctx, cfg.One)
	if err != nil {
		return model.Report{}, fmt.Errorf("resolving headers for one: %w", err)
	}
	headersOther, err := resolvedHeaders(ctx, cfg.Other)
	if err != nil {
		return model.Report{}, fmt.Errorf("resolving headers for other: %w", err)
	}

	if err := writer.PrepareSessionDirs(key); err != nil {
		return model.Report{}, fmt.Errorf("preparing session directories: %w", err)
	}

	title := cfg.Title
	if title == "" {
		title = "No title"
	}
	processes := cfg.Processes
	if processes <= 0 {
		processes = 1
	}
	logger.InfoLv1("--------------------------------------------------------------------------------")
	logger.InfoLv1("| %s", title)
	logger.InfoLv1("| (%s)", key)
	logger.InfoLv1("--------------------------------------------------------------------------------")
	logger.InfoLv1("| %s", cfg.Description)
	logger.InfoLv1("--------------------------------------------------------------------------------")
	logger.InfoLv1("| - %d processes", processes)
	logger.InfoLv1("| - %d threads", cfg.Threads)
	logger.InfoLv1("--------------------------------------------------------------------------------")

	deps := TrialDeps{
		One: cfg.One, Other: cfg.Other,
		ClientOne:        httpclient.NewClient(cfg.One.Proxy, cfg.MaxRetries),
		ClientOther:      httpclient.NewClient(cfg.Other.Proxy, cfg.MaxRetries),
		HeadersOne:       headersOne,
		HeadersOther:     headersOther,
		Executor:         executor,
		Writer:           writer,
		Key:              key,
		NumberOfRequests: len(requests),
		Logger:           logger,
	}

	workers := cfg.Threads
	if cfg.Processes > 0 {
		workers = cfg.Processes
	}
	pool := NewPool(workers, cfg.RateLimitRPS)
	start := time.Now()

	results := pool.Run(ctx, len(requests), func(ctx context.Context, i int) interface{} {
		trial, err := RunTrial(ctx, deps, i+1, requests[i])
		if err != nil {
			return err
		}
		return trial
	})

	end := time.Now()

	trials := make([]model.Trial, len(results))
	for i, r := range results {
		switch v := r.(type) {
		case model.Trial:
			trials[i] = v
		case error:
			return model.Report{}, fmt.Errorf("trial %d: %w", i+1, v)
		default:
			return model.Report{}, fmt.Errorf("trial %d: unexpected result type %T", i+1, r)
		}
	}

	if err := writer.SwapLatest(key); err != nil {
		return model.Report{}, fmt.Errorf("swapping latest pointer: %w", err)
	}

	rep := report.Assemble(cfg, key, trials, start, end, retryHash)

	return rep, nil
}

func resolvedHeaders(ctx context.Context, ap model.AccessPoint) (map[string]string, error) {
	headers := map[string]string{"User-Agent": "diffrun/" + config.EngineVersion}
	for k, v := range ap.Headers {
		headers[k] = v
	}
	oauthHeaders, err := config.ResolveOAuth2Headers(ctx, ap)
	if err != nil {
		return nil, err
	}
	for k, v := range oauthHeaders {
		headers[k] = v
	}
	return headers, nil
}
