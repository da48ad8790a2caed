package report

import (
	"time"

	"github.com/blackcoderx/diffrun/pkg/config"
	"github.com/blackcoderx/diffrun/pkg/model"
)

// Summary builds a run's Summary document from its resolved config and
// the completed trial list, mirroring exec()'s own Summary.from_dict call.
func Summary(cfg config.Config, trials []model.Trial, start, end time.Time) model.Summary {
	return model.Summary{
		One:   cfg.One,
		Other: cfg.Other,
		Status: model.StatusHistogram(trials),
		Tags:  cfg.Tags,
		Time: model.TimeWindow{
			Start:      start.Format(time.RFC3339),
			End:        end.Format(time.RFC3339),
			ElapsedSec: int(end.Sub(start).Seconds()),
		},
		Output:      cfg.Output,
		Concurrency: model.Concurrency{Processes: concurrencyProcesses(cfg), Threads: cfg.Threads},
	}
}

func concurrencyProcesses(cfg config.Config) int {
	if cfg.Processes > 0 {
		return cfg.Processes
	}
	return 1
}

// Assemble builds the final Report, mirroring exec()'s closing
// Report.from_dict call.
func Assemble(cfg config.Config, key string, trials []model.Trial, start, end time.Time, retryHash *string) model.Report {
	title := cfg.Title
	if title == "" {
		title = "No title"
	}

	return model.Report{
		Version:     config.EngineVersion,
		Key:         key,
		Title:       title,
		Description: cfg.Description,
		Summary:     Summary(cfg, trials, start, end),
		Trials:      trials,
		Addons:      cfg.Addons,
		RetryHash:   retryHash,
	}
}
