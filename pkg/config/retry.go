package config

import (
	"github.com/blackcoderx/diffrun/pkg/model"
)

// RequestsFromReport rebuilds the original Request list from a prior
// Report's trials, the way the original implementation's retry path
// reconstructs requests from report.trials instead of re-parsing input
// files.
func RequestsFromReport(report model.Report) []model.Request {
	reqs := make([]model.Request, 0, len(report.Trials))
	for _, t := range report.Trials {
		reqs = append(reqs, model.Request{
			Name:    t.Name,
			Method:  t.Method,
			Path:    t.Path,
			QS:      t.Queries,
			Headers: t.Headers,
			Form:    t.Form,
			JSON:    t.JSON,
		})
	}
	return reqs
}

// FromReport reconstructs a Config's one/other/output/addons from a prior
// Report, the way create_config_from_report does in the original source.
// The retry command applies no MergeArgs overlay on top of the result.
func FromReport(report model.Report) Config {
	return Config{
		One:        report.Summary.One,
		Other:      report.Summary.Other,
		Output:     report.Summary.Output,
		Threads:    report.Summary.Concurrency.Threads,
		Processes:  report.Summary.Concurrency.Processes,
		MaxRetries: 3,
		Title:      report.Title,
		Tags:       report.Summary.Tags,
		Addons:     report.Addons,
	}
}
