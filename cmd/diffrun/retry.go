package main

import (
	"encoding/json"
	"os"

	"github.com/blackcoderx/diffrun/pkg/config"
	"github.com/blackcoderx/diffrun/pkg/model"
)

func loadReport(path string) (model.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Report{}, err
	}
	var rep model.Report
	if err := json.Unmarshal(data, &rep); err != nil {
		return model.Report{}, err
	}
	return rep, nil
}

// configFromReport rebuilds the Config and request list a prior Report was
// produced from, matching the original's retry path: reconstruct trials
// into requests rather than re-running log2reqs/reqs2reqs against files
// that may no longer exist or may have since changed.
func configFromReport(rep model.Report) (config.Config, []model.Request) {
	cfg := config.FromReport(rep)
	cfg.Description = rep.Description
	if cfg.Threads <= 0 {
		cfg.Threads = 1
	}
	return cfg, config.RequestsFromReport(rep)
}
