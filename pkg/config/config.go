// Package config resolves the fully-merged Config the engine accepts:
// YAML file load, CLI-argument overlay, and reconstruction from a prior
// Report for retries. Multiple files are merged with a shallow top-level
// overlay (see Load), on the teacher's own yaml.v3-based config struct in
// pkg/core/init.go.
package config

import (
	"fmt"
	"os"

	"github.com/blang/semver"
	"gopkg.in/yaml.v3"

	"github.com/blackcoderx/diffrun/pkg/model"
)

// EngineVersion is stamped into every Report and the default User-Agent.
const EngineVersion = "0.1.0"

// NotifierConfig configures one Final-stage notifier add-on instance.
type NotifierConfig struct {
	Name   string                 `yaml:"name" json:"name"`
	Config map[string]interface{} `yaml:"config,omitempty" json:"config,omitempty"`
}

// Config is the fully-resolved configuration object the engine receives.
// Nothing about how it was assembled (YAML merge, CLI args, report
// reconstruction) is visible past this point.
type Config struct {
	One         model.AccessPoint    `yaml:"one" json:"one"`
	Other       model.AccessPoint    `yaml:"other" json:"other"`
	Output      model.OutputConfig   `yaml:"output" json:"output"`
	Threads     int                  `yaml:"threads" json:"threads"`
	Processes   int                  `yaml:"processes,omitempty" json:"processes,omitempty"`
	MaxRetries  int                  `yaml:"max_retries" json:"max_retries"`
	Title       string               `yaml:"title,omitempty" json:"title,omitempty"`
	Description string               `yaml:"description,omitempty" json:"description,omitempty"`
	Tags        []string             `yaml:"tags,omitempty" json:"tags,omitempty"`
	InputFiles  []string             `yaml:"input_files,omitempty" json:"input_files,omitempty"`
	Notifiers   []NotifierConfig     `yaml:"notifiers,omitempty" json:"notifiers,omitempty"`
	Addons      model.AddonsConfig   `yaml:"addons,omitempty" json:"addons,omitempty"`
	RateLimitRPS float64             `yaml:"rate_limit_rps,omitempty" json:"rate_limit_rps,omitempty"`
}

// Load reads and merges one or more YAML config files in order; later
// files override fields they set (a shallow top-level merge is enough
// here since the engine receives one already-resolved document — deep
// hierarchical merging across many partial files is the scaffolder/CLI's
// job, out of scope per spec.md).
func Load(paths []string) (Config, error) {
	var cfg Config
	cfg.Threads = 1
	cfg.MaxRetries = 3

	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return Config{}, fmt.Errorf("reading config %s: %w", p, err)
		}
		var overlay Config
		if err := yaml.Unmarshal(data, &overlay); err != nil {
			return Config{}, fmt.Errorf("parsing config %s: %w", p, err)
		}
		cfg = merge(cfg, overlay)
	}
	return cfg, nil
}

// merge overlays non-zero fields of b onto a, matching the original's
// "later wins" semantics for repeated --config flags.
func merge(a, b Config) Config {
	if b.One.Host != "" {
		a.One = b.One
	}
	if b.Other.Host != "" {
		a.Other = b.Other
	}
	if b.Output.ResponseDir != "" {
		a.Output = b.Output
	}
	if b.Threads != 0 {
		a.Threads = b.Threads
	}
	if b.Processes != 0 {
		a.Processes = b.Processes
	}
	if b.MaxRetries != 0 {
		a.MaxRetries = b.MaxRetries
	}
	if b.Title != "" {
		a.Title = b.Title
	}
	if b.Description != "" {
		a.Description = b.Description
	}
	if len(b.Tags) > 0 {
		a.Tags = b.Tags
	}
	if len(b.InputFiles) > 0 {
		a.InputFiles = b.InputFiles
	}
	if len(b.Notifiers) > 0 {
		a.Notifiers = b.Notifiers
	}
	if b.RateLimitRPS != 0 {
		a.RateLimitRPS = b.RateLimitRPS
	}
	a.Addons = mergeAddons(a.Addons, b.Addons)
	return a
}

func mergeAddons(a, b model.AddonsConfig) model.AddonsConfig {
	if len(b.Log2Reqs) > 0 {
		a.Log2Reqs = b.Log2Reqs
	}
	if len(b.Reqs2Reqs) > 0 {
		a.Reqs2Reqs = b.Reqs2Reqs
	}
	if len(b.Res2Res) > 0 {
		a.Res2Res = b.Res2Res
	}
	if len(b.Res2Dict) > 0 {
		a.Res2Dict = b.Res2Dict
	}
	if len(b.Judgement) > 0 {
		a.Judgement = b.Judgement
	}
	if len(b.StoreCriterion) > 0 {
		a.StoreCriterion = b.StoreCriterion
	}
	if len(b.Dump) > 0 {
		a.Dump = b.Dump
	}
	if len(b.DidChallenge) > 0 {
		a.DidChallenge = b.DidChallenge
	}
	if len(b.Final) > 0 {
		a.Final = b.Final
	}
	return a
}

// Args is the subset of CLI flags that can override file config, mirroring
// the original's merge_args2config precedence: an arg wins only when set.
type Args struct {
	Threads     *int
	Processes   *int
	MaxRetries  *int
	Title       *string
	Description *string
	Tags        []string
	Files       []string
}

// MergeArgs overlays CLI args onto a loaded Config, args taking precedence
// only where present.
func MergeArgs(cfg Config, args Args) Config {
	if args.Threads != nil {
		cfg.Threads = *args.Threads
	}
	if args.Processes != nil {
		cfg.Processes = *args.Processes
	}
	if args.MaxRetries != nil {
		cfg.MaxRetries = *args.MaxRetries
	}
	if args.Title != nil {
		cfg.Title = *args.Title
	}
	if args.Description != nil {
		cfg.Description = *args.Description
	}
	if len(args.Tags) > 0 {
		cfg.Tags = args.Tags
	}
	if len(args.Files) > 0 {
		cfg.InputFiles = args.Files
	}
	return cfg
}

// CheckRetryCompatible refuses to resume a retry against a report stamped
// with a different major engine version, per SPEC_FULL.md's semver-gated
// retry check.
func CheckRetryCompatible(reportVersion string) error {
	if reportVersion == "" {
		return nil
	}
	have, err := semver.Make(EngineVersion)
	if err != nil {
		return fmt.Errorf("parsing engine version: %w", err)
	}
	had, err := semver.Make(reportVersion)
	if err != nil {
		// Older/foreign reports may not carry a strict semver string;
		// treat as compatible rather than fail a retry outright.
		return nil
	}
	if have.Major != had.Major {
		return fmt.Errorf("report was produced by incompatible major version %s (have %s)", had, have)
	}
	return nil
}
