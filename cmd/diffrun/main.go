// Command diffrun replays requests against two HTTP access points, diffs
// the responses, and reports where they agree or diverge.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/atotto/clipboard"

	"github.com/blackcoderx/diffrun/pkg/addon"
	"github.com/blackcoderx/diffrun/pkg/addon/builtin"
	"github.com/blackcoderx/diffrun/pkg/config"
	"github.com/blackcoderx/diffrun/pkg/engine"
	"github.com/blackcoderx/diffrun/pkg/model"
	"github.com/blackcoderx/diffrun/pkg/report"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"

	cfgFiles    []string
	title       string
	description string
	threads     int
	maxRetries  int
	tags        []string
	skipTags    []string
	verbosity   int
	copySummary bool

	rootCmd = &cobra.Command{
		Use:   "diffrun",
		Short: "diffrun replays requests against two HTTP endpoints and diffs the responses",
	}

	runCmd = &cobra.Command{
		Use:   "run [input-files...]",
		Short: "Run a differential session against one and other",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(args)
		},
	}

	retryCmd = &cobra.Command{
		Use:   "retry [report-file]",
		Short: "Re-run the stored trials of a previous report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return retrySession(args[0])
		},
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("diffrun %s\n", version)
			fmt.Printf("  commit: %s\n", commit)
			fmt.Printf("  built:  %s\n", date)
		},
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	runCmd.Flags().StringSliceVarP(&cfgFiles, "config", "c", nil, "config file (repeatable, later wins)")
	runCmd.Flags().StringVar(&title, "title", "", "override the run title")
	runCmd.Flags().StringVar(&description, "description", "", "override the run description")
	runCmd.Flags().IntVarP(&threads, "threads", "t", 0, "override concurrent request threads")
	runCmd.Flags().IntVar(&maxRetries, "max-retries", 0, "override per-request retry count")
	runCmd.Flags().StringSliceVar(&tags, "tag", nil, "tag recorded on this run")
	runCmd.Flags().StringSliceVar(&skipTags, "skip-addon-tag", nil, "skip add-ons carrying this tag (repeatable)")
	runCmd.Flags().IntVarP(&verbosity, "verbose", "v", 0, "log verbosity (0-3)")
	runCmd.Flags().BoolVar(&copySummary, "copy-summary", false, "copy the rendered summary to the clipboard")

	retryCmd.Flags().StringSliceVar(&skipTags, "skip-addon-tag", nil, "skip add-ons carrying this tag (repeatable)")
	retryCmd.Flags().IntVarP(&verbosity, "verbose", "v", 0, "log verbosity (0-3)")
	retryCmd.Flags().BoolVar(&copySummary, "copy-summary", false, "copy the rendered summary to the clipboard")

	rootCmd.AddCommand(runCmd, retryCmd, versionCmd)
}

func initConfig() {
	viper.SetEnvPrefix("DIFFRUN")
	viper.AutomaticEnv()
}

// runSession loads config file(s), turns every input file into requests via
// the configured log2reqs add-ons, applies reqs2reqs, and executes a fresh
// session. Mirrors original_source/jumeaux/executor.py's main(): read
// config, flat_map log2reqs over input files, reqs2reqs once, exec, then
// apply_final on the result from outside exec().
func runSession(inputFiles []string) error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "warning: failed to load .env file: %v\n", err)
	}

	cfg, err := config.Load(cfgFiles)
	if err != nil {
		return err
	}

	cfg = config.MergeArgs(cfg, cliArgs(inputFiles))

	ctx := context.Background()
	executor, err := buildExecutor(cfg)
	if err != nil {
		return fmt.Errorf("resolving add-ons: %w", err)
	}

	requests, err := collectRequests(ctx, executor, cfg)
	if err != nil {
		return err
	}

	key, err := report.SessionKey(time.Now(), cliArgs(inputFiles))
	if err != nil {
		return fmt.Errorf("deriving session key: %w", err)
	}

	return execute(ctx, cfg, executor, key, nil, requests)
}

// retrySession reconstructs a Config and request list from a prior Report
// and re-runs it, refusing incompatible major engine versions first.
func retrySession(reportPath string) error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "warning: failed to load .env file: %v\n", err)
	}

	prior, err := loadReport(reportPath)
	if err != nil {
		return fmt.Errorf("loading report %s: %w", reportPath, err)
	}
	if err := config.CheckRetryCompatible(prior.Version); err != nil {
		return err
	}

	cfg, requests := configFromReport(prior)

	ctx := context.Background()
	executor, err := buildExecutor(cfg)
	if err != nil {
		return fmt.Errorf("resolving add-ons: %w", err)
	}

	retryHash := prior.Key
	return execute(ctx, cfg, executor, prior.Key, &retryHash, requests)
}

func execute(ctx context.Context, cfg config.Config, executor *addon.Executor, key string, retryHash *string, requests []model.Request) error {
	writer := report.FileWriter{ResponseDir: cfg.Output.ResponseDir}
	logger := engine.NewLogger(verbosity)

	rep, err := engine.Run(ctx, cfg, executor, writer, logger, key, retryHash, requests)
	if err != nil {
		return err
	}

	finalResult, err := executor.ApplyFinal(ctx,
		addon.FinalPayload{Report: rep, OutputSummary: cfg.Output},
		addon.FinalReference{Notifiers: cfg.Notifiers})
	if err != nil {
		return fmt.Errorf("final stage: %w", err)
	}

	return renderSummary(finalResult.Report)
}

func collectRequests(ctx context.Context, executor *addon.Executor, cfg config.Config) ([]model.Request, error) {
	var all []model.Request
	for _, file := range cfg.InputFiles {
		p, err := executor.ApplyLog2Reqs(ctx, addon.Log2ReqsPayload{File: file})
		if err != nil {
			return nil, fmt.Errorf("log2reqs %s: %w", file, err)
		}
		all = append(all, p.Requests...)
	}

	p, err := executor.ApplyReqs2Reqs(ctx, addon.Reqs2ReqsPayload{Requests: all}, addon.Reqs2ReqsReference{Config: cfg})
	if err != nil {
		return nil, fmt.Errorf("reqs2reqs: %w", err)
	}
	return p.Requests, nil
}

func buildExecutor(cfg config.Config) (*addon.Executor, error) {
	skip := builtin.SkipTags{}
	for _, t := range skipTags {
		skip[t] = struct{}{}
	}
	stages, err := builtin.Resolve(cfg.Addons, skip)
	if err != nil {
		return nil, err
	}
	return addon.NewExecutor(stages), nil
}

func cliArgs(inputFiles []string) config.Args {
	args := config.Args{Files: inputFiles, Tags: tags}
	if threads != 0 {
		args.Threads = &threads
	}
	if maxRetries != 0 {
		args.MaxRetries = &maxRetries
	}
	if title != "" {
		args.Title = &title
	}
	if description != "" {
		args.Description = &description
	}
	return args
}

func renderSummary(rep model.Report) error {
	md := summaryMarkdown(rep)

	renderer, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		fmt.Println(md)
	} else if out, err := renderer.Render(md); err != nil {
		fmt.Println(md)
	} else {
		fmt.Print(out)
	}

	if copySummary {
		if err := clipboard.WriteAll(md); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to copy summary to clipboard: %v\n", err)
		}
	}
	return nil
}

func summaryMarkdown(rep model.Report) string {
	md := fmt.Sprintf("# %s\n\n", rep.Title)
	md += fmt.Sprintf("key: `%s`\n\n", rep.Key)
	md += "| status | count |\n|---|---|\n"
	for _, s := range []model.Status{model.StatusSame, model.StatusDifferent, model.StatusFailure} {
		md += fmt.Sprintf("| %s | %d |\n", s, rep.Summary.Status[s])
	}
	return md
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
