package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ritchiero/Budget-Agent/cli/internal/output"
	"github.com/ritchiero/Budget-Agent/cli/internal/remote"
	"github.com/ritchiero/Budget-Agent/internal/assistant"
	"github.com/ritchiero/Budget-Agent/internal/config"
	"github.com/ritchiero/Budget-Agent/internal/logger"
	"github.com/ritchiero/Budget-Agent/internal/report"
)

const version = "0.1.0"

// Source produces the four reports, from local logs or a server
type Source interface {
	Overview() (*report.Overview, error)
	HiddenCosts() (*report.HiddenCosts, error)
	Timeline() (*report.Timeline, error)
	Estimate(task, targetModel string) (*report.Estimate, error)
}

// Responder answers chat messages
type Responder interface {
	Reply(ctx context.Context, message string) (*assistant.Reply, error)
}

type options struct {
	jsonOut  bool
	compact  bool
	remote   string
	apiKey   string
	dataDir  string
	since    string
	until    string
	logLevel string

	out io.Writer
	// loadConfig is replaced in tests
	loadConfig func() (*config.Config, error)
}

func NewRootCommand() *cobra.Command {
	opts := &options{out: os.Stdout, loadConfig: config.Load}
	return newRootCommand(opts)
}

func newRootCommand(opts *options) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "budget-agent",
		Short: "Audit where your AI agents spend tokens",
		Long: `Budget Agent reads agent session logs and shows where the money goes:
user requests versus hidden background work (heartbeats, memory resyncs,
reconnects, cron tasks), projected monthly spend, recommendations, and
cost estimates for tasks before you run them.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			logger.SetLevel(opts.logLevel)
		},
	}
	rootCmd.SetOut(opts.out)

	flags := rootCmd.PersistentFlags()
	flags.BoolVar(&opts.jsonOut, "json", false, "Output as JSON")
	flags.BoolVarP(&opts.compact, "compact", "c", false, "Force compact table output")
	flags.StringVar(&opts.remote, "remote", "", "Read reports from a running budget-agent-server at this URL")
	flags.StringVar(&opts.apiKey, "api-key", os.Getenv("BUDGET_AGENT_API_KEY"), "API key for --remote")
	flags.StringVar(&opts.dataDir, "data-dir", "", "Session log directory (default from config or "+config.DataDirEnv+")")
	flags.StringVar(&opts.since, "since", "", "Start date filter (YYYYMMDD)")
	flags.StringVar(&opts.until, "until", "", "End date filter (YYYYMMDD)")
	flags.StringVar(&opts.logLevel, "log-level", envOr("LOG_LEVEL", "warn"), "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newOverviewCommand(opts),
		newHiddenCostsCommand(opts),
		newTimelineCommand(opts),
		newEstimateCommand(opts),
		newChatCommand(opts),
		newHashKeyCommand(opts),
	)

	return rootCmd
}

func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func (o *options) tableOptions() output.TableOptions {
	return output.TableOptions{ForceCompact: o.compact}
}

// source returns a remote client when --remote is set, otherwise a local
// analyzer configured from the config file and flags
func (o *options) source() (Source, error) {
	if o.remote != "" {
		if o.since != "" || o.until != "" {
			return nil, errors.New("--since and --until are not supported with --remote")
		}
		return remote.NewClient(o.remote, o.apiKey), nil
	}
	analyzer, _, err := o.analyzer()
	return analyzer, err
}

func (o *options) analyzer() (*report.Analyzer, *config.Config, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("error loading config: %w", err)
	}
	if o.dataDir != "" {
		cfg.DataDir = o.dataDir
	}

	analyzer := report.NewAnalyzer(cfg.DataDir)
	analyzer.Window = cfg.Window
	analyzer.Usage.DeriveMissingCost = cfg.DeriveMissingCost

	if o.since != "" {
		t, err := time.Parse("20060102", o.since)
		if err != nil {
			return nil, nil, errors.New("invalid --since date format, use YYYYMMDD")
		}
		analyzer.Since = t
	}
	if o.until != "" {
		t, err := time.Parse("20060102", o.until)
		if err != nil {
			return nil, nil, errors.New("invalid --until date format, use YYYYMMDD")
		}
		// Include the entire day
		analyzer.Until = t.Add(24*time.Hour - time.Second)
	}

	return analyzer, cfg, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
