package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dd0wney/lnrank/pkg/algorithms"
	"github.com/dd0wney/lnrank/pkg/analysis"
	"github.com/dd0wney/lnrank/pkg/config"
	"github.com/dd0wney/lnrank/pkg/dataset"
	"github.com/dd0wney/lnrank/pkg/graph"
	"github.com/dd0wney/lnrank/pkg/logging"
	"github.com/dd0wney/lnrank/pkg/metrics"
	"github.com/dd0wney/lnrank/pkg/report"
)

// Set at build time with -ldflags "-X main.version=...".
var version = "dev"

// Exit codes.
const (
	exitOK             = 0
	exitFailure        = 1
	exitConfig         = 2
	exitTargetNotFound = 3
	exitEmptyGraph     = 4
)

// keyConfigFile holds the --config path; it is not part of config.Config.
const keyConfigFile = "config_file"

// configError marks failures to assemble a valid configuration.
type configError struct{ err error }

func (e *configError) Error() string { return e.err.Error() }
func (e *configError) Unwrap() error { return e.err }

func exitCode(err error) int {
	var cfgErr *configError
	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &cfgErr), errors.Is(err, config.ErrConflictingConfiguration):
		return exitConfig
	case errors.Is(err, algorithms.ErrTargetNotFound):
		return exitTargetNotFound
	case errors.Is(err, graph.ErrEmptyGraph):
		return exitEmptyGraph
	default:
		return exitFailure
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCmd(stdin, stdout, stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
	}
	return exitCode(err)
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "lnrank",
		Short: "Rank Lightning Network nodes by betweenness and simulate new channels",
		Long: "lnrank filters a describegraph dump by channel capacity and node freshness,\n" +
			"ranks every node by betweenness centrality, then adds one channel from the\n" +
			"target node to each other node in turn and reports the target's new score.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAnalysis(cmd.Context(), v, stdin, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	f := cmd.Flags()
	f.StringP("target-node", "t", "", "public key of the node to analyse (required)")
	f.Int64P("min-capacity", "c", graph.DefaultMinCapacity, "channels need a capacity above this many sats")
	f.Int64("min-last-update", 0, "nodes need a last_update after this POSIX timestamp")
	f.Int64("max-channel-inactivity", 0, "nodes need a last_update within this many seconds of now")
	f.String("graph", config.DefaultGraph, "graph dump: a path, file:// or s3:// URI, or - for stdin")
	f.Bool("strict", false, "fail on channels with unknown or identical endpoints")
	f.Int("workers", 0, "simulation workers (0 = number of CPUs)")
	f.Int("limit", 0, "maximum number of simulations (0 = one per other node)")
	f.Int("top", 0, "print only the first N ranking and simulation lines (0 = all)")
	f.String("format", config.FormatText, "output format: text, json or yaml")
	f.String("metrics-file", "", "write Prometheus metrics to this file when done")
	f.String("log-level", "info", "log level: debug, info, warn or error")
	f.String("config", "", "config file (default .lnrank.yaml in . or $HOME)")

	for key, flag := range map[string]string{
		config.KeyTargetNode:           "target-node",
		config.KeyMinCapacity:          "min-capacity",
		config.KeyMinLastUpdate:        "min-last-update",
		config.KeyMaxChannelInactivity: "max-channel-inactivity",
		config.KeyGraph:                "graph",
		config.KeyStrict:               "strict",
		config.KeyWorkers:              "workers",
		config.KeyLimit:                "limit",
		config.KeyTop:                  "top",
		config.KeyFormat:               "format",
		config.KeyMetricsFile:          "metrics-file",
		config.KeyLogLevel:             "log-level",
		keyConfigFile:                  "config",
	} {
		_ = v.BindPFlag(key, f.Lookup(flag))
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "lnrank", version)
		},
	})
	return cmd
}

// readConfigFile loads an explicit config file or searches for .lnrank.yaml.
// A missing optional file is not an error.
func readConfigFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(".lnrank")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func openSource(location string, stdin io.Reader) (dataset.Source, error) {
	if location == "-" {
		return dataset.ReaderSource{Label: "stdin", Reader: stdin}, nil
	}
	return dataset.ParseSource(location)
}

func runAnalysis(ctx context.Context, v *viper.Viper, stdin io.Reader, stdout, stderr io.Writer) error {
	if err := readConfigFile(v, v.GetString(keyConfigFile)); err != nil {
		return &configError{err}
	}
	cfg, err := config.Load(v)
	if err != nil {
		return &configError{err}
	}

	logger := logging.NewJSONLogger(stderr, logging.ParseLevel(cfg.LogLevel))
	logging.SetDefaultLogger(logger)

	src, err := openSource(cfg.Graph, stdin)
	if err != nil {
		return &configError{err}
	}

	timer := logging.StartTimer(logger, "dataset loaded", logging.String("source", src.Name()))
	ds, err := dataset.Load(ctx, src)
	if err != nil {
		timer.EndError(err)
		return err
	}
	timer.End(logging.Int("nodes", len(ds.Nodes)), logging.Int("edges", len(ds.Edges)))

	registry := metrics.NewRegistry()
	analyzer := &analysis.Analyzer{Metrics: registry}
	res, runErr := analyzer.Run(ctx, ds, cfg)

	if cfg.MetricsFile != "" {
		if err := registry.WriteTextfile(cfg.MetricsFile); err != nil {
			logger.Warn("writing metrics file failed", logging.String("path", cfg.MetricsFile), logging.Error(err))
		}
	}

	// Empty graphs and missing targets still get a partial report.
	if res != nil && (runErr == nil || errors.Is(runErr, graph.ErrEmptyGraph) || errors.Is(runErr, algorithms.ErrTargetNotFound)) {
		opts := report.Options{Top: cfg.Top, Limit: cfg.Limit}
		if err := report.Write(stdout, cfg.Format, res, opts); err != nil {
			return fmt.Errorf("render report: %w", err)
		}
	}
	return runErr
}
