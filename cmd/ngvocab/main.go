// Package main is the ngvocab CLI entry point.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/hyperjump/ngvocab/internal/cli"
	"github.com/hyperjump/ngvocab/internal/config"
	"github.com/hyperjump/ngvocab/internal/pipeline"
	"github.com/hyperjump/ngvocab/internal/vectorizer"
	"github.com/hyperjump/ngvocab/internal/vocab"
	"github.com/hyperjump/ngvocab/pkg/utils"
)

var version = "dev"

// defaultConfigPath is looked up in the working directory; when absent the
// built-in defaults apply (data in ../data, 40000 terms, seed 42).
const defaultConfigPath = "config.yaml"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		printUsage(stderr)
		return 1
	}
	command, rest := args[0], args[1:]
	switch command {
	case "build":
		return runBuild(ctx, rest, stdout, stderr)
	case "fetch":
		return runFetch(ctx, rest, stdout, stderr)
	case "status":
		return runStatus(ctx, rest, stdout, stderr)
	case "verify":
		return runVerify(rest, stdout, stderr)
	case "version", "--version", "-v":
		fmt.Fprintf(stdout, "ngvocab version %s\n", version)
		return 0
	case "help", "--help", "-h":
		printUsage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", command)
		printUsage(stderr)
		return 1
	}
}

// commonFlags are shared by the subcommands that touch the corpus.
type commonFlags struct {
	configPath *string
	debug      *bool
}

func newFlagSet(name string, stderr io.Writer) (*flag.FlagSet, commonFlags) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs, commonFlags{
		configPath: fs.String("config", defaultConfigPath, "config file path (defaults apply when missing)"),
		debug:      fs.Bool("debug", false, "enable debug logging (per-entry vocabulary output, download details)"),
	}
}

// setup loads and validates the config and creates the logger.
func setup(f commonFlags, stderr io.Writer) (*config.Config, *zap.Logger, bool) {
	cfg, err := config.LoadOrDefault(*f.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
		return nil, nil, false
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "Invalid config: %v\n", err)
		return nil, nil, false
	}
	debugMode := cfg.Debug || *f.debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to create logger: %v\n", err)
		return nil, nil, false
	}
	logger.Debug("config loaded",
		zap.String("config_path", *f.configPath),
		zap.String("data_dir", cfg.Corpus.DataDir),
		zap.Int("max_features", cfg.Vectorizer.MaxFeatures))
	return cfg, logger, true
}

func runBuild(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs, common := newFlagSet("build", stderr)
	outputFormat := fs.String("output", "text", "summary format: text or json")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	cfg, logger, ok := setup(common, stderr)
	if !ok {
		return 1
	}
	defer logger.Sync()

	p := pipeline.New(cfg, logger, pipeline.WithStdout(stdout))
	summary, err := p.Run(ctx)
	if err != nil {
		if errors.Is(err, vectorizer.ErrEmptyVocabulary) {
			fmt.Fprintf(stderr, "Build failed: %v (check token_pattern, stop_words and min_df/max_df)\n", err)
		} else {
			fmt.Fprintf(stderr, "Build failed: %v\n", err)
		}
		return 1
	}
	if err := cli.WriteSummary(stdout, summary, format); err != nil {
		fmt.Fprintf(stderr, "Output failed: %v\n", err)
		return 1
	}
	return 0
}

func runFetch(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs, common := newFlagSet("fetch", stderr)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	cfg, logger, ok := setup(common, stderr)
	if !ok {
		return 1
	}
	defer logger.Sync()

	n, err := pipeline.New(cfg, logger, pipeline.WithStdout(stdout)).Fetch(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Fetch failed: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "cached %d documents in %s\n", n, cfg.Corpus.CachePath())
	return 0
}

func runStatus(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs, common := newFlagSet("status", stderr)
	outputFormat := fs.String("output", "text", "output format: text or json")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	cfg, logger, ok := setup(common, stderr)
	if !ok {
		return 1
	}
	defer logger.Sync()

	st, err := pipeline.New(cfg, logger, pipeline.WithStdout(stdout)).Status(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Status failed: %v\n", err)
		return 1
	}
	if err := cli.WriteStatus(stdout, st, format); err != nil {
		fmt.Fprintf(stderr, "Output failed: %v\n", err)
		return 1
	}
	return 0
}

func runVerify(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", defaultConfigPath, "config file path (names the default vocabulary file)")
	expected := fs.Int("expected", 0, "expected number of entries (0 = do not check)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	path := fs.Arg(0)
	if path == "" {
		cfg, err := config.LoadOrDefault(*configPath)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
			return 1
		}
		path = cfg.Output.VocabularyFile
	}
	rep, err := vocab.Verify(path, *expected)
	if err != nil {
		fmt.Fprintf(stderr, "Verify failed: %v\n", err)
		return 1
	}
	if err := cli.WriteReport(stdout, rep, format); err != nil {
		fmt.Fprintf(stderr, "Output failed: %v\n", err)
		return 1
	}
	if !rep.OK() {
		return 1
	}
	return 0
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `ngvocab - Build a term vocabulary from the 20 Newsgroups corpus

Usage:
  ngvocab build [flags]           Load the corpus, vectorize it and write the vocabulary
  ngvocab fetch [flags]           Download the corpus into the local cache
  ngvocab status [flags]          Show what the corpus cache holds
  ngvocab verify [flags] [file]   Check a vocabulary file (default: configured output)
  ngvocab version                 Show version
  ngvocab help                    Show this help

Common Flags:
  --config string    Config file path (default: config.yaml; built-in defaults when missing)
  --debug            Enable debug logging

Build Flags:
  --output string    Summary format: text or json (default: text)

Status Flags:
  --output string    Output format: text or json (default: text)

Verify Flags:
  --expected int     Expected number of entries (default: 0, not checked)
  --output string    Output format: text or json (default: text)

Examples:
  ngvocab build
  ngvocab build --config ./config.yaml --output json
  ngvocab status
  ngvocab verify --expected 40000 ../data/ng-vocab.tsv`)
}
