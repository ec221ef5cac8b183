// Package main is the Senko CLI entry point.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/senko/internal/config"
	"github.com/hyperjump/senko/internal/engine"
	"github.com/hyperjump/senko/internal/models"
	"github.com/hyperjump/senko/internal/ranking"
	"github.com/hyperjump/senko/internal/report"
	"github.com/hyperjump/senko/internal/server"
	"github.com/hyperjump/senko/internal/storage"
	"github.com/hyperjump/senko/internal/watcher"
	"github.com/hyperjump/senko/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/senko/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); a missing default
// file falls back to built-in defaults so analyze and batch work without any
// config. Returns the config and the path that was actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return config.DefaultConfig(), "", nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "analyze":
		runAnalyze()
	case "batch":
		runBatch()
	case "serve":
		runServe()
	case "watch":
		runWatch()
	case "version", "--version", "-v":
		fmt.Printf("senko version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runAnalyze() {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	resumePath := fs.String("resume", "", "resume text file")
	jobPath := fs.String("job", "", "job description text file")
	formatFlag := fs.String("format", "text", "output format: text or json")
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	if *resumePath == "" || *jobPath == "" {
		fmt.Println("Usage: senko analyze -resume <file> -job <file> [-format text|json]")
		os.Exit(1)
	}
	format, err := parseFormat(*formatFlag, false)
	if err != nil {
		fmt.Printf("%v; use text or json\n", err)
		os.Exit(1)
	}

	_, logger, components := setUp(*configPath, *debug)
	defer logger.Sync()
	defer components.Close()

	resumeText := readTextFile(*resumePath)
	jobText := readTextFile(*jobPath)

	result, err := components.Engine.AnalyzeSingleID(context.Background(),
		docIDFromPath(*resumePath), resumeText, docIDFromPath(*jobPath), jobText)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Analysis failed: %v\n", err)
		os.Exit(1)
	}

	persistRun(components.Store, logger, storage.NewSingleRun(result, storage.ModeSingle), result)

	if err := report.WriteResult(os.Stdout, result, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runBatch() {
	fs := flag.NewFlagSet("batch", flag.ExitOnError)
	dir := fs.String("dir", "", "directory of resume .txt files")
	jobPath := fs.String("job", "", "job description text file")
	topN := fs.Int("top", 10, "shortlist size")
	formatFlag := fs.String("format", "text", "output format: text, json, or csv")
	outPath := fs.String("out", "", "write output to file instead of stdout")
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	if *dir == "" || *jobPath == "" {
		fmt.Println("Usage: senko batch -dir <dir> -job <file> [-top n] [-format text|json|csv] [-out file]")
		os.Exit(1)
	}
	format, err := parseFormat(*formatFlag, true)
	if err != nil {
		fmt.Printf("%v; use text, json, or csv\n", err)
		os.Exit(1)
	}

	_, logger, components := setUp(*configPath, *debug)
	defer logger.Sync()
	defer components.Close()

	jobText := readTextFile(*jobPath)
	resumes, err := collectResumes(*dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	batch, err := components.Engine.AnalyzeBatch(context.Background(), resumes, jobText, *topN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Batch analysis failed: %v\n", err)
		os.Exit(1)
	}

	persistRun(components.Store, logger, storage.NewBatchRun(batch), batch.Ranked...)

	out := os.Stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create output file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}
	if err := report.WriteBatch(out, batch, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runServe() {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	host := fs.String("host", "", "bind host (overrides config)")
	port := fs.Int("port", 0, "bind port (overrides config)")
	_ = fs.Parse(os.Args[2:])

	cfg, logger, components := setUp(*configPath, *debug)
	defer logger.Sync()
	defer components.Close()

	if *host != "" {
		cfg.Server.Host = *host
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}

	srv := server.NewServer(components.Engine, components.Store, cfg, logger, version)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func runWatch() {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	dirFlag := fs.String("dir", "", "resume drop directory (overrides config)")
	jobFlag := fs.String("job", "", "job description text file (overrides config)")
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, logger, components := setUp(*configPath, *debug)
	defer logger.Sync()
	defer components.Close()

	dir := cfg.Watch.Directory
	if *dirFlag != "" {
		dir = *dirFlag
	}
	jobPath := cfg.Watch.JobFile
	if *jobFlag != "" {
		jobPath = *jobFlag
	}
	if dir == "" || jobPath == "" {
		fmt.Println("Usage: senko watch -dir <dir> -job <file> (or set watch.directory and watch.job_file in config)")
		os.Exit(1)
	}

	jobText := readTextFile(jobPath)
	jobID := docIDFromPath(jobPath)
	eng := components.Engine
	store := components.Store

	handler := func(path string) {
		text, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("watch read failed", zap.String("path", path), zap.Error(err))
			return
		}
		result, err := eng.AnalyzeSingleID(context.Background(),
			docIDFromPath(path), string(text), jobID, jobText)
		if err != nil {
			logger.Warn("watch analysis failed", zap.String("path", path), zap.Error(err))
			return
		}
		persistRun(store, logger, storage.NewSingleRun(result, storage.ModeWatch), result)
		fmt.Printf("%s: %.1f (%s, %s confidence)\n",
			result.ResumeID, result.OverallScore, result.Grade, result.Confidence)
	}

	watchOpts := []watcher.Option{watcher.WithLogger(logger)}
	w := watcher.New(dir, handler, watchOpts...)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		logger.Fatal("Failed to start watcher", zap.Error(err))
	}
	defer w.Stop()
	w.SyncExisting()

	logger.Info("watching for resumes",
		zap.String("dir", dir), zap.String("job", jobPath))
	fmt.Printf("Watching %s for resumes against %s. Ctrl-C to stop.\n", dir, jobPath)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	logger.Info("Shutting down...")
}

// Components holds initialized services.
type Components struct {
	Engine *engine.Engine
	Store  storage.Store
}

func (c *Components) Close() {
	if c.Store != nil {
		_ = c.Store.Close()
	}
	if c.Engine != nil {
		_ = c.Engine.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	eng, err := engine.New(cfg, engine.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize engine: %w", err)
	}

	var store storage.Store
	if cfg.Storage.DatabasePath != "" {
		s, err := storage.NewSQLiteStore(cfg.Storage.DatabasePath)
		if err != nil {
			_ = eng.Close()
			return nil, fmt.Errorf("failed to initialize storage: %w", err)
		}
		store = s
	}

	return &Components{Engine: eng, Store: store}, nil
}

// setUp loads config, builds the logger, and initializes components, exiting
// on any failure. Shared by every subcommand.
func setUp(configPath string, debugFlag bool) (*config.Config, *zap.Logger, *Components) {
	cfg, resolvedPath, err := loadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || debugFlag
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	if resolvedPath != "" {
		logger.Debug("config loaded", zap.String("config_path", resolvedPath))
	}

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	return cfg, logger, components
}

func persistRun(store storage.Store, logger *zap.Logger, run *storage.Run, results ...*models.AnalysisResult) {
	if store == nil {
		return
	}
	if err := store.SaveRun(context.Background(), run, results); err != nil {
		logger.Warn("run persistence failed", zap.String("run_id", run.ID), zap.Error(err))
	}
}

func parseFormat(raw string, allowCSV bool) (report.Format, error) {
	switch raw {
	case "text":
		return report.FormatText, nil
	case "json":
		return report.FormatJSON, nil
	case "csv":
		if allowCSV {
			return report.FormatCSV, nil
		}
	}
	return "", fmt.Errorf("unknown format %q", raw)
}

func readTextFile(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read %s: %v\n", path, err)
		os.Exit(1)
	}
	return string(data)
}

// docIDFromPath derives a document ID from a file name: the base name without
// its extension.
func docIDFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// collectResumes reads every .txt file in dir as one resume. The resume ID is
// the file name without extension. Unreadable files are reported and skipped.
func collectResumes(dir string) ([]ranking.ResumeInput, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.txt"))
	if err != nil {
		return nil, err
	}
	var resumes []ranking.ResumeInput
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Skipping %s: %v\n", p, err)
			continue
		}
		resumes = append(resumes, ranking.ResumeInput{ID: docIDFromPath(p), Text: string(data)})
	}
	if len(resumes) == 0 {
		return nil, fmt.Errorf("no readable .txt files in %s", dir)
	}
	return resumes, nil
}

func printUsage() {
	fmt.Println(`senko - semantic resume screening engine

Usage:
  senko analyze -resume <file> -job <file>   Score one resume against a job description
  senko batch -dir <dir> -job <file>         Rank a directory of resumes
  senko serve [flags]                        Start the HTTP API server
  senko watch [flags]                        Watch a drop directory for resumes
  senko version                              Show version
  senko help                                 Show this help

Analyze Flags:
  -resume string    Resume text file (required)
  -job string       Job description text file (required)
  -format string    Output format: text or json (default: text)
  -config string    Config file path (default: /usr/local/etc/senko/config.yaml)
  -debug            Enable debug logging

Batch Flags:
  -dir string       Directory of resume .txt files (required); resume ID is the file name without extension
  -job string       Job description text file (required)
  -top int          Shortlist size (default: 10)
  -format string    Output format: text, json, or csv (default: text)
  -out string       Write output to file instead of stdout
  -config string    Config file path
  -debug            Enable debug logging

Serve Flags:
  -host string      Bind host (overrides config)
  -port int         Bind port (overrides config)
  -config string    Config file path
  -debug            Enable debug logging

Watch Flags:
  -dir string       Resume drop directory (overrides watch.directory in config)
  -job string       Job description text file (overrides watch.job_file in config)
  -config string    Config file path
  -debug            Enable debug logging

Examples:
  senko analyze -resume alice.txt -job backend.txt
  senko analyze -resume alice.txt -job backend.txt -format json
  senko batch -dir ./resumes -job backend.txt -top 5
  senko batch -dir ./resumes -job backend.txt -format csv -out ranking.csv
  senko serve -port 9090
  senko watch -dir ./drop -job backend.txt`)
}
