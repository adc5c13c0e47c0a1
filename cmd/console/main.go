package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/racerdash/internal/adapters/leaderboardapi"
	"github.com/okian/racerdash/internal/app"
	"github.com/okian/racerdash/internal/config"
	"github.com/okian/racerdash/internal/console"
	"github.com/okian/racerdash/internal/domain/export"
	"github.com/okian/racerdash/pkg/logger"
)

const logFilePermission = 0o600

func main() {
	var (
		baseURL   = flag.String("url", "", "Leaderboard API base URL (default: upstream_base_url from config)")
		tokenFile = flag.String("token-file", "", "File the session token is kept in (default: token_file from config)")
		exportDir = flag.String("export-dir", ".", "Directory exported workbooks are written to")
		logFile   = flag.String("log", "", "Append logs to this file instead of stderr")
		verbose   = flag.Bool("verbose", false, "Enable debug logging")
		help      = flag.Bool("help", false, "Show help")
	)
	flag.Usage = showHelp
	flag.Parse()

	if *help {
		showHelp()
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Stdin, os.Stdout, options{
		baseURL:   *baseURL,
		tokenFile: *tokenFile,
		exportDir: *exportDir,
		logFile:   *logFile,
		verbose:   *verbose,
	}); err != nil {
		os.Stderr.WriteString("console failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}

type options struct {
	baseURL   string
	tokenFile string
	exportDir string
	logFile   string
	verbose   bool
}

func run(ctx context.Context, in io.Reader, out io.Writer, opts options) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	if opts.baseURL != "" {
		cfg.UpstreamBaseURL = opts.baseURL
	}
	if opts.tokenFile != "" {
		cfg.TokenFile = opts.tokenFile
	}

	closeLog, err := setupLogging(cfg, opts.logFile, opts.verbose)
	if err != nil {
		return err
	}
	defer closeLog()
	log := logger.Get()

	client, err := leaderboardapi.New(cfg.UpstreamBaseURL,
		leaderboardapi.WithTimeout(cfg.UpstreamTimeout()),
		leaderboardapi.WithLogger(log),
	)
	if err != nil {
		return err
	}

	store := console.NewFileStore(cfg.TokenFile)
	sess, err := leaderboardapi.NewSession(store)
	if err != nil {
		log.Warn(ctx, "ignoring unreadable token file", logger.String("path", store.Path()), logger.Error(err))
	}

	svc := app.New(client,
		app.WithLogger(log),
		app.WithDetailWorkers(cfg.DetailFetchWorkers),
		app.WithStrictJoin(cfg.ResultsStrictJoin),
		app.WithAuthEnabled(cfg.AuthEnabled),
	)
	c := console.New(svc, sess, in, out,
		console.WithLogger(log),
		console.WithPageSizes(cfg.DefaultPageSize, cfg.MaxPageSize),
		console.WithFilterDebounce(cfg.FilterDebounce()),
		console.WithExport(opts.exportDir, export.Options{SheetName: cfg.ExportSheetName, ColumnWidth: cfg.ExportColumnWidth}),
	)
	log.Debug(ctx, "console started", logger.String("upstream", cfg.UpstreamBaseURL))
	return c.Run(ctx)
}

// setupLogging sends logs to path, or to stderr at warn level so they do
// not drown the tables.
func setupLogging(cfg *config.Config, path string, verbose bool) (func(), error) {
	var (
		output io.Writer = os.Stderr
		done             = func() {}
	)
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		output = f
		done = func() { _ = f.Close() }
	}
	if err := logger.InitWithOptions(logger.Options{Format: cfg.LogFormat, Output: output}); err != nil {
		done()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	level := cfg.LogLevel
	switch {
	case verbose:
		level = "debug"
	case path == "":
		level = "warn"
	}
	if err := logger.SetLevelString(level); err != nil {
		_ = logger.SetLevelString("info")
	}
	return done, nil
}

func showHelp() {
	os.Stdout.WriteString(`racerdash console
=================

Interactive terminal dashboard for the leaderboard.

Usage:
  go run ./cmd/console [options]

Options:
  -url string
        Leaderboard API base URL (default: RACERDASH_UPSTREAM_BASE_URL or config)
  -token-file string
        File the session token is kept in (default: RACERDASH_TOKEN_FILE or config)
  -export-dir string
        Directory exported workbooks are written to (default ".")
  -log string
        Append logs to this file instead of stderr
  -verbose
        Enable debug logging
  -help
        Show this help message

Type help at the prompt for the list of commands.
`)
}
