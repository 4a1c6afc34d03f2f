package main

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"

	"github.com/nao1215/datapull/internal/config"
	"github.com/nao1215/datapull/internal/database"
	"github.com/nao1215/datapull/internal/dataset"
	"github.com/nao1215/datapull/internal/fetch"
	"github.com/nao1215/datapull/internal/load"
	"github.com/nao1215/datapull/internal/model"
	"github.com/nao1215/datapull/internal/pipeline"
	"github.com/nao1215/datapull/internal/report"
	"github.com/spf13/cobra"
)

// NewPullCmd creates the pull command.
func NewPullCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pull [url-or-path]",
		Short: "Download a remote dataset and preview it",
		Long: `Pull downloads a single-file dataset, decodes it and prints a preview.

The source is either an absolute http(s) URL or a path relative to
DATA_BASE_URL. The decoder is chosen from the file extension (.csv, .json,
.parquet, .xlsx, .xls, optionally wrapped in .zip, .tar.gz or .tgz) and
falls back to CSV. Use --hint when the URL has no useful extension, or
--format to force a decoder.

Every pull is recorded in the history database unless --no-history is set.

Examples:
  # Pull a file relative to DATA_BASE_URL
  datapull pull /snap/twitter7.csv

  # Pull an absolute URL whose name does not reveal the format
  datapull pull --hint twitter7.zip https://example.com/download?id=7

  # Pull a dataset registered in .datapull.yaml
  datapull pull --dataset twitter7

  # Print a JSON summary with ten preview rows
  datapull pull --json -n 10 /snap/twitter7.parquet

  # Print a Markdown summary for a wiki page
  datapull pull --markdown /snap/twitter7.csv`,
		Args: cobra.MaximumNArgs(1),
		RunE: runPullCmd,
	}

	// Source flags
	cmd.Flags().StringP("dataset", "d", "",
		"Dataset key in the registry file")
	cmd.Flags().String("name", "",
		"Display name (default: registry name or "+dataset.DefaultRemoteName+")")
	cmd.Flags().String("hint", "",
		"File name used to pick the decoder instead of the URL")
	cmd.Flags().StringP("format", "f", "",
		"Force a decoder: "+strings.Join(load.Formats(), ", "))

	// Request flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"HTTP timeout for the download")
	cmd.Flags().StringArrayP("header", "H", nil,
		`Extra request header "Key: Value" (repeatable)`)

	// Output flags
	cmd.Flags().IntP("rows", "n", config.DefaultRows,
		"Number of preview rows")
	cmd.Flags().BoolP("json", "j", false,
		"Output a JSON summary")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output a Markdown summary")

	// History flags
	cmd.Flags().Bool("no-history", false,
		"Do not record this pull in the history database")
	cmd.Flags().String("db-dir", "",
		"History database directory (default: XDG data directory)")

	return cmd
}

// pullRequest bundles what runPull needs.
type pullRequest struct {
	cfg    *config.Config
	remote dataset.Remote
}

// runPullCmd executes the pull command.
func runPullCmd(cmd *cobra.Command, args []string) error {
	req, err := buildPullRequest(cmd, args)
	if err != nil {
		return err
	}

	if err := req.cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd)

	settings, err := loadSettings(req.cfg, logger)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd.Context(), logger)
	defer cancel()

	fetcher := fetch.New(settings,
		fetch.WithTimeout(req.cfg.Timeout),
		fetch.WithUserAgent(req.cfg.UserAgent),
		fetch.WithLogger(logger),
	)

	var store pipeline.HistoryStore
	if req.cfg.SaveHistory {
		db, err := database.Open(req.cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		store = db
		logger.Debug("database opened", "path", db.Path())
	}

	p := pipeline.NewPull(fetcher, req.remote, store, pipeline.WithLogger(logger))
	pull := model.NewPullReport(req.remote.Name, req.remote.Source)

	execErr := p.Execute(ctx, pull)
	if execErr != nil {
		logger.Debug("pull failed", "dataset", pull.Dataset, "error", execErr)
	}

	// A failed pull still gets a JSON document so scripts can read the error.
	if execErr == nil || req.cfg.JSONReport {
		if err := outputPull(cmd.OutOrStdout(), req.cfg, pull); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}

	return authHint(execErr)
}

// authHint names the credential variables when the server rejected the
// request as unauthorized or forbidden.
func authHint(err error) error {
	if fetch.IsHTTPStatus(err, http.StatusUnauthorized) || fetch.IsHTTPStatus(err, http.StatusForbidden) {
		return fmt.Errorf("%w (check %s, or %s and %s)", err, config.EnvAPIToken, config.EnvUsername, config.EnvPassword)
	}
	return err
}

// buildPullRequest merges flags, the registry entry and the positional
// argument into a config and a remote. Flags win over the registry.
func buildPullRequest(cmd *cobra.Command, args []string) (*pullRequest, error) {
	cfg := config.NewConfig()
	var err error

	cfg.Verbose = getBoolFlag(cmd, "verbose")
	cfg.EnvFilePath = getStringFlag(cmd, "env-file")
	cfg.ConfigFilePath = getStringFlag(cmd, "config")

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.Rows, err = cmd.Flags().GetInt("rows")
	if err != nil {
		return nil, err
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	noHistory, err := cmd.Flags().GetBool("no-history")
	if err != nil {
		return nil, err
	}
	cfg.SaveHistory = !noHistory

	if dbDir, _ := cmd.Flags().GetString("db-dir"); dbDir != "" {
		cfg.DBDir = dbDir
	}

	cfg.Format, err = cmd.Flags().GetString("format")
	if err != nil {
		return nil, err
	}
	cfg.Format = strings.ToLower(strings.TrimSpace(cfg.Format))
	if cfg.Format != "" && !slices.Contains(load.Formats(), cfg.Format) {
		return nil, fmt.Errorf("%w: %q (supported: %s)", load.ErrUnknownFormat, cfg.Format, strings.Join(load.Formats(), ", "))
	}

	rawHeaders, err := cmd.Flags().GetStringArray("header")
	if err != nil {
		return nil, err
	}
	cfg.Headers, err = config.ParseHeaders(rawHeaders)
	if err != nil {
		return nil, err
	}

	var entry config.DatasetConfig
	key, err := cmd.Flags().GetString("dataset")
	if err != nil {
		return nil, err
	}
	if key != "" {
		cfg.Datasets, err = loadRegistry(cfg)
		if err != nil {
			return nil, err
		}
		entry, err = cfg.Datasets.GetDataset(key)
		if err != nil {
			return nil, err
		}
		if entry.Timeout > 0 && !cmd.Flags().Changed("timeout") {
			cfg.Timeout = entry.Timeout
		}
	}

	remote := dataset.Remote{
		Name:    entry.Name,
		Source:  entry.Source,
		Hint:    entry.Hint,
		Format:  entry.Format,
		Headers: config.MergeHeaders(entry.Headers, cfg.Headers),
	}

	if len(args) > 0 {
		remote.Source = args[0]
	}
	if remote.Source == "" {
		return nil, errors.New("no source provided (specify a URL or path, or --dataset)")
	}

	if name, _ := cmd.Flags().GetString("name"); name != "" {
		remote.Name = name
	}
	if remote.Name == "" {
		remote.Name = dataset.DefaultRemoteName
	}
	if hint, _ := cmd.Flags().GetString("hint"); hint != "" {
		remote.Hint = hint
	}
	if cfg.Format != "" {
		remote.Format = cfg.Format
	}

	return &pullRequest{cfg: cfg, remote: remote}, nil
}

// outputPull prints the pull summary in the configured format.
func outputPull(w io.Writer, cfg *config.Config, pull *model.PullReport) error {
	var writer report.Writer
	switch {
	case cfg.JSONReport:
		writer = report.NewJSONWriter(w,
			report.WithPrettyPrint(),
			report.WithJSONPreviewRows(cfg.Rows),
			report.WithVersion(getVersion()),
		)
	case cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(w,
			report.WithMarkdownPreviewRows(cfg.Rows),
		)
	default:
		writer = report.NewSimpleWriter(w,
			report.WithPreviewRows(cfg.Rows),
			report.WithVerbose(cfg.Verbose),
		)
	}

	_, err := writer.WritePull(pull)
	return err
}
