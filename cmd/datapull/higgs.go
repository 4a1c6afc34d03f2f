package main

import (
	"fmt"

	"github.com/nao1215/datapull/internal/config"
	"github.com/nao1215/datapull/internal/dataset"
	"github.com/nao1215/datapull/internal/report"
	"github.com/spf13/cobra"
)

// NewHiggsCmd creates the higgs command.
func NewHiggsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "higgs",
		Short: "Write a heads report for the local Higgs Twitter dataset",
		Long: `Higgs reads the first rows of every Higgs Twitter file under
$DATA_ROOT/higgs-twitter and saves them as a report.

The files are whitespace-separated without a header line:
  higgs-social_network.edgelist
  higgs-retweet_network.edgelist
  higgs-reply_network.edgelist
  higgs-mention_network.edgelist
  higgs-activity_time.txt
Each file may instead be present in its gzip-compressed form (<name>.gz).

The report is printed and saved to
<reports-dir>/higgs_twitter_heads_<YYYYMMDD_HHMMSS>.txt (.md with
--markdown, .json with --json). Nothing is written unless every file could
be read.

Examples:
  # Show five rows per file
  DATA_ROOT=/mnt/data/social_nets datapull higgs

  # Ten rows per file, saved as Markdown under ./out
  datapull higgs -n 10 -m -r out

  # Machine-readable report
  datapull higgs --json | jq '.sections[].key'`,
		Args: cobra.NoArgs,
		RunE: runHiggsCmd,
	}

	cmd.Flags().IntP("rows", "n", config.DefaultRows,
		"Number of rows to read from each file")
	cmd.Flags().StringP("reports-dir", "r", config.DefaultReportsDir,
		"Directory where the report is saved (created if needed)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Save the report as Markdown")
	cmd.Flags().BoolP("json", "j", false,
		"Save and print the report as JSON")

	return cmd
}

// runHiggsCmd executes the higgs command.
func runHiggsCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildHiggsConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd)

	settings, err := loadSettings(cfg, logger)
	if err != nil {
		return err
	}

	return runHeads(cmd, cfg, settings, dataset.Higgs)
}

// buildHiggsConfig creates a Config from the higgs command flags.
func buildHiggsConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	var err error

	cfg.Verbose = getBoolFlag(cmd, "verbose")
	cfg.EnvFilePath = getStringFlag(cmd, "env-file")

	cfg.Rows, err = cmd.Flags().GetInt("rows")
	if err != nil {
		return nil, err
	}

	cfg.ReportsDir, err = cmd.Flags().GetString("reports-dir")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// runHeads loads every file of network and saves the heads report.
func runHeads(cmd *cobra.Command, cfg *config.Config, settings config.Settings, network dataset.Network) error {
	dir, err := network.Path(settings)
	if err != nil {
		return err
	}

	heads, err := network.LoadHeads(settings, cfg.Rows)
	if err != nil {
		return err
	}

	hr := &report.HeadsReport{
		Dataset:     network.Name,
		Slug:        network.Slug,
		DataRoot:    settings.DataRoot,
		DatasetPath: dir,
		Rows:        cfg.Rows,
		Sections:    make([]report.Section, 0, len(heads)),
	}
	for _, h := range heads {
		hr.Sections = append(hr.Sections, report.Section{Key: h.Key, Frame: h.Frame})
	}

	_, err = report.SaveHeads(hr, cfg.ReportsDir, headsFormat(cfg), cmd.OutOrStdout())
	return err
}

// headsFormat maps the report flags to a heads report format.
func headsFormat(cfg *config.Config) report.HeadsFormat {
	switch {
	case cfg.JSONReport:
		return report.HeadsJSON
	case cfg.MarkdownReport:
		return report.HeadsMarkdown
	default:
		return report.HeadsText
	}
}
