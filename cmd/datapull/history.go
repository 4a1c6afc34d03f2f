package main

import (
	"fmt"

	"github.com/nao1215/datapull/internal/config"
	"github.com/nao1215/datapull/internal/database"
	"github.com/nao1215/datapull/internal/model"
	"github.com/nao1215/datapull/internal/report"
	"github.com/spf13/cobra"
)

// defaultHistoryLimit is the number of pulls listed by default.
const defaultHistoryLimit = 20

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded pulls",
		Long: `History lists pulls recorded in the history database, newest first.

Each entry shows when the pull ran, the dataset, the decoded shape and the
content digest, so repeated pulls of the same dataset can be compared.

Examples:
  # Show the 20 most recent pulls
  datapull history

  # Show every recorded pull of one dataset as JSON
  datapull history -d Twitter7 -l 0 --json`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "l", defaultHistoryLimit,
		"Maximum number of pulls to list (0 for all)")
	cmd.Flags().StringP("dataset", "d", "",
		"Only list pulls of this dataset name")
	cmd.Flags().BoolP("json", "j", false,
		"Output the listing in JSON format")
	cmd.Flags().String("db-dir", "",
		"History database directory (default: XDG data directory)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	if limit < 0 {
		return fmt.Errorf("invalid limit: %d", limit)
	}

	name, err := cmd.Flags().GetString("dataset")
	if err != nil {
		return err
	}

	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}

	logger := setupLogger(cmd)

	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()
	logger.Debug("database opened", "path", db.Path())

	pulls, err := db.ListPulls(cmd.Context(), name, limit)
	if err != nil {
		return err
	}
	if pulls == nil {
		pulls = []*model.PullReport{}
	}

	out := cmd.OutOrStdout()
	if asJSON {
		_, err = report.NewJSONWriter(out, report.WithPrettyPrint()).WriteValue(pulls)
	} else {
		_, err = report.NewSimpleWriter(out).WriteHistory(pulls)
	}
	return err
}
