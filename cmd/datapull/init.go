package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nao1215/datapull/internal/config"
	"github.com/spf13/cobra"
)

//go:embed templates/env.template templates/datapull.yaml
var templates embed.FS

// initFile pairs an embedded template with the file it becomes.
type initFile struct {
	template string
	name     string
}

// initFiles are written by the init command in this order.
var initFiles = []initFile{
	{template: "templates/env.template", name: config.DefaultEnvFile},
	{template: "templates/datapull.yaml", name: config.DefaultConfigFile},
}

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create .env and .datapull.yaml templates",
		Long: `Init writes two commented templates into a directory:

- .env            data root, base URL and credentials
- .datapull.yaml  registry of remote datasets for "pull --dataset"

Existing files are left alone unless --force is given.

Examples:
  # Create both files in the current directory
  datapull init

  # Create them in the XDG config directory
  datapull init -o ~/.config/datapull

  # Force overwrite existing files
  datapull init -f`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output-dir", "o", ".",
		"Directory where the files are created")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing files")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	dir, err := cmd.Flags().GetString("output-dir")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	// Check every target first so that nothing is written on conflict
	if !force {
		for _, f := range initFiles {
			path := filepath.Join(dir, f.name)
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("file already exists: %s (use -f to overwrite)", path)
			}
		}
	}

	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	out := cmd.OutOrStdout()
	for _, f := range initFiles {
		content, err := templates.ReadFile(f.template)
		if err != nil {
			return fmt.Errorf("failed to read template: %w", err)
		}

		path := filepath.Join(dir, f.name)
		// 0600: the env file may hold credentials
		if err := os.WriteFile(path, content, 0600); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		fmt.Fprintf(out, "Created %s\n", path)
	}

	fmt.Fprintln(out, "\nEdit these files to configure:")
	fmt.Fprintln(out, "  - DATA_ROOT for local datasets")
	fmt.Fprintln(out, "  - DATA_BASE_URL and credentials for remote datasets")
	fmt.Fprintln(out, "  - named datasets for 'datapull pull --dataset'")

	return nil
}
