package run

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sidkik/treemirror/cmd/util"
	"github.com/sidkik/treemirror/pkg/backup"
	"github.com/sidkik/treemirror/pkg/config"
	"github.com/sidkik/treemirror/pkg/errors"
)

// Mocked for unit testing.
var (
	stdout      io.Writer = os.Stdout
	parseConfig           = config.ParseBackup
	runBackup             = backup.Run
)

// New creates a new `run` command.
func New() *cobra.Command {
	var configPath string
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Mirror the source directory into the backup directory",
		Long: "Copy files that are new or newer in the source directory into the\n" +
			"backup directory, and remove backup files that no longer exist in\n" +
			"the source directory.",
		Args: cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			if err := Run(configPath, dryRun); err != nil {
				util.HandleFatalError(err)
			}
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultPath,
		"Path to the configuration file.")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false,
		"Print the changes without modifying the backup directory.")
	return cmd
}

// Run mirrors the directories in the configuration at `configPath` once.
func Run(configPath string, dryRun bool) error {
	cfg, err := parseConfig(configPath)
	if err != nil {
		return errors.WithContext(err, "parse config")
	}

	if _, err := runBackup(cfg, backup.Options{Out: stdout, DryRun: dryRun}); err != nil {
		return errors.WithContext(err, "mirror")
	}
	return nil
}
