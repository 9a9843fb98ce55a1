// Package backup runs a single mirror of a source tree into a backup tree,
// and reports what changed.
package backup

import (
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/sidkik/treemirror/pkg/config"
	"github.com/sidkik/treemirror/pkg/errors"
	"github.com/sidkik/treemirror/pkg/mirror"
)

// Variables mocked for unit testing.
var (
	fs             = afero.NewOsFs()
	buildSnapshot  = mirror.BuildSnapshot
	applyAdditions = mirror.ApplyAdditions
	applyDeletions = mirror.ApplyDeletions
)

// Options controls how a run behaves.
type Options struct {
	// Out receives the human readable report. Defaults to stdout.
	Out io.Writer

	// DryRun reports what would change without modifying the backup.
	DryRun bool
}

// Summary counts the files handled by a run.
type Summary struct {
	Added     int
	Changed   int
	Removed   int
	Unchanged int
}

// Run mirrors `cfg.SourceFilepath` into `cfg.TargetFilepath`. It stops at the
// first error, leaving the backup in whatever state the last completed file
// operation left it in.
func Run(cfg config.Backup, opts Options) (Summary, error) {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	source, err := buildSnapshot(cfg.SourceFilepath)
	if err != nil {
		return Summary{}, errors.WithContext(err, "snapshot source")
	}

	if !opts.DryRun {
		if err := fs.MkdirAll(cfg.TargetFilepath, 0755); err != nil {
			return Summary{}, errors.FilesystemError{Path: cfg.TargetFilepath, Err: err}
		}
	}

	backup, err := snapshotBackup(cfg.TargetFilepath, opts.DryRun)
	if err != nil {
		return Summary{}, errors.WithContext(err, "snapshot backup")
	}

	diff := mirror.Diff(source, backup)
	summary := Summary{Unchanged: len(diff.Unchanged)}
	r := reporter{out: opts.Out}

	r.separator()
	r.block(newFilesBlock, diff.New)
	if len(diff.New) > 0 && !opts.DryRun {
		summary.Added, err = applyAdditions(diff.New, cfg.SourceFilepath, cfg.TargetFilepath)
		if err != nil {
			return summary, errors.WithContext(err, "copy new files")
		}
		r.done(newFilesBlock)
	}

	r.separator()
	r.block(changedFilesBlock, diff.Changed)
	if len(diff.Changed) > 0 && !opts.DryRun {
		summary.Changed, err = applyAdditions(diff.Changed, cfg.SourceFilepath, cfg.TargetFilepath)
		if err != nil {
			return summary, errors.WithContext(err, "copy changed files")
		}
		r.done(changedFilesBlock)
	}

	r.separator()
	r.block(deletedFilesBlock, diff.Deleted)
	if len(diff.Deleted) > 0 && !opts.DryRun {
		summary.Removed, err = applyDeletions(diff.Deleted, cfg.TargetFilepath)
		if err != nil {
			return summary, errors.WithContext(err, "remove deleted files")
		}
		r.done(deletedFilesBlock)
	}

	r.separator()
	if opts.DryRun {
		summary.Added = len(diff.New)
		summary.Changed = len(diff.Changed)
		summary.Removed = len(diff.Deleted)
	}
	r.summary(summary, opts.DryRun)

	log.WithFields(log.Fields{
		"config":    cfg.GetPath(),
		"source":    cfg.SourceFilepath,
		"target":    cfg.TargetFilepath,
		"added":     summary.Added,
		"changed":   summary.Changed,
		"removed":   summary.Removed,
		"unchanged": summary.Unchanged,
		"dryRun":    opts.DryRun,
	}).Info("Mirror complete")
	return summary, nil
}

// snapshotBackup snapshots the backup tree. During a dry run the target isn't
// created, so a missing target is treated as empty.
func snapshotBackup(target string, dryRun bool) (mirror.Snapshot, error) {
	if dryRun {
		exists, err := afero.DirExists(fs, target)
		if err != nil {
			return nil, errors.FilesystemError{Path: target, Err: err}
		}
		if !exists {
			return mirror.Snapshot{}, nil
		}
	}
	return buildSnapshot(target)
}
