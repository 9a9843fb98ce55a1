package watch

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sidkik/treemirror/cmd/util"
	"github.com/sidkik/treemirror/pkg/backup"
	"github.com/sidkik/treemirror/pkg/config"
	"github.com/sidkik/treemirror/pkg/errors"
	"github.com/sidkik/treemirror/pkg/fswatch"
)

// Mocked for unit testing.
var (
	stdout      io.Writer = os.Stdout
	parseConfig           = config.ParseBackup
	runBackup             = backup.Run
	watchFiles            = fswatch.Watch
)

const defaultDebounce = 500 * time.Millisecond

type options struct {
	configPath string
	schedule   string
	debounce   time.Duration
}

// New creates a new `watch` command.
func New() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep the backup directory mirrored as the source changes",
		Long: "Mirror the source directory once, and then mirror it again whenever\n" +
			"files in the source directory change, or on a schedule.\n" +
			"Mirrors never overlap. The first failed mirror stops the watch.",
		Args: cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			if err := run(opts); err != nil {
				util.HandleFatalError(err)
			}
		},
	}
	cmd.Flags().StringVarP(&opts.configPath, "config", "c", config.DefaultPath,
		"Path to the configuration file.")
	cmd.Flags().StringVar(&opts.schedule, "schedule", "",
		"Cron schedule on which to mirror, in addition to file changes. "+
			"For example, `@every 1h` or `0 3 * * *`.")
	cmd.Flags().DurationVar(&opts.debounce, "debounce", defaultDebounce,
		"How long the source must stay quiet before mirroring.")
	return cmd
}

func run(opts options) error {
	cfg, err := parseConfig(opts.configPath)
	if err != nil {
		return errors.WithContext(err, "parse config")
	}

	triggers, err := watchFiles(cfg.SourceFilepath)
	if err != nil {
		return errors.WithContext(err, "watch source")
	}

	if opts.schedule != "" {
		stop, err := scheduleTriggers(opts.schedule, triggers)
		if err != nil {
			return err
		}
		defer stop()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	w := watcher{
		debounce: opts.debounce,
		clock:    clockwork.NewRealClock(),
		mirror: func() error {
			_, err := runBackup(cfg, backup.Options{Out: stdout})
			return err
		},
	}

	log.WithFields(log.Fields{
		"config": cfg.GetPath(),
		"source": cfg.SourceFilepath,
		"target": cfg.TargetFilepath,
	}).Info("Watching for changes")
	if err := w.mirrorOnce("initial"); err != nil {
		return err
	}
	return w.run(ctx, triggers)
}

// scheduleTriggers sends on `triggers` according to the cron `schedule`. The
// returned function stops the schedule.
func scheduleTriggers(schedule string, triggers chan<- struct{}) (func(), error) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		select {
		case triggers <- struct{}{}:
		default:
		}
	})
	if err != nil {
		return nil, errors.NewFriendlyError("Invalid schedule %q: %s", schedule, err)
	}

	c.Start()
	return func() { c.Stop() }, nil
}

// watcher runs mirrors in response to triggers. All mirrors run on the
// goroutine that calls run, so they never overlap.
type watcher struct {
	debounce time.Duration
	clock    clockwork.Clock
	mirror   func() error
}

func (w watcher) run(ctx context.Context, triggers <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-triggers:
		}

		if !w.settle(ctx, triggers) {
			return nil
		}

		if err := w.mirrorOnce("change"); err != nil {
			return err
		}
	}
}

// settle blocks until no trigger has arrived for the debounce window. It
// returns false if the context is cancelled first.
func (w watcher) settle(ctx context.Context, triggers <-chan struct{}) bool {
	if w.debounce <= 0 {
		return true
	}

	timer := w.clock.After(w.debounce)
	for {
		select {
		case <-ctx.Done():
			return false
		case <-triggers:
			timer = w.clock.After(w.debounce)
		case <-timer:
			return true
		}
	}
}

func (w watcher) mirrorOnce(reason string) error {
	log.WithField("reason", reason).Info("Mirroring")
	if err := w.mirror(); err != nil {
		log.WithError(err).Error("Mirror failed")
		return errors.WithContext(err, "mirror")
	}
	return nil
}
