package backup

import (
	"fmt"
	"io"
	"time"

	"github.com/sidkik/treemirror/pkg/mirror"
)

// timeFormat is used for the timestamps printed in the report.
const timeFormat = "2006-01-02 15:04:05.000000000"

type blockKind struct {
	header, empty, done string
}

var (
	newFilesBlock = blockKind{
		header: "New files to backup:",
		empty:  "No files to backup",
		done:   "Files copied",
	}
	changedFilesBlock = blockKind{
		header: "Changed files to backup:",
		empty:  "No changed files to backup",
		done:   "Files copied",
	}
	deletedFilesBlock = blockKind{
		header: "Files to delete:",
		empty:  "No files to delete",
		done:   "Files deleted",
	}
)

type reporter struct {
	out io.Writer
}

func (r reporter) separator() {
	fmt.Fprintln(r.out, "\n ---------------- ")
	fmt.Fprintln(r.out)
}

func (r reporter) block(kind blockKind, files mirror.Snapshot) {
	if len(files) == 0 {
		fmt.Fprintln(r.out, kind.empty)
		return
	}

	fmt.Fprintln(r.out, kind.header)
	for _, f := range files.Sorted() {
		fmt.Fprintf(r.out, "  %s\t%s\n", f.Path, formatTime(f.ModTime))
	}
}

func (r reporter) done(kind blockKind) {
	fmt.Fprintln(r.out, kind.done)
}

func (r reporter) summary(s Summary, dryRun bool) {
	verb := "Mirrored"
	if dryRun {
		verb = "Dry run, would mirror"
	}
	fmt.Fprintf(r.out, "%s: %d added, %d changed, %d removed, %d unchanged\n",
		verb, s.Added, s.Changed, s.Removed, s.Unchanged)
}

func formatTime(t time.Time) string {
	return t.Local().Format(timeFormat)
}
