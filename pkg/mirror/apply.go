package mirror

import (
	"io"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/sidkik/treemirror/pkg/errors"
)

// Mocked out for unit testing.
var copyFile = copyFileImpl

// ApplyAdditions copies each record from `sourceRoot` to `backupRoot`,
// overwriting any existing copy. It stops at the first file that can't be
// copied, and returns the number of files copied before then.
func ApplyAdditions(records Snapshot, sourceRoot, backupRoot string) (int, error) {
	var copied int
	for _, f := range records.Sorted() {
		src := absolutePath(sourceRoot, f.Path)
		dst := absolutePath(backupRoot, f.Path)
		if err := copyFile(src, dst); err != nil {
			return copied, errors.CopyError{Path: f.Path, Err: err}
		}

		log.WithFields(log.Fields{
			"path":    f.Path,
			"modtime": f.ModTime,
		}).Debug("Copied file")
		copied++
	}
	return copied, nil
}

// ApplyDeletions removes each record from `backupRoot`. It stops at the first
// file that can't be removed, including a file that no longer exists, and
// returns the number of files removed before then.
func ApplyDeletions(records Snapshot, backupRoot string) (int, error) {
	var removed int
	for _, f := range records.Sorted() {
		if err := fs.Remove(absolutePath(backupRoot, f.Path)); err != nil {
			return removed, errors.DeleteError{Path: f.Path, Err: err}
		}

		log.WithField("path", f.Path).Debug("Removed file")
		removed++
	}
	return removed, nil
}

func copyFileImpl(src, dst string) error {
	dstParent := filepath.Dir(dst)
	dstParentExists, err := afero.DirExists(fs, dstParent)
	if err != nil {
		return errors.WithContext(err, "check if parent exists")
	}

	if !dstParentExists {
		if err := fs.MkdirAll(dstParent, 0755); err != nil {
			return errors.WithContext(err, "make parent")
		}
	}

	srcFile, err := fs.Open(src)
	if err != nil {
		return errors.WithContext(err, "open source")
	}
	defer srcFile.Close()

	fileInfo, err := srcFile.Stat()
	if err != nil {
		return errors.WithContext(err, "stat")
	}

	dstFile, err := fs.Create(dst)
	if err != nil {
		return errors.WithContext(err, "open destination")
	}

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		dstFile.Close()
		return errors.WithContext(err, "copy")
	}

	// Close before setting the modification time so that buffered writes
	// can't reset it.
	if err := dstFile.Close(); err != nil {
		return errors.WithContext(err, "close destination")
	}

	if err := fs.Chtimes(dst, time.Now(), fileInfo.ModTime()); err != nil {
		return errors.WithContext(err, "set file modtime")
	}
	return nil
}
