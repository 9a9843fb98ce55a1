package mirror

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/sidkik/treemirror/pkg/errors"
)

// Mocked out for unit testing.
var (
	fs           = afero.NewOsFs()
	evalSymlinks = filepath.EvalSymlinks
)

// A FileRecord identifies a file independently of the root it was scanned
// from.
type FileRecord struct {
	// Path is the path of the file relative to the scanned root. It always
	// uses forward slashes and starts with a slash, e.g. `/a/b.txt`.
	Path string

	// ModTime is the time of the last file modification, at whatever
	// resolution the filesystem provides.
	ModTime time.Time
}

// Snapshot is a collection of files keyed by their relative path.
type Snapshot map[string]FileRecord

// Add updates the Snapshot.
func (snapshot Snapshot) Add(f FileRecord) {
	snapshot[f.Path] = f
}

// Paths returns the paths in the snapshot in lexical order.
func (snapshot Snapshot) Paths() []string {
	paths := make([]string, 0, len(snapshot))
	for path := range snapshot {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// Sorted returns the records in the snapshot ordered by path.
func (snapshot Snapshot) Sorted() []FileRecord {
	var records []FileRecord
	for _, path := range snapshot.Paths() {
		records = append(records, snapshot[path])
	}
	return records
}

// BuildSnapshot returns the information on every regular file under `root`.
// If `root` is a symlink to a directory, the directory it points to is
// walked. It fails with a FilesystemError if `root` or any entry beneath it
// can't be read. A partial snapshot is never returned.
func BuildSnapshot(root string) (Snapshot, error) {
	root = filepath.Clean(root)

	fi, err := fs.Stat(root)
	if err != nil {
		return nil, errors.FilesystemError{Path: root, Err: err}
	}
	if !fi.IsDir() {
		return nil, errors.FilesystemError{Path: root, Err: errors.New("not a directory")}
	}

	// afero.Walk doesn't descend into a root that's a symlink.
	walkRoot, err := resolveRoot(root)
	if err != nil {
		return nil, errors.FilesystemError{Path: root, Err: err}
	}

	files := Snapshot{}
	err = afero.Walk(fs, walkRoot, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return errors.FilesystemError{Path: publicPath(root, walkRoot, path), Err: err}
		}

		if fi.IsDir() {
			return nil
		}

		if !fi.Mode().IsRegular() {
			log.WithField("path", publicPath(root, walkRoot, path)).
				Debug("Skipping file that isn't a regular file")
			return nil
		}

		relativePath, err := RelativePath(walkRoot, path)
		if err != nil {
			return errors.FilesystemError{Path: path, Err: err}
		}

		files.Add(FileRecord{
			Path:    relativePath,
			ModTime: fi.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// resolveRoot returns the directory that `root` points to if it's a symlink,
// and `root` otherwise.
func resolveRoot(root string) (string, error) {
	lstater, ok := fs.(afero.Lstater)
	if !ok {
		return root, nil
	}

	fi, _, err := lstater.LstatIfPossible(root)
	if err != nil {
		return "", err
	}
	if fi.Mode()&os.ModeSymlink == 0 {
		return root, nil
	}

	resolved, err := evalSymlinks(root)
	if err != nil {
		return "", errors.WithContext(err, "resolve symlink")
	}
	log.WithFields(log.Fields{
		"root":     root,
		"resolved": resolved,
	}).Debug("Following symlinked root")
	return resolved, nil
}

// publicPath maps a path found while walking `walkRoot` back under `root`, so
// that errors name the path the caller asked for.
func publicPath(root, walkRoot, path string) string {
	if root == walkRoot {
		return path
	}
	rel, err := filepath.Rel(walkRoot, path)
	if err != nil {
		return path
	}
	return filepath.Join(root, rel)
}

// RelativePath returns `path` relative to `root`, normalized so that paths
// from different roots can be compared. For example, `/src/a/b.txt` relative
// to `/src/` is `/a/b.txt`.
func RelativePath(root, path string) (string, error) {
	relativePath, err := filepath.Rel(root, path)
	if err != nil {
		return "", errors.WithContext(err, "normalize path")
	}

	if relativePath == ".." || strings.HasPrefix(relativePath, ".."+string(filepath.Separator)) {
		return "", errors.New("%q is not inside %q", path, root)
	}
	return "/" + filepath.ToSlash(relativePath), nil
}

// absolutePath is the inverse of RelativePath.
func absolutePath(root, relativePath string) string {
	return filepath.Join(root, filepath.FromSlash(strings.TrimPrefix(relativePath, "/")))
}
