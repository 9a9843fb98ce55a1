package mirror

import (
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/spf13/afero"
)

type mockFile struct {
	path     string
	contents string
	modTime  time.Time
}

func (f mockFile) writeToFs() error {
	if err := afero.WriteFile(fs, f.path, []byte(f.contents), 0644); err != nil {
		return err
	}
	return fs.Chtimes(f.path, time.Now(), f.modTime)
}

func randomFile(overrides mockFile) mockFile {
	if overrides.path == "" {
		overrides.path = "/" + strconv.Itoa(rand.Int())
	}

	if overrides.contents == "" {
		overrides.contents = strconv.Itoa(rand.Int())
	}

	if overrides.modTime.IsZero() {
		randomTime := time.Date(2019, 11, 10, rand.Intn(23), rand.Intn(59), rand.Intn(59), 0, time.UTC)
		overrides.modTime = randomTime
	}
	return overrides
}

func record(path string, modTime time.Time) FileRecord {
	return FileRecord{Path: path, ModTime: modTime}
}

func snapshotOf(records ...FileRecord) Snapshot {
	snapshot := Snapshot{}
	for _, r := range records {
		snapshot.Add(r)
	}
	return snapshot
}

// failingFs returns `err` whenever `path` is opened or stat'd.
type failingFs struct {
	afero.Fs
	path string
	err  error
}

func (f failingFs) Open(name string) (afero.File, error) {
	if name == f.path {
		return nil, &os.PathError{Op: "open", Path: name, Err: f.err}
	}
	return f.Fs.Open(name)
}

func (f failingFs) Stat(name string) (os.FileInfo, error) {
	if name == f.path {
		return nil, &os.PathError{Op: "stat", Path: name, Err: f.err}
	}
	return f.Fs.Stat(name)
}
