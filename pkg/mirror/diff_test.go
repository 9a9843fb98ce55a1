package mirror

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDiff(t *testing.T) {
	t0 := time.Date(2019, 11, 10, 8, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Hour)
	t2 := t1.Add(time.Hour)

	tests := []struct {
		name         string
		source       Snapshot
		backup       Snapshot
		expNew       Snapshot
		expChanged   Snapshot
		expUnchanged Snapshot
		expDeleted   Snapshot
	}{
		{
			name:         "BothEmpty",
			source:       Snapshot{},
			backup:       Snapshot{},
			expNew:       Snapshot{},
			expChanged:   Snapshot{},
			expUnchanged: Snapshot{},
			expDeleted:   Snapshot{},
		},
		{
			name:         "NewFile",
			source:       snapshotOf(record("/x.txt", t1)),
			backup:       Snapshot{},
			expNew:       snapshotOf(record("/x.txt", t1)),
			expChanged:   Snapshot{},
			expUnchanged: Snapshot{},
			expDeleted:   Snapshot{},
		},
		{
			name:         "ChangedFile",
			source:       snapshotOf(record("/x.txt", t2)),
			backup:       snapshotOf(record("/x.txt", t1)),
			expNew:       Snapshot{},
			expChanged:   snapshotOf(record("/x.txt", t2)),
			expUnchanged: Snapshot{},
			expDeleted:   Snapshot{},
		},
		{
			name:         "DeletedFile",
			source:       Snapshot{},
			backup:       snapshotOf(record("/old.txt", t0)),
			expNew:       Snapshot{},
			expChanged:   Snapshot{},
			expUnchanged: Snapshot{},
			expDeleted:   snapshotOf(record("/old.txt", t0)),
		},
		{
			name:         "EqualTimestamps",
			source:       snapshotOf(record("/a.txt", t1)),
			backup:       snapshotOf(record("/a.txt", t1)),
			expNew:       Snapshot{},
			expChanged:   Snapshot{},
			expUnchanged: snapshotOf(record("/a.txt", t1)),
			expDeleted:   Snapshot{},
		},
		{
			name:         "BackupNewer",
			source:       snapshotOf(record("/a.txt", t0)),
			backup:       snapshotOf(record("/a.txt", t1)),
			expNew:       Snapshot{},
			expChanged:   Snapshot{},
			expUnchanged: snapshotOf(record("/a.txt", t0)),
			expDeleted:   Snapshot{},
		},
		{
			name:         "OneNanosecondNewer",
			source:       snapshotOf(record("/a.txt", t1.Add(time.Nanosecond))),
			backup:       snapshotOf(record("/a.txt", t1)),
			expNew:       Snapshot{},
			expChanged:   snapshotOf(record("/a.txt", t1.Add(time.Nanosecond))),
			expUnchanged: Snapshot{},
			expDeleted:   Snapshot{},
		},
		{
			name:         "SameInstantDifferentLocation",
			source:       snapshotOf(record("/a.txt", t1.In(time.FixedZone("UTC+2", 2*60*60)))),
			backup:       snapshotOf(record("/a.txt", t1)),
			expNew:       Snapshot{},
			expChanged:   Snapshot{},
			expUnchanged: snapshotOf(record("/a.txt", t1.In(time.FixedZone("UTC+2", 2*60*60)))),
			expDeleted:   Snapshot{},
		},
		{
			name: "Mixed",
			source: snapshotOf(
				record("/added", t1),
				record("/dir/changed", t2),
				record("/dir/same", t1),
			),
			backup: snapshotOf(
				record("/dir/changed", t1),
				record("/dir/same", t1),
				record("/dir/removed", t0),
			),
			expNew:       snapshotOf(record("/added", t1)),
			expChanged:   snapshotOf(record("/dir/changed", t2)),
			expUnchanged: snapshotOf(record("/dir/same", t1)),
			expDeleted:   snapshotOf(record("/dir/removed", t0)),
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			actual := Diff(test.source, test.backup)
			assert.Equal(t, test.expNew, actual.New)
			assert.Equal(t, test.expChanged, actual.Changed)
			assert.Equal(t, test.expUnchanged, actual.Unchanged)
			assert.Equal(t, test.expDeleted, actual.Deleted)
		})
	}
}

func TestDiffIdenticalSnapshots(t *testing.T) {
	snapshot := randomSnapshot(50)
	actual := Diff(snapshot, snapshot)
	assert.True(t, actual.InSync())
	assert.Equal(t, snapshot, actual.Unchanged)
}

// TestDiffPartitions checks that the classification partitions the source
// and backup snapshots on randomly generated inputs.
func TestDiffPartitions(t *testing.T) {
	for i := 0; i < 100; i++ {
		source := randomSnapshot(rand.Intn(30))
		backup := randomSnapshot(rand.Intn(30))
		actual := Diff(source, backup)

		seen := map[string]int{}
		for _, set := range []Snapshot{actual.New, actual.Changed, actual.Unchanged} {
			for path, f := range set {
				seen[path]++
				assert.Equal(t, source[path], f)
			}
		}
		assert.Len(t, seen, len(source))
		for path, count := range seen {
			assert.Equal(t, 1, count, path)
		}

		for path, f := range actual.Deleted {
			_, inSource := source[path]
			assert.False(t, inSource, path)
			assert.Equal(t, backup[path], f)
		}
		for path := range backup {
			if _, inSource := source[path]; !inSource {
				assert.Contains(t, actual.Deleted, path)
			}
		}

		for path, f := range actual.Changed {
			assert.True(t, f.ModTime.After(backup[path].ModTime), path)
		}
		for path, f := range actual.Unchanged {
			assert.False(t, f.ModTime.After(backup[path].ModTime), path)
		}
	}
}

// randomSnapshot draws paths and times from small pools so that snapshots
// generated separately overlap.
func randomSnapshot(size int) Snapshot {
	base := time.Date(2019, 11, 10, 0, 0, 0, 0, time.UTC)
	snapshot := Snapshot{}
	for i := 0; i < size; i++ {
		path := fmt.Sprintf("/dir-%d/file-%d", rand.Intn(4), rand.Intn(10))
		snapshot.Add(record(path, base.Add(time.Duration(rand.Intn(3))*time.Second)))
	}
	return snapshot
}
