package mirror

// Classification is the result of comparing a source snapshot against a
// backup snapshot. New, Changed and Unchanged partition the source snapshot,
// and Deleted contains the backup files that no longer exist in the source.
type Classification struct {
	New       Snapshot
	Changed   Snapshot
	Unchanged Snapshot
	Deleted   Snapshot
}

// Diff classifies the files that need to be created, updated, or removed
// from the backup.
// * Files that only exist in the source are new.
// * Files whose source is strictly newer than the backup copy have changed.
//   Files with equal modification times are unchanged, so they're never
//   copied twice.
// * Files that only exist in the backup should be deleted.
func Diff(source, backup Snapshot) Classification {
	result := Classification{
		New:       Snapshot{},
		Changed:   Snapshot{},
		Unchanged: Snapshot{},
		Deleted:   Snapshot{},
	}

	for _, exp := range source {
		curr, ok := backup[exp.Path]
		switch {
		case !ok:
			result.New.Add(exp)
		case exp.ModTime.After(curr.ModTime):
			result.Changed.Add(exp)
		default:
			result.Unchanged.Add(exp)
		}
	}

	for _, curr := range backup {
		if _, ok := source[curr.Path]; !ok {
			result.Deleted.Add(curr)
		}
	}
	return result
}

// InSync returns whether the backup already mirrors the source.
func (c Classification) InSync() bool {
	return len(c.New) == 0 && len(c.Changed) == 0 && len(c.Deleted) == 0
}
