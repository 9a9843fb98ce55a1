/*
The mirror package implements treemirror's one-way mirror algorithm. It
mirrors a source directory tree into a backup directory tree.

A run happens in three steps:
1) BuildSnapshot walks a root directory and records every regular file by its
   path relative to the root, along with its modification time. Directories
   aren't recorded, so empty directories are never mirrored.
2) Diff compares the source and backup snapshots and classifies each file as
   New, Changed, Unchanged, or Deleted. A backup copy is only considered
   stale if the source file is strictly newer, so files with equal
   modification times are never copied again.
3) ApplyAdditions and ApplyDeletions copy and remove the classified files.
   They stop at the first failure and leave the backup tree in whatever state
   the last completed operation left it in.

A source file whose path is a directory in the backup (or the reverse) never
converges: additions run before deletions, so the copy fails on every run
until the backup path is removed by hand.

A root that's a symlink to a directory is followed. Symlinks beneath the root
are skipped.

Nothing guards against the trees changing while a run is in progress, and two
runs against the same trees must not overlap.
*/
package mirror
