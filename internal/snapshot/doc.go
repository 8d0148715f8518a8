// Package snapshot persists timestamped copies of file content for version
// tracking and computes line diffs between them.
//
// Layout on disk: one directory per tracked file (path-escaped under the
// snapshot root), containing immutable timestamp-named .snap files. History
// lists newest first. The diff is position-aligned; see
// Store.Diff for the tradeoff.
package snapshot
