// Package pipeline runs the glitch batch: discover the input files, then
// for each one probe -> decide -> corrupt -> re-encode -> clean up, strictly
// one file at a time.
//
//   - discover.go: non-recursive, case-sensitive *.mp4 listing.
//   - process.go: single-file processor producing an Outcome.
//   - runner.go: batch driver, progress lines, summary.
//   - stats.go: RunStats aggregation.
//
// All filesystem access goes through afero so the whole pipeline runs
// against an in-memory filesystem in tests.
package pipeline
