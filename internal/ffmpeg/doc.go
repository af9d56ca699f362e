// Package ffmpeg builds the two glitch-pass command lines and runs external
// tools behind the narrow [Runner] interface.
//
//   - builder.go: BuildCorrupt / BuildReencode argument vectors.
//   - executor.go: Runner, ExecRunner (os/exec), ExecResult.
//   - errors.go: stderr classification and tail extraction for failure logs.
package ffmpeg
