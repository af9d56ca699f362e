package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
)

// RunOptions tunes a single tool invocation.
type RunOptions struct {
	// Tee copies stderr to this writer in real time (e.g. os.Stderr in
	// verbose mode). Stderr is always captured regardless.
	Tee io.Writer
}

// ExecResult holds the outcome of a single tool invocation. Err is nil only
// when the process started and exited with status 0.
type ExecResult struct {
	Stdout   []byte
	Stderr   string
	ExitCode int
	Err      error
}

// OK reports whether the invocation succeeded.
func (r ExecResult) OK() bool { return r.Err == nil }

// Runner invokes an external command and captures its outcome. The pipeline
// and prober only talk to ffmpeg/ffprobe through this interface, so tests
// substitute a fake instead of spawning processes.
type Runner interface {
	Run(ctx context.Context, name string, args []string, opts RunOptions) ExecResult
}

// ExecRunner runs commands with os/exec. The zero value is ready to use.
type ExecRunner struct{}

// Run starts name with args and blocks until it exits or ctx is cancelled,
// in which case the process is killed. There is no timeout.
func (ExecRunner) Run(ctx context.Context, name string, args []string, opts RunOptions) ExecResult {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	if opts.Tee != nil {
		cmd.Stderr = io.MultiWriter(&stderr, opts.Tee)
	} else {
		cmd.Stderr = &stderr
	}

	err := cmd.Run()
	res := ExecResult{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.String(),
		ExitCode: exitCode(err),
		Err:      err,
	}
	if ctx.Err() != nil && err != nil {
		res.Err = errors.Join(ctx.Err(), err)
	}
	return res
}

// exitCode extracts the process exit status; -1 when the process never ran
// or was killed by a signal.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return ee.ExitCode()
	}
	return -1
}

// StderrTee returns the RunOptions.Tee value for the verbosity setting:
// os.Stderr in verbose mode, nil otherwise.
func StderrTee(verbose bool) io.Writer {
	if verbose {
		return os.Stderr
	}
	return nil
}
