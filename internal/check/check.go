// Package check provides system diagnostics (--check mode) and the
// pre-batch dependency validation (CheckDeps) for ffmpeg, ffprobe, the
// libx264 encoder, and the noise bitstream filter.
package check

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/backmassage/glitchbatch/internal/config"
	"github.com/backmassage/glitchbatch/internal/ffmpeg"
)

// Sentinel errors returned by CheckDeps when a required tool or component
// is missing.
var (
	ErrFfmpegNotFound  = errors.New("ffmpeg not found on PATH")
	ErrFfprobeNotFound = errors.New("ffprobe not found on PATH")
	ErrNoEncoder       = errors.New("ffmpeg does not list the libx264 encoder")
	ErrNoNoiseFilter   = errors.New("ffmpeg does not list the noise bitstream filter")
)

// lookPath is swapped out in tests.
var lookPath = exec.LookPath

// Logger is the minimal logging interface needed by RunCheck.
// Defined here (rather than importing the logging package) so that check
// stays testable with a recording logger.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
}

// RunCheck runs the --check flow: it reports each tool and component and
// returns false if any of them is unusable.
func RunCheck(ctx context.Context, cfg *config.Config, runner ffmpeg.Runner, log Logger) bool {
	log.Info("=== System Check ===")
	ok := true

	if path, err := lookPath(cfg.FFmpegBin); err != nil {
		log.Error("%s not found", cfg.FFmpegBin)
		ok = false
	} else {
		log.Success("%s: %s (%s)", cfg.FFmpegBin, firstLine(ctx, runner, cfg.FFmpegBin), path)
	}
	if path, err := lookPath(cfg.FFprobeBin); err != nil {
		log.Error("%s not found", cfg.FFprobeBin)
		ok = false
	} else {
		log.Success("%s: %s (%s)", cfg.FFprobeBin, firstLine(ctx, runner, cfg.FFprobeBin), path)
	}
	if !ok {
		return false
	}

	if err := checkEncoder(ctx, cfg, runner); err != nil {
		log.Error("%v", err)
		ok = false
	} else {
		log.Success("Encoder %s available", cfg.VideoEncoder)
	}
	if err := checkNoiseFilter(ctx, cfg, runner); err != nil {
		log.Error("%v", err)
		ok = false
	} else {
		log.Success("Bitstream filter noise available")
	}
	return ok
}

// CheckDeps is the pre-batch validation: ffmpeg and ffprobe must be on
// PATH, and ffmpeg must list libx264 and the noise bitstream filter.
// Returns the first failure as a sentinel-wrapped error.
func CheckDeps(ctx context.Context, cfg *config.Config, runner ffmpeg.Runner) error {
	if _, err := lookPath(cfg.FFmpegBin); err != nil {
		return ErrFfmpegNotFound
	}
	if _, err := lookPath(cfg.FFprobeBin); err != nil {
		return ErrFfprobeNotFound
	}
	if err := checkEncoder(ctx, cfg, runner); err != nil {
		return err
	}
	return checkNoiseFilter(ctx, cfg, runner)
}

// --- internal helpers ---

// checkEncoder looks for cfg.VideoEncoder in `ffmpeg -encoders`, whose rows
// read " V....D libx264  libx264 H.264 / AVC ...".
func checkEncoder(ctx context.Context, cfg *config.Config, runner ffmpeg.Runner) error {
	out, err := listing(ctx, cfg, runner, "-encoders")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNoEncoder, err)
	}
	for _, line := range strings.Split(out, "\n") {
		f := strings.Fields(line)
		if len(f) >= 2 && f[1] == cfg.VideoEncoder {
			return nil
		}
	}
	return ErrNoEncoder
}

// checkNoiseFilter looks for "noise" in `ffmpeg -bsfs`, one name per line.
func checkNoiseFilter(ctx context.Context, cfg *config.Config, runner ffmpeg.Runner) error {
	out, err := listing(ctx, cfg, runner, "-bsfs")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNoNoiseFilter, err)
	}
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) == "noise" {
			return nil
		}
	}
	return ErrNoNoiseFilter
}

func listing(ctx context.Context, cfg *config.Config, runner ffmpeg.Runner, flag string) (string, error) {
	res := runner.Run(ctx, cfg.FFmpegBin, []string{"-hide_banner", flag}, ffmpeg.RunOptions{})
	if !res.OK() {
		return "", res.Err
	}
	return string(res.Stdout), nil
}

// firstLine returns the first line of `bin -version`, or "version unknown".
func firstLine(ctx context.Context, runner ffmpeg.Runner, bin string) string {
	res := runner.Run(ctx, bin, []string{"-version"}, ffmpeg.RunOptions{})
	if !res.OK() {
		return "version unknown"
	}
	line := strings.TrimSpace(string(res.Stdout))
	if idx := strings.Index(line, "\n"); idx > 0 {
		line = line[:idx]
	}
	if line == "" {
		return "version unknown"
	}
	return line
}
