package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/backmassage/glitchbatch/internal/config"
	"github.com/backmassage/glitchbatch/internal/display"
	"github.com/backmassage/glitchbatch/internal/ffmpeg"
	"github.com/backmassage/glitchbatch/internal/probe"
)

// ErrInputMissing is returned by Run when the input directory does not exist.
var ErrInputMissing = errors.New("input directory does not exist")

// Logger is the logging surface the pipeline uses; *logging.Logger
// satisfies it.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
	Debug(string, ...interface{})
	Break()
	Writer() io.Writer
}

// Pipeline holds the collaborators of a batch run.
type Pipeline struct {
	cfg    *config.Config
	fs     afero.Fs
	runner ffmpeg.Runner
	prober *probe.Prober
	log    Logger
}

// New wires a Pipeline. fs is afero.NewOsFs() in production; runner is
// ffmpeg.ExecRunner{}.
func New(cfg *config.Config, fs afero.Fs, runner ffmpeg.Runner, log Logger) *Pipeline {
	return &Pipeline{
		cfg:    cfg,
		fs:     fs,
		runner: runner,
		prober: probe.New(cfg, runner, log),
		log:    log,
	}
}

// Run is the top-level batch entry point. It checks the input directory,
// creates the output directory, discovers files, and processes each one to
// completion before starting the next.
//
// The returned error is non-nil only for batch-level failures (missing input
// directory, output directory not creatable, input not listable); per-file
// failures are counted in RunStats and never stop the loop. A cancelled ctx
// stops the loop between files and sets RunStats.Interrupted.
func (p *Pipeline) Run(ctx context.Context) (RunStats, error) {
	var stats RunStats

	if ok, err := afero.DirExists(p.fs, p.cfg.InputDir); err != nil || !ok {
		return stats, fmt.Errorf("%w: %s", ErrInputMissing, p.cfg.InputDir)
	}
	if err := p.fs.MkdirAll(p.cfg.OutputDir, 0o755); err != nil {
		return stats, fmt.Errorf("create output directory %s: %w", p.cfg.OutputDir, err)
	}

	fmt.Fprintln(p.log.Writer(), display.Heading("Glitch-Art Batch Processor"))
	p.log.Break()

	files, err := Discover(p.fs, p.cfg.InputDir)
	if err != nil {
		return stats, fmt.Errorf("list %s: %w", p.cfg.InputDir, err)
	}
	if len(files) == 0 {
		p.log.Warn("No .mp4 files found in '%s'", p.cfg.InputDir)
		return stats, nil
	}

	stats.Total = len(files)
	p.log.Info("Found %d MP4 file(s)", stats.Total)
	p.log.Break()

	for i, path := range files {
		if ctx.Err() != nil {
			p.log.Warn("Interrupted, %d file(s) not processed", stats.Total-i)
			stats.Interrupted = true
			break
		}
		stats.Current = i + 1

		p.log.Info("[%d/%d] %s", stats.Current, stats.Total, filepath.Base(path))
		stats.Record(p.ProcessFile(ctx, path))
		p.log.Break()
	}
	if ctx.Err() != nil && !stats.Interrupted {
		p.log.Warn("Interrupted, 0 file(s) not processed")
		stats.Interrupted = true
	}

	p.logSummary(&stats)
	fmt.Fprintln(p.log.Writer(), display.Heading("Done"))
	return stats, nil
}

func (p *Pipeline) logSummary(stats *RunStats) {
	p.log.Info("Summary: %d glitched, %d skipped, %d failed (of %d)",
		stats.Done, stats.Skipped, stats.Failed, stats.Total)
	if stats.Done > 0 {
		p.log.Info("  Output: %s total (%s vs input)",
			display.FormatBytes(stats.TotalOutputBytes),
			display.FormatBytesWithSign(stats.SizeDelta()))
	}
	p.log.Info("  Results in: %s", p.cfg.OutputDir)
}

func exists(fs afero.Fs, path string) bool {
	ok, err := afero.Exists(fs, path)
	return err == nil && ok
}
