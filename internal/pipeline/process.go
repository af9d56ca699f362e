package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/backmassage/glitchbatch/internal/display"
	"github.com/backmassage/glitchbatch/internal/ffmpeg"
	"github.com/backmassage/glitchbatch/internal/planner"
	"github.com/backmassage/glitchbatch/internal/probe"
)

// stderrTailLines is how much ffmpeg output a failure log repeats.
const stderrTailLines = 5

// ProcessFile drives one input through probe -> corrupt -> re-encode ->
// cleanup. It never returns an error; every failure is terminal for this
// file only and is reported through the returned Outcome and the log.
func (p *Pipeline) ProcessFile(ctx context.Context, input string) Outcome {
	name := filepath.Base(input)

	pr, ok := p.prober.Inspect(ctx, input)
	plan := planner.Decide(p.cfg, input, pr, ok)
	if plan.Action == planner.ActionSkip {
		p.log.Warn("Skip %s: %s", name, plan.SkipReason)
		return Outcome{Input: input, State: StateSkipped, Reason: plan.SkipReason}
	}

	logFileStats(p.log, pr)
	p.log.Info("Processing: %s (%s)", name, plan.Codec)

	// --- Corruption pass ---
	begin := time.Now()
	res := p.ffmpeg(ctx, ffmpeg.BuildCorrupt(p.cfg, input, plan.Corrupted))
	if reason := p.stepFailure(res, plan.Corrupted); reason != "" {
		p.log.Error("Corruption step failed for %s: %s", name, reason)
		p.logStderr(res.Stderr)
		p.remove(plan.Corrupted)
		return Outcome{Input: input, State: StateCorruptFailed, Reason: reason}
	}
	p.log.Debug("Corrupted %s in %s", name, display.FormatDuration(time.Since(begin)))

	// --- Normalization pass ---
	res = p.ffmpeg(ctx, ffmpeg.BuildReencode(p.cfg, plan.Corrupted, plan.Final))
	if reason := p.stepFailure(res, plan.Final); reason != "" {
		p.log.Error("Re-encoding failed for %s: %s", name, reason)
		p.logStderr(res.Stderr)
		p.remove(plan.Final)
		if p.cfg.KeepCorrupted {
			p.log.Warn("Kept %s for inspection", filepath.Base(plan.Corrupted))
		} else {
			p.remove(plan.Corrupted)
		}
		return Outcome{Input: input, State: StateReencodeFailed, Reason: reason}
	}

	p.remove(plan.Corrupted)

	out := Outcome{
		Input:       input,
		State:       StateDone,
		Output:      plan.Final,
		InputBytes:  p.size(input),
		OutputBytes: p.size(plan.Final),
	}
	p.log.Success("Done: %s (%s, %s vs input) in %s",
		filepath.Base(plan.Final),
		display.FormatBytes(out.OutputBytes),
		display.FormatBytesWithSign(out.OutputBytes-out.InputBytes),
		display.FormatDuration(time.Since(begin)))
	return out
}

// ffmpeg runs one ffmpeg pass. In verbose mode the command line is logged
// and ffmpeg's stderr is tee'd to the terminal.
func (p *Pipeline) ffmpeg(ctx context.Context, args []string) ffmpeg.ExecResult {
	p.log.Debug("$ %s %s", p.cfg.FFmpegBin, strings.Join(args, " "))
	return p.runner.Run(ctx, p.cfg.FFmpegBin, args, ffmpeg.RunOptions{
		Tee: ffmpeg.StderrTee(p.cfg.Verbose),
	})
}

// stepFailure returns "" when the pass succeeded: exit status 0 and the
// expected output file exists. Otherwise it returns a one-line reason.
func (p *Pipeline) stepFailure(res ffmpeg.ExecResult, output string) string {
	var reason string
	switch {
	case res.OK():
		if exists(p.fs, output) {
			return ""
		}
		reason = fmt.Sprintf("%s exited 0 but did not create %s", p.cfg.FFmpegBin, filepath.Base(output))
	case res.ExitCode > 0:
		reason = fmt.Sprintf("%s exited with status %d", p.cfg.FFmpegBin, res.ExitCode)
	default:
		reason = res.Err.Error()
	}
	if hint := ffmpeg.Classify(res.Stderr); hint != "" {
		reason += " (" + hint + ")"
	}
	return reason
}

// logStderr repeats the tail of ffmpeg's output after a failure. Skipped in
// verbose mode, where stderr already went to the terminal.
func (p *Pipeline) logStderr(stderr string) {
	if p.cfg.Verbose {
		return
	}
	for _, l := range ffmpeg.Tail(stderr, stderrTailLines) {
		p.log.Error("  | %s", l)
	}
}

// remove deletes path if it exists. Failures are logged, never fatal.
func (p *Pipeline) remove(path string) {
	if !exists(p.fs, path) {
		return
	}
	if err := p.fs.Remove(path); err != nil {
		p.log.Warn("Cannot remove %s: %v", path, err)
		return
	}
	p.log.Debug("Removed %s", filepath.Base(path))
}

func (p *Pipeline) size(path string) int64 {
	fi, err := p.fs.Stat(path)
	if err != nil {
		return 0
	}
	return fi.Size()
}

// logFileStats prints the one-line source summary for a file about to be
// processed.
func logFileStats(log Logger, pr *probe.ProbeResult) {
	v := pr.PrimaryVideo
	if v == nil {
		return
	}
	line := fmt.Sprintf("  Video: %s | %s | %s", pr.Resolution(),
		display.FormatBitrateLabel(pr.VideoBitRate()/1000), v.Codec)
	if v.Profile != "" {
		line += " " + v.Profile
	}
	if v.PixFmt != "" {
		line += " " + v.PixFmt
	}
	if fps := pr.FrameRate(); fps > 0 {
		line += fmt.Sprintf(" | %.2f fps", fps)
	}
	line += fmt.Sprintf(" | %d audio", pr.AudioStreams)
	if pr.Format.Duration > 0 {
		line += fmt.Sprintf(" | %.1fs", pr.Format.Duration)
	}
	log.Info("%s", line)
}
