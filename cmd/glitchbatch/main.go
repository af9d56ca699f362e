// Command glitchbatch is the CLI entrypoint for the glitch-art batch
// processor.
//
// It reads every .mp4 in ./input, datamoshes the h264 ones with ffmpeg's
// noise bitstream filter, and writes <name>_glitch.mp4 files to ./output.
// With --check it only runs system diagnostics.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/backmassage/glitchbatch/internal/check"
	"github.com/backmassage/glitchbatch/internal/config"
	"github.com/backmassage/glitchbatch/internal/display"
	"github.com/backmassage/glitchbatch/internal/ffmpeg"
	"github.com/backmassage/glitchbatch/internal/logging"
	"github.com/backmassage/glitchbatch/internal/pipeline"
)

// version and commit are injected at build time via -ldflags.
var (
	version = "1.0.0"
	commit  = "unknown"
)

// exitInterrupted is the conventional status for a run stopped by SIGINT.
const exitInterrupted = 130

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg := config.DefaultConfig()
	code := 0

	cmd := &cobra.Command{
		Use:   "glitchbatch",
		Short: "Datamosh every h264 MP4 in ./input into ./output",
		Long: "glitchbatch corrupts the non-key frames of each h264 MP4 found in\n" +
			"'" + config.DefaultInputDir + "' with ffmpeg's noise bitstream filter, then re-encodes\n" +
			"the result into a playable <name>_glitch.mp4 in '" + config.DefaultOutputDir + "'.",
		Version:       fmt.Sprintf("%s (%s)", version, commit),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	negated := config.BindFlags(cmd.Flags(), &cfg)

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		negated.Apply(&cfg)
		if err := cfg.Validate(); err != nil {
			return err
		}
		code = execute(cmd.Context(), &cfg, afero.NewOsFs(), ffmpeg.ExecRunner{}, os.Stdout)
		return nil
	}
	cmd.SetArgs(args)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Bootstrap errors (flags, validation) happen before the logger exists,
	// so they go straight to stderr.
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "glitchbatch: %v\n", err)
		return 1
	}
	return code
}

// execute runs once flags are parsed: logger, banner, then either the
// diagnostics or the batch. It returns the process exit status.
func execute(ctx context.Context, cfg *config.Config, fs afero.Fs, runner ffmpeg.Runner, out io.Writer) int {
	log, err := logging.New(out, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "glitchbatch: %v\n", err)
		return 1
	}
	defer log.Close()

	display.PrintBanner(log.Writer())
	log.Debug("Run %s", log.RunID())

	if cfg.CheckOnly {
		if !check.RunCheck(ctx, cfg, runner, log) {
			return 1
		}
		return 0
	}

	// Missing tools do not stop the batch; each file then fails or skips on
	// its own.
	if err := check.CheckDeps(ctx, cfg, runner); err != nil {
		log.Warn("%v", err)
		log.Warn("Run with --check for details")
	}

	stats, err := pipeline.New(cfg, fs, runner, log).Run(ctx)
	switch {
	case errors.Is(err, pipeline.ErrInputMissing):
		log.Error("Input directory '%s' does not exist", cfg.InputDir)
		return 1
	case err != nil:
		log.Error("%v", err)
		return 1
	case stats.Interrupted || ctx.Err() != nil:
		return exitInterrupted
	}
	return 0
}
