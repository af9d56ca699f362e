package ffmpeg

import (
	"strconv"

	"github.com/backmassage/glitchbatch/internal/config"
)

// preamble is shared by both passes: overwrite output, never read stdin,
// and keep ffmpeg quiet unless verbose.
func preamble(cfg *config.Config) []string {
	args := make([]string, 0, 24)
	args = append(args, "-hide_banner", "-nostdin", "-y")
	if cfg.Verbose {
		args = append(args, "-loglevel", "info", "-stats")
	} else {
		args = append(args, "-loglevel", "error")
	}
	return args
}

// BuildCorrupt returns the ffmpeg arguments (without the binary) for the
// corruption pass: re-encode with long GOPs and many B-frames, then run the
// noise bitstream filter over every non-key packet.
//
//	ffmpeg -y -i in -c:v libx264 -x264-params keyint=500:keyint_min=60:bf=8:partitions=none
//	       -bsf:v noise=amount=9000*not(key) -pix_fmt yuv420p out
func BuildCorrupt(cfg *config.Config, input, output string) []string {
	args := preamble(cfg)
	args = append(args,
		"-i", input,
		"-c:v", cfg.VideoEncoder,
		"-x264-params", cfg.X264Params(),
		"-bsf:v", cfg.NoiseFilter(),
		"-pix_fmt", cfg.PixFmt,
		output,
	)
	return args
}

// BuildReencode returns the ffmpeg arguments for the normalization pass,
// which decodes the damaged stream and encodes it into a playable file.
//
//	ffmpeg -y -i corrupted -c:v libx264 -preset veryslow -crf 28 out
func BuildReencode(cfg *config.Config, input, output string) []string {
	args := preamble(cfg)
	args = append(args,
		"-i", input,
		"-c:v", cfg.VideoEncoder,
		"-preset", cfg.ReencodePreset,
		"-crf", strconv.Itoa(cfg.ReencodeCRF),
		output,
	)
	return args
}
