package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/backmassage/glitchbatch/internal/config"
	"github.com/backmassage/glitchbatch/internal/ffmpeg"
)

// Logger is the minimal logging interface the prober needs for its
// diagnostics. Defined here so probe stays testable with a recording logger.
type Logger interface {
	Warn(string, ...interface{})
	Debug(string, ...interface{})
}

// Prober runs ffprobe through an ffmpeg.Runner.
type Prober struct {
	runner ffmpeg.Runner
	bin    string
	log    Logger
}

// New returns a Prober that invokes cfg.FFprobeBin through runner.
func New(cfg *config.Config, runner ffmpeg.Runner, log Logger) *Prober {
	return &Prober{runner: runner, bin: cfg.FFprobeBin, log: log}
}

// Args returns the ffprobe arguments for path.
func Args(path string) []string {
	return []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_format", "-show_streams",
		path,
	}
}

// Probe runs a single ffprobe JSON call against path and returns the
// parsed result. A missing binary, non-zero exit, or unparsable output is
// an error.
func (p *Prober) Probe(ctx context.Context, path string) (*ProbeResult, error) {
	res := p.runner.Run(ctx, p.bin, Args(path), ffmpeg.RunOptions{})
	if !res.OK() {
		if tail := ffmpeg.Tail(res.Stderr, 1); len(tail) > 0 {
			return nil, fmt.Errorf("%s %q: %w (%s)", p.bin, path, res.Err, tail[0])
		}
		return nil, fmt.Errorf("%s %q: %w", p.bin, path, res.Err)
	}
	return ParseJSON(res.Stdout)
}

// Inspect probes path and never fails: any probe error is logged with the
// file name and cause, and reported as ok=false. A file without a video
// stream is also ok=false, without a warning; the caller reports the skip.
func (p *Prober) Inspect(ctx context.Context, path string) (*ProbeResult, bool) {
	pr, err := p.Probe(ctx, path)
	if err != nil {
		p.log.Warn("Cannot read %s: %v", filepath.Base(path), err)
		return nil, false
	}
	if _, ok := pr.VideoCodec(); !ok {
		p.log.Debug("No video stream in %s", filepath.Base(path))
		return pr, false
	}
	return pr, true
}

// ParseJSON converts raw ffprobe JSON output into a ProbeResult.
// Exported for testing without a real ffprobe binary.
func ParseJSON(data []byte) (*ProbeResult, error) {
	var raw ffprobeOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse ffprobe JSON: %w", err)
	}
	return buildResult(&raw), nil
}

// --- ffprobe JSON wire types ---

type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	Duration string `json:"duration"`
	BitRate  string `json:"bit_rate"`
}

type ffprobeStream struct {
	CodecName    string         `json:"codec_name"`
	CodecType    string         `json:"codec_type"`
	Profile      string         `json:"profile"`
	PixFmt       string         `json:"pix_fmt"`
	Width        int            `json:"width"`
	Height       int            `json:"height"`
	BitRate      string         `json:"bit_rate"`
	AvgFrameRate string         `json:"avg_frame_rate"`
	Disposition  map[string]int `json:"disposition"`
}

// --- Conversion from wire types to domain types ---

func buildResult(raw *ffprobeOutput) *ProbeResult {
	pr := &ProbeResult{
		Format: FormatInfo{
			Duration: parseFloat(raw.Format.Duration),
			BitRate:  parseInt64(raw.Format.BitRate),
		},
	}

	for i := range raw.Streams {
		s := &raw.Streams[i]
		switch s.CodecType {
		case "video":
			vs := convertVideo(s)
			if !vs.IsAttachedPic && pr.PrimaryVideo == nil {
				pr.PrimaryVideo = &vs
			}
		case "audio":
			pr.AudioStreams++
		}
	}
	return pr
}

func convertVideo(s *ffprobeStream) VideoStream {
	return VideoStream{
		Codec:         s.CodecName,
		Profile:       s.Profile,
		PixFmt:        s.PixFmt,
		Width:         s.Width,
		Height:        s.Height,
		BitRate:       parseInt64(s.BitRate),
		AvgFrameRate:  s.AvgFrameRate,
		IsAttachedPic: s.Disposition["attached_pic"] == 1,
	}
}

// --- Numeric parsing helpers (ffprobe returns numbers as strings) ---

func parseInt64(s string) int64 {
	n, _ := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return n
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}
