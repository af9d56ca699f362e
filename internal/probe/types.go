package probe

import (
	"strconv"
	"strings"
)

// FormatInfo holds container-level metadata from ffprobe's format section.
type FormatInfo struct {
	Duration float64
	BitRate  int64
}

// VideoStream holds the parsed properties of a single video stream.
type VideoStream struct {
	Codec         string
	Profile       string
	PixFmt        string
	Width         int
	Height        int
	BitRate       int64
	AvgFrameRate  string
	IsAttachedPic bool
}

// ProbeResult is the parsed output of a single ffprobe JSON call.
// PrimaryVideo is the first non-attached-pic video stream (nil if none).
type ProbeResult struct {
	Format       FormatInfo
	PrimaryVideo *VideoStream
	AudioStreams int
}

// VideoCodec returns the primary video stream's codec name and whether a
// video stream exists at all.
func (p *ProbeResult) VideoCodec() (string, bool) {
	if p == nil || p.PrimaryVideo == nil {
		return "", false
	}
	return p.PrimaryVideo.Codec, true
}

// VideoBitRate returns the primary video stream bitrate in bits/sec,
// falling back to the format-level bitrate when the stream value is
// unavailable or zero.
func (p *ProbeResult) VideoBitRate() int64 {
	if p.PrimaryVideo != nil && p.PrimaryVideo.BitRate > 0 {
		return p.PrimaryVideo.BitRate
	}
	return p.Format.BitRate
}

// Resolution returns "WxH" for the primary video stream, or "unknown".
func (p *ProbeResult) Resolution() string {
	if p.PrimaryVideo == nil || p.PrimaryVideo.Width <= 0 || p.PrimaryVideo.Height <= 0 {
		return "unknown"
	}
	return strconv.Itoa(p.PrimaryVideo.Width) + "x" + strconv.Itoa(p.PrimaryVideo.Height)
}

// FrameRate returns the primary video stream's average frame rate parsed
// from ffprobe's "num/den" form, or 0 when unknown.
func (p *ProbeResult) FrameRate() float64 {
	if p == nil || p.PrimaryVideo == nil {
		return 0
	}
	num, den, found := strings.Cut(p.PrimaryVideo.AvgFrameRate, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	if !found {
		return n
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0
	}
	return n / d
}
