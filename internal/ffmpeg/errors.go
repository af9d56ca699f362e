package ffmpeg

import (
	"regexp"
	"strings"
)

// Pre-compiled regexes for classifying ffmpeg stderr into a short hint that
// is appended to failure log lines. Checked in order by [Classify].
var stderrHints = []struct {
	re   *regexp.Regexp
	hint string
}{
	{regexp.MustCompile(`(?i)Unknown encoder '?libx264'?|Encoder .?libx264.? not found`),
		"ffmpeg was built without libx264"},
	{regexp.MustCompile(`(?i)Unknown bitstream filter|No such bitstream filter|bsf .?noise.? not found`),
		"ffmpeg lacks the noise bitstream filter"},
	{regexp.MustCompile(`(?i)Invalid data found when processing input|moov atom not found`),
		"input is not a readable MP4"},
	{regexp.MustCompile(`(?i)No space left on device`),
		"disk full"},
	{regexp.MustCompile(`(?i)Permission denied`),
		"permission denied"},
	{regexp.MustCompile(`(?i)No such file or directory`),
		"file not found"},
	{regexp.MustCompile(`(?i)Error while decoding|decode_slice_header error|concealing \d+ DC`),
		"stream too damaged to decode"},
}

// Classify returns a short human-readable hint for well-known ffmpeg
// failures, or "" when nothing matches.
func Classify(stderr string) string {
	for _, h := range stderrHints {
		if h.re.MatchString(stderr) {
			return h.hint
		}
	}
	return ""
}

// Tail returns the last n non-empty lines of stderr.
func Tail(stderr string, n int) []string {
	var lines []string
	for _, l := range strings.Split(strings.TrimSpace(stderr), "\n") {
		if l = strings.TrimRight(l, "\r "); l != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines
}
