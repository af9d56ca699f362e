package naming

import (
	"path/filepath"
	"strings"
)

// Suffixes appended to the input stem.
const (
	CorruptedSuffix = "_corrupted"
	GlitchSuffix    = "_glitch"
	Extension       = ".mp4"
)

// Paths holds the two artifacts derived from one input file.
type Paths struct {
	Corrupted string // transient; removed once the re-encode finishes
	Final     string // the glitch result
}

// Stem returns the base name of path without its final extension
// ("input/clip.final.mp4" -> "clip.final").
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// OutputPaths builds the intermediate and final paths for input:
//
//	<outputDir>/<stem>_corrupted.mp4
//	<outputDir>/<stem>_glitch.mp4
func OutputPaths(outputDir, input string) Paths {
	stem := Stem(input)
	return Paths{
		Corrupted: filepath.Join(outputDir, stem+CorruptedSuffix+Extension),
		Final:     filepath.Join(outputDir, stem+GlitchSuffix+Extension),
	}
}

// MatchesMP4 reports whether name matches the "*.mp4" glob. The match is
// case-sensitive ("clip.MP4" does not qualify); dot-prefixed names such as
// ".take1.mp4" do qualify.
func MatchesMP4(name string) bool {
	ok, _ := filepath.Match("*"+Extension, name)
	return ok
}
