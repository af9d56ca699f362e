package pipeline

import (
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/backmassage/glitchbatch/internal/naming"
)

// Discover lists the files directly under inputDir whose names match
// "*.mp4" (case-sensitive, no recursion) and returns their paths sorted
// lexicographically, which is the order afero.ReadDir yields.
func Discover(fs afero.Fs, inputDir string) ([]string, error) {
	entries, err := afero.ReadDir(fs, inputDir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, fi := range entries {
		if fi.IsDir() || !naming.MatchesMP4(fi.Name()) {
			continue
		}
		files = append(files, filepath.Join(inputDir, fi.Name()))
	}
	return files, nil
}
