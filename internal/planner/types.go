package planner

import "github.com/backmassage/glitchbatch/internal/naming"

// Action describes the per-file processing decision.
type Action int

const (
	ActionGlitch Action = iota
	ActionSkip
)

func (a Action) String() string {
	switch a {
	case ActionGlitch:
		return "glitch"
	case ActionSkip:
		return "skip"
	}
	return "unknown"
}

// FilePlan holds the decision for a single input file. It is produced by
// Decide and consumed by the pipeline, which builds both ffmpeg passes from
// it.
type FilePlan struct {
	Action     Action
	SkipReason string

	Codec     string // probed codec; empty when no video stream was found
	InputPath string
	naming.Paths
}
