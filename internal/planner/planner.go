package planner

import (
	"fmt"
	"strings"

	"github.com/backmassage/glitchbatch/internal/config"
	"github.com/backmassage/glitchbatch/internal/naming"
	"github.com/backmassage/glitchbatch/internal/probe"
)

// RequiredCodec is the only source codec the noise recipe is tuned for.
const RequiredCodec = "h264"

// Decide turns a probe result into a FilePlan. pr may be nil and ok false
// when the probe failed; that and a missing video stream both skip the file,
// as does any codec other than h264 (compared case-insensitively).
func Decide(cfg *config.Config, input string, pr *probe.ProbeResult, ok bool) *FilePlan {
	plan := &FilePlan{
		InputPath: input,
		Paths:     naming.OutputPaths(cfg.OutputDir, input),
	}

	codec, hasVideo := pr.VideoCodec()
	if !ok || !hasVideo {
		plan.Action = ActionSkip
		plan.SkipReason = "no video stream found"
		return plan
	}

	plan.Codec = codec
	if !strings.EqualFold(codec, RequiredCodec) {
		plan.Action = ActionSkip
		plan.SkipReason = fmt.Sprintf("codec is %q (only %s allowed)", codec, RequiredCodec)
		return plan
	}

	plan.Action = ActionGlitch
	return plan
}
