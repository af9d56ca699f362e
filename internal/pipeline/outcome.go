package pipeline

// State is the terminal state of one file's processing.
//
//	Pending -> Probed -> Skipped
//	                  -> Corrupting -> CorruptFailed
//	                                -> Corrupted -> ReEncoding -> ReEncodeFailed
//	                                                           -> Done
type State int

const (
	StateSkipped State = iota
	StateCorruptFailed
	StateReencodeFailed
	StateDone
)

func (s State) String() string {
	switch s {
	case StateSkipped:
		return "skipped"
	case StateCorruptFailed:
		return "corrupt-failed"
	case StateReencodeFailed:
		return "reencode-failed"
	case StateDone:
		return "done"
	}
	return "unknown"
}

// Failed reports whether s is one of the step-failure states.
func (s State) Failed() bool {
	return s == StateCorruptFailed || s == StateReencodeFailed
}

// Outcome is the result of processing one input file. Errors never cross
// file boundaries; they end up in Reason.
type Outcome struct {
	Input  string
	State  State
	Reason string // skip or failure reason; empty on success
	Output string // final output path; set only when State is StateDone

	InputBytes  int64
	OutputBytes int64
}
