package pipeline

// RunStats tracks aggregate counters and byte totals across a batch run.
type RunStats struct {
	Total            int
	Current          int
	Done             int
	Skipped          int
	Failed           int
	Interrupted      bool
	TotalInputBytes  int64
	TotalOutputBytes int64
}

// Record folds one file's outcome into the counters.
func (s *RunStats) Record(o Outcome) {
	switch {
	case o.State == StateDone:
		s.Done++
		s.TotalInputBytes += o.InputBytes
		s.TotalOutputBytes += o.OutputBytes
	case o.State == StateSkipped:
		s.Skipped++
	case o.State.Failed():
		s.Failed++
	}
}

// SizeDelta returns the aggregate byte difference between outputs and
// inputs of successful files. Glitched output is usually larger.
func (s *RunStats) SizeDelta() int64 {
	return s.TotalOutputBytes - s.TotalInputBytes
}
