package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/backmassage/glitchbatch/internal/config"
	"github.com/backmassage/glitchbatch/internal/ffmpeg"
	"github.com/backmassage/glitchbatch/internal/logging"
)

const (
	inDir  = "/work/input"
	outDir = "/work/output"
)

// --- Fake ffprobe/ffmpeg ---

// fakeTools stands in for ffprobe and ffmpeg. ffprobe answers from codecs
// (keyed by input base name; a missing key fails the probe). ffmpeg writes
// its output file into fs, and for inputs whose stem is listed in a fail
// set it leaves a partial file behind and exits 1.
type fakeTools struct {
	fs             afero.Fs
	codecs         map[string]string
	failCorrupt    map[string]bool
	failReencode   map[string]bool
	silentReencode map[string]bool // exit 0 without writing output
	calls          [][]string
	onFFmpeg       func()
}

func newFakeTools(fs afero.Fs) *fakeTools {
	return &fakeTools{
		fs:             fs,
		codecs:         map[string]string{},
		failCorrupt:    map[string]bool{},
		failReencode:   map[string]bool{},
		silentReencode: map[string]bool{},
	}
}

func (f *fakeTools) Run(_ context.Context, name string, args []string, _ ffmpeg.RunOptions) ffmpeg.ExecResult {
	f.calls = append(f.calls, append([]string{name}, args...))
	switch name {
	case "ffprobe":
		codec, ok := f.codecs[filepath.Base(args[len(args)-1])]
		if !ok {
			return ffmpeg.ExecResult{ExitCode: 1, Err: errors.New("exit status 1")}
		}
		js := fmt.Sprintf(`{"streams":[`+
			`{"index":0,"codec_type":"video","codec_name":%q,"width":640,"height":360,"pix_fmt":"yuv420p","avg_frame_rate":"25/1"},`+
			`{"index":1,"codec_type":"audio","codec_name":"aac"}],`+
			`"format":{"duration":"1.0"}}`, codec)
		return ffmpeg.ExecResult{Stdout: []byte(js)}
	case "ffmpeg":
		if f.onFFmpeg != nil {
			f.onFFmpeg()
		}
		in, out := argAfter(args, "-i"), args[len(args)-1]
		stem := strings.TrimSuffix(filepath.Base(out), filepath.Ext(out))
		stem = strings.TrimSuffix(strings.TrimSuffix(stem, "_corrupted"), "_glitch")
		corrupting := strings.HasSuffix(out, "_corrupted.mp4")

		if (corrupting && f.failCorrupt[stem]) || (!corrupting && f.failReencode[stem]) {
			_ = afero.WriteFile(f.fs, out, []byte("partial"), 0o644)
			return ffmpeg.ExecResult{
				ExitCode: 1,
				Err:      errors.New("exit status 1"),
				Stderr:   "Error while decoding stream #0:0\nConversion failed!\n",
			}
		}
		if !corrupting && f.silentReencode[stem] {
			return ffmpeg.ExecResult{}
		}
		data, err := afero.ReadFile(f.fs, in)
		if err != nil {
			return ffmpeg.ExecResult{ExitCode: 1, Err: err, Stderr: in + ": No such file or directory"}
		}
		_ = afero.WriteFile(f.fs, out, append(data, "+pass"...), 0o644)
		return ffmpeg.ExecResult{}
	}
	return ffmpeg.ExecResult{ExitCode: -1, Err: fmt.Errorf("exec: %q: executable file not found in $PATH", name)}
}

func (f *fakeTools) ffmpegCalls() int {
	n := 0
	for _, c := range f.calls {
		if c[0] == "ffmpeg" {
			n++
		}
	}
	return n
}

func argAfter(args []string, flag string) string {
	for i := 0; i+1 < len(args); i++ {
		if args[i] == flag {
			return args[i+1]
		}
	}
	return ""
}

// --- Harness ---

type harness struct {
	fs    afero.Fs
	tools *fakeTools
	cfg   config.Config
	out   *bytes.Buffer
	p     *Pipeline
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	fs := afero.NewMemMapFs()
	cfg := config.DefaultConfig()
	cfg.InputDir = inDir
	cfg.OutputDir = outDir
	cfg.ColorMode = config.ColorNever

	var buf bytes.Buffer
	log, err := logging.New(&buf, &cfg)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { log.Close() })

	tools := newFakeTools(fs)
	h := &harness{fs: fs, tools: tools, cfg: cfg, out: &buf}
	h.p = New(&h.cfg, fs, tools, log)
	return h
}

func (h *harness) addInput(t *testing.T, name, codec string) string {
	t.Helper()
	path := filepath.Join(inDir, name)
	if err := afero.WriteFile(h.fs, path, []byte("video:"+name), 0o644); err != nil {
		t.Fatal(err)
	}
	if codec != "" {
		h.tools.codecs[name] = codec
	}
	return path
}

func (h *harness) exists(path string) bool {
	ok, _ := afero.Exists(h.fs, path)
	return ok
}

func (h *harness) outputs(t *testing.T) []string {
	t.Helper()
	entries, err := afero.ReadDir(h.fs, outDir)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

// --- Discover tests ---

func TestDiscover_FiltersAndSorts(t *testing.T) {
	fs := afero.NewMemMapFs()
	for _, name := range []string{"b.mp4", "a.mp4", "c.MP4", "d.mkv", "notes.txt", ".hidden.mp4", "e.mp4.part"} {
		afero.WriteFile(fs, filepath.Join(inDir, name), nil, 0o644)
	}
	fs.MkdirAll(filepath.Join(inDir, "dir.mp4"), 0o755)
	afero.WriteFile(fs, filepath.Join(inDir, "sub", "nested.mp4"), nil, 0o644)

	files, err := Discover(fs, inDir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	want := []string{
		filepath.Join(inDir, ".hidden.mp4"),
		filepath.Join(inDir, "a.mp4"),
		filepath.Join(inDir, "b.mp4"),
	}
	if strings.Join(files, ",") != strings.Join(want, ",") {
		t.Errorf("got %v, want %v", files, want)
	}
}

func TestDiscover_EmptyAndMissing(t *testing.T) {
	fs := afero.NewMemMapFs()
	fs.MkdirAll(inDir, 0o755)
	files, err := Discover(fs, inDir)
	if err != nil || len(files) != 0 {
		t.Errorf("empty dir: files=%v err=%v", files, err)
	}
	if _, err := Discover(fs, "/nope"); err == nil {
		t.Error("missing dir: expected error")
	}
}

// --- RunStats tests ---

func TestRunStats_Record(t *testing.T) {
	var s RunStats
	s.Record(Outcome{State: StateDone, InputBytes: 100, OutputBytes: 150})
	s.Record(Outcome{State: StateSkipped})
	s.Record(Outcome{State: StateCorruptFailed})
	s.Record(Outcome{State: StateReencodeFailed})
	if s.Done != 1 || s.Skipped != 1 || s.Failed != 2 {
		t.Errorf("stats = %+v", s)
	}
	if s.SizeDelta() != 50 {
		t.Errorf("SizeDelta = %d, want 50", s.SizeDelta())
	}
}

func TestStateString(t *testing.T) {
	for s, want := range map[State]string{
		StateSkipped: "skipped", StateCorruptFailed: "corrupt-failed",
		StateReencodeFailed: "reencode-failed", StateDone: "done", State(42): "unknown",
	} {
		if s.String() != want {
			t.Errorf("%d.String() = %q, want %q", int(s), s.String(), want)
		}
	}
}

// --- ProcessFile tests ---

func TestProcessFile_Success(t *testing.T) {
	h := newHarness(t)
	h.fs.MkdirAll(outDir, 0o755)
	in := h.addInput(t, "clip1.mp4", "h264")

	out := h.p.ProcessFile(context.Background(), in)
	if out.State != StateDone {
		t.Fatalf("State = %v (%s)", out.State, out.Reason)
	}
	if out.Output != filepath.Join(outDir, "clip1_glitch.mp4") || !h.exists(out.Output) {
		t.Errorf("final output missing: %q", out.Output)
	}
	if h.exists(filepath.Join(outDir, "clip1_corrupted.mp4")) {
		t.Error("intermediate left behind after success")
	}
	if out.OutputBytes <= out.InputBytes || out.InputBytes == 0 {
		t.Errorf("sizes in=%d out=%d", out.InputBytes, out.OutputBytes)
	}
	if h.tools.ffmpegCalls() != 2 {
		t.Errorf("ffmpeg calls = %d, want 2", h.tools.ffmpegCalls())
	}
	if !strings.Contains(h.out.String(), "Done: clip1_glitch.mp4") {
		t.Errorf("completion line missing:\n%s", h.out.String())
	}
	if !strings.Contains(h.out.String(), "Video: 640x360 | unknown | h264 yuv420p | 25.00 fps | 1 audio | 1.0s") {
		t.Errorf("stats line missing:\n%s", h.out.String())
	}
}

func TestProcessFile_Invocations(t *testing.T) {
	h := newHarness(t)
	h.fs.MkdirAll(outDir, 0o755)
	in := h.addInput(t, "clip1.mp4", "h264")
	h.p.ProcessFile(context.Background(), in)

	if len(h.tools.calls) != 3 {
		t.Fatalf("calls = %d, want probe + 2 ffmpeg", len(h.tools.calls))
	}
	corrupt := strings.Join(h.tools.calls[1], " ")
	for _, want := range []string{
		"-i " + in,
		"-c:v libx264",
		"-x264-params keyint=500:keyint_min=60:bf=8:partitions=none",
		"-bsf:v noise=amount=9000*not(key)",
		"-pix_fmt yuv420p " + filepath.Join(outDir, "clip1_corrupted.mp4"),
	} {
		if !strings.Contains(corrupt, want) {
			t.Errorf("corrupt pass %q missing %q", corrupt, want)
		}
	}
	reencode := strings.Join(h.tools.calls[2], " ")
	for _, want := range []string{
		"-i " + filepath.Join(outDir, "clip1_corrupted.mp4"),
		"-c:v libx264 -preset veryslow -crf 28 " + filepath.Join(outDir, "clip1_glitch.mp4"),
	} {
		if !strings.Contains(reencode, want) {
			t.Errorf("re-encode pass %q missing %q", reencode, want)
		}
	}
}

func TestProcessFile_Skips(t *testing.T) {
	tests := []struct {
		name   string
		codec  string
		reason string
	}{
		{"vp9", "vp9", `codec is "vp9"`},
		{"hevc", "hevc", `codec is "hevc"`},
		{"probe failure", "", "no video stream found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.fs.MkdirAll(outDir, 0o755)
			in := h.addInput(t, "clip.mp4", tt.codec)

			out := h.p.ProcessFile(context.Background(), in)
			if out.State != StateSkipped || !strings.Contains(out.Reason, tt.reason) {
				t.Errorf("outcome = %+v", out)
			}
			if names := h.outputs(t); len(names) != 0 {
				t.Errorf("skip wrote files: %v", names)
			}
			if h.tools.ffmpegCalls() != 0 {
				t.Error("ffmpeg invoked for a skipped file")
			}
			if !strings.Contains(h.out.String(), "Skip clip.mp4") {
				t.Errorf("skip line missing:\n%s", h.out.String())
			}
		})
	}
}

func TestProcessFile_UppercaseH264(t *testing.T) {
	h := newHarness(t)
	h.fs.MkdirAll(outDir, 0o755)
	in := h.addInput(t, "loud.mp4", "H264")
	if out := h.p.ProcessFile(context.Background(), in); out.State != StateDone {
		t.Errorf("State = %v, want done", out.State)
	}
}

func TestProcessFile_CorruptFailure(t *testing.T) {
	h := newHarness(t)
	h.fs.MkdirAll(outDir, 0o755)
	in := h.addInput(t, "bad.mp4", "h264")
	h.tools.failCorrupt["bad"] = true

	out := h.p.ProcessFile(context.Background(), in)
	if out.State != StateCorruptFailed {
		t.Fatalf("State = %v", out.State)
	}
	if !strings.Contains(out.Reason, "status 1") || !strings.Contains(out.Reason, "stream too damaged") {
		t.Errorf("Reason = %q", out.Reason)
	}
	if names := h.outputs(t); len(names) != 0 {
		t.Errorf("artifacts left after corrupt failure: %v", names)
	}
	if h.tools.ffmpegCalls() != 1 {
		t.Errorf("re-encode ran after corrupt failure")
	}
	log := h.out.String()
	if !strings.Contains(log, "Corruption step failed for bad.mp4") || !strings.Contains(log, "| Conversion failed!") {
		t.Errorf("failure log:\n%s", log)
	}
}

func TestProcessFile_ReencodeFailure(t *testing.T) {
	tests := []struct {
		name          string
		keepCorrupted bool
	}{
		{"unified cleanup", false},
		{"keep corrupted", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.cfg.KeepCorrupted = tt.keepCorrupted
			h.fs.MkdirAll(outDir, 0o755)
			in := h.addInput(t, "flaky.mp4", "h264")
			h.tools.failReencode["flaky"] = true

			out := h.p.ProcessFile(context.Background(), in)
			if out.State != StateReencodeFailed {
				t.Fatalf("State = %v", out.State)
			}
			if h.exists(filepath.Join(outDir, "flaky_glitch.mp4")) {
				t.Error("partial final output left behind")
			}
			kept := h.exists(filepath.Join(outDir, "flaky_corrupted.mp4"))
			if kept != tt.keepCorrupted {
				t.Errorf("intermediate kept = %v, want %v", kept, tt.keepCorrupted)
			}
			if !strings.Contains(h.out.String(), "Re-encoding failed for flaky.mp4") {
				t.Errorf("failure log:\n%s", h.out.String())
			}
		})
	}
}

func TestProcessFile_ExitZeroWithoutOutput(t *testing.T) {
	h := newHarness(t)
	h.fs.MkdirAll(outDir, 0o755)
	in := h.addInput(t, "ghost.mp4", "h264")
	h.tools.silentReencode["ghost"] = true

	out := h.p.ProcessFile(context.Background(), in)
	if out.State != StateReencodeFailed || !strings.Contains(out.Reason, "did not create ghost_glitch.mp4") {
		t.Errorf("outcome = %+v", out)
	}
	if names := h.outputs(t); len(names) != 0 {
		t.Errorf("artifacts left: %v", names)
	}
}

// --- Run tests ---

func TestRun_EndToEnd(t *testing.T) {
	h := newHarness(t)
	h.addInput(t, "clip1.mp4", "h264")
	h.addInput(t, "clip2.mp4", "vp9")

	stats, err := h.p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Total != 2 || stats.Done != 1 || stats.Skipped != 1 || stats.Failed != 0 {
		t.Errorf("stats = %+v", stats)
	}

	if !h.exists(filepath.Join(outDir, "clip1_glitch.mp4")) {
		t.Error("output/clip1_glitch.mp4 missing")
	}
	if h.exists(filepath.Join(outDir, "clip1_corrupted.mp4")) {
		t.Error("output/clip1_corrupted.mp4 left behind")
	}
	for _, name := range h.outputs(t) {
		if strings.HasPrefix(name, "clip2_") {
			t.Errorf("unexpected %s", name)
		}
	}

	log := h.out.String()
	if n := strings.Count(log, "Skip clip2.mp4"); n != 1 {
		t.Errorf("skip lines for clip2.mp4 = %d, want 1", n)
	}
	if n := strings.Count(log, "Done: clip1_glitch.mp4"); n != 1 {
		t.Errorf("completion lines for clip1 = %d, want 1", n)
	}
	for _, want := range []string{"Glitch-Art Batch Processor", "Found 2 MP4 file(s)", "[1/2] clip1.mp4", "[2/2] clip2.mp4", "=== Done ==="} {
		if !strings.Contains(log, want) {
			t.Errorf("log missing %q:\n%s", want, log)
		}
	}
	if strings.Index(log, "[1/2]") > strings.Index(log, "[2/2]") {
		t.Error("files not processed in enumeration order")
	}
}

func TestRun_FailuresDoNotStopBatch(t *testing.T) {
	h := newHarness(t)
	h.addInput(t, "a.mp4", "h264")
	h.addInput(t, "b.mp4", "h264")
	h.addInput(t, "c.mp4", "h264")
	h.tools.failCorrupt["a"] = true
	h.tools.failReencode["b"] = true

	stats, err := h.p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Failed != 2 || stats.Done != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if names := h.outputs(t); len(names) != 1 || names[0] != "c_glitch.mp4" {
		t.Errorf("outputs = %v, want [c_glitch.mp4]", names)
	}
	if !strings.Contains(h.out.String(), "=== Done ===") {
		t.Error("completion banner missing after failures")
	}
}

func TestRun_NoFiles(t *testing.T) {
	h := newHarness(t)
	h.fs.MkdirAll(inDir, 0o755)
	afero.WriteFile(h.fs, filepath.Join(inDir, "readme.txt"), nil, 0o644)

	stats, err := h.p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Total != 0 {
		t.Errorf("Total = %d", stats.Total)
	}
	if ok, _ := afero.DirExists(h.fs, outDir); !ok {
		t.Error("output directory not created")
	}
	if !strings.Contains(h.out.String(), "No .mp4 files found") {
		t.Errorf("none-found message missing:\n%s", h.out.String())
	}
}

func TestRun_OutputDirIdempotent(t *testing.T) {
	h := newHarness(t)
	h.fs.MkdirAll(inDir, 0o755)
	h.fs.MkdirAll(outDir, 0o755)
	afero.WriteFile(h.fs, filepath.Join(outDir, "old_glitch.mp4"), []byte("x"), 0o644)
	if _, err := h.p.Run(context.Background()); err != nil {
		t.Fatalf("Run with existing output dir: %v", err)
	}
	if !h.exists(filepath.Join(outDir, "old_glitch.mp4")) {
		t.Error("existing output was touched")
	}
}

func TestRun_InputMissing(t *testing.T) {
	h := newHarness(t)
	_, err := h.p.Run(context.Background())
	if !errors.Is(err, ErrInputMissing) {
		t.Fatalf("err = %v, want ErrInputMissing", err)
	}
	if ok, _ := afero.DirExists(h.fs, outDir); ok {
		t.Error("output directory created although input is missing")
	}
}

func TestRun_InputIsAFile(t *testing.T) {
	h := newHarness(t)
	afero.WriteFile(h.fs, inDir, []byte("not a dir"), 0o644)
	if _, err := h.p.Run(context.Background()); !errors.Is(err, ErrInputMissing) {
		t.Errorf("err = %v, want ErrInputMissing", err)
	}
}

func TestRun_OutputDirNotCreatable(t *testing.T) {
	h := newHarness(t)
	h.fs.MkdirAll(inDir, 0o755)
	h.p.fs = afero.NewReadOnlyFs(h.fs)
	_, err := h.p.Run(context.Background())
	if err == nil || errors.Is(err, ErrInputMissing) {
		t.Errorf("err = %v, want output directory error", err)
	}
}

func TestRun_InterruptStopsBetweenFiles(t *testing.T) {
	h := newHarness(t)
	h.addInput(t, "a.mp4", "h264")
	h.addInput(t, "b.mp4", "h264")
	h.addInput(t, "c.mp4", "h264")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	// Cancel during the first file's re-encode; the fake still completes it.
	calls := 0
	h.tools.onFFmpeg = func() {
		calls++
		if calls == 2 {
			cancel()
		}
	}

	stats, err := h.p.Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !stats.Interrupted || stats.Current != 1 {
		t.Errorf("stats = %+v, want interrupted after first file", stats)
	}
	if h.exists(filepath.Join(outDir, "b_glitch.mp4")) {
		t.Error("processing continued after interrupt")
	}
	if !strings.Contains(h.out.String(), "Interrupted, 2 file(s) not processed") {
		t.Errorf("interrupt line missing:\n%s", h.out.String())
	}
}

// --- Real ffmpeg integration test ---

func TestRun_InterruptDuringLastFile(t *testing.T) {
	h := newHarness(t)
	h.addInput(t, "a.mp4", "h264")
	h.addInput(t, "b.mp4", "h264")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	calls := 0
	h.tools.onFFmpeg = func() {
		calls++
		if calls == 4 {
			cancel()
		}
	}

	stats, err := h.p.Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !stats.Interrupted || stats.Current != 2 {
		t.Errorf("stats = %+v, want interrupted on the last file", stats)
	}
	log := h.out.String()
	if !strings.Contains(log, "Interrupted, 0 file(s) not processed") {
		t.Errorf("interrupt line missing:\n%s", log)
	}
	if strings.Index(log, "Interrupted") > strings.Index(log, "Summary:") {
		t.Error("interrupt not reported before the summary")
	}
}

func TestRun_RealTools(t *testing.T) {
	for _, bin := range []string{"ffmpeg", "ffprobe"} {
		if _, err := exec.LookPath(bin); err != nil {
			t.Skipf("%s not available", bin)
		}
	}

	root := t.TempDir()
	input := filepath.Join(root, "input")
	output := filepath.Join(root, "output")
	if err := os.MkdirAll(input, 0o755); err != nil {
		t.Fatal(err)
	}

	gen := func(name, codec string) {
		cmd := exec.Command("ffmpeg", "-hide_banner", "-loglevel", "error",
			"-f", "lavfi", "-i", "testsrc=duration=1:size=320x240:rate=24",
			"-c:v", codec, "-pix_fmt", "yuv420p",
			"-y", filepath.Join(input, name))
		cmd.Stderr = os.Stderr
		if err := cmd.Run(); err != nil {
			t.Skipf("cannot generate %s with %s: %v", name, codec, err)
		}
	}
	gen("clip1.mp4", "libx264")
	gen("clip2.mp4", "mpeg4")

	cfg := config.DefaultConfig()
	cfg.InputDir = input
	cfg.OutputDir = output
	cfg.ColorMode = config.ColorNever
	cfg.ReencodePreset = "ultrafast"

	var buf bytes.Buffer
	log, err := logging.New(&buf, &cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer log.Close()

	stats, err := New(&cfg, afero.NewOsFs(), ffmpeg.ExecRunner{}, log).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	t.Logf("Total=%d Done=%d Skipped=%d Failed=%d", stats.Total, stats.Done, stats.Skipped, stats.Failed)

	if stats.Total != 2 || stats.Skipped != 1 {
		t.Errorf("stats = %+v, want 2 total, 1 skipped", stats)
	}
	if _, err := os.Stat(filepath.Join(output, "clip1_corrupted.mp4")); err == nil {
		t.Error("intermediate left behind")
	}
	_, finalErr := os.Stat(filepath.Join(output, "clip1_glitch.mp4"))
	if stats.Done == 1 && finalErr != nil {
		t.Error("clip1 reported done but clip1_glitch.mp4 is missing")
	}
	if stats.Done == 0 && finalErr == nil {
		t.Error("clip1 failed but clip1_glitch.mp4 exists")
	}
	matches, _ := filepath.Glob(filepath.Join(output, "clip2_*"))
	if len(matches) != 0 {
		t.Errorf("clip2 artifacts: %v", matches)
	}
}
