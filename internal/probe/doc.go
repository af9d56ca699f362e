// Package probe provides ffprobe-based codec inspection. A single JSON call
// per file yields the primary video stream (cover-art streams are ignored)
// plus the fields shown in per-file stats.
//
// [Prober.Inspect] never returns an error: a failed probe is logged and
// reported as absent (ok=false) so the batch skips the file. The codec of
// the result is read with [ProbeResult.VideoCodec].
package probe
