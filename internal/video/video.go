// Package video is the sink boundary of the render pipeline: it accepts
// an ordered frame sequence plus a frame rate and produces a playable
// file. Frames must be written exactly once each, in increasing index
// order; the engine enforces that ordering.
package video

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os/exec"

	"github.com/datadash/lowerthird/internal/config"
	"github.com/datadash/lowerthird/internal/system"
)

// Sink receives the frames of one clip. Close finalizes the container;
// a sink is single-use and not safe for concurrent writers.
type Sink interface {
	WriteFrame(img *image.RGBA) error
	Close() error
}

// Assembler opens sinks. Implementations: FFmpegAssembler (mp4 via an
// external ffmpeg process) and AVIAssembler (built-in MJPEG AVI).
type Assembler interface {
	Open(ctx context.Context, path string, fps, width, height int) (Sink, error)
}

// AssemblyError wraps any failure at the sink boundary. It usually
// points at an environment problem (missing codec, unwritable output
// directory) and is not retried.
type AssemblyError struct {
	Op   string
	Path string
	Err  error
}

func (e *AssemblyError) Error() string {
	return fmt.Sprintf("video assembly: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *AssemblyError) Unwrap() error { return e.Err }

// ForConfig picks the assembler matching the configured container,
// falling back to the built-in AVI writer when ffmpeg is unavailable.
// It returns the assembler and the file extension it produces.
func ForConfig(cfg *config.Config) (Assembler, string) {
	if cfg.Container == "avi" || !system.HasFFmpeg() {
		return &AVIAssembler{}, "avi"
	}
	enc := cfg.Encoder
	if enc == "" {
		enc = system.BestH264Encoder()
	}
	quality := cfg.Quality
	if quality == 0 {
		quality = system.DefaultQuality(enc)
	}
	return &FFmpegAssembler{Encoder: enc, Quality: quality}, "mp4"
}

// FFmpegAssembler streams raw RGBA frames into an ffmpeg process over
// stdin, one frame per write, and lets ffmpeg do the H.264 encode.
type FFmpegAssembler struct {
	Encoder string // empty = libx264
	Quality int    // 0 = encoder default
}

func (a *FFmpegAssembler) Open(ctx context.Context, path string, fps, width, height int) (Sink, error) {
	encoder := a.Encoder
	if encoder == "" {
		encoder = "libx264"
	}
	quality := a.Quality
	if quality == 0 {
		quality = system.DefaultQuality(encoder)
	}

	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", width, height),
		"-framerate", fmt.Sprintf("%d", fps),
		"-i", "-",
		"-r", fmt.Sprintf("%d", fps),
		"-pix_fmt", "yuv420p",
		"-c:v", encoder,
	}
	switch encoder {
	case "h264_videotoolbox":
		args = append(args, "-b:v", fmt.Sprintf("%dk", quality*100))
	case "h264_nvenc":
		args = append(args, "-cq", fmt.Sprintf("%d", quality))
	default: // libx264
		args = append(args, "-crf", fmt.Sprintf("%d", quality), "-preset", "medium")
	}
	args = append(args, path)

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	var log bytes.Buffer
	cmd.Stdout = &log
	cmd.Stderr = &log

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, &AssemblyError{Op: "open", Path: path, Err: err}
	}
	if err := cmd.Start(); err != nil {
		return nil, &AssemblyError{Op: "open", Path: path, Err: err}
	}

	return &ffmpegSink{cmd: cmd, stdin: stdin, log: &log, path: path}, nil
}

type ffmpegSink struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	log    *bytes.Buffer
	path   string
	closed bool
}

func (s *ffmpegSink) WriteFrame(img *image.RGBA) error {
	if err := writeRawRGBA(s.stdin, img); err != nil {
		return &AssemblyError{Op: "write", Path: s.path, Err: err}
	}
	return nil
}

func (s *ffmpegSink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.stdin.Close()
	if err := s.cmd.Wait(); err != nil {
		return &AssemblyError{
			Op:   "close",
			Path: s.path,
			Err:  fmt.Errorf("%w\nffmpeg log: %s", err, tail(s.log.String(), 2000)),
		}
	}
	return nil
}

// writeRawRGBA dumps the pixel data with a dense stride, converting
// first if the image has padding or a non-zero origin.
func writeRawRGBA(w io.Writer, img *image.RGBA) error {
	bounds := img.Bounds()
	if img.Stride != bounds.Dx()*4 || bounds.Min.X != 0 || bounds.Min.Y != 0 {
		dense := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(dense, dense.Bounds(), img, bounds.Min, draw.Src)
		img = dense
	}
	_, err := w.Write(img.Pix)
	return err
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
