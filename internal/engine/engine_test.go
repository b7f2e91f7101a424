package engine

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/datadash/lowerthird/internal/compose"
	"github.com/datadash/lowerthird/internal/config"
	"github.com/datadash/lowerthird/internal/sequence"
	"github.com/datadash/lowerthird/internal/style"
	"github.com/datadash/lowerthird/internal/system"
	"github.com/datadash/lowerthird/internal/video"
)

// fakeAssembler records everything the engine hands to the sink.
type fakeAssembler struct {
	opened     bool
	writeErrAt int // fail the write with this index, -1 = never
	closeErr   error
	sink       *fakeSink
}

func newFakeAssembler() *fakeAssembler {
	return &fakeAssembler{writeErrAt: -1}
}

func (f *fakeAssembler) Open(ctx context.Context, path string, fps, width, height int) (video.Sink, error) {
	f.opened = true
	// Simulate the partial file a real sink leaves behind.
	if err := os.WriteFile(path, []byte("partial"), 0644); err != nil {
		return nil, err
	}
	f.sink = &fakeSink{writeErrAt: f.writeErrAt, closeErr: f.closeErr}
	return f.sink, nil
}

type fakeSink struct {
	hashes     []uint64
	writeErrAt int
	closeErr   error
	closed     bool
}

func (s *fakeSink) WriteFrame(img *image.RGBA) error {
	if s.writeErrAt >= 0 && len(s.hashes) == s.writeErrAt {
		return fmt.Errorf("injected write failure")
	}
	s.hashes = append(s.hashes, hashPix(img))
	return nil
}

func (s *fakeSink) Close() error {
	s.closed = true
	return s.closeErr
}

func hashPix(img *image.RGBA) uint64 {
	h := fnv.New64a()
	h.Write(img.Pix)
	return h.Sum64()
}

func testRequest() config.RenderRequest {
	return config.RenderRequest{
		MainTitle: "DataDash",
		Subtitle:  "Fortinet Security Deep Dive",
		Duration:  0.5,
		Style:     "cloud_blue",
		FrameRate: 30,
		Width:     320,
		Height:    180,
	}
}

func newTestEngine(t *testing.T, fake *fakeAssembler, workers int) *Engine {
	t.Helper()
	composer, err := compose.New()
	if err != nil {
		t.Fatalf("compose.New: %v", err)
	}
	cfg := config.Default()
	cfg.Workers = workers
	return New(cfg, composer, fake)
}

func TestRenderFrameCountAndOrder(t *testing.T) {
	fake := newFakeAssembler()
	eng := newTestEngine(t, fake, 4)
	req := testRequest()
	outPath := filepath.Join(t.TempDir(), "clip.mp4")

	res, err := eng.Render(context.Background(), req, outPath)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if res.Frames != 15 {
		t.Errorf("Frames = %d, want 15", res.Frames)
	}
	if len(fake.sink.hashes) != 15 {
		t.Fatalf("sink received %d frames, want 15", len(fake.sink.hashes))
	}
	if !fake.sink.closed {
		t.Error("sink was not closed")
	}

	// Frames must arrive in frame order regardless of compose
	// interleaving: compare with a sequential reference render.
	composer, err := compose.New()
	if err != nil {
		t.Fatalf("compose.New: %v", err)
	}
	profile, err := style.Resolve(req.Style)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	plan := sequence.NewPlan(req.Duration, req.FrameRate)
	for i := 0; i < plan.Len(); i++ {
		img, err := composer.Compose(profile, req, plan.At(i).Progress)
		if err != nil {
			t.Fatalf("reference compose %d: %v", i, err)
		}
		want := hashPix(img)
		system.PutImage(img)
		if fake.sink.hashes[i] != want {
			t.Errorf("frame %d out of order or corrupted", i)
		}
	}
}

func TestRenderUnknownStyleRejectedBeforeSink(t *testing.T) {
	fake := newFakeAssembler()
	eng := newTestEngine(t, fake, 2)
	req := testRequest()
	req.Style = "nonexistent"

	_, err := eng.Render(context.Background(), req, filepath.Join(t.TempDir(), "clip.mp4"))
	if err == nil {
		t.Fatal("expected error for unknown style")
	}
	if !errors.Is(err, style.ErrUnknownStyle) {
		t.Errorf("error = %v, want ErrUnknownStyle", err)
	}
	if fake.opened {
		t.Error("sink was opened before style validation")
	}
}

func TestRenderRemovesPartialFileOnWriteError(t *testing.T) {
	fake := newFakeAssembler()
	fake.writeErrAt = 3
	eng := newTestEngine(t, fake, 2)
	outPath := filepath.Join(t.TempDir(), "clip.mp4")

	_, err := eng.Render(context.Background(), testRequest(), outPath)
	if err == nil {
		t.Fatal("expected error from failing sink")
	}
	if _, statErr := os.Stat(outPath); !os.IsNotExist(statErr) {
		t.Errorf("partial output file was not removed: %v", statErr)
	}
}

func TestRenderRemovesFileOnCloseError(t *testing.T) {
	fake := newFakeAssembler()
	fake.closeErr = fmt.Errorf("injected close failure")
	eng := newTestEngine(t, fake, 2)
	outPath := filepath.Join(t.TempDir(), "clip.mp4")

	_, err := eng.Render(context.Background(), testRequest(), outPath)
	if err == nil {
		t.Fatal("expected error from failing close")
	}
	if _, statErr := os.Stat(outPath); !os.IsNotExist(statErr) {
		t.Errorf("output file was not removed: %v", statErr)
	}
}

func TestRenderSingleWorker(t *testing.T) {
	fake := newFakeAssembler()
	eng := newTestEngine(t, fake, 1)
	outPath := filepath.Join(t.TempDir(), "clip.mp4")

	res, err := eng.Render(context.Background(), testRequest(), outPath)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if res.Frames != len(fake.sink.hashes) {
		t.Errorf("result reports %d frames, sink saw %d", res.Frames, len(fake.sink.hashes))
	}
}

func TestRenderEchoesParameters(t *testing.T) {
	fake := newFakeAssembler()
	eng := newTestEngine(t, fake, 2)
	req := testRequest()
	outPath := filepath.Join(t.TempDir(), "clip.mp4")

	res, err := eng.Render(context.Background(), req, outPath)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if res.Path != outPath || res.Style != "cloud_blue" ||
		res.Width != 320 || res.Height != 180 || res.FPS != 30 {
		t.Errorf("result does not echo request: %+v", res)
	}
}
