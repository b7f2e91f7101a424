package system

import (
	"image"
	"os"
	"path/filepath"
	"testing"
)

func TestRenderWorkersPositive(t *testing.T) {
	if w := RenderWorkers(); w < 1 {
		t.Errorf("RenderWorkers() = %d, want >= 1", w)
	}
}

func TestDefaultQuality(t *testing.T) {
	tests := map[string]int{
		"h264_videotoolbox": 75,
		"h264_nvenc":        28,
		"libx264":           23,
		"":                  23,
	}
	for enc, want := range tests {
		if got := DefaultQuality(enc); got != want {
			t.Errorf("DefaultQuality(%q) = %d, want %d", enc, got, want)
		}
	}
}

func TestEnsureOutputDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "clips")
	if err := EnsureOutputDir(dir); err != nil {
		t.Fatalf("EnsureOutputDir: %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Errorf("output dir not created: %v", err)
	}
}

func TestImagePoolRoundTrip(t *testing.T) {
	rect := image.Rect(0, 0, 64, 64)
	img := GetImage(rect)
	if img.Bounds() != rect {
		t.Fatalf("pooled image bounds = %v, want %v", img.Bounds(), rect)
	}
	PutImage(img)

	again := GetImage(rect)
	if again.Bounds() != rect {
		t.Errorf("reused image bounds = %v, want %v", again.Bounds(), rect)
	}
	PutImage(again)

	// nil must be a no-op, not a panic
	PutImage(nil)
}
