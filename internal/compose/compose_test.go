package compose

import (
	"bytes"
	"image"
	"strings"
	"testing"

	"github.com/datadash/lowerthird/internal/config"
	"github.com/datadash/lowerthird/internal/style"
)

func testRequest(w, h int) config.RenderRequest {
	return config.RenderRequest{
		MainTitle: "DataDash",
		Subtitle:  "Fortinet Security Deep Dive",
		Duration:  4.0,
		Style:     "cloud_blue",
		FrameRate: 30,
		Width:     w,
		Height:    h,
	}
}

func mustComposer(t *testing.T) *Composer {
	t.Helper()
	c, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func mustProfile(t *testing.T, name string) style.Profile {
	t.Helper()
	p, err := style.Resolve(name)
	if err != nil {
		t.Fatalf("Resolve(%q): %v", name, err)
	}
	return p
}

func TestComposeDeterministic(t *testing.T) {
	c := mustComposer(t)
	p := mustProfile(t, "cloud_blue")
	req := testRequest(320, 180)

	for _, progress := range []float64{0, 0.25, 0.5, 0.75, 1} {
		a, err := c.Compose(p, req, progress)
		if err != nil {
			t.Fatalf("Compose(progress=%v): %v", progress, err)
		}
		b, err := c.Compose(p, req, progress)
		if err != nil {
			t.Fatalf("Compose(progress=%v): %v", progress, err)
		}
		if !bytes.Equal(a.Pix, b.Pix) {
			t.Errorf("progress=%v: two identical calls produced different pixels", progress)
		}
	}
}

func TestComposeProgressZeroIsBackgroundOnly(t *testing.T) {
	c := mustComposer(t)
	p := mustProfile(t, "cloud_blue")
	req := testRequest(320, 180)

	frame, err := c.Compose(p, req, 0)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	for i := 0; i < len(frame.Pix); i += 4 {
		if frame.Pix[i] != p.Background.R || frame.Pix[i+1] != p.Background.G ||
			frame.Pix[i+2] != p.Background.B || frame.Pix[i+3] != 255 {
			t.Fatalf("pixel %d not background at progress 0: %v", i/4, frame.Pix[i:i+4])
		}
	}
}

func TestComposeFullProgressShowsBand(t *testing.T) {
	c := mustComposer(t)
	p := mustProfile(t, "cloud_blue")
	req := testRequest(320, 180)

	frame, err := c.Compose(p, req, 1)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}

	// Sample a band pixel between the badge and the text column.
	got := frame.RGBAAt(30, 150)
	if got.R != p.Primary.R || got.G != p.Primary.G || got.B != p.Primary.B {
		t.Errorf("band pixel = %v, want primary %v", got, p.Primary)
	}

	// The accent strip sits on the band's left edge.
	strip := frame.RGBAAt(9, 150)
	if strip.R != p.Accent.R || strip.G != p.Accent.G || strip.B != p.Accent.B {
		t.Errorf("strip pixel = %v, want accent %v", strip, p.Accent)
	}
}

func TestComposeProgressChangesFrame(t *testing.T) {
	c := mustComposer(t)
	p := mustProfile(t, "tech")
	req := testRequest(320, 180)

	half, err := c.Compose(p, req, 0.5)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	full, err := c.Compose(p, req, 1)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if bytes.Equal(half.Pix, full.Pix) {
		t.Error("progress 0.5 and 1 rendered identically")
	}
}

func TestComposeResolution(t *testing.T) {
	c := mustComposer(t)
	p := mustProfile(t, "minimal")

	for _, res := range [][2]int{{1920, 1080}, {1080, 1920}, {640, 360}} {
		req := testRequest(res[0], res[1])
		frame, err := c.Compose(p, req, 1)
		if err != nil {
			t.Fatalf("Compose(%dx%d): %v", res[0], res[1], err)
		}
		if frame.Bounds() != image.Rect(0, 0, res[0], res[1]) {
			t.Errorf("frame bounds = %v, want %dx%d", frame.Bounds(), res[0], res[1])
		}
	}
}

func TestComposeLongTitleClipsSilently(t *testing.T) {
	c := mustComposer(t)
	p := mustProfile(t, "corporate")
	req := testRequest(320, 180)
	req.MainTitle = strings.Repeat("VeryLongTitle", 8)

	if _, err := c.Compose(p, req, 1); err != nil {
		t.Fatalf("long title should clip, not fail: %v", err)
	}
}

func TestComposeQRBadge(t *testing.T) {
	c := mustComposer(t)
	p := mustProfile(t, "cloud_blue")
	req := testRequest(640, 360)
	req.QRLink = "https://community.fortinet.com"

	a, err := c.Compose(p, req, 1)
	if err != nil {
		t.Fatalf("Compose with QR: %v", err)
	}
	b, err := c.Compose(p, req, 1)
	if err != nil {
		t.Fatalf("Compose with QR: %v", err)
	}
	if !bytes.Equal(a.Pix, b.Pix) {
		t.Error("QR badge rendering is not deterministic")
	}

	plain := req
	plain.QRLink = ""
	pf, err := c.Compose(p, plain, 1)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if bytes.Equal(a.Pix, pf.Pix) {
		t.Error("QR badge did not change the frame")
	}
}

func TestMonogram(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"DataDash", "D"},
		{"Data Dash", "DD"},
		{"secure access service edge", "SA"},
		{"", "?"},
	}
	for _, tt := range tests {
		if got := monogram(tt.title); got != tt.want {
			t.Errorf("monogram(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}
