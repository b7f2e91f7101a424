// Package compose synthesizes single lowerthird frames. Compose is a
// pure function of (profile, request, progress): identical inputs yield
// byte-identical pixel buffers, which makes frames safe to render in
// parallel and reorder afterwards.
//
// Layout is a single fixed template scaled from the 1920x1080 reference:
// a banner band in the lower third with an accent strip on its left
// edge, a brand badge (or QR badge), the title above the subtitle,
// left-aligned with fixed padding. Text is drawn on one line and clipped
// silently at the band edge.
package compose

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"strings"
	"unicode"

	"github.com/skip2/go-qrcode"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/datadash/lowerthird/internal/config"
	"github.com/datadash/lowerthird/internal/easing"
	"github.com/datadash/lowerthird/internal/style"
	"github.com/datadash/lowerthird/internal/system"
)

// Reference geometry at 1080p; everything scales from these.
const (
	refBandX     = 50
	refBandW     = 860
	refBandTop   = 850
	refBandH     = 150
	refStripW    = 12
	refBadgeX    = 70 // absolute, matches legacy logo position
	refBadgeTop  = 30 // relative to band top
	refBadgeSize = 90
	refTextX     = 200
	refTitleBase = 58  // title baseline, relative to band top
	refSubBase   = 112 // subtitle baseline, relative to band top
	refTitleSize = 48
	refSubSize   = 32
	refMonoSize  = 36
)

// Composer renders frames with the embedded Go fonts: bold for titles,
// regular for subtitles. The parsed fonts are immutable and shared; the
// per-size faces are created inside each Compose call because a face is
// not safe for concurrent use.
type Composer struct {
	titleFont *opentype.Font
	bodyFont  *opentype.Font
}

// New parses the embedded fonts once.
func New() (*Composer, error) {
	titleFont, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse title font: %w", err)
	}
	bodyFont, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse body font: %w", err)
	}
	return &Composer{titleFont: titleFont, bodyFont: bodyFont}, nil
}

// Compose renders one frame. progress 0 places the band fully below the
// frame and fully transparent; progress 1 places it at rest, fully
// opaque. Position interpolates linearly against progress (easing has
// already happened in the sequencer).
//
// The returned buffer comes from the shared image pool; hand it back
// with system.PutImage once it has been consumed.
func (c *Composer) Compose(p style.Profile, req config.RenderRequest, progress float64) (*image.RGBA, error) {
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}

	w, h := req.Width, req.Height
	rect := image.Rect(0, 0, w, h)
	frame := system.GetImage(rect)
	draw.Draw(frame, rect, image.NewUniform(p.Background), image.Point{}, draw.Src)

	alpha := uint8(math.Round(255 * progress))
	if alpha == 0 {
		return frame, nil
	}

	sx := float64(w) / 1920
	sy := float64(h) / 1080
	scale := func(v float64, s float64) int { return int(math.Round(v * s)) }

	overlay := system.GetImage(rect)
	defer system.PutImage(overlay)
	draw.Draw(overlay, rect, image.Transparent, image.Point{}, draw.Src)

	// Band slides up from below the frame into its resting position.
	bandTop := int(math.Round(easing.Lerp(float64(h), float64(scale(refBandTop, sy)), progress)))
	bandX := scale(refBandX, sx)
	band := image.Rect(bandX, bandTop, bandX+scale(refBandW, sx), bandTop+scale(refBandH, sy))
	draw.Draw(overlay, band, image.NewUniform(p.Primary), image.Point{}, draw.Src)

	strip := image.Rect(band.Min.X, band.Min.Y, band.Min.X+scale(refStripW, sx), band.Max.Y)
	draw.Draw(overlay, strip, image.NewUniform(p.Accent), image.Point{}, draw.Src)

	if err := c.drawBadge(overlay, p, req, bandTop, sx, sy, progress); err != nil {
		system.PutImage(frame)
		return nil, err
	}

	// Text is clipped to the band; overflow is dropped silently.
	clip := overlay.SubImage(band.Intersect(rect)).(*image.RGBA)

	titleFace, err := c.newFace(c.titleFont, refTitleSize*sy)
	if err != nil {
		system.PutImage(frame)
		return nil, err
	}
	defer titleFace.Close()
	drawString(clip, req.MainTitle, scale(refTextX, sx), bandTop+scale(refTitleBase, sy), p.Text, titleFace)

	if req.Subtitle != "" {
		subFace, err := c.newFace(c.bodyFont, refSubSize*sy)
		if err != nil {
			system.PutImage(frame)
			return nil, err
		}
		defer subFace.Close()
		drawString(clip, req.Subtitle, scale(refTextX, sx), bandTop+scale(refSubBase, sy), p.Secondary, subFace)
	}

	// Whole-band opacity equals progress.
	draw.DrawMask(frame, rect, overlay, image.Point{},
		image.NewUniform(color.Alpha{A: alpha}), image.Point{}, draw.Over)

	return frame, nil
}

// drawBadge renders the brand monogram badge, or a QR badge when the
// request carries a link. The monogram plate fades in ahead of the band
// envelope on an OutQuart curve, so the badge reads first.
func (c *Composer) drawBadge(overlay *image.RGBA, p style.Profile, req config.RenderRequest, bandTop int, sx, sy, progress float64) error {
	size := int(math.Round(refBadgeSize * sy))
	x := int(math.Round(refBadgeX * sx))
	y := bandTop + int(math.Round(refBadgeTop*sy))
	box := image.Rect(x, y, x+size, y+size)

	if req.QRLink != "" {
		qr, err := qrcode.New(req.QRLink, qrcode.Medium)
		if err != nil {
			return fmt.Errorf("qr badge: %w", err)
		}
		draw.Draw(overlay, box, qr.Image(size), image.Point{}, draw.Src)
		return nil
	}

	// Translucent accent plate behind the monogram, like the legacy logo.
	plate := p.Accent
	plate.A = uint8(math.Round(80 * easing.OutQuart(progress)))
	draw.Draw(overlay, box, image.NewUniform(plate), image.Point{}, draw.Over)

	face, err := c.newFace(c.titleFont, refMonoSize*sy)
	if err != nil {
		return err
	}
	defer face.Close()

	mono := monogram(req.MainTitle)
	adv := font.MeasureString(face, mono)
	baseX := x + (size-adv.Ceil())/2
	baseY := y + int(math.Round(float64(size)*0.65))
	drawString(overlay, mono, baseX, baseY, p.Text, face)
	return nil
}

func (c *Composer) newFace(f *opentype.Font, size float64) (font.Face, error) {
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create font face: %w", err)
	}
	return face, nil
}

// drawString draws one line of text with its baseline at (x, y).
func drawString(dst draw.Image, text string, x, y int, col color.Color, face font.Face) {
	drawer := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	drawer.DrawString(text)
}

// monogram extracts up to two initials from the title, e.g.
// "DataDash" -> "D", "Data Dash" -> "DD".
func monogram(title string) string {
	var b strings.Builder
	for i, word := range strings.Fields(title) {
		if i == 2 {
			break
		}
		r := []rune(word)[0]
		b.WriteRune(unicode.ToUpper(r))
	}
	if b.Len() == 0 {
		return "?"
	}
	return b.String()
}
