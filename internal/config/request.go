package config

import (
	"fmt"
	"strings"
)

// Validation errors reported to the caller. The pipeline itself never
// validates; a request reaching the engine has already passed Validate.
var (
	ErrInvalidDuration = fmt.Errorf("duration must be a positive number")
	ErrEmptyTitle      = fmt.Errorf("main_title must not be empty")
	ErrTextTooLong     = fmt.Errorf("title or subtitle too long (max %d chars)", MaxTextLen)
	ErrBadResolution   = fmt.Errorf("width and height must be positive")
)

// RenderRequest describes one lowerthird clip. It is immutable once
// validated; the engine treats it as a value.
type RenderRequest struct {
	MainTitle string
	Subtitle  string
	Duration  float64 // seconds
	Style     string
	FrameRate int
	Width     int
	Height    int
	QRLink    string // optional URL rendered as a QR badge in the band
}

// Normalize fills unset fields with the service defaults.
func (r *RenderRequest) Normalize() {
	if r.FrameRate <= 0 {
		r.FrameRate = DefaultFPS
	}
	if r.Width <= 0 && r.Height <= 0 {
		r.Width, r.Height = DefaultWidth, DefaultHeight
	}
	if r.Style == "" {
		r.Style = DefaultStyle
	}
	r.MainTitle = strings.TrimSpace(r.MainTitle)
	r.Subtitle = strings.TrimSpace(r.Subtitle)
}

// Validate checks everything except the style name, which the boundary
// resolves against the catalog before any frame is computed.
func (r *RenderRequest) Validate() error {
	if r.MainTitle == "" {
		return ErrEmptyTitle
	}
	if len(r.MainTitle) > MaxTextLen || len(r.Subtitle) > MaxTextLen {
		return ErrTextTooLong
	}
	if r.Duration <= 0 {
		return ErrInvalidDuration
	}
	if r.Width <= 0 || r.Height <= 0 {
		return ErrBadResolution
	}
	return nil
}
