// Package style holds the fixed catalog of brand palettes a lowerthird
// can be rendered with. The catalog is built once at init and is
// read-only afterwards; concurrent lookups need no locking.
package style

import (
	"fmt"
	"image/color"
	"sort"
)

// ErrUnknownStyle is returned by Resolve for names that are not registered.
var ErrUnknownStyle = fmt.Errorf("unknown style")

// Profile is an immutable set of colors applied uniformly to one clip.
// Identity is the Name; two profiles with the same name are the same style.
type Profile struct {
	Name       string
	Primary    color.NRGBA // banner band
	Secondary  color.NRGBA // subtitle text
	Accent     color.NRGBA // accent strip and badge outline
	Text       color.NRGBA // title text
	Background color.NRGBA // base plate behind the banner
}

var (
	white = color.NRGBA{255, 255, 255, 255}
	black = color.NRGBA{0, 0, 0, 255}
)

var catalog = map[string]Profile{
	"cloud_blue": {
		Name:       "cloud_blue",
		Primary:    color.NRGBA{45, 151, 255, 255},
		Secondary:  color.NRGBA{200, 220, 255, 255},
		Accent:     color.NRGBA{200, 220, 255, 255},
		Text:       white,
		Background: black,
	},
	"secure_red": {
		Name:       "secure_red",
		Primary:    color.NRGBA{218, 41, 28, 255},
		Secondary:  color.NRGBA{255, 190, 180, 255},
		Accent:     color.NRGBA{255, 190, 180, 255},
		Text:       white,
		Background: black,
	},
	"sase_purple": {
		Name:       "sase_purple",
		Primary:    color.NRGBA{122, 81, 220, 255},
		Secondary:  color.NRGBA{210, 190, 255, 255},
		Accent:     color.NRGBA{210, 190, 255, 255},
		Text:       white,
		Background: black,
	},
	"connectivity_yellow": {
		Name:       "connectivity_yellow",
		Primary:    color.NRGBA{255, 185, 0, 255},
		Secondary:  color.NRGBA{255, 235, 170, 255},
		Accent:     color.NRGBA{255, 235, 170, 255},
		Text:       white,
		Background: black,
	},
	"minimal": {
		Name:       "minimal",
		Primary:    color.NRGBA{80, 80, 80, 255},
		Secondary:  color.NRGBA{150, 150, 150, 255},
		Accent:     color.NRGBA{150, 150, 150, 255},
		Text:       white,
		Background: black,
	},
	"corporate": {
		Name:       "corporate",
		Primary:    color.NRGBA{0, 64, 128, 255},
		Secondary:  color.NRGBA{100, 150, 200, 255},
		Accent:     color.NRGBA{100, 150, 200, 255},
		Text:       white,
		Background: black,
	},
	"tech": {
		Name:       "tech",
		Primary:    color.NRGBA{0, 255, 127, 255},
		Secondary:  color.NRGBA{127, 255, 191, 255},
		Accent:     color.NRGBA{127, 255, 191, 255},
		Text:       white,
		Background: black,
	},
}

// names is computed once so Names returns the same ordering on every call.
var names = func() []string {
	out := make([]string, 0, len(catalog))
	for n := range catalog {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}()

// Resolve returns the profile registered under name. Unlike the legacy
// renderer there is no silent fallback: a miss is the caller's error.
func Resolve(name string) (Profile, error) {
	p, ok := catalog[name]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q", ErrUnknownStyle, name)
	}
	return p, nil
}

// Names lists all registered style names in a stable sorted order.
func Names() []string {
	out := make([]string, len(names))
	copy(out, names)
	return out
}
