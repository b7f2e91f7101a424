// Package sequence maps wall-clock duration and frame rate onto the
// per-frame animation timeline of a lowerthird: which frames belong to
// the entrance, the hold and the exit, and how far "in" the banner is
// on each of them.
package sequence

import (
	"math"

	"github.com/datadash/lowerthird/internal/easing"
)

// Phase tags where a frame sits in the banner envelope.
type Phase int

const (
	Entering Phase = iota
	Holding
	Exiting
)

func (p Phase) String() string {
	switch p {
	case Entering:
		return "entering"
	case Holding:
		return "holding"
	case Exiting:
		return "exiting"
	}
	return "unknown"
}

// Step describes one frame of the timeline. Progress is in [0,1]:
// 0 means the banner is fully off-screen, 1 fully in place.
type Step struct {
	Index    int
	Phase    Phase
	Progress float64
}

// Plan is the immutable timeline for one clip. Steps can be read any
// number of times and in any order; At is a pure function of the index.
type Plan struct {
	frames int
	enter  int
	exit   int
}

// NewPlan computes the frame windows for a clip of the given duration.
//
// The frame count is round(duration*fps), never less than one. The
// entrance window is min(frames/4, fps/2) frames, the exit window the
// same size at the tail. Short clips shrink deterministically: the
// windows are clamped to at least one frame each and, when they would
// overlap, cut to frames/2 apiece so together they never exceed the
// clip. The hold may then be empty. A one-frame clip has no entrance or
// exit and shows the banner fully in place.
func NewPlan(durationSec float64, fps int) Plan {
	frames := int(math.Round(durationSec * float64(fps)))
	if frames < 1 {
		frames = 1
	}

	enter := frames / 4
	if m := fps / 2; enter > m {
		enter = m
	}
	if enter < 1 {
		enter = 1
	}
	exit := enter

	if enter+exit > frames {
		enter = frames / 2
		exit = frames / 2
	}

	return Plan{frames: frames, enter: enter, exit: exit}
}

// Len returns the total number of frames in the clip.
func (p Plan) Len() int { return p.frames }

// EnterFrames returns the length of the entrance window.
func (p Plan) EnterFrames() int { return p.enter }

// ExitFrames returns the length of the exit window.
func (p Plan) ExitFrames() int { return p.exit }

// At returns the step for frame i. i must be in [0, Len()).
func (p Plan) At(i int) Step {
	switch {
	case i < p.enter:
		return Step{
			Index:    i,
			Phase:    Entering,
			Progress: easing.InOutQuart(float64(i) / float64(p.enter)),
		}
	case i >= p.frames-p.exit:
		j := i - (p.frames - p.exit)
		return Step{
			Index:    i,
			Phase:    Exiting,
			Progress: 1 - easing.InOutSine(float64(j)/float64(p.exit)),
		}
	default:
		return Step{Index: i, Phase: Holding, Progress: 1}
	}
}

// Steps materializes the whole timeline in frame order.
func (p Plan) Steps() []Step {
	out := make([]Step, p.frames)
	for i := range out {
		out[i] = p.At(i)
	}
	return out
}
