// Package engine runs the per-request render pipeline: resolve the
// style, plan the animation timeline, compose frames in parallel and
// feed them to the video sink in strict frame order.
package engine

import (
	"context"
	"fmt"
	"image"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/datadash/lowerthird/internal/compose"
	"github.com/datadash/lowerthird/internal/config"
	"github.com/datadash/lowerthird/internal/logging"
	"github.com/datadash/lowerthird/internal/sequence"
	"github.com/datadash/lowerthird/internal/style"
	"github.com/datadash/lowerthird/internal/system"
	"github.com/datadash/lowerthird/internal/video"
)

// Engine renders clips. One Engine serves any number of requests;
// each Render call is an independent pipeline run and shares nothing
// mutable with concurrent runs.
type Engine struct {
	cfg       *config.Config
	composer  *compose.Composer
	assembler video.Assembler
}

func New(cfg *config.Config, composer *compose.Composer, assembler video.Assembler) *Engine {
	return &Engine{cfg: cfg, composer: composer, assembler: assembler}
}

// Result echoes the resolved parameters of a finished render.
type Result struct {
	Path     string
	Frames   int
	Style    string
	Width    int
	Height   int
	FPS      int
	Duration float64
	Elapsed  time.Duration
}

type renderedFrame struct {
	index int
	img   *image.RGBA
}

// Render produces the clip described by req at outPath. The request
// must already be validated; the style name is resolved here, before
// any frame is computed or the sink is opened. On any failure after the
// sink opens, the partial output file is removed.
func (e *Engine) Render(ctx context.Context, req config.RenderRequest, outPath string) (*Result, error) {
	log := logging.WithComponent("engine")
	start := time.Now()

	profile, err := style.Resolve(req.Style)
	if err != nil {
		return nil, err
	}

	plan := sequence.NewPlan(req.Duration, req.FrameRate)

	workers := e.cfg.Workers
	if workers <= 0 {
		workers = system.RenderWorkers()
	}
	if workers > plan.Len() {
		workers = plan.Len()
	}

	log.Debug().
		Str("style", profile.Name).
		Int("frames", plan.Len()).
		Int("workers", workers).
		Str("output", outPath).
		Msg("render start")

	sink, err := e.assembler.Open(ctx, outPath, req.FrameRate, req.Width, req.Height)
	if err != nil {
		return nil, err
	}

	if err := e.run(ctx, sink, profile, req, plan, workers); err != nil {
		sink.Close()
		os.Remove(outPath)
		return nil, err
	}
	if err := sink.Close(); err != nil {
		os.Remove(outPath)
		return nil, err
	}

	elapsed := time.Since(start)
	log.Info().
		Str("style", profile.Name).
		Int("frames", plan.Len()).
		Dur("elapsed", elapsed).
		Str("output", outPath).
		Msg("render done")

	return &Result{
		Path:     outPath,
		Frames:   plan.Len(),
		Style:    profile.Name,
		Width:    req.Width,
		Height:   req.Height,
		FPS:      req.FrameRate,
		Duration: req.Duration,
		Elapsed:  elapsed,
	}, nil
}

// run fans frame composition out over the workers and funnels the
// results through a reorder buffer so the sink sees indices 0..N-1 in
// order no matter how composition interleaves. The buffer stays small:
// workers block on the results channel, so at most workers+cap frames
// wait for their turn.
func (e *Engine) run(ctx context.Context, sink video.Sink, profile style.Profile, req config.RenderRequest, plan sequence.Plan, workers int) error {
	g, gctx := errgroup.WithContext(ctx)

	jobs := make(chan sequence.Step)
	results := make(chan renderedFrame, workers)

	g.Go(func() error {
		defer close(jobs)
		for i := 0; i < plan.Len(); i++ {
			select {
			case jobs <- plan.At(i):
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	var composers sync.WaitGroup
	composers.Add(workers)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			defer composers.Done()
			for step := range jobs {
				img, err := e.composer.Compose(profile, req, step.Progress)
				if err != nil {
					return fmt.Errorf("compose frame %d: %w", step.Index, err)
				}
				select {
				case results <- renderedFrame{index: step.Index, img: img}:
				case <-gctx.Done():
					system.PutImage(img)
					return gctx.Err()
				}
			}
			return nil
		})
	}
	go func() {
		composers.Wait()
		close(results)
	}()

	g.Go(func() error {
		pending := make(map[int]*image.RGBA, workers+1)
		next := 0
		defer func() {
			for _, img := range pending {
				system.PutImage(img)
			}
		}()
		for fr := range results {
			pending[fr.index] = fr.img
			for {
				img, ok := pending[next]
				if !ok {
					break
				}
				delete(pending, next)
				err := sink.WriteFrame(img)
				system.PutImage(img)
				if err != nil {
					return err
				}
				next++
			}
		}
		return nil
	})

	return g.Wait()
}
