// lowerthird renders one branded title/subtitle clip from the command line.
package main

import (
	"context"
	"flag"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/datadash/lowerthird/internal/compose"
	"github.com/datadash/lowerthird/internal/config"
	"github.com/datadash/lowerthird/internal/engine"
	"github.com/datadash/lowerthird/internal/logging"
	"github.com/datadash/lowerthird/internal/style"
	"github.com/datadash/lowerthird/internal/system"
	"github.com/datadash/lowerthird/internal/video"
)

func main() {
	titlePtr := flag.String("title", "", "Main title text (required)")
	subtitlePtr := flag.String("subtitle", "", "Subtitle text")
	durationPtr := flag.Float64("duration", config.DefaultDuration, "Clip duration in seconds")
	stylePtr := flag.String("style", config.DefaultStyle, "Style name (see -list-styles)")
	fpsPtr := flag.Int("fps", config.DefaultFPS, "Frame rate")
	widthPtr := flag.Int("width", config.DefaultWidth, "Width")
	heightPtr := flag.Int("height", config.DefaultHeight, "Height")
	presetPtr := flag.String("preset", "", "Format preset: 16:9, 9:16 (Shorts/TikTok), 4:5 (Instagram)")
	outputPtr := flag.String("output", "", "Output path (default: auto-generated in outputs/)")
	qrPtr := flag.String("qr", "", "URL rendered as a QR badge instead of the monogram")
	containerPtr := flag.String("container", "mp4", "Output container: mp4 (ffmpeg) or avi (built-in)")
	workersPtr := flag.Int("workers", 0, "Compose workers (0 = auto)")
	qualityPtr := flag.Int("quality", 0, "Encoder quality (0 = auto)")
	listPtr := flag.Bool("list-styles", false, "Print registered styles and exit")
	verbosePtr := flag.Bool("verbose", false, "Debug logging")

	flag.Parse()
	logging.Init(*verbosePtr)
	log := logging.WithComponent("cli")

	if *listPtr {
		for _, name := range style.Names() {
			fmt.Println(name)
		}
		return
	}

	width, height := *widthPtr, *heightPtr
	switch *presetPtr {
	case "16:9":
		width, height = 1920, 1080
	case "9:16":
		width, height = 1080, 1920
	case "4:5":
		width, height = 1080, 1350
	}

	req := config.RenderRequest{
		MainTitle: *titlePtr,
		Subtitle:  *subtitlePtr,
		Duration:  *durationPtr,
		Style:     *stylePtr,
		FrameRate: *fpsPtr,
		Width:     width,
		Height:    height,
		QRLink:    *qrPtr,
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid request")
	}
	if _, err := style.Resolve(req.Style); err != nil {
		log.Fatal().Err(err).Msg("invalid request")
	}

	cfg := config.Default()
	cfg.Container = *containerPtr
	cfg.Workers = *workersPtr
	cfg.Quality = *qualityPtr
	cfg.Verbose = *verbosePtr
	cfg.ApplyEnv()

	assembler, ext := video.ForConfig(cfg)

	outPath := *outputPtr
	if outPath == "" {
		if err := system.EnsureOutputDir(cfg.OutputDir); err != nil {
			log.Fatal().Err(err).Msg("output dir")
		}
		cleanName := strings.ReplaceAll(req.MainTitle, " ", "_")
		timestamp := time.Now().Format("2006-01-02_15-04-05")
		outPath = filepath.Join(cfg.OutputDir, fmt.Sprintf("%s_%s.%s", cleanName, timestamp, ext))
	} else if dir := filepath.Dir(outPath); dir != "." {
		if err := system.EnsureOutputDir(dir); err != nil {
			log.Fatal().Err(err).Msg("output dir")
		}
	}

	composer, err := compose.New()
	if err != nil {
		log.Fatal().Err(err).Msg("init composer")
	}

	eng := engine.New(cfg, composer, assembler)
	res, err := eng.Render(context.Background(), req, outPath)
	if err != nil {
		log.Fatal().Err(err).Msg("render failed")
	}

	log.Info().
		Int("frames", res.Frames).
		Dur("elapsed", res.Elapsed).
		Msg("done")
	fmt.Println(res.Path)
}
