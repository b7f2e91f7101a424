// lowerthirdd is the lowerthird rendering microservice. It follows the
// container conventions of the legacy service: OUTPUT_DIR and
// LISTEN_ADDR environment overrides, JSON API on :5000.
package main

import (
	"flag"

	"github.com/datadash/lowerthird/internal/compose"
	"github.com/datadash/lowerthird/internal/config"
	"github.com/datadash/lowerthird/internal/engine"
	"github.com/datadash/lowerthird/internal/logging"
	"github.com/datadash/lowerthird/internal/server"
	"github.com/datadash/lowerthird/internal/system"
	"github.com/datadash/lowerthird/internal/video"
)

func main() {
	configPtr := flag.String("config", "", "Path to YAML config file")
	listenPtr := flag.String("listen", "", "Listen address (overrides config)")
	outputPtr := flag.String("output-dir", "", "Output directory (overrides config)")
	verbosePtr := flag.Bool("verbose", false, "Debug logging")
	flag.Parse()

	cfg, err := config.Load(*configPtr)
	if err != nil {
		logging.Init(true)
		bootLog := logging.WithComponent("main")
		bootLog.Fatal().Err(err).Msg("load config")
	}
	if *listenPtr != "" {
		cfg.ListenAddr = *listenPtr
	}
	if *outputPtr != "" {
		cfg.OutputDir = *outputPtr
	}
	if *verbosePtr {
		cfg.Verbose = true
	}

	logging.Init(cfg.Verbose)
	log := logging.WithComponent("main")

	system.InitResourceLimits()
	if err := system.EnsureOutputDir(cfg.OutputDir); err != nil {
		log.Fatal().Err(err).Msg("output dir")
	}

	composer, err := compose.New()
	if err != nil {
		log.Fatal().Err(err).Msg("init composer")
	}

	assembler, ext := video.ForConfig(cfg)
	if ext == "avi" && cfg.Container != "avi" {
		log.Warn().Msg("ffmpeg not found, falling back to built-in AVI container")
	}

	eng := engine.New(cfg, composer, assembler)
	srv := server.New(cfg, eng, ext)

	log.Info().
		Str("output_dir", cfg.OutputDir).
		Str("container", ext).
		Msg("lowerthird service starting")
	if err := srv.ListenAndServe(); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
