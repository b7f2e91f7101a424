// Package server exposes the lowerthird renderer over HTTP:
//
//	GET  /health            liveness plus host stats
//	GET  /styles            registered style names
//	POST /create-lowerthird render one clip
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/datadash/lowerthird/internal/config"
	"github.com/datadash/lowerthird/internal/engine"
	"github.com/datadash/lowerthird/internal/logging"
	"github.com/datadash/lowerthird/internal/style"
	"github.com/datadash/lowerthird/internal/system"
)

// Server wires the engine to the HTTP boundary. All request validation
// happens here, before the pipeline starts.
type Server struct {
	cfg    *config.Config
	engine *engine.Engine
	ext    string // output container extension, without the dot
	log    zerolog.Logger
}

func New(cfg *config.Config, eng *engine.Engine, ext string) *Server {
	return &Server{
		cfg:    cfg,
		engine: eng,
		ext:    ext,
		log:    logging.WithComponent("server"),
	}
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /styles", s.handleStyles)
	mux.HandleFunc("POST /create-lowerthird", s.handleCreate)
	return mux
}

// ListenAndServe blocks serving requests on the configured address.
func (s *Server) ListenAndServe() error {
	s.log.Info().Str("addr", s.cfg.ListenAddr).Msg("listening")
	return http.ListenAndServe(s.cfg.ListenAddr, s.Handler())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{"status": "ok"}
	if total, avail, err := system.MemoryStats(); err == nil {
		resp["memory_total_mb"] = total
		resp["memory_available_mb"] = avail
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStyles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"styles": style.Names()})
}

// createRequest is the JSON payload of /create-lowerthird. Field names
// and defaults match the legacy service.
type createRequest struct {
	MainTitle  string  `json:"main_title"`
	Subtitle   string  `json:"subtitle"`
	OutputName string  `json:"output_name"`
	Duration   float64 `json:"duration"`
	Style      string  `json:"style"`
	FrameRate  int     `json:"frame_rate"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	QRLink     string  `json:"qr_link"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	in := createRequest{
		MainTitle:  "DataDash",
		Subtitle:   "Fortinet Community Insights",
		OutputName: "lowerthird",
		Duration:   config.DefaultDuration,
		Style:      config.DefaultStyle,
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload: "+err.Error())
		return
	}

	req := config.RenderRequest{
		MainTitle: in.MainTitle,
		Subtitle:  in.Subtitle,
		Duration:  in.Duration,
		Style:     in.Style,
		FrameRate: in.FrameRate,
		Width:     in.Width,
		Height:    in.Height,
		QRLink:    in.QRLink,
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := style.Resolve(req.Style); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	name := sanitizeName(in.OutputName)
	if name == "" {
		name = "lowerthird"
	}
	outPath := filepath.Join(s.cfg.OutputDir, name+"."+s.ext)

	res, err := s.engine.Render(context.Background(), req, outPath)
	if err != nil {
		s.log.Error().Err(err).Str("output", outPath).Msg("render failed")
		status := http.StatusInternalServerError
		if errors.Is(err, style.ErrUnknownStyle) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"video":  res.Path,
		"parameters": map[string]any{
			"main_title": req.MainTitle,
			"subtitle":   req.Subtitle,
			"duration":   res.Duration,
			"style":      res.Style,
			"frame_rate": res.FPS,
			"width":      res.Width,
			"height":     res.Height,
			"frames":     res.Frames,
		},
	})
}

// sanitizeName keeps output files inside the output directory.
func sanitizeName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	name = strings.ReplaceAll(name, " ", "_")
	return name
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
