// Package web provides the HTTP status and control server for the
// plugwatch daemon.
package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sweeney/plugwatch/internal/config"
	"github.com/sweeney/plugwatch/internal/device"
	"github.com/sweeney/plugwatch/internal/mqtt"
	"github.com/sweeney/plugwatch/internal/status"
)

// Controls are the daemon actions the server exposes. Nil fields
// disable the corresponding endpoint.
type Controls struct {
	// Toggle flips the plug regardless of policy.
	Toggle func(ctx context.Context) (device.PlugState, error)

	// StartMonitor and StopMonitor control the monitor loop.
	StartMonitor func()
	StopMonitor  func()

	// MonitorRunning reports whether the loop is active.
	MonitorRunning func() bool

	// UpdateConfig persists and applies a new configuration.
	UpdateConfig func(cfg *config.Config) error
}

// Server serves the status page and control API over HTTP.
type Server struct {
	httpServer *http.Server
	log        *zap.Logger

	ch       *status.Channel
	cfg      *config.Store
	controls Controls
	mqttConn mqtt.ConnectionStatus // may be nil when MQTT is disabled

	start time.Time
	now   func() time.Time // test seam
}

// New creates a Server reading status from ch and config from cfg.
// mqttConn may be nil when status publishing is disabled.
func New(addr string, log *zap.Logger, ch *status.Channel, cfg *config.Store, controls Controls, mqttConn mqtt.ConnectionStatus) *Server {
	s := &Server{
		log:      log,
		ch:       ch,
		cfg:      cfg,
		controls: controls,
		mqttConn: mqttConn,
		start:    time.Now(),
		now:      time.Now,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/index.html", s.handleIndex)
	mux.HandleFunc("/index.json", s.handleJSON)
	mux.HandleFunc("/api/toggle", s.handleToggle)
	mux.HandleFunc("/api/monitor", s.handleMonitor)
	mux.HandleFunc("/api/config", s.handleConfig)
	mux.Handle("/metrics", promhttp.Handler())

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	return s
}

// ListenAndServe starts listening. It blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on the given listener. Useful for tests.
func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// view gathers everything the JSON and HTML renderers need.
func (s *Server) view() viewData {
	st, ok := s.ch.Peek()
	running := false
	if s.controls.MonitorRunning != nil {
		running = s.controls.MonitorRunning()
	}
	v := viewData{
		Status:    st,
		HasStatus: ok,
		Running:   running,
		Config:    s.cfg.Get(),
		Start:     s.start,
		Now:       s.now(),
	}
	if s.mqttConn != nil {
		connected := s.mqttConn.IsConnected()
		v.MQTTConnected = &connected
	}
	return v
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	renderHTML(w, s.view())
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write(formatJSON(s.view()))
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.controls.Toggle == nil {
		http.Error(w, "toggle not available", http.StatusNotImplemented)
		return
	}

	state, err := s.controls.Toggle(r.Context())
	if err != nil {
		s.log.Warn("toggle via http failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, fmt.Sprintf("toggle failed: %v", err))
		return
	}
	writeJSON(w, map[string]string{"state": string(state)})
}

func (s *Server) handleMonitor(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Action string `json:"action"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	switch req.Action {
	case "start":
		if s.controls.StartMonitor == nil {
			http.Error(w, "monitor control not available", http.StatusNotImplemented)
			return
		}
		s.controls.StartMonitor()
	case "stop":
		if s.controls.StopMonitor == nil {
			http.Error(w, "monitor control not available", http.StatusNotImplemented)
			return
		}
		s.controls.StopMonitor()
	default:
		writeError(w, http.StatusBadRequest, `action must be "start" or "stop"`)
		return
	}

	running := false
	if s.controls.MonitorRunning != nil {
		running = s.controls.MonitorRunning()
	}
	writeJSON(w, map[string]bool{"monitoring": running})
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		w.Header().Set("Content-Type", "application/json")
		w.Write(formatConfigJSON(s.cfg.Get()))

	case http.MethodPut:
		if s.controls.UpdateConfig == nil {
			http.Error(w, "config update not available", http.StatusNotImplemented)
			return
		}
		var cj ConfigJSON
		if err := json.NewDecoder(r.Body).Decode(&cj); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		cfg := cj.toConfig(s.cfg.Get())
		if err := cfg.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := s.controls.UpdateConfig(cfg); err != nil {
			s.log.Warn("config update via http failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(formatConfigJSON(cfg))

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
