package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/five82/daily/internal/logtail"
	"github.com/five82/daily/internal/metrics"
	"github.com/five82/daily/internal/schedule"
	"github.com/five82/daily/internal/state"
)

const (
	defaultOverrideHours = 1
	maxRequestBody       = 64 << 10
	shutdownTimeout      = 5 * time.Second
)

// Options configure a Server.
type Options struct {
	Runtime *state.Runtime
	Fs      afero.Fs
	LogPath string
	Metrics *metrics.Metrics
	Now     func() time.Time
}

// Server is the control API.
type Server struct {
	rt      *state.Runtime
	fs      afero.Fs
	logPath string
	metrics *metrics.Metrics
	now     func() time.Time
	router  *mux.Router
}

// New builds the router.
func New(opts Options) *Server {
	s := &Server{
		rt:      opts.Runtime,
		fs:      opts.Fs,
		logPath: opts.LogPath,
		metrics: opts.Metrics,
		now:     opts.Now,
	}
	if s.fs == nil {
		s.fs = afero.NewOsFs()
	}
	if s.now == nil {
		s.now = time.Now
	}

	r := mux.NewRouter()
	r.Use(requestID)
	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/api/status", s.handleStatus).Methods(http.MethodGet)
	r.HandleFunc("/api/temp_wallpaper", s.handleOverride).Methods(http.MethodPost)
	r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	s.router = r
	return s
}

// Handler returns the router wrapped in the CORS policy.
func (s *Server) Handler() http.Handler {
	return cors.AllowAll().Handler(s.router)
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", ln.Addr().String()).Info("control api listening")
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve control api: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("control api shutdown")
		}
		return nil
	}
}

func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.New().String()
		w.Header().Set("X-Request-ID", id)
		log.WithFields(log.Fields{
			"request_id": id,
			"method":     r.Method,
			"path":       r.URL.Path,
			"remote":     r.RemoteAddr,
		}).Debug("api request")
		next.ServeHTTP(w, r)
	})
}

func (s *Server) status() StatusResponse {
	snap := s.rt.Snapshot()
	logs, err := logtail.Tail(s.fs, s.logPath, StatusLogLines)
	if err != nil {
		log.WithError(err).Warn("read log tail")
	}
	if logs == nil {
		logs = []string{}
	}
	return StatusResponse{
		AppliedURL:   snap.AppliedURL,
		ConfigLoaded: snap.Config != nil,
		Config:       snap.Config,
		Override:     snap.Override,
		Logs:         logs,
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.status())
}

func (s *Server) handleOverride(w http.ResponseWriter, r *http.Request) {
	var req OverrideRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, OverrideResponse{Message: fmt.Sprintf("invalid request body: %v", err)})
		return
	}

	hours := defaultOverrideHours
	if req.Hours != nil {
		hours = *req.Hours
	}
	switch {
	case req.URL == "":
		writeJSON(w, http.StatusBadRequest, OverrideResponse{Message: "url is required"})
		return
	case hours <= 0:
		writeJSON(w, http.StatusBadRequest, OverrideResponse{Message: "hours must be a positive integer"})
		return
	case int64(hours) > MaxOverrideHours:
		writeJSON(w, http.StatusBadRequest, OverrideResponse{Message: fmt.Sprintf("hours must be at most %d", MaxOverrideHours)})
		return
	}

	expiry := ExpiryFor(s.now(), hours)
	s.rt.SetOverride(schedule.Override{URL: req.URL, Expiry: expiry})
	s.metrics.Override()
	log.WithFields(log.Fields{"url": req.URL, "expiry": expiry}).Info("temporary wallpaper set")

	writeJSON(w, http.StatusOK, OverrideResponse{
		Success: true,
		Message: fmt.Sprintf("Temporary wallpaper set to %s for %d hours.", req.URL, hours),
	})
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.WithError(err).Warn("write response")
	}
}
