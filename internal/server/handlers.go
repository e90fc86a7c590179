package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"
	"time"

	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/history"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/version"
)

const (
	defaultBuildLimit = 20
	maxBuildLimit     = 100
)

// HealthResponse is returned by /healthz.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Uptime    float64   `json:"uptime"`
}

// PageResponse is one page of a build.
type PageResponse struct {
	Source      string `json:"source"`
	Output      string `json:"output"`
	Fingerprint string `json:"fingerprint"`
}

// BuildResponse summarises one recorded build.
type BuildResponse struct {
	BuildID    string         `json:"build_id"`
	Started    time.Time      `json:"started"`
	DurationMS int64          `json:"duration_ms"`
	Outcome    string         `json:"outcome"`
	Pages      int            `json:"pages"`
	Assets     int            `json:"assets"`
	Failed     int            `json:"failed"`
	Error      string         `json:"error,omitempty"`
	PageList   []PageResponse `json:"page_list,omitempty"`
}

// ErrorResponse carries a failed request's message.
type ErrorResponse struct {
	Error    string `json:"error"`
	Category string `json:"category,omitempty"`
}

func newBuildResponse(r history.Record) BuildResponse {
	out := BuildResponse{
		BuildID:    r.BuildID,
		Started:    r.Started,
		DurationMS: r.Duration.Milliseconds(),
		Outcome:    r.Outcome,
		Pages:      r.Pages,
		Assets:     r.Assets,
		Failed:     r.Failed,
		Error:      r.Error,
	}
	for _, p := range r.PageList {
		out.PageList = append(out.PageList, PageResponse(p))
	}
	return out
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   version.Version,
		Uptime:    time.Since(s.started).Seconds(),
	})
}

func (s *Server) handleReadiness(w http.ResponseWriter, _ *http.Request) {
	if s.opts.OutputDir != "" {
		if st, err := os.Stat(s.opts.OutputDir); err != nil || !st.IsDir() {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("not ready: site not built yet"))
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handleBuilds(w http.ResponseWriter, r *http.Request) {
	limit := defaultBuildLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, ferrors.ValidationError("limit must be a positive integer").Build())
			return
		}
		limit = min(n, maxBuildLimit)
	}

	records, err := s.opts.History.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	out := make([]BuildResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, newBuildResponse(rec))
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleBuild(w http.ResponseWriter, r *http.Request) {
	rec, err := s.opts.History.ByBuildID(r.Context(), r.PathValue("id"))
	if errors.Is(err, history.ErrNotFound) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, newBuildResponse(*rec))
}

func (s *Server) handleTrigger(w http.ResponseWriter, _ *http.Request) {
	if err := s.opts.Trigger(); err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	s.writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

// writeJSON encodes into a buffer first so a failed encode never sends a
// partial body.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		s.opts.Logger.Error("Failed to encode JSON response", logfields.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func writeError(w http.ResponseWriter, status int, err error) {
	resp := ErrorResponse{Error: err.Error()}
	if c, ok := ferrors.AsClassified(err); ok {
		resp.Category = string(c.Category())
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
