package server

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/adityaaj2003/tunegan/pkg/buildinfo"
	"github.com/adityaaj2003/tunegan/pkg/errors"
	"github.com/adityaaj2003/tunegan/pkg/pipeline"
	"github.com/adityaaj2003/tunegan/pkg/store"
	"github.com/adityaaj2003/tunegan/pkg/synth"
)

// generateRequest is the POST /api/v1/generate body.
type generateRequest struct {
	Prompt   string `json:"prompt"`
	Duration int    `json:"duration,omitempty"`
	Seed     uint64 `json:"seed,omitempty"`
	Refresh  bool   `json:"refresh,omitempty"`
}

// generateResponse is returned after a successful generation.
type generateResponse struct {
	Track     *store.Track       `json:"track"`
	CacheInfo pipeline.CacheInfo `json:"cache_info"`
	NoteCount int                `json:"note_count"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body"))
		return
	}

	opts := pipeline.Options{
		Prompt:     req.Prompt,
		Duration:   req.Duration,
		Seed:       req.Seed,
		Refresh:    req.Refresh,
		SampleRate: s.cfg.Generation.SampleRate,
		TopK:       s.cfg.Generation.TopK,
		Logger:     s.logger,
	}
	if opts.Duration == 0 {
		opts.Duration = s.cfg.Generation.Duration
	}

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	track := store.NewTrack(opts.Prompt, opts.Duration, opts.SampleRate, opts.Seed)
	track.ScoreHash = result.ScoreHash
	track.Size = int64(len(result.Audio))
	track.Path = filepath.Join(s.cfg.Server.AudioDir, track.AudioFilename())

	if err := os.WriteFile(track.Path, result.Audio, 0o644); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "write audio file"))
		return
	}
	if err := s.store.Put(r.Context(), track); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, generateResponse{
		Track:     track,
		CacheInfo: result.CacheInfo,
		NoteCount: result.Stats.NoteCount,
	})
}

func (s *Server) handleListTracks(w http.ResponseWriter, r *http.Request) {
	tracks, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if tracks == nil {
		tracks = []*store.Track{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"tracks": tracks})
}

func (s *Server) handleGetTrack(w http.ResponseWriter, r *http.Request) {
	track, ok := s.trackFromRequest(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, track)
}

func (s *Server) handleTrackAudio(w http.ResponseWriter, r *http.Request) {
	track, ok := s.trackFromRequest(w, r)
	if !ok {
		return
	}

	f, err := os.Open(track.Path)
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeFileNotFound, err, "open audio file"))
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("Content-Disposition", `attachment; filename="`+track.AudioFilename()+`"`)
	http.ServeContent(w, r, track.AudioFilename(), track.CreatedAt, f)
}

func (s *Server) handleDeleteTrack(w http.ResponseWriter, r *http.Request) {
	track, ok := s.trackFromRequest(w, r)
	if !ok {
		return
	}

	if err := s.store.Delete(r.Context(), track.ID); err != nil {
		s.writeError(w, r, err)
		return
	}
	// Best effort: the metadata is already gone.
	_ = os.Remove(track.Path)

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAbout(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"name":         "TuneGAN",
		"description":  "Generates short music clips from natural-language prompts.",
		"version":      buildinfo.Version,
		"sample_rate":  s.cfg.Generation.SampleRate,
		"max_duration": synth.MaxDuration,
		"formats":      []string{pipeline.FormatWAV},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": time.Since(s.started).String(),
	})
}

// trackFromRequest parses the {id} URL parameter and loads the track.
// On failure it writes the error response and returns ok=false.
func (s *Server) trackFromRequest(w http.ResponseWriter, r *http.Request) (*store.Track, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid track id"))
		return nil, false
	}
	track, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	return track, true
}

// =============================================================================
// Response Helpers
// =============================================================================

// errorResponse is the JSON body for all error responses.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	} else {
		s.logger.Debug("request rejected", "path", r.URL.Path, "error", err)
	}
	s.writeJSON(w, status, errorResponse{
		Error: errors.UserMessage(err),
		Code:  string(errors.GetCode(err)),
	})
}

// statusForError maps error codes to HTTP status codes.
func statusForError(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidPrompt,
		errors.ErrCodeInvalidDuration, errors.ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeTrackNotFound,
		errors.ErrCodePackageNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
