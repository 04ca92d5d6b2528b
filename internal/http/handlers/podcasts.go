package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"podcastgen/internal/domain"
	"podcastgen/internal/middleware"
	"podcastgen/internal/pipeline"
	"podcastgen/internal/storage"
	"podcastgen/pkg/zip"
)

const maxGenerateBody = 64 << 10

var jobIDPattern = regexp.MustCompile(`^[a-z0-9]{1,64}$`)

// GeneratePodcast runs a job synchronously and returns its result.
func (a *App) GeneratePodcast(w http.ResponseWriter, r *http.Request) {
	var req pipeline.Request
	body, err := io.ReadAll(io.LimitReader(r.Body, maxGenerateBody))
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "failed to read request body")
		return
	}
	if len(strings.TrimSpace(string(body))) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", "invalid JSON payload")
			return
		}
	}
	if strings.TrimSpace(req.Topic) == "" && strings.TrimSpace(req.URL) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "Provide a 'topic' or 'url'.")
		return
	}

	res, err := a.Pipeline.Run(r.Context(), req)
	if err != nil {
		if errors.Is(err, domain.ErrMissingInput) {
			a.error(w, http.StatusBadRequest, "bad_request", "Provide a 'topic' or 'url'.")
			return
		}
		a.Logger.Error().Err(err).Str("request_id", middleware.RequestIDFromContext(r.Context())).Msg("podcast generation failed")
		a.error(w, http.StatusInternalServerError, "internal", "podcast generation failed")
		return
	}
	a.json(w, http.StatusOK, res)
}

// PodcastBundle zips every file a job produced.
func (a *App) PodcastBundle(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "job_id")
	if !jobIDPattern.MatchString(jobID) {
		a.error(w, http.StatusNotFound, "not_found", "job not found")
		return
	}
	keys, err := a.Files.List(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "job not found")
			return
		}
		a.error(w, http.StatusInternalServerError, "internal", "failed to list job files")
		return
	}
	var assets []zip.Asset
	for _, key := range keys {
		data, err := a.Files.Read(r.Context(), key)
		if err != nil {
			a.Logger.Warn().Err(err).Str("key", key).Msg("skipping unreadable job file")
			continue
		}
		name := strings.TrimPrefix(key, jobID+"/")
		assets = append(assets, zip.Asset{Filename: name, MIME: mimeFor(name), Data: data})
	}
	if len(assets) == 0 {
		a.error(w, http.StatusNotFound, "not_found", "job has no files")
		return
	}
	archive, err := zip.ArchiveAssets(assets, time.Now())
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to build bundle")
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=podcast-%s.zip", jobID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}

func mimeFor(name string) string {
	switch path.Ext(name) {
	case ".mp3":
		return "audio/mpeg"
	case ".wav":
		return "audio/wav"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}
