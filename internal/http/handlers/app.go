package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"podcastgen/internal/infra"
	"podcastgen/internal/pipeline"
)

// Runner executes one podcast job.
type Runner interface {
	Run(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
}

// JobFiles lists and reads files of finished jobs.
type JobFiles interface {
	List(ctx context.Context, prefix string) ([]string, error)
	Read(ctx context.Context, key string) ([]byte, error)
}

// KeyStatus reports which upstream credentials are configured.
type KeyStatus struct {
	MiniMax      bool `json:"minimax"`
	MiniMaxMusic bool `json:"minimax_music"`
	ElevenLabs   bool `json:"elevenlabs"`
}

type App struct {
	Pipeline Runner
	Files    JobFiles
	Keys     KeyStatus
	Logger   *infra.Logger
}

func NewApp(runner Runner, files JobFiles, keys KeyStatus, logger *infra.Logger) *App {
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &App{Pipeline: runner, Files: files, Keys: keys, Logger: logger}
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, kind, message string) {
	a.json(w, code, errorResponse{Error: kind, Message: message})
}
