package handlers

import (
	"net/http"
)

type healthResponse struct {
	Status         string    `json:"status"`
	KeysConfigured KeyStatus `json:"keys_configured"`
}

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, healthResponse{Status: "ok", KeysConfigured: a.Keys})
}
