package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/mindforge/mindmap-api/config"
	"github.com/mindforge/mindmap-api/documents"
	"github.com/mindforge/mindmap-api/gemini"
	"github.com/mindforge/mindmap-api/logger"
	"github.com/mindforge/mindmap-api/outline"
	"github.com/mindforge/mindmap-api/pdftext"
	"gorm.io/gorm"
)

// API bundles the dependencies the HTTP handlers need. Everything is
// constructed once in main and passed in; handlers hold no globals.
type API struct {
	Cfg       *config.Config
	Log       *logger.Logger
	AppDB     *gorm.DB
	Gemini    *gemini.Client
	Documents *documents.Store
	Extractor *pdftext.Extractor
	Outliner  *outline.Outliner
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// NotFound answers unmatched /api/ paths with JSON instead of the default
// plain-text body.
func (a *API) NotFound(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusNotFound, map[string]string{
		"error": "Not found",
		"path":  r.URL.Path,
	})
}
