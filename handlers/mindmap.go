package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/mindforge/mindmap-api/gemini"
)

// GenerateMindMap serves GET /api/mindmap?topic=...&nocache=1. Provider
// trouble never surfaces as an error here: the client package resolves it to
// a fallback payload and the UI keeps rendering.
func (a *API) GenerateMindMap(w http.ResponseWriter, r *http.Request) {
	topic := strings.TrimSpace(r.URL.Query().Get("topic"))
	if topic == "" {
		respondError(w, http.StatusBadRequest, "Missing 'topic' query parameter")
		return
	}

	if a.Cfg.GeminiAPIKey == "" {
		respondError(w, http.StatusInternalServerError, "GEMINI_API_KEY environment variable not set on server")
		return
	}

	noCache := strings.TrimSpace(r.URL.Query().Get("nocache")) == "1"

	resp, err := a.Gemini.Generate(r.Context(), topic, noCache)
	if err != nil {
		if errors.Is(err, gemini.ErrNoModel) {
			respondJSON(w, http.StatusBadGateway, map[string]string{
				"error": "Unable to list available models with provided API key. " +
					"Ensure your key is a valid Gemini API key and has access to models.",
				"hint": "Try creating an API key at https://aistudio.google.com/app/apikey and set GEMINI_API_KEY.",
			})
			return
		}
		a.Log.Error("mind map generation failed", "topic", topic, "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to generate mind map")
		return
	}

	respondJSON(w, http.StatusOK, resp)
}
