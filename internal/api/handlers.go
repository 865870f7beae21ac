package api

import (
	"encoding/json"
	"net/http"
)

// Handler methods for routerHandlers.
// Used by both the standalone router (for testing) and the full Server.

func (h *routerHandlers) handleGetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.engine.Snapshot())
}

func (h *routerHandlers) handleGetStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"engine":  h.engine.Stats(),
		"diffLog": h.engine.DiffLogStats(),
	})
}

func (h *routerHandlers) handleGetScoreboard(w http.ResponseWriter, r *http.Request) {
	scores := h.engine.Scores()
	writeJSON(w, map[string]any{
		"top":    scores.Top(10),
		"rounds": scores.Rounds(),
		"draws":  scores.Draws(),
	})
}

// Helper functions (package-level for reuse)

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
