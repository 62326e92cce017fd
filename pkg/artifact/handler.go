package artifact

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Handler serves stored descriptors. Mount it under /artifacts; a GET for
// /artifacts/<name>.json returns the descriptor, a GET for /artifacts/ lists
// the stored names.
type Handler struct {
	store  Store
	logger *zap.Logger
}

// NewHandler creates an artifact handler.
func NewHandler(store Store, logger *zap.Logger) *Handler {
	return &Handler{
		store:  store,
		logger: logger,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// ServeHTTP handles GET requests for descriptors.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		h.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	file := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
	if file == "" {
		names, err := h.store.List(r.Context())
		if err != nil {
			h.logger.Error("Failed to list artifacts", zap.Error(err))
			h.writeError(w, http.StatusInternalServerError, "failed to list artifacts")
			return
		}
		if names == nil {
			names = []string{}
		}
		h.writeJSON(w, http.StatusOK, names)
		return
	}
	if !strings.HasSuffix(file, ".json") {
		h.writeError(w, http.StatusNotFound, "artifact not found")
		return
	}

	d, err := h.store.Load(r.Context(), strings.TrimSuffix(file, ".json"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			h.writeError(w, http.StatusNotFound, "artifact not found")
			return
		case errors.Is(err, ErrInvalidName):
			h.writeError(w, http.StatusBadRequest, "invalid artifact name")
			return
		}
		h.logger.Error("Failed to load artifact", zap.String("file", file), zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "failed to load artifact")
		return
	}
	h.writeJSON(w, http.StatusOK, d)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Warn("failed to write JSON response", zap.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, errorResponse{Error: message})
}
