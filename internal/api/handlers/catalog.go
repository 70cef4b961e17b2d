package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/factorlab/internal/catalog"
	"github.com/wonny/factorlab/pkg/logger"
)

// CatalogHandler serves the factor catalog endpoints
// SSOT: catalog API surface lives in this struct
type CatalogHandler struct {
	svc    *catalog.Service
	logger *logger.Logger
}

// NewCatalogHandler creates a catalog handler
func NewCatalogHandler(svc *catalog.Service, log *logger.Logger) *CatalogHandler {
	return &CatalogHandler{svc: svc, logger: log}
}

// List returns all cataloged factors
// GET /api/catalog
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.List(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("catalog list failed")
		writeError(w, http.StatusInternalServerError, "failed to list catalog")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(entries),
		"entries": entries,
	})
}

// Get returns one cataloged factor
// GET /api/catalog/{name}
func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	entry, err := h.svc.Get(r.Context(), name)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "factor not in catalog")
			return
		}
		h.logger.WithError(err).WithField("factor", name).Error("catalog get failed")
		writeError(w, http.StatusInternalServerError, "failed to get catalog entry")
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// Delete removes a factor from the catalog
// DELETE /api/catalog/{name}
func (h *CatalogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	if err := h.svc.Remove(r.Context(), name); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "factor not in catalog")
			return
		}
		h.logger.WithError(err).WithField("factor", name).Error("catalog delete failed")
		writeError(w, http.StatusInternalServerError, "failed to delete catalog entry")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": name})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
