package api

import (
	"net/http"
	"strconv"
)

const (
	defaultVersionLimit = 10
	maxVersionLimit     = 1000
)

// ListVersions возвращает последние версии артефакта.
// GET /api/v1/artifacts/{name}/versions?limit=...
// limit больше maxVersionLimit урезается.
func (h *Handler) ListVersions(w http.ResponseWriter, r *http.Request) {
	if h.supplier == nil {
		Unavailable(w, "artifact publishing is disabled")
		return
	}

	limit := defaultVersionLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n < 0 {
			BadRequest(w, "invalid limit")
			return
		}
		limit = min(n, maxVersionLimit)
	}

	versions := h.supplier.LatestArtifacts(r.PathValue("name"), limit)
	List(w, versions, len(versions))
}

// GetVersion возвращает версию артефакта.
// GET /api/v1/artifacts/{name}/versions/{version}
func (h *Handler) GetVersion(w http.ResponseWriter, r *http.Request) {
	if h.supplier == nil {
		Unavailable(w, "artifact publishing is disabled")
		return
	}

	artifact, ok, err := h.supplier.ArtifactByVersion(r.PathValue("name"), r.PathValue("version"))
	if err != nil {
		BadRequest(w, "invalid version")
		return
	}
	if !ok {
		NotFound(w, "version not found")
		return
	}

	Success(w, artifact)
}
