package api

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// PartitionResponse — партиция и её последняя публикация.
type PartitionResponse struct {
	Name        string `json:"name"`
	Key         string `json:"key"`
	LastPublish int64  `json:"last_publish"`
}

// StateRequest — тело PUT /state.
type StateRequest struct {
	LastPublish int64 `json:"last_publish"`
}

// ListPartitions возвращает партиции с timestamp последней публикации.
// GET /api/v1/partitions
func (h *Handler) ListPartitions(w http.ResponseWriter, r *http.Request) {
	if h.monitor == nil {
		Unavailable(w, "artifact publishing is disabled")
		return
	}

	names := h.monitor.Partitions()
	result := make([]PartitionResponse, 0, len(names))
	for _, name := range names {
		last, err := h.cache.LastPublish(r.Context(), name)
		if HandleStoreError(w, h.logger, err) {
			return
		}
		result = append(result, PartitionResponse{Name: name, Key: h.cache.Key(name), LastPublish: last})
	}

	List(w, result, len(result))
}

// GetState возвращает timestamp последней публикации партиции.
// GET /api/v1/partitions/{name}/state
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	last, err := h.cache.LastPublish(r.Context(), name)
	if HandleStoreError(w, h.logger, err) {
		return
	}

	Success(w, PartitionResponse{Name: name, Key: h.cache.Key(name), LastPublish: last})
}

// SetState переопределяет timestamp последней публикации.
// PUT /api/v1/partitions/{name}/state
func (h *Handler) SetState(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	var req StateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}
	if req.LastPublish < 0 {
		BadRequest(w, "last_publish must be >= 0")
		return
	}

	err := h.cache.SetCacheValue(r.Context(), name, strconv.FormatInt(req.LastPublish, 10))
	if HandleStoreError(w, h.logger, err) {
		return
	}

	h.logger.Info("publication state overridden", "partition", name, "last_publish", req.LastPublish)
	Success(w, PartitionResponse{Name: name, Key: h.cache.Key(name), LastPublish: req.LastPublish})
}
