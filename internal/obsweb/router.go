package obsweb

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler is the scan engine's read-only observability surface: current
// BSS snapshots, aggregate stats, Prometheus metrics, and a live
// WebSocket feed. Nothing served here can trigger, cancel, or reconfigure
// a scan.
type Handler struct {
	store *Store
	hub   *Hub
}

// NewHandler wires an HTTP router over store, broadcasting through hub.
func NewHandler(store *Store, hub *Hub) http.Handler {
	h := &Handler{store: store, hub: hub}

	r := mux.NewRouter()
	r.HandleFunc("/api/bsses", h.handleBSSes).Methods(http.MethodGet)
	r.HandleFunc("/api/bsses/{device}", h.handleDeviceBSSes).Methods(http.MethodGet)
	r.HandleFunc("/api/stats", h.handleStats).Methods(http.MethodGet)
	r.HandleFunc("/ws", hub.ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

func (h *Handler) handleBSSes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.store.All())
}

func (h *Handler) handleDeviceBSSes(w http.ResponseWriter, r *http.Request) {
	devStr := mux.Vars(r)["device"]
	dev, err := strconv.ParseUint(devStr, 10, 64)
	if err != nil {
		http.Error(w, "invalid device id", http.StatusBadRequest)
		return
	}

	h.store.mu.RLock()
	snaps, ok := h.store.byDev[dev]
	h.store.mu.RUnlock()
	if !ok {
		http.Error(w, "unknown device", http.StatusNotFound)
		return
	}
	writeJSON(w, snaps)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.store.Summary())
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
