package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/skywatch/skywatch/internal/admin"
	"github.com/skywatch/skywatch/internal/config"
	"github.com/skywatch/skywatch/internal/track"
)

// AdminKeyHeader carries the admin key on mutating requests.
const AdminKeyHeader = "X-Admin-Key"

// LoopStatus reports whether the watch loop is running; satisfied by
// *watch.Runner.
type LoopStatus interface {
	Running() bool
}

// Handler is the HTTP handler for the liveness endpoint and all /api/v1/*
// routes. It reads tracked-aircraft state from the table and dispatches
// destination operations to the admin service.
type Handler struct {
	table *track.Table
	admin *admin.Service
	auth  config.AdminAuthConfig
	loop  LoopStatus
	mux   *http.ServeMux
}

// New creates a Handler and registers all routes.
func New(table *track.Table, adminSvc *admin.Service, auth config.AdminAuthConfig, loop LoopStatus) http.Handler {
	h := &Handler{table: table, admin: adminSvc, auth: auth, loop: loop, mux: http.NewServeMux()}

	h.mux.HandleFunc("/healthz", h.healthz)
	h.mux.HandleFunc("/api/v1/aircraft", h.aircraft)
	h.mux.HandleFunc("/api/v1/destinations/", h.destinations) // subtree — extracts {tenant}

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// isAdmin reports whether the request carries valid administrator
// credentials. Mode "none" or an unconfigured key grants everyone admin
// rights, mirroring a pass-through auth setup.
func (h *Handler) isAdmin(r *http.Request) bool {
	if h.auth.Mode != "apikey" || h.auth.Key() == "" {
		return true
	}
	return r.Header.Get(AdminKeyHeader) == h.auth.Key()
}

// --- route handlers ---------------------------------------------------------

// healthz returns GET /healthz — the liveness response for the hosting
// platform. It carries no application data beyond basic status.
func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, HealthResponse{
		Status:       "ok",
		WatchRunning: h.loop != nil && h.loop.Running(),
		Destinations: h.admin.Destinations(),
	})
}

// aircraft returns GET /api/v1/aircraft — the tracked table with per-aircraft
// last-alert times.
func (h *Handler) aircraft(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	snap := h.table.Snapshot()
	out := make([]AircraftResponse, 0, len(snap))
	for _, st := range snap {
		resp := AircraftResponse{
			Icao24:       st.Icao24,
			Registration: st.Registration,
		}
		if !st.LastAlertAt.IsZero() {
			resp.LastAlertAt = st.LastAlertAt.UTC().Format(time.RFC3339)
		}
		out = append(out, resp)
	}
	jsonResp(w, http.StatusOK, out)
}

// destinations dispatches /api/v1/destinations/{tenant}:
// GET reads the binding, PUT upserts it (admin only).
func (h *Handler) destinations(w http.ResponseWriter, r *http.Request) {
	tenant := strings.TrimPrefix(r.URL.Path, "/api/v1/destinations/")
	if strings.Contains(tenant, "/") {
		jsonErr(w, http.StatusNotFound, "not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.getDestination(w, tenant)
	case http.MethodPut:
		h.setDestination(w, r, tenant)
	default:
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) getDestination(w http.ResponseWriter, tenant string) {
	res, err := h.admin.GetDestination(tenant)
	if err != nil {
		writeAdminErr(w, err)
		return
	}
	jsonResp(w, http.StatusOK, DestinationResponse{
		TenantID:  tenant,
		Status:    res.Status,
		ChannelID: res.ChannelID,
	})
}

func (h *Handler) setDestination(w http.ResponseWriter, r *http.Request, tenant string) {
	var body struct {
		ChannelID string `json:"channel_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonErr(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.admin.SetDestination(admin.SetDestinationRequest{
		TenantID:         tenant,
		ChannelID:        body.ChannelID,
		RequesterIsAdmin: h.isAdmin(r),
	})
	if err != nil {
		writeAdminErr(w, err)
		return
	}
	jsonResp(w, http.StatusOK, DestinationResponse{
		TenantID:  tenant,
		Status:    admin.StatusOK,
		ChannelID: body.ChannelID,
	})
}

// --- helpers ----------------------------------------------------------------

// writeAdminErr maps admin service errors to uniform JSON error responses.
// Every destination handler funnels failures through here so requesters
// always see the same error shape, whatever went wrong underneath.
func writeAdminErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, admin.ErrNoTenant):
		jsonErr(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, admin.ErrNotAdmin):
		jsonErr(w, http.StatusForbidden, err.Error())
	case errors.Is(err, admin.ErrUnknownChannel):
		jsonErr(w, http.StatusNotFound, err.Error())
	default:
		slog.Error("api: admin operation failed", "err", err)
		jsonErr(w, http.StatusInternalServerError, "internal error")
	}
}

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}
