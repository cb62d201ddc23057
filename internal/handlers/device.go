package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"parsegate/internal/httputil"
	"parsegate/internal/models"
)

type registerRequest struct {
	DeviceID   string            `json:"device_id"`
	DeviceInfo models.DeviceInfo `json:"device_info"`
}

type registerResponse struct {
	Device      *models.DeviceRecord `json:"device"`
	DeviceToken string               `json:"device_token"`
}

// RegisterDevice registers (or re-registers, overwriting) a device and
// returns the record with its key seed plus a device token. This
// response is the only channel through which the client learns its
// secret; the transport carrying it must be trusted.
func (h *Handler) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Malformed request body")
		return
	}
	if req.DeviceID == "" {
		httputil.WriteBadRequest(w, "device_id is required")
		return
	}

	record, err := h.deps.Registry.Register(r.Context(), req.DeviceID, req.DeviceInfo)
	if err != nil {
		log.Printf("register: %v", err)
		httputil.WriteInternalError(w, "Registration failed")
		return
	}

	token, err := h.deps.Tokens.Issue(req.DeviceID)
	if err != nil {
		log.Printf("register: token issue for device %s: %v", req.DeviceID, err)
		httputil.WriteInternalError(w, "Registration failed")
		return
	}

	h.audit(r.Context(), req.DeviceID, models.EventDeviceRegistered, "")

	httputil.WriteJSON(w, http.StatusCreated, registerResponse{
		Device:      record,
		DeviceToken: token,
	})
}

// audit records an event best-effort; failures are logged, never
// surfaced to the client.
func (h *Handler) audit(ctx context.Context, deviceID, event, detail string) {
	if h.deps.Audit == nil {
		return
	}
	err := h.deps.Audit.Record(ctx, &models.AuditEvent{
		DeviceID: deviceID,
		Event:    event,
		Detail:   detail,
	})
	if err != nil {
		log.Printf("audit: record %s for device %s: %v", event, deviceID, err)
	}
}
