package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"parsegate/internal/httputil"
	"parsegate/internal/models"
	"parsegate/internal/repositories"
	"parsegate/internal/services"
)

type adminLoginRequest struct {
	Password string `json:"password"`
}

type adminLoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (h *Handler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req adminLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Malformed request body")
		return
	}

	resp, err := h.deps.Auth.Login(r.Context(), req.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		httputil.WriteUnauthorized(w, "Invalid credentials")
		return
	}
	if err != nil {
		log.Printf("admin login: %v", err)
		httputil.WriteInternalError(w, "Login failed")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, adminLoginResponse{
		Token:     resp.Token,
		ExpiresAt: resp.ExpiresAt,
	})
}

func (h *Handler) AdminLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Auth.Logout(r.Context(), BearerToken(r)); err != nil {
		httputil.WriteUnauthorized(w, "Invalid session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type deviceView struct {
	Device *models.DeviceRecord `json:"device"`
	Audit  []*models.AuditEvent `json:"audit,omitempty"`
}

// GetDevice returns a device record with the key seed redacted, plus its
// recent audit trail when the audit store is configured.
func (h *Handler) GetDevice(w http.ResponseWriter, r *http.Request) {
	deviceID := chi.URLParam(r, "deviceID")

	record, err := h.deps.Registry.Get(r.Context(), deviceID)
	if errors.Is(err, repositories.ErrNotFound) {
		httputil.WriteNotFound(w, "Unknown device")
		return
	}
	if err != nil {
		log.Printf("admin get device %s: %v", deviceID, err)
		httputil.WriteInternalError(w, "Lookup failed")
		return
	}

	view := deviceView{Device: record.Redacted()}
	if h.deps.Audit != nil {
		events, err := h.deps.Audit.ListByDevice(r.Context(), deviceID, 50)
		if err != nil {
			log.Printf("admin get device %s: audit list: %v", deviceID, err)
		} else {
			view.Audit = events
		}
	}

	httputil.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) RevokeDevice(w http.ResponseWriter, r *http.Request) {
	deviceID := chi.URLParam(r, "deviceID")

	if err := h.deps.Registry.Revoke(r.Context(), deviceID); err != nil {
		log.Printf("admin revoke device %s: %v", deviceID, err)
		httputil.WriteInternalError(w, "Revocation failed")
		return
	}

	h.audit(r.Context(), deviceID, models.EventDeviceRevoked, "")
	w.WriteHeader(http.StatusNoContent)
}
