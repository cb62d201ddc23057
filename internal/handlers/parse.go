package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"parsegate/internal/httputil"
	"parsegate/internal/models"
	"parsegate/internal/services"
)

// maxParseBody bounds the raw request body read into memory.
const maxParseBody = 1 << 20

type parseRequest struct {
	Text    string `json:"text"`
	Context string `json:"context,omitempty"`
}

// Parse is the authenticated gate in front of the upstream parse call.
// Header presence is validated here (caller's responsibility per the
// auth contract); the pipeline itself runs rate limiter, signature
// verifier, then last-seen touch.
//
// The signature covers the exact bytes transmitted, so the body is read
// raw before any JSON decoding.
func (h *Handler) Parse(w http.ResponseWriter, r *http.Request) {
	deviceID := r.Header.Get("X-Device-ID")
	timestamp := r.Header.Get("X-Timestamp")
	signature := r.Header.Get("X-Signature")
	if deviceID == "" || timestamp == "" || signature == "" {
		httputil.WriteBadRequest(w, "Missing authentication headers")
		return
	}

	rawBody, err := io.ReadAll(io.LimitReader(r.Body, maxParseBody))
	if err != nil {
		httputil.WriteBadRequest(w, "Unreadable request body")
		return
	}

	// The device token is accepted but gates nothing yet; a bad one is
	// only logged.
	if deviceToken := r.Header.Get("X-Device-Token"); deviceToken != "" {
		if _, err := h.deps.Tokens.Verify(deviceToken); err != nil {
			log.Printf("parse: device %s presented bad device token: %v", deviceID, err)
		}
	}

	if err := h.deps.Auth.Authenticate(r.Context(), deviceID, timestamp, signature, rawBody); err != nil {
		if errors.Is(err, services.ErrRateLimited) {
			h.audit(r.Context(), deviceID, models.EventRateLimited, "")
			httputil.WriteRateLimited(w, "Rate limit exceeded, retry after the window elapses")
			return
		}
		h.audit(r.Context(), deviceID, models.EventAuthFailed, "")
		httputil.WriteUnauthorized(w, "Authentication failed")
		return
	}

	var req parseRequest
	if err := json.Unmarshal(rawBody, &req); err != nil {
		httputil.WriteBadRequest(w, "Malformed request body")
		return
	}
	if req.Text == "" {
		httputil.WriteBadRequest(w, "text is required")
		return
	}

	result, err := h.deps.Parser.Parse(r.Context(), req.Text, req.Context)
	if err != nil {
		log.Printf("parse: upstream call for device %s: %v", deviceID, err)
		h.audit(r.Context(), deviceID, models.EventParseFailed, err.Error())
		httputil.WriteUpstreamError(w, "Parse upstream unavailable")
		return
	}

	h.audit(r.Context(), deviceID, models.EventParseCompleted, "")
	httputil.WriteJSON(w, http.StatusOK, result)
}
