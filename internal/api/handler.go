package api

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmelo/gram-dispatch/internal/engine"
	"github.com/dmelo/gram-dispatch/internal/event"
	"github.com/dmelo/gram-dispatch/internal/quota"
	"github.com/dmelo/gram-dispatch/internal/registry"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// maxWebhookBody bounds how much of a delivery we read. The platform's
// payloads are small; anything larger is not a webhook we care about.
const maxWebhookBody = 1 << 20

// Handler is the dispatcher's HTTP surface: the per-tenant webhook
// endpoints plus the client management API.
type Handler struct {
	reg   registry.Client
	eng   *engine.Engine
	quota quota.Tracker
}

func New(reg registry.Client, eng *engine.Engine, qt quota.Tracker) *Handler {
	return &Handler{reg: reg, eng: eng, quota: qt}
}

// Router returns the chi router with all routes registered
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	r.Get("/healthz", h.Healthz)

	// Webhook endpoints — one URL per tenant, addressed by routing token
	r.Get("/webhook/{token}", h.VerifyWebhook)
	r.Post("/webhook/{token}", h.ReceiveWebhook)

	// Client management
	r.Post("/clients", h.CreateClient)
	r.Get("/clients", h.ListClients)
	r.Get("/clients/{tenantID}", h.GetClient)
	r.Patch("/clients/{tenantID}", h.UpdateClient)
	r.Delete("/clients/{tenantID}", h.DeleteClient)
	r.Get("/clients/{tenantID}/stats", h.ClientStats)

	return r
}

// Healthz returns 200 OK
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// VerifyWebhook answers the platform's subscription handshake. Each tenant
// has its own routing token, so the handshake also proves the URL is bound
// to a known tenant.
func (h *Handler) VerifyWebhook(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	mode := r.URL.Query().Get("hub.mode")
	verifyToken := r.URL.Query().Get("hub.verify_token")
	challenge := r.URL.Query().Get("hub.challenge")

	tenant, err := h.reg.Resolve(r.Context(), token)
	if err != nil {
		slog.Error("webhook verify: resolve failed", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if tenant == nil || mode != "subscribe" || verifyToken != token {
		slog.Warn("webhook verify: rejected", "token_known", tenant != nil, "mode", mode)
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	slog.Info("webhook verified", "tenant", tenant.TenantID)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(challenge))
}

// ReceiveWebhook ingests one delivery. The platform expects a fast ack and
// redelivers on timeout, so the response is written before dispatching;
// redeliveries are absorbed by the engine's deduplication step.
func (h *Handler) ReceiveWebhook(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		http.Error(w, "token required", http.StatusBadRequest)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		http.Error(w, "read body", http.StatusBadRequest)
		return
	}

	events, err := event.ParsePayload(token, body, time.Now().UTC())
	if err != nil {
		slog.Warn("webhook: malformed payload", "err", err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	// Ack before processing
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("EVENT_RECEIVED"))
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}

	for _, ev := range events {
		h.eng.DispatchAsync(ev)
	}
}

// CreateClient registers a new tenant and issues its routing token
func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TenantID        string                 `json:"tenant_id"`
		Name            string                 `json:"name"`
		AccountID       string                 `json:"account_id"`
		AccessToken     string                 `json:"access_token"`
		Keywords        []registry.KeywordRule `json:"keywords"`
		MentionResponse string                 `json:"mention_response"`
		DailyLimit      *int                   `json:"daily_limit"`
		Timezone        string                 `json:"timezone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if req.TenantID == "" || req.AccountID == "" || req.AccessToken == "" {
		http.Error(w, "tenant_id, account_id and access_token required", http.StatusBadRequest)
		return
	}
	limit := 1000
	if req.DailyLimit != nil {
		limit = *req.DailyLimit
	}
	if req.Timezone != "" {
		if _, err := time.LoadLocation(req.Timezone); err != nil {
			http.Error(w, "invalid timezone", http.StatusBadRequest)
			return
		}
	}

	now := time.Now().UTC()
	rec := &registry.TenantRecord{
		TenantID:        req.TenantID,
		Name:            req.Name,
		RoutingToken:    registry.NewRoutingToken(),
		AccessToken:     req.AccessToken,
		AccountID:       req.AccountID,
		Active:          true,
		Keywords:        req.Keywords,
		MentionResponse: req.MentionResponse,
		DailyLimit:      limit,
		Timezone:        req.Timezone,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := h.reg.CreateTenant(r.Context(), rec); err != nil {
		slog.Error("create client failed", "tenant", req.TenantID, "err", err)
		http.Error(w, "conflict", http.StatusConflict)
		return
	}

	// The routing token is returned once here so the operator can point the
	// platform's webhook subscription at /webhook/{token}.
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	resp := rec.Redacted()
	json.NewEncoder(w).Encode(map[string]any{
		"client":      resp,
		"webhook_url": fmt.Sprintf("/webhook/%s", rec.RoutingToken),
	})
}

// ListClients returns all tenant records (credentials redacted)
func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	records, err := h.reg.ListAll(r.Context())
	if err != nil {
		slog.Error("list clients failed", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	redacted := make([]*registry.TenantRecord, 0, len(records))
	for _, rec := range records {
		redacted = append(redacted, rec.Redacted())
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(redacted)
}

// GetClient returns a tenant record (credentials redacted)
func (h *Handler) GetClient(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	rec, err := h.reg.GetTenant(r.Context(), tenantID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if rec == nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rec.Redacted())
}

// UpdateClient updates mutable tenant configuration fields
func (h *Handler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	var req struct {
		AccessToken     *string                 `json:"access_token"`
		Keywords        *[]registry.KeywordRule `json:"keywords"`
		MentionResponse *string                 `json:"mention_response"`
		DailyLimit      *int                    `json:"daily_limit"`
		Timezone        *string                 `json:"timezone"`
		Active          *bool                   `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	apply := func(name string, fn func() error) bool {
		if err := fn(); err != nil {
			slog.Error("update client failed", "tenant", tenantID, "field", name, "err", err)
			http.Error(w, "not found or internal error", http.StatusNotFound)
			return false
		}
		return true
	}

	if req.AccessToken != nil {
		if !apply("access_token", func() error { return h.reg.UpdateAccessToken(ctx, tenantID, *req.AccessToken) }) {
			return
		}
	}
	if req.Keywords != nil {
		if !apply("keywords", func() error { return h.reg.UpdateKeywords(ctx, tenantID, *req.Keywords) }) {
			return
		}
	}
	if req.MentionResponse != nil {
		if !apply("mention_response", func() error { return h.reg.UpdateMentionResponse(ctx, tenantID, *req.MentionResponse) }) {
			return
		}
	}
	if req.DailyLimit != nil {
		if !apply("daily_limit", func() error { return h.reg.UpdateDailyLimit(ctx, tenantID, *req.DailyLimit) }) {
			return
		}
	}
	if req.Timezone != nil {
		if !apply("timezone", func() error { return h.reg.UpdateTimezone(ctx, tenantID, *req.Timezone) }) {
			return
		}
	}
	if req.Active != nil {
		if !apply("active", func() error { return h.reg.SetActive(ctx, tenantID, *req.Active) }) {
			return
		}
	}

	rec, err := h.reg.GetTenant(ctx, tenantID)
	if err != nil || rec == nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rec.Redacted())
}

// DeleteClient deactivates a tenant (soft delete); ?purge=true removes the
// record permanently.
func (h *Handler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	rec, err := h.reg.GetTenant(r.Context(), tenantID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if rec == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if r.URL.Query().Get("purge") == "true" {
		if err := h.reg.DeleteTenant(r.Context(), tenantID); err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		slog.Info("client purged", "tenant", tenantID)
	} else {
		if err := h.reg.SetActive(r.Context(), tenantID, false); err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		slog.Info("client deactivated", "tenant", tenantID)
	}
	w.WriteHeader(http.StatusNoContent)
}

// ClientStats reports today's quota usage for a tenant
func (h *Handler) ClientStats(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	rec, err := h.reg.GetTenant(r.Context(), tenantID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if rec == nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	used, err := h.quota.Usage(r.Context(), tenantID, rec.Location())
	if err != nil {
		slog.Error("client stats: quota usage failed", "tenant", tenantID, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	resp := struct {
		TenantID   string `json:"tenant_id"`
		Active     bool   `json:"active"`
		DailyLimit int    `json:"daily_limit"`
		UsedToday  int    `json:"used_today"`
		Remaining  *int   `json:"remaining,omitempty"`
	}{
		TenantID:   tenantID,
		Active:     rec.Active,
		DailyLimit: rec.DailyLimit,
		UsedToday:  used,
	}
	if rec.DailyLimit > 0 {
		remaining := rec.DailyLimit - used
		if remaining < 0 {
			remaining = 0
		}
		resp.Remaining = &remaining
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
