package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/xavierca1/ligue-leads/internal/entity"
	"github.com/xavierca1/ligue-leads/internal/infra/http/handlers"
	"github.com/xavierca1/ligue-leads/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-leads/internal/usecase"
)

type stubDistributor struct{}

func (stubDistributor) ExecuteByID(context.Context, usecase.DistributeByIDInput) (*usecase.DistributionOutput, error) {
	return &usecase.DistributionOutput{LeadID: 1, AssignedTo: "Ana", Status: entity.LeadStatusSent}, nil
}

func (stubDistributor) ExecuteBySource(context.Context, usecase.DistributeBySourceInput, usecase.RequestMeta) (*usecase.DistributionOutput, error) {
	return &usecase.DistributionOutput{LeadID: 2, AssignedTo: "Bruno", Status: entity.LeadStatusSent}, nil
}

type stubAudit struct{}

func (stubAudit) ByLead(context.Context, int64, int) ([]entity.AuditEvent, error) { return nil, nil }
func (stubAudit) ByRotation(context.Context, int64, int, int) ([]entity.AuditEvent, error) {
	return nil, nil
}
func (stubAudit) Failures(context.Context, int) ([]entity.AuditEvent, error) { return nil, nil }
func (stubAudit) NotificationStats(context.Context, *int64, int) (*entity.NotificationStats, error) {
	return &entity.NotificationStats{}, nil
}

func testRouter(limit int) http.Handler {
	return newRouter(testDeps(limit))
}

func testDeps(limit int) routerDeps {
	return routerDeps{
		Webhook:      handlers.NewWebhookHandler(stubDistributor{}, nil),
		Admin:        handlers.NewAdminHandler(nil, nil, nil),
		Logs:         handlers.NewLogsHandler(stubAudit{}, nil),
		Health:       handlers.NewHealthHandler(nil, nil, nil),
		Limiter:      middleware.NewMemoryLimiter(limit, time.Minute),
		WebhookToken: "hook-secret",
		AdminToken:   "admin-secret",
		CORSOrigins:  []string{"*"},
	}
}

func do(h http.Handler, method, target, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_HealthIsPublic(t *testing.T) {
	rec := do(testRouter(100), http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_WebhookAuth(t *testing.T) {
	r := testRouter(100)
	body := `{"name":"Ana","email":"ana@example.com","phone":"1"}`

	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodPost, "/api/webhook/lead/1", "", body).Code)
	assert.Equal(t, http.StatusForbidden, do(r, http.MethodPost, "/api/webhook/lead/1", "admin-secret", body).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/api/webhook/lead/1", "hook-secret", body).Code)
}

func TestRouter_AdminRoutesUseAdminToken(t *testing.T) {
	r := testRouter(100)

	assert.Equal(t, http.StatusForbidden, do(r, http.MethodGet, "/logs/errors", "hook-secret", "").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/logs/errors", "admin-secret", "").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/logs/discord-stats/3", "admin-secret", "").Code)
}

func TestRouter_WebhookRateLimited(t *testing.T) {
	r := testRouter(2)
	body := `{"name":"Ana","email":"ana@example.com","mobile_number":"1","source_url":"https://x.io"}`

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/api/webhook/lead-by-source", "hook-secret", body).Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, do(r, http.MethodPost, "/api/webhook/lead-by-source", "hook-secret", body).Code)
}

func TestRouter_RateLimitIgnoresForwardedFor(t *testing.T) {
	body := `{"name":"Ana","email":"ana@example.com","mobile_number":"1","source_url":"https://x.io"}`
	post := func(h http.Handler, xff string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/webhook/lead-by-source", strings.NewReader(body))
		req.RemoteAddr = "198.51.100.1:4000"
		req.Header.Set("Authorization", "Bearer hook-secret")
		req.Header.Set("X-Forwarded-For", xff)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	r := testRouter(2)
	assert.Equal(t, http.StatusOK, post(r, "203.0.113.1"))
	assert.Equal(t, http.StatusOK, post(r, "203.0.113.2"))
	assert.Equal(t, http.StatusTooManyRequests, post(r, "203.0.113.3"))

	deps := testDeps(2)
	deps.TrustProxy = true
	r = newRouter(deps)
	for _, ip := range []string{"203.0.113.1", "203.0.113.2", "203.0.113.3"} {
		assert.Equal(t, http.StatusOK, post(r, ip))
	}
}
