package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/asset-escrow/internal/config"
	"github.com/ignatzorin/asset-escrow/internal/http/handlers"
	"github.com/ignatzorin/asset-escrow/internal/infrastructure/persistence"
	"github.com/ignatzorin/asset-escrow/internal/interface/http/handler"
	"github.com/ignatzorin/asset-escrow/internal/logger"
	"github.com/ignatzorin/asset-escrow/internal/observability"
	"github.com/ignatzorin/asset-escrow/internal/pkg/vault"
	"github.com/ignatzorin/asset-escrow/internal/service"
	"github.com/ignatzorin/asset-escrow/internal/usecase/transaction"
	"github.com/ignatzorin/asset-escrow/internal/ws"
)

func setup(t *testing.T, env string) (*gin.Engine, *service.TokenManager) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger.Discard()

	cfg := &config.Config{
		Env:             env,
		AllowedOrigins:  []string{"http://localhost:3000"},
		RateLimitLimit:  100,
		RateLimitPeriod: time.Minute,
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	hub := ws.NewHub(ctx)
	go hub.Run()

	store := persistence.NewMemoryStore()
	sealer, err := vault.NewSealer("0123456789abcdef0123456789abcdef")
	require.NoError(t, err)
	tokens := service.NewTokenManager("router-test-secret-router-test-secret", time.Hour)
	metrics := observability.NewMetrics()

	svc := transaction.NewService(store, store, sealer)
	svc.SetNotifier(hub)
	svc.SetMetrics(metrics)

	engine := SetupRouter(cfg, Deps{
		Transactions: handler.NewTransactionHandler(svc),
		WS:           handlers.NewWSHandler(hub, tokens, cfg.AllowedOrigins),
		Health:       handlers.NewHealthHandler(nil, config.StoreDriverMemory),
		Seed:         handlers.NewSeedHandler(service.NewSeedService(store, tokens)),
		Tokens:       tokens,
		Metrics:      metrics,
	})
	return engine, tokens
}

func call(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouter_Health(t *testing.T) {
	r, _ := setup(t, config.EnvDevelopment)

	w := call(t, r, "GET", "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"store":"memory"`)
}

func TestRouter_RequiresAuth(t *testing.T) {
	r, _ := setup(t, config.EnvDevelopment)

	w := call(t, r, "GET", "/api/transactions", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = call(t, r, "GET", "/api/transactions", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_InvalidTransactionID(t *testing.T) {
	r, tokens := setup(t, config.EnvDevelopment)
	token, _, err := tokens.GenerateAccess(uuid.New())
	require.NoError(t, err)

	w := call(t, r, "GET", "/api/transactions/123", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_SeedAndPurchase(t *testing.T) {
	r, _ := setup(t, config.EnvDevelopment)

	w := call(t, r, "POST", "/api/dev/seed?num_listings=2", "", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var seeded struct {
		Data struct {
			Seller   service.SeedAccount `json:"seller"`
			Buyer    service.SeedAccount `json:"buyer"`
			Listings []struct {
				ID    string `json:"id"`
				Price string `json:"price"`
			} `json:"listings"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &seeded))
	require.Len(t, seeded.Data.Listings, 2)

	w = call(t, r, "POST", "/api/transactions", seeded.Data.Buyer.AccessToken, map[string]string{
		"listing_id": seeded.Data.Listings[0].ID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		Data struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "payment_received", created.Data.Status)

	w = call(t, r, "POST", "/api/transactions/"+created.Data.ID+"/cancel", seeded.Data.Seller.AccessToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = call(t, r, "GET", "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `escrow_operations_total{operation="cancel",outcome="ok"} 1`)
}

func TestRouter_SeedDisabledInProduction(t *testing.T) {
	r, _ := setup(t, config.EnvProduction)

	w := call(t, r, "POST", "/api/dev/seed", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_CORSPreflight(t *testing.T) {
	r, _ := setup(t, config.EnvDevelopment)

	req, _ := http.NewRequest("OPTIONS", "/api/transactions", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_WSRequiresToken(t *testing.T) {
	r, _ := setup(t, config.EnvDevelopment)

	w := call(t, r, "GET", "/api/ws", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
