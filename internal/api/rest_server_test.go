package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/roguelite-platformer/internal/catalog"
	"github.com/annel0/roguelite-platformer/internal/notify"
	"github.com/annel0/roguelite-platformer/internal/progression"
	"github.com/annel0/roguelite-platformer/internal/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T) (*RestServer, *progression.Store, *prometheus.Registry) {
	t.Helper()
	progress := progression.NewStore(storage.NewMemorySaveStore(), catalog.Default(), &notify.Recorder{})
	reg := prometheus.NewRegistry()
	srv, err := NewRestServer(Config{
		Progress: progress,
		Registry: reg,
		Gatherer: reg,
	})
	require.NoError(t, err)
	return srv, progress, reg
}

func do(t *testing.T, srv *RestServer, method, path string) (*httptest.ResponseRecorder, GenericResponse) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	srv.Handler().ServeHTTP(w, req)

	var resp GenericResponse
	if w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

// dataAs перекладывает Data ответа в типизированную структуру
func dataAs(t *testing.T, resp GenericResponse, out interface{}) {
	t.Helper()
	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out))
}

func TestNewRestServerRequiresProgress(t *testing.T) {
	_, err := NewRestServer(Config{Registry: prometheus.NewRegistry()})
	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	srv, _, _ := newTestServer(t)
	w, _ := do(t, srv, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
	assert.NotEmpty(t, w.Header().Get("X-Trace-Id"))
}

func TestProgressIncludesCosts(t *testing.T) {
	srv, progress, _ := newTestServer(t)
	progress.AddCoins(42)

	w, resp := do(t, srv, http.MethodGet, "/api/progress")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)

	var got ProgressResponse
	dataAs(t, resp, &got)
	assert.Equal(t, 42, got.Coins)
	assert.Equal(t, 1, got.UnlockedLevels)
	assert.Equal(t, progress.MaxLevel(), got.MaxLevel)
	assert.Equal(t, 80, got.Costs[catalog.UpgradeHealth])
	assert.Equal(t, 80, got.LadderCosts[catalog.UpgradeHealth])
	assert.Equal(t, 150, got.LadderCosts[catalog.UpgradeWeaponLevel])
}

func TestLevelsList(t *testing.T) {
	srv, progress, _ := newTestServer(t)
	progress.CompleteLevel(1)

	_, resp := do(t, srv, http.MethodGet, "/api/levels")
	var levels []LevelInfo
	dataAs(t, resp, &levels)
	require.Len(t, levels, progress.MaxLevel())
	assert.Equal(t, LevelInfo{Level: 1, Unlocked: true}, levels[0])
	assert.Equal(t, LevelInfo{Level: 2, Unlocked: true}, levels[1])
	if len(levels) > 2 {
		assert.False(t, levels[2].Unlocked)
	}
}

func TestPurchaseUpgrade(t *testing.T) {
	srv, progress, _ := newTestServer(t)
	progress.AddCoins(100)

	w, resp := do(t, srv, http.MethodPost, "/api/upgrades/health")
	require.Equal(t, http.StatusOK, w.Code)
	var got ProgressResponse
	dataAs(t, resp, &got)
	assert.Equal(t, 20, got.Coins)
	assert.Equal(t, 1, got.CurrentUpgrades.Health)
	assert.Equal(t, 160, got.LadderCosts[catalog.UpgradeHealth], "следующая ступень лестницы")
	assert.Equal(t, 80, got.Costs[catalog.UpgradeHealth], "списывается плоская цена")

	w, resp = do(t, srv, http.MethodPost, "/api/upgrades/health")
	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	assert.False(t, resp.Success)
	assert.Equal(t, 20, progress.Coins(), "неудачная покупка не списывает монеты")
	assert.Equal(t, 1, progress.UpgradeLevel(catalog.UpgradeHealth))
}

func TestPurchaseUnknownUpgrade(t *testing.T) {
	srv, progress, _ := newTestServer(t)
	progress.AddCoins(1000)

	w, resp := do(t, srv, http.MethodPost, "/api/upgrades/armor")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, resp.Message, "armor")
	assert.Equal(t, 1000, progress.Coins())
}

func TestUnlockMovement(t *testing.T) {
	srv, progress, _ := newTestServer(t)

	w, resp := do(t, srv, http.MethodPost, "/api/unlocks/dash")
	require.Equal(t, http.StatusOK, w.Code)
	var got struct {
		Unlock string `json:"unlock"`
		New    bool   `json:"new"`
	}
	dataAs(t, resp, &got)
	assert.Equal(t, "dash", got.Unlock)
	assert.True(t, got.New)
	assert.True(t, progress.HasMovementUnlock("dash"))

	_, resp = do(t, srv, http.MethodPost, "/api/unlocks/dash")
	dataAs(t, resp, &got)
	assert.False(t, got.New, "повторное открытие")

	w, _ = do(t, srv, http.MethodPost, "/api/unlocks/teleport")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResetProgress(t *testing.T) {
	srv, progress, _ := newTestServer(t)
	progress.AddCoins(100)
	progress.PurchaseUpgrade(catalog.UpgradeHealth)
	progress.CompleteLevel(1)

	w, _ := do(t, srv, http.MethodPost, "/api/progress/reset")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, progress.UpgradeLevel(catalog.UpgradeHealth))
	assert.Equal(t, 1, progress.UnlockedLevels())
}

func TestCatalogAndServerInfo(t *testing.T) {
	srv, _, _ := newTestServer(t)

	w, resp := do(t, srv, http.MethodGet, "/api/catalog")
	require.Equal(t, http.StatusOK, w.Code)
	var cat catalog.Catalog
	dataAs(t, resp, &cat)
	assert.Equal(t, 150, cat.Upgrades.Costs[catalog.UpgradeWeaponLevel])

	w, resp = do(t, srv, http.MethodGet, "/api/server")
	require.Equal(t, http.StatusOK, w.Code)
	var info ServerInfo
	dataAs(t, resp, &info)
	assert.Equal(t, Version, info.Version)
	assert.Equal(t, "running", info.Status)
	assert.Greater(t, info.Memory.Goroutines, 0)
}

func TestCORSPreflight(t *testing.T) {
	srv, _, _ := newTestServer(t)
	w, _ := do(t, srv, http.MethodOptions, "/api/progress")
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _, reg := newTestServer(t)
	do(t, srv, http.MethodGet, "/health")

	w, _ := do(t, srv, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}
