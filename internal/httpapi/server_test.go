package httpapi_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/rngsim/internal/config"
	"github.com/cory-johannsen/rngsim/internal/game/economy"
	"github.com/cory-johannsen/rngsim/internal/game/engine"
	"github.com/cory-johannsen/rngsim/internal/game/round"
	"github.com/cory-johannsen/rngsim/internal/game/state"
	"github.com/cory-johannsen/rngsim/internal/httpapi"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var epoch = time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

type staticViewer engine.View

func (v staticViewer) View() engine.View { return engine.View(v) }

func sampleView() engine.View {
	batch := func(id string, hits int) round.RollBatch {
		return round.RollBatch{ID: id, Hits: hits, TotalCoins: int64(hits) * 11, InstanceCountAtTime: 1, Timestamp: epoch}
	}
	return engine.View{
		Coins:             1234,
		Target:            "42",
		Range:             round.Range{Min: 0, Max: 99},
		Upgrades:          economy.DefaultLedger(),
		Stats:             state.Statistics{StartTime: epoch, ManualClicks: 7, AutoClicks: 3, TotalHits: 2, TotalNumbersGenerated: 10},
		History:           []round.RollBatch{batch("c", 1), batch("b", 0), batch("a", 1)},
		BaseReward:        10,
		EffectiveReward:   11,
		MultiplierPercent: 110,
		BurstCost:         20,
		BurstSize:         8,
		HitRate:           20,
		BestHitStreak:     1,
		LargestReward:     11,
	}
}

func newServer(t *testing.T, v engine.View, origins []string) *httpapi.Server {
	t.Helper()
	cfg := config.HTTPConfig{Addr: "127.0.0.1:0", AllowedOrigins: origins}
	return httpapi.New(zaptest.NewLogger(t), cfg, staticViewer(v), func() time.Time { return epoch.Add(90 * time.Second) })
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealth(t *testing.T) {
	rec := get(t, newServer(t, sampleView(), []string{"*"}).Router(), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestStatus(t *testing.T) {
	rec := get(t, newServer(t, sampleView(), []string{"*"}).Router(), "/game/status")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body httpapi.StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(1234), body.Coins)
	assert.Equal(t, "42", body.Target)
	require.NotNil(t, body.Range)
	assert.Equal(t, int64(99), body.Range.Max)
	assert.Equal(t, int64(100), body.Odds)
	assert.Equal(t, int64(11), body.EffectiveReward)
	assert.Equal(t, 100, int(body.Upgrades.AutoClicker.Cost))
}

func TestStatusWithoutTarget(t *testing.T) {
	v := sampleView()
	v.Target = ""
	rec := get(t, newServer(t, v, []string{"*"}).Router(), "/game/status")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), `"range"`)
	assert.NotContains(t, rec.Body.String(), `"odds"`)
}

func TestStats(t *testing.T) {
	rec := get(t, newServer(t, sampleView(), []string{"*"}).Router(), "/game/stats")
	require.Equal(t, http.StatusOK, rec.Code)

	var body httpapi.StatsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(90), body.SecondsPlayed)
	assert.Equal(t, int64(10), body.TotalClicks)
	assert.InDelta(t, 20.0, body.HitRate, 1e-9)
	assert.Equal(t, 1, body.BestHitStreak)
}

func TestHistory(t *testing.T) {
	h := newServer(t, sampleView(), []string{"*"}).Router()

	var all httpapi.HistoryResponse
	rec := get(t, h, "/game/history")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	require.Len(t, all.Batches, 3)
	assert.Equal(t, "c", all.Batches[0].ID)

	var two httpapi.HistoryResponse
	rec = get(t, h, "/game/history?limit=2")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &two))
	assert.Len(t, two.Batches, 2)

	for _, bad := range []string{"0", "-1", "many"} {
		rec = get(t, h, "/game/history?limit="+bad)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "limit=%s", bad)
	}
}

func TestHistoryEmptyIsArray(t *testing.T) {
	v := sampleView()
	v.History = nil
	rec := get(t, newServer(t, v, []string{"*"}).Router(), "/game/history")
	assert.Contains(t, rec.Body.String(), `"batches":[]`)
}

func TestCORS(t *testing.T) {
	h := newServer(t, sampleView(), []string{"http://dash.local"}).Router()

	req := httptest.NewRequest(http.MethodGet, "/game/status", nil)
	req.Header.Set("Origin", "http://dash.local")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "http://dash.local", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/game/status", nil)
	req.Header.Set("Origin", "http://evil.local")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestStartServesUntilStop(t *testing.T) {
	s := newServer(t, sampleView(), []string{"*"})
	done := make(chan error, 1)
	go func() { done <- s.Start() }()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	addr, err := s.Addr(ctx)
	require.NoError(t, err)

	resp, err := http.Get("http://" + addr.String() + "/healthz")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Contains(t, string(body), "ok")

	s.Stop()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestStartFailsOnBadAddress(t *testing.T) {
	cfg := config.HTTPConfig{Addr: "not-an-address:xyz"}
	s := httpapi.New(zaptest.NewLogger(t), cfg, staticViewer(sampleView()), nil)
	assert.Error(t, s.Start())
}
