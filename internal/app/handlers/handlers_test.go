package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whatif-sim/internal/app/middleware"
	"whatif-sim/internal/domain/models"
	"whatif-sim/internal/domain/services"
	simcb "whatif-sim/internal/eino/callbacks"
	"whatif-sim/internal/eino/components"
	"whatif-sim/internal/eino/config"
	"whatif-sim/internal/eino/flows"
	"whatif-sim/internal/infrastructure/session"
	"whatif-sim/internal/infrastructure/stores/feedback"
	"whatif-sim/pkg/logger"
	"whatif-sim/pkg/retry"
	"whatif-sim/pkg/status"
)

const mindReading = "What if everyone could read minds?"

type envelope struct {
	Success   bool            `json:"success"`
	Code      int             `json:"code"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data"`
	RequestID string          `json:"request_id"`
}

type testEnv struct {
	engine *gin.Engine
	sim    *flows.Simulator
	store  *feedback.MemoryStore
}

func newTestEnv(t *testing.T, gen services.TextGenerator) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.DefaultEinoConfig()
	cfg.Retry = retry.Policy{MaxAttempts: 2, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond, Multiplier: 2}

	log := logger.Discard()
	factory := simcb.NewFactory(&cfg.Callbacks, log)
	sim, err := flows.NewSimulator(context.Background(), gen, cfg, factory, log)
	require.NoError(t, err)

	store := feedback.NewMemoryStore()
	t.Cleanup(func() { _ = store.Close() })

	simHandler := NewSimulationHandler(sim, session.NewCounterGenerator(""), log)
	fbHandler := NewFeedbackHandler(store, log)
	sysHandler := NewSystemHandler(sim.Metrics(), "test")

	engine := gin.New()
	engine.Use(middleware.LoggingMiddleware(&middleware.LoggingConfig{Logger: log}))
	engine.POST("/v1/scenarios/simulate", simHandler.Simulate)
	engine.POST("/v1/scenarios/validate", simHandler.Validate)
	engine.POST("/v1/feedback", fbHandler.SubmitFeedback)
	engine.GET("/v1/feedback/:session_id", fbHandler.ListFeedback)
	engine.GET("/v1/config", simHandler.GetConfig)
	engine.PATCH("/v1/config", simHandler.UpdateConfig)
	engine.GET("/v1/metrics", sysHandler.GetMetrics)
	engine.GET("/v1/health", sysHandler.HealthCheck)

	return &testEnv{engine: engine, sim: sim, store: store}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) envelope {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestSimulate_Success(t *testing.T) {
	env := newTestEnv(t, components.NewDemoGenerator(0))

	resp := env.do(t, http.MethodPost, "/v1/scenarios/simulate", SimulateRequest{Scenario: mindReading})
	require.True(t, resp.Success, resp.Message)
	assert.Equal(t, int(status.CodeOK), resp.Code)
	assert.NotEmpty(t, resp.RequestID)

	var data SimulateResponse
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, "session_1", data.SessionID)
	require.NotNil(t, data.Result)
	require.NotNil(t, data.Result.FormattedOutput)
	assert.Equal(t, "personal", data.Result.FormattedOutput.Metadata.ScenarioType)
	assert.Contains(t, data.Result.PresentationOutput, "🎯 Serious Analysis")
}

func TestSimulate_EchoesSessionID(t *testing.T) {
	env := newTestEnv(t, components.NewDemoGenerator(0))

	resp := env.do(t, http.MethodPost, "/v1/scenarios/simulate", SimulateRequest{Scenario: mindReading, SessionID: "abc"})
	require.True(t, resp.Success)

	var data SimulateResponse
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, "abc", data.SessionID)
}

func TestSimulate_ValidationFailure(t *testing.T) {
	tests := []struct {
		name          string
		disableMetric bool
	}{
		{"metrics enabled", false},
		{"metrics disabled", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, components.NewDemoGenerator(0))
			if tt.disableMetric {
				off := false
				_, err := env.sim.UpdateConfig(flows.ConfigUpdate{EnableMetrics: &off})
				require.NoError(t, err)
			}

			resp := env.do(t, http.MethodPost, "/v1/scenarios/simulate", SimulateRequest{Scenario: "hi"})
			assert.False(t, resp.Success)
			assert.Equal(t, int(status.ErrCodeInvalidParam), resp.Code)
			assert.Contains(t, resp.Message, "detailed")

			var data SimulateResponse
			require.NoError(t, json.Unmarshal(resp.Data, &data))
			require.NotNil(t, data.Result)
			assert.False(t, data.Result.Success)
			assert.Nil(t, data.Result.FormattedOutput)
		})
	}
}

func TestSimulate_BadJSON(t *testing.T) {
	env := newTestEnv(t, components.NewDemoGenerator(0))

	resp := env.do(t, http.MethodPost, "/v1/scenarios/simulate", "{not json")
	assert.False(t, resp.Success)
	assert.Equal(t, int(status.ErrCodeInvalidParam), resp.Code)
}

func TestSimulate_Timeout(t *testing.T) {
	env := newTestEnv(t, components.NewDemoGenerator(time.Second))

	budget := 20 * time.Millisecond
	_, err := env.sim.UpdateConfig(flows.ConfigUpdate{MaxProcessingTime: &budget})
	require.NoError(t, err)

	start := time.Now()
	resp := env.do(t, http.MethodPost, "/v1/scenarios/simulate", SimulateRequest{Scenario: mindReading})
	assert.Less(t, time.Since(start), time.Second)

	assert.False(t, resp.Success)
	assert.Equal(t, int(status.ErrCodeTimeout), resp.Code)
	assert.Equal(t, MsgSimulationTimeout, resp.Message)
}

func TestValidate(t *testing.T) {
	env := newTestEnv(t, components.NewDemoGenerator(0))

	tests := []struct {
		name      string
		scenario  string
		wantValid bool
	}{
		{"valid", "  " + mindReading + "  ", true},
		{"empty", "", false},
		{"inappropriate", "What if a terrorist took over the city council?", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.do(t, http.MethodPost, "/v1/scenarios/validate", ValidateRequest{Scenario: tt.scenario})
			require.True(t, resp.Success)

			var res models.ValidationResult
			require.NoError(t, json.Unmarshal(resp.Data, &res))
			assert.Equal(t, tt.wantValid, res.IsValid)
			if tt.wantValid {
				assert.Equal(t, mindReading, res.SanitizedInput)
			} else {
				assert.NotEmpty(t, res.ErrorMessage)
			}
		})
	}
}

func TestFeedback_SubmitAndList(t *testing.T) {
	env := newTestEnv(t, components.NewDemoGenerator(0))

	fb := models.UserFeedback{
		SessionID:           "session_9",
		Scenario:            mindReading,
		SeriousRating:       4,
		FunRating:           5,
		OverallSatisfaction: 4,
		Comments:            "loved the pigeons",
	}
	resp := env.do(t, http.MethodPost, "/v1/feedback", fb)
	require.True(t, resp.Success, resp.Message)

	resp = env.do(t, http.MethodGet, "/v1/feedback/session_9", nil)
	require.True(t, resp.Success)

	var items []models.UserFeedback
	require.NoError(t, json.Unmarshal(resp.Data, &items))
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].FunRating)
	assert.False(t, items[0].Timestamp.IsZero())

	resp = env.do(t, http.MethodGet, "/v1/feedback/unknown", nil)
	require.True(t, resp.Success)
	assert.JSONEq(t, "[]", string(resp.Data))
}

func TestFeedback_InvalidRating(t *testing.T) {
	env := newTestEnv(t, components.NewDemoGenerator(0))

	fb := models.UserFeedback{
		SessionID:           "session_1",
		Scenario:            mindReading,
		SeriousRating:       6,
		FunRating:           3,
		OverallSatisfaction: 3,
	}
	resp := env.do(t, http.MethodPost, "/v1/feedback", fb)
	assert.False(t, resp.Success)
	assert.Equal(t, int(status.ErrCodeInvalidParam), resp.Code)

	var detail ErrorDetail
	require.NoError(t, json.Unmarshal(resp.Data, &detail))
	assert.Contains(t, detail.Message, "seriousRating")

	items, err := env.store.GetAll(context.Background(), "session_1")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestConfig_GetAndPatch(t *testing.T) {
	env := newTestEnv(t, components.NewDemoGenerator(0))

	resp := env.do(t, http.MethodGet, "/v1/config", nil)
	require.True(t, resp.Success)
	var view configView
	require.NoError(t, json.Unmarshal(resp.Data, &view))
	assert.True(t, view.EnableParallelGeneration)
	assert.Equal(t, int64(30000), view.MaxProcessingTime)

	resp = env.do(t, http.MethodPatch, "/v1/config", map[string]interface{}{
		"enableParallelGeneration": false,
		"maxProcessingTime":        1500,
	})
	require.True(t, resp.Success, resp.Message)
	require.NoError(t, json.Unmarshal(resp.Data, &view))
	assert.False(t, view.EnableParallelGeneration)
	assert.Equal(t, int64(1500), view.MaxProcessingTime)
	assert.True(t, view.EnableLogging)

	cfg := env.sim.GetConfig()
	assert.False(t, cfg.EnableParallelGeneration)
	assert.Equal(t, 1500*time.Millisecond, cfg.MaxProcessingTime)

	resp = env.do(t, http.MethodPatch, "/v1/config", map[string]interface{}{"maxProcessingTime": -1})
	assert.False(t, resp.Success)
	assert.Equal(t, int(status.ErrCodeInvalidParam), resp.Code)
	assert.Equal(t, 1500*time.Millisecond, env.sim.GetConfig().MaxProcessingTime)
}

func TestSystem_MetricsAndHealth(t *testing.T) {
	env := newTestEnv(t, components.NewDemoGenerator(0))
	env.do(t, http.MethodPost, "/v1/scenarios/simulate", SimulateRequest{Scenario: mindReading})

	resp := env.do(t, http.MethodGet, "/v1/metrics", nil)
	require.True(t, resp.Success)
	var snap simcb.Snapshot
	require.NoError(t, json.Unmarshal(resp.Data, &snap))
	assert.Equal(t, int64(1), snap.Simulations)
	assert.Contains(t, snap.Stages, flows.NodeGenerate)

	resp = env.do(t, http.MethodGet, "/v1/health", nil)
	require.True(t, resp.Success)
	assert.Contains(t, string(resp.Data), `"healthy"`)
}

func TestSystem_MetricsUnavailable(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.GET("/v1/metrics", NewSystemHandler(nil, "test").GetMetrics)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/metrics", nil))

	var resp envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, int(status.ErrCodeUnavailable), resp.Code)
}
