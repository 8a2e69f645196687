package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chesstoc/chesstoc/internal/logging"
)

func testLogger() logging.ContextLogger {
	return logging.NewLogger("[test] ", "error")
}

func TestCheckHealthNoChecks(t *testing.T) {
	checker := NewChecker(testLogger(), "1.0.0")

	response := checker.CheckHealth(context.Background())
	assert.Equal(t, StatusHealthy, response.Status)
	assert.Empty(t, response.Components)
	assert.Equal(t, "1.0.0", response.Version)
}

func TestCheckHealthEngineStates(t *testing.T) {
	tests := []struct {
		name       string
		pingErr    error
		wantStatus Status
	}{
		{"engine answers", nil, StatusHealthy},
		{"engine unreachable", errors.New("engine is not running"), StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := NewChecker(testLogger(), "1.0.0")
			checker.RegisterCheck("engine", func(ctx context.Context) error {
				return tt.pingErr
			})

			response := checker.CheckHealth(context.Background())
			assert.Equal(t, tt.wantStatus, response.Status)

			require.Len(t, response.Components, 1)
			assert.Equal(t, "engine", response.Components[0].Name)
			if tt.pingErr != nil {
				assert.Equal(t, StatusUnhealthy, response.Components[0].Status)
				assert.Equal(t, tt.pingErr.Error(), response.Components[0].Message)
			}
		})
	}
}

func TestCheckHealthCallsCheck(t *testing.T) {
	checker := NewChecker(testLogger(), "1.0.0")

	calls := 0
	checker.RegisterCheck("engine", func(ctx context.Context) error {
		calls++
		return nil
	})

	checker.CheckHealth(context.Background())
	checker.CheckHealth(context.Background())
	assert.Equal(t, 2, calls)
}

func TestCheckHealthMixedComponents(t *testing.T) {
	checker := NewChecker(testLogger(), "1.0.0")
	checker.RegisterCheck("engine", func(ctx context.Context) error { return nil })
	checker.RegisterCheck("output", func(ctx context.Context) error {
		return errors.New("output directory not writable")
	})

	response := checker.CheckHealth(context.Background())
	assert.Equal(t, StatusUnhealthy, response.Status)
	assert.Len(t, response.Components, 2)
}

func TestLivenessHandler(t *testing.T) {
	checker := NewChecker(testLogger(), "1.0.0")
	// Liveness ignores registered checks entirely.
	checker.RegisterCheck("engine", func(ctx context.Context) error {
		return errors.New("down")
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	checker.LivenessHandler()(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var response Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, StatusHealthy, response.Status)
}

func TestReadinessHandler(t *testing.T) {
	tests := []struct {
		name     string
		checkErr error
		wantCode int
	}{
		{"ready", nil, http.StatusOK},
		{"not ready", errors.New("engine is not running"), http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := NewChecker(testLogger(), "1.0.0")
			checker.RegisterCheck("engine", func(ctx context.Context) error {
				return tt.checkErr
			})

			req := httptest.NewRequest(http.MethodGet, "/ready", nil)
			rec := httptest.NewRecorder()
			checker.ReadinessHandler()(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)

			var response Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
			require.Len(t, response.Components, 1)
		})
	}
}
