package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"sterilizer_control/internal/controller"
	"sterilizer_control/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(m *mockService) *gin.Engine {
	return NewHandler(m.asService(), nil).InitRoutes()
}

func doRequest(router *gin.Engine, method, target string, body []byte, authorized bool) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if authorized {
		req.Header.Set("Authorization", "Bearer valid-token")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	w := doRequest(newTestRouter(newMockService()), http.MethodGet, "/health", nil, false)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if resp["status"] != "ok" {
		t.Fatalf("unexpected body: %v", resp)
	}
}

func TestAuthMiddleware(t *testing.T) {
	router := newTestRouter(newMockService())

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"valid token", "Bearer valid-token", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/sterilizer/state", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			if w.Code != tc.want {
				t.Fatalf("expected %d, got %d (%s)", tc.want, w.Code, w.Body.String())
			}
		})
	}
}

func TestGetState(t *testing.T) {
	m := newMockService()
	m.snapshotFn = func() models.SterilizerState {
		return models.SterilizerState{
			Cycle: models.CycleRuntime{Active: true, Phase: models.PhaseSterilization},
		}
	}
	w := doRequest(newTestRouter(m), http.MethodGet, "/api/v1/sterilizer/state", nil, true)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var st models.SterilizerState
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if !st.Cycle.Active || st.Cycle.Phase != models.PhaseSterilization {
		t.Fatalf("unexpected snapshot: %+v", st.Cycle)
	}
}

func TestGetPrograms(t *testing.T) {
	m := newMockService()
	m.programsFn = func() []models.ProgramConfig {
		return []models.ProgramConfig{{ID: "P121"}, {ID: "P134"}}
	}
	w := doRequest(newTestRouter(m), http.MethodGet, "/api/v1/sterilizer/programs", nil, true)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp struct {
		Count    int                    `json:"count"`
		Programs []models.ProgramConfig `json:"programs"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if resp.Count != 2 || len(resp.Programs) != 2 {
		t.Fatalf("unexpected body: %+v", resp)
	}
}

func TestStartCycle(t *testing.T) {
	t.Run("started", func(t *testing.T) {
		m := newMockService()
		var gotProgram string
		m.startCycleFn = func(_ context.Context, programID string) error {
			gotProgram = programID
			return nil
		}
		w := doRequest(newTestRouter(m), http.MethodPost, "/api/v1/sterilizer/start",
			[]byte(`{"program_id":"P134"}`), true)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
		}
		if gotProgram != "P134" {
			t.Fatalf("program id not forwarded, got %q", gotProgram)
		}
		var resp struct {
			Status string                 `json:"status"`
			State  models.SterilizerState `json:"state"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("bad body: %v", err)
		}
		if resp.Status != "started" {
			t.Fatalf("unexpected status %q", resp.Status)
		}
	})

	t.Run("missing body", func(t *testing.T) {
		w := doRequest(newTestRouter(newMockService()), http.MethodPost, "/api/v1/sterilizer/start",
			[]byte(`{}`), true)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("unknown program", func(t *testing.T) {
		m := newMockService()
		m.startCycleFn = func(context.Context, string) error { return controller.ErrProgramNotFound }
		w := doRequest(newTestRouter(m), http.MethodPost, "/api/v1/sterilizer/start",
			[]byte(`{"program_id":"NOPE"}`), true)
		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
	})

	t.Run("already running", func(t *testing.T) {
		m := newMockService()
		m.startCycleFn = func(context.Context, string) error { return controller.ErrCycleActive }
		w := doRequest(newTestRouter(m), http.MethodPost, "/api/v1/sterilizer/start",
			[]byte(`{"program_id":"P134"}`), true)
		if w.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", w.Code)
		}
	})

	t.Run("pending errors", func(t *testing.T) {
		m := newMockService()
		m.startCycleFn = func(context.Context, string) error { return controller.ErrErrorsPending }
		w := doRequest(newTestRouter(m), http.MethodPost, "/api/v1/sterilizer/start",
			[]byte(`{"program_id":"P134"}`), true)
		if w.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", w.Code)
		}
	})
}

func TestStopCycle(t *testing.T) {
	m := newMockService()
	w := doRequest(newTestRouter(m), http.MethodPost, "/api/v1/sterilizer/stop", nil, true)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !m.stopCalled {
		t.Fatalf("StopCycle was not forwarded")
	}
}

func TestDoorRoutes(t *testing.T) {
	m := newMockService()
	router := newTestRouter(m)
	if w := doRequest(router, http.MethodPost, "/api/v1/sterilizer/door/open", nil, true); w.Code != http.StatusOK {
		t.Fatalf("open: expected 200, got %d", w.Code)
	}
	if w := doRequest(router, http.MethodPost, "/api/v1/sterilizer/door/close", nil, true); w.Code != http.StatusOK {
		t.Fatalf("close: expected 200, got %d", w.Code)
	}
	if !m.openDoorCalled || !m.closeDoorCalled {
		t.Fatalf("door commands not forwarded: %+v", m)
	}
}

func TestStartVacuumTest(t *testing.T) {
	t.Run("started", func(t *testing.T) {
		m := newMockService()
		var gotStab, gotTest float64
		m.startVacuumFn = func(stabilizationSec, testSec float64) error {
			gotStab, gotTest = stabilizationSec, testSec
			return nil
		}
		w := doRequest(newTestRouter(m), http.MethodPost, "/api/v1/sterilizer/vacuum-test",
			[]byte(`{"stabilization_sec":300,"test_sec":600}`), true)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
		}
		if gotStab != 300 || gotTest != 600 {
			t.Fatalf("durations not forwarded: %v, %v", gotStab, gotTest)
		}
	})

	t.Run("cycle active", func(t *testing.T) {
		m := newMockService()
		m.startVacuumFn = func(float64, float64) error { return controller.ErrCycleActive }
		w := doRequest(newTestRouter(m), http.MethodPost, "/api/v1/sterilizer/vacuum-test",
			[]byte(`{"stabilization_sec":300,"test_sec":600}`), true)
		if w.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", w.Code)
		}
	})

	t.Run("missing durations", func(t *testing.T) {
		w := doRequest(newTestRouter(newMockService()), http.MethodPost, "/api/v1/sterilizer/vacuum-test",
			[]byte(`{}`), true)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})
}

func TestResetErrors(t *testing.T) {
	m := newMockService()
	w := doRequest(newTestRouter(m), http.MethodPost, "/api/v1/sterilizer/reset-errors", nil, true)
	if w.Code != http.StatusOK || !m.resetErrorsCalled {
		t.Fatalf("reset not forwarded, code %d", w.Code)
	}
}

func TestPowerRoutes(t *testing.T) {
	m := newMockService()
	router := newTestRouter(m)

	w := doRequest(router, http.MethodPost, "/api/v1/sterilizer/power-fail",
		[]byte(`{"message":"grid outage"}`), true)
	if w.Code != http.StatusOK || m.powerFailMsg != "grid outage" {
		t.Fatalf("power-fail not forwarded, code %d msg %q", w.Code, m.powerFailMsg)
	}

	// The body is optional.
	if w := doRequest(router, http.MethodPost, "/api/v1/sterilizer/power-fail", nil, true); w.Code != http.StatusOK {
		t.Fatalf("power-fail without body: expected 200, got %d", w.Code)
	}

	if w := doRequest(router, http.MethodPost, "/api/v1/sterilizer/power-continue", nil, true); w.Code != http.StatusOK {
		t.Fatalf("power-continue: expected 200, got %d", w.Code)
	}
	if w := doRequest(router, http.MethodPost, "/api/v1/sterilizer/power-abort", nil, true); w.Code != http.StatusOK {
		t.Fatalf("power-abort: expected 200, got %d", w.Code)
	}
	if !m.powerContinued || !m.powerAborted {
		t.Fatalf("power commands not forwarded: %+v", m)
	}
}

func TestSetProgramOverride(t *testing.T) {
	t.Run("accepted", func(t *testing.T) {
		m := newMockService()
		var gotID string
		var gotOv models.ProgramOverride
		m.setOverrideFn = func(programID string, ov models.ProgramOverride) error {
			gotID, gotOv = programID, ov
			return nil
		}
		w := doRequest(newTestRouter(m), http.MethodPut, "/api/v1/sterilizer/programs/P134/override",
			[]byte(`{"hold_seconds":600}`), true)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
		}
		if gotID != "P134" {
			t.Fatalf("program id not forwarded, got %q", gotID)
		}
		if gotOv.HoldSeconds == nil || *gotOv.HoldSeconds != 600 {
			t.Fatalf("override not forwarded: %+v", gotOv)
		}
	})

	t.Run("unknown program", func(t *testing.T) {
		m := newMockService()
		m.setOverrideFn = func(string, models.ProgramOverride) error { return controller.ErrProgramNotFound }
		w := doRequest(newTestRouter(m), http.MethodPut, "/api/v1/sterilizer/programs/NOPE/override",
			[]byte(`{"hold_seconds":600}`), true)
		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
	})
}

func TestCalibrationRoutes(t *testing.T) {
	m := newMockService()
	router := newTestRouter(m)

	w := doRequest(router, http.MethodPut, "/api/v1/sterilizer/calibration",
		[]byte(`{"chamber_temp_c":1.5}`), true)
	if w.Code != http.StatusOK {
		t.Fatalf("put: expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	if m.calibrationPatch == nil || m.calibrationPatch.ChamberTempC == nil || *m.calibrationPatch.ChamberTempC != 1.5 {
		t.Fatalf("patch not forwarded: %+v", m.calibrationPatch)
	}

	if w := doRequest(router, http.MethodDelete, "/api/v1/sterilizer/calibration", nil, true); w.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", w.Code)
	}
	if !m.calibrationReset {
		t.Fatalf("reset not forwarded")
	}
}
