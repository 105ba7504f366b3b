package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/ecopredict/internal/alarm"
	"github.com/rshade/ecopredict/internal/engine"
	"github.com/rshade/ecopredict/internal/score"
)

func newTestServer(t *testing.T, opts ...Option) (*Server, *httptest.Server) {
	t.Helper()
	clock := func() time.Time { return time.Date(2026, time.March, 7, 10, 0, 0, 0, time.UTC) }
	opts = append([]Option{WithClock(clock)}, opts...)
	s := New(engine.NewPredictor(), opts...)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func get(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestPredict(t *testing.T) {
	_, ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/v1/predict", `{
		"usage_percent": 60,
		"humidity_percent": 45,
		"solar_kwh": 5,
		"wall_material": "brick",
		"roof_type": "Asphalt Shingles",
		"building_orientation": "South"
	}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var got predictResponse
	decode(t, resp, &got)
	assert.NotEmpty(t, got.ID)
	assert.False(t, got.Cached)
	assert.InDelta(t, 82.0, got.PredictedScore, 1e-9)
	assert.Equal(t, []string{score.RecommendSolarRoof}, got.Recommendations)
	assert.Equal(t, score.Savings{EnergyKWhPerMonth: 9, WaterGalPerMonth: 45, CostUSDPerYear: 65}, got.Savings)
	assert.Equal(t, score.Model, got.Model)
}

func TestPredict_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantFields []string
	}{
		{
			name:       "malformed json",
			body:       `{"usage_percent":`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing numerics",
			body:       `{"usage_percent": 50}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantFields: []string{score.FieldHumidityPercent, score.FieldSolarKWh},
		},
		{
			name:       "out of range",
			body:       `{"usage_percent": 150, "humidity_percent": -1, "solar_kwh": 5}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantFields: []string{score.FieldUsagePercent, score.FieldHumidityPercent},
		},
		{
			name:       "unknown option",
			body:       `{"usage_percent": 50, "humidity_percent": 45, "solar_kwh": 5, "roof_type": "Thatch"}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantFields: []string{score.FieldRoofType},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ts := newTestServer(t)
			resp := postJSON(t, ts.URL+"/api/v1/predict", tt.body)
			require.Equal(t, tt.wantStatus, resp.StatusCode)

			var got errorResponse
			decode(t, resp, &got)
			assert.NotEmpty(t, got.Error)
			assert.Len(t, got.Fields, len(tt.wantFields))
			for _, f := range tt.wantFields {
				assert.Contains(t, got.Fields, f)
			}
		})
	}
}

func TestPredict_OptionsMatchCaseInsensitively(t *testing.T) {
	_, ts := newTestServer(t)
	resp := postJSON(t, ts.URL+"/api/v1/predict", `{
		"usage_percent": 60,
		"humidity_percent": 45,
		"solar_kwh": 5,
		"roof_type": " solar roof ",
		"building_orientation": "south"
	}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got predictResponse
	decode(t, resp, &got)
	assert.InDelta(t, 85.0, got.PredictedScore, 1e-9)
	assert.Equal(t, []string{score.RecommendOptimized}, got.Recommendations)
}

func TestPredict_OutOfRangeMessage(t *testing.T) {
	_, ts := newTestServer(t)
	resp := postJSON(t, ts.URL+"/api/v1/predict", `{"usage_percent": 50, "humidity_percent": 45, "solar_kwh": 25}`)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var got errorResponse
	decode(t, resp, &got)
	assert.Equal(t, "Must be between 0 and 20 kWh", got.Fields[score.FieldSolarKWh])
}

func TestPredict_MethodNotAllowed(t *testing.T) {
	_, ts := newTestServer(t)
	resp := get(t, ts.URL+"/api/v1/predict")
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestOptions(t *testing.T) {
	_, ts := newTestServer(t)
	resp := get(t, ts.URL+"/api/v1/options")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got optionsResponse
	decode(t, resp, &got)
	assert.Equal(t, score.WallMaterials(), got.WallMaterials)
	assert.Equal(t, score.RoofTypes(), got.RoofTypes)
	assert.Equal(t, score.Orientations(), got.Orientations)
	assert.Equal(t, score.DefaultInput(), got.Defaults)
	assert.InDelta(t, 20.0, got.Ranges[score.FieldSolarKWh].Max, 1e-9)
}

func TestTips(t *testing.T) {
	_, ts := newTestServer(t)
	resp := get(t, ts.URL+"/api/v1/tips")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got struct {
		Tips       []score.Tip       `json:"tips"`
		Appliances []score.Appliance `json:"appliances"`
	}
	decode(t, resp, &got)
	assert.Equal(t, score.Tips(), got.Tips)
	assert.Equal(t, score.Appliances(), got.Appliances)
}

func TestReport(t *testing.T) {
	_, ts := newTestServer(t)

	resp := get(t, ts.URL+"/api/v1/report")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	predict := postJSON(t, ts.URL+"/api/v1/predict", `{"usage_percent": 60, "humidity_percent": 45, "solar_kwh": 5}`)
	require.Equal(t, http.StatusOK, predict.StatusCode)

	resp = get(t, ts.URL+"/api/v1/report")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Generated on: March 7, 2026")
	assert.Contains(t, string(body), "EFFICIENCY SCORE: 82/100")
}

func TestSavings(t *testing.T) {
	_, ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/v1/savings", `{"monthly_energy_bill": 100, "monthly_water_bill": 50}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got struct {
		EnergySavings float64 `json:"energy_savings"`
		WaterSavings  float64 `json:"water_savings"`
		TotalSavings  float64 `json:"total_savings"`
	}
	decode(t, resp, &got)
	assert.InDelta(t, 300.0, got.EnergySavings, 1e-9)
	assert.InDelta(t, 120.0, got.WaterSavings, 1e-9)
	assert.InDelta(t, 420.0, got.TotalSavings, 1e-9)

	resp = postJSON(t, ts.URL+"/api/v1/savings", `{"monthly_energy_bill": -5}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestAlarm(t *testing.T) {
	t.Run("no monitor", func(t *testing.T) {
		_, ts := newTestServer(t)
		resp := get(t, ts.URL+"/api/v1/alarm")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("with monitor", func(t *testing.T) {
		m := alarm.NewMonitor(alarm.DefaultSettings())
		m.Check(91, time.Now())
		_, ts := newTestServer(t, WithMonitor(m))

		resp := get(t, ts.URL+"/api/v1/alarm")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var got alarmResponse
		decode(t, resp, &got)
		assert.True(t, got.Active)
		assert.InDelta(t, 80.0, got.Threshold, 1e-9)
		assert.InDelta(t, 91.0, got.Last.Usage, 1e-9)
		assert.InDelta(t, 30.0, got.CooldownSeconds, 1e-9)
	})
}

func TestHealth(t *testing.T) {
	_, ts := newTestServer(t)
	resp := get(t, ts.URL+"/health")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got map[string]string
	decode(t, resp, &got)
	assert.Equal(t, "ok", got["status"])
	assert.NotEmpty(t, got["version"])
}

type fixedSource struct{ v float64 }

func (f fixedSource) Next(context.Context) (float64, error) { return f.v, nil }

func TestMetrics(t *testing.T) {
	s, ts := newTestServer(t)

	postJSON(t, ts.URL+"/api/v1/predict", `{"usage_percent": 60, "humidity_percent": 45, "solar_kwh": 5}`)
	postJSON(t, ts.URL+"/api/v1/predict", `{"usage_percent": 600, "humidity_percent": 45, "solar_kwh": 5}`)

	_, err := s.InstrumentSource(fixedSource{v: 72.5}).Next(context.Background())
	require.NoError(t, err)
	s.RecordAlarm(alarm.Event{Usage: 95, Threshold: 80})

	resp := get(t, ts.URL+"/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	text := string(body)

	assert.Contains(t, text, `ecopredict_http_requests_total{route="predict",status="200"} 1`)
	assert.Contains(t, text, `ecopredict_http_requests_total{route="predict",status="422"} 1`)
	assert.Contains(t, text, `ecopredict_predictions_total{cached="false"} 1`)
	assert.Contains(t, text, "ecopredict_validation_failures_total 1")
	assert.Contains(t, text, "ecopredict_usage_alarms_total 1")
	assert.Contains(t, text, "ecopredict_usage_percent 95")
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Prediction(50, false)
		m.ValidationFailure()
		m.Usage(10, true)
		m.WrapHandler("x", http.NotFoundHandler()).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestHandler_RecoversPanics(t *testing.T) {
	var logs bytes.Buffer
	s := New(engine.NewPredictor(), WithLogger(zerolog.New(&logs)))

	r := s.Router()
	r.HandleFunc("/boom", func(http.ResponseWriter, *http.Request) { panic("boom") })

	rec := httptest.NewRecorder()
	s.middleware(r).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, logs.String(), "boom")
	assert.Contains(t, logs.String(), `"path":"/boom"`)
}

func TestRun_ShutsDownOnCancel(t *testing.T) {
	s := New(engine.NewPredictor())

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := lis.Addr().String()
	require.NoError(t, lis.Close())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, addr, time.Second) }()

	require.Eventually(t, func() bool {
		resp, getErr := http.Get("http://" + addr + "/health")
		if getErr != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
