// Package server exposes the predictor over HTTP for local integrations.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/rshade/ecopredict/internal/alarm"
	"github.com/rshade/ecopredict/internal/engine"
	"github.com/rshade/ecopredict/internal/report"
	"github.com/rshade/ecopredict/internal/savings"
	"github.com/rshade/ecopredict/internal/score"
	"github.com/rshade/ecopredict/pkg/version"
)

const (
	maxBodyBytes    = 1 << 20
	shutdownTimeout = 5 * time.Second
)

// Server routes HTTP requests to the predictor, the savings calculator and
// the usage monitor.
type Server struct {
	predictor *engine.Predictor
	monitor   *alarm.Monitor
	metrics   *Metrics
	logger    zerolog.Logger
	now       func() time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithMonitor exposes the monitor's state on /api/v1/alarm.
func WithMonitor(m *alarm.Monitor) Option {
	return func(s *Server) { s.monitor = m }
}

// WithLogger sets the logger used for access and recovery logs.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithClock overrides the time source used for report headers.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// New returns a Server backed by predictor.
func New(predictor *engine.Predictor, opts ...Option) *Server {
	s := &Server{
		predictor: predictor,
		metrics:   NewMetrics(),
		logger:    zerolog.Nop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Metrics returns the server's collectors.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Router builds the route table without middleware.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	s.handle(r, "/api/v1/predict", "predict", s.handlePredict, http.MethodPost)
	s.handle(r, "/api/v1/options", "options", s.handleOptions, http.MethodGet)
	s.handle(r, "/api/v1/tips", "tips", s.handleTips, http.MethodGet)
	s.handle(r, "/api/v1/report", "report", s.handleReport, http.MethodGet)
	s.handle(r, "/api/v1/savings", "savings", s.handleSavings, http.MethodPost)
	s.handle(r, "/api/v1/alarm", "alarm", s.handleAlarm, http.MethodGet)
	s.handle(r, "/health", "health", s.handleHealth, http.MethodGet)
	r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	return r
}

func (s *Server) handle(r *mux.Router, path, route string, h http.HandlerFunc, method string) {
	r.Handle(path, s.metrics.WrapHandler(route, h)).Methods(method)
}

// Handler returns the router wrapped in CORS, recovery and access logging.
func (s *Server) Handler() http.Handler {
	return s.middleware(s.Router())
}

func (s *Server) middleware(next http.Handler) http.Handler {
	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)
	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{s.logger}),
		handlers.PrintRecoveryStack(false),
	)
	return handlers.CustomLoggingHandler(io.Discard, recovery(cors(next)), s.logAccess)
}

func (s *Server) logAccess(_ io.Writer, p handlers.LogFormatterParams) {
	s.logger.Info().
		Str("component", "server").
		Str("method", p.Request.Method).
		Str("path", p.URL.Path).
		Int("status", p.StatusCode).
		Int("size", p.Size).
		Dur("elapsed", time.Since(p.TimeStamp)).
		Msg("request")
}

type recoveryLogger struct {
	logger zerolog.Logger
}

func (l recoveryLogger) Println(v ...interface{}) {
	l.logger.Error().Str("component", "server").Msg(fmt.Sprint(v...))
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string, readTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("component", "server").Str("addr", addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving on %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

// predictRequest mirrors score.Input with optional numerics so a missing
// field can be told apart from zero.
type predictRequest struct {
	UsagePercent    *float64 `json:"usage_percent"`
	HumidityPercent *float64 `json:"humidity_percent"`
	SolarKWh        *float64 `json:"solar_kwh"`
	WallMaterial    string   `json:"wall_material"`
	RoofType        string   `json:"roof_type"`
	Orientation     string   `json:"building_orientation"`
}

func (req predictRequest) input() (score.Input, map[string]string) {
	fields := make(map[string]string)
	var in score.Input

	numeric := []struct {
		name string
		src  *float64
		dst  *float64
	}{
		{score.FieldUsagePercent, req.UsagePercent, &in.UsagePercent},
		{score.FieldHumidityPercent, req.HumidityPercent, &in.HumidityPercent},
		{score.FieldSolarKWh, req.SolarKWh, &in.SolarKWh},
	}
	for _, n := range numeric {
		if n.src == nil {
			fields[n.name] = "Required"
			continue
		}
		*n.dst = *n.src
	}

	var err error
	if in.WallMaterial, err = score.ParseWallMaterial(req.WallMaterial); err != nil {
		fields[score.FieldWallMaterial] = "Unknown option"
	}
	if in.RoofType, err = score.ParseRoofType(req.RoofType); err != nil {
		fields[score.FieldRoofType] = "Unknown option"
	}
	if in.Orientation, err = score.ParseOrientation(req.Orientation); err != nil {
		fields[score.FieldOrientation] = "Unknown option"
	}
	return in, fields
}

type predictResponse struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Cached    bool      `json:"cached"`
	score.Result
}

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	in, fields := req.input()
	if err := score.Validate(in); err != nil {
		for k, v := range score.FieldErrors(err) {
			fields[k] = v
		}
	}
	if len(fields) > 0 {
		s.metrics.ValidationFailure()
		writeError(w, http.StatusUnprocessableEntity, "invalid input", fields)
		return
	}

	pred, err := s.predictor.Predict(r.Context(), in)
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "prediction cancelled", nil)
		return
	default:
		s.logger.Error().Err(err).Str("component", "server").Msg("prediction failed")
		writeError(w, http.StatusInternalServerError, "prediction failed", nil)
		return
	}

	s.metrics.Prediction(pred.Result.PredictedScore, pred.Cached)
	writeJSON(w, http.StatusOK, predictResponse{
		ID:        pred.ID,
		CreatedAt: pred.CreatedAt,
		Cached:    pred.Cached,
		Result:    pred.Result,
	})
}

type rangeInfo struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Unit string  `json:"unit,omitempty"`
}

type optionsResponse struct {
	WallMaterials []score.WallMaterial `json:"wall_materials"`
	RoofTypes     []score.RoofType     `json:"roof_types"`
	Orientations  []score.Orientation  `json:"building_orientations"`
	Ranges        map[string]rangeInfo `json:"ranges"`
	Defaults      score.Input          `json:"defaults"`
}

func (s *Server) handleOptions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, optionsResponse{
		WallMaterials: score.WallMaterials(),
		RoofTypes:     score.RoofTypes(),
		Orientations:  score.Orientations(),
		Ranges: map[string]rangeInfo{
			score.FieldUsagePercent:    {Min: score.MinPercent, Max: score.MaxPercent, Unit: "%"},
			score.FieldHumidityPercent: {Min: score.MinPercent, Max: score.MaxPercent, Unit: "%"},
			score.FieldSolarKWh:        {Min: score.MinSolarKWh, Max: score.MaxSolarKWh, Unit: "kWh"},
		},
		Defaults: score.DefaultInput(),
	})
}

func (s *Server) handleTips(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Tips       []score.Tip       `json:"tips"`
		Appliances []score.Appliance `json:"appliances"`
	}{score.Tips(), score.Appliances()})
}

func (s *Server) handleReport(w http.ResponseWriter, _ *http.Request) {
	pred, ok := s.predictor.Last()
	if !ok {
		writeError(w, http.StatusNotFound, "no prediction has been made yet", nil)
		return
	}
	now := s.now()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.FileName(now)))
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, report.Text(pred.Result, now))
}

func (s *Server) handleSavings(w http.ResponseWriter, r *http.Request) {
	var in savings.BillInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	est, err := savings.Calculate(in)
	if err != nil {
		if errors.Is(err, savings.ErrInvalidBill) {
			writeError(w, http.StatusUnprocessableEntity, err.Error(), nil)
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	writeJSON(w, http.StatusOK, est)
}

type alarmResponse struct {
	Enabled         bool          `json:"enabled"`
	Threshold       float64       `json:"threshold"`
	IntervalSeconds float64       `json:"interval_seconds"`
	CooldownSeconds float64       `json:"cooldown_seconds"`
	Active          bool          `json:"active"`
	Last            alarm.Reading `json:"last"`
}

func (s *Server) handleAlarm(w http.ResponseWriter, _ *http.Request) {
	if s.monitor == nil {
		writeError(w, http.StatusNotFound, "usage monitor is not running", nil)
		return
	}
	settings := s.monitor.Settings()
	writeJSON(w, http.StatusOK, alarmResponse{
		Enabled:         settings.Enabled,
		Threshold:       settings.Threshold,
		IntervalSeconds: settings.Interval.Seconds(),
		CooldownSeconds: settings.Cooldown.Seconds(),
		Active:          s.monitor.Active(),
		Last:            s.monitor.Last(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": version.GetVersion(),
	})
}

// InstrumentSource reports every reading from src on the usage gauge.
func (s *Server) InstrumentSource(src alarm.Source) alarm.Source {
	return instrumentedSource{src: src, metrics: s.metrics}
}

// RecordAlarm counts a raised alarm.
func (s *Server) RecordAlarm(ev alarm.Event) {
	s.metrics.Usage(ev.Usage, true)
}

type instrumentedSource struct {
	src     alarm.Source
	metrics *Metrics
}

func (i instrumentedSource) Next(ctx context.Context) (float64, error) {
	v, err := i.src.Next(ctx)
	if err == nil {
		i.metrics.Usage(v, false)
	}
	return v, err
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string, fields map[string]string) {
	writeJSON(w, status, errorResponse{Error: msg, Fields: fields})
}
