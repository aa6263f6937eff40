// Package server exposes the optimization and forecasting engines and the
// agent layer over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/open-logistics/internal/agent"
	"github.com/iwvelando/open-logistics/internal/config"
	"github.com/iwvelando/open-logistics/internal/forecast"
	"github.com/iwvelando/open-logistics/internal/optimizer"
	"github.com/iwvelando/open-logistics/pkg/mathutil"
	"github.com/iwvelando/open-logistics/pkg/output"
	"github.com/iwvelando/open-logistics/pkg/validation"
	"github.com/rs/cors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// RequestIDHeader carries the per-request identifier on every response.
const RequestIDHeader = "X-Request-ID"

// Operation labels used in logs and metrics.
const (
	operationOptimize     = "optimize"
	operationForecast     = "forecast"
	operationAgentMessage = "agent_message"
)

type ctxKey int

const requestIDKey ctxKey = iota

type handler struct {
	logger  *zap.Logger
	opts    Options
	metrics *metrics
}

// NewHandler constructs the HTTP handler that serves the engine and agent API.
func NewHandler(logger *zap.Logger, opts Options) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts.normalize()

	h := &handler{logger: logger, opts: opts}
	if opts.MetricsEnabled {
		h.metrics = newMetrics()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", h.handleHealth)
	mux.HandleFunc("GET /api/version", h.handleVersion)
	mux.HandleFunc("POST /api/v1/optimize", h.handleOptimize)
	mux.HandleFunc("POST /api/v1/forecast", h.handleForecast)
	mux.HandleFunc("GET /api/v1/agents", h.handleListAgents)
	mux.HandleFunc("GET /api/v1/agents/{name}", h.handleAgentStatus)
	mux.HandleFunc("POST /api/v1/agents/{name}/messages", h.handleAgentMessage)
	if h.metrics != nil {
		mux.Handle("GET /metrics", h.metrics.handler())
	}

	var root http.Handler = mux
	if len(opts.AllowedOrigins) > 0 {
		root = cors.New(cors.Options{
			AllowedOrigins: opts.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost},
			AllowedHeaders: []string{"Content-Type", RequestIDHeader},
			ExposedHeaders: []string{RequestIDHeader},
		}).Handler(root)
	}
	return h.withRequestID(root)
}

type optimizeResponse struct {
	RequestID string `json:"request_id"`
	*optimizer.Result
}

type forecastResponse struct {
	RequestID string `json:"request_id"`
	output.ForecastView
}

type agentListResponse struct {
	RequestID string         `json:"request_id"`
	Agents    []agent.Status `json:"agents"`
	Health    agent.Health   `json:"health"`
}

type agentStatusResponse struct {
	RequestID string `json:"request_id"`
	agent.Status
}

type agentMessageResponse struct {
	RequestID string `json:"request_id"`
	*agent.Response
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.opts.Version,
	})
}

func (h *handler) handleOptimize(w http.ResponseWriter, r *http.Request) {
	op := "server.handleOptimize"
	start := time.Now()

	if h.opts.Optimizer == nil {
		h.respondErrorWithOp(w, r, http.StatusServiceUnavailable, "optimizer unavailable", op)
		return
	}
	body, ok := h.readBody(w, r, op)
	if !ok {
		return
	}

	req, err := config.DecodeOptimizationRequest(body, config.DocumentFormatForContentType(r.Header.Get("Content-Type")))
	if err != nil {
		h.fail(w, r, op, operationOptimize, start, err)
		return
	}

	result, err := runWithTimeout(r.Context(), h.opts.RequestTimeout, func(context.Context) (*optimizer.Result, error) {
		return h.opts.Optimizer.Optimize(req)
	})
	if err != nil {
		h.fail(w, r, op, operationOptimize, start, err)
		return
	}

	h.metrics.record(operationOptimize, outcomeOK, time.Since(start))
	h.metrics.observeConfidence(operationOptimize, result.ConfidenceScore)
	h.writeJSON(w, http.StatusOK, optimizeResponse{RequestID: requestID(r), Result: result})
}

func (h *handler) handleForecast(w http.ResponseWriter, r *http.Request) {
	op := "server.handleForecast"
	start := time.Now()

	if h.opts.Forecaster == nil {
		h.respondErrorWithOp(w, r, http.StatusServiceUnavailable, "forecaster unavailable", op)
		return
	}
	body, ok := h.readBody(w, r, op)
	if !ok {
		return
	}

	req, err := config.DecodeForecastRequest(body, config.DocumentFormatForContentType(r.Header.Get("Content-Type")))
	if err != nil {
		h.fail(w, r, op, operationForecast, start, err)
		return
	}

	result, err := runWithTimeout(r.Context(), h.opts.RequestTimeout, func(context.Context) (*forecast.Result, error) {
		return h.opts.Forecaster.Forecast(req)
	})
	if err != nil {
		h.fail(w, r, op, operationForecast, start, err)
		return
	}

	h.metrics.record(operationForecast, outcomeOK, time.Since(start))
	h.metrics.observeConfidence(operationForecast, mathutil.Mean(result.ConfidenceScores))
	h.writeJSON(w, http.StatusOK, forecastResponse{
		RequestID:    requestID(r),
		ForecastView: output.NewForecastView(result, h.opts.Labels),
	})
}

func (h *handler) handleListAgents(w http.ResponseWriter, r *http.Request) {
	if h.opts.Agents == nil {
		h.respondErrorWithOp(w, r, http.StatusServiceUnavailable, "agent layer unavailable", "server.handleListAgents")
		return
	}
	h.writeJSON(w, http.StatusOK, agentListResponse{
		RequestID: requestID(r),
		Agents:    h.opts.Agents.List(),
		Health:    h.opts.Agents.Health(),
	})
}

func (h *handler) handleAgentStatus(w http.ResponseWriter, r *http.Request) {
	op := "server.handleAgentStatus"
	if h.opts.Agents == nil {
		h.respondErrorWithOp(w, r, http.StatusServiceUnavailable, "agent layer unavailable", op)
		return
	}
	status, err := h.opts.Agents.Status(r.PathValue("name"))
	if err != nil {
		h.respondErrorWithOp(w, r, statusFor(err), err.Error(), op)
		return
	}
	h.writeJSON(w, http.StatusOK, agentStatusResponse{RequestID: requestID(r), Status: status})
}

func (h *handler) handleAgentMessage(w http.ResponseWriter, r *http.Request) {
	op := "server.handleAgentMessage"
	start := time.Now()

	if h.opts.Agents == nil {
		h.respondErrorWithOp(w, r, http.StatusServiceUnavailable, "agent layer unavailable", op)
		return
	}
	body, ok := h.readBody(w, r, op)
	if !ok {
		return
	}

	msg, err := decodeMessage(body, config.DocumentFormatForContentType(r.Header.Get("Content-Type")))
	if err != nil {
		h.fail(w, r, op, operationAgentMessage, start, err)
		return
	}

	name := r.PathValue("name")
	resp, err := runWithTimeout(r.Context(), h.opts.RequestTimeout, func(ctx context.Context) (*agent.Response, error) {
		return h.opts.Agents.Send(ctx, name, msg)
	})
	if err != nil {
		h.fail(w, r, op, operationAgentMessage, start, err)
		return
	}

	h.metrics.record(operationAgentMessage, outcomeOK, time.Since(start))
	h.writeJSON(w, http.StatusOK, agentMessageResponse{RequestID: requestID(r), Response: resp})
}

func decodeMessage(body []byte, format string) (agent.Message, error) {
	op := "server.decodeMessage"
	var doc struct {
		Text    string      `json:"message" yaml:"message"`
		Context interface{} `json:"context" yaml:"context"`
	}
	var err error
	if format == config.DocumentYAML {
		err = yaml.Unmarshal(body, &doc)
	} else {
		err = json.Unmarshal(body, &doc)
	}
	if err != nil {
		return agent.Message{}, validation.Rejectf(op, "", "malformed message: %v", err)
	}

	msg := agent.Message{Text: doc.Text}
	if doc.Context == nil {
		return msg, nil
	}
	section, ok := doc.Context.(map[string]interface{})
	if !ok {
		return agent.Message{}, validation.Rejectf(op, "context", "must be an object, got %T", doc.Context)
	}
	if len(section) == 0 {
		return msg, nil
	}

	// The context follows the same document rules as `agents ask --request`.
	encoded, err := json.Marshal(section)
	if err != nil {
		return agent.Message{}, validation.Rejectf(op, "context", "unsupported value: %v", err)
	}
	if msg.Context, err = config.DecodeMessageContext(encoded, config.DocumentJSON); err != nil {
		return agent.Message{}, err
	}
	return msg, nil
}

// runWithTimeout runs fn on its own goroutine and abandons it when the
// deadline passes. A panic in fn is returned as an error. fn must not write
// to shared state the caller reads after a timeout.
func runWithTimeout[T any](parent context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	type outcome struct {
		value T
		err   error
	}
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("engine call panicked: %v", r)}
			}
		}()
		value, err := fn(ctx)
		done <- outcome{value: value, err: err}
	}()

	select {
	case o := <-done:
		return o.value, o.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

func (h *handler) readBody(w http.ResponseWriter, r *http.Request, op string) ([]byte, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxBodySize)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, r, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request body exceeds limit of %d bytes", h.opts.MaxBodySize), op)
			return nil, false
		}
		h.respondErrorWithOp(w, r, http.StatusBadRequest, fmt.Sprintf("failed to read request body: %v", err), op)
		return nil, false
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, "request body is empty", op)
		return nil, false
	}
	return data, true
}

func (h *handler) fail(w http.ResponseWriter, r *http.Request, op, operation string, start time.Time, err error) {
	h.metrics.record(operation, outcomeFor(err), time.Since(start))

	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusGatewayTimeout {
		msg = fmt.Sprintf("%s exceeded the %s request timeout", operation, h.opts.RequestTimeout)
	}
	h.respondErrorWithOp(w, r, status, msg, op)
}

func statusFor(err error) int {
	switch {
	case validation.IsRejected(err):
		return http.StatusBadRequest
	case errors.Is(err, agent.ErrAgentNotFound):
		return http.StatusNotFound
	case errors.Is(err, agent.ErrAgentNotRunning),
		errors.Is(err, agent.ErrAgentDisabled),
		errors.Is(err, agent.ErrManagerClosed):
		return http.StatusConflict
	case errors.Is(err, agent.ErrEngineUnavailable), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func outcomeFor(err error) string {
	switch {
	case validation.IsRejected(err):
		return outcomeRejected
	case errors.Is(err, context.DeadlineExceeded):
		return outcomeTimeout
	default:
		return outcomeError
	}
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, r *http.Request, status int, msg string, op string) {
	fields := []zap.Field{
		zap.String("op", op),
		zap.String("request_id", requestID(r)),
		zap.Int("status", status),
		zap.String("error", msg),
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", fields...)
	} else {
		h.logger.Warn("request rejected", fields...)
	}

	h.writeJSON(w, status, map[string]string{"error": msg, "request_id": requestID(r)})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

// withRequestID assigns every request an ID, echoes it in RequestIDHeader
// and logs one line per completed request. A well-formed incoming UUID is kept.
func (h *handler) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))

		h.logger.Info("request completed",
			zap.String("op", "server.ServeHTTP"),
			zap.String("request_id", id),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func requestID(r *http.Request) string {
	if id, ok := r.Context().Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}
