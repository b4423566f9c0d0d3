package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"expense-assistant/internal/domain"
	"expense-assistant/internal/usecase"
)

const (
	routeClassify = "classify"
	routeQuery    = "query"

	headerCorrelationID = "X-Correlation-Id"
)

type Extractor interface {
	Extract(ctx context.Context, in usecase.ExtractInput) (domain.Expense, error)
}

type Answerer interface {
	Answer(ctx context.Context, in usecase.AnswerInput) (domain.Answer, error)
}

type Handler struct {
	extractor     Extractor
	answerer      Answerer
	missingConfig []string
	log           *slog.Logger
}

type Option func(*Handler)

// WithMissingConfig makes the query endpoint answer 500 before doing any work
// when required server configuration is absent.
func WithMissingConfig(names []string) Option {
	return func(h *Handler) {
		h.missingConfig = append([]string(nil), names...)
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.log = l
		}
	}
}

type classifyRequest struct {
	Text string `json:"text"`
}

type queryRequest struct {
	Question  string `json:"question"`
	GroupCode string `json:"group_code"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func NewHandler(extractor Extractor, answerer Answerer, opts ...Option) (*Handler, error) {
	if extractor == nil {
		return nil, errors.New("handler: extractor must not be nil")
	}
	if answerer == nil {
		return nil, errors.New("handler: answerer must not be nil")
	}
	h := &Handler{extractor: extractor, answerer: answerer, log: slog.Default()}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Handle dispatches on the last path segment so the same function serves
// /classify, /query and prefixed deployments of them.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	switch routeOf(req.Path) {
	case routeClassify:
		return h.HandleClassify(ctx, req)
	case routeQuery:
		return h.HandleQuery(ctx, req)
	}
	return h.notFound(req), nil
}

func (h *Handler) notFound(req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	correlationID := correlationIDFrom(req.Headers)
	h.log.Warn("route not found", "correlation_id", correlationID, "path", req.Path, "method", req.HTTPMethod)
	return jsonResponse(http.StatusNotFound, errorResponse{Error: "Not Found"}, correlationID)
}

func (h *Handler) HandleClassify(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	start := time.Now()
	correlationID := correlationIDFrom(req.Headers)
	resp := h.classify(ctx, req, correlationID)
	h.logRequest(routeClassify, req, correlationID, resp.StatusCode, start)
	return resp, nil
}

func (h *Handler) HandleQuery(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	start := time.Now()
	correlationID := correlationIDFrom(req.Headers)
	resp := h.query(ctx, req, correlationID)
	h.logRequest(routeQuery, req, correlationID, resp.StatusCode, start)
	return resp, nil
}

func (h *Handler) classify(ctx context.Context, req events.APIGatewayProxyRequest, correlationID string) events.APIGatewayProxyResponse {
	if req.HTTPMethod == http.MethodOptions {
		return preflightResponse()
	}
	if req.HTTPMethod != http.MethodPost {
		return jsonResponse(http.StatusMethodNotAllowed, errorResponse{Error: "Method Not Allowed"}, correlationID)
	}

	var in classifyRequest
	if err := decodeBody(req, &in); err != nil {
		return h.invalidBody(err, routeClassify, correlationID)
	}

	out, err := h.extractor.Extract(ctx, usecase.ExtractInput{Text: in.Text})
	if err != nil {
		return h.fromError(err, routeClassify, correlationID)
	}
	return jsonResponse(http.StatusOK, out, correlationID)
}

func (h *Handler) query(ctx context.Context, req events.APIGatewayProxyRequest, correlationID string) events.APIGatewayProxyResponse {
	if req.HTTPMethod == http.MethodOptions {
		return preflightResponse()
	}
	if len(h.missingConfig) > 0 {
		h.log.Error("server misconfigured", "correlation_id", correlationID, "route", routeQuery, "missing", h.missingConfig)
		return jsonResponse(http.StatusInternalServerError, errorResponse{Error: "Missing server env vars"}, correlationID)
	}
	if req.HTTPMethod != http.MethodPost {
		return jsonResponse(http.StatusMethodNotAllowed, errorResponse{Error: "Method Not Allowed"}, correlationID)
	}

	var in queryRequest
	if err := decodeBody(req, &in); err != nil {
		return h.invalidBody(err, routeQuery, correlationID)
	}

	out, err := h.answerer.Answer(ctx, usecase.AnswerInput{Question: in.Question, GroupCode: in.GroupCode})
	if err != nil {
		return h.fromError(err, routeQuery, correlationID)
	}
	return jsonResponse(http.StatusOK, out, correlationID)
}

func (h *Handler) invalidBody(err error, route, correlationID string) events.APIGatewayProxyResponse {
	h.log.Warn("invalid request body", "correlation_id", correlationID, "route", route, "err", err)
	return jsonResponse(http.StatusBadRequest, errorResponse{
		Error: "Invalid JSON body",
		Code:  string(usecase.ErrorInvalidInput),
	}, correlationID)
}

func (h *Handler) fromError(err error, route, correlationID string) events.APIGatewayProxyResponse {
	var ucErr *usecase.Error
	if !errors.As(err, &ucErr) {
		h.log.Error("unexpected error", "correlation_id", correlationID, "route", route, "err", err)
		return jsonResponse(http.StatusInternalServerError, errorResponse{
			Error: err.Error(),
			Code:  string(usecase.ErrorInternal),
		}, correlationID)
	}

	status := http.StatusInternalServerError
	if ucErr.Code == usecase.ErrorInvalidInput {
		status = http.StatusBadRequest
		h.log.Info("request rejected", "correlation_id", correlationID, "route", route, "reason", ucErr.Reason)
	} else {
		h.log.Error("request failed", "correlation_id", correlationID, "route", route, "code", ucErr.Code, "reason", ucErr.Reason, "err", ucErr.Err)
	}
	return jsonResponse(status, errorResponse{Error: ucErr.Message(), Code: string(ucErr.Code)}, correlationID)
}

func (h *Handler) logRequest(route string, req events.APIGatewayProxyRequest, correlationID string, status int, start time.Time) {
	h.log.Info("request handled",
		"correlation_id", correlationID,
		"route", route,
		"method", req.HTTPMethod,
		"status", status,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

// decodeBody treats an empty body as an empty object so required-field
// checks report the missing field rather than a parse error.
func decodeBody(req events.APIGatewayProxyRequest, v any) error {
	body := req.Body
	if req.IsBase64Encoded {
		raw, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return err
		}
		body = string(raw)
	}
	if strings.TrimSpace(body) == "" {
		return nil
	}
	return json.Unmarshal([]byte(body), v)
}

func routeOf(path string) string {
	path = strings.TrimRight(path, "/")
	if i := strings.LastIndex(path, "/"); i >= 0 {
		path = path[i+1:]
	}
	return path
}

func correlationIDFrom(headers map[string]string) string {
	for k, v := range headers {
		if strings.EqualFold(k, headerCorrelationID) && strings.TrimSpace(v) != "" {
			return v
		}
	}
	return uuid.NewString()
}

func corsHeaders() map[string]string {
	return map[string]string{
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Methods": "POST, OPTIONS",
		"Access-Control-Allow-Headers": "Content-Type, Authorization",
	}
}

func preflightResponse() events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Headers:    corsHeaders(),
		Body:       "OK",
	}
}

func jsonResponse(status int, payload any, correlationID string) events.APIGatewayProxyResponse {
	body, err := json.Marshal(payload)
	if err != nil {
		status = http.StatusInternalServerError
		body = []byte(`{"error":"internal error","code":"INTERNAL_ERROR"}`)
	}
	headers := corsHeaders()
	headers["Content-Type"] = "application/json"
	headers[headerCorrelationID] = correlationID
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    headers,
		Body:       string(body),
	}
}
