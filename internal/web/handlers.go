package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/carwise/llm-orchestrator/internal/agent"
	"github.com/carwise/llm-orchestrator/internal/ratelimit"
	"github.com/carwise/llm-orchestrator/internal/sanitize"
)

// maxBodyBytes caps inbound request bodies.
const maxBodyBytes = 10 << 10

// Orchestrator is the message-processing core the handlers delegate to.
// *agent.Orchestrator satisfies it.
type Orchestrator interface {
	ProcessMessage(ctx context.Context, req agent.Request) (*agent.Response, error)
	ClearContext(ctx context.Context, sessionID string)
	ContextLength(ctx context.Context, sessionID string) int
}

type apiError struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Details []fieldError `json:"details,omitempty"`
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type envelope struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *apiError `json:"error,omitempty"`
}

type processRequest struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
	Message   string `json:"message"`
}

// handleProcess is POST /api/llm/process: rate limit, validate, screen the
// message, then run the orchestration loop.
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req processRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.jsonError(w, http.StatusBadRequest, "BAD_REQUEST", "Некорректное тело запроса")
		return
	}

	identifier := req.SessionID
	if identifier == "" {
		identifier = remoteIP(r)
	}
	result := s.limiter.Check(ctx, identifier)
	s.setRateLimitHeaders(w, result)
	if !result.Allowed {
		if s.metrics != nil {
			s.metrics.RateLimitRejections.Inc()
		}
		s.jsonError(w, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "Слишком много запросов. Попробуйте через минуту.")
		return
	}

	var details []fieldError
	if _, err := uuid.Parse(req.SessionID); err != nil {
		details = append(details, fieldError{Field: "body.session_id", Message: "Некорректный формат session_id"})
	}
	if req.UserID != "" {
		if _, err := uuid.Parse(req.UserID); err != nil {
			details = append(details, fieldError{Field: "body.user_id", Message: "Некорректный формат user_id"})
		}
	}
	if req.Message == "" {
		details = append(details, fieldError{Field: "body.message", Message: "Сообщение не может быть пустым"})
	}
	if len(details) > 0 {
		s.jsonValidationError(w, details)
		return
	}

	if category, reply := s.guard.Inspect(ctx, req.SessionID, req.Message); category != sanitize.CategoryNone {
		if s.metrics != nil {
			s.metrics.SanitizerMatches.WithLabelValues(string(category)).Inc()
		}
		s.jsonResponse(w, envelope{Success: true, Data: agent.Response{
			Role:    "assistant",
			Content: reply,
		}})
		return
	}

	if len([]rune(req.Message)) > sanitize.MaxMessageLength {
		s.jsonError(w, http.StatusBadRequest, "MESSAGE_TOO_LONG",
			fmt.Sprintf("Сообщение слишком длинное (максимум %d символов)", sanitize.MaxMessageLength))
		return
	}

	message := sanitize.Normalize(req.Message)

	s.logger.Info(ctx, "processing message",
		"session_id", req.SessionID,
		"user_id", req.UserID,
		"message_length", len([]rune(message)),
	)

	resp, err := s.orchestrator.ProcessMessage(ctx, agent.Request{
		SessionID: req.SessionID,
		UserID:    req.UserID,
		Message:   message,
	})
	if err != nil {
		s.logger.Error(ctx, "message processing failed", "error", err)
		s.jsonError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Внутренняя ошибка сервера")
		return
	}

	s.jsonResponse(w, envelope{Success: true, Data: resp})
}

// handleClearContext is DELETE /api/llm/context/{session_id}.
func (s *Server) handleClearContext(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("session_id")
	if _, err := uuid.Parse(sessionID); err != nil {
		s.jsonValidationError(w, []fieldError{{Field: "params.session_id", Message: "Некорректный формат session_id"}})
		return
	}

	s.logger.Info(r.Context(), "clearing context", "session_id", sessionID)
	s.orchestrator.ClearContext(r.Context(), sessionID)

	s.jsonResponse(w, envelope{Success: true, Data: map[string]string{
		"message": "Контекст диалога очищен",
	}})
}

// handleWelcome is GET /api/llm/welcome.
func (s *Server) handleWelcome(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, envelope{Success: true, Data: agent.Response{
		Role:    "assistant",
		Content: agent.WelcomeMessage,
	}})
}

// handleContextLength is GET /api/llm/context/{session_id}/length.
func (s *Server) handleContextLength(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("session_id")
	if _, err := uuid.Parse(sessionID); err != nil {
		s.jsonValidationError(w, []fieldError{{Field: "params.session_id", Message: "Некорректный формат session_id"}})
		return
	}

	length := s.orchestrator.ContextLength(r.Context(), sessionID)

	s.jsonResponse(w, envelope{Success: true, Data: map[string]any{
		"sessionId":    sessionID,
		"messageCount": length,
	}})
}

// handleHealth is GET /health: liveness plus a Redis round-trip.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.rdb.Ping(r.Context()).Err(); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{
			"status":  "error",
			"service": "llm-orchestrator",
			"error":   "Redis connection failed",
		})
		return
	}

	s.jsonResponse(w, map[string]string{
		"status":    "ok",
		"service":   "llm-orchestrator",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"provider":  s.providerName,
		"model":     s.modelName,
		"redis":     "connected",
	})
}

// handleReady is GET /ready: readiness of the hard dependencies.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	checks := map[string]bool{
		"redis": s.rdb.Ping(r.Context()).Err() == nil,
		"llm":   s.apiKeySet,
	}

	ready := true
	for _, ok := range checks {
		ready = ready && ok
	}

	w.Header().Set("Content-Type", "application/json")
	if !ready {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(map[string]any{
		"ready":  ready,
		"checks": checks,
	})
}

// handleNotFound answers unmatched routes with the API error envelope.
func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.jsonError(w, http.StatusNotFound, "NOT_FOUND",
		fmt.Sprintf("Маршрут %s %s не найден", r.Method, r.URL.Path))
}

func (s *Server) setRateLimitHeaders(w http.ResponseWriter, result ratelimit.Result) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(s.limiter.Limit()))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.UnixMilli(), 10))
}

func (s *Server) jsonResponse(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error(context.Background(), "json encode error", "error", err)
	}
}

func (s *Server) jsonError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{Success: false, Error: &apiError{Code: code, Message: message}})
}

func (s *Server) jsonValidationError(w http.ResponseWriter, details []fieldError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(envelope{Success: false, Error: &apiError{
		Code:    "VALIDATION_ERROR",
		Message: "Ошибка валидации",
		Details: details,
	}})
}

// remoteIP strips the port from RemoteAddr for use as a rate-limit key.
func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
