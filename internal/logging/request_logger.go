package logging

import (
	"log/slog"

	"github.com/labstack/echo/v4"
)

// RequestLogger tags every line with the request id.
type RequestLogger struct {
	logger    *slog.Logger
	requestID string
}

// FromContext reads the request id from the X-Request-ID response header set
// by the RequestID middleware.
func FromContext(c echo.Context) *RequestLogger {
	requestID := c.Response().Header().Get(echo.HeaderXRequestID)
	if requestID == "" {
		requestID = c.Request().Header.Get(echo.HeaderXRequestID)
	}
	return WithRequestID(requestID).With(
		"method", c.Request().Method,
		"path", c.Path(),
	)
}

// WithRequestID creates a RequestLogger with a specific request ID
func WithRequestID(requestID string) *RequestLogger {
	if requestID == "" {
		requestID = "unknown"
	}
	return &RequestLogger{
		logger:    slog.Default(),
		requestID: requestID,
	}
}

func (rl *RequestLogger) Info(msg string, args ...any) {
	rl.logger.Info(msg, append([]any{"request_id", rl.requestID}, args...)...)
}

func (rl *RequestLogger) Warn(msg string, args ...any) {
	rl.logger.Warn(msg, append([]any{"request_id", rl.requestID}, args...)...)
}

func (rl *RequestLogger) Error(msg string, args ...any) {
	rl.logger.Error(msg, append([]any{"request_id", rl.requestID}, args...)...)
}

func (rl *RequestLogger) Debug(msg string, args ...any) {
	rl.logger.Debug(msg, append([]any{"request_id", rl.requestID}, args...)...)
}

// With returns a new logger with additional attributes
func (rl *RequestLogger) With(args ...any) *RequestLogger {
	return &RequestLogger{
		logger:    rl.logger.With(args...),
		requestID: rl.requestID,
	}
}

// RequestID returns the current request ID
func (rl *RequestLogger) RequestID() string {
	return rl.requestID
}
