package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger wraps slog.Logger with additional functionality
type Logger struct {
	*slog.Logger
}

// New creates a new logger instance
func New() *Logger {
	level := getLogLevel(os.Getenv("LOG_LEVEL"))

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	// Text handler for development, JSON for production
	var handler slog.Handler
	if gin.Mode() == gin.DebugMode {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{Logger: slog.New(handler)}
}

// getLogLevel converts string to slog.Level
func getLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithRequestID adds request ID to logger context
func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{Logger: l.Logger.With(slog.String("request_id", requestID))}
}

// WithVenueID adds venue ID to logger context
func (l *Logger) WithVenueID(venueID string) *Logger {
	return &Logger{Logger: l.Logger.With(slog.String("venue_id", venueID))}
}

// WithError adds error to logger context
func (l *Logger) WithError(err error) *Logger {
	return &Logger{Logger: l.Logger.With(slog.String("error", err.Error()))}
}

// HTTP logging methods

// LogHTTPRequest logs an HTTP request
func (l *Logger) LogHTTPRequest(c *gin.Context, duration time.Duration) {
	l.Logger.InfoContext(c.Request.Context(),
		"HTTP Request",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("query", c.Request.URL.RawQuery),
		slog.Int("status", c.Writer.Status()),
		slog.Duration("duration", duration),
		slog.String("ip", c.ClientIP()),
		slog.Int("size", c.Writer.Size()),
	)
}

// Business logic logging methods

// LogReservationCreated logs when a reservation is created
func (l *Logger) LogReservationCreated(ctx context.Context, reservationID uint, guestName string, partySize int) {
	l.Logger.InfoContext(ctx,
		"Reservation Created",
		slog.Uint64("reservation_id", uint64(reservationID)),
		slog.String("guest_name", guestName),
		slog.Int("party_size", partySize),
	)
}

// LogStatusChanged logs a reservation lifecycle transition
func (l *Logger) LogStatusChanged(ctx context.Context, reservationID uint, from, to string) {
	l.Logger.InfoContext(ctx,
		"Reservation Status Changed",
		slog.Uint64("reservation_id", uint64(reservationID)),
		slog.String("from", from),
		slog.String("to", to),
	)
}

// LogAssignmentRun logs the outcome of an auto-assignment pass
func (l *Logger) LogAssignmentRun(ctx context.Context, date string, assigned, unassigned, score int) {
	l.Logger.InfoContext(ctx,
		"Auto-Assignment Completed",
		slog.String("date", date),
		slog.Int("assigned", assigned),
		slog.Int("unassigned", unassigned),
		slog.Int("score", score),
	)
}

// LogRefundComputed logs a policy-driven refund split
func (l *Logger) LogRefundComputed(ctx context.Context, reservationID uint, refundable, forfeited float64) {
	l.Logger.InfoContext(ctx,
		"Refund Computed",
		slog.Uint64("reservation_id", uint64(reservationID)),
		slog.Float64("refundable", refundable),
		slog.Float64("forfeited", forfeited),
	)
}

// LogRateLimitExceeded logs rate limit exceeded
func (l *Logger) LogRateLimitExceeded(ctx context.Context, ip, endpoint string) {
	l.Logger.WarnContext(ctx,
		"Rate Limit Exceeded",
		slog.String("ip", ip),
		slog.String("endpoint", endpoint),
	)
}

// ErrorWithContext logs an error message with context
func (l *Logger) ErrorWithContext(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	args := make([]interface{}, 0, len(fields)*2+2)
	args = append(args, slog.String("error", err.Error()))
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	l.Logger.ErrorContext(ctx, msg, args...)
}

// Global logger instance (can be replaced with dependency injection)
var defaultLogger = New()

// GetDefault returns the default logger instance
func GetDefault() *Logger {
	return defaultLogger
}

// SetDefault sets the default logger instance
func SetDefault(logger *Logger) {
	defaultLogger = logger
}
