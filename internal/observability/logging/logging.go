package logging

import (
	"context"
	"log/slog"
	"os"

	"github.com/google/uuid"
)

// Environment selects the log output format.
type Environment string

const (
	EnvDev  Environment = "dev"
	EnvProd Environment = "prod"
)

// Module names the service area a log line belongs to.
type Module string

func (m Module) String() string {
	return string(m)
}

type requestIDKey struct{}

// WithRequestID stores a request id in the context for log correlation and
// outbound header propagation.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestIDFromContext returns the request id stored in the context, or "".
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// ValidateAndExtractRequestID returns the given id if it is a well-formed
// UUID and mints a fresh one otherwise, so downstream calls always carry a
// usable correlation id.
func ValidateAndExtractRequestID(requestID string) string {
	if _, err := uuid.Parse(requestID); err != nil {
		return uuid.NewString()
	}
	return requestID
}

// NewHandler builds the slog handler for the process: JSON in prod, text
// otherwise.
func NewHandler(level slog.Level, env Environment) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if env == EnvProd {
		return slog.NewJSONHandler(os.Stdout, opts)
	}
	return slog.NewTextHandler(os.Stdout, opts)
}
