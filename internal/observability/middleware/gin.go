package middleware

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/KasumiMercury/primind-payment-reminder/internal/observability/logging"
	"github.com/KasumiMercury/primind-payment-reminder/internal/observability/metrics"
	"github.com/KasumiMercury/primind-payment-reminder/internal/observability/tracing"
)

const requestIDHeader = "x-request-id"

type GinConfig struct {
	// SkipPaths bypass logging, tracing and metrics entirely
	SkipPaths []string
	// ModuleByPrefix maps a path prefix to the module tagged on the request
	ModuleByPrefix map[string]logging.Module
	TracerName     string
	HTTPMetrics    *metrics.HTTPMetrics
}

func (cfg GinConfig) moduleFor(path string) logging.Module {
	var (
		best    logging.Module
		bestLen int
	)

	for prefix, m := range cfg.ModuleByPrefix {
		if strings.HasPrefix(path, prefix) && len(prefix) > bestLen {
			best, bestLen = m, len(prefix)
		}
	}

	return best
}

func Gin(cfg GinConfig) gin.HandlerFunc {
	skipSet := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skipSet[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, skip := skipSet[c.Request.URL.Path]; skip {
			c.Next()

			return
		}

		start := time.Now()

		requestID := logging.ValidateAndExtractRequestID(c.Request.Header.Get(requestIDHeader))
		ctx := logging.WithRequestID(c.Request.Context(), requestID)

		if module := cfg.moduleFor(c.Request.URL.Path); module != "" {
			ctx = logging.WithModule(ctx, module)
		}

		ctx = tracing.ExtractFromHTTPRequest(ctx, c.Request)

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}

		ctx, span := otel.Tracer(cfg.TracerName).Start(ctx, fmt.Sprintf("%s %s", c.Request.Method, route))
		defer span.End()

		c.Request = c.Request.WithContext(ctx)
		c.Header(requestIDHeader, requestID)

		c.Next()

		elapsed := time.Since(start)
		status := c.Writer.Status()

		span.SetAttributes(attribute.Int("http.response.status_code", status))
		cfg.HTTPMetrics.Record(ctx, c.Request.Method, route, status, elapsed)

		level := slog.LevelInfo
		if status >= 500 {
			level = slog.LevelError
		}

		slog.LogAttrs(ctx, level, "request completed",
			slog.String("event", "http.request.finish"),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.String("remote_addr", c.ClientIP()),
			slog.Int("status", status),
			slog.Duration("duration", elapsed),
		)
	}
}
