package httpapi

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"listscribe"
	"listscribe/auth"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const (
	msgNoToken      = "Access Denied: No token provided."
	msgInvalidToken = "Invalid Token"

	// subjectKey holds the authenticated user in the gin context.
	subjectKey = "subject"
)

// requestLogger traces and logs every request.
func requestLogger() gin.HandlerFunc {
	tracer := otel.Tracer(listscribe.TracerNameHTTP)
	return func(c *gin.Context) {
		start := time.Now()

		ctx := otel.GetTextMapPropagator().Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		ctx, span := tracer.Start(ctx, c.Request.Method+" "+c.Request.URL.Path, trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.route", c.FullPath()),
			attribute.Int("http.status_code", status),
		)

		slog.Info("HTTP: Request handled",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
	}
}

// authGate rejects requests without a valid credential.
func authGate(v auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		subject, err := v.Verify(c.Request.Context(), c.Request)
		switch {
		case errors.Is(err, auth.ErrNoCredential):
			c.String(http.StatusUnauthorized, msgNoToken)
			c.Abort()
			return
		case errors.Is(err, auth.ErrInvalidCredential):
			c.String(http.StatusBadRequest, msgInvalidToken)
			c.Abort()
			return
		case err != nil:
			slog.Error("HTTP: Credential check failed", "error", err)
			c.String(http.StatusInternalServerError, "Internal Server Error")
			c.Abort()
			return
		}

		c.Set(subjectKey, subject)
		c.Next()
	}
}

// limitBody caps request bodies at n bytes.
func limitBody(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		}
		c.Next()
	}
}

func recoverJSON(c *gin.Context, recovered any) {
	slog.Error("HTTP: Recovered from panic", "panic", recovered, "path", c.Request.URL.Path)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": msgProcessingFailed})
}
