// Package httpapi serves the transcription API and the client bundle.
package httpapi

import (
	"net/http"
	"time"

	"listscribe"
	"listscribe/auth"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// DefaultMaxBodyBytes allows a handful of phone photos per request.
const DefaultMaxBodyBytes = 50 << 20

// Config wires the router's dependencies.
type Config struct {
	Transcriber listscribe.Transcriber
	Verifier    auth.Verifier
	// Accounts are the Basic auth credentials accepted by /authenticate.
	Accounts       gin.Accounts
	StaticDir      string
	AllowedOrigins []string
	MaxBodyBytes   int64
}

// NewRouter builds the gin engine. Static assets are public, /health and
// /authenticate skip the auth gate, everything else is behind it.
func NewRouter(cfg Config) *gin.Engine {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}

	r := gin.New()
	r.Use(gin.CustomRecovery(recoverJSON))
	r.Use(requestLogger())

	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.AllowedOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.POST("/authenticate", gin.BasicAuth(cfg.Accounts), authenticate(cfg.Verifier))

	api := r.Group("/", authGate(cfg.Verifier), limitBody(cfg.MaxBodyBytes))
	api.POST("/transcribe", transcribe(cfg.Transcriber))

	if cfg.StaticDir != "" {
		r.NoRoute(static(cfg.StaticDir))
	}

	return r
}
