package api

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/james-see/seqgen/pkg/config"
	"github.com/james-see/seqgen/pkg/generator"
)

const (
	requestIDHeader    = "X-Request-ID"
	requestIDKey       = "request_id"
	sentryFlushTimeout = 2 * time.Second
)

// requestID tags every request with a UUID, reusing the caller's if sent
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// InitSentry sets up the Sentry client when a DSN is configured. The
// returned flush must run before exit; it is a no-op when Sentry is off.
func InitSentry(cfg *config.Config, release string) (flush func(), err error) {
	flush = func() {}
	if cfg.SentryDSN == "" {
		return flush, nil
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.SentryDSN,
		Environment:      cfg.Environment,
		Release:          "seqgen@" + release,
		EnableTracing:    true,
		TracesSampleRate: 1.0,
		Debug:            !cfg.IsProduction(),
	}); err != nil {
		return flush, err
	}
	log.Printf("Sentry initialized (environment: %s, release: %s)", cfg.Environment, release)
	return func() { sentry.Flush(sentryFlushTimeout) }, nil
}

func sentryMiddleware() gin.HandlerFunc {
	return sentrygin.New(sentrygin.Options{
		Repanic:         true,
		WaitForDelivery: false,
		Timeout:         sentryFlushTimeout,
	})
}

// respondError maps validation failures to 400 and everything else to 500.
// Server errors are reported to Sentry when it is enabled.
func respondError(c *gin.Context, err error) {
	var verr *generator.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      err.Error(),
			"field":      verr.Field,
			"request_id": c.GetString(requestIDKey),
		})
		return
	}

	log.Printf("[%s] %s %s: %v", c.GetString(requestIDKey), c.Request.Method, c.Request.URL.Path, err)
	if hub := sentrygin.GetHubFromContext(c); hub != nil {
		hub.CaptureException(err)
	}
	c.JSON(http.StatusInternalServerError, gin.H{
		"error":      err.Error(),
		"request_id": c.GetString(requestIDKey),
	})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":      msg,
		"request_id": c.GetString(requestIDKey),
	})
}
