// Package api provides the REST API server for seqgen
package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/james-see/seqgen/pkg/config"
	"github.com/james-see/seqgen/pkg/converter"
	"github.com/james-see/seqgen/pkg/library"
	"github.com/james-see/seqgen/pkg/theory"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title Seqgen API
// @version 1.0
// @description API for generating melodic sequences from chord progressions and templates
// @host localhost:8080
// @BasePath /api/v1

// Server serves sequence generation over HTTP
type Server struct {
	cfg *config.Config
	lib *library.Library
}

// NewRouter builds the gin engine with all routes and middleware
func NewRouter(cfg *config.Config, lib *library.Library) *gin.Engine {
	if lib == nil {
		lib = library.New()
	}
	s := &Server{cfg: cfg, lib: lib}

	r := gin.Default()

	// Error reporting
	if cfg.SentryDSN != "" {
		r.Use(sentryMiddleware())
	}

	r.Use(requestID())

	// CORS middleware
	r.Use(corsMiddleware())

	// Health check
	r.GET("/health", healthCheck)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.POST("/sequence/generate", s.handleGenerate)
		v1.POST("/sequence/fallback", s.handleFallback)
		v1.POST("/sequence/midi", s.handleMIDI)
		v1.POST("/sequence/transform", s.handleTransform)
		v1.GET("/templates", s.listTemplates)
		v1.POST("/templates/extract", s.handleExtract)
		v1.GET("/progressions", s.listProgressions)
		v1.GET("/scales", listScales)
		v1.GET("/chord-types", listChordTypes)
		v1.GET("/formats", listFormats)
	}

	// Swagger docs
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// StartServer starts the API server on the configured port
func StartServer(cfg *config.Config, lib *library.Library) error {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := NewRouter(cfg, lib)

	log.Printf("Starting server on port %s", cfg.Port)
	return r.Run(":" + cfg.Port)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Header("Access-Control-Expose-Headers", "Content-Disposition, "+requestIDHeader)

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// healthCheck godoc
// @Summary Health check endpoint
// @Description Returns the health status of the API
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "seqgen",
	})
}

// listTemplates godoc
// @Summary List template presets
// @Description Returns the note and rhythm templates known to the server
// @Tags info
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/templates [get]
func (s *Server) listTemplates(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"noteTemplates":   s.lib.NoteTemplates(),
		"rhythmTemplates": s.lib.RhythmTemplates(),
	})
}

// listProgressions godoc
// @Summary List progression presets
// @Description Returns the chord progressions known to the server
// @Tags info
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/progressions [get]
func (s *Server) listProgressions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"progressions": s.lib.Progressions(),
	})
}

// listScales godoc
// @Summary List scale presets
// @Description Returns every named scale with its semitone intervals
// @Tags info
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/scales [get]
func listScales(c *gin.Context) {
	scales := make([]theory.Scale, 0)
	for _, name := range theory.ScaleNames() {
		scale, _ := theory.ScaleByName(name)
		scales = append(scales, scale)
	}
	c.JSON(http.StatusOK, gin.H{"scales": scales})
}

// listChordTypes godoc
// @Summary List chord types
// @Description Returns the supported chord qualities and their degree offsets
// @Tags info
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/chord-types [get]
func listChordTypes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"chordTypes": theory.ChordTypes()})
}

// listFormats godoc
// @Summary List export formats
// @Description Returns the formats a sequence can be exported to
// @Tags info
// @Produce json
// @Success 200 {object} map[string][]string
// @Router /api/v1/formats [get]
func listFormats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"formats": converter.GetSupportedFormats(),
	})
}
