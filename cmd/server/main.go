// Package main is the entry point for the seqgen API server
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/getsentry/sentry-go"
	"github.com/james-see/seqgen/pkg/api"
	"github.com/james-see/seqgen/pkg/config"
	"github.com/james-see/seqgen/pkg/library"
	"github.com/joho/godotenv"
)

// releaseVersion is set via ldflags during build
var releaseVersion = "dev"

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	port := flag.String("port", cfg.Port, "Server port")
	templates := flag.String("templates", cfg.TemplateDir, "Directory of extra YAML/JSON templates")
	flag.Parse()
	cfg.Port = *port
	cfg.TemplateDir = *templates

	// Initialize Sentry
	flush, err := api.InitSentry(cfg, releaseVersion)
	if err != nil {
		log.Printf("Failed to initialize Sentry: %v", err)
	}
	defer flush()

	lib := library.New()
	if cfg.TemplateDir != "" {
		if err := lib.LoadDir(cfg.TemplateDir); err != nil {
			fmt.Fprintf(os.Stderr, "Template error: %v\n", err)
			os.Exit(1)
		}
		log.Printf("Loaded templates from %s", cfg.TemplateDir)
	}

	fmt.Printf("Starting seqgen API server on port %s...\n", cfg.Port)
	fmt.Printf("Swagger docs available at http://localhost:%s/swagger/index.html\n", cfg.Port)

	if err := api.StartServer(cfg, lib); err != nil {
		sentry.CaptureException(err)
		flush()
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
