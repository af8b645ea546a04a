// Command vellumd runs the contract generation daemon in the foreground.
// It is intended for service managers; interactive use goes through the
// vellum CLI, which launches and supervises the same runtime.
package main

import (
	"context"
	"flag"
	"log"

	"vellum/internal/config"
	"vellum/internal/daemonrun"
)

func main() {
	configPath := flag.String("config", "", "Path to the vellum configuration file")
	logLevel := flag.String("log-level", "", "Override the configured log level")
	flag.Parse()

	cfg, _, _, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	if err := daemonrun.Run(context.Background(), cfg, daemonrun.Options{LogLevel: *logLevel}); err != nil {
		log.Fatalf("vellumd: %v", err)
	}
}
