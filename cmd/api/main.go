package main

import (
	"log"

	"docanalysis-backend/internal/bootstrap"
	"docanalysis-backend/internal/shared/config"
	"docanalysis-backend/internal/shared/server"
	"docanalysis-backend/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()
	app, err := bootstrap.Build(cfg)
	if err != nil {
		log.Fatalf("bootstrap: %v", err)
	}
	defer app.Close()
	defer telemetry.Sync()

	addr := server.Addr(cfg.Port)
	log.Printf("Starting API server on %s (llm provider=%s model=%s)", addr, app.LLM.Provider, app.LLM.Primary)

	if err := app.Router.Run(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
