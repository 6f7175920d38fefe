package main

import (
	"log"

	"webchat-client/internal/chat"
)

func main() {
	cfg := chat.LoadConfig()

	app, err := chat.NewApp(cfg)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}

	log.Printf("connected to %s as %s (%s)", cfg.ServerURL, app.Cfg.Username, cfg.Scope())
	app.Start()
	chat.WaitForShutdown(app)
}
