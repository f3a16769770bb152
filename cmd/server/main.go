package main

import (
	"context"
	"log"

	"lifeos/internal/server"
	"lifeos/internal/server/config"
)

func main() {
	app, err := server.NewApp(config.LoadConfig())
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}

	app.Run(context.Background())
}
