package main

import (
	"context"
	"log"

	"github.com/mpetrenko/hrauth/internal/server"
	"github.com/mpetrenko/hrauth/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	app, err := server.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(ctx)

}
