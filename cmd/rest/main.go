package main

import (
	"context"
	"log"

	"nextmind-agent-be/internal/bootstrap"
	"nextmind-agent-be/internal/config"
	"nextmind-agent-be/internal/server"
	"nextmind-agent-be/internal/tracer"
	"nextmind-agent-be/pkg/database"
)

func main() {
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	cfg := config.Load()

	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	container := bootstrap.NewContainer(gormDB, cfg)

	// The embedding worker runs inside the API process: the gochannel
	// broker only spans goroutines, not processes.
	go func() {
		log.Println("Background: Starting Consumer Service...")
		if err := container.ConsumerService.Consume(context.Background()); err != nil {
			log.Printf("Background Consumer Error: %v", err)
		}
	}()

	srv := server.New(cfg, container)

	log.Fatal(srv.Run())
}
