package main

import (
	"log"

	"github.com/Rounit002/demohavenn/internal/config"
	httpapi "github.com/Rounit002/demohavenn/internal/http"
	"github.com/Rounit002/demohavenn/internal/repo/postgres"
)

func main() {
	cfg := config.FromEnv()
	store, err := postgres.NewStore(cfg)
	if err != nil {
		log.Fatalf("failed to init store: %v", err)
	}
	defer store.Close()

	if cfg.AutoMigrate {
		if err := store.AutoMigrate(); err != nil {
			log.Fatalf("failed to migrate schema: %v", err)
		}
	}

	srv, err := httpapi.NewServer(cfg, store)
	if err != nil {
		log.Fatalf("failed to init server: %v", err)
	}
	if err := srv.Run(); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
