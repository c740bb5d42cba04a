package main

import (
	"context"
	"log"
	"net/http"

	"tresorier-server/src/api"
	"tresorier-server/src/config"
	"tresorier-server/src/db"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("DB connection failed: %v", err)
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		log.Fatalf("DB migration failed: %v", err)
	}

	db.InitCache()

	// Router
	router := api.NewRouter(pool, cfg.Demo)

	log.Println("API server running on port", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		log.Fatal(err)
	}
}
