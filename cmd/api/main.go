package main

import (
	"context"
	"log"

	"github.com/productstack/products-backend/config"
	"github.com/productstack/products-backend/internal/bootstrap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	bootstrap.SetGinMode(cfg.App.Environment)

	store, err := bootstrap.OpenRedis(context.Background(), bootstrap.RedisOptions{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer store.Close()

	r := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName:    "products-backend",
		Version:        cfg.App.Version,
		Store:          store,
		RateLimitRPS:   cfg.Server.RateLimitRPS,
		RateLimitBurst: cfg.Server.RateLimitBurst,
	})

	log.Printf("listening on :%s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("server: %v", err)
	}
}
