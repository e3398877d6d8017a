package config

import (
	"context"
	"log"
	"os"
	"strconv"

	"github.com/redis/go-redis/v9"
)

var (
	Ctx   = context.Background()
	Redis *redis.Client
)

func InitRedis() {
	db, err := strconv.Atoi(os.Getenv("REDIS_DB"))
	if err != nil {
		db = 0
	}

	Redis = redis.NewClient(&redis.Options{
		Addr:     GetEnv("REDIS_ADDR", "127.0.0.1:6379"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       db,
	})

	// Broker boleh down saat boot — notifikasi itu best-effort,
	// endpoint stream yang butuh broker lapor 503 sendiri.
	if err := Redis.Ping(Ctx).Err(); err != nil {
		log.Println("Redis tidak nyambung (lanjut tanpa broker):", err)
		return
	}

	log.Println("Redis connected (DB", db, ")")
}
