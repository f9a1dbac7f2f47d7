package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/cityhall/employee-registry/internal/session"
	"github.com/joho/godotenv"
)

// Discards every open registration wizard kept in Redis, e.g. before a
// release that changes the draft layout.
func main() {
	var redisURLFlag string
	var dryRun bool
	flag.StringVar(&redisURLFlag, "redis-url", "", "Redis connection string (overrides REDIS_URL)")
	flag.BoolVar(&dryRun, "dry-run", false, "only count the stored sessions")
	flag.Parse()

	_ = godotenv.Load()

	redisURL := redisURLFlag
	if redisURL == "" {
		redisURL = os.Getenv("REDIS_URL")
	}
	if redisURL == "" {
		log.Fatal("REDIS_URL is not set and -redis-url was not provided")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	client, err := session.NewRedisClient(ctx, redisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer client.Close()

	// TTL is irrelevant here; nothing is saved
	store := session.NewRedisStore(client, time.Minute)

	count, err := store.Count(ctx)
	if err != nil {
		log.Fatalf("failed to count sessions: %v", err)
	}
	fmt.Printf("Connected to redis. %d registration sessions stored.\n", count)

	if dryRun {
		return
	}

	removed, err := store.Clear(ctx)
	if err != nil {
		log.Fatalf("failed to clear sessions: %v", err)
	}
	fmt.Printf("Removed %d registration sessions.\n", removed)
}
