// Command pizzaline runs the order-processing agent (UDP ingest →
// batching → admission) and the dashboard agent side by side, sharing one
// SharedContext, for the process lifetime (§5).
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/meline-schndr/pizzaline/internal/batching"
	"github.com/meline-schndr/pizzaline/internal/catalog"
	"github.com/meline-schndr/pizzaline/internal/catalogstore"
	"github.com/meline-schndr/pizzaline/internal/config"
	"github.com/meline-schndr/pizzaline/internal/dashboard"
	"github.com/meline-schndr/pizzaline/internal/events"
	"github.com/meline-schndr/pizzaline/internal/ingest"
	"github.com/meline-schndr/pizzaline/internal/production"
	"github.com/meline-schndr/pizzaline/internal/redisutil"
	"github.com/meline-schndr/pizzaline/internal/sharedctx"
	"github.com/meline-schndr/pizzaline/internal/stats"
)

func main() {
	seedDefaults := flag.Bool("seed-defaults", false, "fall back to the built-in station layout if loading stations from the database fails")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  no .env file found, using environment variables as-is")
	}

	cfg := config.Load()
	useDefaults := cfg.UseDefaultStations || *seedDefaults

	store, err := catalogstore.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ authoritative store unreachable: %v", err)
	}
	defer store.Close()

	var cache *redisutil.Client
	rawRedis, err := redisutil.Connect(cfg.RedisURL)
	if err != nil {
		log.Printf("⚠️  Redis unavailable (%v), catalog cache disabled", err)
	} else {
		cache = redisutil.New(rawRedis)
		defer cache.Close()
	}

	cat := catalog.New(store, cache)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := cat.Bootstrap(ctx, useDefaults); err != nil {
		log.Fatalf("❌ catalog bootstrap failed: %v", err)
	}

	mgr := production.NewManager(cat.Stations())
	shared := sharedctx.New(cat, mgr, stats.New())

	var publisher batching.Publisher
	if cfg.KafkaBrokers != "" {
		pub := events.NewPublisher(strings.Split(cfg.KafkaBrokers, ","), cfg.KafkaTopic)
		defer pub.Close()
		publisher = pub
		log.Println("✅ order-event publisher connected to Kafka")
	} else {
		log.Println("⚠️  KAFKA_BROKERS not set, order events will not be published")
	}

	controller := batching.New(shared, publisher, cfg.BatchSize, time.Duration(cfg.BatchTimeout)*time.Second)

	listener, err := ingest.Listen(cfg.UDPAddr)
	if err != nil {
		log.Fatalf("❌ failed to bind UDP ingest socket: %v", err)
	}

	datagrams := make(chan []byte, 256)
	go listener.Run(ctx, datagrams)
	go controller.Run(ctx, datagrams)

	dash := dashboard.New(shared, cfg.WebAssetsDir)
	go func() {
		if err := dash.Run(ctx, cfg.DashboardAddr); err != nil {
			log.Printf("⚠️  dashboard server stopped: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("✅ shutdown signal received, exiting")
}
