package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"supplytrack/config"
	"supplytrack/engine"
	"supplytrack/livestate"
	"supplytrack/messaging"
	"supplytrack/refdata"
	"supplytrack/telemetry"
	"supplytrack/www"
)

var Version = "dev"

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "supplytrack.yaml", "path to config file")
	flag.Parse()

	if *showVersion {
		fmt.Println("supplytrack", Version)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Telemetry database
	db, err := telemetry.Open(&cfg.Telemetry)
	if err != nil {
		log.Fatalf("open telemetry store: %v", err)
	}
	defer db.Close()
	log.Printf("supplytrack: telemetry store open (%s)", cfg.Telemetry.Driver)

	// Location table
	table, err := refdata.New(cfg.LocationSpecs())
	if err != nil {
		log.Fatalf("load locations: %v", err)
	}
	log.Printf("supplytrack: %d locations loaded, local facility %s", len(table.Names()), cfg.Site.Name)
	if _, err := table.Resolve(cfg.Site.Name); err != nil {
		log.Fatalf("site %q is not a known location", cfg.Site.Name)
	}

	// Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	var redisStore *livestate.RedisStore
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("supplytrack: redis not available (%v), live state kept in memory only", err)
	} else {
		log.Printf("supplytrack: redis connected (%s)", cfg.Redis.Address)
		redisStore = livestate.NewRedisStore(redisClient)
	}
	cancel()
	defer redisClient.Close()

	live := livestate.NewManager(redisStore)
	live.Reset()

	// Messaging client
	msgClient := messaging.NewClient(&cfg.Messaging)
	if err := msgClient.Connect(); err != nil {
		log.Printf("supplytrack: messaging connect failed (%v)", err)
	} else {
		log.Printf("supplytrack: messaging connected (%s)", cfg.Messaging.Backend)
	}
	defer msgClient.Close()

	// Engine
	eng := engine.New(engine.Config{
		AppConfig:  cfg,
		ConfigPath: *configPath,
		Store:      db,
		Refdata:    table,
		Live:       live,
		MsgClient:  msgClient,
	})
	eng.Start()
	defer eng.Stop()

	// Web server
	handler, stopWeb := www.NewRouter(eng)

	addr := fmt.Sprintf("%s:%d", cfg.Web.Host, cfg.Web.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	go func() {
		log.Printf("supplytrack: web server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("web server: %v", err)
		}
	}()

	log.Printf("supplytrack: ready")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Printf("supplytrack: shutting down...")
	stopWeb()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	srv.Shutdown(shutdownCtx)

	log.Printf("supplytrack: stopped")
}
