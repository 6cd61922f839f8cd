package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"route-draw-service/internal/adapters/cache"
	"route-draw-service/internal/adapters/repositories"
	"route-draw-service/internal/api"
	"route-draw-service/internal/config"
	"route-draw-service/internal/platform/db"
	"route-draw-service/internal/ports"
	"route-draw-service/internal/services"
	"strings"
	"syscall"
	"time"

	"github.com/jasonlvhit/gocron"
	"github.com/peterbourgon/ff"
	"github.com/redis/go-redis/v9"
)

// main is the application composition root.
// It wires concrete adapters (Postgres or SQLite, Redis) behind ports and starts the HTTP server.
func main() {
	config.LoadDotEnv()

	fs := flag.NewFlagSet("route-draw-server", flag.ExitOnError)
	var (
		port           = fs.String("port", "8080", "HTTP listen port")
		databaseURL    = fs.String("database-url", "", "Postgres URL; SQLite is used when empty")
		dbPath         = fs.String("db-path", "data/app.db", "SQLite database path")
		seedPath       = fs.String("seed-path", "data/seeds/routes.json", "JSON file of routes to seed on startup")
		redisURL       = fs.String("redis-url", "", "Redis URL for session drafts; drafts are disabled when empty")
		draftTTL       = fs.Duration("draft-ttl", 24*time.Hour, "how long an untouched draft is kept")
		sessionIdleTTL = fs.Duration("session-idle-ttl", 30*time.Minute, "evict in-memory sessions idle for longer than this")
		corsOrigins    = fs.String("cors-origins", "", "comma-separated list of allowed CORS origins")
	)
	if err := ff.Parse(fs, os.Args[1:], ff.WithEnvVarNoPrefix()); err != nil {
		log.Fatal(err)
	}

	conn, repo, err := openRepository(*databaseURL, *dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	// Seed demo routes on startup for local runs.
	if _, statErr := os.Stat(*seedPath); statErr == nil {
		n, err := services.SeedFromJSON(context.Background(), repo, *seedPath)
		if err != nil {
			log.Fatal(err)
		}
		log.Printf("Seeded routes count=%d path=%s", n, *seedPath)
	}

	var drafts ports.DraftStore
	if strings.TrimSpace(*redisURL) != "" {
		client, err := openRedis(*redisURL)
		if err != nil {
			log.Fatal(err)
		}
		defer client.Close()
		drafts = cache.NewRedisDraftStore(client, *draftTTL)
	} else {
		log.Println("REDIS_URL not set (session drafts disabled)")
	}

	sessions := services.NewSessionManager(repo, drafts)

	// Idle sessions are swept from memory; their drafts stay resumable.
	sched := gocron.NewScheduler()
	if err := sched.Every(1).Minute().Do(func() { sessions.EvictIdle(*sessionIdleTTL) }); err != nil {
		log.Fatalf("schedule idle session sweep: %v", err)
	}
	stopSweeper := sched.Start()
	defer close(stopSweeper)

	router := api.NewRouter(sessions, repo, config.SplitList(*corsOrigins))

	log.Printf("Server listening addr=:%s", *port)
	srv := &http.Server{
		Addr:              ":" + *port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown failed: %v", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
	log.Println("Server stopped")
}

// openRepository picks Postgres when a database URL is configured and falls
// back to a local SQLite file otherwise.
func openRepository(databaseURL, dbPath string) (*sql.DB, ports.RouteRepository, error) {
	if strings.TrimSpace(databaseURL) != "" {
		conn, err := db.Open(context.Background(), databaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := repositories.InitPostgresSchema(conn); err != nil {
			conn.Close()
			return nil, nil, fmt.Errorf("open repository: %w", err)
		}
		return conn, repositories.NewSQLRouteRepository(conn), nil
	}

	conn, err := db.OpenSqlite(dbPath)
	if err != nil {
		return nil, nil, err
	}
	if err := repositories.InitSchema(conn); err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("open repository: %w", err)
	}
	return conn, repositories.NewSqliteRouteRepository(conn), nil
}

func openRedis(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("open redis: parse url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("open redis: ping: %w", err)
	}

	return client, nil
}
