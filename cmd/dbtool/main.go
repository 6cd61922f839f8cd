package main

import (
	"context"
	"database/sql"
	"log"
	"route-draw-service/internal/adapters/repositories"
	"route-draw-service/internal/config"
	"route-draw-service/internal/platform/db"
	"route-draw-service/internal/ports"
	"route-draw-service/internal/services"
	"strings"
)

func main() {
	config.LoadDotEnv()

	databaseURL := config.Get("DATABASE_URL", "")
	seedPath := config.Get("SEED_PATH", "data/seeds/routes.json")

	var (
		conn *sql.DB
		repo ports.RouteRepository
		err  error
	)
	if strings.TrimSpace(databaseURL) != "" {
		conn, err = db.Open(context.Background(), databaseURL)
		if err != nil {
			log.Fatal(err)
		}
		log.Println("Initializing postgres schema...")
		if err := repositories.InitPostgresSchema(conn); err != nil {
			log.Fatalf("schema initialization failed: %v", err)
		}
		repo = repositories.NewSQLRouteRepository(conn)
	} else {
		dbPath := config.Get("DB_PATH", "data/app.db")
		conn, err = db.OpenSqlite(dbPath)
		if err != nil {
			log.Fatal(err)
		}
		log.Printf("Initializing sqlite schema path=%s...", dbPath)
		if err := repositories.InitSchema(conn); err != nil {
			log.Fatalf("schema initialization failed: %v", err)
		}
		repo = repositories.NewSqliteRouteRepository(conn)
	}
	defer conn.Close()
	log.Println("Schema ready.")

	log.Println("Seeding database...")
	n, err := services.SeedFromJSON(context.Background(), repo, seedPath)
	if err != nil {
		log.Fatalf("seeding failed: %v", err)
	}
	log.Printf("Seeding complete. inserted=%d", n)
}
