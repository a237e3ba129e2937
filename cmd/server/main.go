package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"realmwalk/server/config"
	"realmwalk/server/handlers"
	"realmwalk/server/layout"
	"realmwalk/server/messages"
	"realmwalk/server/models"
	"realmwalk/server/persistence"
	"realmwalk/server/services"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Allow connections from any origin during development
		// In production, restrict this to your client's domain
		return true
	},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := openStorage(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize persistence: %v", err)
	}
	defer db.Close()
	log.Println("Persistence initialized successfully")

	gm, err := loadLayout(cfg, db)
	if err != nil {
		log.Fatalf("Failed to load world layout: %v", err)
	}
	w, err := layout.Build(gm)
	if err != nil {
		log.Fatalf("Failed to build world %q: %v", gm.Name, err)
	}
	log.Printf("World %q built (%dx%dx%d)", gm.Name, gm.Width, gm.Depth, gm.Height)

	worldService := services.NewWorldService(w, cfg.Tuning)
	for _, spec := range gm.Spawns {
		if _, err := worldService.SpawnWanderer(spec); err != nil {
			log.Printf("Skipping spawn %s: %v", spec.Name, err)
		}
	}

	if cfg.TickLogDir != "" {
		tickLog := persistence.NewTickLog(cfg.TickLogDir)
		defer tickLog.Close()
		worldService.SetRecorder(tickLog)
		log.Printf("Writing tick log under %s", cfg.TickLogDir)
	}

	playerService := services.NewPlayerService(worldService, db, spawnPoint(gm))
	clientManager := handlers.NewClientManager()
	worldService.AddListener(clientManager)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := worldService.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("World loop ended: %v", err)
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(rw http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(rw, r, nil)
		if err != nil {
			log.Printf("Failed to upgrade connection: %v", err)
			return
		}
		defer conn.Close()

		handlers.HandleClientConnection(conn, playerService, worldService, clientManager)
	})

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: mux}
	go func() {
		<-ctx.Done()
		clientManager.BroadcastToAll(messages.BaseMessage{
			Type:    messages.MessageTypeError,
			Payload: messages.ErrorMessage{Code: "SERVER_SHUTDOWN", Message: "Server is shutting down"},
		})
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP shutdown: %v", err)
		}
	}()

	log.Printf("Server starting on port %s", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server failed: %v", err)
	}
	log.Println("Server stopped")
}

func openStorage(cfg config.Config) (persistence.Storage, error) {
	switch cfg.DBType {
	case config.StoragePostgres:
		log.Println("Using PostgreSQL persistence")
		return persistence.NewPostgresStore(cfg.DatabaseURL)
	case config.StorageSQLite:
		log.Printf("Using SQLite persistence at %s", cfg.DBFile)
		return persistence.NewSQLiteStore(cfg.DBFile)
	default:
		log.Printf("Using JSON persistence at %s", cfg.DBFile)
		return persistence.NewJSONStore(cfg.DBFile)
	}
}

// loadLayout prefers a layout file, then the stored default world, then the
// built-in layout. The result is saved so the next start finds it in storage.
func loadLayout(cfg config.Config, db persistence.Storage) (*models.GameMap, error) {
	if cfg.LayoutPath != "" {
		gm, err := layout.LoadFile(cfg.LayoutPath)
		if err != nil {
			return nil, err
		}
		if err := db.SaveWorld(gm.Name, gm); err != nil {
			log.Printf("Could not store layout %q: %v", gm.Name, err)
		}
		return gm, nil
	}

	gm, err := db.LoadWorld(layout.DefaultName)
	switch {
	case err == nil:
		return gm, nil
	case !errors.Is(err, persistence.ErrNotFound):
		return nil, fmt.Errorf("load stored world: %w", err)
	}

	gm = layout.Default()
	if err := db.SaveWorld(layout.DefaultName, gm); err != nil {
		log.Printf("Could not store built-in layout: %v", err)
	}
	return gm, nil
}

func spawnPoint(gm *models.GameMap) models.Position {
	if gm.Player != nil {
		return *gm.Player
	}
	if len(gm.Spawns) > 0 {
		s := gm.Spawns[0]
		return models.Position{X: s.X, Y: s.Y, Z: s.Z}
	}
	return models.Position{X: gm.Width / 2, Y: gm.Depth / 2, Z: gm.Height - 1}
}
