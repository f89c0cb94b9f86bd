// Package main implements the chess game server with a RESTful API, seat
// tokens, long-poll and websocket updates, and optional SQLite persistence.
package main

import (
	"context"
	"crypto/rand"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chesstwist/cmd/chess-server/cli"
	"chesstwist/internal/http"
	"chesstwist/internal/processor"
	"chesstwist/internal/service"
	"chesstwist/internal/storage"
)

const (
	gracefulShutdownTimeout = time.Second * 5
	minSecretLength         = 32
)

func main() {
	// Database maintenance subcommands
	if len(os.Args) > 1 && os.Args[1] == "db" {
		if err := cli.Run(os.Args[2:]); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		os.Exit(0)
	}

	var (
		apiHost     = flag.String("api-host", "localhost", "API server host")
		apiPort     = flag.Int("api-port", 8080, "API server port")
		dev         = flag.Bool("dev", false, "Development mode (relaxed rate limits, fixed token secret)")
		storagePath = flag.String("storage-path", "", "Path to SQLite database file (disables persistence if empty)")
		tokenTTL    = flag.Duration("token-ttl", service.DefaultTokenTTL, "Lifetime of seat tokens")
		secret      = flag.String("secret", os.Getenv("CHESS_TOKEN_SECRET"), "Seat token signing secret, at least 32 bytes (random if empty)")
		pidPath     = flag.String("pid", "", "Optional path to write PID file")
		pidLock     = flag.Bool("pid-lock", false, "Lock PID file to allow only one instance (requires -pid)")
	)
	flag.Parse()

	if *pidLock && *pidPath == "" {
		log.Fatal("Error: -pid-lock flag requires the -pid flag to be set")
	}

	if *pidPath != "" {
		release, err := acquirePIDFile(*pidPath, *pidLock)
		if err != nil {
			log.Fatalf("Failed to manage PID file: %v", err)
		}
		defer release()
		log.Printf("PID file created at: %s (lock: %v)", *pidPath, *pidLock)
	}

	var store *storage.Store
	if *storagePath != "" {
		log.Printf("Initializing persistent storage at: %s", *storagePath)
		var err error
		store, err = storage.NewStore(*storagePath, *dev)
		if err != nil {
			log.Fatalf("Failed to initialize storage: %v", err)
		}
		if err := store.InitDB(); err != nil {
			log.Fatalf("Failed to initialize schema: %v", err)
		}
	} else {
		log.Printf("Persistent storage disabled (use -storage-path to enable)")
	}

	jwtSecret, err := tokenSecret(*secret, *dev)
	if err != nil {
		log.Fatalf("Token secret: %v", err)
	}

	// Service owns the store from here and closes it on shutdown
	svc := service.New(store, jwtSecret, *tokenTTL)
	proc := processor.New(svc)
	app := http.NewFiberApp(proc, svc, *dev)

	apiAddr := fmt.Sprintf("%s:%d", *apiHost, *apiPort)

	go func() {
		log.Printf("Chess API Server starting...")
		log.Printf("API Listening on: http://%s", apiAddr)
		if *dev {
			log.Printf("Rate Limit: 20 requests/second per IP (DEV MODE)")
		} else {
			log.Printf("Rate Limit: 10 requests/second per IP")
		}
		log.Printf("Seat tokens valid for: %s", *tokenTTL)
		log.Printf("API Endpoints: http://%s/api/v1/games", apiAddr)
		log.Printf("Game stream: ws://%s/ws/games/:gameId", apiAddr)
		log.Printf("Health: http://%s/health", apiAddr)

		if err := app.Listen(apiAddr); err != nil {
			log.Printf("API server listen error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Release long-poll and stream clients first so the HTTP shutdown can drain
	if err := svc.Shutdown(gracefulShutdownTimeout); err != nil {
		log.Printf("Service shutdown error: %v", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// tokenSecret picks the seat token signing key
func tokenSecret(configured string, dev bool) ([]byte, error) {
	switch {
	case configured != "":
		if len(configured) < minSecretLength {
			return nil, fmt.Errorf("secret must be at least %d bytes", minSecretLength)
		}
		log.Printf("Using configured token secret")
		return []byte(configured), nil
	case dev:
		log.Printf("Using fixed token secret (dev mode)")
		return []byte("dev-secret-minimum-32-characters-long"), nil
	default:
		secret := make([]byte, minSecretLength)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("failed to generate secret: %w", err)
		}
		log.Printf("Token secret generated (seat tokens valid until restart)")
		return secret, nil
	}
}
