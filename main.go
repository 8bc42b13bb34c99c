package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lab1702/marksman/config"
	"github.com/lab1702/marksman/server"
)

func main() {
	port := flag.String("port", "", "Server port (overrides the config file)")
	configPath := flag.String("config", "", "Path to a YAML config file")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("Config: %v", err)
		}
		cfg = loaded
	}
	if *port != "" {
		cfg.Port = *port
	}
	cfg.ApplyDebug()

	engineConfig, err := cfg.EngineConfig()
	if err != nil {
		log.Fatalf("Config: %v", err)
	}

	log.Printf("Starting Marksman targeting server on port %s", cfg.Port)

	targetingServer := server.NewServer(engineConfig)
	go targetingServer.Run()

	// WebSocket endpoint
	http.HandleFunc("/ws", targetingServer.HandleWebSocket)

	// Session stats endpoint
	http.HandleFunc("/api/sessions", targetingServer.HandleSessionStats)
	http.HandleFunc("/api/sessions/chart", targetingServer.HandleSessionChart)

	// Health check endpoint
	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Printf("Server running at http://localhost:%s", cfg.Port)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	log.Printf("Shutting down server (signal: %v)...", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Close every session before the listener goes away
	targetingServer.Shutdown()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}
