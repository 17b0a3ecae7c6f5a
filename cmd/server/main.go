package main

import (
	"chat-relay/internal"
	"chat-relay/runtime"
	"chat-relay/runtime/workers"
	"chat-relay/services"
	"chat-relay/transport/ws"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

const shutdownTimeout = 5 * time.Second

func main() {
	// The main function acts as a thin wrapper.
	// Its only responsibility is to call run() and handle the OS exit code.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Relay terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run initializes all components, manages the server lifecycle, and centralizes error reporting.
// This pattern is preferred over calling os.Exit or panic directly because:
// 1. It ensures all 'defer' statements are executed before the program exits.
// 2. It improves testability by decoupling the initialization logic from the main entry point.
// 3. It provides a structured way to handle graceful shutdowns for the HTTP server and background workers.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()

	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	logger := logs.GetLoggerFromString(config.LogLevel)

	// 2. Relay core
	presence := runtime.NewPresence()
	hub := workers.NewHub(logger, config.BufferSize, config.SinkTimeout)
	router := runtime.NewRouter(logger, presence, hub)
	relayService := services.NewRelayService(router, presence)

	supervisor := workers.NewSupervisor(logger, config.RestartInterval)
	supervisor.Add(hub)
	supervisor.Add(workers.NewHeartbeatWorker(logger, presence, hub, config.HeartbeatInterval))

	// 3. Context & Signals
	// NotifyContext captures OS signals and cancels the context to trigger a shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Error (HTTP server & workers)
	errChan := make(chan error, 2)

	// 4. Start the engine (hub fan-out and heartbeat)
	go func() {
		logger.Info("Starting supervised workers...")
		supervisor.Run(ctx)
	}()

	// 5. Websocket endpoint
	mux := http.NewServeMux()
	mux.Handle("/ws", ws.NewHandler(logger, relayService, hub, config.ConnectionBufferSize))

	server := &http.Server{
		Addr:    config.Addr(),
		Handler: mux,
	}

	go func() {
		logger.Info("Starting relay server", "address", config.Addr(), "at", time.Now().UTC())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 6. Wait for Stop or Error
	// The execution blocks here until either a signal is received or the server crashes.
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errChan:
		return exitRuntime, err
	}

	// 7. Final Cleanup (Graceful Shutdown)
	// Active connections get a grace period to finish before workers stop.
	logger.Info("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown incomplete", "error", err)
	}
	supervisor.Stop()
	logger.Info("Program stopped cleanly")

	return exitOK, nil
}
