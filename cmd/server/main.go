/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the payroll engine server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Read environment configuration, then command-line flag overrides
  2. Resolve the business timezone
  3. Initialize the SQLite store
  4. Create the engine and API handler
  5. Start the server with graceful shutdown

CONFIGURATION (environment, PAYROLL_ prefix):
  PAYROLL_PORT      HTTP server port (default: 8080)
  PAYROLL_DB        SQLite database path (default: payroll.db,
                    ":memory:" for in-memory)
  PAYROLL_TIMEZONE  Business timezone for all period math
                    (default: America/Sao_Paulo)

COMMAND-LINE FLAGS:
  -port, -db, -tz   Override the corresponding environment value

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close the database connection
  4. Exit

SEE ALSO:
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
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

	"github.com/kelseyhightower/envconfig"

	"github.com/agenciabaepi/meugestor-payroll/api"
	"github.com/agenciabaepi/meugestor-payroll/payroll"
	"github.com/agenciabaepi/meugestor-payroll/store/sqlite"
)

type config struct {
	Port     int    `envconfig:"PORT" default:"8080"`
	DB       string `envconfig:"DB" default:"payroll.db"`
	Timezone string `envconfig:"TIMEZONE" default:"America/Sao_Paulo"`
}

func main() {
	var cfg config
	if err := envconfig.Process("payroll", &cfg); err != nil {
		log.Fatalf("Failed to read configuration: %v", err)
	}

	// Flags override environment
	port := flag.Int("port", cfg.Port, "HTTP server port")
	dbPath := flag.String("db", cfg.DB, "SQLite database path")
	tz := flag.String("tz", cfg.Timezone, "business timezone for period math")
	flag.Parse()

	loc, err := time.LoadLocation(*tz)
	if err != nil {
		log.Fatalf("Invalid timezone %q: %v", *tz, err)
	}

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Wire engine and handler
	engine := payroll.NewEngine(store, store, store, loc)
	handler := api.NewHandler(engine, store)
	router := api.NewRouter(handler)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Payroll engine listening on http://localhost:%d (timezone %s)", *port, loc)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
