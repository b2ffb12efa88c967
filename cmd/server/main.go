/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the club engine server. Handles configuration,
  dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (if present) and parse flags
  2. Initialize SQLite store
  3. Wire the event bus and workflow services
  4. Configure the HTTP router
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (default: 8080, env PORT)
  -db      SQLite database path (default: club.db, env DATABASE_PATH)
           Use ":memory:" for an in-memory database

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/club.db"

  # Run with in-memory database
  ./server -db=":memory:"

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/pcm/club-engine/api"
	"github.com/pcm/club-engine/booking"
	"github.com/pcm/club-engine/events"
	"github.com/pcm/club-engine/matchplay"
	"github.com/pcm/club-engine/store/sqlite"
	"github.com/pcm/club-engine/tournament"
	"github.com/pcm/club-engine/wallet"
)

func main() {
	// .env is optional; flags win over environment defaults.
	_ = godotenv.Load()

	port := flag.Int("port", envInt("PORT", 8080), "HTTP server port")
	dbPath := flag.String("db", envStr("DATABASE_PATH", "club.db"), "SQLite database path")
	logLevel := flag.String("log-level", envStr("LOG_LEVEL", "info"), "log level (debug, info, warn, error)")
	flag.Parse()

	if level, err := log.ParseLevel(*logLevel); err == nil {
		log.SetLevel(level)
	}
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize database")
	}
	defer store.Close()

	// Event bus with a logging subscriber per topic. A real deployment
	// would hang push notifications off these.
	bus := events.NewBus()
	bus.Subscribe(events.TopicCalendarChanged, func(_ context.Context, event events.Event) {
		log.WithField("event", event).Info("calendar changed")
	})
	bus.Subscribe(events.TopicBalanceChanged, func(_ context.Context, event events.Event) {
		log.WithField("event", event).Info("balance changed")
	})
	bus.Subscribe(events.TopicTournamentUpdated, func(_ context.Context, event events.Event) {
		log.WithField("event", event).Info("tournament updated")
	})
	bus.Subscribe(events.TopicMatchUpdated, func(_ context.Context, event events.Event) {
		log.WithField("event", event).Info("match updated")
	})

	bookingSvc := booking.NewService(store, bus)
	walletSvc := wallet.NewService(store, bus)
	tournamentSvc := tournament.NewService(store, bus)
	matchplaySvc := matchplay.NewService(store)

	handler := api.NewHandler(store, bookingSvc, walletSvc, tournamentSvc, matchplaySvc)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithFields(log.Fields{"port": *port, "db": *dbPath}).Info("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Fatal("server forced to shutdown")
	}

	log.Info("server stopped")
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			return n
		}
	}
	return fallback
}
