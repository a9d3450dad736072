/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the leave ledger server. Handles configuration,
  dependency wiring, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (optional) and parse command-line flags
  2. Load YAML config with LEAVE_* environment overrides
  3. Seed the in-memory record store from the configured roster
  4. Open the audit journal (memory or sqlite) and start the recorder
  5. Start the Kafka change feed emitter when enabled
  6. Configure the HTTP router and serve with graceful shutdown

COMMAND-LINE FLAGS:
  -config  YAML config path (optional; defaults apply without it)
  -addr    Listen address override (default from config, :8080)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the audit recorder and event emitter, draining their buffers
  4. Close the journal and publisher
  5. Exit

EXAMPLES:
  # Run with defaults (reference roster, in-memory journal)
  ./server

  # Run with a config file and a persistent journal
  ./server -config=./leave.yaml

  # Override the listen address
  ./server -addr=:3000

SEE ALSO:
  - config/config.go: Configuration loading
  - api/server.go: Router configuration
  - audit/recorder.go: Asynchronous journal writer
*/
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/warp/leave-ledger/api"
	"github.com/warp/leave-ledger/audit"
	auditsqlite "github.com/warp/leave-ledger/audit/sqlite"
	"github.com/warp/leave-ledger/config"
	"github.com/warp/leave-ledger/events"
	eventskafka "github.com/warp/leave-ledger/events/kafka"
	"github.com/warp/leave-ledger/ledger"
)

func main() {
	// Optional .env for local development; a missing file is fine.
	_ = godotenv.Load()

	// Flags
	configPath := flag.String("config", "", "YAML config path")
	addr := flag.String("addr", "", "listen address override")
	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	// Level is validated by config.Load.
	level, _ := zerolog.ParseLevel(cfg.Log.Level)
	zerolog.SetGlobalLevel(level)
	if cfg.Log.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	// Record store seeded from the configured roster
	seed, err := cfg.SeedRecords()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid seed roster")
	}
	store, err := ledger.NewRecordStore(seed)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to seed record store")
	}

	// Audit journal and its asynchronous recorder
	var journal audit.Log
	if cfg.Audit.Backend == "sqlite" {
		journal, err = auditsqlite.New(cfg.Audit.Path)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open audit journal")
		}
	} else {
		journal = audit.NewMemory()
	}

	recOpts := []audit.RecorderOption{audit.WithRecorderLogger(log.Logger)}
	if cfg.Audit.Buffer > 0 {
		recOpts = append(recOpts, audit.WithRecorderBuffer(cfg.Audit.Buffer))
	}
	recorder := audit.NewRecorder(journal, recOpts...)
	recorder.Start()

	// Change feed, only when brokers are configured
	var (
		publisher events.Publisher
		emitter   *events.Emitter
	)
	if cfg.Feed.Enabled {
		publisher = eventskafka.NewPublisher(cfg.Feed.Brokers, cfg.Feed.Topic)
		emOpts := []events.EmitterOption{events.WithEmitterLogger(log.Logger)}
		if cfg.Feed.Buffer > 0 {
			emOpts = append(emOpts, events.WithEmitterBuffer(cfg.Feed.Buffer))
		}
		emitter = events.NewEmitter(publisher, emOpts...)
		emitter.Start()
	}

	// Ledger service with every operation sink attached
	opts := []ledger.ServiceOption{
		ledger.WithOperationLogger(opLogger{log: log.Logger}),
		ledger.WithOperationLogger(api.MetricsLogger{}),
		ledger.WithOperationLogger(recorder),
	}
	if emitter != nil {
		opts = append(opts, ledger.WithOperationLogger(emitter))
	}
	svc := ledger.NewService(store, opts...)

	// HTTP handler and router
	handler := api.NewHandler(svc, journal, log.Logger)
	handler.SinkDrops["audit"] = recorder.Dropped
	if emitter != nil {
		handler.SinkDrops["events"] = emitter.Dropped
	}
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", cfg.Server.Addr).
			Int("employees", store.Len()).
			Str("audit_backend", cfg.Audit.Backend).
			Bool("feed", cfg.Feed.Enabled).
			Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}

	// Drain the sinks after the last request has finished, then close
	// their backends.
	recorder.Stop()
	if emitter != nil {
		emitter.Stop()
	}
	if err := journal.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close audit journal")
	}
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close event publisher")
		}
	}

	log.Info().Msg("server stopped")
}

// opLogger mirrors every ledger operation into the structured log. Reads
// log at info, failures at warn.
type opLogger struct {
	log zerolog.Logger
}

func (o opLogger) LogOperation(l ledger.OperationLog) {
	evt := o.log.Info()
	if l.Status == ledger.StatusError {
		evt = o.log.Warn().Err(l.Err)
	}
	evt.Str("operation", l.Operation).Str("status", l.Status)
	if l.EmployeeID != "" {
		evt.Str("employee", string(l.EmployeeID))
	}
	if l.Actor != "" {
		evt.Str("actor", l.Actor)
	}
	if len(l.Dates) > 0 {
		evt.Strs("dates", ledger.FormatDates(l.Dates))
	}
	if l.Days != 0 {
		evt.Int("days", l.Days)
	}
	if l.Delta != 0 {
		evt.Int("delta", l.Delta)
	}
	if l.Status == ledger.StatusOK {
		switch l.Operation {
		case ledger.OpCheckBalance, ledger.OpApplyLeave, ledger.OpCancelLeave, ledger.OpAdjustBalance:
			evt.Int("balance", l.NewBalance)
		}
	}
	evt.Msg("ledger operation")
}
