package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/workhq/workplace-bot/internal"
	"github.com/workhq/workplace-bot/internal/attendance"
	"github.com/workhq/workplace-bot/internal/audit"
	"github.com/workhq/workplace-bot/internal/calendar"
	"github.com/workhq/workplace-bot/internal/core/events"
	"github.com/workhq/workplace-bot/internal/discord"
	"github.com/workhq/workplace-bot/internal/dispatch"
	"github.com/workhq/workplace-bot/internal/finance"
	"github.com/workhq/workplace-bot/internal/leave"
	"github.com/workhq/workplace-bot/internal/notify"
	"github.com/workhq/workplace-bot/internal/review"
	"github.com/workhq/workplace-bot/internal/sheets"
	"github.com/workhq/workplace-bot/internal/transport"
	"github.com/workhq/workplace-bot/internal/transport/rest"
	"github.com/workhq/workplace-bot/pkg/logger"

	"github.com/go-chi/chi"
	"github.com/spf13/cobra"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server that receives Discord interaction webhooks`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config     *internal.Config
	Router     *chi.Mux
	Dispatcher *dispatch.Dispatcher
	Logger     *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Logging.Format, config.Logging.Level)
	log := logger.LoggerWrapper()

	verifier, err := discord.NewVerifier(config.Discord.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("failed to build signature verifier: %w", err)
	}

	discordClient := discord.NewClient(
		config.Discord.APIBaseURL,
		config.Discord.BotToken,
		config.Discord.RequestTimeout,
		log,
	)

	ctx := context.Background()
	credentials := []byte(config.Google.CredentialsJSON)

	gateway, err := sheets.NewGateway(ctx, credentials, config.Google.SpreadsheetID, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets gateway: %w", err)
	}

	meetClient, err := calendar.NewClient(ctx, credentials, config.Google.CalendarID, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize calendar client: %w", err)
	}

	// Meet auditing needs domain-wide delegation; leave it off unless an
	// admin subject is configured.
	var auditor dispatch.MeetAuditor
	if config.Google.AdminSubject != "" {
		auditClient, err := audit.NewClient(ctx, credentials, config.Google.AdminSubject, log)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize reports client: %w", err)
		}
		auditor = auditClient
	}

	attendanceSvc := attendance.NewService(gateway, log, nil)
	leaveSvc := leave.NewService(gateway, log, nil)
	financeSvc := finance.NewService(gateway, log, nil)
	reviewSvc := review.NewService(gateway, log, nil)

	eventBus := events.NewEventBus(log)
	notifier := notify.NewNotifier(config, discordClient, log, nil)
	notifier.Register(eventBus)

	dispatcher := dispatch.NewDispatcher(
		config,
		discordClient,
		attendanceSvc,
		leaveSvc,
		financeSvc,
		reviewSvc,
		meetClient,
		auditor,
		eventBus,
		log,
		nil,
	)

	router := chi.NewRouter()
	base := transport.NewBaseHandler(log)
	interactions := rest.NewInteractionsHandler(base, verifier, dispatcher)

	checks := map[string]func() error{
		"config": config.Validate,
	}
	rest.RegisterAllRoutes(router, interactions, checks, log)

	return &Dependencies{
		Config:     config,
		Router:     router,
		Dispatcher: dispatcher,
		Logger:     log,
	}, nil
}
