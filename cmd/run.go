package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"crapstable/api"
	"crapstable/bot"
	"crapstable/config"
	"crapstable/database"
	"crapstable/events"
	"crapstable/infrastructure"
	"crapstable/repository"
	"crapstable/service"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Println("Starting crapstable...")

	cfg := config.Get()

	log.Println("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("Database connection established successfully")

	log.Println("Initializing event bus...")
	eventBus := events.NewBus()

	var natsPublisher *infrastructure.NATSPublisher
	if cfg.NATSURL != "" {
		log.Println("Connecting to NATS...")
		natsPublisher = infrastructure.NewNATSPublisher(cfg.NATSURL)
		if err := natsPublisher.Connect(ctx); err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		natsPublisher.AttachTo(eventBus)
	}

	log.Println("Initializing unit of work factory...")
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	log.Println("Initializing services...")
	playerService := service.NewPlayerService(uowFactory, cfg.StartingBalance)
	sessions := service.NewSessionManager(service.NewFairDiceFactory())
	tableService := service.NewTableService(uowFactory, sessions)
	log.Println("Services initialized successfully")

	log.Println("Starting HTTP API...")
	handler := api.NewHandler(api.HandlerDeps{Tables: tableService, Players: playerService})
	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: api.NewRouter(handler),
	}
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("HTTP server error: %v", err)
		}
	}()
	log.Printf("HTTP API listening on %s", cfg.HTTPAddr)

	var discordBot *bot.Bot
	if cfg.DiscordToken != "" {
		log.Println("Initializing Discord bot...")
		botConfig := bot.Config{
			Token:   cfg.DiscordToken,
			GuildID: cfg.DiscordGuildID,
		}
		discordBot, err = bot.New(botConfig, playerService, tableService, eventBus)
		if err != nil {
			return fmt.Errorf("failed to initialize Discord bot: %w", err)
		}
		log.Println("Discord bot initialized successfully")
	}

	log.Printf("Table is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down HTTP server: %v", err)
	}

	if discordBot != nil {
		if err := discordBot.Close(); err != nil {
			log.Printf("Error closing Discord bot: %v", err)
		}
	}

	if natsPublisher != nil {
		natsPublisher.Close()
	}

	log.Println("Closing database connection...")
	db.Close()

	log.Println("Shutdown completed")
	return nil
}
