package bot

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"crapstable/events"
	"crapstable/service"

	"github.com/bwmarrin/discordgo"
)

// Config holds bot configuration
type Config struct {
	Token   string
	GuildID string
}

type Bot struct {
	config        Config
	session       *discordgo.Session
	playerService service.PlayerService
	tableService  service.TableService
	eventBus      *events.Bus
}

func New(config Config, playerService service.PlayerService, tableService service.TableService, eventBus *events.Bus) (*Bot, error) {
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages

	bot := &Bot{
		config:        config,
		session:       dg,
		playerService: playerService,
		tableService:  tableService,
		eventBus:      eventBus,
	}

	dg.AddHandler(bot.handleCommands)

	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	if err := bot.registerCommands(); err != nil {
		dg.Close()
		return nil, fmt.Errorf("error registering commands: %w", err)
	}

	// Announce payout mismatches so a cheating or broken table is visible
	eventBus.Subscribe(events.EventTypePayoutMismatch, func(ctx context.Context, event events.Event) {
		mismatch, ok := event.(events.PayoutMismatchEvent)
		if !ok {
			return
		}
		log.WithFields(log.Fields{
			"discordID": mismatch.Validation.DiscordID,
			"auditID":   mismatch.Validation.ID,
		}).Error("Payout mismatch flagged by roll validator")
	})

	return bot, nil
}

func (b *Bot) Close() error {
	return b.session.Close()
}

func (b *Bot) handleCommands(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	switch i.ApplicationCommandData().Name {
	case "balance":
		b.handleBalance(s, i)
	case "scoreboard":
		b.handleScoreboard(s, i)
	case "craps":
		b.handleCrapsCommand(s, i)
	}
}
