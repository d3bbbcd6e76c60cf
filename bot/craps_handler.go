package bot

import (
	"context"
	"fmt"
	"strconv"

	log "github.com/sirupsen/logrus"

	"crapstable/models"

	"github.com/bwmarrin/discordgo"
)

func (b *Bot) handleBalance(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	discordID, username, err := interactionUser(i)
	if err != nil {
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	player, err := b.playerService.GetOrCreatePlayer(ctx, discordID, username)
	if err != nil {
		log.WithError(err).WithField("discordID", discordID).Error("Failed to get player")
		b.respondWithError(s, i, "Unable to look up your balance. Please try again.")
		return
	}

	b.respondEphemeral(s, i, fmt.Sprintf("💰 Your balance is **%s**", models.FormatCents(player.Balance)))
}

func (b *Bot) handleScoreboard(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	players, err := b.playerService.GetScoreboard(ctx, 10)
	if err != nil {
		log.WithError(err).Error("Failed to get scoreboard")
		b.respondWithError(s, i, "Unable to load the scoreboard. Please try again.")
		return
	}

	embed := buildScoreboardEmbed(players)
	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
		},
	})
	if err != nil {
		log.WithError(err).Error("Failed to respond to scoreboard command")
	}
}

func (b *Bot) handleCrapsCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	discordID, username, err := interactionUser(i)
	if err != nil {
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	// Ensure the player row exists before any table operation
	if _, err := b.playerService.GetOrCreatePlayer(ctx, discordID, username); err != nil {
		log.WithError(err).WithField("discordID", discordID).Error("Failed to get player")
		b.respondWithError(s, i, "Unable to open your table. Please try again.")
		return
	}

	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		return
	}
	sub := options[0]

	switch sub.Name {
	case "bet":
		b.handleCrapsBet(ctx, s, i, sub, discordID)
	case "remove":
		b.handleCrapsRemove(ctx, s, i, sub, discordID)
	case "roll":
		b.handleCrapsRoll(ctx, s, i, discordID)
	case "table":
		b.handleCrapsTable(ctx, s, i, discordID)
	case "working":
		b.handleCrapsWorking(ctx, s, i, sub, discordID)
	case "seed":
		b.handleCrapsSeed(ctx, s, i, discordID)
	}
}

func (b *Bot) handleCrapsBet(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption, discordID int64) {
	areaStr := sub.Options[0].StringValue()
	amount := sub.Options[1].IntValue()

	area, err := models.ParseArea(areaStr)
	if err != nil {
		b.respondWithError(s, i, err.Error())
		return
	}

	result, err := b.tableService.PlaceBet(ctx, discordID, area, amount)
	if err != nil {
		log.WithError(err).WithField("discordID", discordID).Error("Failed to place bet")
		b.respondWithError(s, i, "Unable to place your bet. Please try again.")
		return
	}
	if !result.Accepted {
		b.respondWithError(s, i, result.Reason)
		return
	}

	b.respondEphemeral(s, i, fmt.Sprintf("🎲 **%s** on %s. Balance: **%s**",
		models.FormatCents(amount), area, models.FormatCents(result.Balance)))
}

func (b *Bot) handleCrapsRemove(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption, discordID int64) {
	areaStr := sub.Options[0].StringValue()
	amount := sub.Options[1].IntValue()

	area, err := models.ParseArea(areaStr)
	if err != nil {
		b.respondWithError(s, i, err.Error())
		return
	}

	result, err := b.tableService.RemoveBet(ctx, discordID, area, amount)
	if err != nil {
		log.WithError(err).WithField("discordID", discordID).Error("Failed to remove bet")
		b.respondWithError(s, i, "Unable to remove your bet. Please try again.")
		return
	}
	if !result.Accepted {
		b.respondWithError(s, i, result.Reason)
		return
	}

	b.respondEphemeral(s, i, fmt.Sprintf("↩️ Took **%s** off %s. Balance: **%s**",
		models.FormatCents(amount), area, models.FormatCents(result.Balance)))
}

func (b *Bot) handleCrapsRoll(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, discordID int64) {
	outcome, err := b.tableService.Roll(ctx, discordID)
	if err != nil {
		log.WithError(err).WithField("discordID", discordID).Error("Failed to roll")
		b.respondWithError(s, i, "Unable to roll. Please try again.")
		return
	}

	state, err := b.tableService.TableState(ctx, discordID)
	if err != nil {
		log.WithError(err).WithField("discordID", discordID).Error("Failed to get table state")
		b.respondWithError(s, i, "Rolled, but could not load your table.")
		return
	}

	embed := buildRollEmbed(outcome, state.Balance)
	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
		},
	})
	if err != nil {
		log.WithError(err).Error("Failed to respond to roll command")
	}
}

func (b *Bot) handleCrapsTable(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, discordID int64) {
	state, err := b.tableService.TableState(ctx, discordID)
	if err != nil {
		log.WithError(err).WithField("discordID", discordID).Error("Failed to get table state")
		b.respondWithError(s, i, "Unable to load your table. Please try again.")
		return
	}

	embed := buildTableEmbed(state)
	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.WithError(err).Error("Failed to respond to table command")
	}
}

func (b *Bot) handleCrapsWorking(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption, discordID int64) {
	working := sub.Options[0].BoolValue()

	if err := b.tableService.SetBonusBetsWorking(ctx, discordID, working); err != nil {
		log.WithError(err).WithField("discordID", discordID).Error("Failed to toggle working bets")
		b.respondWithError(s, i, "Unable to update your table. Please try again.")
		return
	}

	if working {
		b.respondEphemeral(s, i, "✅ Your place, buy and hardway bets stay **working** on come-out rolls.")
	} else {
		b.respondEphemeral(s, i, "💤 Your place, buy and hardway bets are **off** on come-out rolls.")
	}
}

func (b *Bot) handleCrapsSeed(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, discordID int64) {
	seed, seedHash, err := b.tableService.RevealSeed(ctx, discordID)
	if err != nil {
		log.WithError(err).WithField("discordID", discordID).Error("Failed to reveal seed")
		b.respondWithError(s, i, "Unable to reveal your seed right now. Please try again.")
		return
	}

	b.respondEphemeral(s, i, fmt.Sprintf(
		"🔐 Retired seed: `%s`\nIts published commitment was `%s`.\nA fresh seed is now in play, check your table for its hash.",
		seed, seedHash))
}

// interactionUser extracts the acting user from guild or DM interactions
func interactionUser(i *discordgo.InteractionCreate) (int64, string, error) {
	user := i.User
	if i.Member != nil {
		user = i.Member.User
	}
	if user == nil {
		return 0, "", fmt.Errorf("interaction has no user")
	}

	discordID, err := strconv.ParseInt(user.ID, 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("failed to parse discord ID %s: %w", user.ID, err)
	}
	return discordID, user.Username, nil
}
