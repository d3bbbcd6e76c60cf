package bot

import (
	"fmt"
	"strings"

	"crapstable/models"

	"github.com/bwmarrin/discordgo"
)

func buildRollEmbed(outcome *models.RollOutcome, balance int64) *discordgo.MessageEmbed {
	color := 0x95a5a6
	switch outcome.Event {
	case models.EventNatural, models.EventPointMade:
		color = 0x2ecc71
	case models.EventSevenOut:
		color = 0xe74c3c
	case models.EventPointEstablished:
		color = 0x3498db
	}

	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("🎲 %d-%d (total %d)", outcome.Roll.Die1, outcome.Roll.Die2, outcome.Roll.Total()),
		Description: outcome.Message,
		Color:       color,
	}

	if len(outcome.Results) > 0 {
		var lines []string
		for _, res := range outcome.Results {
			lines = append(lines, formatBetResult(res))
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Bets",
			Value: strings.Join(lines, "\n"),
		})
	}

	if outcome.TotalWinnings > 0 || outcome.TotalReturned > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Paid",
			Value: fmt.Sprintf("Winnings %s, stakes returned %s",
				models.FormatCents(outcome.TotalWinnings), models.FormatCents(outcome.TotalReturned)),
			Inline: true,
		})
	}

	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:   "Balance",
		Value:  models.FormatCents(balance),
		Inline: true,
	})

	embed.Footer = &discordgo.MessageEmbedFooter{Text: tableFooter(outcome.Phase, outcome.Point)}
	return embed
}

func buildTableEmbed(state *models.TableState) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "Your table",
		Color: 0x3498db,
	}

	if len(state.Bets) == 0 {
		embed.Description = "No bets on the table."
	} else {
		var lines []string
		for _, bet := range state.Bets {
			line := fmt.Sprintf("**%s** · %s", bet.Area, models.FormatCents(bet.Amount))
			if bet.TravelPoint != nil {
				line = fmt.Sprintf("**come@%d** · %s", *bet.TravelPoint, models.FormatCents(bet.Amount))
			}
			lines = append(lines, line)
		}
		embed.Description = strings.Join(lines, "\n")
	}

	embed.Fields = append(embed.Fields,
		&discordgo.MessageEmbedField{
			Name:   "Balance",
			Value:  models.FormatCents(state.Balance),
			Inline: true,
		},
		&discordgo.MessageEmbedField{
			Name:   "Dice commitment",
			Value:  fmt.Sprintf("`%s` (nonce %d)", state.SeedHash, state.Nonce),
			Inline: false,
		},
	)

	if state.BonusBetsWorking {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "Come-out",
			Value:  "Place, buy and hardway bets are working",
			Inline: true,
		})
	}

	embed.Footer = &discordgo.MessageEmbedFooter{Text: tableFooter(state.Phase, state.Point)}
	return embed
}

func buildScoreboardEmbed(players []*models.Player) *discordgo.MessageEmbed {
	var lines []string
	medals := []string{"🥇", "🥈", "🥉"}
	for idx, p := range players {
		rank := fmt.Sprintf("%d.", idx+1)
		if idx < len(medals) {
			rank = medals[idx]
		}
		lines = append(lines, fmt.Sprintf("%s **%s** · %s", rank, p.Username, models.FormatCents(p.Balance)))
	}
	if len(lines) == 0 {
		lines = append(lines, "Nobody has played yet.")
	}

	return &discordgo.MessageEmbed{
		Title:       "🏆 Scoreboard",
		Description: strings.Join(lines, "\n"),
		Color:       0xf1c40f,
	}
}

func formatBetResult(res models.BetResult) string {
	name := res.Area.String()
	if res.Area.Kind == models.BetCome && res.TravelPoint != nil {
		name = fmt.Sprintf("come@%d", *res.TravelPoint)
	}

	switch res.Outcome {
	case models.BetOutcomeWin:
		return fmt.Sprintf("✅ %s won %s", name, models.FormatCents(res.Payout))
	case models.BetOutcomeLoss:
		return fmt.Sprintf("❌ %s lost", name)
	default:
		return fmt.Sprintf("⏳ %s stays", name)
	}
}

func tableFooter(phase models.Phase, point int) string {
	if phase == models.PhasePoint {
		return fmt.Sprintf("Point is %d", point)
	}
	return "Come-out roll"
}
