package bot

import (
	"fmt"
	"strings"
	"time"

	"revshare/bot/common"
	"revshare/events"
	"revshare/models"

	"github.com/bwmarrin/discordgo"
	"github.com/shopspring/decimal"
)

const (
	colorCompleted = 0x2ECC71 // Green
	colorHistory   = 0x3498DB // Blue
	colorEmpty     = 0x95A5A6 // Grey

	// maxListedItems caps list embeds well under Discord's field value limit
	maxListedItems = 15
	maxFieldLength = 1024
)

// buildDistributionCompletedEmbed creates the channel announcement for a finished run
func buildDistributionCompletedEmbed(event events.DistributionCompletedEvent) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       "💸 Revenue Distributed",
		Description: fmt.Sprintf("**%s** distributed to **%d** investors", common.FormatAmount(event.TotalAmount), event.PayoutCount),
		Color:       colorCompleted,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Offering",
				Value:  event.OfferingID,
				Inline: true,
			},
			{
				Name:   "Distribution Date",
				Value:  common.FormatDiscordTimestamp(event.DistributionDate, "D"),
				Inline: true,
			},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Run ID: %s", event.DistributionRunID),
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}

	if event.ReportedBy != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "Reported By",
			Value:  event.ReportedBy,
			Inline: true,
		})
	}

	return embed
}

// buildRunDetailEmbed shows a run with its payouts in creation order
func buildRunDetailEmbed(result *models.DistributionResult) *discordgo.MessageEmbed {
	run := result.Run
	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Distribution %s", common.ShortID(run.ID)),
		Description: fmt.Sprintf("**Total: %s** across %d payouts", common.FormatAmount(run.TotalAmount), len(result.Payouts)),
		Color:       colorHistory,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Offering", Value: run.OfferingID, Inline: true},
			{Name: "Status", Value: string(run.Status), Inline: true},
			{Name: "Distribution Date", Value: common.FormatDiscordTimestamp(run.DistributionDate, "D"), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Run ID: %s", run.ID),
		},
		Timestamp: run.CreatedAt.Format(time.RFC3339),
	}

	lines := make([]string, 0, len(result.Payouts))
	for _, p := range result.Payouts {
		lines = append(lines, fmt.Sprintf("`%s` %s", p.InvestorID, common.FormatAmount(p.Amount)))
	}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:  "Payouts",
		Value: joinLimited(lines, "*No payouts*"),
	})

	return embed
}

// buildOfferingRunsEmbed lists an offering's runs, newest first
func buildOfferingRunsEmbed(offeringID string, runs []*models.DistributionRun) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:     fmt.Sprintf("Distributions for %s", offeringID),
		Color:     colorHistory,
		Timestamp: time.Now().Format(time.RFC3339),
	}
	if len(runs) == 0 {
		embed.Description = "No distributions yet."
		embed.Color = colorEmpty
		return embed
	}

	total := decimal.Zero
	for _, r := range runs {
		total = total.Add(r.TotalAmount)
	}
	embed.Description = fmt.Sprintf("**%d runs**, %s distributed in total", len(runs), common.FormatAmount(total))

	lines := make([]string, 0, len(runs))
	for _, r := range runs {
		lines = append(lines, fmt.Sprintf("%s `%s` %s (%s)",
			common.FormatDiscordTimestamp(r.DistributionDate, "d"), common.ShortID(r.ID), common.FormatAmount(r.TotalAmount), r.Status))
	}
	embed.Fields = []*discordgo.MessageEmbedField{{Name: "Runs", Value: joinLimited(lines, "")}}

	return embed
}

// buildInvestorPayoutsEmbed lists an investor's payouts, newest first
func buildInvestorPayoutsEmbed(investorID string, payouts []*models.Payout) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:     fmt.Sprintf("Payouts for %s", investorID),
		Color:     colorHistory,
		Timestamp: time.Now().Format(time.RFC3339),
	}
	if len(payouts) == 0 {
		embed.Description = "No payouts yet."
		embed.Color = colorEmpty
		return embed
	}

	lines := make([]string, 0, len(payouts))
	total := decimal.Zero
	for _, p := range payouts {
		total = total.Add(p.Amount)
		lines = append(lines, fmt.Sprintf("`%s` %s (%s)", common.ShortID(p.DistributionRunID), common.FormatAmount(p.Amount), p.Status))
	}
	embed.Description = fmt.Sprintf("**%d payouts**, %s received in total", len(payouts), common.FormatAmount(total))
	embed.Fields = []*discordgo.MessageEmbedField{{Name: "Payouts", Value: joinLimited(lines, "")}}

	return embed
}

// joinLimited renders one line per item, capped by count and field length
func joinLimited(lines []string, empty string) string {
	if len(lines) == 0 {
		return empty
	}

	shown := lines
	if len(shown) > maxListedItems {
		shown = shown[:maxListedItems]
	}
	value := strings.Join(shown, "\n")
	if hidden := len(lines) - len(shown); hidden > 0 {
		value += fmt.Sprintf("\n*...and %d more*", hidden)
	}

	// Truncate if too long
	if len(value) > maxFieldLength {
		value = value[:maxFieldLength-3] + "..."
	}
	return value
}
