package bot

import (
	"context"
	"errors"
	"fmt"

	"revshare/bot/common"
	"revshare/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// registerCommands registers all slash commands with Discord
func (b *Bot) registerCommands() error {
	commands := []*discordgo.ApplicationCommand{
		{
			Name:        "distribution",
			Description: "Look up revenue distributions",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "offering",
					Description: "List distribution runs for an offering",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "id",
							Description: "Offering ID",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "investor",
					Description: "List payouts received by an investor",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "id",
							Description: "Investor ID",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "run",
					Description: "Show a distribution run and its payouts",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "id",
							Description: "Distribution run ID",
							Required:    true,
						},
					},
				},
			},
		},
	}

	for _, cmd := range commands {
		_, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, "", cmd)
		if err != nil {
			return fmt.Errorf("cannot create '%s' command: %w", cmd.Name, err)
		}
	}

	return nil
}

func (b *Bot) handleCommands(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	switch i.ApplicationCommandData().Name {
	case "distribution":
		b.handleDistributionCommand(s, i)
	}
}

func (b *Bot) handleDistributionCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		return
	}
	sub := options[0]

	var id string
	for _, opt := range sub.Options {
		if opt.Name == "id" {
			id = opt.StringValue()
		}
	}

	if err := common.DeferResponse(s, i, true); err != nil {
		log.Errorf("Error deferring distribution command: %v", err)
		return
	}

	embed, err := b.distributionEmbed(context.Background(), sub.Name, id)
	if err != nil {
		log.WithFields(log.Fields{
			"subcommand": sub.Name,
			"id":         id,
			"error":      err,
		}).Warn("Distribution lookup failed")
		common.FollowUpWithError(s, i, lookupErrorMessage(err))
		return
	}

	if _, err := common.FollowUpWithEmbed(s, i, embed, true); err != nil {
		log.Errorf("Error sending distribution embed: %v", err)
	}
}

// distributionEmbed resolves a subcommand into the embed to display
func (b *Bot) distributionEmbed(ctx context.Context, subcommand, id string) (*discordgo.MessageEmbed, error) {
	switch subcommand {
	case "offering":
		runs, err := b.historyService.ListOfferingDistributions(ctx, id)
		if err != nil {
			return nil, err
		}
		return buildOfferingRunsEmbed(id, runs), nil
	case "investor":
		payouts, err := b.historyService.ListInvestorPayouts(ctx, id)
		if err != nil {
			return nil, err
		}
		return buildInvestorPayoutsEmbed(id, payouts), nil
	case "run":
		result, err := b.historyService.GetDistribution(ctx, id)
		if err != nil {
			return nil, err
		}
		return buildRunDetailEmbed(result), nil
	default:
		return nil, fmt.Errorf("unknown subcommand %q", subcommand)
	}
}

func lookupErrorMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrDistributionNotFound):
		return "Distribution run not found."
	case errors.Is(err, service.ErrInvalidOffering):
		return "Please provide an offering ID."
	default:
		return "Unable to look up distributions. Please try again."
	}
}
