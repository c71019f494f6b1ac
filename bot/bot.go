package bot

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"revshare/events"
	"revshare/service"

	"github.com/bwmarrin/discordgo"
)

// Config holds bot configuration
type Config struct {
	Token     string
	ChannelID string
}

type Bot struct {
	config         Config
	session        *discordgo.Session
	historyService service.DistributionHistoryService
	announcer      *DistributionAnnouncer
}

func New(config Config, historyService service.DistributionHistoryService, eventBus *events.Bus, metrics AnnouncementMetrics) (*Bot, error) {
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds

	bot := &Bot{
		config:         config,
		session:        dg,
		historyService: historyService,
	}

	// Register slash command handlers
	dg.AddHandler(bot.handleCommands)

	// Open websocket connection
	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	// Register slash commands with Discord
	if err := bot.registerCommands(); err != nil {
		dg.Close()
		return nil, fmt.Errorf("error registering commands: %w", err)
	}

	if config.ChannelID != "" {
		bot.announcer = NewDistributionAnnouncer(dg, config.ChannelID, metrics)
		bot.announcer.Register(eventBus)
		log.WithField("channelId", config.ChannelID).Info("Distribution announcements enabled")
	}

	return bot, nil
}

func (b *Bot) Close() error {
	return b.session.Close()
}
