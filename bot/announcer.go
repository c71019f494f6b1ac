package bot

import (
	"context"
	"fmt"

	"revshare/events"
	"revshare/infrastructure"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// messageSender is the subset of discordgo.Session used to post announcements
type messageSender interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// AnnouncementMetrics records announcement outcomes
type AnnouncementMetrics interface {
	RecordEventPublished(sink, eventType string, err error)
}

// DistributionAnnouncer posts an embed to a channel for every completed distribution
type DistributionAnnouncer struct {
	sender    messageSender
	channelID string
	metrics   AnnouncementMetrics
}

// NewDistributionAnnouncer creates an announcer; metrics may be nil
func NewDistributionAnnouncer(sender messageSender, channelID string, metrics AnnouncementMetrics) *DistributionAnnouncer {
	return &DistributionAnnouncer{
		sender:    sender,
		channelID: channelID,
		metrics:   metrics,
	}
}

// Register subscribes the announcer to completed distributions
func (a *DistributionAnnouncer) Register(bus *events.Bus) {
	bus.Subscribe(events.EventTypeDistributionCompleted, a.Handle)
}

// Handle is the event bus handler
func (a *DistributionAnnouncer) Handle(ctx context.Context, event events.Event) {
	completed, ok := event.(events.DistributionCompletedEvent)
	if !ok {
		return
	}

	err := a.Announce(completed)
	if a.metrics != nil {
		a.metrics.RecordEventPublished(infrastructure.SinkDiscord, string(event.Type()), err)
	}
	if err != nil {
		log.WithFields(log.Fields{
			"distributionRunId": completed.DistributionRunID,
			"channelId":         a.channelID,
			"error":             err,
		}).Error("Failed to announce distribution")
	}
}

// Announce posts the completed distribution embed
func (a *DistributionAnnouncer) Announce(event events.DistributionCompletedEvent) error {
	if _, err := a.sender.ChannelMessageSendEmbed(a.channelID, buildDistributionCompletedEmbed(event)); err != nil {
		return fmt.Errorf("failed to send announcement: %w", err)
	}
	return nil
}
