package cmd

import (
	"context"
	"fmt"
	"time"

	"revshare/bot"
	"revshare/config"
	"revshare/infrastructure"

	log "github.com/sirupsen/logrus"
)

// Run initializes and starts the distribution worker
func Run(ctx context.Context) error {
	// Load configuration
	cfg := config.Get()
	ConfigureLogging(cfg)

	log.WithField("environment", cfg.Environment).Info("Starting revshare worker...")

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}

	// Outbound event sinks and the inbound revenue consumer
	var natsClient *infrastructure.NATSClient
	if cfg.NATSEnabled {
		natsClient, err = startNATS(ctx, a)
		if err != nil {
			a.close(context.Background())
			return err
		}
	} else {
		log.Info("NATS disabled, revenue reports are only accepted through the CLI")
	}

	var kafkaPublisher *infrastructure.KafkaEventPublisher
	if cfg.KafkaEnabled() {
		kafkaPublisher = infrastructure.NewKafkaEventPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, a.metrics)
		kafkaPublisher.Register(a.eventBus)
		log.WithFields(log.Fields{
			"brokers": cfg.KafkaBrokers,
			"topic":   cfg.KafkaTopic,
		}).Info("Kafka event publisher registered")
	}

	var discordBot *bot.Bot
	if cfg.DiscordEnabled() {
		log.Info("Initializing Discord bot...")
		discordBot, err = bot.New(bot.Config{
			Token:     cfg.DiscordToken,
			ChannelID: cfg.DiscordChannelID,
		}, a.history, a.eventBus, a.metrics)
		if err != nil {
			log.WithError(err).Error("Failed to initialize Discord bot, continuing without announcements")
			discordBot = nil
		} else {
			log.Info("Discord bot initialized successfully")
		}
	}

	// Wait for context cancellation
	log.Info("Worker is running")
	<-ctx.Done()

	// Cleanup resources
	log.Info("Shutting down worker...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if discordBot != nil {
		if err := discordBot.Close(); err != nil {
			log.WithError(err).Error("Error closing Discord bot")
		}
	}

	// Drain events already queued for the NATS and Kafka sinks
	a.eventBus.Close()

	if natsClient != nil {
		if err := natsClient.Close(); err != nil {
			log.WithError(err).Error("Error closing NATS client")
		}
	}

	if kafkaPublisher != nil {
		if err := kafkaPublisher.Close(); err != nil {
			log.WithError(err).Error("Error closing Kafka writer")
		}
	}

	log.Info("Closing database connection...")
	a.close(shutdownCtx)

	log.Info("Shutdown completed")
	return nil
}

// startNATS connects to JetStream, publishes bus events and consumes revenue reports
func startNATS(ctx context.Context, a *app) (*infrastructure.NATSClient, error) {
	log.WithField("servers", a.cfg.NATSServers).Info("Connecting to NATS...")
	client := infrastructure.NewNATSClient(a.cfg.NATSServers)
	if err := client.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	publisher := infrastructure.NewNATSEventPublisher(client, infrastructure.NewEventSubjectMapper(), a.metrics)
	if err := publisher.EnsureEventStream(client); err != nil {
		client.Close()
		return nil, err
	}
	publisher.Register(a.eventBus)

	if err := infrastructure.EnsureRevenueStream(client); err != nil {
		client.Close()
		return nil, err
	}
	consumer := infrastructure.NewRevenueReportConsumer(client, a.reports, a.metrics)
	if err := consumer.Start(ctx); err != nil {
		client.Close()
		return nil, err
	}

	log.Info("NATS event publisher and revenue report consumer started")
	return client, nil
}
