package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Skotchmaster/storefront/internal/config"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/notify"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

func main() {
	cfg := config.LoadNotifier()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	notifier := &notify.OrderNotifier{Sender: notify.NewMailer(cfg.SMTP), Admins: cfg.Admins}
	consumer := mykafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaGroupID, mykafka.TopicOrderEvents, 4, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("notifier consuming", "topic", mykafka.TopicOrderEvents, "group", cfg.KafkaGroupID)
	if err := consumer.Run(ctx, notifier.KafkaHandler(logger)); err != nil {
		log.Fatalf("consumer: %v", err)
	}
	logger.Info("notifier stopped")
}
