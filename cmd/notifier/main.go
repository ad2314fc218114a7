// Command notifier drains the WhatsApp notification queue and delivers each
// message through the gateway.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/apparte-kost/internal/config"
	"github.com/iliyamo/apparte-kost/internal/logger"
	"github.com/iliyamo/apparte-kost/internal/queue"
	"github.com/iliyamo/apparte-kost/internal/whatsapp"
)

func main() {
	cfg := config.LoadNotifier()
	log, err := logger.New(cfg.LogLevel, cfg.Env)
	if err != nil {
		logrus.WithError(err).Fatal("build logger")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sender := whatsapp.NewClient(cfg.WhatsAppAPIURL, cfg.WhatsAppToken)
	log.WithField("queue", queue.NotificationQueue).Info("notifier started")

	err = queue.StartNotificationConsumer(ctx, cfg.RabbitURL, sender, queue.ConsumerOptions{Prefetch: cfg.Prefetch}, log)
	if err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Fatal("notifier stopped")
	}
	log.Info("notifier stopped")
}
