package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-user-accounts/config"
	"github.com/oksasatya/go-user-accounts/internal/infrastructure/search"
	"github.com/oksasatya/go-user-accounts/internal/worker"
	"github.com/oksasatya/go-user-accounts/pkg/helpers"
	"github.com/oksasatya/go-user-accounts/pkg/mailer"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}
	logger := helpers.NewLogger(cfg.AppName+"-worker", cfg.Env, cfg.LogLevel)
	if cfg.RabbitMQURL == "" || cfg.RabbitMQUserEventsQueue == "" {
		logger.Fatal("RabbitMQ not configured")
	}

	h := &worker.UserEventHandler{AppName: cfg.AppName, Logger: logger}

	es, err := helpers.NewESClient(cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass)
	if err != nil {
		logger.WithError(err).Fatal("elasticsearch client")
	}
	if es != nil {
		h.Index = search.NewUserIndex(es, cfg.ESUsersIndex)
	} else {
		logger.Warn("ELASTICSEARCH_ADDRS empty; search projection disabled")
	}

	if cfg.MailSendEnabled {
		mg, err := mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
		if err != nil {
			logger.WithError(err).Fatal("mailgun not configured")
		}
		h.Mail = mg
	} else {
		logger.Info("MAIL_SEND_ENABLED=false; welcome emails disabled")
	}

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		logger.WithError(err).Fatal("amqp dial")
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		logger.WithError(err).Fatal("amqp channel")
	}
	defer func() { _ = ch.Close() }()

	if err := helpers.DeclareQueue(ch, cfg.RabbitMQUserEventsQueue); err != nil {
		logger.WithError(err).Fatal("queue declare")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.WithField("queue", cfg.RabbitMQUserEventsQueue).Info("user worker listening")
	if err := h.Consume(ctx, ch, cfg.RabbitMQUserEventsQueue); err != nil {
		logger.WithError(err).Error("consumer stopped")
		return
	}
	logger.Info("user worker exited properly")
}
