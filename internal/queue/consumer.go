package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/apparte-kost/internal/model"
)

// Sender delivers a consumed message.
type Sender interface {
	Notify(ctx context.Context, n model.Notification) error
}

// ConsumerOptions tunes the consumer.
type ConsumerOptions struct {
	Prefetch    int
	SendTimeout time.Duration
	MaxBackoff  time.Duration
}

func (o ConsumerOptions) withDefaults() ConsumerOptions {
	if o.Prefetch <= 0 {
		o.Prefetch = 10
	}
	if o.SendTimeout <= 0 {
		o.SendTimeout = 15 * time.Second
	}
	if o.MaxBackoff <= 0 {
		o.MaxBackoff = 30 * time.Second
	}
	return o
}

// StartNotificationConsumer consumes NotificationQueue until ctx is done,
// reconnecting with exponential backoff whenever the broker goes away.
func StartNotificationConsumer(ctx context.Context, url string, sender Sender, opts ConsumerOptions, log logrus.FieldLogger) error {
	opts = opts.withDefaults()
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.WithError(err).WithField("retry_in", backoff.String()).Warn("notification consumer: dial failed")
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < opts.MaxBackoff {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = consume(ctx, conn, sender, opts, log)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.WithError(err).Warn("notification consumer: loop ended, reconnecting")
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func consume(ctx context.Context, conn *amqp.Connection, sender Sender, opts ConsumerOptions, log logrus.FieldLogger) error {
	ch, err := conn.Channel()
	if err != nil {
		return errors.Wrap(err, "channel open")
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(opts.Prefetch, 0, false); err != nil {
		log.WithError(err).Warn("notification consumer: set QoS failed")
	}
	if _, err := declare(ch); err != nil {
		return err
	}
	msgs, err := ch.Consume(NotificationQueue, "", false, false, false, false, nil)
	if err != nil {
		return errors.Wrap(err, "queue consume")
	}
	log.WithField("queue", NotificationQueue).Info("notification consumer started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			settle(d, handle(ctx, d.Body, sender, opts.SendTimeout), d.Redelivered, log)
		}
	}
}

// acknowledger is the part of amqp.Delivery used to settle a message.
type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

// settle acks a delivered message.  A failed send is requeued once; a
// second failure or an undecodable body drops it.
func settle(d acknowledger, err error, redelivered bool, log logrus.FieldLogger) {
	if err == nil {
		_ = d.Ack(false)
		return
	}
	var bad *decodeError
	requeue := !redelivered && !errors.As(err, &bad)
	log.WithError(err).WithField("requeue", requeue).Warn("notification consumer: message not delivered")
	_ = d.Nack(false, requeue)
}

type decodeError struct{ err error }

func (e *decodeError) Error() string { return "decode message: " + e.err.Error() }

func handle(ctx context.Context, body []byte, sender Sender, timeout time.Duration) error {
	var m WhatsAppMessage
	if err := json.Unmarshal(body, &m); err != nil {
		return &decodeError{err: err}
	}
	if m.Phone == "" || m.Text == "" {
		return &decodeError{err: errors.New("phone and text are required")}
	}
	sctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return sender.Notify(sctx, m.notification())
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
