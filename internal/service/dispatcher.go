package service

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/apparte-kost/internal/metrics"
	"github.com/iliyamo/apparte-kost/internal/model"
)

// Notifier delivers one notification: to the queue, straight to the
// WhatsApp gateway, or to the log.
type Notifier interface {
	Notify(ctx context.Context, n model.Notification) error
}

// Dispatcher sends notifications in the background.  A failed send is
// logged and counted but never reported to the request that triggered it.
type Dispatcher struct {
	notifier  Notifier
	transport string
	log       logrus.FieldLogger
	timeout   time.Duration
	wg        sync.WaitGroup
}

// NewDispatcher wraps notifier.  transport labels the metrics.
func NewDispatcher(notifier Notifier, transport string, log logrus.FieldLogger) *Dispatcher {
	return &Dispatcher{notifier: notifier, transport: transport, log: log, timeout: 10 * time.Second}
}

// Dispatch starts delivery and returns immediately.  The send runs on its
// own context so it outlives the HTTP request.
func (d *Dispatcher) Dispatch(n model.Notification) {
	if n.Phone == "" || n.Text == "" {
		return
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := d.notifier.Notify(ctx, n); err != nil {
			metrics.RecordNotification(d.transport, metrics.ResultFailed)
			d.log.WithFields(logrus.Fields{
				"phone": n.Phone,
				"kind":  n.Kind,
			}).WithError(err).Warn("notification not delivered")
			return
		}
		metrics.RecordNotification(d.transport, metrics.ResultSent)
	}()
}

// Wait blocks until every dispatched notification has finished.  Called on
// shutdown and in tests.
func (d *Dispatcher) Wait() { d.wg.Wait() }

// LogNotifier only logs notifications.  The message text is omitted because
// confirmation messages carry a plaintext credential.
type LogNotifier struct{ Log logrus.FieldLogger }

func (l LogNotifier) Notify(_ context.Context, n model.Notification) error {
	l.Log.WithFields(logrus.Fields{"phone": n.Phone, "kind": n.Kind}).Info("notification (log transport)")
	return nil
}
