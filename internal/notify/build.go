package notify

import (
	"time"

	"hubledger/internal/logger"
)

// Options selects the optional outbound transports.
type Options struct {
	AMQPURL        string
	AMQPExchange   string
	AMQPRoutingKey string
	WebhookURL     string
	WebhookTimeout time.Duration
}

// Build fans out to base plus every configured transport. A broker that
// cannot be reached is logged and left out. The returned func releases the
// broker connection.
func Build(base Notifier, opts Options) (Notifier, func()) {
	log := logger.Get()
	fanout := Fanout{}
	if base != nil {
		fanout = append(fanout, base)
	}
	closeFn := func() {}

	if opts.AMQPURL != "" {
		publisher, err := NewAMQPPublisher(opts.AMQPURL, opts.AMQPExchange, opts.AMQPRoutingKey)
		if err != nil {
			log.Warnw("AMQP notifications disabled", "error", err)
		} else {
			fanout = append(fanout, publisher)
			closeFn = func() {
				if err := publisher.Close(); err != nil {
					log.Warnw("failed to close AMQP publisher", "error", err)
				}
			}
		}
	}
	if opts.WebhookURL != "" {
		timeout := opts.WebhookTimeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		fanout = append(fanout, NewWebhookNotifier(opts.WebhookURL, timeout))
	}
	return fanout, closeFn
}
