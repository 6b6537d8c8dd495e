package accounts

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"
)

// KafkaNotifier publishes notifications to a topic consumed by the mail
// service.
type KafkaNotifier struct {
	writer *kafka.Writer
	logger Logger
}

func NewKafkaNotifier(broker, topic, username, password string) *KafkaNotifier {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(broker),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
		WriteTimeout: 10 * time.Second,
	}

	if username != "" {
		writer.Transport = &kafka.Transport{
			SASL: plain.Mechanism{
				Username: username,
				Password: password,
			},
			TLS: &tls.Config{},
		}
	}

	return &KafkaNotifier{
		writer: writer,
		logger: defLogger{},
	}
}

func (n *KafkaNotifier) WithLogger(logger Logger) *KafkaNotifier {
	n.logger = logger
	return n
}

func (n *KafkaNotifier) Send(ctx context.Context, notification Notification) error {
	value, err := json.Marshal(notification)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "unable to encode notification")
	}

	err = n.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(notification.Recipient),
		Value: value,
		Time:  time.Now(),
	})
	if err != nil {
		n.logger.Error("Notification publish error: %v", err)
		return goerrors.Wrap(err, ErrNotificationFailed.Category, ErrNotificationFailed.Message).
			WithTextCode(ErrNotificationFailed.TextCode)
	}

	return nil
}

func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}

var _ Notifier = (*KafkaNotifier)(nil)
